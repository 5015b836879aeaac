// Package metrics defines the Prometheus collectors for the issuance
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	CyclesTotal          prometheus.Counter
	CertificatesIssued   prometheus.Counter
	StoreErrors          prometheus.Counter
	NotifyErrors         prometheus.Counter
	ConversionFailures   prometheus.Counter
	CandidatesDiscovered prometheus.Gauge
}

// New registers the collectors with reg and returns them. Tests pass a
// fresh prometheus.NewRegistry() to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "certhost_autogen_cycles_total",
			Help: "Total number of autogeneration cycles run",
		}),
		CertificatesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "certhost_certificates_issued_total",
			Help: "Total number of host certificate records issued",
		}),
		StoreErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "certhost_store_errors_total",
			Help: "Total number of issuance store failures during cycles",
		}),
		NotifyErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "certhost_notify_errors_total",
			Help: "Total number of notification bus send failures",
		}),
		ConversionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "certhost_conversion_failures_total",
			Help: "Total number of certificate format conversion failures",
		}),
		CandidatesDiscovered: factory.NewGauge(prometheus.GaugeOpts{
			Name: "certhost_candidates_discovered",
			Help: "Size of the candidate set after the last discovery refresh",
		}),
	}
}
