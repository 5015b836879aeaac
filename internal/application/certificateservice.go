package application

import (
	"context"
	"fmt"

	"github.com/dstanley/certhost/internal/certificate"
	"github.com/dstanley/certhost/internal/domain/model"
	"github.com/dstanley/certhost/internal/domain/port/driven"
	"github.com/dstanley/certhost/internal/platform/metrics"
)

// CertificateService renders certificates and converts them to requested
// output formats for the HTTP surface.
type CertificateService struct {
	hosts      driven.HostStore
	converter  driven.Converter
	metrics    *metrics.Metrics
	issuer     string
	issuerRole string
}

// NewCertificateService creates a CertificateService. issuer and issuerRole
// are the configured defaults stamped on host certificates served by id.
func NewCertificateService(hosts driven.HostStore, converter driven.Converter, m *metrics.Metrics, issuer, issuerRole string) *CertificateService {
	return &CertificateService{
		hosts:      hosts,
		converter:  converter,
		metrics:    m,
		issuer:     issuer,
		issuerRole: issuerRole,
	}
}

// Generate renders a one-off certificate from the given details and
// converts it to the requested format.
func (s *CertificateService) Generate(ctx context.Context, d certificate.Details, format model.OutputFormat) ([]byte, error) {
	doc := certificate.Render(d)

	out, err := s.converter.Convert(ctx, doc, format)
	if err != nil {
		s.metrics.ConversionFailures.Inc()
		return nil, fmt.Errorf("generate certificate: %w", err)
	}

	return out, nil
}

// ForHost renders the certificate for an issued host, using the record's
// issue date and the configured issuer identity. It returns
// driven.ErrNotFound when no record exists for the id.
func (s *CertificateService) ForHost(ctx context.Context, id string, format model.OutputFormat) ([]byte, error) {
	rec, err := s.hosts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load host %q: %w", id, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("host %q: %w", id, driven.ErrNotFound)
	}

	doc := certificate.Render(certificate.Details{
		Recipient:  rec.ID,
		Issuer:     s.issuer,
		IssuerRole: s.issuerRole,
		Date:       rec.IssueDate,
	})

	out, err := s.converter.Convert(ctx, doc, format)
	if err != nil {
		s.metrics.ConversionFailures.Inc()
		return nil, fmt.Errorf("certificate for host %q: %w", id, err)
	}

	return out, nil
}
