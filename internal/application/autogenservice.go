package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/dstanley/certhost/internal/certificate"
	"github.com/dstanley/certhost/internal/domain/model"
	"github.com/dstanley/certhost/internal/domain/port/driven"
	"github.com/dstanley/certhost/internal/platform/metrics"
)

// EventCertGenerated is the bus event name for a new certificate issuance.
const EventCertGenerated = "cert.generated"

// runRequest represents a manual cycle trigger.
type runRequest struct {
	done chan error
}

// AutogenService drives the periodic issuance pipeline: candidate
// discovery, issuance-store deduplication, record persistence, and
// best-effort notification.
type AutogenService struct {
	candidates *CandidateService
	hosts      driven.HostStore
	notifier   driven.Notifier
	metrics    *metrics.Metrics
	appURL     string
	issuer     string
	interval   time.Duration
	runCh      chan runRequest
}

// NewAutogenService creates an AutogenService with all required dependencies.
func NewAutogenService(
	candidates *CandidateService,
	hosts driven.HostStore,
	notifier driven.Notifier,
	m *metrics.Metrics,
	appURL string,
	issuer string,
	interval time.Duration,
) *AutogenService {
	return &AutogenService{
		candidates: candidates,
		hosts:      hosts,
		notifier:   notifier,
		metrics:    m,
		appURL:     appURL,
		issuer:     issuer,
		interval:   interval,
		runCh:      make(chan runRequest),
	}
}

// Start begins the issuance loop. It runs an immediate cycle, then one per
// configured interval. Manual runs are serialized through the same select
// loop, so two cycles never overlap for one service instance. Start blocks
// until the context is canceled; an in-flight cycle is not forcibly
// aborted, only future ticks are suppressed.
func (s *AutogenService) Start(ctx context.Context) {
	if err := s.runCycle(ctx); err != nil {
		slog.Error("initial autogeneration cycle failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("autogeneration stopped")
			return
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				slog.Error("autogeneration cycle failed", "error", err)
			}
		case req := <-s.runCh:
			req.done <- s.runCycle(ctx)
		}
	}
}

// RunNow triggers a cycle outside the regular interval, blocking until it
// completes or the context is canceled.
func (s *AutogenService) RunNow(ctx context.Context) error {
	done := make(chan error, 1)

	select {
	case s.runCh <- runRequest{done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runCycle performs one discovery + issuance pass.
func (s *AutogenService) runCycle(ctx context.Context) error {
	start := time.Now()
	s.metrics.CyclesTotal.Inc()

	candidates, err := s.candidates.Refresh(ctx)
	if err != nil {
		return err
	}
	s.metrics.CandidatesDiscovered.Set(float64(len(candidates)))

	var issued, alreadyIssued, storeErrors int
	for _, username := range candidates {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Authoritative check: the mirror may lag other instances.
		stored, err := s.hosts.IsStored(ctx, username)
		if err != nil {
			slog.Error("issuance check failed", "username", username, "error", err)
			s.metrics.StoreErrors.Inc()
			storeErrors++
			continue
		}
		if stored {
			alreadyIssued++
			continue
		}

		rec := model.HostRecord{
			ID:        username,
			IssueDate: certificate.HumanDate(time.Now()),
			Issuer:    s.issuer,
		}
		if err := s.hosts.Add(ctx, rec); err != nil {
			// The host stays absent from the store and is reconsidered
			// on the next cycle.
			slog.Error("issuance store add failed", "username", username, "error", err)
			s.metrics.StoreErrors.Inc()
			storeErrors++
			continue
		}

		issued++
		s.metrics.CertificatesIssued.Inc()
		s.notify(ctx, username)
	}

	slog.Info("autogeneration cycle complete",
		"candidates", len(candidates),
		"issued", issued,
		"already_issued", alreadyIssued,
		"store_errors", storeErrors,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return nil
}

// notify fires the best-effort issuance event for a freshly stored host.
func (s *AutogenService) notify(ctx context.Context, username string) {
	details, _ := s.candidates.Details(username)

	notice := model.IssuanceNotice{
		CertificateURL: s.appURL + "/certificates/" + username + ".png",
		Username:       username,
		Email:          details.Email,
		Locale:         details.Locale,
	}

	if err := s.notifier.Send(ctx, EventCertGenerated, notice); err != nil {
		slog.Error("issuance notification failed", "username", username, "error", err)
		s.metrics.NotifyErrors.Inc()
	}
}
