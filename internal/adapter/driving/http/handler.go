// Package httphandler is the HTTP driving adapter that serves the REST API
// and the public certificate URLs.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dstanley/certhost/internal/application"
	"github.com/dstanley/certhost/internal/certificate"
	"github.com/dstanley/certhost/internal/domain/model"
	"github.com/dstanley/certhost/internal/domain/port/driven"
)

// Handler serves the REST API over the host store and application services.
type Handler struct {
	hosts      driven.HostStore
	candidates *application.CandidateService
	certs      *application.CertificateService
	version    string
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	hosts driven.HostStore,
	candidates *application.CandidateService,
	certs *application.CertificateService,
	version string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		hosts:      hosts,
		candidates: candidates,
		certs:      certs,
		version:    version,
		logger:     logger,
	}
}

// NewRouter creates the routed http.Handler with logging and recovery
// middleware, the API routes, the public certificate route, and the
// Prometheus scrape endpoint.
func NewRouter(h *Handler, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware(logger))
	r.Use(recoveryMiddleware(logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/candidates", h.ListCandidates)
		r.Post("/candidates/refresh", h.RefreshCandidates)
		r.Get("/hosts", h.ListHosts)
		r.Get("/hosts/{id}", h.GetHost)
		r.Put("/hosts/{id}", h.UpdateHost)
		r.Delete("/hosts/{id}", h.RemoveHost)
		r.Post("/certificates", h.Generate)
	})

	r.Get("/certificates/{file}", h.HostCertificate)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// ListCandidates returns the current candidate set from the last discovery
// refresh.
func (h *Handler) ListCandidates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.candidateResponses())
}

// RefreshCandidates runs a discovery refresh against the events platform and
// returns the refreshed candidate set.
func (h *Handler) RefreshCandidates(w http.ResponseWriter, r *http.Request) {
	if _, err := h.candidates.Refresh(r.Context()); err != nil {
		h.logger.Error("candidate refresh failed", "error", err)
		writeError(w, http.StatusBadGateway, "candidate refresh failed")
		return
	}

	writeJSON(w, http.StatusOK, h.candidateResponses())
}

func (h *Handler) candidateResponses() []CandidateResponse {
	usernames := h.candidates.Get()

	resp := make([]CandidateResponse, 0, len(usernames))
	for _, username := range usernames {
		c := CandidateResponse{Username: username}
		if profile, ok := h.candidates.Details(username); ok {
			c.Email = profile.Email
			c.Locale = profile.Locale
		}
		resp = append(resp, c)
	}

	return resp
}

// ListHosts returns all issuance records, ordered by id.
func (h *Handler) ListHosts(w http.ResponseWriter, r *http.Request) {
	hosts, err := h.hosts.GetAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list hosts", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]HostResponse, 0, len(hosts))
	for _, rec := range hosts {
		resp = append(resp, toHostResponse(rec))
	}
	sort.Slice(resp, func(i, j int) bool { return resp[i].ID < resp[j].ID })

	writeJSON(w, http.StatusOK, resp)
}

// GetHost returns a single issuance record by id.
func (h *Handler) GetHost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.hosts.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get host", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if rec == nil {
		writeError(w, http.StatusNotFound, "host not found")
		return
	}

	writeJSON(w, http.StatusOK, toHostResponse(*rec))
}

// UpdateHost replaces the issuance record for an already-issued host.
func (h *Handler) UpdateHost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateHostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec := model.HostRecord{ID: id, IssueDate: req.IssueDate, Issuer: req.Issuer}

	if err := h.hosts.Update(r.Context(), rec); err != nil {
		if errors.Is(err, driven.ErrNotFound) {
			writeError(w, http.StatusNotFound, "host not found")
			return
		}
		h.logger.Error("failed to update host", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toHostResponse(rec))
}

// RemoveHost deletes the issuance record for id. Removing an unknown id
// succeeds, matching the store's no-op semantics.
func (h *Handler) RemoveHost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.hosts.Remove(r.Context(), id); err != nil {
		h.logger.Error("failed to remove host", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Generate renders an ad-hoc certificate from the request details and returns
// it in the requested output format.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	format := model.FormatSVG
	if req.OutputFormat != "" {
		var err error
		format, err = model.ParseOutputFormat(req.OutputFormat)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	out, err := h.certs.Generate(r.Context(), certificate.Details{
		Recipient:  req.Recipient,
		Issuer:     req.IssuerName,
		IssuerRole: req.IssuerRole,
	}, format)
	if err != nil {
		if errors.Is(err, driven.ErrConversionFailed) {
			h.logger.Error("certificate conversion failed", "format", format, "error", err)
			writeError(w, http.StatusBadGateway, "certificate conversion failed")
			return
		}
		h.logger.Error("certificate generation failed", "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeBinary(w, format, out)
}

// HostCertificate serves the certificate for an issued host, addressed as
// /certificates/{id}.{ext}. This is the URL published in issuance
// notifications.
func (h *Handler) HostCertificate(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")

	// The id may itself contain dots, so only the final segment is the
	// extension.
	dot := strings.LastIndex(file, ".")
	if dot <= 0 || dot == len(file)-1 {
		writeError(w, http.StatusNotFound, "certificate not found")
		return
	}
	id := file[:dot]

	format, err := model.ParseOutputFormat(file[dot+1:])
	if err != nil {
		writeError(w, http.StatusNotFound, "certificate not found")
		return
	}

	out, err := h.certs.ForHost(r.Context(), id, format)
	if err != nil {
		switch {
		case errors.Is(err, driven.ErrNotFound):
			writeError(w, http.StatusNotFound, "certificate not found")
		case errors.Is(err, driven.ErrConversionFailed):
			h.logger.Error("certificate conversion failed", "id", id, "format", format, "error", err)
			writeError(w, http.StatusBadGateway, "certificate conversion failed")
		default:
			h.logger.Error("failed to serve certificate", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeBinary(w, format, out)
}
