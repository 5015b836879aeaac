package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/dstanley/certhost/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeBinary writes a rendered certificate with its content type. Certificate
// bytes are never cached: the document embeds the issue date and template
// changes must take effect immediately.
func writeBinary(w http.ResponseWriter, format model.OutputFormat, data []byte) {
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

// CandidateResponse is one discovered certificate candidate.
type CandidateResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Locale   string `json:"locale"`
}

// HostResponse is the JSON representation of an issuance record.
type HostResponse struct {
	ID        string `json:"id"`
	IssueDate string `json:"issueDate"`
	Issuer    string `json:"issuer"`
}

// UpdateHostRequest is the JSON body for the update host endpoint.
type UpdateHostRequest struct {
	IssueDate string `json:"issueDate"`
	Issuer    string `json:"issuer"`
}

// GenerateRequest is the JSON body for the ad-hoc certificate endpoint.
type GenerateRequest struct {
	Recipient    string `json:"recipient"`
	IssuerName   string `json:"issuerName"`
	IssuerRole   string `json:"issuerRole"`
	OutputFormat string `json:"outputFormat"`
}

// toHostResponse converts a domain HostRecord to its JSON representation.
func toHostResponse(rec model.HostRecord) HostResponse {
	return HostResponse{
		ID:        rec.ID,
		IssueDate: rec.IssueDate,
		Issuer:    rec.Issuer,
	}
}
