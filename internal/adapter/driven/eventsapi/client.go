// Package eventsapi implements the EventFeed port against the events
// platform REST API.
package eventsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/dstanley/certhost/internal/domain/model"
	"github.com/dstanley/certhost/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.EventFeed = (*Client)(nil)

// Client fetches events from the platform's REST feed. Responses are cached
// with ETag-based conditional requests so repeated polling cycles stay cheap.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a feed client with an httpcache memory transport and a
// bounded request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   timeout,
		},
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an
// httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// eventJSON mirrors the feed's wire format.
type eventJSON struct {
	ID          json.Number `json:"id"`
	OrganizerID string      `json:"organizerId"`
	BeginDate   string      `json:"beginDate"`
	EndDate     string      `json:"endDate"`
}

// FetchEvents returns events in the given window as
// GET /events?after=<date>&before=<date>. Zero time bounds are omitted.
func (c *Client) FetchEvents(ctx context.Context, after, before time.Time) ([]model.Event, error) {
	q := url.Values{}
	if !after.IsZero() {
		q.Set("after", after.Format("2006-01-02"))
	}
	if !before.IsZero() {
		q.Set("before", before.Format("2006-01-02"))
	}

	endpoint := c.baseURL + "/events"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build events request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w: %w", driven.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch events: %w: events platform returned %s", driven.ErrFetchFailed, resp.Status)
	}

	var raw []eventJSON
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode events: %w: %w", driven.ErrFetchFailed, err)
	}

	events := make([]model.Event, 0, len(raw))
	for _, e := range raw {
		events = append(events, model.Event{
			ID:          e.ID.String(),
			OrganizerID: e.OrganizerID,
			BeginDate:   parseDate(e.BeginDate),
			EndDate:     parseDate(e.EndDate),
		})
	}

	return events, nil
}

// parseDate accepts the two timestamp shapes the feed has been seen to emit.
// Unparsable or empty values come back as the zero time, which the
// eligibility check treats as "date absent".
func parseDate(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
