// Package profileapi implements the ProfileService port against the login
// service's user lookup API.
package profileapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dstanley/certhost/internal/domain/model"
	"github.com/dstanley/certhost/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ProfileService = (*Client)(nil)

// Client looks up user profiles by username.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a profile client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
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

// userResponse mirrors the login service's lookup response envelope.
type userResponse struct {
	User struct {
		Email           string `json:"email"`
		PrefLocale      string `json:"prefLocale"`
		SendEngagements bool   `json:"sendEngagements"`
	} `json:"user"`
}

// FetchProfile looks up a user as GET /user/username/<username>.
// An unknown user returns (nil, nil); any other failure wraps ErrFetchFailed.
func (c *Client) FetchProfile(ctx context.Context, username string) (*model.Profile, error) {
	endpoint := c.baseURL + "/user/username/" + url.PathEscape(username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request for %q: %w", username, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch profile for %q: %w: %w", username, driven.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch profile for %q: %w: login service returned %s", username, driven.ErrFetchFailed, resp.Status)
	}

	var raw userResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode profile for %q: %w: %w", username, driven.ErrFetchFailed, err)
	}

	return &model.Profile{
		Username:        username,
		Email:           raw.User.Email,
		Locale:          raw.User.PrefLocale,
		SendEngagements: raw.User.SendEngagements,
	}, nil
}
