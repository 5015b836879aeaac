package profileapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstanley/certhost/internal/adapter/driven/profileapi"
	"github.com/dstanley/certhost/internal/domain/port/driven"
)

func newTestClient(t *testing.T, handler http.Handler) *profileapi.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return profileapi.NewClientWithHTTPClient(server.Client(), server.URL)
}

func TestFetchProfile_MapsUserFields(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/username/alice", r.URL.Path)
		_, _ = w.Write([]byte(`{"user":{"email":"alice@example.org","prefLocale":"en-US","sendEngagements":true}}`))
	}))

	profile, err := client.FetchProfile(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, profile)

	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "alice@example.org", profile.Email)
	assert.Equal(t, "en-US", profile.Locale)
	assert.True(t, profile.SendEngagements)
}

func TestFetchProfile_UnknownUserIsNilNotError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	profile, err := client.FetchProfile(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestFetchProfile_ServerErrorIsFetchFailed(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))

	_, err := client.FetchProfile(context.Background(), "alice")

	assert.ErrorIs(t, err, driven.ErrFetchFailed)
}

func TestFetchProfile_EscapesUsername(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/username/weird%2Fname", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"user":{}}`))
	}))

	_, err := client.FetchProfile(context.Background(), "weird/name")
	require.NoError(t, err)
}
