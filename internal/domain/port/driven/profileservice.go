package driven

import (
	"context"

	"github.com/dstanley/certhost/internal/domain/model"
)

// ProfileService defines the driven port for the login/user-profile service.
type ProfileService interface {
	// FetchProfile returns the profile for username, or nil when the login
	// service does not know the user. Failures wrap ErrFetchFailed.
	FetchProfile(ctx context.Context, username string) (*model.Profile, error)
}
