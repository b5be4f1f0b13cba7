package userstore

import (
	"context"

	"github.com/dalemusser/bilanhub/internal/app/store"
	"github.com/dalemusser/bilanhub/internal/app/system/auth"
	"github.com/dalemusser/bilanhub/internal/app/system/timeouts"
	"github.com/dalemusser/bilanhub/internal/domain/models"
)

// Fetcher implements auth.UserFetcher on top of a UserStore so role changes
// and deactivations take effect on the next request.
type Fetcher struct {
	users store.UserStore
}

// NewFetcher creates a UserFetcher backed by the given store.
func NewFetcher(users store.UserStore) *Fetcher {
	return &Fetcher{users: users}
}

// FetchUser loads a user by id. It returns nil if the user is missing,
// deactivated, or the lookup fails.
func (f *Fetcher) FetchUser(ctx context.Context, userID int64) *auth.SessionUser {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	u, err := f.users.GetByID(ctx, userID)
	if err != nil {
		return nil
	}
	return sessionUser(u)
}

// FetchByOpenID loads a user by external identity subject.
func (f *Fetcher) FetchByOpenID(ctx context.Context, openID string) *auth.SessionUser {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	u, err := f.users.GetByOpenID(ctx, openID)
	if err != nil {
		return nil
	}
	return sessionUser(u)
}

func sessionUser(u models.User) *auth.SessionUser {
	if !u.Enabled() {
		return nil
	}
	return &auth.SessionUser{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           string(u.Role),
		OrganizationID: u.OrganizationID,
	}
}
