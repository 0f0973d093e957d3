package repositories

import (
	"context"
	"time"

	"user-profile-api/internal/models"
)

// UserRepository persists users together with their address sets. Every
// write runs in one transaction covering the user row, the address
// replacement and the read-back.
type UserRepository interface {
	// Upsert creates the user for uid or merges update into the existing row.
	Upsert(ctx context.Context, uid string, update *models.ProfileUpdate) (*models.User, error)
	// Update applies only the supplied fields to an existing user.
	Update(ctx context.Context, lookup models.Lookup, update *models.ProfileUpdate) (*models.User, error)
	Find(ctx context.Context, lookup models.Lookup) (*models.User, error)
	// Delete removes the user and its addresses and returns the deleted row.
	Delete(ctx context.Context, lookup models.Lookup) (*models.User, error)
	Ping(ctx context.Context) error
}

// UserCache holds read-through copies of users keyed by identity-provider uid.
type UserCache interface {
	// GetUser returns nil, nil on a miss.
	GetUser(ctx context.Context, uid string) (*models.User, error)
	// Version returns the write generation for uid. Read it before the
	// database read that feeds SetUser.
	Version(ctx context.Context, uid string) (int64, error)
	// SetUser stores user only if no write has bumped the generation since
	// version was read.
	SetUser(ctx context.Context, user *models.User, version int64, expiration time.Duration) error
	// InvalidateUser bumps the generation and drops the cached copy.
	InvalidateUser(ctx context.Context, uid string) error
	Ping(ctx context.Context) error
}
