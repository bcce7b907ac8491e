package pending

import (
	"context"
	"errors"
	"time"
)

var (
	ErrExists   = errors.New("pending registration exists")
	ErrNotFound = errors.New("pending registration not found")
)

// DefaultRetention is how long a registration may live before it is purged,
// regardless of how many codes were issued for it.
const DefaultRetention = time.Hour

// Repository persists pending registrations keyed by email.
//
// Records older than the retention window are treated as absent by every
// method; implementations may also sweep them in the background.
type Repository interface {
	// Insert stores reg unless a live registration for reg.Email exists, in
	// which case it returns ErrExists.
	Insert(ctx context.Context, reg Registration) error

	FindByEmail(ctx context.Context, email string) (Registration, error)
	FindByID(ctx context.Context, id string) (Registration, error)

	// RefreshCode atomically replaces the code and its expiry on the live
	// registration for email and returns the updated record.
	RefreshCode(ctx context.Context, email, code string, expiresAt time.Time) (Registration, error)

	// DeleteByID removes the registration with id. Deleting a record that is
	// already gone is not an error.
	DeleteByID(ctx context.Context, id string) error

	// Retention is the lifetime of a record measured from its CreatedAt.
	Retention() time.Duration
}
