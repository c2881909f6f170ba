package repository

import (
	"context"
	"time"

	"github.com/caps24escola/pixel-world/internal/domain"
)

// SessionRepository stores controller session records. Implementations keep
// records with an expiry; an expired record behaves like a missing one.
type SessionRepository interface {
	// Save stores a new session record that expires after ttl.
	Save(ctx context.Context, session *domain.Session, ttl time.Duration) error

	// FindByID returns ErrSessionNotFound when the record is missing or expired.
	FindByID(ctx context.Context, id string) (*domain.Session, error)

	// Exists reports whether a record with this ID is stored.
	Exists(ctx context.Context, id string) (bool, error)

	// Touch sets LastActive to at and pushes the expiry ttl into the future.
	Touch(ctx context.Context, id string, at time.Time, ttl time.Duration) error

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error
}
