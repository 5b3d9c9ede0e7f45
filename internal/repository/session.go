package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/quote-web/internal/domain"
)

// SessionRepository persists browser sessions. The session store depends on
// this interface so Postgres and the in-memory map are interchangeable.
type SessionRepository interface {
	// Get returns domain.ErrNoSession when the id is unknown.
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Save inserts or replaces the whole record.
	Save(ctx context.Context, s *domain.Session) error
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions whose expiry is at or before cutoff and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)
	Ping(ctx context.Context) error
}
