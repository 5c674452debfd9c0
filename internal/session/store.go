// Package session keeps calculator surfaces addressable by id so that a
// remote front-end can drive one over HTTP. Each session owns its own
// display state and history ledger.
package session

import (
	"context"
	"errors"
	"time"

	"scicalc/internal/accumulator"
)

var ErrNotFound = errors.New("session not found")

// Session is one calculator surface.
type Session struct {
	ID        string
	State     accumulator.State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists sessions.
type Store interface {
	// Get returns the session with id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// Put creates or replaces a session.
	Put(ctx context.Context, s *Session) error
	// Delete removes a session. Deleting a missing session returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// Close releases resources.
	Close() error
}
