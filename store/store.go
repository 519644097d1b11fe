package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no record exists for a username.
	ErrNotFound = errors.New("credential record not found")
	// ErrMalformed is returned when persisted bytes cannot be decoded.
	ErrMalformed = errors.New("malformed credential record")
	// ErrUnavailable is returned when a remote backend cannot be reached.
	ErrUnavailable = errors.New("credential store unavailable")
)

// Store persists records keyed by username.
//
// Implementations must be safe for concurrent use. Save replaces any existing
// record for the same username.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, username string) (Record, error)
	Delete(ctx context.Context, username string) error
}
