// Package passlog provides persistent storage of pass results, so runs can
// be inspected and reproduced later.
package passlog

import (
	"context"
	"errors"
)

// Store persists pass entries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores an entry, overwriting any existing entry for the same
	// (RunID, Kind) pair.
	Save(ctx context.Context, e Entry) error

	// Get retrieves the entry for a run and pass kind.
	// Returns ErrNotFound if no such entry exists.
	Get(ctx context.Context, runID string, kind Kind) (Entry, error)

	// List returns entries ordered newest first. A limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]Entry, error)

	// Delete removes all entries for a run.
	// Returns nil if the run has no entries.
	Delete(ctx context.Context, runID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for pass-record operations.
var (
	// ErrNotFound indicates no entry exists for the requested run and kind.
	ErrNotFound = errors.New("pass record not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("passlog store closed")

	// ErrInvalidEntry indicates an entry is missing its run ID or carries an
	// unknown kind.
	ErrInvalidEntry = errors.New("invalid pass record")
)
