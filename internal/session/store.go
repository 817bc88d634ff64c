// Package session persists the hand-off record between the estimation flow
// and the booking hub for the lifetime of one session.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/gleamhq/estimator/internal/models"
)

// ErrNotFound is returned when no record exists for a session id.
var ErrNotFound = errors.New("session record not found")

// DefaultTTL bounds how long a hand-off record survives. Fifteen minutes
// matches the booking hub's hold timer.
const DefaultTTL = 15 * time.Minute

// Store persists hand-off records keyed by session id. Records expire after
// their TTL; there is no durable persistence beyond the session.
type Store interface {
	// Save writes a record under its session id with the given TTL.
	Save(ctx context.Context, record models.HandoffRecord, ttl time.Duration) error
	// Load retrieves the record for a session id.
	// Returns ErrNotFound when absent or expired.
	Load(ctx context.Context, sessionID string) (*models.HandoffRecord, error)
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
