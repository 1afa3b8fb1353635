package session

import (
	"context"
	"time"
)

// Store is the registry of live session ids. A verified token whose sid is
// absent here has been logged out (or expired server-side) and is rejected,
// which is what makes logout an actual revocation rather than a client-side
// courtesy.
type Store interface {
	Save(ctx context.Context, sid string, ttl time.Duration) error
	Exists(ctx context.Context, sid string) (bool, error)
	Delete(ctx context.Context, sid string) error
}
