// Package cache provides content-addressed caching for solve reports.
//
// A solve is deterministic in the serialized model and the problem kind,
// so reports are cached under a key derived from both. Editing the graph
// changes its serialization and therefore the key; stale entries simply
// stop being referenced and expire.
//
// Backends: a null cache (caching disabled), a file cache for the CLI, a
// Redis cache and a MongoDB cache for server deployments. The backend is
// chosen by configuration; all callers go through the Cache interface.
package cache

import (
	"context"
	"time"
)

// TTLReport is how long cached solve reports stay valid.
const TTLReport = 24 * time.Hour

// Cache is the interface all backends implement.
type Cache interface {
	// Get retrieves a value. The second return reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A TTL of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// SolveKey generates a key for a solve report from the hash of the
	// serialized (post-balance) model and the problem kind.
	SolveKey(modelHash, kind string) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SolveKey generates a key for a solve report.
func (DefaultKeyer) SolveKey(modelHash, kind string) string {
	return hashKey("solve", modelHash, kind)
}
