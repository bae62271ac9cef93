// Package cache stores reduced restart tables between runs.
//
// Reducing a restart file is cheap compared to opening it, but an animation
// of a long run re-reads every restart file on each invocation. The pipeline
// keys every reduction by a fingerprint of its input files and the
// reduction options, so re-rendering with a new size or format skips the
// dataset reads entirely.
//
// # Backends
//
//   - [FileCache] keeps JSON entries under a directory (the CLI default is
//     the user cache dir)
//   - [NullCache] never stores anything; it disables caching
//
// # Keys
//
// [DefaultKeyer] builds keys from a [Fingerprint] of the input paths and
// [ReduceKeyOpts]. [ScopedKeyer] prefixes another keyer, which the CLI uses
// to keep entries of different builds apart.
package cache

import (
	"context"
	"time"
)

// TTLReduce is how long a reduced table stays valid.
const TTLReduce = 7 * 24 * time.Hour

// Cache is a byte store with expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key; a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}
