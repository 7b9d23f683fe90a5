// Package cache provides the render-artifact cache for tasuki2sgf.
//
// Rendering an SGF to an image shells out to sgf-render (and optionally
// svgcleaner), which dominates conversion time for large collections. The
// cache keys rendered artifacts by the SGF content and the render options,
// so re-running a conversion only invokes the renderer for problems whose
// output actually changed.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores rendered artifacts as opaque byte blobs.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// RenderKeyOpts are the render settings that participate in the cache key.
// Two renders with the same SGF content but different options must not
// share an artifact.
type RenderKeyOpts struct {
	Style      string `json:"style"`
	ShrinkWrap string `json:"shrink_wrap"`
	Format     string `json:"format"`
}

// RenderKey derives the cache key for a rendered artifact from the hash of
// the SGF content and the render options.
func RenderKey(sgfHash string, opts RenderKeyOpts) string {
	return hashKey("render", sgfHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
