// Package cache provides pluggable storage for computed layouts and rendered
// artifacts.
//
// A [Cache] stores opaque bytes under string keys with an optional TTL.
// Keys are produced by a [Keyer] so that every backend agrees on the key
// format:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.LayoutKey(cache.Hash(graphJSON), cache.LayoutKeyOpts{AspectRatio: 16.0 / 9.0})
//
// Backends:
//
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [MemoryCache]: bounded LRU, used by the HTTP server
//   - [RedisCache] and [MongoCache]: shared caches for multiple server replicas
//
// Only final layout results and artifacts are cached. Solver trees never are.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Cache is a byte store keyed by strings.
//
// Get reports a miss with ok=false and a nil error. Implementations must be
// safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs per entry kind.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Key prefixes per entry kind.
const (
	prefixLayout   = "layout"
	prefixArtifact = "artifact"
)

// LayoutKeyOpts are the inputs besides the graph that change a layout.
type LayoutKeyOpts struct {
	AspectRatio float64 `json:"aspect_ratio"`
	Engine      string  `json:"engine"`
	OffsetMode  string  `json:"offset_mode"`
}

// ArtifactKeyOpts are the inputs besides the layout that change an artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// Keyer generates cache keys.
type Keyer interface {
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey returns the key for a layout of the graph with the given hash.
// The aspect ratio is keyed by its shortest exact decimal form.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey(prefixLayout, graphHash,
		strconv.FormatFloat(opts.AspectRatio, 'g', -1, 64), opts.Engine, opts.OffsetMode)
}

// ArtifactKey returns the key for an artifact rendered from a layout.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(prefixArtifact, layoutHash, opts.Format)
}

// Dir returns the per-user cache directory used by the CLI.
func Dir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "resourcemap"), nil
}
