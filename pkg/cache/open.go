package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Options selects and configures a backend for [Open].
type Options struct {
	Backend       string
	Dir           string // file backend; defaults to [Dir]
	Size          int    // memory backend entry bound
	RedisAddr     string
	MongoURI      string
	MongoDatabase string
}

// Open builds the cache described by opts. An empty backend disables caching.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		dir := opts.Dir
		if dir == "" {
			d, err := Dir()
			if err != nil {
				return nil, fmt.Errorf("resolve cache dir: %w", err)
			}
			dir = d
		}
		return nonNil(NewFileCache(dir))
	case BackendMemory:
		return nonNil(NewMemoryCache(opts.Size))
	case BackendRedis:
		return nonNil(NewRedisCache(ctx, opts.RedisAddr))
	case BackendMongo:
		return nonNil(NewMongoCache(ctx, opts.MongoURI, opts.MongoDatabase, DefaultMongoCollection))
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}

// nonNil keeps a failed constructor from producing a typed-nil Cache.
func nonNil[C Cache](c C, err error) (Cache, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}
