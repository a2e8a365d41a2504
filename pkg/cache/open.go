package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Open creates the cache named by backend. dir is used by the file backend
// (empty means [DefaultDir]); redisURL by the redis backend.
func Open(ctx context.Context, backend, dir, redisURL string) (Cache, error) {
	switch backend {
	case BackendNone, "":
		return NewNullCache(), nil
	case BackendFile:
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return NewFileCache(dir)
	case BackendRedis:
		return NewRedisCache(ctx, RedisConfig{URL: redisURL, Prefix: "bedforge:"})
	}
	return nil, fmt.Errorf("%w: %q (must be none, file or redis)", ErrUnknownBackend, backend)
}
