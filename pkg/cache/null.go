package cache

import (
	"context"
	"time"
)

// NullCache stores nothing: every drawing and export is rendered afresh.
// It backs --no-cache and the "none" backend.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }

var _ Cache = (*NullCache)(nil)
