// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Backend names accepted by New.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options selects and configures a cache backend.
type Options struct {
	Backend         string
	CleanupInterval time.Duration
	Redis           RedisConfig
}

// New builds the configured backend. An empty backend means none.
func New(ctx context.Context, opts Options, logger zerolog.Logger) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NewNoopCache(), nil
	case BackendMemory:
		interval := opts.CleanupInterval
		if interval <= 0 {
			interval = time.Minute
		}
		return NewMemoryCache(interval), nil
	case BackendRedis:
		rc, err := NewRedisCache(ctx, opts.Redis, logger)
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (supported: none, memory, redis)", opts.Backend)
	}
}
