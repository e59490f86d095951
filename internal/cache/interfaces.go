package cache

import (
	"context"
	"time"
)

// Counter defines fixed-window counting used by the rate limiter.
// This abstraction allows swapping between an in-memory counter (development,
// single instance) and Redis (shared across replicas) without changing the
// middleware.
type Counter interface {
	// Incr increments key and returns the new count together with the time
	// left in the current window. The window starts on the first increment.
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Common cache errors
type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	// ErrInvalidWindow indicates a non-positive window was requested.
	ErrInvalidWindow CacheError = "window must be positive"
)
