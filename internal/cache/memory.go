package cache

import (
	"context"
	"sync"
	"time"
)

// counterEntry is one fixed window.
type counterEntry struct {
	count     int64
	expiresAt time.Time
}

// isExpired checks if the window has ended.
func (e *counterEntry) isExpired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// MemoryCounter is an in-memory implementation of Counter.
// Use this for development/testing or single-instance deployments.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]*counterEntry
	now     func() time.Time

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// NewMemoryCounter creates a new in-memory counter with automatic cleanup.
func NewMemoryCounter() *MemoryCounter {
	c := &MemoryCounter{
		entries:         make(map[string]*counterEntry),
		now:             time.Now,
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	go c.cleanup()

	return c
}

// Incr increments key within its current window.
func (c *MemoryCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if window <= 0 {
		return 0, 0, ErrInvalidWindow
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry, exists := c.entries[key]
	if !exists || entry.isExpired(now) {
		entry = &counterEntry{expiresAt: now.Add(window)}
		c.entries[key] = entry
	}
	entry.count++

	return entry.count, entry.expiresAt.Sub(now), nil
}

// Len returns the number of tracked windows, expired or not.
func (c *MemoryCounter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the background cleanup goroutine.
func (c *MemoryCounter) Close() error {
	c.stopOnce.Do(func() { close(c.stopCleanup) })
	return nil
}

// cleanup periodically removes expired windows.
func (c *MemoryCounter) cleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

// removeExpired removes all expired windows.
func (c *MemoryCounter) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if entry.isExpired(now) {
			delete(c.entries, key)
		}
	}
}

// Ensure MemoryCounter implements Counter
var _ Counter = (*MemoryCounter)(nil)
