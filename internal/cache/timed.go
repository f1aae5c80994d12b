// Package cache provides the staleness-gated snapshot cache used by every
// data-backed plugin.
package cache

import "time"

// TimedCache holds one complete snapshot of T together with the time it
// was last refreshed. It is not safe for concurrent use; the bot's
// dispatcher runs plugins one command at a time.
type TimedCache[T any] struct {
	value       T
	lastRefresh time.Time
	ttl         time.Duration
	populated   bool
}

// NewTimedCache creates a cache holding initial. The zero refresh time
// makes the cache stale from the start, so the first read triggers a fetch.
func NewTimedCache[T any](ttl time.Duration, initial T) *TimedCache[T] {
	return &TimedCache[T]{value: initial, ttl: ttl}
}

// IsStale reports whether more than ttl has passed since the last refresh.
func (c *TimedCache[T]) IsStale(now time.Time) bool {
	return now.Sub(c.lastRefresh) > c.ttl
}

// Refresh replaces the snapshot wholesale. Only call it with the result of
// a successful fetch.
func (c *TimedCache[T]) Refresh(now time.Time, value T) {
	c.value = value
	c.lastRefresh = now
	c.populated = true
}

// Value returns the current snapshot, stale or not.
func (c *TimedCache[T]) Value() T {
	return c.value
}

// Populated reports whether Refresh has ever been called.
func (c *TimedCache[T]) Populated() bool {
	return c.populated
}

// LastRefresh returns the time of the last successful refresh.
func (c *TimedCache[T]) LastRefresh() time.Time {
	return c.lastRefresh
}

// TTL returns the configured time-to-live.
func (c *TimedCache[T]) TTL() time.Duration {
	return c.ttl
}
