package cache

import (
	"context"
	"log/slog"
	"time"

	"butler/internal/core"
	"butler/internal/metrics"
)

// DefaultFetchTimeout bounds a single refresh attempt when none is configured.
const DefaultFetchTimeout = 20 * time.Second

// Refresher binds a TimedCache to the provider that fills it.
type Refresher[T any] struct {
	name     string
	cache    *TimedCache[T]
	provider core.Provider[T]
	timeout  time.Duration
	now      func() time.Time
}

// RefresherOption customizes a Refresher.
type RefresherOption[T any] func(*Refresher[T])

// WithTimeout sets the per-attempt fetch timeout.
func WithTimeout[T any](d time.Duration) RefresherOption[T] {
	return func(r *Refresher[T]) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock[T any](now func() time.Time) RefresherOption[T] {
	return func(r *Refresher[T]) { r.now = now }
}

// NewRefresher creates a refresher named name (used in logs and metrics)
// with an empty cache of the given ttl.
func NewRefresher[T any](name string, ttl time.Duration, provider core.Provider[T], opts ...RefresherOption[T]) *Refresher[T] {
	var zero T
	r := &Refresher[T]{
		name:     name,
		cache:    NewTimedCache(ttl, zero),
		provider: provider,
		timeout:  DefaultFetchTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get refreshes the cache if it is stale and returns the current snapshot.
// ok is false only when no fetch has ever succeeded. Fetch failures are
// logged and the previous snapshot is served.
func (r *Refresher[T]) Get(ctx context.Context) (value T, ok bool) {
	now := r.now()
	if r.cache.IsStale(now) {
		r.refresh(ctx, now)
	}
	return r.cache.Value(), r.cache.Populated()
}

// Cache exposes the underlying TimedCache.
func (r *Refresher[T]) Cache() *TimedCache[T] {
	return r.cache
}

// Name returns the refresher's name.
func (r *Refresher[T]) Name() string {
	return r.name
}

func (r *Refresher[T]) refresh(ctx context.Context, now time.Time) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	value, err := r.provider.Fetch(fetchCtx)
	if err != nil {
		metrics.CacheRefreshes.WithLabelValues(r.name, metrics.ResultFailure).Inc()
		attrs := []any{"cache", r.name, "error", err, "duration", time.Since(start)}
		if r.cache.Populated() {
			slog.Warn("refresh failed, serving stale data", append(attrs, "age", now.Sub(r.cache.LastRefresh()))...)
		} else {
			slog.Error("refresh failed, no data available", attrs...)
		}
		return
	}

	r.cache.Refresh(now, value)
	metrics.CacheRefreshes.WithLabelValues(r.name, metrics.ResultSuccess).Inc()
	metrics.CacheLastRefresh.WithLabelValues(r.name).Set(float64(now.Unix()))
	slog.Debug("cache refreshed", "cache", r.name, "duration", time.Since(start))
}
