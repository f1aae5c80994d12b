package transport

import (
	"context"

	"golang.org/x/time/rate"

	"butler/internal/core"
)

// RateLimited wraps a Sender so that it never sends faster than the
// limiter allows. Send blocks until a token is available or ctx ends.
type RateLimited struct {
	next    Sender
	limiter *rate.Limiter
}

// NewRateLimited allows perSecond messages per second with the given burst.
// A non-positive perSecond disables limiting.
func NewRateLimited(next Sender, perSecond float64, burst int) *RateLimited {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{next: next, limiter: rate.NewLimiter(limit, burst)}
}

// Send implements Sender.
func (r *RateLimited) Send(ctx context.Context, target, text string) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return core.NewTransportError("ratelimit", "waiting for send slot", err)
	}
	return r.next.Send(ctx, target, text)
}
