package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket capping outbound email sends per second.
// Burst is set equal to the rate so no extra burst capacity is allowed
// beyond the configured per-second maximum. In-app delivery needs no
// limiter; it is a no-op once the record is persisted.
type Limiter struct {
	bucket *rate.Limiter
}

// New creates a Limiter with ratePerSec tokens per second.
func New(ratePerSec int) *Limiter {
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec)}
}

// Wait blocks until the limiter grants a token.
// Returns a non-nil error only if ctx is cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.bucket.Wait(ctx)
}
