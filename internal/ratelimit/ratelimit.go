// Package ratelimit provides a wrapper around golang.org/x/time/rate.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with convenience constructors.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter allowing requestsPerMinute with a burst of 10% of the rate.
func New(requestsPerMinute int) *Limiter {
	rps := float64(requestsPerMinute) / 60.0
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// NewWithBurst creates a limiter with an explicit burst.
func NewWithBurst(requestsPerSecond float64, burst int) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Every creates a limiter that releases one event per interval with no burst.
// The first event is released immediately.
func Every(interval time.Duration) *Limiter {
	if interval <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether an event may happen now.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Limit returns the configured events per second.
func (l *Limiter) Limit() rate.Limit {
	return l.limiter.Limit()
}

// Pace calls fn once per released token, in order, stopping at the first
// error or when ctx is cancelled. It returns how many calls were made.
func Pace[T any](ctx context.Context, l *Limiter, items []T, fn func(ctx context.Context, item T) error) (int, error) {
	done := 0
	for _, it := range items {
		if err := l.Wait(ctx); err != nil {
			return done, err
		}
		if err := fn(ctx, it); err != nil {
			return done, err
		}
		done++
	}
	return done, nil
}
