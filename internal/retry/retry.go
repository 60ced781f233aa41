// Package retry runs fallible remote calls with exponential backoff and jitter.
//
// The delay before attempt k+1 is base*2^(k-1) plus a uniform jitter in
// [0, maxJitter). After the last attempt the final error is returned to the
// caller; nothing is swallowed at this layer. Retried operations must be safe
// to repeat, which is why submissions use a smaller attempt budget.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// Defaults for remote calls.
const (
	DefaultAttempts = 5
	SubmitAttempts  = 3
	BaseDelay       = 200 * time.Millisecond
	MaxJitter       = 500 * time.Millisecond
)

// Executor holds a retry policy. The zero value is not usable; use New.
type Executor struct {
	attempts  int
	base      time.Duration
	maxJitter time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	jitter    func(upper time.Duration) time.Duration
	onRetry   func(attempt int, delay time.Duration, err error)
}

// Option configures an Executor.
type Option func(*Executor)

// WithAttempts sets the total number of attempts (first call included).
func WithAttempts(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.attempts = n
		}
	}
}

// WithBaseDelay sets the base backoff delay.
func WithBaseDelay(d time.Duration) Option {
	return func(e *Executor) { e.base = d }
}

// WithMaxJitter sets the upper bound of the random jitter.
func WithMaxJitter(d time.Duration) Option {
	return func(e *Executor) { e.maxJitter = d }
}

// WithSleep replaces the context-aware sleep, mainly for tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) { e.sleep = fn }
}

// WithJitter replaces the jitter source, mainly for tests.
func WithJitter(fn func(upper time.Duration) time.Duration) Option {
	return func(e *Executor) { e.jitter = fn }
}

// WithOnRetry registers a hook called before each backoff sleep.
func WithOnRetry(fn func(attempt int, delay time.Duration, err error)) Option {
	return func(e *Executor) { e.onRetry = fn }
}

// New creates an Executor with the default policy (5 attempts, 200ms base,
// 500ms jitter) adjusted by opts.
func New(opts ...Option) *Executor {
	e := &Executor{
		attempts:  DefaultAttempts,
		base:      BaseDelay,
		maxJitter: MaxJitter,
		sleep:     sleepContext,
		jitter:    uniformJitter,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Attempts returns the configured attempt budget.
func (e *Executor) Attempts() int {
	return e.attempts
}

// With returns a copy of e with opts applied.
func (e *Executor) With(opts ...Option) *Executor {
	cp := *e
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// Delay returns the wait before the attempt following attempt (1-based).
func (e *Executor) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := e.base << (attempt - 1)
	if e.maxJitter > 0 {
		d += e.jitter(e.maxJitter)
	}
	return d
}

// Run executes op until it succeeds, returns a permanent error, or the
// attempt budget is spent.
func (e *Executor) Run(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := Do(ctx, e, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Do executes op with e's policy and returns its result.
func Do[T any](ctx context.Context, e *Executor, op func(ctx context.Context) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)

	for attempt := 1; attempt <= e.attempts; attempt++ {
		res, err := op(ctx)
		if err == nil {
			return res, nil
		}
		lastErr = err

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		if attempt == e.attempts {
			break
		}

		delay := e.Delay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, delay, err)
		}
		if err := e.sleep(ctx, delay); err != nil {
			return zero, fmt.Errorf("retry interrupted after %d attempts: %w", attempt, errors.Join(err, lastErr))
		}
	}

	return zero, fmt.Errorf("after %d attempts: %w", e.attempts, lastErr)
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. Do returns the wrapped error
// immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func uniformJitter(upper time.Duration) time.Duration {
	return rand.N(upper)
}
