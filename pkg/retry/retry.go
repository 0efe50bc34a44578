// Package retry runs an operation again after transient failures.
package retry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Backoff gives the pause before attempt n+1, n starting at 1.
type Backoff func(n int) time.Duration

// Exponential doubles base per attempt plus up to half of it as jitter.
func Exponential(base time.Duration) Backoff {
	return func(n int) time.Duration {
		d := base << n
		if j := int64(d / 2); j > 0 {
			d += time.Duration(rand.Int64N(j) + 1)
		}
		return d
	}
}

// Policy bounds the attempts. Retryable nil retries every error.
type Policy struct {
	Attempts  int
	Backoff   Backoff
	Retryable func(error) bool
}

// Call runs fn until it succeeds, fails with an error Retryable rejects, or
// Attempts are used up; the last error is returned.
func Call[T any](ctx context.Context, p Policy, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Backoff == nil {
		p.Backoff = Exponential(100 * time.Millisecond)
	}

	for n := 1; ; n++ {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		if n == p.Attempts || (p.Retryable != nil && !p.Retryable(err)) {
			return zero, err
		}
		wait := time.NewTimer(p.Backoff(n))
		select {
		case <-ctx.Done():
			wait.Stop()
			return zero, fmt.Errorf("%w: %w", ctx.Err(), err)
		case <-wait.C:
		}
	}
}
