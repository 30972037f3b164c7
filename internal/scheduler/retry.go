package scheduler

import (
	"context"
	"time"
)

// RetryPolicy retries a failing run a bounded number of times with a fixed
// delay. After the last attempt the final error is returned and the caller
// waits for its next natural tick instead of escalating.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Do runs fn until it succeeds, attempts are exhausted, or ctx is done.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay):
		}
	}
	return err
}
