// Package retry runs a task with a bounded number of attempts and an
// escalating delay between them. Exhaustion is reported as an absent
// value, never as a propagated failure or panic.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/panics"
)

// Config bounds the retries.
type Config struct {
	MaxAttempts int           // total attempts, including the first
	BaseDelay   time.Duration // delay before the second attempt; doubles after

	// OnRetry is called before each delay with the attempt that just failed.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultConfig returns three attempts with a 200ms base delay.
func DefaultConfig() Config {
	return Config{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond}
}

// Outcome is the result of Do. OK is false when every attempt failed, in
// which case Value is the zero value and Err holds the last failure.
type Outcome[T any] struct {
	Value    T
	OK       bool
	Attempts int
	Err      error
}

// Do calls fn until it succeeds or the attempts run out. A panic inside fn
// counts as a failed attempt. Cancelling ctx stops further attempts.
func Do[T any](ctx context.Context, cfg Config, fn func(context.Context) (T, error)) Outcome[T] {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var out Outcome[T]
	delay := cfg.BaseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		out.Attempts = attempt

		value, err := call(ctx, fn)
		if err == nil {
			out.Value = value
			out.OK = true
			out.Err = nil
			return out
		}
		out.Err = err

		if attempt == attempts {
			break
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, delay, err)
		}
		if !sleep(ctx, delay) {
			out.Err = fmt.Errorf("retry cancelled after attempt %d: %w", attempt, ctx.Err())
			break
		}
		delay *= 2
	}
	return out
}

// Delays returns the waits Do performs between attempts for cfg.
func Delays(cfg Config) []time.Duration {
	var out []time.Duration
	delay := cfg.BaseDelay
	for i := 1; i < cfg.MaxAttempts; i++ {
		out = append(out, delay)
		delay *= 2
	}
	return out
}

func call[T any](ctx context.Context, fn func(context.Context) (T, error)) (value T, err error) {
	var pc panics.Catcher
	pc.Try(func() {
		value, err = fn(ctx)
	})
	if r := pc.Recovered(); r != nil {
		var zero T
		return zero, r.AsError()
	}
	return value, err
}

func sleep(ctx context.Context, d time.Duration) bool {
	if err := ctx.Err(); err != nil {
		return false
	}
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
