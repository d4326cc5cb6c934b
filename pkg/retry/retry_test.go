package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	return Config{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

func TestDo_SuccessDoesNotRetry(t *testing.T) {
	calls := 0
	out := Do(context.Background(), fastConfig(), func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	assert.True(t, out.OK)
	assert.Equal(t, "ok", out.Value)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, 1, calls)
	assert.NoError(t, out.Err)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	out := Do(context.Background(), fastConfig(), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("flaky")
		}
		return 42, nil
	})

	assert.True(t, out.OK)
	assert.Equal(t, 42, out.Value)
	assert.Equal(t, 3, out.Attempts)
}

func TestDo_ExhaustionReturnsAbsent(t *testing.T) {
	boom := errors.New("boom")
	var delays []time.Duration
	cfg := fastConfig()
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		delays = append(delays, delay)
		assert.ErrorIs(t, err, boom)
	}

	out := Do(context.Background(), cfg, func(context.Context) (*int, error) {
		return nil, boom
	})

	assert.False(t, out.OK)
	assert.Nil(t, out.Value)
	assert.Equal(t, 3, out.Attempts)
	assert.ErrorIs(t, out.Err, boom)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, delays)
}

func TestDo_PanicCountsAsFailure(t *testing.T) {
	calls := 0
	out := Do(context.Background(), fastConfig(), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			panic("analyzer exploded")
		}
		return "recovered", nil
	})

	require.True(t, out.OK)
	assert.Equal(t, "recovered", out.Value)
	assert.Equal(t, 2, out.Attempts)
}

func TestDo_PanicEveryTime(t *testing.T) {
	out := Do(context.Background(), fastConfig(), func(context.Context) (string, error) {
		panic("always")
	})

	assert.False(t, out.OK)
	require.Error(t, out.Err)
	assert.Contains(t, out.Err.Error(), "always")
}

func TestDo_CancelledStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	out := Do(ctx, Config{MaxAttempts: 5, BaseDelay: time.Hour}, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("fail")
	})

	assert.False(t, out.OK)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, out.Err, context.Canceled)
}

func TestDelays(t *testing.T) {
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 400 * time.Millisecond}, Delays(DefaultConfig()))
	assert.Empty(t, Delays(Config{MaxAttempts: 1, BaseDelay: time.Second}))
}
