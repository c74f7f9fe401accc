package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond, BackoffFactor: 2}
}

func TestDoWithLog_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	var delays []time.Duration

	err := DoWithLog(context.Background(), fastConfig(5), "postgres", func() error {
		calls++
		if calls < 4 {
			return errors.New("connection refused")
		}
		return nil
	}, func(attempt int, err error, next time.Duration) {
		delays = append(delays, next)
	})

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond, 4 * time.Millisecond}, delays)
}

func TestDoWithLog_GivesUp(t *testing.T) {
	boom := errors.New("boom")
	calls := 0

	err := DoWithLog(context.Background(), fastConfig(3), "redis", func() error {
		calls++
		return boom
	}, nil)

	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "redis: max retry attempts (3) exceeded")
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fastConfig(3), func() error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfig_NextDelay(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 200*time.Millisecond, cfg.NextDelay(100*time.Millisecond))
	assert.Equal(t, cfg.MaxDelay, cfg.NextDelay(8*time.Second))
}
