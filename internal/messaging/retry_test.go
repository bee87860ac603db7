package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	attempts, err := Retry(context.Background(), RetryPolicy{Attempts: 5}, zap.NewNop(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("refused")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
}

func TestRetryReturnsLastError(t *testing.T) {
	calls := 0
	attempts, err := Retry(context.Background(), RetryPolicy{Attempts: 5, Delay: time.Millisecond}, zap.NewNop(), func(context.Context) error {
		calls++
		return errors.New("attempt failed")
	})
	require.Error(t, err)
	assert.Equal(t, 5, attempts)
	assert.Equal(t, 5, calls)
}

func TestRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts, err := Retry(ctx, RetryPolicy{Attempts: 5, Delay: time.Hour}, zap.NewNop(), func(context.Context) error {
		return errors.New("refused")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDefaultConnectRetry(t *testing.T) {
	assert.Equal(t, 5, DefaultConnectRetry.Attempts)
	assert.Equal(t, 3*time.Second, DefaultConnectRetry.Delay)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "UNINITIALIZED", StateUninitialized.String())
	assert.Equal(t, "LISTENING", StateListening.String())
	assert.True(t, StateConnected.Ready())
	assert.False(t, StateDisconnected.Ready())
}
