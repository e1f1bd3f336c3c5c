package retrylimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (s statusErr) Error() string   { return http.StatusText(int(s)) }
func (s statusErr) StatusCode() int { return int(s) }

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:    attempts,
		InitialDelay:   time.Millisecond,
		MaxDelay:       2 * time.Millisecond,
		RateLimitDelay: time.Millisecond,
		Multiplier:     2,
	}
}

func TestWithRetryConfigRetriesTransientErrors(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		if calls < 3 {
			return statusErr(http.StatusTooManyRequests)
		}
		return nil
	}, nil, fastConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryConfigStopsOnFatal(t *testing.T) {
	boom := errors.New("missing permissions")
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return Fatal(boom)
	}, nil, fastConfig(5))

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWithRetryConfigGivesUp(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return statusErr(http.StatusBadGateway)
	}, nil, fastConfig(2))

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, IsServerError(err))
}

func TestFatalNil(t *testing.T) {
	assert.NoError(t, Fatal(nil))
}

func TestAdaptiveLimiterBounds(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 8, 1, 0.5)
	assert.Equal(t, 4.0, lim.CurrentLimit())

	lim.RateLimited()
	assert.Equal(t, 2.0, lim.CurrentLimit())
	lim.RateLimited()
	lim.RateLimited()
	assert.Equal(t, 1.0, lim.CurrentLimit())

	// Success is ignored for ten seconds after an error.
	lim.Success()
	assert.Equal(t, 1.0, lim.CurrentLimit())
}

func TestAdaptiveLimiterClimbsOnSuccess(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 5, 1, 0.5)
	lim.Success()
	lim.Success()
	assert.Equal(t, 5.0, lim.CurrentLimit())
}
