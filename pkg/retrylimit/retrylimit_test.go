package retrylimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

func restError(code int) error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: code}}
}

func fastConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialDelay:   time.Millisecond,
		MaxDelay:       2 * time.Millisecond,
		RateLimitDelay: time.Millisecond,
		Multiplier:     2,
	}
}

func TestRetryable(t *testing.T) {
	require.True(t, Retryable(restError(http.StatusTooManyRequests)))
	require.True(t, Retryable(restError(http.StatusBadGateway)))
	require.False(t, Retryable(restError(http.StatusForbidden)))
	require.False(t, Retryable(errors.New("boom")))
	require.Equal(t, 0, StatusCode(nil))
}

func TestWithRetryConfig_RetriesServerErrors(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		if calls < 3 {
			return restError(http.StatusInternalServerError)
		}
		return nil
	}, nil, fastConfig(5))

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestWithRetryConfig_StopsOnClientError(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return restError(http.StatusForbidden)
	}, nil, fastConfig(5))

	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestWithRetryConfig_StopsOnFatal(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return &FatalError{Err: restError(http.StatusBadGateway)}
	}, nil, fastConfig(5))

	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestWithRetryConfig_ExhaustsAttempts(t *testing.T) {
	lim := NewAdaptiveLimiter(100, 1, 100, 1, 0.5)
	err := WithRetryConfig(context.Background(), func() error {
		return restError(http.StatusTooManyRequests)
	}, lim, fastConfig(3))

	require.ErrorContains(t, err, "max attempts (3) exceeded")
	require.Less(t, lim.CurrentLimit(), 100.0)
}
