// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRetryConfig(t *testing.T) {
	config := NewRetryConfig(5, 100*time.Millisecond, 5*time.Second)

	assert.Equal(t, 5, config.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, config.BaseDelay)
	assert.Equal(t, 5*time.Second, config.MaxDelay)
}

func TestRetryWithExponentialBackoff_Success(t *testing.T) {
	ctx := context.Background()
	config := RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    100 * time.Millisecond,
	}

	callCount := 0
	fn := func() error {
		callCount++
		return nil
	}

	err := RetryWithExponentialBackoff(ctx, config, fn)

	assert.NoError(t, err)
	assert.Equal(t, 1, callCount, "function should be called once when it succeeds")
}

func TestRetryWithExponentialBackoff_SuccessAfterRetries(t *testing.T) {
	ctx := context.Background()
	config := RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    100 * time.Millisecond,
	}

	callCount := 0
	fn := func() error {
		callCount++
		if callCount < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	start := time.Now()
	err := RetryWithExponentialBackoff(ctx, config, fn)
	elapsed := time.Since(start)

	assert.NoError(t, err)
	assert.Equal(t, 3, callCount, "function should be called three times")
	// First retry: 10ms, second retry: 20ms = 30ms minimum
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond, "should have waited for retries")
}

func TestRetryWithExponentialBackoff_AllAttemptsFail(t *testing.T) {
	ctx := context.Background()
	config := RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    100 * time.Millisecond,
	}

	expectedErr := errors.New("persistent error")
	callCount := 0
	fn := func() error {
		callCount++
		return expectedErr
	}

	err := RetryWithExponentialBackoff(ctx, config, fn)

	require.Error(t, err)
	assert.Equal(t, 3, callCount, "function should be called MaxAttempts times")
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.ErrorIs(t, err, expectedErr)
}

func TestRetryWithExponentialBackoff_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    1 * time.Second,
	}

	callCount := 0
	fn := func() error {
		callCount++
		if callCount == 2 {
			// Cancel context after second attempt
			cancel()
		}
		return errors.New("error requiring retry")
	}

	err := RetryWithExponentialBackoff(ctx, config, fn)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry cancelled")
	assert.ErrorIs(t, err, context.Canceled)
	// Should be called twice (once initially, once before cancellation)
	assert.Equal(t, 2, callCount)
}

func TestRetryWithExponentialBackoff_SingleAttempt(t *testing.T) {
	ctx := context.Background()
	config := RetryConfig{
		MaxAttempts: 1,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    100 * time.Millisecond,
	}

	callCount := 0
	fn := func() error {
		callCount++
		return errors.New("error")
	}

	err := RetryWithExponentialBackoff(ctx, config, fn)

	require.Error(t, err)
	assert.Equal(t, 1, callCount, "should only attempt once")
	assert.Contains(t, err.Error(), "failed after 1 attempts")
}
