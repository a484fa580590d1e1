// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_RunAll(t *testing.T) {
	var count int64

	pool := NewWorkerPool(4)
	err := pool.Run(context.Background(),
		func() error { atomic.AddInt64(&count, 1); return nil },
		func() error { atomic.AddInt64(&count, 1); return nil },
		func() error { atomic.AddInt64(&count, 1); return nil },
	)

	require.NoError(t, err)
	assert.Equal(t, int64(3), atomic.LoadInt64(&count))
}

func TestWorkerPool_FirstErrorReturned(t *testing.T) {
	boom := errors.New("boom")
	var count int64

	pool := NewWorkerPool(1)
	err := pool.Run(context.Background(),
		func() error { atomic.AddInt64(&count, 1); return boom },
		func() error { atomic.AddInt64(&count, 1); return nil },
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	// Every function still ran despite the earlier failure.
	assert.Equal(t, int64(2), atomic.LoadInt64(&count))
}

func TestWorkerPool_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran int64
	pool := NewWorkerPool(2)
	err := pool.Run(ctx, func() error { atomic.AddInt64(&ran, 1); return nil })

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), atomic.LoadInt64(&ran))
}

func TestNewWorkerPool_MinimumOfOne(t *testing.T) {
	pool := NewWorkerPool(0)
	require.NotNil(t, pool)

	err := pool.Run(context.Background(), func() error { return nil })
	assert.NoError(t, err)
}
