// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

// Package concurrent provides small helpers for running independent
// operations concurrently with an explicit join.
package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs a batch of functions concurrently, bounded by a worker
// limit, and joins on completion.
type WorkerPool struct {
	workers int
}

// NewWorkerPool creates a WorkerPool with the given concurrency limit.
// A limit below one is treated as one.
func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{workers: workers}
}

// Run executes all functions concurrently and waits for every one of them to
// finish. The first non-nil error is returned; remaining functions still run
// to completion so that partial side effects are not silently abandoned.
func (p *WorkerPool) Run(ctx context.Context, fns ...func() error) error {
	g := &errgroup.Group{}
	g.SetLimit(p.workers)

	for _, fn := range fns {
		fn := fn
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn()
		})
	}

	return g.Wait()
}
