// Package worker runs slow subprocess-backed work on a bounded set of
// background goroutines.
package worker

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/gannonh/kata-cloud-agents/internal/errors"
	"github.com/gannonh/kata-cloud-agents/internal/logging"
)

// DefaultSize is the pool size used when none is configured.
const DefaultSize = 4

// Pool bounds the number of concurrently running jobs.
type Pool struct {
	sem  *semaphore.Weighted
	size int
	wg   sync.WaitGroup
}

// New returns a pool running at most size jobs at once.
func New(size int) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: size,
	}
}

// Size returns the maximum number of concurrent jobs.
func (p *Pool) Size() int {
	return p.size
}

// Wait blocks until every started job has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}

type result[T any] struct {
	val T
	err error
}

// Do runs fn on the pool and waits for its result.
//
// Waiting for a free slot honours ctx. Once started, fn runs with a context
// detached from ctx's cancellation and always runs to completion; if ctx is
// done first, Do returns ctx.Err() and the job's result is discarded.
func Do[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}

	done := make(chan result[T], 1)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		val, err := run(context.WithoutCancel(ctx), fn)
		done <- result[T]{val: val, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		logging.Debug("caller stopped waiting, job continues in background", "component", logging.CompWorker)
		return zero, ctx.Err()
	}
}

// DoDetached is like Do, but the job is queued even if ctx is done before a
// slot frees up. The caller stops waiting when ctx is done; fn still runs
// once a slot is free, and Wait covers it.
func DoDetached[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) (T, error) {
	done := make(chan result[T], 1)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		val, err := Do(context.WithoutCancel(ctx), p, fn)
		done <- result[T]{val: val, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func run[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (val T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logging.Error("worker job panicked", "component", logging.CompWorker, "panic", rec)
			err = errors.New(errors.KindUnknown, fmt.Sprintf("worker job panicked: %v", rec))
		}
	}()
	return fn(ctx)
}
