// Package task runs slow work off the interactive loop.
//
// Spawn hands a function to an Executor and returns immediately. The caller
// polls the returned Task with TryJoin once per tick; a result is delivered
// exactly once. A worker that panics never delivers, so callers must treat a
// task that stays pending as a soft failure rather than waiting on it.
package task

import (
	"context"
	"runtime"
	"sync"

	"github.com/couchsplit/couchsplit/internal/logging"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
)

// Executor runs functions in the background.
type Executor interface {
	Go(work func())
}

// Pool is an Executor bounded to a fixed number of concurrent workers.
type Pool struct {
	workers *pool.Pool
	pending sync.WaitGroup
	logger  *logging.Logger
}

// NewPool creates a pool with size workers. A size of zero or less uses
// the number of available CPUs.
func NewPool(size int, logger *logging.Logger) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Pool{
		workers: pool.New().WithMaxGoroutines(size),
		logger:  logger,
	}
}

// Go schedules work without blocking the caller, even when every worker is busy.
func (p *Pool) Go(work func()) {
	p.pending.Add(1)
	go func() {
		defer p.pending.Done()
		p.workers.Go(func() {
			var catcher panics.Catcher
			catcher.Try(work)
			if r := catcher.Recovered(); r != nil {
				p.logger.Error("background task panicked", "panic", r.Value)
			}
		})
	}()
}

// Close waits for all scheduled work to finish. Go must not be called after Close.
func (p *Pool) Close() {
	p.pending.Wait()
	p.workers.Wait()
}

// Inline is an Executor that runs work synchronously on the caller's goroutine.
// Tests use it to make task completion deterministic.
type Inline struct{}

// Go runs work immediately, swallowing a panic the same way Pool does.
func (Inline) Go(work func()) {
	_ = panics.Try(work)
}

// Task is a handle to a single background computation.
type Task[T any] struct {
	result chan T
}

// Spawn schedules work on exec and returns its handle.
func Spawn[T any](exec Executor, work func() T) *Task[T] {
	t := &Task[T]{result: make(chan T, 1)}
	exec.Go(func() {
		t.result <- work()
	})
	return t
}

// TryJoin returns the result if it has been posted and not yet taken.
// It never blocks; after the result has been taken once it reports false again.
func (t *Task[T]) TryJoin() (T, bool) {
	select {
	case v := <-t.result:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Finished reports whether a result is waiting to be taken.
func (t *Task[T]) Finished() bool {
	return len(t.result) > 0
}

// Join blocks until the result is posted or ctx is done.
func (t *Task[T]) Join(ctx context.Context) (T, error) {
	select {
	case v := <-t.result:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
