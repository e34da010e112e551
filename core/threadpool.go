package core

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ThreadPool is a shared handle to a bounded set of workers. Copies of a
// ThreadPool share the same limit, so it can be stored by value as a
// resource and handed to any number of systems.
//
// The zero ThreadPool runs every task on the calling goroutine.
type ThreadPool struct {
	p *pool
}

type pool struct {
	size int
	sem  *semaphore.Weighted
}

// NewThreadPool creates a pool starting at most n workers at once. Callers
// of Run lend their own goroutine when every worker is busy. n <= 0
// selects runtime.GOMAXPROCS(0).
func NewThreadPool(n int) ThreadPool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return ThreadPool{p: &pool{size: n, sem: semaphore.NewWeighted(int64(n))}}
}

// Size returns the worker limit. The zero pool reports 1.
func (tp ThreadPool) Size() int {
	if tp.p == nil {
		return 1
	}
	return tp.p.size
}

// Run executes tasks and waits for all of them. The first error cancels
// the context passed to the remaining tasks and is returned. Slots are
// shared with every other caller of the same pool; a task that finds no
// free slot runs on the calling goroutine, so tasks may call back into the
// pool without waiting on slots their callers hold.
func (tp ThreadPool) Run(ctx context.Context, tasks ...func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tp.p == nil || len(tasks) == 1 {
		for _, task := range tasks {
			if err := task(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		if gctx.Err() != nil {
			break
		}
		if !tp.p.sem.TryAcquire(1) {
			if err := task(gctx); err != nil {
				// Report through the group so the other tasks are cancelled.
				g.Go(func() error { return err })
				break
			}
			continue
		}
		g.Go(func() error {
			defer tp.p.sem.Release(1)
			return task(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// ForEach splits [0, n) into contiguous chunks, one per worker, and calls
// fn(lo, hi) for each chunk in parallel.
func (tp ThreadPool) ForEach(ctx context.Context, n int, fn func(lo, hi int)) error {
	if n <= 0 {
		return nil
	}
	chunks := min(tp.Size(), n)
	step := (n + chunks - 1) / chunks

	tasks := make([]func(context.Context) error, 0, chunks)
	for lo := 0; lo < n; lo += step {
		hi := min(lo+step, n)
		tasks = append(tasks, func(context.Context) error {
			fn(lo, hi)
			return nil
		})
	}
	return tp.Run(ctx, tasks...)
}
