// Package workerpool hands CPU-bound planning work off a cooperative
// request-handling goroutine onto a bounded pool, so a slow A* search for
// one agent never stalls the façade's event loop or other agents'
// searches.
package workerpool

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Pool bounds how many planning goroutines may run concurrently.
type Pool struct {
	sem *semaphore.Weighted
	max int64
}

// New builds a Pool that admits at most maxConcurrent goroutines at once.
func New(maxConcurrent int) *Pool {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(maxConcurrent)), max: int64(maxConcurrent)}
}

// Run executes fn for every item in items, bounded by the pool's
// concurrency limit, and collects results in input order. If any fn
// returns an error, Run returns that error after every already-started
// goroutine finishes; ctx cancellation aborts goroutines that have not
// yet acquired a slot.
func Run[T any, R any](ctx context.Context, p *Pool, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)

	var acquireErr error
	for i, item := range items {
		i, item := i, item
		if err := p.sem.Acquire(gctx, 1); err != nil {
			acquireErr = err
			break
		}
		g.Go(func() error {
			defer p.sem.Release(1)
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if acquireErr != nil {
		return results, acquireErr
	}
	return results, nil
}

// MaxConcurrency reports the pool's configured concurrency bound.
func (p *Pool) MaxConcurrency() int {
	return int(p.max)
}
