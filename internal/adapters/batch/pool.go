// Package batch fans independent work items out to a bounded set of
// goroutines and collects the results in input order.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/healthwatch/inference/pkg/logger"
)

// Pool bounds the concurrency of Map calls. A Pool is stateless between
// calls and safe for concurrent use.
type Pool struct {
	workers int
	name    string
	logger  logger.Logger
}

// NewPool creates a pool running at most workers items at once.
// Non-positive values fall back to runtime.NumCPU().
func NewPool(workers int, opts ...Option) *Pool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	p := &Pool{
		workers: workers,
		name:    "batch",
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Workers returns the concurrency limit.
func (p *Pool) Workers() int { return p.workers }

// Func processes the item at index i.
type Func[In, Out any] func(ctx context.Context, i int, item In) (Out, error)

// Map applies fn to every item using at most p.Workers() goroutines.
// Results keep the order of items. The first failure cancels the context
// passed to the remaining calls and stops scheduling; it is returned as an
// *ItemError. Cancellation of ctx stops scheduling and returns ErrCanceled.
func Map[In, Out any](ctx context.Context, p *Pool, items []In, fn Func[In, Out]) ([]Out, error) {
	if len(items) == 0 {
		return nil, ErrEmptyBatch
	}

	start := time.Now()
	out := make([]Out, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &ItemError{Index: i, Err: fmt.Errorf("%w: %v", ErrPanic, r)}
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := fn(gctx, i, items[i])
			if err != nil {
				return &ItemError{Index: i, Err: err}
			}
			out[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrCanceled, ctx.Err())
		}
		p.logger.Debug(ctx, "batch aborted",
			logger.String("pool", p.name),
			logger.Int("items", len(items)),
			logger.Error(err))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCanceled, err)
	}

	p.logger.Debug(ctx, "batch completed",
		logger.String("pool", p.name),
		logger.Int("items", len(items)),
		logger.Int("workers", p.workers),
		logger.Duration("elapsed", time.Since(start)))
	return out, nil
}
