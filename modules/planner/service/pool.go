package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// runIndexed calls fn for every index in [0, n) on at most limit goroutines.
// Each call owns result slot i, so callers need no locking. The first error
// cancels the remaining calls.
func runIndexed(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	return g.Wait()
}
