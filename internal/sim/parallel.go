package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/clothlab/internal/dynamo"
)

// Ensemble runs n independent jobs concurrently, at most limit at a time.
// Jobs must not share solvers. Results keep the job order; the first error
// cancels the remaining jobs. With a limit of one the jobs run in order on
// the calling goroutine, so solvers on a thread-bound backend stay on the
// caller's OS thread.
func Ensemble[T any](ctx context.Context, n, limit int, job func(ctx context.Context, i int) (T, error)) ([]T, error) {
	if limit <= 0 {
		limit = dynamo.Workers()
	}
	results := make([]T, n)

	if limit == 1 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r, err := job(ctx, i)
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			r, err := job(ctx, i)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
