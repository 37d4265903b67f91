package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// runParallel executes n tasks with at most limit running concurrently
// (limit <= 0 means unbounded) and blocks until all complete. The first
// task error cancels the remaining tasks and is returned. Panics inside
// tasks are recovered into errors so a faulty parser fails the stage
// instead of the process.
func runParallel(ctx context.Context, limit, n int, task func(ctx context.Context, i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("task %d panicked: %v", i, r)
				}
			}()
			if err := ctx.Err(); err != nil {
				return err
			}
			return task(ctx, i)
		})
	}

	return g.Wait()
}
