package core

import (
	"context"
	"sync"
)

// runPerRoot fans fn out over the roots with at most concurrency workers.
//
// Roots are independent physical devices: fn must confine itself to its
// root and shared results must be pre-sliced per root by the caller, so no
// shared mutable state is touched during the parallel phase. The first
// error wins; remaining roots still run to completion.
func runPerRoot(ctx context.Context, roots []*Root, concurrency int, fn func(context.Context, *Root) error) error {
	if concurrency < 1 {
		concurrency = 1
	}
	rootC := make(chan *Root)
	errC := make(chan error, len(roots))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range rootC {
				if err := ctx.Err(); err != nil {
					errC <- err
					continue
				}
				if err := fn(ctx, r); err != nil {
					errC <- err
				}
			}
		}()
	}
	for _, r := range roots {
		rootC <- r
	}
	close(rootC)
	wg.Wait()
	close(errC)

	return <-errC
}
