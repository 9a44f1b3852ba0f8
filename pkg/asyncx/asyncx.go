// Package asyncx has small concurrency helpers for fire-and-forget work that
// must not block or fail the caller, such as notification dispatch after a
// terminal job transition.
package asyncx

import "context"

// Do fires fn in a goroutine and forgets it.
func Do(fn func()) {
	go fn()
}

// DoCtx fires fn in a goroutine unless ctx is already done. The function
// receives ctx and is expected to honor its cancellation.
func DoCtx(ctx context.Context, fn func(context.Context)) {
	go func() {
		select {
		case <-ctx.Done():
			return
		default:
			fn(ctx)
		}
	}()
}
