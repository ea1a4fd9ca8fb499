// internal/browser/driver/context_utils.go
package driver

import (
	"context"
	"time"
)

// CombineContext returns a context that carries ctx1's values and is canceled
// when either ctx1 or ctx2 is. ctx1 holds the chromedp target, ctx2 the
// caller's deadline.
func CombineContext(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	combinedCtx, cancel := context.WithCancel(ctx1)

	go func() {
		select {
		case <-ctx2.Done():
			cancel()
		case <-combinedCtx.Done():
		}
	}()

	return combinedCtx, cancel
}

type valueOnlyContext struct {
	context.Context
}

func (valueOnlyContext) Deadline() (deadline time.Time, ok bool) { return }
func (valueOnlyContext) Done() <-chan struct{}                   { return nil }
func (valueOnlyContext) Err() error                              { return nil }

// Detach returns a context with ctx's values but none of its cancellation.
// Diagnostics use it so a snapshot can still be taken after the step's
// context has expired.
func Detach(ctx context.Context) context.Context {
	return valueOnlyContext{ctx}
}
