// internal/wait/waiter.go
package wait

import (
	"context"
	"time"

	"go.uber.org/zap"
	kwait "k8s.io/apimachinery/pkg/util/wait"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
)

const (
	DefaultTimeout  = 15 * time.Second
	DefaultInterval = 250 * time.Millisecond
)

// Outcome is the result of a wait that does not turn a miss into an error.
type Outcome struct {
	Met     bool
	Cause   Cause
	Detail  string
	Polls   int
	Elapsed time.Duration
	LastErr error
}

// Waiter polls conditions against a driver at a fixed interval.
type Waiter struct {
	drv            driver.Driver
	interval       time.Duration
	defaultTimeout time.Duration
	logger         *zap.Logger
}

// Option configures a Waiter.
type Option func(*Waiter)

// WithInterval sets the polling interval shared by every wait.
func WithInterval(d time.Duration) Option {
	return func(w *Waiter) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithDefaultTimeout sets the timeout used when a call passes zero.
func WithDefaultTimeout(d time.Duration) Option {
	return func(w *Waiter) {
		if d > 0 {
			w.defaultTimeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(w *Waiter) { w.logger = l }
}

// New creates a Waiter bound to drv.
func New(drv driver.Driver, opts ...Option) *Waiter {
	w := &Waiter{
		drv:            drv,
		interval:       DefaultInterval,
		defaultTimeout: DefaultTimeout,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named("wait")
	return w
}

// Driver returns the driver the waiter polls.
func (w *Waiter) Driver() driver.Driver { return w.drv }

// DefaultTimeout is the timeout applied when a call passes zero.
func (w *Waiter) DefaultTimeout() time.Duration { return w.defaultTimeout }

// Until blocks until cond holds or timeout elapses. A timeout of zero or less
// means the default timeout. On timeout it returns *WaitTimeoutError carrying
// message. If ctx ends first, ctx's error is returned instead.
func (w *Waiter) Until(ctx context.Context, cond Condition, timeout time.Duration, message string) error {
	timeout = w.effective(timeout)
	out, err := w.poll(ctx, cond, timeout)
	if err != nil {
		return err
	}
	if out.Met {
		return nil
	}
	w.logger.Debug("Wait timed out.",
		zap.String("condition", cond.Name),
		zap.Duration("timeout", timeout),
		zap.String("cause", string(out.Cause)),
		zap.Int("polls", out.Polls))
	return &WaitTimeoutError{
		Condition: cond.Name,
		Timeout:   timeout,
		Message:   message,
		Cause:     out.Cause,
		Detail:    out.Detail,
		Polls:     out.Polls,
		LastErr:   out.LastErr,
	}
}

// Check runs the same loop as Until but reports a miss in the Outcome rather
// than as an error. Only a canceled ctx produces an error.
func (w *Waiter) Check(ctx context.Context, cond Condition, timeout time.Duration) (Outcome, error) {
	return w.poll(ctx, cond, w.effective(timeout))
}

func (w *Waiter) effective(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return w.defaultTimeout
	}
	return timeout
}

func (w *Waiter) poll(ctx context.Context, cond Condition, timeout time.Duration) (Outcome, error) {
	var out Outcome
	start := time.Now()

	err := kwait.PollUntilContextTimeout(ctx, w.interval, timeout, true, func(pollCtx context.Context) (bool, error) {
		out.Polls++
		res, err := cond.Check(pollCtx, w.drv)
		if err != nil {
			if pollCtx.Err() != nil {
				// Cut off by the deadline; keep the previous poll's cause.
				return false, nil
			}
			// Driver hiccups are retried until the deadline.
			out.Cause = CauseDriverError
			out.LastErr = err
			return false, nil
		}
		out.Cause, out.Detail, out.LastErr = res.Cause, res.Detail, nil
		return res.Met, nil
	})
	out.Elapsed = time.Since(start)

	switch {
	case err == nil:
		out.Met = true
		out.Cause = CauseNone
		return out, nil
	case ctx.Err() != nil:
		return out, ctx.Err()
	case kwait.Interrupted(err):
		return out, nil
	default:
		return out, err
	}
}
