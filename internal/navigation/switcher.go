// internal/navigation/switcher.go
package navigation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
	"github.com/xkilldash9x/careerflow/internal/wait"
)

// DefaultTimeout bounds each phase of a switch when no timeout is given.
const DefaultTimeout = 15 * time.Second

// HandleSet is an ordered snapshot of the open browsing contexts.
type HandleSet []driver.Handle

// Contains reports whether h is part of the snapshot.
func (s HandleSet) Contains(h driver.Handle) bool {
	for _, x := range s {
		if x == h {
			return true
		}
	}
	return false
}

// Newest returns the last handle in current that is not in s.
func (s HandleSet) Newest(current []driver.Handle) (driver.Handle, bool) {
	for i := len(current) - 1; i >= 0; i-- {
		if !s.Contains(current[i]) {
			return current[i], true
		}
	}
	return "", false
}

// Switcher moves the session into browsing contexts opened by page actions,
// such as links with target="_blank".
type Switcher struct {
	waiter  *wait.Waiter
	drv     driver.Driver
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a Switcher. A non-positive timeout means DefaultTimeout.
func New(w *wait.Waiter, timeout time.Duration, logger *zap.Logger) *Switcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Switcher{
		waiter:  w,
		drv:     w.Driver(),
		timeout: timeout,
		logger:  logger.Named("navigation"),
	}
}

// Snapshot records the currently open browsing contexts. Take it immediately
// before the action that opens a new one.
func (s *Switcher) Snapshot(ctx context.Context) (HandleSet, error) {
	handles, err := s.drv.Handles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list browsing contexts: %w", err)
	}
	s.logger.Debug("Captured browsing contexts.", zap.Int("count", len(handles)))
	return HandleSet(handles), nil
}

// SwitchToNewAndVerify waits for a context that is not in snapshot, makes it
// active and waits for its URL to contain expected. Both waits use timeout.
func (s *Switcher) SwitchToNewAndVerify(ctx context.Context, snapshot HandleSet, expected string, timeout time.Duration) (driver.Handle, error) {
	if timeout <= 0 {
		timeout = s.timeout
	}

	err := s.waiter.Until(ctx, wait.HandleCountGreaterThan(len(snapshot)), timeout, "no new browsing context")
	if err != nil {
		return "", s.timeoutErr(err, &ContextSwitchTimeoutError{Expected: expected, Reason: ReasonNoNewContext})
	}

	handles, err := s.drv.Handles(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list browsing contexts: %w", err)
	}
	h, ok := snapshot.Newest(handles)
	if !ok {
		// The count grew but every handle was already known.
		return "", &ContextSwitchTimeoutError{Expected: expected, Reason: ReasonNoNewContext}
	}

	if err := s.drv.SwitchTo(ctx, h); err != nil {
		return "", fmt.Errorf("failed to switch to browsing context %s: %w", h, err)
	}
	s.logger.Info("Switched to new browsing context.", zap.String("handle", string(h)))

	if err := s.waiter.Until(ctx, wait.URLContains(expected), timeout, "new browsing context URL"); err != nil {
		ce := &ContextSwitchTimeoutError{Expected: expected, Handle: h, Reason: ReasonURLMismatch}
		var te *wait.WaitTimeoutError
		if errors.As(err, &te) {
			ce.Actual = te.Detail
		}
		return h, s.timeoutErr(err, ce)
	}

	u, _ := s.drv.CurrentURL(ctx)
	s.logger.Info("Verified browsing context URL.", zap.String("handle", string(h)), zap.String("url", u))
	return h, nil
}

// Expect snapshots the open contexts, runs action and then switches to the
// context it opened.
func (s *Switcher) Expect(ctx context.Context, action func(context.Context) error, expected string, timeout time.Duration) (driver.Handle, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	if err := action(ctx); err != nil {
		return "", err
	}
	return s.SwitchToNewAndVerify(ctx, snapshot, expected, timeout)
}

// timeoutErr attaches a wait timeout to ce. Anything else, such as a canceled
// ctx, passes through.
func (s *Switcher) timeoutErr(err error, ce *ContextSwitchTimeoutError) error {
	if !errors.Is(err, wait.ErrTimeout) {
		return err
	}
	ce.Err = err
	s.logger.Warn("Browsing context switch timed out.",
		zap.String("reason", ce.Reason),
		zap.String("expected", ce.Expected),
		zap.String("actual", ce.Actual))
	return ce
}
