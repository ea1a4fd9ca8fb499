// internal/wait/errors.go
package wait

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrTimeout matches every *WaitTimeoutError under errors.Is.
var ErrTimeout = errors.New("wait timed out")

// WaitTimeoutError reports a condition that was not met within its timeout.
// Cause tells a locator that never matched apart from one that matched but
// never became usable.
type WaitTimeoutError struct {
	Condition string
	Timeout   time.Duration
	Message   string
	Cause     Cause
	// Detail is the last value observed, e.g. the URL seen by URLContains.
	Detail  string
	Polls   int
	LastErr error
}

func (e *WaitTimeoutError) Error() string {
	var b strings.Builder
	if e.Message != "" {
		b.WriteString(e.Message)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "condition %q not met within %v", e.Condition, e.Timeout)
	if e.Cause != CauseNone {
		fmt.Fprintf(&b, " (%s)", e.Cause)
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, ", last observed %q", e.Detail)
	}
	if e.LastErr != nil {
		fmt.Fprintf(&b, ": %v", e.LastErr)
	}
	return b.String()
}

func (e *WaitTimeoutError) Is(target error) bool { return target == ErrTimeout }

func (e *WaitTimeoutError) Unwrap() error { return e.LastErr }
