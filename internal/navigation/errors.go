// internal/navigation/errors.go
package navigation

import (
	"fmt"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
)

const (
	ReasonNoNewContext = "no new browsing context"
	ReasonURLMismatch  = "url mismatch"
)

// ContextSwitchTimeoutError reports a new browsing context that never
// appeared, or one that never reached the expected URL. Handle is empty in
// the first case.
type ContextSwitchTimeoutError struct {
	Expected string
	Actual   string
	Handle   driver.Handle
	Reason   string
	Err      error
}

func (e *ContextSwitchTimeoutError) Error() string {
	if e.Handle == "" {
		return fmt.Sprintf("context switch failed (%s): expected a context at a URL containing %q", e.Reason, e.Expected)
	}
	return fmt.Sprintf("context switch failed (%s): context %s is at %q, expected a URL containing %q",
		e.Reason, e.Handle, e.Actual, e.Expected)
}

func (e *ContextSwitchTimeoutError) Unwrap() error { return e.Err }
