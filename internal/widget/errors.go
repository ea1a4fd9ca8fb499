// internal/widget/errors.go
package widget

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
)

// DropdownOpenError means the trigger could not be clicked or the options
// panel never became visible.
type DropdownOpenError struct {
	Trigger driver.Locator
	Err     error
}

func (e *DropdownOpenError) Error() string {
	return fmt.Sprintf("failed to open dropdown %s: %v", e.Trigger, e.Err)
}

func (e *DropdownOpenError) Unwrap() error { return e.Err }

// OptionSelectError means a matching option was found but choosing it failed,
// either at the click or because the panel stayed open afterwards.
type OptionSelectError struct {
	Target string
	Err    error
}

func (e *OptionSelectError) Error() string {
	return fmt.Sprintf("failed to select option %q: %v", e.Target, e.Err)
}

func (e *OptionSelectError) Unwrap() error { return e.Err }

// OptionNotFoundError means no option matched after the panel was scrolled
// Steps times. Seen lists every distinct option text observed on the way.
type OptionNotFoundError struct {
	Target string
	Seen   []string
	Steps  int
}

func (e *OptionNotFoundError) Error() string {
	return fmt.Sprintf("option %q not found after %d scroll steps; seen [%s]",
		e.Target, e.Steps, strings.Join(e.Seen, ", "))
}
