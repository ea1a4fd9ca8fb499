// internal/interact/errors.go
package interact

import (
	"fmt"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
)

// ElementNotInteractableError is returned by Click when the target never
// became clickable. Err is the underlying *wait.WaitTimeoutError, whose Cause
// tells an absent element from a present but unusable one.
type ElementNotInteractableError struct {
	Locator driver.Locator
	Err     error
}

func (e *ElementNotInteractableError) Error() string {
	return fmt.Sprintf("element %s is not interactable: %v", e.Locator, e.Err)
}

func (e *ElementNotInteractableError) Unwrap() error { return e.Err }
