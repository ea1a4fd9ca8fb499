// internal/pages/errors.go
package pages

import "fmt"

// AssertionFailure is a failed content check on a page, as opposed to a
// synchronization or driver failure. Job is the 1-based position of the job
// listing that failed, or zero when the check is not per job.
type AssertionFailure struct {
	Page     string
	Check    string
	Job      int
	Expected string
	Actual   string
}

func (e *AssertionFailure) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Page, e.Check)
	if e.Job > 0 {
		msg += fmt.Sprintf(" in job %d", e.Job)
	}
	if e.Expected != "" || e.Actual != "" {
		msg += fmt.Sprintf(": expected %q, got %q", e.Expected, e.Actual)
	}
	return msg
}
