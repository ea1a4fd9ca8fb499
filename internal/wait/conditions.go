// internal/wait/conditions.go
package wait

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
)

// Cause classifies why a condition is not (yet) met.
type Cause string

const (
	CauseNone            Cause = ""
	CauseNotPresent      Cause = "element not present"
	CauseNotVisible      Cause = "element not visible"
	CauseNotInteractable Cause = "element not interactable"
	CauseStillVisible    Cause = "element still visible"
	CauseMismatch        Cause = "value mismatch"
	CauseDriverError     Cause = "driver error"
)

// Result is a single evaluation of a Condition.
type Result struct {
	Met    bool
	Cause  Cause
	Detail string
}

func met() Result {
	return Result{Met: true}
}

func miss(c Cause, detail string) Result {
	return Result{Cause: c, Detail: detail}
}

// Condition is a named predicate over driver state. Conditions are built per
// wait and hold no element references.
type Condition struct {
	Name  string
	Check func(ctx context.Context, d driver.Driver) (Result, error)
}

// Present holds once loc matches an element.
func Present(loc driver.Locator) Condition {
	return Condition{
		Name: "present " + loc.String(),
		Check: func(ctx context.Context, d driver.Driver) (Result, error) {
			s, err := d.Probe(ctx, loc)
			if err != nil {
				return Result{}, err
			}
			if !s.Present {
				return miss(CauseNotPresent, ""), nil
			}
			return met(), nil
		},
	}
}

// Visible holds once loc matches a rendered, visible element.
func Visible(loc driver.Locator) Condition {
	return Condition{
		Name: "visible " + loc.String(),
		Check: func(ctx context.Context, d driver.Driver) (Result, error) {
			s, err := d.Probe(ctx, loc)
			if err != nil {
				return Result{}, err
			}
			switch {
			case !s.Present:
				return miss(CauseNotPresent, ""), nil
			case !s.Visible:
				return miss(CauseNotVisible, ""), nil
			}
			return met(), nil
		},
	}
}

// Clickable holds once loc matches a visible, enabled element.
func Clickable(loc driver.Locator) Condition {
	return Condition{
		Name: "clickable " + loc.String(),
		Check: func(ctx context.Context, d driver.Driver) (Result, error) {
			s, err := d.Probe(ctx, loc)
			if err != nil {
				return Result{}, err
			}
			switch {
			case !s.Present:
				return miss(CauseNotPresent, ""), nil
			case !s.Interactable():
				return miss(CauseNotInteractable, ""), nil
			}
			return met(), nil
		},
	}
}

// Invisible holds once loc matches nothing or only a hidden element.
func Invisible(loc driver.Locator) Condition {
	return Condition{
		Name: "invisible " + loc.String(),
		Check: func(ctx context.Context, d driver.Driver) (Result, error) {
			s, err := d.Probe(ctx, loc)
			if err != nil {
				return Result{}, err
			}
			if s.Present && s.Visible {
				return miss(CauseStillVisible, ""), nil
			}
			return met(), nil
		},
	}
}

// AllVisible holds once loc matches at least one element and every match is visible.
func AllVisible(loc driver.Locator) Condition {
	return Condition{
		Name: "all visible " + loc.String(),
		Check: func(ctx context.Context, d driver.Driver) (Result, error) {
			first, err := d.Probe(ctx, loc.Nth(0))
			if err != nil {
				return Result{}, err
			}
			if first.Count == 0 {
				return miss(CauseNotPresent, ""), nil
			}
			for i := 0; i < first.Count; i++ {
				s := first
				if i > 0 {
					if s, err = d.Probe(ctx, loc.Nth(i)); err != nil {
						return Result{}, err
					}
				}
				if !s.Present || !s.Visible {
					return miss(CauseNotVisible, fmt.Sprintf("match %d of %d", i+1, first.Count)), nil
				}
			}
			return met(), nil
		},
	}
}

// TextContains holds once loc is visible and its trimmed text contains substr.
func TextContains(loc driver.Locator, substr string) Condition {
	return Condition{
		Name: fmt.Sprintf("text of %s contains %q", loc, substr),
		Check: func(ctx context.Context, d driver.Driver) (Result, error) {
			s, err := d.Probe(ctx, loc)
			if err != nil {
				return Result{}, err
			}
			switch {
			case !s.Present:
				return miss(CauseNotPresent, ""), nil
			case !s.Visible:
				return miss(CauseNotVisible, ""), nil
			}
			text := strings.TrimSpace(s.Text)
			if !strings.Contains(text, substr) {
				return miss(CauseMismatch, text), nil
			}
			return met(), nil
		},
	}
}

// URLContains holds once the active context's URL contains substr.
func URLContains(substr string) Condition {
	return Condition{
		Name: fmt.Sprintf("url contains %q", substr),
		Check: func(ctx context.Context, d driver.Driver) (Result, error) {
			u, err := d.CurrentURL(ctx)
			if err != nil {
				return Result{}, err
			}
			if !strings.Contains(u, substr) {
				return miss(CauseMismatch, u), nil
			}
			return met(), nil
		},
	}
}

// HandleCountGreaterThan holds once more than n browsing contexts exist.
func HandleCountGreaterThan(n int) Condition {
	return Condition{
		Name: fmt.Sprintf("more than %d browsing contexts", n),
		Check: func(ctx context.Context, d driver.Driver) (Result, error) {
			handles, err := d.Handles(ctx)
			if err != nil {
				return Result{}, err
			}
			if len(handles) <= n {
				return miss(CauseMismatch, strconv.Itoa(len(handles))), nil
			}
			return met(), nil
		},
	}
}

// DocumentReady holds once document.readyState is "complete".
func DocumentReady() Condition {
	return Condition{
		Name: "document ready",
		Check: func(ctx context.Context, d driver.Driver) (Result, error) {
			state, err := d.ReadyState(ctx)
			if err != nil {
				return Result{}, err
			}
			if state != "complete" {
				return miss(CauseMismatch, state), nil
			}
			return met(), nil
		},
	}
}

// All holds once every condition holds in the same poll. The first unmet
// condition's result is reported.
func All(conds ...Condition) Condition {
	names := make([]string, len(conds))
	for i, c := range conds {
		names[i] = c.Name
	}
	return Condition{
		Name: strings.Join(names, " and "),
		Check: func(ctx context.Context, d driver.Driver) (Result, error) {
			for _, c := range conds {
				res, err := c.Check(ctx, d)
				if err != nil || !res.Met {
					return res, err
				}
			}
			return met(), nil
		},
	}
}
