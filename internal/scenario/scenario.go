// internal/scenario/scenario.go
package scenario

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
	"github.com/xkilldash9x/careerflow/internal/config"
	"github.com/xkilldash9x/careerflow/internal/interact"
	"github.com/xkilldash9x/careerflow/internal/navigation"
	"github.com/xkilldash9x/careerflow/internal/pages"
)

// Scenario is an ordered list of steps run against one browser session.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one named unit of a scenario. Any error fails the scenario.
type Step struct {
	Name string
	Run  func(ctx context.Context, env *Env) error
}

// Env is everything a step can reach for the session it runs in.
type Env struct {
	RunID    string
	Driver   driver.Driver
	Actions  *interact.Actions
	Switcher *navigation.Switcher
	Site     *pages.Site
	Config   config.Interface
	Logger   *zap.Logger
}

// Session is a browser session owned by a single run.
type Session interface {
	ID() string
	Driver() driver.Driver
	Close() error
}

// SessionOpener starts a new browser session.
type SessionOpener func(ctx context.Context) (Session, error)

// Diagnostics records the state of the page when a step fails.
type Diagnostics interface {
	Capture(ctx context.Context, scenarioName, stepName string) error
}

// DiagnosticsFactory binds a Diagnostics to a session's driver.
type DiagnosticsFactory func(drv driver.Driver) Diagnostics

// StepResult is the outcome of one executed step.
type StepResult struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Report summarizes a run. Steps lists only the steps that were executed.
type Report struct {
	RunID    string
	Scenario string
	Passed   bool
	Duration time.Duration
	Steps    []StepResult
}

// StepError is returned when a step fails. Err is the step's own error.
type StepError struct {
	Scenario string
	Step     string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("scenario %q failed at step %q: %v", e.Scenario, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
