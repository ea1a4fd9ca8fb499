// internal/scenario/runner.go
package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
	"github.com/xkilldash9x/careerflow/internal/config"
	"github.com/xkilldash9x/careerflow/internal/interact"
	"github.com/xkilldash9x/careerflow/internal/navigation"
	"github.com/xkilldash9x/careerflow/internal/observability"
	"github.com/xkilldash9x/careerflow/internal/pages"
	"github.com/xkilldash9x/careerflow/internal/wait"
)

// diagnosticsTimeout bounds failure capture, which runs on a context detached
// from the caller's so a canceled run still leaves artifacts.
const diagnosticsTimeout = 30 * time.Second

var (
	attrRunID    = attribute.Key("careerflow.run_id")
	attrScenario = attribute.Key("careerflow.scenario")
	attrStep     = attribute.Key("careerflow.step")
)

// Runner executes scenarios one at a time, each in a fresh browser session.
type Runner struct {
	cfg         config.Interface
	open        SessionOpener
	diagnostics DiagnosticsFactory
	tracer      trace.Tracer
	logger      *zap.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithDiagnostics captures failure artifacts through f.
func WithDiagnostics(f DiagnosticsFactory) RunnerOption {
	return func(r *Runner) { r.diagnostics = f }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) RunnerOption {
	return func(r *Runner) { r.tracer = t }
}

func NewRunner(cfg config.Interface, open SessionOpener, logger *zap.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{
		cfg:    cfg,
		open:   open,
		logger: logger.Named("scenario"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = observability.Tracer()
	}
	return r
}

// Run executes sc. The session is closed on every exit path. When a step
// fails, diagnostics are captured before the step's error is returned wrapped
// in a *StepError; a diagnostics failure is logged and never replaces it.
func (r *Runner) Run(ctx context.Context, sc Scenario) (report *Report, err error) {
	runID := uuid.New().String()
	logger := r.logger.With(zap.String("run_id", runID), zap.String("scenario", sc.Name))
	report = &Report{RunID: runID, Scenario: sc.Name}

	ctx, span := r.tracer.Start(ctx, "scenario."+sc.Name, trace.WithAttributes(
		attrRunID.String(runID),
		attrScenario.String(sc.Name),
	))
	start := time.Now()
	defer func() {
		report.Duration = time.Since(start)
		report.Passed = err == nil
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	logger.Info("Starting scenario.", zap.Int("steps", len(sc.Steps)))
	sess, err := r.open(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to open browser session: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.Warn("Failed to close browser session.", zap.Error(cerr))
		}
	}()

	env := r.newEnv(runID, sess.Driver(), logger)
	var diag Diagnostics
	if r.diagnostics != nil {
		diag = r.diagnostics(sess.Driver())
	}

	for _, st := range sc.Steps {
		res := r.runStep(ctx, sc.Name, st, env)
		report.Steps = append(report.Steps, res)
		if res.Err == nil {
			continue
		}

		logger.Error("Step failed.", zap.String("step", st.Name), zap.Error(res.Err))
		if diag != nil {
			r.capture(ctx, diag, sc.Name, st.Name, logger)
		}
		return report, &StepError{Scenario: sc.Name, Step: st.Name, Err: res.Err}
	}

	logger.Info("Scenario passed.", zap.Duration("duration", time.Since(start)))
	return report, nil
}

func (r *Runner) runStep(ctx context.Context, scenarioName string, st Step, env *Env) (res StepResult) {
	res.Name = st.Name
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("scenario.%s/%s", scenarioName, st.Name),
		trace.WithAttributes(attrStep.String(st.Name)))
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("step panicked: %v", p)
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, res.Err.Error())
		}
		span.End()
	}()

	env.Logger.Debug("Running step.", zap.String("step", st.Name))
	res.Err = st.Run(ctx, env)
	if res.Err == nil {
		env.Logger.Info("Step passed.", zap.String("step", st.Name), zap.Duration("duration", time.Since(start)))
	}
	return res
}

func (r *Runner) capture(ctx context.Context, diag Diagnostics, scenarioName, stepName string, logger *zap.Logger) {
	dctx, cancel := context.WithTimeout(driver.Detach(ctx), diagnosticsTimeout)
	defer cancel()
	if err := diag.Capture(dctx, scenarioName, stepName); err != nil {
		logger.Warn("Failed to capture failure diagnostics.", zap.String("step", stepName), zap.Error(err))
	}
}

func (r *Runner) newEnv(runID string, drv driver.Driver, logger *zap.Logger) *Env {
	wc := r.cfg.Wait()
	w := wait.New(drv,
		wait.WithInterval(wc.PollInterval),
		wait.WithDefaultTimeout(wc.DefaultTimeout),
		wait.WithLogger(logger))
	a := interact.New(w, logger, wc.ExistsTimeout)
	sw := navigation.New(w, r.cfg.Navigation().ContextSwitchTimeout, logger)
	return &Env{
		RunID:    runID,
		Driver:   drv,
		Actions:  a,
		Switcher: sw,
		Site:     pages.NewSite(a, sw, r.cfg, logger),
		Config:   r.cfg,
		Logger:   logger,
	}
}
