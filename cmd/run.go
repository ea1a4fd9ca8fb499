// File: cmd/run.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/careerflow/internal/browser"
	"github.com/xkilldash9x/careerflow/internal/browser/driver"
	"github.com/xkilldash9x/careerflow/internal/config"
	"github.com/xkilldash9x/careerflow/internal/diagnostics"
	"github.com/xkilldash9x/careerflow/internal/observability"
	"github.com/xkilldash9x/careerflow/internal/scenario"
)

// Swapped out in tests.
var (
	newSessionOpener = chromeSessionOpener
	diagnosticsFs    = afero.NewOsFs()
)

// chromeSessionOpener starts a local Chrome per run. The *browser.Session is
// only converted to the interface after the error check, so a failed start
// never yields a non-nil Session holding a nil pointer.
func chromeSessionOpener(cfg config.Interface, logger *zap.Logger) scenario.SessionOpener {
	mgr := browser.NewManager(cfg, logger)
	return func(ctx context.Context) (scenario.Session, error) {
		s, err := mgr.NewSession(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func newRunCmd() *cobra.Command {
	var withTrace bool

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the careers journey from the homepage to a QA job application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			logger := observability.GetLogger()

			if withTrace {
				tp, err := observability.NewStdoutTracerProvider()
				if err != nil {
					return err
				}
				defer func() {
					if err := tp.Shutdown(context.Background()); err != nil {
						logger.Warn("Failed to flush traces.", zap.Error(err))
					}
				}()
			}

			var opts []scenario.RunnerOption
			if dc := cfg.Diagnostics(); dc.Enabled {
				opts = append(opts, scenario.WithDiagnostics(func(drv driver.Driver) scenario.Diagnostics {
					return diagnostics.New(drv, diagnosticsFs, dc, logger)
				}))
			}

			runner := scenario.NewRunner(cfg, newSessionOpener(cfg, logger), logger, opts...)
			report, err := runner.Run(ctx, scenario.CareersJourney())
			printReport(cmd.OutOrStdout(), report)
			return err
		},
	}

	runCmd.Flags().Bool("headless", true, "run Chrome without a window")
	runCmd.Flags().String("base-url", "", "homepage to start from (overrides scenario.base_url)")
	runCmd.Flags().BoolVar(&withTrace, "trace", false, "print step spans to stdout")
	return runCmd
}

func printReport(w io.Writer, r *scenario.Report) {
	if r == nil {
		return
	}
	fmt.Fprintf(w, "\n%s (run %s)\n", r.Scenario, r.RunID)
	for _, s := range r.Steps {
		status := "ok"
		if s.Err != nil {
			status = "FAIL"
		}
		fmt.Fprintf(w, "  %-4s  %-20s %s\n", status, s.Name, s.Duration.Round(time.Millisecond))
	}
	verdict := "PASSED"
	if !r.Passed {
		verdict = "FAILED"
	}
	fmt.Fprintf(w, "%s in %s\n", verdict, r.Duration.Round(time.Millisecond))
}
