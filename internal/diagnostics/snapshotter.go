// internal/diagnostics/snapshotter.go
package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
	"github.com/xkilldash9x/careerflow/internal/config"
)

const (
	dayLayout   = "2006-01-02"
	stampLayout = "20060102_150405"
)

// Snapshotter saves a screenshot and, optionally, the DOM of the active
// browsing context when a scenario step fails. Files are laid out as
// <dir>/<YYYY-MM-DD>/<scenario>.<step>_<YYYYmmdd_HHMMSS>.{png,html}.
type Snapshotter struct {
	drv        driver.Driver
	fs         afero.Fs
	dir        string
	captureDOM bool
	now        func() time.Time
	logger     *zap.Logger
}

// Option configures a Snapshotter.
type Option func(*Snapshotter)

// WithClock replaces time.Now, for deterministic file names.
func WithClock(now func() time.Time) Option {
	return func(s *Snapshotter) { s.now = now }
}

// New binds a Snapshotter to drv. Files are written through fs.
func New(drv driver.Driver, fs afero.Fs, cfg config.DiagnosticsConfig, logger *zap.Logger, opts ...Option) *Snapshotter {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Snapshotter{
		drv:        drv,
		fs:         fs,
		dir:        cfg.ScreenshotDir,
		captureDOM: cfg.CaptureDOM,
		now:        time.Now,
		logger:     logger.Named("diagnostics"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capture writes the failure artifacts for scenarioName/stepName. The DOM
// dump is attempted even when the screenshot fails; all failures are joined.
func (s *Snapshotter) Capture(ctx context.Context, scenarioName, stepName string) error {
	ts := s.now()
	dir := filepath.Join(s.dir, ts.Format(dayLayout))
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating diagnostics directory %q: %w", dir, err)
	}
	base := filepath.Join(dir, fmt.Sprintf("%s.%s_%s", sanitize(scenarioName), sanitize(stepName), ts.Format(stampLayout)))

	var errs []error
	if png, err := s.drv.Screenshot(ctx); err != nil {
		errs = append(errs, fmt.Errorf("capturing screenshot: %w", err))
	} else if err := afero.WriteFile(s.fs, base+".png", png, 0o644); err != nil {
		errs = append(errs, fmt.Errorf("saving screenshot: %w", err))
	} else {
		s.logger.Info("Saved failure screenshot.", zap.String("path", base+".png"))
	}

	if s.captureDOM {
		if html, err := s.drv.HTML(ctx); err != nil {
			errs = append(errs, fmt.Errorf("capturing DOM: %w", err))
		} else if err := afero.WriteFile(s.fs, base+".html", []byte(html), 0o644); err != nil {
			errs = append(errs, fmt.Errorf("saving DOM: %w", err))
		} else {
			s.logger.Info("Saved failure DOM.", zap.String("path", base+".html"))
		}
	}
	return errors.Join(errs...)
}

// sanitize keeps a name from escaping its directory.
func sanitize(name string) string {
	r := strings.NewReplacer("/", "_", `\`, "_", "..", "_")
	if name = r.Replace(strings.TrimSpace(name)); name == "" {
		return "unnamed"
	}
	return name
}
