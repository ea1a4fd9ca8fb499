// internal/diagnostics/snapshotter_test.go
package diagnostics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/careerflow/internal/browser/drivertest"
	"github.com/xkilldash9x/careerflow/internal/config"
)

var fixedNow = time.Date(2025, time.March, 7, 14, 5, 9, 0, time.UTC)

func newTestSnapshotter(t *testing.T, f *drivertest.Fake, fs afero.Fs, captureDOM bool) *Snapshotter {
	t.Helper()
	cfg := config.DiagnosticsConfig{Enabled: true, ScreenshotDir: "screenshots/error_screenshots", CaptureDOM: captureDOM}
	return New(f, fs, cfg, zaptest.NewLogger(t), WithClock(func() time.Time { return fixedNow }))
}

func TestCapture_WritesScreenshotAndDOM(t *testing.T) {
	f := drivertest.New()
	f.ScreenshotData = []byte("\x89PNG data")
	f.Page = "<html><body><div id=\"jobs-list\"></div></body></html>"
	fs := afero.NewMemMapFs()

	require.NoError(t, newTestSnapshotter(t, f, fs, true).Capture(context.Background(), "TestCareersE2E", "filter_jobs"))

	base := "screenshots/error_screenshots/2025-03-07/TestCareersE2E.filter_jobs_20250307_140509"
	png, err := afero.ReadFile(fs, base+".png")
	require.NoError(t, err)
	assert.Equal(t, f.ScreenshotData, png)

	html, err := afero.ReadFile(fs, base+".html")
	require.NoError(t, err)
	assert.Equal(t, f.Page, string(html))
}

func TestCapture_WithoutDOM(t *testing.T) {
	f := drivertest.New()
	fs := afero.NewMemMapFs()

	require.NoError(t, newTestSnapshotter(t, f, fs, false).Capture(context.Background(), "careers", "open"))

	base := "screenshots/error_screenshots/2025-03-07/careers.open_20250307_140509"
	exists, err := afero.Exists(fs, base+".png")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = afero.Exists(fs, base+".html")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Zero(t, f.CountCalls("html"))
}

func TestCapture_ScreenshotFailureStillDumpsDOM(t *testing.T) {
	f := drivertest.New()
	boom := errors.New("target crashed")
	f.Errors["screenshot"] = boom
	fs := afero.NewMemMapFs()

	err := newTestSnapshotter(t, f, fs, true).Capture(context.Background(), "careers", "open")
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "capturing screenshot")

	exists, existsErr := afero.Exists(fs, "screenshots/error_screenshots/2025-03-07/careers.open_20250307_140509.html")
	require.NoError(t, existsErr)
	assert.True(t, exists)
}

func TestCapture_ReadOnlyFs(t *testing.T) {
	f := drivertest.New()
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	err := newTestSnapshotter(t, f, fs, true).Capture(context.Background(), "careers", "open")
	assert.ErrorContains(t, err, "creating diagnostics directory")
	assert.Zero(t, f.CountCalls("screenshot"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "careers_journey", sanitize("careers/journey"))
	assert.Equal(t, "__etc", sanitize("../etc"))
	assert.Equal(t, "unnamed", sanitize("  "))
	assert.Equal(t, "TestCareersE2E", sanitize("TestCareersE2E"))
}
