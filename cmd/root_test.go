// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/careerflow/internal/config"
	"github.com/xkilldash9x/careerflow/internal/observability"
	"github.com/xkilldash9x/careerflow/internal/scenario"
)

// resetForTest isolates the package-level hooks and the global logger.
func resetForTest(t *testing.T) {
	t.Helper()
	t.Setenv("CAREERFLOW_LOGGER_LEVEL", "error")
	observability.ResetForTest()

	prevOpener, prevFs := newSessionOpener, diagnosticsFs
	diagnosticsFs = afero.NewMemMapFs()
	t.Cleanup(func() {
		newSessionOpener, diagnosticsFs = prevOpener, prevFs
		observability.ResetForTest()
	})

	// Keep a config.yaml in the working directory from leaking in.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// captureConfig makes every run fail at session start and records the
// config the run was given.
func captureConfig(t *testing.T) *config.Interface {
	t.Helper()
	var got config.Interface
	newSessionOpener = func(cfg config.Interface, _ *zap.Logger) scenario.SessionOpener {
		got = cfg
		return func(context.Context) (scenario.Session, error) {
			return nil, errors.New("no browser in tests")
		}
	}
	return &got
}

func TestRootCmd_VersionFlag(t *testing.T) {
	resetForTest(t)
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, "careerflow version "+Version+"\n", out)
}

func TestVersionCmd(t *testing.T) {
	resetForTest(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "careerflow "+Version)
}

func TestRunCmd_SessionFailureFailsTheRun(t *testing.T) {
	resetForTest(t)
	captureConfig(t)

	out, err := execute(t, "run")
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to open browser session: no browser in tests")
	assert.Contains(t, out, scenario.CareersJourneyName)
	assert.Contains(t, out, "FAILED")
}

func TestRunCmd_FlagsOverrideConfig(t *testing.T) {
	resetForTest(t)
	got := captureConfig(t)

	_, err := execute(t, "run", "--headless=false", "--base-url", "https://staging.example.com/")
	require.Error(t, err)

	require.NotNil(t, *got)
	assert.False(t, (*got).Browser().Headless)
	assert.Equal(t, "https://staging.example.com/", (*got).Scenario().BaseURL)
}

func TestRunCmd_ConfigFileAndEnv(t *testing.T) {
	resetForTest(t)
	got := captureConfig(t)

	path := filepath.Join(t.TempDir(), "careerflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
wait:
  default_timeout: 3s
dropdown:
  max_steps: 4
`), 0o600))
	t.Setenv("CAREERFLOW_SCENARIO_JOB_INDEX", "2")

	_, err := execute(t, "run", "--config", path)
	require.Error(t, err)

	require.NotNil(t, *got)
	assert.Equal(t, 3*time.Second, (*got).Wait().DefaultTimeout)
	assert.Equal(t, 4, (*got).Dropdown().MaxSteps)
	assert.Equal(t, 2, (*got).Scenario().JobIndex)
}

func TestRunCmd_InvalidConfig(t *testing.T) {
	resetForTest(t)
	got := captureConfig(t)

	_, err := execute(t, "run", "--base-url", "not-a-url")
	assert.ErrorContains(t, err, "failed to load or validate config")
	assert.Nil(t, *got, "no session is opened with an invalid config")
}

func TestRunCmd_MissingConfigFile(t *testing.T) {
	resetForTest(t)
	_, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to initialize configuration")
}

func TestRunCmd_RejectsArgs(t *testing.T) {
	resetForTest(t)
	_, err := execute(t, "run", "extra")
	assert.Error(t, err)
}

func TestPrintReport(t *testing.T) {
	var out bytes.Buffer
	printReport(&out, &scenario.Report{
		RunID:    "r1",
		Scenario: "CareersJourney",
		Duration: 1500 * time.Millisecond,
		Steps: []scenario.StepResult{
			{Name: "open_home", Duration: 120 * time.Millisecond},
			{Name: "reject_cookies", Duration: 40 * time.Millisecond, Err: errors.New("boom")},
		},
	})
	assert.Equal(t, "\nCareersJourney (run r1)\n"+
		"  ok    open_home            120ms\n"+
		"  FAIL  reject_cookies       40ms\n"+
		"FAILED in 1.5s\n", out.String())

	out.Reset()
	printReport(&out, nil)
	assert.Empty(t, out.String())
}
