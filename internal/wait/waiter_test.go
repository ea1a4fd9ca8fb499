// internal/wait/waiter_test.go
package wait

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
	"github.com/xkilldash9x/careerflow/internal/browser/drivertest"
)

const (
	testInterval = 5 * time.Millisecond
	testTimeout  = 100 * time.Millisecond
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestWaiter(t *testing.T, f *drivertest.Fake) *Waiter {
	t.Helper()
	return New(f, WithInterval(testInterval), WithDefaultTimeout(testTimeout), WithLogger(zaptest.NewLogger(t)))
}

func TestUntil_MetAfterRendering(t *testing.T) {
	f := drivertest.New()
	loc := driver.ByID("career-our-location")
	el := drivertest.NewElement("Our Locations")
	el.ShowAfter = 2
	f.Set(loc, el)

	w := newTestWaiter(t, f)
	require.NoError(t, w.Until(context.Background(), Visible(loc), time.Second, "locations block"))
	assert.Equal(t, 3, f.Probes(loc), "the first poll is immediate and polling stops once met")
}

func TestUntil_TimeoutCauses(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(f *drivertest.Fake, loc driver.Locator)
		cond  func(loc driver.Locator) Condition
		cause Cause
	}{
		{
			name:  "never present",
			setup: func(*drivertest.Fake, driver.Locator) {},
			cond:  Clickable,
			cause: CauseNotPresent,
		},
		{
			name: "present but disabled",
			setup: func(f *drivertest.Fake, loc driver.Locator) {
				el := drivertest.NewElement("Company")
				el.Enabled = false
				f.Set(loc, el)
			},
			cond:  Clickable,
			cause: CauseNotInteractable,
		},
		{
			name: "present but hidden",
			setup: func(f *drivertest.Fake, loc driver.Locator) {
				el := drivertest.NewElement("Company")
				el.Visible = false
				f.Set(loc, el)
			},
			cond:  Visible,
			cause: CauseNotVisible,
		},
		{
			name: "never disappears",
			setup: func(f *drivertest.Fake, loc driver.Locator) {
				f.SetTexts(loc, "panel")
			},
			cond:  Invisible,
			cause: CauseStillVisible,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := drivertest.New()
			loc := driver.ByCSS("a.dropdown-toggle")
			tc.setup(f, loc)
			w := newTestWaiter(t, f)

			start := time.Now()
			err := w.Until(context.Background(), tc.cond(loc), 40*time.Millisecond, "company menu")
			require.Error(t, err)
			assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)

			var te *WaitTimeoutError
			require.ErrorAs(t, err, &te)
			assert.ErrorIs(t, err, ErrTimeout)
			assert.Equal(t, tc.cause, te.Cause)
			assert.Equal(t, 40*time.Millisecond, te.Timeout)
			assert.Contains(t, err.Error(), "company menu")
			assert.Greater(t, te.Polls, 1)
		})
	}
}

func TestUntil_DefaultTimeout(t *testing.T) {
	w := newTestWaiter(t, drivertest.New())

	err := w.Until(context.Background(), Present(driver.ByID("missing")), 0, "")
	var te *WaitTimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, testTimeout, te.Timeout)
	assert.Equal(t, testTimeout, w.DefaultTimeout())
}

func TestUntil_CallerCancellation(t *testing.T) {
	w := newTestWaiter(t, drivertest.New())
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	err := w.Until(ctx, Present(driver.ByID("missing")), time.Minute, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestUntil_RetriesDriverErrors(t *testing.T) {
	w := newTestWaiter(t, drivertest.New())
	flaky := errors.New("cannot find context with specified id")

	calls := 0
	cond := Condition{
		Name: "flaky",
		Check: func(context.Context, driver.Driver) (Result, error) {
			calls++
			if calls < 3 {
				return Result{}, flaky
			}
			return Result{Met: true}, nil
		},
	}
	require.NoError(t, w.Until(context.Background(), cond, time.Second, ""))
	assert.Equal(t, 3, calls)

	failing := Condition{
		Name: "always failing",
		Check: func(context.Context, driver.Driver) (Result, error) {
			return Result{}, flaky
		},
	}
	err := w.Until(context.Background(), failing, 30*time.Millisecond, "")
	var te *WaitTimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CauseDriverError, te.Cause)
	assert.ErrorIs(t, err, flaky)
}

func TestCheck_ReportsMissWithoutError(t *testing.T) {
	f := drivertest.New()
	w := newTestWaiter(t, f)

	out, err := w.Check(context.Background(), Visible(driver.ByID("wt-cli-reject-btn")), 30*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, out.Met)
	assert.Equal(t, CauseNotPresent, out.Cause)
	assert.GreaterOrEqual(t, out.Elapsed, 30*time.Millisecond)

	f.SetTexts(driver.ByID("wt-cli-reject-btn"), "Reject All")
	out, err = w.Check(context.Background(), Visible(driver.ByID("wt-cli-reject-btn")), 30*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, out.Met)
	assert.Equal(t, CauseNone, out.Cause)
}

func TestConditions(t *testing.T) {
	ctx := context.Background()

	t.Run("text contains trims and reports the observed text", func(t *testing.T) {
		f := drivertest.New()
		loc := driver.ByCSS(".position-location")
		f.SetTexts(loc, "  Istanbul, Turkey \n")

		res, err := TextContains(loc, "Istanbul, Turkey").Check(ctx, f)
		require.NoError(t, err)
		assert.True(t, res.Met)

		res, err = TextContains(loc, "Berlin").Check(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, Result{Cause: CauseMismatch, Detail: "Istanbul, Turkey"}, res)
	})

	t.Run("url contains", func(t *testing.T) {
		f := drivertest.New()
		require.NoError(t, f.Navigate(ctx, "https://useinsider.com/careers/open-positions/?department=qualityassurance"))

		res, err := URLContains("department=qualityassurance").Check(ctx, f)
		require.NoError(t, err)
		assert.True(t, res.Met)

		res, err = URLContains("jobs.lever.co").Check(ctx, f)
		require.NoError(t, err)
		assert.False(t, res.Met)
		assert.Contains(t, res.Detail, "useinsider.com")
	})

	t.Run("handle count", func(t *testing.T) {
		f := drivertest.New()
		res, err := HandleCountGreaterThan(1).Check(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, "1", res.Detail)

		f.OpenTab("lever")
		res, err = HandleCountGreaterThan(1).Check(ctx, f)
		require.NoError(t, err)
		assert.True(t, res.Met)
	})

	t.Run("document ready", func(t *testing.T) {
		f := drivertest.New()
		f.SetReadyStates("loading", "interactive", "complete")
		w := newTestWaiter(t, f)
		require.NoError(t, w.Until(ctx, DocumentReady(), time.Second, ""))
	})

	t.Run("all visible", func(t *testing.T) {
		f := drivertest.New()
		loc := driver.ByCSS(".position-list-item")
		els := f.SetTexts(loc, "QA Engineer", "Senior QA Engineer")

		res, err := AllVisible(loc).Check(ctx, f)
		require.NoError(t, err)
		assert.True(t, res.Met)

		els[1].Visible = false
		res, err = AllVisible(loc).Check(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, CauseNotVisible, res.Cause)
		assert.Equal(t, "match 2 of 2", res.Detail)

		res, err = AllVisible(driver.ByCSS(".none")).Check(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, CauseNotPresent, res.Cause)
	})

	t.Run("all reports the first unmet condition", func(t *testing.T) {
		f := drivertest.New()
		loc := driver.ByID("select2-filter-by-location-container")
		f.SetReadyStates("complete")

		cond := All(DocumentReady(), Clickable(loc))
		assert.Equal(t, `document ready and clickable id=select2-filter-by-location-container`, cond.Name)

		res, err := cond.Check(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, CauseNotPresent, res.Cause)

		f.SetTexts(loc, "All")
		res, err = cond.Check(ctx, f)
		require.NoError(t, err)
		assert.True(t, res.Met)
	})
}

func TestWaitTimeoutError_Message(t *testing.T) {
	err := &WaitTimeoutError{
		Condition: `url contains "jobs.lever.co"`,
		Timeout:   15 * time.Second,
		Message:   "application page",
		Cause:     CauseMismatch,
		Detail:    "about:blank",
	}
	assert.Equal(t, `application page: condition "url contains \"jobs.lever.co\"" not met within 15s (value mismatch), last observed "about:blank"`, err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
