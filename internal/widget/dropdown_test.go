// internal/widget/dropdown_test.go
package widget

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
	"github.com/xkilldash9x/careerflow/internal/config"
	"github.com/xkilldash9x/careerflow/internal/interact"
	"github.com/xkilldash9x/careerflow/internal/wait"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var locationFilter = Locators{
	Trigger:  driver.ByID("select2-filter-by-location-container"),
	Panel:    driver.ByCSS("span.select2-dropdown"),
	Options:  driver.ByCSS("li.select2-results__option"),
	Scroller: driver.ByCSS("ul.select2-results__options"),
}

// fakeSelect2 scripts a Select2 widget on a fake driver. Clicking the trigger
// opens the panel with the initial options; each scroll of the panel by one
// step appends the next page of options; clicking an option closes the panel
// unless stayOpen is set.
type fakeSelect2 struct {
	f        *drivertest.Fake
	trigger  *drivertest.Element
	stayOpen bool
}

func newFakeSelect2(f *drivertest.Fake, step int, initial []string, pages ...[]string) *fakeSelect2 {
	s := &fakeSelect2{f: f, trigger: drivertest.NewElement("All")}

	scroller := drivertest.NewElement("")
	scroller.OnScroll = func(top int) {
		if n := top / step; n >= 1 && n <= len(pages) {
			f.Add(locationFilter.Options, s.options(pages[n-1])...)
		}
	}
	s.trigger.OnClick = func() {
		f.Set(locationFilter.Panel, drivertest.NewElement(""))
		f.Set(locationFilter.Scroller, scroller)
		f.Set(locationFilter.Options, s.options(initial)...)
	}
	f.Set(locationFilter.Trigger, s.trigger)
	return s
}

func (s *fakeSelect2) options(texts []string) []*drivertest.Element {
	els := make([]*drivertest.Element, len(texts))
	for i, text := range texts {
		el := drivertest.NewElement(text)
		el.OnClick = func() {
			if !s.stayOpen {
				s.f.Set(locationFilter.Panel)
			}
		}
		els[i] = el
	}
	return els
}

func newTestDropdown(t *testing.T, f *drivertest.Fake, maxSteps int) *Dropdown {
	t.Helper()
	logger := zaptest.NewLogger(t)
	w := wait.New(f,
		wait.WithInterval(2*time.Millisecond),
		wait.WithDefaultTimeout(50*time.Millisecond),
		wait.WithLogger(logger))
	a := interact.New(w, logger, 20*time.Millisecond)
	return New(a, locationFilter, config.DropdownConfig{
		ScrollStep: 200,
		MaxSteps:   maxSteps,
		Pause:      time.Millisecond,
	}, logger)
}

func TestSelect_InitialViewNeedsNoScroll(t *testing.T) {
	f := drivertest.New()
	newFakeSelect2(f, 200, []string{"All", "Istanbul, Turkiye", "Berlin, Germany"})

	res, err := newTestDropdown(t, f, 15).Select(context.Background(), "Istanbul, Turkiye")
	require.NoError(t, err)

	assert.Equal(t, SelectResult{Option: "Istanbul, Turkiye", ScrollSteps: 0, Attempts: 1}, res)
	assert.Zero(t, f.CountCalls("scroll by"))
	assert.Equal(t, 1, f.CountCalls("scroll into view id=select2-filter-by-location-container"))
	assert.Equal(t, 1, f.CountCalls("click css=li.select2-results__option[1]"))
	assert.Nil(t, f.Element(locationFilter.Panel), "panel closes after selection")
}

func TestSelect_ScrollsPanelUntilOptionRenders(t *testing.T) {
	for n := 1; n <= 4; n++ {
		f := drivertest.New()
		pages := make([][]string, n)
		for i := range pages[:n-1] {
			pages[i] = []string{"Filler " + string(rune('A'+i))}
		}
		pages[n-1] = []string{"Istanbul, Turkiye"}
		newFakeSelect2(f, 200, []string{"All", "Amsterdam"}, pages...)

		res, err := newTestDropdown(t, f, 15).Select(context.Background(), "Istanbul, Turkiye")
		require.NoError(t, err, "n=%d", n)
		assert.Equal(t, n, res.ScrollSteps, "n=%d", n)
		assert.Equal(t, n+1, res.Attempts, "n=%d", n)
		assert.Equal(t, n, f.CountCalls("scroll by css=ul.select2-results__options"), "n=%d", n)
	}
}

func TestSelect_ClicksOnlyTheRenderedOption(t *testing.T) {
	f := drivertest.New()
	newFakeSelect2(f, 200, []string{"All"}, []string{"Ankara, Turkiye"}, []string{"Istanbul, Turkiye"})

	_, err := newTestDropdown(t, f, 15).Select(context.Background(), "Istanbul, Turkiye")
	require.NoError(t, err)

	var optionClicks []string
	for _, c := range f.Calls() {
		if c == "click css=li.select2-results__option[2]" || c == "click css=li.select2-results__option[1]" {
			optionClicks = append(optionClicks, c)
		}
	}
	assert.Equal(t, []string{"click css=li.select2-results__option[2]"}, optionClicks)
}

func TestSelect_NormalizedCaseSensitiveMatch(t *testing.T) {
	f := drivertest.New()
	newFakeSelect2(f, 200, []string{"  Quality\n   Assurance "})

	res, err := newTestDropdown(t, f, 0).Select(context.Background(), "Quality Assurance")
	require.NoError(t, err)
	assert.Equal(t, "Quality Assurance", res.Option)

	f = drivertest.New()
	newFakeSelect2(f, 200, []string{"Quality Assurance"})
	_, err = newTestDropdown(t, f, 0).Select(context.Background(), "quality assurance")
	var nf *OptionNotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestSelect_InterceptedTriggerFallsBackToScriptClick(t *testing.T) {
	f := drivertest.New()
	s := newFakeSelect2(f, 200, []string{"Istanbul, Turkiye"})
	s.trigger.Covered = true

	_, err := newTestDropdown(t, f, 15).Select(context.Background(), "Istanbul, Turkiye")
	require.NoError(t, err)
	assert.Equal(t, 1, f.CountCalls("click id=select2-filter-by-location-container"))
	assert.Equal(t, 1, f.CountCalls("script click id=select2-filter-by-location-container"))
}

func TestSelect_OpenFailures(t *testing.T) {
	t.Run("panel never visible", func(t *testing.T) {
		f := drivertest.New()
		s := newFakeSelect2(f, 200, nil)
		s.trigger.OnClick = nil

		_, err := newTestDropdown(t, f, 15).Select(context.Background(), "Istanbul, Turkiye")
		var oe *DropdownOpenError
		require.ErrorAs(t, err, &oe)
		assert.Equal(t, locationFilter.Trigger, oe.Trigger)

		var te *wait.WaitTimeoutError
		require.ErrorAs(t, err, &te)
		assert.Contains(t, te.Condition, "span.select2-dropdown")
	})

	t.Run("trigger missing", func(t *testing.T) {
		_, err := newTestDropdown(t, drivertest.New(), 15).Select(context.Background(), "Istanbul, Turkiye")
		var oe *DropdownOpenError
		require.ErrorAs(t, err, &oe)
		assert.ErrorIs(t, err, wait.ErrTimeout)
	})

	t.Run("script click fails too", func(t *testing.T) {
		f := drivertest.New()
		s := newFakeSelect2(f, 200, nil)
		s.trigger.Covered = true
		boom := errors.New("execution context was destroyed")
		f.Errors["script click"] = boom

		_, err := newTestDropdown(t, f, 15).Select(context.Background(), "Istanbul, Turkiye")
		var oe *DropdownOpenError
		require.ErrorAs(t, err, &oe)
		assert.ErrorIs(t, err, boom)
	})
}

func TestSelect_PanelStaysOpen(t *testing.T) {
	f := drivertest.New()
	s := newFakeSelect2(f, 200, []string{"Istanbul, Turkiye"})
	s.stayOpen = true

	_, err := newTestDropdown(t, f, 15).Select(context.Background(), "Istanbul, Turkiye")
	var se *OptionSelectError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Istanbul, Turkiye", se.Target)

	var te *wait.WaitTimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, wait.CauseStillVisible, te.Cause)
}

func TestSelect_NotFoundAfterMaxSteps(t *testing.T) {
	f := drivertest.New()
	newFakeSelect2(f, 200, []string{"All", "Ankara, Turkiye"}, []string{"Berlin, Germany"}, []string{"Ankara, Turkiye"})

	res, err := newTestDropdown(t, f, 3).Select(context.Background(), "Istanbul, Turkiye")

	var nf *OptionNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Istanbul, Turkiye", nf.Target)
	assert.Equal(t, 3, nf.Steps)
	assert.Equal(t, []string{"All", "Ankara, Turkiye", "Berlin, Germany"}, nf.Seen)
	assert.Equal(t, 4, res.Attempts)
	assert.Contains(t, err.Error(), `option "Istanbul, Turkiye" not found after 3 scroll steps`)
}

func TestSelect_ContextCanceledDuringSearch(t *testing.T) {
	f := drivertest.New()
	newFakeSelect2(f, 200, []string{"All"})

	d := newTestDropdown(t, f, 15)
	d.Pause = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	_, err := d.Select(ctx, "Istanbul, Turkiye")
	assert.ErrorIs(t, err, context.Canceled)
	var nf *OptionNotFoundError
	assert.False(t, errors.As(err, &nf))
}

func TestNew_Defaults(t *testing.T) {
	d := New(nil, locationFilter, config.DropdownConfig{MaxSteps: -1}, nil)
	assert.Equal(t, DefaultStep, d.Step)
	assert.Equal(t, DefaultMaxSteps, d.MaxSteps)
	assert.Equal(t, DefaultPause, d.Pause)
}

func TestNormalize(t *testing.T) {
	testCases := map[string]string{
		"Istanbul, Turkiye":        "Istanbul, Turkiye",
		"  Istanbul,\n\tTurkiye  ": "Istanbul, Turkiye",
		"Quality   Assurance":      "Quality Assurance",
		"Quality\u00a0Assurance":   "Quality Assurance",
		"QUALITY assurance":        "QUALITY assurance",
		" \n ":                     "",
		"":                         "",
	}
	for in, want := range testCases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}
