// internal/widget/dropdown.go
package widget

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
	"github.com/xkilldash9x/careerflow/internal/config"
	"github.com/xkilldash9x/careerflow/internal/interact"
)

const (
	DefaultStep     = 200
	DefaultMaxSteps = 15
	DefaultPause    = 250 * time.Millisecond
)

// Locators addresses the parts of a Select2-style dropdown.
type Locators struct {
	// Trigger opens the panel when clicked.
	Trigger driver.Locator
	// Panel is the options container that is visible while the dropdown is open.
	Panel driver.Locator
	// Options matches every option item in the panel.
	Options driver.Locator
	// Scroller is the panel's own scroll container.
	Scroller driver.Locator
}

// Dropdown drives a searchable dropdown whose options render lazily inside a
// scrollable panel. Two scroll domains are involved: the page is scrolled to
// bring the trigger into view, and the panel is scrolled to reveal options.
type Dropdown struct {
	Locators

	Step     int
	MaxSteps int
	Pause    time.Duration

	actions *interact.Actions
	logger  *zap.Logger
}

// SelectResult reports how much searching a selection took. An option in the
// initial view needs zero scroll steps and one attempt.
type SelectResult struct {
	Option      string
	ScrollSteps int
	Attempts    int
}

// New creates a dropdown driver. Zero values in cfg fall back to the package
// defaults, except MaxSteps where zero disables panel scrolling.
func New(a *interact.Actions, locs Locators, cfg config.DropdownConfig, logger *zap.Logger) *Dropdown {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dropdown{
		Locators: locs,
		Step:     cfg.ScrollStep,
		MaxSteps: cfg.MaxSteps,
		Pause:    cfg.Pause,
		actions:  a,
		logger:   logger.Named("dropdown"),
	}
	if d.Step <= 0 {
		d.Step = DefaultStep
	}
	if d.MaxSteps < 0 {
		d.MaxSteps = DefaultMaxSteps
	}
	if d.Pause <= 0 {
		d.Pause = DefaultPause
	}
	return d
}

// Normalize collapses internal whitespace runs to one space and trims the
// ends. Case is preserved.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Select opens the dropdown and picks the option whose normalized text equals
// the normalized target, scrolling the panel until it shows up.
func (d *Dropdown) Select(ctx context.Context, text string) (SelectResult, error) {
	var res SelectResult
	if err := d.open(ctx); err != nil {
		return res, err
	}

	target := Normalize(text)
	var seen []string
	known := make(map[string]bool)

	for step := 0; ; step++ {
		res.Attempts = step + 1

		states, err := d.actions.States(ctx, d.Options)
		if err != nil {
			return res, err
		}
		for i, s := range states {
			if !s.Present || !s.Visible {
				continue
			}
			label := Normalize(s.Text)
			if !known[label] {
				known[label] = true
				seen = append(seen, label)
			}
			if label != target {
				continue
			}
			if err := d.choose(ctx, d.Options.Nth(i), text); err != nil {
				return res, err
			}
			res.Option = label
			d.logger.Info("Selected option.",
				zap.String("option", label),
				zap.Int("scroll_steps", res.ScrollSteps),
				zap.Int("attempts", res.Attempts))
			return res, nil
		}

		if step >= d.MaxSteps {
			break
		}
		if err := d.actions.ScrollBy(ctx, d.Scroller, d.Step); err != nil {
			return res, err
		}
		res.ScrollSteps++
		if err := interact.Pause(ctx, d.Pause); err != nil {
			return res, err
		}
	}

	d.logger.Warn("Option not found in dropdown.",
		zap.String("target", text),
		zap.Int("scroll_steps", res.ScrollSteps),
		zap.Strings("seen", seen))
	return res, &OptionNotFoundError{Target: text, Seen: seen, Steps: res.ScrollSteps}
}

// open brings the trigger into view, clicks it and waits for the panel. An
// intercepted click is retried once from script.
func (d *Dropdown) open(ctx context.Context) error {
	if err := d.actions.ScrollIntoView(ctx, d.Trigger); err != nil {
		return d.openErr(ctx, err)
	}

	err := d.actions.Click(ctx, d.Trigger)
	if errors.Is(err, driver.ErrClickIntercepted) {
		d.logger.Debug("Trigger click intercepted, retrying from script.", zap.Stringer("trigger", d.Trigger))
		err = d.actions.ScriptClick(ctx, d.Trigger)
	}
	if err != nil {
		return d.openErr(ctx, err)
	}

	if err := d.actions.WaitVisible(ctx, d.Panel, 0, "dropdown panel not visible"); err != nil {
		return d.openErr(ctx, err)
	}
	return nil
}

func (d *Dropdown) openErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return err
	}
	return &DropdownOpenError{Trigger: d.Trigger, Err: err}
}

func (d *Dropdown) choose(ctx context.Context, opt driver.Locator, text string) error {
	if err := d.actions.Hover(ctx, opt); err != nil {
		return d.selectErr(ctx, text, err)
	}
	if err := d.actions.Click(ctx, opt); err != nil {
		return d.selectErr(ctx, text, err)
	}
	if err := d.actions.WaitInvisible(ctx, d.Panel, 0, "dropdown panel still open"); err != nil {
		return d.selectErr(ctx, text, err)
	}
	return nil
}

func (d *Dropdown) selectErr(ctx context.Context, text string, err error) error {
	if ctx.Err() != nil {
		return err
	}
	return &OptionSelectError{Target: text, Err: err}
}
