// internal/interact/actions.go
package interact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
	"github.com/xkilldash9x/careerflow/internal/wait"
)

// DefaultExistsTimeout bounds Exists when no timeout is configured.
const DefaultExistsTimeout = 5 * time.Second

// Actions is the set of interaction primitives shared by every page object.
// Each primitive synchronizes through the waiter before touching the page.
type Actions struct {
	waiter        *wait.Waiter
	drv           driver.Driver
	logger        *zap.Logger
	existsTimeout time.Duration
}

// New creates the primitives on top of w. A non-positive existsTimeout means
// DefaultExistsTimeout.
func New(w *wait.Waiter, logger *zap.Logger, existsTimeout time.Duration) *Actions {
	if logger == nil {
		logger = zap.NewNop()
	}
	if existsTimeout <= 0 {
		existsTimeout = DefaultExistsTimeout
	}
	return &Actions{
		waiter:        w,
		drv:           w.Driver(),
		logger:        logger.Named("interact"),
		existsTimeout: existsTimeout,
	}
}

func (a *Actions) Waiter() *wait.Waiter { return a.waiter }

func (a *Actions) Driver() driver.Driver { return a.drv }

// Click waits until loc is clickable and clicks it. A wait that runs out is
// reported as *ElementNotInteractableError. driver.ErrClickIntercepted is
// returned as is so callers can decide on a fallback.
func (a *Actions) Click(ctx context.Context, loc driver.Locator) error {
	err := a.waiter.Until(ctx, wait.Clickable(loc), 0, "element not clickable")
	if err != nil {
		if errors.Is(err, wait.ErrTimeout) {
			return &ElementNotInteractableError{Locator: loc, Err: err}
		}
		return err
	}
	if err := a.drv.Click(ctx, loc); err != nil {
		return err
	}
	a.logger.Debug("Clicked element.", zap.Stringer("locator", loc))
	return nil
}

// ScriptClick dispatches a click from page script once loc is visible. It
// bypasses hit testing, so it works on elements under an overlay.
func (a *Actions) ScriptClick(ctx context.Context, loc driver.Locator) error {
	if err := a.waiter.Until(ctx, wait.Visible(loc), 0, "element not visible"); err != nil {
		return err
	}
	if err := a.drv.ScriptClick(ctx, loc); err != nil {
		return err
	}
	a.logger.Debug("Clicked element from script.", zap.Stringer("locator", loc))
	return nil
}

// Hover moves the pointer over loc once it is visible.
func (a *Actions) Hover(ctx context.Context, loc driver.Locator) error {
	if err := a.waiter.Until(ctx, wait.Visible(loc), 0, "element not visible"); err != nil {
		return err
	}
	if err := a.drv.Hover(ctx, loc); err != nil {
		return err
	}
	a.logger.Debug("Hovered element.", zap.Stringer("locator", loc))
	return nil
}

// Type waits for loc to be visible, clears it and sends text. The value is
// not read back.
func (a *Actions) Type(ctx context.Context, loc driver.Locator, text string) error {
	if err := a.waiter.Until(ctx, wait.Visible(loc), 0, "input not visible"); err != nil {
		return err
	}
	if err := a.drv.Clear(ctx, loc); err != nil {
		return err
	}
	if err := a.drv.SendKeys(ctx, loc, text); err != nil {
		return err
	}
	a.logger.Debug("Typed into element.", zap.Stringer("locator", loc), zap.String("text", text))
	return nil
}

// GetText waits for loc to be visible and returns its trimmed rendered text.
func (a *Actions) GetText(ctx context.Context, loc driver.Locator) (string, error) {
	if err := a.waiter.Until(ctx, wait.Visible(loc), 0, "element not visible"); err != nil {
		return "", err
	}
	s, err := a.drv.Probe(ctx, loc)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(s.Text)
	a.logger.Debug("Read element text.", zap.Stringer("locator", loc), zap.String("text", text))
	return text, nil
}

// Exists reports whether loc becomes visible within the existence timeout.
// It never fails; an absent element and a canceled ctx both yield false.
func (a *Actions) Exists(ctx context.Context, loc driver.Locator) bool {
	out, err := a.waiter.Check(ctx, wait.Visible(loc), a.existsTimeout)
	if err != nil {
		a.logger.Debug("Existence check aborted.", zap.Stringer("locator", loc), zap.Error(err))
		return false
	}
	a.logger.Debug("Checked element existence.",
		zap.Stringer("locator", loc),
		zap.Bool("exists", out.Met),
		zap.Duration("elapsed", out.Elapsed))
	return out.Met
}

// ScrollIntoView scrolls the page so loc is centered. Only presence is
// required, which lets it reveal elements that are not yet rendered visibly.
func (a *Actions) ScrollIntoView(ctx context.Context, loc driver.Locator) error {
	if err := a.waiter.Until(ctx, wait.Present(loc), 0, "element not present"); err != nil {
		return err
	}
	if err := a.drv.ScrollIntoView(ctx, loc); err != nil {
		return err
	}
	a.logger.Debug("Scrolled to element.", zap.Stringer("locator", loc))
	return nil
}

// Navigate loads url in the active browsing context and waits for the
// document to finish loading.
func (a *Actions) Navigate(ctx context.Context, url string) error {
	if err := a.drv.Navigate(ctx, url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := a.WaitDocumentReady(ctx, 0); err != nil {
		return err
	}
	a.logger.Info("Opened page.", zap.String("url", url))
	return nil
}

func (a *Actions) WaitVisible(ctx context.Context, loc driver.Locator, timeout time.Duration, message string) error {
	return a.waiter.Until(ctx, wait.Visible(loc), timeout, message)
}

func (a *Actions) WaitClickable(ctx context.Context, loc driver.Locator, timeout time.Duration, message string) error {
	return a.waiter.Until(ctx, wait.Clickable(loc), timeout, message)
}

func (a *Actions) WaitInvisible(ctx context.Context, loc driver.Locator, timeout time.Duration, message string) error {
	return a.waiter.Until(ctx, wait.Invisible(loc), timeout, message)
}

func (a *Actions) WaitAllVisible(ctx context.Context, loc driver.Locator, timeout time.Duration, message string) error {
	return a.waiter.Until(ctx, wait.AllVisible(loc), timeout, message)
}

func (a *Actions) WaitURLContains(ctx context.Context, substr string, timeout time.Duration) error {
	return a.waiter.Until(ctx, wait.URLContains(substr), timeout, "unexpected page URL")
}

func (a *Actions) WaitDocumentReady(ctx context.Context, timeout time.Duration) error {
	return a.waiter.Until(ctx, wait.DocumentReady(), timeout, "document did not finish loading")
}

// Texts returns the trimmed text of every visible match of loc. It does not
// wait; an empty result is not an error.
func (a *Actions) Texts(ctx context.Context, loc driver.Locator) ([]string, error) {
	raw, err := a.drv.Texts(ctx, loc)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(raw))
	for i, t := range raw {
		texts[i] = strings.TrimSpace(t)
	}
	return texts, nil
}

// States probes every current match of loc in document order. Hidden matches
// are included so indexes line up with loc.Nth.
func (a *Actions) States(ctx context.Context, loc driver.Locator) ([]driver.ElementState, error) {
	first, err := a.drv.Probe(ctx, loc.Nth(0))
	if err != nil {
		return nil, err
	}
	if first.Count == 0 {
		return nil, nil
	}
	states := make([]driver.ElementState, first.Count)
	states[0] = first
	for i := 1; i < first.Count; i++ {
		if states[i], err = a.drv.Probe(ctx, loc.Nth(i)); err != nil {
			return nil, err
		}
	}
	return states, nil
}

// ScrollBy scrolls the scrollable element loc by px pixels. The page itself
// does not move.
func (a *Actions) ScrollBy(ctx context.Context, loc driver.Locator, px int) error {
	if err := a.waiter.Until(ctx, wait.Present(loc), 0, "scroll container not present"); err != nil {
		return err
	}
	if err := a.drv.ScrollBy(ctx, loc, px); err != nil {
		return err
	}
	a.logger.Debug("Scrolled container.", zap.Stringer("locator", loc), zap.Int("px", px))
	return nil
}

// Count returns how many elements loc currently matches.
func (a *Actions) Count(ctx context.Context, loc driver.Locator) (int, error) {
	s, err := a.drv.Probe(ctx, loc.Nth(0))
	if err != nil {
		return 0, err
	}
	return s.Count, nil
}

func (a *Actions) CurrentURL(ctx context.Context) (string, error) {
	return a.drv.CurrentURL(ctx)
}

// Pause sleeps for d or until ctx ends.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	return chromedp.Sleep(d).Do(ctx)
}
