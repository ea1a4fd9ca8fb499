// internal/browser/driver/interfaces.go
package driver

import (
	"context"
	"errors"
)

var (
	// ErrClickIntercepted means another element sits on top of the click point.
	// It is transient: callers may retry locally, e.g. with ScriptClick.
	ErrClickIntercepted = errors.New("click intercepted by another element")
	// ErrNoSuchElement means the locator matched nothing when the action ran.
	ErrNoSuchElement = errors.New("no such element")
)

// Handle identifies one browsing context (a tab).
type Handle string

// ElementState is one atomic observation of a located element.
type ElementState struct {
	// Count is the number of elements the locator expression matches.
	Count   int    `json:"count"`
	Present bool   `json:"present"`
	Visible bool   `json:"visible"`
	Enabled bool   `json:"enabled"`
	Text    string `json:"text"`
}

// Interactable reports whether the element could take a click right now.
func (s ElementState) Interactable() bool {
	return s.Present && s.Visible && s.Enabled
}

// Driver is the capability set the synchronization layer needs from a browser.
// Every method resolves its locator anew and acts on the active browsing context.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	ReadyState(ctx context.Context) (string, error)

	Probe(ctx context.Context, loc Locator) (ElementState, error)
	// Texts returns the visible text of every match, in document order.
	Texts(ctx context.Context, loc Locator) ([]string, error)

	Click(ctx context.Context, loc Locator) error
	ScriptClick(ctx context.Context, loc Locator) error
	Hover(ctx context.Context, loc Locator) error
	Clear(ctx context.Context, loc Locator) error
	SendKeys(ctx context.Context, loc Locator, text string) error

	ScrollIntoView(ctx context.Context, loc Locator) error
	// ScrollBy scrolls a scrollable element's own content by px pixels.
	ScrollBy(ctx context.Context, loc Locator, px int) error
	ScrollHeight(ctx context.Context) (int64, error)
	ScrollTo(ctx context.Context, y int64) error

	Handles(ctx context.Context) ([]Handle, error)
	ActiveHandle() Handle
	SwitchTo(ctx context.Context, h Handle) error

	Screenshot(ctx context.Context) ([]byte, error)
	HTML(ctx context.Context) (string, error)
}
