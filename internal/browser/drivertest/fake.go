// Package drivertest provides a scripted, in-memory driver.Driver for tests of
// the synchronization layer. Nothing here talks to a browser.
package drivertest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
)

// Element is one scripted DOM element.
type Element struct {
	Visible bool
	Enabled bool
	Text    string
	// Covered makes real clicks fail with driver.ErrClickIntercepted.
	Covered bool
	// ShowAfter hides the element until its locator has been probed this many times.
	ShowAfter int

	OnClick  func()
	OnHover  func()
	OnScroll func(scrollTop int)

	ScrollTop int
}

// NewElement returns a visible, enabled element with the given text.
func NewElement(text string) *Element {
	return &Element{Visible: true, Enabled: true, Text: text}
}

type tab struct {
	urls  []string
	reads int
}

// Fake implements driver.Driver from scripted state. It is safe for concurrent use.
type Fake struct {
	mu sync.Mutex

	elements map[string][]*Element
	probes   map[string]int

	heights    []int64
	heightRead int
	scrolledTo []int64

	readyStates []string
	readyReads  int

	order  []driver.Handle
	tabs   map[driver.Handle]*tab
	active driver.Handle

	calls []string

	// Errors injects a failure for an operation name such as "click" or "screenshot".
	Errors map[string]error
	// ScreenshotData is returned by Screenshot.
	ScreenshotData []byte
	// Page is returned by HTML.
	Page string
	// OnNavigate runs after every Navigate with the target URL.
	OnNavigate func(url string)
}

var _ driver.Driver = (*Fake)(nil)

// New returns a fake with a single tab named "main" at about:blank.
func New() *Fake {
	f := &Fake{
		elements:       make(map[string][]*Element),
		probes:         make(map[string]int),
		tabs:           make(map[driver.Handle]*tab),
		Errors:         make(map[string]error),
		ScreenshotData: []byte("\x89PNG fake"),
		Page:           "<html><body></body></html>",
	}
	f.order = []driver.Handle{"main"}
	f.tabs["main"] = &tab{urls: []string{"about:blank"}}
	f.active = "main"
	return f
}

func key(loc driver.Locator) string {
	return string(loc.By) + "=" + loc.Value
}

// Set replaces every element matched by loc.
func (f *Fake) Set(loc driver.Locator, els ...*Element) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.elements[key(loc)] = els
}

// Add appends elements to those matched by loc.
func (f *Fake) Add(loc driver.Locator, els ...*Element) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.elements[key(loc)] = append(f.elements[key(loc)], els...)
}

// SetTexts replaces the matches of loc with visible elements carrying texts.
func (f *Fake) SetTexts(loc driver.Locator, texts ...string) []*Element {
	els := make([]*Element, len(texts))
	for i, t := range texts {
		els[i] = NewElement(t)
	}
	f.Set(loc, els...)
	return els
}

// Element returns the element loc points at, or nil.
func (f *Fake) Element(loc driver.Locator) *Element {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookup(loc)
}

func (f *Fake) lookup(loc driver.Locator) *Element {
	els := f.elements[key(loc)]
	if loc.Index < 0 || loc.Index >= len(els) {
		return nil
	}
	return els[loc.Index]
}

// SetScrollHeights scripts successive ScrollHeight results; the last one repeats.
func (f *Fake) SetScrollHeights(heights ...int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heights = heights
	f.heightRead = 0
}

// ScrolledTo lists the offsets passed to ScrollTo.
func (f *Fake) ScrolledTo() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.scrolledTo...)
}

// SetReadyStates scripts successive ReadyState results; the last one repeats.
func (f *Fake) SetReadyStates(states ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readyStates = states
	f.readyReads = 0
}

// OpenTab adds a browsing context whose URL steps through urls on each read.
func (f *Fake) OpenTab(h driver.Handle, urls ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(urls) == 0 {
		urls = []string{"about:blank"}
	}
	f.tabs[h] = &tab{urls: urls}
	f.order = append(f.order, h)
}

// Calls returns the recorded operations, e.g. "click id=jobs-list".
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CountCalls counts recorded operations starting with prefix.
func (f *Fake) CountCalls(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *Fake) record(op string, loc *driver.Locator) error {
	if loc != nil {
		f.calls = append(f.calls, op+" "+loc.String())
	} else {
		f.calls = append(f.calls, op)
	}
	return f.Errors[op]
}

func (f *Fake) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	if err := f.record("navigate", nil); err != nil {
		f.mu.Unlock()
		return err
	}
	f.tabs[f.active] = &tab{urls: []string{url}}
	hook := f.OnNavigate
	f.mu.Unlock()

	if hook != nil {
		hook(url)
	}
	return nil
}

func (f *Fake) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errors["current url"]; err != nil {
		return "", err
	}
	t := f.tabs[f.active]
	i := t.reads
	if i >= len(t.urls) {
		i = len(t.urls) - 1
	}
	t.reads++
	return t.urls[i], nil
}

func (f *Fake) ReadyState(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.readyStates) == 0 {
		return "complete", nil
	}
	i := f.readyReads
	if i >= len(f.readyStates) {
		i = len(f.readyStates) - 1
	}
	f.readyReads++
	return f.readyStates[i], nil
}

func (f *Fake) Probe(ctx context.Context, loc driver.Locator) (driver.ElementState, error) {
	if err := ctx.Err(); err != nil {
		return driver.ElementState{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.Errors["probe"]; err != nil {
		return driver.ElementState{}, err
	}

	k := key(loc)
	f.probes[k]++
	els := f.elements[k]
	el := f.lookup(loc)
	if el == nil || f.probes[k] <= el.ShowAfter {
		return driver.ElementState{Count: len(els)}, nil
	}
	return driver.ElementState{
		Count:   len(els),
		Present: true,
		Visible: el.Visible,
		Enabled: el.Enabled,
		Text:    el.Text,
	}, nil
}

// Probes reports how many times loc was probed.
func (f *Fake) Probes(loc driver.Locator) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probes[key(loc)]
}

func (f *Fake) Texts(ctx context.Context, loc driver.Locator) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("texts", &loc); err != nil {
		return nil, err
	}
	els := f.elements[key(loc)]
	out := make([]string, 0, len(els))
	for _, el := range els {
		if el.Visible {
			out = append(out, el.Text)
		}
	}
	return out, nil
}

// element resolves loc for an action and records the call.
func (f *Fake) element(ctx context.Context, op string, loc driver.Locator) (*Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(op, &loc); err != nil {
		return nil, err
	}
	el := f.lookup(loc)
	if el == nil {
		return nil, fmt.Errorf("%s %s: %w", op, loc, driver.ErrNoSuchElement)
	}
	return el, nil
}

func (f *Fake) Click(ctx context.Context, loc driver.Locator) error {
	el, err := f.element(ctx, "click", loc)
	if err != nil {
		return err
	}
	if el.Covered {
		return fmt.Errorf("click %s: %w", loc, driver.ErrClickIntercepted)
	}
	if el.OnClick != nil {
		el.OnClick()
	}
	return nil
}

func (f *Fake) ScriptClick(ctx context.Context, loc driver.Locator) error {
	el, err := f.element(ctx, "script click", loc)
	if err != nil {
		return err
	}
	if el.OnClick != nil {
		el.OnClick()
	}
	return nil
}

func (f *Fake) Hover(ctx context.Context, loc driver.Locator) error {
	el, err := f.element(ctx, "hover", loc)
	if err != nil {
		return err
	}
	if el.OnHover != nil {
		el.OnHover()
	}
	return nil
}

func (f *Fake) Clear(ctx context.Context, loc driver.Locator) error {
	el, err := f.element(ctx, "clear", loc)
	if err != nil {
		return err
	}
	f.mu.Lock()
	el.Text = ""
	f.mu.Unlock()
	return nil
}

func (f *Fake) SendKeys(ctx context.Context, loc driver.Locator, text string) error {
	el, err := f.element(ctx, "send keys", loc)
	if err != nil {
		return err
	}
	f.mu.Lock()
	el.Text += text
	f.mu.Unlock()
	return nil
}

func (f *Fake) ScrollIntoView(ctx context.Context, loc driver.Locator) error {
	_, err := f.element(ctx, "scroll into view", loc)
	return err
}

func (f *Fake) ScrollBy(ctx context.Context, loc driver.Locator, px int) error {
	el, err := f.element(ctx, "scroll by", loc)
	if err != nil {
		return err
	}
	f.mu.Lock()
	el.ScrollTop += px
	top, hook := el.ScrollTop, el.OnScroll
	f.mu.Unlock()

	if hook != nil {
		hook(top)
	}
	return nil
}

func (f *Fake) ScrollHeight(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("scroll height", nil); err != nil {
		return 0, err
	}
	if len(f.heights) == 0 {
		return 0, nil
	}
	i := f.heightRead
	if i >= len(f.heights) {
		i = len(f.heights) - 1
	}
	f.heightRead++
	return f.heights[i], nil
}

func (f *Fake) ScrollTo(ctx context.Context, y int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("scroll to", nil); err != nil {
		return err
	}
	f.scrolledTo = append(f.scrolledTo, y)
	return nil
}

func (f *Fake) Handles(ctx context.Context) ([]driver.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]driver.Handle(nil), f.order...), nil
}

func (f *Fake) ActiveHandle() driver.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *Fake) SwitchTo(ctx context.Context, h driver.Handle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("switch to "+string(h), nil); err != nil {
		return err
	}
	if _, ok := f.tabs[h]; !ok {
		return fmt.Errorf("switch to %s: no such browsing context", h)
	}
	f.active = h
	return nil
}

func (f *Fake) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("screenshot", nil); err != nil {
		return nil, err
	}
	return f.ScreenshotData, nil
}

func (f *Fake) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("html", nil); err != nil {
		return "", err
	}
	return f.Page, nil
}
