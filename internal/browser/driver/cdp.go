// internal/browser/driver/cdp.go
package driver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// Options tunes the per-call timeouts of the chromedp binding.
type Options struct {
	// OperationTimeout bounds every single driver call except navigation.
	OperationTimeout time.Duration
	// NavigationTimeout bounds Navigate, which waits for the load event.
	NavigationTimeout time.Duration
}

type tabContext struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// CDP implements Driver on top of chromedp. It owns the contexts of any tab it
// attaches to after the first; the first tab belongs to the caller.
type CDP struct {
	logger *zap.Logger
	opts   Options

	mu     sync.Mutex
	root   context.Context
	rootID Handle
	active Handle
	tabs   map[Handle]tabContext
	closed bool

	// Seams for tests; nil means "talk to the browser".
	runActionsFunc func(ctx context.Context, actions ...chromedp.Action) error
	evaluateFunc   func(ctx context.Context, script string) (json.RawMessage, error)
	targetsFunc    func(ctx context.Context) ([]*target.Info, error)
	attachFunc     func(h Handle) (tabContext, error)
}

var _ Driver = (*CDP)(nil)

// NewCDP wraps a chromedp tab context that has already been attached with
// chromedp.Run. That tab becomes the initial active browsing context.
func NewCDP(tabCtx context.Context, logger *zap.Logger, opts Options) (*CDP, error) {
	c := chromedp.FromContext(tabCtx)
	if c == nil || c.Target == nil {
		return nil, errors.New("chromedp context has no attached target; run chromedp.Run on it first")
	}
	return newCDP(tabCtx, Handle(c.Target.TargetID), logger, opts), nil
}

func newCDP(root context.Context, rootID Handle, logger *zap.Logger, opts Options) *CDP {
	if opts.OperationTimeout <= 0 {
		opts.OperationTimeout = 10 * time.Second
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 30 * time.Second
	}
	return &CDP{
		logger: logger.Named("cdp"),
		opts:   opts,
		root:   root,
		rootID: rootID,
		active: rootID,
		tabs:   make(map[Handle]tabContext),
	}
}

// activeContext returns the chromedp context of the active tab.
func (d *CDP) activeContext() context.Context {
	d.mu.Lock()
	defer d.mu.Unlock()
	if tab, ok := d.tabs[d.active]; ok {
		return tab.ctx
	}
	return d.root
}

// runActions runs actions against the active tab, bounded by both the tab's
// lifetime and ctx.
func (d *CDP) runActions(ctx context.Context, actions ...chromedp.Action) error {
	if d.runActionsFunc != nil {
		return d.runActionsFunc(ctx, actions...)
	}
	runCtx, cancel := CombineContext(d.activeContext(), ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// withTimeout applies timeout to ctx for fn and reports failures with the
// caller's cancellation taking priority over the operation deadline.
func (d *CDP) withTimeout(ctx context.Context, op string, timeout time.Duration, fn func(opCtx context.Context) error) error {
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(opCtx)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%s: %w", op, ctx.Err())
	}
	if errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		d.logger.Debug("Driver operation timed out.", zap.String("op", op), zap.Duration("timeout", timeout))
		return fmt.Errorf("%s timed out after %v: %w", op, timeout, opCtx.Err())
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

func (d *CDP) do(ctx context.Context, op string, actions ...chromedp.Action) error {
	return d.withTimeout(ctx, op, d.opts.OperationTimeout, func(opCtx context.Context) error {
		return d.runActions(opCtx, actions...)
	})
}

// evaluate runs script in the active document and decodes its by-value result
// into out. chromedp fills raw through json.Unmarshaler, so it stays an
// encoding/json RawMessage.
func (d *CDP) evaluate(ctx context.Context, op, script string, out interface{}) error {
	var raw json.RawMessage
	err := d.withTimeout(ctx, op, d.opts.OperationTimeout, func(opCtx context.Context) error {
		if d.evaluateFunc != nil {
			var err error
			raw, err = d.evaluateFunc(opCtx, script)
			return err
		}
		return d.runActions(opCtx, chromedp.Evaluate(script, &raw, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithReturnByValue(true).WithAwaitPromise(true).WithSilent(true)
		}))
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := jsoniter.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: failed to decode script result: %w (payload: %s)", op, err, string(raw))
	}
	return nil
}

// evaluateOnElement runs a boolean element script; false means the locator matched nothing.
func (d *CDP) evaluateOnElement(ctx context.Context, op string, loc Locator, script string) error {
	var ok bool
	if err := d.evaluate(ctx, op, script, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s %s: %w", op, loc, ErrNoSuchElement)
	}
	return nil
}

func (d *CDP) Navigate(ctx context.Context, url string) error {
	d.logger.Debug("Navigating.", zap.String("url", url))
	return d.withTimeout(ctx, "navigate", d.opts.NavigationTimeout, func(opCtx context.Context) error {
		return d.runActions(opCtx, chromedp.Navigate(url))
	})
}

func (d *CDP) CurrentURL(ctx context.Context) (string, error) {
	var u string
	if err := d.do(ctx, "current url", chromedp.Location(&u)); err != nil {
		return "", err
	}
	return u, nil
}

func (d *CDP) ReadyState(ctx context.Context) (string, error) {
	var state string
	if err := d.evaluate(ctx, "ready state", readyStateScript, &state); err != nil {
		return "", err
	}
	return state, nil
}

func (d *CDP) Probe(ctx context.Context, loc Locator) (ElementState, error) {
	var state ElementState
	if err := d.evaluate(ctx, "probe "+loc.String(), probeScript(loc), &state); err != nil {
		return ElementState{}, err
	}
	return state, nil
}

func (d *CDP) Texts(ctx context.Context, loc Locator) ([]string, error) {
	var texts []string
	if err := d.evaluate(ctx, "texts "+loc.String(), textsScript(loc), &texts); err != nil {
		return nil, err
	}
	return texts, nil
}

type clickPoint struct {
	Found bool    `json:"found"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Hit   bool    `json:"hit"`
	Cover string  `json:"cover"`
}

func (d *CDP) locate(ctx context.Context, op string, loc Locator) (clickPoint, error) {
	var pt clickPoint
	if err := d.evaluate(ctx, op, clickPointScript(loc), &pt); err != nil {
		return pt, err
	}
	if !pt.Found {
		return pt, fmt.Errorf("%s %s: %w", op, loc, ErrNoSuchElement)
	}
	return pt, nil
}

// Click dispatches a real mouse click at the element's center. It refuses to
// click when another element covers that point and returns ErrClickIntercepted.
func (d *CDP) Click(ctx context.Context, loc Locator) error {
	pt, err := d.locate(ctx, "click", loc)
	if err != nil {
		return err
	}
	if !pt.Hit {
		return fmt.Errorf("click %s (covered by %s): %w", loc, pt.Cover, ErrClickIntercepted)
	}
	return d.do(ctx, "click "+loc.String(), chromedp.MouseClickXY(pt.X, pt.Y))
}

// ScriptClick invokes the element's click() in page script, bypassing hit-testing.
func (d *CDP) ScriptClick(ctx context.Context, loc Locator) error {
	return d.evaluateOnElement(ctx, "script click", loc, scriptClickScript(loc))
}

func (d *CDP) Hover(ctx context.Context, loc Locator) error {
	pt, err := d.locate(ctx, "hover", loc)
	if err != nil {
		return err
	}
	if !pt.Hit {
		d.logger.Debug("Hover point is covered.", zap.Stringer("locator", loc), zap.String("cover", pt.Cover))
	}
	return d.do(ctx, "hover "+loc.String(), chromedp.MouseEvent(input.MouseMoved, pt.X, pt.Y))
}

func (d *CDP) Clear(ctx context.Context, loc Locator) error {
	return d.evaluateOnElement(ctx, "clear", loc, clearScript(loc))
}

// SendKeys focuses the element and types text as key events.
func (d *CDP) SendKeys(ctx context.Context, loc Locator, text string) error {
	if err := d.evaluateOnElement(ctx, "focus", loc, focusScript(loc)); err != nil {
		return err
	}
	return d.do(ctx, "send keys "+loc.String(), chromedp.KeyEvent(text))
}

func (d *CDP) ScrollIntoView(ctx context.Context, loc Locator) error {
	return d.evaluateOnElement(ctx, "scroll into view", loc, scrollIntoViewScript(loc))
}

func (d *CDP) ScrollBy(ctx context.Context, loc Locator, px int) error {
	return d.evaluateOnElement(ctx, "scroll by", loc, scrollByScript(loc, px))
}

func (d *CDP) ScrollHeight(ctx context.Context) (int64, error) {
	var h float64
	if err := d.evaluate(ctx, "scroll height", scrollHeightScript, &h); err != nil {
		return 0, err
	}
	return int64(h), nil
}

func (d *CDP) ScrollTo(ctx context.Context, y int64) error {
	return d.evaluate(ctx, "scroll to", scrollToScript(y), nil)
}

// Handles lists the page targets of the browser in the order CDP reports them.
func (d *CDP) Handles(ctx context.Context) ([]Handle, error) {
	var infos []*target.Info
	err := d.withTimeout(ctx, "list targets", d.opts.OperationTimeout, func(opCtx context.Context) error {
		var err error
		if d.targetsFunc != nil {
			infos, err = d.targetsFunc(opCtx)
			return err
		}
		runCtx, cancel := CombineContext(d.root, opCtx)
		defer cancel()
		infos, err = chromedp.Targets(runCtx)
		return err
	})
	if err != nil {
		return nil, err
	}

	handles := make([]Handle, 0, len(infos))
	for _, info := range infos {
		if info.Type != "page" {
			continue
		}
		handles = append(handles, Handle(info.TargetID))
	}
	return handles, nil
}

func (d *CDP) ActiveHandle() Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// SwitchTo makes h the active browsing context, attaching to it on first use.
func (d *CDP) SwitchTo(ctx context.Context, h Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return errors.New("switch to: driver is closed")
	}
	if h == d.rootID {
		d.active = h
		return nil
	}
	if _, ok := d.tabs[h]; !ok {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("switch to %s: %w", h, err)
		}
		attach := d.attachFunc
		if attach == nil {
			attach = d.attach
		}
		tab, err := attach(h)
		if err != nil {
			return fmt.Errorf("switch to %s failed: %w", h, err)
		}
		d.tabs[h] = tab
	}

	d.logger.Debug("Switched browsing context.", zap.String("from", string(d.active)), zap.String("to", string(h)))
	d.active = h
	return nil
}

func (d *CDP) attach(h Handle) (tabContext, error) {
	tabCtx, cancel := chromedp.NewContext(d.root, chromedp.WithTargetID(target.ID(h)))
	// The first Run attaches to the target; it must receive the tab context itself.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return tabContext{}, err
	}
	return tabContext{ctx: tabCtx, cancel: cancel}, nil
}

func (d *CDP) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := d.do(ctx, "screenshot", chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *CDP) HTML(ctx context.Context) (string, error) {
	var html string
	if err := d.evaluate(ctx, "outer html", outerHTMLScript, &html); err != nil {
		return "", err
	}
	return html, nil
}

// Close releases the tabs this driver attached to. The root tab is left to its owner.
func (d *CDP) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	for h, tab := range d.tabs {
		tab.cancel()
		delete(d.tabs, h)
	}
	d.active = d.rootID
}
