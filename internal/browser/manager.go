// internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
	"github.com/xkilldash9x/careerflow/internal/config"
)

// Manager launches Chrome instances and hands them out as sessions.
type Manager struct {
	cfg    config.Interface
	logger *zap.Logger
}

// NewManager creates a manager for the configured browser.
func NewManager(cfg config.Interface, logger *zap.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logger.Named("browser_manager")}
}

// Session is one running browser with its driver. Close it on every exit path.
type Session struct {
	id     string
	logger *zap.Logger
	driver *driver.CDP

	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewSession starts Chrome, attaches to its first tab and wraps it in a driver.
// Startup is bounded by browser.startup_timeout and by ctx.
func (m *Manager) NewSession(ctx context.Context) (*Session, error) {
	browserCfg := m.cfg.Browser()
	sessionID := uuid.New().String()
	logger := m.logger.With(zap.String("session_id", sessionID))

	// The browser must outlive the startup deadline, so it hangs off a detached context.
	allocCtx, allocCancel := chromedp.NewExecAllocator(driver.Detach(ctx), DefaultAllocatorOptions(browserCfg)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(logger.Sugar().Debugf),
		chromedp.WithErrorf(logger.Sugar().Errorf),
	)

	startCtx, cancelStart := context.WithTimeout(ctx, browserCfg.StartupTimeout)
	defer cancelStart()

	started := make(chan error, 1)
	go func() {
		// The first Run allocates the browser and must get the tab context itself.
		started <- chromedp.Run(tabCtx)
	}()

	select {
	case err := <-started:
		if err != nil {
			tabCancel()
			allocCancel()
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
	case <-startCtx.Done():
		tabCancel()
		allocCancel()
		<-started
		return nil, fmt.Errorf("browser did not start within %v: %w", browserCfg.StartupTimeout, startCtx.Err())
	}

	drv, err := driver.NewCDP(tabCtx, logger, driver.Options{
		OperationTimeout:  browserCfg.OperationTimeout,
		NavigationTimeout: m.cfg.Navigation().PageLoadTimeout,
	})
	if err != nil {
		tabCancel()
		allocCancel()
		return nil, err
	}

	logger.Info("Browser session started.", zap.Bool("headless", browserCfg.Headless))
	return &Session{
		id:          sessionID,
		logger:      logger,
		driver:      drv,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
	}, nil
}

func (s *Session) ID() string { return s.id }

// Driver returns the session's browser driver.
func (s *Session) Driver() driver.Driver { return s.driver }

// Close shuts the browser down. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.logger.Debug("Closing browser session.")
	s.driver.Close()
	s.tabCancel()
	s.allocCancel()
	return nil
}
