// internal/pages/home.go
package pages

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
	"github.com/xkilldash9x/careerflow/internal/config"
	"github.com/xkilldash9x/careerflow/internal/interact"
)

var (
	CompanyMenu  = driver.ByXPath("//a[contains(@class,'dropdown-toggle') and normalize-space(text())='Company']")
	CareersLink  = driver.ByXPath("//a[@class='dropdown-sub' and normalize-space(text())='Careers']")
	CookieReject = driver.ByXPath("//a[@id='wt-cli-reject-btn']")
)

// HomePage is the site's landing page.
type HomePage struct {
	actions *interact.Actions
	cfg     config.ScenarioConfig
	logger  *zap.Logger
}

func NewHomePage(a *interact.Actions, cfg config.Interface, logger *zap.Logger) *HomePage {
	return &HomePage{actions: a, cfg: cfg.Scenario(), logger: named(logger, "home")}
}

// Open loads the configured base URL.
func (p *HomePage) Open(ctx context.Context) error {
	if err := p.actions.Navigate(ctx, p.cfg.BaseURL); err != nil {
		return err
	}
	p.logger.Info("Opened homepage.", zap.String("url", p.cfg.BaseURL))
	return nil
}

// RejectCookies dismisses the cookie banner if it shows up within the
// existence timeout. A missing banner is not an error.
func (p *HomePage) RejectCookies(ctx context.Context) error {
	if !p.actions.Exists(ctx, CookieReject) {
		p.logger.Info("No cookie banner shown.")
		return ctx.Err()
	}
	if err := p.actions.Click(ctx, CookieReject); err != nil {
		return err
	}
	p.logger.Info("Cookie banner rejected.")
	return nil
}

// GoToCareers opens the Company menu and follows its Careers entry.
func (p *HomePage) GoToCareers(ctx context.Context) error {
	if err := p.actions.Click(ctx, CompanyMenu); err != nil {
		return err
	}
	if err := p.actions.Click(ctx, CareersLink); err != nil {
		return err
	}
	if err := p.actions.WaitURLContains(ctx, "/careers", 0); err != nil {
		return err
	}
	p.logger.Info("Navigated to careers page.")
	return nil
}

func named(logger *zap.Logger, name string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger.Named("pages").Named(name)
}
