// internal/pages/careers.go
package pages

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
	"github.com/xkilldash9x/careerflow/internal/config"
	"github.com/xkilldash9x/careerflow/internal/interact"
)

var (
	LocationsBlock     = driver.ByID("career-our-location")
	TeamsBlock         = driver.ByID("career-find-our-calling")
	LifeAtInsiderBlock = driver.ByXPath("//section[@data-id='a8e7b90']//h2[contains(@class,'elementor-heading-title')][normalize-space()='Life at Insider']")
	QAJobsLink         = driver.ByXPath("//a[contains(@href, '/careers/open-positions/') and normalize-space()='See all QA jobs']")
)

// CareersPage covers the careers landing page and the QA team page.
type CareersPage struct {
	actions *interact.Actions
	cfg     config.ScenarioConfig
	logger  *zap.Logger
}

func NewCareersPage(a *interact.Actions, cfg config.Interface, logger *zap.Logger) *CareersPage {
	return &CareersPage{actions: a, cfg: cfg.Scenario(), logger: named(logger, "careers")}
}

// VerifyBlocks checks that the Our Locations, Teams and Life at Insider
// sections are rendered.
func (p *CareersPage) VerifyBlocks(ctx context.Context) error {
	blocks := []struct {
		name string
		loc  driver.Locator
	}{
		{"Our Locations", LocationsBlock},
		{"Teams", TeamsBlock},
		{"Life at Insider", LifeAtInsiderBlock},
	}
	for _, b := range blocks {
		if !p.actions.Exists(ctx, b.loc) {
			if err := ctx.Err(); err != nil {
				return err
			}
			return &AssertionFailure{Page: "careers", Check: b.name + " block missing"}
		}
	}
	p.logger.Info("Verified careers page blocks.")
	return nil
}

// GoToQA opens the Quality Assurance team page directly.
func (p *CareersPage) GoToQA(ctx context.Context) error {
	if err := p.actions.Navigate(ctx, p.cfg.QACareersURL); err != nil {
		return err
	}
	p.logger.Info("Opened quality assurance page.")
	return nil
}

// GoToQAJobs follows "See all QA jobs" and waits for the filtered listing URL.
func (p *CareersPage) GoToQAJobs(ctx context.Context) error {
	if err := p.actions.ScrollIntoView(ctx, QAJobsLink); err != nil {
		return err
	}
	if err := p.actions.Click(ctx, QAJobsLink); err != nil {
		return err
	}
	if err := p.actions.WaitURLContains(ctx, p.cfg.ListingURLFragment, 0); err != nil {
		return err
	}
	p.logger.Info("Navigated to QA jobs listing.")
	return nil
}
