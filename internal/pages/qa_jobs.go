// internal/pages/qa_jobs.go
package pages

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
	"github.com/xkilldash9x/careerflow/internal/config"
	"github.com/xkilldash9x/careerflow/internal/interact"
	"github.com/xkilldash9x/careerflow/internal/navigation"
	"github.com/xkilldash9x/careerflow/internal/widget"
)

var (
	LocationFilterTrigger   = driver.ByID("select2-filter-by-location-container")
	DepartmentFilterTrigger = driver.ByID("select2-filter-by-department-container")
	FilterTriggers          = driver.ByCSS("#select2-filter-by-location-container, #select2-filter-by-department-container")

	// Select2 renders one shared results panel, attached to <body>, for
	// whichever filter is open.
	Select2Panel    = driver.ByCSS("span.select2-dropdown")
	Select2Options  = driver.ByCSS("ul.select2-results__options li.select2-results__option")
	Select2Scroller = driver.ByCSS("ul.select2-results__options")

	JobsList = driver.ByID("jobs-list")
	JobCards = driver.ByCSS("#jobs-list .position-list-item")
)

// ViewRoleOf locates the View Role link inside the index-th job card (0-based).
// The link only renders while its card is hovered.
func ViewRoleOf(index int) driver.Locator {
	return driver.ByXPath(fmt.Sprintf(
		"(//div[@id='jobs-list']//div[contains(@class,'position-list-item')])[%d]//a[contains(., 'View Role')]", index+1))
}

// QAJobsPage is the open-positions listing with its Select2 filters.
type QAJobsPage struct {
	actions  *interact.Actions
	switcher *navigation.Switcher

	location   *widget.Dropdown
	department *widget.Dropdown

	cfg           config.ScenarioConfig
	readyTimeout  time.Duration
	switchTimeout time.Duration
	stability     interact.StabilityOptions
	logger        *zap.Logger
}

func NewQAJobsPage(a *interact.Actions, sw *navigation.Switcher, cfg config.Interface, logger *zap.Logger) *QAJobsPage {
	logger = named(logger, "qa_jobs")
	st := cfg.Stability()
	return &QAJobsPage{
		actions:  a,
		switcher: sw,
		location: widget.New(a, widget.Locators{
			Trigger:  LocationFilterTrigger,
			Panel:    Select2Panel,
			Options:  Select2Options,
			Scroller: Select2Scroller,
		}, cfg.Dropdown(), logger),
		department: widget.New(a, widget.Locators{
			Trigger:  DepartmentFilterTrigger,
			Panel:    Select2Panel,
			Options:  Select2Options,
			Scroller: Select2Scroller,
		}, cfg.Dropdown(), logger),
		cfg:           cfg.Scenario(),
		readyTimeout:  cfg.Wait().FiltersReadyTimeout,
		switchTimeout: cfg.Navigation().ContextSwitchTimeout,
		stability: interact.StabilityOptions{
			MaxPasses:    st.MaxPasses,
			SettleChecks: st.SettleChecks,
			Pause:        st.Pause,
		},
		logger: logger,
	}
}

// WaitUntilFiltersReady waits for the document to load and for both filter
// triggers to be visible and clickable.
func (p *QAJobsPage) WaitUntilFiltersReady(ctx context.Context) error {
	if err := p.actions.WaitDocumentReady(ctx, p.readyTimeout); err != nil {
		return err
	}
	if err := p.actions.WaitAllVisible(ctx, FilterTriggers, p.readyTimeout, "filter triggers not visible"); err != nil {
		return err
	}
	for _, trigger := range []driver.Locator{LocationFilterTrigger, DepartmentFilterTrigger} {
		if err := p.actions.WaitClickable(ctx, trigger, p.readyTimeout, "filter trigger not clickable"); err != nil {
			return err
		}
	}
	p.logger.Info("Job filters are ready.")
	return nil
}

// FilterJobs picks location and department in the Select2 filters.
func (p *QAJobsPage) FilterJobs(ctx context.Context, location, department string) error {
	if _, err := p.location.Select(ctx, location); err != nil {
		return fmt.Errorf("location filter: %w", err)
	}
	if _, err := p.department.Select(ctx, department); err != nil {
		return fmt.Errorf("department filter: %w", err)
	}
	p.logger.Info("Applied job filters.",
		zap.String("location", location),
		zap.String("department", department))
	return nil
}

// VerifyJobsLoaded lets the lazily loaded listing settle, then returns the
// number of job cards. An empty listing is an AssertionFailure.
func (p *QAJobsPage) VerifyJobsLoaded(ctx context.Context) (int, error) {
	if err := p.actions.WaitVisible(ctx, JobsList, 0, "jobs list not shown"); err != nil {
		return 0, err
	}
	if _, err := p.actions.ScrollToBottomUntilStable(ctx, p.stability); err != nil {
		return 0, err
	}
	if err := p.actions.WaitVisible(ctx, JobCards, 0, "no job card rendered"); err != nil {
		if ctx.Err() != nil {
			return 0, err
		}
		return 0, &AssertionFailure{Page: "qa jobs", Check: "no job cards found"}
	}
	n, err := p.actions.Count(ctx, JobCards)
	if err != nil {
		return 0, err
	}
	p.logger.Info("Job cards loaded.", zap.Int("count", n))
	return n, nil
}

// OpenJobByIndexViaHover hovers the index-th job card (0-based) to reveal its
// View Role link and clicks it.
func (p *QAJobsPage) OpenJobByIndexViaHover(ctx context.Context, index int) error {
	n, err := p.actions.Count(ctx, JobCards)
	if err != nil {
		return err
	}
	if n == 0 {
		return &AssertionFailure{Page: "qa jobs", Check: "no job cards found"}
	}
	if index < 0 || index >= n {
		return &AssertionFailure{
			Page:  "qa jobs",
			Check: fmt.Sprintf("index %d out of range; only %d jobs", index, n),
		}
	}

	card := JobCards.Nth(index)
	if err := p.actions.ScrollIntoView(ctx, card); err != nil {
		return err
	}
	if err := p.actions.Hover(ctx, card); err != nil {
		return err
	}
	p.logger.Debug("Hovering job card.", zap.Int("index", index))

	if err := p.actions.Click(ctx, ViewRoleOf(index)); err != nil {
		return err
	}
	p.logger.Info("Clicked View Role on job card.", zap.Int("index", index))
	return nil
}

// OpenApplication opens the index-th job and switches to the application
// page it opens in a new browsing context.
func (p *QAJobsPage) OpenApplication(ctx context.Context, index int) (driver.Handle, error) {
	return p.switcher.Expect(ctx, func(ctx context.Context) error {
		return p.OpenJobByIndexViaHover(ctx, index)
	}, p.cfg.ApplicationURL, p.switchTimeout)
}
