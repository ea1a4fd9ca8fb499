// internal/scenario/careers.go
package scenario

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/careerflow/internal/pages"
)

// CareersJourneyName names the careers journey in reports, spans and
// diagnostics files.
const CareersJourneyName = "CareersJourney"

// CareersJourney walks from the homepage to a QA job application:
// reject cookies, Company > Careers, check the careers blocks, open the QA
// team page and its job listing, filter by location and department, check
// every listed job, then open one and verify the application page that opens
// in a new browsing context.
func CareersJourney() Scenario {
	return Scenario{
		Name: CareersJourneyName,
		Steps: []Step{
			{Name: "open_home", Run: func(ctx context.Context, env *Env) error {
				return env.Site.Home.Open(ctx)
			}},
			{Name: "reject_cookies", Run: func(ctx context.Context, env *Env) error {
				return env.Site.Home.RejectCookies(ctx)
			}},
			{Name: "go_to_careers", Run: func(ctx context.Context, env *Env) error {
				return env.Site.Home.GoToCareers(ctx)
			}},
			{Name: "verify_blocks", Run: func(ctx context.Context, env *Env) error {
				return env.Site.Careers.VerifyBlocks(ctx)
			}},
			{Name: "go_to_qa", Run: func(ctx context.Context, env *Env) error {
				return env.Site.Careers.GoToQA(ctx)
			}},
			{Name: "go_to_qa_jobs", Run: func(ctx context.Context, env *Env) error {
				return env.Site.Careers.GoToQAJobs(ctx)
			}},
			{Name: "wait_filters_ready", Run: func(ctx context.Context, env *Env) error {
				return env.Site.QAJobs.WaitUntilFiltersReady(ctx)
			}},
			{Name: "filter_jobs", Run: func(ctx context.Context, env *Env) error {
				sc := env.Config.Scenario()
				return env.Site.QAJobs.FilterJobs(ctx, sc.LocationFilter, sc.DepartmentFilter)
			}},
			{Name: "verify_jobs_loaded", Run: func(ctx context.Context, env *Env) error {
				_, err := env.Site.QAJobs.VerifyJobsLoaded(ctx)
				return err
			}},
			{Name: "verify_job_details", Run: func(ctx context.Context, env *Env) error {
				return env.Site.JobList.VerifyAllJobDetails(ctx, pages.ExpectationsFromConfig(env.Config.Scenario()))
			}},
			{Name: "open_application", Run: func(ctx context.Context, env *Env) error {
				h, err := env.Site.QAJobs.OpenApplication(ctx, env.Config.Scenario().JobIndex)
				if err != nil {
					return err
				}
				env.Logger.Info("Application page opened.", zap.String("handle", string(h)))
				return nil
			}},
		},
	}
}
