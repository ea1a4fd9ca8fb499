// internal/pages/site.go
package pages

import (
	"go.uber.org/zap"

	"github.com/xkilldash9x/careerflow/internal/config"
	"github.com/xkilldash9x/careerflow/internal/interact"
	"github.com/xkilldash9x/careerflow/internal/navigation"
)

// Site groups the page objects of one browser session. They share the same
// primitives and hold no state of their own.
type Site struct {
	Home    *HomePage
	Careers *CareersPage
	QAJobs  *QAJobsPage
	JobList *JobListPage
}

func NewSite(a *interact.Actions, sw *navigation.Switcher, cfg config.Interface, logger *zap.Logger) *Site {
	return &Site{
		Home:    NewHomePage(a, cfg, logger),
		Careers: NewCareersPage(a, cfg, logger),
		QAJobs:  NewQAJobsPage(a, sw, cfg, logger),
		JobList: NewJobListPage(a, logger),
	}
}
