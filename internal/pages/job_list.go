// internal/pages/job_list.go
package pages

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/careerflow/internal/browser/driver"
	"github.com/xkilldash9x/careerflow/internal/config"
	"github.com/xkilldash9x/careerflow/internal/interact"
)

var (
	JobPositions   = driver.ByCSS(".position-title")
	JobDepartments = driver.ByCSS(".position-department")
	JobLocations   = driver.ByCSS(".position-location")
)

// JobExpectations are substrings every listed job must contain.
type JobExpectations struct {
	Position   string
	Department string
	Location   string
}

// ExpectationsFromConfig reads the expected job substrings from cfg.
func ExpectationsFromConfig(cfg config.ScenarioConfig) JobExpectations {
	return JobExpectations{
		Position:   cfg.ExpectedPosition,
		Department: cfg.ExpectedDepartment,
		Location:   cfg.ExpectedLocation,
	}
}

// JobListPage checks the details shown on each job card of a filtered listing.
type JobListPage struct {
	actions *interact.Actions
	logger  *zap.Logger
}

func NewJobListPage(a *interact.Actions, logger *zap.Logger) *JobListPage {
	return &JobListPage{actions: a, logger: named(logger, "job_list")}
}

// VerifyAllJobDetails checks the position, department and location of every
// visible job. Columns are paired by position; extra entries in a longer
// column are ignored.
func (p *JobListPage) VerifyAllJobDetails(ctx context.Context, want JobExpectations) error {
	if err := p.actions.WaitVisible(ctx, JobPositions, 0, "job positions not shown"); err != nil {
		return err
	}

	columns := []struct {
		name string
		loc  driver.Locator
	}{
		{"positions", JobPositions},
		{"departments", JobDepartments},
		{"locations", JobLocations},
	}
	texts := make([][]string, len(columns))
	for i, c := range columns {
		t, err := p.actions.Texts(ctx, c.loc)
		if err != nil {
			return err
		}
		if len(t) == 0 {
			return &AssertionFailure{Page: "job list", Check: "no job " + c.name + " found"}
		}
		texts[i] = t
	}

	n := min(len(texts[0]), len(texts[1]), len(texts[2]))
	for i := 0; i < n; i++ {
		pos, dept, loc := texts[0][i], texts[1][i], texts[2][i]
		switch {
		case !strings.Contains(pos, want.Position):
			return &AssertionFailure{Page: "job list", Check: "position mismatch", Job: i + 1, Expected: want.Position, Actual: pos}
		case !strings.Contains(dept, want.Department):
			return &AssertionFailure{Page: "job list", Check: "department mismatch", Job: i + 1, Expected: want.Department, Actual: dept}
		case !strings.Contains(loc, want.Location):
			return &AssertionFailure{Page: "job list", Check: "location mismatch", Job: i + 1, Expected: want.Location, Actual: loc}
		}
		p.logger.Info("Job verified.",
			zap.Int("job", i+1),
			zap.String("position", pos),
			zap.String("department", dept),
			zap.String("location", loc))
	}
	return nil
}
