// internal/interact/stability.go
package interact

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StabilityOptions tunes ScrollToBottomUntilStable. Zero fields take the
// package defaults.
type StabilityOptions struct {
	MaxPasses    int
	SettleChecks int
	Pause        time.Duration
}

// DefaultStabilityOptions returns 20 passes, 3 settle checks and a 500ms pause.
func DefaultStabilityOptions() StabilityOptions {
	return StabilityOptions{MaxPasses: 20, SettleChecks: 3, Pause: 500 * time.Millisecond}
}

func (o StabilityOptions) withDefaults() StabilityOptions {
	d := DefaultStabilityOptions()
	if o.MaxPasses <= 0 {
		o.MaxPasses = d.MaxPasses
	}
	if o.SettleChecks <= 0 {
		o.SettleChecks = d.SettleChecks
	}
	if o.Pause < 0 {
		o.Pause = 0
	} else if o.Pause == 0 {
		o.Pause = d.Pause
	}
	return o
}

// StabilityResult describes how a scroll-until-stable run ended.
type StabilityResult struct {
	Passes  int
	Settled bool
	Height  int64
}

// ScrollToBottomUntilStable keeps scrolling to the bottom of the document
// until its scroll height stops changing for SettleChecks consecutive passes.
// Reaching MaxPasses is not an error; the result reports Settled=false.
func (a *Actions) ScrollToBottomUntilStable(ctx context.Context, opts StabilityOptions) (StabilityResult, error) {
	opts = opts.withDefaults()

	var res StabilityResult
	last := int64(-1)
	stable := 0

	for pass := 1; pass <= opts.MaxPasses; pass++ {
		res.Passes = pass

		height, err := a.drv.ScrollHeight(ctx)
		if err != nil {
			return res, err
		}
		if height == last {
			stable++
		} else {
			stable = 0
			last = height
		}
		res.Height = last

		if stable >= opts.SettleChecks {
			res.Settled = true
			a.logger.Debug("Page height settled.", zap.Int("passes", pass), zap.Int64("height", last))
			return res, nil
		}

		if err := a.drv.ScrollTo(ctx, last); err != nil {
			return res, err
		}
		if err := Pause(ctx, opts.Pause); err != nil {
			return res, err
		}
	}

	a.logger.Warn("Page height still changing after max passes.",
		zap.Int("max_passes", opts.MaxPasses),
		zap.Int64("height", last))
	return res, nil
}
