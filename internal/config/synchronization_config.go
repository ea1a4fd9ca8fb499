// File: internal/config/synchronization_config.go
// This file defines the timing knobs for the synchronization layer: the wait
// engine's polling cadence, the scroll-height stability poller, the composite
// dropdown driver and the browsing-context switch. They are grouped here so a
// slow environment can be tuned from config.yaml or CAREERFLOW_* variables
// without touching the page objects.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// WaitConfig tunes the element wait engine.
type WaitConfig struct {
	DefaultTimeout      time.Duration `mapstructure:"default_timeout" yaml:"default_timeout"`
	PollInterval        time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	ExistsTimeout       time.Duration `mapstructure:"exists_timeout" yaml:"exists_timeout"`
	FiltersReadyTimeout time.Duration `mapstructure:"filters_ready_timeout" yaml:"filters_ready_timeout"`
}

// StabilityConfig tunes the scroll-to-bottom-until-stable poller.
type StabilityConfig struct {
	MaxPasses    int           `mapstructure:"max_passes" yaml:"max_passes"`
	SettleChecks int           `mapstructure:"settle_checks" yaml:"settle_checks"`
	Pause        time.Duration `mapstructure:"pause" yaml:"pause"`
}

// DropdownConfig tunes the composite dropdown driver's inner scroll search.
type DropdownConfig struct {
	ScrollStep int           `mapstructure:"scroll_step" yaml:"scroll_step"`
	MaxSteps   int           `mapstructure:"max_steps" yaml:"max_steps"`
	Pause      time.Duration `mapstructure:"pause" yaml:"pause"`
}

// NavigationConfig tunes page loads and browsing-context switches.
type NavigationConfig struct {
	PageLoadTimeout      time.Duration `mapstructure:"page_load_timeout" yaml:"page_load_timeout"`
	ContextSwitchTimeout time.Duration `mapstructure:"context_switch_timeout" yaml:"context_switch_timeout"`
}

func setSynchronizationDefaults(v *viper.Viper) {
	// -- Wait --
	v.SetDefault("wait.default_timeout", "15s")
	v.SetDefault("wait.poll_interval", "250ms")
	v.SetDefault("wait.exists_timeout", "5s")
	v.SetDefault("wait.filters_ready_timeout", "20s")

	// -- Stability --
	v.SetDefault("stability.max_passes", 20)
	v.SetDefault("stability.settle_checks", 3)
	v.SetDefault("stability.pause", "500ms")

	// -- Dropdown --
	v.SetDefault("dropdown.scroll_step", 200)
	v.SetDefault("dropdown.max_steps", 15)
	v.SetDefault("dropdown.pause", "250ms")

	// -- Navigation --
	v.SetDefault("navigation.page_load_timeout", "30s")
	v.SetDefault("navigation.context_switch_timeout", "15s")
}

// Validate checks the WaitConfig settings.
func (w *WaitConfig) Validate() error {
	if w.DefaultTimeout <= 0 || w.PollInterval <= 0 || w.ExistsTimeout <= 0 {
		return fmt.Errorf("default_timeout, poll_interval and exists_timeout must be positive durations")
	}
	if w.PollInterval >= w.DefaultTimeout {
		return fmt.Errorf("poll_interval (%v) must be shorter than default_timeout (%v)", w.PollInterval, w.DefaultTimeout)
	}
	return nil
}

// Validate checks the StabilityConfig settings.
func (s *StabilityConfig) Validate() error {
	if s.MaxPasses <= 0 {
		return fmt.Errorf("max_passes must be greater than 0")
	}
	if s.SettleChecks <= 0 {
		return fmt.Errorf("settle_checks must be greater than 0")
	}
	if s.Pause < 0 {
		return fmt.Errorf("pause must not be negative")
	}
	return nil
}

// Validate checks the DropdownConfig settings.
func (d *DropdownConfig) Validate() error {
	if d.ScrollStep <= 0 {
		return fmt.Errorf("scroll_step must be a positive pixel count")
	}
	if d.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative")
	}
	return nil
}
