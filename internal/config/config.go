// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// Components depend on this rather than *Config so tests can hand in their own.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Wait() WaitConfig
	Stability() StabilityConfig
	Dropdown() DropdownConfig
	Navigation() NavigationConfig
	Diagnostics() DiagnosticsConfig
	Scenario() ScenarioConfig

	// Browser Setters
	SetBrowserHeadless(bool)

	// Scenario Setters
	SetScenarioBaseURL(string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	BrowserCfg     BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	WaitCfg        WaitConfig        `mapstructure:"wait" yaml:"wait"`
	StabilityCfg   StabilityConfig   `mapstructure:"stability" yaml:"stability"`
	DropdownCfg    DropdownConfig    `mapstructure:"dropdown" yaml:"dropdown"`
	NavigationCfg  NavigationConfig  `mapstructure:"navigation" yaml:"navigation"`
	DiagnosticsCfg DiagnosticsConfig `mapstructure:"diagnostics" yaml:"diagnostics"`
	ScenarioCfg    ScenarioConfig    `mapstructure:"scenario" yaml:"scenario"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig           { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig         { return c.BrowserCfg }
func (c *Config) Wait() WaitConfig               { return c.WaitCfg }
func (c *Config) Stability() StabilityConfig     { return c.StabilityCfg }
func (c *Config) Dropdown() DropdownConfig       { return c.DropdownCfg }
func (c *Config) Navigation() NavigationConfig   { return c.NavigationCfg }
func (c *Config) Diagnostics() DiagnosticsConfig { return c.DiagnosticsCfg }
func (c *Config) Scenario() ScenarioConfig       { return c.ScenarioCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool)   { c.BrowserCfg.Headless = b }
func (c *Config) SetScenarioBaseURL(u string) { c.ScenarioCfg.BaseURL = u }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the Chrome instance driving the journey.
type BrowserConfig struct {
	Headless         bool          `mapstructure:"headless" yaml:"headless"`
	DisableGPU       bool          `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	ExecPath         string        `mapstructure:"exec_path" yaml:"exec_path"`
	UserDataDir      string        `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	Args             []string      `mapstructure:"args" yaml:"args"`
	WindowWidth      int           `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight     int           `mapstructure:"window_height" yaml:"window_height"`
	StartupTimeout   time.Duration `mapstructure:"startup_timeout" yaml:"startup_timeout"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout" yaml:"operation_timeout"`
}

// DiagnosticsConfig controls failure snapshots.
type DiagnosticsConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	ScreenshotDir string `mapstructure:"screenshot_dir" yaml:"screenshot_dir"`
	CaptureDOM    bool   `mapstructure:"capture_dom" yaml:"capture_dom"`
}

// ScenarioConfig carries the target site and the expectations of the careers journey.
type ScenarioConfig struct {
	BaseURL            string `mapstructure:"base_url" yaml:"base_url"`
	QACareersURL       string `mapstructure:"qa_careers_url" yaml:"qa_careers_url"`
	LocationFilter     string `mapstructure:"location_filter" yaml:"location_filter"`
	DepartmentFilter   string `mapstructure:"department_filter" yaml:"department_filter"`
	ExpectedPosition   string `mapstructure:"expected_position" yaml:"expected_position"`
	ExpectedDepartment string `mapstructure:"expected_department" yaml:"expected_department"`
	ExpectedLocation   string `mapstructure:"expected_location" yaml:"expected_location"`
	ListingURLFragment string `mapstructure:"listing_url_fragment" yaml:"listing_url_fragment"`
	ApplicationURL     string `mapstructure:"application_url" yaml:"application_url"`
	JobIndex           int    `mapstructure:"job_index" yaml:"job_index"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "careerflow")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_gpu", true)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.user_data_dir", "")
	v.SetDefault("browser.args", []string{})
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.startup_timeout", "30s")
	v.SetDefault("browser.operation_timeout", "10s")

	// Synchronization defaults live next to their types in synchronization_config.go.
	setSynchronizationDefaults(v)

	// -- Diagnostics --
	v.SetDefault("diagnostics.enabled", true)
	v.SetDefault("diagnostics.screenshot_dir", "screenshots/error_screenshots")
	v.SetDefault("diagnostics.capture_dom", true)

	// -- Scenario --
	v.SetDefault("scenario.base_url", "https://useinsider.com/")
	v.SetDefault("scenario.qa_careers_url", "https://useinsider.com/careers/quality-assurance/")
	v.SetDefault("scenario.location_filter", "Istanbul, Turkiye")
	v.SetDefault("scenario.department_filter", "Quality Assurance")
	v.SetDefault("scenario.expected_position", "Quality Assurance")
	v.SetDefault("scenario.expected_department", "Quality Assurance")
	v.SetDefault("scenario.expected_location", "Istanbul, Turkey")
	v.SetDefault("scenario.listing_url_fragment", "/careers/open-positions/?department=qualityassurance")
	v.SetDefault("scenario.application_url", "https://jobs.lever.co/useinsider")
	v.SetDefault("scenario.job_index", 0)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// expandPaths resolves a leading ~ in any filesystem path setting.
func (c *Config) expandPaths() error {
	paths := map[string]*string{
		"logger.log_file":            &c.LoggerCfg.LogFile,
		"browser.exec_path":          &c.BrowserCfg.ExecPath,
		"browser.user_data_dir":      &c.BrowserCfg.UserDataDir,
		"diagnostics.screenshot_dir": &c.DiagnosticsCfg.ScreenshotDir,
	}
	for key, p := range paths {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand %s: %w", key, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.BrowserCfg.WindowWidth <= 0 || c.BrowserCfg.WindowHeight <= 0 {
		return fmt.Errorf("browser.window_width and browser.window_height must be positive integers")
	}
	if c.BrowserCfg.OperationTimeout <= 0 {
		return fmt.Errorf("browser.operation_timeout must be a positive duration")
	}
	if err := c.WaitCfg.Validate(); err != nil {
		return fmt.Errorf("wait configuration invalid: %w", err)
	}
	if err := c.StabilityCfg.Validate(); err != nil {
		return fmt.Errorf("stability configuration invalid: %w", err)
	}
	if err := c.DropdownCfg.Validate(); err != nil {
		return fmt.Errorf("dropdown configuration invalid: %w", err)
	}
	if c.NavigationCfg.ContextSwitchTimeout <= 0 {
		return fmt.Errorf("navigation.context_switch_timeout must be a positive duration")
	}
	if c.DiagnosticsCfg.Enabled && c.DiagnosticsCfg.ScreenshotDir == "" {
		return fmt.Errorf("diagnostics.screenshot_dir is required when diagnostics are enabled")
	}
	if err := c.ScenarioCfg.Validate(); err != nil {
		return fmt.Errorf("scenario configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the ScenarioConfig settings.
func (s *ScenarioConfig) Validate() error {
	for key, raw := range map[string]string{"base_url": s.BaseURL, "qa_careers_url": s.QACareersURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", key, raw)
		}
	}
	if strings.TrimSpace(s.LocationFilter) == "" || strings.TrimSpace(s.DepartmentFilter) == "" {
		return fmt.Errorf("location_filter and department_filter are required")
	}
	if s.JobIndex < 0 {
		return fmt.Errorf("job_index must not be negative")
	}
	return nil
}
