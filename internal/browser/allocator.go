// internal/browser/allocator.go
package browser

import (
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/careerflow/internal/config"
)

// DefaultAllocatorOptions turns the browser config into chromedp exec allocator options.
// The chromedp defaults come first so the configured flags override them.
func DefaultAllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	for name, value := range chromeFlags(cfg) {
		opts = append(opts, chromedp.Flag(name, value))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}
	return opts
}

// chromeFlags returns the command-line switches set on top of chromedp's
// defaults. A false value removes a switch. Entries in cfg.Args win.
func chromeFlags(cfg config.BrowserConfig) map[string]interface{} {
	flags := map[string]interface{}{
		// Sandboxing fails on hardened container hosts.
		"no-sandbox":            true,
		"disable-dev-shm-usage": true,
		"window-size":           fmt.Sprintf("%d,%d", cfg.WindowWidth, cfg.WindowHeight),
		"disable-gpu":           cfg.DisableGPU,
	}
	if cfg.Headless {
		flags["headless"] = "new"
	} else {
		flags["headless"] = false
	}

	for _, arg := range cfg.Args {
		// chromedp adds the dashes itself.
		arg = strings.TrimLeft(arg, "-")
		if arg == "" {
			continue
		}
		key, value, hasValue := strings.Cut(arg, "=")
		if !hasValue {
			flags[key] = true
			continue
		}
		flags[key] = value
	}
	return flags
}
