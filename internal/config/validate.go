package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidLogLevels are the allowed log level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogFormats are the allowed log format values.
var ValidLogFormats = []string{"text", "json"}

// Validate validates the configuration and returns an error if invalid.
// The chain name is not checked here; commands that need it check it.
func Validate(cfg *Config) error {
	var errs []string

	if !slices.Contains(ValidLogLevels, cfg.Log.Level) {
		errs = append(errs, fmt.Sprintf("invalid log level %q (must be one of: %s)",
			cfg.Log.Level, strings.Join(ValidLogLevels, ", ")))
	}
	if !slices.Contains(ValidLogFormats, cfg.Log.Format) {
		errs = append(errs, fmt.Sprintf("invalid log format %q (must be one of: %s)",
			cfg.Log.Format, strings.Join(ValidLogFormats, ", ")))
	}

	if strings.ContainsAny(cfg.Chain.Name, " \t/\\@") {
		errs = append(errs, fmt.Sprintf("invalid chain name %q", cfg.Chain.Name))
	}
	if cfg.Chain.SpaceSentinel == "" || strings.Contains(cfg.Chain.SpaceSentinel, " ") {
		errs = append(errs, "space_sentinel must be a non-empty string without spaces")
	}

	if cfg.Node.HotDir == "" {
		errs = append(errs, "hot_dir is required")
	}
	if cfg.Node.ColdDir == "" {
		errs = append(errs, "cold_dir is required")
	}
	if cfg.Node.HotDir != "" && cfg.Node.HotDir == cfg.Node.ColdDir {
		errs = append(errs, "hot_dir and cold_dir must differ")
	}
	for name := range cfg.Node.Params {
		if name == "" || strings.HasPrefix(name, "-") || strings.Contains(name, "=") {
			errs = append(errs, fmt.Sprintf("invalid runtime parameter name %q", name))
		}
		if name == "daemon" || name == "datadir" || name == "rpcssl" {
			errs = append(errs, fmt.Sprintf("runtime parameter %q is managed by nodebridge", name))
		}
	}

	if cfg.Remote.Port < 0 || cfg.Remote.Port > 65535 {
		errs = append(errs, "remote port must be between 1 and 65535")
	}

	if cfg.Timeouts.Call < 0 {
		errs = append(errs, "call timeout must be non-negative")
	}
	if cfg.Timeouts.Ready < 0 {
		errs = append(errs, "ready timeout must be non-negative")
	}
	if cfg.Timeouts.ReadyInterval <= 0 {
		errs = append(errs, "ready_interval must be positive")
	}

	if cfg.Limits.CallsPerSecond < 0 {
		errs = append(errs, "calls_per_second must be non-negative")
	}
	if cfg.Limits.CallsPerSecond > 0 && cfg.Limits.Burst < 1 {
		errs = append(errs, "burst must be at least 1 when calls_per_second is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
