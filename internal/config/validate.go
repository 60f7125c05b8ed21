package config

import (
	"fmt"
	"log/slog"
	"strings"
)

var validFormats = map[string]bool{
	"png": true,
	"bmp": true,
	"raw": true,
}

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Validate checks the config for invalid values and returns all errors found.
// Values that would cause panics downstream are clamped to safe defaults.
// Other validation errors are logged as warnings but do not prevent startup.
func (c *Config) Validate() []error {
	var errs []error

	if c.Display < 1 {
		errs = append(errs, fmt.Errorf("display %d is below minimum 1, clamping", c.Display))
		c.Display = 1
	}

	if c.Format != "" && !validFormats[strings.ToLower(c.Format)] {
		errs = append(errs, fmt.Errorf("format %q is not valid (use png, bmp, raw)", c.Format))
	}

	// A zero interval would spin the poll loop flat out.
	if c.IntervalMS < 1 {
		errs = append(errs, fmt.Errorf("interval_ms %d is below minimum 1, clamping", c.IntervalMS))
		c.IntervalMS = 1
	} else if c.IntervalMS > 60000 {
		errs = append(errs, fmt.Errorf("interval_ms %d exceeds maximum 60000, clamping", c.IntervalMS))
		c.IntervalMS = 60000
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	for _, err := range errs {
		slog.Warn("config validation", "error", err)
	}

	return errs
}
