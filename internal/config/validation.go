package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationErrors collects all validation errors
type ValidationErrors struct {
	Problems []string
}

// HasErrors returns true if any validation errors exist
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Problems) > 0
}

func (e *ValidationErrors) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Error formats all validation errors into a clear message
func (e *ValidationErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, p := range e.Problems {
		sb.WriteString(fmt.Sprintf("  - %s\n", p))
	}
	return sb.String()
}

// Validate checks the whole configuration and reports every problem at once.
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs.add("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Path == "" {
		errs.add("api.path is required")
	}
	if c.API.TimeoutSec < 1 {
		errs.add("api.timeout_sec must be >= 1")
	}
	if c.API.RetryCount < 0 {
		errs.add("api.retry_count must be >= 0")
	}
	if c.API.RatePerSecond < 1 {
		errs.add("api.rate_per_second must be >= 1")
	}
	if c.Poll.Interval <= 0 {
		errs.add("poll.interval must be positive")
	}

	if c.Sinks.File.Enabled && c.Sinks.File.Path == "" {
		errs.add("sinks.file.path is required when the file sink is enabled")
	}
	if err := c.Sinks.Ntfy.Validate(); err != nil {
		errs.add("%v", err)
	}
	if c.Sinks.WebSocket.Enabled && !c.Server.Enabled {
		errs.add("sinks.websocket requires server.enabled")
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		errs.add("server.addr is required when the server is enabled")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
