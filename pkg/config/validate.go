package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/getmockd/userdesk/internal/id"
	"github.com/getmockd/userdesk/pkg/logging"
)

// Validate checks the merged configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("url %q must be an absolute http or https URL", c.URL))
	}
	if strings.Trim(c.Resource, "/") == "" || strings.Contains(strings.Trim(c.Resource, "/"), "/") {
		errs = append(errs, fmt.Errorf("resource %q must be a single path segment", c.Resource))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout %s must be positive", c.Timeout))
	}
	if err := logging.ValidateLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q (valid: text, json)", c.Log.Format))
	}
	if _, err := id.ParseStyle(c.Server.IDStyle); err != nil {
		errs = append(errs, err)
	}
	if c.Server.MaxItems < 0 {
		errs = append(errs, fmt.Errorf("server.maxItems %d must not be negative", c.Server.MaxItems))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rateLimit %v must not be negative", c.Server.RateLimit))
	}

	return errors.Join(errs...)
}
