package config

import (
	"ApiMonitor/internal/monitor/domain"
	"ApiMonitor/pkg/validator"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

var validLogLevels = map[string]bool{
	"DEBUG": true, "INFO": true, "WARNING": true, "WARN": true, "ERROR": true, "CRITICAL": true,
}

// Validate checks the whole configuration and builds the typed endpoint and
// channel lists. All violations are reported together and wrap ErrInvalid.
func (c *Config) Validate() error {
	var errs *multierror.Error

	c.LogLevel = strings.ToUpper(c.LogLevel)
	if !validLogLevels[c.LogLevel] {
		errs = multierror.Append(errs, fmt.Errorf("log_level %q is not one of DEBUG, INFO, WARNING, ERROR, CRITICAL", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = multierror.Append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if c.MaxHistoryDays < 1 {
		errs = multierror.Append(errs, fmt.Errorf("max_history_days must be at least 1"))
	}
	if c.DefaultTimeout <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("default_timeout_seconds must be positive"))
	}
	if c.DefaultInterval <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("default_interval_seconds must be positive"))
	}
	if c.DefaultRetries < 0 {
		errs = multierror.Append(errs, fmt.Errorf("default_retries must not be negative"))
	}
	if c.ShutdownGraceSeconds < 0 {
		errs = multierror.Append(errs, fmt.Errorf("shutdown_grace_seconds must not be negative"))
	}

	if c.Server.Enabled {
		if !validator.ValidateHostPort(c.Server.Addr()) || c.Server.Port < 1 || c.Server.Port > 65535 {
			errs = multierror.Append(errs, fmt.Errorf("invalid server address %s", c.Server.Addr()))
		}
		if c.Server.Mode != "debug" && c.Server.Mode != "release" && c.Server.Mode != "test" {
			errs = multierror.Append(errs, fmt.Errorf("invalid server mode %s", c.Server.Mode))
		}
	}

	if c.Database.Enabled && c.Database.URL == "" && c.Database.Host == "" {
		errs = multierror.Append(errs, fmt.Errorf("database url or host is required"))
	}

	c.specs = c.specs[:0]
	seen := make(map[string]bool, len(c.Endpoints))
	for i, ep := range c.Endpoints {
		if ep.ID == "" {
			errs = multierror.Append(errs, fmt.Errorf("endpoint #%d: id is required", i+1))
		} else if seen[ep.ID] {
			errs = multierror.Append(errs, fmt.Errorf("endpoint ID '%s' already exists", ep.ID))
		}
		seen[ep.ID] = true

		spec, epErrs := c.toSpec(ep)
		for _, e := range epErrs {
			errs = multierror.Append(errs, fmt.Errorf("endpoint %q: %w", ep.ID, e))
		}
		c.specs = append(c.specs, spec)
	}

	c.channels = c.channels[:0]
	names := make([]string, 0, len(c.Notifications))
	for name := range c.Notifications {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name != strings.ToLower(name) {
			errs = multierror.Append(errs, fmt.Errorf("notification %q: channel names must be lower case", name))
		}
		channel, err := c.Notifications[name].toChannel(name)
		if err != nil {
			errs = multierror.Append(errs, err)
		}
		c.channels = append(c.channels, channel)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// toSpec applies the global defaults to ep.
func (c *Config) toSpec(ep EndpointConfig) (domain.EndpointSpec, []error) {
	var errs []error

	spec := domain.EndpointSpec{
		ID:                     ep.ID,
		URL:                    ep.URL,
		Method:                 strings.ToUpper(ep.Method),
		Headers:                ep.Headers,
		Body:                   ep.Body,
		Timeout:                seconds(c.DefaultTimeout),
		Interval:               time.Duration(c.DefaultInterval) * time.Second,
		MaxRetries:             c.DefaultRetries,
		ExpectedStatusCodes:    ep.ExpectedStatusCodes,
		ResponseContains:       ep.ResponseContains,
		ExpectedResponseTimeMs: ep.ExpectedResponseTimeMs,
		SLAResponseTimeMs:      ep.SLAResponseTimeMs,
		SLAUptimePercentage:    ep.SLAUptimePercentage,
		DNSServer:              ep.DNSServer,
		FollowRedirects:        boolOr(ep.FollowRedirects, true),
		VerifyTLS:              boolOr(ep.VerifyTLS, true),
	}

	if spec.Method == "" {
		spec.Method = "GET"
	}
	if len(spec.ExpectedStatusCodes) == 0 {
		spec.ExpectedStatusCodes = append([]int(nil), domain.DefaultExpectedStatusCodes...)
	}

	if !validator.ValidateURL(ep.URL) {
		errs = append(errs, fmt.Errorf("invalid url %q", ep.URL))
	}
	if !validator.ValidateMethod(spec.Method) {
		errs = append(errs, fmt.Errorf("invalid method %q", spec.Method))
	}

	if ep.TimeoutSeconds != nil {
		if *ep.TimeoutSeconds <= 0 {
			errs = append(errs, fmt.Errorf("timeout_seconds must be positive"))
		}
		spec.Timeout = seconds(*ep.TimeoutSeconds)
	}
	if ep.CheckIntervalSeconds != nil {
		if *ep.CheckIntervalSeconds <= 0 {
			errs = append(errs, fmt.Errorf("check_interval_seconds must be positive"))
		}
		spec.Interval = time.Duration(*ep.CheckIntervalSeconds) * time.Second
	}
	if ep.MaxRetries != nil {
		if *ep.MaxRetries < 0 {
			errs = append(errs, fmt.Errorf("max_retries must not be negative"))
		}
		spec.MaxRetries = *ep.MaxRetries
	}

	for _, code := range spec.ExpectedStatusCodes {
		if !validator.ValidateStatusCode(code) {
			errs = append(errs, fmt.Errorf("status code %d is outside 100-599", code))
		}
	}

	if ep.ExpectedResponseTimeMs != nil && *ep.ExpectedResponseTimeMs <= 0 {
		errs = append(errs, fmt.Errorf("expected_response_time_ms must be positive"))
	}
	if ep.SLAResponseTimeMs != nil && *ep.SLAResponseTimeMs <= 0 {
		errs = append(errs, fmt.Errorf("sla_response_time_ms must be positive"))
	}
	if ep.ExpectedResponseTimeMs != nil && ep.SLAResponseTimeMs != nil &&
		*ep.ExpectedResponseTimeMs > *ep.SLAResponseTimeMs {
		errs = append(errs, fmt.Errorf("expected_response_time_ms must not exceed sla_response_time_ms"))
	}
	if ep.SLAUptimePercentage != nil && (*ep.SLAUptimePercentage <= 0 || *ep.SLAUptimePercentage > 100) {
		errs = append(errs, fmt.Errorf("sla_uptime_percentage must be in (0, 100]"))
	}

	if ep.DNSServer != "" {
		if !validator.ValidateHostPort(ep.DNSServer) {
			errs = append(errs, fmt.Errorf("invalid dns_server %q", ep.DNSServer))
		}
	}

	return spec, errs
}

func validateSettings(settings domain.ChannelSettings) []error {
	var errs []error

	switch s := settings.(type) {
	case domain.SlackSettings:
		if !validator.ValidateURL(s.WebhookURL) {
			errs = append(errs, fmt.Errorf("invalid webhook_url %q", s.WebhookURL))
		}
	case domain.DiscordSettings:
		if !validator.ValidateURL(s.WebhookURL) {
			errs = append(errs, fmt.Errorf("invalid webhook_url %q", s.WebhookURL))
		}
	case domain.WebhookSettings:
		if !validator.ValidateURL(s.URL) {
			errs = append(errs, fmt.Errorf("invalid url %q", s.URL))
		}
		if s.Method != "" && !validator.ValidateMethod(s.Method) {
			errs = append(errs, fmt.Errorf("invalid method %q", s.Method))
		}
	case domain.EmailSettings:
		if s.SMTPHost == "" {
			errs = append(errs, fmt.Errorf("smtp_host is required"))
		}
		if s.SMTPPort < 1 || s.SMTPPort > 65535 {
			errs = append(errs, fmt.Errorf("smtp_port %d is out of range", s.SMTPPort))
		}
		if s.FromEmail == "" {
			errs = append(errs, fmt.Errorf("from_email is required"))
		}
		if len(s.ToEmails) == 0 {
			errs = append(errs, fmt.Errorf("to_emails must list at least one address"))
		}
	case domain.RedisSettings:
		if s.Channel == "" {
			errs = append(errs, fmt.Errorf("channel is required"))
		}
	}

	return errs
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
