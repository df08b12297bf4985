package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

var validPathEncodings = map[string]bool{
	"base64":  true,
	"percent": true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks field values parsed from a config file and returns all
// errors found. It accumulates every error rather than stopping at the
// first, so users see a complete report and can fix all issues in one
// pass. Completeness (server URL, credentials) is checked later by
// ValidateResolved, because the environment may supply those fields.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.PathEncoding != "" && !validPathEncodings[cfg.PathEncoding] {
		errs = append(errs, fmt.Errorf("path_encoding: must be \"base64\" or \"percent\", got %q", cfg.PathEncoding))
	}

	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("timeout: %w", err))
		} else if d <= 0 {
			errs = append(errs, fmt.Errorf("timeout: must be positive, got %q", cfg.Timeout))
		}
	}

	if cfg.LogLevel != "" && !validLogLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level: must be one of debug/info/warn/error, got %q", cfg.LogLevel))
	}

	if cfg.ServerURL != "" {
		errs = append(errs, validateServerURL(cfg.ServerURL)...)
	}

	return errors.Join(errs...)
}

// ValidateResolved checks completeness constraints on the fully resolved
// config, after defaults, file, environment, and CLI flags have all been
// applied.
func ValidateResolved(cfg *Config) error {
	var errs []error

	// URL syntax is checked by the nested Validate call below; only the
	// presence requirement is added here.
	if cfg.ServerURL == "" {
		errs = append(errs, errors.New("server_url: required (config file, OPENLIST_SERVER, or --server)"))
	}

	if cfg.Token == "" && !cfg.HasCredentials() {
		errs = append(errs, errors.New("credentials: either token, or both username and password, must be set"))
	}

	if err := Validate(cfg); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateServerURL(raw string) []error {
	u, err := url.Parse(raw)
	if err != nil {
		return []error{fmt.Errorf("server_url: %w", err)}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return []error{fmt.Errorf("server_url: scheme must be http or https, got %q", raw)}
	}

	if u.Host == "" {
		return []error{fmt.Errorf("server_url: missing host in %q", raw)}
	}

	return nil
}
