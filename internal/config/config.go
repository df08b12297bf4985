// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for openlist-go. It supports a
// four-layer override chain: defaults -> config file -> environment
// variables -> CLI flags.
package config

import "time"

// Config holds everything the client needs to talk to one server.
// Either Token, or both Username and Password, must be present after the
// override chain resolves. Credentials are loaded once per invocation and
// never written back.
type Config struct {
	ServerURL string `toml:"server_url"`
	Token     string `toml:"token"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`

	// PathEncoding selects the File-Path upload header scheme:
	// "base64" or "percent", depending on the server version.
	PathEncoding string `toml:"path_encoding"`

	// Timeout bounds each envelope request. Streamed transfers are bound
	// by command cancellation instead, so large files are unaffected.
	Timeout string `toml:"timeout"`

	LogLevel string `toml:"log_level"`
}

// Defaults.
const (
	defaultPathEncoding = "base64"
	defaultTimeout      = "30s"
	defaultLogLevel     = "info"
)

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		PathEncoding: defaultPathEncoding,
		Timeout:      defaultTimeout,
		LogLevel:     defaultLogLevel,
	}
}

// RequestTimeout returns the parsed Timeout. Validation guarantees the
// value parses, so errors here fall back to the default.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(defaultTimeout)
	}

	return d
}

// HasCredentials reports whether the config carries a usable
// username/password pair.
func (c *Config) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}
