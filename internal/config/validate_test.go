package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_FieldValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(_ *Config) {},
		},
		{
			name:    "bad path encoding",
			mutate:  func(cfg *Config) { cfg.PathEncoding = "hex" },
			wantErr: "path_encoding",
		},
		{
			name:    "unparseable timeout",
			mutate:  func(cfg *Config) { cfg.Timeout = "soon" },
			wantErr: "timeout",
		},
		{
			name:    "negative timeout",
			mutate:  func(cfg *Config) { cfg.Timeout = "-5s" },
			wantErr: "timeout: must be positive",
		},
		{
			name:    "bad log level",
			mutate:  func(cfg *Config) { cfg.LogLevel = "trace" },
			wantErr: "log_level",
		},
		{
			name:    "server url without scheme",
			mutate:  func(cfg *Config) { cfg.ServerURL = "files.example.com" },
			wantErr: "scheme must be http or https",
		},
		{
			name:    "server url with ftp scheme",
			mutate:  func(cfg *Config) { cfg.ServerURL = "ftp://files.example.com" },
			wantErr: "scheme must be http or https",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_AccumulatesAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PathEncoding = "hex"
	cfg.Timeout = "soon"
	cfg.LogLevel = "trace"

	err := Validate(cfg)
	require.Error(t, err)

	// One report covering every problem, not just the first.
	assert.Contains(t, err.Error(), "path_encoding")
	assert.Contains(t, err.Error(), "timeout")
	assert.Contains(t, err.Error(), "log_level")
}

func TestValidateResolved_TokenOrCredentials(t *testing.T) {
	base := func() *Config {
		cfg := DefaultConfig()
		cfg.ServerURL = "http://localhost:5244"

		return cfg
	}

	tokenOnly := base()
	tokenOnly.Token = "t"
	assert.NoError(t, ValidateResolved(tokenOnly))

	credsOnly := base()
	credsOnly.Username = "u"
	credsOnly.Password = "p"
	assert.NoError(t, ValidateResolved(credsOnly))

	usernameOnly := base()
	usernameOnly.Username = "u"
	require.Error(t, ValidateResolved(usernameOnly))

	assert.Error(t, ValidateResolved(base()))
}

func TestValidateResolved_BadServerURLReportedOnce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ServerURL = "ftp://files.example.com"
	cfg.Token = "t"

	err := ValidateResolved(cfg)
	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(err.Error(), "scheme must be http or https"))
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("token", "token"))
	assert.Equal(t, 1, levenshtein("tokn", "token"))
	assert.Equal(t, 5, levenshtein("", "token"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
}

func TestClosestMatch(t *testing.T) {
	assert.Equal(t, "username", closestMatch("usernme", knownKeysList))
	assert.Equal(t, "server_url", closestMatch("serverurl", knownKeysList))
	assert.Empty(t, closestMatch("zzzzzzzzzz", knownKeysList))
}
