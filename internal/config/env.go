package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig   = "OPENLIST_CONFIG"
	EnvServer   = "OPENLIST_SERVER"
	EnvToken    = "OPENLIST_TOKEN"
	EnvUsername = "OPENLIST_USERNAME"
	EnvPassword = "OPENLIST_PASSWORD"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath string // OPENLIST_CONFIG: override config file path
	Server     string // OPENLIST_SERVER: server base URL
	Token      string // OPENLIST_TOKEN: pre-issued static token
	Username   string // OPENLIST_USERNAME
	Password   string // OPENLIST_PASSWORD
}

// ReadEnvOverrides reads environment variables and returns any overrides
// found. This does not modify the Config; Resolve applies the fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		Server:     os.Getenv(EnvServer),
		Token:      os.Getenv(EnvToken),
		Username:   os.Getenv(EnvUsername),
		Password:   os.Getenv(EnvPassword),
	}
}
