package aivae

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds application settings. Empty paths are filled in by the
// loader relative to the user's home directory.
type Config struct {
	APIBaseURL string        `yaml:"api_url" toml:"api_url" env:"AIVAE_API_URL" env-default:"https://aivae.pharmbotai.com/api"`
	Timeout    time.Duration `yaml:"timeout" toml:"timeout" env:"AIVAE_TIMEOUT" env-default:"20s"`
	LogLevel   string        `yaml:"log_level" toml:"log_level" env:"AIVAE_LOG_LEVEL" env-default:"info"`
	LogFile    string        `yaml:"log_file" toml:"log_file" env:"AIVAE_LOG_FILE"`
	PrefsPath  string        `yaml:"prefs_path" toml:"prefs_path" env:"AIVAE_PREFS"`
	SessionDir string        `yaml:"session_dir" toml:"session_dir" env:"AIVAE_SESSION_DIR"`

	// Token overrides the stored session token when set.
	Token string `yaml:"-" toml:"-" env:"AIVAE_TOKEN"`
}

// Validate checks the settings that cannot be defaulted.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api url %q must be an absolute URL: %w", c.APIBaseURL, ErrValidation)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s: %w", c.Timeout, ErrValidation)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error, got %q: %w", c.LogLevel, ErrValidation)
	}
	return nil
}
