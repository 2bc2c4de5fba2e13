// Package cleanenv loads aivae.Config from an optional file and the
// environment.
package cleanenv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pharmbotai/aivae"
)

// DirName is the directory under the user's home that holds local state.
const DirName = ".aivae"

// Load reads the configuration. When path is non-empty the file is read
// first (YAML or TOML, by extension) and the environment overrides it.
// Unset paths default to files under home.
func Load(path, home string) (aivae.Config, error) {
	var cfg aivae.Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return aivae.Config{}, fmt.Errorf("read config: %w", err)
	}

	applyDefaultPaths(&cfg, home)
	if err := cfg.Validate(); err != nil {
		return aivae.Config{}, err
	}
	return cfg, nil
}

// DefaultPath returns ~/.aivae/config.yaml under home when that file
// exists, and "" otherwise.
func DefaultPath(home string) string {
	path := filepath.Join(home, DirName, "config.yaml")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return ""
	}
	return path
}

func applyDefaultPaths(cfg *aivae.Config, home string) {
	dir := filepath.Join(home, DirName)
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(dir, "aivae.log")
	}
	if cfg.PrefsPath == "" {
		cfg.PrefsPath = filepath.Join(dir, "preferences.toml")
	}
	if cfg.SessionDir == "" {
		cfg.SessionDir = filepath.Join(dir, "sessions")
	}
}

// Usage returns a description of the environment variables Config reads.
func Usage() (string, error) {
	var cfg aivae.Config
	return cleanenv.GetDescription(&cfg, nil)
}
