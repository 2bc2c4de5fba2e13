// Package toml implements aivae.PreferenceStore on a TOML file.
package toml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pharmbotai/aivae"
)

// Interface compliance check.
var _ aivae.PreferenceStore = (*Store)(nil)

// preferencesFile is the on-disk layout.
type preferencesFile struct {
	Token         string        `toml:"token"`
	Onboarded     bool          `toml:"onboarded"`
	Notifications notifications `toml:"notifications"`
	Security      security      `toml:"security"`
}

type notifications struct {
	Email bool `toml:"email"`
	Push  bool `toml:"push"`
}

type security struct {
	TwoFactor bool `toml:"two_factor"`
}

// Store keeps preferences in a single TOML file. The file holds the session
// token and is written with owner-only permissions.
type Store struct {
	path string
}

// New returns a Store backed by the file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load reads the preferences. A missing file yields zero Preferences.
func (s *Store) Load() (aivae.Preferences, error) {
	var f preferencesFile
	if _, err := toml.DecodeFile(s.path, &f); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return aivae.Preferences{}, nil
		}
		return aivae.Preferences{}, fmt.Errorf("failed to parse preferences file: %w", err)
	}
	return aivae.Preferences{
		Token:              f.Token,
		Onboarded:          f.Onboarded,
		EmailNotifications: f.Notifications.Email,
		PushNotifications:  f.Notifications.Push,
		TwoFactor:          f.Security.TwoFactor,
	}, nil
}

// Save replaces the stored preferences.
func (s *Store) Save(p aivae.Preferences) error {
	f := preferencesFile{
		Token:     p.Token,
		Onboarded: p.Onboarded,
		Notifications: notifications{
			Email: p.EmailNotifications,
			Push:  p.PushNotifications,
		},
		Security: security{TwoFactor: p.TwoFactor},
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := s.path + ".tmp"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create preferences file: %w", err)
	}
	if err := toml.NewEncoder(out).Encode(f); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
