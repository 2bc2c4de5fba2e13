package aivae

import "time"

// Preferences holds the values kept in persistent local storage.
type Preferences struct {
	Token              string
	Onboarded          bool
	EmailNotifications bool
	PushNotifications  bool
	TwoFactor          bool
}

// PreferenceStore reads and writes Preferences.
type PreferenceStore interface {
	Load() (Preferences, error)
	Save(Preferences) error
}

// Identity describes the account behind a session token.
type Identity struct {
	UserID     string
	Username   string
	Role       string
	PharmacyID string
	ExpiresAt  time.Time
}

// Expired reports whether the identity has a known expiry before now.
func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// String returns "username (role)", or just the username when the role is empty.
func (i Identity) String() string {
	if i.Role == "" {
		return i.Username
	}
	return i.Username + " (" + i.Role + ")"
}
