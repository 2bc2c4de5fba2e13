// Package json persists conversation transcripts as JSON files.
package json

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pharmbotai/aivae"
)

const (
	envelopeVersion = 1
	fileExt         = ".json"
)

// envelope is the v1 wire format for a persisted session.
type envelope struct {
	Version   int          `json:"version"`
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Messages  []messageDTO `json:"messages"`
}

// messageDTO is the JSON representation of a Message. Placeholders are
// never written, so it has no thinking flag.
type messageDTO struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	RichText  bool      `json:"rich_text"`
	CreatedAt time.Time `json:"created_at"`
}

// MarshalSession serializes a Session to JSON in v1 envelope format.
// Placeholder records are dropped.
func MarshalSession(s aivae.Session) ([]byte, error) {
	env := envelope{
		Version:   envelopeVersion,
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Messages:  make([]messageDTO, 0, len(s.Messages)),
	}
	for i, m := range s.Messages {
		if m.Thinking {
			continue
		}
		if err := validateSender(m.Sender); err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		env.Messages = append(env.Messages, messageDTO{
			ID:        string(m.ID),
			Sender:    string(m.Sender),
			Text:      m.Text,
			RichText:  m.RichText,
			CreatedAt: m.CreatedAt,
		})
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalSession deserializes a Session from JSON in v1 envelope format.
func UnmarshalSession(data []byte) (aivae.Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return aivae.Session{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != envelopeVersion {
		return aivae.Session{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	msgs := make([]aivae.Message, len(env.Messages))
	for i, dto := range env.Messages {
		sender := aivae.Sender(dto.Sender)
		if err := validateSender(sender); err != nil {
			return aivae.Session{}, fmt.Errorf("message %d: %w", i, err)
		}
		msgs[i] = aivae.Message{
			ID:        aivae.MessageID(dto.ID),
			Sender:    sender,
			Text:      dto.Text,
			RichText:  dto.RichText,
			CreatedAt: dto.CreatedAt,
		}
	}
	return aivae.Session{
		ID:        env.ID,
		CreatedAt: env.CreatedAt,
		UpdatedAt: env.UpdatedAt,
		Messages:  msgs,
	}, nil
}

func validateSender(s aivae.Sender) error {
	switch s {
	case aivae.SenderUser, aivae.SenderBot:
		return nil
	default:
		return fmt.Errorf("unknown sender: %q", s)
	}
}

// Save writes a Session to a JSON file, creating parent directories as needed.
func Save(path string, s aivae.Session) error {
	data, err := MarshalSession(s)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Session from a JSON file.
func Load(path string) (aivae.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return aivae.Session{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalSession(data)
}

// Path returns the file a session with the given ID is stored in under dir.
func Path(dir, id string) string {
	return filepath.Join(dir, id+fileExt)
}

// List loads every session stored in dir, most recently updated first.
// A missing directory yields no sessions. Files that fail to load are skipped.
func List(dir string) ([]aivae.Session, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	var sessions []aivae.Session
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		s, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		sessions = append(sessions, s)
	}
	slices.SortFunc(sessions, func(a, b aivae.Session) int {
		return cmp.Compare(b.UpdatedAt.UnixNano(), a.UpdatedAt.UnixNano())
	})
	return sessions, nil
}
