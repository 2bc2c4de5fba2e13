package pharmbot_test

import (
	"testing"

	"github.com/pharmbotai/aivae/pharmbot"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text unchanged", "Take with food.", "Take with food."},
		{"markdown unchanged", "### Dosage\n- **two** tablets\t daily", "### Dosage\n- **two** tablets\t daily"},
		{"strips color codes", "\x1b[31mWarning\x1b[0m: dizziness", "Warning: dizziness"},
		{"strips OSC sequences", "\x1b]0;pwned\x07Answer", "Answer"},
		{"normalizes CRLF", "line1\r\nline2", "line1\nline2"},
		{"drops lone control characters", "a\x00b\x08c\rd\x7fe", "abcde"},
		{"keeps unicode", "⚠️ Ibuprofen • 200mg", "⚠️ Ibuprofen • 200mg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pharmbot.Sanitize(tt.in))
		})
	}
}
