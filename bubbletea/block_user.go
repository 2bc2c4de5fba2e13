package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pharmbotai/aivae"
)

var _ MessageBlock = (*UserMessageBlock)(nil)

const questionMarker = "> "

// UserMessageBlock renders a question. Wrapped lines hang under the first
// so the marker stands alone in its column.
type UserMessageBlock struct {
	question string
	styles   Styles
}

// NewUserMessageBlock creates a block for the user record msg.
func NewUserMessageBlock(msg aivae.Message, styles Styles) *UserMessageBlock {
	return &UserMessageBlock{question: msg.Text, styles: styles}
}

// Update is a no-op; questions never change once sent.
func (b *UserMessageBlock) Update(tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *UserMessageBlock) View(width int) string {
	indent := lipgloss.Width(questionMarker)
	body := lipgloss.NewStyle().Width(max(width-indent, 1)).Render(b.question)

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if i == 0 {
			lines[i] = b.styles.UserMsg.Render(questionMarker) + line
			continue
		}
		lines[i] = strings.Repeat(" ", indent) + line
	}
	return strings.Join(lines, "\n")
}
