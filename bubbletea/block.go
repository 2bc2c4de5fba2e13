package bubbletea

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pharmbotai/aivae"
)

// MessageBlock is a renderable element in the conversation.
// Unlike tea.Model, View takes a width parameter so the root model
// controls layout and blocks are testable in isolation.
type MessageBlock interface {
	Update(tea.Msg) (MessageBlock, tea.Cmd)
	View(width int) string
}

// RevealTickMsg advances the typed reveal of the bot message with ID.
type RevealTickMsg struct {
	ID aivae.MessageID
}

// CaptionTickMsg rotates the caption of the placeholder with ID.
type CaptionTickMsg struct {
	ID aivae.MessageID
}

func revealTick(id aivae.MessageID, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return RevealTickMsg{ID: id} })
}

func captionTick(id aivae.MessageID, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return CaptionTickMsg{ID: id} })
}
