package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pharmbotai/aivae"
)

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// BlockCount returns the number of rendered conversation blocks.
func BlockCount(m Model) int {
	return len(m.blocks)
}

// BlockFor returns the block rendering the record with id.
func BlockFor(m Model, id aivae.MessageID) (MessageBlock, bool) {
	b, ok := m.byID[id]
	return b, ok
}

// StatusLine exports statusLine for testing.
func StatusLine(m Model) string {
	return m.statusLine()
}

// ShowingHistory returns whether the history pane is open.
func ShowingHistory(m Model) bool {
	return m.showHistory
}

// Listen exports the snapshot bridge's listen command for testing.
func Listen(m Model) tea.Cmd {
	return m.bridge.listen()
}

// HistoryConversation exports historyConversation for testing.
func HistoryConversation(e aivae.HistoryEntry) []aivae.Message {
	return historyConversation(e)
}
