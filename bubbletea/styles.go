package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/pharmbotai/aivae"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	UserMsg  lipgloss.Style
	BotMsg   lipgloss.Style
	Thinking lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	Selected lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t aivae.Theme) Styles {
	return Styles{
		UserMsg:  lipgloss.NewStyle().Foreground(ansiColor(t.UserMsg)).Bold(true),
		BotMsg:   lipgloss.NewStyle().Foreground(ansiColor(t.BotMsg)).Bold(true),
		Thinking: lipgloss.NewStyle().Foreground(ansiColor(t.Thinking)).Faint(true),
		Error:    lipgloss.NewStyle().Foreground(ansiColor(t.Error)).Bold(true),
		Success:  lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Muted:    lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:   lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		Selected: lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Reverse(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
