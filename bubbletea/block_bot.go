package bubbletea

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pharmbotai/aivae"
	"github.com/pharmbotai/aivae/goldmark"
	"github.com/pharmbotai/aivae/reveal"
)

var _ MessageBlock = (*BotMessageBlock)(nil)

// BotMessageBlock renders an assistant message. A plain record is typed out
// one character per RevealTickMsg; a rich record is rendered as structured
// content. A record switches from plain to rich at most once.
type BotMessageBlock struct {
	id       aivae.MessageID
	text     string
	rich     bool
	reveal   *reveal.Reveal
	interval time.Duration
	theme    aivae.Theme
	styles   Styles

	// richByWidth caches the structured rendering per width.
	richByWidth map[int]string
}

// NewBotMessageBlock creates a block for msg. Call Start to begin the typed
// reveal of a plain record.
func NewBotMessageBlock(msg aivae.Message, interval time.Duration, theme aivae.Theme, styles Styles) *BotMessageBlock {
	if interval <= 0 {
		interval = reveal.DefaultInterval
	}
	b := &BotMessageBlock{
		id:          msg.ID,
		text:        msg.Text,
		rich:        msg.RichText,
		interval:    interval,
		theme:       theme,
		styles:      styles,
		richByWidth: make(map[int]string),
	}
	if !b.rich {
		b.reveal = reveal.New(msg.Text)
	}
	return b
}

// Start returns the first reveal tick, or nil when nothing is left to type.
func (b *BotMessageBlock) Start() tea.Cmd {
	if b.rich || b.reveal == nil || b.reveal.Done() {
		return nil
	}
	return revealTick(b.id, b.interval)
}

// SetRich switches the block to structured rendering. An unfinished reveal
// is cancelled.
func (b *BotMessageBlock) SetRich() {
	if b.rich {
		return
	}
	b.rich = true
	if b.reveal != nil {
		b.reveal.Cancel()
	}
}

// Rich reports whether the block renders structured content.
func (b *BotMessageBlock) Rich() bool { return b.rich }

// Revealing reports whether the typed reveal is still in progress.
func (b *BotMessageBlock) Revealing() bool {
	return !b.rich && b.reveal != nil && !b.reveal.Done() && !b.reveal.Cancelled()
}

// Text returns the full message text.
func (b *BotMessageBlock) Text() string { return b.text }

func (b *BotMessageBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	tick, ok := msg.(RevealTickMsg)
	if !ok || tick.ID != b.id || !b.Revealing() {
		return b, nil
	}
	if _, ok := b.reveal.Next(); !ok || b.reveal.Done() {
		return b, nil
	}
	return b, revealTick(b.id, b.interval)
}

func (b *BotMessageBlock) View(width int) string {
	if b.rich {
		if cached, ok := b.richByWidth[width]; ok {
			return cached
		}
		rendered := goldmark.RenderText(b.text, width, b.theme)
		b.richByWidth[width] = rendered
		return rendered
	}
	shown := b.text
	if b.reveal != nil {
		shown = b.reveal.Prefix()
	}
	return lipgloss.NewStyle().Width(width).Render(shown)
}
