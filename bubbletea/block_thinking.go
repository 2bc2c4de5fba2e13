package bubbletea

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pharmbotai/aivae"
)

var _ MessageBlock = (*ThinkingBlock)(nil)

// CaptionInterval is how long each placeholder caption is shown.
const CaptionInterval = 2 * time.Second

// Captions are cycled while a response is pending.
var Captions = []string{
	"Analyzing your query...",
	"Gathering information...",
	"Looking into it...",
	"Gears are turning...",
	"Processing your request...",
	"Consulting medical database...",
	"Checking pharmacy records...",
	"Formulating response...",
}

// ThinkingBlock renders the placeholder of a pending response: a spinner
// and a rotating caption.
type ThinkingBlock struct {
	id      aivae.MessageID
	spinner spinner.Model
	caption int
	styles  Styles
}

// NewThinkingBlock creates a ThinkingBlock for the placeholder with id.
func NewThinkingBlock(id aivae.MessageID, styles Styles) *ThinkingBlock {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Thinking))
	return &ThinkingBlock{id: id, spinner: sp, styles: styles}
}

// Init starts the spinner and the caption rotation.
func (b *ThinkingBlock) Init() tea.Cmd {
	return tea.Batch(b.spinner.Tick, captionTick(b.id, CaptionInterval))
}

// Caption returns the caption currently shown.
func (b *ThinkingBlock) Caption() string {
	return Captions[b.caption]
}

func (b *ThinkingBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinner, cmd = b.spinner.Update(msg)
		return b, cmd
	case CaptionTickMsg:
		if msg.ID != b.id {
			return b, nil
		}
		b.caption = (b.caption + 1) % len(Captions)
		return b, captionTick(b.id, CaptionInterval)
	}
	return b, nil
}

func (b *ThinkingBlock) View(width int) string {
	content := b.spinner.View() + " " + b.styles.Thinking.Render(b.Caption())
	return lipgloss.NewStyle().Width(width).Render(content)
}
