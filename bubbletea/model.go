package bubbletea

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pharmbotai/aivae"
	"github.com/pharmbotai/aivae/chat"
	"github.com/pharmbotai/aivae/reveal"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the chat TUI.
type Model struct {
	// Input is the question input. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable conversation. Exported for test access.
	Viewport viewport.Model

	conv     Conversation
	bridge   *snapshotBridge
	history  HistoryFunc
	copy     func(string) error
	identity string
	interval time.Duration
	now      func() time.Time
	theme    aivae.Theme
	styles   Styles

	snap   chat.Snapshot
	blocks []MessageBlock
	byID   map[aivae.MessageID]MessageBlock

	submitting bool
	submitSeq  uint64
	cancel     context.CancelFunc
	flash      string

	showHistory bool
	pane        historyPane

	ready bool
}

// Option configures a Model.
type Option func(*Model)

// WithHistory enables the history pane, fetching entries with fn.
func WithHistory(fn HistoryFunc) Option {
	return func(m *Model) { m.history = fn }
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) { m.copy = fn }
}

// WithIdentity sets the account description shown in the status line.
func WithIdentity(s string) Option {
	return func(m *Model) { m.identity = s }
}

// WithRevealInterval sets the time between two typed characters.
func WithRevealInterval(d time.Duration) Option {
	return func(m *Model) { m.interval = d }
}

// WithClock sets the time source used for history ages.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// New creates a TUI Model for conv. The model subscribes to conv
// immediately; snapshots are consumed once the program runs.
func New(conv Conversation, theme aivae.Theme, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a pharmacy-related question..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	styles := NewStyles(theme)
	m := Model{
		Input:    ti,
		conv:     conv,
		bridge:   newSnapshotBridge(),
		copy:     clipboard.WriteAll,
		interval: reveal.DefaultInterval,
		now:      time.Now,
		theme:    theme,
		styles:   styles,
		byID:     make(map[aivae.MessageID]MessageBlock),
	}
	for _, o := range opts {
		o(&m)
	}
	m.pane = newHistoryPane(styles, m.now)
	conv.Subscribe(m.bridge.publish)
	return m
}

// Submitting returns whether a question is waiting for its response.
func (m Model) Submitting() bool { return m.submitting || m.snap.Pending }

// Messages returns the records of the last applied snapshot.
func (m Model) Messages() []aivae.Message { return m.snap.Messages }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.bridge.listen())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SnapshotMsg:
		var cmd tea.Cmd
		if m.snap.Version == 0 || msg.Snapshot.Version > m.snap.Version {
			m, cmd = m.applySnapshot(msg.Snapshot)
		}
		return m, tea.Batch(cmd, m.bridge.listen())

	case submitDoneMsg:
		if msg.seq != m.submitSeq {
			return m, nil
		}
		m.submitting = false
		m.cancel = nil
		return m, m.Input.Focus()

	case HistoryLoadedMsg:
		m.pane = m.pane.setEntries(msg)
		return m, nil

	case RevealTickMsg:
		return m.routeTo(msg.ID, msg)

	case CaptionTickMsg:
		return m.routeTo(msg.ID, msg)

	case spinner.TickMsg:
		var cmds []tea.Cmd
		for _, b := range m.blocks {
			if tb, ok := b.(*ThinkingBlock); ok {
				_, cmd := tb.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
		m.refresh()
		return m, tea.Batch(cmds...)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.submitting {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	if m.showHistory {
		b.WriteString(m.pane.View(m.Viewport.Width, m.Viewport.Height))
	} else {
		b.WriteString(m.Viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputH-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Input.Width = msg.Width
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.submitting {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyCtrlO:
		return m.toggleHistory()

	case tea.KeyCtrlN:
		if m.cancel != nil {
			m.cancel()
		}
		m.submitting = false
		m.cancel = nil
		m.conv.Reset()
		m.showHistory = false
		m.pane.Filter.Blur()
		return m, m.Input.Focus()

	case tea.KeyCtrlY:
		return m.copyLastAnswer(), nil
	}

	if m.showHistory {
		return m.handleHistoryKey(msg)
	}

	if msg.Type == tea.KeyEnter {
		if m.Submitting() {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submit(text)
	}

	// When idle, pass keys to both input (for typing) and viewport
	// (for scrolling). Only forward non-character keys to viewport to avoid
	// conflicts (e.g. 'j'/'k' are viewport scroll AND text characters).
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	if !m.submitting {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.showHistory = false
		m.pane.Filter.Blur()
		return m, m.Input.Focus()
	case tea.KeyEnter:
		entry, ok := m.pane.Selected()
		if !ok {
			return m, nil
		}
		m.conv.Restore(historyConversation(entry))
		m.showHistory = false
		m.pane.Filter.Blur()
		return m, m.Input.Focus()
	}
	var cmd tea.Cmd
	m.pane, cmd = m.pane.Update(msg)
	return m, cmd
}

func (m Model) toggleHistory() (tea.Model, tea.Cmd) {
	if m.showHistory {
		m.showHistory = false
		m.pane.Filter.Blur()
		return m, m.Input.Focus()
	}
	m.showHistory = true
	m.Input.Blur()
	var cmd tea.Cmd
	m.pane, cmd = m.pane.open()
	if m.history == nil {
		m.pane = m.pane.setEntries(HistoryLoadedMsg{})
		return m, cmd
	}
	return m, tea.Batch(cmd, loadHistory(m.history))
}

func (m Model) copyLastAnswer() Model {
	for i := len(m.snap.Messages) - 1; i >= 0; i-- {
		msg := m.snap.Messages[i]
		if msg.Sender != aivae.SenderBot || msg.Thinking {
			continue
		}
		if err := m.copy(msg.Text); err != nil {
			m.flash = "Copy failed: " + err.Error()
		} else {
			m.flash = "Copied to clipboard"
		}
		return m
	}
	return m
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.Input.Blur()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.submitting = true
	m.submitSeq++

	conv, seq := m.conv, m.submitSeq
	return m, func() tea.Msg {
		defer cancel()
		conv.Submit(ctx, text)
		return submitDoneMsg{seq: seq}
	}
}

// applySnapshot rebuilds the block list from s, reusing blocks by record ID
// so reveal progress and spinners survive.
func (m Model) applySnapshot(s chat.Snapshot) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	blocks := make([]MessageBlock, 0, len(s.Messages))
	byID := make(map[aivae.MessageID]MessageBlock, len(s.Messages))

	for _, msg := range s.Messages {
		existing := m.byID[msg.ID]
		var block MessageBlock
		switch {
		case msg.Sender == aivae.SenderUser:
			b, ok := existing.(*UserMessageBlock)
			if !ok {
				b = NewUserMessageBlock(msg, m.styles)
			}
			block = b
		case msg.Thinking:
			b, ok := existing.(*ThinkingBlock)
			if !ok {
				b = NewThinkingBlock(msg.ID, m.styles)
				cmds = append(cmds, b.Init())
			}
			block = b
		default:
			b, ok := existing.(*BotMessageBlock)
			if !ok {
				b = NewBotMessageBlock(msg, m.interval, m.theme, m.styles)
				cmds = append(cmds, b.Start())
			} else if msg.RichText {
				b.SetRich()
			}
			block = b
		}
		blocks = append(blocks, block)
		byID[msg.ID] = block
	}

	m.snap = s
	m.blocks = blocks
	m.byID = byID
	if m.ready {
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
	}
	return m, tea.Batch(cmds...)
}

// routeTo delivers msg to the block of the record with id. Messages for
// records that no longer exist are dropped.
func (m Model) routeTo(id aivae.MessageID, msg tea.Msg) (tea.Model, tea.Cmd) {
	block, ok := m.byID[id]
	if !ok {
		return m, nil
	}
	_, cmd := block.Update(msg)
	m.refresh()
	return m, cmd
}

// refresh re-renders the conversation, following the bottom when the user
// has not scrolled away from it.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	atBottom := m.Viewport.AtBottom()
	m.Viewport.SetContent(m.renderContent())
	if atBottom {
		m.Viewport.GotoBottom()
	}
}

func (m Model) renderContent() string {
	if len(m.blocks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.snap.Notice != "":
		return m.styles.Error.Render(m.snap.Notice)
	case m.flash != "":
		return m.styles.Success.Render(m.flash)
	case m.showHistory:
		return m.styles.Muted.Render("↑/↓ select, Enter open, Esc close")
	case m.Submitting():
		return m.styles.Muted.Render("Waiting for response... Ctrl+C to cancel")
	}
	hints := "Enter to send, Ctrl+N new chat, Ctrl+O history, Ctrl+Y copy, Ctrl+C to quit"
	if m.identity != "" {
		hints = m.identity + " · " + hints
	}
	return m.styles.Muted.Render(hints)
}
