package bubbletea

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/pharmbotai/aivae"
	"github.com/sahilm/fuzzy"
)

// HistoryFunc fetches the past exchanges of the signed-in user.
type HistoryFunc func(ctx context.Context) ([]aivae.HistoryEntry, error)

// HistoryLoadedMsg carries the result of a history fetch.
type HistoryLoadedMsg struct {
	Entries []aivae.HistoryEntry
	Err     error
}

func loadHistory(fn HistoryFunc) tea.Cmd {
	return func() tea.Msg {
		entries, err := fn(context.Background())
		return HistoryLoadedMsg{Entries: entries, Err: err}
	}
}

// historyPane lists past queries. Typing narrows the list with a fuzzy
// match on the query text.
type historyPane struct {
	Filter textinput.Model

	entries  []aivae.HistoryEntry
	visible  []int // indices into entries, best match first
	selected int
	loading  bool
	err      error
	now      func() time.Time
	styles   Styles
}

func newHistoryPane(styles Styles, now func() time.Time) historyPane {
	ti := textinput.New()
	ti.Placeholder = "Filter history..."
	ti.Prompt = "/ "
	return historyPane{Filter: ti, now: now, styles: styles}
}

// open resets the pane for a new fetch.
func (p historyPane) open() (historyPane, tea.Cmd) {
	p.Filter.SetValue("")
	p.entries = nil
	p.visible = nil
	p.selected = 0
	p.loading = true
	p.err = nil
	return p, p.Filter.Focus()
}

func (p historyPane) setEntries(msg HistoryLoadedMsg) historyPane {
	p.loading = false
	p.err = msg.Err
	p.entries = msg.Entries
	return p.refilter()
}

func (p historyPane) refilter() historyPane {
	pattern := strings.TrimSpace(p.Filter.Value())
	p.visible = nil
	if pattern == "" {
		for i := range p.entries {
			p.visible = append(p.visible, i)
		}
	} else {
		queries := make([]string, len(p.entries))
		for i, e := range p.entries {
			queries[i] = e.Query
		}
		for _, match := range fuzzy.Find(pattern, queries) {
			p.visible = append(p.visible, match.Index)
		}
	}
	p.selected = min(p.selected, max(len(p.visible)-1, 0))
	return p
}

// Selected returns the highlighted entry.
func (p historyPane) Selected() (aivae.HistoryEntry, bool) {
	if p.selected >= len(p.visible) {
		return aivae.HistoryEntry{}, false
	}
	return p.entries[p.visible[p.selected]], true
}

func (p historyPane) Update(msg tea.KeyMsg) (historyPane, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp, tea.KeyCtrlP:
		if p.selected > 0 {
			p.selected--
		}
		return p, nil
	case tea.KeyDown, tea.KeyCtrlJ:
		if p.selected < len(p.visible)-1 {
			p.selected++
		}
		return p, nil
	}
	var cmd tea.Cmd
	before := p.Filter.Value()
	p.Filter, cmd = p.Filter.Update(msg)
	if p.Filter.Value() != before {
		p.selected = 0
		p = p.refilter()
	}
	return p, cmd
}

func (p historyPane) View(width, height int) string {
	var b strings.Builder
	b.WriteString(p.styles.Accent.Render(fmt.Sprintf("History (%d)", len(p.entries))))
	b.WriteString("\n")
	b.WriteString(p.Filter.View())
	b.WriteString("\n")

	rows := max(height-2, 1)
	switch {
	case p.loading:
		b.WriteString(p.styles.Muted.Render("Loading..."))
	case p.err != nil:
		b.WriteString(p.styles.Error.Render(aivae.Classify(p.err).Text))
	case len(p.entries) == 0:
		b.WriteString(p.styles.Muted.Render("No history yet"))
	case len(p.visible) == 0:
		b.WriteString(p.styles.Muted.Render("No matches"))
	default:
		start := 0
		if p.selected >= rows {
			start = p.selected - rows + 1
		}
		end := min(start+rows, len(p.visible))
		for i := start; i < end; i++ {
			if i > start {
				b.WriteString("\n")
			}
			b.WriteString(p.row(p.entries[p.visible[i]], width, i == p.selected))
		}
	}
	return b.String()
}

// row renders one entry as the query, truncated to fit, and its age.
func (p historyPane) row(e aivae.HistoryEntry, width int, selected bool) string {
	age := ""
	if !e.CreatedAt.IsZero() {
		age = humanize.RelTime(e.CreatedAt, p.now(), "ago", "from now")
	}
	const marker = 2
	queryWidth := max(width-marker-runewidth.StringWidth(age)-1, 1)
	query := strings.Join(strings.Fields(e.Query), " ")
	query = runewidth.FillRight(runewidth.Truncate(query, queryWidth, "…"), queryWidth)

	if selected {
		return "> " + p.styles.Selected.Render(query) + " " + p.styles.Muted.Render(age)
	}
	return "  " + query + " " + p.styles.Muted.Render(age)
}

// historyConversation turns an entry into records that show its stored
// answer as rich text.
func historyConversation(e aivae.HistoryEntry) []aivae.Message {
	prefix := "history-" + e.ID
	return []aivae.Message{
		{ID: aivae.MessageID(prefix + "-q"), Sender: aivae.SenderUser, Text: e.Query, CreatedAt: e.CreatedAt},
		{ID: aivae.MessageID(prefix + "-a"), Sender: aivae.SenderBot, Text: e.Response, RichText: true, CreatedAt: e.CreatedAt},
	}
}
