package goldmark

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pharmbotai/aivae"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

const bullet = "• "

type ansiRenderer struct {
	parser    parser.Parser
	heading   lipgloss.Style
	bold      lipgloss.Style
	italic    lipgloss.Style
	code      lipgloss.Style
	muted     lipgloss.Style
	underline lipgloss.Style
}

func newRenderer(theme aivae.Theme) *ansiRenderer {
	return &ansiRenderer{
		parser:    goldmark.DefaultParser(),
		heading:   lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		code:      lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		underline: lipgloss.NewStyle().Underline(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *ansiRenderer) render(blocks []aivae.Block, width int) string {
	var buf bytes.Buffer
	for i, b := range blocks {
		if i > 0 {
			buf.WriteString("\n")
		}
		r.renderBlock(b, width, &buf)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (r *ansiRenderer) renderBlock(b aivae.Block, width int, buf *bytes.Buffer) {
	switch b := b.(type) {
	case aivae.Heading:
		styled := r.heading.Render(r.inline(b.Text))
		buf.WriteString(wrap(styled, width))
		buf.WriteString("\n")

	case aivae.Subheading:
		styled := r.bold.Render(r.inline(b.Text))
		buf.WriteString(wrap(styled, width))
		buf.WriteString("\n")

	case aivae.Paragraph:
		buf.WriteString(wrap(r.inline(b.Text), width))
		buf.WriteString("\n")

	case aivae.List:
		for i, item := range b.Items {
			marker := bullet
			if b.Kind == aivae.ListOrdered {
				marker = strconv.Itoa(i+1) + ". "
			}
			r.writeListItem(buf, marker, r.inline(item), width)
		}
	}
}

// writeListItem writes a list item with continuation lines indented past
// the marker.
func (r *ansiRenderer) writeListItem(buf *bytes.Buffer, marker, content string, width int) {
	prefixWidth := lipgloss.Width(marker)
	itemWidth := max(width-prefixWidth, 10)
	lines := strings.Split(wrap(content, itemWidth), "\n")
	continuation := strings.Repeat(" ", prefixWidth)
	for i, line := range lines {
		if i == 0 {
			buf.WriteString(marker + line + "\n")
		} else {
			buf.WriteString(continuation + line + "\n")
		}
	}
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

// inline renders the inline markdown of src.
func (r *ansiRenderer) inline(src string) string {
	source := []byte(src)
	doc := r.parser.Parse(text.NewReader(source))
	p, ok := doc.FirstChild().(*ast.Paragraph)
	if !ok || p.NextSibling() != nil {
		return src
	}
	return r.collectInline(p, source)
}

// collectInline recursively collects styled inline text from a node's children.
func (r *ansiRenderer) collectInline(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.renderInline(c, source, &buf)
	}
	return buf.String()
}

func (r *ansiRenderer) renderInline(node ast.Node, source []byte, buf *bytes.Buffer) {
	switch n := node.(type) {
	case *ast.Text:
		buf.Write(n.Segment.Value(source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			buf.WriteByte(' ')
		}

	case *ast.String:
		buf.Write(n.Value)

	case *ast.Emphasis:
		inner := r.collectInline(n, source)
		if n.Level == 1 {
			buf.WriteString(r.italic.Render(inner))
		} else {
			buf.WriteString(r.bold.Render(inner))
		}

	case *ast.CodeSpan:
		buf.WriteString(r.code.Render(r.collectInline(n, source)))

	case *ast.Link:
		inner := r.collectInline(n, source)
		buf.WriteString(r.underline.Render(inner))
		buf.WriteString(" ")
		buf.WriteString(r.muted.Render("(" + string(n.Destination) + ")"))

	case *ast.AutoLink:
		buf.WriteString(r.underline.Render(string(n.URL(source))))

	case *ast.Image:
		alt := r.collectInline(n, source)
		buf.WriteString(r.underline.Render(alt))
		buf.WriteString(" ")
		buf.WriteString(r.muted.Render("(" + string(n.Destination) + ")"))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			buf.Write(seg.Value(source))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.renderInline(c, source, buf)
		}
	}
}
