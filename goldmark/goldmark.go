// Package goldmark renders parsed assistant responses to ANSI-styled terminal
// output. Block structure comes from aivae.Parse; inline markdown inside each
// block (emphasis, code spans, links) is parsed with goldmark and styled with
// lipgloss.
package goldmark

import "github.com/pharmbotai/aivae"

// DefaultWidth is used when the caller passes a non-positive width.
const DefaultWidth = 80

// Render returns the styled form of blocks. Headings use the accent color,
// sub-headings are bold, ordered lists are numbered from 1 and unordered
// lists use a bullet. Paragraphs and list items are word-wrapped to width.
func Render(blocks []aivae.Block, width int, theme aivae.Theme) string {
	if len(blocks) == 0 {
		return ""
	}
	if width <= 0 {
		width = DefaultWidth
	}
	return newRenderer(theme).render(blocks, width)
}

// RenderText parses text into blocks and renders them.
func RenderText(text string, width int, theme aivae.Theme) string {
	return Render(aivae.Parse(text), width, theme)
}

// Inline renders the inline markdown of a single line of text, without
// wrapping. Text that goldmark would read as anything other than a plain
// paragraph is returned unchanged.
func Inline(text string, theme aivae.Theme) string {
	if text == "" {
		return ""
	}
	return newRenderer(theme).inline(text)
}
