package aivae

import (
	"regexp"
	"strings"
)

var (
	// listItemRe matches the marker of an ordered ("1." or "1)") or
	// unordered ("*", "-", "•") list item, with any following spaces.
	listItemRe = regexp.MustCompile(`^(\d+[.)]|[*\-•])\s*`)
	orderedRe  = regexp.MustCompile(`^\d+[.)]`)

	// headingEnumRe matches the first enumeration left in a heading after its
	// marker is removed, e.g. the " 3." in "### Title 3.".
	headingEnumRe = regexp.MustCompile(`\s*\d+[.)]\s*`)

	// leadingEnumRe matches an enumeration at the start of a sub-heading.
	leadingEnumRe = regexp.MustCompile(`^\d+[.)]\s*`)
)

// Parse converts a flat block of assistant text into a sequence of blocks.
// It processes input line by line; adjacent list items of the same kind are
// grouped into a single List. Parse is pure: identical input always yields
// identical output, and every string is valid input.
func Parse(text string) []Block {
	p := parser{}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "###"):
			p.flush()
			heading := strings.TrimPrefix(trimmed, "###")
			heading = replaceFirst(headingEnumRe, heading, "")
			p.emit(Heading{Text: strings.TrimSpace(heading)})

		case strings.HasPrefix(trimmed, "**"):
			p.flush()
			sub := strings.ReplaceAll(trimmed, "**", "")
			sub = leadingEnumRe.ReplaceAllString(sub, "")
			p.emit(Subheading{Text: strings.TrimSpace(sub)})

		case isListItem(trimmed):
			kind := ListUnordered
			if orderedRe.MatchString(trimmed) {
				kind = ListOrdered
			}
			if p.pending && p.kind != kind {
				p.flush()
			}
			p.pending = true
			p.kind = kind
			item := listItemRe.ReplaceAllString(trimmed, "")
			p.items = append(p.items, strings.TrimSpace(item))

		case trimmed != "":
			p.flush()
			p.emit(Paragraph{Text: trimmed})

		default:
			// A blank line only ends a list when the list does not continue
			// on the next line.
			if i+1 < len(lines) && !isListItem(strings.TrimSpace(lines[i+1])) {
				p.flush()
			}
		}
	}
	p.flush()
	return p.blocks
}

// isListItem reports whether a trimmed line starts with a list-item marker.
func isListItem(trimmed string) bool {
	return listItemRe.MatchString(trimmed)
}

// replaceFirst replaces only the leftmost match of re in s.
func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}

// parser holds the block output and the pending-list accumulator.
type parser struct {
	blocks  []Block
	pending bool
	kind    ListKind
	items   []string
}

func (p *parser) emit(b Block) {
	p.blocks = append(p.blocks, b)
}

// flush turns the accumulated items into a List block and clears them.
func (p *parser) flush() {
	if !p.pending {
		return
	}
	if len(p.items) > 0 {
		p.blocks = append(p.blocks, List{Kind: p.kind, Items: p.items})
	}
	p.pending = false
	p.items = nil
}
