package aivae

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	UserMsg  int // User message accent
	BotMsg   int // Bot message accent
	Thinking int // Placeholder caption and spinner
	Error    int // Errors and notices
	Success  int // Status indicator
	Muted    int // Status bar, placeholders
	Accent   int // Headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:  4,
		BotMsg:   2,
		Thinking: 8,
		Error:    1,
		Success:  2,
		Muted:    8,
		Accent:   2,
	}
}
