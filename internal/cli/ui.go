package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleTag for the reply tag.
	StyleTag = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNick for chat nicknames.
	StyleNick = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
)

var (
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

const (
	iconError = "✗"
	iconInfo  = "›"
)

// =============================================================================
// Status Output
// =============================================================================

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Replies
// =============================================================================

// replySep separates the fields of a formatted reply.
const replySep = " | "

// renderReply styles one reply line: the tag, dimmed field separators and
// the release link.
func renderReply(line, tag string) string {
	var b strings.Builder
	if tag != "" && strings.HasPrefix(line, tag) {
		b.WriteString(StyleTag.Render(strings.TrimSpace(tag)))
		b.WriteString(" ")
		line = strings.TrimPrefix(line, tag)
	}

	for i, field := range strings.Split(line, replySep) {
		if i > 0 {
			b.WriteString(StyleDim.Render(replySep))
		}
		if strings.HasPrefix(field, "https://") || strings.HasPrefix(field, "http://") {
			b.WriteString(StyleLink.Render(field))
		} else {
			b.WriteString(StyleValue.Render(field))
		}
	}
	return b.String()
}

// printReply prints one reply line.
func printReply(line, tag string) {
	fmt.Println(renderReply(line, tag))
}
