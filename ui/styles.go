package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor       = lipgloss.Color("7")
	accentColor    = lipgloss.Color("12")
	successColor   = lipgloss.Color("10")
	warningColor   = lipgloss.Color("11")
	dangerColor    = lipgloss.Color("9")
	highlightColor = lipgloss.Color("13")

	// Added lines
	AddStyle = lipgloss.NewStyle().
			Foreground(successColor).
			TabWidth(lipgloss.NoTabConversion)

	// Removed lines
	DeleteStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			TabWidth(lipgloss.NoTabConversion)

	// @@ hunk headers
	HunkStyle = lipgloss.NewStyle().
			Foreground(highlightColor).
			TabWidth(lipgloss.NoTabConversion)

	// diff --git, index, ---/+++ lines
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			TabWidth(lipgloss.NoTabConversion)

	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	// Pass banners while streaming
	StageStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	TitleStyle = lipgloss.NewStyle().
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)
)

// FormatStatus formats a status line from alternating labels and values.
// Values are rendered in accent blue+bold.
// Usage: FormatStatus("files", "12", "skipped", "1")
// Result: "files 12  skipped 1"
func FormatStatus(color bool, parts ...string) string {
	valueStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	var result []string
	for i := 0; i < len(parts); i += 2 {
		if i+1 < len(parts) {
			value := parts[i+1]
			if color {
				value = valueStyle.Render(value)
			}
			result = append(result, parts[i]+" "+value)
		}
	}
	return strings.Join(result, "  ")
}
