// Package ui renders analysis output for the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderDiff colors a unified diff line by line. Without color the diff is
// returned unchanged; with color only escape sequences are added, so every
// line of the input survives.
func RenderDiff(diff string, color bool) string {
	if !color || diff == "" {
		return diff
	}

	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		if style, ok := diffLineStyle(line); ok {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func diffLineStyle(line string) (lipgloss.Style, bool) {
	switch {
	case strings.HasPrefix(line, "diff --git"),
		strings.HasPrefix(line, "index "),
		strings.HasPrefix(line, "--- "),
		strings.HasPrefix(line, "+++ "),
		strings.HasPrefix(line, "new file mode"),
		strings.HasPrefix(line, "deleted file mode"):
		return HeaderStyle, true
	case strings.HasPrefix(line, "@@"):
		return HunkStyle, true
	case strings.HasPrefix(line, "+"):
		return AddStyle, true
	case strings.HasPrefix(line, "-"):
		return DeleteStyle, true
	}
	return lipgloss.Style{}, false
}

// RenderStage returns the banner printed before a pass streams its output.
func RenderStage(stage string, pass, total int, color bool) string {
	banner := fmt.Sprintf("== %s (%d/%d) ==", stage, pass, total)
	if color {
		return StageStyle.Render(banner)
	}
	return banner
}

// RenderWarning renders a non-fatal notice such as a skipped file.
func RenderWarning(msg string, color bool) string {
	if color {
		return WarningStyle.Render(msg)
	}
	return msg
}
