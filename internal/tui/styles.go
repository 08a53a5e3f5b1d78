package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// ------- styling helpers (Lip Gloss) -------
var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	cellStyle     = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	doneCellStyle = lipgloss.NewStyle().Background(lipgloss.Color("22")).Foreground(lipgloss.Color("231")).Strikethrough(true)
	emptyStyle    = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
	inputStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
)

// Grid geometry inside the panel: left border + padding, and the header lines
// (border, title, progress, blank) above the first row.
const (
	gridLeft = 2
	gridTop  = 4
	cellGap  = 1
)

func progressBar(done, total, width int) string {
	if total == 0 {
		total = 1
	}
	if width <= 0 {
		width = 28
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf("] %d/%d", done, total)
}

// cellText pads or truncates name to exactly width columns, one space each side.
func cellText(name string, width int) string {
	inner := width - 2
	if inner < 1 {
		inner = 1
	}
	return " " + runewidth.FillRight(runewidth.Truncate(name, inner, "…"), inner) + " "
}
