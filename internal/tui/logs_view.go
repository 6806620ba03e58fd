package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rusenback/labconsole/internal/model"
)

var (
	// Pattern highlighting
	ipPattern  = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	urlPattern = regexp.MustCompile(`https?://[^\s]+`)

	timestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")) // Dim gray

	errorLogStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Bold(true) // Red
	systemLogStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#89B4FA"))            // Blue
	defaultLogStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CDD6F4"))            // Normal

	errorIndicator  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Render("●")
	normalIndicator = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")).Render("○")

	ipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")) // Yellow
	urlStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#89DCEB")) // Cyan
)

// styleLogEntry renders one feed line. Severity alone decides the colour.
func styleLogEntry(entry model.LogEntry, maxWidth int) string {
	timestamp := timestampStyle.Render("[" + entry.Timestamp.Format("15:04:05") + "]")

	message := entry.Message
	overhead := lipgloss.Width(timestamp) + 3
	if keep := maxWidth - overhead; keep > 0 {
		message = truncate(message, keep)
	}

	indicator := normalIndicator
	var styled string
	switch {
	case entry.Severity == model.SeverityError:
		indicator = errorIndicator
		styled = errorLogStyle.Render(message)
	case strings.HasPrefix(message, "[SYSTEM]"):
		styled = systemLogStyle.Render(message)
	default:
		styled = highlight(message, defaultLogStyle)
	}

	return timestamp + " " + indicator + " " + styled
}

// highlight applies the base style and picks out addresses
func highlight(message string, base lipgloss.Style) string {
	result := ipPattern.ReplaceAllStringFunc(message, func(match string) string {
		return ipStyle.Render(match)
	})
	result = urlPattern.ReplaceAllStringFunc(result, func(match string) string {
		return urlStyle.Render(match)
	})
	if result == message {
		return base.Render(message)
	}
	return result
}
