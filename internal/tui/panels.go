package tui

import (
	"fmt"
	"strings"

	"github.com/rusenback/labconsole/internal/model"
)

// renderBridgePanel renders connectivity, the command list and help
func (m Model) renderBridgePanel(width, height int) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("🌉 Lab Bridge") + "\n\n")

	if m.state.Online {
		s.WriteString(liveBadgeStyle.Render("Bridge Live"))
	} else {
		s.WriteString(downBadgeStyle.Render("Bridge Down"))
	}
	s.WriteString("\n" + disabledStyle.Render(truncate(m.backendURL, atLeast(width-8, 10))) + "\n\n")

	s.WriteString(headerStyle.Render(fmt.Sprintf("%-*s", atLeast(width-10, 10), "COMMANDS")) + "\n")
	for i, c := range m.commands {
		line := truncate(fmt.Sprintf("%d. %s", i+1, m.label(c.Key)), atLeast(width-12, 10))

		switch {
		case m.state.Busy && m.state.InFlight == c.Key:
			s.WriteString(m.spinner.View() + " " + line + " " + disabledStyle.Render("sending..."))
		case m.state.Busy:
			s.WriteString("  " + disabledStyle.Render(line))
		case i == m.cursor:
			s.WriteString(selectedStyle.Render("> " + line))
		default:
			s.WriteString("  " + line)
		}
		s.WriteString("\n")
	}

	if m.message != "" {
		s.WriteString("\n" + messageStyle.Render(truncate(m.message, atLeast(width-8, 10))) + "\n")
	}

	help := "\n[↑/k] up  [↓/j] down  [enter/1-9] send\n[PgUp/PgDn] scroll feed  [r] report\n[R] refresh lab  [q] quit"
	s.WriteString(helpStyle.Render(help))

	return panelStyle.
		Width(width - 4).
		Height(height - 4).
		Render(s.String())
}

// renderFeedPanel renders the activity feed, newest first
func (m Model) renderFeedPanel(width, height int) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("📋 Activity") + "\n\n")
	s.WriteString(m.feed.View())

	total := m.state.Feed.Len()
	if total > m.feed.Height && m.feed.Height > 0 {
		s.WriteString(fmt.Sprintf("\n[%d/%d] PgUp/PgDn:scroll", m.feed.YOffset+1, total))
	}

	return panelStyle.
		Width(width - 4).
		Height(height - 4).
		Render(s.String())
}

// renderLabPanel renders the local container list
func (m Model) renderLabPanel(width, height int) string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("🐳 Lab Containers") + "\n\n")

	switch {
	case m.labErr != nil:
		s.WriteString("Docker not accessible.")
	case m.loading && len(m.containers) == 0:
		s.WriteString("Loading...")
	case len(m.containers) == 0:
		s.WriteString("No containers.")
	default:
		s.WriteString(m.renderContainers(width, height))
	}

	return panelStyle.
		Width(width - 4).
		Height(height - 4).
		Render(s.String())
}

func (m Model) renderContainers(width, height int) string {
	var s strings.Builder
	s.WriteString(fmt.Sprintf("%d total, %d running\n", len(m.containers), model.CountRunning(m.containers)))

	colWidth := atLeast(width-10, 20)
	nameWidth := int(float64(colWidth) * 0.35)
	stateWidth := 8
	imageWidth := atLeast(colWidth-nameWidth-stateWidth-2, 5)

	maxRows := atLeast(height-10, 1)
	for i, c := range m.containers {
		if i >= maxRows {
			s.WriteString(fmt.Sprintf("... %d more\n", len(m.containers)-maxRows))
			break
		}

		state := fmt.Sprintf("%-*s", stateWidth, truncate(c.State, stateWidth))
		if c.Running() {
			state = runningStyle.Render(state)
		} else {
			state = stoppedStyle.Render(state)
		}

		s.WriteString(fmt.Sprintf("%-*s %s %s\n",
			nameWidth, truncate(c.Name, nameWidth),
			state,
			truncate(c.Image, imageWidth),
		))
	}
	return s.String()
}
