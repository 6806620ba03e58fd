package tui

import "github.com/charmbracelet/lipgloss"

type layout struct {
	leftWidth  int
	rightWidth int
	feedHeight int
	labHeight  int
}

// layout splits the screen: 40% left column, right column split 65/35
func (m Model) layout() layout {
	width, height := m.width, m.height
	if width == 0 || height == 0 {
		width, height = 120, 36
	}

	leftWidth := int(float64(width) * 0.4)
	feedHeight := int(float64(height) * 0.65)

	return layout{
		leftWidth:  leftWidth,
		rightWidth: width - leftWidth,
		feedHeight: feedHeight,
		labHeight:  height - feedHeight,
	}
}

// View renders the TUI interface
func (m Model) View() string {
	l := m.layout()
	height := l.feedHeight + l.labHeight

	left := m.renderBridgePanel(l.leftWidth, height)
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderFeedPanel(l.rightWidth, l.feedHeight),
		m.renderLabPanel(l.rightWidth, l.labHeight),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}
