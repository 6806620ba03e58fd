package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rusenback/labconsole/internal/console"
	"github.com/rusenback/labconsole/internal/report"
)

// Update handles messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeFeed()

	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.commands)-1 {
				m.cursor++
			}

		case "enter":
			return m, m.dispatchSelected()

		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			idx := int(key[0] - '1')
			if idx < len(m.commands) {
				m.cursor = idx
				return m, m.dispatchSelected()
			}

		case "pgup":
			m.feed.HalfViewUp()
		case "pgdown":
			m.feed.HalfViewDown()
		case "home":
			m.feed.GotoTop()
		case "end":
			m.feed.GotoBottom()

		case "r":
			m.message = "Writing report..."
			return m, writeReport(m.reportDir, m.reportSnapshot(), m.journal)

		case "R":
			if m.lab != nil {
				m.loading = true
				return m, fetchContainers(m.ctx, m.lab)
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case changeMsg:
		m.state = m.store.Snapshot()
		m.refreshFeed()
		return m, waitForChange(m.store)

	case tickMsg:
		if m.lab == nil {
			return m, nil
		}
		return m, tea.Batch(fetchContainers(m.ctx, m.lab), tickCmd())

	case containersMsg:
		m.loading = false
		if msg.err != nil {
			m.labErr = msg.err
			m.containers = nil
			m.log.Debug("list containers", zap.Error(msg.err))
			return m, nil
		}
		m.labErr = nil
		m.containers = msg.containers

	case dispatchMsg:
		label := m.label(msg.outcome.Command)
		switch {
		case errors.Is(msg.err, console.ErrBusy):
			m.message = fmt.Sprintf("%s ignored: %s is still running", label, m.label(m.state.InFlight))
		case msg.err != nil:
			m.message = fmt.Sprintf("%s: %v", label, msg.err)
		default:
			m.message = fmt.Sprintf("%s finished in %s", label, msg.outcome.Duration.Round(time.Millisecond))
		}

	case reportMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Report failed: %v", msg.err)
			m.log.Error("write report", zap.Error(msg.err))
		} else {
			m.message = "Report written: " + msg.path
			m.log.Info("report written", zap.String("path", msg.path))
		}
	}

	return m, nil
}

// dispatchSelected starts the command under the cursor unless one is running
func (m *Model) dispatchSelected() tea.Cmd {
	if len(m.commands) == 0 || m.dispatcher == nil {
		return nil
	}
	cmd := m.commands[m.cursor]

	if m.state.Busy {
		m.message = fmt.Sprintf("%s ignored: %s is still running", m.label(cmd.Key), m.label(m.state.InFlight))
		return nil
	}

	m.message = ""
	return dispatchCommand(m.ctx, m.dispatcher, cmd.Key)
}

// label returns the configured label of a command key
func (m Model) label(key string) string {
	return m.commands.Label(key)
}

// refreshFeed re-renders the feed into the viewport
func (m *Model) refreshFeed() {
	width := m.feed.Width
	if width <= 0 {
		width = 80
	}

	entries := m.state.Feed.Entries()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, styleLogEntry(e, width))
	}
	m.feed.SetContent(strings.Join(lines, "\n"))
}

func (m *Model) resizeFeed() {
	l := m.layout()
	m.feed.Width = atLeast(l.rightWidth-8, 10)
	m.feed.Height = atLeast(l.feedHeight-8, 3)
	m.refreshFeed()
}

func (m Model) reportSnapshot() report.Snapshot {
	return report.Snapshot{
		Generated:  time.Now(),
		BackendURL: m.backendURL,
		Session:    m.session,
		Online:     m.state.Online,
		Busy:       m.state.Busy,
		InFlight:   m.state.InFlight,
		Activity:   m.state.Feed.Entries(),
		Containers: m.containers,
		DockerErr:  m.labErr,
	}
}
