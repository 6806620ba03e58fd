package tui

import (
	"context"
	"errors"
	"os/exec"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rusenback/labconsole/internal/console"
	"github.com/rusenback/labconsole/internal/docker"
	"github.com/rusenback/labconsole/internal/model"
	"github.com/rusenback/labconsole/internal/report"
)

const labRefreshInterval = 5 * time.Second

var errNoDocker = errors.New("docker daemon not available")

// tickCmd creates a command that sends a tick message every labRefreshInterval
func tickCmd() tea.Cmd {
	return tea.Tick(labRefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForChange blocks until the store has something new
func waitForChange(store *console.Store) tea.Cmd {
	return func() tea.Msg {
		<-store.Changes()
		return changeMsg{}
	}
}

// fetchContainers creates a command to fetch the lab container list
func fetchContainers(ctx context.Context, lab docker.LabClient) tea.Cmd {
	return func() tea.Msg {
		containers, err := lab.ListContainers(ctx)
		return containersMsg{containers: containers, err: err}
	}
}

// dispatchCommand sends key to the backend. The store records progress, so
// the message only carries what the status line needs.
func dispatchCommand(ctx context.Context, d Dispatcher, key string) tea.Cmd {
	return func() tea.Msg {
		out, err := d.Dispatch(ctx, key)
		return dispatchMsg{outcome: out, err: err}
	}
}

// historyLimit is how many journal rows a report looks back over
const historyLimit = 200

// writeReport renders snap into dir, adding entries that earlier sessions
// left in the journal
func writeReport(dir string, snap report.Snapshot, journal Journal) tea.Cmd {
	return func() tea.Msg {
		if journal != nil {
			snap.History, snap.HistoryErr = earlierSessions(journal, snap.Session)
		}
		snap.Tools = report.DetectTools(exec.LookPath)
		path, err := report.Write(dir, snap)
		return reportMsg{path: path, err: err}
	}
}

// earlierSessions returns journal entries not written by session, newest first
func earlierSessions(journal Journal, session string) ([]model.LogEntry, error) {
	records, err := journal.Recent(historyLimit)
	if err != nil {
		return nil, err
	}

	var entries []model.LogEntry
	for _, r := range records {
		if r.Session != session {
			entries = append(entries, r.Entry)
		}
	}
	return entries, nil
}
