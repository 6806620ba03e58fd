package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusenback/labconsole/internal/config"
	"github.com/rusenback/labconsole/internal/console"
	"github.com/rusenback/labconsole/internal/model"
	"github.com/rusenback/labconsole/internal/storage"
)

type fakeDispatcher struct {
	mu    sync.Mutex
	store *console.Store
	sent  []string
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, command string) (console.Outcome, error) {
	f.mu.Lock()
	f.sent = append(f.sent, command)
	f.mu.Unlock()

	if err := f.store.Begin(command); err != nil {
		return console.Outcome{Command: command}, err
	}
	out := console.Outcome{Command: command, Message: "ok", Duration: 12 * time.Millisecond}
	f.store.Apply(console.DispatchSettled{Outcome: out})
	return out, nil
}

type fakeLab struct {
	containers []model.Container
	err        error
}

func (f *fakeLab) ListContainers(context.Context) ([]model.Container, error) {
	return f.containers, f.err
}

func (f *fakeLab) Close() error { return nil }

func newTestModel(t *testing.T, lab *fakeLab) (Model, *console.Store, *fakeDispatcher) {
	t.Helper()
	store := console.NewStore()
	d := &fakeDispatcher{store: store}
	opts := Options{
		Store:      store,
		Dispatcher: d,
		Commands:   config.Default().Commands,
		BackendURL: "http://localhost:8000",
		ReportDir:  t.TempDir(),
	}
	if lab != nil {
		opts.Lab = lab
	}
	m := NewModel(context.Background(), opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), store, d
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestViewShowsSeedAndDownBadge(t *testing.T) {
	m, _, _ := newTestModel(t, nil)

	view := m.View()
	assert.Contains(t, view, "Bridge Down")
	assert.Contains(t, view, console.MsgInitialized)
	assert.Contains(t, view, "Activate Bridge")
	assert.Contains(t, view, "Provision Kali")
	assert.Contains(t, view, "Docker not accessible.")
}

func TestChangeMsgPicksUpStore(t *testing.T) {
	m, store, _ := newTestModel(t, nil)

	store.Apply(console.PollResult{Online: true})
	m, cmd := update(t, m, changeMsg{})
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "Bridge Live")
}

func TestEnterDispatchesSelectedCommand(t *testing.T) {
	m, store, d := newTestModel(t, nil)

	m, _ = update(t, m, key("down"))
	m, cmd := update(t, m, key("enter"))
	require.NotNil(t, cmd)

	msg := cmd()
	m, _ = update(t, m, msg)
	assert.Equal(t, []string{"terraform"}, d.sent)
	assert.Contains(t, m.message, "Provision Kali finished in 12ms")

	m, _ = update(t, m, changeMsg{})
	view := m.View()
	assert.Contains(t, view, "Success: ok")
	assert.Contains(t, view, "Sending command: terraform")
	assert.Equal(t, 3, store.Snapshot().Feed.Len())
}

func TestNumberKeyDispatches(t *testing.T) {
	m, _, d := newTestModel(t, nil)

	m, cmd := update(t, m, key("1"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"bridge_up"}, d.sent)
	assert.Equal(t, 0, m.cursor)

	_, cmd = update(t, m, key("9"))
	assert.Nil(t, cmd)
}

func TestDispatchIgnoredWhileBusy(t *testing.T) {
	m, store, d := newTestModel(t, nil)

	require.NoError(t, store.Begin("bridge_up"))
	m, _ = update(t, m, changeMsg{})

	m, cmd := update(t, m, key("2"))
	assert.Nil(t, cmd)
	assert.Empty(t, d.sent)
	assert.Contains(t, m.message, "Activate Bridge is still running")
	assert.Contains(t, m.View(), "sending...")
}

func TestBusyResultMessage(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	m.state.InFlight = "bridge_up"

	m, _ = update(t, m, dispatchMsg{outcome: console.Outcome{Command: "terraform"}, err: console.ErrBusy})
	assert.Equal(t, "Provision Kali ignored: Activate Bridge is still running", m.message)
}

func TestLabPanel(t *testing.T) {
	lab := &fakeLab{containers: []model.Container{
		{Name: "kali-lab", Image: "kalilinux/kali-rolling", State: "running"},
		{Name: "old-proxy", Image: "nginx", State: "exited"},
	}}
	m, _, _ := newTestModel(t, lab)
	assert.Contains(t, m.View(), "Loading...")

	m, _ = update(t, m, fetchContainers(context.Background(), lab)())
	view := m.View()
	assert.Contains(t, view, "2 total, 1 running")
	assert.Contains(t, view, "kali-lab")

	lab.err = errors.New("daemon gone")
	m, _ = update(t, m, fetchContainers(context.Background(), lab)())
	assert.Contains(t, m.View(), "Docker not accessible.")
}

func TestReportKeyWritesSnapshot(t *testing.T) {
	m, _, _ := newTestModel(t, nil)

	m, cmd := update(t, m, key("r"))
	require.NotNil(t, cmd)
	assert.Equal(t, "Writing report...", m.message)

	msg := cmd()
	m, _ = update(t, m, msg)
	rm := msg.(reportMsg)
	require.NoError(t, rm.err)
	assert.Equal(t, m.reportDir, filepath.Dir(rm.path))
	assert.Contains(t, m.message, "Report written")

	data, err := os.ReadFile(rm.path)
	require.NoError(t, err)
	assert.Contains(t, string(data), console.MsgInitialized)
	assert.Contains(t, string(data), "Connectivity: DOWN")
}

func TestReportIncludesEarlierSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	earlier, err := storage.Open(path)
	require.NoError(t, err)
	e := model.NewLogEntry(time.Now().Add(-time.Hour), "Success: snapshot from yesterday")
	earlier.Write(&e)
	require.NoError(t, earlier.Close())

	journal, err := storage.Open(path)
	require.NoError(t, err)
	defer journal.Close()

	store := console.NewStore(console.WithSink(journal))
	m := NewModel(context.Background(), Options{
		Store:      store,
		Dispatcher: &fakeDispatcher{store: store},
		Journal:    journal,
		Commands:   config.Default().Commands,
		BackendURL: "http://localhost:8000",
		ReportDir:  t.TempDir(),
	})
	assert.Equal(t, journal.Session(), m.session)

	store.Apply(console.PollResult{Online: true})
	journal.Flush()

	_, cmd := update(t, m, key("r"))
	require.NotNil(t, cmd)
	rm := cmd().(reportMsg)
	require.NoError(t, rm.err)

	data, err := os.ReadFile(rm.path)
	require.NoError(t, err)
	report := string(data)

	_, history, ok := strings.Cut(report, "PREVIOUS SESSIONS")
	require.True(t, ok)
	history, _, _ = strings.Cut(history, "DOCKER")
	assert.Contains(t, history, "Success: snapshot from yesterday")
	assert.NotContains(t, history, console.MsgInitialized)
}

type brokenJournal struct{}

func (brokenJournal) Recent(int) ([]storage.Record, error) {
	return nil, errors.New("database is locked")
}

func (brokenJournal) Session() string { return "current" }

func TestEarlierSessions(t *testing.T) {
	_, err := earlierSessions(brokenJournal{}, "current")
	assert.Error(t, err)
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(t, nil)

	_, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestStyleLogEntry(t *testing.T) {
	ts := time.Date(2026, 10, 17, 9, 5, 1, 0, time.Local)

	line := styleLogEntry(model.NewLogEntry(ts, console.MsgBackendUnreachable), 120)
	assert.Contains(t, line, "[09:05:01]")
	assert.Contains(t, line, console.MsgBackendUnreachable)

	long := styleLogEntry(model.NewLogEntry(ts, "Success: "+strings.Repeat("x", 200)), 40)
	assert.Contains(t, long, "...")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
	assert.Equal(t, "ab", truncate("abcdefgh", 2))
	assert.Equal(t, "äö...", truncate("äöüßxyz", 5))
}
