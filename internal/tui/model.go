package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rusenback/labconsole/internal/config"
	"github.com/rusenback/labconsole/internal/console"
	"github.com/rusenback/labconsole/internal/docker"
	"github.com/rusenback/labconsole/internal/model"
	"github.com/rusenback/labconsole/internal/storage"
)

// Dispatcher runs one command against the backend
type Dispatcher interface {
	Dispatch(ctx context.Context, command string) (console.Outcome, error)
}

// Journal is the persisted activity log
type Journal interface {
	Recent(limit int) ([]storage.Record, error)
	Session() string
}

// Options wires the model to the rest of the console
type Options struct {
	Store      *console.Store
	Dispatcher Dispatcher
	// Lab is optional; nil means the Docker daemon is not reachable
	Lab        docker.LabClient
	LabErr     error
	// Journal is optional; reports then carry no earlier sessions
	Journal    Journal
	Commands   config.Commands
	BackendURL string
	ReportDir  string
	Logger     *zap.Logger
}

// Model represents the TUI application state
type Model struct {
	ctx        context.Context
	store      *console.Store
	dispatcher Dispatcher
	lab        docker.LabClient
	journal    Journal
	log        *zap.Logger

	commands   config.Commands
	backendURL string
	reportDir  string
	session    string

	// state is the last store snapshot rendered
	state  console.State
	cursor int

	containers []model.Container
	labErr     error
	loading    bool

	message string
	width   int
	height  int

	feed    viewport.Model
	spinner spinner.Model
}

// Message types for Bubbletea update loop
type tickMsg time.Time

// changeMsg means the store has a newer snapshot
type changeMsg struct{}

type containersMsg struct {
	containers []model.Container
	err        error
}

type dispatchMsg struct {
	outcome console.Outcome
	err     error
}

type reportMsg struct {
	path string
	err  error
}

// NewModel creates a new TUI model. ctx bounds every request started from
// the UI.
func NewModel(ctx context.Context, opts Options) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	labErr := opts.LabErr
	if opts.Lab == nil && labErr == nil {
		labErr = errNoDocker
	}

	m := Model{
		ctx:        ctx,
		store:      opts.Store,
		dispatcher: opts.Dispatcher,
		lab:        opts.Lab,
		journal:    opts.Journal,
		log:        log.Named("tui"),
		commands:   opts.Commands,
		backendURL: opts.BackendURL,
		reportDir:  opts.ReportDir,
		labErr:     labErr,
		loading:    opts.Lab != nil,
		feed:       viewport.New(0, 0),
		spinner:    sp,
	}
	if opts.Journal != nil {
		m.session = opts.Journal.Session()
	}
	m.state = m.store.Snapshot()
	m.refreshFeed()
	return m
}

// Init initializes the model and returns initial commands
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForChange(m.store), m.spinner.Tick}
	if m.lab != nil {
		cmds = append(cmds, fetchContainers(m.ctx, m.lab), tickCmd())
	}
	return tea.Batch(cmds...)
}
