// Package report writes plain-text operator snapshots of the console state.
package report

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/rusenback/labconsole/internal/model"
)

// DefaultTools are the operator tools looked up on PATH
var DefaultTools = []string{"htop", "btop", "lazydocker", "k9s"}

// maxActivity caps how many feed lines go into a report
const maxActivity = 30

// Tool is an operator tool and where it was found. Path is empty when the
// tool is not installed.
type Tool struct {
	Name string
	Path string
}

// Available reports whether the tool was found
func (t Tool) Available() bool {
	return t.Path != ""
}

// DetectTools resolves names with lookPath, usually exec.LookPath
func DetectTools(lookPath func(string) (string, error), names ...string) []Tool {
	if len(names) == 0 {
		names = DefaultTools
	}
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	tools := make([]Tool, 0, len(names))
	for _, name := range names {
		path, err := lookPath(name)
		if err != nil {
			path = ""
		}
		tools = append(tools, Tool{Name: name, Path: path})
	}
	return tools
}

// Snapshot is everything a report shows
type Snapshot struct {
	Generated  time.Time
	BackendURL string
	Session    string
	Online     bool
	Busy       bool
	InFlight   string

	// Activity is newest first
	Activity []model.LogEntry

	// History holds journal entries from earlier sessions, newest first.
	// HistoryErr is set when the journal could not be read.
	History    []model.LogEntry
	HistoryErr error

	Containers []model.Container
	DockerErr  error

	Tools []Tool
}

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"stamp":         func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
	"online":        func(b bool) string { return map[bool]string{true: "LIVE", false: "DOWN"}[b] },
	"dockerContext": dockerContext,
}).Parse(`LAB CONSOLE REPORT
==================
Generated: {{stamp .Generated}}
Backend: {{.BackendURL}}
{{- if .Session}}
Session: {{.Session}}
{{- end}}

BRIDGE STATE
------------
Connectivity: {{online .Online}}
Command in flight: {{if .Busy}}{{.InFlight}}{{else}}none{{end}}

RECENT ACTIVITY
---------------
{{range .Activity}}{{.Line}}
{{else}}No activity recorded.
{{end}}
PREVIOUS SESSIONS
-----------------
{{if .HistoryErr}}Journal unavailable.
{{else}}{{range .History}}{{.Line}}
{{else}}No earlier activity recorded.
{{end}}{{end}}
DOCKER CONTEXT
--------------
{{dockerContext .}}

AVAILABLE SRE TOOLS
-------------------
{{range .Tools}}{{.Name}}: {{if .Available}}AVAILABLE ({{.Path}}){{else}}NOT INSTALLED{{end}}
{{end}}
OPERATOR ACTIONS
----------------
- htop / btop : Inspect system load
- lazydocker  : Inspect container failures
- k9s         : Inspect pod crashes

END OF REPORT
`))

func dockerContext(s Snapshot) string {
	if s.DockerErr != nil {
		return "Docker not accessible."
	}

	var running []string
	for _, c := range s.Containers {
		if c.Running() {
			running = append(running, fmt.Sprintf("%s (%s)", c.Name, c.Image))
		}
	}
	if len(running) == 0 {
		return "No running containers."
	}
	return "Running containers:\n" + strings.Join(running, "\n")
}

// Render formats s as a report
func Render(s Snapshot) (string, error) {
	if len(s.Activity) > maxActivity {
		s.Activity = s.Activity[:maxActivity]
	}
	if len(s.History) > maxActivity {
		s.History = s.History[:maxActivity]
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

// Write renders s into dir as SNAPSHOT_<timestamp>.txt and returns the path
func Write(dir string, s Snapshot) (string, error) {
	if s.Generated.IsZero() {
		s.Generated = time.Now()
	}

	body, err := Render(s)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(dir, "SNAPSHOT_"+s.Generated.Format("2006-01-02_15-04-05")+".txt")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
