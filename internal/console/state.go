// Package console holds the application state of the lab console and the
// single update function that every poll result and dispatch goes through.
package console

import (
	"errors"
	"fmt"
	"time"

	"github.com/rusenback/labconsole/internal/feed"
	"github.com/rusenback/labconsole/internal/model"
)

// Feed lines
const (
	MsgInitialized        = "[SYSTEM] Dashboard initialized."
	MsgBackendUnreachable = "!! ERROR: Failed to reach backend !!"
)

// ErrBusy is returned when a dispatch is requested while another is in flight.
var ErrBusy = errors.New("console: a command is already in flight")

// SendingLine is the feed line written when a dispatch starts.
func SendingLine(command string) string {
	return fmt.Sprintf("Sending command: %s", command)
}

// SuccessLine is the feed line written when the backend accepts a command.
func SuccessLine(message string) string {
	return fmt.Sprintf("Success: %s", message)
}

// State is the whole observable state of the console
type State struct {
	Feed     feed.Feed
	Online   bool
	Busy     bool
	InFlight string
}

// Outcome is the settled result of one dispatch. Err keeps the original cause;
// the feed only ever shows the coarse line.
type Outcome struct {
	Command  string
	Message  string
	Err      error
	Duration time.Duration
}

// OK reports whether the backend accepted the command
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Line is the feed line for the outcome
func (o Outcome) Line() string {
	if o.Err != nil {
		return MsgBackendUnreachable
	}
	return SuccessLine(o.Message)
}

// Event is anything that changes State
type Event interface {
	event()
}

// PollResult is one liveness probe result. Any error means offline.
type PollResult struct {
	Online bool
	Err    error
}

// DispatchStarted marks the start of a dispatch
type DispatchStarted struct {
	Command string
}

// DispatchSettled carries the outcome of a dispatch
type DispatchSettled struct {
	Outcome Outcome
}

// Note appends a free-form line to the feed.
type Note struct {
	Message string
}

func (PollResult) event()      {}
func (DispatchStarted) event() {}
func (DispatchSettled) event() {}
func (Note) event()            {}

// Reduce applies ev to s and returns the new state plus the feed entries the
// event created. It is pure: s is never modified.
func Reduce(s State, ev Event, now time.Time) (State, []model.LogEntry) {
	var added []model.LogEntry

	appendLine := func(msg string) {
		var entry model.LogEntry
		s.Feed, entry = s.Feed.Append(now, msg)
		added = append(added, entry)
	}

	switch ev := ev.(type) {
	case PollResult:
		s.Online = ev.Err == nil && ev.Online

	case DispatchStarted:
		s.Busy = true
		s.InFlight = ev.Command
		appendLine(SendingLine(ev.Command))

	case DispatchSettled:
		s.Busy = false
		s.InFlight = ""
		appendLine(ev.Outcome.Line())

	case Note:
		appendLine(ev.Message)
	}

	return s, added
}
