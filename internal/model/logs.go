// internal/model/logs.go
package model

import (
	"strings"
	"time"
)

// ErrorMarker is the substring that marks a feed line as an error.
const ErrorMarker = "ERROR"

// Severity is a presentation-only classification of a log line
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	default:
		return "normal"
	}
}

// ParseSeverity is the inverse of String. Unknown values map to SeverityNormal.
func ParseSeverity(s string) Severity {
	if s == "error" {
		return SeverityError
	}
	return SeverityNormal
}

// LogEntry represents a single line of the activity feed
type LogEntry struct {
	Timestamp time.Time
	Message   string
	Severity  Severity
}

// NewLogEntry stamps message with t and classifies it
func NewLogEntry(t time.Time, message string) LogEntry {
	return LogEntry{
		Timestamp: t,
		Message:   message,
		Severity:  Classify(message),
	}
}

// Classify returns SeverityError when message contains ErrorMarker.
func Classify(message string) Severity {
	if strings.Contains(message, ErrorMarker) {
		return SeverityError
	}
	return SeverityNormal
}

// Line renders the entry as "[15:04:05] message"
func (e LogEntry) Line() string {
	return "[" + e.Timestamp.Format("15:04:05") + "] " + e.Message
}
