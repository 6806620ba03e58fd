package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, SeverityError, Classify("!! ERROR: Failed to reach backend !!"))
	assert.Equal(t, SeverityNormal, Classify("Success: Bridge activated"))
	assert.Equal(t, SeverityNormal, Classify("error in lowercase is not a marker"))
}

func TestLogEntryLine(t *testing.T) {
	ts := time.Date(2026, 1, 2, 15, 4, 5, 0, time.Local)
	e := NewLogEntry(ts, "Sending command: bridge_up")

	assert.Equal(t, "[15:04:05] Sending command: bridge_up", e.Line())
	assert.Equal(t, SeverityNormal, e.Severity)
}

func TestSeverityRoundTrip(t *testing.T) {
	assert.Equal(t, SeverityError, ParseSeverity(SeverityError.String()))
	assert.Equal(t, SeverityNormal, ParseSeverity(SeverityNormal.String()))
	assert.Equal(t, SeverityNormal, ParseSeverity("bogus"))
}

func TestCountRunning(t *testing.T) {
	containers := []Container{
		{Name: "kali", State: "running"},
		{Name: "bridge", State: "exited"},
		{Name: "proxy", State: "running"},
	}
	assert.Equal(t, 2, CountRunning(containers))
	assert.Equal(t, 0, CountRunning(nil))
}
