// Package feed holds the activity feed: an append-only, newest-first sequence
// of log entries.
//
// A Feed is a value. Append never mutates the receiver's backing array, so a
// Feed captured in a snapshot stays valid while newer feeds grow.
package feed

import (
	"time"

	"github.com/rusenback/labconsole/internal/model"
)

// Feed is an ordered sequence of entries, newest first by insertion
type Feed struct {
	entries []model.LogEntry
}

// Append prepends message stamped with now and returns the grown feed
// together with the new entry.
func (f Feed) Append(now time.Time, message string) (Feed, model.LogEntry) {
	entry := model.NewLogEntry(now, message)

	entries := make([]model.LogEntry, 0, len(f.entries)+1)
	entries = append(entries, entry)
	entries = append(entries, f.entries...)

	return Feed{entries: entries}, entry
}

// Len returns the number of entries
func (f Feed) Len() int {
	return len(f.entries)
}

// Entries returns a copy of the entries, newest first
func (f Feed) Entries() []model.LogEntry {
	out := make([]model.LogEntry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Latest returns the newest entry, if any.
func (f Feed) Latest() (model.LogEntry, bool) {
	if len(f.entries) == 0 {
		return model.LogEntry{}, false
	}
	return f.entries[0], true
}

// Lines renders every entry with LogEntry.Line, newest first
func (f Feed) Lines() []string {
	lines := make([]string, len(f.entries))
	for i, e := range f.entries {
		lines[i] = e.Line()
	}
	return lines
}
