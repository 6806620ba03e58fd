package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusenback/labconsole/internal/model"
)

func TestAppendPrepends(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local)

	var f Feed
	f, _ = f.Append(now, "first")
	f, _ = f.Append(now.Add(time.Second), "second")
	f, last := f.Append(now.Add(2*time.Second), "third")

	require.Equal(t, 3, f.Len())
	assert.Equal(t, "third", last.Message)

	entries := f.Entries()
	assert.Equal(t, "third", entries[0].Message)
	assert.Equal(t, "second", entries[1].Message)
	assert.Equal(t, "first", entries[2].Message)
}

func TestSameTickKeepsInsertionOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.Local)

	var f Feed
	f, _ = f.Append(now, "a")
	f, _ = f.Append(now, "b")

	assert.Equal(t, []string{"[10:00:00] b", "[10:00:00] a"}, f.Lines())
}

func TestAppendDoesNotDisturbEarlierValue(t *testing.T) {
	now := time.Now()

	var base Feed
	base, _ = base.Append(now, "base")

	left, _ := base.Append(now, "left")
	right, _ := base.Append(now, "right")

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, "left", left.Entries()[0].Message)
	assert.Equal(t, "right", right.Entries()[0].Message)
	assert.Equal(t, "base", left.Entries()[1].Message)
}

func TestEntriesIsACopy(t *testing.T) {
	var f Feed
	f, _ = f.Append(time.Now(), "keep me")

	entries := f.Entries()
	entries[0].Message = "mutated"

	latest, ok := f.Latest()
	require.True(t, ok)
	assert.Equal(t, "keep me", latest.Message)
}

func TestErrorSeverityOnAppend(t *testing.T) {
	var f Feed
	_, e := f.Append(time.Now(), "!! ERROR: Failed to reach backend !!")
	assert.Equal(t, model.SeverityError, e.Severity)

	_, ok := Feed{}.Latest()
	assert.False(t, ok)
}
