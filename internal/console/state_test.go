package console

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusenback/labconsole/internal/model"
)

var testNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.Local)

func TestReducePollNeverTouchesFeed(t *testing.T) {
	var s State

	s, added := Reduce(s, PollResult{Online: true}, testNow)
	assert.True(t, s.Online)
	assert.Empty(t, added)

	s, added = Reduce(s, PollResult{Online: true, Err: errors.New("timeout")}, testNow)
	assert.False(t, s.Online)
	assert.Empty(t, added)

	s, _ = Reduce(s, PollResult{Online: true}, testNow)
	s, _ = Reduce(s, PollResult{Online: false}, testNow)
	assert.False(t, s.Online)
	assert.Equal(t, 0, s.Feed.Len())
}

func TestReduceDispatchLifecycle(t *testing.T) {
	var s State

	s, added := Reduce(s, DispatchStarted{Command: "bridge_up"}, testNow)
	require.Len(t, added, 1)
	assert.True(t, s.Busy)
	assert.Equal(t, "bridge_up", s.InFlight)
	assert.Equal(t, "Sending command: bridge_up", added[0].Message)

	s, added = Reduce(s, DispatchSettled{Outcome: Outcome{Command: "bridge_up", Message: "Bridge activated"}}, testNow)
	require.Len(t, added, 1)
	assert.False(t, s.Busy)
	assert.Empty(t, s.InFlight)
	assert.Equal(t, "Success: Bridge activated", added[0].Message)
	assert.Equal(t, 2, s.Feed.Len())
}

func TestReduceFailedDispatchLeavesConnectivity(t *testing.T) {
	s := State{Online: true}

	s, _ = Reduce(s, DispatchStarted{Command: "terraform"}, testNow)
	s, added := Reduce(s, DispatchSettled{Outcome: Outcome{Command: "terraform", Err: errors.New("deadline exceeded")}}, testNow)

	require.Len(t, added, 1)
	assert.Equal(t, MsgBackendUnreachable, added[0].Message)
	assert.Equal(t, model.SeverityError, added[0].Severity)
	assert.True(t, s.Online)
	assert.False(t, s.Busy)
}

func TestReduceDoesNotModifyInput(t *testing.T) {
	var s State
	next, _ := Reduce(s, Note{Message: "hello"}, testNow)

	assert.Equal(t, 0, s.Feed.Len())
	assert.Equal(t, 1, next.Feed.Len())
}

type recordingSink struct {
	mu      sync.Mutex
	entries []model.LogEntry
}

func (r *recordingSink) Write(e *model.LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *e)
}

func TestNewStoreSeedsFeed(t *testing.T) {
	sink := &recordingSink{}
	s := NewStore(WithClock(func() time.Time { return testNow }), WithSink(sink))

	snap := s.Snapshot()
	latest, ok := snap.Feed.Latest()
	require.True(t, ok)
	assert.Equal(t, MsgInitialized, latest.Message)
	assert.False(t, snap.Online)
	assert.False(t, snap.Busy)

	require.Len(t, sink.entries, 1)
	assert.Equal(t, MsgInitialized, sink.entries[0].Message)
}

func TestStoreBeginRejectsOverlap(t *testing.T) {
	s := NewStore()
	before := s.Snapshot().Feed.Len()

	require.NoError(t, s.Begin("bridge_up"))
	assert.ErrorIs(t, s.Begin("terraform"), ErrBusy)

	snap := s.Snapshot()
	assert.Equal(t, before+1, snap.Feed.Len())
	assert.Equal(t, "bridge_up", snap.InFlight)

	s.Apply(DispatchSettled{Outcome: Outcome{Command: "bridge_up", Message: "ok"}})
	assert.NoError(t, s.Begin("terraform"))
}

func TestStoreSnapshotIsImmutable(t *testing.T) {
	s := NewStore()
	snap := s.Snapshot()

	s.Apply(Note{Message: "later"})

	assert.Equal(t, 1, snap.Feed.Len())
	assert.Equal(t, 2, s.Snapshot().Feed.Len())
}

func TestStoreChangesCoalesce(t *testing.T) {
	s := NewStore()

	s.Apply(PollResult{Online: true})
	s.Apply(PollResult{Online: false})

	select {
	case <-s.Changes():
	default:
		t.Fatal("expected a pending change signal")
	}

	select {
	case <-s.Changes():
		t.Fatal("signals should coalesce")
	default:
	}
}

func TestStoreConcurrentApply(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Apply(Note{Message: "tick"})
			s.Apply(PollResult{Online: true})
		}()
	}
	wg.Wait()

	assert.Equal(t, 51, s.Snapshot().Feed.Len())
}
