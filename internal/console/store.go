package console

import (
	"sync"
	"time"

	"github.com/rusenback/labconsole/internal/model"
)

// Sink receives every entry added to the feed, in insertion order.
type Sink interface {
	Write(entry *model.LogEntry)
}

// Store serialises events into one State and hands out snapshots
type Store struct {
	mu      sync.Mutex
	state   State
	now     func() time.Time
	sink    Sink
	changes chan struct{}
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithSink forwards new feed entries to sink
func WithSink(sink Sink) Option {
	return func(s *Store) {
		s.sink = sink
	}
}

// NewStore returns a store whose feed is seeded with MsgInitialized
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:     time.Now,
		changes: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.Apply(Note{Message: MsgInitialized})

	return s
}

// Apply runs ev through Reduce and returns the resulting state
func (s *Store) Apply(ev Event) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.applyLocked(ev)
}

// Begin atomically checks that no dispatch is in flight and applies
// DispatchStarted. It returns ErrBusy otherwise and leaves the state alone.
func (s *Store) Begin(command string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Busy {
		return ErrBusy
	}
	s.applyLocked(DispatchStarted{Command: command})
	return nil
}

// Snapshot returns the current state. The returned value is never modified
// by later events.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Changes signals after every applied event. Signals coalesce: a reader that
// falls behind sees one pending signal, not one per event.
func (s *Store) Changes() <-chan struct{} {
	return s.changes
}

func (s *Store) applyLocked(ev Event) State {
	var added []model.LogEntry
	s.state, added = Reduce(s.state, ev, s.now())

	if s.sink != nil {
		for i := range added {
			s.sink.Write(&added[i])
		}
	}

	select {
	case s.changes <- struct{}{}:
	default:
	}

	return s.state
}
