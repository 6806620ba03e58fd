// Package poller asks the bridge backend whether it is alive on a fixed
// schedule and reports every answer to the console store.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rusenback/labconsole/internal/bridge"
	"github.com/rusenback/labconsole/internal/console"
)

const (
	DefaultInterval = 3 * time.Second
	DefaultTimeout  = 3 * time.Second
)

// ErrRunning is returned by Start when the poller is already running.
var ErrRunning = errors.New("poller: already running")

// Prober is the part of the bridge client the poller needs
type Prober interface {
	Status(ctx context.Context) (bool, error)
}

// Poller issues one status probe immediately and then one per interval.
// Probes never overlap, and a tick that fires while a probe is in flight is
// discarded rather than starting another probe straight away.
type Poller struct {
	prober   Prober
	report   func(console.PollResult)
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Poller
type Option func(*Poller)

// WithInterval sets the time between probes
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithTimeout bounds each probe
func WithTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.log = l
		}
	}
}

// New creates a poller that hands results to report. report is called from
// the poller goroutine.
func New(prober Prober, report func(console.PollResult), opts ...Option) *Poller {
	p := &Poller{
		prober:   prober,
		report:   report,
		interval: DefaultInterval,
		timeout:  DefaultTimeout,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.Named("poller")
	return p
}

// Start launches the polling loop. It runs until ctx is cancelled or Stop is
// called.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return ErrRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.loop(ctx, p.done)

	p.log.Info("started", zap.Duration("interval", p.interval), zap.Duration("timeout", p.timeout))
	return nil
}

// Stop ends polling and waits for the loop to exit. A probe still in flight
// is cancelled and its result dropped. Stop on a stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	p.log.Info("stopped")
}

// Running reports whether the loop is active
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.probe(ctx)
	skipMissed(ticker)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.probe(ctx)
			skipMissed(ticker)
		}
	}
}

// skipMissed drops the tick the ticker kept while a probe was running.
func skipMissed(t *time.Ticker) {
	select {
	case <-t.C:
	default:
	}
}

func (p *Poller) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	online, err := p.prober.Status(probeCtx)

	// Stopped while the request was in flight.
	if ctx.Err() != nil {
		return
	}

	if err != nil {
		p.log.Debug("probe failed", zap.String("cause", bridge.Kind(err)), zap.Error(err))
	}
	p.report(console.PollResult{Online: online, Err: err})
}
