// Package dispatch sends named commands to the bridge backend, one at a time.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rusenback/labconsole/internal/bridge"
	"github.com/rusenback/labconsole/internal/console"
)

const DefaultTimeout = 5 * time.Second

// ErrBusy is returned when a command is already in flight.
var ErrBusy = console.ErrBusy

// Runner is the part of the bridge client the dispatcher needs
type Runner interface {
	RunTask(ctx context.Context, command string) (string, error)
}

// Dispatcher runs commands against a Runner and records them in a Store
type Dispatcher struct {
	runner  Runner
	store   *console.Store
	timeout time.Duration
	log     *zap.Logger
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithTimeout bounds each request
func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) {
		if t > 0 {
			d.timeout = t
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// New creates a dispatcher
func New(runner Runner, store *console.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		runner:  runner,
		store:   store,
		timeout: DefaultTimeout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.Named("dispatch")
	return d
}

// Busy reports whether a command is in flight
func (d *Dispatcher) Busy() bool {
	return d.store.Snapshot().Busy
}

// Dispatch sends command and blocks until the backend answers, the request
// times out or ctx is done. It returns ErrBusy without touching the feed when
// another command is in flight. Any other failure is reported through the
// returned Outcome, never as an error.
func (d *Dispatcher) Dispatch(ctx context.Context, command string) (out console.Outcome, err error) {
	if err := d.store.Begin(command); err != nil {
		d.log.Warn("rejected", zap.String("command", command), zap.String("in_flight", d.store.Snapshot().InFlight))
		return console.Outcome{Command: command}, err
	}

	start := time.Now()
	out.Command = command

	defer func() {
		if r := recover(); r != nil {
			out.Message = ""
			out.Err = fmt.Errorf("dispatch: panic while running %q: %v", command, r)
		}
		out.Duration = time.Since(start)
		d.store.Apply(console.DispatchSettled{Outcome: out})
		d.logOutcome(out)
	}()

	reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	out.Message, out.Err = d.runner.RunTask(reqCtx, command)
	return out, nil
}

func (d *Dispatcher) logOutcome(out console.Outcome) {
	fields := []zap.Field{
		zap.String("command", out.Command),
		zap.Duration("took", out.Duration),
	}
	if out.OK() {
		d.log.Info("command accepted", append(fields, zap.String("message", out.Message))...)
		return
	}

	fields = append(fields, zap.String("cause", bridge.Kind(out.Err)), zap.Error(out.Err))
	var statusErr *bridge.StatusError
	if errors.As(out.Err, &statusErr) {
		fields = append(fields, zap.Int("status_code", statusErr.Code))
	}
	d.log.Error("command failed", fields...)
}
