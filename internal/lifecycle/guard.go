package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/tobedoit/gCalendar-mcp/internal/logging"
)

// State is a process lifecycle state.
type State stateless.State

var (
	StateRunning     State = "Running"
	StateTerminating State = "Terminating"
)

// Trigger moves the lifecycle machine.
type Trigger stateless.Trigger

var (
	TriggerFailure Trigger = "Failure"
	TriggerSignal  Trigger = "Signal"
)

// DefaultDrainTimeout bounds the shutdown hooks run before exiting.
const DefaultDrainTimeout = 2 * time.Second

// ShutdownHook runs once when the process starts terminating.
type ShutdownHook func(ctx context.Context) error

// Guard keeps the process alive through isolated failures and exits with
// status 0 on a termination signal. Shutdown hooks run while the guard is
// locked and must not call back into it.
type Guard struct {
	mu           sync.Mutex
	fsm          *stateless.StateMachine
	logger       *slog.Logger
	exit         func(int)
	hooks        []ShutdownHook
	drainTimeout time.Duration
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) { g.logger = logger }
}

// WithExit replaces os.Exit.
func WithExit(exit func(int)) Option {
	return func(g *Guard) { g.exit = exit }
}

// WithShutdownHook adds a hook run before exiting. Hooks run in the order
// they were added and share the drain timeout.
func WithShutdownHook(hook ShutdownHook) Option {
	return func(g *Guard) { g.hooks = append(g.hooks, hook) }
}

// WithDrainTimeout sets how long shutdown hooks may take in total.
func WithDrainTimeout(d time.Duration) Option {
	return func(g *Guard) { g.drainTimeout = d }
}

// New creates a Guard in the Running state.
func New(opts ...Option) *Guard {
	g := &Guard{
		logger:       logging.Discard(),
		exit:         os.Exit,
		drainTimeout: DefaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.fsm = stateless.NewStateMachine(StateRunning)

	g.fsm.Configure(StateRunning).
		InternalTransition(TriggerFailure, func(_ context.Context, args ...any) error {
			g.logFailure(args...)
			return nil
		}).
		Permit(TriggerSignal, StateTerminating)

	g.fsm.Configure(StateTerminating).
		OnEntry(func(_ context.Context, args ...any) error {
			g.terminate(args...)
			return nil
		}).
		Ignore(TriggerFailure).
		Ignore(TriggerSignal)

	return g
}

// State returns the current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fsm.MustState().(State)
}

// Fail reports a failure that escaped every other handler. It is logged at
// error level and the process keeps running.
func (g *Guard) Fail(err error) {
	if err == nil {
		return
	}
	g.fire(TriggerFailure, err)
}

// Go runs fn in its own goroutine. A returned error or a panic is reported
// through Fail.
func (g *Guard) Go(name string, fn func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				g.Recovered(name, r, debug.Stack())
			}
		}()
		if err := fn(); err != nil {
			g.Fail(fmt.Errorf("%s failed: %w", name, err))
		}
	}()
}

// Recovered reports a panic recovered by the caller, with the stack captured
// at the recovery point. The process keeps running.
func (g *Guard) Recovered(name string, recovered any, stack []byte) {
	g.fire(TriggerFailure, fmt.Errorf("%s panicked: %v", name, recovered), stack)
}

// Terminate moves to Terminating, runs the shutdown hooks and exits with
// status 0. Later calls are ignored.
func (g *Guard) Terminate(sig os.Signal) {
	g.fire(TriggerSignal, sig)
}

// Watch terminates on the first value received from signals. It returns
// when ctx is done.
func (g *Guard) Watch(ctx context.Context, signals <-chan os.Signal) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-signals:
			if !ok {
				return nil
			}
			g.Terminate(sig)
		}
	}
}

func (g *Guard) fire(trigger Trigger, args ...any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fsm.Fire(trigger, args...); err != nil {
		g.logger.Error("lifecycle transition failed", slog.Any("trigger", trigger), logging.Err(err))
	}
}

func (g *Guard) logFailure(args ...any) {
	attrs := []any{slog.Any("state", StateRunning)}
	if len(args) > 0 {
		if err, ok := args[0].(error); ok {
			attrs = append(attrs, logging.Err(err))
		}
	}
	if len(args) > 1 {
		if stack, ok := args[1].([]byte); ok {
			attrs = append(attrs, logging.Stack(stack))
		}
	}
	g.logger.Error("unhandled failure, continuing", attrs...)
}

func (g *Guard) terminate(args ...any) {
	var attrs []any
	if len(args) > 0 {
		if sig, ok := args[0].(os.Signal); ok && sig != nil {
			attrs = append(attrs, slog.String("signal", sig.String()))
		}
	}
	g.logger.Info("termination signal received, shutting down", attrs...)

	ctx, cancel := context.WithTimeout(context.Background(), g.drainTimeout)
	defer cancel()

	var errs []error
	for _, hook := range g.hooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		g.logger.Error("shutdown incomplete", logging.Err(err))
	}

	g.exit(0)
}
