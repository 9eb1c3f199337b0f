package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/shandysiswandi/otpguard/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is multiplied by NumCPU when NewManager receives a
// non-positive limit.
const DefaultMaxGoroutine int = 100

// ErrPanicked wraps the value recovered from a panicking task.
var ErrPanicked = errors.New("goroutine panicked")

// Manager runs tasks on a bounded pool. Task errors, including recovered
// panics, are collected and returned by Wait.
type Manager struct {
	wg   sync.WaitGroup
	sema chan struct{}

	// closedMu is held for reading while a task is being admitted so Wait
	// never races a wg.Add.
	closedMu sync.RWMutex
	closed   bool

	errMu sync.Mutex
	errs  []error

	running  atomic.Int64
	rejected atomic.Int64
}

// NewManager creates a Manager admitting at most maxGoroutine tasks at once.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

// Go runs f on its own goroutine and reports whether it was admitted. Tasks
// are dropped, never queued, when the pool is full or the manager is closed.
func (g *Manager) Go(ctx context.Context, f func(ctx context.Context) error) bool {
	if g == nil {
		return false
	}

	g.closedMu.RLock()
	defer g.closedMu.RUnlock()

	if g.closed {
		slog.WarnContext(ctx, "goroutine manager is closed, task dropped")
		return false
	}

	select {
	case g.sema <- struct{}{}:
	default:
		g.rejected.Inc()
		slog.WarnContext(ctx, "goroutine limit reached, task dropped", "running", g.running.Load())
		return false
	}

	g.running.Inc()
	g.wg.Go(func() {
		defer func() {
			g.running.Dec()
			<-g.sema
		}()

		if err := g.run(ctx, f); err != nil {
			g.collect(err)
		}
	})

	return true
}

func (g *Manager) run(ctx context.Context, f func(ctx context.Context) error) (err error) {
	defer func() {
		rvr := recover()
		if rvr == nil {
			return
		}

		stack := debug.Stack()
		if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
			slog.ErrorContext(ctx, "panic occurred in goroutine", "panic", rvr, "stack", paths)
		} else {
			slog.ErrorContext(ctx, "panic occurred in goroutine", "panic", rvr, "stack", string(stack))
		}
		err = fmt.Errorf("%w: %v", ErrPanicked, rvr)
	}()

	if ctxErr := ctx.Err(); ctxErr != nil {
		slog.WarnContext(ctx, "goroutine canceled before start", "because", ctxErr)
		return nil
	}

	return f(ctx)
}

func (g *Manager) collect(err error) {
	g.errMu.Lock()
	g.errs = append(g.errs, err)
	g.errMu.Unlock()
}

// Every runs f every interval on a managed goroutine until ctx is done.
// Errors from f are logged and do not stop the loop.
func (g *Manager) Every(ctx context.Context, name string, interval time.Duration, f func(ctx context.Context) error) bool {
	if interval <= 0 {
		return false
	}

	return g.Go(ctx, func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.InfoContext(ctx, "periodic task stopped", "name", name)
				return nil
			case <-ticker.C:
				if err := f(ctx); err != nil {
					slog.ErrorContext(ctx, "periodic task failed", "name", name, "error", err)
				}
			}
		}
	})
}

// Running returns the number of tasks currently executing.
func (g *Manager) Running() int64 {
	if g == nil {
		return 0
	}
	return g.running.Load()
}

// Rejected returns how many tasks were dropped because the pool was full.
func (g *Manager) Rejected() int64 {
	if g == nil {
		return 0
	}
	return g.rejected.Load()
}

// Wait closes the manager, blocks until every admitted task returns and
// joins the collected errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.closedMu.Lock()
	g.closed = true
	g.closedMu.Unlock()

	g.wg.Wait()

	g.errMu.Lock()
	defer g.errMu.Unlock()

	return errors.Join(g.errs...)
}

// WaitContext is Wait bounded by ctx. Tasks still running when ctx ends are
// abandoned and ctx's error is returned.
func (g *Manager) WaitContext(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
