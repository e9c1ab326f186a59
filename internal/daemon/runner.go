package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/1broseidon/winsync/internal/window"
)

// ErrStopped is returned by Do once the runner has stopped.
var ErrStopped = errors.New("daemon: runner stopped")

// RunnerConfig holds configuration for the frame loop.
type RunnerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
	// ExitOnClose stops the loop when the window reports a close request.
	ExitOnClose bool
}

type request struct {
	fn   func(*window.Facade) error
	done chan error
}

// Runner owns a window and drives its frames from a single goroutine. Other
// goroutines reach the window through Do.
type Runner struct {
	interval    time.Duration
	exitOnClose bool
	win         *window.Facade
	logger      *slog.Logger

	requests chan request
	closeReq chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	frames   atomic.Uint64
	failures atomic.Uint64
}

// NewRunner creates a runner for w. A zero interval runs at 60 frames per
// second.
func NewRunner(cfg RunnerConfig, w *window.Facade) *Runner {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		interval:    interval,
		exitOnClose: cfg.ExitOnClose,
		win:         w,
		logger:      logger,
		requests:    make(chan request),
		closeReq:    make(chan struct{}, 1),
		stopped:     make(chan struct{}),
	}
}

// Run creates the window, runs frames until ctx is cancelled or the window
// asks to close, then destroys it. Blocks until the window is destroyed.
func (r *Runner) Run(ctx context.Context) error {
	defer r.stop()

	if r.win.Lifecycle() == window.Uninitialized {
		if err := r.win.Create(); err != nil {
			return fmt.Errorf("create window: %w", err)
		}
	}
	if r.win.Lifecycle() == window.Created {
		if err := r.win.PrepareForRun(); err != nil {
			r.destroy()
			return fmt.Errorf("prepare window: %w", err)
		}
	}

	unsubscribe := r.win.OnCloseRequested(func() {
		select {
		case r.closeReq <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("frame loop started", "interval", r.interval)
	r.frame()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("frame loop stopped")
			r.destroy()
			return nil
		case <-r.closeReq:
			if !r.exitOnClose {
				r.logger.Info("close requested")
				continue
			}
			r.logger.Info("close requested, stopping frame loop")
			r.destroy()
			return nil
		case req := <-r.requests:
			req.done <- r.call(req.fn)
		case <-ticker.C:
			r.frame()
		}
	}
}

// frame runs a single frame.
func (r *Runner) frame() {
	// Recover from panics to keep the loop alive.
	defer func() {
		if err := recover(); err != nil {
			r.failures.Add(1)
			r.logger.Error("frame panic recovered", "error", err)
		}
	}()

	r.frames.Add(1)
	if err := r.win.RunFrame(); err != nil {
		r.failures.Add(1)
		r.logger.Warn("frame: native commands failed", "error", err)
	}
}

func (r *Runner) call(fn func(*window.Facade) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("daemon: request panicked: %v", rec)
		}
	}()
	return fn(r.win)
}

func (r *Runner) destroy() {
	if err := r.win.Destroy(); err != nil {
		r.logger.Warn("destroy window", "error", err)
	}
}

func (r *Runner) stop() {
	r.stopOnce.Do(func() { close(r.stopped) })
}

// Do runs fn on the frame goroutine between frames and returns its error.
func (r *Runner) Do(ctx context.Context, fn func(*window.Facade) error) error {
	req := request{fn: fn, done: make(chan error, 1)}
	select {
	case r.requests <- req:
	case <-r.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Sync waits for the next frame boundary, then runs one extra frame so
// staged intents reach the native window before it returns.
func (r *Runner) Sync(ctx context.Context) error {
	return r.Do(ctx, func(w *window.Facade) error {
		r.frames.Add(1)
		return w.RunFrame()
	})
}

// Done is closed when Run returns.
func (r *Runner) Done() <-chan struct{} {
	return r.stopped
}

// Frames returns the number of frames run so far.
func (r *Runner) Frames() uint64 {
	return r.frames.Load()
}

// Failures returns the number of frames that reported an error.
func (r *Runner) Failures() uint64 {
	return r.failures.Load()
}
