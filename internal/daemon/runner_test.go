package daemon

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/winsync/internal/native"
	"github.com/1broseidon/winsync/internal/native/sim"
	"github.com/1broseidon/winsync/internal/platform"
	"github.com/1broseidon/winsync/internal/window"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startRunner(t *testing.T, cfg RunnerConfig) (*Runner, *sim.Backend, context.CancelFunc, <-chan error) {
	t.Helper()
	b := sim.New()
	w, err := window.New(window.Config{Backend: b, OS: platform.Linux, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("window.New: %v", err)
	}
	cfg.Logger = quietLogger()
	r := NewRunner(cfg, w)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx) }()
	t.Cleanup(cancel)
	return r, b, cancel, errCh
}

func waitRun(t *testing.T, errCh <-chan error) {
	t.Helper()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for Run to return")
	}
}

func TestRunnerAppliesIntentsThroughDo(t *testing.T) {
	r, _, cancel, errCh := startRunner(t, RunnerConfig{Interval: time.Millisecond})
	ctx := context.Background()

	err := r.Do(ctx, func(w *window.Facade) error {
		w.SetTitle("from ipc")
		w.SetWindowedSize(native.Size{Width: 640, Height: 480})
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if err := r.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	var snap window.Snapshot
	if err := r.Do(ctx, func(w *window.Facade) error {
		snap = w.Snapshot()
		return nil
	}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if snap.Title != "from ipc" || snap.Size != (native.Size{Width: 640, Height: 480}) {
		t.Fatalf("snapshot title=%q size=%v", snap.Title, snap.Size)
	}
	if r.Frames() == 0 {
		t.Fatalf("expected frames to have run")
	}

	cancel()
	waitRun(t, errCh)
	if err := r.Do(ctx, func(*window.Facade) error { return nil }); !errors.Is(err, ErrStopped) {
		t.Fatalf("Do after stop = %v, want ErrStopped", err)
	}
}

func TestRunnerDoReturnsErrorsAndRecoversPanics(t *testing.T) {
	r, _, _, _ := startRunner(t, RunnerConfig{Interval: time.Millisecond})
	ctx := context.Background()

	want := errors.New("boom")
	if err := r.Do(ctx, func(*window.Facade) error { return want }); !errors.Is(err, want) {
		t.Fatalf("Do = %v, want %v", err, want)
	}
	if err := r.Do(ctx, func(*window.Facade) error { panic("bad request") }); err == nil {
		t.Fatalf("expected panic to be reported as an error")
	}
	// The loop is still serving requests.
	if err := r.Do(ctx, func(*window.Facade) error { return nil }); err != nil {
		t.Fatalf("Do after panic: %v", err)
	}
}

func TestRunnerExitsOnCloseRequest(t *testing.T) {
	r, b, _, errCh := startRunner(t, RunnerConfig{Interval: time.Millisecond, ExitOnClose: true})
	if err := r.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if err := b.RequestClose(1); err != nil {
		t.Fatalf("RequestClose: %v", err)
	}
	waitRun(t, errCh)

	select {
	case <-r.Done():
	default:
		t.Fatalf("Done not closed after Run returned")
	}
	if b.Windows() != 0 {
		t.Fatalf("expected native window destroyed, %d left", b.Windows())
	}
}

func TestRunnerCreateFailure(t *testing.T) {
	b := sim.New()
	b.FailNext("create_window", errors.New("no display"))
	w, err := window.New(window.Config{Backend: b, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("window.New: %v", err)
	}
	r := NewRunner(RunnerConfig{Logger: quietLogger()}, w)
	err = r.Run(context.Background())
	var cerr *native.CreationError
	if !errors.As(err, &cerr) {
		t.Fatalf("Run = %v, want CreationError", err)
	}
	select {
	case <-r.Done():
	default:
		t.Fatalf("Done not closed after failed Run")
	}
}
