package daemon

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/1broseidon/winsync/internal/native/sim"
	"github.com/1broseidon/winsync/internal/platform"
	"github.com/1broseidon/winsync/internal/window"
)

func TestStateLoggerReportsStateChanges(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	w, err := window.New(window.Config{Backend: sim.New(), OS: platform.Linux, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("window.New: %v", err)
	}
	if err := w.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.PrepareForRun(); err != nil {
		t.Fatalf("PrepareForRun: %v", err)
	}

	s := NewStateLogger(w, logger)
	w.SetWindowState(window.Maximised)
	if err := w.RunFrame(); err != nil {
		t.Fatalf("RunFrame: %v", err)
	}
	if !strings.Contains(buf.String(), "state=maximised") {
		t.Fatalf("expected state change to be logged, got %q", buf.String())
	}

	s.Close()
	buf.Reset()
	w.SetWindowState(window.Normal)
	if err := w.RunFrame(); err != nil {
		t.Fatalf("RunFrame: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output after Close, got %q", buf.String())
	}
}
