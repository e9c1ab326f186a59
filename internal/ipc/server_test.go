package ipc

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/winsync/internal/daemon"
	"github.com/1broseidon/winsync/internal/native"
	"github.com/1broseidon/winsync/internal/native/sim"
	"github.com/1broseidon/winsync/internal/platform"
	"github.com/1broseidon/winsync/internal/window"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	server  *Server
	client  *Client
	cfgPath string
}

func startServer(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	b := sim.New(sim.DefaultDisplay(), sim.DisplaySpec{
		Name:   "SIM-2",
		Bounds: native.Rect{X: 1920, Width: 1280, Height: 1024},
	})
	w, err := window.New(window.Config{Backend: b, OS: platform.Linux, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("window.New: %v", err)
	}
	runner := daemon.NewRunner(daemon.RunnerConfig{Interval: time.Millisecond, Logger: quietLogger()}, w)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		runner.Run(ctx)
	}()

	cfgPath := filepath.Join(dir, "config.yaml")
	srv, err := NewServer(ServerConfig{
		SocketPath: filepath.Join(dir, "winsync.sock"),
		Backend:    platform.BackendSim,
		ConfigPath: cfgPath,
		Logger:     quietLogger(),
	}, runner)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		srv.Stop()
		cancel()
		<-done
	})
	return &fixture{server: srv, client: NewClientWithSocket(srv.SocketPath()), cfgPath: cfgPath}
}

func TestServerStatusRoundTrip(t *testing.T) {
	fx := startServer(t)

	status, err := fx.client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !status.DaemonRunning || status.Backend != platform.BackendSim {
		t.Fatalf("status = %+v", status)
	}
	if status.Window.Lifecycle != window.Running {
		t.Fatalf("lifecycle = %v, want running", status.Window.Lifecycle)
	}
	if status.Window.Title != window.DefaultSettings().Title {
		t.Fatalf("title = %q", status.Window.Title)
	}
	if err := fx.client.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestServerSetCommands(t *testing.T) {
	fx := startServer(t)

	status, err := fx.client.SetWindowTitle("over the socket")
	if err != nil {
		t.Fatalf("SetWindowTitle: %v", err)
	}
	if status.Window.Title != "over the socket" {
		t.Fatalf("title = %q", status.Window.Title)
	}

	status, err = fx.client.SetWindowSize(1024, 768)
	if err != nil {
		t.Fatalf("SetWindowSize: %v", err)
	}
	if want := (native.Size{Width: 1024, Height: 768}); status.Window.Size != want || status.Window.WindowedSize != want {
		t.Fatalf("size = %v windowed = %v", status.Window.Size, status.Window.WindowedSize)
	}

	status, err = fx.client.SetWindowState("maximized")
	if err != nil {
		t.Fatalf("SetWindowState: %v", err)
	}
	if status.Window.State != window.Maximised {
		t.Fatalf("state = %v, want maximised", status.Window.State)
	}

	status, err = fx.client.SetWindowState("normal")
	if err != nil {
		t.Fatalf("SetWindowState: %v", err)
	}
	if status.Window.State != window.Normal {
		t.Fatalf("state = %v, want normal", status.Window.State)
	}

	status, err = fx.client.SetWindowPosition(0, 0)
	if err != nil {
		t.Fatalf("SetWindowPosition: %v", err)
	}
	if status.Window.WindowedPosition != (window.RelativePosition{}) {
		t.Fatalf("windowed position = %+v", status.Window.WindowedPosition)
	}

	status, err = fx.client.SetDisplay(1)
	if err != nil {
		t.Fatalf("SetDisplay: %v", err)
	}
	if status.Window.DisplayIndex != 1 {
		t.Fatalf("display index = %d", status.Window.DisplayIndex)
	}
}

func TestServerRejectsInvalidRequests(t *testing.T) {
	fx := startServer(t)

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"mode", func() error { _, err := fx.client.SetWindowMode("tiled"); return err }, "unknown window mode"},
		{"state", func() error { _, err := fx.client.SetWindowState("floating"); return err }, "unknown window state"},
		{"size", func() error { _, err := fx.client.SetWindowSize(0, 10); return err }, "must be > 0"},
		{"position", func() error { _, err := fx.client.SetWindowPosition(2, 0); return err }, "between 0 and 1"},
		{"display", func() error { _, err := fx.client.SetDisplay(5); return err }, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want %q", err, tt.want)
			}
		})
	}

	resp := fx.server.handleCommand(context.Background(), &Request{Command: "TILE"})
	if resp.Status != "ERROR" || !strings.Contains(resp.Error, "Unknown command") {
		t.Fatalf("unknown command response = %+v", resp)
	}
}

func TestServerDisplays(t *testing.T) {
	fx := startServer(t)

	data, err := fx.client.GetDisplays()
	if err != nil {
		t.Fatalf("GetDisplays: %v", err)
	}
	if len(data.Displays) != 2 {
		t.Fatalf("expected 2 displays, got %+v", data.Displays)
	}
	first := data.Displays[0]
	if first.Name != "SIM-1" || first.Width != 1920 || !first.Current {
		t.Fatalf("first display = %+v", first)
	}
	if len(first.Modes) != 4 || first.Modes[0] != "1920x1080@144" {
		t.Fatalf("modes = %v", first.Modes)
	}
	if data.Displays[1].Current {
		t.Fatalf("second display should not be current")
	}
}

func TestServerReload(t *testing.T) {
	fx := startServer(t)

	data := "window:\n  title: reloaded\n  width: 900\n  height: 500\n"
	if err := os.WriteFile(fx.cfgPath, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	status, err := fx.client.Reload()
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if status.Window.Title != "reloaded" || status.Window.Size != (native.Size{Width: 900, Height: 500}) {
		t.Fatalf("window after reload = %q %v", status.Window.Title, status.Window.Size)
	}
	if cfg := fx.server.GetConfig(); cfg.Window.Title != "reloaded" {
		t.Fatalf("server config not updated: %+v", cfg.Window)
	}

	if err := os.WriteFile(fx.cfgPath, []byte("window:\n  width: -1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := fx.client.Reload(); err == nil || !strings.Contains(err.Error(), "window.width") {
		t.Fatalf("expected validation error, got %v", err)
	}
}
