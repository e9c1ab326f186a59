package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/winsync/internal/config"
	"github.com/1broseidon/winsync/internal/ipc"
	"github.com/1broseidon/winsync/internal/native"
	"github.com/1broseidon/winsync/internal/window"
)

type recordingSetter struct {
	calls []string
}

func (r *recordingSetter) record(format string, args ...any) (*ipc.StatusData, error) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
	return &ipc.StatusData{}, nil
}

func (r *recordingSetter) SetWindowMode(mode string) (*ipc.StatusData, error) {
	return r.record("mode %s", mode)
}

func (r *recordingSetter) SetWindowState(state string) (*ipc.StatusData, error) {
	return r.record("state %s", state)
}

func (r *recordingSetter) SetWindowSize(width, height int) (*ipc.StatusData, error) {
	return r.record("size %dx%d", width, height)
}

func (r *recordingSetter) SetFullscreenSize(width, height int) (*ipc.StatusData, error) {
	return r.record("fullscreen-size %dx%d", width, height)
}

func (r *recordingSetter) SetWindowPosition(x, y float64) (*ipc.StatusData, error) {
	return r.record("position %g,%g", x, y)
}

func (r *recordingSetter) SetWindowTitle(title string) (*ipc.StatusData, error) {
	return r.record("title %s", title)
}

func (r *recordingSetter) SetDisplay(index int) (*ipc.StatusData, error) {
	return r.record("display %d", index)
}

func TestParseSet(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"mode", "Borderless"}, "mode borderless"},
		{[]string{"state", "maximized"}, "state maximised"},
		{[]string{"size", "800", "600"}, "size 800x600"},
		{[]string{"fullscreen-size", "0", "0"}, "fullscreen-size 0x0"},
		{[]string{"position", "0.5", "0.25"}, "position 0.5,0.25"},
		{[]string{"title", "hello", "world"}, "title hello world"},
		{[]string{"display", "1"}, "display 1"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			fn, err := parseSet(tt.args)
			if err != nil {
				t.Fatalf("parseSet(%v): %v", tt.args, err)
			}
			rec := &recordingSetter{}
			if _, err := fn(rec); err != nil {
				t.Fatalf("call: %v", err)
			}
			if diff := cmp.Diff([]string{tt.want}, rec.calls); diff != "" {
				t.Fatalf("calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSetRejectsBadInput(t *testing.T) {
	tests := [][]string{
		{"mode"},
		{"mode", "tiled"},
		{"state", "hidden"},
		{"size", "800"},
		{"size", "0", "600"},
		{"size", "wide", "600"},
		{"fullscreen-size", "-1", "0"},
		{"position", "1.5", "0"},
		{"position", "x", "y"},
		{"title"},
		{"display", "-1"},
		{"display", "one"},
		{"opacity", "0.5"},
	}
	for _, args := range tests {
		if _, err := parseSet(args); err == nil {
			t.Fatalf("parseSet(%v) succeeded, want error", args)
		}
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceDefault}, "default"},
		{config.Source{Kind: config.SourceDefault, Name: "defaults"}, "default:defaults"},
		{config.Source{Kind: config.SourceFile}, "file"},
		{config.Source{Kind: config.SourceFile, File: "/tmp/c.yaml"}, "file:/tmp/c.yaml"},
		{config.Source{Kind: config.SourceFile, File: "/tmp/c.yaml", Line: 3, Column: 5}, "file:/tmp/c.yaml:3:5"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Fatalf("formatSource(%+v)=%q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestExplainPrintsValueAndSource(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Window.Title = "demo"
	res := &config.LoadResult{
		Config: cfg,
		Sources: map[string]config.Source{
			"window.title": {Kind: config.SourceFile, File: "c.yaml", Line: 2, Column: 10},
		},
	}

	var buf bytes.Buffer
	if err := explain(&buf, res, "window.title"); err != nil {
		t.Fatalf("explain: %v", err)
	}
	want := "path: window.title\nsource: file:c.yaml:2:10\nvalue:\ndemo\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	if err := explain(&buf, res, "window.nope"); err == nil {
		t.Fatalf("explain of unknown path succeeded")
	}
}

func TestPrintDisplays(t *testing.T) {
	displays := []ipc.DisplayInfo{
		{Index: 0, Name: "SIM-1", Width: 1920, Height: 1080, Current: true, Modes: []string{"1920x1080@60", "1280x720@60"}},
		{Index: 1, Name: "SIM-2", X: 1920, Width: 1280, Height: 1024},
	}
	var buf bytes.Buffer
	printDisplays(&buf, displays)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "* 0  SIM-1") || !strings.Contains(lines[0], "1920x1080+0+0") {
		t.Fatalf("line 0 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[0], "1920x1080@60 (+1 modes)") {
		t.Fatalf("line 0 modes = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  1  SIM-2") || !strings.HasSuffix(lines[1], "1280x1024+1920+0") {
		t.Fatalf("line 1 = %q", lines[1])
	}
}

func TestPrintStatus(t *testing.T) {
	status := &ipc.StatusData{
		Backend:       "sim",
		Frames:        12,
		FrameFailures: 1,
		DaemonRunning: true,
		Window: window.Snapshot{
			Title:    "demo",
			Mode:     window.Windowed,
			State:    window.Maximised,
			Position: native.Point{X: 10, Y: 20},
			Size:     native.Size{Width: 800, Height: 600},
			Display:  window.DisplayInfo{Index: 1, Name: "SIM-2"},
		},
	}
	var buf bytes.Buffer
	printStatus(&buf, status)
	out := buf.String()

	for _, want := range []string{
		"backend:        sim\n",
		"frames:         12 (1 failed)\n",
		"title:          demo\n",
		"mode:           windowed\n",
		"state:          maximised\n",
		"position:       10,20\n",
		"size:           800x600\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestSingleLine(t *testing.T) {
	tests := map[string]string{
		"plain":            "plain",
		"two\nlines":       "two lines",
		"  padded \n\n x ": "padded x",
		"":                 "",
	}
	for in, want := range tests {
		if got := singleLine(in); got != want {
			t.Fatalf("singleLine(%q)=%q, want %q", in, got, want)
		}
	}
}
