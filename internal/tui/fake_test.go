package tui

import (
	"errors"
	"fmt"

	"github.com/1broseidon/winsync/internal/ipc"
	"github.com/1broseidon/winsync/internal/native"
	"github.com/1broseidon/winsync/internal/window"
)

type fakeClient struct {
	status   *ipc.StatusData
	displays []ipc.DisplayInfo
	down     bool
	calls    []string
	reloads  int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		status: &ipc.StatusData{
			Backend: "sim",
			Window: window.Snapshot{
				Title:    "winsync",
				Mode:     window.Windowed,
				State:    window.Normal,
				Position: native.Point{X: 320, Y: 180},
				Size:     native.Size{Width: 1280, Height: 720},
			},
			DaemonRunning: true,
		},
		displays: []ipc.DisplayInfo{
			{Index: 0, Name: "SIM-1", Width: 1920, Height: 1080, Current: true, Modes: []string{"1920x1080@144"}},
			{Index: 1, Name: "SIM-2", X: 1920, Width: 1280, Height: 1024},
		},
	}
}

var errDown = errors.New("daemon not running")

func (f *fakeClient) record(format string, args ...any) (*ipc.StatusData, error) {
	if f.down {
		return nil, errDown
	}
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.status, nil
}

func (f *fakeClient) GetStatus() (*ipc.StatusData, error) {
	if f.down {
		return nil, errDown
	}
	return f.status, nil
}

func (f *fakeClient) GetDisplays() (*ipc.DisplaysData, error) {
	if f.down {
		return nil, errDown
	}
	return &ipc.DisplaysData{Displays: f.displays}, nil
}

func (f *fakeClient) Reload() (*ipc.StatusData, error) {
	f.reloads++
	return f.record("reload")
}

func (f *fakeClient) SetWindowMode(mode string) (*ipc.StatusData, error) {
	return f.record("mode %s", mode)
}

func (f *fakeClient) SetWindowState(state string) (*ipc.StatusData, error) {
	return f.record("state %s", state)
}

func (f *fakeClient) SetWindowSize(width, height int) (*ipc.StatusData, error) {
	return f.record("size %dx%d", width, height)
}

func (f *fakeClient) SetWindowPosition(x, y float64) (*ipc.StatusData, error) {
	return f.record("position %g,%g", x, y)
}

func (f *fakeClient) SetWindowTitle(title string) (*ipc.StatusData, error) {
	return f.record("title %s", title)
}

func (f *fakeClient) SetDisplay(index int) (*ipc.StatusData, error) {
	return f.record("display %d", index)
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) ReadAll() (string, error) { return c.text, c.err }

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}
