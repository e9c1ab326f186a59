package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winsync/internal/ipc"
)

func (s *Server) handleGetWindowState(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetWindowStateInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, WindowStateOutput{}, err
	}
	return nil, windowState(status), nil
}

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	data, err := s.daemon.GetDisplays()
	if err != nil {
		return nil, ListDisplaysOutput{}, err
	}

	out := ListDisplaysOutput{Displays: make([]DisplayOutput, 0, len(data.Displays))}
	for _, d := range data.Displays {
		modes := d.Modes
		if modes == nil {
			modes = []string{}
		}
		out.Displays = append(out.Displays, DisplayOutput{
			Index:   d.Index,
			Name:    d.Name,
			X:       d.X,
			Y:       d.Y,
			Width:   d.Width,
			Height:  d.Height,
			Current: d.Current,
			Modes:   modes,
		})
	}
	s.logger.Debug("mcp: list_displays", "count", len(out.Displays))
	return nil, out, nil
}

func (s *Server) handleSetWindowMode(_ context.Context, _ *mcpsdk.CallToolRequest, args SetWindowModeInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	mode := strings.TrimSpace(args.Mode)
	if mode == "" {
		return nil, WindowStateOutput{}, fmt.Errorf("mode is required")
	}
	return s.applied("set_window_mode", func() (*ipc.StatusData, error) {
		return s.daemon.SetWindowMode(mode)
	})
}

func (s *Server) handleSetWindowState(_ context.Context, _ *mcpsdk.CallToolRequest, args SetWindowStateInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	state := strings.TrimSpace(args.State)
	if state == "" {
		return nil, WindowStateOutput{}, fmt.Errorf("state is required")
	}
	return s.applied("set_window_state", func() (*ipc.StatusData, error) {
		return s.daemon.SetWindowState(state)
	})
}

func (s *Server) handleSetWindowSize(_ context.Context, _ *mcpsdk.CallToolRequest, args SetWindowSizeInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	if args.Fullscreen {
		return s.applied("set_window_size", func() (*ipc.StatusData, error) {
			return s.daemon.SetFullscreenSize(args.Width, args.Height)
		})
	}
	if args.Width <= 0 || args.Height <= 0 {
		return nil, WindowStateOutput{}, fmt.Errorf("width and height must be > 0, got %dx%d", args.Width, args.Height)
	}
	return s.applied("set_window_size", func() (*ipc.StatusData, error) {
		return s.daemon.SetWindowSize(args.Width, args.Height)
	})
}

func (s *Server) handleSetWindowPosition(_ context.Context, _ *mcpsdk.CallToolRequest, args SetWindowPositionInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	return s.applied("set_window_position", func() (*ipc.StatusData, error) {
		return s.daemon.SetWindowPosition(args.X, args.Y)
	})
}

func (s *Server) handleSetWindowTitle(_ context.Context, _ *mcpsdk.CallToolRequest, args SetWindowTitleInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	return s.applied("set_window_title", func() (*ipc.StatusData, error) {
		return s.daemon.SetWindowTitle(args.Title)
	})
}

// applied runs a daemon update and reports the resulting window state.
func (s *Server) applied(tool string, fn func() (*ipc.StatusData, error)) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	status, err := fn()
	if err != nil {
		s.logger.Warn("mcp: tool failed", "tool", tool, "error", err)
		return nil, WindowStateOutput{}, err
	}
	out := windowState(status)
	s.logger.Info("mcp: window updated", "tool", tool, "mode", out.Mode, "state", out.State)
	return nil, out, nil
}

func windowState(status *ipc.StatusData) WindowStateOutput {
	w := status.Window
	out := WindowStateOutput{
		Title:          w.Title,
		Lifecycle:      w.Lifecycle.String(),
		Mode:           w.Mode.String(),
		State:          w.State.String(),
		X:              w.Position.X,
		Y:              w.Position.Y,
		Width:          w.Size.Width,
		Height:         w.Size.Height,
		ClientWidth:    w.ClientSize.Width,
		ClientHeight:   w.ClientSize.Height,
		Scale:          float64(w.Scale),
		Display:        w.Display.Name,
		DisplayIndex:   w.Display.Index,
		DisplayMode:    w.DisplayMode,
		IsActive:       w.IsActive,
		CursorInWindow: w.CursorIn,
		Visible:        w.Visible,
		Resizable:      w.Resizable,
		Bordered:       w.Bordered,
		AlwaysOnTop:    w.AlwaysOnTop,
		Opacity:        float64(w.Opacity),
		Backend:        status.Backend,
		Frames:         int64(status.Frames),
	}
	return out
}
