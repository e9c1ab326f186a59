package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winsync/internal/ipc"
)

const (
	ServerName    = "winsync"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools use.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetDisplays() (*ipc.DisplaysData, error)
	SetWindowMode(mode string) (*ipc.StatusData, error)
	SetWindowState(state string) (*ipc.StatusData, error)
	SetWindowSize(width, height int) (*ipc.StatusData, error)
	SetFullscreenSize(width, height int) (*ipc.StatusData, error)
	SetWindowPosition(x, y float64) (*ipc.StatusData, error)
	SetWindowTitle(title string) (*ipc.StatusData, error)
}

var _ Daemon = (*ipc.Client)(nil)

// Server is the MCP server exposing the running winsync daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates a new MCP server that forwards to d.
func NewServer(d Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon: d,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_window_state",
		Description: "Get the current state of the window managed by the winsync daemon: mode, state, geometry, display and flags.",
	}, s.handleGetWindowState)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List the connected displays with their bounds and supported display modes. The display the window is on is marked current.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_window_mode",
		Description: "Switch the window between windowed, borderless (fullscreen window) and exclusive fullscreen. Returns the window state after the change.",
	}, s.handleSetWindowMode)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_window_state",
		Description: "Maximise, minimise or restore the window, or make it fullscreen. Returns the window state after the change.",
	}, s.handleSetWindowState)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_window_size",
		Description: "Set the windowed size, or with fullscreen=true the exclusive fullscreen resolution. Returns the window state after the change.",
	}, s.handleSetWindowSize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_window_position",
		Description: "Place the window within its display using relative coordinates (0.5, 0.5 centres it). Returns the window state after the change.",
	}, s.handleSetWindowPosition)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_window_title",
		Description: "Change the window title. Returns the window state after the change.",
	}, s.handleSetWindowTitle)
}
