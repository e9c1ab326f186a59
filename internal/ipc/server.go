package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/winsync/internal/config"
	"github.com/1broseidon/winsync/internal/native"
	"github.com/1broseidon/winsync/internal/runtimepath"
	"github.com/1broseidon/winsync/internal/window"
)

// requestTimeout bounds how long a command waits for the frame loop.
const requestTimeout = 5 * time.Second

// Window is the frame loop that owns the managed window.
type Window interface {
	Do(ctx context.Context, fn func(*window.Facade) error) error
	Sync(ctx context.Context) error
	Frames() uint64
	Failures() uint64
}

// ServerConfig holds configuration for the IPC server.
type ServerConfig struct {
	// SocketPath defaults to runtimepath.SocketPath.
	SocketPath string
	Backend    string
	Config     *config.Config
	// ConfigPath is reloaded by RELOAD; empty uses the default location.
	ConfigPath string
	// OnReload is called with the new config after a successful RELOAD.
	OnReload func(*config.Config)
	Logger   *slog.Logger
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	win          Window
	backend      string
	cfg          *config.Config
	cfgPath      string
	cfgMu        sync.RWMutex
	onReload     func(*config.Config)
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	conns        sync.WaitGroup
}

// NewServer creates a new IPC server
func NewServer(cfg ServerConfig, win Window) (*Server, error) {
	socketPath := cfg.SocketPath
	if socketPath == "" {
		var err error
		socketPath, err = runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = config.DefaultConfig()
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		win:        win,
		backend:    cfg.Backend,
		cfg:        appCfg,
		cfgPath:    cfg.ConfigPath,
		onReload:   cfg.OnReload,
		logger:     logger,
		startTime:  time.Now(),
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.conns.Add(1)
		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer s.conns.Done()
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	resp := s.handleCommand(ctx, req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC command", "command", req.Command)
	switch req.Command {
	case CommandReload:
		return s.handleReload(ctx)
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandGetDisplays:
		return s.handleGetDisplays(ctx)
	case CommandSetWindowMode:
		return s.handleSetWindowMode(ctx, req.Payload)
	case CommandSetWindowState:
		return s.handleSetWindowState(ctx, req.Payload)
	case CommandSetWindowSize:
		return s.handleSetWindowSize(ctx, req.Payload)
	case CommandSetWindowPosition:
		return s.handleSetWindowPosition(ctx, req.Payload)
	case CommandSetWindowTitle:
		return s.handleSetWindowTitle(ctx, req.Payload)
	case CommandSetDisplay:
		return s.handleSetDisplay(ctx, req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload reloads the configuration and restages the window settings.
func (s *Server) handleReload(ctx context.Context) *Response {
	s.logger.Info("IPC: received RELOAD command")

	var (
		res *config.LoadResult
		err error
	)
	if s.cfgPath != "" {
		res, err = config.LoadFromPath(s.cfgPath)
	} else {
		res, err = config.LoadWithSources()
	}
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	newCfg := res.Config

	s.cfgMu.Lock()
	s.cfg = newCfg
	s.cfgMu.Unlock()

	settings := newCfg.Settings()
	return s.update(ctx, func(w *window.Facade) error {
		w.ApplySettings(settings)
		return nil
	}, func() {
		if s.onReload != nil {
			s.onReload(newCfg)
		}
		s.logger.Info("IPC: config reloaded")
	})
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus(ctx context.Context) *Response {
	status, err := s.status(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get status: %v", err))
	}
	resp, _ := NewOKResponse(status)
	return resp
}

// handleGetDisplays returns information about all displays
func (s *Server) handleGetDisplays(ctx context.Context) *Response {
	var (
		displays []native.Display
		current  native.DisplayID
	)
	err := s.win.Do(ctx, func(w *window.Facade) error {
		displays = w.Displays()
		current = w.CurrentDisplay().ID
		return nil
	})
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get displays: %v", err))
	}

	infos := make([]DisplayInfo, len(displays))
	for i, d := range displays {
		infos[i] = displayInfo(d, d.ID == current)
	}

	resp, _ := NewOKResponse(DisplaysData{Displays: infos})
	return resp
}

func displayInfo(d native.Display, current bool) DisplayInfo {
	info := DisplayInfo{
		ID:      uint32(d.ID),
		Index:   d.Index,
		Name:    d.Name,
		X:       d.Bounds.X,
		Y:       d.Bounds.Y,
		Width:   d.Bounds.Width,
		Height:  d.Bounds.Height,
		Current: current,
	}
	for _, m := range d.Modes {
		info.Modes = append(info.Modes, fmt.Sprintf("%s@%g", m.Size, m.RefreshRate))
	}
	return info
}

func (s *Server) handleSetWindowMode(ctx context.Context, payload json.RawMessage) *Response {
	var req ModePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid mode payload: %v", err))
	}
	mode, err := window.ParseMode(req.Mode)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.update(ctx, func(w *window.Facade) error {
		w.SetWindowMode(mode)
		return nil
	}, nil)
}

func (s *Server) handleSetWindowState(ctx context.Context, payload json.RawMessage) *Response {
	var req StatePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid state payload: %v", err))
	}
	state, err := window.ParseState(req.State)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.update(ctx, func(w *window.Facade) error {
		w.SetWindowState(state)
		return nil
	}, nil)
}

func (s *Server) handleSetWindowSize(ctx context.Context, payload json.RawMessage) *Response {
	var req SizePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid size payload: %v", err))
	}
	size := native.Size{Width: req.Width, Height: req.Height}
	if req.Fullscreen {
		// A zero size selects the display's native resolution.
		if req.Width < 0 || req.Height < 0 {
			return NewErrorResponse("width and height must be >= 0")
		}
		return s.update(ctx, func(w *window.Facade) error {
			w.SetSizeFullscreen(size)
			return nil
		}, nil)
	}
	if req.Width <= 0 || req.Height <= 0 {
		return NewErrorResponse("width and height must be > 0")
	}
	return s.update(ctx, func(w *window.Facade) error {
		w.SetWindowedSize(size)
		return nil
	}, nil)
}

func (s *Server) handleSetWindowPosition(ctx context.Context, payload json.RawMessage) *Response {
	var req PositionPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid position payload: %v", err))
	}
	if req.X < 0 || req.X > 1 || req.Y < 0 || req.Y > 1 {
		return NewErrorResponse("x and y must be between 0 and 1")
	}
	return s.update(ctx, func(w *window.Facade) error {
		w.SetWindowedPosition(req.X, req.Y)
		return nil
	}, nil)
}

func (s *Server) handleSetWindowTitle(ctx context.Context, payload json.RawMessage) *Response {
	var req TitlePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid title payload: %v", err))
	}
	return s.update(ctx, func(w *window.Facade) error {
		w.SetTitle(req.Title)
		return nil
	}, nil)
}

func (s *Server) handleSetDisplay(ctx context.Context, payload json.RawMessage) *Response {
	var req DisplayPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid display payload: %v", err))
	}
	var count int
	err := s.win.Do(ctx, func(w *window.Facade) error {
		count = len(w.Displays())
		if req.Index < 0 || req.Index >= count {
			return fmt.Errorf("display index %d out of range (have %d displays)", req.Index, count)
		}
		w.SetDisplayIndex(req.Index)
		return nil
	})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.update(ctx, nil, nil)
}

// update stages fn on the frame goroutine, runs a frame so the change
// reaches the native window, and responds with the resulting status.
func (s *Server) update(ctx context.Context, fn func(*window.Facade) error, after func()) *Response {
	if fn != nil {
		if err := s.win.Do(ctx, fn); err != nil {
			return NewErrorResponse(err.Error())
		}
	}
	if err := s.win.Sync(ctx); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to apply: %v", err))
	}
	if after != nil {
		after()
	}
	return s.handleGetStatus(ctx)
}

func (s *Server) status(ctx context.Context) (StatusData, error) {
	var snap window.Snapshot
	err := s.win.Do(ctx, func(w *window.Facade) error {
		snap = w.Snapshot()
		return nil
	})
	if err != nil {
		return StatusData{}, err
	}
	return StatusData{
		Window:        snap,
		Backend:       s.backend,
		Frames:        s.win.Frames(),
		FrameFailures: s.win.Failures(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}, nil
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig updates the config (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = cfg
}
