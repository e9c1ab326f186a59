package daemon

import (
	"log/slog"

	"github.com/1broseidon/winsync/internal/native"
	"github.com/1broseidon/winsync/internal/window"
)

// StateLogger reports window state changes the user did not request
// through winsync, such as window manager moves or minimises.
type StateLogger struct {
	win    *window.Facade
	logger *slog.Logger
	unsub  []func()
}

// NewStateLogger subscribes to w's hooks.
func NewStateLogger(w *window.Facade, logger *slog.Logger) *StateLogger {
	if logger == nil {
		logger = slog.Default()
	}
	s := &StateLogger{win: w, logger: logger}
	s.unsub = append(s.unsub,
		w.OnWindowStateChanged(s.handleStateChanged),
		w.OnMoved(s.handleMoved),
		w.OnResized(s.handleResized),
		w.OnCloseRequested(s.handleCloseRequested),
	)
	return s
}

func (s *StateLogger) handleStateChanged(st window.State) {
	s.logger.Info("window state changed",
		"state", st,
		"mode", s.win.WindowMode())
}

func (s *StateLogger) handleMoved(p native.Point) {
	s.logger.Debug("window moved", "x", p.X, "y", p.Y)
}

func (s *StateLogger) handleResized() {
	size := s.win.Size()
	s.logger.Debug("window resized", "width", size.Width, "height", size.Height)
}

func (s *StateLogger) handleCloseRequested() {
	s.logger.Info("window close requested", "title", s.win.Snapshot().Title)
}

// Close removes the subscriptions.
func (s *StateLogger) Close() {
	for _, fn := range s.unsub {
		fn()
	}
	s.unsub = nil
}
