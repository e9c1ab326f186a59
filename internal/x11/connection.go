// Package x11 implements native.Backend on top of an X11 server with an
// EWMH-compliant window manager.
package x11

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/winsync/internal/native"
)

// Config configures the X11 backend.
type Config struct {
	// Display is the X display name; empty uses $DISPLAY.
	Display string
	Logger  *slog.Logger
}

// Backend manages the X11 connection and the windows created through it.
type Backend struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	logger *slog.Logger

	mu       sync.Mutex
	atoms    map[string]xproto.Atom
	windows  map[native.Handle]*window
	displays []native.Display
	crtcs    map[native.DisplayID]*crtc
	// desktop is the mode each CRTC had before an exclusive fullscreen
	// window switched it.
	desktop  map[native.DisplayID]randr.Mode
	switched map[native.DisplayID]native.Handle
	pending  []native.Event
}

var _ native.Backend = (*Backend)(nil)

// Open establishes a connection to the X11 server and initializes RandR.
func Open(cfg Config) (*Backend, error) {
	xu, err := xgbutil.NewConnDisplay(cfg.Display)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &Backend{
		XUtil:    xu,
		Root:     xu.RootWin(),
		logger:   logger,
		atoms:    make(map[string]xproto.Atom),
		windows:  make(map[native.Handle]*window),
		desktop:  make(map[native.DisplayID]randr.Mode),
		switched: make(map[native.DisplayID]native.Handle),
	}

	if err := randr.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("randr init failed: %w", err)
	}
	mask := uint16(randr.NotifyMaskScreenChange | randr.NotifyMaskCrtcChange | randr.NotifyMaskOutputChange)
	if err := randr.SelectInputChecked(xu.Conn(), b.Root, mask).Check(); err != nil {
		logger.Warn("randr notifications unavailable", "error", err)
	}

	if _, err := b.refreshDisplaysLocked(); err != nil {
		xu.Conn().Close()
		return nil, err
	}
	logger.Debug("connected to X11", "displays", len(b.displays))
	return b, nil
}

// Close restores any switched display modes and disconnects from the server.
func (b *Backend) Close() {
	b.mu.Lock()
	for id := range b.switched {
		if err := b.restoreDesktopModeLocked(id); err != nil {
			b.logger.Warn("failed to restore display mode", "display", id, "error", err)
		}
	}
	b.mu.Unlock()
	b.XUtil.Conn().Close()
}

// atom interns name, caching the result for the life of the connection.
func (b *Backend) atom(name string) (xproto.Atom, error) {
	if a, ok := b.atoms[name]; ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(b.XUtil.Conn(), false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	b.atoms[name] = reply.Atom
	return reply.Atom, nil
}

func (b *Backend) windowLocked(h native.Handle) (*window, error) {
	w, ok := b.windows[h]
	if !ok {
		return nil, fmt.Errorf("window %d: %w", h, native.ErrNotFound)
	}
	return w, nil
}
