package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

const (
	stateRemove = 0
	stateAdd    = 1

	// sourceIndication marks requests as coming from a normal application.
	sourceIndication = 1
)

const (
	atomMaxHorz      = "_NET_WM_STATE_MAXIMIZED_HORZ"
	atomMaxVert      = "_NET_WM_STATE_MAXIMIZED_VERT"
	atomFullscreen   = "_NET_WM_STATE_FULLSCREEN"
	atomAbove        = "_NET_WM_STATE_ABOVE"
	atomHidden       = "_NET_WM_STATE_HIDDEN"
	atomWmState      = "_NET_WM_STATE"
	atomDeleteWindow = "WM_DELETE_WINDOW"
)

// sendRootMessage sends a 32-bit client message about win to the root
// window, the way EWMH and ICCCM expect window manager requests. The message
// is built by hand because the xgbutil ewmh request helpers panic on some
// argument types in this library version.
func (b *Backend) sendRootMessage(win xproto.Window, atomName string, data ...uint32) error {
	atom, err := b.atom(atomName)
	if err != nil {
		return err
	}
	payload := make([]uint32, 5)
	copy(payload, data)
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New(payload),
	}

	return xproto.SendEventChecked(
		b.XUtil.Conn(),
		false,
		b.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// requestState asks the window manager to add or remove up to two
// _NET_WM_STATE atoms.
func (b *Backend) requestState(win xproto.Window, action uint32, first, second string) error {
	a1, err := b.atom(first)
	if err != nil {
		return err
	}
	var a2 xproto.Atom
	if second != "" {
		if a2, err = b.atom(second); err != nil {
			return err
		}
	}
	if err := b.sendRootMessage(win, atomWmState, action, uint32(a1), uint32(a2), sourceIndication); err != nil {
		return fmt.Errorf("failed to request %s: %w", first, err)
	}
	return nil
}

// activate raises and focuses win using _NET_ACTIVE_WINDOW.
func (b *Backend) activate(win xproto.Window) error {
	if err := b.sendRootMessage(win, "_NET_ACTIVE_WINDOW", sourceIndication, uint32(xproto.TimeCurrentTime)); err != nil {
		return fmt.Errorf("failed to activate window: %w", err)
	}
	return nil
}

// iconify asks the window manager to minimise win with WM_CHANGE_STATE.
func (b *Backend) iconify(win xproto.Window) error {
	if err := b.sendRootMessage(win, "WM_CHANGE_STATE", icccm.StateIconic); err != nil {
		return fmt.Errorf("failed to iconify window: %w", err)
	}
	return nil
}

// unmaximize removes maximized state from a window.
func (b *Backend) unmaximize(win xproto.Window) error {
	states, err := ewmh.WmStateGet(b.XUtil, win)
	if err != nil {
		return err
	}
	hasMaxH := containsString(states, atomMaxHorz)
	hasMaxV := containsString(states, atomMaxVert)
	if !hasMaxH && !hasMaxV {
		return nil
	}
	return b.requestState(win, stateRemove, atomMaxHorz, atomMaxVert)
}

// netState is the subset of _NET_WM_STATE and WM_STATE the backend tracks.
type netState struct {
	maximized  bool
	fullscreen bool
	above      bool
	minimized  bool
}

func parseNetState(states []string, iconic bool) netState {
	return netState{
		maximized:  containsString(states, atomMaxHorz) && containsString(states, atomMaxVert),
		fullscreen: containsString(states, atomFullscreen),
		above:      containsString(states, atomAbove),
		minimized:  iconic || containsString(states, atomHidden),
	}
}

func (b *Backend) readNetState(win xproto.Window) netState {
	states, _ := ewmh.WmStateGet(b.XUtil, win)
	iconic := false
	if st, err := icccm.WmStateGet(b.XUtil, win); err == nil {
		iconic = st.State == icccm.StateIconic
	}
	return parseNetState(states, iconic)
}
