package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/winsync/internal/native"
)

// PollEvents drains the X event queue without blocking and translates the
// events that concern our windows or the display topology.
func (b *Backend) PollEvents() ([]native.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	events := b.pending
	b.pending = nil
	conn := b.XUtil.Conn()
	for {
		ev, xerr := conn.PollForEvent()
		if ev == nil && xerr == nil {
			break
		}
		if xerr != nil {
			b.logger.Debug("X error", "error", xerr)
			continue
		}
		events = append(events, b.translateLocked(ev)...)
	}
	return events, nil
}

func (b *Backend) byID(win xproto.Window) (native.Handle, *window, bool) {
	h := native.Handle(win)
	w, ok := b.windows[h]
	return h, w, ok
}

func (b *Backend) translateLocked(ev xgb.Event) []native.Event {
	switch e := ev.(type) {
	case xproto.ConfigureNotifyEvent:
		if h, w, ok := b.byID(e.Window); ok {
			return b.geometryEventsLocked(h, w)
		}
	case xproto.MapNotifyEvent:
		if h, w, ok := b.byID(e.Window); ok {
			return append([]native.Event{{Kind: native.EventShown, Window: h}}, b.stateEventsLocked(h, w)...)
		}
	case xproto.UnmapNotifyEvent:
		if h, w, ok := b.byID(e.Window); ok {
			return append([]native.Event{{Kind: native.EventHidden, Window: h}}, b.stateEventsLocked(h, w)...)
		}
	case xproto.ExposeEvent:
		if h, w, ok := b.byID(e.Window); ok && e.Count == 0 && w.occluded {
			w.occluded = false
			return []native.Event{{Kind: native.EventExposed, Window: h}}
		}
	case xproto.VisibilityNotifyEvent:
		if h, w, ok := b.byID(e.Window); ok {
			occluded := e.State == xproto.VisibilityFullyObscured
			if occluded == w.occluded {
				return nil
			}
			w.occluded = occluded
			if occluded {
				return []native.Event{{Kind: native.EventOccluded, Window: h}}
			}
			return []native.Event{{Kind: native.EventExposed, Window: h}}
		}
	case xproto.FocusInEvent:
		if h, _, ok := b.byID(e.Event); ok && focusChange(e.Mode, e.Detail) {
			return []native.Event{{Kind: native.EventFocusGained, Window: h}}
		}
	case xproto.FocusOutEvent:
		if h, _, ok := b.byID(e.Event); ok && focusChange(e.Mode, e.Detail) {
			return []native.Event{{Kind: native.EventFocusLost, Window: h}}
		}
	case xproto.EnterNotifyEvent:
		if h, w, ok := b.byID(e.Event); ok && !w.mouse {
			w.mouse = true
			return []native.Event{{Kind: native.EventMouseEnter, Window: h}}
		}
	case xproto.LeaveNotifyEvent:
		if h, w, ok := b.byID(e.Event); ok && w.mouse && e.Detail != xproto.NotifyDetailInferior {
			w.mouse = false
			return []native.Event{{Kind: native.EventMouseLeave, Window: h}}
		}
	case xproto.PropertyNotifyEvent:
		if h, w, ok := b.byID(e.Window); ok && b.isStateAtom(e.Atom) {
			return b.stateEventsLocked(h, w)
		}
	case xproto.ClientMessageEvent:
		if h, _, ok := b.byID(e.Window); ok && b.isDeleteRequest(e) {
			return []native.Event{{Kind: native.EventCloseRequested, Window: h}}
		}
	case randr.ScreenChangeNotifyEvent, randr.NotifyEvent:
		return b.topologyEventsLocked()
	}
	return nil
}

// focusChange filters out the focus events generated by grabs and by the
// pointer moving over a focused window.
func focusChange(mode, detail byte) bool {
	if mode == xproto.NotifyModeGrab || mode == xproto.NotifyModeUngrab {
		return false
	}
	return detail != xproto.NotifyDetailPointer && detail != xproto.NotifyDetailInferior
}

func (b *Backend) isStateAtom(atom xproto.Atom) bool {
	for _, name := range []string{atomWmState, "WM_STATE"} {
		if a, err := b.atom(name); err == nil && a == atom {
			return true
		}
	}
	return false
}

func (b *Backend) isDeleteRequest(e xproto.ClientMessageEvent) bool {
	protocols, err := b.atom("WM_PROTOCOLS")
	if err != nil || e.Type != protocols || e.Format != 32 {
		return false
	}
	del, err := b.atom(atomDeleteWindow)
	return err == nil && len(e.Data.Data32) > 0 && xproto.Atom(e.Data.Data32[0]) == del
}

// geometryEventsLocked compares the window's geometry with the last one seen
// and reports moves, resizes and display changes.
func (b *Backend) geometryEventsLocked(h native.Handle, w *window) []native.Event {
	r, err := b.geometryLocked(w.id())
	if err != nil {
		b.logger.Debug("failed to read window geometry", "window", w.id(), "error", err)
		return nil
	}
	events := geometryEvents(h, w.geom, r)
	w.geom = r
	return append(events, b.displayEventsLocked(h, w)...)
}

func geometryEvents(h native.Handle, old, cur native.Rect) []native.Event {
	var events []native.Event
	if old.Location() != cur.Location() {
		events = append(events, native.Event{Kind: native.EventMoved, Window: h})
	}
	if old.Size() != cur.Size() {
		events = append(events,
			native.Event{Kind: native.EventResized, Window: h},
			native.Event{Kind: native.EventPixelSizeChanged, Window: h},
			native.Event{Kind: native.EventSafeAreaChanged, Window: h},
		)
	}
	return events
}

func (b *Backend) displayEventsLocked(h native.Handle, w *window) []native.Event {
	d, ok := displayForRect(b.displays, w.geom)
	if !ok || d.ID == w.display {
		return nil
	}
	w.display = d.ID
	return []native.Event{{Kind: native.EventDisplayChanged, Window: h}}
}

func (b *Backend) stateEventsLocked(h native.Handle, w *window) []native.Event {
	cur := b.readNetState(w.id())
	events := stateEvents(h, w.state, cur)
	w.state = cur
	return events
}

// stateEvents reports the transitions between two window manager states.
func stateEvents(h native.Handle, old, cur netState) []native.Event {
	var events []native.Event
	emit := func(kind native.EventKind) {
		events = append(events, native.Event{Kind: kind, Window: h})
	}
	if cur.fullscreen != old.fullscreen {
		if cur.fullscreen {
			emit(native.EventEnterFullscreen)
		} else {
			emit(native.EventLeaveFullscreen)
		}
	}
	switch {
	case cur.minimized && !old.minimized:
		emit(native.EventMinimized)
	case cur.minimized:
	case cur.maximized && (!old.maximized || old.minimized):
		emit(native.EventMaximized)
	case old.maximized || old.minimized:
		emit(native.EventRestored)
	}
	return events
}

func (b *Backend) topologyEventsLocked() []native.Event {
	events, err := b.refreshDisplaysLocked()
	if err != nil {
		b.logger.Warn("failed to refresh displays", "error", err)
		return nil
	}
	for h, w := range b.windows {
		events = append(events, b.displayEventsLocked(h, w)...)
	}
	return events
}
