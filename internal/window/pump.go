package window

import (
	"fmt"

	"github.com/1broseidon/winsync/internal/native"
)

// pump drains the backend event queue into the store. Display events update
// the registry first so the live view resolves the new topology.
func (f *Facade) pump() error {
	events, err := f.backend.PollEvents()
	if err != nil {
		return fmt.Errorf("poll events: %w", err)
	}
	for _, ev := range events {
		if ev.Kind.IsDisplayEvent() {
			f.handleDisplayEvent(ev)
			continue
		}
		if ev.Window != f.view.Handle() {
			continue
		}
		f.handleWindowEvent(ev)
	}
	return nil
}

func (f *Facade) handleDisplayEvent(ev native.Event) {
	if _, err := f.displays.HandleEvent(ev); err != nil {
		f.logger.Warn("refreshing displays", "event", ev, "error", err)
		return
	}
	if ev.Kind == native.EventDisplayCurrentModeChanged {
		if ev.Display == f.store.Display().ID {
			f.store.SetCurrentDisplayMode(f.view.CurrentDisplayMode())
		}
		return
	}
	f.store.SetDisplay(f.view.Display())
}

func (f *Facade) handleWindowEvent(ev native.Event) {
	s, v := f.store, f.view
	switch ev.Kind {
	case native.EventShown:
		_ = s.SetVisible(true)
	case native.EventHidden:
		_ = s.SetVisible(false)
	case native.EventExposed:
		s.SetOccluded(false)
	case native.EventOccluded:
		s.SetOccluded(true)
	case native.EventMoved:
		_ = s.SetPosition(v.Position())
	case native.EventResized:
		_ = s.SetSize(v.Size())
		s.SetPixelDensity(v.PixelDensity())
		_ = s.SetFullscreenMode(v.FullscreenMode())
	case native.EventPixelSizeChanged:
		s.SetSizeInPixels(v.SizeInPixels())
		s.SetPixelDensity(v.PixelDensity())
		_ = s.SetFullscreenMode(v.FullscreenMode())
	case native.EventMinimized, native.EventMaximized, native.EventRestored:
		_ = s.SetWindowState(stateFromEvent(ev.Kind))
		_ = s.SetFullscreen(v.Fullscreen())
		_ = s.SetFullscreenMode(v.FullscreenMode())
	case native.EventMouseEnter:
		s.SetMouseFocus(true)
	case native.EventMouseLeave:
		s.SetMouseFocus(false)
	case native.EventFocusGained:
		s.SetInputFocus(true)
	case native.EventFocusLost:
		s.SetInputFocus(false)
	case native.EventDisplayChanged:
		s.SetCurrentDisplayMode(v.CurrentDisplayMode())
		s.SetDisplay(v.Display())
	case native.EventDisplayScaleChanged:
		s.SetDisplayScale(v.DisplayScale())
		s.SetPixelDensity(v.PixelDensity())
	case native.EventSafeAreaChanged:
		s.SetSafeArea(v.SafeArea())
	case native.EventEnterFullscreen, native.EventLeaveFullscreen:
		_ = s.SetFullscreen(v.Fullscreen())
		_ = s.SetFullscreenMode(v.FullscreenMode())
	case native.EventCloseRequested:
		f.closeRequested.fire(struct{}{})
	case native.EventHitTest:
	default:
		f.logger.Debug("unhandled window event", "event", ev)
	}
}

func stateFromEvent(k native.EventKind) native.WindowState {
	switch k {
	case native.EventMinimized:
		return native.Minimised
	case native.EventMaximized:
		return native.Maximised
	default:
		return native.Restored
	}
}
