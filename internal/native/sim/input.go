package sim

import (
	"fmt"

	"github.com/1broseidon/winsync/internal/native"
)

// The methods below play the part of the user and the window manager acting
// on a window from outside the application.

func (b *Backend) external(h native.Handle, fn func(w *window)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[h]
	if !ok {
		return fmt.Errorf("window %d: %w", h, errNoWindow)
	}
	fn(w)
	return nil
}

// Focus gives the window input focus.
func (b *Backend) Focus(h native.Handle) error {
	return b.external(h, func(w *window) {
		if w.flags.Focusable {
			b.focusLocked(h, w)
		}
	})
}

func (b *Backend) focusLocked(h native.Handle, w *window) {
	if w.flags.InputFocus {
		return
	}
	for other, ow := range b.windows {
		if other != h && ow.flags.InputFocus {
			ow.flags.InputFocus = false
			b.pushLocked(native.EventFocusLost, other, 0)
		}
	}
	w.flags.InputFocus = true
	b.pushLocked(native.EventFocusGained, h, 0)
}

// Blur takes input focus away from the window.
func (b *Backend) Blur(h native.Handle) error {
	return b.external(h, func(w *window) {
		if !w.flags.InputFocus {
			return
		}
		w.flags.InputFocus = false
		b.pushLocked(native.EventFocusLost, h, 0)
	})
}

// MoveMouse sets whether the pointer is inside the window.
func (b *Backend) MoveMouse(h native.Handle, inside bool) error {
	return b.external(h, func(w *window) {
		if w.flags.MouseFocus == inside {
			return
		}
		w.flags.MouseFocus = inside
		if inside {
			b.pushLocked(native.EventMouseEnter, h, 0)
		} else {
			b.pushLocked(native.EventMouseLeave, h, 0)
		}
	})
}

// Occlude marks the window as covered, or exposed again.
func (b *Backend) Occlude(h native.Handle, occluded bool) error {
	return b.external(h, func(w *window) {
		if w.flags.Occluded == occluded {
			return
		}
		w.flags.Occluded = occluded
		if occluded {
			b.pushLocked(native.EventOccluded, h, 0)
		} else {
			b.pushLocked(native.EventExposed, h, 0)
		}
	})
}

// RequestClose queues a close request, as when the user clicks the close
// button.
func (b *Backend) RequestClose(h native.Handle) error {
	return b.external(h, func(*window) {
		b.pushLocked(native.EventCloseRequested, h, 0)
	})
}

// SetSafeArea changes the area of the window not covered by system UI.
func (b *Backend) SetSafeArea(h native.Handle, r native.Rect) error {
	return b.external(h, func(w *window) {
		if w.safeArea == r {
			return
		}
		w.safeArea = r
		b.pushLocked(native.EventSafeAreaChanged, h, 0)
	})
}

// DragTo moves the window the way a user dragging its title bar would.
func (b *Backend) DragTo(h native.Handle, p native.Point) error {
	return b.external(h, func(w *window) {
		if w.flags.Maximized {
			w.flags.Maximized = false
			b.pushLocked(native.EventRestored, h, 0)
			b.setGeometryLocked(h, w, p, w.savedSize)
			return
		}
		b.moveLocked(h, w, p)
	})
}
