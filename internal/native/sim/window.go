package sim

import (
	"errors"
	"fmt"

	"github.com/1broseidon/winsync/internal/native"
)

type window struct {
	title    string
	pos      native.Point
	size     native.Size
	min      native.Size
	max      native.Size
	aspect   native.AspectRatio
	flags    native.Flags
	opacity  float32
	safeArea native.Rect

	mouseRect      *native.Rect
	textInput      *native.TextInputParams
	relativeMouse  bool
	fullscreenMode *native.DisplayMode

	// windowed geometry saved while maximised or fullscreen.
	savedPos  native.Point
	savedSize native.Size
	// minimisedFromMaximised is set when a maximised window was minimised.
	minimisedFromMaximised bool
}

var errNoWindow = errors.New("no such window")

func (b *Backend) windowLocked(op string, h native.Handle) (*window, error) {
	if err := b.failLocked(op); err != nil {
		return nil, err
	}
	w, ok := b.windows[h]
	if !ok {
		return nil, fmt.Errorf("%s: window %d: %w", op, h, errNoWindow)
	}
	return w, nil
}

// CreateWindow creates a window and queues the events a window manager would
// report for it.
func (b *Backend) CreateWindow(p native.CreateParams) (native.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failLocked("create_window"); err != nil {
		return 0, err
	}
	if p.Size.IsEmpty() {
		return 0, fmt.Errorf("invalid window size %s", p.Size)
	}
	if len(b.displays) == 0 {
		return 0, fmt.Errorf("no displays: %w", native.ErrNotFound)
	}

	h := b.nextHandle
	b.nextHandle++
	w := &window{
		title:   p.Title,
		pos:     p.Position,
		size:    p.Size,
		opacity: 1,
		flags: native.Flags{
			Bordered:    p.Bordered,
			Resizable:   p.Resizable,
			AlwaysOnTop: p.AlwaysOnTop,
			Visible:     p.Visible,
			Focusable:   p.Focusable,
		},
	}
	if d, _, ok := b.displayLocked(p.Display); ok && !d.bounds.Contains(p.Position) {
		w.pos = native.Point{X: d.bounds.X + p.Position.X, Y: d.bounds.Y + p.Position.Y}
	}
	b.windows[h] = w

	if w.flags.Visible {
		b.pushLocked(native.EventShown, h, 0)
		b.pushLocked(native.EventExposed, h, 0)
		if w.flags.Focusable {
			b.focusLocked(h, w)
		}
	}
	if p.Fullscreen {
		b.enterFullscreenLocked(h, w)
	}
	switch p.State {
	case native.Maximised:
		b.maximiseLocked(h, w)
	case native.Minimised:
		b.minimiseLocked(h, w)
	}
	return h, nil
}

func (b *Backend) DestroyWindow(h native.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.windowLocked("destroy_window", h); err != nil {
		return err
	}
	delete(b.windows, h)
	kept := b.events[:0]
	for _, ev := range b.events {
		if ev.Window != h {
			kept = append(kept, ev)
		}
	}
	b.events = kept
	return nil
}

// Windows returns the number of live windows.
func (b *Backend) Windows() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.windows)
}

func query[T any](b *Backend, op string, h native.Handle, get func(*window) T) (T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.windowLocked(op, h)
	if err != nil {
		var zero T
		return zero, err
	}
	return get(w), nil
}

func (b *Backend) QueryTitle(h native.Handle) (string, error) {
	return query(b, "query_title", h, func(w *window) string { return w.title })
}

func (b *Backend) QueryPosition(h native.Handle) (native.Point, error) {
	return query(b, "query_position", h, func(w *window) native.Point { return w.pos })
}

func (b *Backend) QuerySize(h native.Handle) (native.Size, error) {
	return query(b, "query_size", h, func(w *window) native.Size { return w.size })
}

func (b *Backend) QuerySizeInPixels(h native.Handle) (native.Size, error) {
	return query(b, "query_size_in_pixels", h, func(w *window) native.Size {
		return scaled(w.size, b.displayOfLocked(w).scale)
	})
}

func (b *Backend) QueryMinimumSize(h native.Handle) (native.Size, error) {
	return query(b, "query_minimum_size", h, func(w *window) native.Size { return w.min })
}

func (b *Backend) QueryMaximumSize(h native.Handle) (native.Size, error) {
	return query(b, "query_maximum_size", h, func(w *window) native.Size { return w.max })
}

func (b *Backend) QueryAspectRatio(h native.Handle) (native.AspectRatio, error) {
	return query(b, "query_aspect_ratio", h, func(w *window) native.AspectRatio {
		return native.AspectRatio{Min: copyPtr(w.aspect.Min), Max: copyPtr(w.aspect.Max)}
	})
}

func (b *Backend) QueryFlags(h native.Handle) (native.Flags, error) {
	return query(b, "query_flags", h, func(w *window) native.Flags { return w.flags })
}

func (b *Backend) QueryOpacity(h native.Handle) (float32, error) {
	return query(b, "query_opacity", h, func(w *window) float32 { return w.opacity })
}

func (b *Backend) QueryMouseRect(h native.Handle) (*native.Rect, error) {
	return query(b, "query_mouse_rect", h, func(w *window) *native.Rect { return copyPtr(w.mouseRect) })
}

func (b *Backend) QueryDisplayID(h native.Handle) (native.DisplayID, error) {
	return query(b, "query_display_id", h, func(w *window) native.DisplayID { return b.displayOfLocked(w).id })
}

// QueryFullscreenMode reports the exclusive mode only while fullscreen.
func (b *Backend) QueryFullscreenMode(h native.Handle) (*native.DisplayMode, error) {
	return query(b, "query_fullscreen_mode", h, func(w *window) *native.DisplayMode {
		if !w.flags.Fullscreen {
			return nil
		}
		return copyPtr(w.fullscreenMode)
	})
}

func (b *Backend) QueryPixelDensity(h native.Handle) (float32, error) {
	return query(b, "query_pixel_density", h, func(w *window) float32 { return b.displayOfLocked(w).scale })
}

func (b *Backend) QueryDisplayScale(h native.Handle) (float32, error) {
	return query(b, "query_display_scale", h, func(w *window) float32 { return b.displayOfLocked(w).scale })
}

func (b *Backend) QuerySafeArea(h native.Handle) (native.Rect, error) {
	return query(b, "query_safe_area", h, func(w *window) native.Rect {
		if w.safeArea == (native.Rect{}) {
			return native.Rect{Width: w.size.Width, Height: w.size.Height}
		}
		return w.safeArea
	})
}

func (b *Backend) QueryTextInputParams(h native.Handle) (*native.TextInputParams, error) {
	return query(b, "query_text_input_params", h, func(w *window) *native.TextInputParams { return copyPtr(w.textInput) })
}

func (b *Backend) QueryRelativeMouseMode(h native.Handle) (bool, error) {
	return query(b, "query_relative_mouse_mode", h, func(w *window) bool { return w.relativeMouse })
}

func (b *Backend) command(op string, h native.Handle, fn func(w *window) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.windowLocked(op, h)
	if err != nil {
		return err
	}
	return fn(w)
}

func (b *Backend) SetTitle(h native.Handle, v string) error {
	return b.command("set_title", h, func(w *window) error {
		w.title = v
		return nil
	})
}

func (b *Backend) SetPosition(h native.Handle, v native.Point) error {
	return b.command("set_position", h, func(w *window) error {
		if w.flags.Fullscreen || w.flags.Maximized {
			w.savedPos = v
			return nil
		}
		b.moveLocked(h, w, v)
		return nil
	})
}

func (b *Backend) SetSize(h native.Handle, v native.Size) error {
	return b.command("set_size", h, func(w *window) error {
		if v.IsEmpty() {
			return fmt.Errorf("invalid window size %s", v)
		}
		if w.flags.Fullscreen || w.flags.Maximized {
			w.savedSize = v
			return nil
		}
		b.resizeLocked(h, w, v)
		return nil
	})
}

func (b *Backend) SetMinimumSize(h native.Handle, v native.Size) error {
	return b.command("set_minimum_size", h, func(w *window) error {
		w.min = v
		b.resizeLocked(h, w, w.size)
		return nil
	})
}

func (b *Backend) SetMaximumSize(h native.Handle, v native.Size) error {
	return b.command("set_maximum_size", h, func(w *window) error {
		w.max = v
		b.resizeLocked(h, w, w.size)
		return nil
	})
}

func (b *Backend) SetAspectRatio(h native.Handle, v native.AspectRatio) error {
	return b.command("set_aspect_ratio", h, func(w *window) error {
		if v.Min != nil && v.Max != nil && *v.Min > *v.Max {
			return fmt.Errorf("aspect ratio min %g exceeds max %g", *v.Min, *v.Max)
		}
		w.aspect = native.AspectRatio{Min: copyPtr(v.Min), Max: copyPtr(v.Max)}
		return nil
	})
}

func (b *Backend) SetBordered(h native.Handle, v bool) error {
	return b.command("set_bordered", h, func(w *window) error {
		w.flags.Bordered = v
		return nil
	})
}

func (b *Backend) SetResizable(h native.Handle, v bool) error {
	return b.command("set_resizable", h, func(w *window) error {
		w.flags.Resizable = v
		return nil
	})
}

func (b *Backend) SetAlwaysOnTop(h native.Handle, v bool) error {
	return b.command("set_always_on_top", h, func(w *window) error {
		w.flags.AlwaysOnTop = v
		return nil
	})
}

func (b *Backend) SetFocusable(h native.Handle, v bool) error {
	return b.command("set_focusable", h, func(w *window) error {
		w.flags.Focusable = v
		return nil
	})
}

func (b *Backend) SetVisible(h native.Handle, v bool) error {
	return b.command("set_visible", h, func(w *window) error {
		if w.flags.Visible == v {
			return nil
		}
		w.flags.Visible = v
		if v {
			b.pushLocked(native.EventShown, h, 0)
			b.pushLocked(native.EventExposed, h, 0)
			return nil
		}
		if w.flags.InputFocus {
			w.flags.InputFocus = false
			b.pushLocked(native.EventFocusLost, h, 0)
		}
		b.pushLocked(native.EventHidden, h, 0)
		return nil
	})
}

func (b *Backend) SetWindowState(h native.Handle, v native.WindowState) error {
	return b.command("set_window_state", h, func(w *window) error {
		switch v {
		case native.Minimised:
			b.minimiseLocked(h, w)
		case native.Maximised:
			b.maximiseLocked(h, w)
		case native.Restored:
			b.restoreLocked(h, w)
		default:
			return fmt.Errorf("unknown window state %d", int(v))
		}
		return nil
	})
}

func (b *Backend) SetFullscreen(h native.Handle, v bool) error {
	return b.command("set_fullscreen", h, func(w *window) error {
		if v {
			b.enterFullscreenLocked(h, w)
		} else {
			b.leaveFullscreenLocked(h, w)
		}
		return nil
	})
}

// SetFullscreenMode selects the exclusive mode used while fullscreen. nil
// selects borderless desktop fullscreen.
func (b *Backend) SetFullscreenMode(h native.Handle, v *native.DisplayMode) error {
	return b.command("set_fullscreen_mode", h, func(w *window) error {
		if v != nil {
			if v.DisplayIndex < 0 || v.DisplayIndex >= len(b.displays) {
				return fmt.Errorf("display index %d: %w", v.DisplayIndex, native.ErrNotFound)
			}
			if !hasMode(b.displays[v.DisplayIndex].modes, *v) {
				return fmt.Errorf("unsupported display mode %s", v)
			}
		}
		if equalMode(w.fullscreenMode, v) {
			return nil
		}
		w.fullscreenMode = copyPtr(v)
		if w.flags.Fullscreen {
			b.applyFullscreenGeometryLocked(h, w)
		}
		return nil
	})
}

func (b *Backend) SetMouseRect(h native.Handle, v *native.Rect) error {
	return b.command("set_mouse_rect", h, func(w *window) error {
		w.mouseRect = copyPtr(v)
		return nil
	})
}

func (b *Backend) SetOpacity(h native.Handle, v float32) error {
	return b.command("set_opacity", h, func(w *window) error {
		if v < 0 || v > 1 {
			return fmt.Errorf("opacity %g out of range", v)
		}
		w.opacity = v
		return nil
	})
}

func (b *Backend) SetTextInputParams(h native.Handle, v *native.TextInputParams) error {
	return b.command("set_text_input_params", h, func(w *window) error {
		w.textInput = copyPtr(v)
		return nil
	})
}

func (b *Backend) SetRelativeMouseMode(h native.Handle, v bool) error {
	return b.command("set_relative_mouse_mode", h, func(w *window) error {
		w.relativeMouse = v
		return nil
	})
}

func (b *Backend) moveLocked(h native.Handle, w *window, p native.Point) {
	if w.pos == p {
		return
	}
	before := b.displayOfLocked(w)
	w.pos = p
	b.pushLocked(native.EventMoved, h, 0)
	if after := b.displayOfLocked(w); after != before {
		b.pushLocked(native.EventDisplayChanged, h, 0)
		if after.scale != before.scale {
			b.pushLocked(native.EventDisplayScaleChanged, h, 0)
			b.pushLocked(native.EventPixelSizeChanged, h, 0)
		}
	}
}

// resizeLocked applies the min/max constraints and queues Resized and
// PixelSizeChanged when the size changed.
func (b *Backend) resizeLocked(h native.Handle, w *window, s native.Size) {
	s = constrain(s, w.min, w.max)
	if w.size == s {
		return
	}
	w.size = s
	b.pushLocked(native.EventResized, h, 0)
	b.pushLocked(native.EventPixelSizeChanged, h, 0)
}

func (b *Backend) setGeometryLocked(h native.Handle, w *window, p native.Point, s native.Size) {
	if w.size != s {
		w.size = s
		b.pushLocked(native.EventResized, h, 0)
		b.pushLocked(native.EventPixelSizeChanged, h, 0)
	}
	b.moveLocked(h, w, p)
}

func (b *Backend) saveGeometryLocked(w *window) {
	if w.flags.Maximized || w.flags.Fullscreen {
		return
	}
	w.savedPos = w.pos
	w.savedSize = w.size
}

func (b *Backend) minimiseLocked(h native.Handle, w *window) {
	if w.flags.Minimized {
		return
	}
	w.minimisedFromMaximised = w.flags.Maximized
	w.flags.Minimized = true
	w.flags.Maximized = false
	if w.flags.InputFocus {
		w.flags.InputFocus = false
		b.pushLocked(native.EventFocusLost, h, 0)
	}
	b.pushLocked(native.EventMinimized, h, 0)
	b.pushLocked(native.EventOccluded, h, 0)
	w.flags.Occluded = true
}

// maximiseLocked is ignored for windows that are not resizable.
func (b *Backend) maximiseLocked(h native.Handle, w *window) {
	if !w.flags.Resizable {
		return
	}
	if w.flags.Minimized {
		w.flags.Minimized = false
		w.flags.Occluded = false
		b.pushLocked(native.EventExposed, h, 0)
	}
	w.minimisedFromMaximised = false
	if w.flags.Maximized {
		return
	}
	b.saveGeometryLocked(w)
	w.flags.Maximized = true
	b.pushLocked(native.EventMaximized, h, 0)
	if !w.flags.Fullscreen {
		usable := b.displayOfLocked(w).usable
		b.setGeometryLocked(h, w, usable.Location(), usable.Size())
	}
}

func (b *Backend) restoreLocked(h native.Handle, w *window) {
	switch {
	case w.flags.Minimized:
		w.flags.Minimized = false
		w.flags.Occluded = false
		b.pushLocked(native.EventExposed, h, 0)
		if w.minimisedFromMaximised && b.RestoreReturnsToMaximised {
			w.minimisedFromMaximised = false
			w.flags.Maximized = true
			b.pushLocked(native.EventMaximized, h, 0)
			return
		}
		w.minimisedFromMaximised = false
		b.pushLocked(native.EventRestored, h, 0)
	case w.flags.Maximized:
		w.flags.Maximized = false
		b.pushLocked(native.EventRestored, h, 0)
		if !w.flags.Fullscreen {
			b.setGeometryLocked(h, w, w.savedPos, w.savedSize)
		}
	}
}

func (b *Backend) enterFullscreenLocked(h native.Handle, w *window) {
	if w.flags.Fullscreen {
		return
	}
	b.saveGeometryLocked(w)
	w.flags.Fullscreen = true
	b.pushLocked(native.EventEnterFullscreen, h, 0)
	b.applyFullscreenGeometryLocked(h, w)
}

func (b *Backend) applyFullscreenGeometryLocked(h native.Handle, w *window) {
	d := b.displayOfLocked(w)
	size := d.bounds.Size()
	if w.fullscreenMode != nil {
		size = w.fullscreenMode.Size
		if d.current != *w.fullscreenMode {
			d.current = *w.fullscreenMode
			b.pushLocked(native.EventDisplayCurrentModeChanged, 0, d.id)
		}
	} else if d.current != d.desktop {
		d.current = d.desktop
		b.pushLocked(native.EventDisplayCurrentModeChanged, 0, d.id)
	}
	b.setGeometryLocked(h, w, d.bounds.Location(), size)
}

func (b *Backend) leaveFullscreenLocked(h native.Handle, w *window) {
	if !w.flags.Fullscreen {
		return
	}
	d := b.displayOfLocked(w)
	w.flags.Fullscreen = false
	b.pushLocked(native.EventLeaveFullscreen, h, 0)
	if d.current != d.desktop {
		d.current = d.desktop
		b.pushLocked(native.EventDisplayCurrentModeChanged, 0, d.id)
	}
	if w.flags.Maximized {
		usable := d.usable
		b.setGeometryLocked(h, w, usable.Location(), usable.Size())
		return
	}
	b.setGeometryLocked(h, w, w.savedPos, w.savedSize)
}

func constrain(s, min, max native.Size) native.Size {
	if min.Width > 0 && s.Width < min.Width {
		s.Width = min.Width
	}
	if min.Height > 0 && s.Height < min.Height {
		s.Height = min.Height
	}
	if max.Width > 0 && s.Width > max.Width {
		s.Width = max.Width
	}
	if max.Height > 0 && s.Height > max.Height {
		s.Height = max.Height
	}
	return s
}

func equalMode(a, b *native.DisplayMode) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
