package native

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// View is the live accessor of one native window. Reads always query the
// backend. Writes always issue a command and, for attributes the backend does
// not echo back as events, write the new value into the store.
type View struct {
	backend   Backend
	handle    Handle
	store     *Store
	displays  DisplayResolver
	destroyed atomic.Bool
}

var _ State = (*View)(nil)

// NewView wraps handle. store may be nil when no write-back is wanted.
// displays may be nil, in which case display descriptors are looked up from
// the backend directly.
func NewView(backend Backend, handle Handle, store *Store, displays DisplayResolver) *View {
	return &View{backend: backend, handle: handle, store: store, displays: displays}
}

func (v *View) Handle() Handle {
	return v.handle
}

// MarkDestroyed makes every further use of the view panic.
func (v *View) MarkDestroyed() {
	v.destroyed.Store(true)
}

func (v *View) Destroyed() bool {
	return v.destroyed.Load()
}

func (v *View) alive() {
	if v.destroyed.Load() {
		panic(fmt.Errorf("native window %d: %w", v.handle, ErrDestroyed))
	}
}

func mustQuery[T any](v *View, op string, get func(Handle) (T, error)) T {
	v.alive()
	val, err := get(v.handle)
	if err != nil {
		panic(&QueryError{Op: op, Err: err})
	}
	return val
}

func (v *View) command(op string, fn func() error) error {
	v.alive()
	if err := fn(); err != nil {
		var cerr *CommandError
		if errors.As(err, &cerr) {
			return err
		}
		return &CommandError{Op: op, Err: err}
	}
	return nil
}

func (v *View) flags() Flags {
	return mustQuery(v, "flags", v.backend.QueryFlags)
}

func (v *View) Title() string { return mustQuery(v, "title", v.backend.QueryTitle) }
func (v *View) Position() Point { return mustQuery(v, "position", v.backend.QueryPosition) }
func (v *View) Size() Size { return mustQuery(v, "size", v.backend.QuerySize) }
func (v *View) SizeInPixels() Size { return mustQuery(v, "size_in_pixels", v.backend.QuerySizeInPixels) }
func (v *View) MinimumSize() Size { return mustQuery(v, "minimum_size", v.backend.QueryMinimumSize) }
func (v *View) MaximumSize() Size { return mustQuery(v, "maximum_size", v.backend.QueryMaximumSize) }

func (v *View) AspectRatio() AspectRatio {
	return mustQuery(v, "aspect_ratio", v.backend.QueryAspectRatio)
}

func (v *View) Bordered() bool { return v.flags().Bordered }
func (v *View) Resizable() bool { return v.flags().Resizable }
func (v *View) AlwaysOnTop() bool { return v.flags().AlwaysOnTop }
func (v *View) Visible() bool { return v.flags().Visible }
func (v *View) Focusable() bool { return v.flags().Focusable }
func (v *View) WindowState() WindowState { return v.flags().WindowState() }
func (v *View) Fullscreen() bool { return v.flags().Fullscreen }
func (v *View) Occluded() bool { return v.flags().Occluded }
func (v *View) InputFocus() bool { return v.flags().InputFocus }
func (v *View) MouseFocus() bool { return v.flags().MouseFocus }

func (v *View) FullscreenMode() *DisplayMode {
	return mustQuery(v, "fullscreen_mode", v.backend.QueryFullscreenMode)
}

func (v *View) displayID() DisplayID {
	return mustQuery(v, "display_id", v.backend.QueryDisplayID)
}

func (v *View) Display() Display {
	id := v.displayID()
	if v.displays != nil {
		d, err := v.displays.Resolve(id)
		if err != nil {
			panic(&QueryError{Op: "display", Err: err})
		}
		return d
	}
	all := mustQuery(v, "displays", func(Handle) ([]Display, error) { return v.backend.Displays() })
	for _, d := range all {
		if d.ID == id {
			return d
		}
	}
	panic(&QueryError{Op: "display", Err: fmt.Errorf("display %d: %w", id, ErrNotFound)})
}

func (v *View) CurrentDisplayMode() DisplayMode {
	id := v.displayID()
	return mustQuery(v, "current_display_mode", func(Handle) (DisplayMode, error) {
		return v.backend.CurrentDisplayMode(id)
	})
}

func (v *View) PixelDensity() float32 {
	return mustQuery(v, "pixel_density", v.backend.QueryPixelDensity)
}

func (v *View) DisplayScale() float32 {
	return mustQuery(v, "display_scale", v.backend.QueryDisplayScale)
}

func (v *View) SafeArea() Rect { return mustQuery(v, "safe_area", v.backend.QuerySafeArea) }
func (v *View) MouseRect() *Rect { return mustQuery(v, "mouse_rect", v.backend.QueryMouseRect) }
func (v *View) Opacity() float32 { return mustQuery(v, "opacity", v.backend.QueryOpacity) }

func (v *View) TextInputParams() *TextInputParams {
	return mustQuery(v, "text_input_params", v.backend.QueryTextInputParams)
}

func (v *View) RelativeMouseMode() bool {
	return mustQuery(v, "relative_mouse_mode", v.backend.QueryRelativeMouseMode)
}

func (v *View) SetTitle(val string) error {
	err := v.command("set_title", func() error { return v.backend.SetTitle(v.handle, val) })
	if err == nil && v.store != nil {
		_ = v.store.SetTitle(v.Title())
	}
	return err
}

func (v *View) SetPosition(val Point) error {
	return v.command("set_position", func() error { return v.backend.SetPosition(v.handle, val) })
}

func (v *View) SetSize(val Size) error {
	return v.command("set_size", func() error { return v.backend.SetSize(v.handle, val) })
}

func (v *View) SetMinimumSize(val Size) error {
	err := v.command("set_minimum_size", func() error {
		if conflictsWith(val, v.MaximumSize()) {
			return fmt.Errorf("minimum size %s exceeds maximum size %s", val, v.MaximumSize())
		}
		return v.backend.SetMinimumSize(v.handle, val)
	})
	if err == nil && v.store != nil {
		_ = v.store.SetMinimumSize(v.MinimumSize())
	}
	return err
}

func (v *View) SetMaximumSize(val Size) error {
	err := v.command("set_maximum_size", func() error {
		if conflictsWith(v.MinimumSize(), val) {
			return fmt.Errorf("maximum size %s is below minimum size %s", val, v.MinimumSize())
		}
		return v.backend.SetMaximumSize(v.handle, val)
	})
	if err == nil && v.store != nil {
		_ = v.store.SetMaximumSize(v.MaximumSize())
	}
	return err
}

func (v *View) SetAspectRatio(val AspectRatio) error {
	err := v.command("set_aspect_ratio", func() error { return v.backend.SetAspectRatio(v.handle, val) })
	if err == nil && v.store != nil {
		_ = v.store.SetAspectRatio(v.AspectRatio())
	}
	return err
}

func (v *View) SetBordered(val bool) error {
	err := v.command("set_bordered", func() error { return v.backend.SetBordered(v.handle, val) })
	if err == nil && v.store != nil {
		_ = v.store.SetBordered(v.Bordered())
	}
	return err
}

func (v *View) SetResizable(val bool) error {
	err := v.command("set_resizable", func() error { return v.backend.SetResizable(v.handle, val) })
	if err == nil && v.store != nil {
		_ = v.store.SetResizable(v.Resizable())
	}
	return err
}

func (v *View) SetAlwaysOnTop(val bool) error {
	err := v.command("set_always_on_top", func() error { return v.backend.SetAlwaysOnTop(v.handle, val) })
	if err == nil && v.store != nil {
		_ = v.store.SetAlwaysOnTop(v.AlwaysOnTop())
	}
	return err
}

func (v *View) SetVisible(val bool) error {
	return v.command("set_visible", func() error { return v.backend.SetVisible(v.handle, val) })
}

func (v *View) SetFocusable(val bool) error {
	err := v.command("set_focusable", func() error { return v.backend.SetFocusable(v.handle, val) })
	if err == nil && v.store != nil {
		_ = v.store.SetFocusable(v.Focusable())
	}
	return err
}

// SetWindowState issues the matching native call. Restoring a window that was
// minimised out of a maximised state lands on Maximised first on some
// platforms, so a second restore is issued in that case.
func (v *View) SetWindowState(val WindowState) error {
	return v.command("set_window_state", func() error {
		if err := v.backend.SetWindowState(v.handle, val); err != nil {
			return err
		}
		if val == Restored && v.WindowState() == Maximised {
			return v.backend.SetWindowState(v.handle, Restored)
		}
		return nil
	})
}

func (v *View) SetFullscreen(val bool) error {
	return v.command("set_fullscreen", func() error { return v.backend.SetFullscreen(v.handle, val) })
}

func (v *View) SetFullscreenMode(val *DisplayMode) error {
	return v.command("set_fullscreen_mode", func() error { return v.backend.SetFullscreenMode(v.handle, val) })
}

func (v *View) SetMouseRect(val *Rect) error {
	return v.command("set_mouse_rect", func() error { return v.backend.SetMouseRect(v.handle, val) })
}

func (v *View) SetOpacity(val float32) error {
	err := v.command("set_opacity", func() error { return v.backend.SetOpacity(v.handle, clampOpacity(val)) })
	if err == nil && v.store != nil {
		_ = v.store.SetOpacity(v.Opacity())
	}
	return err
}

func (v *View) SetTextInputParams(val *TextInputParams) error {
	err := v.command("set_text_input_params", func() error { return v.backend.SetTextInputParams(v.handle, val) })
	if err == nil && v.store != nil {
		_ = v.store.SetTextInputParams(v.TextInputParams())
	}
	return err
}

func (v *View) SetRelativeMouseMode(val bool) error {
	err := v.command("set_relative_mouse_mode", func() error { return v.backend.SetRelativeMouseMode(v.handle, val) })
	if err == nil && v.store != nil {
		_ = v.store.SetRelativeMouseMode(v.RelativeMouseMode())
	}
	return err
}

// UpdateFrom pushes every settable attribute of r to the native window and
// returns the joined command errors.
func (v *View) UpdateFrom(r Reader) error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	add(v.SetTitle(r.Title()))
	add(v.SetMaximumSize(Size{}))
	add(v.SetMinimumSize(r.MinimumSize()))
	add(v.SetMaximumSize(r.MaximumSize()))
	add(v.SetAspectRatio(r.AspectRatio()))
	add(v.SetResizable(r.Resizable()))
	add(v.SetBordered(r.Bordered()))
	add(v.SetAlwaysOnTop(r.AlwaysOnTop()))
	add(v.SetFocusable(r.Focusable()))
	add(v.SetOpacity(r.Opacity()))
	add(v.SetMouseRect(r.MouseRect()))
	add(v.SetTextInputParams(r.TextInputParams()))
	add(v.SetRelativeMouseMode(r.RelativeMouseMode()))
	if r.WindowState() == Restored {
		add(v.SetSize(r.Size()))
		add(v.SetPosition(r.Position()))
	}
	add(v.SetFullscreenMode(r.FullscreenMode()))
	add(v.SetFullscreen(r.Fullscreen()))
	add(v.SetVisible(r.Visible()))
	if v.WindowState() != r.WindowState() {
		add(v.SetWindowState(r.WindowState()))
	}
	return errors.Join(errs...)
}

// conflictsWith reports whether min exceeds max on an axis where both are
// set. Zero means unlimited.
func conflictsWith(min, max Size) bool {
	if min.Width > 0 && max.Width > 0 && min.Width > max.Width {
		return true
	}
	if min.Height > 0 && max.Height > 0 && min.Height > max.Height {
		return true
	}
	return false
}
