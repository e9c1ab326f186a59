package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/winsync/internal/native"
)

const windowEventMask = xproto.EventMaskStructureNotify |
	xproto.EventMaskPropertyChange |
	xproto.EventMaskFocusChange |
	xproto.EventMaskEnterWindow |
	xproto.EventMaskLeaveWindow |
	xproto.EventMaskExposure |
	xproto.EventMaskVisibilityChange

// aspectScale is the denominator used to encode float aspect ratios in
// WM_NORMAL_HINTS.
const aspectScale = 10000

// window is the backend's view of one client window. Geometry and state are
// the last values reported through events, used to detect changes.
type window struct {
	xwin *xwindow.Window

	geom     native.Rect
	state    netState
	display  native.DisplayID
	occluded bool
	mouse    bool

	visible   bool
	bordered  bool
	resizable bool
	focusable bool
	min       native.Size
	max       native.Size
	aspect    native.AspectRatio
	opacity   float32

	fullscreenMode *native.DisplayMode

	// Attributes with no X11 equivalent are kept as shadow values.
	mouseRect     *native.Rect
	textInput     *native.TextInputParams
	relativeMouse bool
}

func (w *window) id() xproto.Window {
	return w.xwin.Id
}

func (b *Backend) CreateWindow(p native.CreateParams) (native.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.Size.IsEmpty() {
		return 0, fmt.Errorf("invalid window size %s", p.Size)
	}

	xw, err := xwindow.Generate(b.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate window id: %w", err)
	}
	err = xw.CreateChecked(b.Root, p.Position.X, p.Position.Y, p.Size.Width, p.Size.Height,
		xproto.CwBackPixel|xproto.CwEventMask, 0, windowEventMask)
	if err != nil {
		return 0, fmt.Errorf("failed to create window: %w", err)
	}

	w := &window{
		xwin:      xw,
		geom:      native.Rect{X: p.Position.X, Y: p.Position.Y, Width: p.Size.Width, Height: p.Size.Height},
		display:   p.Display,
		visible:   p.Visible,
		bordered:  p.Bordered,
		resizable: p.Resizable,
		focusable: p.Focusable,
		opacity:   1,
	}
	id := xw.Id
	h := native.Handle(id)

	if err := icccm.WmProtocolsSet(b.XUtil, id, []string{atomDeleteWindow}); err != nil {
		xw.Destroy()
		return 0, fmt.Errorf("failed to set WM_PROTOCOLS: %w", err)
	}
	if err := b.setTitle(id, p.Title); err != nil {
		xw.Destroy()
		return 0, err
	}
	var errs []error
	errs = append(errs, b.writeNormalHints(w, w.geom, true))
	errs = append(errs, b.writeHints(w, p.State == native.Minimised))
	if !p.Bordered {
		errs = append(errs, b.writeDecorations(w))
	}

	// Initial states are set on the property before mapping, as EWMH
	// prescribes for windows that are not yet managed.
	var states []string
	if p.Fullscreen {
		states = append(states, atomFullscreen)
	}
	if p.AlwaysOnTop {
		states = append(states, atomAbove)
	}
	if p.State == native.Maximised {
		states = append(states, atomMaxHorz, atomMaxVert)
	}
	if len(states) > 0 {
		errs = append(errs, ewmh.WmStateSet(b.XUtil, id, states))
	}
	if err := errors.Join(errs...); err != nil {
		xw.Destroy()
		return 0, err
	}

	if p.Visible {
		xw.Map()
	}
	b.windows[h] = w
	b.logger.Debug("created window", "window", id, "title", p.Title, "geometry", w.geom)
	return h, nil
}

func (b *Backend) DestroyWindow(h native.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.windowLocked(h)
	if err != nil {
		return err
	}
	b.releaseModesLocked(h)
	w.xwin.Destroy()
	delete(b.windows, h)

	kept := b.pending[:0]
	for _, ev := range b.pending {
		if ev.Window != h {
			kept = append(kept, ev)
		}
	}
	b.pending = kept
	return nil
}

func (b *Backend) releaseModesLocked(h native.Handle) {
	for id, owner := range b.switched {
		if owner != h {
			continue
		}
		if err := b.restoreDesktopModeLocked(id); err != nil {
			b.logger.Warn("failed to restore display mode", "display", id, "error", err)
		}
	}
}

func query[T any](b *Backend, h native.Handle, get func(*window) (T, error)) (T, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.windowLocked(h)
	if err != nil {
		var zero T
		return zero, err
	}
	return get(w)
}

// geometryLocked returns the client area of win in root coordinates.
func (b *Backend) geometryLocked(win xproto.Window) (native.Rect, error) {
	conn := b.XUtil.Conn()
	geom, err := xproto.GetGeometry(conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return native.Rect{}, fmt.Errorf("failed to get geometry: %w", err)
	}
	translate, err := xproto.TranslateCoordinates(conn, win, b.Root, 0, 0).Reply()
	if err != nil {
		return native.Rect{}, fmt.Errorf("failed to translate coordinates: %w", err)
	}
	return native.Rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

func (b *Backend) QueryTitle(h native.Handle) (string, error) {
	return query(b, h, func(w *window) (string, error) {
		if name, err := ewmh.WmNameGet(b.XUtil, w.id()); err == nil {
			return name, nil
		}
		return icccm.WmNameGet(b.XUtil, w.id())
	})
}

func (b *Backend) QueryPosition(h native.Handle) (native.Point, error) {
	return query(b, h, func(w *window) (native.Point, error) {
		r, err := b.geometryLocked(w.id())
		return r.Location(), err
	})
}

func (b *Backend) QuerySize(h native.Handle) (native.Size, error) {
	return query(b, h, func(w *window) (native.Size, error) {
		r, err := b.geometryLocked(w.id())
		return r.Size(), err
	})
}

// QuerySizeInPixels equals QuerySize: X11 windows are sized in pixels.
func (b *Backend) QuerySizeInPixels(h native.Handle) (native.Size, error) {
	return b.QuerySize(h)
}

func (b *Backend) QueryMinimumSize(h native.Handle) (native.Size, error) {
	return query(b, h, func(w *window) (native.Size, error) { return w.min, nil })
}

func (b *Backend) QueryMaximumSize(h native.Handle) (native.Size, error) {
	return query(b, h, func(w *window) (native.Size, error) { return w.max, nil })
}

func (b *Backend) QueryAspectRatio(h native.Handle) (native.AspectRatio, error) {
	return query(b, h, func(w *window) (native.AspectRatio, error) {
		return native.AspectRatio{Min: copyPtr(w.aspect.Min), Max: copyPtr(w.aspect.Max)}, nil
	})
}

func (b *Backend) QueryFlags(h native.Handle) (native.Flags, error) {
	return query(b, h, func(w *window) (native.Flags, error) {
		st := b.readNetState(w.id())
		focus, err := xproto.GetInputFocus(b.XUtil.Conn()).Reply()
		if err != nil {
			return native.Flags{}, fmt.Errorf("failed to get input focus: %w", err)
		}
		return native.Flags{
			Bordered:    w.bordered,
			Resizable:   w.resizable,
			AlwaysOnTop: st.above,
			Visible:     w.visible,
			Focusable:   w.focusable,
			Fullscreen:  st.fullscreen,
			Minimized:   st.minimized,
			Maximized:   st.maximized,
			Occluded:    w.occluded,
			InputFocus:  focus.Focus == w.id(),
			MouseFocus:  w.mouse,
		}, nil
	})
}

func (b *Backend) QueryOpacity(h native.Handle) (float32, error) {
	return query(b, h, func(w *window) (float32, error) {
		if v, err := ewmh.WmWindowOpacityGet(b.XUtil, w.id()); err == nil {
			return float32(v), nil
		}
		return w.opacity, nil
	})
}

func (b *Backend) QueryMouseRect(h native.Handle) (*native.Rect, error) {
	return query(b, h, func(w *window) (*native.Rect, error) { return copyPtr(w.mouseRect), nil })
}

func (b *Backend) QueryDisplayID(h native.Handle) (native.DisplayID, error) {
	return query(b, h, func(w *window) (native.DisplayID, error) {
		r, err := b.geometryLocked(w.id())
		if err != nil {
			return 0, err
		}
		d, ok := displayForRect(b.displays, r)
		if !ok {
			return 0, fmt.Errorf("no displays: %w", native.ErrNotFound)
		}
		return d.ID, nil
	})
}

// QueryFullscreenMode reports the exclusive mode only while fullscreen.
func (b *Backend) QueryFullscreenMode(h native.Handle) (*native.DisplayMode, error) {
	return query(b, h, func(w *window) (*native.DisplayMode, error) {
		if !b.readNetState(w.id()).fullscreen {
			return nil, nil
		}
		return copyPtr(w.fullscreenMode), nil
	})
}

// QueryPixelDensity is always 1; the core protocol has no per-window scale.
func (b *Backend) QueryPixelDensity(h native.Handle) (float32, error) {
	return query(b, h, func(*window) (float32, error) { return 1, nil })
}

func (b *Backend) QueryDisplayScale(h native.Handle) (float32, error) {
	return query(b, h, func(*window) (float32, error) { return 1, nil })
}

// QuerySafeArea is the whole client area.
func (b *Backend) QuerySafeArea(h native.Handle) (native.Rect, error) {
	return query(b, h, func(w *window) (native.Rect, error) {
		r, err := b.geometryLocked(w.id())
		return native.Rect{Width: r.Width, Height: r.Height}, err
	})
}

func (b *Backend) QueryTextInputParams(h native.Handle) (*native.TextInputParams, error) {
	return query(b, h, func(w *window) (*native.TextInputParams, error) { return copyPtr(w.textInput), nil })
}

func (b *Backend) QueryRelativeMouseMode(h native.Handle) (bool, error) {
	return query(b, h, func(w *window) (bool, error) { return w.relativeMouse, nil })
}

func command(b *Backend, h native.Handle, fn func(*window) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.windowLocked(h)
	if err != nil {
		return err
	}
	return fn(w)
}

func (b *Backend) setTitle(win xproto.Window, title string) error {
	if err := ewmh.WmNameSet(b.XUtil, win, title); err != nil {
		return fmt.Errorf("failed to set _NET_WM_NAME: %w", err)
	}
	if err := icccm.WmNameSet(b.XUtil, win, title); err != nil {
		return fmt.Errorf("failed to set WM_NAME: %w", err)
	}
	return nil
}

func (b *Backend) SetTitle(h native.Handle, v string) error {
	return command(b, h, func(w *window) error { return b.setTitle(w.id(), v) })
}

// moveResize moves and resizes a window, preferring the EWMH request for
// better WM compatibility.
func (b *Backend) moveResize(w *window, r native.Rect) {
	if err := ewmh.MoveresizeWindow(b.XUtil, w.id(), r.X, r.Y, r.Width, r.Height); err != nil {
		// Fallback to direct window manipulation
		w.xwin.MoveResize(r.X, r.Y, r.Width, r.Height)
	}
}

func (b *Backend) SetPosition(h native.Handle, v native.Point) error {
	return command(b, h, func(w *window) error {
		r, err := b.geometryLocked(w.id())
		if err != nil {
			return err
		}
		r.X, r.Y = v.X, v.Y
		b.moveResize(w, r)
		return nil
	})
}

func (b *Backend) SetSize(h native.Handle, v native.Size) error {
	return command(b, h, func(w *window) error {
		if v.IsEmpty() {
			return fmt.Errorf("invalid window size %s", v)
		}
		r, err := b.geometryLocked(w.id())
		if err != nil {
			return err
		}
		r.Width, r.Height = v.Width, v.Height
		if !w.resizable {
			// Fixed-size windows pin min and max to their size, so the
			// hints have to follow before the WM accepts the resize.
			if err := b.writeNormalHints(w, r, false); err != nil {
				return err
			}
		}
		b.moveResize(w, r)
		return nil
	})
}

func (b *Backend) SetMinimumSize(h native.Handle, v native.Size) error {
	return command(b, h, func(w *window) error {
		w.min = v
		return b.writeNormalHints(w, w.geom, false)
	})
}

func (b *Backend) SetMaximumSize(h native.Handle, v native.Size) error {
	return command(b, h, func(w *window) error {
		w.max = v
		return b.writeNormalHints(w, w.geom, false)
	})
}

func (b *Backend) SetAspectRatio(h native.Handle, v native.AspectRatio) error {
	return command(b, h, func(w *window) error {
		w.aspect = native.AspectRatio{Min: copyPtr(v.Min), Max: copyPtr(v.Max)}
		return b.writeNormalHints(w, w.geom, false)
	})
}

func (b *Backend) SetResizable(h native.Handle, v bool) error {
	return command(b, h, func(w *window) error {
		w.resizable = v
		return b.writeNormalHints(w, w.geom, false)
	})
}

// normalHints builds WM_NORMAL_HINTS for w at geometry r. A window that is
// not resizable has min and max pinned to r's size.
func normalHints(w *window, r native.Rect, placed bool) *icccm.NormalHints {
	nh := &icccm.NormalHints{}
	if placed {
		nh.Flags |= icccm.SizeHintUSPosition | icccm.SizeHintUSSize
		nh.X, nh.Y = r.X, r.Y
		nh.Width, nh.Height = uint(r.Width), uint(r.Height)
	}
	lo, hi := w.min, w.max
	if !w.resizable {
		lo, hi = r.Size(), r.Size()
	}
	if lo.Width > 0 || lo.Height > 0 {
		nh.Flags |= icccm.SizeHintPMinSize
		nh.MinWidth, nh.MinHeight = uint(max(lo.Width, 0)), uint(max(lo.Height, 0))
	}
	if hi.Width > 0 || hi.Height > 0 {
		nh.Flags |= icccm.SizeHintPMaxSize
		nh.MaxWidth, nh.MaxHeight = unbounded(hi.Width), unbounded(hi.Height)
	}
	if w.aspect.Min != nil || w.aspect.Max != nil {
		nh.Flags |= icccm.SizeHintPAspect
		nh.MinAspectNum, nh.MinAspectDen = aspectFraction(w.aspect.Min, 0)
		nh.MaxAspectNum, nh.MaxAspectDen = aspectFraction(w.aspect.Max, 1<<30)
	}
	return nh
}

// unbounded maps a zero maximum dimension to the largest X11 size.
func unbounded(v int) uint {
	if v <= 0 {
		return 32767
	}
	return uint(v)
}

func aspectFraction(r *float32, open uint) (num, den uint) {
	if r == nil || *r <= 0 {
		return open, 1
	}
	return uint(*r*aspectScale + 0.5), aspectScale
}

func (b *Backend) writeNormalHints(w *window, r native.Rect, placed bool) error {
	if err := icccm.WmNormalHintsSet(b.XUtil, w.id(), normalHints(w, r, placed)); err != nil {
		return fmt.Errorf("failed to set WM_NORMAL_HINTS: %w", err)
	}
	return nil
}

func (b *Backend) writeHints(w *window, iconic bool) error {
	hints := &icccm.Hints{
		Flags:        icccm.HintInput | icccm.HintState,
		InitialState: icccm.StateNormal,
	}
	if w.focusable {
		hints.Input = 1
	}
	if iconic {
		hints.InitialState = icccm.StateIconic
	}
	if err := icccm.WmHintsSet(b.XUtil, w.id(), hints); err != nil {
		return fmt.Errorf("failed to set WM_HINTS: %w", err)
	}
	return nil
}

func (b *Backend) writeDecorations(w *window) error {
	hints := &motif.Hints{Flags: motif.HintDecorations, Decoration: motif.DecorationNone}
	if w.bordered {
		hints.Decoration = motif.DecorationAll
	}
	if err := motif.WmHintsSet(b.XUtil, w.id(), hints); err != nil {
		return fmt.Errorf("failed to set _MOTIF_WM_HINTS: %w", err)
	}
	return nil
}

func (b *Backend) SetBordered(h native.Handle, v bool) error {
	return command(b, h, func(w *window) error {
		w.bordered = v
		return b.writeDecorations(w)
	})
}

func (b *Backend) SetAlwaysOnTop(h native.Handle, v bool) error {
	return command(b, h, func(w *window) error {
		return b.requestState(w.id(), boolAction(v), atomAbove, "")
	})
}

func (b *Backend) SetVisible(h native.Handle, v bool) error {
	return command(b, h, func(w *window) error {
		if v {
			w.xwin.Map()
		} else {
			w.xwin.Unmap()
		}
		w.visible = v
		return nil
	})
}

func (b *Backend) SetFocusable(h native.Handle, v bool) error {
	return command(b, h, func(w *window) error {
		w.focusable = v
		return b.writeHints(w, false)
	})
}

func (b *Backend) SetWindowState(h native.Handle, v native.WindowState) error {
	return command(b, h, func(w *window) error {
		st := b.readNetState(w.id())
		switch v {
		case native.Minimised:
			return b.iconify(w.id())
		case native.Maximised:
			if st.minimized {
				w.xwin.Map()
			}
			return b.requestState(w.id(), stateAdd, atomMaxHorz, atomMaxVert)
		default:
			if st.minimized {
				w.xwin.Map()
				w.visible = true
				return b.activate(w.id())
			}
			return b.unmaximize(w.id())
		}
	})
}

func (b *Backend) SetFullscreen(h native.Handle, v bool) error {
	return command(b, h, func(w *window) error {
		if err := b.requestState(w.id(), boolAction(v), atomFullscreen, ""); err != nil {
			return err
		}
		if !v {
			b.releaseModesLocked(h)
			return nil
		}
		return b.applyFullscreenModeLocked(h, w)
	})
}

// SetFullscreenMode records the exclusive mode; a window already fullscreen
// switches to it immediately.
func (b *Backend) SetFullscreenMode(h native.Handle, v *native.DisplayMode) error {
	return command(b, h, func(w *window) error {
		w.fullscreenMode = copyPtr(v)
		if !b.readNetState(w.id()).fullscreen {
			return nil
		}
		return b.applyFullscreenModeLocked(h, w)
	})
}

func (b *Backend) applyFullscreenModeLocked(h native.Handle, w *window) error {
	if w.fullscreenMode == nil {
		b.releaseModesLocked(h)
		return nil
	}
	if w.fullscreenMode.DisplayIndex < 0 || w.fullscreenMode.DisplayIndex >= len(b.displays) {
		return fmt.Errorf("display index %d: %w", w.fullscreenMode.DisplayIndex, native.ErrNotFound)
	}
	return b.switchModeLocked(b.displays[w.fullscreenMode.DisplayIndex].ID, h, *w.fullscreenMode)
}

func (b *Backend) SetMouseRect(h native.Handle, v *native.Rect) error {
	return command(b, h, func(w *window) error {
		w.mouseRect = copyPtr(v)
		return nil
	})
}

func (b *Backend) SetOpacity(h native.Handle, v float32) error {
	return command(b, h, func(w *window) error {
		if v < 0 || v > 1 {
			return fmt.Errorf("opacity %g out of range", v)
		}
		if err := ewmh.WmWindowOpacitySet(b.XUtil, w.id(), float64(v)); err != nil {
			return fmt.Errorf("failed to set _NET_WM_WINDOW_OPACITY: %w", err)
		}
		w.opacity = v
		return nil
	})
}

func (b *Backend) SetTextInputParams(h native.Handle, v *native.TextInputParams) error {
	return command(b, h, func(w *window) error {
		w.textInput = copyPtr(v)
		return nil
	})
}

func (b *Backend) SetRelativeMouseMode(h native.Handle, v bool) error {
	return command(b, h, func(w *window) error {
		w.relativeMouse = v
		return nil
	})
}

func boolAction(v bool) uint32 {
	if v {
		return stateAdd
	}
	return stateRemove
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
