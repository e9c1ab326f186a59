package window

import (
	"github.com/1broseidon/winsync/internal/bindable"
	"github.com/1broseidon/winsync/internal/native"
	"github.com/1broseidon/winsync/internal/platform"
	"github.com/1broseidon/winsync/internal/reconcile"
)

// platformRules holds the derivation rules that differ per platform.
type platformRules struct {
	// unborderedIsBorderless is set where borderless fullscreen is made by
	// removing the border of a display-sized window instead of through a
	// native fullscreen flag.
	unborderedIsBorderless bool
}

func rulesFor(os platform.OS) platformRules {
	return platformRules{unborderedIsBorderless: os == platform.Windows}
}

func (r platformRules) windowState(s native.Reader) State {
	switch s.WindowState() {
	case native.Minimised:
		return Minimised
	case native.Maximised:
		return Maximised
	}
	if r.unborderedIsBorderless && !s.Bordered() {
		return FullscreenBorderless
	}
	if s.Fullscreen() {
		if s.FullscreenMode() == nil {
			return FullscreenBorderless
		}
		return StateFullscreen
	}
	return Normal
}

func (r platformRules) windowMode(s native.Reader) Mode {
	if r.unborderedIsBorderless && !s.Bordered() {
		return Borderless
	}
	if s.Fullscreen() {
		if s.FullscreenMode() == nil {
			return Borderless
		}
		return Fullscreen
	}
	return Windowed
}

func (f *Facade) registerDerived() {
	add := func(name string, fn func(native.Reader), fields ...native.Field) {
		d := reconcile.NewDerived(name, fn)
		deps := make([]bindable.Observable, 0, len(fields))
		for _, field := range fields {
			deps = append(deps, f.store.Observe(field))
		}
		f.rec.RegisterNativeDependency(d, deps...)
		f.derived = append(f.derived, d)
	}

	stateDeps := []native.Field{native.FieldWindowState, native.FieldFullscreen, native.FieldFullscreenMode}
	modeDeps := []native.Field{native.FieldFullscreen, native.FieldFullscreenMode}
	if f.rules.unborderedIsBorderless {
		stateDeps = append(stateDeps, native.FieldBordered)
		modeDeps = append(modeDeps, native.FieldBordered)
	}

	add("cursor_in_window", f.updateCursorInWindow, native.FieldMouseFocus)
	add("window_state", f.updateWindowState, stateDeps...)
	add("is_active", f.updateIsActive, native.FieldInputFocus)
	add("window_mode", f.updateWindowMode, modeDeps...)
	add("current_display", f.updateCurrentDisplay, native.FieldDisplay)
	add("current_display_mode", f.updateCurrentDisplayMode, native.FieldCurrentDisplayMode)
	add("size", f.updateSize, native.FieldPixelDensity, native.FieldSize, native.FieldSizeInPixels)
	add("position", f.updatePosition, native.FieldPosition)
	add("windowed_settings", f.trackWindowed,
		native.FieldSize, native.FieldPosition, native.FieldDisplay,
		native.FieldWindowState, native.FieldFullscreen, native.FieldBordered)
}

func (f *Facade) updateCursorInWindow(s native.Reader) {
	f.cursorInWindow.Set(s.MouseFocus())
}

func (f *Facade) updateIsActive(s native.Reader) {
	f.isActive.Set(s.InputFocus())
}

func (f *Facade) updateWindowState(s native.Reader) {
	state := f.rules.windowState(s)
	if f.windowState.Set(state) {
		f.stateChanged.fire(state)
	}
}

func (f *Facade) updateWindowMode(s native.Reader) {
	f.windowMode.Set(f.rules.windowMode(s))
}

func (f *Facade) updateCurrentDisplay(s native.Reader) {
	f.currentDisplay.Set(s.Display())
}

func (f *Facade) updateCurrentDisplayMode(s native.Reader) {
	f.currentDisplayMode.Set(s.CurrentDisplayMode())
}

func (f *Facade) updateSize(s native.Reader) {
	f.size.Set(s.Size())
	f.clientSize.Set(s.SizeInPixels())
	f.scale.Set(s.PixelDensity())
	f.resized.fire(struct{}{})
}

func (f *Facade) updatePosition(s native.Reader) {
	p := s.Position()
	f.position.Set(p)
	f.moved.fire(p)
}

// trackWindowed follows user moves and resizes of a normal window so the
// windowed settings describe where the window actually is. It runs inside
// the derived pass, so the changes it makes never turn into commands.
func (f *Facade) trackWindowed(s native.Reader) {
	if f.rules.windowState(s) != Normal {
		return
	}
	d := s.Display()
	size := s.Size()
	f.windowedSize.Set(size)
	f.displayIndex.Set(d.Index)
	if d.Bounds.Size().IsEmpty() {
		return
	}
	rel := f.windowedPosition.Get()
	pos := s.Position()
	if span := d.Bounds.Width - size.Width; span != 0 {
		rel.X = float64(pos.X-d.Bounds.X) / float64(span)
	}
	if span := d.Bounds.Height - size.Height; span != 0 {
		rel.Y = float64(pos.Y-d.Bounds.Y) / float64(span)
	}
	f.windowedPosition.Set(rel)
}
