package window

import "github.com/1broseidon/winsync/internal/native"

// intents are consumer requests staged until the next frame. Last write
// wins per field.
type intents struct {
	mode             *Mode
	state            *State
	displayIndex     *int
	windowedSize     *native.Size
	windowedPosition *RelativePosition
	sizeFullscreen   *native.Size
	minSize          *native.Size
	maxSize          *native.Size
	title            *string
	resizable        *bool
	alwaysOnTop      *bool
	opacity          *float32
}

func (f *Facade) stage(fn func(in *intents)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.intents)
}

func ptr[T any](v T) *T { return &v }

// SetWindowMode requests a window mode.
func (f *Facade) SetWindowMode(m Mode) {
	f.stage(func(in *intents) { in.mode = ptr(m) })
}

// SetWindowState requests a window state. The mode the state implies is
// requested with it.
func (f *Facade) SetWindowState(s State) {
	f.stage(func(in *intents) { in.state = ptr(s) })
}

// SetDisplayIndex moves the window to the display at index i.
func (f *Facade) SetDisplayIndex(i int) {
	f.stage(func(in *intents) { in.displayIndex = ptr(i) })
}

// SetWindowedSize sets the size used in windowed mode.
func (f *Facade) SetWindowedSize(s native.Size) {
	f.stage(func(in *intents) { in.windowedSize = ptr(s) })
}

// SetWindowedPosition places the window relative to its display; see
// RelativePosition.
func (f *Facade) SetWindowedPosition(x, y float64) {
	f.stage(func(in *intents) { in.windowedPosition = &RelativePosition{X: x, Y: y} })
}

// SetSizeFullscreen sets the resolution requested in exclusive fullscreen.
// A zero size selects the display's native resolution.
func (f *Facade) SetSizeFullscreen(s native.Size) {
	f.stage(func(in *intents) { in.sizeFullscreen = ptr(s) })
}

func (f *Facade) SetMinSize(s native.Size) {
	f.stage(func(in *intents) { in.minSize = ptr(s) })
}

func (f *Facade) SetMaxSize(s native.Size) {
	f.stage(func(in *intents) { in.maxSize = ptr(s) })
}

func (f *Facade) SetTitle(title string) {
	f.stage(func(in *intents) { in.title = ptr(title) })
}

func (f *Facade) SetResizable(v bool) {
	f.stage(func(in *intents) { in.resizable = ptr(v) })
}

func (f *Facade) SetAlwaysOnTop(v bool) {
	f.stage(func(in *intents) { in.alwaysOnTop = ptr(v) })
}

func (f *Facade) SetOpacity(v float32) {
	f.stage(func(in *intents) { in.opacity = ptr(v) })
}

// ApplySettings stages every value in s, as after a config reload.
func (f *Facade) ApplySettings(s Settings) {
	f.stage(func(in *intents) {
		in.title = ptr(s.Title)
		in.windowedSize = ptr(s.WindowedSize)
		in.windowedPosition = ptr(s.WindowedPosition)
		in.displayIndex = ptr(s.DisplayIndex)
		in.sizeFullscreen = ptr(s.SizeFullscreen)
		in.minSize = ptr(s.MinSize)
		in.maxSize = ptr(s.MaxSize)
		in.resizable = ptr(s.Resizable)
		in.alwaysOnTop = ptr(s.AlwaysOnTop)
		in.opacity = ptr(s.Opacity)
		in.mode = ptr(s.Mode)
		in.state = ptr(s.State)
	})
}

// applyPending moves staged intents into the framework-owned values. Values
// equal to the current ones change nothing and schedule nothing.
func (f *Facade) applyPending() {
	f.mu.Lock()
	in := f.intents
	f.intents = intents{}
	f.mu.Unlock()

	setIf(f.title.Set, in.title)
	setIf(f.minSize.Set, in.minSize)
	setIf(f.maxSize.Set, in.maxSize)
	setIf(f.resizable.Set, in.resizable)
	setIf(f.alwaysOnTop.Set, in.alwaysOnTop)
	setIf(f.opacity.Set, in.opacity)
	setIf(f.windowedSize.Set, in.windowedSize)
	setIf(f.windowedPosition.Set, in.windowedPosition)
	setIf(f.displayIndex.Set, in.displayIndex)
	setIf(f.sizeFullscreen.Set, in.sizeFullscreen)

	if in.mode != nil {
		f.requestMode(*in.mode)
	}
	if in.state != nil {
		f.requestState(*in.state)
	}
}

func setIf[T any](set func(T) bool, v *T) {
	if v != nil {
		set(*v)
	}
}

func (f *Facade) resolvedMode() Mode {
	if f.pendingMode != nil {
		return *f.pendingMode
	}
	return f.windowMode.Get()
}

func (f *Facade) resolvedState() State {
	if f.pendingState != nil {
		return *f.pendingState
	}
	return f.windowState.Get()
}

func (f *Facade) requestMode(m Mode) {
	if m == f.resolvedMode() {
		return
	}
	f.pendingMode = ptr(m)
	f.rec.Schedule(f.cmdFullscreen)
	if f.rules.unborderedIsBorderless && m == Windowed {
		f.rec.Schedule(f.cmdSize)
		f.rec.Schedule(f.cmdPosition)
	}
}

func (f *Facade) requestState(s State) {
	if s == f.resolvedState() {
		return
	}
	f.pendingState = ptr(s)
	f.rec.Schedule(f.cmdState)
	if m, ok := modeFor(s); ok && m != f.resolvedMode() {
		f.pendingMode = ptr(m)
		f.rec.Schedule(f.cmdFullscreen)
	}
}
