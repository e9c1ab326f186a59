package native

import (
	"math"

	"github.com/1broseidon/winsync/internal/bindable"
)

const minPositive = math.SmallestNonzeroFloat32

// Store is the observable last-known copy of a window's state. It never talks
// to a backend; setters cannot fail.
type Store struct {
	title              *bindable.Value[string]
	position           *bindable.Value[Point]
	size               *bindable.Value[Size]
	sizeInPixels       *bindable.Value[Size]
	minimumSize        *bindable.Value[Size]
	maximumSize        *bindable.Value[Size]
	aspectRatio        *bindable.Value[AspectRatio]
	bordered           *bindable.Value[bool]
	resizable          *bindable.Value[bool]
	alwaysOnTop        *bindable.Value[bool]
	visible            *bindable.Value[bool]
	focusable          *bindable.Value[bool]
	windowState        *bindable.Value[WindowState]
	fullscreen         *bindable.Value[bool]
	fullscreenMode     *bindable.Value[*DisplayMode]
	display            *bindable.Value[Display]
	currentDisplayMode *bindable.Value[DisplayMode]
	pixelDensity       *bindable.Value[float32]
	displayScale       *bindable.Value[float32]
	safeArea           *bindable.Value[Rect]
	mouseRect          *bindable.Value[*Rect]
	opacity            *bindable.Value[float32]
	occluded           *bindable.Value[bool]
	inputFocus         *bindable.Value[bool]
	mouseFocus         *bindable.Value[bool]
	textInputParams    *bindable.Value[*TextInputParams]
	relativeMouseMode  *bindable.Value[bool]

	cells [fieldCount]bindable.Observable
}

var _ State = (*Store)(nil)

// NewStore returns a store holding the framework defaults.
func NewStore() *Store {
	s := &Store{
		title:              bindable.NewComparable(""),
		position:           bindable.NewComparable(Point{}),
		size:               bindable.NewComparable(Size{Width: 640, Height: 480}),
		sizeInPixels:       bindable.NewComparable(Size{}),
		minimumSize:        bindable.NewComparable(Size{}),
		maximumSize:        bindable.NewComparable(Size{}),
		aspectRatio:        bindable.New(AspectRatio{}, AspectRatio.Equal),
		bordered:           bindable.NewComparable(true),
		resizable:          bindable.NewComparable(false),
		alwaysOnTop:        bindable.NewComparable(false),
		visible:            bindable.NewComparable(true),
		focusable:          bindable.NewComparable(true),
		windowState:        bindable.NewComparable(Restored),
		fullscreen:         bindable.NewComparable(false),
		fullscreenMode:     bindable.New[*DisplayMode](nil, equalPtr[DisplayMode]),
		display:            bindable.New(Display{}, Display.Equal),
		currentDisplayMode: bindable.NewComparable(DisplayMode{}),
		pixelDensity:       bindable.NewComparable(float32(1)),
		displayScale:       bindable.NewComparable(float32(1)),
		safeArea:           bindable.NewComparable(Rect{}),
		mouseRect:          bindable.New[*Rect](nil, equalPtr[Rect]),
		opacity:            bindable.NewComparable(float32(1)),
		occluded:           bindable.NewComparable(false),
		inputFocus:         bindable.NewComparable(false),
		mouseFocus:         bindable.NewComparable(false),
		textInputParams:    bindable.New[*TextInputParams](nil, equalPtr[TextInputParams]),
		relativeMouseMode:  bindable.NewComparable(false),
	}
	s.cells = [fieldCount]bindable.Observable{
		FieldTitle:              s.title,
		FieldPosition:           s.position,
		FieldSize:               s.size,
		FieldSizeInPixels:       s.sizeInPixels,
		FieldMinimumSize:        s.minimumSize,
		FieldMaximumSize:        s.maximumSize,
		FieldAspectRatio:        s.aspectRatio,
		FieldBordered:           s.bordered,
		FieldResizable:          s.resizable,
		FieldAlwaysOnTop:        s.alwaysOnTop,
		FieldVisible:            s.visible,
		FieldFocusable:          s.focusable,
		FieldWindowState:        s.windowState,
		FieldFullscreen:         s.fullscreen,
		FieldFullscreenMode:     s.fullscreenMode,
		FieldDisplay:            s.display,
		FieldCurrentDisplayMode: s.currentDisplayMode,
		FieldPixelDensity:       s.pixelDensity,
		FieldDisplayScale:       s.displayScale,
		FieldSafeArea:           s.safeArea,
		FieldMouseRect:          s.mouseRect,
		FieldOpacity:            s.opacity,
		FieldOccluded:           s.occluded,
		FieldInputFocus:         s.inputFocus,
		FieldMouseFocus:         s.mouseFocus,
		FieldTextInputParams:    s.textInputParams,
		FieldRelativeMouseMode:  s.relativeMouseMode,
	}
	return s
}

// Observe returns the cell behind f.
func (s *Store) Observe(f Field) bindable.Observable {
	return s.cells[f]
}

// UpdateFrom copies every attribute of r into the store.
func (s *Store) UpdateFrom(r Reader) {
	s.textInputParams.Set(clonePtr(r.TextInputParams()))
	s.relativeMouseMode.Set(r.RelativeMouseMode())
	s.currentDisplayMode.Set(r.CurrentDisplayMode())
	s.display.Set(r.Display().clone())
	s.SetPixelDensity(r.PixelDensity())
	s.SetDisplayScale(r.DisplayScale())
	s.fullscreenMode.Set(clonePtr(r.FullscreenMode()))
	s.title.Set(r.Title())
	s.position.Set(r.Position())
	_ = s.SetSize(r.Size())
	s.safeArea.Set(r.SafeArea())
	s.aspectRatio.Set(r.AspectRatio().clone())
	s.sizeInPixels.Set(r.SizeInPixels())
	s.minimumSize.Set(r.MinimumSize())
	s.maximumSize.Set(r.MaximumSize())
	s.bordered.Set(r.Bordered())
	s.resizable.Set(r.Resizable())
	s.alwaysOnTop.Set(r.AlwaysOnTop())
	s.visible.Set(r.Visible())
	s.windowState.Set(r.WindowState())
	s.fullscreen.Set(r.Fullscreen())
	s.mouseRect.Set(clonePtr(r.MouseRect()))
	_ = s.SetOpacity(r.Opacity())
	s.focusable.Set(r.Focusable())
	s.occluded.Set(r.Occluded())
	s.inputFocus.Set(r.InputFocus())
	s.mouseFocus.Set(r.MouseFocus())
}

func (s *Store) Title() string { return s.title.Get() }
func (s *Store) Position() Point { return s.position.Get() }
func (s *Store) Size() Size { return s.size.Get() }
func (s *Store) SizeInPixels() Size { return s.sizeInPixels.Get() }
func (s *Store) MinimumSize() Size { return s.minimumSize.Get() }
func (s *Store) MaximumSize() Size { return s.maximumSize.Get() }
func (s *Store) AspectRatio() AspectRatio { return s.aspectRatio.Get().clone() }
func (s *Store) Bordered() bool { return s.bordered.Get() }
func (s *Store) Resizable() bool { return s.resizable.Get() }
func (s *Store) AlwaysOnTop() bool { return s.alwaysOnTop.Get() }
func (s *Store) Visible() bool { return s.visible.Get() }
func (s *Store) Focusable() bool { return s.focusable.Get() }
func (s *Store) WindowState() WindowState { return s.windowState.Get() }
func (s *Store) Fullscreen() bool { return s.fullscreen.Get() }
func (s *Store) FullscreenMode() *DisplayMode { return clonePtr(s.fullscreenMode.Get()) }
func (s *Store) Display() Display { return s.display.Get().clone() }
func (s *Store) CurrentDisplayMode() DisplayMode { return s.currentDisplayMode.Get() }
func (s *Store) PixelDensity() float32 { return s.pixelDensity.Get() }
func (s *Store) DisplayScale() float32 { return s.displayScale.Get() }
func (s *Store) SafeArea() Rect { return s.safeArea.Get() }
func (s *Store) MouseRect() *Rect { return clonePtr(s.mouseRect.Get()) }
func (s *Store) Opacity() float32 { return s.opacity.Get() }
func (s *Store) Occluded() bool { return s.occluded.Get() }
func (s *Store) InputFocus() bool { return s.inputFocus.Get() }
func (s *Store) MouseFocus() bool { return s.mouseFocus.Get() }
func (s *Store) TextInputParams() *TextInputParams { return clonePtr(s.textInputParams.Get()) }
func (s *Store) RelativeMouseMode() bool { return s.relativeMouseMode.Get() }

func (s *Store) SetTitle(v string) error {
	s.title.Set(v)
	return nil
}

func (s *Store) SetPosition(v Point) error {
	s.position.Set(v)
	return nil
}

// SetSize clamps to at least 1x1.
func (s *Store) SetSize(v Size) error {
	s.size.Set(Size{Width: max(v.Width, 1), Height: max(v.Height, 1)})
	return nil
}

func (s *Store) SetMinimumSize(v Size) error {
	s.minimumSize.Set(v)
	return nil
}

func (s *Store) SetMaximumSize(v Size) error {
	s.maximumSize.Set(v)
	return nil
}

func (s *Store) SetAspectRatio(v AspectRatio) error {
	s.aspectRatio.Set(v.clone())
	return nil
}

func (s *Store) SetBordered(v bool) error {
	s.bordered.Set(v)
	return nil
}

func (s *Store) SetResizable(v bool) error {
	s.resizable.Set(v)
	return nil
}

func (s *Store) SetAlwaysOnTop(v bool) error {
	s.alwaysOnTop.Set(v)
	return nil
}

func (s *Store) SetVisible(v bool) error {
	s.visible.Set(v)
	return nil
}

func (s *Store) SetFocusable(v bool) error {
	s.focusable.Set(v)
	return nil
}

func (s *Store) SetWindowState(v WindowState) error {
	s.windowState.Set(v)
	return nil
}

// SetFullscreen also clears the fullscreen mode when leaving fullscreen.
func (s *Store) SetFullscreen(v bool) error {
	if !v {
		s.fullscreenMode.Set(nil)
	}
	s.fullscreen.Set(v)
	return nil
}

func (s *Store) SetFullscreenMode(v *DisplayMode) error {
	s.fullscreenMode.Set(clonePtr(v))
	return nil
}

func (s *Store) SetMouseRect(v *Rect) error {
	s.mouseRect.Set(clonePtr(v))
	return nil
}

// SetOpacity clamps into [0, 1].
func (s *Store) SetOpacity(v float32) error {
	s.opacity.Set(clampOpacity(v))
	return nil
}

func (s *Store) SetTextInputParams(v *TextInputParams) error {
	s.textInputParams.Set(clonePtr(v))
	return nil
}

func (s *Store) SetRelativeMouseMode(v bool) error {
	s.relativeMouseMode.Set(v)
	return nil
}

// The setters below exist only on the store: these attributes are reported
// by the native side and cannot be commanded.

func (s *Store) SetSizeInPixels(v Size) {
	s.sizeInPixels.Set(v)
}

func (s *Store) SetDisplay(v Display) {
	s.display.Set(v.clone())
}

func (s *Store) SetCurrentDisplayMode(v DisplayMode) {
	s.currentDisplayMode.Set(v)
}

func (s *Store) SetPixelDensity(v float32) {
	s.pixelDensity.Set(max(v, minPositive))
}

func (s *Store) SetDisplayScale(v float32) {
	s.displayScale.Set(max(v, minPositive))
}

func (s *Store) SetSafeArea(v Rect) {
	s.safeArea.Set(v)
}

func (s *Store) SetOccluded(v bool) {
	s.occluded.Set(v)
}

func (s *Store) SetInputFocus(v bool) {
	s.inputFocus.Set(v)
}

func (s *Store) SetMouseFocus(v bool) {
	s.mouseFocus.Set(v)
}

func clampOpacity(v float32) float32 {
	switch {
	case v < 0 || v != v:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
