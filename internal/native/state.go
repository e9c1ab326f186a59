package native

// Reader exposes every externally visible window attribute.
type Reader interface {
	Title() string
	Position() Point
	Size() Size
	SizeInPixels() Size
	MinimumSize() Size
	MaximumSize() Size
	AspectRatio() AspectRatio

	Bordered() bool
	Resizable() bool
	AlwaysOnTop() bool
	Visible() bool
	Focusable() bool
	WindowState() WindowState
	Fullscreen() bool
	FullscreenMode() *DisplayMode

	Display() Display
	CurrentDisplayMode() DisplayMode
	PixelDensity() float32
	DisplayScale() float32
	SafeArea() Rect

	MouseRect() *Rect
	Opacity() float32

	Occluded() bool
	InputFocus() bool
	MouseFocus() bool

	TextInputParams() *TextInputParams
	RelativeMouseMode() bool
}

// Writer changes the settable attributes. Implementations backed by a native
// window return *CommandError on failure.
type Writer interface {
	SetTitle(v string) error
	SetPosition(v Point) error
	SetSize(v Size) error
	SetMinimumSize(v Size) error
	SetMaximumSize(v Size) error
	SetAspectRatio(v AspectRatio) error

	SetBordered(v bool) error
	SetResizable(v bool) error
	SetAlwaysOnTop(v bool) error
	SetVisible(v bool) error
	SetFocusable(v bool) error
	SetWindowState(v WindowState) error
	SetFullscreen(v bool) error
	SetFullscreenMode(v *DisplayMode) error

	SetMouseRect(v *Rect) error
	SetOpacity(v float32) error

	SetTextInputParams(v *TextInputParams) error
	SetRelativeMouseMode(v bool) error
}

// State is implemented by both the store and the live view. Consumers
// depend on it and never on the concrete type.
type State interface {
	Reader
	Writer
}

// Field names one attribute of the window state.
type Field int

const (
	FieldTitle Field = iota
	FieldPosition
	FieldSize
	FieldSizeInPixels
	FieldMinimumSize
	FieldMaximumSize
	FieldAspectRatio
	FieldBordered
	FieldResizable
	FieldAlwaysOnTop
	FieldVisible
	FieldFocusable
	FieldWindowState
	FieldFullscreen
	FieldFullscreenMode
	FieldDisplay
	FieldCurrentDisplayMode
	FieldPixelDensity
	FieldDisplayScale
	FieldSafeArea
	FieldMouseRect
	FieldOpacity
	FieldOccluded
	FieldInputFocus
	FieldMouseFocus
	FieldTextInputParams
	FieldRelativeMouseMode

	fieldCount
)

var fieldNames = [...]string{
	FieldTitle:              "title",
	FieldPosition:           "position",
	FieldSize:               "size",
	FieldSizeInPixels:       "size_in_pixels",
	FieldMinimumSize:        "minimum_size",
	FieldMaximumSize:        "maximum_size",
	FieldAspectRatio:        "aspect_ratio",
	FieldBordered:           "bordered",
	FieldResizable:          "resizable",
	FieldAlwaysOnTop:        "always_on_top",
	FieldVisible:            "visible",
	FieldFocusable:          "focusable",
	FieldWindowState:        "window_state",
	FieldFullscreen:         "fullscreen",
	FieldFullscreenMode:     "fullscreen_mode",
	FieldDisplay:            "display",
	FieldCurrentDisplayMode: "current_display_mode",
	FieldPixelDensity:       "pixel_density",
	FieldDisplayScale:       "display_scale",
	FieldSafeArea:           "safe_area",
	FieldMouseRect:          "mouse_rect",
	FieldOpacity:            "opacity",
	FieldOccluded:           "occluded",
	FieldInputFocus:         "input_focus",
	FieldMouseFocus:         "mouse_focus",
	FieldTextInputParams:    "text_input_params",
	FieldRelativeMouseMode:  "relative_mouse_mode",
}

func (f Field) String() string {
	if f >= 0 && f < fieldCount {
		return fieldNames[f]
	}
	return "unknown"
}

// Fields returns every field in declaration order.
func Fields() []Field {
	out := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		out = append(out, f)
	}
	return out
}

// Diff returns the fields whose values differ between a and b.
func Diff(a, b Reader) []Field {
	var out []Field
	check := func(f Field, equal bool) {
		if !equal {
			out = append(out, f)
		}
	}
	check(FieldTitle, a.Title() == b.Title())
	check(FieldPosition, a.Position() == b.Position())
	check(FieldSize, a.Size() == b.Size())
	check(FieldSizeInPixels, a.SizeInPixels() == b.SizeInPixels())
	check(FieldMinimumSize, a.MinimumSize() == b.MinimumSize())
	check(FieldMaximumSize, a.MaximumSize() == b.MaximumSize())
	check(FieldAspectRatio, a.AspectRatio().Equal(b.AspectRatio()))
	check(FieldBordered, a.Bordered() == b.Bordered())
	check(FieldResizable, a.Resizable() == b.Resizable())
	check(FieldAlwaysOnTop, a.AlwaysOnTop() == b.AlwaysOnTop())
	check(FieldVisible, a.Visible() == b.Visible())
	check(FieldFocusable, a.Focusable() == b.Focusable())
	check(FieldWindowState, a.WindowState() == b.WindowState())
	check(FieldFullscreen, a.Fullscreen() == b.Fullscreen())
	check(FieldFullscreenMode, equalPtr(a.FullscreenMode(), b.FullscreenMode()))
	check(FieldDisplay, a.Display().Equal(b.Display()))
	check(FieldCurrentDisplayMode, a.CurrentDisplayMode() == b.CurrentDisplayMode())
	check(FieldPixelDensity, a.PixelDensity() == b.PixelDensity())
	check(FieldDisplayScale, a.DisplayScale() == b.DisplayScale())
	check(FieldSafeArea, a.SafeArea() == b.SafeArea())
	check(FieldMouseRect, equalPtr(a.MouseRect(), b.MouseRect()))
	check(FieldOpacity, a.Opacity() == b.Opacity())
	check(FieldOccluded, a.Occluded() == b.Occluded())
	check(FieldInputFocus, a.InputFocus() == b.InputFocus())
	check(FieldMouseFocus, a.MouseFocus() == b.MouseFocus())
	check(FieldTextInputParams, equalPtr(a.TextInputParams(), b.TextInputParams()))
	check(FieldRelativeMouseMode, a.RelativeMouseMode() == b.RelativeMouseMode())
	return out
}
