package native

// Backend is the abstract native windowing capability set. Implementations
// are driven from a single goroutine; they are not required to be safe for
// concurrent use.
type Backend interface {
	CreateWindow(p CreateParams) (Handle, error)
	DestroyWindow(h Handle) error
	PollEvents() ([]Event, error)

	Displays() ([]Display, error)
	DisplayModes(id DisplayID) ([]DisplayMode, error)
	CurrentDisplayMode(id DisplayID) (DisplayMode, error)
	PrimaryDisplay() (DisplayID, error)

	QueryTitle(h Handle) (string, error)
	QueryPosition(h Handle) (Point, error)
	QuerySize(h Handle) (Size, error)
	QuerySizeInPixels(h Handle) (Size, error)
	QueryMinimumSize(h Handle) (Size, error)
	QueryMaximumSize(h Handle) (Size, error)
	QueryAspectRatio(h Handle) (AspectRatio, error)
	QueryFlags(h Handle) (Flags, error)
	QueryOpacity(h Handle) (float32, error)
	QueryMouseRect(h Handle) (*Rect, error)
	QueryDisplayID(h Handle) (DisplayID, error)
	QueryFullscreenMode(h Handle) (*DisplayMode, error)
	QueryPixelDensity(h Handle) (float32, error)
	QueryDisplayScale(h Handle) (float32, error)
	QuerySafeArea(h Handle) (Rect, error)
	QueryTextInputParams(h Handle) (*TextInputParams, error)
	QueryRelativeMouseMode(h Handle) (bool, error)

	SetTitle(h Handle, v string) error
	SetPosition(h Handle, v Point) error
	SetSize(h Handle, v Size) error
	SetMinimumSize(h Handle, v Size) error
	SetMaximumSize(h Handle, v Size) error
	SetAspectRatio(h Handle, v AspectRatio) error
	SetBordered(h Handle, v bool) error
	SetResizable(h Handle, v bool) error
	SetAlwaysOnTop(h Handle, v bool) error
	SetVisible(h Handle, v bool) error
	SetFocusable(h Handle, v bool) error
	SetWindowState(h Handle, v WindowState) error
	SetFullscreen(h Handle, v bool) error
	SetFullscreenMode(h Handle, v *DisplayMode) error
	SetMouseRect(h Handle, v *Rect) error
	SetOpacity(h Handle, v float32) error
	SetTextInputParams(h Handle, v *TextInputParams) error
	SetRelativeMouseMode(h Handle, v bool) error
}

// DisplayResolver resolves a display id to its descriptor.
type DisplayResolver interface {
	Resolve(id DisplayID) (Display, error)
}
