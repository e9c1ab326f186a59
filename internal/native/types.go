// Package native models the state of a native window and the abstract
// capability set a windowing backend has to provide.
package native

import "fmt"

// Handle identifies a native window inside a Backend.
type Handle uint64

// DisplayID identifies a display inside a Backend. IDs are stable within a
// session but not across hardware changes.
type DisplayID uint32

type Point struct {
	X int
	Y int
}

type Size struct {
	Width  int
	Height int
}

func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Rect is a rectangle in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) Location() Point {
	return Point{X: r.X, Y: r.Y}
}

func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// WindowState is the native minimised/maximised state of a window.
type WindowState int

const (
	Restored WindowState = iota
	Minimised
	Maximised
)

func (s WindowState) String() string {
	switch s {
	case Restored:
		return "restored"
	case Minimised:
		return "minimised"
	case Maximised:
		return "maximised"
	default:
		return fmt.Sprintf("WindowState(%d)", int(s))
	}
}

// AspectRatio constrains width/height. A nil bound is no constraint.
type AspectRatio struct {
	Min *float32
	Max *float32
}

func (a AspectRatio) Equal(o AspectRatio) bool {
	return equalPtr(a.Min, o.Min) && equalPtr(a.Max, o.Max)
}

func (a AspectRatio) clone() AspectRatio {
	return AspectRatio{Min: clonePtr(a.Min), Max: clonePtr(a.Max)}
}

// Ratio returns a pointer to r for use in AspectRatio literals.
func Ratio(r float32) *float32 {
	return &r
}

type TextInputType int

const (
	TextInputText TextInputType = iota
	TextInputName
	TextInputEmail
	TextInputUsername
	TextInputPasswordHidden
	TextInputPasswordVisible
	TextInputNumber
)

type Capitalization int

const (
	CapitalizeNone Capitalization = iota
	CapitalizeSentences
	CapitalizeWords
	CapitalizeLetters
)

// TextInputParams describes an active text input session. A nil value means
// text input is stopped.
type TextInputParams struct {
	Type           TextInputType
	Capitalization Capitalization
	Autocorrect    bool
	Multiline      bool
	Area           Rect
	CursorOffset   int
}

// DisplayMode is an immutable video mode of a display.
type DisplayMode struct {
	PixelFormat  string
	Size         Size
	BitDepth     int
	RefreshRate  float32
	DisplayIndex int
}

func (m DisplayMode) String() string {
	return fmt.Sprintf("%s@%gHz (%s, display %d)", m.Size, m.RefreshRate, m.PixelFormat, m.DisplayIndex)
}

// Display describes a physical display.
type Display struct {
	ID           DisplayID
	Index        int
	Name         string
	Bounds       Rect
	UsableBounds Rect
	Modes        []DisplayMode
}

func (d Display) Equal(o Display) bool {
	if d.ID != o.ID || d.Index != o.Index || d.Name != o.Name || d.Bounds != o.Bounds || d.UsableBounds != o.UsableBounds {
		return false
	}
	if len(d.Modes) != len(o.Modes) {
		return false
	}
	for i := range d.Modes {
		if d.Modes[i] != o.Modes[i] {
			return false
		}
	}
	return true
}

func (d Display) clone() Display {
	if d.Modes != nil {
		d.Modes = append([]DisplayMode(nil), d.Modes...)
	}
	return d
}

// Flags is the set of boolean window attributes reported in one query.
type Flags struct {
	Bordered    bool
	Resizable   bool
	AlwaysOnTop bool
	Visible     bool
	Focusable   bool
	Fullscreen  bool
	Minimized   bool
	Maximized   bool
	Occluded    bool
	InputFocus  bool
	MouseFocus  bool
}

// WindowState derives the enum from the flags. Minimised wins when a backend
// reports both.
func (f Flags) WindowState() WindowState {
	switch {
	case f.Minimized:
		return Minimised
	case f.Maximized:
		return Maximised
	default:
		return Restored
	}
}

// CreateParams are the properties a window is created with.
type CreateParams struct {
	Title       string
	Position    Point
	Size        Size
	Bordered    bool
	Resizable   bool
	AlwaysOnTop bool
	Visible     bool
	Focusable   bool
	Fullscreen  bool
	State       WindowState
	Display     DisplayID
}

// ParamsFrom builds creation parameters from a state snapshot.
func ParamsFrom(r Reader) CreateParams {
	return CreateParams{
		Title:       r.Title(),
		Position:    r.Position(),
		Size:        r.Size(),
		Bordered:    r.Bordered(),
		Resizable:   r.Resizable(),
		AlwaysOnTop: r.AlwaysOnTop(),
		Visible:     r.Visible(),
		Focusable:   r.Focusable(),
		Fullscreen:  r.Fullscreen(),
		State:       r.WindowState(),
		Display:     r.Display().ID,
	}
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
