package window

import (
	"fmt"
	"strings"

	"github.com/1broseidon/winsync/internal/native"
)

// Mode is the framework-level presentation of a window.
type Mode int

const (
	Windowed Mode = iota
	Borderless
	Fullscreen
)

var modeNames = map[Mode]string{
	Windowed:   "windowed",
	Borderless: "borderless",
	Fullscreen: "fullscreen",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses the name printed by Mode.String.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return Windowed, fmt.Errorf("unknown window mode %q (want windowed, borderless or fullscreen)", s)
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// State is the framework-level window state, combining the native
// minimised/maximised state with the fullscreen flags.
type State int

const (
	Normal State = iota
	StateFullscreen
	FullscreenBorderless
	Maximised
	Minimised
)

var stateNames = map[State]string{
	Normal:               "normal",
	StateFullscreen:      "fullscreen",
	FullscreenBorderless: "fullscreen_borderless",
	Maximised:            "maximised",
	Minimised:            "minimised",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState parses the name printed by State.String. "maximized" and
// "minimized" are accepted as well.
func ParseState(s string) (State, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	switch s {
	case "maximized":
		return Maximised, nil
	case "minimized":
		return Minimised, nil
	}
	for st, name := range stateNames {
		if name == s {
			return st, nil
		}
	}
	return Normal, fmt.Errorf("unknown window state %q", s)
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// modeFor returns the mode a state implies.
func modeFor(s State) (Mode, bool) {
	switch s {
	case Normal, Maximised:
		return Windowed, true
	case StateFullscreen:
		return Fullscreen, true
	case FullscreenBorderless:
		return Borderless, true
	default:
		return Windowed, false
	}
}

// Lifecycle is the stage of a facade's native window.
type Lifecycle int32

const (
	Uninitialized Lifecycle = iota
	Created
	Running
	Destroyed
)

func (l Lifecycle) String() string {
	switch l {
	case Uninitialized:
		return "uninitialized"
	case Created:
		return "created"
	case Running:
		return "running"
	case Destroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("Lifecycle(%d)", int(l))
	}
}

func (l Lifecycle) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Lifecycle) UnmarshalText(b []byte) error {
	for _, v := range []Lifecycle{Uninitialized, Created, Running, Destroyed} {
		if v.String() == string(b) {
			*l = v
			return nil
		}
	}
	return fmt.Errorf("unknown lifecycle %q", b)
}

// LifecycleError reports an operation called in the wrong lifecycle stage.
type LifecycleError struct {
	Op    string
	State Lifecycle
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("window: cannot %s while %s", e.Op, e.State)
}

// RelativePosition places a window on its display. 0 is the left/top edge,
// 1 the right/bottom edge, 0.5 centres.
type RelativePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Settings are the framework-owned values a window starts from.
type Settings struct {
	Title            string
	WindowedSize     native.Size
	WindowedPosition RelativePosition
	DisplayIndex     int
	Mode             Mode
	State            State
	SizeFullscreen   native.Size
	MinSize          native.Size
	MaxSize          native.Size
	Resizable        bool
	AlwaysOnTop      bool
	Opacity          float32
}

// DefaultSettings returns a centred, resizable 1280x720 window.
func DefaultSettings() Settings {
	return Settings{
		Title:            "winsync",
		WindowedSize:     native.Size{Width: 1280, Height: 720},
		WindowedPosition: RelativePosition{X: 0.5, Y: 0.5},
		Resizable:        true,
		Opacity:          1,
	}
}

// DisplayInfo is the part of a display descriptor reported in snapshots.
type DisplayInfo struct {
	ID     native.DisplayID `json:"id"`
	Index  int              `json:"index"`
	Name   string           `json:"name"`
	Bounds native.Rect      `json:"bounds"`
}

// Snapshot is a plain copy of the window's current state.
type Snapshot struct {
	Lifecycle   Lifecycle    `json:"lifecycle"`
	Title       string       `json:"title"`
	Mode        Mode         `json:"mode"`
	State       State        `json:"state"`
	Position    native.Point `json:"position"`
	Size        native.Size  `json:"size"`
	ClientSize  native.Size  `json:"client_size"`
	Scale       float32      `json:"scale"`
	Display     DisplayInfo  `json:"display"`
	DisplayMode string       `json:"display_mode"`
	IsActive    bool         `json:"is_active"`
	CursorIn    bool         `json:"cursor_in_window"`
	Visible     bool         `json:"visible"`
	Resizable   bool         `json:"resizable"`
	Bordered    bool         `json:"bordered"`
	AlwaysOnTop bool         `json:"always_on_top"`
	Opacity     float32      `json:"opacity"`

	WindowedSize     native.Size      `json:"windowed_size"`
	WindowedPosition RelativePosition `json:"windowed_position"`
	DisplayIndex     int              `json:"display_index"`
	SizeFullscreen   native.Size      `json:"size_fullscreen"`
	MinSize          native.Size      `json:"min_size"`
	MaxSize          native.Size      `json:"max_size"`
}
