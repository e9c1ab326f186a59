// Package sim is an in-memory windowing system implementing native.Backend.
//
// It behaves like an asynchronous window manager: commands change state
// immediately but consumers only learn about most changes through queued
// events. It also reproduces platform behaviour the engine has to cope with,
// such as a restore out of a minimised-from-maximised state landing on
// maximised again.
package sim

import (
	"fmt"
	"math"
	"sync"

	"github.com/1broseidon/winsync/internal/native"
)

// DisplaySpec describes a simulated display.
type DisplaySpec struct {
	Name   string
	Bounds native.Rect
	// Usable defaults to Bounds.
	Usable native.Rect
	// Modes default to a single mode matching Bounds at 60Hz.
	Modes []native.DisplayMode
	// Scale defaults to 1.
	Scale float32
}

type display struct {
	id      native.DisplayID
	name    string
	bounds  native.Rect
	usable  native.Rect
	modes   []native.DisplayMode
	desktop native.DisplayMode
	current native.DisplayMode
	scale   float32
}

// Backend is the simulated windowing system. It is safe for concurrent use.
type Backend struct {
	mu sync.Mutex

	displays    []*display
	nextDisplay native.DisplayID

	windows    map[native.Handle]*window
	nextHandle native.Handle

	events   []native.Event
	failures map[string]error

	// RestoreReturnsToMaximised reproduces the platform behaviour where
	// restoring a window minimised out of a maximised state brings it back
	// maximised. Enabled by default.
	RestoreReturnsToMaximised bool
}

var _ native.Backend = (*Backend)(nil)

// DefaultDisplay is a 1920x1080 display with a few common modes.
func DefaultDisplay() DisplaySpec {
	return DisplaySpec{
		Name:   "SIM-1",
		Bounds: native.Rect{Width: 1920, Height: 1080},
		Usable: native.Rect{Y: 32, Width: 1920, Height: 1048},
		Modes: []native.DisplayMode{
			{PixelFormat: "XRGB8888", Size: native.Size{Width: 1920, Height: 1080}, BitDepth: 24, RefreshRate: 144},
			{PixelFormat: "XRGB8888", Size: native.Size{Width: 1920, Height: 1080}, BitDepth: 24, RefreshRate: 60},
			{PixelFormat: "XRGB8888", Size: native.Size{Width: 1280, Height: 720}, BitDepth: 24, RefreshRate: 60},
			{PixelFormat: "XRGB8888", Size: native.Size{Width: 800, Height: 600}, BitDepth: 24, RefreshRate: 60},
		},
		Scale: 1,
	}
}

// New creates a simulated system with the given displays, or a single
// DefaultDisplay when none are given. The first display is primary.
func New(specs ...DisplaySpec) *Backend {
	b := &Backend{
		windows:                   make(map[native.Handle]*window),
		failures:                  make(map[string]error),
		nextDisplay:               1,
		nextHandle:                1,
		RestoreReturnsToMaximised: true,
	}
	if len(specs) == 0 {
		specs = []DisplaySpec{DefaultDisplay()}
	}
	for _, spec := range specs {
		b.addDisplayLocked(spec)
	}
	return b
}

func (b *Backend) addDisplayLocked(spec DisplaySpec) *display {
	d := &display{
		id:     b.nextDisplay,
		name:   spec.Name,
		bounds: spec.Bounds,
		usable: spec.Usable,
		scale:  spec.Scale,
	}
	b.nextDisplay++
	if d.usable == (native.Rect{}) {
		d.usable = d.bounds
	}
	if d.scale <= 0 {
		d.scale = 1
	}
	if d.name == "" {
		d.name = fmt.Sprintf("SIM-%d", d.id)
	}
	modes := spec.Modes
	if len(modes) == 0 {
		modes = []native.DisplayMode{{PixelFormat: "XRGB8888", Size: d.bounds.Size(), BitDepth: 24, RefreshRate: 60}}
	}
	d.modes = append([]native.DisplayMode(nil), modes...)
	b.displays = append(b.displays, d)
	b.reindexLocked()

	d.desktop = d.modes[0]
	for _, m := range d.modes {
		if m.Size == d.bounds.Size() {
			d.desktop = m
			break
		}
	}
	d.current = d.desktop
	return d
}

// reindexLocked refreshes the display index carried by every mode.
func (b *Backend) reindexLocked() {
	for i, d := range b.displays {
		for j := range d.modes {
			d.modes[j].DisplayIndex = i
		}
		d.desktop.DisplayIndex = i
		d.current.DisplayIndex = i
	}
}

func (b *Backend) displayLocked(id native.DisplayID) (*display, int, bool) {
	for i, d := range b.displays {
		if d.id == id {
			return d, i, true
		}
	}
	return nil, -1, false
}

func (b *Backend) describeLocked(d *display, index int) native.Display {
	return native.Display{
		ID:           d.id,
		Index:        index,
		Name:         d.name,
		Bounds:       d.bounds,
		UsableBounds: d.usable,
		Modes:        append([]native.DisplayMode(nil), d.modes...),
	}
}

// FailNext makes the next call of op return err. Op names are the snake_case
// form of the Backend method, e.g. "create_window", "set_title",
// "query_flags", "displays".
func (b *Backend) FailNext(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[op] = err
}

func (b *Backend) failLocked(op string) error {
	if err, ok := b.failures[op]; ok {
		delete(b.failures, op)
		return err
	}
	return nil
}

func (b *Backend) pushLocked(kind native.EventKind, h native.Handle, id native.DisplayID) {
	b.events = append(b.events, native.Event{Kind: kind, Window: h, Display: id})
}

// PollEvents drains the event queue.
func (b *Backend) PollEvents() ([]native.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failLocked("poll_events"); err != nil {
		return nil, err
	}
	out := b.events
	b.events = nil
	return out, nil
}

// Pending returns the number of queued events.
func (b *Backend) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

func (b *Backend) Displays() ([]native.Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failLocked("displays"); err != nil {
		return nil, err
	}
	out := make([]native.Display, 0, len(b.displays))
	for i, d := range b.displays {
		out = append(out, b.describeLocked(d, i))
	}
	return out, nil
}

func (b *Backend) DisplayModes(id native.DisplayID) ([]native.DisplayMode, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failLocked("display_modes"); err != nil {
		return nil, err
	}
	d, _, ok := b.displayLocked(id)
	if !ok {
		return nil, fmt.Errorf("display %d: %w", id, native.ErrNotFound)
	}
	return append([]native.DisplayMode(nil), d.modes...), nil
}

func (b *Backend) CurrentDisplayMode(id native.DisplayID) (native.DisplayMode, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failLocked("current_display_mode"); err != nil {
		return native.DisplayMode{}, err
	}
	d, _, ok := b.displayLocked(id)
	if !ok {
		return native.DisplayMode{}, fmt.Errorf("display %d: %w", id, native.ErrNotFound)
	}
	return d.current, nil
}

func (b *Backend) PrimaryDisplay() (native.DisplayID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failLocked("primary_display"); err != nil {
		return 0, err
	}
	if len(b.displays) == 0 {
		return 0, fmt.Errorf("no displays: %w", native.ErrNotFound)
	}
	return b.displays[0].id, nil
}

// AddDisplay plugs in a new display and queues DisplayAdded.
func (b *Backend) AddDisplay(spec DisplaySpec) native.DisplayID {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.addDisplayLocked(spec)
	b.pushLocked(native.EventDisplayAdded, 0, d.id)
	return d.id
}

// RemoveDisplay unplugs a display. Windows on it move to the primary display.
func (b *Backend) RemoveDisplay(id native.DisplayID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, idx, ok := b.displayLocked(id)
	if !ok {
		return fmt.Errorf("display %d: %w", id, native.ErrNotFound)
	}
	if len(b.displays) == 1 {
		return fmt.Errorf("cannot remove the last display")
	}
	before := b.windowDisplaysLocked()
	b.displays = append(b.displays[:idx], b.displays[idx+1:]...)
	b.reindexLocked()
	b.pushLocked(native.EventDisplayRemoved, 0, id)

	primary := b.displays[0]
	for h, w := range b.windows {
		if before[h] != id {
			continue
		}
		w.pos = native.Point{X: primary.usable.X, Y: primary.usable.Y}
		b.pushLocked(native.EventMoved, h, 0)
		b.pushLocked(native.EventDisplayChanged, h, 0)
	}
	return nil
}

// SetCurrentMode switches a display's active mode and queues
// DisplayCurrentModeChanged.
func (b *Backend) SetCurrentMode(id native.DisplayID, mode native.DisplayMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, idx, ok := b.displayLocked(id)
	if !ok {
		return fmt.Errorf("display %d: %w", id, native.ErrNotFound)
	}
	mode.DisplayIndex = idx
	if !hasMode(d.modes, mode) {
		return fmt.Errorf("display %d does not support %s", id, mode)
	}
	if d.current == mode {
		return nil
	}
	d.current = mode
	b.pushLocked(native.EventDisplayCurrentModeChanged, 0, id)
	return nil
}

// SetDisplayScale changes the content scale of a display.
func (b *Backend) SetDisplayScale(id native.DisplayID, scale float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, _, ok := b.displayLocked(id)
	if !ok {
		return fmt.Errorf("display %d: %w", id, native.ErrNotFound)
	}
	if scale <= 0 || d.scale == scale {
		return nil
	}
	d.scale = scale
	b.pushLocked(native.EventDisplayContentScaleChanged, 0, id)
	for h, w := range b.windows {
		if b.displayOfLocked(w).id == id {
			b.pushLocked(native.EventDisplayScaleChanged, h, 0)
			b.pushLocked(native.EventPixelSizeChanged, h, 0)
		}
	}
	return nil
}

func (b *Backend) windowDisplaysLocked() map[native.Handle]native.DisplayID {
	out := make(map[native.Handle]native.DisplayID, len(b.windows))
	for h, w := range b.windows {
		out[h] = b.displayOfLocked(w).id
	}
	return out
}

// displayOfLocked returns the display containing the window centre, falling
// back to the primary display.
func (b *Backend) displayOfLocked(w *window) *display {
	c := native.Point{X: w.pos.X + w.size.Width/2, Y: w.pos.Y + w.size.Height/2}
	for _, d := range b.displays {
		if d.bounds.Contains(c) {
			return d
		}
	}
	return b.displays[0]
}

func hasMode(modes []native.DisplayMode, m native.DisplayMode) bool {
	for _, candidate := range modes {
		if candidate == m {
			return true
		}
	}
	return false
}

func scaled(s native.Size, scale float32) native.Size {
	return native.Size{
		Width:  int(math.Round(float64(float32(s.Width) * scale))),
		Height: int(math.Round(float64(float32(s.Height) * scale))),
	}
}
