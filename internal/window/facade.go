// Package window is the public window object. It derives framework-level
// properties from native window state and turns framework-level intents into
// native commands.
package window

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/1broseidon/winsync/internal/bindable"
	"github.com/1broseidon/winsync/internal/display"
	"github.com/1broseidon/winsync/internal/native"
	"github.com/1broseidon/winsync/internal/platform"
	"github.com/1broseidon/winsync/internal/reconcile"
)

// Config configures a Facade.
type Config struct {
	Backend  native.Backend
	OS       platform.OS
	Settings Settings
	Logger   *slog.Logger
}

// Facade owns one native window. Create, PrepareForRun, RunFrame and Destroy
// must be called from the goroutine that owns the window. Intent setters and
// getters are safe from any goroutine.
type Facade struct {
	backend   native.Backend
	rules     platformRules
	logger    *slog.Logger
	store     *native.Store
	view      *native.View
	displays  *display.Registry
	rec       *reconcile.Reconciler
	lifecycle atomic.Int32

	windowMode         *bindable.Value[Mode]
	windowState        *bindable.Value[State]
	currentDisplay     *bindable.Value[native.Display]
	currentDisplayMode *bindable.Value[native.DisplayMode]
	isActive           *bindable.Value[bool]
	cursorInWindow     *bindable.Value[bool]
	position           *bindable.Value[native.Point]
	size               *bindable.Value[native.Size]
	clientSize         *bindable.Value[native.Size]
	scale              *bindable.Value[float32]

	title            *bindable.Value[string]
	windowedSize     *bindable.Value[native.Size]
	windowedPosition *bindable.Value[RelativePosition]
	displayIndex     *bindable.Value[int]
	sizeFullscreen   *bindable.Value[native.Size]
	minSize          *bindable.Value[native.Size]
	maxSize          *bindable.Value[native.Size]
	resizable        *bindable.Value[bool]
	alwaysOnTop      *bindable.Value[bool]
	opacity          *bindable.Value[float32]

	// Staged mode and state, read by the commands as pending-or-current.
	// Only touched on the owning goroutine.
	pendingMode  *Mode
	pendingState *State

	mu      sync.Mutex
	intents intents

	resized        hooks[struct{}]
	moved          hooks[native.Point]
	stateChanged   hooks[State]
	closeRequested hooks[struct{}]

	derived []*reconcile.Derived

	cmdTitle      *reconcile.Command
	cmdLimits     *reconcile.Command
	cmdFlags      *reconcile.Command
	cmdSize       *reconcile.Command
	cmdPosition   *reconcile.Command
	cmdFullscreen *reconcile.Command
	cmdState      *reconcile.Command
}

// New builds a facade in the Uninitialized stage. Zero settings select
// DefaultSettings. The settings seed the framework-owned values; Settings.Mode
// and Settings.State are staged as intents and reach the native window at
// Create.
func New(cfg Config) (*Facade, error) {
	if cfg.Backend == nil {
		return nil, errors.New("window: nil backend")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := cfg.Settings
	if s == (Settings{}) {
		s = DefaultSettings()
	}
	f := &Facade{
		backend:  cfg.Backend,
		rules:    rulesFor(cfg.OS),
		logger:   logger,
		store:    native.NewStore(),
		displays: display.New(cfg.Backend, logger),
		rec:      reconcile.New(reconcile.Config{Logger: logger}),

		windowMode:         bindable.NewComparable(Windowed),
		windowState:        bindable.NewComparable(Normal),
		currentDisplay:     bindable.New(native.Display{}, native.Display.Equal),
		currentDisplayMode: bindable.NewComparable(native.DisplayMode{}),
		isActive:           bindable.NewComparable(false),
		cursorInWindow:     bindable.NewComparable(false),
		position:           bindable.NewComparable(native.Point{}),
		size:               bindable.NewComparable(native.Size{}),
		clientSize:         bindable.NewComparable(native.Size{}),
		scale:              bindable.NewComparable(float32(1)),

		title:            bindable.NewComparable(s.Title),
		windowedSize:     bindable.NewComparable(s.WindowedSize),
		windowedPosition: bindable.NewComparable(s.WindowedPosition),
		displayIndex:     bindable.NewComparable(s.DisplayIndex),
		sizeFullscreen:   bindable.NewComparable(s.SizeFullscreen),
		minSize:          bindable.NewComparable(s.MinSize),
		maxSize:          bindable.NewComparable(s.MaxSize),
		resizable:        bindable.NewComparable(s.Resizable),
		alwaysOnTop:      bindable.NewComparable(s.AlwaysOnTop),
		opacity:          bindable.NewComparable(s.Opacity),
	}
	f.registerDerived()
	f.registerCommands()
	if s.Mode != Windowed {
		f.SetWindowMode(s.Mode)
	}
	if s.State != Normal {
		f.SetWindowState(s.State)
	}
	return f, nil
}

// Lifecycle returns the current stage.
func (f *Facade) Lifecycle() Lifecycle {
	return Lifecycle(f.lifecycle.Load())
}

func (f *Facade) setLifecycle(l Lifecycle) {
	f.lifecycle.Store(int32(l))
}

// Create constructs the native window from the store, then seeds the live
// view from the store.
func (f *Facade) Create() error {
	if l := f.Lifecycle(); l != Uninitialized {
		return &LifecycleError{Op: "create", State: l}
	}
	if err := f.displays.Synchronize(); err != nil {
		return &native.CreationError{Err: err}
	}
	f.store.SetDisplay(f.targetDisplay())

	// Before the handle exists commands write into the store, which then
	// becomes the creation parameters.
	f.applyPending()
	if err := f.rec.FlushCommandUpdates(f.store); err != nil {
		f.logger.Warn("applying initial window settings", "error", err)
	}

	h, err := f.backend.CreateWindow(native.ParamsFrom(f.store))
	if err != nil {
		return &native.CreationError{Err: err}
	}
	f.view = native.NewView(f.backend, h, f.store, f.displays)
	if err := f.view.UpdateFrom(f.store); err != nil {
		f.logger.Warn("seeding native window", "handle", h, "error", err)
	}
	f.setLifecycle(Created)
	f.logger.Debug("native window created", "handle", h, "title", f.store.Title())
	return nil
}

// PrepareForRun refreshes the store once from the live view and computes
// every derived value.
func (f *Facade) PrepareForRun() error {
	if l := f.Lifecycle(); l != Created {
		return &LifecycleError{Op: "prepare for run", State: l}
	}
	f.store.UpdateFrom(f.view)
	f.rec.Invalidate(f.derived...)
	if err := f.rec.FlushDerivedUpdates(f.store); err != nil {
		return err
	}
	f.setLifecycle(Running)
	return nil
}

// RunFrame runs one reconciliation cycle: pending intents are applied and
// flushed, native events are drained into the store, derived values are
// recomputed and commands scheduled meanwhile are flushed. Command failures
// are returned joined; the store keeps its last-known values for them.
func (f *Facade) RunFrame() error {
	switch l := f.Lifecycle(); l {
	case Running:
	case Destroyed:
		panic(fmt.Errorf("window: run frame: %w", native.ErrDestroyed))
	default:
		return &LifecycleError{Op: "run frame", State: l}
	}

	f.applyPending()
	var errs []error
	if err := f.rec.FlushCommandUpdates(f.view); err != nil {
		errs = append(errs, err)
	}
	if err := f.pump(); err != nil {
		errs = append(errs, err)
	}
	if err := f.rec.FlushDerivedUpdates(f.store); err != nil {
		errs = append(errs, err)
	}
	if err := f.rec.FlushCommandUpdates(f.view); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Destroy releases the native window. Any further native use panics.
func (f *Facade) Destroy() error {
	l := f.Lifecycle()
	if l == Destroyed {
		return &LifecycleError{Op: "destroy", State: l}
	}
	f.setLifecycle(Destroyed)
	f.rec.Close()
	if f.view == nil {
		return nil
	}
	f.view.MarkDestroyed()
	if err := f.backend.DestroyWindow(f.view.Handle()); err != nil {
		return fmt.Errorf("destroy native window: %w", err)
	}
	return nil
}

// targetDisplay resolves the display the framework wants the window on,
// falling back to the primary display.
func (f *Facade) targetDisplay() native.Display {
	if d, err := f.displays.ByIndex(f.displayIndex.Get()); err == nil {
		return d
	}
	if d, err := f.displays.Primary(); err == nil {
		return d
	}
	return native.Display{}
}

// Store returns the last-known native state.
func (f *Facade) Store() native.Reader {
	return f.store
}

// Displays returns the tracked displays in index order.
func (f *Facade) Displays() []native.Display {
	return f.displays.Displays()
}

func (f *Facade) WindowMode() Mode { return f.windowMode.Get() }
func (f *Facade) WindowState() State { return f.windowState.Get() }
func (f *Facade) CurrentDisplay() native.Display { return f.currentDisplay.Get() }
func (f *Facade) CurrentDisplayMode() native.DisplayMode { return f.currentDisplayMode.Get() }
func (f *Facade) IsActive() bool { return f.isActive.Get() }
func (f *Facade) CursorInWindow() bool { return f.cursorInWindow.Get() }
func (f *Facade) Position() native.Point { return f.position.Get() }
func (f *Facade) Size() native.Size { return f.size.Get() }
func (f *Facade) ClientSize() native.Size { return f.clientSize.Get() }
func (f *Facade) Scale() float32 { return f.scale.Get() }

// Observables exposes the derived properties for change subscriptions.
type Observables struct {
	WindowMode         bindable.Observable
	WindowState        bindable.Observable
	CurrentDisplay     bindable.Observable
	CurrentDisplayMode bindable.Observable
	IsActive           bindable.Observable
	CursorInWindow     bindable.Observable
}

func (f *Facade) Observables() Observables {
	return Observables{
		WindowMode:         f.windowMode,
		WindowState:        f.windowState,
		CurrentDisplay:     f.currentDisplay,
		CurrentDisplayMode: f.currentDisplayMode,
		IsActive:           f.isActive,
		CursorInWindow:     f.cursorInWindow,
	}
}

// OnResized registers fn to run after the size, client size or scale was
// recomputed.
func (f *Facade) OnResized(fn func()) (unsubscribe func()) {
	return f.resized.add(func(struct{}) { fn() })
}

// OnMoved registers fn to run with the new position after a move.
func (f *Facade) OnMoved(fn func(native.Point)) (unsubscribe func()) {
	return f.moved.add(fn)
}

// OnWindowStateChanged registers fn to run when the derived state changes.
func (f *Facade) OnWindowStateChanged(fn func(State)) (unsubscribe func()) {
	return f.stateChanged.add(fn)
}

// OnCloseRequested registers fn to run when the user asks to close the
// window. Closing is left to the consumer.
func (f *Facade) OnCloseRequested(fn func()) (unsubscribe func()) {
	return f.closeRequested.add(func(struct{}) { fn() })
}

// Snapshot copies the current state.
func (f *Facade) Snapshot() Snapshot {
	d := f.currentDisplay.Get()
	s := Snapshot{
		Lifecycle:   f.Lifecycle(),
		Title:       f.store.Title(),
		Mode:        f.windowMode.Get(),
		State:       f.windowState.Get(),
		Position:    f.position.Get(),
		Size:        f.size.Get(),
		ClientSize:  f.clientSize.Get(),
		Scale:       f.scale.Get(),
		Display:     DisplayInfo{ID: d.ID, Index: d.Index, Name: d.Name, Bounds: d.Bounds},
		IsActive:    f.isActive.Get(),
		CursorIn:    f.cursorInWindow.Get(),
		Visible:     f.store.Visible(),
		Resizable:   f.store.Resizable(),
		Bordered:    f.store.Bordered(),
		AlwaysOnTop: f.store.AlwaysOnTop(),
		Opacity:     f.store.Opacity(),

		WindowedSize:     f.windowedSize.Get(),
		WindowedPosition: f.windowedPosition.Get(),
		DisplayIndex:     f.displayIndex.Get(),
		SizeFullscreen:   f.sizeFullscreen.Get(),
		MinSize:          f.minSize.Get(),
		MaxSize:          f.maxSize.Get(),
	}
	if m := f.currentDisplayMode.Get(); !m.Size.IsEmpty() {
		s.DisplayMode = m.String()
	}
	return s
}

type hook[T any] struct {
	id int
	fn func(T)
}

// hooks is an ordered list of consumer callbacks.
type hooks[T any] struct {
	mu   sync.Mutex
	list []hook[T]
	next int
}

func (h *hooks[T]) add(fn func(T)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.list = append(h.list, hook[T]{id: id, fn: fn})
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, e := range h.list {
			if e.id == id {
				h.list = append(h.list[:i], h.list[i+1:]...)
				return
			}
		}
	}
}

func (h *hooks[T]) fire(v T) {
	h.mu.Lock()
	list := append([]hook[T](nil), h.list...)
	h.mu.Unlock()
	for _, e := range list {
		e.fn(v)
	}
}
