package window

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/winsync/internal/native"
	"github.com/1broseidon/winsync/internal/native/sim"
	"github.com/1broseidon/winsync/internal/platform"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFacade(t *testing.T, os platform.OS, s Settings) (*Facade, *sim.Backend) {
	t.Helper()
	b := sim.New()
	f, err := New(Config{Backend: b, OS: os, Settings: s, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f, b
}

// running creates the window and runs one frame so the creation events are
// drained.
func running(t *testing.T, f *Facade) {
	t.Helper()
	if err := f.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := f.PrepareForRun(); err != nil {
		t.Fatalf("PrepareForRun: %v", err)
	}
	frame(t, f)
}

func frame(t *testing.T, f *Facade) {
	t.Helper()
	if err := f.RunFrame(); err != nil {
		t.Fatalf("RunFrame: %v", err)
	}
}

func TestNewRejectsNilBackend(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error for nil backend")
	}
}

func TestCreatePlacesWindowFromSettings(t *testing.T) {
	f, b := newFacade(t, platform.Linux, Settings{})
	running(t, f)

	h := f.view.Handle()
	pos, err := b.QueryPosition(h)
	if err != nil {
		t.Fatalf("QueryPosition: %v", err)
	}
	if want := (native.Point{X: 320, Y: 180}); pos != want {
		t.Fatalf("position = %+v, want %+v", pos, want)
	}
	if got, want := f.Size(), (native.Size{Width: 1280, Height: 720}); got != want {
		t.Fatalf("Size() = %v, want %v", got, want)
	}
	if f.WindowMode() != Windowed || f.WindowState() != Normal {
		t.Fatalf("mode/state = %s/%s, want windowed/normal", f.WindowMode(), f.WindowState())
	}
	if !f.IsActive() {
		t.Fatalf("IsActive() = false after creation")
	}
	if f.Store().Title() != "winsync" {
		t.Fatalf("title = %q", f.Store().Title())
	}
}

func TestMaximisedBeforeCreateForcesResizable(t *testing.T) {
	s := DefaultSettings()
	s.Resizable = false
	s.State = Maximised
	f, b := newFacade(t, platform.Linux, s)
	running(t, f)

	if got := f.WindowState(); got != Maximised {
		t.Fatalf("WindowState() = %s, want maximised", got)
	}
	if !f.Store().Resizable() {
		t.Fatalf("store not resizable after maximise")
	}
	flags, err := b.QueryFlags(f.view.Handle())
	if err != nil {
		t.Fatalf("QueryFlags: %v", err)
	}
	if !flags.Resizable || !flags.Maximized {
		t.Fatalf("native flags = %+v, want resizable and maximized", flags)
	}
	if got, want := f.Size(), (native.Size{Width: 1920, Height: 1048}); got != want {
		t.Fatalf("Size() = %v, want usable area %v", got, want)
	}
}

func TestLifecycleErrors(t *testing.T) {
	f, b := newFacade(t, platform.Linux, Settings{})

	var lerr *LifecycleError
	if err := f.RunFrame(); !errors.As(err, &lerr) {
		t.Fatalf("RunFrame before create: err = %v, want LifecycleError", err)
	}
	if err := f.PrepareForRun(); !errors.As(err, &lerr) {
		t.Fatalf("PrepareForRun before create: err = %v, want LifecycleError", err)
	}
	if err := f.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := f.Create(); !errors.As(err, &lerr) || lerr.State != Created {
		t.Fatalf("second Create: err = %v, want LifecycleError in created", err)
	}
	if err := f.PrepareForRun(); err != nil {
		t.Fatalf("PrepareForRun: %v", err)
	}
	if err := f.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if b.Windows() != 0 {
		t.Fatalf("native window still alive after Destroy")
	}
	if err := f.Destroy(); !errors.As(err, &lerr) {
		t.Fatalf("second Destroy: err = %v, want LifecycleError", err)
	}

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, native.ErrDestroyed) {
			t.Fatalf("RunFrame after Destroy recovered %v, want ErrDestroyed", r)
		}
	}()
	_ = f.RunFrame()
}

func TestCreateFailure(t *testing.T) {
	f, b := newFacade(t, platform.Linux, Settings{})
	b.FailNext("create_window", errors.New("no visual"))

	var cerr *native.CreationError
	if err := f.Create(); !errors.As(err, &cerr) {
		t.Fatalf("Create: err = %v, want CreationError", err)
	}
	if f.Lifecycle() != Uninitialized {
		t.Fatalf("lifecycle = %s after failed create", f.Lifecycle())
	}
}

func TestIntentEqualToCurrentSchedulesNothing(t *testing.T) {
	f, _ := newFacade(t, platform.Linux, Settings{})
	running(t, f)

	f.SetWindowMode(Windowed)
	f.SetWindowState(Normal)
	f.SetTitle("winsync")
	f.SetWindowedSize(native.Size{Width: 1280, Height: 720})
	f.applyPending()
	if n := f.rec.PendingCommands(); n != 0 {
		t.Fatalf("PendingCommands() = %d, want 0", n)
	}
}

func TestExclusiveFullscreenRoundTrip(t *testing.T) {
	f, b := newFacade(t, platform.Linux, Settings{})
	running(t, f)

	f.SetSizeFullscreen(native.Size{Width: 800, Height: 600})
	f.SetWindowMode(Fullscreen)
	frame(t, f)

	if f.WindowMode() != Fullscreen || f.WindowState() != StateFullscreen {
		t.Fatalf("mode/state = %s/%s, want fullscreen/fullscreen", f.WindowMode(), f.WindowState())
	}
	if got, want := f.Size(), (native.Size{Width: 800, Height: 600}); got != want {
		t.Fatalf("Size() = %v, want %v", got, want)
	}
	if got := f.CurrentDisplayMode().Size; got != (native.Size{Width: 800, Height: 600}) {
		t.Fatalf("CurrentDisplayMode().Size = %v", got)
	}

	f.SetWindowMode(Windowed)
	frame(t, f)

	if f.WindowMode() != Windowed || f.WindowState() != Normal {
		t.Fatalf("mode/state = %s/%s, want windowed/normal", f.WindowMode(), f.WindowState())
	}
	if f.Store().FullscreenMode() != nil {
		t.Fatalf("fullscreen mode kept after leaving fullscreen")
	}
	if got := f.CurrentDisplayMode().Size; got != (native.Size{Width: 1920, Height: 1080}) {
		t.Fatalf("desktop mode not restored: %v", got)
	}
	pos, _ := b.QueryPosition(f.view.Handle())
	if want := (native.Point{X: 320, Y: 180}); pos != want {
		t.Fatalf("position = %+v, want %+v", pos, want)
	}
}

func TestBorderlessState(t *testing.T) {
	f, _ := newFacade(t, platform.Linux, Settings{})
	running(t, f)

	f.SetWindowState(FullscreenBorderless)
	frame(t, f)

	if f.WindowMode() != Borderless || f.WindowState() != FullscreenBorderless {
		t.Fatalf("mode/state = %s/%s, want borderless/fullscreen_borderless", f.WindowMode(), f.WindowState())
	}
	if !f.Store().Fullscreen() {
		t.Fatalf("native fullscreen flag not set")
	}
	if got, want := f.Size(), (native.Size{Width: 1920, Height: 1080}); got != want {
		t.Fatalf("Size() = %v, want %v", got, want)
	}
}

func TestUnborderedWindowIsBorderlessOnWindows(t *testing.T) {
	f, b := newFacade(t, platform.Windows, Settings{})
	running(t, f)

	f.SetWindowMode(Borderless)
	frame(t, f)

	if f.WindowMode() != Borderless || f.WindowState() != FullscreenBorderless {
		t.Fatalf("mode/state = %s/%s, want borderless/fullscreen_borderless", f.WindowMode(), f.WindowState())
	}
	if f.Store().Fullscreen() {
		t.Fatalf("native fullscreen used for borderless")
	}
	if f.Store().Bordered() {
		t.Fatalf("window still bordered")
	}
	if got := f.Position(); got != (native.Point{}) {
		t.Fatalf("Position() = %+v, want display origin", got)
	}

	f.SetWindowMode(Windowed)
	frame(t, f)

	if f.WindowMode() != Windowed || f.WindowState() != Normal {
		t.Fatalf("mode/state = %s/%s, want windowed/normal", f.WindowMode(), f.WindowState())
	}
	pos, _ := b.QueryPosition(f.view.Handle())
	if want := (native.Point{X: 320, Y: 180}); pos != want {
		t.Fatalf("position = %+v, want %+v", pos, want)
	}
	if got, want := f.Size(), (native.Size{Width: 1280, Height: 720}); got != want {
		t.Fatalf("Size() = %v, want %v", got, want)
	}
}

func TestRestoreFromMinimisedMaximised(t *testing.T) {
	f, _ := newFacade(t, platform.Linux, Settings{})
	running(t, f)

	var states []State
	f.OnWindowStateChanged(func(s State) { states = append(states, s) })

	for _, s := range []State{Maximised, Minimised, Normal} {
		f.SetWindowState(s)
		frame(t, f)
	}
	if diff := cmp.Diff([]State{Maximised, Minimised, Normal}, states); diff != "" {
		t.Fatalf("state changes (-want +got):\n%s", diff)
	}
	if got, want := f.Size(), (native.Size{Width: 1280, Height: 720}); got != want {
		t.Fatalf("Size() = %v, want %v", got, want)
	}
}

func TestUserMoveUpdatesWindowedSettingsWithoutCommands(t *testing.T) {
	f, b := newFacade(t, platform.Linux, Settings{})
	running(t, f)
	h := f.view.Handle()

	var moved []native.Point
	f.OnMoved(func(p native.Point) { moved = append(moved, p) })

	if err := b.DragTo(h, native.Point{X: 100, Y: 200}); err != nil {
		t.Fatalf("DragTo: %v", err)
	}
	frame(t, f)

	want := RelativePosition{X: 100.0 / 640.0, Y: 200.0 / 360.0}
	if got := f.windowedPosition.Get(); got != want {
		t.Fatalf("windowed position = %+v, want %+v", got, want)
	}
	if n := f.rec.PendingCommands(); n != 0 {
		t.Fatalf("PendingCommands() = %d after user move, want 0", n)
	}
	pos, _ := b.QueryPosition(h)
	if pos != (native.Point{X: 100, Y: 200}) {
		t.Fatalf("window moved back to %+v", pos)
	}
	if diff := cmp.Diff([]native.Point{{X: 100, Y: 200}}, moved); diff != "" {
		t.Fatalf("moved hook (-want +got):\n%s", diff)
	}
}

func TestHooks(t *testing.T) {
	f, b := newFacade(t, platform.Linux, Settings{})
	running(t, f)

	var resized, closed int
	f.OnResized(func() { resized++ })
	unsub := f.OnCloseRequested(func() { closed++ })

	f.SetWindowedSize(native.Size{Width: 800, Height: 600})
	if err := b.RequestClose(f.view.Handle()); err != nil {
		t.Fatalf("RequestClose: %v", err)
	}
	frame(t, f)

	if resized != 1 {
		t.Fatalf("resized hook ran %d times, want 1", resized)
	}
	if closed != 1 {
		t.Fatalf("close hook ran %d times, want 1", closed)
	}
	if b.Windows() != 1 {
		t.Fatalf("close request destroyed the window")
	}

	unsub()
	_ = b.RequestClose(f.view.Handle())
	frame(t, f)
	if closed != 1 {
		t.Fatalf("close hook ran after unsubscribe")
	}
}

func TestCommandFailureIsReported(t *testing.T) {
	f, b := newFacade(t, platform.Linux, Settings{})
	running(t, f)

	b.FailNext("set_title", errors.New("denied"))
	f.SetTitle("renamed")
	err := f.RunFrame()

	var cerr *native.CommandError
	if !errors.As(err, &cerr) {
		t.Fatalf("RunFrame: err = %v, want CommandError", err)
	}
	if got := f.Store().Title(); got != "winsync" {
		t.Fatalf("store title = %q, want last known value", got)
	}

	f.SetTitle("again")
	frame(t, f)
	if got := f.Store().Title(); got != "again" {
		t.Fatalf("store title = %q, want %q", got, "again")
	}
}

func TestWindowedPosition(t *testing.T) {
	bounds := native.Rect{X: 1920, Y: 0, Width: 2560, Height: 1440}
	size := native.Size{Width: 1280, Height: 720}
	tests := []struct {
		rel  RelativePosition
		want native.Point
	}{
		{RelativePosition{X: 0, Y: 0}, native.Point{X: 1920, Y: 0}},
		{RelativePosition{X: 1, Y: 1}, native.Point{X: 3200, Y: 720}},
		{RelativePosition{X: 0.5, Y: 0.5}, native.Point{X: 2560, Y: 360}},
		{RelativePosition{X: 0.25, Y: 0.1}, native.Point{X: 2240, Y: 72}},
	}
	for _, tt := range tests {
		if got := windowedPosition(bounds, size, tt.rel); got != tt.want {
			t.Errorf("windowedPosition(%+v) = %+v, want %+v", tt.rel, got, tt.want)
		}
	}
}

func TestPlatformRules(t *testing.T) {
	store := native.NewStore()
	_ = store.SetBordered(false)

	if got := rulesFor(platform.Windows).windowState(store); got != FullscreenBorderless {
		t.Fatalf("windows: state = %s, want fullscreen_borderless", got)
	}
	if got := rulesFor(platform.Linux).windowState(store); got != Normal {
		t.Fatalf("linux: state = %s, want normal", got)
	}

	_ = store.SetWindowState(native.Minimised)
	if got := rulesFor(platform.Windows).windowState(store); got != Minimised {
		t.Fatalf("minimised wins: state = %s", got)
	}
}

func TestSnapshot(t *testing.T) {
	f, _ := newFacade(t, platform.Linux, Settings{})
	running(t, f)

	s := f.Snapshot()
	if s.Lifecycle != Running || s.Title != "winsync" || s.Mode != Windowed {
		t.Fatalf("snapshot = %+v", s)
	}
	if s.Display.Name != "SIM-1" {
		t.Fatalf("snapshot display = %+v", s.Display)
	}
	if s.DisplayMode == "" {
		t.Fatalf("snapshot has no display mode")
	}
}
