package sim

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/winsync/internal/native"
)

func kinds(events []native.Event) []native.EventKind {
	out := make([]native.EventKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

func create(t *testing.T, b *Backend, p native.CreateParams) native.Handle {
	t.Helper()
	if p.Size.IsEmpty() {
		p.Size = native.Size{Width: 640, Height: 480}
	}
	h, err := b.CreateWindow(p)
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	return h
}

func drain(t *testing.T, b *Backend) []native.EventKind {
	t.Helper()
	events, err := b.PollEvents()
	if err != nil {
		t.Fatalf("PollEvents: %v", err)
	}
	return kinds(events)
}

func TestCreateWindowQueuesShowAndFocus(t *testing.T) {
	b := New()
	create(t, b, native.CreateParams{Visible: true, Focusable: true})

	want := []native.EventKind{native.EventShown, native.EventExposed, native.EventFocusGained}
	if diff := cmp.Diff(want, drain(t, b)); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	if b.Pending() != 0 {
		t.Fatalf("expected queue drained, %d pending", b.Pending())
	}
}

func TestCreateWindowRejectsEmptySize(t *testing.T) {
	b := New()
	if _, err := b.CreateWindow(native.CreateParams{Size: native.Size{Width: 0, Height: 10}}); err == nil {
		t.Fatalf("expected error for empty size")
	}
}

func TestMaximiseRequiresResizable(t *testing.T) {
	b := New()
	h := create(t, b, native.CreateParams{Visible: true})
	drain(t, b)

	if err := b.SetWindowState(h, native.Maximised); err != nil {
		t.Fatalf("SetWindowState: %v", err)
	}
	flags, _ := b.QueryFlags(h)
	if flags.Maximized {
		t.Fatalf("non-resizable window was maximised")
	}

	if err := b.SetResizable(h, true); err != nil {
		t.Fatalf("SetResizable: %v", err)
	}
	if err := b.SetWindowState(h, native.Maximised); err != nil {
		t.Fatalf("SetWindowState: %v", err)
	}
	flags, _ = b.QueryFlags(h)
	if !flags.Maximized {
		t.Fatalf("resizable window was not maximised")
	}
	size, _ := b.QuerySize(h)
	if size != (native.Size{Width: 1920, Height: 1048}) {
		t.Fatalf("maximised size = %s, want usable bounds", size)
	}
}

func TestRestoreFromMinimisedMaximisedLandsOnMaximised(t *testing.T) {
	b := New()
	h := create(t, b, native.CreateParams{Visible: true, Resizable: true, State: native.Maximised})
	if err := b.SetWindowState(h, native.Minimised); err != nil {
		t.Fatalf("minimise: %v", err)
	}
	if err := b.SetWindowState(h, native.Restored); err != nil {
		t.Fatalf("restore: %v", err)
	}
	flags, _ := b.QueryFlags(h)
	if got := flags.WindowState(); got != native.Maximised {
		t.Fatalf("first restore landed on %s, want maximised", got)
	}
	if err := b.SetWindowState(h, native.Restored); err != nil {
		t.Fatalf("restore: %v", err)
	}
	flags, _ = b.QueryFlags(h)
	if got := flags.WindowState(); got != native.Restored {
		t.Fatalf("second restore landed on %s, want restored", got)
	}
	size, _ := b.QuerySize(h)
	if size != (native.Size{Width: 640, Height: 480}) {
		t.Fatalf("restored size = %s, want 640x480", size)
	}
}

func TestRestoreQuirkDisabled(t *testing.T) {
	b := New()
	b.RestoreReturnsToMaximised = false
	h := create(t, b, native.CreateParams{Resizable: true, State: native.Maximised})
	_ = b.SetWindowState(h, native.Minimised)
	_ = b.SetWindowState(h, native.Restored)
	flags, _ := b.QueryFlags(h)
	if got := flags.WindowState(); got != native.Restored {
		t.Fatalf("restore landed on %s, want restored", got)
	}
}

func TestSizeIsConstrainedByMinimumAndMaximum(t *testing.T) {
	b := New()
	h := create(t, b, native.CreateParams{})
	_ = b.SetMinimumSize(h, native.Size{Width: 700, Height: 500})
	size, _ := b.QuerySize(h)
	if size != (native.Size{Width: 700, Height: 500}) {
		t.Fatalf("size after min = %s", size)
	}
	_ = b.SetMaximumSize(h, native.Size{Width: 800, Height: 600})
	_ = b.SetSize(h, native.Size{Width: 1000, Height: 1000})
	size, _ = b.QuerySize(h)
	if size != (native.Size{Width: 800, Height: 600}) {
		t.Fatalf("size after max = %s", size)
	}
}

func TestExclusiveFullscreenChangesDisplayMode(t *testing.T) {
	b := New()
	h := create(t, b, native.CreateParams{Visible: true})
	drain(t, b)

	modes, _ := b.DisplayModes(1)
	mode := modes[2]
	if err := b.SetFullscreenMode(h, &mode); err != nil {
		t.Fatalf("SetFullscreenMode: %v", err)
	}
	if err := b.SetFullscreen(h, true); err != nil {
		t.Fatalf("SetFullscreen: %v", err)
	}
	current, _ := b.CurrentDisplayMode(1)
	if current != mode {
		t.Fatalf("current mode = %s, want %s", current, mode)
	}
	got, _ := b.QueryFullscreenMode(h)
	if got == nil || *got != mode {
		t.Fatalf("fullscreen mode = %v, want %s", got, mode)
	}

	_ = b.SetFullscreen(h, false)
	current, _ = b.CurrentDisplayMode(1)
	if current.Size != (native.Size{Width: 1920, Height: 1080}) {
		t.Fatalf("desktop mode not restored: %s", current)
	}
	if got, _ := b.QueryFullscreenMode(h); got != nil {
		t.Fatalf("fullscreen mode reported while windowed: %s", got)
	}
	size, _ := b.QuerySize(h)
	if size != (native.Size{Width: 640, Height: 480}) {
		t.Fatalf("windowed size not restored: %s", size)
	}
}

func TestSetFullscreenModeRejectsUnknownMode(t *testing.T) {
	b := New()
	h := create(t, b, native.CreateParams{})
	mode := native.DisplayMode{Size: native.Size{Width: 3, Height: 3}, RefreshRate: 1}
	if err := b.SetFullscreenMode(h, &mode); err == nil {
		t.Fatalf("expected error for unsupported mode")
	}
}

func TestRemoveDisplayMovesWindows(t *testing.T) {
	second := DisplaySpec{Name: "SIM-2", Bounds: native.Rect{X: 1920, Width: 1280, Height: 1024}}
	b := New(DefaultDisplay(), second)
	h := create(t, b, native.CreateParams{Position: native.Point{X: 2000, Y: 100}})
	if id, _ := b.QueryDisplayID(h); id != 2 {
		t.Fatalf("window on display %d, want 2", id)
	}
	drain(t, b)

	if err := b.RemoveDisplay(2); err != nil {
		t.Fatalf("RemoveDisplay: %v", err)
	}
	want := []native.EventKind{native.EventDisplayRemoved, native.EventMoved, native.EventDisplayChanged}
	if diff := cmp.Diff(want, drain(t, b)); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
	if id, _ := b.QueryDisplayID(h); id != 1 {
		t.Fatalf("window on display %d after removal, want 1", id)
	}
	if _, err := b.DisplayModes(2); !errors.Is(err, native.ErrNotFound) {
		t.Fatalf("DisplayModes on removed display: %v", err)
	}
}

func TestFailNextIsOneShot(t *testing.T) {
	b := New()
	h := create(t, b, native.CreateParams{})
	boom := errors.New("boom")
	b.FailNext("set_title", boom)

	if err := b.SetTitle(h, "a"); !errors.Is(err, boom) {
		t.Fatalf("first SetTitle = %v, want boom", err)
	}
	if err := b.SetTitle(h, "b"); err != nil {
		t.Fatalf("second SetTitle: %v", err)
	}
	if title, _ := b.QueryTitle(h); title != "b" {
		t.Fatalf("title = %q", title)
	}
}

func TestDestroyWindowDropsQueuedEvents(t *testing.T) {
	b := New()
	h := create(t, b, native.CreateParams{Visible: true})
	if err := b.DestroyWindow(h); err != nil {
		t.Fatalf("DestroyWindow: %v", err)
	}
	if b.Pending() != 0 {
		t.Fatalf("expected no events for destroyed window")
	}
	if _, err := b.QueryTitle(h); err == nil {
		t.Fatalf("expected query on destroyed window to fail")
	}
}

func TestFocusMovesBetweenWindows(t *testing.T) {
	b := New()
	a := create(t, b, native.CreateParams{Visible: true, Focusable: true})
	c := create(t, b, native.CreateParams{Visible: true, Focusable: true})
	drain(t, b)

	if err := b.Focus(c); err != nil {
		t.Fatalf("Focus: %v", err)
	}
	fa, _ := b.QueryFlags(a)
	fc, _ := b.QueryFlags(c)
	if fa.InputFocus || !fc.InputFocus {
		t.Fatalf("focus a=%v c=%v", fa.InputFocus, fc.InputFocus)
	}
}

func TestDisplayScaleAffectsPixelSize(t *testing.T) {
	b := New()
	h := create(t, b, native.CreateParams{})
	if err := b.SetDisplayScale(1, 2); err != nil {
		t.Fatalf("SetDisplayScale: %v", err)
	}
	px, _ := b.QuerySizeInPixels(h)
	if px != (native.Size{Width: 1280, Height: 960}) {
		t.Fatalf("pixel size = %s", px)
	}
}
