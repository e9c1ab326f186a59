package display

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/winsync/internal/native"
	"github.com/1broseidon/winsync/internal/native/sim"
)

func newRegistry(t *testing.T, specs ...sim.DisplaySpec) (*sim.Backend, *Registry) {
	t.Helper()
	b := sim.New(specs...)
	r := New(b, nil)
	if err := r.Synchronize(); err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	return b, r
}

func TestSynchronizeIsIdempotent(t *testing.T) {
	_, r := newRegistry(t)
	calls := 0
	r.OnChanged(func() { calls++ })

	first := r.Displays()
	if err := r.Synchronize(); err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	if diff := cmp.Diff(first, r.Displays()); diff != "" {
		t.Fatalf("displays changed (-first +second):\n%s", diff)
	}
	if calls != 0 {
		t.Fatalf("OnChanged fired %d times without a topology change", calls)
	}
}

func TestSynchronizeTracksTopology(t *testing.T) {
	b, r := newRegistry(t)
	calls := 0
	r.OnChanged(func() { calls++ })

	id := b.AddDisplay(sim.DisplaySpec{Name: "EXT", Bounds: native.Rect{X: 1920, Width: 2560, Height: 1440}})
	events, _ := b.PollEvents()
	for _, ev := range events {
		if _, err := r.HandleEvent(ev); err != nil {
			t.Fatalf("HandleEvent: %v", err)
		}
	}
	if got := len(r.Displays()); got != 2 {
		t.Fatalf("displays = %d, want 2", got)
	}
	d, err := r.ByIndex(1)
	if err != nil || d.ID != id || d.Name != "EXT" {
		t.Fatalf("ByIndex(1) = %+v, %v", d, err)
	}

	if err := b.RemoveDisplay(id); err != nil {
		t.Fatalf("RemoveDisplay: %v", err)
	}
	if err := r.Synchronize(); err != nil {
		t.Fatalf("Synchronize: %v", err)
	}
	if _, err := r.Resolve(id); !IsNotFound(err) {
		t.Fatalf("Resolve of removed display: %v", err)
	}
	if calls != 2 {
		t.Fatalf("OnChanged calls = %d, want 2", calls)
	}
}

func TestHandleEventIgnoresWindowEvents(t *testing.T) {
	b, r := newRegistry(t)
	b.FailNext("displays", errors.New("must not be called"))
	handled, err := r.HandleEvent(native.Event{Kind: native.EventMoved, Window: 1})
	if handled || err != nil {
		t.Fatalf("HandleEvent = %v, %v", handled, err)
	}
}

func TestPrimary(t *testing.T) {
	_, r := newRegistry(t, sim.DefaultDisplay(), sim.DisplaySpec{Bounds: native.Rect{X: 1920, Width: 800, Height: 600}})
	p, err := r.Primary()
	if err != nil {
		t.Fatalf("Primary: %v", err)
	}
	if p.Index != 0 || p.Name != "SIM-1" {
		t.Fatalf("primary = %+v", p)
	}
}

func TestSynchronizeError(t *testing.T) {
	b := sim.New()
	r := New(b, nil)
	boom := errors.New("boom")
	b.FailNext("displays", boom)
	if err := r.Synchronize(); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestClosestMode(t *testing.T) {
	_, r := newRegistry(t)
	mode := func(w, h int, hz float32) native.DisplayMode {
		return native.DisplayMode{PixelFormat: "XRGB8888", Size: native.Size{Width: w, Height: h}, BitDepth: 24, RefreshRate: hz}
	}
	tests := []struct {
		name    string
		size    native.Size
		refresh float32
		want    native.DisplayMode
	}{
		{"exact", native.Size{Width: 1280, Height: 720}, 60, mode(1280, 720, 60)},
		{"refresh breaks ties", native.Size{Width: 1920, Height: 1080}, 144, mode(1920, 1080, 144)},
		{"closest refresh", native.Size{Width: 1920, Height: 1080}, 75, mode(1920, 1080, 60)},
		{"next size up", native.Size{Width: 1024, Height: 700}, 60, mode(1280, 720, 60)},
		{"too large falls back to bounds", native.Size{Width: 4000, Height: 3000}, 60, mode(1920, 1080, 144)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ClosestMode(tt.size, tt.refresh, 1)
			if err != nil {
				t.Fatalf("ClosestMode: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("mode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClosestModeFallsBackToCurrentMode(t *testing.T) {
	b, r := newRegistry(t, sim.DisplaySpec{
		Bounds: native.Rect{Width: 1024, Height: 768},
		Modes: []native.DisplayMode{
			{PixelFormat: "XRGB8888", Size: native.Size{Width: 800, Height: 600}, BitDepth: 24, RefreshRate: 60},
		},
	})
	got, err := r.ClosestMode(native.Size{Width: 1600, Height: 1200}, 60, 1)
	if err != nil {
		t.Fatalf("ClosestMode: %v", err)
	}
	if got.Size != (native.Size{Width: 800, Height: 600}) {
		t.Fatalf("mode = %s, want current 800x600", got)
	}

	boom := errors.New("boom")
	b.FailNext("current_display_mode", boom)
	if _, err := r.ClosestMode(native.Size{Width: 1600, Height: 1200}, 60, 1); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestClosestModeStaleDisplay(t *testing.T) {
	_, r := newRegistry(t)
	if _, err := r.ClosestMode(native.Size{Width: 1, Height: 1}, 60, 42); !IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}
