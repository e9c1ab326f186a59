package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/winsync/internal/native"
)

func TestRefreshRate(t *testing.T) {
	tests := []struct {
		name string
		mode randr.ModeInfo
		want float32
	}{
		// CVT 1920x1080 reduced blanking.
		{"1080p60", randr.ModeInfo{DotClock: 138500000, Htotal: 2080, Vtotal: 1111}, 59.93},
		{"1080p144", randr.ModeInfo{DotClock: 325080000, Htotal: 2080, Vtotal: 1085}, 144.04},
		{"no timings", randr.ModeInfo{DotClock: 1000}, 0},
	}
	for _, tt := range tests {
		if got := refreshRate(tt.mode); got != tt.want {
			t.Errorf("%s: refreshRate = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestModesForResolvesAndSorts(t *testing.T) {
	table := []randr.ModeInfo{
		{Id: 1, Width: 1280, Height: 720, DotClock: 74250000, Htotal: 1650, Vtotal: 750},
		{Id: 2, Width: 1920, Height: 1080, DotClock: 148500000, Htotal: 2200, Vtotal: 1125},
		{Id: 3, Width: 1920, Height: 1080, DotClock: 297000000, Htotal: 2200, Vtotal: 1125},
		{Id: 4, Width: 640, Height: 480, DotClock: 25175000, Htotal: 800, Vtotal: 525},
	}
	entries := modesFor(table, []randr.Mode{1, 2, 3, 2, 9}, 24)
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4 (unknown id skipped)", len(entries))
	}

	got := listModes(entries)
	want := []native.DisplayMode{
		{PixelFormat: "XRGB8888", Size: native.Size{Width: 1920, Height: 1080}, BitDepth: 24, RefreshRate: 120},
		{PixelFormat: "XRGB8888", Size: native.Size{Width: 1920, Height: 1080}, BitDepth: 24, RefreshRate: 60},
		{PixelFormat: "XRGB8888", Size: native.Size{Width: 1280, Height: 720}, BitDepth: 24, RefreshRate: 60},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("modes (-want +got):\n%s", diff)
	}

	c := &crtc{modes: entries}
	id, ok := c.find(want[1])
	if !ok || id != 2 {
		t.Fatalf("find(1080p60) = %d, %v", id, ok)
	}
	if m, ok := c.lookup(3); !ok || m.RefreshRate != 120 {
		t.Fatalf("lookup(3) = %s, %v", m, ok)
	}
}

func TestDiffDisplays(t *testing.T) {
	mode60 := native.DisplayMode{Size: native.Size{Width: 1920, Height: 1080}, RefreshRate: 60}
	mode30 := native.DisplayMode{Size: native.Size{Width: 1280, Height: 720}, RefreshRate: 60}
	old := []native.Display{
		{ID: 1, Bounds: native.Rect{Width: 1920, Height: 1080}},
		{ID: 2, Bounds: native.Rect{X: 1920, Width: 1920, Height: 1080}},
		{ID: 3, Bounds: native.Rect{X: 3840, Width: 1920, Height: 1080}},
	}
	cur := []native.Display{
		{ID: 1, Bounds: native.Rect{Width: 1280, Height: 720}},
		{ID: 2, Bounds: native.Rect{X: 1280, Width: 1920, Height: 1080}},
		{ID: 4, Bounds: native.Rect{X: 3200, Width: 1080, Height: 1920}},
	}
	oldModes := map[native.DisplayID]native.DisplayMode{1: mode60, 2: mode60}
	curModes := map[native.DisplayID]native.DisplayMode{1: mode30, 2: mode60}

	got := diffDisplays(old, cur, oldModes, curModes, nil)
	want := []native.Event{
		{Kind: native.EventDisplayDesktopModeChanged, Display: 1},
		{Kind: native.EventDisplayCurrentModeChanged, Display: 1},
		{Kind: native.EventDisplayMoved, Display: 2},
		{Kind: native.EventDisplayAdded, Display: 4},
		{Kind: native.EventDisplayRemoved, Display: 3},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}

	// An exclusive fullscreen switch leaves the desktop mode alone.
	got = diffDisplays(old[:1], cur[:1], oldModes, curModes, map[native.DisplayID]native.Handle{1: 7})
	want = []native.Event{{Kind: native.EventDisplayCurrentModeChanged, Display: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("switched events (-want +got):\n%s", diff)
	}
}

func TestDiffDisplaysOrientation(t *testing.T) {
	old := []native.Display{{ID: 1, Bounds: native.Rect{Width: 1920, Height: 1080}}}
	cur := []native.Display{{ID: 1, Bounds: native.Rect{Width: 1080, Height: 1920}}}
	got := diffDisplays(old, cur, nil, nil, nil)
	want := []native.Event{{Kind: native.EventDisplayOrientation, Display: 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
}

func TestStateEvents(t *testing.T) {
	const h = native.Handle(5)
	ev := func(kinds ...native.EventKind) []native.Event {
		var out []native.Event
		for _, k := range kinds {
			out = append(out, native.Event{Kind: k, Window: h})
		}
		return out
	}
	tests := []struct {
		name     string
		old, cur netState
		want     []native.Event
	}{
		{"maximize", netState{}, netState{maximized: true}, ev(native.EventMaximized)},
		{"minimize maximized", netState{maximized: true}, netState{maximized: true, minimized: true}, ev(native.EventMinimized)},
		{"unminimize to maximized", netState{maximized: true, minimized: true}, netState{maximized: true}, ev(native.EventMaximized)},
		{"unminimize", netState{minimized: true}, netState{}, ev(native.EventRestored)},
		{"unmaximize", netState{maximized: true}, netState{}, ev(native.EventRestored)},
		{"enter fullscreen", netState{}, netState{fullscreen: true}, ev(native.EventEnterFullscreen)},
		{"leave fullscreen", netState{fullscreen: true}, netState{}, ev(native.EventLeaveFullscreen)},
		{"above only", netState{}, netState{above: true}, nil},
		{"still minimized", netState{minimized: true}, netState{minimized: true, maximized: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, stateEvents(h, tt.old, tt.cur)); diff != "" {
				t.Fatalf("events (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseNetState(t *testing.T) {
	got := parseNetState([]string{atomMaxHorz, atomAbove}, false)
	if got.maximized || !got.above || got.minimized {
		t.Fatalf("half maximised parsed as %+v", got)
	}
	got = parseNetState([]string{atomMaxHorz, atomMaxVert, atomFullscreen}, true)
	want := netState{maximized: true, fullscreen: true, minimized: true}
	if got != want {
		t.Fatalf("parseNetState = %+v, want %+v", got, want)
	}
}

func TestGeometryEvents(t *testing.T) {
	const h = native.Handle(1)
	old := native.Rect{X: 10, Y: 10, Width: 100, Height: 100}
	if got := geometryEvents(h, old, old); len(got) != 0 {
		t.Fatalf("unchanged geometry reported %v", got)
	}
	got := geometryEvents(h, old, native.Rect{X: 20, Y: 10, Width: 200, Height: 100})
	want := []native.Event{
		{Kind: native.EventMoved, Window: h},
		{Kind: native.EventResized, Window: h},
		{Kind: native.EventPixelSizeChanged, Window: h},
		{Kind: native.EventSafeAreaChanged, Window: h},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
}

func TestNormalHints(t *testing.T) {
	r := native.Rect{X: 5, Y: 6, Width: 640, Height: 480}
	w := &window{resizable: true, min: native.Size{Width: 200, Height: 100}, aspect: native.AspectRatio{Max: native.Ratio(1.5)}}

	nh := normalHints(w, r, true)
	wantFlags := uint(icccm.SizeHintUSPosition | icccm.SizeHintUSSize | icccm.SizeHintPMinSize | icccm.SizeHintPAspect)
	if nh.Flags != wantFlags {
		t.Fatalf("flags = %b, want %b", nh.Flags, wantFlags)
	}
	if nh.X != 5 || nh.Width != 640 || nh.MinWidth != 200 || nh.MinHeight != 100 {
		t.Fatalf("hints = %+v", nh)
	}
	if nh.MaxAspectNum != 15000 || nh.MaxAspectDen != aspectScale || nh.MinAspectNum != 0 {
		t.Fatalf("aspect = %d/%d min %d/%d", nh.MaxAspectNum, nh.MaxAspectDen, nh.MinAspectNum, nh.MinAspectDen)
	}

	w = &window{max: native.Size{Width: 800}}
	nh = normalHints(w, r, false)
	if nh.MinWidth != 640 || nh.MaxWidth != 640 || nh.MaxHeight != 480 {
		t.Fatalf("fixed-size hints = %+v", nh)
	}

	w.resizable = true
	nh = normalHints(w, r, false)
	if nh.MaxWidth != 800 || nh.MaxHeight != 32767 {
		t.Fatalf("max with open height = %dx%d", nh.MaxWidth, nh.MaxHeight)
	}
}

func TestDockStruts(t *testing.T) {
	left := native.Rect{Width: 1920, Height: 1080}
	right := native.Rect{X: 1920, Width: 1920, Height: 1080}

	// A 32px top panel spanning only the left monitor.
	panel := &ewmh.WmStrutPartial{Top: 32, TopStartX: 0, TopEndX: 1919}
	var accLeft, accRight dockStruts
	updateStruts(left, 3840, 1080, panel, &accLeft)
	updateStruts(right, 3840, 1080, panel, &accRight)

	got, ok := accLeft.apply(left)
	if !ok || got != (native.Rect{Y: 32, Width: 1920, Height: 1048}) {
		t.Fatalf("left usable = %+v, %v", got, ok)
	}
	if got, ok := accRight.apply(right); ok || got != right {
		t.Fatalf("right usable = %+v, %v", got, ok)
	}

	var acc dockStruts
	updateStruts(right, 3840, 1080, fullStrut(&ewmh.WmStrut{Right: 48}, 3840, 1080), &acc)
	if got, _ := acc.apply(right); got != (native.Rect{X: 1920, Width: 1872, Height: 1080}) {
		t.Fatalf("right dock usable = %+v", got)
	}
}

func TestClipToWorkArea(t *testing.T) {
	bounds := native.Rect{X: 1920, Width: 1920, Height: 1080}
	wa := native.Rect{Y: 24, Width: 3840, Height: 1056}
	if got := clipToWorkArea(bounds, wa); got != (native.Rect{X: 1920, Y: 24, Width: 1920, Height: 1056}) {
		t.Fatalf("clipped = %+v", got)
	}
	if got := clipToWorkArea(bounds, native.Rect{Width: 100, Height: 100}); got != bounds {
		t.Fatalf("disjoint work area changed bounds to %+v", got)
	}
}

func TestDisplayForRect(t *testing.T) {
	displays := []native.Display{
		{ID: 1, Bounds: native.Rect{Width: 1920, Height: 1080}},
		{ID: 2, Bounds: native.Rect{X: 1920, Width: 1920, Height: 1080}},
	}
	tests := []struct {
		r    native.Rect
		want native.DisplayID
	}{
		{native.Rect{X: 100, Y: 100, Width: 400, Height: 300}, 1},
		{native.Rect{X: 1800, Y: 100, Width: 400, Height: 300}, 2},
		{native.Rect{X: -5000, Y: -5000, Width: 10, Height: 10}, 1},
	}
	for _, tt := range tests {
		if d, _ := displayForRect(displays, tt.r); d.ID != tt.want {
			t.Errorf("displayForRect(%+v) = %d, want %d", tt.r, d.ID, tt.want)
		}
	}
	if _, ok := displayForRect(nil, native.Rect{}); ok {
		t.Fatalf("displayForRect found a display in an empty list")
	}
}

func TestFocusChangeFilter(t *testing.T) {
	if !focusChange(0, 0) {
		t.Fatalf("normal ancestor focus change filtered")
	}
	if focusChange(1, 0) {
		t.Fatalf("grab focus change passed")
	}
	if focusChange(0, 5) {
		t.Fatalf("pointer focus change passed")
	}
}
