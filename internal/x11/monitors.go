package x11

import (
	"fmt"
	"math"
	"sort"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/winsync/internal/native"
)

// crtc is the RandR state behind one display.
type crtc struct {
	id       randr.Crtc
	mode     randr.Mode
	x, y     int16
	rotation uint16
	outputs  []randr.Output
	modes    []modeEntry
}

type modeEntry struct {
	id   randr.Mode
	mode native.DisplayMode
}

func (c *crtc) lookup(id randr.Mode) (native.DisplayMode, bool) {
	for _, e := range c.modes {
		if e.id == id {
			return e.mode, true
		}
	}
	return native.DisplayMode{}, false
}

// find returns the RandR mode matching m by size and refresh rate.
func (c *crtc) find(m native.DisplayMode) (randr.Mode, bool) {
	for _, e := range c.modes {
		if e.mode.Size == m.Size && math.Abs(float64(e.mode.RefreshRate-m.RefreshRate)) < 0.01 {
			return e.id, true
		}
	}
	return 0, false
}

// queryDisplays retrieves all active displays using XRandR. The primary
// output's display comes first.
func (b *Backend) queryDisplays() ([]native.Display, map[native.DisplayID]*crtc, error) {
	conn := b.XUtil.Conn()
	resources, err := randr.GetScreenResourcesCurrent(conn, b.Root).Reply()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get screen resources: %w", err)
	}
	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(conn, b.Root).Reply(); err == nil {
		primary = reply.Output
	}
	depth := int(b.XUtil.Screen().RootDepth)

	var displays []native.Display
	crtcs := make(map[native.DisplayID]*crtc)
	for i, id := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, id, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		var outputModes []randr.Mode
		output, err := randr.GetOutputInfo(conn, info.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			name = string(output.Name)
			outputModes = output.Modes
		}

		bounds := native.Rect{X: int(info.X), Y: int(info.Y), Width: int(info.Width), Height: int(info.Height)}
		d := native.Display{
			ID:           native.DisplayID(id),
			Name:         name,
			Bounds:       bounds,
			UsableBounds: b.usableBounds(bounds),
		}
		c := &crtc{
			id:       id,
			mode:     info.Mode,
			x:        info.X,
			y:        info.Y,
			rotation: info.Rotation,
			outputs:  info.Outputs,
			modes:    modesFor(resources.Modes, outputModes, depth),
		}
		// The current mode may not be listed by the output when it was
		// added with xrandr --addmode on another output.
		if _, ok := c.lookup(info.Mode); !ok {
			c.modes = append(c.modes, modesFor(resources.Modes, []randr.Mode{info.Mode}, depth)...)
		}

		if containsOutput(info.Outputs, primary) {
			displays = append([]native.Display{d}, displays...)
		} else {
			displays = append(displays, d)
		}
		crtcs[d.ID] = c
	}

	for i := range displays {
		displays[i].Index = i
		c := crtcs[displays[i].ID]
		for j := range c.modes {
			c.modes[j].mode.DisplayIndex = i
		}
		displays[i].Modes = listModes(c.modes)
	}
	return displays, crtcs, nil
}

func containsOutput(outputs []randr.Output, o randr.Output) bool {
	if o == 0 {
		return false
	}
	for _, out := range outputs {
		if out == o {
			return true
		}
	}
	return false
}

// modesFor resolves an output's mode ids against the screen's mode table.
func modesFor(table []randr.ModeInfo, ids []randr.Mode, depth int) []modeEntry {
	var out []modeEntry
	for _, id := range ids {
		for _, info := range table {
			if randr.Mode(info.Id) != id {
				continue
			}
			out = append(out, modeEntry{
				id: id,
				mode: native.DisplayMode{
					PixelFormat: pixelFormat(depth),
					Size:        native.Size{Width: int(info.Width), Height: int(info.Height)},
					BitDepth:    depth,
					RefreshRate: refreshRate(info),
				},
			})
			break
		}
	}
	return out
}

// listModes returns the distinct modes, largest and fastest first.
func listModes(entries []modeEntry) []native.DisplayMode {
	seen := make(map[native.DisplayMode]bool)
	var modes []native.DisplayMode
	for _, e := range entries {
		if seen[e.mode] {
			continue
		}
		seen[e.mode] = true
		modes = append(modes, e.mode)
	}
	sort.SliceStable(modes, func(i, j int) bool {
		ai := modes[i].Size.Width * modes[i].Size.Height
		aj := modes[j].Size.Width * modes[j].Size.Height
		if ai != aj {
			return ai > aj
		}
		return modes[i].RefreshRate > modes[j].RefreshRate
	})
	return modes
}

// refreshRate computes the vertical refresh in Hz rounded to two decimals.
func refreshRate(m randr.ModeInfo) float32 {
	total := float64(m.Htotal) * float64(m.Vtotal)
	if total == 0 {
		return 0
	}
	hz := float64(m.DotClock) / total
	return float32(math.Round(hz*100) / 100)
}

func pixelFormat(depth int) string {
	switch depth {
	case 24, 32:
		return "XRGB8888"
	case 30:
		return "XRGB2101010"
	case 16:
		return "RGB565"
	default:
		return fmt.Sprintf("DEPTH%d", depth)
	}
}

func (b *Backend) Displays() ([]native.Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.displays == nil {
		if _, err := b.refreshDisplaysLocked(); err != nil {
			return nil, err
		}
	}
	out := make([]native.Display, len(b.displays))
	for i, d := range b.displays {
		d.Modes = append([]native.DisplayMode(nil), d.Modes...)
		out[i] = d
	}
	return out, nil
}

func (b *Backend) DisplayModes(id native.DisplayID) ([]native.DisplayMode, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.crtcs[id]
	if !ok {
		return nil, fmt.Errorf("display %d: %w", id, native.ErrNotFound)
	}
	return listModes(c.modes), nil
}

func (b *Backend) CurrentDisplayMode(id native.DisplayID) (native.DisplayMode, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentModeLocked(id)
}

func (b *Backend) currentModeLocked(id native.DisplayID) (native.DisplayMode, error) {
	c, ok := b.crtcs[id]
	if !ok {
		return native.DisplayMode{}, fmt.Errorf("display %d: %w", id, native.ErrNotFound)
	}
	m, ok := c.lookup(c.mode)
	if !ok {
		return native.DisplayMode{}, fmt.Errorf("display %d: mode %d: %w", id, c.mode, native.ErrNotFound)
	}
	return m, nil
}

func (b *Backend) PrimaryDisplay() (native.DisplayID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.displays) == 0 {
		return 0, fmt.Errorf("no displays: %w", native.ErrNotFound)
	}
	return b.displays[0].ID, nil
}

// refreshDisplaysLocked re-reads the RandR configuration and returns the
// display events describing what changed.
func (b *Backend) refreshDisplaysLocked() ([]native.Event, error) {
	displays, crtcs, err := b.queryDisplays()
	if err != nil {
		return nil, err
	}
	oldModes := currentModes(b.crtcs)
	newModes := currentModes(crtcs)
	events := diffDisplays(b.displays, displays, oldModes, newModes, b.switched)

	for id, c := range crtcs {
		if _, ok := b.switched[id]; !ok {
			b.desktop[id] = c.mode
		}
	}
	for id := range b.desktop {
		if _, ok := crtcs[id]; !ok {
			delete(b.desktop, id)
			delete(b.switched, id)
		}
	}
	b.displays = displays
	b.crtcs = crtcs
	return events, nil
}

func currentModes(crtcs map[native.DisplayID]*crtc) map[native.DisplayID]native.DisplayMode {
	out := make(map[native.DisplayID]native.DisplayMode, len(crtcs))
	for id, c := range crtcs {
		if m, ok := c.lookup(c.mode); ok {
			out[id] = m
		}
	}
	return out
}

// diffDisplays reports the topology changes between two display lists. A
// mode change on a display switched for exclusive fullscreen only changes
// the current mode; any other mode change moves the desktop mode too.
func diffDisplays(old, cur []native.Display, oldModes, curModes map[native.DisplayID]native.DisplayMode, switched map[native.DisplayID]native.Handle) []native.Event {
	var events []native.Event
	emit := func(kind native.EventKind, id native.DisplayID) {
		events = append(events, native.Event{Kind: kind, Display: id})
	}
	prev := make(map[native.DisplayID]native.Display, len(old))
	for _, d := range old {
		prev[d.ID] = d
	}
	for _, d := range cur {
		p, ok := prev[d.ID]
		if !ok {
			emit(native.EventDisplayAdded, d.ID)
			continue
		}
		delete(prev, d.ID)
		if p.Bounds.Location() != d.Bounds.Location() {
			emit(native.EventDisplayMoved, d.ID)
		}
		if p.Bounds.Size() != d.Bounds.Size() && p.Bounds.Size() == (native.Size{Width: d.Bounds.Height, Height: d.Bounds.Width}) {
			emit(native.EventDisplayOrientation, d.ID)
		}
		if oldModes[d.ID] != curModes[d.ID] {
			if _, ok := switched[d.ID]; !ok {
				emit(native.EventDisplayDesktopModeChanged, d.ID)
			}
			emit(native.EventDisplayCurrentModeChanged, d.ID)
		}
	}
	for _, d := range old {
		if _, gone := prev[d.ID]; gone {
			emit(native.EventDisplayRemoved, d.ID)
		}
	}
	return events
}

// displayForRect returns the display containing the centre of r, falling
// back to the primary display.
func displayForRect(displays []native.Display, r native.Rect) (native.Display, bool) {
	if len(displays) == 0 {
		return native.Display{}, false
	}
	centre := native.Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
	for _, d := range displays {
		if d.Bounds.Contains(centre) {
			return d, true
		}
	}
	return displays[0], true
}

// switchModeLocked puts the display behind id into mode m for the
// exclusive fullscreen window h.
func (b *Backend) switchModeLocked(id native.DisplayID, h native.Handle, m native.DisplayMode) error {
	c, ok := b.crtcs[id]
	if !ok {
		return fmt.Errorf("display %d: %w", id, native.ErrNotFound)
	}
	mode, ok := c.find(m)
	if !ok {
		return fmt.Errorf("display %d has no mode %s: %w", id, m, native.ErrNotFound)
	}
	if owner, ok := b.switched[id]; ok && owner != h {
		return fmt.Errorf("display %d is held by window %d", id, owner)
	}
	if _, ok := b.switched[id]; !ok {
		b.desktop[id] = c.mode
	}
	if err := b.setCrtcModeLocked(c, mode); err != nil {
		return err
	}
	b.switched[id] = h
	return nil
}

func (b *Backend) restoreDesktopModeLocked(id native.DisplayID) error {
	c, ok := b.crtcs[id]
	delete(b.switched, id)
	if !ok {
		return nil
	}
	mode, ok := b.desktop[id]
	if !ok || mode == c.mode {
		return nil
	}
	return b.setCrtcModeLocked(c, mode)
}

func (b *Backend) setCrtcModeLocked(c *crtc, mode randr.Mode) error {
	conn := b.XUtil.Conn()
	resources, err := randr.GetScreenResourcesCurrent(conn, b.Root).Reply()
	if err != nil {
		return fmt.Errorf("failed to get screen resources: %w", err)
	}
	reply, err := randr.SetCrtcConfig(conn, c.id, xproto.TimeCurrentTime, resources.ConfigTimestamp,
		c.x, c.y, mode, c.rotation, c.outputs).Reply()
	if err != nil {
		return fmt.Errorf("failed to set crtc %d mode: %w", c.id, err)
	}
	if reply.Status != randr.SetConfigSuccess {
		return fmt.Errorf("failed to set crtc %d mode: status %d", c.id, reply.Status)
	}
	c.mode = mode
	return nil
}

// usableBounds trims bounds by dock struts, falling back to the EWMH work
// area when no dock reserves space.
func (b *Backend) usableBounds(bounds native.Rect) native.Rect {
	if usable, ok := b.applyDockStruts(bounds); ok {
		return usable
	}
	workArea, err := ewmh.WorkareaGet(b.XUtil)
	if err != nil || len(workArea) == 0 {
		return bounds
	}
	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(b.XUtil); err == nil {
		if int(currentDesktop) >= 0 && int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}
	wa := workArea[desktopIndex]
	return clipToWorkArea(bounds, native.Rect{X: int(wa.X), Y: int(wa.Y), Width: int(wa.Width), Height: int(wa.Height)})
}

// clipToWorkArea returns the intersection of bounds and the work area, or
// bounds unchanged when they do not overlap.
func clipToWorkArea(bounds, wa native.Rect) native.Rect {
	isect := intersectionRect(bounds, wa)
	if isect.Width <= 0 || isect.Height <= 0 {
		return bounds
	}
	return isect
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

func (b *Backend) applyDockStruts(bounds native.Rect) (native.Rect, bool) {
	rootGeom, err := xproto.GetGeometry(b.XUtil.Conn(), xproto.Drawable(b.Root)).Reply()
	if err != nil {
		return bounds, false
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(b.XUtil)
	if err != nil {
		return bounds, false
	}

	var struts dockStruts
	for _, windowID := range clients {
		types, err := ewmh.WmWindowTypeGet(b.XUtil, windowID)
		if err != nil || !containsString(types, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(b.XUtil, windowID); err == nil {
			updateStruts(bounds, rootWidth, rootHeight, sp, &struts)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(b.XUtil, windowID); err == nil {
			updateStruts(bounds, rootWidth, rootHeight, fullStrut(s, rootWidth, rootHeight), &struts)
		}
	}
	return struts.apply(bounds)
}

func fullStrut(s *ewmh.WmStrut, rootWidth, rootHeight int) *ewmh.WmStrutPartial {
	return &ewmh.WmStrutPartial{
		Left:       s.Left,
		Right:      s.Right,
		Top:        s.Top,
		Bottom:     s.Bottom,
		LeftEndY:   uint(rootHeight - 1),
		RightEndY:  uint(rootHeight - 1),
		TopEndX:    uint(rootWidth - 1),
		BottomEndX: uint(rootWidth - 1),
	}
}

func (s dockStruts) apply(bounds native.Rect) (native.Rect, bool) {
	if s == (dockStruts{}) {
		return bounds, false
	}
	bounds.X += s.left
	bounds.Y += s.top
	bounds.Width = max(bounds.Width-(s.left+s.right), 1)
	bounds.Height = max(bounds.Height-(s.top+s.bottom), 1)
	return bounds, true
}

func updateStruts(mon native.Rect, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		r := spanRect(int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top))
		acc.top = max(acc.top, intersectionRect(mon, r).Height)
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		r := spanRect(int(sp.BottomStartX), rootHeight-int(sp.Bottom), int(sp.BottomEndX)+1, rootHeight)
		acc.bottom = max(acc.bottom, intersectionRect(mon, r).Height)
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		r := spanRect(0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1)
		acc.left = max(acc.left, intersectionRect(mon, r).Width)
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		r := spanRect(rootWidth-int(sp.Right), int(sp.RightStartY), rootWidth, int(sp.RightEndY)+1)
		acc.right = max(acc.right, intersectionRect(mon, r).Width)
	}
}

func spanRect(x1, y1, x2, y2 int) native.Rect {
	return native.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// intersectionRect returns the overlap of a and b; an empty overlap has zero
// size.
func intersectionRect(a, b native.Rect) native.Rect {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return native.Rect{}
	}
	return native.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
