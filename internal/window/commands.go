package window

import (
	"errors"
	"fmt"
	"math"

	"github.com/1broseidon/winsync/internal/native"
	"github.com/1broseidon/winsync/internal/reconcile"
)

func (f *Facade) registerCommands() {
	f.cmdTitle = reconcile.NewCommand("title", f.applyTitle)
	f.cmdLimits = reconcile.NewCommand("size_limits", f.applyLimits)
	f.cmdFlags = reconcile.NewCommand("flags", f.applyFlags)
	f.cmdSize = reconcile.NewCommand("windowed_size", f.applySize)
	f.cmdPosition = reconcile.NewCommand("windowed_position", f.applyPosition)
	f.cmdFullscreen = reconcile.NewCommand("window_mode", f.applyFullscreen)
	f.cmdState = reconcile.NewCommand("window_state", f.applyWindowState)

	f.rec.BindDerived(f.cmdTitle, f.title)
	f.rec.BindDerived(f.cmdLimits, f.minSize, f.maxSize)
	f.rec.BindDerived(f.cmdFlags, f.resizable, f.alwaysOnTop, f.opacity)
	f.rec.BindDerived(f.cmdSize, f.windowedSize)
	f.rec.BindDerived(f.cmdPosition, f.windowedPosition, f.windowedSize, f.displayIndex)
	f.rec.BindDerived(f.cmdFullscreen, f.displayIndex, f.sizeFullscreen)
}

func (f *Facade) applyTitle(t native.State) error {
	return t.SetTitle(f.title.Get())
}

// applyLimits clears the maximum first so a new minimum above the old
// maximum is never rejected.
func (f *Facade) applyLimits(t native.State) error {
	if err := t.SetMaximumSize(native.Size{}); err != nil {
		return err
	}
	if err := t.SetMinimumSize(f.minSize.Get()); err != nil {
		return err
	}
	return t.SetMaximumSize(f.maxSize.Get())
}

func (f *Facade) applyFlags(t native.State) error {
	return errors.Join(
		t.SetResizable(f.resizable.Get()),
		t.SetAlwaysOnTop(f.alwaysOnTop.Get()),
		t.SetOpacity(f.opacity.Get()),
	)
}

func (f *Facade) applySize(t native.State) error {
	s := f.windowedSize.Get()
	if s.IsEmpty() {
		return nil
	}
	return t.SetSize(s)
}

func (f *Facade) applyPosition(t native.State) error {
	d := f.targetDisplay()
	return t.SetPosition(windowedPosition(d.Bounds, f.windowedSize.Get(), f.windowedPosition.Get()))
}

// windowedPosition maps a relative position to screen coordinates so that 0
// and 1 put the window flush against the display edges.
func windowedPosition(bounds native.Rect, size native.Size, rel RelativePosition) native.Point {
	return native.Point{
		X: int(math.Round(float64(bounds.Width-size.Width)*rel.X)) + bounds.X,
		Y: int(math.Round(float64(bounds.Height-size.Height)*rel.Y)) + bounds.Y,
	}
}

func (f *Facade) applyFullscreen(t native.State) error {
	mode := f.windowMode.Get()
	if f.pendingMode != nil {
		mode = *f.pendingMode
		f.pendingMode = nil
	}
	d := f.targetDisplay()

	if mode != Windowed && t.Fullscreen() && t.Display().ID != d.ID {
		if err := t.SetFullscreen(false); err != nil {
			return err
		}
		if err := t.SetPosition(d.Bounds.Location()); err != nil {
			return err
		}
	}

	switch mode {
	case Windowed:
		if f.rules.unborderedIsBorderless && !t.Bordered() {
			if err := t.SetBordered(true); err != nil {
				return err
			}
		}
		return t.SetFullscreen(false)

	case Borderless:
		if f.rules.unborderedIsBorderless {
			return errors.Join(
				t.SetFullscreen(false),
				t.SetBordered(false),
				t.SetPosition(d.Bounds.Location()),
				t.SetSize(d.Bounds.Size()),
			)
		}
		if err := t.SetFullscreenMode(nil); err != nil {
			return err
		}
		return t.SetFullscreen(true)

	case Fullscreen:
		size := f.sizeFullscreen.Get()
		if size.IsEmpty() {
			size = d.Bounds.Size()
		}
		m, err := f.displays.ClosestMode(size, t.CurrentDisplayMode().RefreshRate, d.ID)
		if err != nil {
			return fmt.Errorf("pick display mode for %s: %w", size, err)
		}
		if err := t.SetFullscreenMode(&m); err != nil {
			return err
		}
		return t.SetFullscreen(true)
	}
	return fmt.Errorf("unknown window mode %s", mode)
}

// applyWindowState maps the requested state to a native state. Fullscreen
// states are native-restored; the mode command handles fullscreen itself.
func (f *Facade) applyWindowState(t native.State) error {
	state := f.windowState.Get()
	if f.pendingState != nil {
		state = *f.pendingState
		f.pendingState = nil
	}
	switch state {
	case Maximised:
		if !t.Resizable() {
			if err := t.SetResizable(true); err != nil {
				return err
			}
			f.resizable.Set(true)
		}
		return t.SetWindowState(native.Maximised)
	case Minimised:
		return t.SetWindowState(native.Minimised)
	default:
		return t.SetWindowState(native.Restored)
	}
}
