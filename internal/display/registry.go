// Package display tracks the physical displays reported by a backend.
package display

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/1broseidon/winsync/internal/native"
)

// ErrNotFound is returned for display ids and indices that are not tracked,
// usually because the display was removed since the caller resolved it.
var ErrNotFound = native.ErrNotFound

// Source is the part of a backend the registry reads displays from.
type Source interface {
	Displays() ([]native.Display, error)
	DisplayModes(id native.DisplayID) ([]native.DisplayMode, error)
	CurrentDisplayMode(id native.DisplayID) (native.DisplayMode, error)
	PrimaryDisplay() (native.DisplayID, error)
}

// Registry is the authoritative list of displays. Indices are stable until
// the next topology change; callers re-resolve after display events instead
// of caching descriptors.
type Registry struct {
	src    Source
	logger *slog.Logger

	mu       sync.Mutex
	displays map[native.DisplayID]native.Display
	primary  native.DisplayID
	subs     map[int]func()
	nextSub  int
}

var _ native.DisplayResolver = (*Registry)(nil)

// New creates an empty registry. Call Synchronize to populate it.
func New(src Source, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		src:      src,
		logger:   logger,
		displays: make(map[native.DisplayID]native.Display),
		subs:     make(map[int]func()),
	}
}

// Synchronize re-reads the display list. Displays no longer reported are
// dropped, the rest are added or updated. Subscribers are notified only when
// something changed, so redundant calls are harmless.
func (r *Registry) Synchronize() error {
	list, err := r.src.Displays()
	if err != nil {
		return fmt.Errorf("enumerate displays: %w", err)
	}
	primary, err := r.src.PrimaryDisplay()
	if err != nil {
		return fmt.Errorf("primary display: %w", err)
	}

	seen := make(map[native.DisplayID]native.Display, len(list))
	for _, d := range list {
		if d.Modes == nil {
			modes, err := r.src.DisplayModes(d.ID)
			if err != nil {
				return fmt.Errorf("display %d modes: %w", d.ID, err)
			}
			d.Modes = modes
		}
		seen[d.ID] = d
	}

	r.mu.Lock()
	changed := primary != r.primary || len(seen) != len(r.displays)
	for id, d := range seen {
		old, ok := r.displays[id]
		switch {
		case !ok:
			r.logger.Debug("display added", "id", id, "name", d.Name, "bounds", d.Bounds)
			changed = true
		case !old.Equal(d):
			r.logger.Debug("display updated", "id", id, "name", d.Name, "bounds", d.Bounds)
			changed = true
		}
	}
	for id := range r.displays {
		if _, ok := seen[id]; !ok {
			r.logger.Debug("display removed", "id", id)
		}
	}
	r.displays = seen
	r.primary = primary
	subs := r.subscribersLocked()
	r.mu.Unlock()

	if changed {
		for _, fn := range subs {
			fn()
		}
	}
	return nil
}

func (r *Registry) subscribersLocked() []func() {
	keys := make([]int, 0, len(r.subs))
	for k := range r.subs {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]func(), 0, len(keys))
	for _, k := range keys {
		out = append(out, r.subs[k])
	}
	return out
}

// OnChanged registers fn to run after a Synchronize that changed the
// display set.
func (r *Registry) OnChanged(fn func()) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

// HandleEvent resynchronizes on display topology events and reports whether
// the event was a display event.
func (r *Registry) HandleEvent(ev native.Event) (bool, error) {
	if !ev.Kind.IsDisplayEvent() {
		return false, nil
	}
	return true, r.Synchronize()
}

// Resolve returns the descriptor of id.
func (r *Registry) Resolve(id native.DisplayID) (native.Display, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.displays[id]
	if !ok {
		return native.Display{}, fmt.Errorf("display %d: %w", id, ErrNotFound)
	}
	return cloneDisplay(d), nil
}

// ByIndex returns the display at index i.
func (r *Registry) ByIndex(i int) (native.Display, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.displays {
		if d.Index == i {
			return cloneDisplay(d), nil
		}
	}
	return native.Display{}, fmt.Errorf("display index %d: %w", i, ErrNotFound)
}

// Displays returns every display in index order.
func (r *Registry) Displays() []native.Display {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]native.Display, 0, len(r.displays))
	for _, d := range r.displays {
		out = append(out, cloneDisplay(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// Primary returns the primary display.
func (r *Registry) Primary() (native.Display, error) {
	r.mu.Lock()
	id := r.primary
	r.mu.Unlock()
	return r.Resolve(id)
}

// ClosestMode picks the display mode of id best matching size and refresh.
//
// The smallest mode at least as large as size wins, with the refresh rate
// breaking ties. When no mode is large enough the display's own bounds are
// searched with any refresh rate, and as a last resort the display's current
// mode is returned. Only a failure to read the current mode is an error.
func (r *Registry) ClosestMode(size native.Size, refresh float32, id native.DisplayID) (native.DisplayMode, error) {
	d, err := r.Resolve(id)
	if err != nil {
		return native.DisplayMode{}, err
	}
	if m, ok := closest(d.Modes, size, refresh); ok {
		return m, nil
	}
	if m, ok := closest(d.Modes, d.Bounds.Size(), 0); ok {
		return m, nil
	}
	m, err := r.src.CurrentDisplayMode(id)
	if err != nil {
		return native.DisplayMode{}, fmt.Errorf("current mode of display %d: %w", id, err)
	}
	return m, nil
}

// closest returns the mode covering target with the least excess area. A
// refresh of 0 prefers the highest rate.
func closest(modes []native.DisplayMode, target native.Size, refresh float32) (native.DisplayMode, bool) {
	var (
		best      native.DisplayMode
		found     bool
		bestArea  int
		bestDelta float64
	)
	for _, m := range modes {
		if m.Size.Width < target.Width || m.Size.Height < target.Height {
			continue
		}
		area := m.Size.Width*m.Size.Height - target.Width*target.Height
		delta := -float64(m.RefreshRate)
		if refresh > 0 {
			delta = math.Abs(float64(m.RefreshRate - refresh))
		}
		if !found || area < bestArea || (area == bestArea && delta < bestDelta) {
			best, bestArea, bestDelta, found = m, area, delta, true
		}
	}
	return best, found
}

func cloneDisplay(d native.Display) native.Display {
	d.Modes = append([]native.DisplayMode(nil), d.Modes...)
	return d
}

// IsNotFound reports whether err is a stale display lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
