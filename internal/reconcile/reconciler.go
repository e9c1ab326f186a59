// Package reconcile propagates changes between native window state and the
// values derived from it.
//
// Two one-directional passes run each frame. The derived pass recomputes
// framework values from the store after the event pump changed it. The
// command pass pushes consumer intents to the native window. Changes made
// during the derived pass never schedule commands, which keeps the passes
// from feeding each other.
package reconcile

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/winsync/internal/bindable"
	"github.com/1broseidon/winsync/internal/native"
)

// ErrReentrantFlush is returned when a flush is started from inside a flush
// of the same kind.
var ErrReentrantFlush = errors.New("reconcile: flush already in progress")

// Derived recomputes framework values from a snapshot of native state.
// Identity is the pointer: registering the same Derived twice never runs it
// twice in one pass.
type Derived struct {
	name string
	fn   func(snapshot native.Reader)
}

// NewDerived creates a derived update.
func NewDerived(name string, fn func(snapshot native.Reader)) *Derived {
	return &Derived{name: name, fn: fn}
}

func (d *Derived) String() string { return d.name }

// Command pushes framework intents to a native state target.
type Command struct {
	name string
	fn   func(target native.State) error
}

// NewCommand creates a command update.
func NewCommand(name string, fn func(target native.State) error) *Command {
	return &Command{name: name, fn: fn}
}

func (c *Command) String() string { return c.name }

// Config configures a Reconciler.
type Config struct {
	Logger *slog.Logger
}

// Reconciler owns the pending sets of one window. Registration and flushing
// are expected on the goroutine that owns the window; the lock makes a
// violation of that assumption visible instead of corrupting the sets.
type Reconciler struct {
	logger *slog.Logger

	mu              sync.Mutex
	derived         queue[*Derived]
	commands        queue[*Command]
	updatingDerived bool
	flushingCommand bool

	unsubscribe []func()
}

// New creates a Reconciler.
func New(cfg Config) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		logger:   logger,
		derived:  newQueue[*Derived](),
		commands: newQueue[*Command](),
	}
}

// RegisterNativeDependency marks d pending whenever any of the observables
// changes.
func (r *Reconciler) RegisterNativeDependency(d *Derived, deps ...bindable.Observable) {
	for _, dep := range deps {
		unsub := dep.Subscribe(func() {
			r.mu.Lock()
			r.derived.add(d)
			r.mu.Unlock()
		})
		r.track(unsub)
	}
}

// Invalidate marks derived updates pending without a change, so the next
// flush recomputes them.
func (r *Reconciler) Invalidate(ds ...*Derived) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range ds {
		r.derived.add(d)
	}
}

// RegisterCommandDependency marks c pending whenever any of the observables
// changes because of a consumer intent. Changes made by the derived pass are
// ignored.
func (r *Reconciler) RegisterCommandDependency(c *Command, deps ...bindable.Observable) {
	for _, dep := range deps {
		unsub := dep.Subscribe(func() { r.scheduleFromChange(c) })
		r.track(unsub)
	}
}

// BindDerived registers c like RegisterCommandDependency and schedules it
// once immediately, so the current value reaches the native side on the next
// command flush.
func (r *Reconciler) BindDerived(c *Command, deps ...bindable.Observable) {
	r.RegisterCommandDependency(c, deps...)
	r.scheduleFromChange(c)
}

func (r *Reconciler) scheduleFromChange(c *Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updatingDerived {
		return
	}
	r.commands.add(c)
}

// Schedule enqueues c for the next command flush. Scheduling an already
// pending command is a no-op.
func (r *Reconciler) Schedule(c *Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands.add(c)
}

// UpdatingDerived reports whether a derived pass is running.
func (r *Reconciler) UpdatingDerived() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updatingDerived
}

// PendingDerived returns the number of derived updates waiting for a flush.
func (r *Reconciler) PendingDerived() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.derived.len()
}

// PendingCommands returns the number of commands waiting for a flush.
func (r *Reconciler) PendingCommands() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.commands.len()
}

// FlushDerivedUpdates runs every pending derived update once, in
// registration order, against the same snapshot.
func (r *Reconciler) FlushDerivedUpdates(snapshot native.Reader) error {
	r.mu.Lock()
	if r.updatingDerived {
		r.mu.Unlock()
		return ErrReentrantFlush
	}
	r.updatingDerived = true
	pending := r.derived.take()
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.updatingDerived = false
		r.mu.Unlock()
	}()

	for _, d := range pending {
		d.fn(snapshot)
	}
	return nil
}

// FlushCommandUpdates runs every queued command against target and returns
// their joined errors. Commands scheduled while flushing run in the next
// flush.
func (r *Reconciler) FlushCommandUpdates(target native.State) error {
	r.mu.Lock()
	if r.flushingCommand {
		r.mu.Unlock()
		return ErrReentrantFlush
	}
	r.flushingCommand = true
	pending := r.commands.take()
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.flushingCommand = false
		r.mu.Unlock()
	}()

	var errs []error
	for _, c := range pending {
		if err := c.fn(target); err != nil {
			r.logger.Warn("native command failed", "command", c.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	return errors.Join(errs...)
}

// Close drops every subscription made by the reconciler.
func (r *Reconciler) Close() {
	r.mu.Lock()
	unsubs := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()
	for _, fn := range unsubs {
		fn()
	}
}

func (r *Reconciler) track(unsub func()) {
	r.mu.Lock()
	r.unsubscribe = append(r.unsubscribe, unsub)
	r.mu.Unlock()
}

// queue is an insertion-ordered set.
type queue[T comparable] struct {
	items []T
	set   map[T]struct{}
}

func newQueue[T comparable]() queue[T] {
	return queue[T]{set: make(map[T]struct{})}
}

func (q *queue[T]) add(v T) {
	if _, ok := q.set[v]; ok {
		return
	}
	q.set[v] = struct{}{}
	q.items = append(q.items, v)
}

func (q *queue[T]) take() []T {
	items := q.items
	q.items = nil
	clear(q.set)
	return items
}

func (q *queue[T]) len() int {
	return len(q.items)
}
