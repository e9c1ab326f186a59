// Package bindable provides the observable value cell used by the native
// state store and the window facade.
package bindable

import "sync"

// EqualFunc reports whether two values are equal. Set uses it to suppress
// redundant notifications.
type EqualFunc[T any] func(a, b T) bool

// Comparable compares comparable values with ==.
func Comparable[T comparable](a, b T) bool {
	return a == b
}

// Observable is the type-erased view of a cell: it only reports that
// something changed.
type Observable interface {
	Subscribe(fn func()) (unsubscribe func())
}

type subscriber[T any] struct {
	id int
	fn func(old, new T)
}

// Value holds a value and notifies subscribers synchronously when it changes.
type Value[T any] struct {
	mu    sync.Mutex
	value T
	subs  []subscriber[T]
	next  int
	equal EqualFunc[T]
}

// New creates a cell with an initial value and an equality function.
// A nil equal function makes every Set notify.
func New[T any](initial T, equal EqualFunc[T]) *Value[T] {
	return &Value[T]{value: initial, equal: equal}
}

// NewComparable creates a cell for a comparable type.
func NewComparable[T comparable](initial T) *Value[T] {
	return New(initial, Comparable[T])
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Set stores value and notifies subscribers with (old, new) if it changed.
// It reports whether a change happened.
func (v *Value[T]) Set(value T) bool {
	v.mu.Lock()
	old := v.value
	if v.equal != nil && v.equal(old, value) {
		v.mu.Unlock()
		return false
	}
	v.value = value
	subs := make([]subscriber[T], len(v.subs))
	copy(subs, v.subs)
	v.mu.Unlock()

	for _, s := range subs {
		s.fn(old, value)
	}
	return true
}

// OnChange registers fn to be called with (old, new) after every change.
// Subscribers run in registration order, outside the cell lock.
func (v *Value[T]) OnChange(fn func(old, new T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	v.mu.Lock()
	id := v.next
	v.next++
	v.subs = append(v.subs, subscriber[T]{id: id, fn: fn})
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			for i, s := range v.subs {
				if s.id == id {
					v.subs = append(v.subs[:i], v.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Subscribe implements Observable.
func (v *Value[T]) Subscribe(fn func()) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	return v.OnChange(func(T, T) { fn() })
}

// BindValueChanged subscribes fn and, when runOnceImmediately is set, calls it
// once with the current value as both old and new.
func (v *Value[T]) BindValueChanged(fn func(old, new T), runOnceImmediately bool) (unsubscribe func()) {
	unsub := v.OnChange(fn)
	if runOnceImmediately && fn != nil {
		cur := v.Get()
		fn(cur, cur)
	}
	return unsub
}
