package reconcile

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/winsync/internal/bindable"
	"github.com/1broseidon/winsync/internal/native"
)

func TestDerivedRunsOncePerPassInRegistrationOrder(t *testing.T) {
	r := New(Config{})
	size := bindable.NewComparable(0)
	scale := bindable.NewComparable(0)

	var got []string
	clientSize := NewDerived("client_size", func(native.Reader) { got = append(got, "client_size") })
	ratio := NewDerived("scale", func(native.Reader) { got = append(got, "scale") })
	r.RegisterNativeDependency(clientSize, size, scale)
	r.RegisterNativeDependency(ratio, size)
	r.RegisterNativeDependency(ratio, size)

	size.Set(1)
	scale.Set(2)
	size.Set(3)
	if n := r.PendingDerived(); n != 2 {
		t.Fatalf("pending = %d, want 2", n)
	}
	if err := r.FlushDerivedUpdates(native.NewStore()); err != nil {
		t.Fatalf("FlushDerivedUpdates: %v", err)
	}
	if diff := cmp.Diff([]string{"client_size", "scale"}, got); diff != "" {
		t.Fatalf("run order mismatch (-want +got):\n%s", diff)
	}
	if n := r.PendingDerived(); n != 0 {
		t.Fatalf("pending after flush = %d", n)
	}
}

func TestDerivedSeesSameSnapshot(t *testing.T) {
	r := New(Config{})
	trigger := bindable.NewComparable(false)
	store := native.NewStore()
	_ = store.SetTitle("snapshot")

	var seen []native.Reader
	for _, name := range []string{"a", "b"} {
		r.RegisterNativeDependency(NewDerived(name, func(s native.Reader) { seen = append(seen, s) }), trigger)
	}
	trigger.Set(true)
	_ = r.FlushDerivedUpdates(store)
	if len(seen) != 2 || seen[0] != seen[1] {
		t.Fatalf("derived updates saw different snapshots: %v", seen)
	}
}

func TestDerivedChangesDoNotScheduleCommands(t *testing.T) {
	r := New(Config{})
	source := bindable.NewComparable(0)
	mode := bindable.NewComparable("windowed")

	cmd := NewCommand("apply_mode", func(st native.State) error { return nil })
	r.RegisterCommandDependency(cmd, mode)
	r.RegisterNativeDependency(NewDerived("mode", func(native.Reader) { mode.Set("fullscreen") }), source)

	source.Set(1)
	if err := r.FlushDerivedUpdates(nil); err != nil {
		t.Fatalf("FlushDerivedUpdates: %v", err)
	}
	if mode.Get() != "fullscreen" {
		t.Fatalf("derived update did not run")
	}
	if n := r.PendingCommands(); n != 0 {
		t.Fatalf("derived change scheduled %d commands", n)
	}

	mode.Set("borderless")
	if n := r.PendingCommands(); n != 1 {
		t.Fatalf("consumer change scheduled %d commands, want 1", n)
	}
}

func TestBindDerivedSchedulesImmediately(t *testing.T) {
	r := New(Config{})
	v := bindable.NewComparable(0)
	runs := 0
	r.BindDerived(NewCommand("push", func(native.State) error { runs++; return nil }), v)
	if n := r.PendingCommands(); n != 1 {
		t.Fatalf("pending = %d, want 1", n)
	}
	v.Set(5)
	if err := r.FlushCommandUpdates(native.NewStore()); err != nil {
		t.Fatalf("FlushCommandUpdates: %v", err)
	}
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
}

func TestFlushCommandUpdatesJoinsErrors(t *testing.T) {
	r := New(Config{})
	first := errors.New("first")
	second := errors.New("second")
	ran := 0
	r.Schedule(NewCommand("a", func(native.State) error { ran++; return first }))
	r.Schedule(NewCommand("b", func(native.State) error { ran++; return nil }))
	r.Schedule(NewCommand("c", func(native.State) error { ran++; return second }))

	err := r.FlushCommandUpdates(native.NewStore())
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Fatalf("err = %v, want both errors", err)
	}
	if ran != 3 {
		t.Fatalf("ran = %d, want 3", ran)
	}
	if n := r.PendingCommands(); n != 0 {
		t.Fatalf("queue not cleared: %d", n)
	}
}

func TestScheduleDeduplicates(t *testing.T) {
	r := New(Config{})
	c := NewCommand("once", func(native.State) error { return nil })
	r.Schedule(c)
	r.Schedule(c)
	if n := r.PendingCommands(); n != 1 {
		t.Fatalf("pending = %d, want 1", n)
	}
}

func TestReentrantFlushIsRejected(t *testing.T) {
	r := New(Config{})
	trigger := bindable.NewComparable(0)
	var inner error
	r.RegisterNativeDependency(NewDerived("reenter", func(s native.Reader) {
		inner = r.FlushDerivedUpdates(s)
	}), trigger)
	trigger.Set(1)
	if err := r.FlushDerivedUpdates(native.NewStore()); err != nil {
		t.Fatalf("outer flush: %v", err)
	}
	if !errors.Is(inner, ErrReentrantFlush) {
		t.Fatalf("inner flush = %v, want ErrReentrantFlush", inner)
	}

	var innerCmd error
	r.Schedule(NewCommand("reenter", func(st native.State) error {
		innerCmd = r.FlushCommandUpdates(st)
		return nil
	}))
	if err := r.FlushCommandUpdates(native.NewStore()); err != nil {
		t.Fatalf("outer command flush: %v", err)
	}
	if !errors.Is(innerCmd, ErrReentrantFlush) {
		t.Fatalf("inner command flush = %v, want ErrReentrantFlush", innerCmd)
	}
}

func TestCloseDropsSubscriptions(t *testing.T) {
	r := New(Config{})
	v := bindable.NewComparable(0)
	r.RegisterNativeDependency(NewDerived("d", func(native.Reader) {}), v)
	r.Close()
	v.Set(1)
	if n := r.PendingDerived(); n != 0 {
		t.Fatalf("pending after Close = %d", n)
	}
}
