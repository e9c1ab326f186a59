package bindable

import "testing"

func TestValue_SetNotifiesOldAndNew(t *testing.T) {
	v := NewComparable(1)

	var gotOld, gotNew int
	calls := 0
	v.OnChange(func(old, new int) {
		calls++
		gotOld, gotNew = old, new
	})

	if !v.Set(2) {
		t.Fatal("Set(2) reported no change")
	}
	if calls != 1 || gotOld != 1 || gotNew != 2 {
		t.Fatalf("calls=%d old=%d new=%d, want 1/1/2", calls, gotOld, gotNew)
	}
	if v.Get() != 2 {
		t.Fatalf("Get() = %d, want 2", v.Get())
	}
}

func TestValue_EqualSetIsSilent(t *testing.T) {
	v := NewComparable("a")
	calls := 0
	v.Subscribe(func() { calls++ })

	if v.Set("a") {
		t.Fatal("Set with equal value reported a change")
	}
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}
}

func TestValue_NilEqualAlwaysNotifies(t *testing.T) {
	v := New([]int{1}, nil)
	calls := 0
	v.Subscribe(func() { calls++ })

	v.Set([]int{1})
	v.Set([]int{1})
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestValue_UnsubscribeStopsNotifications(t *testing.T) {
	v := NewComparable(0)
	calls := 0
	unsub := v.Subscribe(func() { calls++ })

	v.Set(1)
	unsub()
	unsub()
	v.Set(2)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestValue_SubscribersRunInRegistrationOrder(t *testing.T) {
	v := NewComparable(0)
	var order []string
	v.Subscribe(func() { order = append(order, "a") })
	v.Subscribe(func() { order = append(order, "b") })
	v.Subscribe(func() { order = append(order, "c") })

	v.Set(1)

	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("order = %v, want [a b c]", order)
	}
}

func TestValue_SubscriberMaySetAnotherCell(t *testing.T) {
	a := NewComparable(0)
	b := NewComparable(0)
	a.OnChange(func(_, n int) { b.Set(n * 10) })

	a.Set(3)
	if b.Get() != 30 {
		t.Fatalf("b = %d, want 30", b.Get())
	}
}

func TestValue_BindValueChangedRunsImmediately(t *testing.T) {
	v := NewComparable(7)
	var seen []int
	v.BindValueChanged(func(_, n int) { seen = append(seen, n) }, true)
	v.Set(8)

	if len(seen) != 2 || seen[0] != 7 || seen[1] != 8 {
		t.Fatalf("seen = %v, want [7 8]", seen)
	}
}
