package editor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func stateWith(text string, start, end int) *State {
	s := NewState(text)
	s.setSelection(start, end)
	return s
}

func assertState(t *testing.T, s *State, text string, start, end int) {
	t.Helper()
	if s.Text() != text || s.SelectionStart() != start || s.SelectionEnd() != end {
		t.Fatalf("state = %s, want (text=%q, start=%d, end=%d)", s, text, start, end)
	}
}

func expectPrecondition(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		err, ok := recover().(error)
		var perr *PreconditionError
		if !ok || !errors.As(err, &perr) {
			t.Fatalf("expected PreconditionError panic, got %v", err)
		}
	}()
	fn()
}

func TestAddTextAtCaret(t *testing.T) {
	s := stateWith("hello", 2, 2)
	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	a := NewAddText("XY")
	if !a.Apply(s) {
		t.Fatalf("Apply reported no change")
	}
	assertState(t, s, "heXYllo", 4, 4)

	if !a.Undo(s) {
		t.Fatalf("Undo reported no change")
	}
	assertState(t, s, "hello", 2, 2)

	want := []Change{
		{Kind: TextAdded, Action: a, Text: "XY", Start: 2},
		{Kind: TextRemoved, Action: a, FromUndo: true, Text: "XY", Start: 2},
	}
	if diff := cmp.Diff(want, changes, cmp.Comparer(func(x, y Action) bool { return x == y })); diff != "" {
		t.Fatalf("changes (-want +got):\n%s", diff)
	}
}

func TestAddTextReplacesSelection(t *testing.T) {
	s := stateWith("hello", 4, 1)
	var kinds []ChangeKind
	s.Subscribe(func(c Change) { kinds = append(kinds, c.Kind) })

	a := NewAddText("ipp")
	a.Apply(s)
	assertState(t, s, "hippo", 4, 4)

	a.Undo(s)
	assertState(t, s, "hello", 4, 1)

	if diff := cmp.Diff([]ChangeKind{TextReplaced, TextReplaced}, kinds); diff != "" {
		t.Fatalf("change kinds (-want +got):\n%s", diff)
	}
}

func TestAddEmptyTextOverSelectionDeletes(t *testing.T) {
	s := stateWith("hello", 1, 3)
	a := NewAddText("")
	if !a.Apply(s) {
		t.Fatalf("Apply reported no change")
	}
	assertState(t, s, "hlo", 1, 1)
	a.Undo(s)
	assertState(t, s, "hello", 1, 3)
}

func TestAddTextUnicode(t *testing.T) {
	s := stateWith("añb", 2, 2)
	a := NewAddText("日本")
	a.Apply(s)
	assertState(t, s, "añ日本b", 4, 4)
	a.Undo(s)
	assertState(t, s, "añb", 2, 2)
}

func TestAddTextUndoRequiresAddedTextBeforeCaret(t *testing.T) {
	s := stateWith("hello", 2, 2)
	a := NewAddText("XY")
	a.Apply(s)
	s.setCaret(0)
	expectPrecondition(t, func() { a.Undo(s) })
}

func TestDeleteBy(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		start, end int
		amount     int
		wantText   string
		wantCaret  int
		wantChange bool
	}{
		{"selection", "hello", 1, 4, 0, "ho", 1, true},
		{"reversed selection", "hello", 4, 1, 3, "ho", 1, true},
		{"backspace", "hello", 2, 2, -1, "hllo", 1, true},
		{"forward", "hello", 2, 2, 2, "heo", 2, true},
		{"backspace at start", "hello", 0, 0, -1, "hello", 0, false},
		{"delete at end", "hello", 5, 5, 1, "hello", 5, false},
		{"clamped", "hello", 3, 3, -10, "lo", 0, true},
		{"zero without selection", "hello", 3, 3, 0, "hello", 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stateWith(tt.text, tt.start, tt.end)
			a := NewDeleteBy(tt.amount)
			if got := a.Apply(s); got != tt.wantChange {
				t.Fatalf("Apply = %v, want %v", got, tt.wantChange)
			}
			assertState(t, s, tt.wantText, tt.wantCaret, tt.wantCaret)

			a.Undo(s)
			assertState(t, s, tt.text, tt.start, tt.end)
		})
	}
}

func TestMoveCursorBy(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		amount     int
		want       int
	}{
		{"right", 2, 2, 1, 3},
		{"left", 2, 2, -1, 1},
		{"clamp left", 1, 1, -5, 0},
		{"clamp right", 4, 4, 9, 5},
		{"collapse right", 1, 4, 1, 4},
		{"collapse left", 1, 4, -1, 1},
		{"collapse reversed right", 4, 1, 1, 4},
		{"far move from selection", 1, 3, 2, 5},
		{"far move back from selection", 2, 4, -2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stateWith("hello", tt.start, tt.end)
			a := NewMoveCursorBy(tt.amount)
			a.Apply(s)
			assertState(t, s, "hello", tt.want, tt.want)
			a.Undo(s)
			assertState(t, s, "hello", tt.start, tt.end)
		})
	}
}

func TestExpandSelectionBy(t *testing.T) {
	s := stateWith("hello", 2, 2)
	a := NewExpandSelectionBy(2)
	a.Apply(s)
	assertState(t, s, "hello", 2, 4)
	if got := s.SelectedText(); got != "ll" {
		t.Fatalf("SelectedText() = %q", got)
	}

	b := NewExpandSelectionBy(-10)
	b.Apply(s)
	assertState(t, s, "hello", 2, 0)

	b.Undo(s)
	a.Undo(s)
	assertState(t, s, "hello", 2, 2)
}

func TestSelectionActionsReportNoop(t *testing.T) {
	s := stateWith("hello", 0, 5)
	a := NewSelectAll()
	if a.Apply(s) {
		t.Fatalf("SelectAll over a full selection reported a change")
	}
	if a.Undo(s) {
		t.Fatalf("undo of a no-op reported a change")
	}

	var fired bool
	s.Subscribe(func(Change) { fired = true })
	set := NewSetSelection(0, 5)
	set.Apply(s)
	if fired {
		t.Fatalf("no-op SetSelection emitted a change")
	}
}

func TestSelectAllAndSetSelection(t *testing.T) {
	s := stateWith("hello", 3, 3)
	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	all := NewSelectAll()
	all.Apply(s)
	assertState(t, s, "hello", 0, 5)

	set := NewSetSelection(4, 1)
	set.Apply(s)
	assertState(t, s, "hello", 4, 1)

	set.Undo(s)
	all.Undo(s)
	assertState(t, s, "hello", 3, 3)

	if len(changes) != 4 {
		t.Fatalf("got %d changes, want 4", len(changes))
	}
	last := changes[3]
	if last.Kind != SelectionChanged || !last.FromUndo || last.NewSelection.Start != 3 {
		t.Fatalf("last change = %s", last)
	}
}

func TestSetSelectionOutsideTextPanics(t *testing.T) {
	s := NewState("abc")
	expectPrecondition(t, func() { NewSetSelection(0, 4).Apply(s) })
}

func TestOneShotGuards(t *testing.T) {
	actions := []Action{
		NewAddText("x"),
		NewDeleteBy(-1),
		NewMoveCursorBy(-1),
		NewExpandSelectionBy(-1),
		NewSelectAll(),
		NewSetSelection(0, 1),
	}
	for _, a := range actions {
		t.Run(a.String(), func(t *testing.T) {
			s := NewState("hello")
			expectPrecondition(t, func() { a.Undo(s) })

			a.Apply(s)
			if !a.Applied() {
				t.Fatalf("Applied() = false after Apply")
			}
			expectPrecondition(t, func() { a.Apply(s) })

			a.Undo(s)
			if !a.Undone() {
				t.Fatalf("Undone() = false after Undo")
			}
			expectPrecondition(t, func() { a.Undo(s) })
		})
	}
}
