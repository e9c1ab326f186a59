package editor

import "testing"

func TestHistoryUndoRedo(t *testing.T) {
	h := NewHistory(NewState(""), 0)

	h.Do(NewAddText("All work"))
	h.Do(NewAddText(" and no play"))
	h.Do(NewMoveCursorBy(-12))
	h.Do(NewDeleteBy(-4))
	assertState(t, h.State(), "All  and no play", 4, 4)

	steps := []struct {
		text  string
		caret int
	}{
		{"All work and no play", 8},
		{"All work and no play", 20},
		{"All work", 8},
		{"", 0},
	}
	for i, want := range steps {
		if !h.Undo() {
			t.Fatalf("undo #%d: nothing to undo", i)
		}
		assertState(t, h.State(), want.text, want.caret, want.caret)
	}
	if h.Undo() {
		t.Fatalf("undo past the start succeeded")
	}

	for h.Redo() {
	}
	assertState(t, h.State(), "All  and no play", 4, 4)
	if !h.CanUndo() || h.CanRedo() {
		t.Fatalf("CanUndo/CanRedo = %v/%v after redoing everything", h.CanUndo(), h.CanRedo())
	}
}

func TestHistorySkipsNoops(t *testing.T) {
	h := NewHistory(NewState("abc"), 0)
	if h.Do(NewDeleteBy(1)) {
		t.Fatalf("delete at end reported a change")
	}
	if h.CanUndo() {
		t.Fatalf("no-op recorded in history")
	}
}

func TestHistoryNewActionDropsRedo(t *testing.T) {
	h := NewHistory(NewState(""), 0)
	h.Do(NewAddText("a"))
	h.Undo()
	h.Do(NewAddText("b"))
	if h.CanRedo() {
		t.Fatalf("redo kept after a new action")
	}
	assertState(t, h.State(), "b", 1, 1)
}

func TestHistoryLimit(t *testing.T) {
	h := NewHistory(NewState(""), 2)
	for _, s := range []string{"a", "b", "c"} {
		h.Do(NewAddText(s))
	}
	h.Undo()
	h.Undo()
	if h.Undo() {
		t.Fatalf("undo beyond the limit succeeded")
	}
	assertState(t, h.State(), "a", 1, 1)
}
