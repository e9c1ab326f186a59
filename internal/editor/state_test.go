package editor

import "testing"

func TestNewStatePutsCaretAtEnd(t *testing.T) {
	s := NewState("héllo")
	if got := s.Caret(); got != 5 {
		t.Fatalf("Caret() = %d, want 5", got)
	}
	if s.Len() != 5 {
		t.Fatalf("Len() = %d, want 5 runes", s.Len())
	}
}

func TestCaretPanicsWithSelection(t *testing.T) {
	s := stateWith("hello", 1, 3)
	if s.HasCaret() {
		t.Fatalf("HasCaret() = true with a selection")
	}
	expectPrecondition(t, func() { s.Caret() })
}

func TestSelectionAccessors(t *testing.T) {
	s := stateWith("hello", 4, 1)
	if s.SelectionLeft() != 1 || s.SelectionRight() != 4 || s.SelectionLength() != 3 {
		t.Fatalf("left/right/length = %d/%d/%d", s.SelectionLeft(), s.SelectionRight(), s.SelectionLength())
	}
	sel := s.Selection()
	if sel.Text != "ell" || sel.Left() != 1 || sel.Len() != 3 {
		t.Fatalf("Selection() = %+v", sel)
	}
}

func TestFullTextShowsComposition(t *testing.T) {
	tests := []struct {
		name        string
		start, end  int
		composition string
		want        string
	}{
		{"no composition", 2, 2, "", "hello"},
		{"at caret", 2, 2, "かな", "heかなllo"},
		{"over selection", 1, 4, "A", "hAo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stateWith("hello", tt.start, tt.end)
			s.SetComposition(tt.composition)
			if got := s.FullText(); got != tt.want {
				t.Fatalf("FullText() = %q, want %q", got, tt.want)
			}
			if s.Text() != "hello" {
				t.Fatalf("composition leaked into Text(): %q", s.Text())
			}
			if s.CompositionActive() != (tt.composition != "") {
				t.Fatalf("CompositionActive() = %v", s.CompositionActive())
			}
		})
	}
}

func TestBox(t *testing.T) {
	tests := []struct {
		start, end int
		want       string
	}{
		{0, 0, "Text: abc\nSel:  <"},
		{2, 2, "Text: abc\nSel:   /\\"},
		{1, 3, "Text: abc\nSel:   **"},
	}
	for _, tt := range tests {
		if got := stateWith("abc", tt.start, tt.end).Box(); got != tt.want {
			t.Errorf("Box() at %d:%d = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	s := NewState("")
	var n int
	unsub := s.Subscribe(func(Change) { n++ })
	NewAddText("a").Apply(s)
	unsub()
	NewAddText("b").Apply(s)
	if n != 1 {
		t.Fatalf("subscriber ran %d times, want 1", n)
	}
}
