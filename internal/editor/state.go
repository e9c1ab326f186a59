// Package editor holds the text state behind a single-line or multi-line text
// box and the undoable actions that edit it.
package editor

import (
	"fmt"
	"strings"
	"sync"
)

// Selection is an immutable copy of a selection. Start is the anchor and End
// the moving edge, so End may be smaller than Start.
type Selection struct {
	Start int
	End   int
	Text  string
}

func (s Selection) Left() int  { return min(s.Start, s.End) }
func (s Selection) Right() int { return max(s.Start, s.End) }
func (s Selection) Len() int   { return s.Right() - s.Left() }

// State is the text, the selection and the IME composition of one editor.
// Text positions count runes; position n is before the n-th rune.
type State struct {
	text  []rune
	start int
	end   int
	ime   string

	mu   sync.Mutex
	subs []subscriber
	next int
}

type subscriber struct {
	id int
	fn func(Change)
}

// NewState creates a state holding initial with the caret at its end.
func NewState(initial string) *State {
	s := &State{text: []rune(initial)}
	s.setCaret(len(s.text))
	return s
}

func (s *State) Text() string { return string(s.text) }
func (s *State) Len() int     { return len(s.text) }

func (s *State) SelectionStart() int  { return s.start }
func (s *State) SelectionEnd() int    { return s.end }
func (s *State) SelectionLeft() int   { return min(s.start, s.end) }
func (s *State) SelectionRight() int  { return max(s.start, s.end) }
func (s *State) SelectionLength() int { return s.SelectionRight() - s.SelectionLeft() }

// Caret returns the caret position. It panics with a *PreconditionError when
// a selection is active.
func (s *State) Caret() int {
	if s.start != s.end {
		panic(&PreconditionError{Op: "caret", Reason: "selection is not empty"})
	}
	return s.start
}

// HasCaret reports whether the selection is empty.
func (s *State) HasCaret() bool { return s.start == s.end }

func (s *State) SelectedText() string {
	return string(s.text[s.SelectionLeft():s.SelectionRight()])
}

// Selection returns a copy of the current selection.
func (s *State) Selection() Selection {
	return Selection{Start: s.start, End: s.end, Text: s.SelectedText()}
}

// SetComposition sets the IME composition text. Composition is displayed by
// FullText but is not part of the text until committed with an AddText.
func (s *State) SetComposition(text string) { s.ime = text }

func (s *State) Composition() string { return s.ime }

func (s *State) CompositionActive() bool { return s.ime != "" }

// FullText is the text as displayed: the composition replaces the selection
// while composing.
func (s *State) FullText() string {
	if !s.CompositionActive() {
		return s.Text()
	}
	var b strings.Builder
	b.WriteString(string(s.text[:s.SelectionLeft()]))
	b.WriteString(s.ime)
	b.WriteString(string(s.text[s.SelectionRight():]))
	return b.String()
}

// Subscribe registers fn for every change made by an action.
func (s *State) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *State) emit(c Change) {
	s.mu.Lock()
	subs := append([]subscriber(nil), s.subs...)
	s.mu.Unlock()
	for _, sub := range subs {
		sub.fn(c)
	}
}

func (s *State) String() string {
	return fmt.Sprintf("(text=%q, start=%d, end=%d, composition=%q)", s.Text(), s.start, s.end, s.ime)
}

// Box renders the text above a marker line: '*' under selected runes, "/\"
// around the caret, '<' for a caret at 0.
func (s *State) Box() string {
	marks := []rune(strings.Repeat(" ", len(s.text)+1))
	switch {
	case s.start != s.end:
		for i := s.SelectionLeft(); i < s.SelectionRight(); i++ {
			marks[i] = '*'
		}
	case s.start == 0:
		marks[0] = '<'
	default:
		marks[s.start-1] = '/'
		marks[s.start] = '\\'
	}
	return fmt.Sprintf("Text: %s\nSel:  %s", s.Text(), strings.TrimRight(string(marks), " "))
}

func (s *State) check(op string, pos int) {
	if pos < 0 || pos > len(s.text) {
		panic(&PreconditionError{Op: op, Reason: fmt.Sprintf("position %d outside [0, %d]", pos, len(s.text))})
	}
}

func (s *State) clamp(pos int) int {
	return max(0, min(pos, len(s.text)))
}

func (s *State) setCaret(pos int) {
	s.check("set caret", pos)
	s.start, s.end = pos, pos
}

// setSelection reports whether the selection changed.
func (s *State) setSelection(start, end int) bool {
	s.check("set selection", start)
	s.check("set selection", end)
	if s.start == start && s.end == end {
		return false
	}
	s.start, s.end = start, end
	return true
}

func (s *State) insert(pos int, text string) {
	r := []rune(text)
	out := make([]rune, 0, len(s.text)+len(r))
	out = append(out, s.text[:pos]...)
	out = append(out, r...)
	s.text = append(out, s.text[pos:]...)
}

func (s *State) remove(pos, n int) {
	s.text = append(s.text[:pos:pos], s.text[pos+n:]...)
	s.setCaret(pos)
}

// removeSelection deletes the selected text and leaves the caret at its left
// edge. It reports false when nothing was selected.
func (s *State) removeSelection() (Selection, bool) {
	if s.SelectionLength() == 0 {
		return Selection{}, false
	}
	sel := s.Selection()
	s.remove(sel.Left(), sel.Len())
	return sel, true
}

// insertAtCaret replaces the selection with text and puts the caret after
// it. The removed selection is returned.
func (s *State) insertAtCaret(text string) (Selection, bool) {
	removed, ok := s.removeSelection()
	caret := s.Caret()
	s.insert(caret, text)
	s.setCaret(caret + len([]rune(text)))
	return removed, ok
}

// rollbackSelection reinserts a selection removed by removeSelection.
func (s *State) rollbackSelection(sel Selection) {
	if s.Caret() != sel.Left() {
		panic(&PreconditionError{Op: "rollback selection", Reason: fmt.Sprintf("caret %d is not at %d", s.start, sel.Left())})
	}
	s.insertAtCaret(sel.Text)
	s.start, s.end = sel.Start, sel.End
}

func (s *State) moveCursorBy(offset int) bool {
	return s.moveSelection(offset, false)
}

func (s *State) expandSelectionBy(offset int) bool {
	return s.moveSelection(offset, true)
}

func (s *State) moveSelection(offset int, expand bool) bool {
	oldStart, oldEnd := s.start, s.end
	switch {
	case expand:
		s.end = s.clamp(s.end + offset)
	case s.SelectionLength() > 0 && abs(offset) <= 1:
		// Collapsing a selection lands on its edge instead of stepping past it.
		edge := s.SelectionLeft()
		if offset > 0 {
			edge = s.SelectionRight()
		}
		s.start, s.end = edge, edge
	default:
		from := s.SelectionLeft()
		if offset > 0 {
			from = s.SelectionRight()
		}
		pos := s.clamp(from + offset)
		s.start, s.end = pos, pos
	}
	return oldStart != s.start || oldEnd != s.end
}

// deleteBy removes the selection, or amount runes from the caret when
// nothing is selected. Negative amounts delete backwards.
func (s *State) deleteBy(amount int) (Selection, bool) {
	if s.SelectionLength() == 0 {
		s.end = s.clamp(s.start + amount)
	}
	return s.removeSelection()
}

func (s *State) selectAll() bool {
	return s.setSelection(0, len(s.text))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
