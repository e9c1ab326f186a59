package editor

import (
	"fmt"
	"unicode/utf8"
)

// Action is a one-shot edit. Apply may be called once; Undo may be called
// once, after Apply, and reverses exactly what Apply did provided the state
// was not changed in between by anything else. Both panic with a
// *PreconditionError when called out of order.
//
// Apply and Undo report whether the state changed. A false return is a
// normal no-op, such as deleting at the start of the text.
type Action interface {
	Apply(s *State) bool
	Undo(s *State) bool
	Applied() bool
	Undone() bool
	String() string

	// fresh returns an unapplied action with the same parameters.
	fresh() Action
}

type lifecycle struct {
	applied bool
	undone  bool
}

func (l *lifecycle) Applied() bool { return l.applied }
func (l *lifecycle) Undone() bool  { return l.undone }

func (l *lifecycle) beginApply(name string) {
	if l.applied {
		panic(&PreconditionError{Action: name, Op: "apply", Reason: "already applied"})
	}
	l.applied = true
}

func (l *lifecycle) beginUndo(name string) {
	if !l.applied {
		panic(&PreconditionError{Action: name, Op: "undo", Reason: "not applied"})
	}
	if l.undone {
		panic(&PreconditionError{Action: name, Op: "undo", Reason: "already undone"})
	}
	l.undone = true
}

// AddText replaces the selection with Text, or inserts Text at the caret.
type AddText struct {
	lifecycle
	Text string

	removed  Selection
	replaced bool
}

func NewAddText(text string) *AddText { return &AddText{Text: text} }

func (a *AddText) String() string { return fmt.Sprintf("AddText(%q)", a.Text) }
func (a *AddText) fresh() Action  { return NewAddText(a.Text) }

func (a *AddText) Apply(s *State) bool {
	a.beginApply(a.String())
	a.removed, a.replaced = s.insertAtCaret(a.Text)
	start := s.Caret() - utf8.RuneCountInString(a.Text)

	switch {
	case a.replaced && a.Text != "":
		s.emit(Change{Kind: TextReplaced, Action: a, OldText: a.removed.Text, NewText: a.Text})
	case a.replaced:
		s.emit(Change{Kind: TextRemoved, Action: a, Text: a.removed.Text, Start: a.removed.Left()})
	case a.Text != "":
		s.emit(Change{Kind: TextAdded, Action: a, Text: a.Text, Start: start})
	default:
		return false
	}
	return true
}

// Undo removes the added text, which must sit directly before the caret, and
// restores a replaced selection.
func (a *AddText) Undo(s *State) bool {
	a.beginUndo(a.String())
	n := utf8.RuneCountInString(a.Text)
	caret := s.Caret()
	start := caret - n
	if start < 0 || string(s.text[start:caret]) != a.Text {
		panic(&PreconditionError{Action: a.String(), Op: "undo", Reason: "added text is not before the caret"})
	}
	s.remove(start, n)

	switch {
	case a.replaced && a.Text != "":
		s.rollbackSelection(a.removed)
		s.emit(Change{Kind: TextReplaced, Action: a, FromUndo: true, OldText: a.Text, NewText: a.removed.Text})
	case a.replaced:
		s.rollbackSelection(a.removed)
		s.emit(Change{Kind: TextAdded, Action: a, FromUndo: true, Text: a.removed.Text, Start: a.removed.Left()})
	case n > 0:
		s.emit(Change{Kind: TextRemoved, Action: a, FromUndo: true, Text: a.Text, Start: start})
	default:
		return false
	}
	return true
}

// DeleteBy deletes the selection, or Amount runes from the caret when nothing
// is selected. A negative Amount deletes backwards.
type DeleteBy struct {
	lifecycle
	Amount int

	before  Selection
	removed Selection
	deleted bool
}

func NewDeleteBy(amount int) *DeleteBy { return &DeleteBy{Amount: amount} }

func (a *DeleteBy) String() string { return fmt.Sprintf("DeleteBy(%d)", a.Amount) }
func (a *DeleteBy) fresh() Action  { return NewDeleteBy(a.Amount) }

func (a *DeleteBy) Apply(s *State) bool {
	a.beginApply(a.String())
	a.before = s.Selection()
	a.removed, a.deleted = s.deleteBy(a.Amount)
	if !a.deleted {
		return false
	}
	s.emit(Change{Kind: TextRemoved, Action: a, Text: a.removed.Text, Start: a.removed.Left()})
	return true
}

func (a *DeleteBy) Undo(s *State) bool {
	a.beginUndo(a.String())
	if !a.deleted {
		return false
	}
	s.rollbackSelection(a.removed)
	s.setSelection(a.before.Start, a.before.End)
	s.emit(Change{Kind: TextAdded, Action: a, FromUndo: true, Text: a.removed.Text, Start: a.removed.Left()})
	return true
}

// selectionEdit is the shared part of the actions that only move the
// selection. Undo restores the selection seen before Apply.
type selectionEdit struct {
	lifecycle
	before  Selection
	after   Selection
	changed bool
}

func (e *selectionEdit) apply(s *State, a Action, fn func() bool) bool {
	e.beginApply(a.String())
	e.before = s.Selection()
	e.changed = fn()
	if !e.changed {
		return false
	}
	e.after = s.Selection()
	s.emit(Change{Kind: SelectionChanged, Action: a, OldSelection: e.before, NewSelection: e.after})
	return true
}

func (e *selectionEdit) undo(s *State, a Action) bool {
	e.beginUndo(a.String())
	if !e.changed {
		return false
	}
	s.setSelection(e.before.Start, e.before.End)
	s.emit(Change{Kind: SelectionChanged, Action: a, FromUndo: true, OldSelection: e.after, NewSelection: s.Selection()})
	return true
}

// MoveCursorBy collapses the selection and moves the caret by Amount runes.
// A move of one rune out of a selection stops at the selection's edge.
type MoveCursorBy struct {
	selectionEdit
	Amount int
}

func NewMoveCursorBy(amount int) *MoveCursorBy { return &MoveCursorBy{Amount: amount} }

func (a *MoveCursorBy) String() string { return fmt.Sprintf("MoveCursorBy(%d)", a.Amount) }
func (a *MoveCursorBy) fresh() Action  { return NewMoveCursorBy(a.Amount) }

func (a *MoveCursorBy) Apply(s *State) bool {
	return a.apply(s, a, func() bool { return s.moveCursorBy(a.Amount) })
}

func (a *MoveCursorBy) Undo(s *State) bool { return a.undo(s, a) }

// ExpandSelectionBy moves the selection end by Amount runes, keeping the
// anchor.
type ExpandSelectionBy struct {
	selectionEdit
	Amount int
}

func NewExpandSelectionBy(amount int) *ExpandSelectionBy { return &ExpandSelectionBy{Amount: amount} }

func (a *ExpandSelectionBy) String() string { return fmt.Sprintf("ExpandSelectionBy(%d)", a.Amount) }
func (a *ExpandSelectionBy) fresh() Action  { return NewExpandSelectionBy(a.Amount) }

func (a *ExpandSelectionBy) Apply(s *State) bool {
	return a.apply(s, a, func() bool { return s.expandSelectionBy(a.Amount) })
}

func (a *ExpandSelectionBy) Undo(s *State) bool { return a.undo(s, a) }

type SelectAll struct {
	selectionEdit
}

func NewSelectAll() *SelectAll { return &SelectAll{} }

func (a *SelectAll) String() string { return "SelectAll" }
func (a *SelectAll) fresh() Action  { return NewSelectAll() }

func (a *SelectAll) Apply(s *State) bool {
	return a.apply(s, a, s.selectAll)
}

func (a *SelectAll) Undo(s *State) bool { return a.undo(s, a) }

// SetSelection selects [Start, End). Positions outside the text panic.
type SetSelection struct {
	selectionEdit
	Start int
	End   int
}

func NewSetSelection(start, end int) *SetSelection { return &SetSelection{Start: start, End: end} }

func (a *SetSelection) String() string { return fmt.Sprintf("SetSelection(%d, %d)", a.Start, a.End) }
func (a *SetSelection) fresh() Action  { return NewSetSelection(a.Start, a.End) }

func (a *SetSelection) Apply(s *State) bool {
	return a.apply(s, a, func() bool { return s.setSelection(a.Start, a.End) })
}

func (a *SetSelection) Undo(s *State) bool { return a.undo(s, a) }
