package editor

// History is the undo log of one editing session. Actions that change
// nothing are not recorded.
type History struct {
	state *State
	limit int
	undo  []Action
	redo  []Action
}

// NewHistory creates a history over s keeping at most limit undo steps. A
// limit of zero or less keeps every step.
func NewHistory(s *State, limit int) *History {
	return &History{state: s, limit: limit}
}

func (h *History) State() *State { return h.state }

// Do applies a and records it. It reports whether the state changed.
func (h *History) Do(a Action) bool {
	if !a.Apply(h.state) {
		return false
	}
	h.push(a)
	h.redo = nil
	return true
}

func (h *History) push(a Action) {
	h.undo = append(h.undo, a)
	if h.limit > 0 && len(h.undo) > h.limit {
		h.undo = append(h.undo[:0:0], h.undo[len(h.undo)-h.limit:]...)
	}
}

// Undo reverses the most recent action. It reports false when there is
// nothing to undo.
func (h *History) Undo() bool {
	if len(h.undo) == 0 {
		return false
	}
	a := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	a.Undo(h.state)
	h.redo = append(h.redo, a)
	return true
}

// Redo applies the most recently undone action again. Actions are one-shot,
// so a fresh copy is applied and recorded.
func (h *History) Redo() bool {
	if len(h.redo) == 0 {
		return false
	}
	a := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	again := a.fresh()
	again.Apply(h.state)
	h.push(again)
	return true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Clear drops every recorded step.
func (h *History) Clear() {
	h.undo, h.redo = nil, nil
}
