package editor

import "fmt"

// ChangeKind classifies a Change.
type ChangeKind int

const (
	TextAdded ChangeKind = iota + 1
	TextRemoved
	TextReplaced
	SelectionChanged
)

func (k ChangeKind) String() string {
	switch k {
	case TextAdded:
		return "text_added"
	case TextRemoved:
		return "text_removed"
	case TextReplaced:
		return "text_replaced"
	case SelectionChanged:
		return "selection_changed"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Change describes one effect of applying or undoing an action.
//
//   - TextAdded and TextRemoved set Text and Start.
//   - TextReplaced sets OldText and NewText.
//   - SelectionChanged sets OldSelection and NewSelection.
type Change struct {
	Kind     ChangeKind
	Action   Action
	FromUndo bool

	Text  string
	Start int

	OldText string
	NewText string

	OldSelection Selection
	NewSelection Selection
}

func (c Change) String() string {
	undo := ""
	if c.FromUndo {
		undo = " (undo)"
	}
	switch c.Kind {
	case TextAdded, TextRemoved:
		return fmt.Sprintf("%s %q at %d%s", c.Kind, c.Text, c.Start, undo)
	case TextReplaced:
		return fmt.Sprintf("%s %q -> %q%s", c.Kind, c.OldText, c.NewText, undo)
	default:
		return fmt.Sprintf("%s %d:%d -> %d:%d%s", c.Kind,
			c.OldSelection.Start, c.OldSelection.End, c.NewSelection.Start, c.NewSelection.End, undo)
	}
}
