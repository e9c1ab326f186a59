package editor

import "fmt"

// PreconditionError is the panic value for programming errors: applying an
// action twice, undoing an action that was not applied, or addressing a
// position outside the text.
type PreconditionError struct {
	Action string
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("editor: %s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("editor: %s %s: %s", e.Op, e.Action, e.Reason)
}
