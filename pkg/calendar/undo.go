package calendar

// Undo actions form a LIFO history of confirmed mutations, local to the
// running session. Reversing one issues the inverse collaborator call; a
// failed reversal pushes the action back so a later retry can walk the same
// history.
type undoAction interface {
	undoAction()
}

type addAction struct {
	event Event
}

type updateAction struct {
	previous Event
	updated  Event
}

type deleteAction struct {
	event Event
}

func (addAction) undoAction()    {}
func (updateAction) undoAction() {}
func (deleteAction) undoAction() {}
