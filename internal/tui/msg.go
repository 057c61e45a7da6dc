package tui

import "github.com/Makepad-fr/tada/internal/model"

// Events a user gesture turns into. Update is the only place they are
// handled, so their order is the order Bubble Tea delivers them.

// SubmitMsg adds a record with Text as its description.
type SubmitMsg struct{ Text string }

// ToggleStatusMsg sends Status (the new one) for the record with ID.
type ToggleStatusMsg struct {
	ID          int64
	Description string
	Status      model.Status
}

// DeleteMsg removes the record with ID and then renders.
type DeleteMsg struct{ ID int64 }

// RenderMsg fetches every record and redraws the list.
type RenderMsg struct{}

// Results of remote calls.

type renderedMsg struct{ todos []model.Todo }

type addedMsg struct{}

type updatedMsg struct{ id int64 }

type errMsg struct {
	cmd string
	err error
}
