// Package msgs defines shared message types for TUI view transitions.
package msgs

// View transition messages

// GoToGoalMsg signals transition to the goal input view.
type GoToGoalMsg struct{}

// GoToPlanMsg signals transition to the session's current plan.
type GoToPlanMsg struct{}

// GoToSavedMsg signals transition to the saved plans list.
type GoToSavedMsg struct{}

// OpenPlanMsg asks for a saved plan to become the displayed plan.
type OpenPlanMsg struct {
	PlanID string
}

// Result messages

// PlanGeneratedMsg is sent when generation succeeded and the session holds
// the new plan.
type PlanGeneratedMsg struct {
	Goal      string
	TaskCount int
}

// GenerationFailedMsg is sent when generation failed. The session still
// holds whatever it displayed before.
type GenerationFailedMsg struct {
	Err error
}

// PlanSavedMsg is sent after the displayed plan was persisted.
type PlanSavedMsg struct {
	PlanID string
}

// PlanExportedMsg is sent after the displayed plan was written as Markdown.
type PlanExportedMsg struct {
	Path string
}

// ErrorMsg carries a failure from a background command.
type ErrorMsg struct {
	Err error
}
