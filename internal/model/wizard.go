package model

type StartWizardRequest struct {
	GroupID int64 `json:"group_id"`
}

type StartWizardResponse struct {
	Prompt string `json:"prompt"`
}

type AdvanceWizardRequest struct {
	Input string `json:"input"`
}

type AdvanceWizardResponse struct {
	Prompt string `json:"prompt"`

	// Committed is set when the final step persisted the lottery; Lottery
	// holds the created entity in that case.
	Committed bool     `json:"committed"`
	Lottery   *Lottery `json:"lottery,omitempty"`
}

type SelectWizardTypeRequest struct {
	Choice string `json:"choice"`
}

type SelectWizardTypeResponse struct {
	Prompt string `json:"prompt"`
}

type CancelWizardRequest struct{}

type CancelWizardResponse struct{}
