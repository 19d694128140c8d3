package service

import (
	"time"

	"screening/internal/eligibility"
	"screening/internal/eligibility/wizard"
)

// maxEventsPerAdvance bounds one wizard request.
const maxEventsPerAdvance = 64

// EvaluateRequest carries raw questionnaire answers. AgeInput is the text the
// user typed; it goes through the same input clamp as the wizard.
type EvaluateRequest struct {
	AgeInput       string
	ExclusionCodes []string
	RiskCodes      []string
}

// EvaluateResult is the classification of one candidate.
type EvaluateResult struct {
	Candidate      eligibility.Candidate
	Outcome        eligibility.Outcome
	Label          string
	FinalLabel     string
	Summary        string
	MaxAllowedStep wizard.Step
	EvaluatedAt    time.Time
}

// AdvanceRequest applies Events to State in order.
type AdvanceRequest struct {
	State  wizard.State
	Events []wizard.Event
}

// AdvanceResult is the questionnaire after the events were applied.
type AdvanceResult struct {
	State          wizard.State
	MaxAllowedStep wizard.Step
	Preview        eligibility.Outcome
	Label          string
	FinalLabel     string
	Summary        string
}
