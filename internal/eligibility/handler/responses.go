package handler

import (
	"time"

	"screening/internal/eligibility"
	"screening/internal/eligibility/service"
	"screening/internal/eligibility/wizard"
)

// EvaluateResponse is the HTTP response for POST /eligibility/evaluate.
type EvaluateResponse struct {
	Outcome        eligibility.Outcome   `json:"outcome"`
	Label          string                `json:"label"`
	FinalLabel     string                `json:"final_label"`
	Summary        string                `json:"summary"`
	MaxAllowedStep wizard.Step           `json:"max_allowed_step"`
	Candidate      eligibility.Candidate `json:"candidate"`
	EvaluatedAt    time.Time             `json:"evaluated_at"`
}

// FromResult converts a service EvaluateResult to an HTTP response.
func FromResult(result *service.EvaluateResult) *EvaluateResponse {
	return &EvaluateResponse{
		Outcome:        result.Outcome,
		Label:          result.Label,
		FinalLabel:     result.FinalLabel,
		Summary:        result.Summary,
		MaxAllowedStep: result.MaxAllowedStep,
		Candidate:      result.Candidate,
		EvaluatedAt:    result.EvaluatedAt,
	}
}

// WizardResponse is the HTTP response for POST /eligibility/wizard.
type WizardResponse struct {
	State          wizard.State        `json:"state"`
	MaxAllowedStep wizard.Step         `json:"max_allowed_step"`
	Preview        eligibility.Outcome `json:"preview"`
	Label          string              `json:"label"`
	FinalLabel     string              `json:"final_label"`
	Summary        string              `json:"summary"`
}

func FromAdvanceResult(result *service.AdvanceResult) *WizardResponse {
	return &WizardResponse{
		State:          result.State,
		MaxAllowedStep: result.MaxAllowedStep,
		Preview:        result.Preview,
		Label:          result.Label,
		FinalLabel:     result.FinalLabel,
		Summary:        result.Summary,
	}
}

// StatsResponse is the HTTP response for GET /admin/eligibility/stats.
type StatsResponse struct {
	Total   int64                      `json:"total"`
	Tallies []eligibility.OutcomeCount `json:"tallies"`
}

func FromTallies(rows []eligibility.OutcomeCount) *StatsResponse {
	resp := &StatsResponse{Tallies: rows}
	if resp.Tallies == nil {
		resp.Tallies = []eligibility.OutcomeCount{}
	}
	for _, r := range rows {
		resp.Total += r.Count
	}
	return resp
}
