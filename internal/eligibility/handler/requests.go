package handler

import (
	"bytes"
	"encoding/json"
	"strconv"

	"screening/internal/eligibility"
	"screening/internal/eligibility/wizard"
	dErrors "screening/pkg/domain-errors"
)

const (
	maxCodesPerList = 32
	maxCodeLength   = 64
	maxAgeInput     = 16
)

// AgeInput is the raw age answer. It accepts a JSON string or number; null and
// any other value decode to the empty answer, which classifies as unknown.
type AgeInput string

func (a *AgeInput) UnmarshalJSON(data []byte) error {
	*a = ""
	data = bytes.TrimSpace(data)
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = AgeInput(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*a = AgeInput(n.String())
	}
	return nil
}

// EvaluateRequest is the HTTP request body for POST /eligibility/evaluate.
type EvaluateRequest struct {
	Age            AgeInput            `json:"age"`
	ExclusionCodes eligibility.CodeSet `json:"exclusion_codes"`
	RiskCodes      eligibility.CodeSet `json:"risk_codes"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
// Only sizes are checked; content problems degrade to unknown or empty values.
func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Age) > maxAgeInput {
		return dErrors.New(dErrors.CodeValidation, "age must be at most "+strconv.Itoa(maxAgeInput)+" characters")
	}
	if err := validateCodes("exclusion_codes", r.ExclusionCodes); err != nil {
		return err
	}
	return validateCodes("risk_codes", r.RiskCodes)
}

// WizardRequest is the HTTP request body for POST /eligibility/wizard. An
// absent state starts a fresh questionnaire.
type WizardRequest struct {
	State  *wizard.State  `json:"state"`
	Events []wizard.Event `json:"events"`
}

func (r *WizardRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.State != nil {
		if len(r.State.AgeInput) > maxAgeInput {
			return dErrors.New(dErrors.CodeValidation, "state.age_input is too long")
		}
		if err := validateCodes("state.candidate.exclusion_codes", r.State.Candidate.ExclusionCodes); err != nil {
			return err
		}
		if err := validateCodes("state.candidate.risk_codes", r.State.Candidate.RiskCodes); err != nil {
			return err
		}
	}
	for _, e := range r.Events {
		if len(e.Value) > maxCodeLength {
			return dErrors.New(dErrors.CodeValidation, "event value is too long")
		}
		if err := validateCodes("event codes", e.Codes); err != nil {
			return err
		}
	}
	return nil
}

// InitialState returns the posted state or a fresh one.
func (r *WizardRequest) InitialState() wizard.State {
	if r.State == nil {
		return wizard.Initial()
	}
	return *r.State
}

func validateCodes(field string, codes []string) error {
	if len(codes) > maxCodesPerList {
		return dErrors.New(dErrors.CodeValidation, field+" must have at most "+strconv.Itoa(maxCodesPerList)+" entries")
	}
	for _, c := range codes {
		if len(c) > maxCodeLength {
			return dErrors.New(dErrors.CodeValidation, field+" entries must be at most "+strconv.Itoa(maxCodeLength)+" characters")
		}
	}
	return nil
}
