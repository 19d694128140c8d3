// Package wizard models the three-step screening questionnaire as an explicit
// state value and a pure reducer. The rules are injected so the questionnaire
// never reaches for a shared global.
package wizard

import (
	"strconv"
	"strings"

	"screening/internal/eligibility"
)

// Step is a questionnaire position, 1-based.
type Step int

const (
	StepAge        Step = 1
	StepExclusions Step = 2
	StepRisk       Step = 3

	FirstStep = StepAge
	LastStep  = StepRisk
)

func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

// ParseStep reads a step from a deep link or form value. Non-numeric and
// out-of-range values are rejected.
func ParseStep(raw string) (Step, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	s := Step(n)
	if !s.Valid() {
		return 0, false
	}
	return s, true
}

// Rules is the slice of the eligibility engine the wizard needs.
type Rules interface {
	ParseAge(raw string) (clamped string, age eligibility.Age)
	IsAgeEligible(age eligibility.Age) bool
	HasExclusion(codes eligibility.CodeSet) bool
	Classify(c eligibility.Candidate) eligibility.Outcome
}

// State is the questionnaire position plus the answers so far. Reduce never
// mutates a State it receives.
type State struct {
	Step      Step                  `json:"step"`
	AgeInput  string                `json:"age_input"`
	Candidate eligibility.Candidate `json:"candidate"`
}

// Initial returns the state of a fresh questionnaire.
func Initial() State {
	return State{
		Step: StepAge,
		Candidate: eligibility.Candidate{
			Age:            eligibility.UnknownAge,
			ExclusionCodes: eligibility.CodeSet{},
			RiskCodes:      eligibility.CodeSet{},
		},
	}
}

// Wizard applies events to states using the injected rules.
type Wizard struct {
	rules Rules
}

func New(rules Rules) *Wizard {
	return &Wizard{rules: rules}
}

// MaxAllowedStep is the highest step whose gate passes for c:
// exclusions need an eligible age, risk additionally needs no exclusions.
func (w *Wizard) MaxAllowedStep(c eligibility.Candidate) Step {
	if !w.rules.IsAgeEligible(c.Age) {
		return StepAge
	}
	if w.rules.HasExclusion(c.ExclusionCodes) {
		return StepExclusions
	}
	return StepRisk
}

// Preview is the four-way outcome of the answers in s.
func (w *Wizard) Preview(s State) eligibility.Outcome {
	return w.rules.Classify(s.Candidate)
}

// Reduce returns the state after applying e. Whatever the event, the result
// never sits on a step whose gate fails.
func (w *Wizard) Reduce(s State, e Event) State {
	next := s.clone()

	switch e.Type {
	case EventSetAge:
		next.AgeInput, next.Candidate.Age = w.rules.ParseAge(e.Value)
	case EventToggleExclusion:
		next.Candidate.ExclusionCodes = toggle(next.Candidate.ExclusionCodes, e.Value)
	case EventToggleRisk:
		next.Candidate.RiskCodes = toggle(next.Candidate.RiskCodes, e.Value)
	case EventSetExclusions:
		next.Candidate.ExclusionCodes = eligibility.NormalizeCodes(e.Codes)
	case EventSetRisks:
		next.Candidate.RiskCodes = eligibility.NormalizeCodes(e.Codes)
	case EventNext:
		next.Step = w.navigate(next, next.Step+1)
	case EventBack:
		if next.Step > FirstStep {
			next.Step--
		}
	case EventNavigate:
		if requested, ok := ParseStep(e.Value); ok {
			next.Step = w.navigate(next, requested)
		}
	case EventReset:
		next = Initial()
	}

	return w.clamp(next)
}

// ReduceAll folds events over s in order.
func (w *Wizard) ReduceAll(s State, events []Event) State {
	for _, e := range events {
		s = w.Reduce(s, e)
	}
	return w.clamp(s)
}

func (w *Wizard) navigate(s State, requested Step) Step {
	if !requested.Valid() {
		return s.Step
	}
	return min(requested, w.MaxAllowedStep(s.Candidate))
}

func (w *Wizard) clamp(s State) State {
	if s.Step < FirstStep {
		s.Step = FirstStep
	}
	s.Step = min(s.Step, w.MaxAllowedStep(s.Candidate))
	return s
}

func (s State) clone() State {
	out := s
	out.Candidate.ExclusionCodes = append(eligibility.CodeSet{}, s.Candidate.ExclusionCodes...)
	out.Candidate.RiskCodes = append(eligibility.CodeSet{}, s.Candidate.RiskCodes...)
	return out
}

func toggle(set eligibility.CodeSet, code string) eligibility.CodeSet {
	code = strings.TrimSpace(code)
	if code == "" {
		return set
	}
	if !set.Contains(code) {
		return eligibility.NormalizeCodes(append(set, code))
	}
	out := make(eligibility.CodeSet, 0, len(set))
	for _, c := range set {
		if c != code {
			out = append(out, c)
		}
	}
	return out
}
