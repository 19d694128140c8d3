package eligibility

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Outcome is the terminal classification of one eligibility evaluation.
type Outcome string

const (
	OutcomeAgeExcluded                Outcome = "AGE_EXCLUDED"
	OutcomeActiveSurveillanceExcluded Outcome = "ACTIVE_SURVEILLANCE_EXCLUDED"
	OutcomeHighRiskReferral           Outcome = "HIGH_RISK_REFERRAL"
	OutcomeFITCandidate               Outcome = "FIT_CANDIDATE"
)

// Outcomes lists every outcome in precedence order.
var Outcomes = []Outcome{
	OutcomeAgeExcluded,
	OutcomeActiveSurveillanceExcluded,
	OutcomeHighRiskReferral,
	OutcomeFITCandidate,
}

// IsValid reports whether o is one of the four known outcomes.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeAgeExcluded, OutcomeActiveSurveillanceExcluded, OutcomeHighRiskReferral, OutcomeFITCandidate:
		return true
	}
	return false
}

func (o Outcome) String() string {
	return string(o)
}

// Age is a candidate's age in whole years, or unknown.
// The zero value is unknown.
type Age struct {
	value int
	known bool
}

// UnknownAge is the age of a candidate who has not given a usable answer.
var UnknownAge = Age{}

// KnownAge returns an age with the given value. Range checks belong to
// NormalizeAge; KnownAge trusts its caller.
func KnownAge(years int) Age {
	return Age{value: years, known: true}
}

// Value returns the age and whether it is known.
func (a Age) Value() (int, bool) {
	return a.value, a.known
}

func (a Age) Known() bool {
	return a.known
}

func (a Age) String() string {
	if !a.known {
		return "-"
	}
	return strconv.Itoa(a.value)
}

// MarshalJSON encodes a known age as a number and an unknown age as null.
func (a Age) MarshalJSON() ([]byte, error) {
	if !a.known {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(a.value)), nil
}

// UnmarshalJSON accepts integers; null and anything else decode to unknown.
func (a *Age) UnmarshalJSON(data []byte) error {
	*a = UnknownAge
	v, err := strconv.Atoi(string(bytes.TrimSpace(data)))
	if err == nil {
		*a = KnownAge(v)
	}
	return nil
}

// CodeSet is a de-duplicated list of criterion codes in first-seen order.
// Order carries no meaning for classification; it is kept for display.
type CodeSet []string

// Contains reports whether code is in the set.
func (s CodeSet) Contains(code string) bool {
	for _, c := range s {
		if c == code {
			return true
		}
	}
	return false
}

// UnmarshalJSON decodes an array of strings. A non-array value decodes to the
// empty set and non-string elements are skipped.
func (s *CodeSet) UnmarshalJSON(data []byte) error {
	*s = CodeSet{}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	codes := make([]string, 0, len(raw))
	for _, item := range raw {
		var code string
		if err := json.Unmarshal(item, &code); err == nil {
			codes = append(codes, code)
		}
	}
	*s = NormalizeCodes(codes)
	return nil
}

// MarshalJSON always encodes an array, never null.
func (s CodeSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// Candidate is the input to one evaluation. It is built per evaluation and
// discarded afterwards; nothing in this module persists it.
type Candidate struct {
	Age            Age     `json:"age"`
	ExclusionCodes CodeSet `json:"exclusion_codes"`
	RiskCodes      CodeSet `json:"risk_codes"`
}

// NewCandidate builds a Candidate with normalized code sets.
func NewCandidate(age Age, exclusionCodes, riskCodes []string) Candidate {
	return Candidate{
		Age:            age,
		ExclusionCodes: NormalizeCodes(exclusionCodes),
		RiskCodes:      NormalizeCodes(riskCodes),
	}
}

// AgeBounds is the inclusive range an age answer must fall in.
type AgeBounds struct {
	Min int
	Max int
}

// AgeResult is the outcome of NormalizeAge.
type AgeResult struct {
	Valid bool
	Value int
}

// Age converts the result to an Age; invalid results are unknown.
func (r AgeResult) Age() Age {
	if !r.Valid {
		return UnknownAge
	}
	return KnownAge(r.Value)
}

// Config holds the tunable parameters of the rules.
type Config struct {
	MinAge int
	Bounds AgeBounds
}

const (
	DefaultMinAge = 50
	DefaultAgeMin = 0
	DefaultAgeMax = 120
)

// DefaultConfig returns the screening program's standard parameters.
func DefaultConfig() Config {
	return Config{
		MinAge: DefaultMinAge,
		Bounds: AgeBounds{Min: DefaultAgeMin, Max: DefaultAgeMax},
	}
}

// OutcomeCount is one aggregate tally row. Only the outcome and the coarse
// device class are counted; candidate answers are never stored.
type OutcomeCount struct {
	Outcome     Outcome `json:"outcome"`
	DeviceClass string  `json:"device_class"`
	Count       int64   `json:"count"`
}
