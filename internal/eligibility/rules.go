package eligibility

import (
	"errors"
	"strconv"
	"strings"
)

// NormalizeAge trims and parses raw as a base-10 integer. The result is valid
// only when the value falls within bounds.
func NormalizeAge(raw string, bounds AgeBounds) AgeResult {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return AgeResult{}
	}
	if v < bounds.Min || v > bounds.Max {
		return AgeResult{}
	}
	return AgeResult{Valid: true, Value: v}
}

// ClampAgeInput is the text-input guard in front of NormalizeAge: values above
// the maximum are pinned to it, values below the minimum and non-numeric text
// are cleared. Digit strings too large for an int count as above the maximum.
func ClampAgeInput(raw string, bounds AgeBounds) string {
	raw = strings.TrimSpace(raw)
	v, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
		return strconv.Itoa(bounds.Max)
	}
	if err != nil || v < bounds.Min {
		return ""
	}
	if v > bounds.Max {
		v = bounds.Max
	}
	return strconv.Itoa(v)
}

// IsAgeEligible reports whether age is known and at least minAge.
func IsAgeEligible(age Age, minAge int) bool {
	v, ok := age.Value()
	return ok && v >= minAge
}

// NormalizeCodes trims codes, drops blanks and removes duplicates, keeping the
// first occurrence. A nil or empty input yields an empty, non-nil set.
func NormalizeCodes(codes []string) CodeSet {
	seen := make(map[string]struct{}, len(codes))
	out := make(CodeSet, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// HasExclusion reports whether any active-surveillance code is selected.
func HasExclusion(codes []string) bool {
	return len(NormalizeCodes(codes)) > 0
}

// HasRisk reports whether any elevated-risk code is selected.
func HasRisk(codes []string) bool {
	return len(NormalizeCodes(codes)) > 0
}

// Classify applies the screening rule chain. This is pure domain logic: the
// result depends only on the candidate and cfg.
// Rule priority (first match wins):
//  1. Age gate - hard inclusion criterion
//  2. Active surveillance - already under follow-up, skip risk triage
//  3. Elevated risk - refer for clinical assessment
//  4. Default - FIT screening
func Classify(c Candidate, cfg Config) Outcome {
	if !IsAgeEligible(c.Age, cfg.MinAge) {
		return OutcomeAgeExcluded
	}
	if HasExclusion(c.ExclusionCodes) {
		return OutcomeActiveSurveillanceExcluded
	}
	if HasRisk(c.RiskCodes) {
		return OutcomeHighRiskReferral
	}
	return OutcomeFITCandidate
}
