package eligibility

import "fmt"

// DefaultFallbackLabel is returned for outcomes outside the label table.
const DefaultFallbackLabel = "-"

// LabelOverrides customizes label lookup. Zero fields keep the defaults.
type LabelOverrides struct {
	// AgeExcludedLabel replaces the interview label for AGE_EXCLUDED.
	AgeExcludedLabel string
	// AgeExcludedFinalLabel replaces the final label for AGE_EXCLUDED.
	AgeExcludedFinalLabel string
	// MinAge is interpolated into the default AGE_EXCLUDED interview label.
	MinAge int
	// Fallback is returned for unknown outcomes.
	Fallback string
}

const ageExcludedLabelFormat = "No cumple el criterio de edad (menor de %d años)"

var interviewLabels = map[Outcome]string{
	OutcomeActiveSurveillanceExcluded: "En seguimiento activo: no entra en el cribado poblacional",
	OutcomeHighRiskReferral:           "Criterios de riesgo elevado: derivar a valoración clínica",
	OutcomeFITCandidate:               "Candidato a test de sangre oculta en heces (FIT)",
}

var finalLabels = map[Outcome]string{
	OutcomeAgeExcluded:                "Excluido Paso 1",
	OutcomeActiveSurveillanceExcluded: "Excluido Paso 2",
	OutcomeHighRiskReferral:           "Excluido Paso 3",
	OutcomeFITCandidate:               "Apto para FIT",
}

// OutcomeLabel returns the descriptive interview text for o.
func OutcomeLabel(o Outcome, overrides LabelOverrides) string {
	if o == OutcomeAgeExcluded {
		if overrides.AgeExcludedLabel != "" {
			return overrides.AgeExcludedLabel
		}
		minAge := overrides.MinAge
		if minAge <= 0 {
			minAge = DefaultMinAge
		}
		return fmt.Sprintf(ageExcludedLabelFormat, minAge)
	}
	if label, ok := interviewLabels[o]; ok {
		return label
	}
	return overrides.fallback()
}

// OutcomeFinalLabel returns the terse final status text for o.
func OutcomeFinalLabel(o Outcome, overrides LabelOverrides) string {
	if o == OutcomeAgeExcluded && overrides.AgeExcludedFinalLabel != "" {
		return overrides.AgeExcludedFinalLabel
	}
	if label, ok := finalLabels[o]; ok {
		return label
	}
	return overrides.fallback()
}

func (o LabelOverrides) fallback() string {
	if o.Fallback != "" {
		return o.Fallback
	}
	return DefaultFallbackLabel
}
