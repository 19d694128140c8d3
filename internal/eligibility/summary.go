package eligibility

import "strings"

const noneSelected = "Ninguno"

// Summary renders the plain-text summary a user copies at the end of the
// questionnaire: age, selected exclusion labels, selected risk labels and the
// final decision, one per line.
func Summary(c Candidate, cfg Config, catalog Catalog) string {
	outcome := Classify(c, cfg)

	var b strings.Builder
	b.WriteString("Edad: ")
	b.WriteString(c.Age.String())
	b.WriteString("\nCriterios de exclusión: ")
	b.WriteString(joinLabels(c.ExclusionCodes, catalog.ExclusionLabel))
	b.WriteString("\nCriterios de riesgo: ")
	b.WriteString(joinLabels(c.RiskCodes, catalog.RiskLabel))
	b.WriteString("\nDecisión: ")
	b.WriteString(OutcomeFinalLabel(outcome, LabelOverrides{MinAge: cfg.MinAge}))
	return b.String()
}

func joinLabels(codes CodeSet, label func(string) string) string {
	normalized := NormalizeCodes(codes)
	if len(normalized) == 0 {
		return noneSelected
	}
	labels := make([]string, len(normalized))
	for i, code := range normalized {
		labels[i] = label(code)
	}
	return strings.Join(labels, "; ")
}
