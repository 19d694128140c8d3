package eligibility

// Criterion is one selectable checkbox on the screening questionnaire.
type Criterion struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Catalog lists the exclusion and risk criteria the questionnaire offers.
// Classification does not depend on it: any non-empty selection counts.
type Catalog struct {
	Exclusions []Criterion `json:"exclusions"`
	Risks      []Criterion `json:"risks"`
}

// DefaultCatalog returns the criteria used by the screening program.
func DefaultCatalog() Catalog {
	return Catalog{
		Exclusions: []Criterion{
			{Code: "vigilancia_colonoscopia", Label: "Seguimiento con colonoscopias por pólipos o adenomas previos"},
			{Code: "cancer_colorrectal_previo", Label: "Antecedente personal de cáncer colorrectal"},
			{Code: "enfermedad_inflamatoria", Label: "Enfermedad inflamatoria intestinal en seguimiento"},
			{Code: "colonoscopia_reciente", Label: "Colonoscopia completa en los últimos 5 años"},
			{Code: "sindrome_hereditario", Label: "Síndrome hereditario (Lynch, PAF) en seguimiento"},
		},
		Risks: []Criterion{
			{Code: "hematoquecia", Label: "Sangre roja en las heces (hematoquecia)"},
			{Code: "anemia_ferropenica", Label: "Anemia ferropénica sin causa conocida"},
			{Code: "perdida_peso", Label: "Pérdida de peso no intencionada"},
			{Code: "cambio_ritmo_intestinal", Label: "Cambio persistente del ritmo intestinal"},
			{Code: "antecedente_familiar", Label: "Familiar de primer grado con cáncer colorrectal"},
		},
	}
}

// ExclusionLabel returns the label for an exclusion code, or the code itself.
func (c Catalog) ExclusionLabel(code string) string {
	return lookup(c.Exclusions, code)
}

// RiskLabel returns the label for a risk code, or the code itself.
func (c Catalog) RiskLabel(code string) string {
	return lookup(c.Risks, code)
}

func lookup(criteria []Criterion, code string) string {
	for _, cr := range criteria {
		if cr.Code == code {
			return cr.Label
		}
	}
	return code
}
