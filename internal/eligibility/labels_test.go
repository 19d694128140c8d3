package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeFinalLabel(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeAgeExcluded, "Excluido Paso 1"},
		{OutcomeActiveSurveillanceExcluded, "Excluido Paso 2"},
		{OutcomeHighRiskReferral, "Excluido Paso 3"},
		{OutcomeFITCandidate, "Apto para FIT"},
		{Outcome("SOMETHING_ELSE"), "-"},
		{Outcome(""), "-"},
	}
	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			assert.Equal(t, tt.want, OutcomeFinalLabel(tt.outcome, LabelOverrides{}))
		})
	}
}

func TestOutcomeLabel(t *testing.T) {
	t.Run("age excluded interpolates the minimum age", func(t *testing.T) {
		assert.Equal(t, "No cumple el criterio de edad (menor de 50 años)",
			OutcomeLabel(OutcomeAgeExcluded, LabelOverrides{}))
		assert.Equal(t, "No cumple el criterio de edad (menor de 45 años)",
			OutcomeLabel(OutcomeAgeExcluded, LabelOverrides{MinAge: 45}))
	})

	t.Run("age excluded override wins", func(t *testing.T) {
		got := OutcomeLabel(OutcomeAgeExcluded, LabelOverrides{AgeExcludedLabel: "Fuera de rango", MinAge: 45})
		assert.Equal(t, "Fuera de rango", got)
	})

	t.Run("final override only applies to age excluded", func(t *testing.T) {
		o := LabelOverrides{AgeExcludedFinalLabel: "Edad"}
		assert.Equal(t, "Edad", OutcomeFinalLabel(OutcomeAgeExcluded, o))
		assert.Equal(t, "Apto para FIT", OutcomeFinalLabel(OutcomeFITCandidate, o))
	})

	t.Run("every known outcome has a label", func(t *testing.T) {
		for _, o := range Outcomes {
			assert.NotEqual(t, DefaultFallbackLabel, OutcomeLabel(o, LabelOverrides{}), o)
			assert.NotEqual(t, DefaultFallbackLabel, OutcomeFinalLabel(o, LabelOverrides{}), o)
		}
	})

	t.Run("unknown outcome uses fallback", func(t *testing.T) {
		assert.Equal(t, "-", OutcomeLabel(Outcome("nope"), LabelOverrides{}))
		assert.Equal(t, "n/d", OutcomeLabel(Outcome("nope"), LabelOverrides{Fallback: "n/d"}))
	})
}

func TestOutcomeIsValid(t *testing.T) {
	for _, o := range Outcomes {
		assert.True(t, o.IsValid())
	}
	assert.False(t, Outcome("fit_candidate").IsValid())
}
