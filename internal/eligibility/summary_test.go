package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummary(t *testing.T) {
	cfg := DefaultConfig()
	catalog := DefaultCatalog()

	t.Run("risk referral lists risk labels", func(t *testing.T) {
		c := NewCandidate(KnownAge(62), nil, []string{"hematoquecia", "perdida_peso"})
		want := "Edad: 62\n" +
			"Criterios de exclusión: Ninguno\n" +
			"Criterios de riesgo: Sangre roja en las heces (hematoquecia); Pérdida de peso no intencionada\n" +
			"Decisión: Excluido Paso 3"
		assert.Equal(t, want, Summary(c, cfg, catalog))
	})

	t.Run("unknown age and codes render raw", func(t *testing.T) {
		c := NewCandidate(UnknownAge, []string{"otro_motivo", "otro_motivo"}, nil)
		want := "Edad: -\n" +
			"Criterios de exclusión: otro_motivo\n" +
			"Criterios de riesgo: Ninguno\n" +
			"Decisión: Excluido Paso 1"
		assert.Equal(t, want, Summary(c, cfg, catalog))
	})

	t.Run("fit candidate", func(t *testing.T) {
		c := NewCandidate(KnownAge(55), nil, nil)
		assert.Contains(t, Summary(c, cfg, catalog), "Decisión: Apto para FIT")
	})
}
