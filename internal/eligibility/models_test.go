package eligibility

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateJSON_Tolerance(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Candidate
	}{
		{
			name: "well formed",
			body: `{"age":62,"exclusion_codes":[],"risk_codes":["hematoquecia","hematoquecia"]}`,
			want: Candidate{Age: KnownAge(62), ExclusionCodes: CodeSet{}, RiskCodes: CodeSet{"hematoquecia"}},
		},
		{
			name: "null age is unknown",
			body: `{"age":null,"exclusion_codes":["x"],"risk_codes":[]}`,
			want: Candidate{Age: UnknownAge, ExclusionCodes: CodeSet{"x"}, RiskCodes: CodeSet{}},
		},
		{
			name: "non-numeric age is unknown",
			body: `{"age":"abc","exclusion_codes":[],"risk_codes":[]}`,
			want: Candidate{Age: UnknownAge, ExclusionCodes: CodeSet{}, RiskCodes: CodeSet{}},
		},
		{
			name: "non-array code lists are empty",
			body: `{"age":70,"exclusion_codes":"vigilancia_colonoscopia","risk_codes":{"a":1}}`,
			want: Candidate{Age: KnownAge(70), ExclusionCodes: CodeSet{}, RiskCodes: CodeSet{}},
		},
		{
			name: "non-string elements are skipped",
			body: `{"age":70,"exclusion_codes":[1,"x",null],"risk_codes":[]}`,
			want: Candidate{Age: KnownAge(70), ExclusionCodes: CodeSet{"x"}, RiskCodes: CodeSet{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Candidate
			require.NoError(t, json.Unmarshal([]byte(tt.body), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCandidateJSON_Encoding(t *testing.T) {
	body, err := json.Marshal(Candidate{Age: UnknownAge})
	require.NoError(t, err)
	assert.JSONEq(t, `{"age":null,"exclusion_codes":[],"risk_codes":[]}`, string(body))

	body, err = json.Marshal(NewCandidate(KnownAge(55), []string{"x"}, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"age":55,"exclusion_codes":["x"],"risk_codes":[]}`, string(body))
}
