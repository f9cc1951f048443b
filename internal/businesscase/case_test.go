package businesscase_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transformline/internal/businesscase"
)

func TestRiskJSONRoundTrip(t *testing.T) {
	in := []businesscase.Risk{
		{Risk: "Data quality", Impact: businesscase.RiskHigh, Probability: 0.7},
		{Risk: "Vendor lock-in", Impact: businesscase.RiskVeryHigh, ResidualImpact: businesscase.RiskLow},
		{},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"residual_impact":""`)
	assert.Contains(t, string(data), `"impact":"VERY_HIGH"`)

	var out []businesscase.Risk
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestRiskLevelRejectsUnknown(t *testing.T) {
	var r businesscase.Risk
	err := json.Unmarshal([]byte(`{"impact":"SEVERE"}`), &r)
	assert.ErrorContains(t, err, `unknown risk level "SEVERE"`)
}
