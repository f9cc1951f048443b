package readiness_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transformline/internal/readiness"
)

var sampleResponses = map[string]int{
	"strategic_alignment":      3,
	"leadership_commitment":    4,
	"data_maturity":            2,
	"technical_infrastructure": 3,
	"talent_capabilities":      2,
	"organizational_culture":   3,
	"change_management":        3,
	"governance_ethics":        2,
}

func newAssessor(t *testing.T) *readiness.Assessor {
	t.Helper()
	a := readiness.Default()
	a.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return a
}

func uniform(answer int) map[string]int {
	out := map[string]int{}
	for _, d := range readiness.Dimensions {
		out[string(d)] = answer
	}
	return out
}

func TestMaturityForScore(t *testing.T) {
	cases := []struct {
		score float64
		want  readiness.Maturity
	}{
		{0, readiness.Nascent},
		{1, readiness.Nascent},
		{1.01, readiness.Emerging},
		{2, readiness.Emerging},
		{2.01, readiness.Developing},
		{3, readiness.Developing},
		{3.5, readiness.Advanced},
		{4, readiness.Advanced},
		{4.2, readiness.Optimizing},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, readiness.MaturityForScore(tc.score), "score %v", tc.score)
	}
	assert.Equal(t, "DEVELOPING", readiness.Developing.String())
}

func TestAssessSample(t *testing.T) {
	a := newAssessor(t)
	r, err := a.Assess("TechCorp", sampleResponses)
	require.NoError(t, err)

	assert.Equal(t, "TechCorp", r.Organization)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), r.AssessedAt)
	require.Len(t, r.Dimensions, 8)
	assert.InDelta(t, 18.7/6.7, r.OverallScore, 1e-9)
	assert.Equal(t, readiness.Developing, r.OverallMaturity)

	data, ok := r.Score(readiness.DataMaturity)
	require.True(t, ok)
	assert.Equal(t, 2.0, data.RawScore)
	assert.InDelta(t, 1.8, data.WeightedScore, 1e-9)
	assert.Equal(t, readiness.Emerging, data.Maturity)
	assert.Equal(t, readiness.PriorityHigh, data.Priority)

	talent, _ := r.Score(readiness.TalentCapabilities)
	assert.Equal(t, readiness.PriorityMedium, talent.Priority)
	leadership, _ := r.Score(readiness.LeadershipCommitment)
	assert.Equal(t, readiness.PriorityLow, leadership.Priority)
	change, _ := r.Score(readiness.ChangeManagement)
	assert.Equal(t, readiness.Developing, change.Maturity)

	assert.Equal(t, []string{"Strong leadership accountability"}, r.TopStrengths)
	assert.Equal(t, []string{"Recurring data quality issues"}, r.CriticalGaps)
	// medium dimensions lead, most mature first; data_maturity (high) is cut
	assert.Equal(t, []string{
		"Enhance strategy integration",
		"Develop success metrics",
		"Adopt MLOps practices",
		"Automate model deployment",
		"Run innovation challenges",
		"Share AI success stories",
		"Track adoption metrics",
		"Build feedback loops into rollouts",
	}, r.PriorityRecommendations)

	assert.Equal(t, []string{"Implement data quality framework"}, r.ActionPlan.Immediate)
	assert.Len(t, r.ActionPlan.ShortTerm, 6)
	assert.Equal(t, []string{"Extend sponsorship across business units"}, r.ActionPlan.MediumTerm)
	assert.Empty(t, r.ActionPlan.LongTerm)

	// 18 * 1.2 + 2 * 1 high-priority dimension
	assert.Equal(t, 23, r.TimelineMonths)
}

func TestAssessDefaultsUnanswered(t *testing.T) {
	a := newAssessor(t)
	r, err := a.Assess("Acme", nil)
	require.NoError(t, err)

	assert.Equal(t, 3.0, r.OverallScore)
	assert.Equal(t, readiness.Developing, r.OverallMaturity)
	for _, s := range r.Dimensions {
		assert.Equal(t, 3.0, s.RawScore, s.Dimension)
		assert.Equal(t, readiness.PriorityMedium, s.Priority, s.Dimension)
	}
	assert.Equal(t, 21, r.TimelineMonths)
}

func TestAssessExtremes(t *testing.T) {
	a := newAssessor(t)

	low, err := a.Assess("Acme", uniform(1))
	require.NoError(t, err)
	assert.Equal(t, readiness.Nascent, low.OverallMaturity)
	assert.Equal(t, 27+16, low.TimelineMonths)
	assert.Len(t, low.CriticalGaps, 5)
	assert.Len(t, low.PriorityRecommendations, 8)
	assert.Empty(t, low.TopStrengths)

	high, err := a.Assess("Acme", uniform(5))
	require.NoError(t, err)
	assert.Equal(t, readiness.Optimizing, high.OverallMaturity)
	assert.Equal(t, 14, high.TimelineMonths)
	assert.Empty(t, high.PriorityRecommendations)
	assert.Len(t, high.ActionPlan.MediumTerm, 8)
	assert.Empty(t, high.ActionPlan.LongTerm)
	assert.Len(t, high.TopStrengths, 5)
}

func TestAssessRejectsBadInput(t *testing.T) {
	a := newAssessor(t)
	cases := map[string]map[string]int{
		"unknown key":  {"strategic_alignment_123": 3},
		"zero answer":  {"data_maturity": 0},
		"above scale":  {"data_maturity": 6},
		"negative one": {"governance_ethics": -1},
	}
	for name, responses := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := a.Assess("Acme", responses)
			require.Error(t, err)
			assert.True(t, errors.Is(err, readiness.ErrInvalidResponse))
		})
	}

	_, err := a.Assess("  ", nil)
	assert.ErrorIs(t, err, readiness.ErrInvalidResponse)
}

func TestNewAssessorRequiresEveryDimension(t *testing.T) {
	tables := readiness.DefaultTables()
	delete(tables.Effort, readiness.TalentCapabilities)
	_, err := readiness.NewAssessor(tables)
	assert.ErrorContains(t, err, "talent_capabilities")

	tables = readiness.DefaultTables()
	tables.Questions = tables.Questions[1:]
	_, err = readiness.NewAssessor(tables)
	assert.ErrorContains(t, err, "strategic_alignment")

	tables = readiness.DefaultTables()
	delete(tables.Weights, readiness.GovernanceEthics)
	_, err = readiness.NewAssessor(tables)
	assert.Error(t, err)
}

func TestMissingInsightUsesGenericText(t *testing.T) {
	tables := readiness.DefaultTables()
	delete(tables.Insights, readiness.ChangeManagement)
	a, err := readiness.NewAssessor(tables)
	require.NoError(t, err)

	r, err := a.Assess("Acme", nil)
	require.NoError(t, err)
	s, _ := r.Score(readiness.ChangeManagement)
	assert.Equal(t, []string{"Assessment needed"}, s.Gaps)
	assert.Equal(t, []string{"Conduct detailed evaluation"}, s.Recommendations)
}

func TestQuestionsInDimensionOrder(t *testing.T) {
	qs := newAssessor(t).Questions()
	require.Len(t, qs, 8)
	for i, q := range qs {
		assert.Equal(t, readiness.Dimensions[i], q.Dimension)
		assert.Len(t, q.ScoringGuide, 5)
	}
	assert.Equal(t, "Technical Infrastructure", readiness.TechnicalInfrastructure.Label())
}

func TestPriorityRecommendationsOrder(t *testing.T) {
	a := newAssessor(t)
	r, err := a.Assess("Acme", map[string]int{
		"strategic_alignment":      2,
		"leadership_commitment":    5,
		"data_maturity":            5,
		"technical_infrastructure": 3,
		"talent_capabilities":      5,
		"organizational_culture":   5,
		"change_management":        5,
		"governance_ethics":        1,
	})
	require.NoError(t, err)

	// technical (medium, 3), then strategic (high, 2), then governance (high, 1)
	assert.Equal(t, []string{
		"Adopt MLOps practices",
		"Automate model deployment",
		"Create AI strategy document",
		"Establish governance board",
		"Draft responsible AI principles",
		"Create AI risk register",
	}, r.PriorityRecommendations)
}

func TestMaturityJSONRoundTrip(t *testing.T) {
	in := []readiness.Maturity{0, readiness.Emerging, readiness.Optimizing}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `["","EMERGING","OPTIMIZING"]`, string(data))

	var out []readiness.Maturity
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	assert.Error(t, json.Unmarshal([]byte(`["EXPERT"]`), &out))
}
