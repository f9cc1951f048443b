package orchestrator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transformline/internal/businesscase"
	"transformline/internal/config"
	"transformline/internal/finance"
	"transformline/internal/orchestrator"
	"transformline/internal/readiness"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newOrchestrator(t *testing.T) *orchestrator.Orchestrator {
	t.Helper()
	o := orchestrator.New(orchestrator.NewMemoryStore(), config.Default())
	o.Now = func() time.Time { return fixedNow }
	return o
}

func techCorp() orchestrator.Profile {
	return orchestrator.Profile{
		Name:            "TechCorp",
		Industry:        "financial_services",
		Size:            "large",
		CurrentMaturity: orchestrator.MaturitySystematic,
	}
}

func TestInitialize(t *testing.T) {
	o := newOrchestrator(t)
	ctx := context.Background()

	plan, err := o.Initialize(ctx, techCorp())
	require.NoError(t, err)
	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, orchestrator.PhaseFoundation, plan.CurrentPhase)
	assert.Equal(t, orchestrator.MaturityIntegrated, plan.TargetMaturity)
	// 26 * 1.3 (large) * 1.3 (financial services) * 1.3 (maturity gap of 3)
	assert.Equal(t, 57, plan.TimelineWeeks)
	assert.Equal(t, map[string]float64{
		"roi_improvement":                   0.45,
		"employee_adoption_rate":            0.95,
		"implementation_success_rate":       0.87,
		"customer_satisfaction_improvement": 0.20,
		"compliance_score":                  0.95,
	}, plan.SuccessCriteria)
	assert.Equal(t, fixedNow, plan.CreatedAt)

	stored, err := o.Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.TimelineWeeks, stored.TimelineWeeks)
}

func TestTimelineWeeks(t *testing.T) {
	cases := []struct {
		name     string
		industry string
		size     string
		maturity orchestrator.MaturityLevel
		want     int
	}{
		{"defaults", "", "", orchestrator.MaturityIntegrated, 31},
		{"government enterprise adhoc", "government", "enterprise", orchestrator.MaturityAdhoc, 104},
		{"small native", "retail", "small", orchestrator.MaturityNative, 20},
		{"manufacturing advantage", "Manufacturing", "medium", orchestrator.MaturityAdvantage, 34},
		{"unknown industry", "aerospace", "large", orchestrator.MaturityAdhoc, 47},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := newOrchestrator(t)
			plan, err := o.Initialize(context.Background(), orchestrator.Profile{
				Name:            "Org",
				Industry:        tc.industry,
				Size:            tc.size,
				CurrentMaturity: tc.maturity,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.want, plan.TimelineWeeks)
		})
	}
}

func TestInitializeRejectsInvalidProfile(t *testing.T) {
	o := newOrchestrator(t)
	ctx := context.Background()

	_, err := o.Initialize(ctx, orchestrator.Profile{CurrentMaturity: orchestrator.MaturityAdhoc})
	assert.ErrorIs(t, err, orchestrator.ErrInvalidProfile)

	_, err = o.Initialize(ctx, orchestrator.Profile{Name: "Org"})
	assert.ErrorIs(t, err, orchestrator.ErrInvalidProfile)

	_, err = o.Initialize(ctx, orchestrator.Profile{Name: "Org", CurrentMaturity: 6})
	assert.ErrorIs(t, err, orchestrator.ErrInvalidProfile)
}

func TestUnknownIDFails(t *testing.T) {
	o := newOrchestrator(t)
	ctx := context.Background()

	_, err := o.Get(ctx, "missing")
	assert.ErrorIs(t, err, orchestrator.ErrNotFound)
	_, err = o.AssessReadiness(ctx, "missing", nil)
	assert.ErrorIs(t, err, orchestrator.ErrNotFound)
	_, err = o.Roadmap(ctx, "missing")
	assert.ErrorIs(t, err, orchestrator.ErrNotFound)
	_, err = o.TrackProgress(ctx, "missing")
	assert.ErrorIs(t, err, orchestrator.ErrNotFound)
	_, err = o.Advance(ctx, "missing")
	assert.ErrorIs(t, err, orchestrator.ErrNotFound)
	_, err = o.SetTarget(ctx, "missing", orchestrator.MaturityNative)
	assert.ErrorIs(t, err, orchestrator.ErrNotFound)
	_, err = o.AttachBusinessCase(ctx, "missing", businesscase.Case{})
	assert.ErrorIs(t, err, orchestrator.ErrNotFound)
}

func TestAssessReadinessBaseline(t *testing.T) {
	o := newOrchestrator(t)
	ctx := context.Background()
	plan, err := o.Initialize(ctx, techCorp())
	require.NoError(t, err)

	r, err := o.AssessReadiness(ctx, plan.ID, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, r.AIReadiness, 1e-9)
	assert.Equal(t, 0.72, r.StakeholderAlignment)
	assert.Equal(t, 0.68, r.ChangeReadiness)
	assert.Equal(t, 0.75, r.TechnicalReadiness)

	stored, err := o.Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, r.StakeholderAlignment, stored.Organization.StakeholderAlignment)
	assert.Equal(t, r.ChangeReadiness, stored.Organization.ChangeReadiness)
}

func TestAssessReadinessCapsAIReadiness(t *testing.T) {
	o := newOrchestrator(t)
	ctx := context.Background()
	p := techCorp()
	p.CurrentMaturity = orchestrator.MaturityNative
	plan, err := o.Initialize(ctx, p)
	require.NoError(t, err)

	r, err := o.AssessReadiness(ctx, plan.ID, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, r.AIReadiness, 1e-9)
	assert.LessOrEqual(t, r.AIReadiness, 1.0)
}

func TestAssessReadinessFromReport(t *testing.T) {
	o := newOrchestrator(t)
	ctx := context.Background()
	plan, err := o.Initialize(ctx, techCorp())
	require.NoError(t, err)

	report, err := readiness.Default().Assess("TechCorp", map[string]int{
		string(readiness.StrategicAlignment):      4,
		string(readiness.LeadershipCommitment):    5,
		string(readiness.OrganizationalCulture):   2,
		string(readiness.ChangeManagement):        2,
		string(readiness.TechnicalInfrastructure): 3,
		string(readiness.DataMaturity):            4,
	})
	require.NoError(t, err)

	r, err := o.AssessReadiness(ctx, plan.ID, &report)
	require.NoError(t, err)
	assert.InDelta(t, report.OverallScore/5, r.AIReadiness, 1e-9)
	assert.InDelta(t, 0.9, r.StakeholderAlignment, 1e-9)
	assert.InDelta(t, 0.4, r.ChangeReadiness, 1e-9)
	assert.InDelta(t, 0.7, r.TechnicalReadiness, 1e-9)

	progress, err := o.TrackProgress(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Organization may resist cultural changes"}, progress.Risks)
}

func TestRoadmap(t *testing.T) {
	o := newOrchestrator(t)
	ctx := context.Background()
	plan, err := o.Initialize(ctx, techCorp())
	require.NoError(t, err)

	roadmap, err := o.Roadmap(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, roadmap, 4)

	weeks := 0
	for i, ph := range roadmap {
		assert.Equal(t, orchestrator.Phases[i], ph.Phase)
		assert.Len(t, ph.Activities, 5)
		assert.Len(t, ph.SuccessCriteria, 3)
		weeks += ph.DurationWeeks
	}
	assert.Equal(t, 28, weeks)
	assert.Equal(t, "phase_1_foundation", roadmap[0].Key)
	assert.Equal(t, orchestrator.Criterion{Name: "business_case_approval", Target: true}, roadmap[0].SuccessCriteria[1])
	assert.Equal(t, orchestrator.Criterion{Name: "quick_wins_delivered", Target: 3}, roadmap[1].SuccessCriteria[2])

	final := roadmap[3].SuccessCriteria
	assert.Equal(t, orchestrator.Criterion{Name: "maturity_level", Target: 3}, final[0])
	assert.Equal(t, orchestrator.Criterion{Name: "roi_achievement", Target: 0.45}, final[1])

	_, err = o.SetTarget(ctx, plan.ID, orchestrator.MaturityNative)
	require.NoError(t, err)
	roadmap, err = o.Roadmap(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, roadmap[3].SuccessCriteria[0].Target)
}

func TestSetTargetRejectsOutOfRange(t *testing.T) {
	o := newOrchestrator(t)
	ctx := context.Background()
	plan, err := o.Initialize(ctx, techCorp())
	require.NoError(t, err)
	_, err = o.SetTarget(ctx, plan.ID, 0)
	assert.ErrorIs(t, err, orchestrator.ErrInvalidProfile)
}

func TestTrackProgress(t *testing.T) {
	o := newOrchestrator(t)
	ctx := context.Background()
	plan, err := o.Initialize(ctx, techCorp())
	require.NoError(t, err)

	// before assessment every readiness score is zero
	progress, err := o.TrackProgress(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, orchestrator.PhaseFoundation, progress.CurrentPhase)
	assert.Equal(t, 20.0, progress.CompletionPercentage)
	assert.Len(t, progress.Risks, 3)

	_, err = o.AssessReadiness(ctx, plan.ID, nil)
	require.NoError(t, err)
	progress, err = o.TrackProgress(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Low stakeholder alignment may slow progress",
		"Organization may resist cultural changes",
	}, progress.Risks)
	// sample ROI of 0.55 beats the 0.45 criterion
	assert.Equal(t, []string{
		"Increase executive engagement and communication",
		"Enhance training programs and change management",
	}, progress.Recommendations)
	assert.Equal(t, 180, progress.Metrics.TimeToProductionDays)
}

func TestTrackProgressUsesMetricsSource(t *testing.T) {
	o := newOrchestrator(t)
	o.Metrics = func(orchestrator.Plan) orchestrator.Metrics {
		return orchestrator.Metrics{EmployeeAdoptionRate: 0.9, ROIImprovement: 0.2}
	}
	ctx := context.Background()
	p := techCorp()
	p.Industry = "manufacturing"
	plan, err := o.Initialize(ctx, p)
	require.NoError(t, err)

	progress, err := o.TrackProgress(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Increase executive engagement and communication",
		"Focus on high-impact use cases and optimization",
	}, progress.Recommendations)
}

func TestAdvance(t *testing.T) {
	o := newOrchestrator(t)
	ctx := context.Background()
	plan, err := o.Initialize(ctx, techCorp())
	require.NoError(t, err)

	later := fixedNow.Add(time.Hour)
	o.Now = func() time.Time { return later }

	want := []struct {
		phase      orchestrator.Phase
		completion float64
	}{
		{orchestrator.PhasePilots, 35},
		{orchestrator.PhaseScaling, 60},
		{orchestrator.PhaseMaturity, 100},
	}
	for _, w := range want {
		plan, err = o.Advance(ctx, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, w.phase, plan.CurrentPhase)
		assert.Equal(t, later, plan.UpdatedAt)
		progress, err := o.TrackProgress(ctx, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, w.completion, progress.CompletionPercentage)
	}

	_, err = o.Advance(ctx, plan.ID)
	assert.True(t, errors.Is(err, orchestrator.ErrFinalPhase))
	stored, err := o.Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, orchestrator.PhaseMaturity, stored.CurrentPhase)
}

func TestAttachBusinessCase(t *testing.T) {
	o := newOrchestrator(t)
	ctx := context.Background()
	plan, err := o.Initialize(ctx, techCorp())
	require.NoError(t, err)

	c := businesscase.Case{
		Projection: finance.Projection{TotalCost: 1100000},
		Risks: []businesscase.Risk{
			{Risk: "Regulatory compliance issues", Mitigation: "Compliance review board"},
			{Risk: "Budget overruns", Mitigation: "Contingency planning"},
		},
	}
	plan, err = o.AttachBusinessCase(ctx, plan.ID, c)
	require.NoError(t, err)
	assert.Equal(t, 1100000.0, plan.Budget)
	assert.Equal(t, []string{"Regulatory compliance issues", "Budget overruns"}, plan.RiskFactors)
	assert.Equal(t, []string{"Compliance review board", "Contingency planning"}, plan.Mitigations)

	stored, err := o.Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.Budget, stored.Budget)
	assert.Equal(t, plan.RiskFactors, stored.RiskFactors)
}

func TestParseMaturity(t *testing.T) {
	m, err := orchestrator.ParseMaturity("4")
	require.NoError(t, err)
	assert.Equal(t, orchestrator.MaturityAdvantage, m)

	m, err = orchestrator.ParseMaturity("systematic")
	require.NoError(t, err)
	assert.Equal(t, orchestrator.MaturitySystematic, m)
	assert.Equal(t, "SYSTEMATIC", m.String())

	_, err = orchestrator.ParseMaturity("7")
	assert.ErrorIs(t, err, orchestrator.ErrInvalidProfile)
	_, err = orchestrator.ParseMaturity("expert")
	assert.ErrorIs(t, err, orchestrator.ErrInvalidProfile)
}
