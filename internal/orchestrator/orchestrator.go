package orchestrator

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"transformline/internal/businesscase"
	"transformline/internal/config"
	"transformline/internal/readiness"
)

const (
	baseTimelineWeeks     = 26
	defaultTargetMaturity = MaturityIntegrated
	defaultROICriterion   = 0.50
)

// Baseline readiness estimates used when no questionnaire report is given.
const (
	baselineAIReadiness     = 0.65
	maturityReadinessBonus  = 0.05
	baselineStakeholder     = 0.72
	baselineChangeReadiness = 0.68
	baselineTechnical       = 0.75
)

// Thresholds below which a readiness score is reported as a risk or draws a
// recommendation.
const (
	stakeholderRiskBelow      = 0.75
	changeRiskBelow           = 0.70
	technicalRiskBelow        = 0.70
	stakeholderRecommendBelow = 0.80
	adoptionRecommendBelow    = 0.85
)

// Metrics are the transformation outcomes observed so far.
type Metrics struct {
	ImplementationSuccessRate       float64 `json:"implementation_success_rate"`
	TimeToProductionDays            int     `json:"time_to_production"`
	ROIImprovement                  float64 `json:"roi_improvement"`
	EmployeeAdoptionRate            float64 `json:"employee_adoption_rate"`
	RevenueGrowth                   float64 `json:"revenue_growth"`
	CostReduction                   float64 `json:"cost_reduction"`
	CustomerSatisfactionImprovement float64 `json:"customer_satisfaction_improvement"`
	EmployeeProductivityGain        float64 `json:"employee_productivity_gain"`
}

// SampleMetrics returns representative mid-transformation figures. They
// stand in until real measurements are collected.
func SampleMetrics(Plan) Metrics {
	return Metrics{
		ImplementationSuccessRate: 0.87,
		TimeToProductionDays:      180,
		ROIImprovement:            0.55,
		EmployeeAdoptionRate:      0.82,
	}
}

// Criterion is one named exit criterion of a roadmap phase. Target is a
// number, a count or a boolean gate.
type Criterion struct {
	Name   string `json:"name"`
	Target any    `json:"target"`
}

type RoadmapPhase struct {
	Key             string      `json:"key"`
	Phase           Phase       `json:"phase"`
	DurationWeeks   int         `json:"duration_weeks"`
	Activities      []string    `json:"activities"`
	SuccessCriteria []Criterion `json:"success_criteria"`
}

type Progress struct {
	ID                   string   `json:"id"`
	CurrentPhase         Phase    `json:"current_phase"`
	CompletionPercentage float64  `json:"completion_percentage"`
	Metrics              Metrics  `json:"metrics"`
	Risks                []string `json:"risks"`
	Recommendations      []string `json:"recommendations"`
}

// Orchestrator runs transformation plans against an injected Store.
type Orchestrator struct {
	store Store
	cfg   *config.Config

	Now     func() time.Time
	NewID   func() string
	Metrics func(Plan) Metrics
}

// New returns an orchestrator over store. A nil cfg uses the built-in
// defaults.
func New(store Store, cfg *config.Config) *Orchestrator {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Orchestrator{
		store:   store,
		cfg:     cfg,
		Now:     time.Now,
		NewID:   uuid.NewString,
		Metrics: SampleMetrics,
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now().UTC()
	}
	return time.Now().UTC()
}

// Initialize creates a plan for profile starting in the foundation phase.
func (o *Orchestrator) Initialize(ctx context.Context, profile Profile) (Plan, error) {
	if err := profile.validate(); err != nil {
		return Plan{}, err
	}
	newID := o.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	now := o.now()
	plan := Plan{
		ID:              newID(),
		Organization:    profile,
		CurrentPhase:    PhaseFoundation,
		TargetMaturity:  defaultTargetMaturity,
		TimelineWeeks:   o.timelineWeeks(profile),
		SuccessCriteria: o.cfg.Industry(profile.Industry).SuccessMetrics,
		RiskFactors:     []string{},
		Mitigations:     []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := o.store.Create(ctx, plan); err != nil {
		return Plan{}, fmt.Errorf("create plan: %w", err)
	}
	return plan, nil
}

// timelineWeeks scales the base timeline by organization size, industry and
// the distance from full maturity, truncated to whole weeks.
func (o *Orchestrator) timelineWeeks(p Profile) int {
	size := o.cfg.Size(p.Size).Transformation
	industry := o.cfg.Industry(p.Industry).TimelineMultiplier
	gap := 1.0 + float64(5-int(p.CurrentMaturity))*0.1
	return int(baseTimelineWeeks * size * industry * gap)
}

func (o *Orchestrator) Get(ctx context.Context, id string) (Plan, error) {
	return o.store.Get(ctx, id)
}

func (o *Orchestrator) List(ctx context.Context) ([]Plan, error) {
	return o.store.List(ctx)
}

// AssessReadiness scores the plan's organization and stores the scores on
// its profile. With a questionnaire report the scores come from the
// report's dimensions; without one, baseline estimates are used.
func (o *Orchestrator) AssessReadiness(ctx context.Context, id string, report *readiness.Report) (Readiness, error) {
	plan, err := o.store.Get(ctx, id)
	if err != nil {
		return Readiness{}, err
	}
	var r Readiness
	if report != nil {
		r = fromReport(*report)
	} else {
		r = baseline(plan.Organization.CurrentMaturity)
	}
	plan.Organization.AIReadiness = r.AIReadiness
	plan.Organization.StakeholderAlignment = r.StakeholderAlignment
	plan.Organization.ChangeReadiness = r.ChangeReadiness
	plan.Organization.TechnicalReadiness = r.TechnicalReadiness
	plan.UpdatedAt = o.now()
	if err := o.store.Update(ctx, plan); err != nil {
		return Readiness{}, fmt.Errorf("update plan %s: %w", id, err)
	}
	return r, nil
}

func baseline(m MaturityLevel) Readiness {
	return Readiness{
		AIReadiness:          math.Min(1, baselineAIReadiness+float64(m)*maturityReadinessBonus),
		StakeholderAlignment: baselineStakeholder,
		ChangeReadiness:      baselineChangeReadiness,
		TechnicalReadiness:   baselineTechnical,
	}
}

// fromReport maps questionnaire dimensions (1-5 scale) onto the four
// readiness fractions.
func fromReport(r readiness.Report) Readiness {
	avg := func(ds ...readiness.Dimension) float64 {
		var sum float64
		var n int
		for _, d := range ds {
			if s, ok := r.Score(d); ok {
				sum += s.RawScore
				n++
			}
		}
		if n == 0 {
			return 0
		}
		return sum / float64(n) / 5
	}
	return Readiness{
		AIReadiness:          r.OverallScore / 5,
		StakeholderAlignment: avg(readiness.StrategicAlignment, readiness.LeadershipCommitment),
		ChangeReadiness:      avg(readiness.OrganizationalCulture, readiness.ChangeManagement),
		TechnicalReadiness:   avg(readiness.TechnicalInfrastructure, readiness.DataMaturity),
	}
}

// Roadmap returns the four-phase roadmap for the plan.
func (o *Orchestrator) Roadmap(ctx context.Context, id string) ([]RoadmapPhase, error) {
	plan, err := o.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return []RoadmapPhase{
		{
			Key:           "phase_1_foundation",
			Phase:         PhaseFoundation,
			DurationWeeks: 4,
			Activities: []string{
				"Stakeholder alignment and buy-in",
				"AI readiness assessment completion",
				"Business case development and approval",
				"Governance structure establishment",
				"Initial team formation",
			},
			SuccessCriteria: []Criterion{
				{Name: "stakeholder_alignment", Target: 0.85},
				{Name: "business_case_approval", Target: true},
				{Name: "governance_establishment", Target: true},
			},
		},
		{
			Key:           "phase_2_pilots",
			Phase:         PhasePilots,
			DurationWeeks: 8,
			Activities: []string{
				"Quick wins identification and implementation",
				"Pilot project selection and execution",
				"Initial training program deployment",
				"Change management activation",
				"Success metrics establishment",
			},
			SuccessCriteria: []Criterion{
				{Name: "pilot_success_rate", Target: 0.80},
				{Name: "employee_engagement", Target: 0.75},
				{Name: "quick_wins_delivered", Target: 3},
			},
		},
		{
			Key:           "phase_3_scaling",
			Phase:         PhaseScaling,
			DurationWeeks: 10,
			Activities: []string{
				"Enterprise-wide rollout planning",
				"Cross-functional integration",
				"Advanced training deployment",
				"Performance optimization",
				"Culture transformation acceleration",
			},
			SuccessCriteria: []Criterion{
				{Name: "deployment_coverage", Target: 0.70},
				{Name: "integration_success", Target: 0.85},
				{Name: "culture_transformation", Target: 0.80},
			},
		},
		{
			Key:           "phase_4_maturity",
			Phase:         PhaseMaturity,
			DurationWeeks: 6,
			Activities: []string{
				"Continuous improvement establishment",
				"Innovation capability development",
				"Leadership development completion",
				"Full organizational adoption",
				"Competitive advantage realization",
			},
			SuccessCriteria: []Criterion{
				{Name: "maturity_level", Target: int(plan.TargetMaturity)},
				{Name: "roi_achievement", Target: roiCriterion(plan)},
				{Name: "adoption_rate", Target: 0.95},
			},
		},
	}, nil
}

func roiCriterion(p Plan) float64 {
	if v, ok := p.SuccessCriteria["roi_improvement"]; ok {
		return v
	}
	return defaultROICriterion
}

// TrackProgress reports completion, current metrics, readiness risks and
// recommendations for the plan.
func (o *Orchestrator) TrackProgress(ctx context.Context, id string) (Progress, error) {
	plan, err := o.store.Get(ctx, id)
	if err != nil {
		return Progress{}, err
	}
	metricsFn := o.Metrics
	if metricsFn == nil {
		metricsFn = SampleMetrics
	}
	m := metricsFn(plan)
	return Progress{
		ID:                   plan.ID,
		CurrentPhase:         plan.CurrentPhase,
		CompletionPercentage: plan.CurrentPhase.Completion(),
		Metrics:              m,
		Risks:                currentRisks(plan.Organization),
		Recommendations:      recommendations(plan, m),
	}, nil
}

func currentRisks(org Profile) []string {
	out := []string{}
	if org.StakeholderAlignment < stakeholderRiskBelow {
		out = append(out, "Low stakeholder alignment may slow progress")
	}
	if org.ChangeReadiness < changeRiskBelow {
		out = append(out, "Organization may resist cultural changes")
	}
	if org.TechnicalReadiness < technicalRiskBelow {
		out = append(out, "Technical infrastructure gaps may cause delays")
	}
	return out
}

func recommendations(p Plan, m Metrics) []string {
	out := []string{}
	if p.Organization.StakeholderAlignment < stakeholderRecommendBelow {
		out = append(out, "Increase executive engagement and communication")
	}
	if m.EmployeeAdoptionRate < adoptionRecommendBelow {
		out = append(out, "Enhance training programs and change management")
	}
	if m.ROIImprovement < roiCriterion(p) {
		out = append(out, "Focus on high-impact use cases and optimization")
	}
	return out
}

// Advance moves the plan into its next phase.
func (o *Orchestrator) Advance(ctx context.Context, id string) (Plan, error) {
	plan, err := o.store.Get(ctx, id)
	if err != nil {
		return Plan{}, err
	}
	next, ok := plan.CurrentPhase.Next()
	if !ok {
		return Plan{}, fmt.Errorf("%w: %s", ErrFinalPhase, plan.CurrentPhase)
	}
	plan.CurrentPhase = next
	plan.UpdatedAt = o.now()
	if err := o.store.Update(ctx, plan); err != nil {
		return Plan{}, fmt.Errorf("update plan %s: %w", id, err)
	}
	return plan, nil
}

// SetTarget changes the maturity level the plan aims for.
func (o *Orchestrator) SetTarget(ctx context.Context, id string, target MaturityLevel) (Plan, error) {
	if !target.Valid() {
		return Plan{}, fmt.Errorf("%w: target maturity %d out of range 1-5", ErrInvalidProfile, int(target))
	}
	plan, err := o.store.Get(ctx, id)
	if err != nil {
		return Plan{}, err
	}
	plan.TargetMaturity = target
	plan.UpdatedAt = o.now()
	if err := o.store.Update(ctx, plan); err != nil {
		return Plan{}, fmt.Errorf("update plan %s: %w", id, err)
	}
	return plan, nil
}

// AttachBusinessCase budgets the plan from c and adopts its risks and
// mitigation strategies.
func (o *Orchestrator) AttachBusinessCase(ctx context.Context, id string, c businesscase.Case) (Plan, error) {
	plan, err := o.store.Get(ctx, id)
	if err != nil {
		return Plan{}, err
	}
	plan.Budget = c.Projection.TotalCost
	plan.RiskFactors = make([]string, 0, len(c.Risks))
	plan.Mitigations = make([]string, 0, len(c.Risks))
	for _, r := range c.Risks {
		plan.RiskFactors = append(plan.RiskFactors, r.Risk)
		plan.Mitigations = append(plan.Mitigations, r.Mitigation)
	}
	plan.UpdatedAt = o.now()
	if err := o.store.Update(ctx, plan); err != nil {
		return Plan{}, fmt.Errorf("update plan %s: %w", id, err)
	}
	return plan, nil
}
