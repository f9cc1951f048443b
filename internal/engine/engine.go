package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"transformline/internal/businesscase"
	"transformline/internal/config"
	"transformline/internal/domain"
	"transformline/internal/events"
	"transformline/internal/finance"
	"transformline/internal/migrate"
	"transformline/internal/orchestrator"
	"transformline/internal/readiness"
	"transformline/internal/repo"
)

const (
	kindTransformation = "transformation"
	kindAssessment     = "assessment"
	kindBusinessCase   = "business_case"
)

// Engine ties the scorers, the case generator and the plan orchestrator to
// the workspace database. Every component reads the engine's clock.
type Engine struct {
	DB       *sqlx.DB
	Repo     repo.Repo
	Events   events.Writer
	Config   *config.Config
	Assessor *readiness.Assessor
	Cases    *businesscase.Generator
	Plans    *orchestrator.Orchestrator
	Log      zerolog.Logger
	Now      func() time.Time
	NewID    func() string
}

func New(db *sqlx.DB, cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	e := &Engine{
		DB:       db,
		Repo:     repo.Repo{DB: db},
		Config:   cfg,
		Assessor: readiness.Default(),
		Cases:    businesscase.NewGenerator(cfg),
		Plans:    orchestrator.New(repo.PlanStore{DB: db}, cfg),
		Log:      zerolog.Nop(),
		Now:      time.Now,
		NewID:    uuid.NewString,
	}
	e.Events = events.Writer{DB: db, Now: e.now}
	e.Assessor.Now = e.now
	e.Cases.Now = e.now
	e.Plans.Now = e.now
	e.Plans.NewID = e.newID
	return e
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

// ProjectionRequest carries explicit cost and benefit items. A nil
// DiscountRate or zero HorizonYears falls back to the configured values.
type ProjectionRequest struct {
	Costs        []finance.CostItem    `json:"costs" yaml:"costs"`
	Benefits     []finance.BenefitItem `json:"benefits" yaml:"benefits"`
	DiscountRate *float64              `json:"discount_rate,omitempty" yaml:"discount_rate"`
	HorizonYears int                   `json:"horizon_years,omitempty" yaml:"horizon_years"`
	Sweep        []finance.SweepSpec   `json:"sweep,omitempty" yaml:"sweep"`
}

func (e *Engine) params(req ProjectionRequest) (float64, int) {
	rate := e.Config.Finance.DiscountRate
	if req.DiscountRate != nil {
		rate = *req.DiscountRate
	}
	horizon := e.Config.Finance.HorizonYears
	if req.HorizonYears != 0 {
		horizon = req.HorizonYears
	}
	return rate, horizon
}

func (e *Engine) Project(req ProjectionRequest) (finance.Projection, error) {
	rate, horizon := e.params(req)
	return finance.Project(req.Costs, req.Benefits, rate, horizon)
}

func (e *Engine) Sensitivity(req ProjectionRequest) (finance.SensitivityReport, error) {
	rate, horizon := e.params(req)
	return finance.Analyze(req.Costs, req.Benefits, rate, horizon, req.Sweep)
}

// Assessment is a stored readiness report with its derived analyses.
type Assessment struct {
	ID         string                       `json:"id"`
	Industry   string                       `json:"industry,omitempty"`
	Report     readiness.Report             `json:"report"`
	Gaps       readiness.GapReport          `json:"gap_analysis"`
	Roadmap    []readiness.DevelopmentPhase `json:"development_roadmap"`
	Benchmarks []readiness.Benchmark        `json:"industry_benchmarks"`
}

type AssessOptions struct {
	Organization string
	Industry     string
	Responses    map[string]int
	ActorID      string
}

func (e *Engine) analyze(id, industry string, rep readiness.Report) Assessment {
	return Assessment{
		ID:         id,
		Industry:   industry,
		Report:     rep,
		Gaps:       e.Assessor.GapAnalysis(rep),
		Roadmap:    e.Assessor.DevelopmentRoadmap(rep),
		Benchmarks: readiness.CompareToIndustry(rep, e.Config.Industry(industry).ReadinessAverages),
	}
}

// Assess scores the questionnaire and records the report.
func (e *Engine) Assess(ctx context.Context, opts AssessOptions) (Assessment, error) {
	rep, err := e.Assessor.Assess(opts.Organization, opts.Responses)
	if err != nil {
		return Assessment{}, err
	}
	id := e.newID()
	industry := config.Key(opts.Industry)
	tx, err := e.DB.BeginTxx(ctx, nil)
	if err != nil {
		return Assessment{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertAssessment(ctx, tx, id, industry, rep); err != nil {
		return Assessment{}, fmt.Errorf("insert assessment: %w", err)
	}
	payload := events.EventPayload{
		"organization":  rep.Organization,
		"overall_score": rep.OverallScore,
		"maturity":      rep.OverallMaturity.String(),
	}
	if err := e.Events.Append(ctx, tx, events.AssessmentCreated, kindAssessment, id, opts.ActorID, payload); err != nil {
		return Assessment{}, err
	}
	if err := tx.Commit(); err != nil {
		return Assessment{}, err
	}
	e.Log.Info().Str("assessment_id", id).Float64("overall_score", rep.OverallScore).Msg("assessment recorded")
	return e.analyze(id, industry, rep), nil
}

func (e *Engine) GetAssessment(ctx context.Context, id string) (Assessment, error) {
	rep, industry, err := e.Repo.GetAssessment(ctx, id)
	if err != nil {
		return Assessment{}, fmt.Errorf("assessment %s: %w", id, err)
	}
	return e.analyze(id, industry, rep), nil
}

func (e *Engine) ListAssessments(ctx context.Context, limit int) ([]domain.AssessmentRecord, error) {
	return e.Repo.ListAssessments(ctx, limit)
}

// StoredCase is a generated business case and its id.
type StoredCase struct {
	ID     string            `json:"id"`
	PlanID string            `json:"plan_id,omitempty"`
	Case   businesscase.Case `json:"business_case"`
}

type CaseOptions struct {
	Request businesscase.Request
	PlanID  string
	ActorID string
}

// GenerateCase builds and records a business case. With a plan id the plan
// must exist and takes the case's budget and risks.
func (e *Engine) GenerateCase(ctx context.Context, opts CaseOptions) (StoredCase, error) {
	if opts.PlanID != "" {
		if _, err := e.Plans.Get(ctx, opts.PlanID); err != nil {
			return StoredCase{}, err
		}
	}
	c, err := e.Cases.Generate(opts.Request)
	if err != nil {
		return StoredCase{}, err
	}
	id := e.newID()
	tx, err := e.DB.BeginTxx(ctx, nil)
	if err != nil {
		return StoredCase{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertCase(ctx, tx, id, opts.PlanID, c); err != nil {
		return StoredCase{}, fmt.Errorf("insert business case: %w", err)
	}
	payload := events.EventPayload{
		"organization":   c.Organization,
		"npv":            c.Projection.NPV,
		"roi_percentage": c.Projection.ROIPercentage,
		"recommendation": c.Recommendation,
	}
	if err := e.Events.Append(ctx, tx, events.BusinessCaseCreated, kindBusinessCase, id, opts.ActorID, payload); err != nil {
		return StoredCase{}, err
	}
	if err := tx.Commit(); err != nil {
		return StoredCase{}, err
	}
	e.Log.Info().Str("case_id", id).Float64("npv", c.Projection.NPV).Msg("business case recorded")

	if opts.PlanID != "" {
		plan, err := e.Plans.AttachBusinessCase(ctx, opts.PlanID, c)
		if err != nil {
			return StoredCase{}, err
		}
		if err := e.Events.Append(ctx, nil, events.TransformationCaseLinked, kindTransformation, plan.ID, opts.ActorID,
			events.EventPayload{"case_id": id, "budget": plan.Budget}); err != nil {
			return StoredCase{}, err
		}
	}
	return StoredCase{ID: id, PlanID: opts.PlanID, Case: c}, nil
}

func (e *Engine) GetCase(ctx context.Context, id string) (businesscase.Case, error) {
	c, err := e.Repo.GetCase(ctx, id)
	if err != nil {
		return businesscase.Case{}, fmt.Errorf("business case %s: %w", id, err)
	}
	return c, nil
}

func (e *Engine) ListCases(ctx context.Context, planID string, limit int) ([]domain.CaseRecord, error) {
	return e.Repo.ListCases(ctx, planID, limit)
}

// PresentCase builds the slide deck for a stored case.
func (e *Engine) PresentCase(ctx context.Context, id string) (businesscase.Presentation, error) {
	c, err := e.GetCase(ctx, id)
	if err != nil {
		return businesscase.Presentation{}, err
	}
	return e.Cases.Presentation(c), nil
}

// CaseSensitivity reruns a stored case under the standard sweep.
func (e *Engine) CaseSensitivity(ctx context.Context, id string) (finance.SensitivityReport, error) {
	c, err := e.GetCase(ctx, id)
	if err != nil {
		return finance.SensitivityReport{}, err
	}
	return e.Cases.Sensitivity(c)
}

type TransformOptions struct {
	Profile orchestrator.Profile
	// Target overrides the default target maturity when set.
	Target  orchestrator.MaturityLevel
	ActorID string
}

func (e *Engine) InitTransformation(ctx context.Context, opts TransformOptions) (orchestrator.Plan, error) {
	if opts.Target != 0 && !opts.Target.Valid() {
		return orchestrator.Plan{}, fmt.Errorf("%w: target maturity %d out of range 1-5", orchestrator.ErrInvalidProfile, int(opts.Target))
	}
	plan, err := e.Plans.Initialize(ctx, opts.Profile)
	if err != nil {
		return orchestrator.Plan{}, err
	}
	if opts.Target != 0 && opts.Target != plan.TargetMaturity {
		if plan, err = e.Plans.SetTarget(ctx, plan.ID, opts.Target); err != nil {
			return orchestrator.Plan{}, err
		}
	}
	payload := events.EventPayload{
		"organization":    plan.Organization.Name,
		"timeline_weeks":  plan.TimelineWeeks,
		"target_maturity": plan.TargetMaturity.String(),
	}
	if err := e.Events.Append(ctx, nil, events.TransformationInitialized, kindTransformation, plan.ID, opts.ActorID, payload); err != nil {
		return orchestrator.Plan{}, err
	}
	e.Log.Info().Str("plan_id", plan.ID).Int("timeline_weeks", plan.TimelineWeeks).Msg("transformation initialized")
	return plan, nil
}

// AssessTransformation refreshes a plan's readiness scores, from a stored
// assessment when assessmentID is set and from baseline estimates otherwise.
func (e *Engine) AssessTransformation(ctx context.Context, planID, assessmentID, actorID string) (orchestrator.Readiness, error) {
	var report *readiness.Report
	if assessmentID != "" {
		rep, _, err := e.Repo.GetAssessment(ctx, assessmentID)
		if err != nil {
			return orchestrator.Readiness{}, fmt.Errorf("assessment %s: %w", assessmentID, err)
		}
		report = &rep
	}
	r, err := e.Plans.AssessReadiness(ctx, planID, report)
	if err != nil {
		return orchestrator.Readiness{}, err
	}
	payload := events.EventPayload{
		"assessment_id":         assessmentID,
		"ai_readiness":          r.AIReadiness,
		"stakeholder_alignment": r.StakeholderAlignment,
		"change_readiness":      r.ChangeReadiness,
		"technical_readiness":   r.TechnicalReadiness,
	}
	if err := e.Events.Append(ctx, nil, events.TransformationAssessed, kindTransformation, planID, actorID, payload); err != nil {
		return orchestrator.Readiness{}, err
	}
	return r, nil
}

func (e *Engine) Roadmap(ctx context.Context, planID string) ([]orchestrator.RoadmapPhase, error) {
	return e.Plans.Roadmap(ctx, planID)
}

func (e *Engine) Progress(ctx context.Context, planID string) (orchestrator.Progress, error) {
	return e.Plans.TrackProgress(ctx, planID)
}

func (e *Engine) Advance(ctx context.Context, planID, actorID string) (orchestrator.Plan, error) {
	before, err := e.Plans.Get(ctx, planID)
	if err != nil {
		return orchestrator.Plan{}, err
	}
	plan, err := e.Plans.Advance(ctx, planID)
	if err != nil {
		return orchestrator.Plan{}, err
	}
	payload := events.EventPayload{"from": string(before.CurrentPhase), "to": string(plan.CurrentPhase)}
	if err := e.Events.Append(ctx, nil, events.TransformationAdvanced, kindTransformation, planID, actorID, payload); err != nil {
		return orchestrator.Plan{}, err
	}
	e.Log.Info().Str("plan_id", planID).Str("phase", string(plan.CurrentPhase)).Msg("transformation advanced")
	return plan, nil
}

func (e *Engine) SetTarget(ctx context.Context, planID string, target orchestrator.MaturityLevel, actorID string) (orchestrator.Plan, error) {
	plan, err := e.Plans.SetTarget(ctx, planID, target)
	if err != nil {
		return orchestrator.Plan{}, err
	}
	payload := events.EventPayload{"target_maturity": plan.TargetMaturity.String()}
	if err := e.Events.Append(ctx, nil, events.TransformationRetargeted, kindTransformation, planID, actorID, payload); err != nil {
		return orchestrator.Plan{}, err
	}
	return plan, nil
}

func (e *Engine) GetPlan(ctx context.Context, id string) (orchestrator.Plan, error) {
	return e.Plans.Get(ctx, id)
}

func (e *Engine) ListPlans(ctx context.Context) ([]orchestrator.Plan, error) {
	return e.Plans.List(ctx)
}

func (e *Engine) ListEvents(ctx context.Context, f domain.EventFilter) ([]domain.Event, error) {
	return e.Repo.LatestEvents(ctx, f)
}

// SchemaStatus compares the workspace schema with the embedded migrations.
type SchemaStatus struct {
	Version int `json:"schema_version"`
	Latest  int `json:"latest_schema_version"`
}

func (s SchemaStatus) Current() bool {
	return s.Version >= s.Latest
}

func (e *Engine) Schema(ctx context.Context) (SchemaStatus, error) {
	latest, err := migrate.Latest()
	if err != nil {
		return SchemaStatus{}, err
	}
	v, err := migrate.Version(ctx, e.DB)
	if err != nil {
		return SchemaStatus{}, fmt.Errorf("read schema version: %w", err)
	}
	return SchemaStatus{Version: v, Latest: latest}, nil
}

// IsNotFound reports whether err means an unknown plan, assessment or case.
func IsNotFound(err error) bool {
	return errors.Is(err, orchestrator.ErrNotFound) || errors.Is(err, repo.ErrNotFound)
}

// IsInvalid reports whether err is caused by bad caller input.
func IsInvalid(err error) bool {
	return errors.Is(err, finance.ErrInvalidArgument) ||
		errors.Is(err, readiness.ErrInvalidResponse) ||
		errors.Is(err, orchestrator.ErrInvalidProfile)
}
