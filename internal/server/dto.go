package server

import (
	"transformline/internal/businesscase"
	"transformline/internal/domain"
	"transformline/internal/engine"
	"transformline/internal/finance"
	"transformline/internal/orchestrator"
)

// Request payloads

type CostItemRequest struct {
	Category    finance.CostCategory `json:"category" enum:"infrastructure,talent,technology,training,consulting,operations"`
	Description string               `json:"description,omitempty"`
	Year1       float64              `json:"year_1,omitempty"`
	Year2       float64              `json:"year_2,omitempty"`
	Year3       float64              `json:"year_3,omitempty"`
	Ongoing     float64              `json:"ongoing,omitempty"`
	Confidence  float64              `json:"confidence,omitempty" minimum:"0" maximum:"1"`
}

type BenefitItemRequest struct {
	Category    finance.BenefitCategory `json:"category" enum:"revenue_growth,cost_reduction,productivity_improvement,risk_mitigation,customer_experience,compliance"`
	Description string                  `json:"description,omitempty"`
	Year1       float64                 `json:"year_1,omitempty"`
	Year2       float64                 `json:"year_2,omitempty"`
	Year3       float64                 `json:"year_3,omitempty"`
	Ongoing     float64                 `json:"ongoing,omitempty"`
	Confidence  float64                 `json:"confidence" minimum:"0" maximum:"1"`
	Realization float64                 `json:"realization_probability" minimum:"0" maximum:"1"`
}

type SweepRequest struct {
	Variable finance.Variable `json:"variable" enum:"cost_factor,benefit_factor,delay_months"`
	Points   []float64        `json:"points"`
}

type ProjectionRequest struct {
	Costs        []CostItemRequest    `json:"costs,omitempty"`
	Benefits     []BenefitItemRequest `json:"benefits,omitempty"`
	DiscountRate *float64             `json:"discount_rate,omitempty" doc:"Defaults to the configured rate"`
	HorizonYears int                  `json:"horizon_years,omitempty" doc:"Defaults to the configured horizon"`
	Sweep        []SweepRequest       `json:"sweep,omitempty" doc:"Sensitivity only; omitted means the standard sweep"`
}

type AssessmentRequest struct {
	Organization string         `json:"organization_name" minLength:"1"`
	Industry     string         `json:"industry,omitempty"`
	Responses    map[string]int `json:"responses,omitempty" doc:"Answers 1-5 keyed by question key; unanswered questions score 3"`
}

type BusinessCaseRequest struct {
	Organization string   `json:"organization_name" minLength:"1"`
	Initiative   string   `json:"initiative_name,omitempty"`
	Industry     string   `json:"industry,omitempty"`
	Size         string   `json:"organization_size,omitempty"`
	Budget       float64  `json:"investment_budget" minimum:"0"`
	Objectives   []string `json:"strategic_objectives,omitempty"`
	Challenges   []string `json:"current_challenges,omitempty"`
	PlanID       string   `json:"plan_id,omitempty" doc:"Attach the case to this transformation"`
}

type CreateTransformationRequest struct {
	Organization    string `json:"name" minLength:"1"`
	Industry        string `json:"industry,omitempty"`
	Size            string `json:"size,omitempty"`
	CurrentMaturity int    `json:"current_maturity" minimum:"1" maximum:"5"`
	TargetMaturity  int    `json:"target_maturity,omitempty" minimum:"0" maximum:"5" doc:"Defaults to 3"`
}

type ReadinessRequest struct {
	AssessmentID string `json:"assessment_id,omitempty" doc:"Derive scores from a stored assessment"`
}

type SetTargetRequest struct {
	TargetMaturity int `json:"target_maturity" minimum:"1" maximum:"5"`
}

// Response payloads

type EventResponse struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}

type paginatedEvents struct {
	Items      []EventResponse `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

type paginatedAssessments struct {
	Items []domain.AssessmentRecord `json:"items"`
}

type paginatedCases struct {
	Items []domain.CaseRecord `json:"items"`
}

type paginatedPlans struct {
	Items []orchestrator.Plan `json:"items"`
}

func (r ProjectionRequest) toEngine() engine.ProjectionRequest {
	out := engine.ProjectionRequest{
		DiscountRate: r.DiscountRate,
		HorizonYears: r.HorizonYears,
	}
	for _, c := range r.Costs {
		out.Costs = append(out.Costs, finance.CostItem(c))
	}
	for _, b := range r.Benefits {
		out.Benefits = append(out.Benefits, finance.BenefitItem(b))
	}
	for _, s := range r.Sweep {
		out.Sweep = append(out.Sweep, finance.SweepSpec(s))
	}
	return out
}

func (r BusinessCaseRequest) toRequest() businesscase.Request {
	return businesscase.Request{
		Organization: r.Organization,
		Initiative:   r.Initiative,
		Industry:     r.Industry,
		Size:         r.Size,
		Budget:       r.Budget,
		Objectives:   r.Objectives,
		Challenges:   r.Challenges,
	}
}

func (r CreateTransformationRequest) profile() orchestrator.Profile {
	return orchestrator.Profile{
		Name:            r.Organization,
		Industry:        r.Industry,
		Size:            r.Size,
		CurrentMaturity: orchestrator.MaturityLevel(r.CurrentMaturity),
	}
}

func eventResponse(e domain.Event) EventResponse {
	return EventResponse(e)
}

func nonNilSlice[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
