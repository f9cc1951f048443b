package transformlinesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Transformline HTTP API client.
type Client struct {
	BaseURL     string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

type CostItem struct {
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Year1       float64 `json:"year_1,omitempty"`
	Year2       float64 `json:"year_2,omitempty"`
	Year3       float64 `json:"year_3,omitempty"`
	Ongoing     float64 `json:"ongoing,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}

type BenefitItem struct {
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Year1       float64 `json:"year_1,omitempty"`
	Year2       float64 `json:"year_2,omitempty"`
	Year3       float64 `json:"year_3,omitempty"`
	Ongoing     float64 `json:"ongoing,omitempty"`
	Confidence  float64 `json:"confidence"`
	Realization float64 `json:"realization_probability"`
}

// ProjectionRequest leaves DiscountRate and HorizonYears to the server
// configuration when unset.
type ProjectionRequest struct {
	Costs        []CostItem    `json:"costs,omitempty"`
	Benefits     []BenefitItem `json:"benefits,omitempty"`
	DiscountRate *float64      `json:"discount_rate,omitempty"`
	HorizonYears int           `json:"horizon_years,omitempty"`
}

type Projection struct {
	TotalCost     float64   `json:"total_cost"`
	TotalBenefit  float64   `json:"total_benefit"`
	NPV           float64   `json:"net_present_value"`
	ROIPercentage float64   `json:"roi_percentage"`
	PaybackMonths int       `json:"payback_period_months"`
	IRR           float64   `json:"irr"`
	Cashflow      []float64 `json:"yearly_cashflow"`
}

type ScenarioResult struct {
	NPV       float64 `json:"npv"`
	ROI       float64 `json:"roi"`
	NPVChange float64 `json:"npv_change"`
	ROIChange float64 `json:"roi_change"`
}

// Sensitivity represents a sensitivity report (partial).
type Sensitivity struct {
	Base        ScenarioResult `json:"base_case"`
	Optimistic  ScenarioResult `json:"optimistic_case"`
	Pessimistic ScenarioResult `json:"pessimistic_case"`
}

type DimensionScore struct {
	Dimension string  `json:"dimension"`
	RawScore  float64 `json:"raw_score"`
	Maturity  string  `json:"maturity_level"`
	Priority  string  `json:"priority"`
}

// Assessment represents a stored readiness assessment (partial).
type Assessment struct {
	ID       string `json:"id"`
	Industry string `json:"industry,omitempty"`
	Report   struct {
		Organization    string           `json:"organization_name"`
		OverallScore    float64          `json:"overall_score"`
		OverallMaturity string           `json:"overall_maturity"`
		Dimensions      []DimensionScore `json:"dimension_scores"`
		TimelineMonths  int              `json:"estimated_timeline_months"`
	} `json:"report"`
}

type BusinessCaseRequest struct {
	Organization string   `json:"organization_name"`
	Initiative   string   `json:"initiative_name,omitempty"`
	Industry     string   `json:"industry,omitempty"`
	Size         string   `json:"organization_size,omitempty"`
	Budget       float64  `json:"investment_budget"`
	Objectives   []string `json:"strategic_objectives,omitempty"`
	Challenges   []string `json:"current_challenges,omitempty"`
	PlanID       string   `json:"plan_id,omitempty"`
}

// BusinessCase represents a stored business case (partial).
type BusinessCase struct {
	ID     string `json:"id"`
	PlanID string `json:"plan_id,omitempty"`
	Case   struct {
		Organization   string     `json:"organization_name"`
		Initiative     string     `json:"initiative_name"`
		Projection     Projection `json:"financial_projection"`
		Recommendation string     `json:"approval_recommendation"`
		Confidence     float64    `json:"confidence_score"`
	} `json:"business_case"`
}

type TransformationRequest struct {
	Name            string `json:"name"`
	Industry        string `json:"industry,omitempty"`
	Size            string `json:"size,omitempty"`
	CurrentMaturity int    `json:"current_maturity"`
	TargetMaturity  int    `json:"target_maturity,omitempty"`
}

// Transformation represents a transformation plan (partial).
type Transformation struct {
	ID           string `json:"id"`
	Organization struct {
		Name            string `json:"name"`
		Industry        string `json:"industry"`
		Size            string `json:"size"`
		CurrentMaturity int    `json:"current_maturity"`
	} `json:"organization"`
	CurrentPhase   string  `json:"current_phase"`
	TargetMaturity int     `json:"target_maturity"`
	TimelineWeeks  int     `json:"timeline_weeks"`
	Budget         float64 `json:"budget"`
}

type Readiness struct {
	AIReadiness          float64 `json:"ai_readiness"`
	StakeholderAlignment float64 `json:"stakeholder_alignment"`
	ChangeReadiness      float64 `json:"change_readiness"`
	TechnicalReadiness   float64 `json:"technical_readiness"`
}

type RoadmapPhase struct {
	Key           string   `json:"key"`
	Phase         string   `json:"phase"`
	DurationWeeks int      `json:"duration_weeks"`
	Activities    []string `json:"activities"`
}

// Progress represents a progress report (partial).
type Progress struct {
	ID                   string             `json:"id"`
	CurrentPhase         string             `json:"current_phase"`
	CompletionPercentage float64            `json:"completion_percentage"`
	Metrics              map[string]float64 `json:"metrics"`
	Risks                []string           `json:"risks"`
	Recommendations      []string           `json:"recommendations"`
}

// Event represents a log entry.
type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// Code extracts the error code from the response envelope, if any.
func (e *APIError) Code() string {
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &env); err != nil {
		return ""
	}
	return env.Error.Code
}

// PaginatedEvents wraps list responses with cursors.
type PaginatedEvents struct {
	Items      []Event `json:"items"`
	NextCursor string  `json:"next_cursor"`
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "v0/health", nil, nil)
}

// Project runs a financial projection.
func (c *Client) Project(ctx context.Context, req ProjectionRequest) (Projection, error) {
	var resp Projection
	err := c.do(ctx, http.MethodPost, "v0/projections", req, &resp)
	return resp, err
}

func (c *Client) Sensitivity(ctx context.Context, req ProjectionRequest) (Sensitivity, error) {
	var resp Sensitivity
	err := c.do(ctx, http.MethodPost, "v0/projections/sensitivity", req, &resp)
	return resp, err
}

// Assess scores questionnaire responses keyed by question key.
func (c *Client) Assess(ctx context.Context, organization, industry string, responses map[string]int) (Assessment, error) {
	body := map[string]any{
		"organization_name": organization,
		"industry":          industry,
		"responses":         responses,
	}
	var resp Assessment
	err := c.do(ctx, http.MethodPost, "v0/assessments", body, &resp)
	return resp, err
}

func (c *Client) GenerateCase(ctx context.Context, req BusinessCaseRequest) (BusinessCase, error) {
	var resp BusinessCase
	err := c.do(ctx, http.MethodPost, "v0/business-cases", req, &resp)
	return resp, err
}

func (c *Client) CreateTransformation(ctx context.Context, req TransformationRequest) (Transformation, error) {
	var resp Transformation
	err := c.do(ctx, http.MethodPost, "v0/transformations", req, &resp)
	return resp, err
}

func (c *Client) GetTransformation(ctx context.Context, id string) (Transformation, error) {
	var resp Transformation
	err := c.do(ctx, http.MethodGet, transformationPath(id, ""), nil, &resp)
	return resp, err
}

func (c *Client) ListTransformations(ctx context.Context) ([]Transformation, error) {
	var resp struct {
		Items []Transformation `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "v0/transformations", nil, &resp)
	return resp.Items, err
}

// AssessReadiness scores a plan's readiness, from a stored assessment when
// assessmentID is set and from the plan's maturity otherwise.
func (c *Client) AssessReadiness(ctx context.Context, id, assessmentID string) (Readiness, error) {
	var body any
	if assessmentID != "" {
		body = map[string]any{"assessment_id": assessmentID}
	}
	var resp Readiness
	err := c.do(ctx, http.MethodPost, transformationPath(id, "readiness"), body, &resp)
	return resp, err
}

func (c *Client) Roadmap(ctx context.Context, id string) ([]RoadmapPhase, error) {
	var resp []RoadmapPhase
	err := c.do(ctx, http.MethodGet, transformationPath(id, "roadmap"), nil, &resp)
	return resp, err
}

func (c *Client) Progress(ctx context.Context, id string) (Progress, error) {
	var resp Progress
	err := c.do(ctx, http.MethodGet, transformationPath(id, "progress"), nil, &resp)
	return resp, err
}

// Advance moves the plan into its next phase.
func (c *Client) Advance(ctx context.Context, id string) (Transformation, error) {
	var resp Transformation
	err := c.do(ctx, http.MethodPost, transformationPath(id, "advance"), nil, &resp)
	return resp, err
}

func (c *Client) SetTarget(ctx context.Context, id string, target int) (Transformation, error) {
	var resp Transformation
	err := c.do(ctx, http.MethodPut, transformationPath(id, "target"), map[string]any{"target_maturity": target}, &resp)
	return resp, err
}

// Events returns recent events.
func (c *Client) Events(ctx context.Context, limit int) ([]Event, error) {
	page, err := c.EventsPage(ctx, limit, "")
	return page.Items, err
}

// EventsPage returns a paginated event listing.
func (c *Client) EventsPage(ctx context.Context, limit int, cursor string) (PaginatedEvents, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	endpoint := "v0/events"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var resp PaginatedEvents
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func transformationPath(id, sub string) string {
	p := "v0/transformations/" + url.PathEscape(id)
	if sub != "" {
		p += "/" + sub
	}
	return p
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
