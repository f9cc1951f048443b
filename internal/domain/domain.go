package domain

// Event is one entry of the workspace event log.
type Event struct {
	ID         int64  `json:"id" db:"id"`
	TS         string `json:"ts" db:"ts" format:"date-time"`
	Type       string `json:"type" db:"type"`
	EntityKind string `json:"entity_kind" db:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty" db:"entity_id"`
	ActorID    string `json:"actor_id" db:"actor_id"`
	Payload    string `json:"payload_json" db:"payload_json"`
}

// AssessmentRecord summarizes a stored readiness report.
type AssessmentRecord struct {
	ID              string  `json:"id" db:"id"`
	Organization    string  `json:"organization" db:"organization"`
	Industry        string  `json:"industry,omitempty" db:"industry"`
	OverallScore    float64 `json:"overall_score" db:"overall_score"`
	OverallMaturity string  `json:"overall_maturity" db:"overall_maturity"`
	CreatedAt       string  `json:"created_at" db:"created_at" format:"date-time"`
}

// CaseRecord summarizes a stored business case.
type CaseRecord struct {
	ID           string  `json:"id" db:"id"`
	PlanID       string  `json:"plan_id,omitempty" db:"plan_id"`
	Organization string  `json:"organization" db:"organization"`
	Initiative   string  `json:"initiative,omitempty" db:"initiative"`
	NPV          float64 `json:"npv" db:"npv"`
	ROI          float64 `json:"roi_percentage" db:"roi"`
	CreatedAt    string  `json:"created_at" db:"created_at" format:"date-time"`
}

// EventFilter narrows an event listing. Cursor is an exclusive upper bound
// on event ids; zero means from the newest event.
type EventFilter struct {
	Type       string
	EntityKind string
	EntityID   string
	Limit      int
	Cursor     int64
}
