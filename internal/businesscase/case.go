// Package businesscase assembles an investment case for an AI initiative:
// budget allocation, benefit estimates from industry benchmarks, risks,
// scenarios, a delivery timeline and the resulting financial projection.
package businesscase

import (
	"fmt"
	"strings"
	"time"

	"transformline/internal/finance"
)

// Request describes the initiative to build a case for. Industry and Size
// are looked up in the configuration and fall back to its default entries.
type Request struct {
	Organization string   `json:"organization_name" yaml:"organization_name"`
	Initiative   string   `json:"initiative_name" yaml:"initiative_name"`
	Industry     string   `json:"industry" yaml:"industry"`
	Size         string   `json:"organization_size" yaml:"organization_size"`
	Budget       float64  `json:"investment_budget" yaml:"investment_budget"`
	Objectives   []string `json:"strategic_objectives" yaml:"strategic_objectives"`
	Challenges   []string `json:"current_challenges" yaml:"current_challenges"`
}

type RiskLevel int

const (
	RiskLow RiskLevel = iota + 1
	RiskMedium
	RiskHigh
	RiskVeryHigh
)

func (l RiskLevel) String() string {
	switch l {
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	case RiskVeryHigh:
		return "VERY_HIGH"
	}
	return "UNKNOWN"
}

// MarshalText encodes the zero level as "" so it decodes back to zero.
func (l RiskLevel) MarshalText() ([]byte, error) {
	if l == 0 {
		return []byte{}, nil
	}
	return []byte(l.String()), nil
}

func (l *RiskLevel) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*l = 0
		return nil
	}
	for v := RiskLow; v <= RiskVeryHigh; v++ {
		if v.String() == string(b) {
			*l = v
			return nil
		}
	}
	return fmt.Errorf("unknown risk level %q", string(b))
}

type Risk struct {
	Risk           string    `json:"risk"`
	Impact         RiskLevel `json:"impact"`
	Probability    float64   `json:"probability"`
	Mitigation     string    `json:"mitigation_strategy"`
	MitigationCost float64   `json:"mitigation_cost"`
	ResidualImpact RiskLevel `json:"residual_impact"`
}

// Score is impact weighted by probability.
func (r Risk) Score() float64 {
	return float64(r.Impact) * r.Probability
}

// High reports whether the risk counts against confidence and approval.
func (r Risk) High() bool {
	return r.Impact >= RiskHigh && r.Probability > 0.5
}

type Scenario struct {
	Name               string  `json:"name"`
	Probability        float64 `json:"probability"`
	ROIAdjustment      float64 `json:"roi_adjustment"`
	TimelineAdjustment int     `json:"timeline_adjustment_months"`
	Description        string  `json:"description"`
}

// Phase is one implementation phase of the delivery timeline.
type Phase struct {
	Key    string `json:"phase"`
	Months int    `json:"months"`
}

// Label turns the phase key into title case words.
func (p Phase) Label() string {
	return titleWords(p.Key)
}

type Metric struct {
	Name   string  `json:"name"`
	Target float64 `json:"target"`
}

// Case is a generated business case.
type Case struct {
	Organization       string                `json:"organization_name"`
	Initiative         string                `json:"initiative_name"`
	Industry           string                `json:"industry"`
	Size               string                `json:"organization_size"`
	ExecutiveSummary   string                `json:"executive_summary"`
	StrategicAlignment string                `json:"strategic_alignment"`
	Projection         finance.Projection    `json:"financial_projection"`
	Investments        []finance.CostItem    `json:"investments"`
	Benefits           []finance.BenefitItem `json:"benefits"`
	Risks              []Risk                `json:"risks"`
	Scenarios          []Scenario            `json:"scenarios"`
	Timeline           []Phase               `json:"implementation_timeline"`
	SuccessMetrics     []Metric              `json:"success_metrics"`
	Recommendation     string                `json:"approval_recommendation"`
	Confidence         float64               `json:"confidence_score"`
	DiscountRate       float64               `json:"discount_rate"`
	HorizonYears       int                   `json:"horizon_years"`
	CreatedAt          time.Time             `json:"created_date"`
}

// TimelineMonths sums every phase.
func (c Case) TimelineMonths() int {
	total := 0
	for _, p := range c.Timeline {
		total += p.Months
	}
	return total
}

// HighRisks counts risks that are both high impact and more likely than not.
func (c Case) HighRisks() int {
	n := 0
	for _, r := range c.Risks {
		if r.High() {
			n++
		}
	}
	return n
}

func titleWords(key string) string {
	parts := strings.Split(key, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
