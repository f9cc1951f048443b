package readiness

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// DefaultAnswer is used for questions left unanswered.
const DefaultAnswer = 3

const (
	topStrengthLimit    = 5
	criticalGapLimit    = 5
	recommendationLimit = 8
	baseTimelineMonths  = 18
	scorePrecision      = 1e9
)

type DimensionScore struct {
	Dimension       Dimension `json:"dimension"`
	RawScore        float64   `json:"raw_score"`
	WeightedScore   float64   `json:"weighted_score"`
	Maturity        Maturity  `json:"maturity_level"`
	Strengths       []string  `json:"strengths"`
	Gaps            []string  `json:"gaps"`
	Recommendations []string  `json:"recommendations"`
	Priority        Priority  `json:"priority"`
}

// ActionPlan buckets one recommendation per dimension by urgency. Low
// priority dimensions land in MediumTerm; LongTerm stays empty.
type ActionPlan struct {
	Immediate  []string `json:"immediate_actions"`
	ShortTerm  []string `json:"short_term_goals"`
	MediumTerm []string `json:"medium_term_objectives"`
	LongTerm   []string `json:"long_term_vision"`
}

type Report struct {
	Organization            string           `json:"organization_name"`
	AssessedAt              time.Time        `json:"assessment_date"`
	OverallScore            float64          `json:"overall_score"`
	OverallMaturity         Maturity         `json:"overall_maturity"`
	Dimensions              []DimensionScore `json:"dimension_scores"`
	TopStrengths            []string         `json:"top_strengths"`
	CriticalGaps            []string         `json:"critical_gaps"`
	PriorityRecommendations []string         `json:"priority_recommendations"`
	ActionPlan              ActionPlan       `json:"implementation_roadmap"`
	TimelineMonths          int              `json:"estimated_timeline_months"`
}

// Score returns the assessment for d.
func (r Report) Score(d Dimension) (DimensionScore, bool) {
	for _, s := range r.Dimensions {
		if s.Dimension == d {
			return s, true
		}
	}
	return DimensionScore{}, false
}

type Assessor struct {
	tables Tables
	byKey  map[string]Question

	Now func() time.Time
}

// NewAssessor validates t and returns an assessor over it.
func NewAssessor(t Tables) (*Assessor, error) {
	byKey := make(map[string]Question, len(t.Questions))
	perDim := make(map[Dimension]int)
	for _, q := range t.Questions {
		if q.Key == "" {
			return nil, fmt.Errorf("question for %s has empty key", q.Dimension)
		}
		if !q.Dimension.Valid() {
			return nil, fmt.Errorf("question %s has unknown dimension %q", q.Key, q.Dimension)
		}
		if q.Weight <= 0 {
			return nil, fmt.Errorf("question %s weight must be positive", q.Key)
		}
		if _, dup := byKey[q.Key]; dup {
			return nil, fmt.Errorf("duplicate question key %s", q.Key)
		}
		byKey[q.Key] = q
		perDim[q.Dimension]++
	}
	for _, d := range Dimensions {
		if perDim[d] == 0 {
			return nil, fmt.Errorf("no question for dimension %s", d)
		}
		if w, ok := t.Weights[d]; !ok || w <= 0 {
			return nil, fmt.Errorf("missing weight for dimension %s", d)
		}
		if _, ok := t.GapImpact[d]; !ok {
			return nil, fmt.Errorf("missing gap impact for dimension %s", d)
		}
		if _, ok := t.Effort[d]; !ok {
			return nil, fmt.Errorf("missing effort for dimension %s", d)
		}
	}
	return &Assessor{tables: t, byKey: byKey, Now: time.Now}, nil
}

// Default returns an assessor over DefaultTables.
func Default() *Assessor {
	a, err := NewAssessor(DefaultTables())
	if err != nil {
		panic(err)
	}
	return a
}

// Questions returns the questionnaire in dimension order.
func (a *Assessor) Questions() []Question {
	out := make([]Question, 0, len(a.tables.Questions))
	for _, d := range Dimensions {
		for _, q := range a.tables.Questions {
			if q.Dimension == d {
				out = append(out, q)
			}
		}
	}
	return out
}

// Weight returns the strategic weight of d.
func (a *Assessor) Weight(d Dimension) float64 {
	return a.tables.Weights[d]
}

// Assess scores responses, keyed by question key, for organization.
func (a *Assessor) Assess(organization string, responses map[string]int) (Report, error) {
	if strings.TrimSpace(organization) == "" {
		return Report{}, fmt.Errorf("organization name is required: %w", ErrInvalidResponse)
	}
	keys := make([]string, 0, len(responses))
	for k := range responses {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := a.byKey[k]; !ok {
			return Report{}, fmt.Errorf("unknown question %q: %w", k, ErrInvalidResponse)
		}
		if v := responses[k]; v < 1 || v > 5 {
			return Report{}, fmt.Errorf("answer %d for %s outside 1-5: %w", v, k, ErrInvalidResponse)
		}
	}

	report := Report{Organization: organization, AssessedAt: a.Now()}
	var totalWeighted, totalWeight float64
	for _, d := range Dimensions {
		s := a.scoreDimension(d, responses)
		report.Dimensions = append(report.Dimensions, s)
		totalWeighted += s.WeightedScore
		totalWeight += a.tables.Weights[d]
	}
	report.OverallScore = roundScore(totalWeighted / totalWeight)
	report.OverallMaturity = MaturityForScore(report.OverallScore)
	report.TopStrengths = topStrengths(report.Dimensions)
	report.CriticalGaps = criticalGaps(report.Dimensions)
	report.PriorityRecommendations = priorityRecommendations(report.Dimensions)
	report.ActionPlan = actionPlan(report.Dimensions)
	report.TimelineMonths = estimateTimeline(report.Dimensions, report.OverallScore)
	return report, nil
}

func (a *Assessor) scoreDimension(d Dimension, responses map[string]int) DimensionScore {
	var total, weight float64
	for _, q := range a.tables.Questions {
		if q.Dimension != d {
			continue
		}
		answer, ok := responses[q.Key]
		if !ok {
			answer = DefaultAnswer
		}
		total += float64(answer) * q.Weight
		weight += q.Weight
	}
	raw := roundScore(total / weight)
	m := MaturityForScore(raw)
	in := a.insight(d, m)
	return DimensionScore{
		Dimension:       d,
		RawScore:        raw,
		WeightedScore:   raw * a.tables.Weights[d],
		Maturity:        m,
		Strengths:       in.Strengths,
		Gaps:            in.Gaps,
		Recommendations: in.Recommendations,
		Priority:        priorityFor(d, m),
	}
}

// roundScore trims float noise so whole-number answers land exactly on a
// maturity boundary; 3*0.1/0.1 is 3.0000000000000004 otherwise.
func roundScore(v float64) float64 {
	return math.Round(v*scorePrecision) / scorePrecision
}

func (a *Assessor) insight(d Dimension, m Maturity) Insight {
	if byLevel, ok := a.tables.Insights[d]; ok {
		if in, ok := byLevel[m]; ok {
			return in
		}
	}
	return defaultInsight
}

func topStrengths(scores []DimensionScore) []string {
	var out []string
	for _, s := range scores {
		if s.Maturity >= Advanced {
			out = append(out, s.Strengths...)
		}
	}
	return limit(out, topStrengthLimit)
}

func criticalGaps(scores []DimensionScore) []string {
	var out []string
	for _, s := range scores {
		if s.Priority == PriorityHigh {
			out = append(out, s.Gaps...)
		}
	}
	return limit(out, criticalGapLimit)
}

// priorityRecommendations takes two recommendations from every high or
// medium dimension. Dimensions that are not high priority come first and the
// more mature ones lead within each group, so the limit cuts high-priority
// dimensions first.
func priorityRecommendations(scores []DimensionScore) []string {
	sorted := append([]DimensionScore(nil), scores...)
	sort.SliceStable(sorted, func(i, j int) bool {
		hi, hj := sorted[i].Priority == PriorityHigh, sorted[j].Priority == PriorityHigh
		if hi != hj {
			return hj
		}
		return sorted[i].Maturity > sorted[j].Maturity
	})
	var out []string
	for _, s := range sorted {
		if s.Priority == PriorityHigh || s.Priority == PriorityMedium {
			out = append(out, limit(s.Recommendations, 2)...)
		}
	}
	return limit(out, recommendationLimit)
}

func actionPlan(scores []DimensionScore) ActionPlan {
	plan := ActionPlan{
		Immediate:  []string{},
		ShortTerm:  []string{},
		MediumTerm: []string{},
		LongTerm:   []string{},
	}
	for _, s := range scores {
		first := limit(s.Recommendations, 1)
		switch {
		case s.Priority == PriorityHigh:
			plan.Immediate = append(plan.Immediate, first...)
		case s.Priority == PriorityMedium:
			plan.ShortTerm = append(plan.ShortTerm, first...)
		default:
			plan.MediumTerm = append(plan.MediumTerm, first...)
		}
	}
	return plan
}

func estimateTimeline(scores []DimensionScore, overall float64) int {
	var mult float64
	switch {
	case overall <= 2:
		mult = 1.5
	case overall <= 3:
		mult = 1.2
	case overall <= 4:
		mult = 1.0
	default:
		mult = 0.8
	}
	high := 0
	for _, s := range scores {
		if s.Priority == PriorityHigh {
			high++
		}
	}
	return int(baseTimelineMonths*mult + float64(high*2))
}

func limit(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}
