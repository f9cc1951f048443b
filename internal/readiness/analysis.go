package readiness

import (
	"fmt"
	"sort"
)

type Gap struct {
	Dimension Dimension `json:"dimension"`
	Maturity  Maturity  `json:"current_maturity"`
	Gaps      []string  `json:"gaps"`
	Impact    int       `json:"impact"`
	Effort    int       `json:"effort"`
}

type QuickWin struct {
	Dimension       Dimension `json:"dimension"`
	Opportunity     string    `json:"opportunity"`
	ExpectedBenefit string    `json:"expected_benefit"`
}

type GapReport struct {
	Critical  []Gap      `json:"critical_gaps"`
	Moderate  []Gap      `json:"moderate_gaps"`
	QuickWins []QuickWin `json:"quick_wins"`
}

// GapAnalysis classifies every Nascent or Emerging dimension. A gap whose
// impact is at least 4 with effort at most 2 is also a quick win.
func (a *Assessor) GapAnalysis(r Report) GapReport {
	out := GapReport{Critical: []Gap{}, Moderate: []Gap{}, QuickWins: []QuickWin{}}
	for _, s := range r.Dimensions {
		if s.Maturity > Emerging {
			continue
		}
		g := Gap{
			Dimension: s.Dimension,
			Maturity:  s.Maturity,
			Gaps:      s.Gaps,
			Impact:    a.gapImpact(s.Dimension, s.Maturity),
			Effort:    a.tables.Effort[s.Dimension],
		}
		if s.Maturity == Nascent {
			out.Critical = append(out.Critical, g)
		} else {
			out.Moderate = append(out.Moderate, g)
		}
		if g.Impact >= 4 && g.Effort <= 2 {
			out.QuickWins = append(out.QuickWins, QuickWin{
				Dimension:       s.Dimension,
				Opportunity:     fmt.Sprintf("Quick improvement in %s", s.Dimension),
				ExpectedBenefit: "High impact with minimal resources",
			})
		}
	}
	return out
}

// gapImpact is the dimension's base impact raised by one per level below
// Developing, capped at 5.
func (a *Assessor) gapImpact(d Dimension, m Maturity) int {
	impact := a.tables.GapImpact[d]
	if penalty := int(Developing - m); penalty > 0 {
		impact += penalty
	}
	if impact > 5 {
		impact = 5
	}
	return impact
}

type DevelopmentPhase struct {
	Number         int               `json:"phase"`
	Name           string            `json:"name"`
	DurationMonths int               `json:"duration_months"`
	Objectives     []string          `json:"objectives"`
	Activities     []string          `json:"activities"`
	SuccessMetrics map[Dimension]int `json:"success_metrics"`
}

var developmentPhases = []struct {
	name   string
	months int
}{
	{"foundation", 3},
	{"development", 6},
	{"maturation", 9},
}

const focusDimensions = 3

// DevelopmentRoadmap builds three phases over the three highest-priority
// dimensions. A dimension joins phase n while its maturity is below n+2, and
// targets one level above its current maturity.
func (a *Assessor) DevelopmentRoadmap(r Report) []DevelopmentPhase {
	focus := a.prioritize(r.Dimensions)
	if len(focus) > focusDimensions {
		focus = focus[:focusDimensions]
	}
	phases := make([]DevelopmentPhase, 0, len(developmentPhases))
	for i, p := range developmentPhases {
		n := i + 1
		phase := DevelopmentPhase{
			Number:         n,
			Name:           p.name,
			DurationMonths: p.months,
			Objectives:     []string{},
			Activities:     []string{},
			SuccessMetrics: map[Dimension]int{},
		}
		for _, s := range focus {
			if int(s.Maturity) >= n+2 {
				continue
			}
			phase.Objectives = append(phase.Objectives, fmt.Sprintf("Improve %s maturity", s.Dimension))
			phase.Activities = append(phase.Activities, limit(s.Recommendations, 2)...)
			target := int(s.Maturity) + 1
			if target > 5 {
				target = 5
			}
			phase.SuccessMetrics[s.Dimension] = target
		}
		phases = append(phases, phase)
	}
	return phases
}

// prioritize orders dimensions high priority first, then lightest weight
// first, then least mature first. Ties keep dimension order.
func (a *Assessor) prioritize(scores []DimensionScore) []DimensionScore {
	out := append([]DimensionScore(nil), scores...)
	sort.SliceStable(out, func(i, j int) bool {
		hi, hj := out[i].Priority == PriorityHigh, out[j].Priority == PriorityHigh
		if hi != hj {
			return hi
		}
		wi, wj := a.tables.Weights[out[i].Dimension], a.tables.Weights[out[j].Dimension]
		if wi != wj {
			return wi < wj
		}
		return out[i].Maturity < out[j].Maturity
	})
	return out
}

type Benchmark struct {
	Dimension       Dimension `json:"dimension"`
	Score           float64   `json:"score"`
	IndustryAverage float64   `json:"industry_average"`
	Delta           float64   `json:"delta"`
}

// CompareToIndustry reports the raw score of every dimension that has an
// industry average, in dimension order. Keys that are not dimensions are
// ignored.
func CompareToIndustry(r Report, averages map[string]float64) []Benchmark {
	out := []Benchmark{}
	for _, s := range r.Dimensions {
		avg, ok := averages[string(s.Dimension)]
		if !ok {
			continue
		}
		out = append(out, Benchmark{
			Dimension:       s.Dimension,
			Score:           s.RawScore,
			IndustryAverage: avg,
			Delta:           s.RawScore - avg,
		})
	}
	return out
}
