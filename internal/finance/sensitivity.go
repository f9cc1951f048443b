package finance

import "fmt"

// Variable names a swept input in a sensitivity analysis.
type Variable string

const (
	VariableCostFactor    Variable = "cost_factor"
	VariableBenefitFactor Variable = "benefit_factor"
	VariableDelayMonths   Variable = "delay_months"
)

// Label is the human-readable name used in reports.
func (v Variable) Label() string {
	switch v {
	case VariableCostFactor:
		return "Investment Cost"
	case VariableBenefitFactor:
		return "Benefit Realization"
	case VariableDelayMonths:
		return "Timeline Delay"
	}
	return string(v)
}

// Scenario factors for the fixed optimistic/pessimistic cases.
const (
	OptimisticCostFactor     = 0.9
	OptimisticBenefitFactor  = 1.2
	PessimisticCostFactor    = 1.15
	PessimisticBenefitFactor = 0.8
)

// SweepSpec lists the test points for one variable. Points are multipliers
// for the factor variables and whole months for VariableDelayMonths.
type SweepSpec struct {
	Variable Variable  `json:"variable" yaml:"variable"`
	Points   []float64 `json:"points" yaml:"points"`
}

// DefaultSweep returns the standard variable sweep.
func DefaultSweep() []SweepSpec {
	return []SweepSpec{
		{Variable: VariableCostFactor, Points: []float64{0.8, 0.9, 1.1, 1.2}},
		{Variable: VariableBenefitFactor, Points: []float64{0.7, 0.85, 1.15, 1.3}},
		{Variable: VariableDelayMonths, Points: []float64{0, 3, 6, 12}},
	}
}

// CaseResult is one recomputed projection with its deltas against base.
type CaseResult struct {
	NPV       float64 `json:"npv"`
	ROI       float64 `json:"roi"`
	NPVChange float64 `json:"npv_change"`
	ROIChange float64 `json:"roi_change"`
}

type PointImpact struct {
	Value     float64 `json:"test_value"`
	NPVImpact float64 `json:"npv_impact"`
	ROIImpact float64 `json:"roi_impact"`
}

type VariableImpact struct {
	Variable Variable      `json:"variable"`
	Label    string        `json:"label"`
	Impacts  []PointImpact `json:"impacts"`
}

// SensitivityReport holds base, optimistic and pessimistic cases plus the
// per-variable sweep, in the order the sweep was given.
type SensitivityReport struct {
	Base        CaseResult       `json:"base_case"`
	Optimistic  CaseResult       `json:"optimistic_case"`
	Pessimistic CaseResult       `json:"pessimistic_case"`
	Variables   []VariableImpact `json:"variable_impact"`
}

// Analyze recomputes the projection under the fixed scenarios and each sweep
// point. A nil sweep means DefaultSweep.
func Analyze(costs []CostItem, benefits []BenefitItem, rate float64, horizon int, sweep []SweepSpec) (SensitivityReport, error) {
	base, err := Project(costs, benefits, rate, horizon)
	if err != nil {
		return SensitivityReport{}, err
	}
	if sweep == nil {
		sweep = DefaultSweep()
	}
	for _, s := range sweep {
		switch s.Variable {
		case VariableCostFactor, VariableBenefitFactor, VariableDelayMonths:
		default:
			return SensitivityReport{}, fmt.Errorf("unknown sensitivity variable %q: %w", s.Variable, ErrInvalidArgument)
		}
	}

	// Parameters were validated by the base projection; errors below cannot
	// occur.
	run := func(c []CostItem, b []BenefitItem) Projection {
		p, _ := Project(c, b, rate, horizon)
		return p
	}
	compare := func(p Projection) CaseResult {
		return CaseResult{
			NPV:       p.NPV,
			ROI:       p.ROIPercentage,
			NPVChange: p.NPV - base.NPV,
			ROIChange: p.ROIPercentage - base.ROIPercentage,
		}
	}

	report := SensitivityReport{
		Base:        CaseResult{NPV: base.NPV, ROI: base.ROIPercentage},
		Optimistic:  compare(run(adjustCosts(costs, OptimisticCostFactor), adjustBenefits(benefits, OptimisticBenefitFactor))),
		Pessimistic: compare(run(adjustCosts(costs, PessimisticCostFactor), adjustBenefits(benefits, PessimisticBenefitFactor))),
	}

	for _, s := range sweep {
		vi := VariableImpact{Variable: s.Variable, Label: s.Variable.Label()}
		for _, v := range s.Points {
			var p Projection
			switch s.Variable {
			case VariableCostFactor:
				p = run(adjustCosts(costs, v), benefits)
			case VariableBenefitFactor:
				p = run(costs, adjustBenefits(benefits, v))
			case VariableDelayMonths:
				p = run(costs, delayBenefits(benefits, int(v)))
			}
			vi.Impacts = append(vi.Impacts, PointImpact{
				Value:     v,
				NPVImpact: p.NPV - base.NPV,
				ROIImpact: p.ROIPercentage - base.ROIPercentage,
			})
		}
		report.Variables = append(report.Variables, vi)
	}
	return report, nil
}
