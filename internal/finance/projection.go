package finance

import (
	"fmt"
	"math"
)

const (
	DefaultDiscountRate = 0.10
	DefaultHorizonYears = 5
)

// Projection is the result of Project. Totals are undiscounted sums over the
// whole horizon; Cashflow holds benefit minus cost per year.
type Projection struct {
	TotalCost     float64   `json:"total_cost"`
	TotalBenefit  float64   `json:"total_benefit"`
	NPV           float64   `json:"net_present_value"`
	ROIPercentage float64   `json:"roi_percentage"`
	PaybackMonths int       `json:"payback_period_months"`
	IRR           float64   `json:"irr"`
	Cashflow      []float64 `json:"yearly_cashflow"`
}

// Cumulative returns the running total of Cashflow.
func (p Projection) Cumulative() []float64 {
	out := make([]float64, len(p.Cashflow))
	var sum float64
	for i, cf := range p.Cashflow {
		sum += cf
		out[i] = sum
	}
	return out
}

// ValidateParams checks a discount rate and horizon without computing
// anything.
func ValidateParams(rate float64, horizon int) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("discount rate must be finite: %w", ErrInvalidArgument)
	}
	if rate <= -1 {
		return fmt.Errorf("discount rate %g must be greater than -1: %w", rate, ErrInvalidArgument)
	}
	if horizon < 1 {
		return fmt.Errorf("horizon %d must be at least 1 year: %w", horizon, ErrInvalidArgument)
	}
	return nil
}

// Project aggregates costs and benefits over horizon years and derives the
// summary metrics. Parameters are validated before any computation.
func Project(costs []CostItem, benefits []BenefitItem, rate float64, horizon int) (Projection, error) {
	if err := ValidateParams(rate, horizon); err != nil {
		return Projection{}, err
	}

	annualCost := make([]float64, horizon)
	annualBenefit := make([]float64, horizon)
	for _, c := range costs {
		for i := range annualCost {
			annualCost[i] += c.ForYear(i)
		}
	}
	for _, b := range benefits {
		for i := range annualBenefit {
			annualBenefit[i] += b.ExpectedForYear(i)
		}
	}

	cashflow := make([]float64, horizon)
	var totalCost, totalBenefit float64
	for i := range cashflow {
		cashflow[i] = annualBenefit[i] - annualCost[i]
		totalCost += annualCost[i]
		totalBenefit += annualBenefit[i]
	}

	var roi float64
	if totalCost > 0 {
		roi = (totalBenefit - totalCost) / totalCost * 100
	}

	return Projection{
		TotalCost:     totalCost,
		TotalBenefit:  totalBenefit,
		NPV:           NPV(cashflow, rate),
		ROIPercentage: roi,
		PaybackMonths: PaybackMonths(cashflow),
		IRR:           SimpleIRR(cashflow, totalCost),
		Cashflow:      cashflow,
	}, nil
}

// NPV discounts the flow at index i by (1+rate)^(i+1), so the first year is
// discounted one full period.
func NPV(cashflow []float64, rate float64) float64 {
	var npv float64
	for i, cf := range cashflow {
		npv += cf / math.Pow(1+rate, float64(i+1))
	}
	return npv
}

// PaybackMonths returns the end-of-year month of the first year whose
// cumulative cash flow is non-negative, or len(cashflow)*12 when that never
// happens.
func PaybackMonths(cashflow []float64) int {
	var cumulative float64
	for i, cf := range cashflow {
		cumulative += cf
		if cumulative >= 0 {
			return (i + 1) * 12
		}
	}
	return len(cashflow) * 12
}

// SimpleIRR is a compound-growth shortcut, (Σcashflow/totalCost)^(1/n) - 1,
// clamped to [-1, 1]. It is not a root of the NPV equation. It returns 0 when
// totalCost <= 0 and -1 when the summed cash flow is not positive.
func SimpleIRR(cashflow []float64, totalCost float64) float64 {
	if totalCost <= 0 || len(cashflow) == 0 {
		return 0
	}
	var total float64
	for _, cf := range cashflow {
		total += cf
	}
	if total <= 0 {
		return -1
	}
	irr := math.Pow(total/totalCost, 1/float64(len(cashflow))) - 1
	return math.Min(1, math.Max(-1, irr))
}
