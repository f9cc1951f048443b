// Package finance projects multi-year cash flows for an investment case and
// derives NPV, ROI, payback and a simplified IRR from them.
//
// Monetary figures are not sign-checked: a negative cost is accepted as a
// saving and a negative benefit as a loss. Callers that want stricter input
// rules must validate before calling Project.
package finance

import "errors"

// ErrInvalidArgument is returned (wrapped) for out-of-domain parameters.
var ErrInvalidArgument = errors.New("invalid argument")

// ExplicitYears is the number of leading years carrying explicit figures;
// every later year uses the item's ongoing figure.
const ExplicitYears = 3

type CostCategory string

const (
	CostInfrastructure CostCategory = "infrastructure"
	CostTalent         CostCategory = "talent"
	CostTechnology     CostCategory = "technology"
	CostTraining       CostCategory = "training"
	CostConsulting     CostCategory = "consulting"
	CostOperations     CostCategory = "operations"
)

// CostCategories lists every cost category in display order.
var CostCategories = []CostCategory{
	CostInfrastructure,
	CostTalent,
	CostTechnology,
	CostTraining,
	CostConsulting,
	CostOperations,
}

// Valid reports whether c is one of the known cost categories.
func (c CostCategory) Valid() bool {
	for _, k := range CostCategories {
		if c == k {
			return true
		}
	}
	return false
}

type BenefitCategory string

const (
	BenefitRevenueGrowth      BenefitCategory = "revenue_growth"
	BenefitCostReduction      BenefitCategory = "cost_reduction"
	BenefitProductivity       BenefitCategory = "productivity_improvement"
	BenefitRiskMitigation     BenefitCategory = "risk_mitigation"
	BenefitCustomerExperience BenefitCategory = "customer_experience"
	BenefitCompliance         BenefitCategory = "compliance"
)

var BenefitCategories = []BenefitCategory{
	BenefitRevenueGrowth,
	BenefitCostReduction,
	BenefitProductivity,
	BenefitRiskMitigation,
	BenefitCustomerExperience,
	BenefitCompliance,
}

func (c BenefitCategory) Valid() bool {
	for _, k := range BenefitCategories {
		if c == k {
			return true
		}
	}
	return false
}

// CostItem is one investment line. Confidence is carried for reporting and
// confidence scoring only; it never discounts the cost itself.
type CostItem struct {
	Category    CostCategory `json:"category" yaml:"category"`
	Description string       `json:"description,omitempty" yaml:"description"`
	Year1       float64      `json:"year_1" yaml:"year_1"`
	Year2       float64      `json:"year_2" yaml:"year_2"`
	Year3       float64      `json:"year_3" yaml:"year_3"`
	Ongoing     float64      `json:"ongoing" yaml:"ongoing"`
	Confidence  float64      `json:"confidence" yaml:"confidence"`
}

// ForYear returns the raw cost for 0-based year index i.
func (c CostItem) ForYear(i int) float64 {
	return yearValue(i, c.Year1, c.Year2, c.Year3, c.Ongoing)
}

// ExplicitTotal sums the three explicit years.
func (c CostItem) ExplicitTotal() float64 {
	return c.Year1 + c.Year2 + c.Year3
}

// BenefitItem is one expected benefit stream. Confidence and Realization are
// independent multipliers applied to every year.
type BenefitItem struct {
	Category    BenefitCategory `json:"category" yaml:"category"`
	Description string          `json:"description,omitempty" yaml:"description"`
	Year1       float64         `json:"year_1" yaml:"year_1"`
	Year2       float64         `json:"year_2" yaml:"year_2"`
	Year3       float64         `json:"year_3" yaml:"year_3"`
	Ongoing     float64         `json:"ongoing" yaml:"ongoing"`
	Confidence  float64         `json:"confidence" yaml:"confidence"`
	Realization float64         `json:"realization_probability" yaml:"realization_probability"`
}

// ForYear returns the undiscounted value for 0-based year index i.
func (b BenefitItem) ForYear(i int) float64 {
	return yearValue(i, b.Year1, b.Year2, b.Year3, b.Ongoing)
}

// ExpectedForYear is ForYear scaled by confidence and realization.
func (b BenefitItem) ExpectedForYear(i int) float64 {
	return b.ForYear(i) * b.Confidence * b.Realization
}

func (b BenefitItem) ExplicitTotal() float64 {
	return b.Year1 + b.Year2 + b.Year3
}

func yearValue(i int, y1, y2, y3, ongoing float64) float64 {
	switch i {
	case 0:
		return y1
	case 1:
		return y2
	case 2:
		return y3
	}
	if i < 0 {
		return 0
	}
	return ongoing
}
