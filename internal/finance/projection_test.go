package finance_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transformline/internal/finance"
)

const eps = 1e-9

func TestProjectEmptyInputs(t *testing.T) {
	p, err := finance.Project(nil, nil, 0.10, 5)
	require.NoError(t, err)

	assert.Equal(t, 0.0, p.TotalCost)
	assert.Equal(t, 0.0, p.TotalBenefit)
	assert.Equal(t, 0.0, p.NPV)
	assert.Equal(t, 0.0, p.ROIPercentage)
	assert.Equal(t, 0.0, p.IRR)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, p.Cashflow)
	// cumulative 0 >= 0 in the first year
	assert.Equal(t, 12, p.PaybackMonths)
}

func TestProjectSingleCost(t *testing.T) {
	costs := []finance.CostItem{{Category: finance.CostInfrastructure, Year1: 100, Confidence: 0.85}}
	p, err := finance.Project(costs, nil, 0.10, 5)
	require.NoError(t, err)

	assert.Equal(t, 100.0, p.TotalCost)
	assert.Equal(t, []float64{-100, 0, 0, 0, 0}, p.Cashflow)
	assert.Equal(t, -100.0, p.ROIPercentage)
	assert.Equal(t, 60, p.PaybackMonths)
	assert.Equal(t, -1.0, p.IRR)
	assert.InDelta(t, -100/1.1, p.NPV, eps)
}

func TestProjectBenefitDiscountFactors(t *testing.T) {
	benefits := []finance.BenefitItem{{
		Category:    finance.BenefitRevenueGrowth,
		Year1:       1000,
		Confidence:  0.5,
		Realization: 0.8,
	}}
	p, err := finance.Project(nil, benefits, 0.10, 5)
	require.NoError(t, err)

	assert.InDelta(t, 400, p.Cashflow[0], eps)
	assert.InDelta(t, 400, p.TotalBenefit, eps)
	assert.Equal(t, 0.0, p.TotalCost)
	assert.Equal(t, 0.0, p.ROIPercentage)
	assert.Equal(t, 0.0, p.IRR)
}

func TestProjectOngoingAppliesFromYearFour(t *testing.T) {
	costs := []finance.CostItem{{Year1: 10, Year2: 20, Year3: 30, Ongoing: 5}}
	benefits := []finance.BenefitItem{{Year1: 1, Year2: 2, Year3: 3, Ongoing: 100, Confidence: 1, Realization: 1}}
	p, err := finance.Project(costs, benefits, 0, 7)
	require.NoError(t, err)

	assert.Equal(t, []float64{-9, -18, -27, 95, 95, 95, 95}, p.Cashflow)
	assert.Equal(t, 10.0+20+30+5*4, p.TotalCost)
	assert.Equal(t, 6.0+400, p.TotalBenefit)
}

func TestProjectShortHorizonDropsLaterYears(t *testing.T) {
	costs := []finance.CostItem{{Year1: 10, Year2: 20, Year3: 30, Ongoing: 5}}
	p, err := finance.Project(costs, nil, 0.1, 2)
	require.NoError(t, err)

	assert.Equal(t, []float64{-10, -20}, p.Cashflow)
	assert.Equal(t, 30.0, p.TotalCost)
	assert.Equal(t, 24, p.PaybackMonths)
}

func TestProjectRejectsInvalidParams(t *testing.T) {
	cases := []struct {
		name    string
		rate    float64
		horizon int
	}{
		{"rate at -1", -1, 5},
		{"rate below -1", -2.5, 5},
		{"nan rate", math.NaN(), 5},
		{"inf rate", math.Inf(1), 5},
		{"zero horizon", 0.1, 0},
		{"negative horizon", 0.1, -3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := finance.Project(nil, nil, tc.rate, tc.horizon)
			require.Error(t, err)
			assert.True(t, errors.Is(err, finance.ErrInvalidArgument))
		})
	}
}

func TestProjectAcceptsNegativeFigures(t *testing.T) {
	costs := []finance.CostItem{{Year1: -50}}
	p, err := finance.Project(costs, nil, 0.1, 5)
	require.NoError(t, err)
	assert.Equal(t, 50.0, p.Cashflow[0])
	assert.Equal(t, -50.0, p.TotalCost)
	// ROI and IRR guards treat a non-positive total cost as zero
	assert.Equal(t, 0.0, p.ROIPercentage)
	assert.Equal(t, 0.0, p.IRR)
}

func TestNPVDecreasesWithRate(t *testing.T) {
	positive := []float64{10, 40, 40, 40, 10}
	prev := finance.NPV(positive, -0.5)
	for _, rate := range []float64{-0.2, 0, 0.05, 0.1, 0.25, 1, 3} {
		npv := finance.NPV(positive, rate)
		assert.Less(t, npv, prev, "rate %v", rate)
		prev = npv
	}

	conventional := []float64{-100, 40, 40, 40, 10}
	prev = finance.NPV(conventional, -0.2)
	for _, rate := range []float64{0, 0.05, 0.1, 0.2} {
		npv := finance.NPV(conventional, rate)
		assert.Less(t, npv, prev, "rate %v", rate)
		prev = npv
	}
}

func TestNPVFirstYearDiscountedOnePeriod(t *testing.T) {
	assert.InDelta(t, 110/1.1, finance.NPV([]float64{110}, 0.1), eps)
	assert.InDelta(t, 121/1.21, finance.NPV([]float64{0, 121}, 0.1), eps)
}

func TestPaybackMonths(t *testing.T) {
	// cumulative -100, -60, -20, 20: first non-negative at index 3
	assert.Equal(t, 48, finance.PaybackMonths([]float64{-100, 40, 40, 40, 0}))
	// cumulative reaches exactly 0 at index 2
	assert.Equal(t, 36, finance.PaybackMonths([]float64{-100, 60, 40, 0, 0}))
	assert.Equal(t, 12, finance.PaybackMonths([]float64{5, -100, 0, 0, 0}))
	assert.Equal(t, 24, finance.PaybackMonths([]float64{-10, 10, -5, 0, 0}))
	assert.Equal(t, 60, finance.PaybackMonths([]float64{-100, 10, 10, 10, 10}))
}

func TestSimpleIRR(t *testing.T) {
	assert.Equal(t, 0.0, finance.SimpleIRR([]float64{10, 10}, 0))
	assert.Equal(t, -1.0, finance.SimpleIRR([]float64{-10, 10}, 100))
	assert.Equal(t, -1.0, finance.SimpleIRR([]float64{-10, -1}, 100))

	// (320/100)^(1/5) - 1
	got := finance.SimpleIRR([]float64{-100, 100, 100, 100, 120}, 100)
	assert.InDelta(t, math.Pow(3.2, 0.2)-1, got, eps)

	// clamped at 1
	assert.Equal(t, 1.0, finance.SimpleIRR([]float64{1000}, 1))
}

func TestProjectionCumulative(t *testing.T) {
	p := finance.Projection{Cashflow: []float64{-100, 40, 40, 40, 0}}
	assert.Equal(t, []float64{-100, -60, -20, 20, 20}, p.Cumulative())
}

func TestProjectIsPure(t *testing.T) {
	costs := []finance.CostItem{{Year1: 100, Year2: 50, Ongoing: 10}}
	benefits := []finance.BenefitItem{{Year1: 80, Year2: 120, Year3: 150, Ongoing: 150, Confidence: 0.9, Realization: 0.8}}
	first, err := finance.Project(costs, benefits, 0.1, 5)
	require.NoError(t, err)
	second, err := finance.Project(costs, benefits, 0.1, 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 100.0, costs[0].Year1)
	assert.Equal(t, 0.9, benefits[0].Confidence)
}
