package finance

// Delay thresholds for DelayBenefit.
const (
	// ShortDelayMonths is the longest delay still treated as a partial slip.
	ShortDelayMonths = 6
	longDelayCarry   = 0.7
	longDelayRemnant = 0.3
	longDelayPenalty = 0.9
)

// AdjustCost scales every monetary field of c by factor.
func AdjustCost(c CostItem, factor float64) CostItem {
	c.Year1 *= factor
	c.Year2 *= factor
	c.Year3 *= factor
	c.Ongoing *= factor
	return c
}

// AdjustBenefit scales every monetary field of b by factor; confidence and
// realization are left alone.
func AdjustBenefit(b BenefitItem, factor float64) BenefitItem {
	b.Year1 *= factor
	b.Year2 *= factor
	b.Year3 *= factor
	b.Ongoing *= factor
	return b
}

// DelayBenefit shifts value later using two buckets rather than a continuous
// shift:
//
//   - delayMonths <= 6: half of year 1 moves into year 2.
//   - delayMonths > 6: year 1 is lost to year 2 (70%) and year 3 (30%), year 2
//     slides into year 3, and confidence and realization drop by 10%.
//
// The ongoing figure is never touched.
func DelayBenefit(b BenefitItem, delayMonths int) BenefitItem {
	y1, y2 := b.Year1, b.Year2
	if delayMonths <= ShortDelayMonths {
		half := y1 * 0.5
		b.Year1 = half
		b.Year2 = y2 + half
		return b
	}
	b.Year1 = 0
	b.Year2 = y1 * longDelayCarry
	b.Year3 = y2 + y1*longDelayRemnant
	b.Confidence *= longDelayPenalty
	b.Realization *= longDelayPenalty
	return b
}

func adjustCosts(items []CostItem, factor float64) []CostItem {
	out := make([]CostItem, len(items))
	for i, c := range items {
		out[i] = AdjustCost(c, factor)
	}
	return out
}

func adjustBenefits(items []BenefitItem, factor float64) []BenefitItem {
	out := make([]BenefitItem, len(items))
	for i, b := range items {
		out[i] = AdjustBenefit(b, factor)
	}
	return out
}

func delayBenefits(items []BenefitItem, months int) []BenefitItem {
	out := make([]BenefitItem, len(items))
	for i, b := range items {
		out[i] = DelayBenefit(b, months)
	}
	return out
}
