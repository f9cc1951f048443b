package businesscase

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"transformline/internal/config"
	"transformline/internal/finance"
	"transformline/internal/money"
)

const (
	maxRisks             = 10
	investmentConfidence = 0.85
)

// Budget allocations are spread 60/30/10 over the explicit years with 5% of
// the allocation recurring afterwards.
var costProfile = [4]float64{0.6, 0.3, 0.1, 0.05}

var investmentDescriptions = map[finance.CostCategory]string{
	finance.CostInfrastructure: "AI-ready infrastructure and cloud platforms",
	finance.CostTalent:         "AI talent acquisition and retention",
	finance.CostTechnology:     "AI software licenses and tools",
	finance.CostTraining:       "Employee training and upskilling programs",
	finance.CostConsulting:     "External consulting and implementation support",
}

// benefitModel describes one benefit stream: the objective keywords that
// trigger it (none means always), its ramp over years 1-3 and ongoing, and
// its confidence figures.
type benefitModel struct {
	category    finance.BenefitCategory
	description string
	keywords    []string
	benchmark   func(config.Benchmarks) float64
	ramp        [4]float64
	confidence  float64
	realization float64
}

var benefitModels = []benefitModel{
	{
		category:    finance.BenefitRevenueGrowth,
		description: "AI-driven revenue growth through enhanced products and services",
		keywords:    []string{"revenue", "growth"},
		benchmark:   func(b config.Benchmarks) float64 { return b.Revenue },
		ramp:        [4]float64{0.3, 0.7, 1.0, 0.8},
		confidence:  0.70,
		realization: 0.75,
	},
	{
		category:    finance.BenefitCostReduction,
		description: "Operational cost reduction through AI automation",
		keywords:    []string{"cost", "efficiency"},
		benchmark:   func(b config.Benchmarks) float64 { return b.CostReduction },
		ramp:        [4]float64{0.2, 0.5, 0.8, 0.9},
		confidence:  0.80,
		realization: 0.85,
	},
	{
		category:    finance.BenefitProductivity,
		description: "Employee productivity enhancement through AI tools",
		benchmark:   func(b config.Benchmarks) float64 { return b.Productivity },
		ramp:        [4]float64{0.4, 0.8, 1.2, 1.0},
		confidence:  0.75,
		realization: 0.80,
	},
	{
		category:    finance.BenefitCustomerExperience,
		description: "Enhanced customer experience and satisfaction",
		keywords:    []string{"customer"},
		benchmark:   func(b config.Benchmarks) float64 { return b.Customer },
		ramp:        [4]float64{0.3, 0.6, 0.9, 0.8},
		confidence:  0.65,
		realization: 0.70,
	},
}

// challengeRisks are added when any stated challenge mentions a keyword.
var challengeRisks = []struct {
	keywords []string
	risk     Risk
}{
	{
		keywords: []string{"data"},
		risk: Risk{
			Risk:           "Data quality issues impacting AI model performance",
			Impact:         RiskHigh,
			Probability:    0.6,
			Mitigation:     "Implement comprehensive data quality framework",
			MitigationCost: 50000,
		},
	},
	{
		keywords: []string{"skill", "talent"},
		risk: Risk{
			Risk:           "Insufficient AI talent and skills",
			Impact:         RiskHigh,
			Probability:    0.7,
			Mitigation:     "Aggressive hiring and training program",
			MitigationCost: 100000,
		},
	},
}

var baseTimeline = []Phase{
	{Key: "planning_and_setup", Months: 2},
	{Key: "infrastructure_deployment", Months: 4},
	{Key: "pilot_implementation", Months: 3},
	{Key: "training_and_adoption", Months: 3},
	{Key: "scaling_and_optimization", Months: 6},
	{Key: "full_deployment", Months: 4},
}

// Approval thresholds.
const (
	strongROI      = 30.0
	strongPayback  = 24
	approveROI     = 15.0
	approvePayback = 36
)

type Generator struct {
	cfg *config.Config
	Now func() time.Time
}

func NewGenerator(cfg *config.Config) *Generator {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Generator{cfg: cfg, Now: time.Now}
}

// Generate builds a complete case for req.
func (g *Generator) Generate(req Request) (Case, error) {
	if strings.TrimSpace(req.Organization) == "" {
		return Case{}, fmt.Errorf("organization name is required: %w", finance.ErrInvalidArgument)
	}
	if math.IsNaN(req.Budget) || math.IsInf(req.Budget, 0) || req.Budget < 0 {
		return Case{}, fmt.Errorf("investment budget must be a non-negative amount: %w", finance.ErrInvalidArgument)
	}
	industry := g.cfg.Industry(req.Industry)
	size := g.cfg.Size(req.Size)
	rate, horizon := g.cfg.Finance.DiscountRate, g.cfg.Finance.HorizonYears

	investments := allocate(industry.InvestmentAllocation, req.Budget, size.Investment)
	benefits := estimateBenefits(industry.Benchmarks, req.Objectives, investments)
	risks := assessRisks(g.cfg.RisksFor(req.Industry), req.Challenges)

	projection, err := finance.Project(investments, benefits, rate, horizon)
	if err != nil {
		return Case{}, err
	}
	timeline := deliveryTimeline(size.Delivery)

	c := Case{
		Organization:   req.Organization,
		Initiative:     req.Initiative,
		Industry:       config.Key(req.Industry),
		Size:           config.Key(req.Size),
		Projection:     projection,
		Investments:    investments,
		Benefits:       benefits,
		Risks:          risks,
		Scenarios:      scenarios(),
		Timeline:       timeline,
		SuccessMetrics: successMetrics(benefits, req.Objectives),
		DiscountRate:   rate,
		HorizonYears:   horizon,
		CreatedAt:      g.Now(),
	}
	c.ExecutiveSummary = executiveSummary(projection, len(req.Objectives), c.TimelineMonths())
	c.StrategicAlignment = strategicAlignment(req.Objectives)
	c.Recommendation = recommend(projection, c.HighRisks())
	c.Confidence = confidence(investments, benefits, c.HighRisks())
	return c, nil
}

// Sensitivity reruns the case's projection under the standard scenarios and
// variable sweep.
func (g *Generator) Sensitivity(c Case) (finance.SensitivityReport, error) {
	return finance.Analyze(c.Investments, c.Benefits, c.DiscountRate, c.HorizonYears, nil)
}

// allocate walks the allocation in order, stopping once the running total
// has used up the budget. A size multiplier above 1 can overspend the final
// line.
func allocate(alloc []config.Allocation, budget, multiplier float64) []finance.CostItem {
	out := []finance.CostItem{}
	remaining := budget
	for _, a := range alloc {
		if remaining <= 0 {
			break
		}
		amount := budget * a.Share * multiplier
		desc, ok := investmentDescriptions[a.Category]
		if !ok {
			desc = "AI transformation investment"
		}
		out = append(out, finance.CostItem{
			Category:    a.Category,
			Description: desc,
			Year1:       amount * costProfile[0],
			Year2:       amount * costProfile[1],
			Year3:       amount * costProfile[2],
			Ongoing:     amount * costProfile[3],
			Confidence:  investmentConfidence,
		})
		remaining -= amount
	}
	return out
}

func estimateBenefits(bench config.Benchmarks, objectives []string, investments []finance.CostItem) []finance.BenefitItem {
	var base float64
	for _, inv := range investments {
		base += inv.ExplicitTotal()
	}
	out := []finance.BenefitItem{}
	for _, m := range benefitModels {
		if len(m.keywords) > 0 && !mentions(objectives, m.keywords...) {
			continue
		}
		scaled := base * m.benchmark(bench)
		out = append(out, finance.BenefitItem{
			Category:    m.category,
			Description: m.description,
			Year1:       scaled * m.ramp[0],
			Year2:       scaled * m.ramp[1],
			Year3:       scaled * m.ramp[2],
			Ongoing:     scaled * m.ramp[3],
			Confidence:  m.confidence,
			Realization: m.realization,
		})
	}
	return out
}

func assessRisks(templates []config.RiskTemplate, challenges []string) []Risk {
	out := make([]Risk, 0, len(templates)+len(challengeRisks))
	for _, t := range templates {
		out = append(out, Risk{
			Risk:           t.Risk,
			Impact:         RiskLevel(t.Impact),
			Probability:    t.Probability,
			Mitigation:     t.Mitigation,
			MitigationCost: t.Cost,
			ResidualImpact: RiskLow,
		})
	}
	for _, cr := range challengeRisks {
		if mentions(challenges, cr.keywords...) {
			r := cr.risk
			r.ResidualImpact = RiskLow
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score() > out[j].Score()
	})
	if len(out) > maxRisks {
		out = out[:maxRisks]
	}
	return out
}

func scenarios() []Scenario {
	return []Scenario{
		{Name: "Base Case", Probability: 0.60, Description: "Expected outcomes based on current planning assumptions"},
		{Name: "Optimistic Case", Probability: 0.20, ROIAdjustment: 0.25, TimelineAdjustment: -3, Description: "Accelerated adoption with higher than expected benefits"},
		{Name: "Conservative Case", Probability: 0.15, ROIAdjustment: -0.20, TimelineAdjustment: 6, Description: "Slower adoption with implementation challenges"},
		{Name: "Risk Materialization", Probability: 0.05, ROIAdjustment: -0.40, TimelineAdjustment: 12, Description: "Multiple high-impact risks materialize simultaneously"},
	}
}

func deliveryTimeline(multiplier float64) []Phase {
	out := make([]Phase, len(baseTimeline))
	for i, p := range baseTimeline {
		out[i] = Phase{Key: p.Key, Months: int(float64(p.Months) * multiplier)}
	}
	return out
}

func successMetrics(benefits []finance.BenefitItem, objectives []string) []Metric {
	var out []Metric
	set := func(name string, target float64) {
		for i := range out {
			if out[i].Name == name {
				out[i].Target = target
				return
			}
		}
		out = append(out, Metric{Name: name, Target: target})
	}
	for _, b := range benefits {
		switch b.Category {
		case finance.BenefitRevenueGrowth:
			set("Revenue Growth %", 15)
		case finance.BenefitCostReduction:
			set("Cost Reduction %", 20)
		case finance.BenefitProductivity:
			set("Productivity Improvement %", 25)
		case finance.BenefitCustomerExperience:
			set("Customer Satisfaction Score", 4.5)
		}
	}
	if mentions(objectives, "time") {
		set("Process Time Reduction %", 30)
	}
	if mentions(objectives, "quality") {
		set("Quality Score Improvement %", 20)
	}
	set("Employee Adoption Rate %", 85)
	set("Project Milestone Achievement %", 90)
	set("ROI Achievement %", 100)
	return out
}

func executiveSummary(p finance.Projection, objectives, months int) string {
	return fmt.Sprintf("This AI transformation initiative presents a compelling investment opportunity with projected ROI of %.1f%% "+
		"and payback period of %d months. The initiative directly supports %d strategic objectives and is expected to generate "+
		"%s in total benefits against an investment of %s over the %d-month implementation timeline.\n\n"+
		"Key value drivers include operational efficiency gains, revenue growth through enhanced capabilities, and competitive "+
		"differentiation in the marketplace. The financial projections are based on industry benchmarks and incorporate realistic "+
		"risk assessments to ensure achievable outcomes.",
		p.ROIPercentage, p.PaybackMonths, objectives, money.Format(p.TotalBenefit), money.Format(p.TotalCost), months)
}

func strategicAlignment(objectives []string) string {
	if len(objectives) == 0 {
		return "This AI transformation initiative has no stated strategic objectives yet. Alignment should be confirmed before approval."
	}
	listed := strings.Join(limitStrings(objectives, 3), ", ")
	if len(objectives) > 3 {
		listed += " and others"
	}
	return fmt.Sprintf("This AI transformation initiative directly aligns with %d key strategic objectives: %s. "+
		"The initiative will enhance organizational capabilities, drive operational excellence, and position the company "+
		"as an AI-enabled leader in the industry.", len(objectives), listed)
}

func recommend(p finance.Projection, highRisks int) string {
	var rec string
	switch {
	case p.ROIPercentage > strongROI && p.PaybackMonths <= strongPayback:
		rec = "STRONGLY RECOMMEND APPROVAL"
	case p.ROIPercentage > approveROI && p.PaybackMonths <= approvePayback:
		rec = "RECOMMEND APPROVAL"
	default:
		rec = "CONDITIONAL APPROVAL WITH RISK MITIGATION"
	}
	if highRisks > 0 {
		return fmt.Sprintf("%s. Key risks identified: %d high-impact risks require mitigation.", rec, highRisks)
	}
	return rec + "."
}

// confidence blends cost-weighted investment confidence (30%), value-weighted
// benefit confidence (50%) and a risk term that loses 0.1 per high risk (20%).
func confidence(investments []finance.CostItem, benefits []finance.BenefitItem, highRisks int) float64 {
	invConf := 0.8
	var invTotal, invWeighted float64
	for _, inv := range investments {
		t := inv.ExplicitTotal()
		invTotal += t
		invWeighted += t * inv.Confidence
	}
	if invTotal > 0 {
		invConf = invWeighted / invTotal
	}

	benConf := 0.7
	var benTotal, benWeighted float64
	for _, b := range benefits {
		t := b.ExplicitTotal()
		benTotal += t
		benWeighted += t * b.Confidence * b.Realization
	}
	if benTotal > 0 {
		benConf = benWeighted / benTotal
	}

	riskAdj := math.Max(0, 1-float64(highRisks)*0.1)
	return math.Min(1, math.Max(0, invConf*0.3+benConf*0.5+riskAdj*0.2))
}

// mentions reports whether any text contains any keyword, ignoring case.
func mentions(texts []string, keywords ...string) bool {
	for _, t := range texts {
		lower := strings.ToLower(t)
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				return true
			}
		}
	}
	return false
}

func limitStrings(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}
