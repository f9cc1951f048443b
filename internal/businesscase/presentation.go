package businesscase

import (
	"fmt"
	"strings"

	"transformline/internal/config"
	"transformline/internal/money"
)

const keyRiskLimit = 5

type TitleSlide struct {
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	Date      string `json:"date"`
	Presenter string `json:"presenter"`
}

type SummarySlide struct {
	KeyPoints      []string `json:"key_points"`
	Recommendation string   `json:"recommendation"`
}

type RationaleSlide struct {
	Alignment            string   `json:"alignment"`
	MarketOpportunity    []string `json:"market_opportunity"`
	CompetitiveAdvantage []string `json:"competitive_advantage"`
}

type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type PieChart struct {
	ChartType string  `json:"chart_type"`
	Title     string  `json:"title"`
	Slices    []Slice `json:"data"`
	Total     float64 `json:"total"`
}

type StackedBarChart struct {
	ChartType  string    `json:"chart_type"`
	Title      string    `json:"title"`
	Categories []string  `json:"categories"`
	Year1      []float64 `json:"year_1"`
	Year2      []float64 `json:"year_2"`
	Year3      []float64 `json:"year_3"`
}

type LineChart struct {
	ChartType  string    `json:"chart_type"`
	Title      string    `json:"title"`
	Years      []string  `json:"years"`
	Cashflow   []float64 `json:"cashflow"`
	Cumulative []float64 `json:"cumulative"`
}

type BarChart struct {
	ChartType  string    `json:"chart_type"`
	Title      string    `json:"title"`
	Categories []string  `json:"categories"`
	Values     []float64 `json:"values"`
}

type FinancialSlide struct {
	InvestmentBreakdown PieChart        `json:"investment_breakdown"`
	BenefitProjection   StackedBarChart `json:"benefit_projection"`
	CashflowTimeline    LineChart       `json:"cashflow_timeline"`
	ROIComparison       BarChart        `json:"roi_comparison"`
}

type BudgetPlan struct {
	Total float64 `json:"total_investment"`
	Year1 float64 `json:"year_1"`
	Year2 float64 `json:"year_2"`
	Year3 float64 `json:"year_3"`
}

type Personnel struct {
	CoreTeam          int `json:"core_team"`
	ExtendedTeam      int `json:"extended_team"`
	ExecutiveSponsors int `json:"executive_sponsors"`
	ChangeAgents      int `json:"change_agents"`
}

type Resources struct {
	Budget         BudgetPlan `json:"budget"`
	Personnel      Personnel  `json:"personnel"`
	TotalMonths    int        `json:"total_months"`
	CriticalPath   []string   `json:"critical_path"`
	Infrastructure []string   `json:"infrastructure"`
}

type ImplementationSlide struct {
	Timeline   []Phase   `json:"timeline"`
	Milestones []string  `json:"key_milestones"`
	Resources  Resources `json:"resource_requirements"`
}

type RiskSummary struct {
	Risk        string `json:"risk"`
	Impact      string `json:"impact"`
	Probability string `json:"probability"`
	Mitigation  string `json:"mitigation"`
}

type RiskSlide struct {
	KeyRisks             []RiskSummary `json:"key_risks"`
	MitigationInvestment float64       `json:"risk_mitigation_investment"`
}

type MetricsSlide struct {
	KPIs                 []Metric `json:"kpis"`
	MeasurementFramework []string `json:"measurement_framework"`
	ReportingSchedule    string   `json:"reporting_schedule"`
}

type NextStepsSlide struct {
	ImmediateActions []string `json:"immediate_actions"`
	DecisionTimeline string   `json:"decision_timeline"`
}

// Presentation is an executive deck derived from a Case.
type Presentation struct {
	Title              TitleSlide          `json:"title_slide"`
	ExecutiveSummary   SummarySlide        `json:"executive_summary"`
	StrategicRationale RationaleSlide      `json:"strategic_rationale"`
	FinancialOverview  FinancialSlide      `json:"financial_overview"`
	Implementation     ImplementationSlide `json:"implementation_plan"`
	RiskManagement     RiskSlide           `json:"risk_management"`
	SuccessMetrics     MetricsSlide        `json:"success_metrics"`
	NextSteps          NextStepsSlide      `json:"next_steps"`
}

// Presentation renders c as an executive deck. The ROI comparison uses the
// configured average for the case's industry.
func (g *Generator) Presentation(c Case) Presentation {
	p := c.Projection
	industry := g.cfg.Industry(c.Industry)
	return Presentation{
		Title: TitleSlide{
			Title:     "AI Business Case: " + c.Initiative,
			Subtitle:  "Strategic AI Investment Proposal for " + c.Organization,
			Date:      c.CreatedAt.Format("January 02, 2006"),
			Presenter: "AI Transformation Team",
		},
		ExecutiveSummary: SummarySlide{
			KeyPoints: []string{
				"Investment Required: " + money.Format(p.TotalCost),
				"Expected ROI: " + money.Percent(p.ROIPercentage),
				fmt.Sprintf("Payback Period: %d months", p.PaybackMonths),
				"Net Present Value: " + money.Format(p.NPV),
			},
			Recommendation: c.Recommendation,
		},
		StrategicRationale: RationaleSlide{
			Alignment:            c.StrategicAlignment,
			MarketOpportunity:    marketOpportunity(c),
			CompetitiveAdvantage: competitiveAdvantage(c),
		},
		FinancialOverview: FinancialSlide{
			InvestmentBreakdown: investmentChart(c),
			BenefitProjection:   benefitChart(c),
			CashflowTimeline:    cashflowChart(c),
			ROIComparison:       roiComparison(c, industry),
		},
		Implementation: ImplementationSlide{
			Timeline:   c.Timeline,
			Milestones: milestones(c),
			Resources:  resources(c),
		},
		RiskManagement: riskSlide(c),
		SuccessMetrics: MetricsSlide{
			KPIs:                 c.SuccessMetrics,
			MeasurementFramework: measurementFramework(c),
			ReportingSchedule:    "Monthly progress reviews with quarterly executive updates",
		},
		NextSteps: NextStepsSlide{
			ImmediateActions: []string{
				"Secure executive approval and budget allocation",
				"Establish AI transformation steering committee",
				"Begin vendor evaluation and selection process",
				"Initiate stakeholder communication plan",
			},
			DecisionTimeline: "Decision required within 30 days to meet projected timeline",
		},
	}
}

func industryLabel(c Case) string {
	if c.Industry == "" || c.Industry == config.DefaultKey {
		return "Industry"
	}
	return titleWords(c.Industry)
}

func marketOpportunity(c Case) []string {
	return []string{
		"Global AI market growing at 35% CAGR, reaching $190B by 2025",
		industryLabel(c) + " sector AI adoption accelerating with 60% of leaders investing",
		"Early adopters achieving 2-3x higher performance improvements",
		"Competitive window closing - first-mover advantage critical",
		fmt.Sprintf("Expected ROI of %s positions us in top quartile of implementations", money.Percent(c.Projection.ROIPercentage)),
		"Transform from AI experimenter to AI-powered market leader",
		fmt.Sprintf("Capture %s in value creation over the projection horizon", money.Millions(c.Projection.TotalBenefit)),
	}
}

func competitiveAdvantage(c Case) []string {
	var labels []string
	for _, b := range c.Benefits {
		if len(labels) == 3 {
			break
		}
		labels = append(labels, titleWords(string(b.Category)))
	}
	out := []string{}
	if len(labels) > 0 {
		out = append(out, fmt.Sprintf("%s driving differentiation", strings.Join(labels, ", ")))
	}
	return append(out,
		"Data-driven decision making at enterprise scale",
		"Move from reactive to predictive business model",
		"Build barriers to entry through AI sophistication",
		fmt.Sprintf("%d-month payback supports sustained reinvestment", c.Projection.PaybackMonths),
	)
}

func investmentChart(c Case) PieChart {
	chart := PieChart{ChartType: "pie", Title: "Investment Allocation by Category", Slices: []Slice{}}
	for _, inv := range c.Investments {
		v := inv.ExplicitTotal()
		chart.Slices = append(chart.Slices, Slice{Label: titleWords(string(inv.Category)), Value: v})
		chart.Total += v
	}
	return chart
}

func benefitChart(c Case) StackedBarChart {
	chart := StackedBarChart{
		ChartType:  "stacked_bar",
		Title:      "Projected Benefits by Category and Year",
		Categories: []string{},
		Year1:      []float64{},
		Year2:      []float64{},
		Year3:      []float64{},
	}
	for _, b := range c.Benefits {
		chart.Categories = append(chart.Categories, titleWords(string(b.Category)))
		chart.Year1 = append(chart.Year1, b.Year1)
		chart.Year2 = append(chart.Year2, b.Year2)
		chart.Year3 = append(chart.Year3, b.Year3)
	}
	return chart
}

func cashflowChart(c Case) LineChart {
	years := make([]string, len(c.Projection.Cashflow))
	for i := range years {
		years[i] = fmt.Sprintf("Year %d", i+1)
	}
	return LineChart{
		ChartType:  "line",
		Title:      "Projected Cash Flow Over Time",
		Years:      years,
		Cashflow:   c.Projection.Cashflow,
		Cumulative: c.Projection.Cumulative(),
	}
}

func roiComparison(c Case, industry config.Industry) BarChart {
	roi := c.Projection.ROIPercentage
	return BarChart{
		ChartType:  "comparison_bar",
		Title:      "ROI Comparison vs Industry Average",
		Categories: []string{"Industry Average", "Projected ROI", "Conservative Case", "Optimistic Case"},
		Values:     []float64{industry.ROIAverage, roi, roi * 0.7, roi * 1.3},
	}
}

// milestones places one milestone at the cumulative end month of each phase.
func milestones(c Case) []string {
	labels := []string{
		"Foundation and governance established",
		"Infrastructure deployment complete",
		"First pilot projects successful",
		"Training programs completed",
		"Enterprise scaling achieved",
		"Full deployment and optimization complete",
	}
	out := make([]string, 0, len(c.Timeline))
	month := 0
	for i, p := range c.Timeline {
		month += p.Months
		label := p.Label() + " complete"
		if i < len(labels) {
			label = labels[i]
		}
		out = append(out, fmt.Sprintf("Month %d: %s", month, label))
	}
	return out
}

func resources(c Case) Resources {
	total := c.Projection.TotalCost
	var path []string
	for i, p := range c.Timeline {
		if i == 3 {
			break
		}
		path = append(path, p.Key)
	}
	return Resources{
		Budget: BudgetPlan{
			Total: total,
			Year1: total * costProfile[0],
			Year2: total * costProfile[1],
			Year3: total * costProfile[2],
		},
		Personnel: Personnel{
			CoreTeam:          8,
			ExtendedTeam:      15,
			ExecutiveSponsors: 3,
			ChangeAgents:      12,
		},
		TotalMonths:  c.TimelineMonths(),
		CriticalPath: path,
		Infrastructure: []string{
			"Cloud platforms: AWS/Azure/GCP",
			"AI tools: MLOps, Data platforms, Analytics tools",
			"Integration: APIs, Data pipelines, Security frameworks",
		},
	}
}

func riskSlide(c Case) RiskSlide {
	slide := RiskSlide{KeyRisks: []RiskSummary{}}
	for i, r := range c.Risks {
		if i < keyRiskLimit {
			slide.KeyRisks = append(slide.KeyRisks, RiskSummary{
				Risk:        r.Risk,
				Impact:      r.Impact.String(),
				Probability: fmt.Sprintf("%.0f%%", r.Probability*100),
				Mitigation:  r.Mitigation,
			})
		}
		slide.MitigationInvestment += r.MitigationCost
	}
	return slide
}

func measurementFramework(c Case) []string {
	return []string{
		fmt.Sprintf("Monthly ROI progress vs. %s target", money.Percent(c.Projection.ROIPercentage)),
		fmt.Sprintf("Quarterly NPV realization vs. %s projection", money.Millions(c.Projection.NPV)),
		"Benefit realization tracking by category and timeline",
		"User adoption rates and feature utilization",
		"Weekly project team progress reviews",
		"Monthly steering committee updates",
		"Quarterly executive business reviews",
		"Monthly risk register reviews and mitigation tracking",
	}
}
