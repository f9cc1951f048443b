package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"transformline/internal/businesscase"
	"transformline/internal/money"
	"transformline/internal/readiness"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

func mdTable(header table.Row, rows []table.Row) string {
	tw := table.NewWriter()
	tw.AppendHeader(header)
	tw.AppendRows(rows)
	return tw.RenderMarkdown()
}

func mdList(b *strings.Builder, items []string) {
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
	b.WriteString("\n")
}

// CaseMarkdown renders a business case and its executive deck as a single
// markdown document.
func CaseMarkdown(c businesscase.Case, p businesscase.Presentation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Title.Title)
	fmt.Fprintf(&b, "_%s_\n\n%s, %s\n\n", p.Title.Subtitle, p.Title.Presenter, p.Title.Date)

	b.WriteString("## Executive Summary\n\n")
	if c.ExecutiveSummary != "" {
		fmt.Fprintf(&b, "%s\n\n", c.ExecutiveSummary)
	}
	mdList(&b, p.ExecutiveSummary.KeyPoints)
	fmt.Fprintf(&b, "**Recommendation:** %s\n\n", p.ExecutiveSummary.Recommendation)
	fmt.Fprintf(&b, "Confidence: %s\n\n", money.Percent(c.Confidence*100))

	b.WriteString("## Strategic Rationale\n\n")
	fmt.Fprintf(&b, "%s\n\n", p.StrategicRationale.Alignment)
	b.WriteString("### Market Opportunity\n\n")
	mdList(&b, p.StrategicRationale.MarketOpportunity)
	b.WriteString("### Competitive Advantage\n\n")
	mdList(&b, p.StrategicRationale.CompetitiveAdvantage)

	b.WriteString("## Financial Overview\n\n")
	proj := c.Projection
	b.WriteString(mdTable(table.Row{"Metric", "Value"}, []table.Row{
		{"Total investment", money.Format(proj.TotalCost)},
		{"Total benefit", money.Format(proj.TotalBenefit)},
		{"Net present value", money.Format(proj.NPV)},
		{"ROI", money.Percent(proj.ROIPercentage)},
		{"Payback", fmt.Sprintf("%d months", proj.PaybackMonths)},
		{"Discount rate", money.Percent(c.DiscountRate * 100)},
	}))
	b.WriteString("\n\n### Cash Flow\n\n")
	cumulative := proj.Cumulative()
	rows := make([]table.Row, 0, len(proj.Cashflow))
	for i, cf := range proj.Cashflow {
		rows = append(rows, table.Row{i + 1, money.Format(cf), money.Format(cumulative[i])})
	}
	b.WriteString(mdTable(table.Row{"Year", "Cash flow", "Cumulative"}, rows))

	b.WriteString("\n\n### Investments\n\n")
	rows = rows[:0]
	for _, it := range c.Investments {
		rows = append(rows, table.Row{it.Category, money.Format(it.Year1), money.Format(it.Year2), money.Format(it.Year3), money.Format(it.Ongoing)})
	}
	b.WriteString(mdTable(table.Row{"Category", "Year 1", "Year 2", "Year 3", "Ongoing"}, rows))

	b.WriteString("\n\n### Benefits\n\n")
	rows = rows[:0]
	for _, it := range c.Benefits {
		rows = append(rows, table.Row{it.Category, money.Format(it.Year1), money.Format(it.Year2), money.Format(it.Year3), money.Percent(it.Realization * 100)})
	}
	b.WriteString(mdTable(table.Row{"Category", "Year 1", "Year 2", "Year 3", "Realization"}, rows))

	roi := p.FinancialOverview.ROIComparison
	if len(roi.Categories) > 0 {
		fmt.Fprintf(&b, "\n\n### %s\n\n", roi.Title)
		rows = rows[:0]
		for i, cat := range roi.Categories {
			rows = append(rows, table.Row{cat, money.Percent(roi.Values[i])})
		}
		b.WriteString(mdTable(table.Row{"", "ROI"}, rows))
	}

	b.WriteString("\n\n## Implementation Plan\n\n")
	rows = rows[:0]
	for _, ph := range p.Implementation.Timeline {
		rows = append(rows, table.Row{ph.Label(), ph.Months})
	}
	b.WriteString(mdTable(table.Row{"Phase", "Months"}, rows))
	b.WriteString("\n\n### Milestones\n\n")
	mdList(&b, p.Implementation.Milestones)
	res := p.Implementation.Resources
	fmt.Fprintf(&b, "Team: %d core, %d extended, %d executive sponsors, %d change agents over %d months.\n\n",
		res.Personnel.CoreTeam, res.Personnel.ExtendedTeam, res.Personnel.ExecutiveSponsors,
		res.Personnel.ChangeAgents, res.TotalMonths)

	b.WriteString("## Risk Management\n\n")
	rows = rows[:0]
	for _, r := range p.RiskManagement.KeyRisks {
		rows = append(rows, table.Row{r.Risk, r.Impact, r.Probability, r.Mitigation})
	}
	b.WriteString(mdTable(table.Row{"Risk", "Impact", "Probability", "Mitigation"}, rows))
	fmt.Fprintf(&b, "\n\nRisk mitigation investment: %s\n\n", money.Format(p.RiskManagement.MitigationInvestment))

	b.WriteString("## Success Metrics\n\n")
	rows = rows[:0]
	for _, m := range p.SuccessMetrics.KPIs {
		rows = append(rows, table.Row{m.Name, m.Target})
	}
	b.WriteString(mdTable(table.Row{"KPI", "Target"}, rows))
	b.WriteString("\n\n")
	mdList(&b, p.SuccessMetrics.MeasurementFramework)
	fmt.Fprintf(&b, "Reporting: %s\n\n", p.SuccessMetrics.ReportingSchedule)

	b.WriteString("## Next Steps\n\n")
	mdList(&b, p.NextSteps.ImmediateActions)
	fmt.Fprintf(&b, "Decision timeline: %s\n", p.NextSteps.DecisionTimeline)
	return b.String()
}

// AssessmentMarkdown renders a readiness report as markdown.
func AssessmentMarkdown(r readiness.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# AI Readiness: %s\n\n", r.Organization)
	fmt.Fprintf(&b, "Assessed %s. Overall score **%.2f** (%s), estimated %d months to close gaps.\n\n",
		r.AssessedAt.Format("January 02, 2006"), r.OverallScore, r.OverallMaturity, r.TimelineMonths)

	rows := make([]table.Row, 0, len(r.Dimensions))
	for _, d := range r.Dimensions {
		rows = append(rows, table.Row{d.Dimension.Label(), fmt.Sprintf("%.2f", d.RawScore), d.Maturity, d.Priority})
	}
	b.WriteString(mdTable(table.Row{"Dimension", "Score", "Maturity", "Priority"}, rows))
	b.WriteString("\n\n")

	for _, sec := range []struct {
		title string
		items []string
	}{
		{"Top Strengths", r.TopStrengths},
		{"Critical Gaps", r.CriticalGaps},
		{"Priority Recommendations", r.PriorityRecommendations},
		{"Immediate Actions", r.ActionPlan.Immediate},
		{"Short Term Goals", r.ActionPlan.ShortTerm},
		{"Medium Term Objectives", r.ActionPlan.MediumTerm},
		{"Long Term Vision", r.ActionPlan.LongTerm},
	} {
		if len(sec.items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", sec.title)
		mdList(&b, sec.items)
	}
	return b.String()
}

// HTML converts a markdown document to a standalone HTML page.
func HTML(title, doc string) (string, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(doc), &body); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	var out strings.Builder
	out.WriteString("<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>%s</title>\n", html.EscapeString(title))
	out.WriteString(pageStyle)
	out.WriteString("</head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.String(), nil
}

const pageStyle = `<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; max-width: 960px; margin: 2rem auto; color: #222; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #ccc; padding: 4px 10px; }
th { background: #f3f3f3; }
</style>
`
