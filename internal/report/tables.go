// Package report renders projections, assessments, business cases and
// transformation plans for terminals (tables), documents (markdown) and
// browsers (HTML).
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"transformline/internal/domain"
	"transformline/internal/finance"
	"transformline/internal/money"
	"transformline/internal/orchestrator"
	"transformline/internal/readiness"
)

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	return tw
}

func rightAligned(cols ...int) []table.ColumnConfig {
	out := make([]table.ColumnConfig, 0, len(cols))
	for _, c := range cols {
		out = append(out, table.ColumnConfig{Number: c, Align: text.AlignRight})
	}
	return out
}

// Projection writes the headline metrics followed by the yearly cash flow.
func Projection(w io.Writer, p finance.Projection) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Metric", "Value"})
	tw.AppendRow(table.Row{"Total cost", money.Format(p.TotalCost)})
	tw.AppendRow(table.Row{"Total benefit", money.Format(p.TotalBenefit)})
	tw.AppendRow(table.Row{"NPV", money.Format(p.NPV)})
	tw.AppendRow(table.Row{"ROI", money.Percent(p.ROIPercentage)})
	tw.AppendRow(table.Row{"Payback", fmt.Sprintf("%d months", p.PaybackMonths)})
	tw.AppendRow(table.Row{"IRR", money.Percent(p.IRR * 100)})
	tw.SetColumnConfigs(rightAligned(2))
	tw.Render()

	Cashflow(w, p)
}

// Cashflow writes one row per projected year with the running total.
func Cashflow(w io.Writer, p finance.Projection) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Year", "Cash flow", "Cumulative"})
	cumulative := p.Cumulative()
	for i, cf := range p.Cashflow {
		tw.AppendRow(table.Row{i + 1, money.Format(cf), money.Format(cumulative[i])})
	}
	tw.SetColumnConfigs(rightAligned(2, 3))
	tw.Render()
}

// Sensitivity writes the three scenarios and the per-variable sweep.
func Sensitivity(w io.Writer, r finance.SensitivityReport) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Scenario", "NPV", "ROI", "NPV change", "ROI change"})
	for _, row := range []struct {
		name string
		res  finance.CaseResult
	}{
		{"Base", r.Base},
		{"Optimistic", r.Optimistic},
		{"Pessimistic", r.Pessimistic},
	} {
		tw.AppendRow(table.Row{
			row.name,
			money.Format(row.res.NPV),
			money.Percent(row.res.ROI),
			money.Format(row.res.NPVChange),
			money.Percent(row.res.ROIChange),
		})
	}
	tw.SetColumnConfigs(rightAligned(2, 3, 4, 5))
	tw.Render()

	if len(r.Variables) == 0 {
		return
	}
	vt := newTable(w)
	vt.AppendHeader(table.Row{"Variable", "Value", "NPV impact", "ROI impact"})
	for _, v := range r.Variables {
		for _, imp := range v.Impacts {
			vt.AppendRow(table.Row{v.Label, imp.Value, money.Format(imp.NPVImpact), money.Percent(imp.ROIImpact)})
		}
	}
	vt.SetColumnConfigs(rightAligned(2, 3, 4))
	vt.Render()
}

// Assessment writes per-dimension scores sorted as stored in r.
func Assessment(w io.Writer, r readiness.Report) {
	fmt.Fprintf(w, "%s: %.2f (%s), roughly %d months to close gaps\n",
		r.Organization, r.OverallScore, r.OverallMaturity, r.TimelineMonths)
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Dimension", "Score", "Maturity", "Priority"})
	for _, d := range r.Dimensions {
		tw.AppendRow(table.Row{d.Dimension.Label(), fmt.Sprintf("%.2f", d.RawScore), d.Maturity, d.Priority})
	}
	tw.SetColumnConfigs(rightAligned(2))
	tw.Render()
	if len(r.PriorityRecommendations) > 0 {
		fmt.Fprintln(w, "Priority recommendations:")
		for _, rec := range r.PriorityRecommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}
}

func Plans(w io.Writer, plans []orchestrator.Plan) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"ID", "Organization", "Industry", "Phase", "Maturity", "Target", "Weeks"})
	for _, p := range plans {
		tw.AppendRow(table.Row{
			p.ID,
			p.Organization.Name,
			p.Organization.Industry,
			p.CurrentPhase,
			p.Organization.CurrentMaturity,
			p.TargetMaturity,
			p.TimelineWeeks,
		})
	}
	tw.Render()
}

// Plan writes a single plan's details.
func Plan(w io.Writer, p orchestrator.Plan) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Field", "Value"})
	tw.AppendRow(table.Row{"ID", p.ID})
	tw.AppendRow(table.Row{"Organization", p.Organization.Name})
	tw.AppendRow(table.Row{"Industry", p.Organization.Industry})
	tw.AppendRow(table.Row{"Size", p.Organization.Size})
	tw.AppendRow(table.Row{"Current phase", p.CurrentPhase})
	tw.AppendRow(table.Row{"Completion", money.Percent(p.CurrentPhase.Completion())})
	tw.AppendRow(table.Row{"Maturity", fmt.Sprintf("%s -> %s", p.Organization.CurrentMaturity, p.TargetMaturity)})
	tw.AppendRow(table.Row{"Timeline", fmt.Sprintf("%d weeks", p.TimelineWeeks)})
	if p.Budget > 0 {
		tw.AppendRow(table.Row{"Budget", money.Format(p.Budget)})
	}
	tw.AppendRow(table.Row{"Readiness", fmt.Sprintf("ai %.2f, stakeholders %.2f, change %.2f, technical %.2f",
		p.Organization.AIReadiness, p.Organization.StakeholderAlignment,
		p.Organization.ChangeReadiness, p.Organization.TechnicalReadiness)})
	tw.Render()
}

func Roadmap(w io.Writer, phases []orchestrator.RoadmapPhase) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Phase", "Weeks", "Activities", "Success criteria"})
	for _, ph := range phases {
		criteria := make([]string, 0, len(ph.SuccessCriteria))
		for _, c := range ph.SuccessCriteria {
			criteria = append(criteria, fmt.Sprintf("%s: %v", c.Name, c.Target))
		}
		tw.AppendRow(table.Row{ph.Phase, ph.DurationWeeks, strings.Join(ph.Activities, "\n"), strings.Join(criteria, "\n")})
		tw.AppendSeparator()
	}
	tw.Render()
}

func Progress(w io.Writer, p orchestrator.Progress) {
	fmt.Fprintf(w, "%s: %s phase, %s complete\n", p.ID, p.CurrentPhase, money.Percent(p.CompletionPercentage))
	m := p.Metrics
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Metric", "Value"})
	tw.AppendRow(table.Row{"Implementation success rate", ratio(m.ImplementationSuccessRate)})
	tw.AppendRow(table.Row{"Time to production", fmt.Sprintf("%d days", m.TimeToProductionDays)})
	tw.AppendRow(table.Row{"ROI improvement", ratio(m.ROIImprovement)})
	tw.AppendRow(table.Row{"Employee adoption", ratio(m.EmployeeAdoptionRate)})
	tw.AppendRow(table.Row{"Revenue growth", ratio(m.RevenueGrowth)})
	tw.AppendRow(table.Row{"Cost reduction", ratio(m.CostReduction)})
	tw.AppendRow(table.Row{"Customer satisfaction", ratio(m.CustomerSatisfactionImprovement)})
	tw.AppendRow(table.Row{"Productivity gain", ratio(m.EmployeeProductivityGain)})
	tw.SetColumnConfigs(rightAligned(2))
	tw.Render()
	writeList(w, "Risks", p.Risks)
	writeList(w, "Recommendations", p.Recommendations)
}

func ratio(v float64) string {
	return money.Percent(v * 100)
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(w, "  - %s\n", it)
	}
}

func Events(w io.Writer, events []domain.Event) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"ID", "TS", "Type", "Entity", "Actor"})
	for _, ev := range events {
		entity := ev.EntityKind
		if ev.EntityID != "" {
			entity += ":" + ev.EntityID
		}
		tw.AppendRow(table.Row{ev.ID, ev.TS, ev.Type, entity, ev.ActorID})
	}
	tw.Render()
}

func Assessments(w io.Writer, items []domain.AssessmentRecord) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"ID", "Organization", "Industry", "Score", "Maturity", "Created"})
	for _, a := range items {
		tw.AppendRow(table.Row{a.ID, a.Organization, a.Industry, fmt.Sprintf("%.2f", a.OverallScore), a.OverallMaturity, a.CreatedAt})
	}
	tw.SetColumnConfigs(rightAligned(4))
	tw.Render()
}

func Cases(w io.Writer, items []domain.CaseRecord) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"ID", "Organization", "Initiative", "NPV", "ROI", "Plan", "Created"})
	for _, c := range items {
		tw.AppendRow(table.Row{c.ID, c.Organization, c.Initiative, money.Format(c.NPV), money.Percent(c.ROI), c.PlanID, c.CreatedAt})
	}
	tw.SetColumnConfigs(rightAligned(4, 5))
	tw.Render()
}
