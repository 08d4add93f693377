package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/joelkehle/justplanit/internal/validation"
)

// Markdown renders every present section of r. Sections missing from r are
// skipped, which only happens for reports from the direct analysis mode.
func Markdown(idea string, r *validation.ValidationReport, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("# Startup Idea Validation Report\n\n")
	if idea = strings.TrimSpace(idea); idea != "" {
		fmt.Fprintf(&b, "**Idea:** %s\n\n", oneLine(idea))
	}
	if !generatedAt.IsZero() {
		fmt.Fprintf(&b, "**Generated:** %s\n\n", generatedAt.UTC().Format("January 2, 2006 15:04 MST"))
	}
	if r == nil {
		return b.String()
	}

	if s := r.ExecutiveSummary; s != nil {
		b.WriteString("## Executive Summary\n\n")
		fmt.Fprintf(&b, "- **Verdict:** %s\n", VerdictLabel(s.Verdict))
		fmt.Fprintf(&b, "- **Viability Score:** %s\n", OutOfTen(s.ViabilityScore))
		fmt.Fprintf(&b, "- **Market Opportunity:** %s\n", oneLine(s.MarketOpportunity))
		fmt.Fprintf(&b, "- **Time to Market:** %s\n\n", oneLine(s.TimeToMarket))
		writeList(&b, "Key Strengths", s.KeyStrengths)
		writeList(&b, "Key Challenges", s.KeyWeaknesses)
	}

	if m := r.MarketAnalysis; m != nil {
		b.WriteString("## Market Analysis\n\n")
		fmt.Fprintf(&b, "- **Target Market:** %s\n", oneLine(m.TargetMarket.Demographics))
		fmt.Fprintf(&b, "- **Market Size:** TAM %s, SAM %s, SOM %s\n", oneLine(m.MarketSize.TAM), oneLine(m.MarketSize.SAM), oneLine(m.MarketSize.SOM))
		fmt.Fprintf(&b, "- **Growth Rate:** +%s\n", Percent(m.TargetMarket.GrowthRate))
		fmt.Fprintf(&b, "- **Market Readiness:** %s\n\n", OutOfTen(m.MarketReadiness))
		if len(m.Trends) > 0 {
			b.WriteString("| Trend | Impact | Timeline |\n|---|---|---|\n")
			for _, t := range m.Trends {
				fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(t.Trend), t.Impact, cell(t.Timeline))
			}
			b.WriteString("\n")
		}
		writeList(&b, "Recent Developments", m.RecentDevelopments)
	}

	if c := r.CompetitiveAnalysis; c != nil {
		b.WriteString("## Competitive Analysis\n\n")
		fmt.Fprintf(&b, "- **Threat Level:** %s\n", c.ThreatsLevel)
		fmt.Fprintf(&b, "- **Market Position:** %s\n", oneLine(c.MarketPosition))
		fmt.Fprintf(&b, "- **Funding Landscape:** %s\n\n", oneLine(c.FundingLandscape))
		if len(c.Competitors) > 0 {
			b.WriteString("| Competitor | Type | Strength | Market Share |\n|---|---|---|---|\n")
			for _, comp := range c.Competitors {
				fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", cell(comp.Name), comp.Type, OutOfTen(comp.Strength), cell(comp.MarketShare))
			}
			b.WriteString("\n")
		}
		writeList(&b, "Competitive Advantages", c.CompetitiveAdvantages)
	}

	if t := r.TechnicalFeasibility; t != nil {
		b.WriteString("## Technical Feasibility\n\n")
		fmt.Fprintf(&b, "- **Complexity Rating:** %s\n", OutOfTen(t.ComplexityRating))
		fmt.Fprintf(&b, "- **Team Size:** %d\n", t.ResourceRequirements.TeamSize.Int())
		fmt.Fprintf(&b, "- **Timeline:** %s\n", oneLine(t.ResourceRequirements.Timeline))
		fmt.Fprintf(&b, "- **Budget Range:** %s\n\n", oneLine(t.ResourceRequirements.BudgetRange))
		if len(t.RequiredTechnologies) > 0 {
			b.WriteString("| Technology | Difficulty | Available |\n|---|---|---|\n")
			for _, tech := range t.RequiredTechnologies {
				fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(tech.Technology), tech.Difficulty, yesNo(tech.Availability))
			}
			b.WriteString("\n")
		}
		writeList(&b, "Technical Risks", t.TechnicalRisks)
	}

	if ra := r.RiskAssessment; ra != nil {
		b.WriteString("## Risk Assessment\n\n")
		fmt.Fprintf(&b, "- **Overall Risk Level:** %s\n", ra.OverallRiskLevel)
		fmt.Fprintf(&b, "- **Risk Score:** %s\n\n", Percent(ra.RiskScore))
		if len(ra.Risks) > 0 {
			b.WriteString("| Category | Risk | Probability | Impact | Mitigation |\n|---|---|---|---|---|\n")
			for _, risk := range ra.Risks {
				fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", risk.Category, cell(risk.Risk), Percent(risk.Probability), Percent(risk.Impact), cell(risk.Mitigation))
			}
			b.WriteString("\n")
		}
		writeList(&b, "Regulatory Considerations", ra.RegulatoryConsiderations)
	}

	if f := r.FinancialProjections; f != nil {
		b.WriteString("## Financial Projections\n\n")
		fmt.Fprintf(&b, "- **Revenue Model:** %s\n", oneLine(f.RevenueModel))
		fmt.Fprintf(&b, "- **Funding Required:** %s\n", FormatCurrency(f.FundingRequired.Float()))
		fmt.Fprintf(&b, "- **Break-even Point:** %s\n", oneLine(f.BreakEvenPoint))
		fmt.Fprintf(&b, "- **Expected ROI:** %s\n", Percent(f.ROI))
		fmt.Fprintf(&b, "- **Funding Environment:** %s\n\n", oneLine(f.FundingEnvironment))
		b.WriteString("| Year 1 | Year 3 | Year 5 |\n|---|---|---|\n")
		fmt.Fprintf(&b, "| %s | %s | %s |\n\n",
			FormatCurrency(f.Projections.Year1.Float()),
			FormatCurrency(f.Projections.Year3.Float()),
			FormatCurrency(f.Projections.Year5.Float()))
		if len(f.CostStructure) > 0 {
			b.WriteString("| Cost Category | Share | Amount |\n|---|---|---|\n")
			for _, c := range f.CostStructure {
				fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(c.Category), Percent(c.Percentage), FormatCurrency(c.Amount.Float()))
			}
			b.WriteString("\n")
		}
	}

	if ir := r.ImplementationRoadmap; ir != nil {
		b.WriteString("## Implementation Roadmap\n\n")
		for i, p := range ir.Phases {
			fmt.Fprintf(&b, "### %d. %s\n\n", i+1, oneLine(p.Phase))
			fmt.Fprintf(&b, "- **Duration:** %s\n", oneLine(p.Duration))
			fmt.Fprintf(&b, "- **Budget:** %s\n", FormatCurrency(p.Budget.Float()))
			fmt.Fprintf(&b, "- **Resources:** %s\n\n", oneLine(p.Resources))
			writeList(&b, "Key Milestones", p.KeyMilestones)
		}
		writeList(&b, "Critical Path", ir.CriticalPath)
		writeList(&b, "Success Metrics", ir.SuccessMetrics)
		writeList(&b, "Next Steps", ir.NextSteps)
	}

	if rec := r.Recommendations; rec != nil {
		b.WriteString("## Recommendations\n\n")
		fmt.Fprintf(&b, "- **Final Decision:** %s\n", VerdictLabel(rec.Decision))
		fmt.Fprintf(&b, "- **Success Probability:** %s\n", Percent(rec.SuccessProbability))
		fmt.Fprintf(&b, "- **Confidence Level:** %s\n", Percent(rec.Confidence))
		fmt.Fprintf(&b, "- **Market Timing:** %s\n\n", oneLine(rec.MarketTiming))
		writeList(&b, "Priority Actions", rec.PriorityActions)
		writeList(&b, "Alternative Approaches", rec.AlternativeApproaches)
		writeList(&b, "Key Success Factors", rec.KeySuccessFactors)
	}

	if src := r.Sources; src != nil {
		b.WriteString("## Sources & Citations\n\n")
		fmt.Fprintf(&b, "- **Search Quality:** %s\n", OutOfTen(src.SearchQuality))
		fmt.Fprintf(&b, "- **Last Updated:** %s\n\n", oneLine(src.LastUpdated))
		if len(src.Sources) > 0 {
			b.WriteString("| # | Source | Type | Relevance |\n|---|---|---|---|\n")
			for i, s := range src.Sources {
				fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", i+1, link(s.Title, s.URL), s.Type, s.Relevance)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s**\n\n", title)
	for _, item := range items {
		b.WriteString("- " + oneLine(item) + "\n")
	}
	b.WriteString("\n")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cell(s string) string {
	return strings.ReplaceAll(oneLine(s), "|", `\|`)
}

func link(title, url string) string {
	title = cell(title)
	if title == "" {
		title = cell(url)
	}
	if url = strings.TrimSpace(url); url == "" || strings.ContainsAny(url, " ()") {
		return title
	}
	return "[" + strings.ReplaceAll(strings.ReplaceAll(title, "[", `\[`), "]", `\]`) + "](" + url + ")"
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
