package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelkehle/justplanit/internal/validation"
	"github.com/joelkehle/justplanit/internal/validation/validationtest"
)

func TestFormatCurrency(t *testing.T) {
	for in, want := range map[float64]string{
		2_000_000: "$2.0M",
		1_260_000: "$1.3M",
		1_250_000: "$1.3M",
		2_500:     "$3K",
		1_500:     "$2K",
		1_000:     "$1K",
		150_000:   "$150K",
		999:       "$999",
		12.5:      "$12.5",
		0:         "$0",
	} {
		assert.Equal(t, want, FormatCurrency(in), "amount %v", in)
	}
}

func TestVerdictColor(t *testing.T) {
	assert.Equal(t, "bg-green-500 text-white", VerdictColor(validation.VerdictStrongGo))
	assert.Equal(t, "bg-green-400 text-white", VerdictColor(validation.VerdictGo))
	assert.Equal(t, "bg-yellow-500 text-black", VerdictColor(validation.VerdictConditional))
	assert.Equal(t, "bg-red-500 text-white", VerdictColor(validation.VerdictNoGo))
	assert.Equal(t, "bg-gray-500 text-white", VerdictColor("MAYBE"))
}

func TestRiskColor(t *testing.T) {
	assert.Equal(t, "text-green-500", RiskColor(validation.LevelLow))
	assert.Equal(t, "text-yellow-500", RiskColor(validation.LevelMedium))
	assert.Equal(t, "text-red-500", RiskColor(validation.LevelHigh))
	assert.Equal(t, "text-gray-500", RiskColor(""))
}

func TestVerdictLabel(t *testing.T) {
	assert.Equal(t, "STRONG GO", VerdictLabel(validation.VerdictStrongGo))
	assert.Equal(t, "NO GO", VerdictLabel(validation.VerdictNoGo))
}

func TestMarkdownCoversAllSections(t *testing.T) {
	md := Markdown("AI meal planner", validationtest.Report(), time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))

	for _, heading := range []string{
		"## Executive Summary",
		"## Market Analysis",
		"## Competitive Analysis",
		"## Technical Feasibility",
		"## Risk Assessment",
		"## Financial Projections",
		"## Implementation Roadmap",
		"## Recommendations",
		"## Sources & Citations",
	} {
		assert.Contains(t, md, heading)
	}
	assert.Contains(t, md, "**Idea:** AI meal planner")
	assert.Contains(t, md, "| $2.0M | $5.0M | $12.0M |")
	assert.Contains(t, md, "- **Funding Required:** $1.5M")
	assert.Contains(t, md, "| HelloFresh | DIRECT | 9/10 | 35% |")
	assert.Contains(t, md, "[Meal kit market report](https://example.com/report)")
}

func TestMarkdownSkipsMissingSections(t *testing.T) {
	md := Markdown("x", &validation.ValidationReport{
		Recommendations: &validation.Recommendations{Decision: validation.VerdictNoGo},
	}, time.Time{})
	assert.Contains(t, md, "- **Final Decision:** NO GO")
	assert.NotContains(t, md, "## Executive Summary")
	assert.NotContains(t, md, "**Generated:**")
}

func TestMarkdownEscapesTableCells(t *testing.T) {
	r := &validation.ValidationReport{CompetitiveAnalysis: &validation.CompetitiveAnalysis{
		Competitors: []validation.Competitor{{Name: "A|B", Type: validation.CompetitorDirect}},
	}}
	assert.Contains(t, Markdown("", r, time.Time{}), `| A\|B | DIRECT |`)
}

func TestDocumentHTML(t *testing.T) {
	doc, err := Document("AI meal planner", validationtest.Report(), Meta{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "<!doctype html>"))
	assert.Contains(t, doc, "<span class='report-badge bg-green-400 text-white'>GO</span>")
	assert.Contains(t, doc, "<table>")
	assert.Contains(t, doc, `<h2 data-page-break-before="true">Implementation Roadmap</h2>`)
}

func TestPDFRendererProducesPDF(t *testing.T) {
	r := NewPDFRenderer("")
	if r.chromePath == "" {
		t.Skip("no chromium binary available")
	}
	doc, err := RenderHTML("# Hello\n\nworld", validation.VerdictGo)
	require.NoError(t, err)

	pdf, err := r.Render(context.Background(), doc, PageMeta{Idea: "Meal kits", Verdict: validation.VerdictGo})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestPageTemplates(t *testing.T) {
	header, footer := pageTemplates(PageMeta{
		Idea:        "Meal kits <for>\n  students",
		Verdict:     validation.VerdictNoGo,
		GeneratedAt: time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC),
	})
	assert.Contains(t, header, "Meal kits &lt;for&gt; students")
	assert.Contains(t, header, "Verdict: NO GO")
	assert.Contains(t, footer, "Generated March 14, 2026")
	assert.Contains(t, footer, `<span class="pageNumber"></span>`)
	assert.Contains(t, footer, `<span class="totalPages"></span>`)
}

func TestPageTemplatesDefaults(t *testing.T) {
	header, footer := pageTemplates(PageMeta{Idea: strings.Repeat("x", 200)})
	assert.Contains(t, header, strings.Repeat("x", maxTitleLen-1)+"…")
	assert.NotContains(t, header, strings.Repeat("x", maxTitleLen))
	assert.NotContains(t, header, "Verdict")
	assert.NotContains(t, footer, "Generated")

	header, _ = pageTemplates(PageMeta{})
	assert.Contains(t, header, "Startup Idea Validation Report")
}

func TestPrintParamsA4(t *testing.T) {
	p := printParams(PageMeta{Idea: "x"})
	assert.Equal(t, a4Width, p.PaperWidth)
	assert.Equal(t, a4Height, p.PaperHeight)
	assert.True(t, p.DisplayHeaderFooter)
	assert.Contains(t, p.HeaderTemplate, "x")
}
