package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", in: "```\n{\"a\":1}```", want: `{"a":1}`},
		{name: "leading prose", in: "Here you go:\n{\"a\":{\"b\":2}}", want: `{"a":{"b":2}}`},
		{name: "trailing prose", in: "{\"a\":1}\nHope this helps!", want: `{"a":1}`},
		{name: "prose both sides", in: `noise{"a":1}noise`, want: `{"a":1}`},
		{name: "whitespace", in: "  \n{\"a\":1}\n\t", want: `{"a":1}`},
		{name: "no braces", in: "sorry, no", want: "sorry, no"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sanitize(tc.in))
		})
	}
}

func TestMissingSections(t *testing.T) {
	raw := []byte(`{"executive_summary":{},"market_analysis":null,"sources":{"sources":[]}}`)
	got := MissingSections(raw)
	assert.Equal(t, []string{
		SectionMarketAnalysis,
		SectionCompetitiveAnalysis,
		SectionTechnicalFeasibility,
		SectionRiskAssessment,
		SectionFinancialProjections,
		SectionImplementationRoadmap,
		SectionRecommendations,
	}, got)
}
