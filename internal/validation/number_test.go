package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberLenientDecode(t *testing.T) {
	for in, want := range map[string]Number{
		`7`:          7,
		`2.5`:        2.5,
		`"12%"`:      12,
		`"$1,200"`:   1200,
		`"n/a"`:      0,
		`null`:       0,
		`true`:       0,
		`{"x":1}`:    0,
		`[1,2]`:      0,
		`"NaN"`:      0,
		`"nan"`:      0,
		`"Infinity"`: 0,
		`"-Inf"`:     0,
		`1e999`:      0,
	} {
		var n Number
		require.NoError(t, json.Unmarshal([]byte(in), &n), in)
		assert.Equal(t, want, n, in)
	}
}

func TestNormalizeIsPerFieldAndIdempotent(t *testing.T) {
	r := &ValidationReport{FinancialProjections: &FinancialProjections{
		Projections:     Projections{Year1: 2, Year3: 5_000_000, Year5: 999},
		FundingRequired: 1000,
	}}
	Normalize(r)
	fp := r.FinancialProjections
	assert.Equal(t, Number(2_000_000), fp.Projections.Year1)
	assert.Equal(t, Number(5_000_000), fp.Projections.Year3)
	assert.Equal(t, Number(999_000_000), fp.Projections.Year5)
	assert.Equal(t, Number(1000), fp.FundingRequired)

	Normalize(r)
	assert.Equal(t, Number(2_000_000), fp.Projections.Year1)

	Normalize(nil)
	Normalize(&ValidationReport{})
}
