package validation

// Normalize rescales financial figures the model answered in millions. Each
// of year1, year3, year5 and funding_required is multiplied by 10^6 when it is
// below MillionsThreshold, so values already in absolute units are untouched.
func Normalize(r *ValidationReport) {
	if r == nil || r.FinancialProjections == nil {
		return
	}
	fp := r.FinancialProjections
	fp.Projections.Year1 = fromMillions(fp.Projections.Year1)
	fp.Projections.Year3 = fromMillions(fp.Projections.Year3)
	fp.Projections.Year5 = fromMillions(fp.Projections.Year5)
	fp.FundingRequired = fromMillions(fp.FundingRequired)
}

func fromMillions(v Number) Number {
	if v < MillionsThreshold {
		return v * 1_000_000
	}
	return v
}
