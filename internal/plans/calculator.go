package plans

// ComputeBill applies the contracted plan terms to the current-period
// interaction count. Pure function.
//
// Division-by-zero rules are deliberate: a plan with zero included
// interactions reports 0% usage rather than erroring.
func ComputeBill(p Plan) Bill {
	b := Bill{
		OrgID:      p.OrgID,
		FlatFeeUSD: p.FlatMonthlyFeeUSD,
	}

	if over := p.CurrentPeriodInteractions - p.IncludedInteractions; over > 0 {
		b.OverageInteractions = over
		b.OverageCostUSD = float64(over) / 1000 * p.OverageRatePer1KUSD
	}

	b.TotalUSD = b.FlatFeeUSD + b.OverageCostUSD

	if p.IncludedInteractions > 0 {
		pct := float64(p.CurrentPeriodInteractions) / float64(p.IncludedInteractions) * 100
		if pct > 100 {
			pct = 100
		}
		b.UsagePercent = pct
	}
	return b
}
