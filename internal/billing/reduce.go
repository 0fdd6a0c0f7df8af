package billing

// OrgFigures is the minimal per-org input to the profitability reduction.
type OrgFigures struct {
	OrgID   string
	BillUSD float64
	CostUSD float64
}

// Reduce folds per-org bills and costs into platform totals.
// sharedFixedUSD covers platform costs not attributable to a single org and
// is counted once, never per-org. Pure reduction: no retries, no
// partial-failure semantics; inputs are already validated upstream.
func Reduce(orgs []OrgFigures, sharedFixedUSD float64) Summary {
	s := Summary{Organizations: len(orgs)}

	for _, o := range orgs {
		s.TotalRevenueUSD += o.BillUSD
		s.TotalCostUSD += o.CostUSD
	}
	s.TotalCostUSD += sharedFixedUSD
	s.GrossProfitUSD = s.TotalRevenueUSD - s.TotalCostUSD

	if s.TotalRevenueUSD > 0 {
		s.GrossMarginPercent = s.GrossProfitUSD / s.TotalRevenueUSD * 100
	}
	if s.Organizations > 0 {
		s.AvgBillPerOrgUSD = s.TotalRevenueUSD / float64(s.Organizations)
	}
	return s
}
