package billing

import (
	"math"
	"testing"
)

func approx(t *testing.T, got, want float64, what string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s: expected %v, got %v", what, want, got)
	}
}

func TestReduce_PlatformRollup(t *testing.T) {
	// Two orgs billing $560 and $300 against $120 and $80 of cost, plus $50
	// of shared fixed cost counted exactly once.
	s := Reduce([]OrgFigures{
		{OrgID: "a", BillUSD: 560, CostUSD: 120},
		{OrgID: "b", BillUSD: 300, CostUSD: 80},
	}, 50)

	if s.Organizations != 2 {
		t.Fatalf("expected 2 organizations, got %d", s.Organizations)
	}
	approx(t, s.TotalRevenueUSD, 860, "revenue")
	approx(t, s.TotalCostUSD, 250, "cost")
	approx(t, s.GrossProfitUSD, 610, "profit")
	approx(t, s.GrossMarginPercent, 610.0/860.0*100, "margin")
	approx(t, s.AvgBillPerOrgUSD, 430, "avg bill")
}

func TestReduce_ZeroRevenueHasZeroMargin(t *testing.T) {
	s := Reduce([]OrgFigures{{OrgID: "a", CostUSD: 100}}, 25)

	approx(t, s.TotalCostUSD, 125, "cost")
	approx(t, s.GrossProfitUSD, -125, "profit")
	if s.GrossMarginPercent != 0 {
		t.Fatalf("margin must be 0 when revenue is 0, got %v", s.GrossMarginPercent)
	}
}

func TestReduce_Empty(t *testing.T) {
	s := Reduce(nil, 0)
	if s.Organizations != 0 || s.TotalRevenueUSD != 0 || s.AvgBillPerOrgUSD != 0 {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}
