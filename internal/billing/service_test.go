package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"assistant-platform/internal/plans"
	"assistant-platform/internal/pricing"
	"assistant-platform/internal/usage"
)

func testTable() pricing.Table {
	return pricing.Table{
		STTPerMinuteUSD:       0.01,
		LLMVoicePerMinuteUSD:  0.02,
		TelephonyPerMinuteUSD: 0.01,
		HostingPerMinuteUSD:   0.01,

		LLMPerChatUSD:     0.01,
		HostingPerChatUSD: 0.01,

		TelephonyPerSMSUSD: 0.01,
		LLMPerSMSUSD:       0.01,
		HostingPerSMSUSD:   0.01,

		TTSIncludedMinutes:        100,
		TTSOveragePerMinuteUSD:    0.10,
		TTSSubscriptionMonthlyUSD: 22,

		PhoneNumberMonthlyUSD: 1.50,
		HostingMonthlyUSD:     40,

		ExchangeRate:    1.55,
		DisplayCurrency: "AUD",
	}
}

func fixture(t *testing.T) (*Service, time.Time) {
	t.Helper()

	now := time.Unix(1700000000, 0).UTC()

	// Two calls within the single-call sanity ceiling, 100 AI minutes total.
	usageRepo := usage.NewMemoryRepo()
	usageRepo.Records = []usage.Record{
		{ID: "a1", OrgID: "a", Channel: usage.ChannelVoice, DurationSeconds: 3000, CreatedAt: now},
		{ID: "a2", OrgID: "a", Channel: usage.ChannelVoice, DurationSeconds: 3000, CreatedAt: now},
	}

	planRepo := plans.NewMemoryRepo()
	planSvc := plans.NewService(planRepo)
	ctx := context.Background()

	if _, err := planSvc.Upsert(ctx, plans.Plan{
		OrgID: "a", FlatMonthlyFeeUSD: 500, IncludedInteractions: 5000,
		OverageRatePer1KUSD: 50, CurrentPeriodInteractions: 6200,
	}); err != nil {
		t.Fatalf("seed plan a: %v", err)
	}
	if _, err := planSvc.Upsert(ctx, plans.Plan{
		OrgID: "b", FlatMonthlyFeeUSD: 200, Status: plans.StatusInactive,
	}); err != nil {
		t.Fatalf("seed plan b: %v", err)
	}
	if _, err := planSvc.Upsert(ctx, plans.Plan{
		OrgID: "c", FlatMonthlyFeeUSD: 100, IncludedInteractions: 1000, OverageRatePer1KUSD: 50,
	}); err != nil {
		t.Fatalf("seed plan c: %v", err)
	}

	agg := usage.NewAggregator(usageRepo, nil)
	return NewService(agg, planSvc, testTable()), now
}

func TestOrganization_BillCostAndMargin(t *testing.T) {
	svc, now := fixture(t)
	p := Period{From: now.Add(-time.Hour), To: now.Add(time.Hour)}

	res, err := svc.Organization(context.Background(), "a", p)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	// 6200 interactions on a 5000-included plan at $50/1000 over $500 flat.
	approx(t, res.Bill.TotalUSD, 560, "bill")

	// 100 AI minutes at the $0.05 blended stack plus $62 of fixed costs.
	approx(t, res.Cost.VariableUSD, 5, "variable cost")
	approx(t, res.Cost.FixedUSD, 62, "fixed cost")
	approx(t, res.Cost.TotalUSD, 67, "total cost")

	approx(t, res.MarginUSD, 560-67, "margin")
	approx(t, res.FullyLoadedPerAIMinuteUSD, 67.0/100, "fully loaded per minute")

	if res.DisplayCurrency != "AUD" {
		t.Fatalf("expected AUD display, got %q", res.DisplayCurrency)
	}
	approx(t, res.BillDisplay, 560*1.55, "bill display")
	approx(t, res.MarginDisplay, (560-67)*1.55, "margin display")
}

func TestOrganization_UnknownPlan(t *testing.T) {
	svc, now := fixture(t)
	p := Period{From: now.Add(-time.Hour), To: now.Add(time.Hour)}

	if _, err := svc.Organization(context.Background(), "ghost", p); !errors.Is(err, plans.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Organization(context.Background(), "", p); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestPlatform_SkipsInactiveAndCountsFixedForIdleOrgs(t *testing.T) {
	svc, now := fixture(t)
	p := Period{From: now.Add(-time.Hour), To: now.Add(time.Hour)}

	sum, err := svc.Platform(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	// Inactive org b is excluded. Idle org c still bills its flat fee and
	// still incurs fixed costs.
	if sum.Organizations != 2 {
		t.Fatalf("expected 2 active orgs, got %d", sum.Organizations)
	}
	approx(t, sum.TotalRevenueUSD, 560+100, "revenue")
	approx(t, sum.TotalCostUSD, 67+62, "cost")
	approx(t, sum.GrossProfitUSD, 660-129, "profit")
	approx(t, sum.AvgBillPerOrgUSD, 330, "avg bill")
	approx(t, sum.TotalRevenueDisplay, 660*1.55, "revenue display")
}
