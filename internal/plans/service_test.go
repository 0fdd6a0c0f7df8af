package plans

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestService_UpsertValidates(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if _, err := svc.Upsert(context.Background(), Plan{}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for missing org, got %v", err)
	}
	if _, err := svc.Upsert(context.Background(), Plan{OrgID: "org", FlatMonthlyFeeUSD: -1}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for negative fee, got %v", err)
	}
	if _, err := svc.Upsert(context.Background(), Plan{OrgID: "org", Status: "paused"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for unknown status, got %v", err)
	}

	p, err := svc.Upsert(context.Background(), Plan{OrgID: "org", FlatMonthlyFeeUSD: 500, IncludedInteractions: 5000, OverageRatePer1KUSD: 50})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.Status != StatusActive {
		t.Fatalf("expected default active status, got %q", p.Status)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be filled")
	}
}

func TestService_RecordInteractionsIncrementsCounter(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if _, err := svc.Upsert(context.Background(), Plan{OrgID: "org", IncludedInteractions: 100}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if _, err := svc.RecordInteractions(context.Background(), "org", 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for n=0, got %v", err)
	}

	p, err := svc.RecordInteractions(context.Background(), "org", 3)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.CurrentPeriodInteractions != 3 {
		t.Fatalf("expected counter 3, got %d", p.CurrentPeriodInteractions)
	}
}

func TestService_ResetPeriodZeroesCounter(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if _, err := svc.Upsert(context.Background(), Plan{OrgID: "org", CurrentPeriodInteractions: 0}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := svc.RecordInteractions(context.Background(), "org", 42); err != nil {
		t.Fatalf("record: %v", err)
	}

	start := time.Unix(1700000000, 0).UTC()
	end := start.AddDate(0, 1, 0)

	if _, err := svc.ResetPeriod(context.Background(), "org", end, start); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for inverted window, got %v", err)
	}

	p, err := svc.ResetPeriod(context.Background(), "org", start, end)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.CurrentPeriodInteractions != 0 {
		t.Fatalf("expected counter reset, got %d", p.CurrentPeriodInteractions)
	}
	if !p.PeriodStart.Equal(start) || !p.PeriodEnd.Equal(end) {
		t.Fatalf("expected new window, got %v..%v", p.PeriodStart, p.PeriodEnd)
	}
}

func TestService_GetUnknownOrg(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
