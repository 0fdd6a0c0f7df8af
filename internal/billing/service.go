package billing

import (
	"context"
	"errors"
	"time"

	"assistant-platform/internal/plans"
	"assistant-platform/internal/pricing"
	"assistant-platform/internal/usage"
)

var ErrInvalidRequest = errors.New("billing: invalid request")

// Service composes the usage aggregator, cost calculator, and plan
// calculator into the dashboard-facing billing views. It performs no I/O of
// its own beyond the injected collaborators and holds no state between calls.
type Service struct {
	aggregator *usage.Aggregator
	plans      *plans.Service
	table      pricing.Table
}

func NewService(aggregator *usage.Aggregator, planSvc *plans.Service, table pricing.Table) *Service {
	return &Service{aggregator: aggregator, plans: planSvc, table: table}
}

// Period is the inclusive billing window for a computation.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Organization computes the full billing result for one org.
func (s *Service) Organization(ctx context.Context, orgID string, p Period) (Result, error) {
	if orgID == "" {
		return Result{}, ErrInvalidRequest
	}

	totals, err := s.aggregator.OrgTotals(ctx, usage.TotalsRequest{OrgID: orgID, From: p.From, To: p.To})
	if err != nil {
		return Result{}, err
	}

	plan, err := s.plans.Get(ctx, orgID)
	if err != nil {
		return Result{}, err
	}

	return s.assemble(totals, plan), nil
}

// Platform computes the profitability summary across all active plans.
// Shared fixed costs (hosting VM, TTS subscription base) are already part of
// each org's fixed cost breakdown, so the reduction adds no extra shared
// component here.
func (s *Service) Platform(ctx context.Context, p Period) (Summary, error) {
	allTotals, err := s.aggregator.AllTotals(ctx, usage.TotalsRequest{From: p.From, To: p.To})
	if err != nil {
		return Summary{}, err
	}

	allPlans, err := s.plans.List(ctx)
	if err != nil {
		return Summary{}, err
	}

	figures := make([]OrgFigures, 0, len(allPlans))
	for _, plan := range allPlans {
		if plan.Status != plans.StatusActive {
			continue
		}
		totals, ok := allTotals[plan.OrgID]
		if !ok {
			totals = usage.Totals{OrgID: plan.OrgID}
		}
		r := s.assemble(totals, plan)
		figures = append(figures, OrgFigures{
			OrgID:   r.OrgID,
			BillUSD: r.Bill.TotalUSD,
			CostUSD: r.Cost.TotalUSD,
		})
	}

	out := Reduce(figures, 0)
	out.DisplayCurrency = s.table.DisplayCurrency
	out.TotalRevenueDisplay = s.table.Convert(out.TotalRevenueUSD)
	out.TotalCostDisplay = s.table.Convert(out.TotalCostUSD)
	out.GrossProfitDisplay = s.table.Convert(out.GrossProfitUSD)
	return out, nil
}

func (s *Service) assemble(totals usage.Totals, plan plans.Plan) Result {
	cost := pricing.Calculate(s.table, totals)
	bill := plans.ComputeBill(plan)

	r := Result{
		OrgID:                     plan.OrgID,
		Usage:                     totals,
		Cost:                      cost,
		Bill:                      bill,
		MarginUSD:                 bill.TotalUSD - cost.TotalUSD,
		FullyLoadedPerAIMinuteUSD: pricing.FullyLoadedPerAIMinute(cost, totals.AIMinutes),
		DisplayCurrency:           s.table.DisplayCurrency,
	}
	r.BillDisplay = s.table.Convert(bill.TotalUSD)
	r.CostDisplay = s.table.Convert(cost.TotalUSD)
	r.MarginDisplay = s.table.Convert(r.MarginUSD)
	return r
}
