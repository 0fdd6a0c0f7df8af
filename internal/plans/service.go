package plans

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("plans: not found")
	ErrInvalidArgument = errors.New("plans: invalid argument")
)

// Repository is the persistence contract for organization plans.
//
// Counter updates must be atomic: RecordInteractions and ResetPeriod run in a
// transaction in the Postgres implementation.
type Repository interface {
	Get(ctx context.Context, orgID string) (Plan, error)
	List(ctx context.Context) ([]Plan, error)
	Upsert(ctx context.Context, p Plan) (Plan, error)

	// RecordInteractions increments the current-period counter. Called by the
	// conversation-logging pipeline, not by billing reads.
	RecordInteractions(ctx context.Context, orgID string, n int) (Plan, error)

	// ResetPeriod zeroes the counter and advances the billing window. Called
	// by the external billing-cycle job at the period boundary.
	ResetPeriod(ctx context.Context, orgID string, start, end time.Time) (Plan, error)
}

// Service provides plan operations and bill computation.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) Get(ctx context.Context, orgID string) (Plan, error) {
	if orgID == "" {
		return Plan{}, ErrInvalidArgument
	}
	return s.repo.Get(ctx, orgID)
}

func (s *Service) List(ctx context.Context) ([]Plan, error) {
	return s.repo.List(ctx)
}

// BillFor computes the customer-facing bill for one organization.
func (s *Service) BillFor(ctx context.Context, orgID string) (Bill, error) {
	p, err := s.Get(ctx, orgID)
	if err != nil {
		return Bill{}, err
	}
	return ComputeBill(p), nil
}

// Upsert validates and stores plan terms. Admin-only; callers audit it.
func (s *Service) Upsert(ctx context.Context, p Plan) (Plan, error) {
	if p.OrgID == "" {
		return Plan{}, ErrInvalidArgument
	}
	if p.FlatMonthlyFeeUSD < 0 || p.IncludedInteractions < 0 || p.OverageRatePer1KUSD < 0 {
		return Plan{}, ErrInvalidArgument
	}
	if p.CurrentPeriodInteractions < 0 {
		return Plan{}, ErrInvalidArgument
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.Status != StatusActive && p.Status != StatusInactive {
		return Plan{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return s.repo.Upsert(ctx, p)
}

func (s *Service) RecordInteractions(ctx context.Context, orgID string, n int) (Plan, error) {
	if orgID == "" || n <= 0 {
		return Plan{}, ErrInvalidArgument
	}
	return s.repo.RecordInteractions(ctx, orgID, n)
}

func (s *Service) ResetPeriod(ctx context.Context, orgID string, start, end time.Time) (Plan, error) {
	if orgID == "" || start.IsZero() || end.IsZero() || !end.After(start) {
		return Plan{}, ErrInvalidArgument
	}
	return s.repo.ResetPeriod(ctx, orgID, start, end)
}
