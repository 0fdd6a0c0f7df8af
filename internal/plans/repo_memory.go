package plans

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory plan store for tests and early development.
type MemoryRepo struct {
	mu    sync.Mutex
	plans map[string]Plan
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{plans: map[string]Plan{}}
}

func (r *MemoryRepo) Get(ctx context.Context, orgID string) (Plan, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[orgID]
	if !ok {
		return Plan{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Plan, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Plan, 0, len(r.plans))
	for _, p := range r.plans {
		out = append(out, p)
	}
	return out, nil
}

func (r *MemoryRepo) Upsert(ctx context.Context, p Plan) (Plan, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plans[p.OrgID] = p
	return p, nil
}

func (r *MemoryRepo) RecordInteractions(ctx context.Context, orgID string, n int) (Plan, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[orgID]
	if !ok {
		return Plan{}, ErrNotFound
	}
	p.CurrentPeriodInteractions += n
	p.UpdatedAt = time.Now().UTC()
	r.plans[orgID] = p
	return p, nil
}

func (r *MemoryRepo) ResetPeriod(ctx context.Context, orgID string, start, end time.Time) (Plan, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[orgID]
	if !ok {
		return Plan{}, ErrNotFound
	}
	p.CurrentPeriodInteractions = 0
	p.PeriodStart = start
	p.PeriodEnd = end
	p.UpdatedAt = time.Now().UTC()
	r.plans[orgID] = p
	return p, nil
}
