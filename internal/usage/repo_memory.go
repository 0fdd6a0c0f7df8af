package usage

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory repository for tests and early development.
//
// NOTE: not intended for production; use PostgresRepo.
type MemoryRepo struct {
	mu sync.Mutex

	Records []Record

	// AssistantNumbers maps org id -> count of assistants with a number assigned.
	AssistantNumbers map[string]int
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{AssistantNumbers: map[string]int{}}
}

func (r *MemoryRepo) ListRecords(ctx context.Context, orgID string, from, to time.Time) ([]Record, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, 0)
	for _, rec := range r.Records {
		if orgID != "" && rec.OrgID != orgID {
			continue
		}
		if !rec.CreatedAt.IsZero() {
			if rec.CreatedAt.Before(from) || rec.CreatedAt.After(to) {
				continue
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *MemoryRepo) CountAssistantNumbers(ctx context.Context, orgID string) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.AssistantNumbers[orgID], nil
}
