package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to tenant users by default.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.OrgID == "" {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogPlanChange records an admin changing an organization's plan terms.
// Metadata should carry the old and new terms as JSON.
func (s *Service) LogPlanChange(ctx context.Context, orgID, actorUserID, actorRole, ip, metadata string) error {
	return s.Append(ctx, Event{
		OrgID:       orgID,
		Type:        EventTypePlanChange,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		Message:     "plan terms updated",
		Metadata:    metadata,
	})
}

// LogPeriodReset records the billing-cycle job resetting a period counter.
func (s *Service) LogPeriodReset(ctx context.Context, orgID, actorUserID, actorRole, metadata string) error {
	return s.Append(ctx, Event{
		OrgID:       orgID,
		Type:        EventTypePeriodReset,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		Message:     "billing period reset",
		Metadata:    metadata,
	})
}
