package usage

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var ErrInvalidRequest = errors.New("usage: invalid request")

// Repository abstracts data access for usage aggregation.
//
// Contract:
// - ListRecords returns empty slices (not errors) for orgs/periods with no data.
// - CountAssistantNumbers counts distinct active assistants with a phone
//   number assigned; it reflects current assignment and is not windowed.
type Repository interface {
	ListRecords(ctx context.Context, orgID string, from, to time.Time) ([]Record, error)
	CountAssistantNumbers(ctx context.Context, orgID string) (int, error)
}

// Aggregator turns raw interaction records into per-org totals.
// Pure reduction over repository reads; no state between calls.
type Aggregator struct {
	repo Repository
	log  *slog.Logger
}

func NewAggregator(repo Repository, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{repo: repo, log: log}
}

// TotalsRequest filters by org and inclusive date range. An empty OrgID
// means all organizations.
type TotalsRequest struct {
	OrgID string    `json:"org_id,omitempty"`
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
}

// OrgTotals aggregates usage for a single organization.
func (a *Aggregator) OrgTotals(ctx context.Context, req TotalsRequest) (Totals, error) {
	if req.OrgID == "" {
		return Totals{}, ErrInvalidRequest
	}
	all, err := a.AllTotals(ctx, req)
	if err != nil {
		return Totals{}, err
	}
	if t, ok := all[req.OrgID]; ok {
		return t, nil
	}
	// No data in range is an empty result, not an error.
	return Totals{OrgID: req.OrgID}, nil
}

// AllTotals aggregates usage for every organization present in the filtered
// record set, keyed by org id. No ordering guarantee; callers sort as needed.
func (a *Aggregator) AllTotals(ctx context.Context, req TotalsRequest) (map[string]Totals, error) {
	if a.repo == nil {
		return nil, errors.New("usage: repository not configured")
	}
	// An inverted range is an empty result, not an error.
	if req.From.After(req.To) {
		return map[string]Totals{}, nil
	}

	rows, err := a.repo.ListRecords(ctx, req.OrgID, req.From, req.To)
	if err != nil {
		return nil, err
	}

	out, skipped := Reduce(rows, req.From, req.To)
	if skipped > 0 {
		a.log.Debug("usage: skipped bad records", "count", skipped, "org_id", req.OrgID)
	}

	for orgID, t := range out {
		n, err := a.repo.CountAssistantNumbers(ctx, orgID)
		if err != nil {
			return nil, err
		}
		t.PhoneNumbers = n
		out[orgID] = t
	}
	return out, nil
}

// Reduce folds records into per-org totals. Records outside [from, to]
// contribute nothing; records missing a timestamp or an org id cannot be
// attributed to a period or a tenant and are skipped and counted, like
// records with a corrupt voice duration. Deterministic given identical input.
func Reduce(rows []Record, from, to time.Time) (map[string]Totals, int) {
	out := make(map[string]Totals)
	skipped := 0

	for _, r := range rows {
		if r.CreatedAt.IsZero() {
			skipped++
			continue
		}
		if r.CreatedAt.Before(from) || r.CreatedAt.After(to) {
			continue
		}
		if r.OrgID == "" {
			skipped++
			continue
		}

		t := out[r.OrgID]
		t.OrgID = r.OrgID

		switch r.EffectiveChannel() {
		case ChannelVoice:
			if r.DurationSeconds <= 0 || r.DurationSeconds > MaxVoiceSeconds {
				// Corrupt duration: exclude the whole record, do not clamp.
				skipped++
				t.SkippedRecords++
				out[r.OrgID] = t
				continue
			}
			post := r.PostTransferSeconds
			if post < 0 {
				post = 0
			}
			if post > r.DurationSeconds {
				post = r.DurationSeconds
			}
			t.AIMinutes += float64(r.DurationSeconds-post) / 60
			t.PostTransferMinutes += float64(post) / 60
		case ChannelChat:
			t.ChatCount++
		case ChannelSMS:
			t.SMSCount++
		}

		if r.InputTokens > 0 {
			t.InputTokens += r.InputTokens
		}
		if r.OutputTokens > 0 {
			t.OutputTokens += r.OutputTokens
		}
		if r.TTSSeconds > 0 {
			t.TTSMinutes += float64(r.TTSSeconds) / 60
		}

		out[r.OrgID] = t
	}
	return out, skipped
}
