package usage

import (
	"context"
	"database/sql"
	"time"
)

// PostgresRepo reads interaction records and assistant assignments.
//
// Assumed tables:
// - usage_records (append-only, written by the conversation logger)
// - assistants (phone_number nullable, status active/inactive)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) ListRecords(ctx context.Context, orgID string, from, to time.Time) ([]Record, error) {
	const base = `
SELECT id, org_id, COALESCE(channel, ''), duration_seconds, post_transfer_seconds,
       input_tokens, output_tokens, tts_seconds, created_at
FROM usage_records
WHERE created_at >= $1 AND created_at <= $2
`
	var (
		rows *sql.Rows
		err  error
	)
	if orgID == "" {
		rows, err = r.db.QueryContext(ctx, base, from, to)
	} else {
		rows, err = r.db.QueryContext(ctx, base+` AND org_id = $3`, from, to, orgID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.OrgID,
			&rec.Channel,
			&rec.DurationSeconds,
			&rec.PostTransferSeconds,
			&rec.InputTokens,
			&rec.OutputTokens,
			&rec.TTSSeconds,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) CountAssistantNumbers(ctx context.Context, orgID string) (int, error) {
	// Current assignment, not windowed: reflects assistants as they are now.
	const q = `
SELECT COUNT(DISTINCT id)
FROM assistants
WHERE org_id = $1 AND status = 'active' AND phone_number IS NOT NULL AND phone_number <> ''
`
	var n int
	if err := r.db.QueryRowContext(ctx, q, orgID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
