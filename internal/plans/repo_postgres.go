package plans

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"assistant-platform/pkg/utils"
)

// PostgresRepo persists organization plans.
//
// Assumed table: organization_plans (org_id primary key).
// Counter updates lock the row to serialize concurrent increments against
// period resets.
type PostgresRepo struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db, clock: time.Now}
}

const planColumns = `
org_id, flat_monthly_fee_usd, included_interactions, overage_rate_per_1k_usd,
current_period_interactions, period_start, period_end, status, created_at, updated_at
`

func scanPlan(row *sql.Row) (Plan, error) {
	var p Plan
	err := row.Scan(
		&p.OrgID,
		&p.FlatMonthlyFeeUSD,
		&p.IncludedInteractions,
		&p.OverageRatePer1KUSD,
		&p.CurrentPeriodInteractions,
		&p.PeriodStart,
		&p.PeriodEnd,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Plan{}, ErrNotFound
		}
		return Plan{}, err
	}
	return p, nil
}

func (r *PostgresRepo) Get(ctx context.Context, orgID string) (Plan, error) {
	const q = `SELECT ` + planColumns + ` FROM organization_plans WHERE org_id = $1`
	return scanPlan(r.db.QueryRowContext(ctx, q, orgID))
}

func (r *PostgresRepo) List(ctx context.Context) ([]Plan, error) {
	const q = `SELECT ` + planColumns + ` FROM organization_plans ORDER BY org_id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Plan, 0)
	for rows.Next() {
		var p Plan
		if err := rows.Scan(
			&p.OrgID,
			&p.FlatMonthlyFeeUSD,
			&p.IncludedInteractions,
			&p.OverageRatePer1KUSD,
			&p.CurrentPeriodInteractions,
			&p.PeriodStart,
			&p.PeriodEnd,
			&p.Status,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Upsert(ctx context.Context, p Plan) (Plan, error) {
	const q = `
INSERT INTO organization_plans (` + planColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (org_id)
DO UPDATE SET flat_monthly_fee_usd = EXCLUDED.flat_monthly_fee_usd,
              included_interactions = EXCLUDED.included_interactions,
              overage_rate_per_1k_usd = EXCLUDED.overage_rate_per_1k_usd,
              current_period_interactions = EXCLUDED.current_period_interactions,
              period_start = EXCLUDED.period_start,
              period_end = EXCLUDED.period_end,
              status = EXCLUDED.status,
              updated_at = EXCLUDED.updated_at
RETURNING ` + planColumns
	return scanPlan(r.db.QueryRowContext(ctx, q,
		p.OrgID,
		p.FlatMonthlyFeeUSD,
		p.IncludedInteractions,
		p.OverageRatePer1KUSD,
		p.CurrentPeriodInteractions,
		p.PeriodStart,
		p.PeriodEnd,
		p.Status,
		p.CreatedAt,
		p.UpdatedAt,
	))
}

func (r *PostgresRepo) RecordInteractions(ctx context.Context, orgID string, n int) (Plan, error) {
	var out Plan
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if err := lockPlan(ctx, tx, orgID); err != nil {
			return err
		}
		const q = `
UPDATE organization_plans
SET current_period_interactions = current_period_interactions + $2,
    updated_at = $3
WHERE org_id = $1
RETURNING ` + planColumns
		p, err := scanPlan(tx.QueryRowContext(ctx, q, orgID, n, r.clock().UTC()))
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

func (r *PostgresRepo) ResetPeriod(ctx context.Context, orgID string, start, end time.Time) (Plan, error) {
	var out Plan
	err := utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if err := lockPlan(ctx, tx, orgID); err != nil {
			return err
		}
		const q = `
UPDATE organization_plans
SET current_period_interactions = 0,
    period_start = $2,
    period_end = $3,
    updated_at = $4
WHERE org_id = $1
RETURNING ` + planColumns
		p, err := scanPlan(tx.QueryRowContext(ctx, q, orgID, start, end, r.clock().UTC()))
		if err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

func lockPlan(ctx context.Context, tx *sql.Tx, orgID string) error {
	const q = `SELECT org_id FROM organization_plans WHERE org_id = $1 FOR UPDATE`
	var id string
	if err := tx.QueryRowContext(ctx, q, orgID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
