package plans

import "time"

// Plan is an organization's contracted billing plan: a flat monthly fee, an
// included-interaction allowance, and a per-1000 overage rate.
//
// Lifecycle: created at onboarding; CurrentPeriodInteractions is reset at the
// period boundary by the billing-cycle job; plan terms change via admin
// actions only.
type Plan struct {
	OrgID string `json:"org_id" db:"org_id"`

	FlatMonthlyFeeUSD    float64 `json:"flat_monthly_fee_usd" db:"flat_monthly_fee_usd"`
	IncludedInteractions int     `json:"included_interactions" db:"included_interactions"`
	OverageRatePer1KUSD  float64 `json:"overage_rate_per_1k_usd" db:"overage_rate_per_1k_usd"`

	CurrentPeriodInteractions int `json:"current_period_interactions" db:"current_period_interactions"`

	PeriodStart time.Time `json:"period_start" db:"period_start"`
	PeriodEnd   time.Time `json:"period_end" db:"period_end"`

	Status Status `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Bill is the customer-facing charge computed from a plan. It is independent
// of the platform's internal provider costs: the customer pays per contract
// terms regardless of what their usage cost us.
type Bill struct {
	OrgID string `json:"org_id"`

	FlatFeeUSD float64 `json:"flat_fee_usd"`

	OverageInteractions int     `json:"overage_interactions"`
	OverageCostUSD      float64 `json:"overage_cost_usd"`

	TotalUSD float64 `json:"total_usd"`

	// UsagePercent is current/included, capped at 100. Excess shows up as
	// OverageInteractions, not as a percentage above 100.
	UsagePercent float64 `json:"usage_percent"`
}
