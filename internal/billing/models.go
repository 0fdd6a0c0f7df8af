package billing

import (
	"assistant-platform/internal/plans"
	"assistant-platform/internal/pricing"
	"assistant-platform/internal/usage"
)

// Result is the per-organization billing view: what the customer is billed,
// what their usage cost us, and the margin between the two.
// Computed on demand; never persisted.
type Result struct {
	OrgID string `json:"org_id"`

	Usage usage.Totals      `json:"usage"`
	Cost  pricing.Breakdown `json:"cost"`
	Bill  plans.Bill        `json:"bill"`

	// MarginUSD = customer bill - internal cost.
	MarginUSD float64 `json:"margin_usd"`

	// FullyLoadedPerAIMinuteUSD is (variable + fixed cost) / AI minutes;
	// 0 when there are no AI minutes.
	FullyLoadedPerAIMinuteUSD float64 `json:"fully_loaded_per_ai_minute_usd"`

	// Display-currency figures, converted once at this boundary.
	DisplayCurrency  string  `json:"display_currency"`
	BillDisplay      float64 `json:"bill_display"`
	CostDisplay      float64 `json:"cost_display"`
	MarginDisplay    float64 `json:"margin_display"`
}

// Summary is the platform-wide profitability rollup across organizations.
type Summary struct {
	Organizations int `json:"organizations"`

	TotalRevenueUSD float64 `json:"total_revenue_usd"`
	TotalCostUSD    float64 `json:"total_cost_usd"`
	GrossProfitUSD  float64 `json:"gross_profit_usd"`

	// GrossMarginPercent is profit/revenue*100, 0 when revenue is 0.
	GrossMarginPercent float64 `json:"gross_margin_percent"`

	AvgBillPerOrgUSD float64 `json:"avg_bill_per_org_usd"`

	DisplayCurrency     string  `json:"display_currency"`
	TotalRevenueDisplay float64 `json:"total_revenue_display"`
	TotalCostDisplay    float64 `json:"total_cost_display"`
	GrossProfitDisplay  float64 `json:"gross_profit_display"`
}
