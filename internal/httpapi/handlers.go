package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"assistant-platform/internal/audit"
	"assistant-platform/internal/auth"
	"assistant-platform/internal/billing"
	"assistant-platform/internal/metering"
	"assistant-platform/internal/plans"
	"assistant-platform/internal/rbac"
	"assistant-platform/internal/usage"
	"assistant-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth     *auth.Manager
	Billing  *billing.Service
	Usage    *usage.Aggregator
	Plans    *plans.Service
	Audit    *audit.Service
	Metering *metering.CachedReader
}

// --- Auth ---

type loginRequest struct {
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
	Role   string `json:"role"`
}

// Login issues a JWT token pair.
//
// NOTE: This is a skeleton-only endpoint. Real systems must validate credentials.
func (h Handlers) Login(c *gin.Context) {
	if h.Auth == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.OrgID == "" || req.Role == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id, org_id, role required"})
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.OrgID, req.Role)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

// --- Usage ---

// GetOrgUsage returns aggregated usage totals for one organization.
func (h Handlers) GetOrgUsage(c *gin.Context) {
	if h.Usage == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "usage not configured"})
		return
	}
	orgID, ok := resolveOrg(c)
	if !ok {
		return
	}
	from, to, ok := parsePeriod(c)
	if !ok {
		return
	}
	totals, err := h.Usage.OrgTotals(c.Request.Context(), usage.TotalsRequest{OrgID: orgID, From: from, To: to})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "usage aggregation failed"})
		return
	}
	c.JSON(http.StatusOK, totals)
}

// --- Billing ---

// GetOrgBilling returns the billing result for one organization:
// internal cost, customer bill, and margin, in USD and display currency.
func (h Handlers) GetOrgBilling(c *gin.Context) {
	if h.Billing == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "billing not configured"})
		return
	}
	orgID, ok := resolveOrg(c)
	if !ok {
		return
	}
	from, to, ok := parsePeriod(c)
	if !ok {
		return
	}
	res, err := h.Billing.Organization(c.Request.Context(), orgID, billing.Period{From: from, To: to})
	if err != nil {
		if errors.Is(err, plans.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no plan for organization"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "billing computation failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetPlatformSummary returns the platform-wide profitability rollup.
// RBAC: finance or super_admin only (enforced in routes).
func (h Handlers) GetPlatformSummary(c *gin.Context) {
	if h.Billing == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "billing not configured"})
		return
	}
	from, to, ok := parsePeriod(c)
	if !ok {
		return
	}
	sum, err := h.Billing.Platform(c.Request.Context(), billing.Period{From: from, To: to})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "summary computation failed"})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// --- Plans ---

func (h Handlers) GetPlan(c *gin.Context) {
	if h.Plans == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "plans not configured"})
		return
	}
	orgID, ok := resolveOrg(c)
	if !ok {
		return
	}
	p, err := h.Plans.Get(c.Request.Context(), orgID)
	if err != nil {
		if errors.Is(err, plans.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "plan not found"})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "plan lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": p, "bill": plans.ComputeBill(p)})
}

type upsertPlanRequest struct {
	FlatMonthlyFeeUSD    float64 `json:"flat_monthly_fee_usd"`
	IncludedInteractions int     `json:"included_interactions"`
	OverageRatePer1KUSD  float64 `json:"overage_rate_per_1k_usd"`

	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`

	Status string `json:"status"`
}

// UpsertPlan creates or updates an organization's plan terms.
// RBAC: owner or super_admin. The change is audit-logged.
func (h Handlers) UpsertPlan(c *gin.Context) {
	if h.Plans == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "plans not configured"})
		return
	}
	orgID, ok := resolveOrg(c)
	if !ok {
		return
	}
	var req upsertPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	// Preserve the running counter on updates; new plans start at zero.
	// A failed lookup must abort: defaulting to zero here would silently
	// reset the period counter and undercharge the customer.
	current := 0
	existing, err := h.Plans.Get(c.Request.Context(), orgID)
	switch {
	case err == nil:
		current = existing.CurrentPeriodInteractions
	case errors.Is(err, plans.ErrNotFound):
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "plan lookup failed"})
		return
	}

	p, err := h.Plans.Upsert(c.Request.Context(), plans.Plan{
		OrgID:                     orgID,
		FlatMonthlyFeeUSD:         req.FlatMonthlyFeeUSD,
		IncludedInteractions:      req.IncludedInteractions,
		OverageRatePer1KUSD:       req.OverageRatePer1KUSD,
		CurrentPeriodInteractions: current,
		PeriodStart:               req.PeriodStart,
		PeriodEnd:                 req.PeriodEnd,
		Status:                    plans.Status(req.Status),
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.Audit != nil {
		actorID, _ := auth.UserID(c.Request.Context())
		actorRole, _ := auth.Role(c.Request.Context())
		meta, _ := json.Marshal(p)
		// Best-effort: a failed audit write must not fail the plan change.
		if err := h.Audit.LogPlanChange(c.Request.Context(), orgID, actorID, actorRole, c.ClientIP(), string(meta)); err != nil {
			logger.FromGin(c).Warn("audit write failed", "err", err)
		}
	}

	c.JSON(http.StatusOK, p)
}

// --- Metering ---

// GetTTSMetering returns the cached TTS provider usage snapshot.
func (h Handlers) GetTTSMetering(c *gin.Context) {
	if h.Metering == nil {
		c.AbortWithStatusJSON(http.StatusNotImplemented, gin.H{"error": "metering not configured"})
		return
	}
	s, err := h.Metering.Snapshot(c.Request.Context())
	if err != nil {
		if errors.Is(err, metering.ErrUnavailable) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "snapshot refresh in progress"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "provider unreachable"})
		return
	}
	c.JSON(http.StatusOK, s)
}

// --- helpers ---

// resolveOrg returns the :org_id path param, enforcing that non-platform
// roles only read their own organization.
func resolveOrg(c *gin.Context) (string, bool) {
	orgID := c.Param("org_id")
	if orgID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "org_id required"})
		return "", false
	}
	callerOrg, err := auth.OrgID(c.Request.Context())
	if err != nil || callerOrg == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "org_id required"})
		return "", false
	}
	role, _ := auth.Role(c.Request.Context())
	if orgID != callerOrg && !rbac.IsSuperAdmin(role) && role != rbac.RoleFinance {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return "", false
	}
	return orgID, true
}

// parsePeriod reads from/to query params (RFC3339 or YYYY-MM-DD), defaulting
// to the last 30 days. An inverted range is passed through: the aggregator
// treats it as an empty range, not an error.
func parsePeriod(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if v := c.Query("from"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
			return time.Time{}, time.Time{}, false
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
			return time.Time{}, time.Time{}, false
		}
		to = t
	}
	return from, to, true
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
