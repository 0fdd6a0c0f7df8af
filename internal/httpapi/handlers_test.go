package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"assistant-platform/internal/auth"
	"assistant-platform/internal/billing"
	"assistant-platform/internal/plans"
	"assistant-platform/internal/pricing"
	"assistant-platform/internal/usage"

	"github.com/gin-gonic/gin"
)

func identity(userID, orgID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := auth.WithIdentity(c.Request.Context(), userID, orgID, role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func testRouter(t *testing.T) (*gin.Engine, Handlers, *plans.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	usageRepo := usage.NewMemoryRepo()
	usageRepo.Records = []usage.Record{
		{ID: "r1", OrgID: "org-1", Channel: usage.ChannelVoice, DurationSeconds: 120, CreatedAt: time.Now().UTC()},
	}
	agg := usage.NewAggregator(usageRepo, nil)
	planSvc := plans.NewService(plans.NewMemoryRepo())
	billingSvc := billing.NewService(agg, planSvc, pricing.Default())

	h := Handlers{Billing: billingSvc, Usage: agg, Plans: planSvc}
	return gin.New(), h, planSvc
}

func TestGetOrgUsage_OK(t *testing.T) {
	r, h, _ := testRouter(t)
	r.GET("/v1/orgs/:org_id/usage", identity("u", "org-1", "analyst"), h.GetOrgUsage)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/orgs/org-1/usage", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var totals usage.Totals
	if err := json.Unmarshal(w.Body.Bytes(), &totals); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if totals.AIMinutes != 2 {
		t.Fatalf("expected 2 AI minutes, got %v", totals.AIMinutes)
	}
}

func TestGetOrgUsage_CrossOrgForbidden(t *testing.T) {
	r, h, _ := testRouter(t)
	r.GET("/v1/orgs/:org_id/usage", identity("u", "org-2", "analyst"), h.GetOrgUsage)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/orgs/org-1/usage", nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for cross-org read, got %d", w.Code)
	}
}

func TestGetOrgUsage_FinanceReadsAnyOrg(t *testing.T) {
	r, h, _ := testRouter(t)
	r.GET("/v1/orgs/:org_id/usage", identity("u", "org-2", "finance"), h.GetOrgUsage)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/orgs/org-1/usage", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for finance cross-org read, got %d", w.Code)
	}
}

func TestGetOrgUsage_BadPeriod(t *testing.T) {
	r, h, _ := testRouter(t)
	r.GET("/v1/orgs/:org_id/usage", identity("u", "org-1", "analyst"), h.GetOrgUsage)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/orgs/org-1/usage?from=not-a-date", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", w.Code)
	}
}

func TestGetOrgBilling_NoPlanIs404(t *testing.T) {
	r, h, _ := testRouter(t)
	r.GET("/v1/orgs/:org_id/billing", identity("u", "org-1", "owner"), h.GetOrgBilling)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/orgs/org-1/billing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a plan, got %d", w.Code)
	}
}

func TestUpsertPlan_PreservesCounter(t *testing.T) {
	r, h, planSvc := testRouter(t)
	r.PUT("/v1/orgs/:org_id/plan", identity("u", "org-1", "owner"), h.UpsertPlan)

	seed := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/v1/orgs/org-1/plan", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	if w := seed(`{"flat_monthly_fee_usd": 500, "included_interactions": 5000, "overage_rate_per_1k_usd": 50}`); w.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if _, err := planSvc.RecordInteractions(context.Background(), "org-1", 42); err != nil {
		t.Fatalf("record: %v", err)
	}

	if w := seed(`{"flat_monthly_fee_usd": 600, "included_interactions": 5000, "overage_rate_per_1k_usd": 50}`); w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	p, err := planSvc.Get(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.FlatMonthlyFeeUSD != 600 {
		t.Fatalf("expected updated fee, got %v", p.FlatMonthlyFeeUSD)
	}
	if p.CurrentPeriodInteractions != 42 {
		t.Fatalf("expected preserved counter, got %d", p.CurrentPeriodInteractions)
	}
}

// flakyPlanRepo simulates a repository whose reads fail transiently.
type flakyPlanRepo struct {
	*plans.MemoryRepo
	failGet bool
}

func (r *flakyPlanRepo) Get(ctx context.Context, orgID string) (plans.Plan, error) {
	if r.failGet {
		return plans.Plan{}, errors.New("connection reset by peer")
	}
	return r.MemoryRepo.Get(ctx, orgID)
}

func TestUpsertPlan_LookupFailureAbortsAndKeepsCounter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	repo := &flakyPlanRepo{MemoryRepo: plans.NewMemoryRepo()}
	planSvc := plans.NewService(repo)
	h := Handlers{Plans: planSvc}

	r := gin.New()
	r.PUT("/v1/orgs/:org_id/plan", identity("u", "org-1", "owner"), h.UpsertPlan)

	ctx := context.Background()
	if _, err := planSvc.Upsert(ctx, plans.Plan{OrgID: "org-1", FlatMonthlyFeeUSD: 500, IncludedInteractions: 5000, OverageRatePer1KUSD: 50}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := planSvc.RecordInteractions(ctx, "org-1", 4200); err != nil {
		t.Fatalf("record: %v", err)
	}

	repo.failGet = true
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/orgs/org-1/plan",
		strings.NewReader(`{"flat_monthly_fee_usd": 600, "included_interactions": 5000, "overage_rate_per_1k_usd": 50}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on lookup failure, got %d", w.Code)
	}

	repo.failGet = false
	p, err := planSvc.Get(ctx, "org-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.CurrentPeriodInteractions != 4200 {
		t.Fatalf("counter clobbered: expected 4200 preserved, got %d", p.CurrentPeriodInteractions)
	}
	if p.FlatMonthlyFeeUSD != 500 {
		t.Fatalf("expected plan terms untouched, got fee %v", p.FlatMonthlyFeeUSD)
	}
}

func TestGetTTSMetering_NotConfigured(t *testing.T) {
	r, h, _ := testRouter(t)
	r.GET("/v1/metering/tts", identity("u", "org-1", "finance"), h.GetTTSMetering)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/metering/tts", nil))
	if w.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501 without metering, got %d", w.Code)
	}
}
