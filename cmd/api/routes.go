package main

import (
	"assistant-platform/internal/httpapi"
	"assistant-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, authMW gin.HandlerFunc, h httpapi.Handlers) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// protected API group
	v1 := r.Group("/v1")

	// AUTH routes (token issuance) stay outside the auth middleware.
	v1.POST("/auth/login", h.Login)

	v1.Use(authMW)
	{
		// ORG routes: usage and billing views, plan management.
		orgs := v1.Group("/orgs/:org_id")
		orgs.Use(rbac.RequireOrg())
		{
			read := orgs.Group("")
			read.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleAnalyst, rbac.RoleFinance, rbac.RoleSuperAdmin))
			{
				read.GET("/usage", h.GetOrgUsage)
				read.GET("/billing", h.GetOrgBilling)
				read.GET("/plan", h.GetPlan)
			}

			// Plan changes are admin actions and are audit-logged.
			write := orgs.Group("")
			write.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleSuperAdmin))
			{
				write.PUT("/plan", h.UpsertPlan)
			}
		}

		// PLATFORM routes: cross-org profitability. Finance only.
		platform := v1.Group("/platform")
		platform.Use(rbac.RequireOrg())
		platform.Use(rbac.RequireAnyRole(rbac.RoleFinance, rbac.RoleSuperAdmin))
		{
			platform.GET("/summary", h.GetPlatformSummary)
		}

		// METERING routes: provider usage snapshots.
		meteringGroup := v1.Group("/metering")
		meteringGroup.Use(rbac.RequireOrg())
		meteringGroup.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleFinance, rbac.RoleSuperAdmin))
		{
			meteringGroup.GET("/tts", h.GetTTSMetering)
		}
	}
}
