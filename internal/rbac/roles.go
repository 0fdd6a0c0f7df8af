package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleOwner      = "owner"
	RoleAnalyst    = "analyst"
	RoleFinance    = "finance"
	RoleSupport    = "support"
	RoleSuperAdmin = "super_admin"
	RoleBillingJob = "billing_job" // hidden role for the billing-cycle job
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }

func IsHiddenRole(role string) bool { return role == RoleBillingJob }
