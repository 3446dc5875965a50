package admin

// Permission represents an operator permission
type Permission string

const (
	// Support sessions
	PermCreateSupportSessions Permission = "support.sessions.create"
	PermManageSupportSessions Permission = "support.sessions.manage"

	// Audit trail
	PermViewAuditLogs Permission = "audit.view"

	// Tenant administration
	PermViewOrganizations   Permission = "organizations.view"
	PermManageOrganizations Permission = "organizations.manage"

	// Operator administration
	PermManageOperators Permission = "operators.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleSuperAdmin: {
		PermCreateSupportSessions, PermManageSupportSessions,
		PermViewAuditLogs,
		PermViewOrganizations, PermManageOrganizations,
		PermManageOperators,
	},
	RoleSupport: {
		PermCreateSupportSessions, PermManageSupportSessions,
		PermViewAuditLogs,
		PermViewOrganizations,
	},
}

// RoleHierarchy defines role levels (higher = more permissions)
var RoleHierarchy = map[Role]int{
	RoleSuperAdmin: 100,
	RoleSupport:    40,
}

// CanManage checks if role1 can manage role2
func CanManage(role1, role2 Role) bool {
	return RoleHierarchy[role1] > RoleHierarchy[role2]
}
