package permission

// Flag is one named boolean capability. The set is closed: route guards,
// role defaults and the resolver all consume these constants, so a typo
// fails at build time instead of silently denying access.
type Flag string

const (
	// Projects
	FlagSeeProjects    Flag = "canSeeProjects"
	FlagModifyProjects Flag = "canModifyProjects"
	FlagDeleteProjects Flag = "canDeleteProjects"

	// Tasks
	FlagSeeTasks    Flag = "canSeeTasks"
	FlagModifyTasks Flag = "canModifyTasks"
	FlagDeleteTasks Flag = "canDeleteTasks"

	// Surveys
	FlagSeeSurveys    Flag = "canSeeSurveys"
	FlagModifySurveys Flag = "canModifySurveys"
	FlagDeleteSurveys Flag = "canDeleteSurveys"
	FlagSendSurveys   Flag = "canSendSurveys"

	// Communications
	FlagSeeCommunications      Flag = "canSeeCommunications"
	FlagModifyCommunications   Flag = "canModifyCommunications"
	FlagSendBulkEmails         Flag = "canSendBulkEmails"
	FlagScheduleCommunications Flag = "canScheduleCommunications"

	// Reports
	FlagSeeReports    Flag = "canSeeReports"
	FlagExportReports Flag = "canExportReports"

	// Users
	FlagSeeUsers    Flag = "canSeeUsers"
	FlagModifyUsers Flag = "canModifyUsers"
	FlagDeleteUsers Flag = "canDeleteUsers"

	// Access administration
	FlagManageRoles       Flag = "canManageRoles"
	FlagManageGroups      Flag = "canManageGroups"
	FlagManagePermissions Flag = "canManagePermissions"

	// Settings
	FlagSeeSecuritySettings     Flag = "canSeeSecuritySettings"
	FlagModifySecuritySettings  Flag = "canModifySecuritySettings"
	FlagSeeOrganizationSettings Flag = "canSeeOrganizationSettings"
	FlagModifyOrgSettings       Flag = "canModifyOrganizationSettings"

	// Audit
	FlagSeeAuditLogs Flag = "canSeeAuditLogs"
)

// AllFlags is the closed enumeration; Resolve is total over it.
var AllFlags = []Flag{
	FlagSeeProjects, FlagModifyProjects, FlagDeleteProjects,
	FlagSeeTasks, FlagModifyTasks, FlagDeleteTasks,
	FlagSeeSurveys, FlagModifySurveys, FlagDeleteSurveys, FlagSendSurveys,
	FlagSeeCommunications, FlagModifyCommunications, FlagSendBulkEmails, FlagScheduleCommunications,
	FlagSeeReports, FlagExportReports,
	FlagSeeUsers, FlagModifyUsers, FlagDeleteUsers,
	FlagManageRoles, FlagManageGroups, FlagManagePermissions,
	FlagSeeSecuritySettings, FlagModifySecuritySettings,
	FlagSeeOrganizationSettings, FlagModifyOrgSettings,
	FlagSeeAuditLogs,
}

// mutatingFlags is the static classification consulted by enhanced checks.
// Versioned together with the enum, not inferred from names at runtime.
var mutatingFlags = map[Flag]bool{
	FlagModifyProjects:         true,
	FlagDeleteProjects:         true,
	FlagModifyTasks:            true,
	FlagDeleteTasks:            true,
	FlagModifySurveys:          true,
	FlagDeleteSurveys:          true,
	FlagSendSurveys:            true,
	FlagModifyCommunications:   true,
	FlagSendBulkEmails:         true,
	FlagScheduleCommunications: true,
	FlagModifyUsers:            true,
	FlagDeleteUsers:            true,
	FlagManageRoles:            true,
	FlagManageGroups:           true,
	FlagManagePermissions:      true,
	FlagModifySecuritySettings: true,
	FlagModifyOrgSettings:      true,
}

// Mutating reports whether the flag authorizes a write operation.
func (f Flag) Mutating() bool {
	return mutatingFlags[f]
}

// Valid reports whether the flag belongs to the closed enumeration.
func (f Flag) Valid() bool {
	for _, known := range AllFlags {
		if f == known {
			return true
		}
	}
	return false
}
