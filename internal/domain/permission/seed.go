package permission

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Default role names seeded for every organization.
const (
	RoleNameAdministrator = "Administrator"
	RoleNameManager       = "Manager"
	RoleNameMember        = "Member"
	RoleNameReadOnly      = "Read-Only"
)

// DefaultRoles is the versioned role-default seed data. It lives next to the
// flag enumeration so both change together.
func DefaultRoles() map[string]Map {
	all := make(Map, len(AllFlags))
	for _, flag := range AllFlags {
		all[flag] = true
	}

	manager := Map{
		FlagSeeProjects: true, FlagModifyProjects: true,
		FlagSeeTasks: true, FlagModifyTasks: true, FlagDeleteTasks: true,
		FlagSeeSurveys: true, FlagModifySurveys: true, FlagSendSurveys: true,
		FlagSeeCommunications: true, FlagModifyCommunications: true,
		FlagScheduleCommunications: true,
		FlagSeeReports:             true, FlagExportReports: true,
		FlagSeeUsers: true,
	}

	member := Map{
		FlagSeeProjects: true,
		FlagSeeTasks:    true, FlagModifyTasks: true,
		FlagSeeSurveys:        true,
		FlagSeeCommunications: true,
		FlagSeeReports:        true,
	}

	readOnly := Map{
		FlagSeeProjects:       true,
		FlagSeeTasks:          true,
		FlagSeeSurveys:        true,
		FlagSeeCommunications: true,
		FlagSeeReports:        true,
	}

	return map[string]Map{
		RoleNameAdministrator: all,
		RoleNameManager:       manager,
		RoleNameMember:        member,
		RoleNameReadOnly:      readOnly,
	}
}

// EnsureDefaultRoles creates any missing default role for the organization.
// Existing roles are left untouched so tenant customizations survive.
func EnsureDefaultRoles(ctx context.Context, repo Repository, orgID uuid.UUID) error {
	now := time.Now()
	for name, permissions := range DefaultRoles() {
		existing, err := repo.GetRoleByName(ctx, orgID, name)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		role := &Role{
			ID:             uuid.New(),
			OrganizationID: orgID,
			Name:           name,
			Permissions:    permissions,
			IsSystem:       true,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := repo.CreateRole(ctx, role); err != nil {
			return err
		}
		log.Info().
			Str("organization_id", orgID.String()).
			Str("role", name).
			Msg("Seeded default role")
	}
	return nil
}
