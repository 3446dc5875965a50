package permission

import "errors"

var (
	ErrRoleNotFound      = errors.New("role not found")
	ErrGroupNotFound     = errors.New("group not found")
	ErrOverrideNotFound  = errors.New("override not found")
	ErrUnknownFlag       = errors.New("unknown permission flag")
	ErrSystemRole        = errors.New("system roles cannot be deleted")
	ErrRoleInUse         = errors.New("role is referenced by users")
	ErrAlreadyMember     = errors.New("user is already a member of this group")
	ErrMembershipMissing = errors.New("user is not a member of this group")
)
