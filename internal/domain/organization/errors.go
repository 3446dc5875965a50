package organization

import "errors"

var (
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrOrganizationSuspended = errors.New("organization is suspended")
	ErrNoActiveMembership    = errors.New("no active membership in organization")
	ErrNoOrganizationContext = errors.New("no organization selected and no default set")
	ErrFeatureDisabled       = errors.New("feature is not enabled for this organization")
)
