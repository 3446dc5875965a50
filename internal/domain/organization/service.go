package organization

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TenantContext is the authoritative organization scope for a request.
// Every entity read and write downstream is parameterized by OrganizationID.
type TenantContext struct {
	OrganizationID uuid.UUID     `json:"organization_id"`
	OrgRole        OrgRole       `json:"org_role"`
	Organization   *Organization `json:"-"`
}

// DefaultOrgProvider supplies a user's stored default organization.
type DefaultOrgProvider interface {
	DefaultOrganizationID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// Service resolves and manages tenant context
type Service struct {
	repo       Repository
	defaultOrg DefaultOrgProvider
}

// NewService creates organization service
func NewService(repo Repository, defaultOrg DefaultOrgProvider) *Service {
	return &Service{repo: repo, defaultOrg: defaultOrg}
}

// ResolveTenant derives the authoritative organization for a request.
// requestedOrgID comes from the X-Organization-ID header; uuid.Nil falls
// back to the user's stored default. Selection is always explicit — there
// is no "first membership wins". Fails closed on missing membership,
// inactive membership, unknown or suspended organization.
func (s *Service) ResolveTenant(ctx context.Context, userID, requestedOrgID uuid.UUID) (*TenantContext, error) {
	orgID := requestedOrgID
	if orgID == uuid.Nil {
		var err error
		orgID, err = s.defaultOrg.DefaultOrganizationID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if orgID == uuid.Nil {
			return nil, ErrNoOrganizationContext
		}
	}

	membership, err := s.repo.GetMembership(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	if membership == nil || !membership.IsActive {
		return nil, ErrNoActiveMembership
	}

	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}
	if !org.IsActive() {
		return nil, ErrOrganizationSuspended
	}

	return &TenantContext{
		OrganizationID: org.ID,
		OrgRole:        membership.OrgRole,
		Organization:   org,
	}, nil
}

// Create creates an organization with the creator as owner
func (s *Service) Create(ctx context.Context, name string, ownerID uuid.UUID) (*Organization, error) {
	now := time.Now()
	org := &Organization{
		ID:              uuid.New(),
		Name:            name,
		Status:          StatusActive,
		EnabledFeatures: FeatureMap{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, org); err != nil {
		return nil, err
	}

	membership := &Membership{
		ID:             uuid.New(),
		UserID:         ownerID,
		OrganizationID: org.ID,
		OrgRole:        OrgRoleOwner,
		IsActive:       true,
		CreatedAt:      now,
	}
	if err := s.repo.AddMembership(ctx, membership); err != nil {
		return nil, err
	}
	return org, nil
}

// GetByID returns an organization
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	return s.repo.GetByID(ctx, id)
}

// Exists reports whether an organization exists. Satisfies the support
// session service's organization check.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	org, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return org != nil, nil
}

// ListForUser returns the organizations the user actively belongs to
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*Organization, error) {
	memberships, err := s.repo.ListMembershipsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	orgs := make([]*Organization, 0, len(memberships))
	for _, m := range memberships {
		org, err := s.repo.GetByID(ctx, m.OrganizationID)
		if err != nil {
			return nil, err
		}
		if org != nil {
			orgs = append(orgs, org)
		}
	}
	return orgs, nil
}

// RequireFeature fails closed unless the organization has the feature enabled
func (s *Service) RequireFeature(ctx context.Context, orgID uuid.UUID, feature string) error {
	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return err
	}
	if org == nil {
		return ErrOrganizationNotFound
	}
	if !org.FeatureEnabled(feature) {
		return ErrFeatureDisabled
	}
	return nil
}
