package organization

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type fakeRepo struct {
	orgs        map[uuid.UUID]*Organization
	memberships map[uuid.UUID]map[uuid.UUID]*Membership // userID -> orgID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orgs:        make(map[uuid.UUID]*Organization),
		memberships: make(map[uuid.UUID]map[uuid.UUID]*Membership),
	}
}

func (f *fakeRepo) Create(ctx context.Context, org *Organization) error {
	f.orgs[org.ID] = org
	return nil
}
func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	return f.orgs[id], nil
}
func (f *fakeRepo) List(ctx context.Context) ([]*Organization, error) {
	var out []*Organization
	for _, org := range f.orgs {
		out = append(out, org)
	}
	return out, nil
}
func (f *fakeRepo) UpdateFeatures(ctx context.Context, id uuid.UUID, features FeatureMap) error {
	if org, ok := f.orgs[id]; ok {
		org.EnabledFeatures = features
	}
	return nil
}
func (f *fakeRepo) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if org, ok := f.orgs[id]; ok {
		org.Status = status
	}
	return nil
}
func (f *fakeRepo) AddMembership(ctx context.Context, m *Membership) error {
	if f.memberships[m.UserID] == nil {
		f.memberships[m.UserID] = make(map[uuid.UUID]*Membership)
	}
	f.memberships[m.UserID][m.OrganizationID] = m
	return nil
}
func (f *fakeRepo) GetMembership(ctx context.Context, userID, orgID uuid.UUID) (*Membership, error) {
	return f.memberships[userID][orgID], nil
}
func (f *fakeRepo) ListMembershipsForUser(ctx context.Context, userID uuid.UUID) ([]*Membership, error) {
	var out []*Membership
	for _, m := range f.memberships[userID] {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeDefaultOrg struct {
	byUser map[uuid.UUID]uuid.UUID
}

func (f *fakeDefaultOrg) DefaultOrganizationID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return f.byUser[userID], nil
}

func TestResolveTenant_ExplicitHeaderWins(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	defaults := &fakeDefaultOrg{byUser: map[uuid.UUID]uuid.UUID{}}
	svc := NewService(repo, defaults)

	defaultOrg, _ := svc.Create(context.Background(), "Default Org", userID)
	requestedOrg, _ := svc.Create(context.Background(), "Requested Org", userID)
	defaults.byUser[userID] = defaultOrg.ID

	tc, err := svc.ResolveTenant(context.Background(), userID, requestedOrg.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if tc.OrganizationID != requestedOrg.ID {
		t.Errorf("resolved %s, want explicitly requested %s", tc.OrganizationID, requestedOrg.ID)
	}
	if tc.OrgRole != OrgRoleOwner {
		t.Errorf("org role = %s, want %s", tc.OrgRole, OrgRoleOwner)
	}
}

func TestResolveTenant_FallsBackToDefault(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	defaults := &fakeDefaultOrg{byUser: map[uuid.UUID]uuid.UUID{}}
	svc := NewService(repo, defaults)

	org, _ := svc.Create(context.Background(), "Default Org", userID)
	defaults.byUser[userID] = org.ID

	tc, err := svc.ResolveTenant(context.Background(), userID, uuid.Nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if tc.OrganizationID != org.ID {
		t.Errorf("resolved %s, want default %s", tc.OrganizationID, org.ID)
	}
}

func TestResolveTenant_FailsClosed(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	defaults := &fakeDefaultOrg{byUser: map[uuid.UUID]uuid.UUID{}}
	svc := NewService(repo, defaults)

	// No default, no header.
	if _, err := svc.ResolveTenant(context.Background(), userID, uuid.Nil); err != ErrNoOrganizationContext {
		t.Fatalf("no context: got %v, want %v", err, ErrNoOrganizationContext)
	}

	// Requested org the user is not a member of.
	other, _ := svc.Create(context.Background(), "Other Org", uuid.New())
	if _, err := svc.ResolveTenant(context.Background(), userID, other.ID); err != ErrNoActiveMembership {
		t.Fatalf("foreign org: got %v, want %v", err, ErrNoActiveMembership)
	}

	// Inactive membership.
	org, _ := svc.Create(context.Background(), "My Org", userID)
	repo.memberships[userID][org.ID].IsActive = false
	if _, err := svc.ResolveTenant(context.Background(), userID, org.ID); err != ErrNoActiveMembership {
		t.Fatalf("inactive membership: got %v, want %v", err, ErrNoActiveMembership)
	}
	repo.memberships[userID][org.ID].IsActive = true

	// Suspended organization.
	repo.orgs[org.ID].Status = StatusSuspended
	if _, err := svc.ResolveTenant(context.Background(), userID, org.ID); err != ErrOrganizationSuspended {
		t.Fatalf("suspended org: got %v, want %v", err, ErrOrganizationSuspended)
	}
}

func TestRequireFeature_FailsClosed(t *testing.T) {
	repo := newFakeRepo()
	userID := uuid.New()
	svc := NewService(repo, &fakeDefaultOrg{byUser: map[uuid.UUID]uuid.UUID{}})

	org, _ := svc.Create(context.Background(), "Org", userID)

	if err := svc.RequireFeature(context.Background(), org.ID, "surveys"); err != ErrFeatureDisabled {
		t.Fatalf("absent feature: got %v, want %v", err, ErrFeatureDisabled)
	}

	repo.orgs[org.ID].EnabledFeatures = FeatureMap{"surveys": true}
	if err := svc.RequireFeature(context.Background(), org.ID, "surveys"); err != nil {
		t.Fatalf("enabled feature: %v", err)
	}

	repo.orgs[org.ID].EnabledFeatures = FeatureMap{"surveys": false}
	if err := svc.RequireFeature(context.Background(), org.ID, "surveys"); err != ErrFeatureDisabled {
		t.Fatalf("disabled feature: got %v, want %v", err, ErrFeatureDisabled)
	}

	if err := svc.RequireFeature(context.Background(), uuid.New(), "surveys"); err != ErrOrganizationNotFound {
		t.Fatalf("unknown org: got %v, want %v", err, ErrOrganizationNotFound)
	}
}
