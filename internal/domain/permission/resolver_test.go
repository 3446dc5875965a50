package permission

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type fakeRepo struct {
	Repository
	role     *Role
	groups   []*UserGroup
	override *Override
}

func (f *fakeRepo) GetUserRole(ctx context.Context, userID uuid.UUID) (*Role, error) {
	return f.role, nil
}
func (f *fakeRepo) ListGroupsForUser(ctx context.Context, userID uuid.UUID) ([]*UserGroup, error) {
	return f.groups, nil
}
func (f *fakeRepo) GetOverride(ctx context.Context, userID uuid.UUID) (*Override, error) {
	return f.override, nil
}

type fakeSupportState struct {
	active   bool
	readOnly bool
	calls    int
}

func (f *fakeSupportState) IsReadOnlyActive(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	f.calls++
	return f.readOnly, nil
}

func (f *fakeSupportState) ImpersonationState(ctx context.Context, sessionID uuid.UUID) (bool, bool, error) {
	f.calls++
	return f.active, f.readOnly, nil
}

func TestResolve_OverrideBeatsGroupBeatsRole(t *testing.T) {
	repo := &fakeRepo{
		role: &Role{
			Name:        "Member",
			Permissions: Map{FlagSeeProjects: true, FlagModifyProjects: false, FlagDeleteProjects: false},
		},
		groups: []*UserGroup{
			{Name: "Editors", Permissions: Map{FlagModifyProjects: true}},
		},
		override: &Override{
			Permissions: Map{FlagModifyProjects: false, FlagDeleteProjects: true},
		},
	}
	resolver := NewResolver(repo, nil)

	set, err := resolver.Resolve(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if !set.Has(FlagSeeProjects) {
		t.Error("role grant should survive")
	}
	if set.Has(FlagModifyProjects) {
		t.Error("override deny should beat group grant")
	}
	if !set.Has(FlagDeleteProjects) {
		t.Error("override grant should beat role deny")
	}
}

func TestResolve_GroupGrantsAreUnionOr(t *testing.T) {
	repo := &fakeRepo{
		role: &Role{Name: "Member", Permissions: Map{}},
		groups: []*UserGroup{
			{Name: "A", Permissions: Map{FlagSeeTasks: true}},
			{Name: "B", Permissions: Map{FlagSeeTasks: false, FlagSeeReports: true}},
		},
	}
	resolver := NewResolver(repo, nil)

	set, err := resolver.Resolve(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if !set.Has(FlagSeeTasks) {
		t.Error("a single group grant should be enough")
	}
	if !set.Has(FlagSeeReports) {
		t.Error("grants from all groups should apply")
	}
}

func TestResolve_NoRoleFailsClosed(t *testing.T) {
	resolver := NewResolver(&fakeRepo{}, nil)

	set, err := resolver.Resolve(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	for _, flag := range AllFlags {
		if set.Has(flag) {
			t.Fatalf("flag %s granted without any role", flag)
		}
	}
	if len(set) != len(AllFlags) {
		t.Errorf("resolved set should be total over all flags, got %d of %d", len(set), len(AllFlags))
	}
}

func TestResolve_UnknownOverrideFlagIgnored(t *testing.T) {
	repo := &fakeRepo{
		role:     &Role{Name: "Member", Permissions: Map{}},
		override: &Override{Permissions: Map{"canDoSomethingUnknown": true}},
	}
	resolver := NewResolver(repo, nil)

	set, err := resolver.Resolve(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if set.Has("canDoSomethingUnknown") {
		t.Error("unknown flags must not enter the resolved set")
	}
}

func TestCheckEnhanced_ReadOnlySessionForcesMutatingFalse(t *testing.T) {
	repo := &fakeRepo{
		role: &Role{Name: "Administrator", Permissions: Map{FlagModifyProjects: true, FlagSeeProjects: true}},
	}
	state := &fakeSupportState{readOnly: true}
	resolver := NewResolver(repo, state)
	sessionID := uuid.New()

	allowed, err := resolver.CheckEnhanced(context.Background(), uuid.New(), FlagModifyProjects, sessionID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if allowed {
		t.Error("mutating flag must be denied under a read-only session")
	}

	allowed, err = resolver.CheckEnhanced(context.Background(), uuid.New(), FlagSeeProjects, sessionID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !allowed {
		t.Error("non-mutating flag should pass through")
	}
}

func TestCheckEnhanced_FreshStateEachCall(t *testing.T) {
	repo := &fakeRepo{
		role: &Role{Name: "Administrator", Permissions: Map{FlagModifyProjects: true}},
	}
	state := &fakeSupportState{readOnly: true}
	resolver := NewResolver(repo, state)
	sessionID := uuid.New()

	if allowed, _ := resolver.CheckEnhanced(context.Background(), uuid.New(), FlagModifyProjects, sessionID); allowed {
		t.Fatal("expected denial while read-only")
	}

	// Mode toggled to write; the very next check must observe it.
	state.readOnly = false
	allowed, err := resolver.CheckEnhanced(context.Background(), uuid.New(), FlagModifyProjects, sessionID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !allowed {
		t.Error("toggle to write mode must take effect on the next check")
	}
	if state.calls != 2 {
		t.Errorf("support state consulted %d times, want 2", state.calls)
	}
}

func TestCheckEnhanced_NoSessionSkipsSupportState(t *testing.T) {
	repo := &fakeRepo{
		role: &Role{Name: "Administrator", Permissions: Map{FlagModifyProjects: true}},
	}
	state := &fakeSupportState{readOnly: true}
	resolver := NewResolver(repo, state)

	allowed, err := resolver.CheckEnhanced(context.Background(), uuid.New(), FlagModifyProjects, uuid.Nil)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !allowed {
		t.Error("no bound session means the plain resolution applies")
	}
	if state.calls != 0 {
		t.Errorf("support state consulted %d times, want 0", state.calls)
	}
}
