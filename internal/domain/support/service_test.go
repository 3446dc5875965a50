package support

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeRepo struct {
	sessions map[uuid.UUID]*Session
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[uuid.UUID]*Session)}
}

func (f *fakeRepo) CreateSession(ctx context.Context, s *Session) error {
	copied := *s
	f.sessions[s.ID] = &copied
	return nil
}
func (f *fakeRepo) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}
func (f *fakeRepo) UpdateSessionType(ctx context.Context, id uuid.UUID, t SessionType) error {
	if s, ok := f.sessions[id]; ok {
		s.SessionType = t
	}
	return nil
}
func (f *fakeRepo) DeactivateSession(ctx context.Context, id uuid.UUID) error {
	if s, ok := f.sessions[id]; ok {
		s.IsActive = false
	}
	return nil
}
func (f *fakeRepo) ListSessionsByOperator(ctx context.Context, operatorID uuid.UUID) ([]*Session, error) {
	var out []*Session
	for _, s := range f.sessions {
		if s.SuperAdminUserID == operatorID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	entries []*AuditLog
}

func (f *fakeAuditRepo) Insert(ctx context.Context, entry *AuditLog) error {
	f.entries = append(f.entries, entry)
	return nil
}
func (f *fakeAuditRepo) List(ctx context.Context, filter AuditFilter) ([]*AuditLog, error) {
	return f.entries, nil
}

func (f *fakeAuditRepo) lastAction() string {
	if len(f.entries) == 0 {
		return ""
	}
	return f.entries[len(f.entries)-1].Action
}

type fakeOrgs struct {
	known map[uuid.UUID]bool
}

func (f *fakeOrgs) Exists(ctx context.Context, orgID uuid.UUID) (bool, error) {
	return f.known[orgID], nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo, *fakeAuditRepo, uuid.UUID) {
	t.Helper()
	repo := newFakeRepo()
	audit := &fakeAuditRepo{}
	orgID := uuid.New()
	orgs := &fakeOrgs{known: map[uuid.UUID]bool{orgID: true}}
	svc := NewService(repo, orgs, NewAuditLogger(audit))
	return svc, repo, audit, orgID
}

func validParams(orgID uuid.UUID) CreateParams {
	return CreateParams{
		OrganizationID:  orgID,
		SessionType:     SessionReadOnly,
		Reason:          "Investigating ticket #4821",
		DurationMinutes: 60,
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _, orgID := newTestService(t)
	operator := uuid.New()

	cases := []struct {
		name    string
		mutate  func(*CreateParams)
		wantErr error
	}{
		{"reason too short", func(p *CreateParams) { p.Reason = "short" }, ErrReasonTooShort},
		{"reason whitespace", func(p *CreateParams) { p.Reason = "     \t      " }, ErrReasonTooShort},
		{"duration below minimum", func(p *CreateParams) { p.DurationMinutes = 10 }, ErrInvalidDuration},
		{"duration above maximum", func(p *CreateParams) { p.DurationMinutes = 481 }, ErrInvalidDuration},
		{"bad session type", func(p *CreateParams) { p.SessionType = "admin_mode" }, ErrInvalidSessionType},
		{"unknown organization", func(p *CreateParams) { p.OrganizationID = uuid.New() }, ErrOrganizationNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams(orgID)
			tc.mutate(&p)
			if _, err := svc.Create(context.Background(), operator, p); err != tc.wantErr {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreate_BoundaryDurationsAccepted(t *testing.T) {
	svc, _, audit, orgID := newTestService(t)
	operator := uuid.New()

	for _, minutes := range []int{15, 480} {
		p := validParams(orgID)
		p.DurationMinutes = minutes
		s, err := svc.Create(context.Background(), operator, p)
		if err != nil {
			t.Fatalf("duration %d rejected: %v", minutes, err)
		}
		want := s.CreatedAt.Add(time.Duration(minutes) * time.Minute)
		if !s.ExpiresAt.Equal(want) {
			t.Errorf("expires_at = %v, want %v", s.ExpiresAt, want)
		}
	}
	if audit.lastAction() != ActionSessionCreated {
		t.Errorf("last audit action = %q, want %q", audit.lastAction(), ActionSessionCreated)
	}
}

func TestToggleMode_OwnershipAndExpiry(t *testing.T) {
	svc, repo, _, orgID := newTestService(t)
	owner := uuid.New()

	s, err := svc.Create(context.Background(), owner, validParams(orgID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.ToggleMode(context.Background(), uuid.New(), s.ID, true, "", ""); err != ErrNotSessionOwner {
		t.Fatalf("foreign operator: got %v, want %v", err, ErrNotSessionOwner)
	}

	updated, err := svc.ToggleMode(context.Background(), owner, s.ID, true, "", "")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if updated.SessionType != SessionSupportMode {
		t.Errorf("session type = %s, want %s", updated.SessionType, SessionSupportMode)
	}
	if repo.sessions[s.ID].SessionType != SessionSupportMode {
		t.Error("toggle must be persisted synchronously")
	}

	repo.sessions[s.ID].ExpiresAt = time.Now().Add(-time.Minute)
	if _, err := svc.ToggleMode(context.Background(), owner, s.ID, false, "", ""); err != ErrSessionExpired {
		t.Fatalf("expired session: got %v, want %v", err, ErrSessionExpired)
	}
}

func TestEnd_ReportsNotFoundWhenAlreadyEnded(t *testing.T) {
	svc, _, audit, orgID := newTestService(t)
	owner := uuid.New()

	s, err := svc.Create(context.Background(), owner, validParams(orgID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.End(context.Background(), owner, s.ID, "", ""); err != nil {
		t.Fatalf("end: %v", err)
	}
	if audit.lastAction() != ActionSessionEnded {
		t.Errorf("last audit action = %q, want %q", audit.lastAction(), ActionSessionEnded)
	}

	if err := svc.End(context.Background(), owner, s.ID, "", ""); err != ErrSessionNotFound {
		t.Fatalf("second end: got %v, want %v", err, ErrSessionNotFound)
	}
}

func TestIsReadOnlyActive_TracksPersistedState(t *testing.T) {
	svc, repo, _, orgID := newTestService(t)
	owner := uuid.New()

	s, err := svc.Create(context.Background(), owner, validParams(orgID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ro, err := svc.IsReadOnlyActive(context.Background(), s.ID)
	if err != nil || !ro {
		t.Fatalf("read-only session should report true, got %v %v", ro, err)
	}

	if _, err := svc.ToggleMode(context.Background(), owner, s.ID, true, "", ""); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if ro, _ := svc.IsReadOnlyActive(context.Background(), s.ID); ro {
		t.Error("write mode must be observed immediately")
	}

	repo.sessions[s.ID].ExpiresAt = time.Now().Add(-time.Second)
	if ro, _ := svc.IsReadOnlyActive(context.Background(), s.ID); ro {
		t.Error("expired session is not read-only active")
	}

	if ro, _ := svc.IsReadOnlyActive(context.Background(), uuid.New()); ro {
		t.Error("unknown session is not read-only active")
	}
}

func TestImpersonationState_EndedSessionInactive(t *testing.T) {
	svc, _, _, orgID := newTestService(t)
	owner := uuid.New()

	s, err := svc.Create(context.Background(), owner, validParams(orgID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.End(context.Background(), owner, s.ID, "", ""); err != nil {
		t.Fatalf("end: %v", err)
	}

	active, _, err := svc.ImpersonationState(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if active {
		t.Error("ended session must report inactive")
	}
}
