package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/essayons/essayons-api/internal/domain/user"
	"github.com/essayons/essayons-api/internal/pkg/password"
	"github.com/essayons/essayons-api/internal/pkg/ratelimit"
)

type fakeUserRepo struct {
	byEmail map[string]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*user.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return user.ErrEmailTaken
	}
	f.byEmail[u.Email] = u
	return nil
}
func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return f.byEmail[email], nil
}
func (f *fakeUserRepo) Update(ctx context.Context, u *user.User) error { return nil }
func (f *fakeUserRepo) SetDefaultOrganization(ctx context.Context, userID, orgID uuid.UUID) error {
	return nil
}
func (f *fakeUserRepo) SetRole(ctx context.Context, userID, roleID uuid.UUID) error { return nil }
func (f *fakeUserRepo) DefaultOrganizationID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, nil
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, pwd string) *user.User {
	t.Helper()
	hash, err := password.Hash(pwd)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         "Test User",
		IsActive:     true,
	}
	repo.byEmail[email] = u
	return u
}

func TestLogin_Success(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "user@example.com", "correct-horse")
	svc := NewService(repo, ratelimit.NewMemoryStore(5, 15*time.Minute))

	u, err := svc.Login(context.Background(), "user@example.com", "correct-horse", "10.0.0.1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.Email != "user@example.com" {
		t.Errorf("logged in wrong user: %s", u.Email)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "user@example.com", "correct-horse")
	svc := NewService(repo, ratelimit.NewMemoryStore(5, 15*time.Minute))

	if _, err := svc.Login(context.Background(), "user@example.com", "wrong", "10.0.0.1"); err != ErrInvalidCredentials {
		t.Fatalf("got %v, want %v", err, ErrInvalidCredentials)
	}
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	svc := NewService(newFakeUserRepo(), ratelimit.NewMemoryStore(5, 15*time.Minute))

	if _, err := svc.Login(context.Background(), "nobody@example.com", "whatever", "10.0.0.1"); err != ErrInvalidCredentials {
		t.Fatalf("got %v, want %v", err, ErrInvalidCredentials)
	}
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "user@example.com", "correct-horse")
	svc := NewService(repo, ratelimit.NewMemoryStore(5, 15*time.Minute))

	for i := 0; i < 5; i++ {
		if _, err := svc.Login(context.Background(), "user@example.com", "wrong", "10.0.0.1"); err != ErrInvalidCredentials {
			t.Fatalf("attempt %d: got %v, want %v", i+1, err, ErrInvalidCredentials)
		}
	}

	// Sixth attempt is locked out even with the right password.
	if _, err := svc.Login(context.Background(), "user@example.com", "correct-horse", "10.0.0.1"); err != ErrTooManyAttempts {
		t.Fatalf("got %v, want %v", err, ErrTooManyAttempts)
	}

	// A different IP is not locked out.
	if _, err := svc.Login(context.Background(), "user@example.com", "correct-horse", "10.0.0.2"); err != nil {
		t.Fatalf("different ip: %v", err)
	}
}

func TestLogin_SuccessResetsCounter(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "user@example.com", "correct-horse")
	svc := NewService(repo, ratelimit.NewMemoryStore(5, 15*time.Minute))

	for i := 0; i < 4; i++ {
		svc.Login(context.Background(), "user@example.com", "wrong", "10.0.0.1")
	}
	if _, err := svc.Login(context.Background(), "user@example.com", "correct-horse", "10.0.0.1"); err != nil {
		t.Fatalf("login before lockout: %v", err)
	}

	// Counter reset; failures start from zero again.
	for i := 0; i < 5; i++ {
		if _, err := svc.Login(context.Background(), "user@example.com", "wrong", "10.0.0.1"); err != ErrInvalidCredentials {
			t.Fatalf("attempt %d after reset: got %v, want %v", i+1, err, ErrInvalidCredentials)
		}
	}
}

func TestLogin_InactiveAccount(t *testing.T) {
	repo := newFakeUserRepo()
	u := seedUser(t, repo, "user@example.com", "correct-horse")
	u.IsActive = false
	svc := NewService(repo, ratelimit.NewMemoryStore(5, 15*time.Minute))

	if _, err := svc.Login(context.Background(), "user@example.com", "correct-horse", "10.0.0.1"); err != ErrAccountInactive {
		t.Fatalf("got %v, want %v", err, ErrAccountInactive)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "user@example.com", "correct-horse")
	svc := NewService(repo, ratelimit.NewMemoryStore(5, 15*time.Minute))

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "user@example.com",
		Password: "another-password",
		Name:     "Dup",
	})
	if err != ErrEmailTaken {
		t.Fatalf("got %v, want %v", err, ErrEmailTaken)
	}
}
