package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/essayons/essayons-api/internal/domain/user"
	"github.com/essayons/essayons-api/internal/pkg/metrics"
	"github.com/essayons/essayons-api/internal/pkg/password"
	"github.com/essayons/essayons-api/internal/pkg/ratelimit"
)

// Service handles tenant authentication
type Service struct {
	users         user.Repository
	loginAttempts ratelimit.Store
}

// NewService creates auth service. loginAttempts throttles failed logins
// per email+IP pair.
func NewService(users user.Repository, loginAttempts ratelimit.Store) *Service {
	return &Service{users: users, loginAttempts: loginAttempts}
}

func loginKey(email, ip string) string {
	return "login:" + email + ":" + ip
}

// Register creates a new tenant account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*user.User, error) {
	existing, _ := s.users.GetByEmail(ctx, req.Email)
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if err == user.ErrEmailTaken {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// Login authenticates a tenant user. Failed attempts count against a
// per-email-and-IP window; a successful login resets it.
func (s *Service) Login(ctx context.Context, email, pwd, ip string) (*user.User, error) {
	decision, err := s.loginAttempts.Allow(ctx, loginKey(email, ip))
	if err != nil {
		log.Error().Err(err).Msg("Login attempt counter unavailable")
	} else if !decision.Allowed {
		metrics.RateLimitRejections.WithLabelValues("login").Inc()
		return nil, ErrTooManyAttempts
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}
	if !password.Verify(pwd, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if err := s.loginAttempts.Reset(ctx, loginKey(email, ip)); err != nil {
		log.Error().Err(err).Msg("Failed to reset login attempt counter")
	}
	return u, nil
}

// GetUser returns the user by ID
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}
