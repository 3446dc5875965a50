package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/essayons/essayons-api/internal/pkg/metrics"
	"github.com/essayons/essayons-api/internal/pkg/password"
	"github.com/essayons/essayons-api/internal/pkg/ratelimit"
)

// Service handles operator business logic
type Service struct {
	repo          Repository
	loginAttempts ratelimit.Store
}

// NewService creates operator service. loginAttempts throttles failed
// logins per email+IP pair.
func NewService(repo Repository, loginAttempts ratelimit.Store) *Service {
	return &Service{repo: repo, loginAttempts: loginAttempts}
}

func loginKey(email, ip string) string {
	return "op-login:" + email + ":" + ip
}

// Login authenticates an operator. Failed attempts count against a
// per-email-and-IP window; a successful login resets it.
func (s *Service) Login(ctx context.Context, email, pwd, ip string) (*Operator, error) {
	decision, err := s.loginAttempts.Allow(ctx, loginKey(email, ip))
	if err != nil {
		log.Error().Err(err).Msg("Login attempt counter unavailable")
	} else if !decision.Allowed {
		metrics.RateLimitRejections.WithLabelValues("operator_login").Inc()
		return nil, ErrTooManyAttempts
	}

	op, err := s.repo.GetOperatorByEmail(ctx, email)
	if err != nil || op == nil {
		return nil, ErrInvalidCredentials
	}

	if !op.IsActive {
		return nil, ErrOperatorInactive
	}

	if !password.Verify(pwd, op.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if err := s.loginAttempts.Reset(ctx, loginKey(email, ip)); err != nil {
		log.Error().Err(err).Msg("Failed to reset login attempt counter")
	}
	_ = s.repo.UpdateLastLogin(ctx, op.ID, ip)

	return op, nil
}

// GetOperatorByID returns an operator by ID
func (s *Service) GetOperatorByID(ctx context.Context, id uuid.UUID) (*Operator, error) {
	op, err := s.repo.GetOperatorByID(ctx, id)
	if err != nil || op == nil {
		return nil, ErrOperatorNotFound
	}
	return op, nil
}

// ListOperators returns all operators
func (s *Service) ListOperators(ctx context.Context) ([]*Operator, error) {
	return s.repo.ListOperators(ctx)
}

// CreateOperator creates a new operator account
func (s *Service) CreateOperator(ctx context.Context, actorID uuid.UUID, req *CreateOperatorRequest) (*Operator, error) {
	existing, _ := s.repo.GetOperatorByEmail(ctx, req.Email)
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	op := &Operator{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         Role(req.Role),
		Name:         req.Name,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateOperator(ctx, op); err != nil {
		return nil, err
	}

	log.Info().
		Str("operator_id", op.ID.String()).
		Str("actor_id", actorID.String()).
		Msg("Operator account created")

	return op, nil
}

// UpdateOperator updates an operator account
func (s *Service) UpdateOperator(ctx context.Context, actorID, targetID uuid.UUID, req *UpdateOperatorRequest) (*Operator, error) {
	op, err := s.repo.GetOperatorByID(ctx, targetID)
	if err != nil || op == nil {
		return nil, ErrOperatorNotFound
	}

	actor, _ := s.repo.GetOperatorByID(ctx, actorID)
	if actor != nil && actorID != targetID && !CanManage(actor.Role, op.Role) {
		return nil, ErrCannotManageRole
	}

	if req.Name != nil {
		op.Name = *req.Name
	}
	if req.Role != nil {
		op.Role = Role(*req.Role)
	}
	if req.IsActive != nil {
		if !*req.IsActive && actorID == targetID {
			return nil, ErrCannotDeleteSelf
		}
		op.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateOperator(ctx, op); err != nil {
		return nil, err
	}

	return op, nil
}
