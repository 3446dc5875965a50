package project

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service handles project business logic. The organization ID always comes
// from the resolved tenant context, never from the request body.
type Service struct {
	repo Repository
}

// NewService creates project service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a project in the tenant's organization
func (s *Service) Create(ctx context.Context, orgID, creatorID uuid.UUID, req *CreateProjectRequest) (*Project, error) {
	status := StatusDraft
	if req.Status != "" {
		status = Status(req.Status)
	}

	now := time.Now()
	p := &Project{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           req.Name,
		Description:    req.Description,
		Status:         status,
		CreatedByID:    creatorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID returns a project within the tenant's organization
func (s *Service) GetByID(ctx context.Context, orgID, id uuid.UUID) (*Project, error) {
	p, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

// List returns the tenant's projects
func (s *Service) List(ctx context.Context, orgID uuid.UUID) ([]*Project, error) {
	return s.repo.List(ctx, orgID)
}

// Update updates a project within the tenant's organization
func (s *Service) Update(ctx context.Context, orgID, id uuid.UUID, req *UpdateProjectRequest) (*Project, error) {
	p, err := s.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Status != nil {
		p.Status = Status(*req.Status)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a project within the tenant's organization
func (s *Service) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, orgID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, orgID, id)
}
