package organization

import (
	"time"

	"github.com/google/uuid"
)

// CreateOrganizationRequest for POST /organizations
type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required,min=2,max=200"`
}

// SetDefaultRequest for PUT /organizations/default
type SetDefaultRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,uuid"`
}

// OrganizationResponse is the API shape of an organization
type OrganizationResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	EnabledFeatures []string  `json:"enabled_features"`
	CreatedAt       time.Time `json:"created_at"`
}

// CurrentResponse describes the resolved tenant for this request
type CurrentResponse struct {
	Organization OrganizationResponse `json:"organization"`
	OrgRole      string               `json:"org_role"`
}

// OrganizationResponseFromEntity converts entity to response
func OrganizationResponseFromEntity(org *Organization) OrganizationResponse {
	features := make([]string, 0, len(org.EnabledFeatures))
	for name, enabled := range org.EnabledFeatures {
		if enabled {
			features = append(features, name)
		}
	}
	return OrganizationResponse{
		ID:              org.ID,
		Name:            org.Name,
		Status:          string(org.Status),
		EnabledFeatures: features,
		CreatedAt:       org.CreatedAt,
	}
}
