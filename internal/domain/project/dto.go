package project

// CreateProjectRequest for POST /projects
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Status      string `json:"status" validate:"omitempty,oneof=draft active"`
}

// UpdateProjectRequest for PUT /projects/{id}
type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Status      *string `json:"status" validate:"omitempty,oneof=draft active archived"`
}
