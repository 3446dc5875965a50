package project

import (
	"time"

	"github.com/google/uuid"
)

// Status represents project lifecycle state
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Project is a tenant-scoped change project. Every read and write is
// parameterized by OrganizationID; a project is never visible outside its
// organization.
type Project struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name" json:"name"`
	Description    string    `db:"description" json:"description"`
	Status         Status    `db:"status" json:"status"`
	CreatedByID    uuid.UUID `db:"created_by_id" json:"created_by_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
