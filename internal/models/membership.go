package models

import "github.com/google/uuid"

// UserProjectMembership links a user to a project. For a "user"-role caller
// the existence of a row is the sole authorization signal for project access.
type UserProjectMembership struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProjectID uuid.UUID `json:"project_id" db:"project_id"`
}
