package models

import (
	"time"

	"github.com/google/uuid"
)

// Project statuses. Status is derived from the end date at serialization
// time and never stored.
const (
	ProjectStatusOngoing   = "Ongoing"
	ProjectStatusCompleted = "Completed"
)

type Project struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	StartDate time.Time  `json:"start_date" db:"start_date"`
	EndDate   *time.Time `json:"end_date" db:"end_date"` // nil means open-ended
	CompanyID uuid.UUID  `json:"company_id" db:"company_id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// StatusAt derives the project status relative to today. A project is ongoing
// while it has no end date or the end date has not passed.
func (p *Project) StatusAt(today time.Time) string {
	if p.EndDate == nil {
		return ProjectStatusOngoing
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if !p.EndDate.Before(day) {
		return ProjectStatusOngoing
	}
	return ProjectStatusCompleted
}
