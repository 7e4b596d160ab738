package models

import (
	"time"

	"github.com/google/uuid"
)

type Consumption struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Amount         float64    `json:"amount" db:"amount"`
	StartDate      time.Time  `json:"start_date" db:"start_date"`
	EndDate        time.Time  `json:"end_date" db:"end_date"`
	ReportDate     time.Time  `json:"report_date" db:"report_date"`
	Description    *string    `json:"description" db:"description"`
	UserID         uuid.UUID  `json:"user_id" db:"user_id"`
	ProjectID      uuid.UUID  `json:"project_id" db:"project_id"`
	ActivityTypeID uuid.UUID  `json:"activity_type_id" db:"activity_type_id"`
	FuelTypeID     *uuid.UUID `json:"fuel_type_id" db:"fuel_type_id"` // only meaningful for fuel-based activities
	UnitID         uuid.UUID  `json:"unit_id" db:"unit_id"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// ConsumptionRow is a consumption record joined with its reference names, as
// returned by list queries. Company is resolved for admin callers only.
type ConsumptionRow struct {
	ID            uuid.UUID
	Amount        float64
	StartDate     time.Time
	EndDate       time.Time
	ReportDate    time.Time
	Description   *string
	UserID        uuid.UUID
	ProjectID     uuid.UUID
	Project       string
	ActivityType  string
	FuelType      *string
	Unit          string
	UserFirstName string
	UserLastName  string
	Company       *string
}
