package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of roles the authorization policy understands.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleCompanyAdmin Role = "companyadmin"
	RoleUser         Role = "user"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCompanyAdmin, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // Never serialize in JSON
	Role         Role       `json:"role" db:"role"`
	CompanyID    *uuid.UUID `json:"company_id" db:"company_id"` // nil only for the bootstrap admin
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
