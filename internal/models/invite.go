package models

import (
	"time"

	"github.com/google/uuid"
)

// Invite gates account creation. The token is a bearer secret: whoever holds
// it may redeem the invite, exactly once, within the expiry window. Expiry is
// computed from CreatedAt at read time; expired rows are purged lazily.
type Invite struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	FirstName   string    `json:"first_name" db:"first_name"`
	LastName    string    `json:"last_name" db:"last_name"`
	Role        Role      `json:"role" db:"role"`
	CompanyID   uuid.UUID `json:"company_id" db:"company_id"`
	InviteToken string    `json:"invite_token" db:"invite_token"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ExpiredAt reports whether the invite has outlived the expiry window at the
// given instant.
func (i *Invite) ExpiredAt(now time.Time, window time.Duration) bool {
	return now.Sub(i.CreatedAt) > window
}
