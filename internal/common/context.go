package common

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	RoleKey      contextKey = "role"
	CompanyIDKey contextKey = "company_id"
)

// GetUserIDFromContext extracts the authenticated user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetRoleFromContext extracts the caller's role from the request context.
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

// GetCompanyIDFromContext extracts the caller's company ID from the request
// context. The pointer is nil for the bootstrap admin.
func GetCompanyIDFromContext(ctx context.Context) (*uuid.UUID, bool) {
	companyID, ok := ctx.Value(CompanyIDKey).(*uuid.UUID)
	return companyID, ok
}
