package handlers

import (
	"github.com/labstack/echo/v4"

	"carma/internal/authz"
	"carma/internal/common"
	"carma/internal/models"
	"carma/internal/repositories"
)

// CallerResolver rebuilds the authorization caller from the request context.
// Membership project IDs are loaded per request for "user"-role callers only;
// the other roles never consult them.
type CallerResolver struct {
	memberships repositories.MembershipRepository
}

func NewCallerResolver(memberships repositories.MembershipRepository) *CallerResolver {
	return &CallerResolver{memberships: memberships}
}

func (r *CallerResolver) Resolve(c echo.Context) (authz.Caller, error) {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return authz.Caller{}, common.ErrUnauthorized
	}
	roleStr, ok := common.GetRoleFromContext(ctx)
	if !ok {
		return authz.Caller{}, common.ErrUnauthorized
	}
	companyID, _ := common.GetCompanyIDFromContext(ctx)

	caller := authz.Caller{
		UserID:    userID,
		Role:      models.Role(roleStr),
		CompanyID: companyID,
	}

	if caller.Role == models.RoleUser {
		projectIDs, err := r.memberships.ListProjectIDsByUser(ctx, userID)
		if err != nil {
			return authz.Caller{}, err
		}
		caller.ProjectIDs = projectIDs
	}

	return caller, nil
}
