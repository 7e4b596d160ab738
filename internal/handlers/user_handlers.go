package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"carma/internal/authz"
	"carma/internal/common"
	"carma/internal/models"
	"carma/internal/repositories"
	"carma/internal/services"
)

// UserHandler serves the user directory and account lifecycle. There is no
// direct signup: POST /users is public and only redeems a pending invite.
type UserHandler struct {
	users       repositories.UserRepository
	memberships repositories.MembershipRepository
	invites     services.InviteService
	resolver    *CallerResolver
}

func NewUserHandler(users repositories.UserRepository, memberships repositories.MembershipRepository,
	invites services.InviteService, resolver *CallerResolver) *UserHandler {
	return &UserHandler{
		users:       users,
		memberships: memberships,
		invites:     invites,
		resolver:    resolver,
	}
}

type userResponse struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	CompanyID *string `json:"companyId"`
	Company   *string `json:"company,omitempty"`
}

func toUserResponse(user *models.User) userResponse {
	resp := userResponse{
		ID:        user.ID.String(),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      string(user.Role),
	}
	if user.CompanyID != nil {
		s := user.CompanyID.String()
		resp.CompanyID = &s
	}
	return resp
}

func toUserRowResponse(row *repositories.UserRow) userResponse {
	resp := userResponse{
		ID:        row.ID.String(),
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Email:     row.Email,
		Role:      string(row.Role),
		Company:   row.Company,
	}
	if row.CompanyID != nil {
		s := row.CompanyID.String()
		resp.CompanyID = &s
	}
	return resp
}

// List returns the directory visible to the caller. Plain users get 403, not
// an empty list.
func (h *UserHandler) List(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	var rows []*repositories.UserRow
	switch authz.UserListScope(caller) {
	case authz.ScopeAll:
		rows, err = h.users.ListAll(c.Request().Context())
	case authz.ScopeCompany:
		rows, err = h.users.ListByCompany(c.Request().Context(), *caller.CompanyID)
	default:
		return common.SendForbiddenError(c)
	}
	if err != nil {
		return common.SendServerError(c, "failed to list users")
	}

	resp := make([]userResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, toUserRowResponse(row))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetMe returns the caller's own record.
func (h *UserHandler) GetMe(c echo.Context) error {
	userID, ok := common.GetUserIDFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.users.GetByID(c.Request().Context(), userID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) Get(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	user, err := h.users.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if !authz.CanReadUser(caller, user.ID, user.CompanyID) {
		return common.SendForbiddenError(c)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

type redeemRequest struct {
	InviteToken string `json:"inviteToken"`
	Password    string `json:"password"`
}

// Redeem is the public account-creation endpoint. It consumes a pending invite
// and creates the user it described; identity fields come from the invite, the
// caller only supplies the password.
func (h *UserHandler) Redeem(c echo.Context) error {
	var req redeemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	if req.InviteToken == "" {
		return common.SendValidationError(c, "inviteToken", "inviteToken is required")
	}

	user, err := h.invites.Redeem(c.Request().Context(), req.InviteToken, req.Password)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

type updateUserRequest struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Role      *string  `json:"role"`
	Projects  []string `json:"projects"`
}

// Update edits a user's profile and, optionally, replaces their project
// memberships. Role changes are admin-only and silently dropped for other
// callers; the company affiliation never changes.
func (h *UserHandler) Update(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	user, err := h.users.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if !authz.CanManageUser(caller, user.CompanyID) {
		return common.SendForbiddenError(c)
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Role != nil && caller.Role == models.RoleAdmin {
		role := models.Role(*req.Role)
		if !role.Valid() {
			return common.SendValidationError(c, "role", "unknown role")
		}
		// Company-scoped roles need a company. Admins created without one
		// (the bootstrap account) stay admins.
		if role != models.RoleAdmin && user.CompanyID == nil {
			return common.SendValidationError(c, "role", "a user without a company can only hold the admin role")
		}
		user.Role = role
	}

	if err := h.users.Update(c.Request().Context(), user); err != nil {
		return common.SendServerError(c, "failed to update user")
	}

	if req.Projects != nil {
		projectIDs := make([]uuid.UUID, 0, len(req.Projects))
		for _, raw := range req.Projects {
			projectID, err := common.ValidateUUID(raw, "projects")
			if err != nil {
				return common.SendValidationError(c, "projects", err.Error())
			}
			projectIDs = append(projectIDs, projectID)
		}
		if err := h.memberships.Replace(c.Request().Context(), user.ID, projectIDs); err != nil {
			return common.SendServerError(c, "failed to update project memberships")
		}
	}

	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) Delete(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	user, err := h.users.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if !authz.CanManageUser(caller, user.CompanyID) {
		return common.SendForbiddenError(c)
	}

	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		return common.SendServerError(c, "failed to delete user")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListProjects returns the project IDs the user is a member of, for the
// membership picker on the user form.
func (h *UserHandler) ListProjects(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	user, err := h.users.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if !authz.CanReadUser(caller, user.ID, user.CompanyID) {
		return common.SendForbiddenError(c)
	}

	projectIDs, err := h.memberships.ListProjectIDsByUser(c.Request().Context(), id)
	if err != nil {
		return common.SendServerError(c, "failed to list project memberships")
	}

	resp := make([]string, 0, len(projectIDs))
	for _, projectID := range projectIDs {
		resp = append(resp, projectID.String())
	}
	return c.JSON(http.StatusOK, resp)
}
