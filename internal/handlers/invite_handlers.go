package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"carma/internal/common"
	"carma/internal/models"
	"carma/internal/services"
)

// InviteHandler serves the invite lifecycle. Everything except the token
// lookup requires an admin or companyadmin caller; the token lookup is public
// because the registration page calls it before any account exists.
type InviteHandler struct {
	invites  services.InviteService
	resolver *CallerResolver
}

func NewInviteHandler(invites services.InviteService, resolver *CallerResolver) *InviteHandler {
	return &InviteHandler{invites: invites, resolver: resolver}
}

type createInviteRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId"`
}

type inviteResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId"`
	CreatedAt string `json:"createdAt"`
}

// The raw token is deliberately absent from listing responses; it only
// appears in the emailed link and the public token lookup.
func toInviteResponse(invite *models.Invite) inviteResponse {
	return inviteResponse{
		ID:        invite.ID.String(),
		Email:     invite.Email,
		FirstName: invite.FirstName,
		LastName:  invite.LastName,
		Role:      string(invite.Role),
		CompanyID: invite.CompanyID.String(),
		CreatedAt: invite.CreatedAt.Format(time.RFC3339),
	}
}

func (h *InviteHandler) Create(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	var req createInviteRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	createReq := &services.CreateInviteRequest{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.Role(req.Role),
	}
	// Companyadmins may omit the company; their own is forced regardless.
	if req.CompanyID != "" {
		id, err := common.ValidateUUID(req.CompanyID, "companyId")
		if err != nil {
			return common.SendValidationError(c, "companyId", err.Error())
		}
		createReq.CompanyID = id
	}

	invite, err := h.invites.Create(c.Request().Context(), caller, createReq)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, toInviteResponse(invite))
}

func (h *InviteHandler) List(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	invites, err := h.invites.List(c.Request().Context(), caller)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	resp := make([]inviteResponse, 0, len(invites))
	for _, invite := range invites {
		resp = append(resp, toInviteResponse(invite))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *InviteHandler) Cancel(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.invites.Cancel(c.Request().Context(), caller, id); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *InviteHandler) Resend(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	invite, err := h.invites.Resend(c.Request().Context(), caller, id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toInviteResponse(invite))
}

type inviteTokenResponse struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// GetByToken lets the registration page prefill the invitee's identity.
// Expired and unknown tokens are both 404.
func (h *InviteHandler) GetByToken(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return common.SendValidationError(c, "token", "token is required")
	}

	invite, err := h.invites.GetByToken(c.Request().Context(), token)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, inviteTokenResponse{
		Email:     invite.Email,
		FirstName: invite.FirstName,
		LastName:  invite.LastName,
	})
}
