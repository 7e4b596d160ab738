package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"carma/internal/common"
	"carma/internal/models"
	"carma/internal/repositories"
	"carma/internal/security"
	"carma/internal/services"
)

const refreshCookieName = "refresh_token"

// AuthHandler serves login, logout and token refresh. The access token travels
// in the response body; the refresh token only ever travels in an HttpOnly
// cookie scoped to /auth, so page scripts can never read it.
type AuthHandler struct {
	users  repositories.UserRepository
	tokens services.TokenService
}

func NewAuthHandler(users repositories.UserRepository, tokens services.TokenService) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authUserResponse struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	CompanyID *string `json:"companyId"`
}

type loginResponse struct {
	Token string           `json:"token"`
	User  authUserResponse `json:"user"`
}

// Login exchanges credentials for a token pair. Unknown email and wrong
// password produce the identical response, so accounts cannot be enumerated.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return common.SendValidationError(c, "credentials", "email and password are required")
	}

	user, err := h.users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return c.JSON(http.StatusBadRequest,
				common.CreateErrorResponse("VALIDATION_ERROR", "Incorrect email or password", nil))
		}
		return common.SendServerError(c, "login failed")
	}
	if !security.VerifyPassword(req.Password, user.PasswordHash) {
		return c.JSON(http.StatusBadRequest,
			common.CreateErrorResponse("VALIDATION_ERROR", "Incorrect email or password", nil))
	}

	access, err := h.tokens.IssueAccess(user)
	if err != nil {
		return common.SendServerError(c, "login failed")
	}
	refresh, err := h.tokens.IssueRefresh(user.ID)
	if err != nil {
		return common.SendServerError(c, "login failed")
	}

	setRefreshCookie(c, refresh)
	return c.JSON(http.StatusOK, loginResponse{
		Token: access,
		User:  toAuthUserResponse(user),
	})
}

// Logout clears the refresh cookie. Issued tokens stay valid until expiry;
// there is no server-side revocation list.
func (h *AuthHandler) Logout(c echo.Context) error {
	clearRefreshCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

type refreshResponse struct {
	Token string `json:"token"`
}

// Refresh rotates the token pair from the refresh cookie. Claims are re-read
// from the user record, so a role change takes effect on the next refresh.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return common.SendUnauthorizedError(c)
	}

	userID, err := h.tokens.VerifyRefresh(cookie.Value)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	user, err := h.users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.SendUnauthorizedError(c)
		}
		return common.SendServerError(c, "refresh failed")
	}

	access, refresh, err := h.tokens.Rotate(cookie.Value, user)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	setRefreshCookie(c, refresh)
	return c.JSON(http.StatusOK, refreshResponse{Token: access})
}

func toAuthUserResponse(user *models.User) authUserResponse {
	resp := authUserResponse{
		ID:    user.ID.String(),
		Email: user.Email,
		Role:  string(user.Role),
	}
	if user.CompanyID != nil {
		s := user.CompanyID.String()
		resp.CompanyID = &s
	}
	return resp
}

// setRefreshCookie installs the refresh token as a session cookie. No Max-Age:
// the JWT carries its own expiry, and a browser restart dropping the cookie is
// acceptable.
func setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/auth",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
