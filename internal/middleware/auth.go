package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"carma/internal/common"
	"carma/internal/services"
)

// Auth resolves the bearer access token into a caller identity and stores it
// in the request context. Any rejection leaves the request unauthenticated.
func Auth(tokens services.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			claims, err := tokens.VerifyAccess(tokenString)
			if err != nil {
				if errors.Is(err, services.ErrTokenExpired) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Token expired")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			// Subject is validated during token verification.
			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			ctx = context.WithValue(ctx, common.RoleKey, string(claims.Role))
			ctx = context.WithValue(ctx, common.CompanyIDKey, claims.CompanyID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
