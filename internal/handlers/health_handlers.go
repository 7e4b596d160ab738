package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"carma/internal/caching"
	"carma/internal/repositories"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db    repositories.Database
	cache caching.CacheService
}

func NewHealthHandler(db repositories.Database, cache caching.CacheService) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Live reports process liveness only; no dependency is touched.
func (h *HealthHandler) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the database and cache are reachable. The cache is a
// hard dependency here; a degraded instance should be pulled from rotation.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := h.db.Exec(ctx, `SELECT 1`); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"reason": "database unreachable",
		})
	}
	if err := h.cache.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"reason": "cache unreachable",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
