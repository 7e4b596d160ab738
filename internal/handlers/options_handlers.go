package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"carma/internal/authz"
	"carma/internal/caching"
	"carma/internal/common"
	"carma/internal/models"
	"carma/internal/repositories"
)

// optionsCacheTTL bounds staleness if an invalidation is ever missed.
const optionsCacheTTL = time.Hour

// OptionsHandler serves the reference tables backing the consumption and
// project forms. Reads are open to any authenticated caller and cached whole;
// mutations are admin-only and drop the cache.
type OptionsHandler struct {
	companies  repositories.CompanyRepository
	activities repositories.ActivityTypeRepository
	fuels      repositories.FuelTypeRepository
	units      repositories.UnitRepository
	cache      caching.CacheService
	resolver   *CallerResolver
}

func NewOptionsHandler(companies repositories.CompanyRepository, activities repositories.ActivityTypeRepository,
	fuels repositories.FuelTypeRepository, units repositories.UnitRepository,
	cache caching.CacheService, resolver *CallerResolver) *OptionsHandler {
	return &OptionsHandler{
		companies:  companies,
		activities: activities,
		fuels:      fuels,
		units:      units,
		cache:      cache,
		resolver:   resolver,
	}
}

func (h *OptionsHandler) requireAdmin(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return err
	}
	if !authz.CanManageReferenceData(caller) {
		return common.ErrForbidden
	}
	return nil
}

func (h *OptionsHandler) invalidate(ctx context.Context) {
	if err := h.cache.InvalidateOptions(ctx); err != nil {
		log.Printf("options cache invalidation failed: %v", err)
	}
}

type companyResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *OptionsHandler) ListCompanies(c echo.Context) error {
	ctx := c.Request().Context()

	companies, hit, err := h.cache.GetCompanies(ctx)
	if err != nil {
		log.Printf("companies cache read failed: %v", err)
	}
	if !hit {
		companies, err = h.companies.List(ctx)
		if err != nil {
			return common.SendServerError(c, "failed to list companies")
		}
		if err := h.cache.SetCompanies(ctx, companies, optionsCacheTTL); err != nil {
			log.Printf("companies cache write failed: %v", err)
		}
	}

	resp := make([]companyResponse, 0, len(companies))
	for _, company := range companies {
		resp = append(resp, companyResponse{ID: company.ID.String(), Name: company.Name})
	}
	return c.JSON(http.StatusOK, resp)
}

type companyRequest struct {
	Name string `json:"name"`
}

func (h *OptionsHandler) CreateCompany(c echo.Context) error {
	if err := h.requireAdmin(c); err != nil {
		return common.SendDomainError(c, err)
	}

	var req companyRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	company := &models.Company{ID: uuid.New(), Name: req.Name}
	if err := h.companies.Create(c.Request().Context(), company); err != nil {
		return common.SendServerError(c, "failed to create company")
	}
	h.invalidate(c.Request().Context())
	return c.JSON(http.StatusCreated, companyResponse{ID: company.ID.String(), Name: company.Name})
}

func (h *OptionsHandler) UpdateCompany(c echo.Context) error {
	if err := h.requireAdmin(c); err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req companyRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	company, err := h.companies.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	company.Name = req.Name
	if err := h.companies.Update(c.Request().Context(), company); err != nil {
		return common.SendServerError(c, "failed to update company")
	}
	h.invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, companyResponse{ID: company.ID.String(), Name: company.Name})
}

func (h *OptionsHandler) DeleteCompany(c echo.Context) error {
	if err := h.requireAdmin(c); err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if _, err := h.companies.GetByID(c.Request().Context(), id); err != nil {
		return common.SendDomainError(c, err)
	}
	if err := h.companies.Delete(c.Request().Context(), id); err != nil {
		return common.SendServerError(c, "failed to delete company")
	}
	h.invalidate(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

type namedOptionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type namedOptionRequest struct {
	Name string `json:"name"`
}

func (h *OptionsHandler) ListActivityTypes(c echo.Context) error {
	ctx := c.Request().Context()

	activities, hit, err := h.cache.GetActivityTypes(ctx)
	if err != nil {
		log.Printf("activity types cache read failed: %v", err)
	}
	if !hit {
		activities, err = h.activities.List(ctx)
		if err != nil {
			return common.SendServerError(c, "failed to list activity types")
		}
		if err := h.cache.SetActivityTypes(ctx, activities, optionsCacheTTL); err != nil {
			log.Printf("activity types cache write failed: %v", err)
		}
	}

	resp := make([]namedOptionResponse, 0, len(activities))
	for _, activity := range activities {
		resp = append(resp, namedOptionResponse{ID: activity.ID.String(), Name: activity.Name})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OptionsHandler) CreateActivityType(c echo.Context) error {
	if err := h.requireAdmin(c); err != nil {
		return common.SendDomainError(c, err)
	}

	var req namedOptionRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	activity := &models.ActivityType{ID: uuid.New(), Name: req.Name}
	if err := h.activities.Create(c.Request().Context(), activity); err != nil {
		return common.SendServerError(c, "failed to create activity type")
	}
	h.invalidate(c.Request().Context())
	return c.JSON(http.StatusCreated, namedOptionResponse{ID: activity.ID.String(), Name: activity.Name})
}

func (h *OptionsHandler) UpdateActivityType(c echo.Context) error {
	if err := h.requireAdmin(c); err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req namedOptionRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	activity, err := h.activities.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	activity.Name = req.Name
	if err := h.activities.Update(c.Request().Context(), activity); err != nil {
		return common.SendServerError(c, "failed to update activity type")
	}
	h.invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, namedOptionResponse{ID: activity.ID.String(), Name: activity.Name})
}

func (h *OptionsHandler) DeleteActivityType(c echo.Context) error {
	if err := h.requireAdmin(c); err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if _, err := h.activities.GetByID(c.Request().Context(), id); err != nil {
		return common.SendDomainError(c, err)
	}
	if err := h.activities.Delete(c.Request().Context(), id); err != nil {
		return common.SendServerError(c, "failed to delete activity type")
	}
	h.invalidate(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

type fuelTypeResponse struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	AverageCO2Emission float64 `json:"averageCO2Emission"`
}

type fuelTypeRequest struct {
	Name               string  `json:"name"`
	AverageCO2Emission float64 `json:"averageCO2Emission"`
}

func (h *OptionsHandler) ListFuelTypes(c echo.Context) error {
	ctx := c.Request().Context()

	fuels, hit, err := h.cache.GetFuelTypes(ctx)
	if err != nil {
		log.Printf("fuel types cache read failed: %v", err)
	}
	if !hit {
		fuels, err = h.fuels.List(ctx)
		if err != nil {
			return common.SendServerError(c, "failed to list fuel types")
		}
		if err := h.cache.SetFuelTypes(ctx, fuels, optionsCacheTTL); err != nil {
			log.Printf("fuel types cache write failed: %v", err)
		}
	}

	resp := make([]fuelTypeResponse, 0, len(fuels))
	for _, fuel := range fuels {
		resp = append(resp, fuelTypeResponse{
			ID:                 fuel.ID.String(),
			Name:               fuel.Name,
			AverageCO2Emission: fuel.AverageCO2Emission,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OptionsHandler) CreateFuelType(c echo.Context) error {
	if err := h.requireAdmin(c); err != nil {
		return common.SendDomainError(c, err)
	}

	var req fuelTypeRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if req.AverageCO2Emission < 0 {
		return common.SendValidationError(c, "averageCO2Emission", "averageCO2Emission must not be negative")
	}

	fuel := &models.FuelType{ID: uuid.New(), Name: req.Name, AverageCO2Emission: req.AverageCO2Emission}
	if err := h.fuels.Create(c.Request().Context(), fuel); err != nil {
		return common.SendServerError(c, "failed to create fuel type")
	}
	h.invalidate(c.Request().Context())
	return c.JSON(http.StatusCreated, fuelTypeResponse{
		ID:                 fuel.ID.String(),
		Name:               fuel.Name,
		AverageCO2Emission: fuel.AverageCO2Emission,
	})
}

func (h *OptionsHandler) UpdateFuelType(c echo.Context) error {
	if err := h.requireAdmin(c); err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req fuelTypeRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}
	if req.AverageCO2Emission < 0 {
		return common.SendValidationError(c, "averageCO2Emission", "averageCO2Emission must not be negative")
	}

	fuel, err := h.fuels.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	fuel.Name = req.Name
	fuel.AverageCO2Emission = req.AverageCO2Emission
	if err := h.fuels.Update(c.Request().Context(), fuel); err != nil {
		return common.SendServerError(c, "failed to update fuel type")
	}
	h.invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, fuelTypeResponse{
		ID:                 fuel.ID.String(),
		Name:               fuel.Name,
		AverageCO2Emission: fuel.AverageCO2Emission,
	})
}

func (h *OptionsHandler) DeleteFuelType(c echo.Context) error {
	if err := h.requireAdmin(c); err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if _, err := h.fuels.GetByID(c.Request().Context(), id); err != nil {
		return common.SendDomainError(c, err)
	}
	if err := h.fuels.Delete(c.Request().Context(), id); err != nil {
		return common.SendServerError(c, "failed to delete fuel type")
	}
	h.invalidate(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

func (h *OptionsHandler) ListUnits(c echo.Context) error {
	ctx := c.Request().Context()

	units, hit, err := h.cache.GetUnits(ctx)
	if err != nil {
		log.Printf("units cache read failed: %v", err)
	}
	if !hit {
		units, err = h.units.List(ctx)
		if err != nil {
			return common.SendServerError(c, "failed to list units")
		}
		if err := h.cache.SetUnits(ctx, units, optionsCacheTTL); err != nil {
			log.Printf("units cache write failed: %v", err)
		}
	}

	resp := make([]namedOptionResponse, 0, len(units))
	for _, unit := range units {
		resp = append(resp, namedOptionResponse{ID: unit.ID.String(), Name: unit.Name})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OptionsHandler) CreateUnit(c echo.Context) error {
	if err := h.requireAdmin(c); err != nil {
		return common.SendDomainError(c, err)
	}

	var req namedOptionRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	unit := &models.Unit{ID: uuid.New(), Name: req.Name}
	if err := h.units.Create(c.Request().Context(), unit); err != nil {
		return common.SendServerError(c, "failed to create unit")
	}
	h.invalidate(c.Request().Context())
	return c.JSON(http.StatusCreated, namedOptionResponse{ID: unit.ID.String(), Name: unit.Name})
}

func (h *OptionsHandler) UpdateUnit(c echo.Context) error {
	if err := h.requireAdmin(c); err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req namedOptionRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	unit, err := h.units.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	unit.Name = req.Name
	if err := h.units.Update(c.Request().Context(), unit); err != nil {
		return common.SendServerError(c, "failed to update unit")
	}
	h.invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, namedOptionResponse{ID: unit.ID.String(), Name: unit.Name})
}

func (h *OptionsHandler) DeleteUnit(c echo.Context) error {
	if err := h.requireAdmin(c); err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if _, err := h.units.GetByID(c.Request().Context(), id); err != nil {
		return common.SendDomainError(c, err)
	}
	if err := h.units.Delete(c.Request().Context(), id); err != nil {
		return common.SendServerError(c, "failed to delete unit")
	}
	h.invalidate(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
