package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"carma/internal/common"
	"carma/internal/models"
	"carma/internal/services"
)

// ConsumptionHandler is a thin HTTP layer over the consumption service, which
// owns the authorization and value checks.
type ConsumptionHandler struct {
	consumptions services.ConsumptionService
	resolver     *CallerResolver
}

func NewConsumptionHandler(consumptions services.ConsumptionService, resolver *CallerResolver) *ConsumptionHandler {
	return &ConsumptionHandler{consumptions: consumptions, resolver: resolver}
}

type consumptionRequest struct {
	Amount         float64 `json:"amount"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	ReportDate     string  `json:"reportDate"`
	Description    *string `json:"description"`
	ProjectID      string  `json:"projectId"`
	ActivityTypeID string  `json:"activityTypeId"`
	FuelTypeID     *string `json:"fuelTypeId"`
	UnitID         string  `json:"unitId"`
}

type consumptionResponse struct {
	ID             string  `json:"id"`
	Amount         float64 `json:"amount"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	ReportDate     string  `json:"reportDate"`
	Description    *string `json:"description"`
	UserID         string  `json:"userId"`
	ProjectID      string  `json:"projectId"`
	ActivityTypeID string  `json:"activityTypeId"`
	FuelTypeID     *string `json:"fuelTypeId"`
	UnitID         string  `json:"unitId"`
}

type consumptionRowResponse struct {
	ID           string  `json:"id"`
	Amount       float64 `json:"amount"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	ReportDate   string  `json:"reportDate"`
	Description  *string `json:"description"`
	UserID       string  `json:"userId"`
	ProjectID    string  `json:"projectId"`
	Project      string  `json:"project"`
	ActivityType string  `json:"activityType"`
	FuelType     *string `json:"fuelType"`
	Unit         string  `json:"unit"`
	UserName     string  `json:"userName"`
	Company      *string `json:"company,omitempty"`
}

func toConsumptionResponse(record *models.Consumption) consumptionResponse {
	resp := consumptionResponse{
		ID:             record.ID.String(),
		Amount:         record.Amount,
		StartDate:      common.FormatDate(record.StartDate),
		EndDate:        common.FormatDate(record.EndDate),
		ReportDate:     common.FormatDate(record.ReportDate),
		Description:    record.Description,
		UserID:         record.UserID.String(),
		ProjectID:      record.ProjectID.String(),
		ActivityTypeID: record.ActivityTypeID.String(),
		UnitID:         record.UnitID.String(),
	}
	if record.FuelTypeID != nil {
		s := record.FuelTypeID.String()
		resp.FuelTypeID = &s
	}
	return resp
}

func toConsumptionRowResponse(row *models.ConsumptionRow) consumptionRowResponse {
	return consumptionRowResponse{
		ID:           row.ID.String(),
		Amount:       row.Amount,
		StartDate:    common.FormatDate(row.StartDate),
		EndDate:      common.FormatDate(row.EndDate),
		ReportDate:   common.FormatDate(row.ReportDate),
		Description:  row.Description,
		UserID:       row.UserID.String(),
		ProjectID:    row.ProjectID.String(),
		Project:      row.Project,
		ActivityType: row.ActivityType,
		FuelType:     row.FuelType,
		Unit:         row.Unit,
		UserName:     row.UserFirstName + " " + row.UserLastName,
		Company:      row.Company,
	}
}

func (h *ConsumptionHandler) List(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	rows, err := h.consumptions.List(c.Request().Context(), caller)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	resp := make([]consumptionRowResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, toConsumptionRowResponse(row))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ConsumptionHandler) Create(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	input, err := h.bindInput(c)
	if err != nil {
		return common.SendValidationError(c, "body", err.Error())
	}

	record, err := h.consumptions.Create(c.Request().Context(), caller, input)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, toConsumptionResponse(record))
}

func (h *ConsumptionHandler) Update(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	input, err := h.bindInput(c)
	if err != nil {
		return common.SendValidationError(c, "body", err.Error())
	}

	record, err := h.consumptions.Update(c.Request().Context(), caller, id, input)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, toConsumptionResponse(record))
}

func (h *ConsumptionHandler) Delete(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.consumptions.Delete(c.Request().Context(), caller, id); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ConsumptionHandler) bindInput(c echo.Context) (*services.ConsumptionInput, error) {
	var req consumptionRequest
	if err := c.Bind(&req); err != nil {
		return nil, err
	}

	projectID, err := common.ValidateUUID(req.ProjectID, "projectId")
	if err != nil {
		return nil, err
	}
	activityTypeID, err := common.ValidateUUID(req.ActivityTypeID, "activityTypeId")
	if err != nil {
		return nil, err
	}
	unitID, err := common.ValidateUUID(req.UnitID, "unitId")
	if err != nil {
		return nil, err
	}

	input := &services.ConsumptionInput{
		Amount:         req.Amount,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		ReportDate:     req.ReportDate,
		Description:    req.Description,
		ProjectID:      projectID,
		ActivityTypeID: activityTypeID,
		UnitID:         unitID,
	}
	if req.FuelTypeID != nil && *req.FuelTypeID != "" {
		fuelTypeID, err := common.ValidateUUID(*req.FuelTypeID, "fuelTypeId")
		if err != nil {
			return nil, err
		}
		input.FuelTypeID = &fuelTypeID
	}
	return input, nil
}
