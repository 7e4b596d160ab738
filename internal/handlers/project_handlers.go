package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"carma/internal/authz"
	"carma/internal/common"
	"carma/internal/models"
	"carma/internal/repositories"
)

// ProjectHandler serves project CRUD. Status is never stored; every response
// derives it from the end date at serialization time.
type ProjectHandler struct {
	projects repositories.ProjectRepository
	resolver *CallerResolver
}

func NewProjectHandler(projects repositories.ProjectRepository, resolver *CallerResolver) *ProjectHandler {
	return &ProjectHandler{projects: projects, resolver: resolver}
}

type projectResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	StartDate string  `json:"startDate"`
	EndDate   *string `json:"endDate"`
	Status    string  `json:"status"`
	CompanyID string  `json:"companyId"`
	Company   string  `json:"company,omitempty"`
}

func toProjectResponse(project *models.Project, company string) projectResponse {
	return projectResponse{
		ID:        project.ID.String(),
		Name:      project.Name,
		StartDate: common.FormatDate(project.StartDate),
		EndDate:   common.FormatOptionalDate(project.EndDate),
		Status:    project.StatusAt(time.Now()),
		CompanyID: project.CompanyID.String(),
		Company:   company,
	}
}

func toProjectRowResponse(row *repositories.ProjectRow) projectResponse {
	project := &models.Project{
		ID:        row.ID,
		Name:      row.Name,
		StartDate: row.StartDate,
		EndDate:   row.EndDate,
		CompanyID: row.CompanyID,
	}
	return toProjectResponse(project, row.Company)
}

// List returns the projects the caller's role can see: all for admins, the
// company's for companyadmins, membership projects for users.
func (h *ProjectHandler) List(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	var rows []*repositories.ProjectRow
	switch authz.ProjectListScope(caller) {
	case authz.ScopeAll:
		rows, err = h.projects.ListAll(c.Request().Context())
	case authz.ScopeCompany:
		rows, err = h.projects.ListByCompany(c.Request().Context(), *caller.CompanyID)
	case authz.ScopeProjects:
		rows, err = h.projects.ListByMembership(c.Request().Context(), caller.UserID)
	default:
		return common.SendForbiddenError(c)
	}
	if err != nil {
		return common.SendServerError(c, "failed to list projects")
	}

	resp := make([]projectResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, toProjectRowResponse(row))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) Get(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	project, err := h.projects.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if !authz.CanReadProject(caller, project.ID, project.CompanyID) {
		return common.SendForbiddenError(c)
	}
	return c.JSON(http.StatusOK, toProjectResponse(project, ""))
}

type projectRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	CompanyID string `json:"companyId"`
}

func (h *ProjectHandler) Create(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}

	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	startDate, err := common.ParseDate(req.StartDate, "startDate")
	if err != nil {
		return common.SendValidationError(c, "startDate", err.Error())
	}
	endDate, err := common.ParseOptionalDate(req.EndDate, "endDate")
	if err != nil {
		return common.SendValidationError(c, "endDate", err.Error())
	}
	if endDate != nil && endDate.Before(startDate) {
		return common.SendValidationError(c, "endDate", "endDate must not be before startDate")
	}

	// Companyadmins always create inside their own company, whatever the
	// request says. Admins must name one.
	var companyID uuid.UUID
	if caller.Role == models.RoleCompanyAdmin && caller.CompanyID != nil {
		companyID = *caller.CompanyID
	} else if req.CompanyID != "" {
		companyID, err = common.ValidateUUID(req.CompanyID, "companyId")
		if err != nil {
			return common.SendValidationError(c, "companyId", err.Error())
		}
	} else {
		return common.SendValidationError(c, "companyId", "companyId is required")
	}

	if !authz.CanManageProject(caller, companyID) {
		return common.SendForbiddenError(c)
	}

	project := &models.Project{
		ID:        uuid.New(),
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
		CompanyID: companyID,
	}
	if err := h.projects.Create(c.Request().Context(), project); err != nil {
		return common.SendServerError(c, "failed to create project")
	}
	return c.JSON(http.StatusCreated, toProjectResponse(project, ""))
}

func (h *ProjectHandler) Update(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req projectRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	project, err := h.projects.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if !authz.CanManageProject(caller, project.CompanyID) {
		return common.SendForbiddenError(c)
	}

	if req.Name != "" {
		project.Name = req.Name
	}
	if req.StartDate != "" {
		startDate, err := common.ParseDate(req.StartDate, "startDate")
		if err != nil {
			return common.SendValidationError(c, "startDate", err.Error())
		}
		project.StartDate = startDate
	}
	// An empty endDate clears the end date, reopening the project.
	endDate, err := common.ParseOptionalDate(req.EndDate, "endDate")
	if err != nil {
		return common.SendValidationError(c, "endDate", err.Error())
	}
	project.EndDate = endDate
	if project.EndDate != nil && project.EndDate.Before(project.StartDate) {
		return common.SendValidationError(c, "endDate", "endDate must not be before startDate")
	}

	if err := h.projects.Update(c.Request().Context(), project); err != nil {
		return common.SendServerError(c, "failed to update project")
	}
	return c.JSON(http.StatusOK, toProjectResponse(project, ""))
}

func (h *ProjectHandler) Delete(c echo.Context) error {
	caller, err := h.resolver.Resolve(c)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	project, err := h.projects.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if !authz.CanManageProject(caller, project.CompanyID) {
		return common.SendForbiddenError(c)
	}

	if err := h.projects.Delete(c.Request().Context(), id); err != nil {
		return common.SendServerError(c, "failed to delete project")
	}
	return c.NoContent(http.StatusNoContent)
}
