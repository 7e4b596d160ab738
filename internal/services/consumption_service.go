package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"carma/internal/authz"
	"carma/internal/common"
	"carma/internal/models"
	"carma/internal/repositories"
)

// ConsumptionInput is the write shape for consumption records. Dates arrive
// already parsed; the author is always the caller, never client-supplied.
type ConsumptionInput struct {
	Amount         float64
	StartDate      string
	EndDate        string
	ReportDate     string
	Description    *string
	ProjectID      uuid.UUID
	ActivityTypeID uuid.UUID
	FuelTypeID     *uuid.UUID
	UnitID         uuid.UUID
}

// ConsumptionService applies the authorization policy to consumption records
// and enforces the value invariants storage does not (amount ≥ 0, start ≤ end).
type ConsumptionService interface {
	List(ctx context.Context, caller authz.Caller) ([]*models.ConsumptionRow, error)
	Create(ctx context.Context, caller authz.Caller, input *ConsumptionInput) (*models.Consumption, error)
	Update(ctx context.Context, caller authz.Caller, id uuid.UUID, input *ConsumptionInput) (*models.Consumption, error)
	Delete(ctx context.Context, caller authz.Caller, id uuid.UUID) error
}

type consumptionService struct {
	consumptions repositories.ConsumptionRepository
	projects     repositories.ProjectRepository
}

func NewConsumptionService(consumptions repositories.ConsumptionRepository,
	projects repositories.ProjectRepository) ConsumptionService {
	return &consumptionService{
		consumptions: consumptions,
		projects:     projects,
	}
}

// List returns exactly the rows the caller's role permits: everything for
// admins, the company's rows for companyadmins, and membership projects for
// users. The restriction is applied in the query, never as a post-filter.
func (s *consumptionService) List(ctx context.Context, caller authz.Caller) ([]*models.ConsumptionRow, error) {
	switch authz.ConsumptionListScope(caller) {
	case authz.ScopeAll:
		return s.consumptions.ListAll(ctx)
	case authz.ScopeCompany:
		return s.consumptions.ListByCompany(ctx, *caller.CompanyID)
	case authz.ScopeProjects:
		return s.consumptions.ListByProjects(ctx, caller.ProjectIDs)
	default:
		return nil, common.ErrForbidden
	}
}

func (s *consumptionService) Create(ctx context.Context, caller authz.Caller, input *ConsumptionInput) (*models.Consumption, error) {
	consumption, err := s.buildRecord(input)
	if err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if !authz.CanCreateConsumption(caller, project.ID, project.CompanyID) {
		return nil, common.ErrForbidden
	}

	consumption.ID = uuid.New()
	consumption.UserID = caller.UserID

	if err := s.consumptions.Create(ctx, consumption); err != nil {
		return nil, err
	}
	return consumption, nil
}

func (s *consumptionService) Update(ctx context.Context, caller authz.Caller, id uuid.UUID, input *ConsumptionInput) (*models.Consumption, error) {
	existing, err := s.consumptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, existing.ProjectID)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutateConsumption(caller, existing.UserID, project.CompanyID) {
		return nil, common.ErrForbidden
	}

	updated, err := s.buildRecord(input)
	if err != nil {
		return nil, err
	}

	// Moving the record to another project requires create rights there.
	if input.ProjectID != existing.ProjectID {
		target, err := s.projects.GetByID(ctx, input.ProjectID)
		if err != nil {
			return nil, err
		}
		if !authz.CanCreateConsumption(caller, target.ID, target.CompanyID) {
			return nil, common.ErrForbidden
		}
	}

	updated.ID = existing.ID
	updated.UserID = existing.UserID

	if err := s.consumptions.Update(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *consumptionService) Delete(ctx context.Context, caller authz.Caller, id uuid.UUID) error {
	existing, err := s.consumptions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	project, err := s.projects.GetByID(ctx, existing.ProjectID)
	if err != nil {
		return err
	}
	if !authz.CanMutateConsumption(caller, existing.UserID, project.CompanyID) {
		return common.ErrForbidden
	}
	return s.consumptions.Delete(ctx, id)
}

func (s *consumptionService) buildRecord(input *ConsumptionInput) (*models.Consumption, error) {
	if input.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", common.ErrValidation)
	}

	startDate, err := common.ParseDate(input.StartDate, "start_date")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	endDate, err := common.ParseDate(input.EndDate, "end_date")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	reportDate, err := common.ParseDate(input.ReportDate, "report_date")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: end_date must not be before start_date", common.ErrValidation)
	}

	return &models.Consumption{
		Amount:         input.Amount,
		StartDate:      startDate,
		EndDate:        endDate,
		ReportDate:     reportDate,
		Description:    input.Description,
		ProjectID:      input.ProjectID,
		ActivityTypeID: input.ActivityTypeID,
		FuelTypeID:     input.FuelTypeID,
		UnitID:         input.UnitID,
	}, nil
}
