package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"carma/internal/authz"
	"carma/internal/common"
	"carma/internal/models"
	"carma/internal/repositories"
)

type MockConsumptionRepository struct {
	mock.Mock
}

func (m *MockConsumptionRepository) Create(ctx context.Context, consumption *models.Consumption) error {
	args := m.Called(ctx, consumption)
	return args.Error(0)
}

func (m *MockConsumptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Consumption, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Consumption), args.Error(1)
}

func (m *MockConsumptionRepository) ListAll(ctx context.Context) ([]*models.ConsumptionRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ConsumptionRow), args.Error(1)
}

func (m *MockConsumptionRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.ConsumptionRow, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ConsumptionRow), args.Error(1)
}

func (m *MockConsumptionRepository) ListByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]*models.ConsumptionRow, error) {
	args := m.Called(ctx, projectIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ConsumptionRow), args.Error(1)
}

func (m *MockConsumptionRepository) Update(ctx context.Context, consumption *models.Consumption) error {
	args := m.Called(ctx, consumption)
	return args.Error(0)
}

func (m *MockConsumptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectRepository) ListAll(ctx context.Context) ([]*repositories.ProjectRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repositories.ProjectRow), args.Error(1)
}

func (m *MockProjectRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*repositories.ProjectRow, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repositories.ProjectRow), args.Error(1)
}

func (m *MockProjectRepository) ListByMembership(ctx context.Context, userID uuid.UUID) ([]*repositories.ProjectRow, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repositories.ProjectRow), args.Error(1)
}

func (m *MockProjectRepository) Update(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type ConsumptionServiceTestSuite struct {
	suite.Suite
	consumptions *MockConsumptionRepository
	projects     *MockProjectRepository
	service      ConsumptionService
	ctx          context.Context

	companyID uuid.UUID
	projectID uuid.UUID
	project   *models.Project
	admin     authz.Caller
	capAdmin  authz.Caller
	member    authz.Caller
	outsider  authz.Caller
}

func (suite *ConsumptionServiceTestSuite) SetupTest() {
	suite.consumptions = &MockConsumptionRepository{}
	suite.projects = &MockProjectRepository{}
	suite.service = NewConsumptionService(suite.consumptions, suite.projects)
	suite.ctx = context.Background()

	suite.companyID = uuid.New()
	suite.projectID = uuid.New()
	suite.project = &models.Project{ID: suite.projectID, Name: "Plant retrofit", CompanyID: suite.companyID}

	suite.admin = authz.Caller{UserID: uuid.New(), Role: models.RoleAdmin}
	suite.capAdmin = authz.Caller{UserID: uuid.New(), Role: models.RoleCompanyAdmin, CompanyID: &suite.companyID}
	suite.member = authz.Caller{UserID: uuid.New(), Role: models.RoleUser, CompanyID: &suite.companyID,
		ProjectIDs: []uuid.UUID{suite.projectID}}
	suite.outsider = authz.Caller{UserID: uuid.New(), Role: models.RoleUser, CompanyID: &suite.companyID}
}

func TestConsumptionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ConsumptionServiceTestSuite))
}

func (suite *ConsumptionServiceTestSuite) validInput() *ConsumptionInput {
	return &ConsumptionInput{
		Amount:         120.5,
		StartDate:      "2025-03-01",
		EndDate:        "2025-03-31",
		ReportDate:     "2025-04-02",
		ProjectID:      suite.projectID,
		ActivityTypeID: uuid.New(),
		UnitID:         uuid.New(),
	}
}

func (suite *ConsumptionServiceTestSuite) TestList_AdminSeesAll() {
	suite.consumptions.On("ListAll", suite.ctx).Return([]*models.ConsumptionRow{}, nil)
	_, err := suite.service.List(suite.ctx, suite.admin)
	assert.NoError(suite.T(), err)
	suite.consumptions.AssertExpectations(suite.T())
}

func (suite *ConsumptionServiceTestSuite) TestList_CompanyAdminScopedToCompany() {
	suite.consumptions.On("ListByCompany", suite.ctx, suite.companyID).Return([]*models.ConsumptionRow{}, nil)
	_, err := suite.service.List(suite.ctx, suite.capAdmin)
	assert.NoError(suite.T(), err)
	suite.consumptions.AssertExpectations(suite.T())
}

func (suite *ConsumptionServiceTestSuite) TestList_UserScopedToMemberships() {
	suite.consumptions.On("ListByProjects", suite.ctx, suite.member.ProjectIDs).Return([]*models.ConsumptionRow{}, nil)
	_, err := suite.service.List(suite.ctx, suite.member)
	assert.NoError(suite.T(), err)
	suite.consumptions.AssertExpectations(suite.T())
}

func (suite *ConsumptionServiceTestSuite) TestList_CompanyAdminWithoutCompanyForbidden() {
	orphan := authz.Caller{UserID: uuid.New(), Role: models.RoleCompanyAdmin}

	var err error
	assert.NotPanics(suite.T(), func() {
		_, err = suite.service.List(suite.ctx, orphan)
	})
	assert.ErrorIs(suite.T(), err, common.ErrForbidden)
	suite.consumptions.AssertNotCalled(suite.T(), "ListByCompany", mock.Anything, mock.Anything)
}

func (suite *ConsumptionServiceTestSuite) TestCreate_MemberSucceedsAndIsAuthor() {
	suite.projects.On("GetByID", suite.ctx, suite.projectID).Return(suite.project, nil)

	var created *models.Consumption
	suite.consumptions.On("Create", suite.ctx, mock.AnythingOfType("*models.Consumption")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.Consumption)
		}).Return(nil)

	record, err := suite.service.Create(suite.ctx, suite.member, suite.validInput())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.member.UserID, record.UserID)
	assert.Equal(suite.T(), suite.member.UserID, created.UserID)
	assert.NotEqual(suite.T(), uuid.Nil, created.ID)
}

func (suite *ConsumptionServiceTestSuite) TestCreate_NonMemberForbidden() {
	suite.projects.On("GetByID", suite.ctx, suite.projectID).Return(suite.project, nil)

	_, err := suite.service.Create(suite.ctx, suite.outsider, suite.validInput())
	assert.ErrorIs(suite.T(), err, common.ErrForbidden)
	suite.consumptions.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
}

func (suite *ConsumptionServiceTestSuite) TestCreate_NegativeAmount() {
	input := suite.validInput()
	input.Amount = -3
	_, err := suite.service.Create(suite.ctx, suite.member, input)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *ConsumptionServiceTestSuite) TestCreate_EndBeforeStart() {
	input := suite.validInput()
	input.EndDate = "2025-02-01"
	_, err := suite.service.Create(suite.ctx, suite.member, input)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *ConsumptionServiceTestSuite) TestCreate_BadDateFormat() {
	input := suite.validInput()
	input.ReportDate = "04/02/2025"
	_, err := suite.service.Create(suite.ctx, suite.member, input)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *ConsumptionServiceTestSuite) TestUpdate_AuthorMayEdit() {
	existing := &models.Consumption{ID: uuid.New(), UserID: suite.member.UserID, ProjectID: suite.projectID}
	suite.consumptions.On("GetByID", suite.ctx, existing.ID).Return(existing, nil)
	suite.projects.On("GetByID", suite.ctx, suite.projectID).Return(suite.project, nil)
	suite.consumptions.On("Update", suite.ctx, mock.AnythingOfType("*models.Consumption")).Return(nil)

	updated, err := suite.service.Update(suite.ctx, suite.member, existing.ID, suite.validInput())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), existing.ID, updated.ID)
	assert.Equal(suite.T(), existing.UserID, updated.UserID)
}

// Membership in the record's project is not enough; only the author, a
// companyadmin of the owning company, or an admin may edit.
func (suite *ConsumptionServiceTestSuite) TestUpdate_NonAuthorMemberForbidden() {
	otherMember := authz.Caller{UserID: uuid.New(), Role: models.RoleUser, CompanyID: &suite.companyID,
		ProjectIDs: []uuid.UUID{suite.projectID}}
	existing := &models.Consumption{ID: uuid.New(), UserID: suite.member.UserID, ProjectID: suite.projectID}
	suite.consumptions.On("GetByID", suite.ctx, existing.ID).Return(existing, nil)
	suite.projects.On("GetByID", suite.ctx, suite.projectID).Return(suite.project, nil)

	_, err := suite.service.Update(suite.ctx, otherMember, existing.ID, suite.validInput())
	assert.ErrorIs(suite.T(), err, common.ErrForbidden)
	suite.consumptions.AssertNotCalled(suite.T(), "Update", mock.Anything, mock.Anything)
}

func (suite *ConsumptionServiceTestSuite) TestUpdate_CompanyAdminOfOwningCompany() {
	existing := &models.Consumption{ID: uuid.New(), UserID: suite.member.UserID, ProjectID: suite.projectID}
	suite.consumptions.On("GetByID", suite.ctx, existing.ID).Return(existing, nil)
	suite.projects.On("GetByID", suite.ctx, suite.projectID).Return(suite.project, nil)
	suite.consumptions.On("Update", suite.ctx, mock.AnythingOfType("*models.Consumption")).Return(nil)

	_, err := suite.service.Update(suite.ctx, suite.capAdmin, existing.ID, suite.validInput())
	assert.NoError(suite.T(), err)
}

// Moving a record to another project needs create rights on the target.
func (suite *ConsumptionServiceTestSuite) TestUpdate_MoveToForeignProjectForbidden() {
	targetProject := &models.Project{ID: uuid.New(), CompanyID: suite.companyID}
	existing := &models.Consumption{ID: uuid.New(), UserID: suite.member.UserID, ProjectID: suite.projectID}

	suite.consumptions.On("GetByID", suite.ctx, existing.ID).Return(existing, nil)
	suite.projects.On("GetByID", suite.ctx, suite.projectID).Return(suite.project, nil)
	suite.projects.On("GetByID", suite.ctx, targetProject.ID).Return(targetProject, nil)

	input := suite.validInput()
	input.ProjectID = targetProject.ID
	_, err := suite.service.Update(suite.ctx, suite.member, existing.ID, input)
	assert.ErrorIs(suite.T(), err, common.ErrForbidden)
}

func (suite *ConsumptionServiceTestSuite) TestDelete_AdminMayDeleteAny() {
	existing := &models.Consumption{ID: uuid.New(), UserID: suite.member.UserID, ProjectID: suite.projectID}
	suite.consumptions.On("GetByID", suite.ctx, existing.ID).Return(existing, nil)
	suite.projects.On("GetByID", suite.ctx, suite.projectID).Return(suite.project, nil)
	suite.consumptions.On("Delete", suite.ctx, existing.ID).Return(nil)

	err := suite.service.Delete(suite.ctx, suite.admin, existing.ID)
	assert.NoError(suite.T(), err)
	suite.consumptions.AssertExpectations(suite.T())
}

func (suite *ConsumptionServiceTestSuite) TestDelete_OutsiderForbidden() {
	existing := &models.Consumption{ID: uuid.New(), UserID: suite.member.UserID, ProjectID: suite.projectID}
	suite.consumptions.On("GetByID", suite.ctx, existing.ID).Return(existing, nil)
	suite.projects.On("GetByID", suite.ctx, suite.projectID).Return(suite.project, nil)

	err := suite.service.Delete(suite.ctx, suite.outsider, existing.ID)
	assert.ErrorIs(suite.T(), err, common.ErrForbidden)
	suite.consumptions.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything)
}
