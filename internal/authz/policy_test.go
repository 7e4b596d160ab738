package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"carma/internal/models"
)

func adminCaller() Caller {
	return Caller{UserID: uuid.New(), Role: models.RoleAdmin}
}

func companyAdminCaller(companyID uuid.UUID) Caller {
	return Caller{UserID: uuid.New(), Role: models.RoleCompanyAdmin, CompanyID: &companyID}
}

func userCaller(companyID uuid.UUID, projects ...uuid.UUID) Caller {
	return Caller{UserID: uuid.New(), Role: models.RoleUser, CompanyID: &companyID, ProjectIDs: projects}
}

func TestListScopesPerRole(t *testing.T) {
	companyID := uuid.New()

	admin := adminCaller()
	companyAdmin := companyAdminCaller(companyID)
	user := userCaller(companyID, uuid.New())

	assert.Equal(t, ScopeAll, ConsumptionListScope(admin))
	assert.Equal(t, ScopeCompany, ConsumptionListScope(companyAdmin))
	assert.Equal(t, ScopeProjects, ConsumptionListScope(user))

	assert.Equal(t, ScopeAll, ProjectListScope(admin))
	assert.Equal(t, ScopeCompany, ProjectListScope(companyAdmin))
	assert.Equal(t, ScopeProjects, ProjectListScope(user))

	assert.Equal(t, ScopeAll, UserListScope(admin))
	assert.Equal(t, ScopeCompany, UserListScope(companyAdmin))
	assert.Equal(t, ScopeNone, UserListScope(user))

	assert.Equal(t, ScopeAll, InviteListScope(admin))
	assert.Equal(t, ScopeCompany, InviteListScope(companyAdmin))
	assert.Equal(t, ScopeNone, InviteListScope(user))

	unknown := Caller{UserID: uuid.New(), Role: models.Role("intern")}
	assert.Equal(t, ScopeNone, ConsumptionListScope(unknown))
	assert.Equal(t, ScopeNone, ProjectListScope(unknown))
}

// A companyadmin record missing its company must resolve to no visibility, so
// downstream code never dereferences a company that is not there.
func TestCompanyScopeRequiresCompany(t *testing.T) {
	orphan := Caller{UserID: uuid.New(), Role: models.RoleCompanyAdmin}

	assert.Equal(t, ScopeNone, ConsumptionListScope(orphan))
	assert.Equal(t, ScopeNone, ProjectListScope(orphan))
	assert.Equal(t, ScopeNone, UserListScope(orphan))
	assert.Equal(t, ScopeNone, InviteListScope(orphan))

	// Coercion never lets such a caller invite into an arbitrary company; the
	// nil company makes the invite fail validation downstream.
	role, company := CoerceInvite(orphan, models.RoleAdmin, uuid.New())
	assert.Equal(t, models.RoleUser, role)
	assert.Equal(t, uuid.Nil, company)
}

func TestCanMutateConsumption(t *testing.T) {
	companyID := uuid.New()
	otherCompanyID := uuid.New()
	authorID := uuid.New()

	// Any single clause of the OR-chain grants access.
	assert.True(t, CanMutateConsumption(adminCaller(), authorID, otherCompanyID))
	assert.True(t, CanMutateConsumption(companyAdminCaller(companyID), authorID, companyID))
	author := Caller{UserID: authorID, Role: models.RoleUser, CompanyID: &companyID}
	assert.True(t, CanMutateConsumption(author, authorID, otherCompanyID))

	// A companyadmin of a different company is denied.
	assert.False(t, CanMutateConsumption(companyAdminCaller(companyID), authorID, otherCompanyID))

	// A user who is neither the author nor a member of the record's project
	// is denied, even though they belong to some project.
	stranger := userCaller(companyID, uuid.New())
	assert.False(t, CanMutateConsumption(stranger, authorID, companyID))
}

func TestCanCreateConsumption(t *testing.T) {
	companyID := uuid.New()
	projectID := uuid.New()

	assert.True(t, CanCreateConsumption(adminCaller(), projectID, companyID))
	assert.True(t, CanCreateConsumption(companyAdminCaller(companyID), projectID, companyID))
	assert.False(t, CanCreateConsumption(companyAdminCaller(uuid.New()), projectID, companyID))

	member := userCaller(companyID, projectID)
	assert.True(t, CanCreateConsumption(member, projectID, companyID))

	nonMember := userCaller(companyID, uuid.New())
	assert.False(t, CanCreateConsumption(nonMember, projectID, companyID))
}

func TestProjectManagement(t *testing.T) {
	companyID := uuid.New()
	projectID := uuid.New()

	assert.True(t, CanManageProject(adminCaller(), companyID))
	assert.True(t, CanManageProject(companyAdminCaller(companyID), companyID))
	assert.False(t, CanManageProject(companyAdminCaller(uuid.New()), companyID))
	assert.False(t, CanManageProject(userCaller(companyID, projectID), companyID))

	member := userCaller(companyID, projectID)
	assert.True(t, CanReadProject(member, projectID, companyID))
	assert.False(t, CanReadProject(member, uuid.New(), companyID))
}

func TestUserAccess(t *testing.T) {
	companyID := uuid.New()
	targetID := uuid.New()

	assert.True(t, CanReadUser(adminCaller(), targetID, nil))
	assert.True(t, CanReadUser(companyAdminCaller(companyID), targetID, &companyID))
	assert.False(t, CanReadUser(companyAdminCaller(companyID), targetID, nil))

	otherCompany := uuid.New()
	assert.False(t, CanReadUser(companyAdminCaller(companyID), targetID, &otherCompany))

	// A plain user may read themselves but nobody else.
	self := Caller{UserID: targetID, Role: models.RoleUser, CompanyID: &companyID}
	assert.True(t, CanReadUser(self, targetID, &companyID))
	assert.False(t, CanReadUser(userCaller(companyID), targetID, &companyID))

	assert.True(t, CanManageUser(adminCaller(), nil))
	assert.True(t, CanManageUser(companyAdminCaller(companyID), &companyID))
	assert.False(t, CanManageUser(companyAdminCaller(companyID), &otherCompany))
	assert.False(t, CanManageUser(userCaller(companyID), &companyID))
}

func TestInvitePolicy(t *testing.T) {
	companyID := uuid.New()
	otherCompanyID := uuid.New()

	assert.True(t, CanInvite(adminCaller()))
	assert.True(t, CanInvite(companyAdminCaller(companyID)))
	assert.False(t, CanInvite(userCaller(companyID)))

	// Companyadmins cannot elevate or cross-tenant invite: the request is
	// silently coerced, not rejected.
	role, company := CoerceInvite(companyAdminCaller(companyID), models.RoleAdmin, otherCompanyID)
	assert.Equal(t, models.RoleUser, role)
	assert.Equal(t, companyID, company)

	role, company = CoerceInvite(adminCaller(), models.RoleCompanyAdmin, otherCompanyID)
	assert.Equal(t, models.RoleCompanyAdmin, role)
	assert.Equal(t, otherCompanyID, company)

	assert.True(t, CanManageInvite(adminCaller(), otherCompanyID))
	assert.True(t, CanManageInvite(companyAdminCaller(companyID), companyID))
	assert.False(t, CanManageInvite(companyAdminCaller(companyID), otherCompanyID))
	assert.False(t, CanManageInvite(userCaller(companyID), companyID))
}

func TestReferenceDataPolicy(t *testing.T) {
	companyID := uuid.New()

	assert.True(t, CanManageReferenceData(adminCaller()))
	assert.False(t, CanManageReferenceData(companyAdminCaller(companyID)))
	assert.False(t, CanManageReferenceData(userCaller(companyID)))
}
