package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"carma/internal/common"
	"carma/internal/models"
)

type InviteRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      InviteRepository
	users     UserRepository
	companyID uuid.UUID
	ctx       context.Context
}

func (suite *InviteRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewInviteRepo(mock)
	suite.users = NewUserRepo(mock)
	suite.companyID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *InviteRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestInviteRepoTestSuite(t *testing.T) {
	suite.Run(t, new(InviteRepoTestSuite))
}

func (suite *InviteRepoTestSuite) sampleInvite() *models.Invite {
	return &models.Invite{
		ID:          uuid.New(),
		Email:       "new@example.com",
		FirstName:   "New",
		LastName:    "Hire",
		Role:        models.RoleUser,
		CompanyID:   suite.companyID,
		InviteToken: "sample-token",
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (suite *InviteRepoTestSuite) TestCreate() {
	invite := suite.sampleInvite()

	suite.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO invites`)).
		WithArgs(invite.ID, invite.Email, invite.FirstName, invite.LastName,
			invite.Role, invite.CompanyID, invite.InviteToken, invite.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.ctx, invite)
	assert.NoError(suite.T(), err)
}

func (suite *InviteRepoTestSuite) TestGetByToken() {
	invite := suite.sampleInvite()

	rows := pgxmock.NewRows([]string{"id", "email", "first_name", "last_name", "role", "company_id", "invite_token", "created_at"}).
		AddRow(invite.ID, invite.Email, invite.FirstName, invite.LastName,
			invite.Role, invite.CompanyID, invite.InviteToken, invite.CreatedAt)

	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, email, first_name, last_name, role, company_id, invite_token, created_at FROM invites WHERE invite_token = $1`)).
		WithArgs(invite.InviteToken).
		WillReturnRows(rows)

	got, err := suite.repo.GetByToken(suite.ctx, invite.InviteToken)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), invite.ID, got.ID)
	assert.Equal(suite.T(), invite.Email, got.Email)
}

func (suite *InviteRepoTestSuite) TestGetByTokenNotFound() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`FROM invites WHERE invite_token = $1`)).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "first_name", "last_name", "role", "company_id", "invite_token", "created_at"}))

	_, err := suite.repo.GetByToken(suite.ctx, "missing")
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *InviteRepoTestSuite) TestResetToken() {
	id := uuid.New()
	createdAt := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	suite.mock.ExpectExec(regexp.QuoteMeta(`UPDATE invites SET invite_token = $1, created_at = $2 WHERE id = $3`)).
		WithArgs("fresh-token", createdAt, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.ResetToken(suite.ctx, id, "fresh-token", createdAt)
	assert.NoError(suite.T(), err)
}

func (suite *InviteRepoTestSuite) TestDeleteExpired() {
	threshold := time.Date(2025, 5, 2, 12, 0, 0, 0, time.UTC)

	suite.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM invites WHERE created_at < $1`)).
		WithArgs(threshold).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	purged, err := suite.repo.DeleteExpired(suite.ctx, threshold)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), purged)
}

// Redemption runs the user insert and the invite delete in one transaction.
func (suite *InviteRepoTestSuite) TestRedeemTransaction() {
	invite := suite.sampleInvite()
	user := &models.User{
		ID:           uuid.New(),
		FirstName:    invite.FirstName,
		LastName:     invite.LastName,
		Email:        invite.Email,
		PasswordHash: "bcrypt-hash",
		Role:         invite.Role,
		CompanyID:    &suite.companyID,
	}

	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(user.ID, user.FirstName, user.LastName, user.Email,
			user.PasswordHash, user.Role, user.CompanyID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM invites WHERE id = $1`)).
		WithArgs(invite.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.mock.ExpectCommit()

	tx, err := suite.mock.Begin(suite.ctx)
	assert.NoError(suite.T(), err)

	assert.NoError(suite.T(), suite.users.CreateIn(suite.ctx, tx, user))
	assert.NoError(suite.T(), suite.repo.DeleteIn(suite.ctx, tx, invite.ID))
	assert.NoError(suite.T(), tx.Commit(suite.ctx))
}
