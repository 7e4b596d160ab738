package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"carma/internal/common"
	"carma/internal/models"
)

type TokenServiceTestSuite struct {
	suite.Suite
	service *tokenService
	user    *models.User
}

func (suite *TokenServiceTestSuite) SetupTest() {
	companyID := uuid.New()
	suite.service = &tokenService{
		accessSecret:  []byte("access-secret-for-tests"),
		refreshSecret: []byte("refresh-secret-for-tests"),
		accessTTL:     15 * time.Minute,
		refreshTTL:    7 * 24 * time.Hour,
		now:           time.Now,
	}
	suite.user = &models.User{
		ID:        uuid.New(),
		Email:     "jane@example.com",
		Role:      models.RoleCompanyAdmin,
		CompanyID: &companyID,
	}
}

func TestTokenServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceTestSuite))
}

func (suite *TokenServiceTestSuite) TestAccessRoundTrip() {
	token, err := suite.service.IssueAccess(suite.user)
	assert.NoError(suite.T(), err)

	claims, err := suite.service.VerifyAccess(token)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.user.ID.String(), claims.Subject)
	assert.Equal(suite.T(), suite.user.Email, claims.Email)
	assert.Equal(suite.T(), models.RoleCompanyAdmin, claims.Role)
	assert.Equal(suite.T(), *suite.user.CompanyID, *claims.CompanyID)
	assert.NotEmpty(suite.T(), claims.ID)
}

func (suite *TokenServiceTestSuite) TestAccessValidBeforeExpiry() {
	issued := time.Now()
	suite.service.now = func() time.Time { return issued }
	token, err := suite.service.IssueAccess(suite.user)
	assert.NoError(suite.T(), err)

	suite.service.now = func() time.Time { return issued.Add(14 * time.Minute) }
	_, err = suite.service.VerifyAccess(token)
	assert.NoError(suite.T(), err)
}

func (suite *TokenServiceTestSuite) TestAccessExpired() {
	issued := time.Now()
	suite.service.now = func() time.Time { return issued }
	token, err := suite.service.IssueAccess(suite.user)
	assert.NoError(suite.T(), err)

	suite.service.now = func() time.Time { return issued.Add(16 * time.Minute) }
	_, err = suite.service.VerifyAccess(token)
	assert.ErrorIs(suite.T(), err, ErrTokenExpired)
	assert.True(suite.T(), errors.Is(err, common.ErrUnauthorized))
}

func (suite *TokenServiceTestSuite) TestAccessTokenRejectedAsRefresh() {
	token, err := suite.service.IssueAccess(suite.user)
	assert.NoError(suite.T(), err)

	_, err = suite.service.VerifyRefresh(token)
	assert.ErrorIs(suite.T(), err, ErrTokenSignature)
}

func (suite *TokenServiceTestSuite) TestRefreshTokenRejectedAsAccess() {
	token, err := suite.service.IssueRefresh(suite.user.ID)
	assert.NoError(suite.T(), err)

	_, err = suite.service.VerifyAccess(token)
	assert.ErrorIs(suite.T(), err, ErrTokenSignature)
}

func (suite *TokenServiceTestSuite) TestMalformedToken() {
	_, err := suite.service.VerifyAccess("not-a-token")
	assert.ErrorIs(suite.T(), err, ErrTokenMalformed)

	_, err = suite.service.VerifyRefresh("")
	assert.ErrorIs(suite.T(), err, ErrTokenMalformed)
}

func (suite *TokenServiceTestSuite) TestRefreshRoundTrip() {
	token, err := suite.service.IssueRefresh(suite.user.ID)
	assert.NoError(suite.T(), err)

	userID, err := suite.service.VerifyRefresh(token)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.user.ID, userID)
}

func (suite *TokenServiceTestSuite) TestRotate() {
	refresh, err := suite.service.IssueRefresh(suite.user.ID)
	assert.NoError(suite.T(), err)

	newAccess, newRefresh, err := suite.service.Rotate(refresh, suite.user)
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), newAccess)
	// Every rotation mints fresh tokens; the jti claim alone guarantees it.
	assert.NotEqual(suite.T(), refresh, newRefresh)

	claims, err := suite.service.VerifyAccess(newAccess)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.user.ID.String(), claims.Subject)

	userID, err := suite.service.VerifyRefresh(newRefresh)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.user.ID, userID)
}

// A refresh token for one user must not mint tokens for another.
func (suite *TokenServiceTestSuite) TestRotateRejectsMismatchedUser() {
	refresh, err := suite.service.IssueRefresh(uuid.New())
	assert.NoError(suite.T(), err)

	_, _, err = suite.service.Rotate(refresh, suite.user)
	assert.ErrorIs(suite.T(), err, ErrTokenMalformed)
}

// A role change takes effect on rotation because claims are rebuilt from the
// user record, not copied from the old token.
func (suite *TokenServiceTestSuite) TestRotateReflectsRoleChange() {
	refresh, err := suite.service.IssueRefresh(suite.user.ID)
	assert.NoError(suite.T(), err)

	suite.user.Role = models.RoleUser
	newAccess, _, err := suite.service.Rotate(refresh, suite.user)
	assert.NoError(suite.T(), err)

	claims, err := suite.service.VerifyAccess(newAccess)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RoleUser, claims.Role)
}
