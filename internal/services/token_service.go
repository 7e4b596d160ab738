package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"carma/internal/common"
	"carma/internal/config"
	"carma/internal/models"
)

// Token rejection reasons. All of them wrap common.ErrUnauthorized, so any
// rejection surfaces as 401.
var (
	ErrTokenExpired   = fmt.Errorf("%w: token expired", common.ErrUnauthorized)
	ErrTokenSignature = fmt.Errorf("%w: bad token signature", common.ErrUnauthorized)
	ErrTokenMalformed = fmt.Errorf("%w: malformed token", common.ErrUnauthorized)
)

// AccessClaims are the claims carried by an access token. The subject is the
// user ID.
type AccessClaims struct {
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CompanyID *uuid.UUID  `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues, verifies and rotates the two token kinds. Access and
// refresh tokens are signed under disjoint secrets; verification is stateless,
// nothing is persisted server-side.
type TokenService interface {
	IssueAccess(user *models.User) (string, error)
	IssueRefresh(userID uuid.UUID) (string, error)
	VerifyAccess(token string) (*AccessClaims, error)
	VerifyRefresh(token string) (uuid.UUID, error)
	// Rotate exchanges a still-valid refresh token for a fresh access/refresh
	// pair. The old refresh token is not revoked; it stays usable until its
	// natural expiry (no server-side deny-list).
	Rotate(refreshToken string, user *models.User) (access string, refresh string, err error)
}

type tokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenService(cfg *config.Config) TokenService {
	return &tokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
}

func (s *tokenService) IssueAccess(user *models.User) (string, error) {
	now := s.now()
	claims := AccessClaims{
		Email:     user.Email,
		Role:      user.Role,
		CompanyID: user.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.accessSecret)
}

func (s *tokenService) IssueRefresh(userID uuid.UUID) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.refreshSecret)
}

func (s *tokenService) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return s.accessSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, classifyTokenError(err)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, ErrTokenMalformed
	}
	if !claims.Role.Valid() {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func (s *tokenService) VerifyRefresh(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return s.refreshSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return uuid.Nil, classifyTokenError(err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrTokenMalformed
	}
	return userID, nil
}

func (s *tokenService) Rotate(refreshToken string, user *models.User) (string, string, error) {
	userID, err := s.VerifyRefresh(refreshToken)
	if err != nil {
		return "", "", err
	}
	if userID != user.ID {
		return "", "", ErrTokenMalformed
	}

	access, err := s.IssueAccess(user)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.IssueRefresh(user.ID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	default:
		return ErrTokenMalformed
	}
}
