package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"carma/internal/authz"
	"carma/internal/common"
	"carma/internal/models"
	"carma/internal/repositories"
	"carma/internal/security"
)

// CreateInviteRequest carries the inviter's intent. Role and company may be
// overridden by the authorization policy before persisting.
type CreateInviteRequest struct {
	Email     string
	FirstName string
	LastName  string
	Role      models.Role
	CompanyID uuid.UUID
}

// InviteService owns the invite lifecycle: pending → redeemed, cancelled or
// expired. Expiry is computed from CreatedAt at read time; expired rows are
// purged on every list and token lookup. Redeeming is the only way an account
// gets created.
type InviteService interface {
	Create(ctx context.Context, caller authz.Caller, req *CreateInviteRequest) (*models.Invite, error)
	List(ctx context.Context, caller authz.Caller) ([]*models.Invite, error)
	GetByToken(ctx context.Context, token string) (*models.Invite, error)
	Cancel(ctx context.Context, caller authz.Caller, id uuid.UUID) error
	Resend(ctx context.Context, caller authz.Caller, id uuid.UUID) (*models.Invite, error)
	Redeem(ctx context.Context, token, password string) (*models.User, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type inviteService struct {
	db       repositories.Database
	invites  repositories.InviteRepository
	users    repositories.UserRepository
	mailer   InviteMailer
	linkBase string
	expiry   time.Duration
	now      func() time.Time
}

func NewInviteService(db repositories.Database, invites repositories.InviteRepository,
	users repositories.UserRepository, mailer InviteMailer, linkBase string, expiry time.Duration) InviteService {
	return &inviteService{
		db:       db,
		invites:  invites,
		users:    users,
		mailer:   mailer,
		linkBase: linkBase,
		expiry:   expiry,
		now:      time.Now,
	}
}

func (s *inviteService) Create(ctx context.Context, caller authz.Caller, req *CreateInviteRequest) (*models.Invite, error) {
	if !authz.CanInvite(caller) {
		return nil, common.ErrForbidden
	}

	if err := common.ValidateRequiredString(req.Email, "email"); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	// Companyadmins cannot elevate or invite across tenants; the request is
	// silently coerced, not rejected.
	role, companyID := authz.CoerceInvite(caller, req.Role, req.CompanyID)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrValidation, role)
	}
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("%w: company is required", common.ErrValidation)
	}

	// Invites and users share the email-uniqueness namespace.
	if taken, err := s.users.ExistsByEmail(ctx, req.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("%w: email is already in use", common.ErrConflict)
	}
	if pending, err := s.invites.ExistsByEmail(ctx, req.Email); err != nil {
		return nil, err
	} else if pending {
		return nil, fmt.Errorf("%w: an invite for this email is already pending", common.ErrConflict)
	}

	invite := &models.Invite{
		ID:          uuid.New(),
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Role:        role,
		CompanyID:   companyID,
		InviteToken: generateInviteToken(),
		CreatedAt:   s.now().UTC(),
	}

	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, err
	}

	s.dispatchInviteMail(invite)

	return invite, nil
}

func (s *inviteService) List(ctx context.Context, caller authz.Caller) ([]*models.Invite, error) {
	if _, err := s.PurgeExpired(ctx); err != nil {
		log.Printf("invite purge failed: %v", err)
	}

	switch authz.InviteListScope(caller) {
	case authz.ScopeAll:
		return s.invites.ListAll(ctx)
	case authz.ScopeCompany:
		return s.invites.ListByCompany(ctx, *caller.CompanyID)
	default:
		return nil, common.ErrForbidden
	}
}

// GetByToken resolves a pending invite. Absent and expired invites are
// indistinguishable to the caller; both come back as not found, so tokens
// cannot be probed for existence.
func (s *inviteService) GetByToken(ctx context.Context, token string) (*models.Invite, error) {
	if _, err := s.PurgeExpired(ctx); err != nil {
		log.Printf("invite purge failed: %v", err)
	}

	invite, err := s.invites.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invite.ExpiredAt(s.now(), s.expiry) {
		if err := s.invites.Delete(ctx, invite.ID); err != nil {
			log.Printf("failed to delete expired invite %s: %v", invite.ID, err)
		}
		return nil, common.ErrNotFound
	}
	return invite, nil
}

func (s *inviteService) Cancel(ctx context.Context, caller authz.Caller, id uuid.UUID) error {
	invite, err := s.invites.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanManageInvite(caller, invite.CompanyID) {
		return common.ErrForbidden
	}
	return s.invites.Delete(ctx, id)
}

// Resend rotates the token and restarts the expiry window; the old link is
// permanently dead afterwards.
func (s *inviteService) Resend(ctx context.Context, caller authz.Caller, id uuid.UUID) (*models.Invite, error) {
	invite, err := s.invites.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageInvite(caller, invite.CompanyID) {
		return nil, common.ErrForbidden
	}

	invite.InviteToken = generateInviteToken()
	invite.CreatedAt = s.now().UTC()
	if err := s.invites.ResetToken(ctx, invite.ID, invite.InviteToken, invite.CreatedAt); err != nil {
		return nil, err
	}

	s.dispatchInviteMail(invite)

	return invite, nil
}

// Redeem converts an invite into a user account, exactly once. The user
// insert and the invite delete run in one transaction so a crash cannot leave
// a half-redeemed state.
func (s *inviteService) Redeem(ctx context.Context, token, password string) (*models.User, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrValidation)
	}

	invite, err := s.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}

	companyID := invite.CompanyID
	user := &models.User{
		ID:           uuid.New(),
		FirstName:    invite.FirstName,
		LastName:     invite.LastName,
		Email:        invite.Email,
		PasswordHash: hash,
		Role:         invite.Role,
		CompanyID:    &companyID,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.users.CreateIn(ctx, tx, user); err != nil {
		return nil, err
	}
	if err := s.invites.DeleteIn(ctx, tx, invite.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return user, nil
}

// PurgeExpired deletes invites past the expiry window. Runs before every list
// and token lookup, plus periodically from the background sweep.
func (s *inviteService) PurgeExpired(ctx context.Context) (int64, error) {
	threshold := s.now().Add(-s.expiry)
	return s.invites.DeleteExpired(ctx, threshold)
}

// dispatchInviteMail sends the invitation asynchronously. A failed or hung
// send must never fail the invite nor hold open the HTTP response.
func (s *inviteService) dispatchInviteMail(invite *models.Invite) {
	link := fmt.Sprintf("%s?token=%s", s.linkBase, invite.InviteToken)
	email, firstName, lastName := invite.Email, invite.FirstName, invite.LastName
	go func() {
		if err := s.mailer.SendInvite(email, firstName, lastName, link); err != nil {
			log.Printf("failed to send invite email to %s: %v", email, err)
		}
	}()
}

// generateInviteToken returns a cryptographically random, URL-safe token with
// 32 bytes of entropy.
func generateInviteToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return base64.RawURLEncoding.EncodeToString(bytes)
}
