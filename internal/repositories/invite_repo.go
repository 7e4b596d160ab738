package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"carma/internal/common"
	"carma/internal/models"
)

type InviteRepository interface {
	Create(ctx context.Context, invite *models.Invite) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invite, error)
	GetByToken(ctx context.Context, token string) (*models.Invite, error)
	ListAll(ctx context.Context) ([]*models.Invite, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Invite, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ResetToken(ctx context.Context, id uuid.UUID, token string, createdAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteIn(ctx context.Context, q Querier, id uuid.UUID) error
	DeleteExpired(ctx context.Context, threshold time.Time) (int64, error)
}

type inviteRepo struct {
	db Database
}

func NewInviteRepo(db Database) InviteRepository {
	return &inviteRepo{db: db}
}

const inviteColumns = `id, email, first_name, last_name, role, company_id, invite_token, created_at`

func scanInvite(row pgx.Row) (*models.Invite, error) {
	invite := &models.Invite{}
	err := row.Scan(&invite.ID, &invite.Email, &invite.FirstName, &invite.LastName,
		&invite.Role, &invite.CompanyID, &invite.InviteToken, &invite.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return invite, nil
}

func (r *inviteRepo) Create(ctx context.Context, invite *models.Invite) error {
	query := `
		INSERT INTO invites (id, email, first_name, last_name, role, company_id, invite_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query, invite.ID, invite.Email, invite.FirstName, invite.LastName,
		invite.Role, invite.CompanyID, invite.InviteToken, invite.CreatedAt)
	return err
}

func (r *inviteRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE id = $1`
	return scanInvite(r.db.QueryRow(ctx, query, id))
}

func (r *inviteRepo) GetByToken(ctx context.Context, token string) (*models.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE invite_token = $1`
	return scanInvite(r.db.QueryRow(ctx, query, token))
}

func (r *inviteRepo) ListAll(ctx context.Context) ([]*models.Invite, error) {
	rows, err := r.db.Query(ctx, `SELECT `+inviteColumns+` FROM invites ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectInvites(rows)
}

func (r *inviteRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE company_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	return collectInvites(rows)
}

func collectInvites(rows pgx.Rows) ([]*models.Invite, error) {
	defer rows.Close()

	var invites []*models.Invite
	for rows.Next() {
		invite := &models.Invite{}
		if err := rows.Scan(&invite.ID, &invite.Email, &invite.FirstName, &invite.LastName,
			&invite.Role, &invite.CompanyID, &invite.InviteToken, &invite.CreatedAt); err != nil {
			return nil, err
		}
		invites = append(invites, invite)
	}
	return invites, rows.Err()
}

func (r *inviteRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM invites WHERE email = $1`, email).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ResetToken rotates the invite token and restarts the expiry window. The
// previous token becomes permanently unusable.
func (r *inviteRepo) ResetToken(ctx context.Context, id uuid.UUID, token string, createdAt time.Time) error {
	query := `UPDATE invites SET invite_token = $1, created_at = $2 WHERE id = $3`
	_, err := r.db.Exec(ctx, query, token, createdAt, id)
	return err
}

func (r *inviteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DeleteIn(ctx, r.db, id)
}

func (r *inviteRepo) DeleteIn(ctx context.Context, q Querier, id uuid.UUID) error {
	_, err := q.Exec(ctx, `DELETE FROM invites WHERE id = $1`, id)
	return err
}

// DeleteExpired purges invites created before the threshold. Called on every
// list and token lookup (lazy sweep) and by the background job.
func (r *inviteRepo) DeleteExpired(ctx context.Context, threshold time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM invites WHERE created_at < $1`, threshold)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
