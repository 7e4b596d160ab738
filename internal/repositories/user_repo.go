package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"carma/internal/common"
	"carma/internal/models"
)

// UserRow is a user joined with its company name for directory listings.
type UserRow struct {
	ID        uuid.UUID      `json:"id"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Email     string         `json:"email"`
	Role      models.Role    `json:"role"`
	CompanyID *uuid.UUID     `json:"company_id"`
	Company   *string        `json:"company"`
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	CreateIn(ctx context.Context, q Querier, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListAll(ctx context.Context) ([]*UserRow, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*UserRow, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepo struct {
	db Database
}

func NewUserRepo(db Database) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, first_name, last_name, email, password_hash, role, company_id, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.FirstName, &user.LastName, &user.Email, &user.PasswordHash,
		&user.Role, &user.CompanyID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return r.CreateIn(ctx, r.db, user)
}

func (r *userRepo) CreateIn(ctx context.Context, q Querier, user *models.User) error {
	query := `
		INSERT INTO users (id, first_name, last_name, email, password_hash, role, company_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := q.Exec(ctx, query, user.ID, user.FirstName, user.LastName, user.Email,
		user.PasswordHash, user.Role, user.CompanyID)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *userRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE email = $1`, email).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

const userRowQuery = `
	SELECT u.id, u.first_name, u.last_name, u.email, u.role, u.company_id, c.name
	FROM users u
	LEFT JOIN companies c ON c.id = u.company_id
`

func (r *userRepo) ListAll(ctx context.Context) ([]*UserRow, error) {
	rows, err := r.db.Query(ctx, userRowQuery+` ORDER BY u.created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectUserRows(rows)
}

func (r *userRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*UserRow, error) {
	rows, err := r.db.Query(ctx, userRowQuery+` WHERE u.company_id = $1 ORDER BY u.created_at DESC`, companyID)
	if err != nil {
		return nil, err
	}
	return collectUserRows(rows)
}

func collectUserRows(rows pgx.Rows) ([]*UserRow, error) {
	defer rows.Close()

	var users []*UserRow
	for rows.Next() {
		u := &UserRow{}
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role, &u.CompanyID, &u.Company); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update persists the mutable fields. The company affiliation is immutable
// post-creation and deliberately absent from the statement.
func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, role = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, user.FirstName, user.LastName, user.Email, user.Role, user.ID)
	return err
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}
