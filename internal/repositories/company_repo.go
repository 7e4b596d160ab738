package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"carma/internal/common"
	"carma/internal/models"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	List(ctx context.Context) ([]*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type companyRepo struct {
	db Database
}

func NewCompanyRepo(db Database) CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) Create(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO companies (id, name, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, company.ID, company.Name)
	return err
}

func (r *companyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company := &models.Company{}
	query := `SELECT id, name, created_at, updated_at FROM companies WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&company.ID, &company.Name, &company.CreatedAt, &company.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return company, nil
}

func (r *companyRepo) List(ctx context.Context) ([]*models.Company, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at, updated_at FROM companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		company := &models.Company{}
		if err := rows.Scan(&company.ID, &company.Name, &company.CreatedAt, &company.UpdatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

func (r *companyRepo) Update(ctx context.Context, company *models.Company) error {
	query := `UPDATE companies SET name = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, company.Name, company.ID)
	return err
}

func (r *companyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	return err
}
