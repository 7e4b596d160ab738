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

// ProjectRow is a project joined with its company name for listings. Status
// stays derived; it is computed at serialization time, never read from here.
type ProjectRow struct {
	ID        uuid.UUID
	Name      string
	StartDate time.Time
	EndDate   *time.Time
	CompanyID uuid.UUID
	Company   string
}

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	ListAll(ctx context.Context) ([]*ProjectRow, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*ProjectRow, error)
	ListByMembership(ctx context.Context, userID uuid.UUID) ([]*ProjectRow, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type projectRepo struct {
	db Database
}

func NewProjectRepo(db Database) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (id, name, start_date, end_date, company_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, project.ID, project.Name, project.StartDate, project.EndDate, project.CompanyID)
	return err
}

func (r *projectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project := &models.Project{}
	query := `
		SELECT id, name, start_date, end_date, company_id, created_at, updated_at
		FROM projects
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&project.ID, &project.Name, &project.StartDate,
		&project.EndDate, &project.CompanyID, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return project, nil
}

const projectRowQuery = `
	SELECT p.id, p.name, p.start_date, p.end_date, p.company_id, c.name
	FROM projects p
	JOIN companies c ON c.id = p.company_id
`

func (r *projectRepo) ListAll(ctx context.Context) ([]*ProjectRow, error) {
	rows, err := r.db.Query(ctx, projectRowQuery+` ORDER BY p.start_date DESC`)
	if err != nil {
		return nil, err
	}
	return collectProjectRows(rows)
}

func (r *projectRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*ProjectRow, error) {
	rows, err := r.db.Query(ctx, projectRowQuery+` WHERE p.company_id = $1 ORDER BY p.start_date DESC`, companyID)
	if err != nil {
		return nil, err
	}
	return collectProjectRows(rows)
}

func (r *projectRepo) ListByMembership(ctx context.Context, userID uuid.UUID) ([]*ProjectRow, error) {
	query := projectRowQuery + `
		JOIN user_projects up ON up.project_id = p.id
		WHERE up.user_id = $1
		ORDER BY p.start_date DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collectProjectRows(rows)
}

func collectProjectRows(rows pgx.Rows) ([]*ProjectRow, error) {
	defer rows.Close()

	var projects []*ProjectRow
	for rows.Next() {
		p := &ProjectRow{}
		if err := rows.Scan(&p.ID, &p.Name, &p.StartDate, &p.EndDate, &p.CompanyID, &p.Company); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Update persists name and dates. The owning company never changes.
func (r *projectRepo) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET name = $1, start_date = $2, end_date = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, project.Name, project.StartDate, project.EndDate, project.ID)
	return err
}

func (r *projectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}
