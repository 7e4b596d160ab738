package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"carma/internal/common"
	"carma/internal/models"
)

type ConsumptionRepository interface {
	Create(ctx context.Context, consumption *models.Consumption) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Consumption, error)
	ListAll(ctx context.Context) ([]*models.ConsumptionRow, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.ConsumptionRow, error)
	ListByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]*models.ConsumptionRow, error)
	Update(ctx context.Context, consumption *models.Consumption) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type consumptionRepo struct {
	db Database
}

func NewConsumptionRepo(db Database) ConsumptionRepository {
	return &consumptionRepo{db: db}
}

func (r *consumptionRepo) Create(ctx context.Context, consumption *models.Consumption) error {
	query := `
		INSERT INTO consumptions (id, amount, start_date, end_date, report_date, description,
			user_id, project_id, activity_type_id, fuel_type_id, unit_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, consumption.ID, consumption.Amount, consumption.StartDate,
		consumption.EndDate, consumption.ReportDate, consumption.Description, consumption.UserID,
		consumption.ProjectID, consumption.ActivityTypeID, consumption.FuelTypeID, consumption.UnitID)
	return err
}

func (r *consumptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Consumption, error) {
	consumption := &models.Consumption{}
	query := `
		SELECT id, amount, start_date, end_date, report_date, description,
			user_id, project_id, activity_type_id, fuel_type_id, unit_id, created_at, updated_at
		FROM consumptions
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&consumption.ID, &consumption.Amount,
		&consumption.StartDate, &consumption.EndDate, &consumption.ReportDate, &consumption.Description,
		&consumption.UserID, &consumption.ProjectID, &consumption.ActivityTypeID,
		&consumption.FuelTypeID, &consumption.UnitID, &consumption.CreatedAt, &consumption.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return consumption, nil
}

// Listing resolves reference names in one query. The fuel type is LEFT JOINed
// because it is nullable; the company name is only selected for the admin
// scope.
const consumptionRowSelect = `
	SELECT cs.id, cs.amount, cs.start_date, cs.end_date, cs.report_date, cs.description,
		cs.user_id, cs.project_id, p.name, a.name, f.name, un.name, u.first_name, u.last_name
	FROM consumptions cs
	JOIN projects p ON p.id = cs.project_id
	JOIN activity_types a ON a.id = cs.activity_type_id
	LEFT JOIN fuel_types f ON f.id = cs.fuel_type_id
	JOIN units un ON un.id = cs.unit_id
	JOIN users u ON u.id = cs.user_id
`

func (r *consumptionRepo) ListAll(ctx context.Context) ([]*models.ConsumptionRow, error) {
	query := `
	SELECT cs.id, cs.amount, cs.start_date, cs.end_date, cs.report_date, cs.description,
		cs.user_id, cs.project_id, p.name, a.name, f.name, un.name, u.first_name, u.last_name, c.name
	FROM consumptions cs
	JOIN projects p ON p.id = cs.project_id
	JOIN activity_types a ON a.id = cs.activity_type_id
	LEFT JOIN fuel_types f ON f.id = cs.fuel_type_id
	JOIN units un ON un.id = cs.unit_id
	JOIN users u ON u.id = cs.user_id
	JOIN companies c ON c.id = p.company_id
	ORDER BY cs.report_date DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectConsumptionRows(rows, true)
}

func (r *consumptionRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.ConsumptionRow, error) {
	query := consumptionRowSelect + `
	WHERE p.company_id = $1
	ORDER BY cs.report_date DESC
	`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	return collectConsumptionRows(rows, false)
}

func (r *consumptionRepo) ListByProjects(ctx context.Context, projectIDs []uuid.UUID) ([]*models.ConsumptionRow, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(projectIDs))
	for i, id := range projectIDs {
		ids[i] = id.String()
	}

	query := consumptionRowSelect + `
	WHERE cs.project_id = ANY($1::uuid[])
	ORDER BY cs.report_date DESC
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	return collectConsumptionRows(rows, false)
}

func collectConsumptionRows(rows pgx.Rows, withCompany bool) ([]*models.ConsumptionRow, error) {
	defer rows.Close()

	var result []*models.ConsumptionRow
	for rows.Next() {
		row := &models.ConsumptionRow{}
		dest := []any{&row.ID, &row.Amount, &row.StartDate, &row.EndDate, &row.ReportDate,
			&row.Description, &row.UserID, &row.ProjectID, &row.Project, &row.ActivityType,
			&row.FuelType, &row.Unit, &row.UserFirstName, &row.UserLastName}
		if withCompany {
			dest = append(dest, &row.Company)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *consumptionRepo) Update(ctx context.Context, consumption *models.Consumption) error {
	query := `
		UPDATE consumptions
		SET amount = $1, start_date = $2, end_date = $3, report_date = $4, description = $5,
			project_id = $6, activity_type_id = $7, fuel_type_id = $8, unit_id = $9, updated_at = NOW()
		WHERE id = $10
	`
	_, err := r.db.Exec(ctx, query, consumption.Amount, consumption.StartDate, consumption.EndDate,
		consumption.ReportDate, consumption.Description, consumption.ProjectID,
		consumption.ActivityTypeID, consumption.FuelTypeID, consumption.UnitID, consumption.ID)
	return err
}

func (r *consumptionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM consumptions WHERE id = $1`, id)
	return err
}
