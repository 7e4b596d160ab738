package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"carma/internal/common"
	"carma/internal/models"
)

// Reference-table repositories. These tables are global (not tenant-scoped)
// and tiny; the options endpoints cache their listings.

type ActivityTypeRepository interface {
	Create(ctx context.Context, activity *models.ActivityType) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ActivityType, error)
	List(ctx context.Context) ([]*models.ActivityType, error)
	Update(ctx context.Context, activity *models.ActivityType) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type activityTypeRepo struct {
	db Database
}

func NewActivityTypeRepo(db Database) ActivityTypeRepository {
	return &activityTypeRepo{db: db}
}

func (r *activityTypeRepo) Create(ctx context.Context, activity *models.ActivityType) error {
	query := `INSERT INTO activity_types (id, name, created_at, updated_at) VALUES ($1, $2, NOW(), NOW())`
	_, err := r.db.Exec(ctx, query, activity.ID, activity.Name)
	return err
}

func (r *activityTypeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ActivityType, error) {
	activity := &models.ActivityType{}
	query := `SELECT id, name, created_at, updated_at FROM activity_types WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&activity.ID, &activity.Name, &activity.CreatedAt, &activity.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return activity, nil
}

func (r *activityTypeRepo) List(ctx context.Context) ([]*models.ActivityType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at, updated_at FROM activity_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*models.ActivityType
	for rows.Next() {
		activity := &models.ActivityType{}
		if err := rows.Scan(&activity.ID, &activity.Name, &activity.CreatedAt, &activity.UpdatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

func (r *activityTypeRepo) Update(ctx context.Context, activity *models.ActivityType) error {
	query := `UPDATE activity_types SET name = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, activity.Name, activity.ID)
	return err
}

func (r *activityTypeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM activity_types WHERE id = $1`, id)
	return err
}

type FuelTypeRepository interface {
	Create(ctx context.Context, fuel *models.FuelType) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.FuelType, error)
	List(ctx context.Context) ([]*models.FuelType, error)
	Update(ctx context.Context, fuel *models.FuelType) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type fuelTypeRepo struct {
	db Database
}

func NewFuelTypeRepo(db Database) FuelTypeRepository {
	return &fuelTypeRepo{db: db}
}

func (r *fuelTypeRepo) Create(ctx context.Context, fuel *models.FuelType) error {
	query := `
		INSERT INTO fuel_types (id, name, average_co2_emission, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, fuel.ID, fuel.Name, fuel.AverageCO2Emission)
	return err
}

func (r *fuelTypeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FuelType, error) {
	fuel := &models.FuelType{}
	query := `SELECT id, name, average_co2_emission, created_at, updated_at FROM fuel_types WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&fuel.ID, &fuel.Name, &fuel.AverageCO2Emission, &fuel.CreatedAt, &fuel.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return fuel, nil
}

func (r *fuelTypeRepo) List(ctx context.Context) ([]*models.FuelType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, average_co2_emission, created_at, updated_at FROM fuel_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fuels []*models.FuelType
	for rows.Next() {
		fuel := &models.FuelType{}
		if err := rows.Scan(&fuel.ID, &fuel.Name, &fuel.AverageCO2Emission, &fuel.CreatedAt, &fuel.UpdatedAt); err != nil {
			return nil, err
		}
		fuels = append(fuels, fuel)
	}
	return fuels, rows.Err()
}

func (r *fuelTypeRepo) Update(ctx context.Context, fuel *models.FuelType) error {
	query := `UPDATE fuel_types SET name = $1, average_co2_emission = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.db.Exec(ctx, query, fuel.Name, fuel.AverageCO2Emission, fuel.ID)
	return err
}

func (r *fuelTypeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM fuel_types WHERE id = $1`, id)
	return err
}

type UnitRepository interface {
	Create(ctx context.Context, unit *models.Unit) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	List(ctx context.Context) ([]*models.Unit, error)
	Update(ctx context.Context, unit *models.Unit) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type unitRepo struct {
	db Database
}

func NewUnitRepo(db Database) UnitRepository {
	return &unitRepo{db: db}
}

func (r *unitRepo) Create(ctx context.Context, unit *models.Unit) error {
	query := `INSERT INTO units (id, name, created_at, updated_at) VALUES ($1, $2, NOW(), NOW())`
	_, err := r.db.Exec(ctx, query, unit.ID, unit.Name)
	return err
}

func (r *unitRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	unit := &models.Unit{}
	query := `SELECT id, name, created_at, updated_at FROM units WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&unit.ID, &unit.Name, &unit.CreatedAt, &unit.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return unit, nil
}

func (r *unitRepo) List(ctx context.Context) ([]*models.Unit, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at, updated_at FROM units ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []*models.Unit
	for rows.Next() {
		unit := &models.Unit{}
		if err := rows.Scan(&unit.ID, &unit.Name, &unit.CreatedAt, &unit.UpdatedAt); err != nil {
			return nil, err
		}
		units = append(units, unit)
	}
	return units, rows.Err()
}

func (r *unitRepo) Update(ctx context.Context, unit *models.Unit) error {
	query := `UPDATE units SET name = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, unit.Name, unit.ID)
	return err
}

func (r *unitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM units WHERE id = $1`, id)
	return err
}
