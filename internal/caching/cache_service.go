package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"carma/internal/models"
)

// CacheService is a read-through cache for the reference tables served by the
// options endpoints. These tables are tiny and read on every form load, so
// listings are cached whole and invalidated on any mutation. The Get methods
// report hits explicitly; an empty listing is a hit like any other and must
// not send the caller back to the database.
type CacheService interface {
	GetCompanies(ctx context.Context) ([]*models.Company, bool, error)
	SetCompanies(ctx context.Context, companies []*models.Company, ttl time.Duration) error

	GetActivityTypes(ctx context.Context) ([]*models.ActivityType, bool, error)
	SetActivityTypes(ctx context.Context, activities []*models.ActivityType, ttl time.Duration) error

	GetFuelTypes(ctx context.Context) ([]*models.FuelType, bool, error)
	SetFuelTypes(ctx context.Context, fuels []*models.FuelType, ttl time.Duration) error

	GetUnits(ctx context.Context) ([]*models.Unit, bool, error)
	SetUnits(ctx context.Context, units []*models.Unit, ttl time.Duration) error

	InvalidateOptions(ctx context.Context) error
	Ping(ctx context.Context) error
}

const (
	companiesKey     = "carma:options:companies"
	activityTypesKey = "carma:options:activity_types"
	fuelTypesKey     = "carma:options:fuel_types"
	unitsKey         = "carma:options:units"
)

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisCacheService{client: client}
}

// get unmarshals a cached listing into dest. A miss yields (false, nil).
func (r *redisCacheService) get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetCompanies(ctx context.Context) ([]*models.Company, bool, error) {
	var companies []*models.Company
	hit, err := r.get(ctx, companiesKey, &companies)
	if err != nil || !hit {
		return nil, false, err
	}
	return companies, true, nil
}

func (r *redisCacheService) SetCompanies(ctx context.Context, companies []*models.Company, ttl time.Duration) error {
	return r.set(ctx, companiesKey, companies, ttl)
}

func (r *redisCacheService) GetActivityTypes(ctx context.Context) ([]*models.ActivityType, bool, error) {
	var activities []*models.ActivityType
	hit, err := r.get(ctx, activityTypesKey, &activities)
	if err != nil || !hit {
		return nil, false, err
	}
	return activities, true, nil
}

func (r *redisCacheService) SetActivityTypes(ctx context.Context, activities []*models.ActivityType, ttl time.Duration) error {
	return r.set(ctx, activityTypesKey, activities, ttl)
}

func (r *redisCacheService) GetFuelTypes(ctx context.Context) ([]*models.FuelType, bool, error) {
	var fuels []*models.FuelType
	hit, err := r.get(ctx, fuelTypesKey, &fuels)
	if err != nil || !hit {
		return nil, false, err
	}
	return fuels, true, nil
}

func (r *redisCacheService) SetFuelTypes(ctx context.Context, fuels []*models.FuelType, ttl time.Duration) error {
	return r.set(ctx, fuelTypesKey, fuels, ttl)
}

func (r *redisCacheService) GetUnits(ctx context.Context) ([]*models.Unit, bool, error) {
	var units []*models.Unit
	hit, err := r.get(ctx, unitsKey, &units)
	if err != nil || !hit {
		return nil, false, err
	}
	return units, true, nil
}

func (r *redisCacheService) SetUnits(ctx context.Context, units []*models.Unit, ttl time.Duration) error {
	return r.set(ctx, unitsKey, units, ttl)
}

func (r *redisCacheService) InvalidateOptions(ctx context.Context) error {
	err := r.client.Del(ctx, companiesKey, activityTypesKey, fuelTypesKey, unitsKey).Err()
	if err != nil {
		return fmt.Errorf("failed to invalidate options cache: %w", err)
	}
	return nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
