package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/shared"
	"github.com/stockplan/backend/internal/domain/stock"
	"github.com/stockplan/backend/internal/infrastructure/persistence/models"
	"github.com/stockplan/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormLocationRepository implements stock.LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// FindByID finds a location by ID within a tenant
func (r *GormLocationRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*stock.Location, error) {
	var model models.LocationModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("id = ?", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByArea returns the locations grouped under an area
func (r *GormLocationRepository) FindByArea(ctx context.Context, tenantID, areaID uuid.UUID) ([]stock.Location, error) {
	var rows []models.LocationModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("area_id = ?", areaID).
		Order("code ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return locationsToDomain(rows), nil
}

// FindAll returns a page of locations and the total count
func (r *GormLocationRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.Location, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LocationModel{}).Scopes(tenant.Scope(tenantID))
	if v, ok := filter.Filters["area_id"].(uuid.UUID); ok {
		query = query.Where("area_id = ?", v)
	}
	if v, ok := filter.Filters["type"].(string); ok && v != "" {
		query = query.Where("type = ?", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.LocationModel
	if err := paginate(query, filter, LocationSortFields, "code").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return locationsToDomain(rows), total, nil
}

// Save creates or updates a location
func (r *GormLocationRepository) Save(ctx context.Context, loc *stock.Location) error {
	model := models.LocationModelFromDomain(loc)
	return r.db.WithContext(ctx).Save(model).Error
}

func locationsToDomain(rows []models.LocationModel) []stock.Location {
	locs := make([]stock.Location, len(rows))
	for i := range rows {
		locs[i] = *rows[i].ToDomain()
	}
	return locs
}
