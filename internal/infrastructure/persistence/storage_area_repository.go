package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/shared"
	"github.com/stockplan/backend/internal/domain/stock"
	"github.com/stockplan/backend/internal/infrastructure/persistence/models"
	"github.com/stockplan/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormStorageAreaRepository implements stock.StorageAreaRepository using GORM
type GormStorageAreaRepository struct {
	db *gorm.DB
}

// NewGormStorageAreaRepository creates a new GormStorageAreaRepository
func NewGormStorageAreaRepository(db *gorm.DB) *GormStorageAreaRepository {
	return &GormStorageAreaRepository{db: db}
}

// FindByID finds an area by ID within a tenant
func (r *GormStorageAreaRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*stock.StorageArea, error) {
	var model models.StorageAreaModel
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

// FindByCode finds an area by its code within a tenant
func (r *GormStorageAreaRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*stock.StorageArea, error) {
	var model models.StorageAreaModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("code = ?", strings.ToUpper(code)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive returns active areas ordered by code then id
func (r *GormStorageAreaRepository) FindActive(ctx context.Context, tenantID uuid.UUID) ([]stock.StorageArea, error) {
	var rows []models.StorageAreaModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("is_active = ?", true).
		Order("code ASC").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return storageAreasToDomain(rows), nil
}

// FindAll returns a page of areas and the total count
func (r *GormStorageAreaRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.StorageArea, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StorageAreaModel{}).Scopes(tenant.Scope(tenantID))
	if v, ok := filter.Filters["is_active"].(bool); ok {
		query = query.Where("is_active = ?", v)
	}
	if v, ok := filter.Filters["search"].(string); ok && v != "" {
		like := "%" + v + "%"
		query = query.Where("code ILIKE ? OR name ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.StorageAreaModel
	if err := paginate(query, filter, StorageAreaSortFields, "code").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return storageAreasToDomain(rows), total, nil
}

// Save creates or updates an area
func (r *GormStorageAreaRepository) Save(ctx context.Context, area *stock.StorageArea) error {
	model := models.StorageAreaModelFromDomain(area)
	return r.db.WithContext(ctx).Save(model).Error
}

func storageAreasToDomain(rows []models.StorageAreaModel) []stock.StorageArea {
	areas := make([]stock.StorageArea, len(rows))
	for i := range rows {
		areas[i] = *rows[i].ToDomain()
	}
	return areas
}
