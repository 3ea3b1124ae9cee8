package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/shared"
	"github.com/stockplan/backend/internal/domain/stock"
	"github.com/stockplan/backend/internal/infrastructure/persistence/models"
	"github.com/stockplan/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormLedgerRepository implements stock.LedgerRepository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Append inserts ledger entries. Entries are never updated.
func (r *GormLedgerRepository) Append(ctx context.Context, entries ...*stock.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.LedgerEntryModel, len(entries))
	for i, e := range entries {
		rows[i] = models.LedgerEntryModelFromDomain(e)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindByArea returns a page of an area's movements, newest first by default
func (r *GormLedgerRepository) FindByArea(ctx context.Context, tenantID, areaID uuid.UUID, filter shared.Filter) ([]stock.LedgerEntry, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Scopes(tenant.Scope(tenantID)).
		Where("area_id = ?", areaID)
	if v, ok := filter.Filters["product_id"].(uuid.UUID); ok {
		query = query.Where("product_id = ?", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.LedgerEntryModel
	if err := paginate(query, filter, LedgerSortFields, "occurred_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	entries := make([]stock.LedgerEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, total, nil
}
