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

// pendingOrder is the FIFO order the planner consumes requests in.
const pendingOrder = "effective_date ASC NULLS LAST, planned_date ASC NULLS LAST, created_at ASC, id ASC"

// GormTransferRepository implements stock.TransferRepository using GORM.
// It also serves as the planner's transfer feed.
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// FindByID finds a transfer request by ID within a tenant
func (r *GormTransferRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*stock.TransferRequest, error) {
	var model models.TransferRequestModel
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

// FindPending returns draft and assigned requests in FIFO order
func (r *GormTransferRepository) FindPending(ctx context.Context, tenantID uuid.UUID) ([]stock.TransferRequest, error) {
	states := make([]string, 0, 2)
	for _, s := range stock.PendingStates() {
		states = append(states, string(s))
	}

	var rows []models.TransferRequestModel
	if err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(tenantID)).
		Where("state IN ?", states).
		Order(pendingOrder).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return transfersToDomain(rows), nil
}

// FindAll returns a page of transfer requests and the total count.
// Supported filters: state, product_id, area_id (either side).
func (r *GormTransferRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]stock.TransferRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TransferRequestModel{}).Scopes(tenant.Scope(tenantID))
	if v, ok := filter.Filters["state"].(string); ok && v != "" {
		query = query.Where("state = ?", v)
	}
	if v, ok := filter.Filters["product_id"].(uuid.UUID); ok {
		query = query.Where("product_id = ?", v)
	}
	if v, ok := filter.Filters["area_id"].(uuid.UUID); ok {
		query = query.Where("(from_area_id = ? OR to_area_id = ?)", v, v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.TransferRequestModel
	if err := paginate(query, filter, TransferSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return transfersToDomain(rows), total, nil
}

// Save creates or updates a transfer request
func (r *GormTransferRepository) Save(ctx context.Context, t *stock.TransferRequest) error {
	model := models.TransferRequestModelFromDomain(t)
	return r.db.WithContext(ctx).Save(model).Error
}

func transfersToDomain(rows []models.TransferRequestModel) []stock.TransferRequest {
	items := make([]stock.TransferRequest, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items
}
