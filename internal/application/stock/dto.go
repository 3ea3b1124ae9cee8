package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockplan/backend/internal/domain/shared"
	"github.com/stockplan/backend/internal/domain/stock"
)

// CreateAreaRequest represents a request to create a storage area
type CreateAreaRequest struct {
	Code string `json:"code" binding:"required,max=50"`
	Name string `json:"name" binding:"required,max=200"`
}

// UpdateAreaRequest represents a request to rename or (de)activate an area
type UpdateAreaRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	IsActive *bool  `json:"is_active"`
}

// AreaResponse represents a storage area in API responses
type AreaResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

func ToAreaResponse(a *stock.StorageArea) AreaResponse {
	return AreaResponse{
		ID:        a.ID,
		Code:      a.Code,
		Name:      a.Name,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		Version:   a.Version,
	}
}

// CreateLocationRequest represents a request to create a location
type CreateLocationRequest struct {
	Code   string     `json:"code" binding:"required,max=50"`
	Name   string     `json:"name" binding:"required,max=200"`
	Type   string     `json:"type" binding:"required,oneof=STORAGE PRODUCTION SUPPLIER CUSTOMER LOST_FOUND"`
	AreaID *uuid.UUID `json:"area_id"`
}

// LocationResponse represents a location in API responses
type LocationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	AreaID    *uuid.UUID `json:"area_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func ToLocationResponse(l *stock.Location) LocationResponse {
	return LocationResponse{
		ID:        l.ID,
		Code:      l.Code,
		Name:      l.Name,
		Type:      string(l.Type),
		AreaID:    l.AreaID,
		CreatedAt: l.CreatedAt,
	}
}

// CreateTransferRequest represents a request to create a transfer. Quantity
// is a decimal on the wire but must hold a whole number.
type CreateTransferRequest struct {
	ProductID      uuid.UUID       `json:"product_id" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required"`
	FromLocationID uuid.UUID       `json:"from_location_id" binding:"required"`
	ToLocationID   uuid.UUID       `json:"to_location_id" binding:"required"`
	PlannedDate    *time.Time      `json:"planned_date"`
	Reference      string          `json:"reference" binding:"max=100"`
}

// RescheduleTransferRequest represents a request to move a transfer's planned date
type RescheduleTransferRequest struct {
	PlannedDate *time.Time `json:"planned_date"`
}

// TransferListFilter represents filter options for transfer lists
type TransferListFilter struct {
	State     string     `form:"state" binding:"omitempty,oneof=DRAFT ASSIGNED DONE CANCELLED"`
	ProductID *uuid.UUID `form:"product_id"`
	AreaID    *uuid.UUID `form:"area_id"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size" binding:"omitempty,max=500"`
}

// ToFilter converts the list filter into a repository filter.
func (f TransferListFilter) ToFilter() shared.Filter {
	filter := shared.DefaultFilter()
	filter.Page = f.Page
	filter.PageSize = f.PageSize
	if f.State != "" {
		filter.Filters["state"] = f.State
	}
	if f.ProductID != nil {
		filter.Filters["product_id"] = *f.ProductID
	}
	if f.AreaID != nil {
		filter.Filters["area_id"] = *f.AreaID
	}
	return filter.Normalize()
}

// TransferResponse represents a transfer request in API responses
type TransferResponse struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      uuid.UUID  `json:"product_id"`
	Quantity       int64      `json:"quantity"`
	FromLocationID uuid.UUID  `json:"from_location_id"`
	ToLocationID   uuid.UUID  `json:"to_location_id"`
	FromAreaID     *uuid.UUID `json:"from_area_id,omitempty"`
	ToAreaID       *uuid.UUID `json:"to_area_id,omitempty"`
	EffectiveDate  *time.Time `json:"effective_date,omitempty"`
	PlannedDate    *time.Time `json:"planned_date,omitempty"`
	State          string     `json:"state"`
	Reference      string     `json:"reference,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	Version        int        `json:"version"`
}

func ToTransferResponse(t *stock.TransferRequest) TransferResponse {
	return TransferResponse{
		ID:             t.ID,
		ProductID:      t.ProductID,
		Quantity:       t.Quantity,
		FromLocationID: t.FromLocationID,
		ToLocationID:   t.ToLocationID,
		FromAreaID:     t.FromAreaID,
		ToAreaID:       t.ToAreaID,
		EffectiveDate:  t.EffectiveDate,
		PlannedDate:    t.PlannedDate,
		State:          string(t.State),
		Reference:      t.Reference,
		CreatedAt:      t.CreatedAt,
		Version:        t.Version,
	}
}

// AdjustmentRequest represents a manual on-hand correction
type AdjustmentRequest struct {
	AreaID     uuid.UUID       `json:"area_id" binding:"required"`
	ProductID  uuid.UUID       `json:"product_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	OccurredAt *time.Time      `json:"occurred_at"`
	Note       string          `json:"note" binding:"max=500"`
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID         uuid.UUID  `json:"id"`
	AreaID     uuid.UUID  `json:"area_id"`
	ProductID  uuid.UUID  `json:"product_id"`
	Quantity   int64      `json:"quantity"`
	OccurredAt time.Time  `json:"occurred_at"`
	SourceType string     `json:"source_type"`
	SourceID   *uuid.UUID `json:"source_id,omitempty"`
	Note       string     `json:"note,omitempty"`
}

func ToLedgerEntryResponse(e *stock.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:         e.ID,
		AreaID:     e.AreaID,
		ProductID:  e.ProductID,
		Quantity:   e.Quantity,
		OccurredAt: e.OccurredAt,
		SourceType: string(e.SourceType),
		SourceID:   e.SourceID,
		Note:       e.Note,
	}
}

// OnHandQuery selects what on-hand quantities to report
type OnHandQuery struct {
	AreaIDs    []uuid.UUID
	ProductIDs []uuid.UUID
	AsOf       *time.Time
}

// OnHandItem is the on-hand quantity of one product in one area
type OnHandItem struct {
	AreaID    uuid.UUID `json:"area_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
}

// maxQuantity bounds API quantities to what int64 arithmetic handles safely.
var maxQuantity = decimal.NewFromInt(1 << 53)

// WholeQuantity converts an API decimal quantity into units. Fractional
// values are rejected.
func WholeQuantity(q decimal.Decimal) (int64, error) {
	if !q.IsInteger() {
		return 0, shared.ErrInvalidQuantity.WithMessage("Quantity must be a whole number of units")
	}
	if q.Abs().GreaterThan(maxQuantity) {
		return 0, shared.ErrInvalidQuantity.WithMessage("Quantity is out of range")
	}
	return q.IntPart(), nil
}
