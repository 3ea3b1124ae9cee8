package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/stock"
)

// StorageAreaModel is the persistence model for the StorageArea aggregate.
type StorageAreaModel struct {
	TenantAggregateModel
	Code     string `gorm:"type:varchar(50);not null;index"`
	Name     string `gorm:"type:varchar(200);not null"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (StorageAreaModel) TableName() string {
	return "storage_areas"
}

// ToDomain converts the model to a domain StorageArea.
func (m *StorageAreaModel) ToDomain() *stock.StorageArea {
	return &stock.StorageArea{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		IsActive:            m.IsActive,
	}
}

// StorageAreaModelFromDomain creates a model from a domain StorageArea.
func StorageAreaModelFromDomain(a *stock.StorageArea) *StorageAreaModel {
	m := &StorageAreaModel{Code: a.Code, Name: a.Name, IsActive: a.IsActive}
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	return m
}

// LocationModel is the persistence model for the Location entity.
type LocationModel struct {
	BaseModel
	TenantID uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_location_tenant_code,priority:1"`
	Code     string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_location_tenant_code,priority:2"`
	Name     string     `gorm:"type:varchar(200);not null"`
	Type     string     `gorm:"type:varchar(20);not null"`
	AreaID   *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (LocationModel) TableName() string {
	return "locations"
}

// ToDomain converts the model to a domain Location.
func (m *LocationModel) ToDomain() *stock.Location {
	return &stock.Location{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		Code:       m.Code,
		Name:       m.Name,
		Type:       stock.LocationType(m.Type),
		AreaID:     m.AreaID,
	}
}

// LocationModelFromDomain creates a model from a domain Location.
func LocationModelFromDomain(l *stock.Location) *LocationModel {
	m := &LocationModel{
		TenantID: l.TenantID,
		Code:     l.Code,
		Name:     l.Name,
		Type:     string(l.Type),
		AreaID:   l.AreaID,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// TransferRequestModel is the persistence model for the TransferRequest
// aggregate. The resolved areas are denormalized so the planner never joins
// locations.
type TransferRequestModel struct {
	TenantAggregateModel
	ProductID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Quantity       int64      `gorm:"not null"`
	FromLocationID uuid.UUID  `gorm:"type:uuid;not null"`
	ToLocationID   uuid.UUID  `gorm:"type:uuid;not null"`
	FromAreaID     *uuid.UUID `gorm:"type:uuid;index"`
	ToAreaID       *uuid.UUID `gorm:"type:uuid;index"`
	EffectiveDate  *time.Time `gorm:"type:date"`
	PlannedDate    *time.Time `gorm:"type:date"`
	State          string     `gorm:"type:varchar(20);not null;index"`
	Reference      string     `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (TransferRequestModel) TableName() string {
	return "transfer_requests"
}

// ToDomain converts the model to a domain TransferRequest.
func (m *TransferRequestModel) ToDomain() *stock.TransferRequest {
	return &stock.TransferRequest{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		ProductID:           m.ProductID,
		Quantity:            m.Quantity,
		FromLocationID:      m.FromLocationID,
		ToLocationID:        m.ToLocationID,
		FromAreaID:          m.FromAreaID,
		ToAreaID:            m.ToAreaID,
		EffectiveDate:       utcDate(m.EffectiveDate),
		PlannedDate:         utcDate(m.PlannedDate),
		State:               stock.TransferState(m.State),
		Reference:           m.Reference,
	}
}

// TransferRequestModelFromDomain creates a model from a domain TransferRequest.
func TransferRequestModelFromDomain(t *stock.TransferRequest) *TransferRequestModel {
	m := &TransferRequestModel{
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
	}
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	return m
}

// LedgerEntryModel is the persistence model for append-only stock movements.
type LedgerEntryModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	AreaID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_ledger_area_product_time,priority:1"`
	ProductID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_ledger_area_product_time,priority:2"`
	Quantity   int64      `gorm:"not null"`
	OccurredAt time.Time  `gorm:"not null;index:idx_ledger_area_product_time,priority:3"`
	SourceType string     `gorm:"type:varchar(20);not null"`
	SourceID   *uuid.UUID `gorm:"type:uuid"`
	Note       string     `gorm:"type:varchar(500)"`
	CreatedAt  time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "stock_ledger_entries"
}

// ToDomain converts the model to a domain LedgerEntry.
func (m *LedgerEntryModel) ToDomain() *stock.LedgerEntry {
	return &stock.LedgerEntry{
		ID:         m.ID,
		TenantID:   m.TenantID,
		AreaID:     m.AreaID,
		ProductID:  m.ProductID,
		Quantity:   m.Quantity,
		OccurredAt: m.OccurredAt,
		SourceType: stock.LedgerSourceType(m.SourceType),
		SourceID:   m.SourceID,
		Note:       m.Note,
		CreatedAt:  m.CreatedAt,
	}
}

// LedgerEntryModelFromDomain creates a model from a domain LedgerEntry.
func LedgerEntryModelFromDomain(e *stock.LedgerEntry) *LedgerEntryModel {
	return &LedgerEntryModel{
		ID:         e.ID,
		TenantID:   e.TenantID,
		AreaID:     e.AreaID,
		ProductID:  e.ProductID,
		Quantity:   e.Quantity,
		OccurredAt: e.OccurredAt,
		SourceType: string(e.SourceType),
		SourceID:   e.SourceID,
		Note:       e.Note,
		CreatedAt:  e.CreatedAt,
	}
}

// utcDate normalizes a DATE column read back by the driver, which may carry
// the session time zone, to midnight UTC.
func utcDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	y, mo, d := t.Date()
	day := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	return &day
}
