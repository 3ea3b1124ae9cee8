package stock

import (
	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/shared"
)

const (
	AggregateTypeStorageArea = "StorageArea"
	AggregateTypeTransfer    = "TransferRequest"

	EventTypeStorageAreaCreated = "StorageAreaCreated"
	EventTypeTransferCreated    = "TransferCreated"
	EventTypeTransferCompleted  = "TransferCompleted"
	EventTypeTransferCancelled  = "TransferCancelled"
)

// StorageAreaCreatedEvent is raised when a storage area is created
type StorageAreaCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

func NewStorageAreaCreatedEvent(a *StorageArea) *StorageAreaCreatedEvent {
	return &StorageAreaCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStorageAreaCreated, AggregateTypeStorageArea, a.ID, a.TenantID),
		Code:            a.Code,
		Name:            a.Name,
	}
}

// TransferEvent carries the fields listeners need to react to a transfer
// without reloading it.
type TransferEvent struct {
	shared.BaseDomainEvent
	ProductID  uuid.UUID  `json:"product_id"`
	Quantity   int64      `json:"quantity"`
	FromAreaID *uuid.UUID `json:"from_area_id,omitempty"`
	ToAreaID   *uuid.UUID `json:"to_area_id,omitempty"`
	State      string     `json:"state"`
}

func newTransferEvent(eventType string, t *TransferRequest) *TransferEvent {
	return &TransferEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeTransfer, t.ID, t.TenantID),
		ProductID:       t.ProductID,
		Quantity:        t.Quantity,
		FromAreaID:      t.FromAreaID,
		ToAreaID:        t.ToAreaID,
		State:           string(t.State),
	}
}

func NewTransferCreatedEvent(t *TransferRequest) *TransferEvent {
	return newTransferEvent(EventTypeTransferCreated, t)
}

func NewTransferCompletedEvent(t *TransferRequest) *TransferEvent {
	return newTransferEvent(EventTypeTransferCompleted, t)
}

func NewTransferCancelledEvent(t *TransferRequest) *TransferEvent {
	return newTransferEvent(EventTypeTransferCancelled, t)
}
