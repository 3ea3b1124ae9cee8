package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/shared"
)

// LedgerSourceType says what produced a ledger entry.
type LedgerSourceType string

const (
	LedgerSourceTransfer   LedgerSourceType = "TRANSFER"
	LedgerSourceAdjustment LedgerSourceType = "ADJUSTMENT"
)

// LedgerEntry is an append-only signed change to the on-hand quantity of a
// product in an area. On-hand at an instant is the sum of entries that
// occurred at or before it.
type LedgerEntry struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	AreaID     uuid.UUID
	ProductID  uuid.UUID
	Quantity   int64
	OccurredAt time.Time
	SourceType LedgerSourceType
	SourceID   *uuid.UUID
	Note       string
	CreatedAt  time.Time
}

// NewAdjustment records a manual correction (stock count, opening balance).
func NewAdjustment(tenantID, areaID, productID uuid.UUID, delta int64, occurredAt time.Time, note string) (*LedgerEntry, error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	if areaID == uuid.Nil || productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Area and product are required")
	}
	if delta == 0 {
		return nil, shared.ErrInvalidQuantity.WithMessage("Adjustment quantity cannot be zero")
	}
	if len(note) > 500 {
		return nil, shared.NewDomainError("INVALID_NOTE", "Note cannot exceed 500 characters")
	}
	return &LedgerEntry{
		ID:         uuid.New(),
		TenantID:   tenantID,
		AreaID:     areaID,
		ProductID:  productID,
		Quantity:   delta,
		OccurredAt: occurredAt,
		SourceType: LedgerSourceAdjustment,
		Note:       note,
		CreatedAt:  time.Now(),
	}, nil
}

func newTransferEntry(t *TransferRequest, areaID uuid.UUID, qty int64, at time.Time) *LedgerEntry {
	id := t.ID
	return &LedgerEntry{
		ID:         uuid.New(),
		TenantID:   t.TenantID,
		AreaID:     areaID,
		ProductID:  t.ProductID,
		Quantity:   qty,
		OccurredAt: at,
		SourceType: LedgerSourceTransfer,
		SourceID:   &id,
		Note:       t.Reference,
		CreatedAt:  time.Now(),
	}
}
