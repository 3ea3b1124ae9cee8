package stock

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/shared"
)

// TransferState is the lifecycle state of a transfer request.
type TransferState string

const (
	TransferStateDraft     TransferState = "DRAFT"
	TransferStateAssigned  TransferState = "ASSIGNED"
	TransferStateDone      TransferState = "DONE"
	TransferStateCancelled TransferState = "CANCELLED"
)

// IsValid checks if the state is known
func (s TransferState) IsValid() bool {
	switch s {
	case TransferStateDraft, TransferStateAssigned, TransferStateDone, TransferStateCancelled:
		return true
	}
	return false
}

// IsPending reports whether the request still has to happen.
func (s TransferState) IsPending() bool {
	return s == TransferStateDraft || s == TransferStateAssigned
}

// CanTransitionTo checks if the state can move to target.
func (s TransferState) CanTransitionTo(target TransferState) bool {
	switch s {
	case TransferStateDraft:
		return target == TransferStateAssigned || target == TransferStateCancelled
	case TransferStateAssigned:
		return target == TransferStateDone || target == TransferStateCancelled || target == TransferStateDraft
	}
	return false
}

// PendingStates lists the states the planner reads.
func PendingStates() []TransferState {
	return []TransferState{TransferStateDraft, TransferStateAssigned}
}

// TransferRequest is a pending movement of one product between two locations.
// Source and destination areas are resolved from the locations when the
// request is created, so planning never has to look locations up again.
type TransferRequest struct {
	shared.TenantAggregateRoot
	ProductID      uuid.UUID
	Quantity       int64
	FromLocationID uuid.UUID
	ToLocationID   uuid.UUID
	FromAreaID     *uuid.UUID
	ToAreaID       *uuid.UUID
	EffectiveDate  *time.Time
	PlannedDate    *time.Time
	State          TransferState
	Reference      string
}

// NewTransferRequest creates a draft transfer between two locations.
func NewTransferRequest(tenantID, productID uuid.UUID, quantity int64, from, to *Location, plannedDate *time.Time, reference string) (*TransferRequest, error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.ErrInvalidQuantity
	}
	if from == nil || to == nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Source and destination locations are required")
	}
	if from.ID == to.ID {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Source and destination locations must differ")
	}
	if from.TenantID != tenantID || to.TenantID != tenantID {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Locations belong to another tenant")
	}
	if len(reference) > 100 {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Reference cannot exceed 100 characters")
	}

	tr := &TransferRequest{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		Quantity:            quantity,
		FromLocationID:      from.ID,
		ToLocationID:        to.ID,
		FromAreaID:          from.Area(),
		ToAreaID:            to.Area(),
		PlannedDate:         truncateDay(plannedDate),
		State:               TransferStateDraft,
		Reference:           strings.TrimSpace(reference),
	}
	tr.AddDomainEvent(NewTransferCreatedEvent(tr))
	return tr, nil
}

// When is the date the transfer is expected to happen: the effective date
// when set, otherwise the planned date, otherwise unknown.
func (t *TransferRequest) When() *time.Time {
	if t.EffectiveDate != nil {
		return t.EffectiveDate
	}
	return t.PlannedDate
}

// IsPending reports whether the transfer is neither done nor cancelled.
func (t *TransferRequest) IsPending() bool {
	return t.State.IsPending()
}

// IsInternal reports whether both ends resolve to the same area (or both to none).
func (t *TransferRequest) IsInternal() bool {
	return sameArea(t.FromAreaID, t.ToAreaID)
}

// Reschedule changes the planned date of a pending transfer.
func (t *TransferRequest) Reschedule(plannedDate *time.Time) error {
	if !t.IsPending() {
		return shared.NewDomainError("INVALID_STATE", "Only pending transfers can be rescheduled")
	}
	t.PlannedDate = truncateDay(plannedDate)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Assign marks the transfer as reserved for execution.
func (t *TransferRequest) Assign() error {
	return t.transition(TransferStateAssigned)
}

// Unassign moves an assigned transfer back to draft.
func (t *TransferRequest) Unassign() error {
	return t.transition(TransferStateDraft)
}

// Cancel cancels a pending transfer.
func (t *TransferRequest) Cancel() error {
	if err := t.transition(TransferStateCancelled); err != nil {
		return err
	}
	t.AddDomainEvent(NewTransferCancelledEvent(t))
	return nil
}

// Complete executes an assigned transfer at the given instant and returns the
// ledger entries that move its quantity between areas. Virtual ends produce no
// entry; an internal transfer produces none at all.
func (t *TransferRequest) Complete(at time.Time) ([]*LedgerEntry, error) {
	if err := t.transition(TransferStateDone); err != nil {
		return nil, err
	}
	if t.EffectiveDate == nil {
		t.EffectiveDate = truncateDay(&at)
	}
	t.AddDomainEvent(NewTransferCompletedEvent(t))

	if t.IsInternal() {
		return nil, nil
	}
	entries := make([]*LedgerEntry, 0, 2)
	if t.FromAreaID != nil {
		entries = append(entries, newTransferEntry(t, *t.FromAreaID, -t.Quantity, at))
	}
	if t.ToAreaID != nil {
		entries = append(entries, newTransferEntry(t, *t.ToAreaID, t.Quantity, at))
	}
	return entries, nil
}

func (t *TransferRequest) transition(target TransferState) error {
	if !t.State.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot move transfer from "+string(t.State)+" to "+string(target))
	}
	t.State = target
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

func sameArea(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func truncateDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
