package stock

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/planning"
	"github.com/stockplan/backend/internal/domain/shared"
	"github.com/stockplan/backend/internal/domain/stock"
	"github.com/stockplan/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// TransferService handles transfer requests and on-hand stock movements
type TransferService struct {
	transferRepo   stock.TransferRepository
	locationRepo   stock.LocationRepository
	ledgerRepo     stock.LedgerRepository
	snapshots      planning.StockSnapshotProvider
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	clock          shared.Clock
	logger         *zap.Logger
}

// NewTransferService creates a new TransferService
func NewTransferService(
	transferRepo stock.TransferRepository,
	locationRepo stock.LocationRepository,
	ledgerRepo stock.LedgerRepository,
	snapshots planning.StockSnapshotProvider,
	txScope TransactionScope,
	logger *zap.Logger,
) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		transferRepo: transferRepo,
		locationRepo: locationRepo,
		ledgerRepo:   ledgerRepo,
		snapshots:    snapshots,
		txScope:      txScope,
		clock:        shared.SystemClock{},
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *TransferService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock replaces the wall clock.
func (s *TransferService) SetClock(clock shared.Clock) {
	s.clock = clock
}

// CreateTransfer creates a draft transfer between two known locations
func (s *TransferService) CreateTransfer(ctx context.Context, tenantID uuid.UUID, req CreateTransferRequest) (*TransferResponse, error) {
	qty, err := WholeQuantity(req.Quantity)
	if err != nil {
		return nil, err
	}
	from, err := s.findLocation(ctx, tenantID, req.FromLocationID, "Source")
	if err != nil {
		return nil, err
	}
	to, err := s.findLocation(ctx, tenantID, req.ToLocationID, "Destination")
	if err != nil {
		return nil, err
	}

	tr, err := stock.NewTransferRequest(tenantID, req.ProductID, qty, from, to, req.PlannedDate, req.Reference)
	if err != nil {
		return nil, err
	}
	if err := s.transferRepo.Save(ctx, tr); err != nil {
		return nil, fmt.Errorf("failed to save transfer: %w", err)
	}
	publishEvents(ctx, s.eventPublisher, &tr.BaseAggregateRoot)

	resp := ToTransferResponse(tr)
	return &resp, nil
}

// GetTransfer retrieves a transfer by ID
func (s *TransferService) GetTransfer(ctx context.Context, tenantID, id uuid.UUID) (*TransferResponse, error) {
	tr, err := s.transferRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToTransferResponse(tr)
	return &resp, nil
}

// ListTransfers lists transfers with filtering and pagination
func (s *TransferService) ListTransfers(ctx context.Context, tenantID uuid.UUID, f TransferListFilter) (shared.Paginated[TransferResponse], error) {
	filter := f.ToFilter()
	items, total, err := s.transferRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[TransferResponse]{}, err
	}
	out := make([]TransferResponse, len(items))
	for i := range items {
		out[i] = ToTransferResponse(&items[i])
	}
	return shared.NewPaginated(out, total, filter), nil
}

// AssignTransfer reserves a draft transfer for execution
func (s *TransferService) AssignTransfer(ctx context.Context, tenantID, id uuid.UUID) (*TransferResponse, error) {
	return s.mutate(ctx, tenantID, id, (*stock.TransferRequest).Assign)
}

// UnassignTransfer moves an assigned transfer back to draft
func (s *TransferService) UnassignTransfer(ctx context.Context, tenantID, id uuid.UUID) (*TransferResponse, error) {
	return s.mutate(ctx, tenantID, id, (*stock.TransferRequest).Unassign)
}

// CancelTransfer cancels a pending transfer
func (s *TransferService) CancelTransfer(ctx context.Context, tenantID, id uuid.UUID) (*TransferResponse, error) {
	return s.mutate(ctx, tenantID, id, (*stock.TransferRequest).Cancel)
}

// RescheduleTransfer changes the planned date of a pending transfer
func (s *TransferService) RescheduleTransfer(ctx context.Context, tenantID, id uuid.UUID, req RescheduleTransferRequest) (*TransferResponse, error) {
	return s.mutate(ctx, tenantID, id, func(t *stock.TransferRequest) error {
		return t.Reschedule(req.PlannedDate)
	})
}

// CompleteTransfer executes an assigned transfer and books its ledger
// entries in the same transaction.
func (s *TransferService) CompleteTransfer(ctx context.Context, tenantID, id uuid.UUID) (*TransferResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transfer", "complete")
	defer span.End()

	var completed *stock.TransferRequest
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		tr, err := repos.TransferRepo().FindByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		entries, err := tr.Complete(s.clock.Now())
		if err != nil {
			return err
		}
		if err := repos.TransferRepo().Save(ctx, tr); err != nil {
			return fmt.Errorf("failed to save transfer: %w", err)
		}
		if len(entries) > 0 {
			if err := repos.LedgerRepo().Append(ctx, entries...); err != nil {
				return fmt.Errorf("failed to append ledger entries: %w", err)
			}
		}
		completed = tr
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Transfer completed",
		zap.String("transfer_id", id.String()),
		zap.Int64("quantity", completed.Quantity))
	publishEvents(ctx, s.eventPublisher, &completed.BaseAggregateRoot)
	resp := ToTransferResponse(completed)
	return &resp, nil
}

// RecordAdjustment books a manual on-hand correction
func (s *TransferService) RecordAdjustment(ctx context.Context, tenantID uuid.UUID, req AdjustmentRequest) (*LedgerEntryResponse, error) {
	qty, err := WholeQuantity(req.Quantity)
	if err != nil {
		return nil, err
	}
	at := s.clock.Now()
	if req.OccurredAt != nil {
		at = *req.OccurredAt
	}
	entry, err := stock.NewAdjustment(tenantID, req.AreaID, req.ProductID, qty, at, req.Note)
	if err != nil {
		return nil, err
	}
	if err := s.ledgerRepo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append adjustment: %w", err)
	}
	resp := ToLedgerEntryResponse(entry)
	return &resp, nil
}

// ListLedger lists the ledger entries of an area, newest first
func (s *TransferService) ListLedger(ctx context.Context, tenantID, areaID uuid.UUID, filter shared.Filter) (shared.Paginated[LedgerEntryResponse], error) {
	filter = filter.Normalize()
	entries, total, err := s.ledgerRepo.FindByArea(ctx, tenantID, areaID, filter)
	if err != nil {
		return shared.Paginated[LedgerEntryResponse]{}, err
	}
	out := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		out[i] = ToLedgerEntryResponse(&entries[i])
	}
	return shared.NewPaginated(out, total, filter), nil
}

// OnHand reports positive on-hand quantities through the same snapshot
// provider the planner reads, ordered by area then product.
func (s *TransferService) OnHand(ctx context.Context, tenantID uuid.UUID, q OnHandQuery) ([]OnHandItem, error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	if len(q.AreaIDs) == 0 {
		return nil, shared.ErrInvalidInput.WithMessage("At least one area is required")
	}
	asOf := s.clock.Now()
	if q.AsOf != nil {
		asOf = *q.AsOf
	}
	snap, err := s.snapshots.Snapshot(ctx, q.AreaIDs, asOf, q.ProductIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to read on-hand stock: %w", err)
	}
	items := make([]OnHandItem, 0, len(snap))
	for key, qty := range snap {
		if qty <= 0 {
			continue
		}
		items = append(items, OnHandItem{AreaID: key.AreaID, ProductID: key.ProductID, Quantity: qty})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].AreaID != items[j].AreaID {
			return items[i].AreaID.String() < items[j].AreaID.String()
		}
		return items[i].ProductID.String() < items[j].ProductID.String()
	})
	return items, nil
}

func (s *TransferService) mutate(ctx context.Context, tenantID, id uuid.UUID, fn func(*stock.TransferRequest) error) (*TransferResponse, error) {
	tr, err := s.transferRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(tr); err != nil {
		return nil, err
	}
	if err := s.transferRepo.Save(ctx, tr); err != nil {
		return nil, fmt.Errorf("failed to save transfer: %w", err)
	}
	publishEvents(ctx, s.eventPublisher, &tr.BaseAggregateRoot)
	resp := ToTransferResponse(tr)
	return &resp, nil
}

func (s *TransferService) findLocation(ctx context.Context, tenantID, id uuid.UUID, side string) (*stock.Location, error) {
	loc, err := s.locationRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound.WithMessage(side + " location not found")
		}
		return nil, err
	}
	return loc, nil
}
