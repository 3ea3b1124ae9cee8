package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/shared"
	"github.com/stockplan/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// AreaService manages storage areas and the locations inside them
type AreaService struct {
	areaRepo       stock.StorageAreaRepository
	locationRepo   stock.LocationRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAreaService creates a new AreaService
func NewAreaService(areaRepo stock.StorageAreaRepository, locationRepo stock.LocationRepository, logger *zap.Logger) *AreaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AreaService{areaRepo: areaRepo, locationRepo: locationRepo, logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AreaService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateArea creates a storage area with a tenant-unique code
func (s *AreaService) CreateArea(ctx context.Context, tenantID uuid.UUID, req CreateAreaRequest) (*AreaResponse, error) {
	area, err := stock.NewStorageArea(tenantID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	existing, err := s.areaRepo.FindByCode(ctx, tenantID, area.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to check area code: %w", err)
	}
	if existing != nil {
		return nil, shared.ErrAlreadyExists.WithMessage("Storage area code already exists: " + area.Code)
	}

	if err := s.areaRepo.Save(ctx, area); err != nil {
		return nil, fmt.Errorf("failed to save storage area: %w", err)
	}
	s.logger.Info("Storage area created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("area_id", area.ID.String()),
		zap.String("code", area.Code))

	publishEvents(ctx, s.eventPublisher, &area.BaseAggregateRoot)
	resp := ToAreaResponse(area)
	return &resp, nil
}

// GetArea retrieves a storage area by ID
func (s *AreaService) GetArea(ctx context.Context, tenantID, id uuid.UUID) (*AreaResponse, error) {
	area, err := s.areaRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToAreaResponse(area)
	return &resp, nil
}

// ListAreas lists storage areas with pagination
func (s *AreaService) ListAreas(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[AreaResponse], error) {
	filter = filter.Normalize()
	areas, total, err := s.areaRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[AreaResponse]{}, err
	}
	items := make([]AreaResponse, len(areas))
	for i := range areas {
		items[i] = ToAreaResponse(&areas[i])
	}
	return shared.NewPaginated(items, total, filter), nil
}

// UpdateArea renames an area and optionally toggles whether plans include it
func (s *AreaService) UpdateArea(ctx context.Context, tenantID, id uuid.UUID, req UpdateAreaRequest) (*AreaResponse, error) {
	area, err := s.areaRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := area.Rename(req.Name); err != nil {
		return nil, err
	}
	if req.IsActive != nil && *req.IsActive != area.IsActive {
		if *req.IsActive {
			err = area.Activate()
		} else {
			err = area.Deactivate()
		}
		if err != nil {
			return nil, err
		}
	}
	if err := s.areaRepo.Save(ctx, area); err != nil {
		return nil, fmt.Errorf("failed to save storage area: %w", err)
	}
	resp := ToAreaResponse(area)
	return &resp, nil
}

// CreateLocation creates a location, checking its area belongs to the tenant
func (s *AreaService) CreateLocation(ctx context.Context, tenantID uuid.UUID, req CreateLocationRequest) (*LocationResponse, error) {
	if req.AreaID != nil {
		if _, err := s.areaRepo.FindByID(ctx, tenantID, *req.AreaID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.ErrNotFound.WithMessage("Storage area not found")
			}
			return nil, err
		}
	}
	loc, err := stock.NewLocation(tenantID, req.Code, req.Name, stock.LocationType(req.Type), req.AreaID)
	if err != nil {
		return nil, err
	}
	if err := s.locationRepo.Save(ctx, loc); err != nil {
		return nil, fmt.Errorf("failed to save location: %w", err)
	}
	resp := ToLocationResponse(loc)
	return &resp, nil
}

// ListLocations lists locations with pagination
func (s *AreaService) ListLocations(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[LocationResponse], error) {
	filter = filter.Normalize()
	locs, total, err := s.locationRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[LocationResponse]{}, err
	}
	items := make([]LocationResponse, len(locs))
	for i := range locs {
		items[i] = ToLocationResponse(&locs[i])
	}
	return shared.NewPaginated(items, total, filter), nil
}

// publishEvents publishes and clears pending aggregate events. Publish
// failures are logged by the bus and never undo the saved state.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, root *shared.BaseAggregateRoot) {
	events := root.GetDomainEvents()
	root.ClearDomainEvents()
	if publisher == nil || len(events) == 0 {
		return
	}
	_ = publisher.Publish(ctx, events...)
}
