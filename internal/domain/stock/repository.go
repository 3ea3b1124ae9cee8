package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/shared"
)

// StorageAreaRepository defines persistence for storage areas
type StorageAreaRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*StorageArea, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*StorageArea, error)
	// FindActive returns active areas ordered by code then id.
	FindActive(ctx context.Context, tenantID uuid.UUID) ([]StorageArea, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StorageArea, int64, error)
	Save(ctx context.Context, area *StorageArea) error
}

// LocationRepository defines persistence for locations
type LocationRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Location, error)
	FindByArea(ctx context.Context, tenantID, areaID uuid.UUID) ([]Location, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Location, int64, error)
	Save(ctx context.Context, loc *Location) error
}

// TransferRepository defines persistence for transfer requests
type TransferRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*TransferRequest, error)
	// FindPending returns draft and assigned transfers ordered by effective
	// date, then planned date (both ascending, nulls last), then creation
	// time and id.
	FindPending(ctx context.Context, tenantID uuid.UUID) ([]TransferRequest, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]TransferRequest, int64, error)
	Save(ctx context.Context, t *TransferRequest) error
}

// LedgerRepository appends stock movements
type LedgerRepository interface {
	Append(ctx context.Context, entries ...*LedgerEntry) error
	FindByArea(ctx context.Context, tenantID, areaID uuid.UUID, filter shared.Filter) ([]LedgerEntry, int64, error)
}
