package stock

import (
	"strings"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/shared"
)

// LocationType classifies a location.
type LocationType string

const (
	LocationTypeStorage    LocationType = "STORAGE"
	LocationTypeProduction LocationType = "PRODUCTION"
	LocationTypeSupplier   LocationType = "SUPPLIER"
	LocationTypeCustomer   LocationType = "CUSTOMER"
	LocationTypeLostFound  LocationType = "LOST_FOUND"
)

// IsValid checks if the location type is known
func (t LocationType) IsValid() bool {
	switch t {
	case LocationTypeStorage, LocationTypeProduction, LocationTypeSupplier,
		LocationTypeCustomer, LocationTypeLostFound:
		return true
	}
	return false
}

// IsVirtual reports whether locations of this type never hold stock of an area.
func (t LocationType) IsVirtual() bool {
	switch t {
	case LocationTypeSupplier, LocationTypeCustomer, LocationTypeLostFound:
		return true
	}
	return false
}

// Location is a place stock moves from or to. Physical locations belong to a
// storage area; virtual ones (suppliers, customers) resolve to no area.
type Location struct {
	shared.BaseEntity
	TenantID uuid.UUID
	Code     string
	Name     string
	Type     LocationType
	AreaID   *uuid.UUID
}

// NewLocation creates a location. areaID is required for physical types and
// rejected for virtual ones.
func NewLocation(tenantID uuid.UUID, code, name string, locType LocationType, areaID *uuid.UUID) (*Location, error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	if err := validateCode(code); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if !locType.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOCATION_TYPE", "Unknown location type: "+string(locType))
	}
	if locType.IsVirtual() && areaID != nil {
		return nil, shared.NewDomainError("INVALID_LOCATION_AREA", "Virtual locations cannot belong to a storage area")
	}
	if !locType.IsVirtual() && (areaID == nil || *areaID == uuid.Nil) {
		return nil, shared.NewDomainError("INVALID_LOCATION_AREA", "Physical locations must belong to a storage area")
	}

	return &Location{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Code:       strings.ToUpper(strings.TrimSpace(code)),
		Name:       strings.TrimSpace(name),
		Type:       locType,
		AreaID:     areaID,
	}, nil
}

// Area resolves the location to its storage area, or nil.
func (l *Location) Area() *uuid.UUID {
	if l == nil || l.AreaID == nil {
		return nil
	}
	id := *l.AreaID
	return &id
}
