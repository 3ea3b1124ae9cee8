package stock

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/shared"
)

// StorageArea is a top-level stock-holding location (a warehouse). On-hand
// quantity of every sub-location rolls up into its area.
type StorageArea struct {
	shared.TenantAggregateRoot
	Code     string
	Name     string
	IsActive bool
}

// NewStorageArea creates an active storage area with an upper-cased code.
func NewStorageArea(tenantID uuid.UUID, code, name string) (*StorageArea, error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	if err := validateCode(code); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	area := &StorageArea{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		IsActive:            true,
	}
	area.AddDomainEvent(NewStorageAreaCreatedEvent(area))
	return area, nil
}

// Rename changes the display name.
func (a *StorageArea) Rename(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	a.Name = strings.TrimSpace(name)
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Deactivate removes the area from future plan runs.
func (a *StorageArea) Deactivate() error {
	if !a.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Storage area is already inactive")
	}
	a.IsActive = false
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Activate puts a deactivated area back into plan runs.
func (a *StorageArea) Activate() error {
	if a.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Storage area is already active")
	}
	a.IsActive = true
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

func validateCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Code cannot exceed 50 characters")
	}
	return nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}
