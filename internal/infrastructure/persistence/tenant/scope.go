// Package tenant provides tenant scoping for GORM queries.
//
// Every repository query on a tenant-owned table goes through Scope so a
// missing tenant condition cannot slip through:
//
//	db.WithContext(ctx).Scopes(tenant.Scope(tenantID)).Find(&areas)
package tenant

import (
	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Column is the tenant column of every tenant-owned table.
const Column = "tenant_id"

// Scope restricts a query to one tenant. A nil tenant makes the query fail
// with shared.ErrMissingScope instead of reading every tenant's rows.
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(shared.ErrMissingScope)
			return db
		}
		return db.Where(Column+" = ?", tenantID)
	}
}
