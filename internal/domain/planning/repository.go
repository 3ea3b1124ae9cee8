package planning

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/shared"
)

// PlanRepository defines persistence for plans and their lines
type PlanRepository interface {
	// FindByID loads the plan without its lines.
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Plan, error)
	// FindByIDWithLines loads the plan and its lines in sequence order.
	FindByIDWithLines(ctx context.Context, tenantID, id uuid.UUID) (*Plan, error)
	FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Plan, int64, error)
	// FindByState lists plans in the state across all tenants.
	FindByState(ctx context.Context, state PlanState) ([]Plan, error)
	FindActive(ctx context.Context, tenantID uuid.UUID) (*Plan, error)
	Save(ctx context.Context, plan *Plan) error
	// ReplaceLines atomically swaps the stored lines for plan.Lines and
	// saves ComputedAt and Version.
	ReplaceLines(ctx context.Context, plan *Plan) error
}
