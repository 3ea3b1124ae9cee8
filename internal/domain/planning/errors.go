package planning

import "github.com/stockplan/backend/internal/domain/shared"

// Error codes raised by plan operations.
const (
	CodeNoBaseline          = "NO_BASELINE"
	CodeMultiplePlans       = "MULTIPLE_PLANS"
	CodePlanNotRecomputable = "PLAN_NOT_RECOMPUTABLE"
	CodePlanLocked          = "PLAN_LOCKED"
	CodeInvalidPlanLine     = "INVALID_PLAN_LINE"
)

var (
	ErrNoBaseline          = shared.NewDomainError(CodeNoBaseline, "Plan has no computed baseline; recalculate it first")
	ErrMultiplePlans       = shared.NewDomainError(CodeMultiplePlans, "Only one plan can be recalculated at a time")
	ErrPlanNotRecomputable = shared.NewDomainError(CodePlanNotRecomputable, "Plan lines cannot be overwritten in its current state")
	ErrPlanLocked          = shared.NewDomainError(CodePlanLocked, "Plan is being recalculated by another process")
	ErrInvalidPlanLine     = shared.NewDomainError(CodeInvalidPlanLine, "Plan line is invalid")
)
