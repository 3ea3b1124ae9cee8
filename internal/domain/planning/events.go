package planning

import (
	"time"

	"github.com/stockplan/backend/internal/domain/shared"
)

const (
	AggregateTypePlan = "Plan"

	EventTypePlanCreated             = "PlanCreated"
	EventTypePlanActivated           = "PlanActivated"
	EventTypePlanDeprecated          = "PlanDeprecated"
	EventTypePlanCancelled           = "PlanCancelled"
	EventTypePlanRecalculated        = "PlanRecalculated"
	EventTypePlanRecalculationFailed = "PlanRecalculationFailed"
)

// PlanCreatedEvent is raised when a plan is created
type PlanCreatedEvent struct {
	shared.BaseDomainEvent
	Name          string `json:"name"`
	IncludeExcess bool   `json:"include_excess"`
}

func NewPlanCreatedEvent(p *Plan) *PlanCreatedEvent {
	return &PlanCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanCreated, AggregateTypePlan, p.ID, p.TenantID),
		Name:            p.Name,
		IncludeExcess:   p.IncludeExcess,
	}
}

// PlanStateChangedEvent covers activation, deprecation and cancellation.
type PlanStateChangedEvent struct {
	shared.BaseDomainEvent
	State string `json:"state"`
}

func NewPlanStateChangedEvent(eventType string, p *Plan) *PlanStateChangedEvent {
	return &PlanStateChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypePlan, p.ID, p.TenantID),
		State:           string(p.State),
	}
}

// PlanRecalculatedEvent is raised after a plan's lines were replaced
type PlanRecalculatedEvent struct {
	shared.BaseDomainEvent
	ComputedAt time.Time `json:"computed_at"`
	Summary    Summary   `json:"summary"`
}

func NewPlanRecalculatedEvent(p *Plan, summary Summary) *PlanRecalculatedEvent {
	var at time.Time
	if p.ComputedAt != nil {
		at = *p.ComputedAt
	}
	return &PlanRecalculatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanRecalculated, AggregateTypePlan, p.ID, p.TenantID),
		ComputedAt:      at,
		Summary:         summary,
	}
}

// PlanRecalculationFailedEvent reports an aborted recalculation. The plan's
// previous lines are untouched.
type PlanRecalculationFailedEvent struct {
	shared.BaseDomainEvent
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewPlanRecalculationFailedEvent(p *Plan, code, message string) *PlanRecalculationFailedEvent {
	return &PlanRecalculationFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanRecalculationFailed, AggregateTypePlan, p.ID, p.TenantID),
		Code:            code,
		Message:         message,
	}
}
