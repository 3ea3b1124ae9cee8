package planning

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/shared"
)

// PlanState is the lifecycle state of a plan.
type PlanState string

const (
	PlanStateDraft      PlanState = "DRAFT"
	PlanStateActive     PlanState = "ACTIVE"
	PlanStateDeprecated PlanState = "DEPRECATED"
	PlanStateCancelled  PlanState = "CANCELLED"
)

// IsValid checks if the state is known
func (s PlanState) IsValid() bool {
	switch s {
	case PlanStateDraft, PlanStateActive, PlanStateDeprecated, PlanStateCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the state can move to target.
func (s PlanState) CanTransitionTo(target PlanState) bool {
	switch s {
	case PlanStateDraft:
		return target == PlanStateActive || target == PlanStateCancelled
	case PlanStateActive:
		return target == PlanStateDeprecated || target == PlanStateCancelled
	case PlanStateDeprecated:
		return target == PlanStateActive || target == PlanStateCancelled
	}
	return false
}

// Plan is one reconciliation of pending transfers against stock. Its lines
// are owned by the plan and only ever replaced as a whole.
type Plan struct {
	shared.TenantAggregateRoot
	Name          string
	Description   string
	IncludeExcess bool
	State         PlanState
	ComputedAt    *time.Time
	Lines         []PlanLine
}

// PlanOption configures a new plan.
type PlanOption func(*Plan)

// WithIncludeExcess sets whether supply without a destination is reported.
func WithIncludeExcess(include bool) PlanOption {
	return func(p *Plan) {
		p.IncludeExcess = include
	}
}

// WithDescription sets the plan description.
func WithDescription(description string) PlanOption {
	return func(p *Plan) {
		p.Description = strings.TrimSpace(description)
	}
}

// NewPlan creates a draft plan that reports excess unless told otherwise.
func NewPlan(tenantID uuid.UUID, name string, opts ...PlanOption) (*Plan, error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	if err := validatePlanName(name); err != nil {
		return nil, err
	}

	plan := &Plan{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		IncludeExcess:       true,
		State:               PlanStateDraft,
	}
	for _, opt := range opts {
		opt(plan)
	}
	if len(plan.Description) > 1000 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 1000 characters")
	}

	plan.AddDomainEvent(NewPlanCreatedEvent(plan))
	return plan, nil
}

// Update changes the editable settings. Changing IncludeExcess does not touch
// existing lines; it takes effect on the next recalculation.
func (p *Plan) Update(name, description string, includeExcess bool) error {
	if p.State == PlanStateCancelled {
		return shared.ErrInvalidState.WithMessage("Cancelled plans cannot be edited")
	}
	if err := validatePlanName(name); err != nil {
		return err
	}
	if len(description) > 1000 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 1000 characters")
	}
	p.Name = strings.TrimSpace(name)
	p.Description = strings.TrimSpace(description)
	p.IncludeExcess = includeExcess
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// CanRecompute reports whether the plan's lines may be overwritten now.
func (p *Plan) CanRecompute() bool {
	return p.State == PlanStateDraft || p.State == PlanStateActive
}

// HasBaseline reports whether the plan was computed at least once.
func (p *Plan) HasBaseline() bool {
	return p.ComputedAt != nil
}

// ReplaceLines discards the current lines and installs the new set. Lines
// are numbered in emission order and bound to this plan.
func (p *Plan) ReplaceLines(lines []PlanLine, computedAt time.Time) error {
	if !p.CanRecompute() {
		return ErrPlanNotRecomputable
	}
	replaced := make([]PlanLine, len(lines))
	for i, l := range lines {
		if err := l.Validate(); err != nil {
			return err
		}
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		l.PlanID = p.ID
		l.Sequence = i + 1
		replaced[i] = l
	}

	p.Lines = replaced
	at := computedAt
	p.ComputedAt = &at
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	p.AddDomainEvent(NewPlanRecalculatedEvent(p, Summarize(replaced, p.IncludeExcess)))
	return nil
}

// Summary classifies the current lines. It fails with ErrNoBaseline when
// the plan was never computed.
func (p *Plan) Summary() (Summary, error) {
	if !p.HasBaseline() {
		return Summary{}, ErrNoBaseline
	}
	return Summarize(p.Lines, p.IncludeExcess), nil
}

// Activate makes this the plan in use.
func (p *Plan) Activate() error {
	if err := p.transition(PlanStateActive); err != nil {
		return err
	}
	p.AddDomainEvent(NewPlanStateChangedEvent(EventTypePlanActivated, p))
	return nil
}

// Deprecate retires an active plan while keeping its lines readable.
func (p *Plan) Deprecate() error {
	if err := p.transition(PlanStateDeprecated); err != nil {
		return err
	}
	p.AddDomainEvent(NewPlanStateChangedEvent(EventTypePlanDeprecated, p))
	return nil
}

// Cancel ends the plan for good.
func (p *Plan) Cancel() error {
	if err := p.transition(PlanStateCancelled); err != nil {
		return err
	}
	p.AddDomainEvent(NewPlanStateChangedEvent(EventTypePlanCancelled, p))
	return nil
}

func (p *Plan) transition(target PlanState) error {
	if !p.State.CanTransitionTo(target) {
		return shared.ErrInvalidState.WithMessage(
			"Cannot move plan from " + string(p.State) + " to " + string(target))
	}
	p.State = target
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

func validatePlanName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Plan name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Plan name cannot exceed 200 characters")
	}
	return nil
}
