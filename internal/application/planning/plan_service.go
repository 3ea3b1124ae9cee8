package planning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/planning"
	"github.com/stockplan/backend/internal/domain/shared"
	"github.com/stockplan/backend/internal/domain/stock"
	"github.com/stockplan/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultLockTTL bounds how long a crashed recalculation can block the plan.
const DefaultLockTTL = 5 * time.Minute

// PlanService manages plans and recalculates their lines
type PlanService struct {
	planRepo       planning.PlanRepository
	areaRepo       stock.StorageAreaRepository
	transfers      planning.TransferFeed
	engine         *planning.Engine
	locker         Locker
	lockTTL        time.Duration
	clock          shared.Clock
	eventPublisher shared.EventPublisher
	metrics        *telemetry.PlanMetrics
	storage        ObjectStorage
	exportPrefix   string
	logger         *zap.Logger
}

// NewPlanService creates a new PlanService. A nil locker disables the
// per-plan recalculation lock.
func NewPlanService(
	planRepo planning.PlanRepository,
	areaRepo stock.StorageAreaRepository,
	transfers planning.TransferFeed,
	engine *planning.Engine,
	locker Locker,
	lockTTL time.Duration,
	logger *zap.Logger,
) *PlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	return &PlanService{
		planRepo:     planRepo,
		areaRepo:     areaRepo,
		transfers:    transfers,
		engine:       engine,
		locker:       locker,
		lockTTL:      lockTTL,
		clock:        shared.SystemClock{},
		exportPrefix: "plan-exports",
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PlanService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetPlanMetrics sets the recalculation metrics recorder
func (s *PlanService) SetPlanMetrics(m *telemetry.PlanMetrics) {
	s.metrics = m
}

// SetClock replaces the clock that decides "today"
func (s *PlanService) SetClock(clock shared.Clock) {
	s.clock = clock
}

// SetObjectStorage enables CSV exports under prefix
func (s *PlanService) SetObjectStorage(storage ObjectStorage, prefix string) {
	s.storage = storage
	if prefix != "" {
		s.exportPrefix = prefix
	}
}

// CreatePlan creates a draft plan
func (s *PlanService) CreatePlan(ctx context.Context, tenantID uuid.UUID, req CreatePlanRequest) (*PlanResponse, error) {
	opts := []planning.PlanOption{planning.WithDescription(req.Description)}
	if req.IncludeExcess != nil {
		opts = append(opts, planning.WithIncludeExcess(*req.IncludeExcess))
	}
	plan, err := planning.NewPlan(tenantID, req.Name, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}
	s.logger.Info("Plan created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("plan_id", plan.ID.String()))

	s.publish(ctx, plan)
	resp := ToPlanResponse(plan)
	return &resp, nil
}

// GetPlan returns a plan with its summary when computed
func (s *PlanService) GetPlan(ctx context.Context, tenantID, id uuid.UUID) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByIDWithLines(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToPlanResponse(plan)
	return &resp, nil
}

// ListPlans lists plans without their lines
func (s *PlanService) ListPlans(ctx context.Context, tenantID uuid.UUID, f PlanListFilter) (shared.Paginated[PlanResponse], error) {
	filter := f.ToFilter()
	plans, total, err := s.planRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return shared.Paginated[PlanResponse]{}, err
	}
	items := make([]PlanResponse, len(plans))
	for i := range plans {
		items[i] = ToPlanResponse(&plans[i])
	}
	return shared.NewPaginated(items, total, filter), nil
}

// UpdatePlan edits a plan's name, description and excess setting
func (s *PlanService) UpdatePlan(ctx context.Context, tenantID, id uuid.UUID, req UpdatePlanRequest) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := plan.Update(req.Name, req.Description, req.IncludeExcess); err != nil {
		return nil, err
	}
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}
	resp := ToPlanResponse(plan)
	return &resp, nil
}

// ActivatePlan makes the plan the tenant's active plan. A previously active
// plan is deprecated first.
func (s *PlanService) ActivatePlan(ctx context.Context, tenantID, id uuid.UUID) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if plan.State == planning.PlanStateActive {
		return nil, shared.ErrInvalidState.WithMessage("Plan is already active")
	}
	if !plan.State.CanTransitionTo(planning.PlanStateActive) {
		return nil, shared.ErrInvalidState.WithMessage(fmt.Sprintf("Cannot activate a plan in state %s", plan.State))
	}

	current, err := s.planRepo.FindActive(ctx, tenantID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up active plan: %w", err)
	}
	if current != nil && current.ID != plan.ID {
		if err := current.Deprecate(); err != nil {
			return nil, err
		}
		if err := s.planRepo.Save(ctx, current); err != nil {
			return nil, fmt.Errorf("failed to deprecate active plan: %w", err)
		}
		s.publish(ctx, current)
	}

	if err := plan.Activate(); err != nil {
		return nil, err
	}
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}
	s.logger.Info("Plan activated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("plan_id", plan.ID.String()))

	s.publish(ctx, plan)
	resp := ToPlanResponse(plan)
	return &resp, nil
}

// DeprecatePlan retires an active plan
func (s *PlanService) DeprecatePlan(ctx context.Context, tenantID, id uuid.UUID) (*PlanResponse, error) {
	return s.transition(ctx, tenantID, id, (*planning.Plan).Deprecate)
}

// CancelPlan cancels a plan for good
func (s *PlanService) CancelPlan(ctx context.Context, tenantID, id uuid.UUID) (*PlanResponse, error) {
	return s.transition(ctx, tenantID, id, (*planning.Plan).Cancel)
}

func (s *PlanService) transition(ctx context.Context, tenantID, id uuid.UUID, apply func(*planning.Plan) error) (*PlanResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := apply(plan); err != nil {
		return nil, err
	}
	if err := s.planRepo.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to save plan: %w", err)
	}
	s.publish(ctx, plan)
	resp := ToPlanResponse(plan)
	return &resp, nil
}

// GetSummary returns the plan health counts
func (s *PlanService) GetSummary(ctx context.Context, tenantID, id uuid.UUID) (*SummaryResponse, error) {
	plan, err := s.loadComputed(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	summary, err := plan.Summary()
	if err != nil {
		return nil, err
	}
	resp := toSummaryResponse(*plan.ComputedAt, summary)
	return &resp, nil
}

// ListLines returns the plan lines passing the query, in emission order
func (s *PlanService) ListLines(ctx context.Context, tenantID, id uuid.UUID, q LineQuery) ([]PlanLineResponse, error) {
	filter, err := q.ToFilter()
	if err != nil {
		return nil, err
	}
	plan, err := s.loadComputed(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toPlanLineResponses(planning.FilterLines(plan.Lines, filter, s.clock.Now())), nil
}

// LinesByRequest returns the lines supplied by or delivered to a transfer
func (s *PlanService) LinesByRequest(ctx context.Context, tenantID, id, requestID uuid.UUID) ([]PlanLineResponse, error) {
	plan, err := s.loadComputed(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	filter := planning.LineFilter{RequestID: &requestID}
	return toPlanLineResponses(planning.FilterLines(plan.Lines, filter, s.clock.Now())), nil
}

func (s *PlanService) loadComputed(ctx context.Context, tenantID, id uuid.UUID) (*planning.Plan, error) {
	plan, err := s.planRepo.FindByIDWithLines(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !plan.HasBaseline() {
		return nil, planning.ErrNoBaseline
	}
	return plan, nil
}

func (s *PlanService) publish(ctx context.Context, plan *planning.Plan) {
	events := plan.GetDomainEvents()
	plan.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish plan events",
			zap.String("plan_id", plan.ID.String()),
			zap.Error(err))
	}
}
