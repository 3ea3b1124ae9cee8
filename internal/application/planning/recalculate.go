package planning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/planning"
	"github.com/stockplan/backend/internal/domain/shared"
	"github.com/stockplan/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Recalculate recomputes the lines of one plan. Several ids are refused
// before anything is read.
func (s *PlanService) Recalculate(ctx context.Context, tenantID uuid.UUID, planIDs []uuid.UUID) (*RecalculationResult, error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}
	switch len(planIDs) {
	case 0:
		return nil, shared.ErrInvalidInput.WithMessage("A plan id is required")
	case 1:
		return s.RecalculatePlan(ctx, tenantID, planIDs[0])
	default:
		return nil, planning.ErrMultiplePlans.WithMessage(
			fmt.Sprintf("Only one plan can be recalculated at a time, got %d", len(planIDs)))
	}
}

// RecalculatePlan recomputes a plan from the current stock and pending
// transfers and replaces its lines in one transaction. On any error the
// previous lines stay in place.
func (s *PlanService) RecalculatePlan(ctx context.Context, tenantID, planID uuid.UUID) (result *RecalculationResult, err error) {
	if err := shared.RequireTenant(tenantID); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "plan", "recalculate",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrPlanID, planID.String()),
	)
	defer span.End()

	started := time.Now()
	var plan *planning.Plan
	defer func() {
		if err == nil {
			return
		}
		telemetry.RecordError(span, err)
		code := shared.CodeOf(err)
		if code == "" {
			code = "INTERNAL_ERROR"
		}
		s.metrics.RecordFailure(ctx, tenantID, time.Since(started), code)
		s.logger.Warn("Plan recalculation failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("plan_id", planID.String()),
			zap.String("code", code),
			zap.Error(err))
		if plan != nil && !errors.Is(err, planning.ErrPlanLocked) {
			plan.ClearDomainEvents()
			plan.AddDomainEvent(planning.NewPlanRecalculationFailedEvent(plan, code, err.Error()))
			s.publish(ctx, plan)
		}
	}()

	if s.locker != nil {
		release, acquired, lockErr := s.locker.TryLock(ctx, recalcLockKey(planID), s.lockTTL)
		if lockErr != nil {
			return nil, fmt.Errorf("failed to acquire recalculation lock: %w", lockErr)
		}
		if !acquired {
			return nil, planning.ErrPlanLocked
		}
		defer func() {
			if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
				s.logger.Warn("Failed to release recalculation lock",
					zap.String("plan_id", planID.String()),
					zap.Error(relErr))
			}
		}()
	}

	plan, err = s.planRepo.FindByID(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}
	if !plan.CanRecompute() {
		return nil, planning.ErrPlanNotRecomputable.WithMessage(
			fmt.Sprintf("Plan in state %s cannot be recalculated", plan.State))
	}

	areas, err := s.areaRepo.FindActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage areas: %w", err)
	}
	areaIDs := make([]uuid.UUID, len(areas))
	for i := range areas {
		areaIDs[i] = areas[i].ID
	}

	requests, err := s.transfers.FindPending(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending transfers: %w", err)
	}

	now := s.clock.Now()
	run, err := s.engine.Run(ctx, planning.RunInput{
		Areas:         areaIDs,
		Requests:      requests,
		IncludeExcess: plan.IncludeExcess,
		Today:         now,
	})
	if err != nil {
		return nil, err
	}

	if err := plan.ReplaceLines(run.Lines, now); err != nil {
		return nil, err
	}
	if err := s.planRepo.ReplaceLines(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to store plan lines: %w", err)
	}

	summary := planning.Summarize(plan.Lines, plan.IncludeExcess)
	elapsed := time.Since(started)
	s.metrics.RecordSuccess(ctx, tenantID, planID, elapsed, summary.Total, summary.Late, summary.WithoutStock)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAreaCount, run.Areas,
		telemetry.SpanAttrLineCount, summary.Total,
	)
	s.logger.Info("Plan recalculated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("plan_id", planID.String()),
		zap.Int("areas", run.Areas),
		zap.Int("requests", len(requests)),
		zap.Int("lines", summary.Total),
		zap.Int("late", summary.Late),
		zap.Int("without_stock", summary.WithoutStock),
		zap.Duration("elapsed", elapsed))

	s.publish(ctx, plan)
	return &RecalculationResult{
		PlanID:     plan.ID,
		ComputedAt: now,
		Areas:      run.Areas,
		Requests:   len(requests),
		Summary:    toSummaryResponse(now, summary),
		DurationMs: elapsed.Milliseconds(),
	}, nil
}

// RecalculateActivePlans recomputes every tenant's active plan. Failures are
// logged and counted; one tenant's failure does not stop the others.
func (s *PlanService) RecalculateActivePlans(ctx context.Context) (succeeded, failed int, err error) {
	plans, err := s.planRepo.FindByState(ctx, planning.PlanStateActive)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list active plans: %w", err)
	}
	for i := range plans {
		if ctx.Err() != nil {
			return succeeded, failed, ctx.Err()
		}
		if _, err := s.RecalculatePlan(ctx, plans[i].TenantID, plans[i].ID); err != nil {
			failed++
			continue
		}
		succeeded++
	}
	return succeeded, failed, nil
}

func recalcLockKey(planID uuid.UUID) string {
	return "plan:recalculate:" + planID.String()
}
