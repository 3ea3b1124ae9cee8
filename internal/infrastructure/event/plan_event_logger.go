package event

import (
	"context"

	"github.com/stockplan/backend/internal/domain/planning"
	"github.com/stockplan/backend/internal/domain/shared"
	"github.com/stockplan/backend/internal/domain/stock"
	"github.com/stockplan/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PlanEventLogger writes one structured log line per plan and transfer
// lifecycle event.
type PlanEventLogger struct {
	logger *zap.Logger
}

// NewPlanEventLogger creates a PlanEventLogger
func NewPlanEventLogger(base *zap.Logger) *PlanEventLogger {
	if base == nil {
		base = zap.NewNop()
	}
	return &PlanEventLogger{logger: base.Named("events")}
}

// EventTypes implements shared.EventHandler
func (h *PlanEventLogger) EventTypes() []string {
	return []string{
		planning.EventTypePlanCreated,
		planning.EventTypePlanActivated,
		planning.EventTypePlanDeprecated,
		planning.EventTypePlanCancelled,
		planning.EventTypePlanRecalculated,
		planning.EventTypePlanRecalculationFailed,
		stock.EventTypeTransferCompleted,
	}
}

// Handle implements shared.EventHandler
func (h *PlanEventLogger) Handle(ctx context.Context, event shared.DomainEvent) error {
	log := logger.Enrich(ctx, h.logger).With(
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_id", event.AggregateID().String()),
	)
	if logger.TenantID(ctx) == "" {
		log = log.With(zap.String("tenant_id", event.TenantID().String()))
	}

	switch e := event.(type) {
	case *planning.PlanRecalculatedEvent:
		fields := []zap.Field{
			zap.Time("computed_at", e.ComputedAt),
			zap.Int("total", e.Summary.Total),
			zap.Int("valid", e.Summary.Valid),
			zap.Int("late", e.Summary.Late),
			zap.Int("without_stock", e.Summary.WithoutStock),
		}
		if e.Summary.Excess != nil {
			fields = append(fields, zap.Int("excess", *e.Summary.Excess))
		}
		log.Info("plan recalculated", fields...)
	case *planning.PlanRecalculationFailedEvent:
		log.Warn("plan recalculation failed", zap.String("code", e.Code), zap.String("message", e.Message))
	case *planning.PlanStateChangedEvent:
		log.Info("plan state changed", zap.String("state", e.State))
	default:
		log.Info("domain event")
	}
	return nil
}

var _ shared.EventHandler = (*PlanEventLogger)(nil)
