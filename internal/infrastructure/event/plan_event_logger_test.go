package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockplan/backend/internal/domain/planning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPlanEventLogger_Handle(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := NewPlanEventLogger(zap.New(core))

	plan, err := planning.NewPlan(uuid.New(), "Weekly", planning.WithIncludeExcess(false))
	require.NoError(t, err)
	require.NoError(t, plan.ReplaceLines(nil, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	bus := NewInMemoryEventBus(nil)
	bus.Subscribe(h)
	require.NoError(t, bus.Publish(context.Background(), plan.GetDomainEvents()...))
	require.NoError(t, bus.Publish(context.Background(),
		planning.NewPlanRecalculationFailedEvent(plan, "INVALID_QUANTITY", "bad quantity")))

	recalculated := logs.FilterMessage("plan recalculated").All()
	require.Len(t, recalculated, 1)
	fields := recalculated[0].ContextMap()
	assert.Equal(t, int64(0), fields["total"])
	assert.NotContains(t, fields, "excess")
	assert.Equal(t, plan.TenantID.String(), fields["tenant_id"])

	failed := logs.FilterMessage("plan recalculation failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.WarnLevel, failed[0].Level)
	assert.Equal(t, "INVALID_QUANTITY", failed[0].ContextMap()["code"])
}
