package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Recalculation outcomes used as the result attribute.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// PlanMetrics records plan recalculation activity.
type PlanMetrics struct {
	recalculations *Counter
	duration       *Histogram
	linesEmitted   *Counter
	lateLines      *Gauge
	withoutStock   *Gauge
}

// NewPlanMetrics registers the plan instruments on meter.
func NewPlanMetrics(meter metric.Meter) (*PlanMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	pm := &PlanMetrics{}
	var err error

	if pm.recalculations, err = NewCounter(meter,
		"plan_recalculations_total",
		"Plan recalculations by result",
		"{recalculations}",
	); err != nil {
		return nil, err
	}
	if pm.duration, err = NewHistogram(meter, HistogramOpts{
		Name:        "plan_recalculation_duration_seconds",
		Description: "Wall time of a plan recalculation",
		Unit:        "s",
		Boundaries:  RecalculationBuckets,
	}); err != nil {
		return nil, err
	}
	if pm.linesEmitted, err = NewCounter(meter,
		"plan_lines_emitted",
		"Plan lines written by recalculations",
		"{lines}",
	); err != nil {
		return nil, err
	}
	if pm.lateLines, err = NewGauge(meter,
		"plan_late_lines",
		"Late lines in the latest computation of a plan",
		"{lines}",
	); err != nil {
		return nil, err
	}
	if pm.withoutStock, err = NewGauge(meter,
		"plan_without_stock_lines",
		"Without-stock lines in the latest computation of a plan",
		"{lines}",
	); err != nil {
		return nil, err
	}
	return pm, nil
}

// RecordSuccess records a completed recalculation and its line counts.
func (pm *PlanMetrics) RecordSuccess(ctx context.Context, tenantID, planID uuid.UUID, d time.Duration, lines, late, withoutStock int) {
	if pm == nil {
		return
	}
	tenant := AttrTenantID.String(tenantID.String())
	plan := AttrPlanID.String(planID.String())

	pm.recalculations.Inc(ctx, tenant, AttrResult.String(ResultSuccess))
	pm.duration.RecordDuration(ctx, d, tenant, AttrResult.String(ResultSuccess))
	pm.linesEmitted.Add(ctx, int64(lines), tenant)
	pm.lateLines.Record(ctx, int64(late), tenant, plan)
	pm.withoutStock.Record(ctx, int64(withoutStock), tenant, plan)
}

// RecordFailure records an aborted recalculation with its error code.
func (pm *PlanMetrics) RecordFailure(ctx context.Context, tenantID uuid.UUID, d time.Duration, code string) {
	if pm == nil {
		return
	}
	tenant := AttrTenantID.String(tenantID.String())
	pm.recalculations.Inc(ctx, tenant, AttrResult.String(ResultFailure), AttrErrorCode.String(code))
	pm.duration.RecordDuration(ctx, d, tenant, AttrResult.String(ResultFailure))
}
