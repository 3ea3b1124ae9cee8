package telemetry

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// PoolStatsCollector periodically records database/sql pool statistics.
type PoolStatsCollector struct {
	db       *sql.DB
	interval time.Duration
	logger   *zap.Logger

	connections    *Gauge
	maxConnections *Gauge
	waitCount      *Gauge

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPoolStatsCollector registers pool gauges on meter. A zero interval
// defaults to 15s.
func NewPoolStatsCollector(meter metric.Meter, db *sql.DB, interval time.Duration, logger *zap.Logger) (*PoolStatsCollector, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	c := &PoolStatsCollector{db: db, interval: interval, logger: logger, stopCh: make(chan struct{})}

	var err error
	if c.connections, err = NewGauge(meter, "db_pool_connections", "Connections in the pool by state", "{connection}"); err != nil {
		return nil, err
	}
	if c.maxConnections, err = NewGauge(meter, "db_pool_connections_max", "Maximum open connections", "{connection}"); err != nil {
		return nil, err
	}
	if c.waitCount, err = NewGauge(meter, "db_pool_wait_count", "Connections waited for since start", "{wait}"); err != nil {
		return nil, err
	}
	return c, nil
}

// Start collects immediately and then every interval until Stop or ctx ends.
func (c *PoolStatsCollector) Start(ctx context.Context) {
	if c.db == nil {
		c.logger.Warn("Pool stats collection skipped: no database handle")
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.Collect(ctx)
		for {
			select {
			case <-ticker.C:
				c.Collect(ctx)
			case <-c.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Collect records one sample.
func (c *PoolStatsCollector) Collect(ctx context.Context) {
	if c.db == nil {
		return
	}
	stats := c.db.Stats()
	c.maxConnections.Record(ctx, int64(stats.MaxOpenConnections))
	c.connections.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
	c.connections.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
	c.connections.Record(ctx, int64(stats.OpenConnections), AttrDBState.String("open"))
	c.waitCount.Record(ctx, stats.WaitCount)
}

// Stop ends collection and waits for the goroutine. Safe to call twice.
func (c *PoolStatsCollector) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
}
