// Package scheduler runs periodic background work.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PlanRecalculator recomputes every active plan.
type PlanRecalculator interface {
	RecalculateActivePlans(ctx context.Context) (succeeded, failed int, err error)
}

// RecalculationSchedulerConfig holds configuration for the recalculation scheduler
type RecalculationSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// Interval is the time between two runs
	Interval time.Duration

	// RunTimeout is the maximum time for one run
	RunTimeout time.Duration

	// RunOnStart triggers a run as soon as the scheduler starts
	RunOnStart bool
}

// DefaultRecalculationSchedulerConfig returns default configuration
func DefaultRecalculationSchedulerConfig() RecalculationSchedulerConfig {
	return RecalculationSchedulerConfig{
		Enabled:    false,
		Interval:   15 * time.Minute,
		RunTimeout: 10 * time.Minute,
	}
}

// Validate checks the configuration
func (c RecalculationSchedulerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("%w: run timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// RecalculationScheduler periodically recomputes the active plan of every
// tenant. Runs never overlap.
type RecalculationScheduler struct {
	recalculator PlanRecalculator
	logger       *zap.Logger
	config       RecalculationSchedulerConfig
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.Mutex
	isRunning    bool
	runs         int
}

// NewRecalculationScheduler creates a new recalculation scheduler
func NewRecalculationScheduler(
	recalculator PlanRecalculator,
	logger *zap.Logger,
	config RecalculationSchedulerConfig,
) *RecalculationScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecalculationScheduler{
		recalculator: recalculator,
		logger:       logger.Named("scheduler"),
		config:       config,
	}
}

// Start starts the scheduler
func (s *RecalculationScheduler) Start(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Plan recalculation scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Plan recalculation scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Bool("run_on_start", s.config.RunOnStart),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *RecalculationScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Plan recalculation scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Plan recalculation scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *RecalculationScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Runs returns how many runs have completed
func (s *RecalculationScheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

func (s *RecalculationScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.RunOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Plan recalculation loop stopping")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce recomputes all active plans now, bounded by RunTimeout.
func (s *RecalculationScheduler) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	start := time.Now()
	succeeded, failed, err := s.recalculator.RecalculateActivePlans(runCtx)
	duration := time.Since(start)

	s.mu.Lock()
	s.runs++
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Plan recalculation run failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("Plan recalculation run completed",
		zap.Duration("duration", duration),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
	)
}
