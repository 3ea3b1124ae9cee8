package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/stockplan/backend/docs"
	planningapp "github.com/stockplan/backend/internal/application/planning"
	stockapp "github.com/stockplan/backend/internal/application/stock"
	"github.com/stockplan/backend/internal/domain/planning"
	"github.com/stockplan/backend/internal/domain/shared"
	"github.com/stockplan/backend/internal/infrastructure/auth"
	"github.com/stockplan/backend/internal/infrastructure/cache"
	"github.com/stockplan/backend/internal/infrastructure/config"
	"github.com/stockplan/backend/internal/infrastructure/event"
	"github.com/stockplan/backend/internal/infrastructure/logger"
	"github.com/stockplan/backend/internal/infrastructure/persistence"
	"github.com/stockplan/backend/internal/infrastructure/realtime"
	"github.com/stockplan/backend/internal/infrastructure/scheduler"
	"github.com/stockplan/backend/internal/infrastructure/storage"
	"github.com/stockplan/backend/internal/infrastructure/telemetry"
	"github.com/stockplan/backend/internal/interfaces/http/handler"
	"github.com/stockplan/backend/internal/interfaces/http/middleware"
	"github.com/stockplan/backend/internal/interfaces/http/router"
)

//	@title			Stock Plan API
//	@version		1.0
//	@description	Stock-plan reconciliation: allocates transfer demand against on-hand and incoming stock per storage area.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// The OTLP log pipeline needs a logger of its own before the real one
	// exists, so bootstrap with a console logger first.
	bootLog, err := logger.New(logger.ForEnvironment(cfg.App.Env))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, logProvider.ZapOTELCore(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()
	zap.ReplaceGlobals(log)

	log.Info("Starting stock plan backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("port", cfg.HTTP.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Database.LogLevel), cfg.Database.SlowThreshold)
	db, err := persistence.NewDatabase(cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	var planMetrics *telemetry.PlanMetrics
	if meterProvider.IsEnabled() {
		meter := meterProvider.Meter("stockplan")
		poolStats, err := telemetry.NewPoolStatsCollector(meter, db.X.DB, cfg.Telemetry.MetricsInterval, log)
		if err != nil {
			log.Fatal("Failed to create pool stats collector", zap.Error(err))
		}
		poolStats.Start(ctx)
		defer poolStats.Stop()

		planMetrics, err = telemetry.NewPlanMetrics(meter)
		if err != nil {
			log.Fatal("Failed to create plan metrics", zap.Error(err))
		}
	}

	// Repositories
	planRepo := persistence.NewGormPlanRepository(db.DB)
	areaRepo := persistence.NewGormStorageAreaRepository(db.DB)
	locationRepo := persistence.NewGormLocationRepository(db.DB)
	transferRepo := persistence.NewGormTransferRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	snapshots := persistence.NewSQLStockSnapshotProvider(db.X)

	locker, lockCloser, err := cache.NewLockerFactory(cfg.Redis, cache.WithLogger(log)).
		Create(ctx, cfg.Planning.LockBackend)
	if err != nil {
		log.Fatal("Failed to create plan locker", zap.Error(err))
	}
	defer closeQuietly(log, "plan locker", lockCloser)

	// Events fan out to the audit log and to websocket subscribers.
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewPlanEventLogger(log))
	hub := realtime.NewHub(log, realtime.WithAllowedOrigins(cfg.HTTP.CORSAllowOrigins...))
	eventBus.Subscribe(hub)
	defer hub.Close()

	clock := shared.SystemClock{Location: cfg.Planning.Location()}
	engine := planning.NewEngine(snapshots, planning.WithParallelism(cfg.Planning.Parallelism))

	planService := planningapp.NewPlanService(planRepo, areaRepo, transferRepo, engine, locker, cfg.Planning.LockTTL, log)
	planService.SetEventPublisher(eventBus)
	planService.SetClock(clock)
	if planMetrics != nil {
		planService.SetPlanMetrics(planMetrics)
	}

	areaService := stockapp.NewAreaService(areaRepo, locationRepo, log)
	areaService.SetEventPublisher(eventBus)

	transferService := stockapp.NewTransferService(
		transferRepo, locationRepo, ledgerRepo, snapshots,
		persistence.NewGormTransactionScope(db.DB), log,
	)
	transferService.SetEventPublisher(eventBus)
	transferService.SetClock(clock)

	checks := []handler.HealthCheck{{Name: "database", Check: db.Ping}}
	if rc, ok := lockCloser.(*redis.Client); ok {
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rc.Ping(ctx).Err() },
		})
	}

	if cfg.Storage.Enabled {
		objects, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create object storage", zap.Error(err))
		}
		if err := objects.EnsureBucket(ctx); err != nil {
			log.Fatal("Object storage unavailable", zap.Error(err), zap.String("bucket", cfg.Storage.Bucket))
		}
		planService.SetObjectStorage(objects, cfg.Storage.ExportPrefix)
		checks = append(checks, handler.HealthCheck{Name: "storage", Check: objects.Ping})
		log.Info("Plan export enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	if cfg.Planning.SchedulerEnabled {
		recalcScheduler := scheduler.NewRecalculationScheduler(planService, log, scheduler.RecalculationSchedulerConfig{
			Enabled:    true,
			Interval:   cfg.Planning.RecomputeInterval,
			RunTimeout: cfg.Planning.RecomputeInterval,
		})
		if err := recalcScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start recalculation scheduler", zap.Error(err))
		}
		defer func() {
			if err := recalcScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping recalculation scheduler", zap.Error(err))
			}
		}()
		log.Info("Recalculation scheduler started", zap.Duration("interval", cfg.Planning.RecomputeInterval))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWT.Disabled {
		log.Warn("Authentication disabled; tenant is taken from the X-Tenant-ID header")
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitRequests > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
	}

	httpEngine := router.NewEngine(router.EngineConfig{
		HTTP: cfg.HTTP,
		Auth: middleware.AuthConfig{
			JWTService: auth.NewJWTService(cfg.JWT),
			Disabled:   cfg.JWT.Disabled,
		},
		Tracing:     middleware.TracingConfig{ServiceName: cfg.Telemetry.ServiceName, Enabled: tracerProvider.IsEnabled()},
		Metrics:     middleware.HTTPMetricsConfig{MeterProvider: meterProvider, Enabled: meterProvider.IsEnabled(), Logger: log},
		Swagger:     cfg.Swagger.Enabled,
		RateLimiter: rateLimiter,
		Logger:      log,
	}, router.Handlers{
		Plans:     handler.NewPlanHandler(planService),
		Events:    handler.NewPlanEventsHandler(hub),
		Areas:     handler.NewAreaHandler(areaService),
		Transfers: handler.NewTransferHandler(transferService),
		Stock:     handler.NewStockHandler(transferService),
		Health:    handler.NewHealthHandler(cfg.App.Version, checks...),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.HTTP.Port,
		Handler:        httpEngine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tracerProvider.Shutdown,
		"meter":  meterProvider.Shutdown,
		"logs":   logProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

func closeQuietly(log *zap.Logger, name string, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		log.Warn("Close failed", zap.String("resource", name), zap.Error(err))
	}
}
