package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/stockplan/backend/internal/infrastructure/config"
	"github.com/stockplan/backend/internal/infrastructure/logger"
	"github.com/stockplan/backend/internal/interfaces/http/dto"
	"github.com/stockplan/backend/internal/interfaces/http/handler"
	"github.com/stockplan/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts domain groups under a versioned API prefix
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use adds middleware that runs for every API route but not for routes
// registered directly on the engine.
func (r *Router) Use(mw ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, mw...)
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/"+r.apiVersion, r.middleware...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup collects the routes of one resource before they are mounted
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPut, path, handlers)
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// Group creates a sub-group within this domain
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar interface
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix, dg.middleware...)
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	Plans     *handler.PlanHandler
	Events    *handler.PlanEventsHandler
	Areas     *handler.AreaHandler
	Transfers *handler.TransferHandler
	Stock     *handler.StockHandler
	Health    *handler.HealthHandler
}

// EngineConfig carries the cross-cutting settings of the HTTP stack
type EngineConfig struct {
	HTTP    config.HTTPConfig
	Auth    middleware.AuthConfig
	Tracing middleware.TracingConfig
	Metrics middleware.HTTPMetricsConfig
	Swagger bool
	// RateLimiter guards recalculation and export. Nil disables it.
	RateLimiter *middleware.RateLimiter
	Logger      *zap.Logger
}

// NewEngine builds the gin engine with the full middleware stack and every
// route. Health probes and swagger stay outside authentication.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: request id first so every later log line carries it,
	// recovery before anything that may panic.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Tracing))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(cfg.Metrics))
	engine.Use(middleware.CORS(cfg.HTTP))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(bodyLimit(cfg.HTTP.MaxBodySize)))
	engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	if h.Health != nil {
		engine.GET("/health/live", h.Health.Live)
		engine.GET("/health/ready", h.Health.Ready)
	}
	if cfg.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if cfg.Auth.Logger == nil {
		cfg.Auth.Logger = log
	}
	r := NewRouter(engine, WithAPIVersion("v1")).
		Use(middleware.Authenticate(cfg.Auth), middleware.TracingAttributeInjector())

	limited := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		if cfg.RateLimiter == nil {
			return []gin.HandlerFunc{fn}
		}
		return []gin.HandlerFunc{middleware.RateLimit(cfg.RateLimiter), fn}
	}

	if h.Plans != nil {
		plans := NewDomainGroup("plans", "/plans")
		plans.POST("", h.Plans.Create)
		plans.GET("", h.Plans.List)
		plans.POST("/recalculate", limited(h.Plans.Recalculate)...)
		if h.Events != nil {
			plans.GET("/events", h.Events.Stream)
		}
		plans.GET("/:id", h.Plans.Get)
		plans.PUT("/:id", h.Plans.Update)
		plans.POST("/:id/activate", h.Plans.Activate)
		plans.POST("/:id/deprecate", h.Plans.Deprecate)
		plans.POST("/:id/cancel", h.Plans.Cancel)
		plans.POST("/:id/recalculate", limited(h.Plans.RecalculateOne)...)
		plans.GET("/:id/summary", h.Plans.Summary)
		plans.GET("/:id/lines", h.Plans.Lines)
		plans.GET("/:id/lines/by-request/:requestId", h.Plans.LinesByRequest)
		plans.POST("/:id/export", limited(h.Plans.Export)...)
		r.Register(plans)
	}

	if h.Areas != nil {
		areas := NewDomainGroup("areas", "/areas")
		areas.POST("", h.Areas.CreateArea)
		areas.GET("", h.Areas.ListAreas)
		areas.GET("/:id", h.Areas.GetArea)
		areas.PUT("/:id", h.Areas.UpdateArea)
		if h.Stock != nil {
			areas.GET("/:id/ledger", h.Stock.Ledger)
		}
		r.Register(areas)

		locations := NewDomainGroup("locations", "/locations")
		locations.POST("", h.Areas.CreateLocation)
		locations.GET("", h.Areas.ListLocations)
		r.Register(locations)
	}

	if h.Transfers != nil {
		transfers := NewDomainGroup("transfers", "/transfers")
		transfers.POST("", h.Transfers.Create)
		transfers.GET("", h.Transfers.List)
		transfers.GET("/:id", h.Transfers.Get)
		transfers.POST("/:id/assign", h.Transfers.Assign)
		transfers.POST("/:id/unassign", h.Transfers.Unassign)
		transfers.POST("/:id/complete", h.Transfers.Complete)
		transfers.POST("/:id/cancel", h.Transfers.Cancel)
		transfers.POST("/:id/reschedule", h.Transfers.Reschedule)
		r.Register(transfers)
	}

	if h.Stock != nil {
		stock := NewDomainGroup("stock", "/stock")
		stock.GET("/on-hand", h.Stock.OnHand)
		stock.POST("/adjustments", h.Stock.RecordAdjustment)
		r.Register(stock)
	}

	r.Setup()
	return engine
}

func bodyLimit(n int64) int64 {
	if n <= 0 {
		return middleware.DefaultBodyLimit
	}
	return n
}
