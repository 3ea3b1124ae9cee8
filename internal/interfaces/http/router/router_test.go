package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockplan/backend/internal/infrastructure/auth"
	"github.com/stockplan/backend/internal/infrastructure/config"
	"github.com/stockplan/backend/internal/interfaces/http/dto"
	"github.com/stockplan/backend/internal/interfaces/http/handler"
	"github.com/stockplan/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	plans := NewDomainGroup("plans", "/plans")
	plans.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.Use(func(c *gin.Context) {
		c.Header("X-Api", "yes")
		c.Next()
	})
	r.Register(plans).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/plans/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "yes", w.Header().Get("X-Api"))
}

func TestDomainGroup(t *testing.T) {
	g := NewDomainGroup("transfers", "/transfers")
	assert.Equal(t, "transfers", g.Name())
	assert.Equal(t, "/transfers", g.Prefix())

	g.Use(func(c *gin.Context) {
		c.Header("X-Group", "transfers")
		c.Next()
	})
	g.GET("", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
		POST("/:id/assign", func(c *gin.Context) { c.String(http.StatusOK, "assign "+c.Param("id")) }).
		PUT("/:id", func(c *gin.Context) { c.String(http.StatusOK, "put") })
	sub := g.Group("lines", "/:id/lines")
	sub.GET("", func(c *gin.Context) { c.String(http.StatusOK, "lines") })

	engine := gin.New()
	g.RegisterRoutes(engine.Group("/api/v1"))

	cases := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/api/v1/transfers", "list"},
		{http.MethodPost, "/api/v1/transfers/42/assign", "assign 42"},
		{http.MethodPut, "/api/v1/transfers/42", "put"},
		{http.MethodGet, "/api/v1/transfers/42/lines", "lines"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, tc.body, w.Body.String())
		assert.Equal(t, "transfers", w.Header().Get("X-Group"))
	}
}

func newTestEngine(t *testing.T, cfg EngineConfig) *gin.Engine {
	t.Helper()
	if cfg.HTTP.RequestTimeout == 0 {
		cfg.HTTP.RequestTimeout = 5 * time.Second
	}
	return NewEngine(cfg, Handlers{
		Plans:     handler.NewPlanHandler(nil),
		Areas:     handler.NewAreaHandler(nil),
		Transfers: handler.NewTransferHandler(nil),
		Stock:     handler.NewStockHandler(nil),
		Health:    handler.NewHealthHandler("test"),
	})
}

func serve(engine *gin.Engine, method, path string, header http.Header, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header[http.CanonicalHeaderKey(k)] = v
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewEngine_HealthOutsideAuth(t *testing.T) {
	engine := newTestEngine(t, EngineConfig{})

	w := serve(engine, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))

	w = serve(engine, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewEngine_RequiresToken(t *testing.T) {
	jwtSvc := auth.NewJWTService(config.JWTConfig{
		Secret:                "router-test-secret-with-enough-bytes",
		Issuer:                "stockplan-test",
		AccessTokenExpiration: time.Hour,
	})
	engine := newTestEngine(t, EngineConfig{Auth: middleware.AuthConfig{JWTService: jwtSvc}})

	w := serve(engine, http.MethodGet, "/api/v1/plans/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _, err := jwtSvc.IssueAccessToken(auth.IssueTokenInput{TenantID: uuid.New(), Username: "planner"})
	require.NoError(t, err)
	w = serve(engine, http.MethodGet, "/api/v1/plans/not-a-uuid",
		http.Header{"Authorization": []string{"Bearer " + token}}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
}

func TestNewEngine_NoRoute(t *testing.T) {
	engine := newTestEngine(t, EngineConfig{})

	w := serve(engine, http.MethodGet, "/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}

func TestNewEngine_SwaggerToggle(t *testing.T) {
	off := newTestEngine(t, EngineConfig{})
	assert.Equal(t, http.StatusNotFound, serve(off, http.MethodGet, "/swagger/index.html", nil, "").Code)

	on := newTestEngine(t, EngineConfig{Swagger: true})
	assert.Equal(t, http.StatusOK, serve(on, http.MethodGet, "/swagger/index.html", nil, "").Code)
}

func TestNewEngine_RateLimitsRecalculation(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute)
	defer limiter.Stop()
	engine := newTestEngine(t, EngineConfig{
		Auth:        middleware.AuthConfig{Disabled: true},
		RateLimiter: limiter,
	})
	tenant := http.Header{middleware.HeaderTenantID: []string{uuid.NewString()}}

	// An empty body is rejected by validation before the service is reached.
	w := serve(engine, http.MethodPost, "/api/v1/plans/recalculate", tenant, "{}")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = serve(engine, http.MethodPost, "/api/v1/plans/recalculate", tenant, "{}")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Other tenants and unlimited routes are unaffected.
	other := http.Header{middleware.HeaderTenantID: []string{uuid.NewString()}}
	w = serve(engine, http.MethodPost, "/api/v1/plans/recalculate", other, "{}")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = serve(engine, http.MethodGet, "/api/v1/plans/bad-id", tenant, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewEngine_BodyLimit(t *testing.T) {
	engine := newTestEngine(t, EngineConfig{
		HTTP: config.HTTPConfig{MaxBodySize: 16},
		Auth: middleware.AuthConfig{Disabled: true},
	})
	tenant := http.Header{middleware.HeaderTenantID: []string{uuid.NewString()}}

	w := serve(engine, http.MethodPost, "/api/v1/plans", tenant, `{"name":"a plan name that is long"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
