package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockplan/backend/internal/infrastructure/auth"
	"github.com/stockplan/backend/internal/infrastructure/config"
	"github.com/stockplan/backend/internal/infrastructure/logger"
)

func newAuthRouter(cfg AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Authenticate(cfg))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/plans", func(c *gin.Context) {
		tenantID, ok := GetTenantUUID(c)
		if !ok || logger.TenantID(c.Request.Context()) != tenantID.String() {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, tenantID.String())
	})
	return r
}

func TestAuthenticate_Bearer(t *testing.T) {
	svc := auth.NewJWTService(config.JWTConfig{Secret: "test-secret-at-least-32-bytes-long!!", Issuer: "stockplan", AccessTokenExpiration: time.Hour})
	tenantID := uuid.New()
	token, _, err := svc.IssueAccessToken(auth.IssueTokenInput{TenantID: tenantID, UserID: uuid.New(), Roles: []string{"planner"}})
	require.NoError(t, err)

	r := newAuthRouter(AuthConfig{JWTService: svc, SkipPaths: []string{"/health"}})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tenantID.String(), w.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
		req.Header.Set("Authorization", "Token "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		other := auth.NewJWTService(config.JWTConfig{Secret: "another-secret-at-least-32-bytes!!", Issuer: "stockplan", AccessTokenExpiration: time.Hour})
		forged, _, err := other.IssueAccessToken(auth.IssueTokenInput{TenantID: tenantID})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid token")
	})

	t.Run("skip path", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthenticate_Disabled(t *testing.T) {
	r := newAuthRouter(AuthConfig{Disabled: true})
	tenantID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	req.Header.Set(HeaderTenantID, tenantID.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tenantID.String(), w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/plans", nil)
	req.Header.Set(HeaderTenantID, "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetTenantUUID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := GetTenantUUID(c)
	assert.False(t, ok)
	assert.Nil(t, GetClaims(c))
}
