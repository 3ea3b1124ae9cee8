package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockplan/backend/internal/infrastructure/auth"
	"github.com/stockplan/backend/internal/infrastructure/logger"
	"github.com/stockplan/backend/internal/interfaces/http/dto"
)

// AuthConfig configures Authenticate.
type AuthConfig struct {
	JWTService *auth.JWTService
	// Disabled trusts the X-Tenant-ID header instead of a bearer token.
	// Local development and planctl only.
	Disabled     bool
	SkipPaths    []string
	SkipPrefixes []string
	Logger       *zap.Logger
}

// Authenticate resolves the calling tenant and stores it on the gin context
// and on the request context for the logger.
func Authenticate(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}
		for _, prefix := range cfg.SkipPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		if cfg.Disabled {
			tenantID, err := uuid.Parse(c.GetHeader(HeaderTenantID))
			if err != nil {
				abortUnauthorized(c, "Missing or invalid X-Tenant-ID header")
				return
			}
			setTenant(c, tenantID)
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Authorization header is required")
			return
		}
		if cfg.JWTService == nil {
			abortUnauthorized(c, "Authentication is not configured")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(token)
		if err != nil {
			log.Debug("Token rejected", zap.String("path", path), zap.Error(err))
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				abortUnauthorized(c, "Token has expired")
			case errors.Is(err, auth.ErrMissingTenantID):
				abortUnauthorized(c, "Token has no tenant")
			default:
				abortUnauthorized(c, "Invalid token")
			}
			return
		}

		tenantID, err := claims.GetTenantUUID()
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}
		c.Set(ClaimsKey, claims)
		if claims.UserID != "" {
			c.Set(UserIDKey, claims.UserID)
		}
		setTenant(c, tenantID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		// Browsers cannot set headers on websocket upgrades.
		if c.IsWebsocket() {
			if t := c.Query("access_token"); t != "" {
				return t, true
			}
		}
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setTenant(c *gin.Context, tenantID uuid.UUID) {
	c.Set(TenantIDKey, tenantID.String())
	c.Request = c.Request.WithContext(logger.WithTenantID(c.Request.Context(), tenantID.String()))
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, message, GetRequestID(c)))
}

// GetTenantUUID returns the tenant resolved by Authenticate.
func GetTenantUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(TenantIDKey))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// GetClaims returns the validated token claims, or nil when auth is disabled.
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
