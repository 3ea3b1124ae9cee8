package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/stockplan/backend/internal/infrastructure/telemetry"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "stockplan-backend",
		Enabled:     true,
	}
}

// Tracing returns the otelgin server middleware, or a pass-through when
// tracing is disabled.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TracingAttributeInjector copies request, tenant and user ids onto the
// current span. Place it after Authenticate.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			enrichSpan(c, span)
		}
		c.Next()
	}
}

func enrichSpan(c *gin.Context, span trace.Span) {
	if id := GetRequestID(c); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}
	if id := spanTenantID(c); id != "" {
		span.SetAttributes(telemetry.AttrTenantID.String(id))
	}
	if id := c.GetString(UserIDKey); id != "" {
		span.SetAttributes(attribute.String("user_id", id))
	}
}

// spanTenantID prefers the authenticated tenant and falls back to a
// well-formed X-Tenant-ID header for requests that skip auth.
func spanTenantID(c *gin.Context) string {
	if id := c.GetString(TenantIDKey); id != "" {
		return id
	}
	header := c.GetHeader(HeaderTenantID)
	if _, err := uuid.Parse(header); err != nil {
		return ""
	}
	return header
}

// SpanErrorMarker marks the server span as failed for 4xx and 5xx responses.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		span.SetStatus(codes.Error, http.StatusText(status))
		span.SetAttributes(telemetry.AttrHTTPStatus.Int(status))
		if len(c.Errors) > 0 {
			span.SetAttributes(attribute.String("error.message", c.Errors.Last().Error()))
		}
	}
}
