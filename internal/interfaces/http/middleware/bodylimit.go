package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stockplan/backend/internal/interfaces/http/dto"
)

// DefaultBodyLimit fits a recalculation request for a few thousand plan ids.
const DefaultBodyLimit int64 = 1 << 20

// BodyLimit rejects declared bodies above maxBytes and caps streamed ones.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithRequestID(dto.ErrCodePayloadTooLarge,
					"Request body exceeds maximum allowed size", GetRequestID(c)))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
