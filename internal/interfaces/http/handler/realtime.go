package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockplan/backend/internal/domain/shared"
	"github.com/stockplan/backend/internal/infrastructure/logger"
)

// EventStream upgrades a request into a tenant-scoped event subscription.
type EventStream interface {
	Serve(w http.ResponseWriter, r *http.Request, tenantID uuid.UUID) error
}

// PlanEventsHandler streams plan events over a websocket
type PlanEventsHandler struct {
	BaseHandler
	stream EventStream
}

// NewPlanEventsHandler creates a new PlanEventsHandler
func NewPlanEventsHandler(stream EventStream) *PlanEventsHandler {
	return &PlanEventsHandler{stream: stream}
}

// Stream godoc
// @ID           streamPlanEvents
// @Summary      Plan event stream
// @Description  Websocket. Browsers pass the token as access_token. Messages carry type, aggregate_id, occurred_at and payload.
// @Tags         plans
// @Param        access_token query string false "Bearer token for browsers"
// @Success      101
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans/events [get]
func (h *PlanEventsHandler) Stream(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if !c.IsWebsocket() {
		h.HandleDomainError(c, shared.ErrInvalidInput.WithMessage("Websocket upgrade required"))
		return
	}
	if err := h.stream.Serve(c.Writer, c.Request, tenantID); err != nil {
		// The upgrader has already written the failure response.
		logger.FromGin(c).Debug("Websocket upgrade failed", zap.Error(err))
		c.Abort()
	}
}
