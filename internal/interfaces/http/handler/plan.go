package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	planningapp "github.com/stockplan/backend/internal/application/planning"
	"github.com/stockplan/backend/internal/domain/shared"
)

// PlanService is the application surface used by PlanHandler.
type PlanService interface {
	CreatePlan(ctx context.Context, tenantID uuid.UUID, req planningapp.CreatePlanRequest) (*planningapp.PlanResponse, error)
	GetPlan(ctx context.Context, tenantID, id uuid.UUID) (*planningapp.PlanResponse, error)
	ListPlans(ctx context.Context, tenantID uuid.UUID, f planningapp.PlanListFilter) (shared.Paginated[planningapp.PlanResponse], error)
	UpdatePlan(ctx context.Context, tenantID, id uuid.UUID, req planningapp.UpdatePlanRequest) (*planningapp.PlanResponse, error)
	ActivatePlan(ctx context.Context, tenantID, id uuid.UUID) (*planningapp.PlanResponse, error)
	DeprecatePlan(ctx context.Context, tenantID, id uuid.UUID) (*planningapp.PlanResponse, error)
	CancelPlan(ctx context.Context, tenantID, id uuid.UUID) (*planningapp.PlanResponse, error)
	Recalculate(ctx context.Context, tenantID uuid.UUID, planIDs []uuid.UUID) (*planningapp.RecalculationResult, error)
	RecalculatePlan(ctx context.Context, tenantID, planID uuid.UUID) (*planningapp.RecalculationResult, error)
	GetSummary(ctx context.Context, tenantID, id uuid.UUID) (*planningapp.SummaryResponse, error)
	ListLines(ctx context.Context, tenantID, id uuid.UUID, q planningapp.LineQuery) ([]planningapp.PlanLineResponse, error)
	LinesByRequest(ctx context.Context, tenantID, id, requestID uuid.UUID) ([]planningapp.PlanLineResponse, error)
	ExportLines(ctx context.Context, tenantID, id uuid.UUID) (*planningapp.ExportResponse, error)
}

var _ PlanService = (*planningapp.PlanService)(nil)

// PlanHandler handles plan lifecycle, recalculation and line queries
type PlanHandler struct {
	BaseHandler
	plans PlanService
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(plans PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// Create godoc
// @ID           createPlan
// @Summary      Create a plan
// @Description  Create a draft plan. include_excess defaults to true.
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        request body planningapp.CreatePlanRequest true "Plan"
// @Success      201 {object} APIResponse[planningapp.PlanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans [post]
func (h *PlanHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	var req planningapp.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	plan, err := h.plans.CreatePlan(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, plan)
}

// List godoc
// @ID           listPlans
// @Summary      List plans
// @Tags         plans
// @Produce      json
// @Param        state     query string false "Plan state" Enums(DRAFT, ACTIVE, DEPRECATED, CANCELLED)
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]planningapp.PlanResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans [get]
func (h *PlanHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	var f planningapp.PlanListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.plans.ListPlans(c.Request.Context(), tenantID, f)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @ID           getPlan
// @Summary      Get a plan
// @Description  The summary is present once the plan has been computed.
// @Tags         plans
// @Produce      json
// @Param        id path string true "Plan ID" format(uuid)
// @Success      200 {object} APIResponse[planningapp.PlanResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans/{id} [get]
func (h *PlanHandler) Get(c *gin.Context) {
	h.withPlan(c, h.plans.GetPlan)
}

// Update godoc
// @ID           updatePlan
// @Summary      Update plan settings
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        id      path string true "Plan ID" format(uuid)
// @Param        request body planningapp.UpdatePlanRequest true "Settings"
// @Success      200 {object} APIResponse[planningapp.PlanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans/{id} [put]
func (h *PlanHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	var req planningapp.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	plan, err := h.plans.UpdatePlan(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, plan)
}

// Activate godoc
// @ID           activatePlan
// @Summary      Activate a plan
// @Description  The previously active plan of the tenant is deprecated.
// @Tags         plans
// @Produce      json
// @Param        id path string true "Plan ID" format(uuid)
// @Success      200 {object} APIResponse[planningapp.PlanResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans/{id}/activate [post]
func (h *PlanHandler) Activate(c *gin.Context) {
	h.withPlan(c, h.plans.ActivatePlan)
}

// Deprecate godoc
// @ID           deprecatePlan
// @Summary      Deprecate a plan
// @Tags         plans
// @Produce      json
// @Param        id path string true "Plan ID" format(uuid)
// @Success      200 {object} APIResponse[planningapp.PlanResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans/{id}/deprecate [post]
func (h *PlanHandler) Deprecate(c *gin.Context) {
	h.withPlan(c, h.plans.DeprecatePlan)
}

// Cancel godoc
// @ID           cancelPlan
// @Summary      Cancel a plan
// @Description  A cancelled plan can no longer be recalculated.
// @Tags         plans
// @Produce      json
// @Param        id path string true "Plan ID" format(uuid)
// @Success      200 {object} APIResponse[planningapp.PlanResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans/{id}/cancel [post]
func (h *PlanHandler) Cancel(c *gin.Context) {
	h.withPlan(c, h.plans.CancelPlan)
}

type lineQueryParams struct {
	Kind      string `form:"kind" binding:"omitempty,oneof=valid late without_stock excess"`
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
	MinLag    *int   `form:"min_lag"`
	MaxLag    *int   `form:"max_lag"`
}

func (p lineQueryParams) toQuery() (planningapp.LineQuery, error) {
	q := planningapp.LineQuery{Kind: p.Kind, MinLag: p.MinLag, MaxLag: p.MaxLag}
	if p.ProductID != "" {
		id, err := parseUUIDParam("product_id", p.ProductID)
		if err != nil {
			return q, err
		}
		q.ProductID = &id
	}
	return q, nil
}

func (h *PlanHandler) withPlan(c *gin.Context, fn func(context.Context, uuid.UUID, uuid.UUID) (*planningapp.PlanResponse, error)) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	plan, err := fn(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, plan)
}

// Recalculate godoc
// @ID           recalculatePlans
// @Summary      Recalculate a plan
// @Description  Rebuilds the lines of exactly one plan. More than one id is refused with MULTIPLE_PLANS.
// @Tags         plans
// @Accept       json
// @Produce      json
// @Param        request body planningapp.RecalculateRequest true "Plan ids"
// @Success      200 {object} APIResponse[planningapp.RecalculationResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans/recalculate [post]
func (h *PlanHandler) Recalculate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	var req planningapp.RecalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.plans.Recalculate(c.Request.Context(), tenantID, req.PlanIDs)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// RecalculateOne godoc
// @ID           recalculatePlan
// @Summary      Recalculate one plan
// @Tags         plans
// @Produce      json
// @Param        id path string true "Plan ID" format(uuid)
// @Success      200 {object} APIResponse[planningapp.RecalculationResult]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans/{id}/recalculate [post]
func (h *PlanHandler) RecalculateOne(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	result, err := h.plans.RecalculatePlan(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// Summary godoc
// @ID           getPlanSummary
// @Summary      Plan health counts
// @Description  Returns NO_BASELINE until the plan has been computed once.
// @Tags         plans
// @Produce      json
// @Param        id path string true "Plan ID" format(uuid)
// @Success      200 {object} APIResponse[planningapp.SummaryResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans/{id}/summary [get]
func (h *PlanHandler) Summary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	summary, err := h.plans.GetSummary(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, summary)
}

// Lines godoc
// @ID           listPlanLines
// @Summary      List plan lines
// @Description  Lines in sequence order. Lag bounds apply to lines with a destination date.
// @Tags         plans
// @Produce      json
// @Param        id         path  string true  "Plan ID" format(uuid)
// @Param        kind       query string false "Classification" Enums(valid, late, without_stock, excess)
// @Param        product_id query string false "Product ID" format(uuid)
// @Param        min_lag    query int    false "Minimum day difference"
// @Param        max_lag    query int    false "Maximum day difference"
// @Success      200 {object} APIResponse[[]planningapp.PlanLineResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans/{id}/lines [get]
func (h *PlanHandler) Lines(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	var params lineQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.BindError(c, err)
		return
	}
	q, err := params.toQuery()
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	lines, err := h.plans.ListLines(c.Request.Context(), tenantID, id, q)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, lines)
}

// LinesByRequest godoc
// @ID           listPlanLinesByRequest
// @Summary      Lines touching a transfer request
// @Description  Lines whose source or destination is the given request.
// @Tags         plans
// @Produce      json
// @Param        id        path string true "Plan ID" format(uuid)
// @Param        requestId path string true "Transfer request ID" format(uuid)
// @Success      200 {object} APIResponse[[]planningapp.PlanLineResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans/{id}/lines/by-request/{requestId} [get]
func (h *PlanHandler) LinesByRequest(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	requestID, err := parseID(c, "requestId")
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	lines, err := h.plans.LinesByRequest(c.Request.Context(), tenantID, id, requestID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, lines)
}

// Export godoc
// @ID           exportPlanLines
// @Summary      Export plan lines as CSV
// @Description  Uploads the lines to object storage and returns a presigned download URL.
// @Tags         plans
// @Produce      json
// @Param        id path string true "Plan ID" format(uuid)
// @Success      200 {object} APIResponse[planningapp.ExportResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /plans/{id}/export [post]
func (h *PlanHandler) Export(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	export, err := h.plans.ExportLines(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, export)
}
