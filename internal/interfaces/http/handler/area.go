package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	stockapp "github.com/stockplan/backend/internal/application/stock"
	"github.com/stockplan/backend/internal/domain/shared"
)

// AreaService is the application surface used by AreaHandler.
type AreaService interface {
	CreateArea(ctx context.Context, tenantID uuid.UUID, req stockapp.CreateAreaRequest) (*stockapp.AreaResponse, error)
	GetArea(ctx context.Context, tenantID, id uuid.UUID) (*stockapp.AreaResponse, error)
	ListAreas(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[stockapp.AreaResponse], error)
	UpdateArea(ctx context.Context, tenantID, id uuid.UUID, req stockapp.UpdateAreaRequest) (*stockapp.AreaResponse, error)
	CreateLocation(ctx context.Context, tenantID uuid.UUID, req stockapp.CreateLocationRequest) (*stockapp.LocationResponse, error)
	ListLocations(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[stockapp.LocationResponse], error)
}

var _ AreaService = (*stockapp.AreaService)(nil)

// AreaHandler handles storage areas and locations
type AreaHandler struct {
	BaseHandler
	areas AreaService
}

// NewAreaHandler creates a new AreaHandler
func NewAreaHandler(areas AreaService) *AreaHandler {
	return &AreaHandler{areas: areas}
}

type pageParams struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=500"`
}

func (p pageParams) filter() shared.Filter {
	f := shared.DefaultFilter()
	f.Page = p.Page
	f.PageSize = p.PageSize
	return f
}

type areaListParams struct {
	pageParams
	Search   string `form:"search" binding:"max=100"`
	IsActive *bool  `form:"is_active"`
}

type locationListParams struct {
	pageParams
	AreaID string `form:"area_id" binding:"omitempty,uuid"`
	Type   string `form:"type" binding:"omitempty,oneof=STORAGE PRODUCTION SUPPLIER CUSTOMER LOST_FOUND"`
}

// CreateArea godoc
// @ID           createArea
// @Summary      Create a storage area
// @Tags         areas
// @Accept       json
// @Produce      json
// @Param        request body stockapp.CreateAreaRequest true "Area"
// @Success      201 {object} APIResponse[stockapp.AreaResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /areas [post]
func (h *AreaHandler) CreateArea(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	var req stockapp.CreateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	area, err := h.areas.CreateArea(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, area)
}

// ListAreas godoc
// @ID           listAreas
// @Summary      List storage areas
// @Tags         areas
// @Produce      json
// @Param        search    query string false "Code or name contains"
// @Param        is_active query bool   false "Only active or inactive areas"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]stockapp.AreaResponse]
// @Security     BearerAuth
// @Router       /areas [get]
func (h *AreaHandler) ListAreas(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	var params areaListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.BindError(c, err)
		return
	}
	f := params.filter()
	f.OrderBy = "code"
	f.OrderDir = "asc"
	if params.Search != "" {
		f.Filters["search"] = params.Search
	}
	if params.IsActive != nil {
		f.Filters["is_active"] = *params.IsActive
	}
	page, err := h.areas.ListAreas(c.Request.Context(), tenantID, f)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetArea godoc
// @ID           getArea
// @Summary      Get a storage area
// @Tags         areas
// @Produce      json
// @Param        id path string true "Area ID" format(uuid)
// @Success      200 {object} APIResponse[stockapp.AreaResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /areas/{id} [get]
func (h *AreaHandler) GetArea(c *gin.Context) {
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
	area, err := h.areas.GetArea(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, area)
}

// UpdateArea godoc
// @ID           updateArea
// @Summary      Rename or (de)activate a storage area
// @Description  Inactive areas are left out of plan recalculation.
// @Tags         areas
// @Accept       json
// @Produce      json
// @Param        id      path string true "Area ID" format(uuid)
// @Param        request body stockapp.UpdateAreaRequest true "Area"
// @Success      200 {object} APIResponse[stockapp.AreaResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /areas/{id} [put]
func (h *AreaHandler) UpdateArea(c *gin.Context) {
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
	var req stockapp.UpdateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	area, err := h.areas.UpdateArea(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, area)
}

// CreateLocation godoc
// @ID           createLocation
// @Summary      Create a location
// @Description  Only STORAGE locations may belong to an area.
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        request body stockapp.CreateLocationRequest true "Location"
// @Success      201 {object} APIResponse[stockapp.LocationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /locations [post]
func (h *AreaHandler) CreateLocation(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	var req stockapp.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	loc, err := h.areas.CreateLocation(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, loc)
}

// ListLocations godoc
// @ID           listLocations
// @Summary      List locations
// @Tags         locations
// @Produce      json
// @Param        area_id   query string false "Area ID" format(uuid)
// @Param        type      query string false "Location type" Enums(STORAGE, PRODUCTION, SUPPLIER, CUSTOMER, LOST_FOUND)
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]stockapp.LocationResponse]
// @Security     BearerAuth
// @Router       /locations [get]
func (h *AreaHandler) ListLocations(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	var params locationListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.BindError(c, err)
		return
	}
	f := params.filter()
	if params.AreaID != "" {
		f.Filters["area_id"] = uuid.MustParse(params.AreaID)
	}
	if params.Type != "" {
		f.Filters["type"] = params.Type
	}
	page, err := h.areas.ListLocations(c.Request.Context(), tenantID, f)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
