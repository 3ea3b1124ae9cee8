package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	stockapp "github.com/stockplan/backend/internal/application/stock"
	"github.com/stockplan/backend/internal/domain/shared"
)

// StockHandler handles on-hand queries and ledger adjustments
type StockHandler struct {
	BaseHandler
	transfers TransferService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(transfers TransferService) *StockHandler {
	return &StockHandler{transfers: transfers}
}

type onHandParams struct {
	AreaIDs    []string `form:"area_id" binding:"required,min=1,dive,uuid"`
	ProductIDs []string `form:"product_id" binding:"omitempty,dive,uuid"`
	AsOf       string   `form:"as_of"`
}

func (p onHandParams) toQuery() (stockapp.OnHandQuery, error) {
	q := stockapp.OnHandQuery{
		AreaIDs:    make([]uuid.UUID, 0, len(p.AreaIDs)),
		ProductIDs: make([]uuid.UUID, 0, len(p.ProductIDs)),
	}
	for _, s := range p.AreaIDs {
		q.AreaIDs = append(q.AreaIDs, uuid.MustParse(s))
	}
	for _, s := range p.ProductIDs {
		q.ProductIDs = append(q.ProductIDs, uuid.MustParse(s))
	}
	if p.AsOf != "" {
		at, err := parseTimeParam(p.AsOf)
		if err != nil {
			return q, shared.ErrInvalidInput.WithMessage("as_of must be RFC3339 or YYYY-MM-DD")
		}
		q.AsOf = &at
	}
	return q, nil
}

// parseTimeParam accepts a full timestamp or a bare date. A bare date
// means the end of that day in UTC.
func parseTimeParam(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(24*time.Hour - time.Nanosecond), nil
}

// RecordAdjustment godoc
// @ID           recordStockAdjustment
// @Summary      Record an on-hand adjustment
// @Description  Appends a signed whole-unit correction to the area ledger.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        request body stockapp.AdjustmentRequest true "Adjustment"
// @Success      201 {object} APIResponse[stockapp.LedgerEntryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/adjustments [post]
func (h *StockHandler) RecordAdjustment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	var req stockapp.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	entry, err := h.transfers.RecordAdjustment(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, entry)
}

// OnHand godoc
// @ID           getStockOnHand
// @Summary      On-hand quantities per area
// @Description  Reads the same snapshot the planner uses. Only positive quantities are returned.
// @Tags         stock
// @Produce      json
// @Param        area_id    query []string true  "Area IDs" collectionFormat(multi)
// @Param        product_id query []string false "Product IDs" collectionFormat(multi)
// @Param        as_of      query string   false "RFC3339 timestamp or YYYY-MM-DD"
// @Success      200 {object} APIResponse[[]stockapp.OnHandItem]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/on-hand [get]
func (h *StockHandler) OnHand(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	var params onHandParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.BindError(c, err)
		return
	}
	q, err := params.toQuery()
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	items, err := h.transfers.OnHand(c.Request.Context(), tenantID, q)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, items)
}

type ledgerParams struct {
	pageParams
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
}

// Ledger godoc
// @ID           listAreaLedger
// @Summary      Ledger entries of an area
// @Tags         stock
// @Produce      json
// @Param        id         path  string true  "Area ID" format(uuid)
// @Param        product_id query string false "Product ID" format(uuid)
// @Param        page       query int    false "Page number" default(1)
// @Param        page_size  query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]stockapp.LedgerEntryResponse]
// @Security     BearerAuth
// @Router       /areas/{id}/ledger [get]
func (h *StockHandler) Ledger(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	areaID, err := parseID(c, "id")
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	var params ledgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.BindError(c, err)
		return
	}
	f := params.filter()
	f.OrderBy = "occurred_at"
	if params.ProductID != "" {
		f.Filters["product_id"] = uuid.MustParse(params.ProductID)
	}
	page, err := h.transfers.ListLedger(c.Request.Context(), tenantID, areaID, f)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
