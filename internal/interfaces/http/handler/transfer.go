package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	stockapp "github.com/stockplan/backend/internal/application/stock"
	"github.com/stockplan/backend/internal/domain/shared"
)

// TransferService is the application surface used by TransferHandler and
// StockHandler.
type TransferService interface {
	CreateTransfer(ctx context.Context, tenantID uuid.UUID, req stockapp.CreateTransferRequest) (*stockapp.TransferResponse, error)
	GetTransfer(ctx context.Context, tenantID, id uuid.UUID) (*stockapp.TransferResponse, error)
	ListTransfers(ctx context.Context, tenantID uuid.UUID, f stockapp.TransferListFilter) (shared.Paginated[stockapp.TransferResponse], error)
	AssignTransfer(ctx context.Context, tenantID, id uuid.UUID) (*stockapp.TransferResponse, error)
	UnassignTransfer(ctx context.Context, tenantID, id uuid.UUID) (*stockapp.TransferResponse, error)
	CancelTransfer(ctx context.Context, tenantID, id uuid.UUID) (*stockapp.TransferResponse, error)
	RescheduleTransfer(ctx context.Context, tenantID, id uuid.UUID, req stockapp.RescheduleTransferRequest) (*stockapp.TransferResponse, error)
	CompleteTransfer(ctx context.Context, tenantID, id uuid.UUID) (*stockapp.TransferResponse, error)
	RecordAdjustment(ctx context.Context, tenantID uuid.UUID, req stockapp.AdjustmentRequest) (*stockapp.LedgerEntryResponse, error)
	ListLedger(ctx context.Context, tenantID, areaID uuid.UUID, filter shared.Filter) (shared.Paginated[stockapp.LedgerEntryResponse], error)
	OnHand(ctx context.Context, tenantID uuid.UUID, q stockapp.OnHandQuery) ([]stockapp.OnHandItem, error)
}

var _ TransferService = (*stockapp.TransferService)(nil)

// TransferHandler handles transfer requests and their lifecycle
type TransferHandler struct {
	BaseHandler
	transfers TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transfers TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

type transferListParams struct {
	pageParams
	State     string `form:"state" binding:"omitempty,oneof=DRAFT ASSIGNED DONE CANCELLED"`
	ProductID string `form:"product_id" binding:"omitempty,uuid"`
	AreaID    string `form:"area_id" binding:"omitempty,uuid"`
}

func (p transferListParams) toFilter() stockapp.TransferListFilter {
	f := stockapp.TransferListFilter{State: p.State, Page: p.Page, PageSize: p.PageSize}
	if p.ProductID != "" {
		id := uuid.MustParse(p.ProductID)
		f.ProductID = &id
	}
	if p.AreaID != "" {
		id := uuid.MustParse(p.AreaID)
		f.AreaID = &id
	}
	return f
}

// Create godoc
// @ID           createTransfer
// @Summary      Create a transfer request
// @Description  Quantity must be a positive whole number. Area ids are derived from the locations.
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        request body stockapp.CreateTransferRequest true "Transfer"
// @Success      201 {object} APIResponse[stockapp.TransferResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transfers [post]
func (h *TransferHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	var req stockapp.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	tr, err := h.transfers.CreateTransfer(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, tr)
}

// List godoc
// @ID           listTransfers
// @Summary      List transfer requests
// @Tags         transfers
// @Produce      json
// @Param        state      query string false "State" Enums(DRAFT, ASSIGNED, DONE, CANCELLED)
// @Param        product_id query string false "Product ID" format(uuid)
// @Param        area_id    query string false "Source or destination area" format(uuid)
// @Param        page       query int    false "Page number" default(1)
// @Param        page_size  query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]stockapp.TransferResponse]
// @Security     BearerAuth
// @Router       /transfers [get]
func (h *TransferHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	var params transferListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.transfers.ListTransfers(c.Request.Context(), tenantID, params.toFilter())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @ID           getTransfer
// @Summary      Get a transfer request
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Success      200 {object} APIResponse[stockapp.TransferResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transfers/{id} [get]
func (h *TransferHandler) Get(c *gin.Context) {
	h.withTransfer(c, h.transfers.GetTransfer)
}

// Assign godoc
// @ID           assignTransfer
// @Summary      Assign a transfer
// @Description  Sets the effective date. Assigned transfers are allocated before drafts dated later.
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Success      200 {object} APIResponse[stockapp.TransferResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transfers/{id}/assign [post]
func (h *TransferHandler) Assign(c *gin.Context) {
	h.withTransfer(c, h.transfers.AssignTransfer)
}

// Unassign godoc
// @ID           unassignTransfer
// @Summary      Return a transfer to draft
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Success      200 {object} APIResponse[stockapp.TransferResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transfers/{id}/unassign [post]
func (h *TransferHandler) Unassign(c *gin.Context) {
	h.withTransfer(c, h.transfers.UnassignTransfer)
}

// Complete godoc
// @ID           completeTransfer
// @Summary      Complete a transfer
// @Description  Books the move in the stock ledger and removes the request from planning.
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Success      200 {object} APIResponse[stockapp.TransferResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transfers/{id}/complete [post]
func (h *TransferHandler) Complete(c *gin.Context) {
	h.withTransfer(c, h.transfers.CompleteTransfer)
}

// Cancel godoc
// @ID           cancelTransfer
// @Summary      Cancel a transfer
// @Tags         transfers
// @Produce      json
// @Param        id path string true "Transfer ID" format(uuid)
// @Success      200 {object} APIResponse[stockapp.TransferResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *gin.Context) {
	h.withTransfer(c, h.transfers.CancelTransfer)
}

// Reschedule godoc
// @ID           rescheduleTransfer
// @Summary      Move a transfer's planned date
// @Tags         transfers
// @Accept       json
// @Produce      json
// @Param        id      path string true "Transfer ID" format(uuid)
// @Param        request body stockapp.RescheduleTransferRequest true "Planned date, null clears it"
// @Success      200 {object} APIResponse[stockapp.TransferResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /transfers/{id}/reschedule [post]
func (h *TransferHandler) Reschedule(c *gin.Context) {
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
	var req stockapp.RescheduleTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	tr, err := h.transfers.RescheduleTransfer(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, tr)
}

func (h *TransferHandler) withTransfer(c *gin.Context, fn func(context.Context, uuid.UUID, uuid.UUID) (*stockapp.TransferResponse, error)) {
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
	tr, err := fn(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, tr)
}
