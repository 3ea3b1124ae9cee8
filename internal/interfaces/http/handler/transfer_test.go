package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	stockapp "github.com/stockplan/backend/internal/application/stock"
	"github.com/stockplan/backend/internal/domain/shared"
)

type mockTransferService struct {
	mock.Mock
}

func (m *mockTransferService) transfer(args mock.Arguments) (*stockapp.TransferResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stockapp.TransferResponse), args.Error(1)
}

func (m *mockTransferService) CreateTransfer(ctx context.Context, tenantID uuid.UUID, req stockapp.CreateTransferRequest) (*stockapp.TransferResponse, error) {
	return m.transfer(m.Called(ctx, tenantID, req))
}

func (m *mockTransferService) GetTransfer(ctx context.Context, tenantID, id uuid.UUID) (*stockapp.TransferResponse, error) {
	return m.transfer(m.Called(ctx, tenantID, id))
}

func (m *mockTransferService) ListTransfers(ctx context.Context, tenantID uuid.UUID, f stockapp.TransferListFilter) (shared.Paginated[stockapp.TransferResponse], error) {
	args := m.Called(ctx, tenantID, f)
	return args.Get(0).(shared.Paginated[stockapp.TransferResponse]), args.Error(1)
}

func (m *mockTransferService) AssignTransfer(ctx context.Context, tenantID, id uuid.UUID) (*stockapp.TransferResponse, error) {
	return m.transfer(m.Called(ctx, tenantID, id))
}

func (m *mockTransferService) UnassignTransfer(ctx context.Context, tenantID, id uuid.UUID) (*stockapp.TransferResponse, error) {
	return m.transfer(m.Called(ctx, tenantID, id))
}

func (m *mockTransferService) CancelTransfer(ctx context.Context, tenantID, id uuid.UUID) (*stockapp.TransferResponse, error) {
	return m.transfer(m.Called(ctx, tenantID, id))
}

func (m *mockTransferService) RescheduleTransfer(ctx context.Context, tenantID, id uuid.UUID, req stockapp.RescheduleTransferRequest) (*stockapp.TransferResponse, error) {
	return m.transfer(m.Called(ctx, tenantID, id, req))
}

func (m *mockTransferService) CompleteTransfer(ctx context.Context, tenantID, id uuid.UUID) (*stockapp.TransferResponse, error) {
	return m.transfer(m.Called(ctx, tenantID, id))
}

func (m *mockTransferService) RecordAdjustment(ctx context.Context, tenantID uuid.UUID, req stockapp.AdjustmentRequest) (*stockapp.LedgerEntryResponse, error) {
	args := m.Called(ctx, tenantID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stockapp.LedgerEntryResponse), args.Error(1)
}

func (m *mockTransferService) ListLedger(ctx context.Context, tenantID, areaID uuid.UUID, filter shared.Filter) (shared.Paginated[stockapp.LedgerEntryResponse], error) {
	args := m.Called(ctx, tenantID, areaID, filter)
	return args.Get(0).(shared.Paginated[stockapp.LedgerEntryResponse]), args.Error(1)
}

func (m *mockTransferService) OnHand(ctx context.Context, tenantID uuid.UUID, q stockapp.OnHandQuery) ([]stockapp.OnHandItem, error) {
	args := m.Called(ctx, tenantID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stockapp.OnHandItem), args.Error(1)
}

func newTransferRouter(tenantID uuid.UUID, svc TransferService) *gin.Engine {
	r := newTestRouter(tenantID)
	h := NewTransferHandler(svc)
	g := r.Group("/api/v1/transfers")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("/:id/assign", h.Assign)
	g.POST("/:id/unassign", h.Unassign)
	g.POST("/:id/complete", h.Complete)
	g.POST("/:id/cancel", h.Cancel)
	g.POST("/:id/reschedule", h.Reschedule)
	return r
}

func TestTransferHandler_Create(t *testing.T) {
	tenantID := uuid.New()
	productID, from, to := uuid.New(), uuid.New(), uuid.New()
	svc := new(mockTransferService)
	r := newTransferRouter(tenantID, svc)

	svc.On("CreateTransfer", mock.Anything, tenantID, mock.MatchedBy(func(req stockapp.CreateTransferRequest) bool {
		return req.ProductID == productID && req.Quantity.IntPart() == 5 && req.PlannedDate != nil
	})).Return(&stockapp.TransferResponse{ID: uuid.New(), ProductID: productID, Quantity: 5, State: "DRAFT"}, nil).Once()
	svc.On("CreateTransfer", mock.Anything, tenantID, mock.Anything).
		Return(nil, shared.ErrInvalidQuantity.WithMessage("Quantity must be a whole number")).Once()

	body := `{"product_id":"` + productID.String() + `","quantity":5,"from_location_id":"` + from.String() +
		`","to_location_id":"` + to.String() + `","planned_date":"2026-03-01T00:00:00Z"}`
	w := doJSON(r, http.MethodPost, "/api/v1/transfers", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, int64(5), decodeData[stockapp.TransferResponse](t, w).Quantity)

	body = `{"product_id":"` + productID.String() + `","quantity":"1.5","from_location_id":"` + from.String() +
		`","to_location_id":"` + to.String() + `"}`
	w = doJSON(r, http.MethodPost, "/api/v1/transfers", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, shared.CodeInvalidQuantity, decodeResponse(t, w).Error.Code)
	svc.AssertExpectations(t)
}

func TestTransferHandler_List(t *testing.T) {
	tenantID, productID := uuid.New(), uuid.New()
	svc := new(mockTransferService)
	r := newTransferRouter(tenantID, svc)

	svc.On("ListTransfers", mock.Anything, tenantID, stockapp.TransferListFilter{
		State: "ASSIGNED", ProductID: &productID, Page: 1, PageSize: 50,
	}).Return(shared.Paginated[stockapp.TransferResponse]{
		Items: []stockapp.TransferResponse{{State: "ASSIGNED"}}, Total: 1, Page: 1, PageSize: 50, TotalPages: 1,
	}, nil)

	w := doJSON(r, http.MethodGet, "/api/v1/transfers?state=ASSIGNED&page=1&page_size=50&product_id="+productID.String(), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeData[[]stockapp.TransferResponse](t, w), 1)

	w = doJSON(r, http.MethodGet, "/api/v1/transfers?state=WAITING", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTransferHandler_Lifecycle(t *testing.T) {
	tenantID, id := uuid.New(), uuid.New()
	svc := new(mockTransferService)
	r := newTransferRouter(tenantID, svc)

	svc.On("AssignTransfer", mock.Anything, tenantID, id).Return(&stockapp.TransferResponse{ID: id, State: "ASSIGNED"}, nil)
	svc.On("UnassignTransfer", mock.Anything, tenantID, id).Return(&stockapp.TransferResponse{ID: id, State: "DRAFT"}, nil)
	svc.On("CompleteTransfer", mock.Anything, tenantID, id).
		Return(nil, shared.ErrInvalidState.WithMessage("Only assigned transfers can be completed"))
	svc.On("CancelTransfer", mock.Anything, tenantID, id).Return(&stockapp.TransferResponse{ID: id, State: "CANCELLED"}, nil)

	cases := []struct {
		action string
		status int
		state  string
	}{
		{"assign", http.StatusOK, "ASSIGNED"},
		{"unassign", http.StatusOK, "DRAFT"},
		{"complete", http.StatusUnprocessableEntity, ""},
		{"cancel", http.StatusOK, "CANCELLED"},
	}
	for _, tc := range cases {
		t.Run(tc.action, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/api/v1/transfers/"+id.String()+"/"+tc.action, "")
			require.Equal(t, tc.status, w.Code, w.Body.String())
			if tc.state != "" {
				assert.Equal(t, tc.state, decodeData[stockapp.TransferResponse](t, w).State)
			}
		})
	}
}

func TestTransferHandler_Reschedule(t *testing.T) {
	tenantID, id := uuid.New(), uuid.New()
	svc := new(mockTransferService)
	r := newTransferRouter(tenantID, svc)

	planned := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	svc.On("RescheduleTransfer", mock.Anything, tenantID, id, mock.MatchedBy(func(req stockapp.RescheduleTransferRequest) bool {
		return req.PlannedDate != nil && req.PlannedDate.Equal(planned)
	})).Return(&stockapp.TransferResponse{ID: id, PlannedDate: &planned, State: "DRAFT"}, nil)

	w := doJSON(r, http.MethodPost, "/api/v1/transfers/"+id.String()+"/reschedule", `{"planned_date":"2026-04-02T00:00:00Z"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeData[stockapp.TransferResponse](t, w)
	require.NotNil(t, resp.PlannedDate)
	assert.True(t, planned.Equal(*resp.PlannedDate))

	w = doJSON(r, http.MethodPost, "/api/v1/transfers/bad/reschedule", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
