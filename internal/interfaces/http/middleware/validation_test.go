package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockplan/backend/internal/interfaces/http/dto"
)

type recalcInput struct {
	PlanIDs []string `json:"plan_ids" binding:"required,min=1,dive,uuid"`
}

type transferInput struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"gt=0"`
	State     string `json:"state" binding:"omitempty,oneof=DRAFT ASSIGNED"`
	Reference string `json:"reference" binding:"max=10"`
	Internal  string `json:"-"`
}

type lineQuery struct {
	Kind   string `form:"kind" binding:"omitempty,oneof=valid late"`
	MaxLag int    `form:"max_lag" binding:"lte=365"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/recalculate", func(c *gin.Context) {
		var in recalcInput
		if err := c.ShouldBindJSON(&in); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.POST("/transfers", func(c *gin.Context) {
		var in transferInput
		if err := c.ShouldBindJSON(&in); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/lines", func(c *gin.Context) {
		var q lineQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

func decodeDetails(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

	out := make(map[string]string, len(resp.Error.Details))
	for _, d := range resp.Error.Details {
		out[d.Field] = d.Message
	}
	return out
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError_Fields(t *testing.T) {
	r := validationRouter()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   map[string]string
	}{
		{
			name: "missing list",
			path: "/recalculate", body: `{}`,
			want: map[string]string{"plan_ids": "This field is required"},
		},
		{
			name: "empty list",
			path: "/recalculate", body: `{"plan_ids": []}`,
			want: map[string]string{"plan_ids": "Must contain at least 1 items"},
		},
		{
			name: "bad element",
			path: "/recalculate", body: `{"plan_ids": ["7b0e9f0c-3c56-4d0e-9a51-9d0f6f2f6a11", "nope"]}`,
			want: map[string]string{"plan_ids[1]": "Invalid UUID format"},
		},
		{
			name: "transfer",
			path: "/transfers",
			body: `{"product_id": "x", "quantity": 0, "state": "DONE", "reference": "PO-2026-000123"}`,
			want: map[string]string{
				"product_id": "Invalid UUID format",
				"quantity":   "Must be greater than 0",
				"state":      "Must be one of: DRAFT ASSIGNED",
				"reference":  "Must be at most 10 characters",
			},
		},
		{
			name:   "query names come from the form tag",
			method: http.MethodGet,
			path:   "/lines?kind=excess&max_lag=400",
			want: map[string]string{
				"kind":    "Must be one of: valid late",
				"max_lag": "Must be less than or equal to 365",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodPost
			}
			req := httptest.NewRequest(method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, decodeDetails(t, w))
		})
	}
}

func TestHandleValidationError_ValidInput(t *testing.T) {
	r := validationRouter()

	req := httptest.NewRequest(http.MethodPost, "/transfers",
		strings.NewReader(`{"product_id": "7b0e9f0c-3c56-4d0e-9a51-9d0f6f2f6a11", "quantity": 3}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	r := validationRouter()

	req := httptest.NewRequest(http.MethodPost, "/recalculate", strings.NewReader(`{"plan_ids": "x"`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, decodeDetails(t, w))
	assert.Contains(t, w.Body.String(), "Malformed request body")
}

func TestFormatValidationErrors_RequestID(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-42")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-42", resp.Error.RequestID)
	assert.Empty(t, resp.Error.Details)
}
