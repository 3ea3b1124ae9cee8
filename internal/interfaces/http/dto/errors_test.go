package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stockplan/backend/internal/domain/planning"
	"github.com/stockplan/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{shared.CodeInvalidQuantity, http.StatusUnprocessableEntity},
		{shared.CodeMissingScope, http.StatusBadRequest},
		{shared.CodeInvalidState, http.StatusUnprocessableEntity},
		{planning.CodeMultiplePlans, http.StatusConflict},
		{planning.CodeNoBaseline, http.StatusConflict},
		{planning.CodePlanNotRecomputable, http.StatusConflict},
		{planning.CodePlanLocked, http.StatusConflict},
		{"EXPORT_UNAVAILABLE", http.StatusServiceUnavailable},
		{"INVALID_LOCATION", http.StatusBadRequest},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeValidation, NormalizeErrorCode(shared.CodeInvalidInput))
	assert.Equal(t, ErrCodeConflict, NormalizeErrorCode(shared.CodeConflict))
	assert.Equal(t, planning.CodeNoBaseline, NormalizeErrorCode(planning.CodeNoBaseline))
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 41, 2, 20)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	resp = NewSuccessResponseWithMeta(nil, 5, 1, 0)
	assert.Equal(t, 0, resp.Meta.TotalPages)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "plan_ids", Message: "is required"},
	})

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"error": {
			"code": "VALIDATION_ERROR",
			"message": "Request validation failed",
			"request_id": "req-1",
			"details": [{"field": "plan_ids", "message": "is required"}]
		}
	}`, string(data))
}
