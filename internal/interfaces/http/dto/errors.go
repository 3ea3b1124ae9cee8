package dto

import (
	"net/http"
	"strings"

	"github.com/stockplan/backend/internal/domain/planning"
	"github.com/stockplan/backend/internal/domain/shared"
)

// Transport error codes. Domain errors keep their own codes.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = shared.CodeNotFound
	ErrCodeConflict        = "CONFLICT"
	ErrCodeTimeout         = "REQUEST_TIMEOUT"
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	ErrCodeUnavailable     = "SERVICE_UNAVAILABLE"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeTimeout:         http.StatusGatewayTimeout,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	shared.CodeAlreadyExists:   http.StatusConflict,
	shared.CodeInvalidState:    http.StatusUnprocessableEntity,
	shared.CodeInvalidQuantity: http.StatusUnprocessableEntity,
	shared.CodeMissingScope:    http.StatusBadRequest,
	"ALREADY_ACTIVE":           http.StatusUnprocessableEntity,
	"ALREADY_INACTIVE":         http.StatusUnprocessableEntity,
	"EXPORT_UNAVAILABLE":       http.StatusServiceUnavailable,

	planning.CodeMultiplePlans:       http.StatusConflict,
	planning.CodeNoBaseline:          http.StatusConflict,
	planning.CodePlanNotRecomputable: http.StatusConflict,
	planning.CodePlanLocked:          http.StatusConflict,
	planning.CodeInvalidPlanLine:     http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code. Unlisted
// INVALID_* codes are input errors; anything else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// errorCodeAliases folds generic domain codes into their transport names.
var errorCodeAliases = map[string]string{
	shared.CodeInvalidInput: ErrCodeValidation,
	shared.CodeConflict:     ErrCodeConflict,
}

// NormalizeErrorCode returns the code clients see for a domain code
func NormalizeErrorCode(code string) string {
	if alias, ok := errorCodeAliases[code]; ok {
		return alias
	}
	return code
}
