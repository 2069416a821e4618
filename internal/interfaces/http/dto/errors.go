package dto

import (
	"net/http"
	"strings"
)

// Error codes returned by the API. Domain error codes map onto these
// through ErrorCodeHTTPStatus; unknown codes fall back to 500.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeNotFound     = "NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes. The keys
// cover both the codes the handlers emit directly and the codes domain
// errors carry.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeNotFound:     http.StatusNotFound,

	"ALREADY_EXISTS":       http.StatusConflict,
	"ALREADY_CONVERTED":    http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"INVALID_STATUS":       http.StatusUnprocessableEntity,
	"OPERATION_FAILED":     http.StatusBadGateway,
	"TENANT_REQUIRED":      http.StatusUnauthorized,
}

// GetHTTPStatus returns the HTTP status code for an error code. The
// validation codes all start with INVALID_ and map to 400 unless
// explicitly listed above; anything else unknown maps to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
