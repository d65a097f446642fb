package dto

import "net/http"

// Error codes surfaced by the API. The domain layer produces the same
// codes in DomainError; infra-only codes are defined here.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL"
	// ErrCodeBadRequest is used for malformed requests (bad JSON, bad params)
	ErrCodeBadRequest = "INVALID_REQUEST"

	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeZoneNotFound is used when a referenced zone does not exist
	ErrCodeZoneNotFound = "ZONE_NOT_FOUND"
	// ErrCodeConflict is used for uniqueness and duplicate-processing conflicts
	ErrCodeConflict = "CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	// ErrCodeInsufficientStock is used when available stock cannot cover a decrease
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	// ErrCodeWarehouseFull is used when a zone capacity bound would be exceeded
	ErrCodeWarehouseFull = "WAREHOUSE_FULL"
	// ErrCodeInvalidState is used when an operation is invalid for the current state
	ErrCodeInvalidState = "INVALID_STATE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeZoneNotFound: http.StatusNotFound,

	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeWarehouseFull:       http.StatusConflict,

	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes fall back to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
