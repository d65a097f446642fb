package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is allows errors.Is matching against the sentinel errors below by code
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors. These double as errors.Is targets: a DomainError
// with the same code matches the sentinel regardless of message.
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrZoneNotFound        = NewDomainError("ZONE_NOT_FOUND", "Zone not found")
	ErrConflict            = NewDomainError("CONFLICT", "Resource conflict")
	ErrInvalidRequest      = NewDomainError("INVALID_REQUEST", "Invalid request")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrWarehouseFull       = NewDomainError("WAREHOUSE_FULL", "Zone capacity exceeded")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// NewNotFoundError creates a NOT_FOUND error for a named resource
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError("NOT_FOUND", fmt.Sprintf("%s not found", resource))
}

// NewZoneNotFoundError creates a ZONE_NOT_FOUND error
func NewZoneNotFoundError(zoneID string) *DomainError {
	return NewDomainError("ZONE_NOT_FOUND", fmt.Sprintf("zone %s not found", zoneID))
}

// NewConflictError creates a CONFLICT error
func NewConflictError(message string) *DomainError {
	return NewDomainError("CONFLICT", message)
}

// NewInvalidRequestError creates an INVALID_REQUEST error
func NewInvalidRequestError(message string) *DomainError {
	return NewDomainError("INVALID_REQUEST", message)
}

// NewInsufficientStockError creates an INSUFFICIENT_STOCK error
func NewInsufficientStockError(message string) *DomainError {
	return NewDomainError("INSUFFICIENT_STOCK", message)
}

// NewWarehouseFullError creates a WAREHOUSE_FULL error
func NewWarehouseFullError(message string) *DomainError {
	return NewDomainError("WAREHOUSE_FULL", message)
}
