package dto

import (
	"net/http"
	"strings"
)

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "INVALID_JSON"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	// ErrCodeDuplicateRequest is used when an idempotency key was already consumed
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "BUSINESS_RULE"
)

// errorCodeHTTPStatus maps error codes with a fixed status. Codes absent here
// fall through the prefix rules in GetHTTPStatus.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	"UNAUTHORIZED": http.StatusUnauthorized,
	"FORBIDDEN":    http.StatusForbidden,

	// Field-level validation failures from domain constructors
	"INVALID_AMOUNT":         http.StatusBadRequest,
	"INVALID_INPUT":          http.StatusBadRequest,
	"INVALID_PERIOD":         http.StatusBadRequest,
	"INVALID_TAX_RATE":       http.StatusBadRequest,
	"INVALID_PAYMENT_METHOD": http.StatusBadRequest,

	// Recognition
	"RECOGNITION_DISABLED": http.StatusServiceUnavailable,
	"RECOGNITION_TIMEOUT":  http.StatusGatewayTimeout,
	"EMPTY_DOCUMENT":       http.StatusBadRequest,
	"INVALID_DOCUMENT":     http.StatusBadRequest,
	"DOCUMENT_TOO_LARGE":   http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Codes without a fixed mapping are classified by shape: not-found variants
// map to 404, duplicates to 409, malformed-field codes to 400, and every
// other business rule violation to 422.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}

	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasPrefix(code, "DUPLICATE_"), strings.HasSuffix(code, "_EXISTS"):
		return http.StatusConflict
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "EXCEEDS_"),
		strings.HasPrefix(code, "HAS_"),
		strings.HasPrefix(code, "NO_"),
		strings.HasPrefix(code, "NOT_"),
		strings.HasPrefix(code, "NOTHING_"),
		strings.HasPrefix(code, "ALREADY_"),
		strings.HasPrefix(code, "CANNOT_"),
		strings.HasSuffix(code, "_NOT_MATCHED"),
		strings.HasSuffix(code, "_MISMATCH"),
		strings.HasSuffix(code, "_BLOCKED"),
		strings.HasSuffix(code, "_FAILED"):
		return http.StatusUnprocessableEntity
	}

	return http.StatusInternalServerError
}
