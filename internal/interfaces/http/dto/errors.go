package dto

import (
	"net/http"
	"strings"
)

// Error codes. Format: ERR_<DESCRIPTION>
const (
	ErrCodeInternal          = "ERR_INTERNAL"
	ErrCodeValidation        = "ERR_VALIDATION"
	ErrCodeBadRequest        = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput      = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON       = "ERR_INVALID_JSON"
	ErrCodeUnauthorized      = "ERR_UNAUTHORIZED"
	ErrCodeForbidden         = "ERR_FORBIDDEN"
	ErrCodeTokenExpired      = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid      = "ERR_TOKEN_INVALID"
	ErrCodeNotFound          = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists     = "ERR_ALREADY_EXISTS"
	ErrCodeConflict          = "ERR_CONFLICT"
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodeRateLimited       = "ERR_RATE_LIMITED"
	ErrCodePayloadTooLarge   = "ERR_PAYLOAD_TOO_LARGE"
	ErrCodeUnavailable       = "ERR_SERVICE_UNAVAILABLE"
	ErrCodeBadGateway        = "ERR_BAD_GATEWAY"
	ErrCodePasswordHash      = "ERR_PASSWORD_HASH_ERROR"

	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeAccountDisabled    = "ERR_ACCOUNT_DISABLED"
	ErrCodePartnerSuspended   = "ERR_PARTNER_SUSPENDED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:          http.StatusInternalServerError,
	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodeBadRequest:        http.StatusBadRequest,
	ErrCodeInvalidInput:      http.StatusBadRequest,
	ErrCodeInvalidJSON:       http.StatusBadRequest,
	ErrCodeUnauthorized:      http.StatusUnauthorized,
	ErrCodeTokenExpired:      http.StatusUnauthorized,
	ErrCodeTokenInvalid:      http.StatusUnauthorized,
	ErrCodeForbidden:         http.StatusForbidden,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeAlreadyExists:     http.StatusConflict,
	ErrCodeConflict:          http.StatusConflict,
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeRateLimited:       http.StatusTooManyRequests,
	ErrCodePayloadTooLarge:   http.StatusRequestEntityTooLarge,
	ErrCodeUnavailable:       http.StatusServiceUnavailable,
	ErrCodeBadGateway:        http.StatusBadGateway,
	ErrCodePasswordHash:      http.StatusInternalServerError,

	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountDisabled:    http.StatusForbidden,
	ErrCodePartnerSuspended:   http.StatusForbidden,
}

// GetHTTPStatus returns the HTTP status for an error code.
// Unmapped ERR_INVALID_* and ERR_EMPTY_* codes are input errors (400); any
// other unmapped code is a business rule violation (422).
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "ERR_INVALID_") || strings.HasPrefix(code, "ERR_EMPTY_") {
		return http.StatusBadRequest
	}
	if !strings.HasPrefix(code, "ERR_") {
		return http.StatusInternalServerError
	}
	return http.StatusUnprocessableEntity
}

// NormalizeErrorCode prefixes domain codes with ERR_
func NormalizeErrorCode(code string) string {
	if code == "" {
		return ErrCodeInternal
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}
