package utils

import "errors"

// Common application errors used across services. Callers wrap them with
// fmt.Errorf("%w: ...") and handlers map them with errors.Is.
var (
	ErrValidation   = errors.New("VALIDATION_ERROR")
	ErrNotFound     = errors.New("NOT_FOUND")
	ErrUnauthorized = errors.New("UNAUTHORIZED")
	ErrQueryFailure = errors.New("QUERY_FAILURE")
	ErrPartialOrder = errors.New("PARTIAL_ORDER_FAILURE")
)

// ErrorCode returns the API error code and HTTP status for err.
func ErrorCode(err error) (int, string) {
	switch {
	case errors.Is(err, ErrValidation):
		return 400, "VALIDATION_ERROR"
	case errors.Is(err, ErrUnauthorized):
		return 401, "UNAUTHORIZED"
	case errors.Is(err, ErrNotFound):
		return 404, "NOT_FOUND"
	case errors.Is(err, ErrPartialOrder):
		return 500, "PARTIAL_ORDER_FAILURE"
	case errors.Is(err, ErrQueryFailure):
		return 500, "QUERY_FAILURE"
	default:
		return 500, "INTERNAL_ERROR"
	}
}
