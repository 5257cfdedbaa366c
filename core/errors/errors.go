package errors

import "fmt"

type ErrorCode string

const (
	// Generic codes
	ErrInternalServer             ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrInvalidInput               ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData         ErrorCode = "INVALID_REQUEST_DATA"
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrForbidden                  ErrorCode = "FORBIDDEN"
	ErrNotFound                   ErrorCode = "NOT_FOUND"
	ErrAlreadyExists              ErrorCode = "ALREADY_EXISTS"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"

	// Booking & settlement codes
	ErrSlotUnavailable           ErrorCode = "SLOT_UNAVAILABLE"
	ErrInvalidInterval           ErrorCode = "INVALID_INTERVAL"
	ErrInvalidTransition         ErrorCode = "INVALID_TRANSITION"
	ErrPaymentVerificationFailed ErrorCode = "PAYMENT_VERIFICATION_FAILED"
	ErrDuplicateCallback         ErrorCode = "DUPLICATE_CALLBACK"
	ErrRefreshFailed             ErrorCode = "REFRESH_FAILED"
	ErrNotConnected              ErrorCode = "NOT_CONNECTED"
	ErrCalendarSync              ErrorCode = "CALENDAR_SYNC_ERROR"
)

// AppError is the typed error carried from services to controllers.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

func NewAppError(code ErrorCode, message string, details any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is lets errors.Is match AppErrors by code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
