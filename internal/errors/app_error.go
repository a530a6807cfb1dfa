package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string
	Message    string
	Detail     string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

const (
	ErrCodeValidation                 = "VALIDATION_ERROR"
	ErrCodeBadRequest                 = "BAD_REQUEST"
	ErrCodeNotFound                   = "NOT_FOUND"
	ErrCodeUnauthorized               = "UNAUTHORIZED"
	ErrCodeInternal                   = "INTERNAL_ERROR"
	ErrCodeDatabaseError              = "DATABASE_ERROR"
	ErrCodeThirdPartyError            = "THIRD_PARTY_ERROR"
	ErrCodePaymentCapturedOrderFailed = "PAYMENT_CAPTURED_ORDER_FAILED"
)

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, http.StatusNotFound)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func DatabaseError(message string) *AppError {
	return NewAppError(ErrCodeDatabaseError, message, http.StatusInternalServerError)
}

func ThirdPartyError(message string) *AppError {
	return NewAppError(ErrCodeThirdPartyError, message, http.StatusBadGateway)
}

// PaymentCapturedOrderFailedError reports that money was taken but the order
// record was not written. It must never be retried as a plain failure.
func PaymentCapturedOrderFailedError(transactionID string) *AppError {
	return NewAppError(
		ErrCodePaymentCapturedOrderFailed,
		"Payment succeeded but order registration failed, please contact support",
		http.StatusBadGateway,
	).WithDetail("payment reference: " + transactionID)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}

// field validation error.
func AddValidationError(field, reason string) *AppError {
	return ValidationError(fmt.Sprintf("Invalid field '%s': %s", field, reason))
}
