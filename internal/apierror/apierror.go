package apierror

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

type ErrorCode string

const (
	// Validation codes. Detected synchronously before any network call.
	ErrInsufficientFunds   ErrorCode = "INSUFFICIENT_FUNDS"
	ErrSameAccountTransfer ErrorCode = "SAME_ACCOUNT_TRANSFER"
	ErrNonPositiveAmount   ErrorCode = "NON_POSITIVE_AMOUNT"
	ErrDescriptionTooLong  ErrorCode = "DESCRIPTION_TOO_LONG"
	ErrInvalidInput        ErrorCode = "INVALID_INPUT"

	// Remote codes. The server declined a structurally valid request, or the
	// request never completed.
	ErrNotFound        ErrorCode = "NOT_FOUND"
	ErrRemoteRejection ErrorCode = "REMOTE_REJECTION"
	ErrNetworkFailure  ErrorCode = "NETWORK_FAILURE"
	ErrInternalServer  ErrorCode = "INTERNAL_SERVER_ERROR"
)

type APIError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	logrus.Error(details)
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewValidationError builds a validation error without logging. Validation
// failures are expected values, not system faults.
func NewValidationError(code ErrorCode, message string) APIError {
	return APIError{
		Code:    code,
		Message: message,
	}
}

// CodeOf extracts the error code from an error, or empty when the error is
// not an APIError.
func CodeOf(err error) ErrorCode {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// IsValidation reports whether an error was detected locally, before any
// network call was attempted.
func IsValidation(err error) bool {
	switch CodeOf(err) {
	case ErrInsufficientFunds, ErrSameAccountTransfer, ErrNonPositiveAmount, ErrDescriptionTooLong, ErrInvalidInput:
		return true
	}
	return false
}

// IsNetworkFailure reports whether an error represents a timeout or
// connectivity loss. Callers treat these the same as a remote rejection for
// reconciliation purposes, but may suggest a retry to the user.
func IsNetworkFailure(err error) bool {
	return CodeOf(err) == ErrNetworkFailure
}
