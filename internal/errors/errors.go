package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering an email already on file.
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalidCredentials is returned for unknown email or wrong password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrCodeInvalid is returned when no pending code exists or the code mismatches.
	ErrCodeInvalid = errors.New("invalid verification code")
	// ErrCodeExpired is returned when a matching code is past its expiration.
	ErrCodeExpired = errors.New("verification code expired")
	// ErrEmailSendFailed is returned when the email transport fails.
	ErrEmailSendFailed = errors.New("failed to send verification email")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Duplicate email maps to
// 400 rather than 409; invalid and expired codes are both client errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrCodeInvalid):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "CODE_INVALID")
	case errors.Is(err, ErrCodeExpired):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "CODE_EXPIRED")
	case errors.Is(err, ErrEmailSendFailed):
		return NewHTTPError(http.StatusInternalServerError, err.Error(), "EMAIL_SEND_FAILED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
