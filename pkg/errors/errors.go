package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrInvalidToken            = errors.New("invalid or expired token")
	ErrTokenRevoked            = errors.New("token has been revoked")
	ErrUnauthorized            = errors.New("unauthorized access")
	ErrInsufficientPermissions = errors.New("insufficient permissions")

	ErrInvalidInput = errors.New("invalid input data")
	ErrWeakPassword = errors.New("password does not meet requirements")
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeConflict          = "CONFLICT"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidTransition = "INVALID_TRANSITION"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func Validation(message string) *AppError {
	return NewAppError(CodeValidation, message, nil)
}

func Forbidden(message string) *AppError {
	return NewAppError(CodeForbidden, message, ErrInsufficientPermissions)
}

// CodeOf returns the AppError code carried anywhere in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
