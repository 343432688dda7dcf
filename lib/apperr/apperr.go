package apperr

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

type Code string

const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeForbidden         Code = "FORBIDDEN"
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeInvalidField      Code = "INVALID_FIELD"
)

// Error is a typed, caller-visible application error. The HTTP layer
// maps Code to a status; anything that is not an *Error surfaces as 500.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NotFound deliberately covers both "entity absent" and "caller lacks
// visibility" so existence never leaks to unauthorized callers.
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

func InvalidTransition(message string) *Error {
	return New(CodeInvalidTransition, message)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, message)
}

func Validation(message string) *Error {
	return New(CodeValidation, message)
}

func InvalidField(message string) *Error {
	return New(CodeInvalidField, message)
}

func AsAppError(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsNotFound(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == CodeNotFound
}

func HTTPStatus(err error) int {
	appErr, ok := AsAppError(err)
	if !ok {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeInvalidTransition, CodeValidation, CodeInvalidField:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
