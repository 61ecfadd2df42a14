// Package apperrors classifies errors for the HTTP and MCP edges.
package apperrors

import (
	"context"
	"errors"
	"fmt"

	"ftlnomad/internal/content"
	"ftlnomad/internal/starmap"
)

type Type string

const (
	TypeNotFound         Type = "not_found"
	TypeValidation       Type = "validation"
	TypeUnavailable      Type = "unavailable"
	TypeMethodNotAllowed Type = "method_not_allowed"
	TypeRateLimited      Type = "rate_limited"
	TypeInternal         Type = "internal"
)

type AppError struct {
	Type    Type
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

func NotFoundf(format string, args ...any) error {
	return &AppError{Type: TypeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) error {
	return &AppError{Type: TypeValidation, Message: fmt.Sprintf(format, args...)}
}

func WrapValidation(message string, err error) error {
	return &AppError{Type: TypeValidation, Message: message, Err: err}
}

func WrapInternal(message string, err error) error {
	return &AppError{Type: TypeInternal, Message: message, Err: err}
}

func MethodNotAllowed(method string) error {
	return &AppError{Type: TypeMethodNotAllowed, Message: fmt.Sprintf("method %s not allowed", method)}
}

// GetType returns the type of the first AppError in err's chain. Errors from
// the content and starmap packages are classified by their sentinels; anything
// else is internal.
func GetType(err error) Type {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	switch {
	case errors.Is(err, content.ErrNotFound), errors.Is(err, content.ErrInvalidSlug):
		return TypeNotFound
	case errors.Is(err, content.ErrUnknownKind), errors.Is(err, starmap.ErrInvalidViewport):
		return TypeValidation
	case errors.Is(err, content.ErrRootMissing), errors.Is(err, context.DeadlineExceeded):
		return TypeUnavailable
	}
	return TypeInternal
}
