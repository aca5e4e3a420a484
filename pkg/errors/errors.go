package errors

import (
	"fmt"
	"sort"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode           `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
	Err     error               `json:"-"`
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

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrValidation
	ErrConflict
	ErrStorage
	ErrTooLarge
)

// Error constructors
func NewNotFound(message string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: message,
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// NewValidation builds a validation error whose message summarises the
// first field error, e.g. "email is a required field (and 2 more errors)".
func NewValidation(fields map[string][]string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: summarize(fields),
		Fields:  fields,
	}
}

// NewConflict reports a uniqueness violation on a single field.
func NewConflict(field, message string, err error) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
		Fields:  map[string][]string{field: {message}},
		Err:     err,
	}
}

// NewTooLarge reports a request body over the configured limit.
func NewTooLarge(message string, err error) *AppError {
	return &AppError{
		Code:    ErrTooLarge,
		Message: message,
		Err:     err,
	}
}

// NewStorage wraps a record store or blob store failure. The message is
// generic; callers supply the user facing text when responding.
func NewStorage(err error) *AppError {
	return &AppError{
		Code:    ErrStorage,
		Message: "storage failure",
		Err:     err,
	}
}

// Common errors
func NotFound(message string, err error) *AppError {
	return NewNotFound(message, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Validation(fields map[string][]string) *AppError {
	return NewValidation(fields)
}

func Conflict(field, message string, err error) *AppError {
	return NewConflict(field, message, err)
}

func TooLarge(message string, err error) *AppError {
	return NewTooLarge(message, err)
}

func Storage(err error) *AppError {
	return NewStorage(err)
}

// As extracts an *AppError from err.
func As(err error) (*AppError, bool) {
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			return appErr, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

func summarize(fields map[string][]string) string {
	keys := make([]string, 0, len(fields))
	total := 0
	for k, msgs := range fields {
		keys = append(keys, k)
		total += len(msgs)
	}
	if total == 0 {
		return "The given data was invalid."
	}
	sort.Strings(keys)

	var first string
	for _, k := range keys {
		if len(fields[k]) > 0 {
			first = fields[k][0]
			break
		}
	}

	switch rest := total - 1; {
	case rest == 0:
		return first
	case rest == 1:
		return fmt.Sprintf("%s (and 1 more error)", first)
	default:
		return fmt.Sprintf("%s (and %d more errors)", first, rest)
	}
}
