package httputil

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	IsSuccess bool                `json:"isSuccess"`
	Message   string              `json:"message,omitempty"`
	Data      interface{}         `json:"data,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// statusByCode is the single mapping from error kinds to HTTP statuses.
var statusByCode = map[errors.ErrorCode]int{
	errors.ErrValidation:   http.StatusUnprocessableEntity,
	errors.ErrNotFound:     http.StatusNotFound,
	errors.ErrConflict:     http.StatusConflict,
	errors.ErrBadRequest:   http.StatusBadRequest,
	errors.ErrUnauthorized: http.StatusUnauthorized,
	errors.ErrForbidden:    http.StatusForbidden,
	errors.ErrTooLarge:     http.StatusRequestEntityTooLarge,
	errors.ErrStorage:      http.StatusInternalServerError,
	errors.ErrInternal:     http.StatusInternalServerError,
}

var exposeErrors atomic.Bool

// SetExposeErrors controls whether raw diagnostics are sent in the error field.
func SetExposeErrors(expose bool) {
	exposeErrors.Store(expose)
}

// StatusCode returns the HTTP status for err.
func StatusCode(err error) int {
	if appErr, ok := errors.As(err); ok {
		if status, ok := statusByCode[appErr.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

// RespondWithSuccess sends a 200 response
func RespondWithSuccess(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		IsSuccess: true,
		Message:   message,
		Data:      data,
	})
}

// RespondWithCreated sends a 201 response
func RespondWithCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		IsSuccess: true,
		Message:   message,
		Data:      data,
	})
}

// RespondWithError sends an error response. For server side failures the
// fallback message is used instead of the error's own text.
func RespondWithError(c *gin.Context, err error, fallback string) {
	status := StatusCode(err)

	resp := Response{IsSuccess: false}
	if appErr, ok := errors.As(err); ok && status < http.StatusInternalServerError {
		resp.Message = appErr.Message
		resp.Errors = appErr.Fields
	} else {
		resp.Message = fallback
		if resp.Message == "" {
			resp.Message = "Internal server error"
		}
		if err != nil {
			_ = c.Error(err)
		}
	}

	if exposeErrors.Load() && err != nil {
		resp.Error = err.Error()
	}

	c.AbortWithStatusJSON(status, resp)
}
