// Package httputil holds the response and paging helpers shared by the gin
// API and the Lambda API Gateway handlers.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/DavidCuy/p2p-solution-sls-backend/internal/errors"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

type errorMapping struct {
	status  int
	code    string
	message string
	expose  bool
}

var errorMappings = map[error]errorMapping{
	apperrors.ErrNotFound: {status: http.StatusNotFound, code: "not_found",
		message: "The requested resource was not found"},
	apperrors.ErrConflict: {status: http.StatusConflict, code: "conflict",
		message: "A conflict occurred with existing data"},
	apperrors.ErrInvalidInput: {status: http.StatusUnprocessableEntity, code: "invalid_input", expose: true},
	apperrors.ErrUnavailable: {status: http.StatusServiceUnavailable, code: "unavailable",
		message: "A downstream service is unavailable"},
}

// MapError returns the status code and body for err. Only invalid input
// messages reach the client; anything unrecognised is a 500.
func MapError(err error) (int, ErrorResponse) {
	m, ok := errorMappings[apperrors.Kind(err)]
	if !ok {
		return http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		}
	}

	message := m.message
	if m.expose {
		message = err.Error()
	}
	return m.status, ErrorResponse{Error: m.code, Message: message}
}

// WriteError writes the mapped response for err. A nil err writes nothing.
func WriteError(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	statusCode, body := MapError(err)
	if logger != nil {
		logger.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.Int("status_code", statusCode),
			slog.String("error_code", body.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, body)
}

// WriteValidationError writes a 422 for a rejected path or query parameter.
func WriteValidationError(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.String("path", c.FullPath()), slog.Any("error", err))
	}

	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}
