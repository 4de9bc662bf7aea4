package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/lambda"
)

// functionErrorHeader flags a response body that carries a function error.
const functionErrorHeader = "X-Amz-Function-Error"

// invocationError mirrors the Lambda Invoke API body for unhandled function errors.
type invocationError struct {
	ErrorMessage string `json:"errorMessage"`
	ErrorType    string `json:"errorType"`
}

// InvocationHandler runs registered Lambda handlers through the Invoke API shape.
type InvocationHandler struct {
	registry *lambda.Registry
	logger   *slog.Logger
}

// NewInvocationHandler creates an InvocationHandler over registry.
func NewInvocationHandler(registry *lambda.Registry, logger *slog.Logger) *InvocationHandler {
	return &InvocationHandler{registry: registry, logger: logger}
}

// InvokeHandler invokes a function by name with the request body as event.
// POST /2015-03-31/functions/:name/invocations
// Function errors answer 200 with the X-Amz-Function-Error header, as Lambda does.
func (h *InvocationHandler) InvokeHandler(c *gin.Context) {
	name := c.Param("name")

	handler, ok := h.registry.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, invocationError{
			ErrorMessage: fmt.Sprintf("Function not found: %s", name),
			ErrorType:    "ResourceNotFoundException",
		})
		return
	}

	event, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, invocationError{
			ErrorMessage: err.Error(),
			ErrorType:    "InvalidRequestContentException",
		})
		return
	}
	if len(event) == 0 {
		event = []byte("{}")
	}

	resp, err := handler.Invoke(c.Request.Context(), event)
	if err != nil {
		h.logger.Warn("function error",
			slog.String("function", name),
			slog.Any("error", err),
		)
		c.Header(functionErrorHeader, "Unhandled")
		c.JSON(http.StatusOK, invocationError{
			ErrorMessage: err.Error(),
			ErrorType:    fmt.Sprintf("%T", err),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}
