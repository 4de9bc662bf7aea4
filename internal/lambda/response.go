package lambda

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/httputil"
)

// APIResponse is the status code plus body envelope returned by the queue and
// event handlers.
type APIResponse struct {
	StatusCode int `json:"statusCode"`
	Body       any `json:"body"`
}

// NewAPIResponse builds an APIResponse.
func NewAPIResponse(body any, statusCode int) APIResponse {
	return APIResponse{StatusCode: statusCode, Body: body}
}

// ErrorResult is returned instead of an APIResponse when the event itself is malformed.
type ErrorResult struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// proxyResponse encodes body as an API Gateway proxy response.
func proxyResponse(statusCode int, body any) (events.APIGatewayProxyResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}, nil
}

// proxyError maps err to an API Gateway proxy response.
func proxyError(err error) (events.APIGatewayProxyResponse, error) {
	statusCode, body := httputil.MapError(err)
	return proxyResponse(statusCode, body)
}

// proxyValidationError answers 422 with the validation message.
func proxyValidationError(err error) (events.APIGatewayProxyResponse, error) {
	return proxyResponse(http.StatusUnprocessableEntity, httputil.ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}
