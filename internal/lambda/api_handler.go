package lambda

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	apperrors "github.com/DavidCuy/p2p-solution-sls-backend/internal/errors"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/http/dto"
	transactionUseCase "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/usecase"
)

func decodeProxyRequest(event json.RawMessage) (events.APIGatewayProxyRequest, error) {
	var req events.APIGatewayProxyRequest
	if err := json.Unmarshal(event, &req); err != nil {
		return req, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid proxy request: %v", err)
	}
	return req, nil
}

// NewFindHandler answers an API Gateway proxy request for one transaction,
// identified by the "id" path parameter.
func NewFindHandler(useCase transactionUseCase.TransactionUseCase, logger *slog.Logger) Handler {
	return HandlerFunc(func(ctx context.Context, event json.RawMessage) (any, error) {
		req, err := decodeProxyRequest(event)
		if err != nil {
			return nil, err
		}

		rawID, ok := req.PathParameters["id"]
		if !ok {
			return proxyResponse(http.StatusNotFound, map[string]string{
				"error":   "not_found",
				"message": "id path parameter is required",
			})
		}

		id, err := dto.ParseTransactionID(rawID)
		if err != nil {
			return proxyValidationError(err)
		}

		trx, err := useCase.Get(ctx, id)
		if err != nil {
			logger.Warn("transaction lookup failed", slog.Int64("id", id), slog.Any("error", err))
			return proxyError(err)
		}

		return proxyResponse(http.StatusOK, dto.MapTransactionToResponse(trx))
	})
}

// NewListHandler answers an API Gateway proxy request listing transactions.
func NewListHandler(useCase transactionUseCase.TransactionUseCase, logger *slog.Logger) Handler {
	return HandlerFunc(func(ctx context.Context, event json.RawMessage) (any, error) {
		req, err := decodeProxyRequest(event)
		if err != nil {
			return nil, err
		}

		query := dto.NewListTransactionsQuery(func(key string) string {
			return req.QueryStringParameters[key]
		})
		filter, err := query.ToFilter()
		if err != nil {
			return proxyValidationError(err)
		}

		transactions, err := useCase.List(ctx, filter)
		if err != nil {
			logger.Warn("transaction listing failed", slog.Any("error", err))
			return proxyError(err)
		}

		return proxyResponse(http.StatusOK, dto.MapTransactionsToListResponse(transactions))
	})
}
