// Package http provides HTTP handlers for reading P2P transactions.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/httputil"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/http/dto"
	transactionUseCase "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/usecase"
)

// TransactionHandler handles HTTP requests for transaction lookups.
type TransactionHandler struct {
	transactionUseCase transactionUseCase.TransactionUseCase
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler with required dependencies.
func NewTransactionHandler(
	transactionUseCase transactionUseCase.TransactionUseCase,
	logger *slog.Logger,
) *TransactionHandler {
	return &TransactionHandler{
		transactionUseCase: transactionUseCase,
		logger:             logger,
	}
}

// GetHandler retrieves a transaction by id.
// GET /v1/p2p-transactions/:id
func (h *TransactionHandler) GetHandler(c *gin.Context) {
	id, err := dto.ParseTransactionID(c.Param("id"))
	if err != nil {
		httputil.WriteValidationError(c, err, h.logger)
		return
	}

	trx, err := h.transactionUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.WriteError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTransactionToResponse(trx))
}

// ListHandler retrieves transactions matching the query filters.
// GET /v1/p2p-transactions?status=done&source_id=1&dest_id=2&offset=0&limit=50
func (h *TransactionHandler) ListHandler(c *gin.Context) {
	query := dto.NewListTransactionsQuery(c.Query)

	filter, err := query.ToFilter()
	if err != nil {
		httputil.WriteValidationError(c, err, h.logger)
		return
	}

	transactions, err := h.transactionUseCase.List(c.Request.Context(), filter)
	if err != nil {
		httputil.WriteError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTransactionsToListResponse(transactions))
}
