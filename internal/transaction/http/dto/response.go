package dto

import (
	"time"

	transactionDomain "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/domain"
)

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID        int64                    `json:"id"`
	SourceID  int64                    `json:"source_id"`
	DestID    int64                    `json:"dest_id"`
	Amount    transactionDomain.Amount `json:"amount"`
	Status    string                   `json:"status"`
	CreatedAt time.Time                `json:"created_at"`
}

// MapTransactionToResponse converts a domain transaction to an API response.
func MapTransactionToResponse(trx *transactionDomain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:        trx.ID,
		SourceID:  trx.SourceID,
		DestID:    trx.DestID,
		Amount:    trx.Amount,
		Status:    string(trx.Status),
		CreatedAt: trx.CreatedAt,
	}
}

// ListTransactionsResponse represents a paginated list of transactions in API responses.
type ListTransactionsResponse struct {
	Data []TransactionResponse `json:"data"`
}

// MapTransactionsToListResponse converts domain transactions to a list API response.
func MapTransactionsToListResponse(transactions []*transactionDomain.Transaction) ListTransactionsResponse {
	responses := make([]TransactionResponse, 0, len(transactions))
	for _, trx := range transactions {
		responses = append(responses, MapTransactionToResponse(trx))
	}
	return ListTransactionsResponse{Data: responses}
}
