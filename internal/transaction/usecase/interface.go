// Package usecase orchestrates the settlement of P2P transactions: lookup,
// status decision, persistence and event emission.
package usecase

import (
	"context"
	"io"

	"github.com/google/uuid"

	transactionDomain "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/domain"
)

// TransactionRepository defines the persistence operations used by the use cases.
type TransactionRepository interface {
	GetByID(ctx context.Context, id int64) (*transactionDomain.Transaction, error)
	Update(ctx context.Context, trx *transactionDomain.Transaction) error
	Create(ctx context.Context, trx *transactionDomain.Transaction) error
	List(ctx context.Context, filter transactionDomain.ListFilter) ([]*transactionDomain.Transaction, error)
}

// IDGenerator produces correlation identifiers.
type IDGenerator func() (uuid.UUID, error)

// TransactionUseCase defines the transaction business operations.
type TransactionUseCase interface {
	// Process settles every payload in order. The first failing payload aborts
	// the batch and its error is returned.
	Process(
		ctx context.Context,
		payloads []transactionDomain.Payload,
	) ([]transactionDomain.ProcessedTransaction, error)
	Get(ctx context.Context, id int64) (*transactionDomain.Transaction, error)
	List(ctx context.Context, filter transactionDomain.ListFilter) ([]*transactionDomain.Transaction, error)
	// Import inserts every row of a CSV document in a single unit of work and
	// returns the number of inserted transactions.
	Import(ctx context.Context, r io.Reader) (int, error)
}
