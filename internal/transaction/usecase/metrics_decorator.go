package usecase

import (
	"context"
	"io"
	"time"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/metrics"
	transactionDomain "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/domain"
)

const metricsDomain = "p2p"

// transactionUseCaseWithMetrics decorates TransactionUseCase with metrics instrumentation.
type transactionUseCaseWithMetrics struct {
	next    TransactionUseCase
	metrics metrics.BusinessMetrics
}

// NewTransactionUseCaseWithMetrics wraps a TransactionUseCase with metrics recording.
func NewTransactionUseCaseWithMetrics(useCase TransactionUseCase, m metrics.BusinessMetrics) TransactionUseCase {
	return &transactionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (t *transactionUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusFor(err)
	t.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	t.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Process records metrics for batch settlement and one settlement per
// processed transaction.
func (t *transactionUseCaseWithMetrics) Process(
	ctx context.Context,
	payloads []transactionDomain.Payload,
) ([]transactionDomain.ProcessedTransaction, error) {
	start := time.Now()
	processed, err := t.next.Process(ctx, payloads)
	t.record(ctx, "transaction_process", start, err)
	for _, p := range processed {
		t.metrics.RecordSettlement(ctx, string(p.Output.Status), p.EBStatus)
	}
	return processed, err
}

// Get records metrics for transaction lookups.
func (t *transactionUseCaseWithMetrics) Get(ctx context.Context, id int64) (*transactionDomain.Transaction, error) {
	start := time.Now()
	trx, err := t.next.Get(ctx, id)
	t.record(ctx, "transaction_find", start, err)
	return trx, err
}

// List records metrics for transaction listings.
func (t *transactionUseCaseWithMetrics) List(
	ctx context.Context,
	filter transactionDomain.ListFilter,
) ([]*transactionDomain.Transaction, error) {
	start := time.Now()
	transactions, err := t.next.List(ctx, filter)
	t.record(ctx, "transaction_list", start, err)
	return transactions, err
}

// Import records metrics for CSV imports.
func (t *transactionUseCaseWithMetrics) Import(ctx context.Context, r io.Reader) (int, error) {
	start := time.Now()
	count, err := t.next.Import(ctx, r)
	t.record(ctx, "transaction_import", start, err)
	return count, err
}
