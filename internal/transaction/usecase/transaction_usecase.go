package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/database"
	apperrors "github.com/DavidCuy/p2p-solution-sls-backend/internal/errors"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/events"
	transactionDomain "github.com/DavidCuy/p2p-solution-sls-backend/internal/transaction/domain"
)

// EventConfig names the bus and tags attached to emitted events.
type EventConfig struct {
	Source     string
	DetailType string
	BusName    string
}

// Option customizes a transactionUseCase.
type Option func(*transactionUseCase)

// WithIDGenerator replaces the correlation id generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(uc *transactionUseCase) {
		uc.newID = gen
	}
}

// WithClock replaces the processing clock.
func WithClock(now func() time.Time) Option {
	return func(uc *transactionUseCase) {
		uc.now = now
	}
}

type transactionUseCase struct {
	txManager   database.TxManager
	repo        TransactionRepository
	publisher   events.Publisher
	eventConfig EventConfig
	logger      *slog.Logger
	newID       IDGenerator
	now         func() time.Time
}

// NewTransactionUseCase creates a TransactionUseCase.
func NewTransactionUseCase(
	txManager database.TxManager,
	repo TransactionRepository,
	publisher events.Publisher,
	eventConfig EventConfig,
	logger *slog.Logger,
	opts ...Option,
) TransactionUseCase {
	uc := &transactionUseCase{
		txManager:   txManager,
		repo:        repo,
		publisher:   publisher,
		eventConfig: eventConfig,
		logger:      logger,
		newID:       uuid.NewRandom,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Process settles payloads sequentially in batch order.
func (t *transactionUseCase) Process(
	ctx context.Context,
	payloads []transactionDomain.Payload,
) ([]transactionDomain.ProcessedTransaction, error) {
	processed := make([]transactionDomain.ProcessedTransaction, 0, len(payloads))
	for i, payload := range payloads {
		t.logger.Info("processing banking request", slog.Int("record", i))

		result, err := t.processPayload(ctx, payload)
		if err != nil {
			return nil, err
		}
		processed = append(processed, result)
	}
	return processed, nil
}

// processPayload looks up, decides and updates in one unit of work, then
// emits the outcome event. A transactional publisher (outbox) writes inside
// the unit of work so the event commits with the status; any other bus is
// only called once the update has committed.
func (t *transactionUseCase) processPayload(
	ctx context.Context,
	payload transactionDomain.Payload,
) (transactionDomain.ProcessedTransaction, error) {
	var result transactionDomain.ProcessedTransaction

	if payload.ID == nil {
		return result, transactionDomain.ErrMissingTransactionID
	}

	correlationID, err := t.newID()
	if err != nil {
		return result, apperrors.Wrap(err, "failed to generate correlation id")
	}

	inTx := events.IsTransactional(t.publisher)
	var event events.Event

	err = t.txManager.WithTx(ctx, func(txCtx context.Context) error {
		trx, err := t.repo.GetByID(txCtx, *payload.ID)
		if err != nil {
			return err
		}
		t.logger.Info("transaction found",
			slog.Int64("id", trx.ID),
			slog.String("status", string(trx.Status)),
		)
		if trx.Status.IsTerminal() {
			t.logger.Warn("transaction already settled, reapplying",
				slog.Int64("id", trx.ID),
				slog.String("status", string(trx.Status)),
			)
		}

		now := t.now().UTC()
		outcome := transactionDomain.Decide(payload, *trx, correlationID, now)

		updated, err := trx.WithStatus(outcome.Status)
		if err != nil {
			return err
		}
		if err := t.repo.Update(txCtx, &updated); err != nil {
			return err
		}

		event, err = events.NewEvent(
			t.eventConfig.Source,
			t.eventConfig.DetailType,
			t.eventConfig.BusName,
			outcome,
			now,
		)
		if err != nil {
			return err
		}

		result = transactionDomain.ProcessedTransaction{Input: *trx, Output: outcome}
		if !inTx {
			return nil
		}
		result.EBStatus, err = t.publisher.Publish(txCtx, event)
		return err
	})
	if err != nil {
		return transactionDomain.ProcessedTransaction{}, err
	}

	if !inTx {
		result.EBStatus, err = t.publisher.Publish(ctx, event)
		if err != nil {
			return transactionDomain.ProcessedTransaction{}, apperrors.Wrapf(
				err, "transaction %d committed as %s, event not published", result.Input.ID, result.Output.Status,
			)
		}
	}

	t.logger.Info("transaction settled",
		slog.Int64("id", result.Input.ID),
		slog.String("status", string(result.Output.Status)),
		slog.String("correlation_id", correlationID.String()),
		slog.Bool("eb_status", result.EBStatus),
	)
	return result, nil
}

// Get retrieves a transaction by id.
func (t *transactionUseCase) Get(ctx context.Context, id int64) (*transactionDomain.Transaction, error) {
	return t.repo.GetByID(ctx, id)
}

// List retrieves transactions matching filter.
func (t *transactionUseCase) List(
	ctx context.Context,
	filter transactionDomain.ListFilter,
) ([]*transactionDomain.Transaction, error) {
	return t.repo.List(ctx, filter)
}
