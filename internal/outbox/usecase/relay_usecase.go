// Package usecase relays stored outbox events to the event bus.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/database"
	apperrors "github.com/DavidCuy/p2p-solution-sls-backend/internal/errors"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/events"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/outbox/domain"
)

// ErrNotAcknowledged is returned when the bus accepted the call but not the event.
var ErrNotAcknowledged = apperrors.Wrap(apperrors.ErrUnavailable, "event not acknowledged by bus")

// Config holds relay configuration.
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxEventRepository defines outbox event repository operations.
type OutboxEventRepository interface {
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
}

// EventProcessor delivers one outbox event.
type EventProcessor interface {
	Process(ctx context.Context, event *domain.OutboxEvent) error
}

// UseCase defines the relay operations.
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
}

// RelayUseCase drains pending outbox events on a fixed interval.
type RelayUseCase struct {
	config     Config
	txManager  database.TxManager
	outboxRepo OutboxEventRepository
	processor  EventProcessor
	logger     *slog.Logger
	now        func() time.Time
}

// NewRelayUseCase creates a RelayUseCase. logger may be nil.
func NewRelayUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	processor EventProcessor,
	logger *slog.Logger,
) *RelayUseCase {
	return &RelayUseCase{
		config:     config,
		txManager:  txManager,
		outboxRepo: outboxRepo,
		processor:  processor,
		logger:     logger,
		now:        time.Now,
	}
}

// Start runs ProcessEvents on every tick until ctx is done.
func (uc *RelayUseCase) Start(ctx context.Context) error {
	if uc.logger != nil {
		uc.logger.Info("starting outbox relay",
			slog.Duration("interval", uc.config.Interval),
			slog.Int("batch_size", uc.config.BatchSize),
		)
	}

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if uc.logger != nil {
				uc.logger.Info("stopping outbox relay")
			}
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil && uc.logger != nil {
				uc.logger.Error("failed to relay outbox events", slog.Any("error", err))
			}
		}
	}
}

// ProcessEvents delivers one batch of pending events inside a transaction. A
// delivery failure is recorded on the event; only storage errors abort the batch.
func (uc *RelayUseCase) ProcessEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		pending, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}

		if len(pending) == 0 {
			return nil
		}

		if uc.logger != nil {
			uc.logger.Info("relaying outbox events", slog.Int("count", len(pending)))
		}

		for _, event := range pending {
			if err := uc.processor.Process(ctx, event); err != nil {
				if uc.logger != nil {
					uc.logger.Error("failed to relay outbox event",
						slog.String("event_id", event.ID.String()),
						slog.String("event_type", event.EventType),
						slog.Int("retries", event.Retries+1),
						slog.Any("error", err),
					)
				}
				event.MarkAttemptFailed(err, uc.config.MaxRetries)
			} else {
				event.MarkProcessed(uc.now())
			}

			if err := uc.outboxRepo.Update(ctx, event); err != nil {
				return err
			}
		}

		return nil
	})
}

// PublishingProcessor decodes stored events and hands them to a publisher.
type PublishingProcessor struct {
	publisher events.Publisher
	logger    *slog.Logger
}

// NewPublishingProcessor creates a PublishingProcessor. logger may be nil.
func NewPublishingProcessor(publisher events.Publisher, logger *slog.Logger) *PublishingProcessor {
	return &PublishingProcessor{publisher: publisher, logger: logger}
}

// Process publishes the stored event; an unacknowledged publish is an error so
// the relay retries it.
func (p *PublishingProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	decoded, err := events.DecodeOutboxEvent(event)
	if err != nil {
		return err
	}

	ok, err := p.publisher.Publish(ctx, decoded)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAcknowledged
	}

	if p.logger != nil {
		p.logger.Debug("outbox event relayed",
			slog.String("event_id", event.ID.String()),
			slog.String("detail_type", decoded.DetailType),
		)
	}
	return nil
}
