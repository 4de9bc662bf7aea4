package app

import (
	"context"
	"fmt"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/events"
	outboxRepository "github.com/DavidCuy/p2p-solution-sls-backend/internal/outbox/repository"
	outboxUsecase "github.com/DavidCuy/p2p-solution-sls-backend/internal/outbox/usecase"
)

// Event bus drivers.
const (
	DriverEventBridge = "eventbridge"
	DriverKafka       = "kafka"
	DriverPubSub      = "pubsub"
	DriverOutbox      = "outbox"
)

// Publisher returns the publisher selected by EVENT_BUS_DRIVER.
func (c *Container) Publisher() (events.Publisher, error) {
	var err error
	c.publisherInit.Do(func() {
		c.publisher, c.publisherCloser, err = c.initPublisher(c.config.EventBusDriver, true)
		if err != nil {
			c.initErrors["publisher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["publisher"]; exists {
		return nil, storedErr
	}
	return c.publisher, nil
}

// OutboxRepository returns the outbox event repository instance.
func (c *Container) OutboxRepository() (*outboxRepository.PostgreSQLOutboxEventRepository, error) {
	var err error
	c.outboxRepoInit.Do(func() {
		c.outboxRepo, err = c.initOutboxRepository()
		if err != nil {
			c.initErrors["outboxRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxRepo"]; exists {
		return nil, storedErr
	}
	return c.outboxRepo, nil
}

// RelayPublisher returns the publisher the outbox relay drains to, selected by
// OUTBOX_TARGET_DRIVER.
func (c *Container) RelayPublisher() (events.Publisher, error) {
	var err error
	c.relayPublisherInit.Do(func() {
		c.relayPublisher, c.relayCloser, err = c.initPublisher(c.config.OutboxTargetDriver, false)
		if err != nil {
			c.initErrors["relayPublisher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["relayPublisher"]; exists {
		return nil, storedErr
	}
	return c.relayPublisher, nil
}

// OutboxRelay returns the outbox relay use case.
func (c *Container) OutboxRelay() (outboxUsecase.UseCase, error) {
	var err error
	c.outboxRelayInit.Do(func() {
		c.outboxRelay, err = c.initOutboxRelay()
		if err != nil {
			c.initErrors["outboxRelay"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxRelay"]; exists {
		return nil, storedErr
	}
	return c.outboxRelay, nil
}

// initPublisher builds the publisher for driver and the function releasing it.
// The outbox driver is only accepted when allowOutbox is set.
func (c *Container) initPublisher(
	driver string,
	allowOutbox bool,
) (events.Publisher, func(ctx context.Context) error, error) {
	switch driver {
	case DriverEventBridge:
		client, err := c.eventBridgeClient()
		if err != nil {
			return nil, nil, err
		}
		return events.NewEventBridgePublisher(client, c.Logger()), nil, nil
	case DriverKafka:
		publisher := events.NewKafkaPublisher(
			events.NewKafkaWriter(c.config.KafkaBrokerList(), c.config.KafkaTopic),
		)
		return publisher, func(context.Context) error { return publisher.Close() }, nil
	case DriverPubSub:
		if c.config.PubSubTopicURL == "" {
			return nil, nil, fmt.Errorf("PUBSUB_TOPIC_URL is required for the %s driver", driver)
		}
		publisher, err := events.OpenPubSubPublisher(c.ctx, c.config.PubSubTopicURL)
		if err != nil {
			return nil, nil, err
		}
		return publisher, publisher.Close, nil
	case DriverOutbox:
		if !allowOutbox {
			return nil, nil, fmt.Errorf("the %s driver cannot be used as relay target", driver)
		}
		repo, err := c.OutboxRepository()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get outbox repository for publisher: %w", err)
		}
		return events.NewOutboxPublisher(repo), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported event bus driver: %s", driver)
	}
}

// initOutboxRepository creates the outbox event repository instance.
func (c *Container) initOutboxRepository() (*outboxRepository.PostgreSQLOutboxEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}
	return outboxRepository.NewPostgreSQLOutboxEventRepository(db, c.config.DBSchema), nil
}

// initOutboxRelay creates the relay draining the outbox to the target publisher.
func (c *Container) initOutboxRelay() (outboxUsecase.UseCase, error) {
	logger := c.Logger()

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox relay: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox relay: %w", err)
	}

	publisher, err := c.RelayPublisher()
	if err != nil {
		return nil, fmt.Errorf("failed to get relay publisher for outbox relay: %w", err)
	}

	relayConfig := outboxUsecase.Config{
		Interval:   c.config.OutboxInterval,
		BatchSize:  c.config.OutboxBatchSize,
		MaxRetries: c.config.OutboxMaxRetries,
	}

	processor := outboxUsecase.NewPublishingProcessor(publisher, logger)
	return outboxUsecase.NewRelayUseCase(relayConfig, txManager, outboxRepo, processor, logger), nil
}
