// Package queue feeds messages from a gocloud.dev subscription into the
// Lambda request handler when running outside Lambda.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"gocloud.dev/pubsub"

	"github.com/DavidCuy/p2p-solution-sls-backend/internal/lambda"

	// Register pubsub drivers
	_ "gocloud.dev/pubsub/awssnssqs"
	_ "gocloud.dev/pubsub/mempubsub"
)

// Consumer receives messages one at a time, invokes the handler with a
// one-record batch and acks on success. Failed messages are nacked when the
// driver supports it.
type Consumer struct {
	subscription *pubsub.Subscription
	handler      lambda.Handler
	logger       *slog.Logger
}

// OpenConsumer opens the subscription at url (e.g. "awssqs://..." or "mem://requests").
func OpenConsumer(ctx context.Context, url string, handler lambda.Handler, logger *slog.Logger) (*Consumer, error) {
	subscription, err := pubsub.OpenSubscription(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open subscription: %w", err)
	}
	return NewConsumer(subscription, handler, logger), nil
}

// NewConsumer wraps an already opened subscription.
func NewConsumer(subscription *pubsub.Subscription, handler lambda.Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		subscription: subscription,
		handler:      handler,
		logger:       logger,
	}
}

// Run consumes messages until ctx is done. It returns nil on cancellation.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("starting queue consumer")

	for {
		msg, err := c.subscription.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("queue consumer stopped")
				return nil
			}
			return fmt.Errorf("failed to receive message: %w", err)
		}

		c.handle(ctx, msg)
	}
}

func (c *Consumer) handle(ctx context.Context, msg *pubsub.Message) {
	event, err := batchFor(msg)
	if err == nil {
		var resp any
		resp, err = c.handler.Invoke(ctx, event)
		if err == nil {
			c.logger.Debug("message processed",
				slog.String("message_id", msg.LoggableID),
				slog.Any("response", resp),
			)
			msg.Ack()
			return
		}
	}

	c.logger.Error("failed to process message",
		slog.String("message_id", msg.LoggableID),
		slog.Any("error", err),
	)
	if msg.Nackable() {
		msg.Nack()
	}
}

// batchFor wraps msg into the queue event shape the request handler expects.
func batchFor(msg *pubsub.Message) (json.RawMessage, error) {
	return json.Marshal(events.SQSEvent{
		Records: []events.SQSMessage{
			{
				MessageId:   msg.LoggableID,
				Body:        string(msg.Body),
				EventSource: "aws:sqs",
			},
		},
	})
}

// Close shuts down the subscription.
func (c *Consumer) Close(ctx context.Context) error {
	return c.subscription.Shutdown(ctx)
}
