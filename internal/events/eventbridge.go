package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
)

// EventBridgeAPI is the subset of the EventBridge client used by the publisher.
type EventBridgeAPI interface {
	PutEvents(
		ctx context.Context,
		params *eventbridge.PutEventsInput,
		optFns ...func(*eventbridge.Options),
	) (*eventbridge.PutEventsOutput, error)
}

// EventBridgePublisher puts events on an EventBridge bus.
type EventBridgePublisher struct {
	client EventBridgeAPI
	logger *slog.Logger
}

// NewEventBridgePublisher creates an EventBridgePublisher.
func NewEventBridgePublisher(client EventBridgeAPI, logger *slog.Logger) *EventBridgePublisher {
	return &EventBridgePublisher{client: client, logger: logger}
}

// Publish sends event as a single entry. It reports true only when every
// result entry carries an EventId.
func (p *EventBridgePublisher) Publish(ctx context.Context, event Event) (bool, error) {
	entry := types.PutEventsRequestEntry{
		Source:       aws.String(event.Source),
		DetailType:   aws.String(event.DetailType),
		Detail:       aws.String(string(event.Detail)),
		EventBusName: aws.String(event.BusName),
	}
	if !event.Time.IsZero() {
		entry.Time = aws.Time(event.Time)
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{entry},
	})
	if err != nil {
		return false, fmt.Errorf("failed to put events: %w", err)
	}

	acknowledged := true
	for _, result := range out.Entries {
		if result.EventId == nil {
			acknowledged = false
			p.logger.Warn("event entry rejected",
				slog.String("error_code", aws.ToString(result.ErrorCode)),
				slog.String("error_message", aws.ToString(result.ErrorMessage)),
			)
		}
	}

	p.logger.Info("event published",
		slog.String("bus", event.BusName),
		slog.String("detail_type", event.DetailType),
		slog.Int("failed_entry_count", int(out.FailedEntryCount)),
		slog.Bool("acknowledged", acknowledged),
	)

	return acknowledged, nil
}
