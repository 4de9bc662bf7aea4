package events

import (
	"context"
	"fmt"

	"gocloud.dev/pubsub"

	// Register pubsub drivers
	_ "gocloud.dev/pubsub/awssnssqs"
	_ "gocloud.dev/pubsub/mempubsub"
)

// PubSubPublisher sends events to a gocloud.dev topic.
type PubSubPublisher struct {
	topic *pubsub.Topic
}

// OpenPubSubPublisher opens the topic at url (e.g. "awssns:///arn:..." or "mem://events").
func OpenPubSubPublisher(ctx context.Context, url string) (*PubSubPublisher, error) {
	topic, err := pubsub.OpenTopic(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open topic: %w", err)
	}
	return &PubSubPublisher{topic: topic}, nil
}

// NewPubSubPublisher wraps an already opened topic.
func NewPubSubPublisher(topic *pubsub.Topic) *PubSubPublisher {
	return &PubSubPublisher{topic: topic}
}

// Publish sends the event detail with its routing fields as metadata.
func (p *PubSubPublisher) Publish(ctx context.Context, event Event) (bool, error) {
	err := p.topic.Send(ctx, &pubsub.Message{
		Body: event.Detail,
		Metadata: map[string]string{
			"source":      event.Source,
			"detail-type": event.DetailType,
			"bus":         event.BusName,
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to send message: %w", err)
	}
	return true, nil
}

// Close shuts down the topic.
func (p *PubSubPublisher) Close(ctx context.Context) error {
	return p.topic.Shutdown(ctx)
}
