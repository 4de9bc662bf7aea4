package events

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// KafkaWriter is the subset of *kafka.Writer used by the publisher.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a kafka topic.
type KafkaPublisher struct {
	writer KafkaWriter
}

// NewKafkaWriter builds a writer for topic balanced by least bytes.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
}

// NewKafkaPublisher creates a KafkaPublisher.
func NewKafkaPublisher(writer KafkaWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// Publish writes the event detail keyed by detail type.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) (bool, error) {
	msg := kafka.Message{
		Key:   []byte(event.DetailType),
		Value: event.Detail,
		Time:  event.Time,
		Headers: []kafka.Header{
			{Key: "source", Value: []byte(event.Source)},
			{Key: "bus", Value: []byte(event.BusName)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return false, fmt.Errorf("failed to write kafka message: %w", err)
	}
	return true, nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
