package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	outboxDomain "github.com/DavidCuy/p2p-solution-sls-backend/internal/outbox/domain"
)

// OutboxWriter stores outbox events.
type OutboxWriter interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// OutboxPublisher stores events in the outbox table for later relay. Called
// inside a unit of work, the event commits or rolls back with it.
type OutboxPublisher struct {
	writer OutboxWriter
}

// NewOutboxPublisher creates an OutboxPublisher.
func NewOutboxPublisher(writer OutboxWriter) *OutboxPublisher {
	return &OutboxPublisher{writer: writer}
}

// Transactional reports true: the outbox row commits with the caller's
// unit of work.
func (p *OutboxPublisher) Transactional() bool {
	return true
}

// Publish stores event as a pending outbox row.
func (p *OutboxPublisher) Publish(ctx context.Context, event Event) (bool, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return false, fmt.Errorf("failed to encode outbox payload: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return false, fmt.Errorf("failed to generate outbox id: %w", err)
	}

	if err := p.writer.Create(ctx, outboxDomain.NewOutboxEvent(id, event.DetailType, string(payload))); err != nil {
		return false, fmt.Errorf("failed to store outbox event: %w", err)
	}
	return true, nil
}

// DecodeOutboxEvent restores the Event stored by OutboxPublisher.
func DecodeOutboxEvent(event *outboxDomain.OutboxEvent) (Event, error) {
	var decoded Event
	if err := json.Unmarshal([]byte(event.Payload), &decoded); err != nil {
		return Event{}, fmt.Errorf("failed to decode outbox payload: %w", err)
	}
	return decoded, nil
}
