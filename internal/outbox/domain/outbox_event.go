// Package domain defines the outbox entries that carry domain events from the
// transaction store to the event bus.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// OutboxEventStatus represents the delivery state of an outbox event.
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// OutboxEvent is a domain event stored alongside the data change that produced it.
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOutboxEvent creates a pending event.
func NewOutboxEvent(id uuid.UUID, eventType, payload string) *OutboxEvent {
	return &OutboxEvent{
		ID:        id,
		EventType: eventType,
		Payload:   payload,
		Status:    OutboxEventStatusPending,
	}
}

// MarkProcessed records a successful delivery at now.
func (e *OutboxEvent) MarkProcessed(now time.Time) {
	e.Status = OutboxEventStatusProcessed
	e.ProcessedAt = &now
	e.LastError = nil
}

// MarkAttemptFailed records a failed delivery. The event stays pending until
// maxRetries attempts have failed.
func (e *OutboxEvent) MarkAttemptFailed(err error, maxRetries int) {
	e.Retries++
	msg := err.Error()
	e.LastError = &msg
	if e.Retries >= maxRetries {
		e.Status = OutboxEventStatusFailed
	}
}
