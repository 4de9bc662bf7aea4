// Package events publishes domain events to the configured bus.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event is a bus-agnostic domain event.
type Event struct {
	Source     string          `json:"source"`
	DetailType string          `json:"detail_type"`
	Detail     json.RawMessage `json:"detail"`
	BusName    string          `json:"bus_name"`
	Time       time.Time       `json:"time"`
}

// NewEvent encodes detail and stamps the event with now.
func NewEvent(source, detailType, busName string, detail any, now time.Time) (Event, error) {
	data, err := json.Marshal(detail)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode event detail: %w", err)
	}
	return Event{
		Source:     source,
		DetailType: detailType,
		Detail:     data,
		BusName:    busName,
		Time:       now.UTC(),
	}, nil
}

// Publisher publishes one event. The boolean reports whether the bus
// acknowledged every entry; err is reserved for failed calls.
type Publisher interface {
	Publish(ctx context.Context, event Event) (bool, error)
}

// transactional is implemented by publishers whose writes join the database
// transaction carried by ctx.
type transactional interface {
	Transactional() bool
}

// IsTransactional reports whether p writes inside the caller's database
// transaction. Such publishers must be called before commit; all others only
// after it.
func IsTransactional(p Publisher) bool {
	t, ok := p.(transactional)
	return ok && t.Transactional()
}

// PublisherFunc adapts a function into a Publisher.
type PublisherFunc func(ctx context.Context, event Event) (bool, error)

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, event Event) (bool, error) {
	return f(ctx, event)
}
