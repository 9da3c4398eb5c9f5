package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event represents a domain event envelope
type Event struct {
	ID            string          `json:"event_id"`
	Type          string          `json:"type"`
	Version       int             `json:"version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event
func NewEvent(eventType, aggregateType, aggregateID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            ulid.Make().String(),
		Type:          eventType,
		Version:       1,
		OccurredAt:    time.Now().UTC(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Data:          dataBytes,
	}, nil
}

// WithCorrelation sets the correlation ID
func (e *Event) WithCorrelation(correlationID string) *Event {
	e.CorrelationID = correlationID
	return e
}

// DecodeData decodes the event data into a struct
func (e *Event) DecodeData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// EventPublisher publishes events to a message broker
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
}

// Event types
const (
	EventActionSucceeded = "checkout.action.succeeded"
	EventActionFailed    = "checkout.action.failed"
	EventSettingsSaved   = "settings.admin.saved"
)

// ActionCompletedData is the data for checkout.action.* events
type ActionCompletedData struct {
	Action      string `json:"action"`
	Environment string `json:"environment"`
	Outcome     string `json:"outcome"`
	Message     string `json:"message,omitempty"`
	Bytes       int    `json:"bytes"`
	DurationMs  int64  `json:"duration_ms"`
}

// SettingsSavedData is the data for settings.admin.saved events
type SettingsSavedData struct {
	Environment string   `json:"environment"`
	Keys        []string `json:"keys"`
}

// Fanout publishes each event to every publisher and joins their errors
type Fanout []EventPublisher

// Publish publishes to all publishers, continuing past failures
func (f Fanout) Publish(ctx context.Context, event *Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
