// Package events publishes outbox-drained domain events to NATS so other
// services (reporting, notification fan-out) can consume them without
// touching the database. Publication happens after the event's business
// transaction committed — the transactional outbox keeps the two in step.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Haleralex/payflow/internal/domain/events"
	"github.com/nats-io/nats.go"
)

// payloadCarrier is satisfied by events deserialized off the outbox; see
// infrastructure/webhook.Dispatcher for the same contract.
type payloadCarrier interface {
	Payload() []byte
}

// envelope is the JSON shape published on every subject.
type envelope struct {
	EventID     string          `json:"eventId"`
	EventType   string          `json:"eventType"`
	AggregateID string          `json:"aggregateId"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// NatsPublisher ships domain events to per-type NATS subjects
// (<prefix>.<event.type>).
type NatsPublisher struct {
	conn          *nats.Conn
	subjectPrefix string
	logger        *slog.Logger
}

// NewNatsPublisher dials the broker. The connection reconnects forever on its
// own; a broker outage therefore delays event fan-out rather than failing
// startup.
func NewNatsPublisher(url, subjectPrefix string, logger *slog.Logger) (*NatsPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("payflow-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NatsPublisher{conn: conn, subjectPrefix: subjectPrefix, logger: logger}, nil
}

// Publish ships one drained outbox event. The subject is derived from the
// event type so consumers can subscribe per concern
// (payflow.events.transaction.completed, payflow.events.funding_session.*).
func (p *NatsPublisher) Publish(event events.DomainEvent) error {
	env := envelope{
		EventID:     event.EventID().String(),
		EventType:   event.EventType(),
		AggregateID: event.AggregateID().String(),
		OccurredAt:  event.OccurredAt(),
	}
	if carrier, ok := event.(payloadCarrier); ok {
		env.Data = carrier.Payload()
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode event envelope: %w", err)
	}

	subject := p.subjectPrefix + "." + event.EventType()
	if err := p.conn.Publish(subject, body); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// Close drains buffered messages and closes the connection.
func (p *NatsPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("NATS drain failed", slog.String("error", err.Error()))
	}
}
