// Package ports - EventPublisher abstracts publishing domain events so the
// application layer never imports a broker client directly.
package ports

import (
	"context"

	"github.com/Haleralex/payflow/internal/domain/events"
)

// EventPublisher publishes domain events. The production implementation
// drains the transactional outbox onto NATS subjects ; delivery is at-least-once, so subscribers must be idempotent.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch publishes several events together; if any one fails the
	// whole batch is considered failed so the outbox poller retries it.
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventSubscriber is the consumer-side counterpart, used by the outbound
// webhook dispatcher to react to transaction.completed.
type EventSubscriber interface {
	Subscribe(eventType string, handler EventHandler) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// EventHandler processes one delivered event.
type EventHandler func(ctx context.Context, event events.DomainEvent) error

// OutboxRepository implements the transactional outbox: events are written
// in the same database transaction as the business change that raised them,
// then a separate poller publishes and marks them.
type OutboxRepository interface {
	// Save persists an event row. Must run inside the caller's unit-of-work
	// transaction to get the atomicity the pattern depends on.
	Save(ctx context.Context, event events.DomainEvent) error

	// FindUnpublished returns events the poller has not yet published,
	// locked against concurrent pollers (SELECT... FOR UPDATE SKIP LOCKED).
	FindUnpublished(ctx context.Context, limit int) ([]events.DomainEvent, error)

	MarkPublished(ctx context.Context, eventID string) error

	// MarkFailed records a delivery failure; implementations apply their own
	// backoff/retry-count policy before giving up.
	MarkFailed(ctx context.Context, eventID string, reason string) error
}
