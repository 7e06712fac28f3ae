// Package postgres - OutboxRepository implements the transactional outbox
// pattern: an event is written in the same transaction as the business
// change that raised it, a separate poller reads and publishes it to
// partner webhook endpoints, then marks it published.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/domain/events"
)

// Compile-time check
var _ ports.OutboxRepository = (*OutboxRepository)(nil)
var _ ports.EventPublisher = (*OutboxRepository)(nil) // OutboxRepository is also an EventPublisher

// OutboxRepository implements ports.OutboxRepository.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// getQuerier returns the querier to use: the enclosing transaction if the
// context carries one, otherwise the pool directly.
func (r *OutboxRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// outboxEntry represents a row in the outbox table.
type outboxEntry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   uuid.UUID
	EventType     string
	EventVersion  int
	Payload       []byte
	Status        string
	PartitionKey  string
	CreatedAt     time.Time
}

// Save writes an event to the outbox table. Must run in the same
// transaction as the business operation that raised the event.
func (r *OutboxRepository) Save(ctx context.Context, event events.DomainEvent) error {
	q := r.getQuerier(ctx)

	payload, err := serializeEvent(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	aggregateType := getAggregateType(event.EventType())

	query := `
	INSERT INTO outbox (
		id, aggregate_type, aggregate_id, event_type, event_version,
		payload, status, partition_key, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = q.Exec(ctx, query,
		event.EventID(),
		aggregateType,
		event.AggregateID(),
		event.EventType(),
		1, // Event version (room to grow for schema versioning)
		payload,
		"PENDING",
		event.AggregateID().String(), // partition key so webhook delivery stays ordered per aggregate
		event.OccurredAt(),
	)

	if err != nil {
		return fmt.Errorf("failed to save event to outbox: %w", err)
	}

	return nil
}

// FindUnpublished returns events that have not yet been published. Used by
// the dispatcher poller.
func (r *OutboxRepository) FindUnpublished(ctx context.Context, limit int) ([]events.DomainEvent, error) {
	q := r.getQuerier(ctx)

	query := `
	SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at
	FROM outbox
	WHERE status = 'PENDING'
	ORDER BY created_at ASC
	LIMIT $1
	FOR UPDATE SKIP LOCKED
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find unpublished events: %w", err)
	}
	defer rows.Close()

	var domainEvents []events.DomainEvent
	for rows.Next() {
		var (
			id                       uuid.UUID
			aggregateType, eventType string
			aggregateID              uuid.UUID
			payload                  []byte
			createdAt                time.Time
		)

		if err := rows.Scan(&id, &aggregateType, &aggregateID, &eventType, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox row: %w", err)
		}

		event, err := deserializeEvent(eventType, payload, id, aggregateID, createdAt)
		if err != nil {
			// A corrupt event must not block the rest of the batch.
			continue
		}

		domainEvents = append(domainEvents, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox rows: %w", err)
	}

	return domainEvents, nil
}

// Publish implements the EventPublisher interface. In the outbox pattern
// this is just an alias for Save - publishing means persisting.
func (r *OutboxRepository) Publish(ctx context.Context, event events.DomainEvent) error {
	return r.Save(ctx, event)
}

// PublishBatch implements the EventPublisher interface, saving several
// events at once.
func (r *OutboxRepository) PublishBatch(ctx context.Context, eventsList []events.DomainEvent) error {
	if len(eventsList) == 0 {
		return nil
	}

	for _, event := range eventsList {
		if err := r.Save(ctx, event); err != nil {
			return fmt.Errorf("failed to publish event %s: %w", event.EventType(), err)
		}
	}

	return nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, eventID string) error {
	q := r.getQuerier(ctx)

	eventUUID, err := uuid.Parse(eventID)
	if err != nil {
		return fmt.Errorf("invalid event ID: %w", err)
	}

	query := `
	UPDATE outbox
	SET status = 'PUBLISHED', published_at = $2
	WHERE id = $1 AND status = 'PENDING'
	`

	result, err := q.Exec(ctx, query, eventUUID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark event as published: %w", err)
	}

	if result.RowsAffected() == 0 {
		return errors.New("event not found or already published")
	}

	return nil
}

// MarkFailed marks an event as failed.
func (r *OutboxRepository) MarkFailed(ctx context.Context, eventID string, reason string) error {
	q := r.getQuerier(ctx)

	eventUUID, err := uuid.Parse(eventID)
	if err != nil {
		return fmt.Errorf("invalid event ID: %w", err)
	}

	query := `
	UPDATE outbox
	SET status = 'FAILED',
	failed_at = $2,
	last_error = $3,
	retry_count = retry_count + 1
	WHERE id = $1
	`

	_, err = q.Exec(ctx, query, eventUUID, time.Now(), reason)
	if err != nil {
		return fmt.Errorf("failed to mark event as failed: %w", err)
	}

	return nil
}

// MarkForRetry returns a failed event to PENDING for reprocessing.
func (r *OutboxRepository) MarkForRetry(ctx context.Context, eventID string) error {
	q := r.getQuerier(ctx)

	eventUUID, err := uuid.Parse(eventID)
	if err != nil {
		return fmt.Errorf("invalid event ID: %w", err)
	}

	query := `
	UPDATE outbox
	SET status = 'PENDING',
	failed_at = NULL,
	last_error = NULL
	WHERE id = $1 AND status = 'FAILED' AND retry_count < 5
	`

	result, err := q.Exec(ctx, query, eventUUID)
	if err != nil {
		return fmt.Errorf("failed to mark event for retry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return errors.New("event not found, not failed, or max retries exceeded")
	}

	return nil
}

// CleanupPublished deletes published events older than the given duration.
// Used for maintenance.
func (r *OutboxRepository) CleanupPublished(ctx context.Context, olderThan time.Duration) (int64, error) {
	q := r.getQuerier(ctx)

	cutoff := time.Now().Add(-olderThan)

	query := `
	DELETE FROM outbox
	WHERE status = 'PUBLISHED' AND published_at < $1
	`

	result, err := q.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup published events: %w", err)
	}

	return result.RowsAffected(), nil
}

// Helper functions

// serializeEvent serializes a DomainEvent to JSON.
func serializeEvent(event events.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// deserializeEvent rebuilds an event from its JSON payload. Without a
// registry of concrete event types keyed by eventType, this returns a
// generic wrapper good enough for dispatch, which only needs the envelope
// fields and the raw payload.
func deserializeEvent(eventType string, payload []byte, eventID, aggregateID uuid.UUID, occurredAt time.Time) (events.DomainEvent, error) {
	return &genericEvent{
		id:          eventID,
		eventType:   eventType,
		occurredAt:  occurredAt,
		aggregateID: aggregateID,
		payload:     payload,
	}, nil
}

// genericEvent wraps a deserialized outbox row as a DomainEvent.
type genericEvent struct {
	id          uuid.UUID
	eventType   string
	occurredAt  time.Time
	aggregateID uuid.UUID
	payload     []byte
}

func (e *genericEvent) EventID() uuid.UUID     { return e.id }
func (e *genericEvent) EventType() string      { return e.eventType }
func (e *genericEvent) OccurredAt() time.Time  { return e.occurredAt }
func (e *genericEvent) AggregateID() uuid.UUID { return e.aggregateID }
func (e *genericEvent) Payload() []byte        { return e.payload }

// getAggregateType derives the aggregate name from an event type's prefix
// (e.g. "transaction.completed" -> "Transaction") for the outbox's
// aggregate_type column.
func getAggregateType(eventType string) string {
	switch {
	case strings.HasPrefix(eventType, "partner."):
		return "Partner"
	case strings.HasPrefix(eventType, "api_key."):
		return "ApiKey"
	case strings.HasPrefix(eventType, "wallet."):
		return "Wallet"
	case strings.HasPrefix(eventType, "transaction."):
		return "Transaction"
	case strings.HasPrefix(eventType, "ledger_entry."):
		return "LedgerEntry"
	case strings.HasPrefix(eventType, "funding_session."):
		return "FundingSession"
	case strings.HasPrefix(eventType, "gateway_transaction."):
		return "GatewayTransaction"
	default:
		return "Unknown"
	}
}
