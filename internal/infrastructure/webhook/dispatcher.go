// Package webhook sends outbound partner webhooks for events drained from
// the transactional outbox. Delivery is fire-and-forget: a
// non-2xx response, or no response at all, is logged and dropped; there is
// no local retry queue.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/domain/events"
	"github.com/google/uuid"
)

const (
	// EventHeader and SignatureHeader are the fixed header names every
	// outbound delivery carries.
	EventHeader     = "PayFlow-Event"
	SignatureHeader = "PayFlow-Signature"

	requestTimeout = 10 * time.Second
)

// payloadCarrier is satisfied by events deserialized off the outbox
// (persistence/postgres.genericEvent); it exposes the raw JSON the event was
// saved with so Dispatcher never needs a type switch per concrete event.
type payloadCarrier interface {
	Payload() []byte
}

// transactionCompletedPayload mirrors the exported fields of
// events.TransactionCompleted - the only fields that survive json.Marshal,
// since BaseEvent's fields are unexported.
type transactionCompletedPayload struct {
	PartnerID   string          `json:"PartnerID"`
	Type        string          `json:"Type"`
	Amount      json.RawMessage `json:"Amount"`
	CompletedAt time.Time       `json:"CompletedAt"`
}

// outboundEnvelope is the fixed envelope shape every delivery carries:
// {event, data, partnerId, timestamp}.
type outboundEnvelope struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	PartnerID string          `json:"partnerId"`
	Timestamp time.Time       `json:"timestamp"`
}

// Dispatcher delivers transaction.completed events to a partner's configured
// webhook URL, HMAC-SHA-256-signed under the partner's own secret.
type Dispatcher struct {
	partnerRepo ports.PartnerRepository
	httpClient  *http.Client
	logger      *slog.Logger
}

func NewDispatcher(partnerRepo ports.PartnerRepository, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		partnerRepo: partnerRepo,
		httpClient:  &http.Client{Timeout: requestTimeout},
		logger:      logger,
	}
}

// Dispatch delivers one domain event as an outbound partner webhook. Event
// types other than transaction.completed are a no-op - that is the only
// event type fanned out to partners today. A returned error means
// the event could not be processed at all (bad payload, partner lookup
// failure) and should be retried by the caller; a failed HTTP delivery is
// logged and swallowed, never retried.
func (d *Dispatcher) Dispatch(ctx context.Context, event events.DomainEvent) error {
	if event.EventType() != events.EventTypeTransactionCompleted {
		return nil
	}

	carrier, ok := event.(payloadCarrier)
	if !ok {
		return fmt.Errorf("webhook dispatch: event %s carries no payload", event.EventID())
	}

	var body transactionCompletedPayload
	if err := json.Unmarshal(carrier.Payload(), &body); err != nil {
		return fmt.Errorf("webhook dispatch: decode payload: %w", err)
	}
	if body.PartnerID == "" {
		return fmt.Errorf("webhook dispatch: event %s has no partner id", event.EventID())
	}

	partnerID, err := uuid.Parse(body.PartnerID)
	if err != nil {
		return fmt.Errorf("webhook dispatch: invalid partner id: %w", err)
	}
	p, err := d.partnerRepo.FindByID(ctx, partnerID)
	if err != nil {
		return fmt.Errorf("webhook dispatch: load partner: %w", err)
	}

	if p.WebhookURL() == "" {
		return nil
	}
	secret := p.WebhookSecret()
	if secret == "" {
		d.logger.Warn("partner has a webhook url but no signing secret, skipping delivery",
			slog.String("partnerId", p.ID().String()))
		return nil
	}

	raw, err := json.Marshal(outboundEnvelope{
		Event:     event.EventType(),
		Data:      carrier.Payload(),
		PartnerID: p.ID().String(),
		Timestamp: event.OccurredAt(),
	})
	if err != nil {
		return fmt.Errorf("webhook dispatch: encode body: %w", err)
	}

	d.deliver(ctx, p.ID().String(), p.WebhookURL(), secret, event.EventType(), raw)
	return nil
}

// deliver sends the signed request and logs (never returns) a delivery
// failure - non-2xx responses are logged and dropped.
func (d *Dispatcher) deliver(ctx context.Context, partnerID, url, secret, eventType string, body []byte) {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		d.logger.Warn("failed to build outbound webhook request",
			slog.String("partnerId", partnerID), slog.String("error", err.Error()))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(EventHeader, eventType)
	req.Header.Set(SignatureHeader, signature)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Warn("outbound partner webhook delivery failed",
			slog.String("partnerId", partnerID), slog.String("error", err.Error()))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		d.logger.Warn("outbound partner webhook rejected",
			slog.String("partnerId", partnerID), slog.Int("status", resp.StatusCode))
	}
}
