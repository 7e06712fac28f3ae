// Package events defines the domain events raised by entities as their state
// changes. Events are immutable facts about what already happened; they are
// collected on an EventStore during a use case and handed to the outbox for
// at-least-once delivery.
package events

import (
	"time"

	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// DomainEvent is the common shape every event satisfies, so the outbox can
// serialize and route them without a type switch on every concrete type.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
}

// BaseEvent carries the fields every event needs; embed it to avoid
// repeating them on each concrete event type.
type BaseEvent struct {
	eventID     uuid.UUID
	eventType   string
	occurredAt  time.Time
	aggregateID uuid.UUID
}

func newBaseEvent(eventType string, aggregateID uuid.UUID) BaseEvent {
	return BaseEvent{
		eventID:     uuid.New(),
		eventType:   eventType,
		occurredAt:  time.Now().UTC(),
		aggregateID: aggregateID,
	}
}

func (e BaseEvent) EventID() uuid.UUID     { return e.eventID }
func (e BaseEvent) EventType() string      { return e.eventType }
func (e BaseEvent) OccurredAt() time.Time  { return e.occurredAt }
func (e BaseEvent) AggregateID() uuid.UUID { return e.aggregateID }

// Event type constants double as the NATS subject suffix
// (payflow.events.<type>) and as the outbox's aggregateType-derived
// routing key.
const (
	EventTypePartnerApproved          = "partner.approved"
	EventTypePartnerSuspended         = "partner.suspended"
	EventTypeApiKeyCreated            = "api_key.created"
	EventTypeApiKeyRevoked            = "api_key.revoked"
	EventTypeWalletCreated            = "wallet.created"
	EventTypeWalletSuspended          = "wallet.suspended"
	EventTypeTransactionCreated       = "transaction.created"
	EventTypeTransactionCompleted     = "transaction.completed"
	EventTypeTransactionFailed        = "transaction.failed"
	EventTypeLedgerEntryAppended      = "ledger_entry.appended"
	EventTypeFundingSessionCreated    = "funding_session.created"
	EventTypeFundingSessionCompleted  = "funding_session.completed"
	EventTypeFundingSessionExpired    = "funding_session.expired"
	EventTypeGatewayTransactionSynced = "gateway_transaction.synced"
)

// ===== Partner events =====

// PartnerApproved is raised when an admin moves a partner out of pending
// review.
type PartnerApproved struct {
	BaseEvent
	PartnerID uuid.UUID
}

func NewPartnerApproved(partnerID uuid.UUID) *PartnerApproved {
	return &PartnerApproved{BaseEvent: newBaseEvent(EventTypePartnerApproved, partnerID), PartnerID: partnerID}
}

// PartnerSuspended is raised when a partner is suspended, which must also
// block all further transaction posting for that partner.
type PartnerSuspended struct {
	BaseEvent
	PartnerID uuid.UUID
	Reason    string
}

func NewPartnerSuspended(partnerID uuid.UUID, reason string) *PartnerSuspended {
	return &PartnerSuspended{BaseEvent: newBaseEvent(EventTypePartnerSuspended, partnerID), PartnerID: partnerID, Reason: reason}
}

// ===== API key events =====

// ApiKeyCreated is raised when a new key is minted for a partner. Never
// carries the secret or its hash — only identifying metadata.
type ApiKeyCreated struct {
	BaseEvent
	PartnerID   uuid.UUID
	Environment string
}

func NewApiKeyCreated(apiKeyID, partnerID uuid.UUID, environment string) *ApiKeyCreated {
	return &ApiKeyCreated{BaseEvent: newBaseEvent(EventTypeApiKeyCreated, apiKeyID), PartnerID: partnerID, Environment: environment}
}

// ApiKeyRevoked is raised when a key is deactivated.
type ApiKeyRevoked struct {
	BaseEvent
	PartnerID uuid.UUID
}

func NewApiKeyRevoked(apiKeyID, partnerID uuid.UUID) *ApiKeyRevoked {
	return &ApiKeyRevoked{BaseEvent: newBaseEvent(EventTypeApiKeyRevoked, apiKeyID), PartnerID: partnerID}
}

// ===== Wallet events =====

// WalletCreated is raised when a new wallet is opened in a partner's scope.
type WalletCreated struct {
	BaseEvent
	PartnerID uuid.UUID
	Currency  valueobjects.Currency
}

func NewWalletCreated(walletID, partnerID uuid.UUID, currency valueobjects.Currency) *WalletCreated {
	return &WalletCreated{BaseEvent: newBaseEvent(EventTypeWalletCreated, walletID), PartnerID: partnerID, Currency: currency}
}

// WalletSuspended is raised when a wallet is suspended, which blocks further
// postings against it.
type WalletSuspended struct {
	BaseEvent
	PartnerID uuid.UUID
	Reason    string
}

func NewWalletSuspended(walletID, partnerID uuid.UUID, reason string) *WalletSuspended {
	return &WalletSuspended{BaseEvent: newBaseEvent(EventTypeWalletSuspended, walletID), PartnerID: partnerID, Reason: reason}
}

// ===== Transaction events =====

// TransactionCreated is raised once the orchestrator admits a new pending
// transaction.
type TransactionCreated struct {
	BaseEvent
	PartnerID      uuid.UUID
	Type           string
	Amount         valueobjects.Money
	IdempotencyKey string
}

func NewTransactionCreated(transactionID, partnerID uuid.UUID, txType string, amount valueobjects.Money, idempotencyKey string) *TransactionCreated {
	return &TransactionCreated{
		BaseEvent:      newBaseEvent(EventTypeTransactionCreated, transactionID),
		PartnerID:      partnerID,
		Type:           txType,
		Amount:         amount,
		IdempotencyKey: idempotencyKey,
	}
}

// TransactionCompleted is raised after the ledger engine successfully posts
// both entries. This is the event that fans out to a partner's outbound
// webhook endpoint via the transactional outbox.
type TransactionCompleted struct {
	BaseEvent
	PartnerID   uuid.UUID
	Type        string
	Amount      valueobjects.Money
	CompletedAt time.Time
}

func NewTransactionCompleted(transactionID, partnerID uuid.UUID, txType string, amount valueobjects.Money) *TransactionCompleted {
	return &TransactionCompleted{
		BaseEvent:   newBaseEvent(EventTypeTransactionCompleted, transactionID),
		PartnerID:   partnerID,
		Type:        txType,
		Amount:      amount,
		CompletedAt: time.Now().UTC(),
	}
}

// TransactionFailed is raised when posting fails, most commonly on
// insufficient balance.
type TransactionFailed struct {
	BaseEvent
	PartnerID     uuid.UUID
	Type          string
	Amount        valueobjects.Money
	FailureReason string
}

func NewTransactionFailed(transactionID, partnerID uuid.UUID, txType string, amount valueobjects.Money, failureReason string) *TransactionFailed {
	return &TransactionFailed{
		BaseEvent:     newBaseEvent(EventTypeTransactionFailed, transactionID),
		PartnerID:     partnerID,
		Type:          txType,
		Amount:        amount,
		FailureReason: failureReason,
	}
}

// ===== Ledger events =====

// LedgerEntryAppended is raised for each side of a balanced post, carrying
// the balance computed at append time.
type LedgerEntryAppended struct {
	BaseEvent
	WalletID      uuid.UUID
	TransactionID uuid.UUID
	Amount        valueobjects.Money
	BalanceAfter  valueobjects.Money
}

func NewLedgerEntryAppended(entryID, walletID, transactionID uuid.UUID, amount, balanceAfter valueobjects.Money) *LedgerEntryAppended {
	return &LedgerEntryAppended{
		BaseEvent:     newBaseEvent(EventTypeLedgerEntryAppended, entryID),
		WalletID:      walletID,
		TransactionID: transactionID,
		Amount:        amount,
		BalanceAfter:  balanceAfter,
	}
}

// ===== Funding session events =====

// FundingSessionCreated is raised when a new hosted funding session is opened
// against a processor.
type FundingSessionCreated struct {
	BaseEvent
	WalletID uuid.UUID
	Amount   valueobjects.Money
}

func NewFundingSessionCreated(sessionID, walletID uuid.UUID, amount valueobjects.Money) *FundingSessionCreated {
	return &FundingSessionCreated{BaseEvent: newBaseEvent(EventTypeFundingSessionCreated, sessionID), WalletID: walletID, Amount: amount}
}

// FundingSessionCompleted is raised once a funding session's payment succeeds
// and the matching ledger post lands (processSuccess).
type FundingSessionCompleted struct {
	BaseEvent
	WalletID uuid.UUID
	Amount   valueobjects.Money
}

func NewFundingSessionCompleted(sessionID, walletID uuid.UUID, amount valueobjects.Money) *FundingSessionCompleted {
	return &FundingSessionCompleted{BaseEvent: newBaseEvent(EventTypeFundingSessionCompleted, sessionID), WalletID: walletID, Amount: amount}
}

// FundingSessionExpired is raised by the background expiry sweep when a
// funding session passes its deadline without completing.
type FundingSessionExpired struct {
	BaseEvent
	WalletID uuid.UUID
}

func NewFundingSessionExpired(sessionID, walletID uuid.UUID) *FundingSessionExpired {
	return &FundingSessionExpired{BaseEvent: newBaseEvent(EventTypeFundingSessionExpired, sessionID), WalletID: walletID}
}

// ===== Gateway transaction events =====

// GatewayTransactionSynced is raised when an inbound processor webhook has
// been verified and recorded.
type GatewayTransactionSynced struct {
	BaseEvent
	Gateway string
	Status  string
}

func NewGatewayTransactionSynced(gatewayTransactionRowID uuid.UUID, gateway, status string) *GatewayTransactionSynced {
	return &GatewayTransactionSynced{BaseEvent: newBaseEvent(EventTypeGatewayTransactionSynced, gatewayTransactionRowID), Gateway: gateway, Status: status}
}

// EventStore collects the events an application-layer use case raises so
// they can be persisted to the outbox atomically with the state change that
// produced them (transactional outbox pattern).
type EventStore struct {
	events []DomainEvent
}

// NewEventStore creates an empty event store.
func NewEventStore() *EventStore {
	return &EventStore{events: make([]DomainEvent, 0)}
}

// Add appends an event to the store.
func (s *EventStore) Add(event DomainEvent) {
	s.events = append(s.events, event)
}

// GetAll returns all collected events.
func (s *EventStore) GetAll() []DomainEvent {
	return s.events
}

// Clear empties the store.
func (s *EventStore) Clear() {
	s.events = make([]DomainEvent, 0)
}

// Count returns the number of events currently held.
func (s *EventStore) Count() int {
	return len(s.events)
}
