package events

import (
	"testing"
	"time"

	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// TestBaseEvent tests base event functionality
func TestBaseEvent(t *testing.T) {
	aggregateID := uuid.New()
	base := newBaseEvent("test.event", aggregateID)

	if base.EventID() == uuid.Nil {
		t.Error("EventID should not be nil")
	}

	if base.EventType() != "test.event" {
		t.Errorf("EventType() = %q, want %q", base.EventType(), "test.event")
	}

	if base.AggregateID() != aggregateID {
		t.Errorf("AggregateID() = %v, want %v", base.AggregateID(), aggregateID)
	}

	if base.OccurredAt().IsZero() {
		t.Error("OccurredAt should be set")
	}

	if time.Since(base.OccurredAt()) > 1*time.Second {
		t.Error("OccurredAt should be recent")
	}
}

func TestNewPartnerApproved(t *testing.T) {
	partnerID := uuid.New()
	event := NewPartnerApproved(partnerID)

	if event.EventType() != EventTypePartnerApproved {
		t.Errorf("EventType() = %q, want %q", event.EventType(), EventTypePartnerApproved)
	}
	if event.AggregateID() != partnerID {
		t.Errorf("AggregateID() = %v, want %v", event.AggregateID(), partnerID)
	}
	if event.PartnerID != partnerID {
		t.Errorf("PartnerID = %v, want %v", event.PartnerID, partnerID)
	}
}

func TestNewPartnerSuspended(t *testing.T) {
	partnerID := uuid.New()
	reason := "suspicious activity"
	event := NewPartnerSuspended(partnerID, reason)

	if event.EventType() != EventTypePartnerSuspended {
		t.Errorf("EventType() = %q, want %q", event.EventType(), EventTypePartnerSuspended)
	}
	if event.PartnerID != partnerID {
		t.Errorf("PartnerID = %v, want %v", event.PartnerID, partnerID)
	}
	if event.Reason != reason {
		t.Errorf("Reason = %q, want %q", event.Reason, reason)
	}
}

func TestNewApiKeyCreated(t *testing.T) {
	apiKeyID := uuid.New()
	partnerID := uuid.New()
	event := NewApiKeyCreated(apiKeyID, partnerID, "production")

	if event.EventType() != EventTypeApiKeyCreated {
		t.Errorf("EventType() = %q, want %q", event.EventType(), EventTypeApiKeyCreated)
	}
	if event.AggregateID() != apiKeyID {
		t.Errorf("AggregateID() = %v, want %v", event.AggregateID(), apiKeyID)
	}
	if event.PartnerID != partnerID {
		t.Errorf("PartnerID = %v, want %v", event.PartnerID, partnerID)
	}
	if event.Environment != "production" {
		t.Errorf("Environment = %q, want production", event.Environment)
	}
}

func TestNewApiKeyRevoked(t *testing.T) {
	apiKeyID := uuid.New()
	partnerID := uuid.New()
	event := NewApiKeyRevoked(apiKeyID, partnerID)

	if event.EventType() != EventTypeApiKeyRevoked {
		t.Errorf("EventType() = %q, want %q", event.EventType(), EventTypeApiKeyRevoked)
	}
	if event.PartnerID != partnerID {
		t.Errorf("PartnerID = %v, want %v", event.PartnerID, partnerID)
	}
}

func TestNewWalletCreated(t *testing.T) {
	walletID := uuid.New()
	partnerID := uuid.New()
	currency := valueobjects.USD

	event := NewWalletCreated(walletID, partnerID, currency)

	if event.EventType() != EventTypeWalletCreated {
		t.Errorf("EventType() = %q, want %q", event.EventType(), EventTypeWalletCreated)
	}
	if event.AggregateID() != walletID {
		t.Errorf("AggregateID() = %v, want %v", event.AggregateID(), walletID)
	}
	if event.PartnerID != partnerID {
		t.Errorf("PartnerID = %v, want %v", event.PartnerID, partnerID)
	}
	if !event.Currency.Equals(currency) {
		t.Errorf("Currency = %v, want %v", event.Currency, currency)
	}
}

func TestNewWalletSuspended(t *testing.T) {
	walletID := uuid.New()
	partnerID := uuid.New()
	reason := "suspicious activity"

	event := NewWalletSuspended(walletID, partnerID, reason)

	if event.EventType() != EventTypeWalletSuspended {
		t.Errorf("EventType() = %q, want %q", event.EventType(), EventTypeWalletSuspended)
	}
	if event.PartnerID != partnerID {
		t.Errorf("PartnerID = %v, want %v", event.PartnerID, partnerID)
	}
	if event.Reason != reason {
		t.Errorf("Reason = %q, want %q", event.Reason, reason)
	}
}

func TestNewTransactionCreated(t *testing.T) {
	transactionID := uuid.New()
	partnerID := uuid.New()
	amount, _ := valueobjects.NewMoney("100.00", valueobjects.USD)

	event := NewTransactionCreated(transactionID, partnerID, "credit", amount, "key-123")

	if event.EventType() != EventTypeTransactionCreated {
		t.Errorf("EventType() = %q, want %q", event.EventType(), EventTypeTransactionCreated)
	}
	if event.AggregateID() != transactionID {
		t.Errorf("AggregateID() = %v, want %v", event.AggregateID(), transactionID)
	}
	if event.PartnerID != partnerID {
		t.Errorf("PartnerID = %v, want %v", event.PartnerID, partnerID)
	}
	if event.Type != "credit" {
		t.Errorf("Type = %q, want credit", event.Type)
	}
	if !event.Amount.Equals(amount) {
		t.Errorf("Amount = %v, want %v", event.Amount, amount)
	}
	if event.IdempotencyKey != "key-123" {
		t.Errorf("IdempotencyKey = %q, want key-123", event.IdempotencyKey)
	}
}

func TestNewTransactionCompleted(t *testing.T) {
	transactionID := uuid.New()
	partnerID := uuid.New()
	amount, _ := valueobjects.NewMoney("100.00", valueobjects.USD)

	event := NewTransactionCompleted(transactionID, partnerID, "credit", amount)

	if event.EventType() != EventTypeTransactionCompleted {
		t.Errorf("EventType() = %q, want %q", event.EventType(), EventTypeTransactionCompleted)
	}
	if !event.Amount.Equals(amount) {
		t.Errorf("Amount = %v, want %v", event.Amount, amount)
	}
	if event.CompletedAt.IsZero() {
		t.Error("CompletedAt should be set")
	}
}

func TestNewTransactionFailed(t *testing.T) {
	transactionID := uuid.New()
	partnerID := uuid.New()
	amount, _ := valueobjects.NewMoney("100.00", valueobjects.USD)

	event := NewTransactionFailed(transactionID, partnerID, "credit", amount, "insufficient balance")

	if event.EventType() != EventTypeTransactionFailed {
		t.Errorf("EventType() = %q, want %q", event.EventType(), EventTypeTransactionFailed)
	}
	if event.FailureReason != "insufficient balance" {
		t.Errorf("FailureReason = %q, want %q", event.FailureReason, "insufficient balance")
	}
}

func TestNewLedgerEntryAppended(t *testing.T) {
	entryID := uuid.New()
	walletID := uuid.New()
	transactionID := uuid.New()
	amount, _ := valueobjects.NewMoney("100.00", valueobjects.USD)
	balanceAfter, _ := valueobjects.NewMoney("500.00", valueobjects.USD)

	event := NewLedgerEntryAppended(entryID, walletID, transactionID, amount, balanceAfter)

	if event.EventType() != EventTypeLedgerEntryAppended {
		t.Errorf("EventType() = %q, want %q", event.EventType(), EventTypeLedgerEntryAppended)
	}
	if event.WalletID != walletID {
		t.Errorf("WalletID = %v, want %v", event.WalletID, walletID)
	}
	if event.TransactionID != transactionID {
		t.Errorf("TransactionID = %v, want %v", event.TransactionID, transactionID)
	}
	if !event.BalanceAfter.Equals(balanceAfter) {
		t.Errorf("BalanceAfter = %v, want %v", event.BalanceAfter, balanceAfter)
	}
}

func TestNewFundingSessionCreated(t *testing.T) {
	sessionID := uuid.New()
	walletID := uuid.New()
	amount, _ := valueobjects.NewMoney("100.00", valueobjects.USD)

	event := NewFundingSessionCreated(sessionID, walletID, amount)

	if event.EventType() != EventTypeFundingSessionCreated {
		t.Errorf("EventType() = %q, want %q", event.EventType(), EventTypeFundingSessionCreated)
	}
	if event.WalletID != walletID {
		t.Errorf("WalletID = %v, want %v", event.WalletID, walletID)
	}
}

func TestNewFundingSessionCompleted(t *testing.T) {
	sessionID := uuid.New()
	walletID := uuid.New()
	amount, _ := valueobjects.NewMoney("100.00", valueobjects.USD)

	event := NewFundingSessionCompleted(sessionID, walletID, amount)

	if event.EventType() != EventTypeFundingSessionCompleted {
		t.Errorf("EventType() = %q, want %q", event.EventType(), EventTypeFundingSessionCompleted)
	}
}

func TestNewFundingSessionExpired(t *testing.T) {
	sessionID := uuid.New()
	walletID := uuid.New()

	event := NewFundingSessionExpired(sessionID, walletID)

	if event.EventType() != EventTypeFundingSessionExpired {
		t.Errorf("EventType() = %q, want %q", event.EventType(), EventTypeFundingSessionExpired)
	}
	if event.WalletID != walletID {
		t.Errorf("WalletID = %v, want %v", event.WalletID, walletID)
	}
}

func TestNewGatewayTransactionSynced(t *testing.T) {
	rowID := uuid.New()
	event := NewGatewayTransactionSynced(rowID, "stripe", "completed")

	if event.EventType() != EventTypeGatewayTransactionSynced {
		t.Errorf("EventType() = %q, want %q", event.EventType(), EventTypeGatewayTransactionSynced)
	}
	if event.Gateway != "stripe" {
		t.Errorf("Gateway = %q, want stripe", event.Gateway)
	}
	if event.Status != "completed" {
		t.Errorf("Status = %q, want completed", event.Status)
	}
}

// TestEventTypeConstants tests event type constants are all non-empty
func TestEventTypeConstants(t *testing.T) {
	constants := map[string]string{
		"EventTypePartnerApproved":          EventTypePartnerApproved,
		"EventTypePartnerSuspended":         EventTypePartnerSuspended,
		"EventTypeApiKeyCreated":            EventTypeApiKeyCreated,
		"EventTypeApiKeyRevoked":            EventTypeApiKeyRevoked,
		"EventTypeWalletCreated":            EventTypeWalletCreated,
		"EventTypeWalletSuspended":          EventTypeWalletSuspended,
		"EventTypeTransactionCreated":       EventTypeTransactionCreated,
		"EventTypeTransactionCompleted":     EventTypeTransactionCompleted,
		"EventTypeTransactionFailed":        EventTypeTransactionFailed,
		"EventTypeLedgerEntryAppended":      EventTypeLedgerEntryAppended,
		"EventTypeFundingSessionCreated":    EventTypeFundingSessionCreated,
		"EventTypeFundingSessionCompleted":  EventTypeFundingSessionCompleted,
		"EventTypeFundingSessionExpired":    EventTypeFundingSessionExpired,
		"EventTypeGatewayTransactionSynced": EventTypeGatewayTransactionSynced,
	}

	for name, value := range constants {
		if value == "" {
			t.Errorf("%s should not be empty", name)
		}
	}
}

func TestNewEventStore(t *testing.T) {
	store := NewEventStore()

	if store == nil {
		t.Fatal("NewEventStore should not return nil")
	}
	if store.Count() != 0 {
		t.Errorf("New store Count = %d, want 0", store.Count())
	}
	if len(store.GetAll()) != 0 {
		t.Errorf("New store should have empty events")
	}
}

func TestEventStore_Add(t *testing.T) {
	store := NewEventStore()
	partnerID := uuid.New()

	store.Add(NewPartnerApproved(partnerID))
	if store.Count() != 1 {
		t.Errorf("Count after 1 add = %d, want 1", store.Count())
	}

	store.Add(NewPartnerSuspended(partnerID, "reason"))
	if store.Count() != 2 {
		t.Errorf("Count after 2 adds = %d, want 2", store.Count())
	}
}

func TestEventStore_GetAll(t *testing.T) {
	store := NewEventStore()
	partnerID := uuid.New()

	store.Add(NewPartnerApproved(partnerID))
	store.Add(NewPartnerSuspended(partnerID, "reason"))

	all := store.GetAll()
	if len(all) != 2 {
		t.Fatalf("GetAll returned %d events, want 2", len(all))
	}
	if all[0].EventType() != EventTypePartnerApproved {
		t.Errorf("First event type = %q, want %q", all[0].EventType(), EventTypePartnerApproved)
	}
	if all[1].EventType() != EventTypePartnerSuspended {
		t.Errorf("Second event type = %q, want %q", all[1].EventType(), EventTypePartnerSuspended)
	}
}

func TestEventStore_Clear(t *testing.T) {
	store := NewEventStore()
	partnerID := uuid.New()

	store.Add(NewPartnerApproved(partnerID))
	store.Add(NewPartnerSuspended(partnerID, "reason"))

	if store.Count() != 2 {
		t.Fatalf("Setup failed: Count = %d, want 2", store.Count())
	}

	store.Clear()

	if store.Count() != 0 {
		t.Errorf("Count after Clear = %d, want 0", store.Count())
	}
	if len(store.GetAll()) != 0 {
		t.Error("GetAll after Clear should return empty slice")
	}
}

func TestEventStore_MultipleEventTypes(t *testing.T) {
	store := NewEventStore()
	partnerID := uuid.New()
	walletID := uuid.New()
	transactionID := uuid.New()
	amount, _ := valueobjects.NewMoney("100.00", valueobjects.USD)

	store.Add(NewPartnerApproved(partnerID))
	store.Add(NewWalletCreated(walletID, partnerID, valueobjects.USD))
	store.Add(NewTransactionCreated(transactionID, partnerID, "credit", amount, "key-123"))

	all := store.GetAll()
	if len(all) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(all))
	}

	if _, ok := all[0].(*PartnerApproved); !ok {
		t.Error("First event should be PartnerApproved")
	}
	if _, ok := all[1].(*WalletCreated); !ok {
		t.Error("Second event should be WalletCreated")
	}
	if _, ok := all[2].(*TransactionCreated); !ok {
		t.Error("Third event should be TransactionCreated")
	}
}

// TestEventInterface_Compliance tests that every event type implements DomainEvent
func TestEventInterface_Compliance(t *testing.T) {
	partnerID := uuid.New()
	walletID := uuid.New()
	transactionID := uuid.New()
	amount, _ := valueobjects.NewMoney("100.00", valueobjects.USD)

	all := []DomainEvent{
		NewPartnerApproved(partnerID),
		NewPartnerSuspended(partnerID, "reason"),
		NewWalletCreated(walletID, partnerID, valueobjects.USD),
		NewWalletSuspended(walletID, partnerID, "reason"),
		NewTransactionCreated(transactionID, partnerID, "credit", amount, "key"),
		NewTransactionCompleted(transactionID, partnerID, "credit", amount),
		NewTransactionFailed(transactionID, partnerID, "credit", amount, "reason"),
	}

	for i, event := range all {
		if event.EventID() == uuid.Nil {
			t.Errorf("Event %d: EventID should not be nil", i)
		}
		if event.EventType() == "" {
			t.Errorf("Event %d: EventType should not be empty", i)
		}
		if event.AggregateID() == uuid.Nil {
			t.Errorf("Event %d: AggregateID should not be nil", i)
		}
		if event.OccurredAt().IsZero() {
			t.Errorf("Event %d: OccurredAt should be set", i)
		}
	}
}

func TestEventStore_AddAfterClear(t *testing.T) {
	store := NewEventStore()
	partnerID := uuid.New()

	store.Add(NewPartnerApproved(partnerID))
	store.Clear()
	store.Add(NewPartnerSuspended(partnerID, "second reason"))

	if store.Count() != 1 {
		t.Errorf("Count after clear and add = %d, want 1", store.Count())
	}

	all := store.GetAll()
	if suspended, ok := all[0].(*PartnerSuspended); ok {
		if suspended.Reason != "second reason" {
			t.Errorf("Reason = %q, want %q", suspended.Reason, "second reason")
		}
	} else {
		t.Error("Event should be PartnerSuspended type")
	}
}
