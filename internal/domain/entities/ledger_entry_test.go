package entities

import (
	"testing"
	"time"

	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/google/uuid"
)

func TestLedgerEntryType_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		typ      LedgerEntryType
		expected bool
	}{
		{"debit is valid", LedgerEntryTypeDebit, true},
		{"credit is valid", LedgerEntryTypeCredit, true},
		{"invalid type", LedgerEntryType("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.IsValid(); got != tt.expected {
				t.Errorf("IsValid = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewLedgerEntry(t *testing.T) {
	txID := uuid.New()
	walletID := uuid.New()
	amount := mustMoney(t, "25.00")
	balance := mustMoney(t, "125.00")

	entry := NewLedgerEntry(txID, walletID, LedgerEntryTypeCredit, amount, balance, "funding settlement")

	if entry.ID() == uuid.Nil {
		t.Error("expected a generated id")
	}
	if entry.TransactionID() != txID {
		t.Errorf("TransactionID = %v, want %v", entry.TransactionID(), txID)
	}
	if entry.WalletID() != walletID {
		t.Errorf("WalletID = %v, want %v", entry.WalletID(), walletID)
	}
	if entry.Type() != LedgerEntryTypeCredit {
		t.Errorf("Type = %v, want %v", entry.Type(), LedgerEntryTypeCredit)
	}
	if !entry.Amount().Equals(amount) {
		t.Errorf("Amount = %v, want %v", entry.Amount(), amount)
	}
	if !entry.Balance().Equals(balance) {
		t.Errorf("Balance = %v, want %v", entry.Balance(), balance)
	}
	if entry.Description() != "funding settlement" {
		t.Errorf("Description = %q, want %q", entry.Description(), "funding settlement")
	}
}

func TestReconstructLedgerEntry(t *testing.T) {
	id := uuid.New()
	txID := uuid.New()
	walletID := uuid.New()
	now := time.Now()
	amount := mustMoney(t, "10.00")
	balance := mustMoney(t, "10.00")

	entry := ReconstructLedgerEntry(id, txID, walletID, LedgerEntryTypeDebit, amount, balance, "seed", now)

	if entry.ID() != id {
		t.Errorf("ID = %v, want %v", entry.ID(), id)
	}
	if !entry.CreatedAt().Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", entry.CreatedAt(), now)
	}
}

func TestLedgerEntry_ZeroAmountIsPreserved(t *testing.T) {
	zero := valueobjects.Zero(valueobjects.USD)
	entry := NewLedgerEntry(uuid.New(), uuid.New(), LedgerEntryTypeCredit, zero, zero, "")
	if !entry.Amount().IsZero() {
		t.Error("expected a zero amount to round-trip as zero")
	}
}
