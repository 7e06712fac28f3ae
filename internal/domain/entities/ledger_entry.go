package entities

import (
	"time"

	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// LedgerEntryType is one side of a balanced post.
type LedgerEntryType string

const (
	LedgerEntryTypeDebit  LedgerEntryType = "debit"
	LedgerEntryTypeCredit LedgerEntryType = "credit"
)

func (t LedgerEntryType) IsValid() bool {
	return t == LedgerEntryTypeDebit || t == LedgerEntryTypeCredit
}

// LedgerEntry is an append-only post. balance is the wallet
// balance AFTER this entry, computed at append time inside the ledger engine
// under a row lock — never recomputed or cached elsewhere.
// No entry is ever deleted or mutated once inserted.
type LedgerEntry struct {
	id            uuid.UUID
	transactionID uuid.UUID
	walletID      uuid.UUID
	entryType     LedgerEntryType
	amount        valueobjects.Money
	balance       valueobjects.Money
	description   string
	createdAt     time.Time
}

// NewLedgerEntry constructs a new, unpersisted ledger entry. Called only from
// within the ledger engine's Append (internal/application/ledger), which is
// the sole place balance is computed — see.
func NewLedgerEntry(transactionID, walletID uuid.UUID, entryType LedgerEntryType, amount, balance valueobjects.Money, description string) *LedgerEntry {
	return &LedgerEntry{
		id:            uuid.New(),
		transactionID: transactionID,
		walletID:      walletID,
		entryType:     entryType,
		amount:        amount,
		balance:       balance,
		description:   description,
		createdAt:     time.Now().UTC(),
	}
}

// ReconstructLedgerEntry rebuilds a LedgerEntry from persisted state.
func ReconstructLedgerEntry(
	id, transactionID, walletID uuid.UUID,
	entryType LedgerEntryType,
	amount, balance valueobjects.Money,
	description string,
	createdAt time.Time,
) *LedgerEntry {
	return &LedgerEntry{
		id:            id,
		transactionID: transactionID,
		walletID:      walletID,
		entryType:     entryType,
		amount:        amount,
		balance:       balance,
		description:   description,
		createdAt:     createdAt,
	}
}

func (e *LedgerEntry) ID() uuid.UUID               { return e.id }
func (e *LedgerEntry) TransactionID() uuid.UUID    { return e.transactionID }
func (e *LedgerEntry) WalletID() uuid.UUID         { return e.walletID }
func (e *LedgerEntry) Type() LedgerEntryType       { return e.entryType }
func (e *LedgerEntry) Amount() valueobjects.Money  { return e.amount }
func (e *LedgerEntry) Balance() valueobjects.Money { return e.balance }
func (e *LedgerEntry) Description() string         { return e.description }
func (e *LedgerEntry) CreatedAt() time.Time        { return e.createdAt }
