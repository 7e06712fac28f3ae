package entities

import (
	"time"

	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// WalletStatus is the status machine of : active/suspended/closed.
type WalletStatus string

const (
	WalletStatusActive    WalletStatus = "active"
	WalletStatusSuspended WalletStatus = "suspended"
	WalletStatusClosed    WalletStatus = "closed"
)

func (s WalletStatus) IsValid() bool {
	switch s {
	case WalletStatusActive, WalletStatusSuspended, WalletStatusClosed:
		return true
	}
	return false
}

// Wallet is a partner-scoped account. Unlike // Wallet, this entity carries NO balance or version field: balance is never
// stored on the wallet row, only derived from the latest LedgerEntry
// balance is always derived from the ledger.
// A wallet may never change partner or currency once created.
type Wallet struct {
	id               uuid.UUID
	partnerID        uuid.UUID
	externalUserID   string
	externalWalletID string
	name             string
	currency         valueobjects.Currency
	status           WalletStatus
	isClearing       bool
	createdAt        time.Time
	updatedAt        time.Time
}

// NewWallet creates a new active wallet in a partner's scope.
func NewWallet(partnerID uuid.UUID, name string, currency valueobjects.Currency, externalUserID, externalWalletID string) (*Wallet, error) {
	if currency.IsZero() {
		return nil, domainerrors.ValidationError{Field: "currency", Message: "currency is required"}
	}
	now := time.Now().UTC()
	return &Wallet{
		id:               uuid.New(),
		partnerID:        partnerID,
		externalUserID:   externalUserID,
		externalWalletID: externalWalletID,
		name:             name,
		currency:         currency,
		status:           WalletStatusActive,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// NewClearingWallet creates the internal, partner-owned clearing wallet that
// keeps single-sided credits/debits double-entry. Never exposed
// through the partner API.
func NewClearingWallet(partnerID uuid.UUID, currency valueobjects.Currency) (*Wallet, error) {
	w, err := NewWallet(partnerID, "clearing:"+currency.Code(), currency, "", "")
	if err != nil {
		return nil, err
	}
	w.isClearing = true
	return w, nil
}

// ReconstructWallet rebuilds a Wallet from persisted state.
func ReconstructWallet(
	id, partnerID uuid.UUID,
	externalUserID, externalWalletID, name string,
	currency valueobjects.Currency,
	status WalletStatus,
	isClearing bool,
	createdAt, updatedAt time.Time,
) *Wallet {
	return &Wallet{
		id:               id,
		partnerID:        partnerID,
		externalUserID:   externalUserID,
		externalWalletID: externalWalletID,
		name:             name,
		currency:         currency,
		status:           status,
		isClearing:       isClearing,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (w *Wallet) ID() uuid.UUID                   { return w.id }
func (w *Wallet) PartnerID() uuid.UUID            { return w.partnerID }
func (w *Wallet) ExternalUserID() string          { return w.externalUserID }
func (w *Wallet) ExternalWalletID() string        { return w.externalWalletID }
func (w *Wallet) Name() string                    { return w.name }
func (w *Wallet) Currency() valueobjects.Currency { return w.currency }
func (w *Wallet) Status() WalletStatus            { return w.status }
func (w *Wallet) IsClearing() bool                { return w.isClearing }
func (w *Wallet) CreatedAt() time.Time            { return w.createdAt }
func (w *Wallet) UpdatedAt() time.Time            { return w.updatedAt }

// IsActive reports whether postings may be made against this wallet
// suspended and closed wallets reject postings.
func (w *Wallet) IsActive() bool {
	return w.status == WalletStatusActive
}

// BelongsToPartner enforces wallet-ownership.
func (w *Wallet) BelongsToPartner(partnerID uuid.UUID) bool {
	return w.partnerID == partnerID
}

// Suspend transitions active -> suspended.
func (w *Wallet) Suspend() error {
	if w.status != WalletStatusActive {
		return domainerrors.NewBusinessRuleViolation("WalletStatus", "only an active wallet can be suspended", nil)
	}
	w.status = WalletStatusSuspended
	w.updatedAt = time.Now().UTC()
	return nil
}

// Activate transitions suspended -> active.
func (w *Wallet) Activate() error {
	if w.status != WalletStatusSuspended {
		return domainerrors.NewBusinessRuleViolation("WalletStatus", "only a suspended wallet can be reactivated", nil)
	}
	w.status = WalletStatusActive
	w.updatedAt = time.Now().UTC()
	return nil
}

// Close transitions any non-closed status to closed. Terminal.
func (w *Wallet) Close() error {
	if w.status == WalletStatusClosed {
		return domainerrors.NewBusinessRuleViolation("WalletStatus", "wallet is already closed", nil)
	}
	w.status = WalletStatusClosed
	w.updatedAt = time.Now().UTC()
	return nil
}
