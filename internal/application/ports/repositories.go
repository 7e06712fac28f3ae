// Package ports defines the interfaces the application layer depends on and
// the infrastructure layer implements (Dependency Inversion — application
// never imports pgx or any other driver directly).
package ports

import (
	"context"
	"time"

	"github.com/Haleralex/payflow/internal/domain/entities"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// PartnerRepository persists partner tenants.
type PartnerRepository interface {
	Save(ctx context.Context, partner *entities.Partner) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Partner, error)
	List(ctx context.Context, offset, limit int) ([]*entities.Partner, error)
}

// ApiKeyRepository persists partner API keys, addressed by ID or by the
// SHA-256 hash of the secret presented on each request.
type ApiKeyRepository interface {
	Save(ctx context.Context, key *entities.ApiKey) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ApiKey, error)
	FindByHash(ctx context.Context, hash string) (*entities.ApiKey, error)
	FindByPartnerID(ctx context.Context, partnerID uuid.UUID) ([]*entities.ApiKey, error)
}

// WalletFilter narrows a wallet listing.
type WalletFilter struct {
	PartnerID *uuid.UUID
	Currency  *valueobjects.Currency
	Status    *entities.WalletStatus
}

// WalletRepository persists wallets. Wallets carry no balance column —
// balance is only ever derived by reading the latest LedgerEntry
// , so this interface has no "save with a new
// balance" method at all.
type WalletRepository interface {
	Save(ctx context.Context, wallet *entities.Wallet) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)
	// FindByIDForUpdate loads a wallet and takes a row lock (SELECT... FOR
	// UPDATE) for the duration of the enclosing unit of work. Required by the
	// ledger engine and the orchestrator before any posting.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)
	FindByExternalWalletID(ctx context.Context, partnerID uuid.UUID, externalWalletID string) (*entities.Wallet, error)
	FindByPartnerID(ctx context.Context, partnerID uuid.UUID, filter WalletFilter, offset, limit int) ([]*entities.Wallet, error)
	// FindClearingWallet returns the partner's clearing wallet for a currency,
	// creating one on first use is the caller's responsibility — this method
	// only reads. There is one clearing wallet per partner per currency.
	FindClearingWallet(ctx context.Context, partnerID uuid.UUID, currency valueobjects.Currency) (*entities.Wallet, error)
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	WalletID *uuid.UUID
	Type     *entities.TransactionType
	Status   *entities.TransactionStatus
}

// TransactionRepository persists transactions. FindByIdempotencyKey backs
// the idempotent-replay check the orchestrator runs before posting.
type TransactionRepository interface {
	Save(ctx context.Context, tx *entities.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
	FindByIdempotencyKey(ctx context.Context, partnerID uuid.UUID, key string) (*entities.Transaction, error)
	FindByWalletID(ctx context.Context, walletID uuid.UUID, filter TransactionFilter, offset, limit int) ([]*entities.Transaction, error)
	FindByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*entities.Transaction, error)
}

// LedgerEntryRepository persists the append-only ledger. Entries are never
// updated or deleted once written.
type LedgerEntryRepository interface {
	// Append inserts an entry. Implementations must run inside the caller's
	// unit-of-work transaction — the ledger engine is the only caller.
	Append(ctx context.Context, entry *entities.LedgerEntry) error
	// LatestBalance returns the balance carried by the most recent entry for
	// a wallet, or a zero Money in the wallet's currency if none exists yet.
	LatestBalance(ctx context.Context, walletID uuid.UUID, currency valueobjects.Currency) (valueobjects.Money, error)
	FindByWalletID(ctx context.Context, walletID uuid.UUID, offset, limit int) ([]*entities.LedgerEntry, error)
	FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*entities.LedgerEntry, error)
}

// GatewayTransactionRepository persists processor-side event records.
// Save is insert-or-ignore on gateway_transaction_id so a replayed webhook
// never creates a second row.
type GatewayTransactionRepository interface {
	Save(ctx context.Context, gt *entities.GatewayTransaction) error
	FindByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*entities.GatewayTransaction, error)
}

// FundingSessionRepository persists hosted funding sessions.
type FundingSessionRepository interface {
	Save(ctx context.Context, session *entities.FundingSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*entities.FundingSession, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.FundingSession, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*entities.FundingSession, error)
	FindByWalletID(ctx context.Context, walletID uuid.UUID, offset, limit int) ([]*entities.FundingSession, error)
	// FindExpirable returns created or active sessions whose expiresAt has passed,
	// for the background expiry sweep.
	FindExpirable(ctx context.Context, asOf time.Time, limit int) ([]*entities.FundingSession, error)
}
