// Package dtos - transaction request/response shapes.
package dtos

import "time"

// PostTransactionCommand is the single entry point command for posting a
// transaction: credit, debit, or transfer.
type PostTransactionCommand struct {
	Type           string                 `json:"type" binding:"required,oneof=credit debit transfer"`
	Amount         string                 `json:"amount" binding:"required,money_amount"`
	CurrencyCode   string                 `json:"currency" binding:"required,currency_code"`
	FromWalletID   string                 `json:"fromWalletId,omitempty" binding:"omitempty,uuid"`
	ToWalletID     string                 `json:"toWalletId,omitempty" binding:"omitempty,uuid"`
	IdempotencyKey string                 `json:"idempotencyKey" binding:"required,idempotency_key"`
	Description    string                 `json:"description"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// WalletMovementCommand is the body of the per-wallet credit and debit
// endpoints. The wallet itself is named by the path, the direction by the
// route, so only amount, currency and the idempotency key travel in the body.
type WalletMovementCommand struct {
	Amount         string `json:"amount" binding:"required,money_amount"`
	CurrencyCode   string `json:"currency" binding:"required,currency_code"`
	Description    string `json:"description"`
	IdempotencyKey string `json:"idempotencyKey" binding:"required,idempotency_key"`
}

// TransferCommand moves funds between two wallets of the same partner.
type TransferCommand struct {
	FromWalletID   string `json:"fromWalletId" binding:"required,uuid"`
	ToWalletID     string `json:"toWalletId" binding:"required,uuid"`
	Amount         string `json:"amount" binding:"required,money_amount"`
	CurrencyCode   string `json:"currency" binding:"required,currency_code"`
	Description    string `json:"description"`
	IdempotencyKey string `json:"idempotencyKey" binding:"required,idempotency_key"`
}

// CreatePayoutCommand initiates an external payout: the named wallet is
// debited and the amount is disbursed to the destination through the
// card processor's payout rail.
type CreatePayoutCommand struct {
	WalletID       string `json:"walletId" binding:"required,uuid"`
	Destination    string `json:"destination" binding:"required"`
	Amount         string `json:"amount" binding:"required,money_amount"`
	CurrencyCode   string `json:"currency" binding:"required,currency_code"`
	Description    string `json:"description"`
	IdempotencyKey string `json:"idempotencyKey" binding:"required,idempotency_key"`
}

// ListTransactionsQuery filters a wallet's transaction listing.
type ListTransactionsQuery struct {
	Type   *string `json:"type,omitempty" binding:"omitempty,oneof=credit debit transfer"`
	Status *string `json:"status,omitempty" binding:"omitempty,oneof=pending completed failed cancelled"`
	Offset int     `json:"offset" binding:"min=0"`
	Limit  int     `json:"limit" binding:"min=1,max=100"`
}

// TransactionDTO is a transaction as exposed through the partner API.
type TransactionDTO struct {
	ID                   string    `json:"id"`
	Type                 string    `json:"type"`
	Status               string    `json:"status"`
	Amount               string    `json:"amount"`
	CurrencyCode         string    `json:"currency"`
	FromWalletID         *string   `json:"fromWalletId,omitempty"`
	ToWalletID           *string   `json:"toWalletId,omitempty"`
	IdempotencyKey       string    `json:"idempotencyKey"`
	Description          string    `json:"description,omitempty"`
	GatewayTransactionID string    `json:"gatewayTransactionId,omitempty"`
	Gateway              string    `json:"gateway,omitempty"`
	FailureReason        string    `json:"failureReason,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// TransactionListDTO is a page of transactions.
type TransactionListDTO struct {
	Transactions []TransactionDTO `json:"transactions"`
	Offset       int              `json:"offset"`
	Limit        int              `json:"limit"`
}

// LedgerEntryDTO is one posted entry, used by the wallet-ledger endpoint.
type LedgerEntryDTO struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transactionId"`
	WalletID      string    `json:"walletId"`
	Type          string    `json:"type"`
	Amount        string    `json:"amount"`
	Balance       string    `json:"balance"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// LedgerEntryListDTO is a page of ledger entries.
type LedgerEntryListDTO struct {
	Entries []LedgerEntryDTO `json:"entries"`
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
}
