// Package dtos - wallet request/response shapes.
package dtos

import "time"

// CreateWalletCommand opens a new wallet. Only the currency is mandatory;
// name and the partner-supplied external ids are optional conveniences.
type CreateWalletCommand struct {
	Name             string `json:"name"`
	CurrencyCode     string `json:"currency" binding:"required,currency_code"`
	ExternalUserID   string `json:"externalUserId"`
	ExternalWalletID string `json:"externalWalletId"`
}

// ListWalletsQuery filters a partner's wallet listing.
type ListWalletsQuery struct {
	CurrencyCode *string `json:"currency,omitempty" binding:"omitempty,currency_code"`
	Status       *string `json:"status,omitempty" binding:"omitempty,oneof=active suspended closed"`
	Offset       int     `json:"offset" binding:"min=0"`
	Limit        int     `json:"limit" binding:"min=1,max=100"`
}

// WalletDTO is a wallet as exposed through the partner API. Balance is
// always computed fresh from the ledger at read time, never
// stored on the wallet row.
type WalletDTO struct {
	ID               string    `json:"id"`
	ExternalUserID   string    `json:"externalUserId"`
	ExternalWalletID string    `json:"externalWalletId"`
	Name             string    `json:"name"`
	CurrencyCode     string    `json:"currency"`
	Status           string    `json:"status"`
	Balance          string    `json:"balance"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// WalletBalanceDTO is the balance endpoint's reply.
type WalletBalanceDTO struct {
	Balance      string `json:"balance"`
	CurrencyCode string `json:"currency"`
}

// WalletListDTO is a page of wallets.
type WalletListDTO struct {
	Wallets []WalletDTO `json:"wallets"`
	Offset  int         `json:"offset"`
	Limit   int         `json:"limit"`
}
