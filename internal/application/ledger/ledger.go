// Package ledger implements the double-entry posting engine: the one place
// in the system allowed to compute a wallet's balance.
package ledger

import (
	"context"
	"fmt"

	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/domain/entities"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// Post is one side of a balanced append: a single wallet, debit or credit, a
// positive amount, and a human-readable description.
type Post struct {
	WalletID    uuid.UUID
	Type        entities.LedgerEntryType
	Amount      valueobjects.Money
	Description string
}

// Engine appends balanced sets of posts to the ledger. It is
// the only component in the system that computes a wallet's new balance —
// entities, repositories and use cases never do.
type Engine struct {
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerEntryRepository
}

// NewEngine constructs a ledger Engine.
func NewEngine(walletRepo ports.WalletRepository, ledgerRepo ports.LedgerEntryRepository) *Engine {
	return &Engine{walletRepo: walletRepo, ledgerRepo: ledgerRepo}
}

// Append posts a balanced set of entries for one transaction, under a row
// lock on every wallet involved (preconditions):
//
// 1. the sum of credits equals the sum of debits (balanced)
// 2. every post uses the same currency
// 3. every referenced wallet exists, is active, and matches that currency
//
// It must be called from inside the caller's unit-of-work transaction — the
// row locks taken here only hold for the duration of that transaction.
func (e *Engine) Append(ctx context.Context, transactionID uuid.UUID, posts []Post) ([]*entities.LedgerEntry, error) {
	if len(posts) == 0 {
		return nil, domainerrors.NewBusinessRuleViolation("LedgerPost", "at least one post is required", nil)
	}

	currency := posts[0].Amount.Currency()
	var debitTotal, creditTotal valueobjects.Money
	debitTotal = valueobjects.Zero(currency)
	creditTotal = valueobjects.Zero(currency)

	for _, p := range posts {
		if !p.Amount.Currency().Equals(currency) {
			return nil, domainerrors.ErrLedgerCurrencyMismatch
		}
		if !p.Amount.IsPositive() {
			return nil, domainerrors.NewBusinessRuleViolation("LedgerPost", "post amounts must be strictly positive", nil)
		}
		switch p.Type {
		case entities.LedgerEntryTypeDebit:
			sum, err := debitTotal.Add(p.Amount)
			if err != nil {
				return nil, err
			}
			debitTotal = sum
		case entities.LedgerEntryTypeCredit:
			sum, err := creditTotal.Add(p.Amount)
			if err != nil {
				return nil, err
			}
			creditTotal = sum
		default:
			return nil, domainerrors.NewBusinessRuleViolation("LedgerPost", "unknown entry type", nil)
		}
	}

	if !debitTotal.Equals(creditTotal) {
		return nil, domainerrors.ErrUnbalancedPost
	}

	entries := make([]*entities.LedgerEntry, 0, len(posts))
	for _, p := range posts {
		wallet, err := e.walletRepo.FindByIDForUpdate(ctx, p.WalletID)
		if err != nil {
			if domainerrors.IsNotFound(err) {
				return nil, fmt.Errorf("%w: wallet %s", domainerrors.ErrEntityNotFound, p.WalletID)
			}
			return nil, fmt.Errorf("failed to lock wallet: %w", err)
		}
		if !wallet.IsActive() {
			return nil, domainerrors.ErrWalletNotActive
		}
		if !wallet.Currency().Equals(p.Amount.Currency()) {
			return nil, domainerrors.ErrWalletCurrencyMismatch
		}

		currentBalance, err := e.ledgerRepo.LatestBalance(ctx, p.WalletID, wallet.Currency())
		if err != nil {
			return nil, fmt.Errorf("failed to read current balance: %w", err)
		}

		var newBalance valueobjects.Money
		switch p.Type {
		case entities.LedgerEntryTypeCredit:
			newBalance, err = currentBalance.Add(p.Amount)
			if err != nil {
				return nil, err
			}
		case entities.LedgerEntryTypeDebit:
			if wallet.IsClearing() {
				// The clearing wallet is the balanced counterparty of
				// single-sided credits and payout reserves; its book balance
				// legitimately runs negative.
				newBalance, err = currentBalance.SubtractAllowingNegative(p.Amount)
				if err != nil {
					return nil, err
				}
				break
			}
			newBalance, err = currentBalance.Subtract(p.Amount)
			if err != nil {
				if err == valueobjects.ErrInsufficientAmount {
					return nil, domainerrors.ErrInsufficientBalance
				}
				return nil, err
			}
		}

		entry := entities.NewLedgerEntry(transactionID, p.WalletID, p.Type, p.Amount, newBalance, p.Description)
		if err := e.ledgerRepo.Append(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to append ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// Balance returns a wallet's current balance, reading the latest ledger
// entry. Returns a zero Money in the wallet's currency if no
// entries exist yet.
func (e *Engine) Balance(ctx context.Context, walletID uuid.UUID, currency valueobjects.Currency) (valueobjects.Money, error) {
	return e.ledgerRepo.LatestBalance(ctx, walletID, currency)
}
