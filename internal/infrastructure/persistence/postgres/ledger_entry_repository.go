// Package postgres - LedgerEntryRepository implementation.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/domain/entities"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
)

var _ ports.LedgerEntryRepository = (*LedgerEntryRepository)(nil)

// LedgerEntryRepository implements ports.LedgerEntryRepository. Rows are
// append-only — there is deliberately no update or delete method anywhere in
// this file. ledger.Engine is the only caller of Append, and
// always calls it inside the orchestrator's unit-of-work transaction.
type LedgerEntryRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerEntryRepository(pool *pgxpool.Pool) *LedgerEntryRepository {
	return &LedgerEntryRepository{pool: pool}
}

func (r *LedgerEntryRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const ledgerEntryColumns = `id, transaction_id, wallet_id, entry_type, amount, currency, balance, description, created_at`

func (r *LedgerEntryRepository) Append(ctx context.Context, entry *entities.LedgerEntry) error {
	q := r.getQuerier(ctx)

	query := `
	INSERT INTO ledger_entries (` + ledgerEntryColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := q.Exec(ctx, query,
		entry.ID(),
		entry.TransactionID(),
		entry.WalletID(),
		string(entry.Type()),
		entry.Amount().MinorUnits(),
		entry.Amount().Currency().Code(),
		entry.Balance().MinorUnits(),
		entry.Description(),
		entry.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return nil
}

// LatestBalance returns the balance carried by the most recent entry for a
// wallet, or zero if the wallet has never been posted to.
func (r *LedgerEntryRepository) LatestBalance(ctx context.Context, walletID uuid.UUID, currency valueobjects.Currency) (valueobjects.Money, error) {
	q := r.getQuerier(ctx)

	query := `SELECT balance FROM ledger_entries WHERE wallet_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`

	var balanceMinorUnits int64
	err := q.QueryRow(ctx, query, walletID).Scan(&balanceMinorUnits)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return valueobjects.Zero(currency), nil
		}
		return valueobjects.Money{}, fmt.Errorf("failed to read latest balance: %w", err)
	}

	return valueobjects.NewSignedMoneyFromMinorUnits(balanceMinorUnits, currency), nil
}

func (r *LedgerEntryRepository) FindByWalletID(ctx context.Context, walletID uuid.UUID, offset, limit int) ([]*entities.LedgerEntry, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE wallet_id = $1 ORDER BY created_at DESC, id DESC OFFSET $2 LIMIT $3`

	rows, err := q.Query(ctx, query, walletID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries by wallet: %w", err)
	}
	defer rows.Close()

	return scanLedgerEntries(rows)
}

func (r *LedgerEntryRepository) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*entities.LedgerEntry, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + ledgerEntryColumns + ` FROM ledger_entries WHERE transaction_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := q.Query(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries by transaction: %w", err)
	}
	defer rows.Close()

	return scanLedgerEntries(rows)
}

func scanLedgerEntries(rows pgx.Rows) ([]*entities.LedgerEntry, error) {
	var entries []*entities.LedgerEntry

	for rows.Next() {
		var (
			id, transactionID, walletID uuid.UUID
			entryTypeStr                string
			amountMinorUnits            int64
			currencyCode                string
			balanceMinorUnits           int64
			description                 string
			createdAt                   time.Time
		)

		if err := rows.Scan(&id, &transactionID, &walletID, &entryTypeStr, &amountMinorUnits, &currencyCode, &balanceMinorUnits, &description, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry row: %w", err)
		}

		currency, err := valueobjects.NewCurrency(currencyCode)
		if err != nil {
			return nil, fmt.Errorf("invalid currency in database: %w", err)
		}

		amount, err := valueobjects.NewMoneyFromMinorUnits(amountMinorUnits, currency)
		if err != nil {
			return nil, fmt.Errorf("failed to convert ledger entry amount: %w", err)
		}
		balance := valueobjects.NewSignedMoneyFromMinorUnits(balanceMinorUnits, currency)

		entries = append(entries, entities.ReconstructLedgerEntry(
			id, transactionID, walletID,
			entities.LedgerEntryType(entryTypeStr),
			amount, balance,
			description,
			createdAt,
		))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entry rows: %w", err)
	}

	return entries, nil
}
