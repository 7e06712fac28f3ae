// Package postgres - WalletRepository implementation.
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
	domainErrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
)

var _ ports.WalletRepository = (*WalletRepository)(nil)

// WalletRepository implements ports.WalletRepository. Wallets carry no
// balance column at all — balance is only ever derived from ledger_entries
// (see ledger_entry_repository.go), so unlike transactions there's no
// optimistic-locking version column to maintain here.
type WalletRepository struct {
	pool *pgxpool.Pool
}

func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

func (r *WalletRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const walletColumns = `id, partner_id, external_user_id, external_wallet_id, name,
currency, status, is_clearing, created_at, updated_at`

func (r *WalletRepository) Save(ctx context.Context, wallet *entities.Wallet) error {
	q := r.getQuerier(ctx)

	query := `
	INSERT INTO wallets (` + walletColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	status = EXCLUDED.status,
	updated_at = EXCLUDED.updated_at
	`

	_, err := q.Exec(ctx, query,
		wallet.ID(),
		wallet.PartnerID(),
		wallet.ExternalUserID(),
		wallet.ExternalWalletID(),
		wallet.Name(),
		wallet.Currency().Code(),
		string(wallet.Status()),
		wallet.IsClearing(),
		wallet.CreatedAt(),
		wallet.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "wallets_partner_external_wallet_unique") {
			return domainErrors.NewDomainError(domainErrors.KindConflict, "WALLET_ALREADY_EXISTS",
				fmt.Sprintf("wallet %s already exists for this partner", wallet.ExternalWalletID()), err)
		}
		if isForeignKeyViolation(err) {
			return domainErrors.NewDomainError(domainErrors.KindValidation, "PARTNER_NOT_FOUND", "partner not found", err)
		}
		return fmt.Errorf("failed to save wallet: %w", err)
	}

	return nil
}

func (r *WalletRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	return r.scanWallet(q.QueryRow(ctx, query, id))
}

// FindByIDForUpdate takes a row lock for the duration of the enclosing
// transaction. Must only be called inside a unit of work — on a bare pool
// connection the lock would release the instant the query returns.
func (r *WalletRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`
	return r.scanWallet(q.QueryRow(ctx, query, id))
}

func (r *WalletRepository) FindByExternalWalletID(ctx context.Context, partnerID uuid.UUID, externalWalletID string) (*entities.Wallet, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE partner_id = $1 AND external_wallet_id = $2`
	return r.scanWallet(q.QueryRow(ctx, query, partnerID, externalWalletID))
}

func (r *WalletRepository) FindByPartnerID(ctx context.Context, partnerID uuid.UUID, filter ports.WalletFilter, offset, limit int) ([]*entities.Wallet, error) {
	q := r.getQuerier(ctx)

	query := `SELECT ` + walletColumns + ` FROM wallets WHERE partner_id = $1`
	args := []interface{}{partnerID}
	argNum := 2

	if filter.Currency != nil {
		query += fmt.Sprintf(" AND currency = $%d", argNum)
		args = append(args, filter.Currency.Code())
		argNum++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(*filter.Status))
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC OFFSET $%d LIMIT $%d", argNum, argNum+1)
	args = append(args, offset, limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	return r.scanWallets(rows)
}

// FindClearingWallet looks up the partner's designated clearing wallet for a
// currency by the is_clearing flag — the partner's settings map only caches
// the wallet's ID for fast-path reads elsewhere, this is the source of truth.
func (r *WalletRepository) FindClearingWallet(ctx context.Context, partnerID uuid.UUID, currency valueobjects.Currency) (*entities.Wallet, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE partner_id = $1 AND currency = $2 AND is_clearing = true`
	return r.scanWallet(q.QueryRow(ctx, query, partnerID, currency.Code()))
}

func (r *WalletRepository) scanWallet(row pgx.Row) (*entities.Wallet, error) {
	var (
		id, partnerID                          uuid.UUID
		externalUserID, externalWalletID, name string
		currencyCode, statusStr                string
		isClearing                             bool
		createdAt, updatedAt                   time.Time
	)

	err := row.Scan(&id, &partnerID, &externalUserID, &externalWalletID, &name,
		&currencyCode, &statusStr, &isClearing, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to scan wallet: %w", err)
	}

	currency, err := valueobjects.NewCurrency(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid currency in database: %w", err)
	}

	return entities.ReconstructWallet(
		id, partnerID,
		externalUserID, externalWalletID, name,
		currency,
		entities.WalletStatus(statusStr),
		isClearing,
		createdAt, updatedAt,
	), nil
}

func (r *WalletRepository) scanWallets(rows pgx.Rows) ([]*entities.Wallet, error) {
	var wallets []*entities.Wallet

	for rows.Next() {
		var (
			id, partnerID                          uuid.UUID
			externalUserID, externalWalletID, name string
			currencyCode, statusStr                string
			isClearing                             bool
			createdAt, updatedAt                   time.Time
		)

		if err := rows.Scan(&id, &partnerID, &externalUserID, &externalWalletID, &name,
			&currencyCode, &statusStr, &isClearing, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet row: %w", err)
		}

		currency, err := valueobjects.NewCurrency(currencyCode)
		if err != nil {
			return nil, fmt.Errorf("invalid currency in database: %w", err)
		}

		wallets = append(wallets, entities.ReconstructWallet(
			id, partnerID,
			externalUserID, externalWalletID, name,
			currency,
			entities.WalletStatus(statusStr),
			isClearing,
			createdAt, updatedAt,
		))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet rows: %w", err)
	}

	return wallets, nil
}
