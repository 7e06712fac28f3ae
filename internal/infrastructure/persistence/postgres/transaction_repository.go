// Package postgres - TransactionRepository implementation with idempotency support.
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

var _ ports.TransactionRepository = (*TransactionRepository)(nil)

// TransactionRepository implements ports.TransactionRepository.
// Idempotency is enforced by a unique (partner_id, idempotency_key)
// constraint — the orchestrator relies on the resulting conflict to detect a
// replayed request rather than checking first.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func (r *TransactionRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const transactionColumns = `id, partner_id, type, status, amount, currency,
from_wallet_id, to_wallet_id, idempotency_key, description,
gateway_transaction_id, gateway, failure_reason, created_at, updated_at`

func (r *TransactionRepository) Save(ctx context.Context, tx *entities.Transaction) error {
	q := r.getQuerier(ctx)

	query := `
	INSERT INTO transactions (` + transactionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (id) DO UPDATE SET
	status = EXCLUDED.status,
	gateway_transaction_id = EXCLUDED.gateway_transaction_id,
	gateway = EXCLUDED.gateway,
	failure_reason = EXCLUDED.failure_reason,
	updated_at = EXCLUDED.updated_at
	`

	_, err := q.Exec(ctx, query,
		tx.ID(),
		tx.PartnerID(),
		string(tx.Type()),
		string(tx.Status()),
		tx.Amount().MinorUnits(),
		tx.Amount().Currency().Code(),
		tx.FromWalletID(),
		tx.ToWalletID(),
		tx.IdempotencyKey(),
		tx.Description(),
		tx.GatewayTransactionID(),
		tx.Gateway(),
		tx.FailureReason(),
		tx.CreatedAt(),
		tx.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "transactions_partner_idempotency_key_unique") {
			return domainErrors.NewDomainError(domainErrors.KindConflict, "DUPLICATE_IDEMPOTENCY_KEY",
				"a transaction with this idempotency key already exists for this partner", err)
		}
		if isForeignKeyViolation(err) {
			return domainErrors.NewDomainError(domainErrors.KindValidation, "WALLET_NOT_FOUND", "referenced wallet not found", err)
		}
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	return nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return r.scanTransaction(q.QueryRow(ctx, query, id))
}

func (r *TransactionRepository) FindByIdempotencyKey(ctx context.Context, partnerID uuid.UUID, key string) (*entities.Transaction, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE partner_id = $1 AND idempotency_key = $2`
	return r.scanTransaction(q.QueryRow(ctx, query, partnerID, key))
}

func (r *TransactionRepository) FindByWalletID(ctx context.Context, walletID uuid.UUID, filter ports.TransactionFilter, offset, limit int) ([]*entities.Transaction, error) {
	q := r.getQuerier(ctx)

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE (from_wallet_id = $1 OR to_wallet_id = $1)`
	args := []interface{}{walletID}
	argNum := 2

	if filter.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argNum)
		args = append(args, string(*filter.Type))
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
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	return r.scanTransactions(rows)
}

func (r *TransactionRepository) FindByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*entities.Transaction, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE gateway_transaction_id = $1`
	return r.scanTransaction(q.QueryRow(ctx, query, gatewayTransactionID))
}

func (r *TransactionRepository) scanTransaction(row pgx.Row) (*entities.Transaction, error) {
	tx, err := scanTransactionRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, err
	}
	return tx, nil
}

func (r *TransactionRepository) scanTransactions(rows pgx.Rows) ([]*entities.Transaction, error) {
	var txs []*entities.Transaction
	for rows.Next() {
		tx, err := scanTransactionRow(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txs, nil
}

func scanTransactionRow(row rowScanner) (*entities.Transaction, error) {
	var (
		id, partnerID                                uuid.UUID
		typeStr, statusStr                           string
		amountMinorUnits                             int64
		currencyCode                                 string
		fromWalletID, toWalletID                     *uuid.UUID
		idempotencyKey, description                  string
		gatewayTransactionID, gateway, failureReason string
		createdAt, updatedAt                         time.Time
	)

	err := row.Scan(&id, &partnerID, &typeStr, &statusStr, &amountMinorUnits, &currencyCode,
		&fromWalletID, &toWalletID, &idempotencyKey, &description,
		&gatewayTransactionID, &gateway, &failureReason, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	currency, err := valueobjects.NewCurrency(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid currency in database: %w", err)
	}

	amount, err := valueobjects.NewMoneyFromMinorUnits(amountMinorUnits, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to convert transaction amount: %w", err)
	}

	return entities.ReconstructTransaction(
		id, partnerID,
		entities.TransactionType(typeStr),
		entities.TransactionStatus(statusStr),
		amount,
		fromWalletID, toWalletID,
		idempotencyKey, description, gatewayTransactionID, gateway, failureReason,
		createdAt, updatedAt,
	), nil
}
