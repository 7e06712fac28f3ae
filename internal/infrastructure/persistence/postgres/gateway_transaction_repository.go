// Package postgres - GatewayTransactionRepository implementation.
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

var _ ports.GatewayTransactionRepository = (*GatewayTransactionRepository)(nil)

// GatewayTransactionRepository implements ports.GatewayTransactionRepository.
// A unique index on gateway_transaction_id enforces the insert-or-ignore
// semantics needs: a webhook redelivered by the processor must
// never be recorded twice.
type GatewayTransactionRepository struct {
	pool *pgxpool.Pool
}

func NewGatewayTransactionRepository(pool *pgxpool.Pool) *GatewayTransactionRepository {
	return &GatewayTransactionRepository{pool: pool}
}

func (r *GatewayTransactionRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const gatewayTransactionColumns = `id, gateway_transaction_id, gateway, status, amount, currency, webhook_data, transaction_id, created_at`

// Save inserts a gateway transaction record, silently no-op-ing on a
// redelivered event (ON CONFLICT DO NOTHING) rather than erroring.
func (r *GatewayTransactionRepository) Save(ctx context.Context, gt *entities.GatewayTransaction) error {
	q := r.getQuerier(ctx)

	query := `
	INSERT INTO gateway_transactions (` + gatewayTransactionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (gateway_transaction_id) DO NOTHING
	`

	_, err := q.Exec(ctx, query,
		gt.ID(),
		gt.GatewayTransactionID(),
		gt.Gateway(),
		string(gt.Status()),
		gt.Amount().MinorUnits(),
		gt.Amount().Currency().Code(),
		gt.WebhookData(),
		gt.TransactionID(),
		gt.CreatedAt(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domainErrors.NewDomainError(domainErrors.KindValidation, "TRANSACTION_NOT_FOUND", "referenced transaction not found", err)
		}
		return fmt.Errorf("failed to save gateway transaction: %w", err)
	}

	return nil
}

func (r *GatewayTransactionRepository) FindByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*entities.GatewayTransaction, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + gatewayTransactionColumns + ` FROM gateway_transactions WHERE gateway_transaction_id = $1`
	return r.scanGatewayTransaction(q.QueryRow(ctx, query, gatewayTransactionID))
}

func (r *GatewayTransactionRepository) scanGatewayTransaction(row pgx.Row) (*entities.GatewayTransaction, error) {
	var (
		id                   uuid.UUID
		gatewayTransactionID string
		gateway              string
		statusStr            string
		amountMinorUnits     int64
		currencyCode         string
		webhookData          []byte
		transactionID        *uuid.UUID
		createdAt            time.Time
	)

	err := row.Scan(&id, &gatewayTransactionID, &gateway, &statusStr, &amountMinorUnits, &currencyCode, &webhookData, &transactionID, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to scan gateway transaction: %w", err)
	}

	currency, err := valueobjects.NewCurrency(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid currency in database: %w", err)
	}

	amount, err := valueobjects.NewMoneyFromMinorUnits(amountMinorUnits, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to convert gateway transaction amount: %w", err)
	}

	return entities.ReconstructGatewayTransaction(id, gatewayTransactionID, gateway, entities.GatewayTransactionStatus(statusStr), amount, webhookData, transactionID, createdAt), nil
}
