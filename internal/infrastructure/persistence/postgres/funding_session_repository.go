// Package postgres - FundingSessionRepository implementation.
package postgres

import (
	"context"
	"encoding/json"
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

var _ ports.FundingSessionRepository = (*FundingSessionRepository)(nil)

// FundingSessionRepository implements ports.FundingSessionRepository.
type FundingSessionRepository struct {
	pool *pgxpool.Pool
}

func NewFundingSessionRepository(pool *pgxpool.Pool) *FundingSessionRepository {
	return &FundingSessionRepository{pool: pool}
}

func (r *FundingSessionRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const fundingSessionColumns = `id, wallet_id, partner_id, payment_intent_id, amount, currency,
status, expires_at, success_url, cancel_url, metadata, created_at, updated_at`

func (r *FundingSessionRepository) Save(ctx context.Context, session *entities.FundingSession) error {
	q := r.getQuerier(ctx)

	metadataJSON, err := json.Marshal(session.Metadata())
	if err != nil {
		return fmt.Errorf("failed to marshal funding session metadata: %w", err)
	}

	query := `
	INSERT INTO funding_sessions (` + fundingSessionColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (id) DO UPDATE SET
	status = EXCLUDED.status,
	updated_at = EXCLUDED.updated_at
	`

	_, err = q.Exec(ctx, query,
		session.ID(),
		session.WalletID(),
		session.PartnerID(),
		session.PaymentIntentID(),
		session.Amount().MinorUnits(),
		session.Amount().Currency().Code(),
		string(session.Status()),
		session.ExpiresAt(),
		session.SuccessURL(),
		session.CancelURL(),
		metadataJSON,
		session.CreatedAt(),
		session.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "funding_sessions_payment_intent_unique") {
			return domainErrors.NewDomainError(domainErrors.KindConflict, "FUNDING_SESSION_ALREADY_EXISTS",
				"a funding session for this payment intent already exists", err)
		}
		if isForeignKeyViolation(err) {
			return domainErrors.NewDomainError(domainErrors.KindValidation, "WALLET_NOT_FOUND", "referenced wallet not found", err)
		}
		return fmt.Errorf("failed to save funding session: %w", err)
	}

	return nil
}

func (r *FundingSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.FundingSession, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + fundingSessionColumns + ` FROM funding_sessions WHERE id = $1`
	return r.scanFundingSession(q.QueryRow(ctx, query, id))
}

// FindByIDForUpdate takes a row lock for the duration of the enclosing
// transaction — required before transitioning a session's status so two
// concurrent webhook deliveries can't both apply a terminal transition.
func (r *FundingSessionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.FundingSession, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + fundingSessionColumns + ` FROM funding_sessions WHERE id = $1 FOR UPDATE`
	return r.scanFundingSession(q.QueryRow(ctx, query, id))
}

func (r *FundingSessionRepository) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*entities.FundingSession, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + fundingSessionColumns + ` FROM funding_sessions WHERE payment_intent_id = $1`
	return r.scanFundingSession(q.QueryRow(ctx, query, paymentIntentID))
}

func (r *FundingSessionRepository) FindByWalletID(ctx context.Context, walletID uuid.UUID, offset, limit int) ([]*entities.FundingSession, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + fundingSessionColumns + ` FROM funding_sessions WHERE wallet_id = $1 ORDER BY created_at DESC OFFSET $2 LIMIT $3`

	rows, err := q.Query(ctx, query, walletID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list funding sessions by wallet: %w", err)
	}
	defer rows.Close()

	return scanFundingSessions(rows)
}

// FindExpirable returns created-or-active sessions whose expiresAt has
// passed, for the background sweep.
func (r *FundingSessionRepository) FindExpirable(ctx context.Context, asOf time.Time, limit int) ([]*entities.FundingSession, error) {
	q := r.getQuerier(ctx)
	query := `
	SELECT ` + fundingSessionColumns + ` FROM funding_sessions
	WHERE status IN ($1, $2) AND expires_at <= $3
	ORDER BY expires_at ASC
	LIMIT $4
	`

	rows, err := q.Query(ctx, query, string(entities.FundingSessionStatusCreated), string(entities.FundingSessionStatusActive), asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expirable funding sessions: %w", err)
	}
	defer rows.Close()

	return scanFundingSessions(rows)
}

func (r *FundingSessionRepository) scanFundingSession(row pgx.Row) (*entities.FundingSession, error) {
	session, err := scanFundingSessionRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, err
	}
	return session, nil
}

func scanFundingSessions(rows pgx.Rows) ([]*entities.FundingSession, error) {
	var sessions []*entities.FundingSession
	for rows.Next() {
		session, err := scanFundingSessionRow(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating funding session rows: %w", err)
	}
	return sessions, nil
}

func scanFundingSessionRow(row rowScanner) (*entities.FundingSession, error) {
	var (
		id, walletID, partnerID uuid.UUID
		paymentIntentID         string
		amountMinorUnits        int64
		currencyCode            string
		statusStr               string
		expiresAt               time.Time
		successURL, cancelURL   string
		metadataJSON            []byte
		createdAt, updatedAt    time.Time
	)

	err := row.Scan(&id, &walletID, &partnerID, &paymentIntentID, &amountMinorUnits, &currencyCode,
		&statusStr, &expiresAt, &successURL, &cancelURL, &metadataJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan funding session: %w", err)
	}

	currency, err := valueobjects.NewCurrency(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid currency in database: %w", err)
	}

	amount, err := valueobjects.NewMoneyFromMinorUnits(amountMinorUnits, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to convert funding session amount: %w", err)
	}

	metadata := map[string]interface{}{}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal funding session metadata: %w", err)
		}
	}

	return entities.ReconstructFundingSession(
		id, walletID, partnerID,
		paymentIntentID,
		amount,
		entities.FundingSessionStatus(statusStr),
		expiresAt,
		successURL, cancelURL,
		metadata,
		createdAt, updatedAt,
	), nil
}
