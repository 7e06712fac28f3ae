// Package postgres - ApiKeyRepository implementation.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/domain/entities"
	domainErrors "github.com/Haleralex/payflow/internal/domain/errors"
)

var _ ports.ApiKeyRepository = (*ApiKeyRepository)(nil)

// ApiKeyRepository implements ports.ApiKeyRepository. Only the SHA-256 hash
// of a key's secret is ever persisted — the plaintext never reaches this
// layer.
type ApiKeyRepository struct {
	pool *pgxpool.Pool
}

func NewApiKeyRepository(pool *pgxpool.Pool) *ApiKeyRepository {
	return &ApiKeyRepository{pool: pool}
}

func (r *ApiKeyRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const apiKeyColumns = `id, partner_id, hash, environment, permissions, active, expires_at, last_used_at, created_at`

func (r *ApiKeyRepository) Save(ctx context.Context, key *entities.ApiKey) error {
	q := r.getQuerier(ctx)

	permissions := key.Permissions()
	permStrs := make([]string, len(permissions))
	for i, p := range permissions {
		permStrs[i] = string(p)
	}

	query := `
	INSERT INTO api_keys (` + apiKeyColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET
	active = EXCLUDED.active,
	expires_at = EXCLUDED.expires_at,
	last_used_at = EXCLUDED.last_used_at
	`

	_, err := q.Exec(ctx, query,
		key.ID(),
		key.PartnerID(),
		key.Hash(),
		string(key.Environment()),
		permStrs,
		key.Active(),
		key.ExpiresAt(),
		key.LastUsedAt(),
		key.CreatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err, "api_keys_hash_unique") {
			return domainErrors.NewDomainError(domainErrors.KindConflict, "API_KEY_HASH_COLLISION", "generated key hash already exists, retry", err)
		}
		if isForeignKeyViolation(err) {
			return domainErrors.NewDomainError(domainErrors.KindValidation, "PARTNER_NOT_FOUND", "partner not found", err)
		}
		return fmt.Errorf("failed to save api key: %w", err)
	}

	return nil
}

func (r *ApiKeyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ApiKey, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE id = $1`
	return r.scanApiKey(q.QueryRow(ctx, query, id))
}

func (r *ApiKeyRepository) FindByHash(ctx context.Context, hash string) (*entities.ApiKey, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE hash = $1`
	return r.scanApiKey(q.QueryRow(ctx, query, hash))
}

func (r *ApiKeyRepository) FindByPartnerID(ctx context.Context, partnerID uuid.UUID) ([]*entities.ApiKey, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE partner_id = $1 ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*entities.ApiKey
	for rows.Next() {
		key, err := r.scanApiKeyRow(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating api key rows: %w", err)
	}

	return keys, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ApiKeyRepository) scanApiKey(row pgx.Row) (*entities.ApiKey, error) {
	key, err := r.scanApiKeyRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, err
	}
	return key, nil
}

func (r *ApiKeyRepository) scanApiKeyRow(row rowScanner) (*entities.ApiKey, error) {
	var (
		id, partnerID         uuid.UUID
		hash, environmentStr  string
		permStrs              []string
		active                bool
		expiresAt, lastUsedAt *time.Time
		createdAt             time.Time
	)

	if err := row.Scan(&id, &partnerID, &hash, &environmentStr, &permStrs, &active, &expiresAt, &lastUsedAt, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to scan api key: %w", err)
	}

	permissions := make([]entities.Permission, len(permStrs))
	for i, p := range permStrs {
		permissions[i] = entities.Permission(strings.TrimSpace(p))
	}

	return entities.ReconstructApiKey(id, partnerID, hash, entities.ApiKeyEnvironment(environmentStr), permissions, active, expiresAt, lastUsedAt, createdAt), nil
}
