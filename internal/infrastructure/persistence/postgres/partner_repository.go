// Package postgres - PartnerRepository implementation.
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
)

var _ ports.PartnerRepository = (*PartnerRepository)(nil)

// PartnerRepository implements ports.PartnerRepository. Settings (including
// the lazily-created per-currency clearing wallet ids) round-trip through a
// JSONB column — the entity never cares how they're stored.
type PartnerRepository struct {
	pool *pgxpool.Pool
}

func NewPartnerRepository(pool *pgxpool.Pool) *PartnerRepository {
	return &PartnerRepository{pool: pool}
}

func (r *PartnerRepository) getQuerier(ctx context.Context) querier {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const partnerColumns = `id, name, status, webhook_url, settings, created_at, updated_at`

func (r *PartnerRepository) Save(ctx context.Context, partner *entities.Partner) error {
	q := r.getQuerier(ctx)

	settingsJSON, err := json.Marshal(partner.Settings())
	if err != nil {
		return fmt.Errorf("failed to marshal partner settings: %w", err)
	}

	query := `
	INSERT INTO partners (` + partnerColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	status = EXCLUDED.status,
	webhook_url = EXCLUDED.webhook_url,
	settings = EXCLUDED.settings,
	updated_at = EXCLUDED.updated_at
	`

	_, err = q.Exec(ctx, query,
		partner.ID(),
		partner.Name(),
		string(partner.Status()),
		partner.WebhookURL(),
		settingsJSON,
		partner.CreatedAt(),
		partner.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save partner: %w", err)
	}

	return nil
}

func (r *PartnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Partner, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE id = $1`
	return r.scanPartner(q.QueryRow(ctx, query, id))
}

func (r *PartnerRepository) List(ctx context.Context, offset, limit int) ([]*entities.Partner, error) {
	q := r.getQuerier(ctx)
	query := `SELECT ` + partnerColumns + ` FROM partners ORDER BY created_at DESC OFFSET $1 LIMIT $2`

	rows, err := q.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	var partners []*entities.Partner
	for rows.Next() {
		var (
			id                   uuid.UUID
			name, statusStr      string
			webhookURL           string
			settingsJSON         []byte
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &name, &statusStr, &webhookURL, &settingsJSON, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan partner row: %w", err)
		}

		settings := map[string]interface{}{}
		if len(settingsJSON) > 0 {
			if err := json.Unmarshal(settingsJSON, &settings); err != nil {
				return nil, fmt.Errorf("failed to unmarshal partner settings: %w", err)
			}
		}

		partners = append(partners, entities.ReconstructPartner(
			id, name, entities.PartnerStatus(statusStr), webhookURL, settings, createdAt, updatedAt,
		))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating partner rows: %w", err)
	}

	return partners, nil
}

func (r *PartnerRepository) scanPartner(row pgx.Row) (*entities.Partner, error) {
	var (
		id                   uuid.UUID
		name, statusStr      string
		webhookURL           string
		settingsJSON         []byte
		createdAt, updatedAt time.Time
	)

	err := row.Scan(&id, &name, &statusStr, &webhookURL, &settingsJSON, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to scan partner: %w", err)
	}

	settings := map[string]interface{}{}
	if len(settingsJSON) > 0 {
		if err := json.Unmarshal(settingsJSON, &settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal partner settings: %w", err)
		}
	}

	return entities.ReconstructPartner(id, name, entities.PartnerStatus(statusStr), webhookURL, settings, createdAt, updatedAt), nil
}
