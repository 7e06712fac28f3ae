package apikey

import (
	"context"
	"fmt"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/ports"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/events"
	"github.com/google/uuid"
)

// RevokeUseCase deactivates a key belonging to a partner.
type RevokeUseCase struct {
	apiKeyRepo     ports.ApiKeyRepository
	eventPublisher ports.EventPublisher
	uow            ports.UnitOfWork
}

func NewRevokeUseCase(apiKeyRepo ports.ApiKeyRepository, eventPublisher ports.EventPublisher, uow ports.UnitOfWork) *RevokeUseCase {
	return &RevokeUseCase{apiKeyRepo: apiKeyRepo, eventPublisher: eventPublisher, uow: uow}
}

func (uc *RevokeUseCase) Execute(ctx context.Context, partnerID, apiKeyID uuid.UUID) error {
	return uc.uow.Execute(ctx, func(txCtx context.Context) error {
		key, err := uc.apiKeyRepo.FindByID(txCtx, apiKeyID)
		if err != nil {
			return err
		}
		if key.PartnerID() != partnerID {
			return fmt.Errorf("%w: api key %s", domainerrors.ErrEntityNotFound, apiKeyID)
		}
		key.Deactivate()
		if err := uc.apiKeyRepo.Save(txCtx, key); err != nil {
			return fmt.Errorf("failed to save api key: %w", err)
		}
		return uc.eventPublisher.Publish(txCtx, events.NewApiKeyRevoked(key.ID(), partnerID))
	})
}

// ListUseCase lists a partner's API keys, never the secret.
type ListUseCase struct {
	apiKeyRepo ports.ApiKeyRepository
}

func NewListUseCase(apiKeyRepo ports.ApiKeyRepository) *ListUseCase {
	return &ListUseCase{apiKeyRepo: apiKeyRepo}
}

func (uc *ListUseCase) Execute(ctx context.Context, partnerID uuid.UUID) ([]dtos.ApiKeyDTO, error) {
	keys, err := uc.apiKeyRepo.FindByPartnerID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	out := make([]dtos.ApiKeyDTO, len(keys))
	for i, k := range keys {
		out[i] = dtos.ToApiKeyDTO(k)
	}
	return out, nil
}
