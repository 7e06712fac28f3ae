// Package apikey implements API key lifecycle use cases.
package apikey

import (
	"context"
	"fmt"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/domain/entities"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/events"
	"github.com/Haleralex/payflow/internal/pkg/apikeys"
	"github.com/google/uuid"
)

// CreateUseCase mints a new API key for an approved partner. The plaintext
// secret is returned exactly once, in CreatedSecret, and never again.
type CreateUseCase struct {
	partnerRepo    ports.PartnerRepository
	apiKeyRepo     ports.ApiKeyRepository
	eventPublisher ports.EventPublisher
	uow            ports.UnitOfWork
}

func NewCreateUseCase(partnerRepo ports.PartnerRepository, apiKeyRepo ports.ApiKeyRepository, eventPublisher ports.EventPublisher, uow ports.UnitOfWork) *CreateUseCase {
	return &CreateUseCase{partnerRepo: partnerRepo, apiKeyRepo: apiKeyRepo, eventPublisher: eventPublisher, uow: uow}
}

func (uc *CreateUseCase) Execute(ctx context.Context, partnerID uuid.UUID, cmd dtos.CreateApiKeyCommand) (*dtos.ApiKeyDTO, error) {
	var result *dtos.ApiKeyDTO

	err := uc.uow.Execute(ctx, func(txCtx context.Context) error {
		p, err := uc.partnerRepo.FindByID(txCtx, partnerID)
		if err != nil {
			return fmt.Errorf("failed to load partner: %w", err)
		}
		if !p.IsApproved() {
			return domainerrors.ErrPartnerNotActive
		}

		env := entities.ApiKeyEnvironment(cmd.Environment)
		perms := make([]entities.Permission, 0, len(cmd.Permissions))
		for _, p := range cmd.Permissions {
			perms = append(perms, entities.Permission(p))
		}

		secret, err := apikeys.Generate(env)
		if err != nil {
			return fmt.Errorf("failed to generate api key secret: %w", err)
		}
		hash := apikeys.Hash(secret)

		key, err := entities.NewApiKey(partnerID, hash, env, perms, cmd.ExpiresAt)
		if err != nil {
			return err
		}

		if err := uc.apiKeyRepo.Save(txCtx, key); err != nil {
			return fmt.Errorf("failed to save api key: %w", err)
		}

		if err := uc.eventPublisher.Publish(txCtx, events.NewApiKeyCreated(key.ID(), partnerID, string(env))); err != nil {
			return fmt.Errorf("failed to publish ApiKeyCreated: %w", err)
		}

		dto := dtos.ToApiKeyDTO(key)
		dto.CreatedSecret = secret
		result = &dto
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}
