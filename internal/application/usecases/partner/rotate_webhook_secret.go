package partner

import (
	"context"
	"fmt"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/google/uuid"
)

// RotateWebhookSecretUseCase replaces a partner's outbound webhook HMAC
// signing secret. The new plaintext value is returned exactly once, in
// dtos.PartnerDTO.CreatedWebhookSecret, and never again.
type RotateWebhookSecretUseCase struct {
	partnerRepo ports.PartnerRepository
	uow         ports.UnitOfWork
}

func NewRotateWebhookSecretUseCase(partnerRepo ports.PartnerRepository, uow ports.UnitOfWork) *RotateWebhookSecretUseCase {
	return &RotateWebhookSecretUseCase{partnerRepo: partnerRepo, uow: uow}
}

func (uc *RotateWebhookSecretUseCase) Execute(ctx context.Context, partnerID uuid.UUID) (*dtos.PartnerDTO, error) {
	var result *dtos.PartnerDTO

	err := uc.uow.Execute(ctx, func(txCtx context.Context) error {
		p, err := uc.partnerRepo.FindByID(txCtx, partnerID)
		if err != nil {
			return err
		}

		secret, err := p.RotateWebhookSecret()
		if err != nil {
			return err
		}

		if err := uc.partnerRepo.Save(txCtx, p); err != nil {
			return fmt.Errorf("failed to save partner: %w", err)
		}

		dto := dtos.ToPartnerDTO(p)
		dto.CreatedWebhookSecret = secret
		result = &dto
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}
