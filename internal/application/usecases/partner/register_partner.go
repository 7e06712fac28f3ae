// Package partner implements admin-facing partner lifecycle use cases.
package partner

import (
	"context"
	"fmt"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/domain/entities"
)

// RegisterUseCase onboards a new partner tenant in the pending status.
type RegisterUseCase struct {
	partnerRepo ports.PartnerRepository
	uow         ports.UnitOfWork
}

func NewRegisterUseCase(partnerRepo ports.PartnerRepository, uow ports.UnitOfWork) *RegisterUseCase {
	return &RegisterUseCase{partnerRepo: partnerRepo, uow: uow}
}

func (uc *RegisterUseCase) Execute(ctx context.Context, cmd dtos.RegisterPartnerCommand) (*dtos.PartnerDTO, error) {
	var result *dtos.PartnerDTO

	err := uc.uow.Execute(ctx, func(txCtx context.Context) error {
		p, err := entities.NewPartner(cmd.Name)
		if err != nil {
			return err
		}
		if cmd.WebhookURL != "" {
			p.SetWebhookURL(cmd.WebhookURL)
		}
		if err := uc.partnerRepo.Save(txCtx, p); err != nil {
			return fmt.Errorf("failed to save partner: %w", err)
		}
		dto := dtos.ToPartnerDTO(p)
		dto.CreatedWebhookSecret = p.WebhookSecret()
		result = &dto
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}
