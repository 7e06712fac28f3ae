// Package wallet implements the wallet lifecycle use cases.
package wallet

import (
	"context"
	"fmt"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/domain/entities"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/events"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// CreateUseCase opens a new wallet in the caller partner's scope.
// ExternalWalletID uniqueness per partner is enforced by a
// database constraint and surfaced here as a conflict.
type CreateUseCase struct {
	partnerRepo    ports.PartnerRepository
	walletRepo     ports.WalletRepository
	eventPublisher ports.EventPublisher
	uow            ports.UnitOfWork
}

func NewCreateUseCase(partnerRepo ports.PartnerRepository, walletRepo ports.WalletRepository, eventPublisher ports.EventPublisher, uow ports.UnitOfWork) *CreateUseCase {
	return &CreateUseCase{partnerRepo: partnerRepo, walletRepo: walletRepo, eventPublisher: eventPublisher, uow: uow}
}

func (uc *CreateUseCase) Execute(ctx context.Context, partnerID uuid.UUID, cmd dtos.CreateWalletCommand) (*dtos.WalletDTO, error) {
	var result *dtos.WalletDTO

	err := uc.uow.Execute(ctx, func(txCtx context.Context) error {
		partner, err := uc.partnerRepo.FindByID(txCtx, partnerID)
		if err != nil {
			return fmt.Errorf("failed to load partner: %w", err)
		}
		if !partner.IsApproved() {
			return domainerrors.ErrPartnerNotActive
		}

		currency, err := valueobjects.NewCurrency(cmd.CurrencyCode)
		if err != nil {
			return domainerrors.ValidationError{Field: "currency", Message: err.Error()}
		}

		if cmd.ExternalWalletID != "" {
			if existing, err := uc.walletRepo.FindByExternalWalletID(txCtx, partnerID, cmd.ExternalWalletID); err == nil && existing != nil {
				return domainerrors.NewConflictError("wallet", fmt.Sprintf("externalWalletId %q already exists for this partner", cmd.ExternalWalletID))
			} else if err != nil && !domainerrors.IsNotFound(err) {
				return fmt.Errorf("failed to check externalWalletId uniqueness: %w", err)
			}
		}

		newWallet, err := entities.NewWallet(partnerID, cmd.Name, currency, cmd.ExternalUserID, cmd.ExternalWalletID)
		if err != nil {
			return err
		}

		if err := uc.walletRepo.Save(txCtx, newWallet); err != nil {
			return fmt.Errorf("failed to save wallet: %w", err)
		}

		if err := uc.eventPublisher.Publish(txCtx, events.NewWalletCreated(newWallet.ID(), partnerID, currency)); err != nil {
			return fmt.Errorf("failed to publish WalletCreated: %w", err)
		}

		dto := dtos.ToWalletDTO(newWallet, valueobjects.Zero(currency).Decimal())
		result = &dto
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}
