// Package funding implements the hosted funding session use cases.
package funding

import (
	"context"
	"fmt"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/gateway"
	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/domain/entities"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/events"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// CreateUseCase opens a hosted funding session against the configured
// processor for one wallet.
type CreateUseCase struct {
	walletRepo         ports.WalletRepository
	fundingSessionRepo ports.FundingSessionRepository
	eventPublisher     ports.EventPublisher
	uow                ports.UnitOfWork
	gateway            gateway.Gateway
}

func NewCreateUseCase(
	walletRepo ports.WalletRepository,
	fundingSessionRepo ports.FundingSessionRepository,
	eventPublisher ports.EventPublisher,
	uow ports.UnitOfWork,
	gw gateway.Gateway,
) *CreateUseCase {
	return &CreateUseCase{walletRepo: walletRepo, fundingSessionRepo: fundingSessionRepo, eventPublisher: eventPublisher, uow: uow, gateway: gw}
}

func (uc *CreateUseCase) Execute(ctx context.Context, partnerID uuid.UUID, cmd dtos.CreateFundingSessionCommand) (*dtos.FundingSessionDTO, error) {
	walletID, err := uuid.Parse(cmd.WalletID)
	if err != nil {
		return nil, domainerrors.ValidationError{Field: "walletId", Message: "invalid uuid"}
	}

	w, err := uc.walletRepo.FindByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if !w.BelongsToPartner(partnerID) {
		return nil, domainerrors.ErrForbidden
	}
	if !w.IsActive() {
		return nil, domainerrors.ErrWalletNotActive
	}

	amount, err := valueobjects.NewMoney(fmt.Sprintf("%.2f", cmd.Amount), w.Currency())
	if err != nil {
		return nil, domainerrors.ValidationError{Field: "amount", Message: err.Error()}
	}
	if !amount.IsPositive() {
		return nil, domainerrors.ValidationError{Field: "amount", Message: "amount must be strictly positive"}
	}

	intent, err := uc.gateway.CreatePaymentIntent(ctx, amount, cmd.SuccessURL, cmd.CancelURL, cmd.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	var result *dtos.FundingSessionDTO
	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		session := entities.NewFundingSession(partnerID, walletID, intent.ID, amount, cmd.SuccessURL, cmd.CancelURL, cmd.Metadata)
		if err := session.Activate(); err != nil {
			return err
		}
		if err := uc.fundingSessionRepo.Save(txCtx, session); err != nil {
			return fmt.Errorf("failed to save funding session: %w", err)
		}
		if err := uc.eventPublisher.Publish(txCtx, events.NewFundingSessionCreated(session.ID(), walletID, amount)); err != nil {
			return fmt.Errorf("failed to publish FundingSessionCreated: %w", err)
		}
		dto := dtos.ToFundingSessionDTO(session)
		dto.HostedURL = intent.HostedURL
		result = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
