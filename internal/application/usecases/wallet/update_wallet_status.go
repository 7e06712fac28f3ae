package wallet

import (
	"context"
	"fmt"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/ledger"
	"github.com/Haleralex/payflow/internal/application/ports"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/events"
	"github.com/google/uuid"
)

// UpdateStatusUseCase suspends, reactivates, or closes a wallet.
type UpdateStatusUseCase struct {
	walletRepo     ports.WalletRepository
	eventPublisher ports.EventPublisher
	uow            ports.UnitOfWork
	ledger         *ledger.Engine
}

func NewUpdateStatusUseCase(walletRepo ports.WalletRepository, eventPublisher ports.EventPublisher, uow ports.UnitOfWork, ledgerEngine *ledger.Engine) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{walletRepo: walletRepo, eventPublisher: eventPublisher, uow: uow, ledger: ledgerEngine}
}

// Action identifies which transition to apply.
type Action string

const (
	ActionSuspend  Action = "suspend"
	ActionActivate Action = "activate"
	ActionClose    Action = "close"
)

func (uc *UpdateStatusUseCase) Execute(ctx context.Context, partnerID, walletID uuid.UUID, action Action, reason string) (*dtos.WalletDTO, error) {
	var result *dtos.WalletDTO

	err := uc.uow.Execute(ctx, func(txCtx context.Context) error {
		w, err := uc.walletRepo.FindByIDForUpdate(txCtx, walletID)
		if err != nil {
			return err
		}
		if !w.BelongsToPartner(partnerID) {
			return domainerrors.ErrForbidden
		}

		var transitionErr error
		switch action {
		case ActionSuspend:
			transitionErr = w.Suspend()
		case ActionActivate:
			transitionErr = w.Activate()
		case ActionClose:
			transitionErr = w.Close()
		default:
			return domainerrors.ValidationError{Field: "action", Message: "unknown wallet action"}
		}
		if transitionErr != nil {
			return transitionErr
		}

		if err := uc.walletRepo.Save(txCtx, w); err != nil {
			return fmt.Errorf("failed to save wallet: %w", err)
		}

		if action == ActionSuspend {
			if err := uc.eventPublisher.Publish(txCtx, events.NewWalletSuspended(w.ID(), partnerID, reason)); err != nil {
				return fmt.Errorf("failed to publish WalletSuspended: %w", err)
			}
		}

		balance, err := uc.ledger.Balance(txCtx, w.ID(), w.Currency())
		if err != nil {
			return fmt.Errorf("failed to read balance: %w", err)
		}
		dto := dtos.ToWalletDTO(w, balance.Decimal())
		result = &dto
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}
