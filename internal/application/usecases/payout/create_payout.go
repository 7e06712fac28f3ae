// Package payout implements outbound disbursements: a wallet debit settled
// through the card processor's payout rail.
package payout

import (
	"context"
	"fmt"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/gateway"
	"github.com/Haleralex/payflow/internal/application/ledger"
	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/application/usecases/transaction"
	"github.com/Haleralex/payflow/internal/domain/entities"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/events"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// CreateUseCase initiates an external payout in two phases. The first unit of
// work debits the wallet into the partner's clearing wallet and leaves the
// transaction pending; only once those funds are reserved does the processor
// get called. The second unit of work then records the outcome: completed
// with the processor's payout id, or failed with a reversing ledger pair so
// the wallet is made whole. A crash between the phases leaves a pending
// transaction with reserved funds that the processor's webhook reconciles.
type CreateUseCase struct {
	partnerRepo     ports.PartnerRepository
	walletRepo      ports.WalletRepository
	transactionRepo ports.TransactionRepository
	eventPublisher  ports.EventPublisher
	uow             ports.UnitOfWork
	ledger          *ledger.Engine
	gateway         gateway.Gateway
	gatewayName     string
}

func NewCreateUseCase(
	partnerRepo ports.PartnerRepository,
	walletRepo ports.WalletRepository,
	transactionRepo ports.TransactionRepository,
	eventPublisher ports.EventPublisher,
	uow ports.UnitOfWork,
	ledgerEngine *ledger.Engine,
	gw gateway.Gateway,
	gatewayName string,
) *CreateUseCase {
	return &CreateUseCase{
		partnerRepo:     partnerRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		eventPublisher:  eventPublisher,
		uow:             uow,
		ledger:          ledgerEngine,
		gateway:         gw,
		gatewayName:     gatewayName,
	}
}

func (uc *CreateUseCase) Execute(ctx context.Context, partnerID uuid.UUID, cmd dtos.CreatePayoutCommand) (*dtos.TransactionDTO, error) {
	walletID, err := uuid.Parse(cmd.WalletID)
	if err != nil {
		return nil, domainerrors.ValidationError{Field: "walletId", Message: "invalid uuid"}
	}

	var result *dtos.TransactionDTO
	var payoutTx *entities.Transaction
	var amount valueobjects.Money

	err = uc.uow.ExecuteWithRetry(ctx, 3, func(txCtx context.Context) error {
		if existing, err := uc.transactionRepo.FindByIdempotencyKey(txCtx, partnerID, cmd.IdempotencyKey); err == nil && existing != nil {
			dto := dtos.ToTransactionDTO(existing)
			result = &dto
			return nil
		} else if err != nil && !domainerrors.IsNotFound(err) {
			return fmt.Errorf("failed to check idempotency key: %w", err)
		}

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
		amount, err = valueobjects.NewMoney(cmd.Amount, currency)
		if err != nil {
			return domainerrors.ValidationError{Field: "amount", Message: err.Error()}
		}

		w, err := uc.walletRepo.FindByIDForUpdate(txCtx, walletID)
		if err != nil {
			if domainerrors.IsNotFound(err) {
				return fmt.Errorf("%w: wallet %s", domainerrors.ErrEntityNotFound, walletID)
			}
			return fmt.Errorf("failed to lock wallet: %w", err)
		}
		if !w.BelongsToPartner(partnerID) {
			return domainerrors.ErrForbidden
		}
		if !w.IsActive() {
			return domainerrors.ErrWalletNotActive
		}
		if !w.Currency().Equals(currency) {
			return domainerrors.ErrWalletCurrencyMismatch
		}

		clearing, err := transaction.EnsureClearingWallet(txCtx, uc.walletRepo, uc.partnerRepo, partner, currency)
		if err != nil {
			return err
		}

		payoutTx, err = entities.NewTransaction(entities.NewTransactionParams{
			PartnerID:      partnerID,
			Type:           entities.TransactionTypeDebit,
			Amount:         amount,
			FromWalletID:   &walletID,
			IdempotencyKey: cmd.IdempotencyKey,
			Description:    cmd.Description,
		})
		if err != nil {
			return err
		}
		if err := uc.transactionRepo.Save(txCtx, payoutTx); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		if err := uc.eventPublisher.Publish(txCtx, events.NewTransactionCreated(payoutTx.ID(), partnerID, string(entities.TransactionTypeDebit), amount, cmd.IdempotencyKey)); err != nil {
			return fmt.Errorf("failed to publish TransactionCreated: %w", err)
		}

		posts := []ledger.Post{
			{WalletID: w.ID(), Type: entities.LedgerEntryTypeDebit, Amount: amount, Description: "payout to " + cmd.Destination},
			{WalletID: clearing.ID(), Type: entities.LedgerEntryTypeCredit, Amount: amount, Description: "payout reserve"},
		}
		if _, err := uc.ledger.Append(txCtx, payoutTx.ID(), posts); err != nil {
			failReason := err.Error()
			if markErr := payoutTx.MarkFailed(failReason); markErr != nil {
				return markErr
			}
			if err := uc.transactionRepo.Save(txCtx, payoutTx); err != nil {
				return fmt.Errorf("failed to save failed transaction: %w", err)
			}
			if err := uc.eventPublisher.Publish(txCtx, events.NewTransactionFailed(payoutTx.ID(), partnerID, string(entities.TransactionTypeDebit), amount, failReason)); err != nil {
				return fmt.Errorf("failed to publish TransactionFailed: %w", err)
			}
			dto := dtos.ToTransactionDTO(payoutTx)
			result = &dto
			payoutTx = nil
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Idempotent replay or a failed reservation: nothing left to disburse.
	if payoutTx == nil {
		return result, nil
	}

	disbursement, gwErr := uc.gateway.CreatePayout(ctx, amount, cmd.Destination)

	err = uc.uow.Execute(ctx, func(txCtx context.Context) error {
		if gwErr != nil {
			// Release the reserve so the wallet is made whole, then fail the
			// transaction. The reversing pair shares the transaction id, so
			// the post stays balanced end to end.
			clearing, err := uc.walletRepo.FindClearingWallet(txCtx, partnerID, amount.Currency())
			if err != nil {
				return fmt.Errorf("failed to load clearing wallet for reversal: %w", err)
			}
			reversal := []ledger.Post{
				{WalletID: *payoutTx.FromWalletID(), Type: entities.LedgerEntryTypeCredit, Amount: amount, Description: "payout reversal"},
				{WalletID: clearing.ID(), Type: entities.LedgerEntryTypeDebit, Amount: amount, Description: "payout reversal"},
			}
			if _, err := uc.ledger.Append(txCtx, payoutTx.ID(), reversal); err != nil {
				return fmt.Errorf("failed to reverse payout reserve: %w", err)
			}
			failReason := "payout rejected by gateway: " + gwErr.Error()
			if err := payoutTx.MarkFailed(failReason); err != nil {
				return err
			}
			if err := uc.transactionRepo.Save(txCtx, payoutTx); err != nil {
				return fmt.Errorf("failed to save failed transaction: %w", err)
			}
			if err := uc.eventPublisher.Publish(txCtx, events.NewTransactionFailed(payoutTx.ID(), partnerID, string(entities.TransactionTypeDebit), amount, failReason)); err != nil {
				return fmt.Errorf("failed to publish TransactionFailed: %w", err)
			}
			dto := dtos.ToTransactionDTO(payoutTx)
			result = &dto
			return nil
		}

		payoutTx.AttachGatewayReference(uc.gatewayName, disbursement.GatewayTransactionID)
		if err := payoutTx.MarkCompleted(); err != nil {
			return err
		}
		if err := uc.transactionRepo.Save(txCtx, payoutTx); err != nil {
			return fmt.Errorf("failed to save completed transaction: %w", err)
		}
		if err := uc.eventPublisher.Publish(txCtx, events.NewTransactionCompleted(payoutTx.ID(), partnerID, string(entities.TransactionTypeDebit), amount)); err != nil {
			return fmt.Errorf("failed to publish TransactionCompleted: %w", err)
		}
		dto := dtos.ToTransactionDTO(payoutTx)
		result = &dto
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
