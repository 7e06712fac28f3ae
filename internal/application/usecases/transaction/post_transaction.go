// Package transaction implements the transaction orchestrator: the single
// entry point for posting money movements against partner-scoped wallets.
package transaction

import (
	"context"
	"fmt"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/ledger"
	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/domain/entities"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/events"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// PostUseCase is the transaction orchestrator: one synchronous
// call that either fully posts a balanced
// transaction or fails it, never leaving a transaction in an intermediate
// processing state visible to the caller.
type PostUseCase struct {
	partnerRepo     ports.PartnerRepository
	walletRepo      ports.WalletRepository
	transactionRepo ports.TransactionRepository
	eventPublisher  ports.EventPublisher
	uow             ports.UnitOfWork
	ledger          *ledger.Engine
}

// NewPostUseCase constructs the orchestrator.
func NewPostUseCase(
	partnerRepo ports.PartnerRepository,
	walletRepo ports.WalletRepository,
	transactionRepo ports.TransactionRepository,
	eventPublisher ports.EventPublisher,
	uow ports.UnitOfWork,
	ledgerEngine *ledger.Engine,
) *PostUseCase {
	return &PostUseCase{
		partnerRepo:     partnerRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		eventPublisher:  eventPublisher,
		uow:             uow,
		ledger:          ledgerEngine,
	}
}

// Execute posts cmd under partnerID, following step by step:
//
// 1. If a transaction already exists for (partnerId, idempotencyKey), return
// it unchanged rather than posting again.
// 2. Validate the partner is approved and every referenced wallet belongs to
// the partner, is active, and matches the requested currency.
// 3. Lock every referenced wallet in ascending wallet-id order, so two
// transfers crossing the same pair of wallets can never deadlock.
// 4. Build the balanced set of ledger posts for the transaction's type,
// routing single-sided credit/debit through the partner's per-currency
// clearing wallet.
// 5. Append to the ledger. Insufficient balance or any ledger error marks
// the transaction failed rather than rolling the whole call back to the
// caller as a 5xx — the caller receives a completed "failed" transaction.
// 6. On success, mark the transaction completed and publish
// transaction.completed for outbound webhook fan-out.
func (uc *PostUseCase) Execute(ctx context.Context, partnerID uuid.UUID, cmd dtos.PostTransactionCommand) (*dtos.TransactionDTO, error) {
	var result *dtos.TransactionDTO

	err := uc.uow.ExecuteWithRetry(ctx, 3, func(txCtx context.Context) error {
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
		amount, err := valueobjects.NewMoney(cmd.Amount, currency)
		if err != nil {
			return domainerrors.ValidationError{Field: "amount", Message: err.Error()}
		}

		txType := entities.TransactionType(cmd.Type)

		var fromWalletID, toWalletID *uuid.UUID
		if cmd.FromWalletID != "" {
			id, err := uuid.Parse(cmd.FromWalletID)
			if err != nil {
				return domainerrors.ValidationError{Field: "fromWalletId", Message: "invalid uuid"}
			}
			fromWalletID = &id
		}
		if cmd.ToWalletID != "" {
			id, err := uuid.Parse(cmd.ToWalletID)
			if err != nil {
				return domainerrors.ValidationError{Field: "toWalletId", Message: "invalid uuid"}
			}
			toWalletID = &id
		}

		newTx, err := entities.NewTransaction(entities.NewTransactionParams{
			PartnerID:      partnerID,
			Type:           txType,
			Amount:         amount,
			FromWalletID:   fromWalletID,
			ToWalletID:     toWalletID,
			IdempotencyKey: cmd.IdempotencyKey,
			Description:    cmd.Description,
		})
		if err != nil {
			return err
		}

		involvedWalletIDs := uniqueSortedWalletIDs(fromWalletID, toWalletID)
		wallets := make(map[uuid.UUID]*entities.Wallet, len(involvedWalletIDs))
		for _, id := range involvedWalletIDs {
			w, err := uc.walletRepo.FindByIDForUpdate(txCtx, id)
			if err != nil {
				if domainerrors.IsNotFound(err) {
					return fmt.Errorf("%w: wallet %s", domainerrors.ErrEntityNotFound, id)
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
			wallets[id] = w
		}

		posts, err := buildPosts(txCtx, uc.walletRepo, uc.partnerRepo, partner, txType, amount, fromWalletID, toWalletID, cmd.Description)
		if err != nil {
			return err
		}

		if err := uc.transactionRepo.Save(txCtx, newTx); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		eventList := []events.DomainEvent{
			events.NewTransactionCreated(newTx.ID(), partnerID, string(txType), amount, cmd.IdempotencyKey),
		}

		if _, err := uc.ledger.Append(txCtx, newTx.ID(), posts); err != nil {
			failReason := err.Error()
			if markErr := newTx.MarkFailed(failReason); markErr != nil {
				return markErr
			}
			if err := uc.transactionRepo.Save(txCtx, newTx); err != nil {
				return fmt.Errorf("failed to save failed transaction: %w", err)
			}
			eventList = append(eventList, events.NewTransactionFailed(newTx.ID(), partnerID, string(txType), amount, failReason))
			if err := uc.eventPublisher.PublishBatch(txCtx, eventList); err != nil {
				return fmt.Errorf("failed to publish events: %w", err)
			}
			dto := dtos.ToTransactionDTO(newTx)
			result = &dto
			return nil
		}

		if err := newTx.MarkCompleted(); err != nil {
			return err
		}
		if err := uc.transactionRepo.Save(txCtx, newTx); err != nil {
			return fmt.Errorf("failed to save completed transaction: %w", err)
		}
		eventList = append(eventList, events.NewTransactionCompleted(newTx.ID(), partnerID, string(txType), amount))
		if err := uc.eventPublisher.PublishBatch(txCtx, eventList); err != nil {
			return fmt.Errorf("failed to publish events: %w", err)
		}

		dto := dtos.ToTransactionDTO(newTx)
		result = &dto
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// uniqueSortedWalletIDs returns the non-nil wallet ids in ascending order so
// every caller locks wallets in the same canonical order, preventing the
// deadlock a pair of crossing transfers could otherwise cause.
func uniqueSortedWalletIDs(ids ...*uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == nil {
			continue
		}
		if _, ok := seen[*id]; ok {
			continue
		}
		seen[*id] = struct{}{}
		out = append(out, *id)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].String() > out[j].String(); j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// buildPosts constructs the balanced set of ledger posts for a transaction's
// type. credit/debit are single-sided from the partner's point of view, so
// they are balanced against the partner's per-currency clearing wallet
// (created lazily on first use); transfer is already balanced between the
// two named wallets.
func buildPosts(
	ctx context.Context,
	walletRepo ports.WalletRepository,
	partnerRepo ports.PartnerRepository,
	partner *entities.Partner,
	txType entities.TransactionType,
	amount valueobjects.Money,
	fromWalletID, toWalletID *uuid.UUID,
	description string,
) ([]ledger.Post, error) {
	switch txType {
	case entities.TransactionTypeTransfer:
		return []ledger.Post{
			{WalletID: *fromWalletID, Type: entities.LedgerEntryTypeDebit, Amount: amount, Description: description},
			{WalletID: *toWalletID, Type: entities.LedgerEntryTypeCredit, Amount: amount, Description: description},
		}, nil
	case entities.TransactionTypeCredit:
		clearing, err := EnsureClearingWallet(ctx, walletRepo, partnerRepo, partner, amount.Currency())
		if err != nil {
			return nil, err
		}
		return []ledger.Post{
			{WalletID: clearing.ID(), Type: entities.LedgerEntryTypeDebit, Amount: amount, Description: description},
			{WalletID: *toWalletID, Type: entities.LedgerEntryTypeCredit, Amount: amount, Description: description},
		}, nil
	case entities.TransactionTypeDebit:
		clearing, err := EnsureClearingWallet(ctx, walletRepo, partnerRepo, partner, amount.Currency())
		if err != nil {
			return nil, err
		}
		return []ledger.Post{
			{WalletID: *fromWalletID, Type: entities.LedgerEntryTypeDebit, Amount: amount, Description: description},
			{WalletID: clearing.ID(), Type: entities.LedgerEntryTypeCredit, Amount: amount, Description: description},
		}, nil
	default:
		return nil, domainerrors.ValidationError{Field: "type", Message: "unknown transaction type"}
	}
}
