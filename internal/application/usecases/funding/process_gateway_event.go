package funding

import (
	"context"
	"fmt"
	"time"

	"github.com/Haleralex/payflow/internal/application/gateway"
	"github.com/Haleralex/payflow/internal/application/ledger"
	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/application/usecases/transaction"
	"github.com/Haleralex/payflow/internal/domain/entities"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/events"
	"github.com/google/uuid"
)

// ProcessGatewayEventUseCase reconciles one verified inbound processor
// webhook:
//
// 1. record the gateway transaction (insert-or-ignore on
// gatewayTransactionId so duplicate deliveries are a no-op)
// 2. events tagged with a local transaction id reconcile that transaction
// directly; everything else is matched to a funding session by
// paymentIntentId, and events matching neither are recorded and dropped
// 3. on a completed event, post a credit from the partner's clearing
// wallet into the session's wallet (idempotent on the intent id) and mark
// the session completed
// 4. on a failed event, mark the session failed without touching the ledger
type ProcessGatewayEventUseCase struct {
	gatewayTxRepo      ports.GatewayTransactionRepository
	fundingSessionRepo ports.FundingSessionRepository
	walletRepo         ports.WalletRepository
	partnerRepo        ports.PartnerRepository
	transactionRepo    ports.TransactionRepository
	eventPublisher     ports.EventPublisher
	uow                ports.UnitOfWork
	ledger             *ledger.Engine
}

func NewProcessGatewayEventUseCase(
	gatewayTxRepo ports.GatewayTransactionRepository,
	fundingSessionRepo ports.FundingSessionRepository,
	walletRepo ports.WalletRepository,
	partnerRepo ports.PartnerRepository,
	transactionRepo ports.TransactionRepository,
	eventPublisher ports.EventPublisher,
	uow ports.UnitOfWork,
	ledgerEngine *ledger.Engine,
) *ProcessGatewayEventUseCase {
	return &ProcessGatewayEventUseCase{
		gatewayTxRepo:      gatewayTxRepo,
		fundingSessionRepo: fundingSessionRepo,
		walletRepo:         walletRepo,
		partnerRepo:        partnerRepo,
		transactionRepo:    transactionRepo,
		eventPublisher:     eventPublisher,
		uow:                uow,
		ledger:             ledgerEngine,
	}
}

func (uc *ProcessGatewayEventUseCase) Execute(ctx context.Context, event *gateway.WebhookEvent, gatewayName string) error {
	return uc.uow.ExecuteWithRetry(ctx, 3, func(txCtx context.Context) error {
		if existing, err := uc.gatewayTxRepo.FindByGatewayTransactionID(txCtx, event.GatewayTransactionID); err == nil && existing != nil {
			return nil // already processed, at-least-once delivery is expected
		} else if err != nil && !domainerrors.IsNotFound(err) {
			return fmt.Errorf("failed to check gateway transaction idempotency: %w", err)
		}

		var status entities.GatewayTransactionStatus
		switch event.Status {
		case "completed":
			status = entities.GatewayTransactionStatusCompleted
		case "failed":
			status = entities.GatewayTransactionStatusFailed
		default:
			return domainerrors.NewBusinessRuleViolation("GatewayEventStatus", "unknown gateway event status: "+event.Status, nil)
		}

		// Events tagged with a local transaction id (payout captures and the
		// like) reconcile that transaction directly instead of a funding
		// session.
		if event.TransactionID != "" {
			return uc.reconcileTransaction(txCtx, event, gatewayName, status)
		}

		session, err := uc.fundingSessionRepo.FindByPaymentIntentID(txCtx, event.PaymentIntentID)
		if err != nil {
			if domainerrors.IsNotFound(err) {
				// Not ours to settle: record the event so replays stay
				// idempotent, then drop it.
				return uc.recordGatewayTx(txCtx, event, gatewayName, status, nil)
			}
			return fmt.Errorf("failed to load funding session: %w", err)
		}
		if session.Status().IsTerminal() {
			// Completed, failed, and expired sessions are never reopened;
			// record the event so the replay suppressor holds and move on.
			return uc.recordGatewayTx(txCtx, event, gatewayName, status, nil)
		}

		if status == entities.GatewayTransactionStatusFailed {
			if err := uc.recordGatewayTx(txCtx, event, gatewayName, status, nil); err != nil {
				return err
			}
			if err := session.Fail(); err != nil {
				return err
			}
			return uc.fundingSessionRepo.Save(txCtx, session)
		}

		if session.IsExpired(time.Now().UTC()) {
			// Past its window but not yet swept: settle nothing, mark it.
			if err := uc.recordGatewayTx(txCtx, event, gatewayName, status, nil); err != nil {
				return err
			}
			if err := session.Expire(); err != nil {
				return err
			}
			return uc.fundingSessionRepo.Save(txCtx, session)
		}

		// The payment intent id doubles as the credit's idempotency key, so
		// however many succeeded events arrive, the wallet is credited once.
		wallet, err := uc.walletRepo.FindByID(txCtx, session.WalletID())
		if err != nil {
			return fmt.Errorf("failed to load wallet: %w", err)
		}
		partner, err := uc.partnerRepo.FindByID(txCtx, wallet.PartnerID())
		if err != nil {
			return fmt.Errorf("failed to load partner: %w", err)
		}
		if existing, err := uc.transactionRepo.FindByIdempotencyKey(txCtx, partner.ID(), event.PaymentIntentID); err == nil && existing != nil {
			return uc.recordGatewayTx(txCtx, event, gatewayName, status, uuidPtr(existing.ID()))
		} else if err != nil && !domainerrors.IsNotFound(err) {
			return fmt.Errorf("failed to check settlement idempotency: %w", err)
		}

		clearing, err := transaction.EnsureClearingWallet(txCtx, uc.walletRepo, uc.partnerRepo, partner, session.Amount().Currency())
		if err != nil {
			return err
		}

		tx, err := entities.NewTransaction(entities.NewTransactionParams{
			PartnerID:      partner.ID(),
			Type:           entities.TransactionTypeCredit,
			Amount:         session.Amount(),
			ToWalletID:     uuidPtr(session.WalletID()),
			IdempotencyKey: event.PaymentIntentID,
			Description:    "funding session completed",
		})
		if err != nil {
			return err
		}
		tx.AttachGatewayReference(gatewayName, event.GatewayTransactionID)
		if err := uc.transactionRepo.Save(txCtx, tx); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}
		if err := uc.recordGatewayTx(txCtx, event, gatewayName, status, uuidPtr(tx.ID())); err != nil {
			return err
		}

		posts := []ledger.Post{
			{WalletID: clearing.ID(), Type: entities.LedgerEntryTypeDebit, Amount: session.Amount(), Description: "funding session settlement"},
			{WalletID: wallet.ID(), Type: entities.LedgerEntryTypeCredit, Amount: session.Amount(), Description: "funding session settlement"},
		}
		if _, err := uc.ledger.Append(txCtx, tx.ID(), posts); err != nil {
			if failErr := tx.MarkFailed(err.Error()); failErr != nil {
				return failErr
			}
			if failErr := session.Fail(); failErr != nil {
				return failErr
			}
			if err := uc.transactionRepo.Save(txCtx, tx); err != nil {
				return err
			}
			return uc.fundingSessionRepo.Save(txCtx, session)
		}

		if err := tx.MarkCompleted(); err != nil {
			return err
		}
		if err := uc.transactionRepo.Save(txCtx, tx); err != nil {
			return fmt.Errorf("failed to save completed transaction: %w", err)
		}
		if err := session.Complete(); err != nil {
			return err
		}
		if err := uc.fundingSessionRepo.Save(txCtx, session); err != nil {
			return fmt.Errorf("failed to save funding session: %w", err)
		}

		return uc.eventPublisher.PublishBatch(txCtx, []events.DomainEvent{
			events.NewTransactionCompleted(tx.ID(), partner.ID(), string(entities.TransactionTypeCredit), session.Amount()),
			events.NewFundingSessionCompleted(session.ID(), wallet.ID(), session.Amount()),
		})
	})
}

// recordGatewayTx persists the processor-side event record (the replay
// suppressor) and announces the sync.
func (uc *ProcessGatewayEventUseCase) recordGatewayTx(ctx context.Context, event *gateway.WebhookEvent, gatewayName string, status entities.GatewayTransactionStatus, transactionID *uuid.UUID) error {
	gatewayTx := entities.NewGatewayTransaction(event.GatewayTransactionID, gatewayName, status, event.Amount, event.RawPayload, transactionID)
	if err := uc.gatewayTxRepo.Save(ctx, gatewayTx); err != nil {
		return fmt.Errorf("failed to save gateway transaction: %w", err)
	}
	if err := uc.eventPublisher.Publish(ctx, events.NewGatewayTransactionSynced(gatewayTx.ID(), gatewayName, string(status))); err != nil {
		return fmt.Errorf("failed to publish GatewayTransactionSynced: %w", err)
	}
	return nil
}

// reconcileTransaction drives a pending transaction to its terminal state off
// the processor's own verdict, for events tagged with a local transaction id.
func (uc *ProcessGatewayEventUseCase) reconcileTransaction(ctx context.Context, event *gateway.WebhookEvent, gatewayName string, status entities.GatewayTransactionStatus) error {
	txID, err := uuid.Parse(event.TransactionID)
	if err != nil {
		return uc.recordGatewayTx(ctx, event, gatewayName, status, nil)
	}

	tx, err := uc.transactionRepo.FindByID(ctx, txID)
	if err != nil {
		if domainerrors.IsNotFound(err) {
			return uc.recordGatewayTx(ctx, event, gatewayName, status, nil)
		}
		return fmt.Errorf("failed to load transaction: %w", err)
	}
	if tx.IsFinal() {
		return uc.recordGatewayTx(ctx, event, gatewayName, status, uuidPtr(tx.ID()))
	}

	if err := uc.recordGatewayTx(ctx, event, gatewayName, status, uuidPtr(tx.ID())); err != nil {
		return err
	}

	tx.AttachGatewayReference(gatewayName, event.GatewayTransactionID)
	if status == entities.GatewayTransactionStatusCompleted {
		if err := tx.MarkCompleted(); err != nil {
			return err
		}
	} else {
		if err := tx.MarkFailed("gateway reported failure"); err != nil {
			return err
		}
	}
	if err := uc.transactionRepo.Save(ctx, tx); err != nil {
		return fmt.Errorf("failed to save reconciled transaction: %w", err)
	}

	if status == entities.GatewayTransactionStatusCompleted {
		return uc.eventPublisher.Publish(ctx, events.NewTransactionCompleted(tx.ID(), tx.PartnerID(), string(tx.Type()), tx.Amount()))
	}
	return uc.eventPublisher.Publish(ctx, events.NewTransactionFailed(tx.ID(), tx.PartnerID(), string(tx.Type()), tx.Amount(), "gateway reported failure"))
}

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }
