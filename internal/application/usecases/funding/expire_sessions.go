package funding

import (
	"context"
	"fmt"
	"time"

	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/domain/events"
)

// expireSweepBatchSize bounds how many sessions one sweep pass claims, so a
// backlog cannot hold the unit of work open indefinitely.
const expireSweepBatchSize = 100

// ExpireSweepUseCase is the background job behind the fixed 30-minute
// funding-session TTL: any session still "created" or "active" past
// expiresAt is moved to expired and announced on funding_session.expired.
type ExpireSweepUseCase struct {
	fundingSessionRepo ports.FundingSessionRepository
	eventPublisher     ports.EventPublisher
	uow                ports.UnitOfWork
}

func NewExpireSweepUseCase(fundingSessionRepo ports.FundingSessionRepository, eventPublisher ports.EventPublisher, uow ports.UnitOfWork) *ExpireSweepUseCase {
	return &ExpireSweepUseCase{fundingSessionRepo: fundingSessionRepo, eventPublisher: eventPublisher, uow: uow}
}

// Execute expires one batch of overdue sessions and returns how many it
// touched, so the caller's scheduler can log progress or keep draining.
func (uc *ExpireSweepUseCase) Execute(ctx context.Context) (int, error) {
	expired := 0
	err := uc.uow.Execute(ctx, func(txCtx context.Context) error {
		sessions, err := uc.fundingSessionRepo.FindExpirable(txCtx, time.Now().UTC(), expireSweepBatchSize)
		if err != nil {
			return fmt.Errorf("failed to load expirable funding sessions: %w", err)
		}

		evts := make([]events.DomainEvent, 0, len(sessions))
		for _, session := range sessions {
			if err := session.Expire(); err != nil {
				return err
			}
			if err := uc.fundingSessionRepo.Save(txCtx, session); err != nil {
				return fmt.Errorf("failed to save expired funding session: %w", err)
			}
			evts = append(evts, events.NewFundingSessionExpired(session.ID(), session.WalletID()))
		}
		if len(evts) > 0 {
			if err := uc.eventPublisher.PublishBatch(txCtx, evts); err != nil {
				return fmt.Errorf("failed to publish FundingSessionExpired events: %w", err)
			}
		}
		expired = len(sessions)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}
