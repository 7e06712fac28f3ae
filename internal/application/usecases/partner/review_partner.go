package partner

import (
	"context"
	"fmt"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/domain/entities"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/events"
	"github.com/google/uuid"
)

// Decision is the admin's verdict on a pending partner.
type Decision string

const (
	DecisionApprove   Decision = "approve"
	DecisionReject    Decision = "reject"
	DecisionSuspend   Decision = "suspend"
	DecisionReinstate Decision = "reinstate"
)

// ReviewUseCase applies an admin decision to a partner's lifecycle:
// pending -> {approved, rejected} one-way; approved <-> suspended
// reversible. Rejection also deactivates every production API key the
// partner holds, in the same unit of work.
type ReviewUseCase struct {
	partnerRepo    ports.PartnerRepository
	apiKeyRepo     ports.ApiKeyRepository
	eventPublisher ports.EventPublisher
	uow            ports.UnitOfWork
}

func NewReviewUseCase(partnerRepo ports.PartnerRepository, apiKeyRepo ports.ApiKeyRepository, eventPublisher ports.EventPublisher, uow ports.UnitOfWork) *ReviewUseCase {
	return &ReviewUseCase{partnerRepo: partnerRepo, apiKeyRepo: apiKeyRepo, eventPublisher: eventPublisher, uow: uow}
}

func (uc *ReviewUseCase) Execute(ctx context.Context, partnerID uuid.UUID, decision Decision, reason string) (*dtos.PartnerDTO, error) {
	var result *dtos.PartnerDTO

	err := uc.uow.Execute(ctx, func(txCtx context.Context) error {
		p, err := uc.partnerRepo.FindByID(txCtx, partnerID)
		if err != nil {
			return err
		}

		var transitionErr error
		var toPublish []events.DomainEvent
		switch decision {
		case DecisionApprove:
			transitionErr = p.Approve()
			toPublish = []events.DomainEvent{events.NewPartnerApproved(p.ID())}
		case DecisionReject:
			transitionErr = p.Reject()
			if transitionErr == nil {
				if err := uc.deactivateProductionKeys(txCtx, p.ID(), &toPublish); err != nil {
					return err
				}
			}
		case DecisionSuspend:
			transitionErr = p.Suspend()
			toPublish = []events.DomainEvent{events.NewPartnerSuspended(p.ID(), reason)}
		case DecisionReinstate:
			transitionErr = p.Reinstate()
		default:
			return domainerrors.ValidationError{Field: "decision", Message: "unknown partner decision"}
		}
		if transitionErr != nil {
			return transitionErr
		}

		if err := uc.partnerRepo.Save(txCtx, p); err != nil {
			return fmt.Errorf("failed to save partner: %w", err)
		}
		if len(toPublish) > 0 {
			if err := uc.eventPublisher.PublishBatch(txCtx, toPublish); err != nil {
				return fmt.Errorf("failed to publish events: %w", err)
			}
		}

		dto := dtos.ToPartnerDTO(p)
		result = &dto
		return nil
	})

	if err != nil {
		return nil, err
	}
	return result, nil
}

// deactivateProductionKeys revokes the partner's production credentials on
// rejection. Sandbox keys stay usable so the partner can keep integrating.
func (uc *ReviewUseCase) deactivateProductionKeys(ctx context.Context, partnerID uuid.UUID, toPublish *[]events.DomainEvent) error {
	keys, err := uc.apiKeyRepo.FindByPartnerID(ctx, partnerID)
	if err != nil {
		return fmt.Errorf("failed to load partner api keys: %w", err)
	}
	for _, key := range keys {
		if key.Environment() != entities.ApiKeyEnvironmentProduction || !key.Active() {
			continue
		}
		key.Deactivate()
		if err := uc.apiKeyRepo.Save(ctx, key); err != nil {
			return fmt.Errorf("failed to deactivate api key: %w", err)
		}
		*toPublish = append(*toPublish, events.NewApiKeyRevoked(key.ID(), partnerID))
	}
	return nil
}
