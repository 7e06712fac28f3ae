package funding

import (
	"context"
	"fmt"
	"time"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/gateway"
	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/domain/entities"
	"github.com/google/uuid"
)

// PublicGetUseCase serves the unauthenticated payment page. An expired
// session surfaces as gone rather than returning a stale client secret; the
// secret itself is fetched from the processor on every read and never
// persisted.
type PublicGetUseCase struct {
	fundingSessionRepo ports.FundingSessionRepository
	gateway            gateway.Gateway
}

func NewPublicGetUseCase(fundingSessionRepo ports.FundingSessionRepository, gw gateway.Gateway) *PublicGetUseCase {
	return &PublicGetUseCase{fundingSessionRepo: fundingSessionRepo, gateway: gw}
}

func (uc *PublicGetUseCase) Execute(ctx context.Context, sessionID uuid.UUID) (*dtos.PublicFundingSessionDTO, error) {
	session, err := uc.fundingSessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := session.EnsureNotExpired(time.Now().UTC()); err != nil {
		return nil, err
	}

	dto := dtos.ToPublicFundingSessionDTO(session)

	// A session that already settled has no payment left to collect, so the
	// page gets the state without a secret.
	if session.Status() == entities.FundingSessionStatusCreated || session.Status() == entities.FundingSessionStatusActive {
		intent, err := uc.gateway.GetPaymentIntent(ctx, session.PaymentIntentID())
		if err != nil {
			return nil, fmt.Errorf("failed to fetch payment intent: %w", err)
		}
		dto.ClientSecret = intent.ClientSecret
	}

	return &dto, nil
}
