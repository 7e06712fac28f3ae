package funding

import (
	"context"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/ports"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/google/uuid"
)

// GetUseCase reads one funding session, scoped to the caller's partner.
type GetUseCase struct {
	walletRepo         ports.WalletRepository
	fundingSessionRepo ports.FundingSessionRepository
}

func NewGetUseCase(walletRepo ports.WalletRepository, fundingSessionRepo ports.FundingSessionRepository) *GetUseCase {
	return &GetUseCase{walletRepo: walletRepo, fundingSessionRepo: fundingSessionRepo}
}

func (uc *GetUseCase) Execute(ctx context.Context, partnerID, sessionID uuid.UUID) (*dtos.FundingSessionDTO, error) {
	session, err := uc.fundingSessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	w, err := uc.walletRepo.FindByID(ctx, session.WalletID())
	if err != nil {
		return nil, err
	}
	if !w.BelongsToPartner(partnerID) {
		return nil, domainerrors.ErrForbidden
	}
	dto := dtos.ToFundingSessionDTO(session)
	return &dto, nil
}
