package funding

import (
	"context"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/ports"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/google/uuid"
)

// ListByWalletUseCase lists funding sessions opened against one wallet.
type ListByWalletUseCase struct {
	walletRepo         ports.WalletRepository
	fundingSessionRepo ports.FundingSessionRepository
}

func NewListByWalletUseCase(walletRepo ports.WalletRepository, fundingSessionRepo ports.FundingSessionRepository) *ListByWalletUseCase {
	return &ListByWalletUseCase{walletRepo: walletRepo, fundingSessionRepo: fundingSessionRepo}
}

func (uc *ListByWalletUseCase) Execute(ctx context.Context, partnerID, walletID uuid.UUID, offset, limit int) ([]dtos.FundingSessionDTO, error) {
	w, err := uc.walletRepo.FindByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if !w.BelongsToPartner(partnerID) {
		return nil, domainerrors.ErrForbidden
	}

	sessions, err := uc.fundingSessionRepo.FindByWalletID(ctx, walletID, offset, limit)
	if err != nil {
		return nil, err
	}
	result := make([]dtos.FundingSessionDTO, len(sessions))
	for i, s := range sessions {
		result[i] = dtos.ToFundingSessionDTO(s)
	}
	return result, nil
}
