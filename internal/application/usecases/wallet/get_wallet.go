package wallet

import (
	"context"
	"fmt"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/ledger"
	"github.com/Haleralex/payflow/internal/application/ports"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/google/uuid"
)

// GetUseCase reads a wallet and its current balance, enforcing partner
// ownership. Balance is computed fresh from the ledger, never
// read off the wallet row.
type GetUseCase struct {
	walletRepo ports.WalletRepository
	ledger     *ledger.Engine
}

func NewGetUseCase(walletRepo ports.WalletRepository, ledgerEngine *ledger.Engine) *GetUseCase {
	return &GetUseCase{walletRepo: walletRepo, ledger: ledgerEngine}
}

func (uc *GetUseCase) Execute(ctx context.Context, partnerID, walletID uuid.UUID) (*dtos.WalletDTO, error) {
	w, err := uc.walletRepo.FindByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if !w.BelongsToPartner(partnerID) {
		return nil, domainerrors.ErrForbidden
	}

	balance, err := uc.ledger.Balance(ctx, walletID, w.Currency())
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}

	dto := dtos.ToWalletDTO(w, balance.Decimal())
	return &dto, nil
}
