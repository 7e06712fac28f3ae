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

// GetByExternalIDUseCase resolves a wallet by the partner-supplied external
// wallet id. The lookup is keyed on (partnerId, externalWalletId), so a
// partner can only ever see its own wallets here — no cross-tenant check is
// needed beyond the composite key itself.
type GetByExternalIDUseCase struct {
	walletRepo ports.WalletRepository
	ledger     *ledger.Engine
}

func NewGetByExternalIDUseCase(walletRepo ports.WalletRepository, ledgerEngine *ledger.Engine) *GetByExternalIDUseCase {
	return &GetByExternalIDUseCase{walletRepo: walletRepo, ledger: ledgerEngine}
}

func (uc *GetByExternalIDUseCase) Execute(ctx context.Context, partnerID uuid.UUID, externalWalletID string) (*dtos.WalletDTO, error) {
	if externalWalletID == "" {
		return nil, domainerrors.ValidationError{Field: "externalWalletId", Message: "must not be empty"}
	}

	w, err := uc.walletRepo.FindByExternalWalletID(ctx, partnerID, externalWalletID)
	if err != nil {
		return nil, err
	}

	balance, err := uc.ledger.Balance(ctx, w.ID(), w.Currency())
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}

	dto := dtos.ToWalletDTO(w, balance.Decimal())
	return &dto, nil
}
