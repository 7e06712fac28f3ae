package wallet

import (
	"context"
	"fmt"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/ledger"
	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/domain/entities"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// ListUseCase pages through a partner's wallets.
type ListUseCase struct {
	walletRepo ports.WalletRepository
	ledger     *ledger.Engine
}

func NewListUseCase(walletRepo ports.WalletRepository, ledgerEngine *ledger.Engine) *ListUseCase {
	return &ListUseCase{walletRepo: walletRepo, ledger: ledgerEngine}
}

func (uc *ListUseCase) Execute(ctx context.Context, partnerID uuid.UUID, q dtos.ListWalletsQuery) (*dtos.WalletListDTO, error) {
	filter := ports.WalletFilter{}
	if q.CurrencyCode != nil {
		c, err := valueobjects.NewCurrency(*q.CurrencyCode)
		if err != nil {
			return nil, err
		}
		filter.Currency = &c
	}
	if q.Status != nil {
		s := entities.WalletStatus(*q.Status)
		filter.Status = &s
	}

	wallets, err := uc.walletRepo.FindByPartnerID(ctx, partnerID, filter, q.Offset, q.Limit)
	if err != nil {
		return nil, err
	}

	out := make([]dtos.WalletDTO, 0, len(wallets))
	for _, w := range wallets {
		balance, err := uc.ledger.Balance(ctx, w.ID(), w.Currency())
		if err != nil {
			return nil, fmt.Errorf("failed to read balance for wallet %s: %w", w.ID(), err)
		}
		out = append(out, dtos.ToWalletDTO(w, balance.Decimal()))
	}

	return &dtos.WalletListDTO{Wallets: out, Offset: q.Offset, Limit: q.Limit}, nil
}
