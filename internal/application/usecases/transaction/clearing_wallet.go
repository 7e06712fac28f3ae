package transaction

import (
	"context"
	"fmt"

	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/domain/entities"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
)

// EnsureClearingWallet returns the partner's clearing wallet for a currency,
// creating it on first use. There is one clearing wallet per partner per
// currency; its id is cached in the partner's settings so admin tooling can
// find it without scanning wallets. Must run inside the caller's unit of
// work so the created wallet commits atomically with the post that needed it.
func EnsureClearingWallet(
	ctx context.Context,
	walletRepo ports.WalletRepository,
	partnerRepo ports.PartnerRepository,
	partner *entities.Partner,
	currency valueobjects.Currency,
) (*entities.Wallet, error) {
	clearing, err := walletRepo.FindClearingWallet(ctx, partner.ID(), currency)
	if err == nil {
		return clearing, nil
	}
	if !domainerrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to load clearing wallet: %w", err)
	}

	clearing, err = entities.NewClearingWallet(partner.ID(), currency)
	if err != nil {
		return nil, err
	}
	if err := walletRepo.Save(ctx, clearing); err != nil {
		return nil, fmt.Errorf("failed to save clearing wallet: %w", err)
	}

	partner.SetClearingWalletID(currency.Code(), clearing.ID())
	if err := partnerRepo.Save(ctx, partner); err != nil {
		return nil, fmt.Errorf("failed to record clearing wallet id: %w", err)
	}

	return clearing, nil
}
