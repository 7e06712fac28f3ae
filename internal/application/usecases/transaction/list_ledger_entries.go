package transaction

import (
	"context"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/ports"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/google/uuid"
)

// ListLedgerEntriesUseCase returns the append-only ledger for one wallet,
// backing the statement endpoint.
type ListLedgerEntriesUseCase struct {
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerEntryRepository
}

func NewListLedgerEntriesUseCase(walletRepo ports.WalletRepository, ledgerRepo ports.LedgerEntryRepository) *ListLedgerEntriesUseCase {
	return &ListLedgerEntriesUseCase{walletRepo: walletRepo, ledgerRepo: ledgerRepo}
}

func (uc *ListLedgerEntriesUseCase) Execute(ctx context.Context, partnerID, walletID uuid.UUID, offset, limit int) (*dtos.LedgerEntryListDTO, error) {
	wallet, err := uc.walletRepo.FindByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if !wallet.BelongsToPartner(partnerID) {
		return nil, domainerrors.ErrForbidden
	}

	entries, err := uc.ledgerRepo.FindByWalletID(ctx, walletID, offset, limit)
	if err != nil {
		return nil, err
	}

	return &dtos.LedgerEntryListDTO{
		Entries: dtos.ToLedgerEntryDTOList(entries),
		Offset:  offset,
		Limit:   limit,
	}, nil
}
