package transaction

import (
	"context"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/domain/entities"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/google/uuid"
)

// ListByWalletUseCase lists the transactions posted against one wallet,
// page by page.
type ListByWalletUseCase struct {
	walletRepo      ports.WalletRepository
	transactionRepo ports.TransactionRepository
}

func NewListByWalletUseCase(walletRepo ports.WalletRepository, transactionRepo ports.TransactionRepository) *ListByWalletUseCase {
	return &ListByWalletUseCase{walletRepo: walletRepo, transactionRepo: transactionRepo}
}

func (uc *ListByWalletUseCase) Execute(ctx context.Context, partnerID, walletID uuid.UUID, q dtos.ListTransactionsQuery) (*dtos.TransactionListDTO, error) {
	wallet, err := uc.walletRepo.FindByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if !wallet.BelongsToPartner(partnerID) {
		return nil, domainerrors.ErrForbidden
	}

	filter := ports.TransactionFilter{}
	if q.Type != nil {
		t := entities.TransactionType(*q.Type)
		filter.Type = &t
	}
	if q.Status != nil {
		s := entities.TransactionStatus(*q.Status)
		filter.Status = &s
	}

	txs, err := uc.transactionRepo.FindByWalletID(ctx, walletID, filter, q.Offset, q.Limit)
	if err != nil {
		return nil, err
	}

	return &dtos.TransactionListDTO{
		Transactions: dtos.ToTransactionDTOList(txs),
		Offset:       q.Offset,
		Limit:        q.Limit,
	}, nil
}
