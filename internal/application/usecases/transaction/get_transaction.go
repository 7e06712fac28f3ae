package transaction

import (
	"context"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/ports"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/google/uuid"
)

// GetUseCase reads a single transaction, enforcing that it belongs to the
// requesting partner.
type GetUseCase struct {
	transactionRepo ports.TransactionRepository
}

func NewGetUseCase(transactionRepo ports.TransactionRepository) *GetUseCase {
	return &GetUseCase{transactionRepo: transactionRepo}
}

func (uc *GetUseCase) Execute(ctx context.Context, partnerID, transactionID uuid.UUID) (*dtos.TransactionDTO, error) {
	tx, err := uc.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.PartnerID() != partnerID {
		return nil, domainerrors.ErrForbidden
	}
	dto := dtos.ToTransactionDTO(tx)
	return &dto, nil
}
