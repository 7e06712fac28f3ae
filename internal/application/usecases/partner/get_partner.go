package partner

import (
	"context"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/google/uuid"
)

// GetUseCase reads one partner (admin surface).
type GetUseCase struct {
	partnerRepo ports.PartnerRepository
}

func NewGetUseCase(partnerRepo ports.PartnerRepository) *GetUseCase {
	return &GetUseCase{partnerRepo: partnerRepo}
}

func (uc *GetUseCase) Execute(ctx context.Context, partnerID uuid.UUID) (*dtos.PartnerDTO, error) {
	p, err := uc.partnerRepo.FindByID(ctx, partnerID)
	if err != nil {
		return nil, err
	}
	dto := dtos.ToPartnerDTO(p)
	return &dto, nil
}

// ListUseCase pages through all partners (admin surface).
type ListUseCase struct {
	partnerRepo ports.PartnerRepository
}

func NewListUseCase(partnerRepo ports.PartnerRepository) *ListUseCase {
	return &ListUseCase{partnerRepo: partnerRepo}
}

func (uc *ListUseCase) Execute(ctx context.Context, offset, limit int) ([]dtos.PartnerDTO, error) {
	partners, err := uc.partnerRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dtos.PartnerDTO, len(partners))
	for i, p := range partners {
		out[i] = dtos.ToPartnerDTO(p)
	}
	return out, nil
}
