// Package dtos - mappers convert domain entities to their API-facing shape.
package dtos

import (
	"github.com/Haleralex/payflow/internal/domain/entities"
)

// ToPartnerDTO converts a Partner entity.
func ToPartnerDTO(p *entities.Partner) PartnerDTO {
	return PartnerDTO{
		ID:         p.ID().String(),
		Name:       p.Name(),
		Status:     string(p.Status()),
		WebhookURL: p.WebhookURL(),
		CreatedAt:  p.CreatedAt(),
		UpdatedAt:  p.UpdatedAt(),
	}
}

// ToApiKeyDTO converts an ApiKey entity. The caller is responsible for
// setting CreatedSecret on the result when (and only when) this is the
// creation response.
func ToApiKeyDTO(k *entities.ApiKey) ApiKeyDTO {
	perms := make([]string, 0, len(k.Permissions()))
	for _, p := range k.Permissions() {
		perms = append(perms, string(p))
	}
	return ApiKeyDTO{
		ID:          k.ID().String(),
		PartnerID:   k.PartnerID().String(),
		Environment: string(k.Environment()),
		Permissions: perms,
		Active:      k.Active(),
		ExpiresAt:   k.ExpiresAt(),
		LastUsedAt:  k.LastUsedAt(),
		CreatedAt:   k.CreatedAt(),
	}
}

// ToWalletDTO converts a Wallet entity plus its freshly-read balance into
// the API's wire shape.
func ToWalletDTO(w *entities.Wallet, balance string) WalletDTO {
	return WalletDTO{
		ID:               w.ID().String(),
		ExternalUserID:   w.ExternalUserID(),
		ExternalWalletID: w.ExternalWalletID(),
		Name:             w.Name(),
		CurrencyCode:     w.Currency().Code(),
		Status:           string(w.Status()),
		Balance:          balance,
		CreatedAt:        w.CreatedAt(),
		UpdatedAt:        w.UpdatedAt(),
	}
}

// ToTransactionDTO converts a Transaction entity.
func ToTransactionDTO(tx *entities.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:                   tx.ID().String(),
		Type:                 string(tx.Type()),
		Status:               string(tx.Status()),
		Amount:               tx.Amount().Decimal(),
		CurrencyCode:         tx.Amount().Currency().Code(),
		IdempotencyKey:       tx.IdempotencyKey(),
		Description:          tx.Description(),
		GatewayTransactionID: tx.GatewayTransactionID(),
		Gateway:              tx.Gateway(),
		FailureReason:        tx.FailureReason(),
		CreatedAt:            tx.CreatedAt(),
		UpdatedAt:            tx.UpdatedAt(),
	}
	if from := tx.FromWalletID(); from != nil {
		s := from.String()
		dto.FromWalletID = &s
	}
	if to := tx.ToWalletID(); to != nil {
		s := to.String()
		dto.ToWalletID = &s
	}
	return dto
}

// ToTransactionDTOList converts a slice of Transaction entities.
func ToTransactionDTOList(txs []*entities.Transaction) []TransactionDTO {
	result := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		result[i] = ToTransactionDTO(tx)
	}
	return result
}

// ToLedgerEntryDTO converts a LedgerEntry entity.
func ToLedgerEntryDTO(e *entities.LedgerEntry) LedgerEntryDTO {
	return LedgerEntryDTO{
		ID:            e.ID().String(),
		TransactionID: e.TransactionID().String(),
		WalletID:      e.WalletID().String(),
		Type:          string(e.Type()),
		Amount:        e.Amount().Decimal(),
		Balance:       e.Balance().Decimal(),
		Description:   e.Description(),
		CreatedAt:     e.CreatedAt(),
	}
}

// ToLedgerEntryDTOList converts a slice of LedgerEntry entities.
func ToLedgerEntryDTOList(entries []*entities.LedgerEntry) []LedgerEntryDTO {
	result := make([]LedgerEntryDTO, len(entries))
	for i, e := range entries {
		result[i] = ToLedgerEntryDTO(e)
	}
	return result
}

// ToFundingSessionDTO converts a FundingSession entity. PublicURL is the
// hosted payment page path for the session.
func ToFundingSessionDTO(s *entities.FundingSession) FundingSessionDTO {
	return FundingSessionDTO{
		ID:              s.ID().String(),
		WalletID:        s.WalletID().String(),
		PaymentIntentID: s.PaymentIntentID(),
		Amount:          s.Amount().Decimal(),
		CurrencyCode:    s.Amount().Currency().Code(),
		Status:          string(s.Status()),
		PublicURL:       "/pay/" + s.ID().String(),
		ExpiresAt:       s.ExpiresAt(),
		SuccessURL:      s.SuccessURL(),
		CancelURL:       s.CancelURL(),
		Metadata:        s.Metadata(),
		CreatedAt:       s.CreatedAt(),
		UpdatedAt:       s.UpdatedAt(),
	}
}

// ToPublicFundingSessionDTO converts a FundingSession into the shape the
// unauthenticated payment page reads. The caller sets ClientSecret after
// fetching it from the processor.
func ToPublicFundingSessionDTO(s *entities.FundingSession) PublicFundingSessionDTO {
	return PublicFundingSessionDTO{
		ID:           s.ID().String(),
		Status:       string(s.Status()),
		Amount:       s.Amount().Decimal(),
		CurrencyCode: s.Amount().Currency().Code(),
		WalletID:     s.WalletID().String(),
		ExpiresAt:    s.ExpiresAt(),
		Metadata:     s.Metadata(),
	}
}
