// Package entities contains the domain aggregates of the ledger: Partner,
// ApiKey, Wallet, Transaction, LedgerEntry, GatewayTransaction and
// FundingSession.
package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/google/uuid"
)

// webhookSecretBytes is the amount of entropy behind a partner's outbound
// webhook signing secret, HMAC-SHA-256 under a per-partner secret.
const webhookSecretBytes = 32

// PartnerStatus is the one-way-then-reversible status machine: status
// transitions one-way from pending into {approved, rejected}; suspension
// is reversible (approved <-> suspended).
type PartnerStatus string

const (
	PartnerStatusPending   PartnerStatus = "pending"
	PartnerStatusApproved  PartnerStatus = "approved"
	PartnerStatusSuspended PartnerStatus = "suspended"
	PartnerStatusRejected  PartnerStatus = "rejected"
)

func (s PartnerStatus) IsValid() bool {
	switch s {
	case PartnerStatusPending, PartnerStatusApproved, PartnerStatusSuspended, PartnerStatusRejected:
		return true
	}
	return false
}

// Partner is a B2B tenant owning wallets and API keys.
type Partner struct {
	id         uuid.UUID
	name       string
	status     PartnerStatus
	webhookURL string
	// settings holds partner-scoped configuration including the lazily-created,
	// per-currency clearing wallet ids
	// (settings["clearingWalletId"][currency] -> wallet id string), never
	// exposed through the partner API.
	settings  map[string]interface{}
	createdAt time.Time
	updatedAt time.Time
}

// NewPartner creates a new Partner in the pending status. Partners are created
// by admin action, never by partner self-service.
func NewPartner(name string) (*Partner, error) {
	if name == "" {
		return nil, domainerrors.ValidationError{Field: "name", Message: "name is required"}
	}
	secret, err := generateWebhookSecret()
	if err != nil {
		return nil, domainerrors.NewBusinessRuleViolation("PartnerCreation", "failed to generate webhook secret", nil)
	}

	now := time.Now().UTC()
	return &Partner{
		id:        uuid.New(),
		name:      name,
		status:    PartnerStatusPending,
		settings:  map[string]interface{}{"webhookSecret": secret},
		createdAt: now,
		updatedAt: now,
	}, nil
}

// generateWebhookSecret returns a random hex-encoded signing secret.
func generateWebhookSecret() (string, error) {
	buf := make([]byte, webhookSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// ReconstructPartner rebuilds a Partner from persisted state.
func ReconstructPartner(
	id uuid.UUID,
	name string,
	status PartnerStatus,
	webhookURL string,
	settings map[string]interface{},
	createdAt, updatedAt time.Time,
) *Partner {
	if settings == nil {
		settings = make(map[string]interface{})
	}
	return &Partner{
		id:         id,
		name:       name,
		status:     status,
		webhookURL: webhookURL,
		settings:   settings,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func (p *Partner) ID() uuid.UUID         { return p.id }
func (p *Partner) Name() string          { return p.name }
func (p *Partner) Status() PartnerStatus { return p.status }
func (p *Partner) WebhookURL() string    { return p.webhookURL }
func (p *Partner) CreatedAt() time.Time  { return p.createdAt }
func (p *Partner) UpdatedAt() time.Time  { return p.updatedAt }
func (p *Partner) IsApproved() bool      { return p.status == PartnerStatusApproved }

// Settings returns a copy of the partner's settings map.
func (p *Partner) Settings() map[string]interface{} {
	out := make(map[string]interface{}, len(p.settings))
	for k, v := range p.settings {
		out[k] = v
	}
	return out
}

// ClearingWalletID returns the partner's clearing wallet id for a currency, if
// one has been lazily created for it.
func (p *Partner) ClearingWalletID(currency string) (uuid.UUID, bool) {
	byCurrency, ok := p.settings["clearingWalletId"].(map[string]interface{})
	if !ok {
		return uuid.Nil, false
	}
	raw, ok := byCurrency[currency]
	if !ok {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// SetClearingWalletID lazily records the clearing wallet id for a currency.
func (p *Partner) SetClearingWalletID(currency string, walletID uuid.UUID) {
	byCurrency, ok := p.settings["clearingWalletId"].(map[string]interface{})
	if !ok {
		byCurrency = make(map[string]interface{})
	}
	byCurrency[currency] = walletID.String()
	p.settings["clearingWalletId"] = byCurrency
	p.updatedAt = time.Now().UTC()
}

// WebhookSecret returns the partner's outbound webhook HMAC signing secret.
// Never exposed through the partner read API; returned once,
// in full, only at creation and on rotation.
func (p *Partner) WebhookSecret() string {
	s, _ := p.settings["webhookSecret"].(string)
	return s
}

// RotateWebhookSecret replaces the partner's webhook signing secret and
// returns the new plaintext value.
func (p *Partner) RotateWebhookSecret() (string, error) {
	secret, err := generateWebhookSecret()
	if err != nil {
		return "", domainerrors.NewBusinessRuleViolation("WebhookSecretRotation", "failed to generate webhook secret", nil)
	}
	p.settings["webhookSecret"] = secret
	p.updatedAt = time.Now().UTC()
	return secret, nil
}

// Approve transitions pending -> approved. One-way.
func (p *Partner) Approve() error {
	if p.status != PartnerStatusPending {
		return domainerrors.NewBusinessRuleViolation("PartnerApproval", "only a pending partner can be approved", nil)
	}
	p.status = PartnerStatusApproved
	p.updatedAt = time.Now().UTC()
	return nil
}

// Reject transitions pending -> rejected. One-way.
func (p *Partner) Reject() error {
	if p.status != PartnerStatusPending {
		return domainerrors.NewBusinessRuleViolation("PartnerApproval", "only a pending partner can be rejected", nil)
	}
	p.status = PartnerStatusRejected
	p.updatedAt = time.Now().UTC()
	return nil
}

// Suspend transitions approved -> suspended. Reversible.
func (p *Partner) Suspend() error {
	if p.status != PartnerStatusApproved {
		return domainerrors.NewBusinessRuleViolation("PartnerSuspension", "only an approved partner can be suspended", nil)
	}
	p.status = PartnerStatusSuspended
	p.updatedAt = time.Now().UTC()
	return nil
}

// Reinstate transitions suspended -> approved. Reversible.
func (p *Partner) Reinstate() error {
	if p.status != PartnerStatusSuspended {
		return domainerrors.NewBusinessRuleViolation("PartnerSuspension", "only a suspended partner can be reinstated", nil)
	}
	p.status = PartnerStatusApproved
	p.updatedAt = time.Now().UTC()
	return nil
}

// SetWebhookURL updates the partner's outbound webhook URL.
func (p *Partner) SetWebhookURL(url string) {
	p.webhookURL = url
	p.updatedAt = time.Now().UTC()
}
