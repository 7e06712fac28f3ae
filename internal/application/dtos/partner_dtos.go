// Package dtos - partner, API key, and funding session shapes.
package dtos

import "time"

// RegisterPartnerCommand onboards a new partner tenant. Issued only through
// the admin surface.
type RegisterPartnerCommand struct {
	Name       string `json:"name" binding:"required"`
	WebhookURL string `json:"webhookUrl,omitempty" binding:"omitempty,url"`
}

// PartnerDTO is a partner as exposed through the admin API. CreatedWebhookSecret
// is only ever populated once, in the response to RegisterPartnerCommand or a
// secret rotation; it is never retrievable again afterwards,
// mirroring ApiKeyDTO.CreatedSecret.
type PartnerDTO struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Status               string    `json:"status"`
	WebhookURL           string    `json:"webhookUrl,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
	CreatedWebhookSecret string    `json:"webhookSecret,omitempty"`
}

// CreateApiKeyCommand mints a new API key for a partner.
type CreateApiKeyCommand struct {
	Environment string     `json:"environment" binding:"required,environment"`
	Permissions []string   `json:"permissions" binding:"required,dive,permission"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// ApiKeyDTO is the metadata returned for an API key. CreatedSecret is only
// ever populated once, in the response to CreateApiKeyCommand — the secret
// is never retrievable again afterwards.
type ApiKeyDTO struct {
	ID            string     `json:"id"`
	PartnerID     string     `json:"partnerId"`
	Environment   string     `json:"environment"`
	Permissions   []string   `json:"permissions"`
	Active        bool       `json:"active"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	LastUsedAt    *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	CreatedSecret string     `json:"secret,omitempty"`
}

// CreateFundingSessionCommand opens a hosted funding session against the
// configured card processor. Unlike every other money-movement command,
// Amount is a plain positive number rather than a fixed-point string.
type CreateFundingSessionCommand struct {
	WalletID   string                 `json:"walletId" binding:"required,uuid"`
	Amount     float64                `json:"amount" binding:"required,gt=0"`
	SuccessURL string                 `json:"successUrl" binding:"omitempty,url"`
	CancelURL  string                 `json:"cancelUrl" binding:"omitempty,url"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// FundWalletCommand is the body of the per-wallet funding endpoint; the
// wallet is named by the path.
type FundWalletCommand struct {
	Amount     float64                `json:"amount" binding:"required,gt=0"`
	SuccessURL string                 `json:"successUrl" binding:"omitempty,url"`
	CancelURL  string                 `json:"cancelUrl" binding:"omitempty,url"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// FundingSessionDTO is a funding session as exposed through the partner API.
// PublicURL points at the hosted payment page for this session.
type FundingSessionDTO struct {
	ID              string                 `json:"id"`
	WalletID        string                 `json:"walletId"`
	PaymentIntentID string                 `json:"paymentIntentId"`
	Amount          string                 `json:"amount"`
	CurrencyCode    string                 `json:"currency"`
	Status          string                 `json:"status"`
	HostedURL       string                 `json:"hostedUrl,omitempty"`
	PublicURL       string                 `json:"publicUrl,omitempty"`
	ExpiresAt       time.Time              `json:"expiresAt"`
	SuccessURL      string                 `json:"successUrl"`
	CancelURL       string                 `json:"cancelUrl"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// PublicFundingSessionDTO is the unauthenticated payment page's view of a
// session. ClientSecret is fetched from the processor on demand and never
// persisted locally.
type PublicFundingSessionDTO struct {
	ID           string                 `json:"id"`
	Status       string                 `json:"status"`
	Amount       string                 `json:"amount"`
	CurrencyCode string                 `json:"currency"`
	WalletID     string                 `json:"walletId"`
	ExpiresAt    time.Time              `json:"expiresAt"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	ClientSecret string                 `json:"clientSecret,omitempty"`
}
