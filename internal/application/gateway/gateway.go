// Package gateway defines the port to the external card-processor funding
// rail. Concrete implementations live in
// internal/infrastructure/gateway: a live HTTPS client and a deterministic
// mock used in sandbox mode and tests.
package gateway

import (
	"context"

	"github.com/Haleralex/payflow/internal/domain/valueobjects"
)

// PaymentIntent is the processor-side handle for a hosted funding session.
// ClientSecret is handed to the public payment page on demand and must never
// be persisted locally.
type PaymentIntent struct {
	ID           string
	HostedURL    string
	ClientSecret string
	Status       string
}

// CapturedPayment is the processor's confirmation that funds were taken.
type CapturedPayment struct {
	GatewayTransactionID string
	Status               string
}

// Payout is the processor's handle for an outbound disbursement
// (payouts:write permission).
type Payout struct {
	GatewayTransactionID string
	Status               string
}

// Gateway is the card-processor funding rail contract:
// createPaymentIntent, capturePayment, refundPayment, createPayout,
// verifyWebhook.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, amount valueobjects.Money, successURL, cancelURL string, metadata map[string]interface{}) (*PaymentIntent, error)
	// GetPaymentIntent re-reads an intent from the processor, including its
	// current client secret for the public payment page.
	GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error)
	CapturePayment(ctx context.Context, paymentIntentID string) (*CapturedPayment, error)
	RefundPayment(ctx context.Context, gatewayTransactionID string, amount valueobjects.Money) (*CapturedPayment, error)
	CreatePayout(ctx context.Context, amount valueobjects.Money, destination string) (*Payout, error)

	// VerifyWebhook checks the processor's signature header against the raw
	// request body and returns the parsed event, or an error if the
	// signature does not match.
	VerifyWebhook(ctx context.Context, payload []byte, signatureHeader string) (*WebhookEvent, error)
}

// WebhookEvent is a processor-originated event, already signature-verified.
// TransactionID is the local transaction id the caller tagged onto the
// processor object's metadata, when one exists; events without it are matched
// against funding sessions by PaymentIntentID instead.
type WebhookEvent struct {
	GatewayTransactionID string
	PaymentIntentID      string
	Status               string // "completed" or "failed"
	Amount               valueobjects.Money
	TransactionID        string
	RawPayload           []byte
}
