// Package gateway implements the card-processor funding rail port
// (internal/application/gateway) with a live HTTPS client and a deterministic
// mock for sandbox deployments and tests. Which one serves funding and payout
// calls is chosen once per deployment; the calling API key's environment does
// not select it.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Haleralex/payflow/internal/application/gateway"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// ErrSignatureMismatch is returned by VerifyWebhook when the signature header
// does not match the payload.
var ErrSignatureMismatch = errors.New("webhook signature does not match payload")

// Mock is a deterministic in-memory Gateway for the sandbox environment: it
// never calls out to a network, always succeeds, and signs its own webhook
// payloads with the webhookSecret it was built with so the inbound webhook handler can be
// exercised end-to-end in tests.
type Mock struct {
	webhookSecret string
}

// NewMock constructs a Mock gateway. webhookSecret is also used to verify
// webhooks the mock itself signs, mirroring how the live client verifies
// the processor's real signing secret.
func NewMock(webhookSecret string) *Mock {
	return &Mock{webhookSecret: webhookSecret}
}

func (m *Mock) CreatePaymentIntent(ctx context.Context, amount valueobjects.Money, successURL, cancelURL string, metadata map[string]interface{}) (*gateway.PaymentIntent, error) {
	id := "pi_mock_" + uuid.NewString()
	return &gateway.PaymentIntent{
		ID:           id,
		HostedURL:    "https://sandbox.payflow.test/checkout/" + id,
		ClientSecret: mockClientSecret(id),
		Status:       "requires_payment_method",
	}, nil
}

// GetPaymentIntent re-derives the same client secret CreatePaymentIntent
// issued, so the public payment page sees a stable value across reads.
func (m *Mock) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*gateway.PaymentIntent, error) {
	return &gateway.PaymentIntent{
		ID:           paymentIntentID,
		HostedURL:    "https://sandbox.payflow.test/checkout/" + paymentIntentID,
		ClientSecret: mockClientSecret(paymentIntentID),
		Status:       "requires_payment_method",
	}, nil
}

// mockClientSecret derives a deterministic secret from the intent id, the way
// the processor scopes its real client secrets to one intent.
func mockClientSecret(paymentIntentID string) string {
	mac := hmac.New(sha256.New, []byte("mock_client_secret"))
	mac.Write([]byte(paymentIntentID))
	return paymentIntentID + "_secret_" + hex.EncodeToString(mac.Sum(nil))[:16]
}

func (m *Mock) CapturePayment(ctx context.Context, paymentIntentID string) (*gateway.CapturedPayment, error) {
	return &gateway.CapturedPayment{GatewayTransactionID: "gt_mock_" + uuid.NewString(), Status: "completed"}, nil
}

func (m *Mock) RefundPayment(ctx context.Context, gatewayTransactionID string, amount valueobjects.Money) (*gateway.CapturedPayment, error) {
	return &gateway.CapturedPayment{GatewayTransactionID: "gt_mock_refund_" + uuid.NewString(), Status: "completed"}, nil
}

func (m *Mock) CreatePayout(ctx context.Context, amount valueobjects.Money, destination string) (*gateway.Payout, error) {
	return &gateway.Payout{GatewayTransactionID: "po_mock_" + uuid.NewString(), Status: "completed"}, nil
}

// mockWebhookPayload is the JSON shape SignPayload/VerifyWebhook agree on.
type mockWebhookPayload struct {
	GatewayTransactionID string `json:"gatewayTransactionId"`
	PaymentIntentID      string `json:"paymentIntentId"`
	Status               string `json:"status"`
	AmountMinorUnits     int64  `json:"amountMinorUnits"`
	CurrencyCode         string `json:"currencyCode"`
	TransactionID        string `json:"transactionId,omitempty"`
}

// SignPayload builds and signs a mock webhook body, for tests to drive the
// inbound webhook endpoint.
func (m *Mock) SignPayload(gatewayTransactionID, paymentIntentID, status string, amount valueobjects.Money) ([]byte, string, error) {
	body, err := json.Marshal(mockWebhookPayload{
		GatewayTransactionID: gatewayTransactionID,
		PaymentIntentID:      paymentIntentID,
		Status:               status,
		AmountMinorUnits:     amount.MinorUnits(),
		CurrencyCode:         amount.Currency().Code(),
	})
	if err != nil {
		return nil, "", err
	}
	return body, m.sign(body), nil
}

func (m *Mock) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(m.webhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (m *Mock) VerifyWebhook(ctx context.Context, payload []byte, signatureHeader string) (*gateway.WebhookEvent, error) {
	expected := m.sign(payload)
	if !hmac.Equal([]byte(expected), []byte(signatureHeader)) {
		return nil, ErrSignatureMismatch
	}

	var parsed mockWebhookPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse mock webhook payload: %w", err)
	}
	currency, err := valueobjects.NewCurrency(parsed.CurrencyCode)
	if err != nil {
		return nil, err
	}
	amount, err := valueobjects.NewMoneyFromMinorUnits(parsed.AmountMinorUnits, currency)
	if err != nil {
		return nil, err
	}

	return &gateway.WebhookEvent{
		GatewayTransactionID: parsed.GatewayTransactionID,
		PaymentIntentID:      parsed.PaymentIntentID,
		Status:               parsed.Status,
		Amount:               amount,
		TransactionID:        parsed.TransactionID,
		RawPayload:           payload,
	}, nil
}
