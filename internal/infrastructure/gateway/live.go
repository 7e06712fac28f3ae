package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Haleralex/payflow/internal/application/gateway"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
)

// Live talks to the production card processor over HTTPS. The processor
// publishes no Go SDK, so the client is a thin net/http wrapper.
type Live struct {
	baseURL       string
	apiSecret     string
	webhookSecret string
	httpClient    *http.Client
}

// NewLive constructs a Live gateway client.
func NewLive(baseURL, apiSecret, webhookSecret string) *Live {
	return &Live{
		baseURL:       baseURL,
		apiSecret:     apiSecret,
		webhookSecret: webhookSecret,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

type paymentIntentResponse struct {
	ID           string `json:"id"`
	HostedURL    string `json:"hosted_url"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

func (r *paymentIntentResponse) toPaymentIntent() *gateway.PaymentIntent {
	return &gateway.PaymentIntent{ID: r.ID, HostedURL: r.HostedURL, ClientSecret: r.ClientSecret, Status: r.Status}
}

func (l *Live) CreatePaymentIntent(ctx context.Context, amount valueobjects.Money, successURL, cancelURL string, metadata map[string]interface{}) (*gateway.PaymentIntent, error) {
	body := map[string]interface{}{
		"amount_minor_units": amount.MinorUnits(),
		"currency":           amount.Currency().Code(),
		"success_url":        successURL,
		"cancel_url":         cancelURL,
		"metadata":           metadata,
	}
	var resp paymentIntentResponse
	if err := l.do(ctx, http.MethodPost, "/v1/payment_intents", body, &resp); err != nil {
		return nil, err
	}
	return resp.toPaymentIntent(), nil
}

// GetPaymentIntent reads an intent back from the processor. The public
// payment page calls this on every load so the client secret is never stored
// on our side.
func (l *Live) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*gateway.PaymentIntent, error) {
	var resp paymentIntentResponse
	if err := l.do(ctx, http.MethodGet, fmt.Sprintf("/v1/payment_intents/%s", paymentIntentID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.toPaymentIntent(), nil
}

type capturedPaymentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (l *Live) CapturePayment(ctx context.Context, paymentIntentID string) (*gateway.CapturedPayment, error) {
	var resp capturedPaymentResponse
	if err := l.post(ctx, fmt.Sprintf("/v1/payment_intents/%s/capture", paymentIntentID), nil, &resp); err != nil {
		return nil, err
	}
	return &gateway.CapturedPayment{GatewayTransactionID: resp.ID, Status: resp.Status}, nil
}

func (l *Live) RefundPayment(ctx context.Context, gatewayTransactionID string, amount valueobjects.Money) (*gateway.CapturedPayment, error) {
	body := map[string]interface{}{"amount_minor_units": amount.MinorUnits()}
	var resp capturedPaymentResponse
	if err := l.post(ctx, fmt.Sprintf("/v1/charges/%s/refund", gatewayTransactionID), body, &resp); err != nil {
		return nil, err
	}
	return &gateway.CapturedPayment{GatewayTransactionID: resp.ID, Status: resp.Status}, nil
}

type payoutResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (l *Live) CreatePayout(ctx context.Context, amount valueobjects.Money, destination string) (*gateway.Payout, error) {
	body := map[string]interface{}{
		"amount_minor_units": amount.MinorUnits(),
		"currency":           amount.Currency().Code(),
		"destination":        destination,
	}
	var resp payoutResponse
	if err := l.post(ctx, "/v1/payouts", body, &resp); err != nil {
		return nil, err
	}
	return &gateway.Payout{GatewayTransactionID: resp.ID, Status: resp.Status}, nil
}

type liveWebhookPayload struct {
	GatewayTransactionID string `json:"gateway_transaction_id"`
	PaymentIntentID      string `json:"payment_intent_id"`
	Status               string `json:"status"`
	AmountMinorUnits     int64  `json:"amount_minor_units"`
	Currency             string `json:"currency"`
	Metadata             struct {
		TransactionID string `json:"transaction_id"`
	} `json:"metadata"`
}

// VerifyWebhook validates the processor's HMAC-SHA-256 signature header
// before trusting the payload.
func (l *Live) VerifyWebhook(ctx context.Context, payload []byte, signatureHeader string) (*gateway.WebhookEvent, error) {
	mac := hmac.New(sha256.New, []byte(l.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signatureHeader)) {
		return nil, ErrSignatureMismatch
	}

	var parsed liveWebhookPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	currency, err := valueobjects.NewCurrency(parsed.Currency)
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
		TransactionID:        parsed.Metadata.TransactionID,
		RawPayload:           payload,
	}, nil
}

func (l *Live) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	return l.do(ctx, http.MethodPost, path, body, out)
}

func (l *Live) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, l.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.apiSecret)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode gateway response: %w", err)
		}
	}
	return nil
}
