package entities

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewGatewayTransaction(t *testing.T) {
	amount := mustMoney(t, "25.00")
	txID := uuid.New()

	gt := NewGatewayTransaction("gt_1", "mockprocessor", GatewayTransactionStatusCompleted, amount, []byte(`{"ok":true}`), &txID)

	if gt.ID() == uuid.Nil {
		t.Error("expected a generated id")
	}
	if gt.GatewayTransactionID() != "gt_1" {
		t.Errorf("GatewayTransactionID = %q, want %q", gt.GatewayTransactionID(), "gt_1")
	}
	if gt.Gateway() != "mockprocessor" {
		t.Errorf("Gateway = %q, want %q", gt.Gateway(), "mockprocessor")
	}
	if gt.Status() != GatewayTransactionStatusCompleted {
		t.Errorf("Status = %v, want %v", gt.Status(), GatewayTransactionStatusCompleted)
	}
	if gt.TransactionID() == nil || *gt.TransactionID() != txID {
		t.Error("expected TransactionID to round-trip")
	}
	if string(gt.WebhookData()) != `{"ok":true}` {
		t.Errorf("WebhookData = %s, want %s", gt.WebhookData(), `{"ok":true}`)
	}
}

func TestNewGatewayTransaction_FailedWithNoTransactionLink(t *testing.T) {
	amount := mustMoney(t, "25.00")
	gt := NewGatewayTransaction("gt_2", "mockprocessor", GatewayTransactionStatusFailed, amount, nil, nil)

	if gt.Status() != GatewayTransactionStatusFailed {
		t.Errorf("Status = %v, want %v", gt.Status(), GatewayTransactionStatusFailed)
	}
	if gt.TransactionID() != nil {
		t.Error("expected a failed gateway event with no posted transaction to carry a nil TransactionID")
	}
}

func TestReconstructGatewayTransaction(t *testing.T) {
	id := uuid.New()
	now := time.Now()
	amount := mustMoney(t, "10.00")

	gt := ReconstructGatewayTransaction(id, "gt_3", "mockprocessor", GatewayTransactionStatusCompleted, amount, nil, nil, now)

	if gt.ID() != id {
		t.Errorf("ID = %v, want %v", gt.ID(), id)
	}
	if !gt.CreatedAt().Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", gt.CreatedAt(), now)
	}
}
