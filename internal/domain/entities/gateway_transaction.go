package entities

import (
	"time"

	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// GatewayTransactionStatus mirrors the processor-side event status.
type GatewayTransactionStatus string

const (
	GatewayTransactionStatusCompleted GatewayTransactionStatus = "completed"
	GatewayTransactionStatusFailed    GatewayTransactionStatus = "failed"
)

// GatewayTransaction is a processor-side record mirroring an external
// event. Uniqueness is per-event: the persistence layer enforces a
// unique constraint on gatewayTransactionId so duplicate webhook deliveries
// cannot create duplicate rows (insert-or-ignore).
type GatewayTransaction struct {
	id                   uuid.UUID
	gatewayTransactionID string
	gateway              string
	status               GatewayTransactionStatus
	amount               valueobjects.Money
	webhookData          []byte
	transactionID        *uuid.UUID
	createdAt            time.Time
}

// NewGatewayTransaction constructs a new, unpersisted record from a verified
// inbound webhook event.
func NewGatewayTransaction(gatewayTransactionID, gateway string, status GatewayTransactionStatus, amount valueobjects.Money, webhookData []byte, transactionID *uuid.UUID) *GatewayTransaction {
	return &GatewayTransaction{
		id:                   uuid.New(),
		gatewayTransactionID: gatewayTransactionID,
		gateway:              gateway,
		status:               status,
		amount:               amount,
		webhookData:          webhookData,
		transactionID:        transactionID,
		createdAt:            time.Now().UTC(),
	}
}

// ReconstructGatewayTransaction rebuilds a GatewayTransaction from persisted state.
func ReconstructGatewayTransaction(
	id uuid.UUID,
	gatewayTransactionID, gateway string,
	status GatewayTransactionStatus,
	amount valueobjects.Money,
	webhookData []byte,
	transactionID *uuid.UUID,
	createdAt time.Time,
) *GatewayTransaction {
	return &GatewayTransaction{
		id:                   id,
		gatewayTransactionID: gatewayTransactionID,
		gateway:              gateway,
		status:               status,
		amount:               amount,
		webhookData:          webhookData,
		transactionID:        transactionID,
		createdAt:            createdAt,
	}
}

func (g *GatewayTransaction) ID() uuid.UUID                    { return g.id }
func (g *GatewayTransaction) GatewayTransactionID() string     { return g.gatewayTransactionID }
func (g *GatewayTransaction) Gateway() string                  { return g.gateway }
func (g *GatewayTransaction) Status() GatewayTransactionStatus { return g.status }
func (g *GatewayTransaction) Amount() valueobjects.Money       { return g.amount }
func (g *GatewayTransaction) WebhookData() []byte              { return g.webhookData }
func (g *GatewayTransaction) TransactionID() *uuid.UUID        { return g.transactionID }
func (g *GatewayTransaction) CreatedAt() time.Time             { return g.createdAt }
