package entities

import (
	"time"

	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// TransactionType names a single logical money movement: a credit, debit,
// or transfer. Payouts and refunds are composed from these by higher-level
// use cases rather than getting their own types.
type TransactionType string

const (
	TransactionTypeCredit   TransactionType = "credit"
	TransactionTypeDebit    TransactionType = "debit"
	TransactionTypeTransfer TransactionType = "transfer"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeCredit, TransactionTypeDebit, TransactionTypeTransfer:
		return true
	}
	return false
}

// TransactionStatus has four values. The orchestrator is synchronous: a
// transaction goes directly from pending to completed or failed within one
// call, never through an intermediate processing step visible to callers.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled:
		return true
	}
	return false
}

// IsFinal reports whether no further state transition is possible.
// "Once completed or failed, the transaction is terminal".
func (s TransactionStatus) IsFinal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed || s == TransactionStatusCancelled
}

// Transaction is a single logical money movement. Once
// completed or failed its status, amount, currency and wallet bindings are
// immutable — this entity enforces that by rejecting any further mutation
// once IsFinal.
type Transaction struct {
	id                   uuid.UUID
	partnerID            uuid.UUID
	txType               TransactionType
	status               TransactionStatus
	amount               valueobjects.Money
	fromWalletID         *uuid.UUID
	toWalletID           *uuid.UUID
	idempotencyKey       string
	description          string
	gatewayTransactionID string
	gateway              string
	failureReason        string
	createdAt            time.Time
	updatedAt            time.Time
}

// NewTransactionParams carries the constructor fields; fromWalletID/toWalletID
// are validated against txType (transfer requires both; credit
// requires toWalletId; debit requires fromWalletId").
type NewTransactionParams struct {
	PartnerID      uuid.UUID
	Type           TransactionType
	Amount         valueobjects.Money
	FromWalletID   *uuid.UUID
	ToWalletID     *uuid.UUID
	IdempotencyKey string
	Description    string
}

// NewTransaction creates a new pending transaction, enforcing the wallet-
// binding invariant for its type.
func NewTransaction(p NewTransactionParams) (*Transaction, error) {
	if !p.Type.IsValid() {
		return nil, domainerrors.ValidationError{Field: "type", Message: "invalid transaction type"}
	}
	if !p.Amount.IsPositive() {
		return nil, domainerrors.ValidationError{Field: "amount", Message: "amount must be strictly positive"}
	}

	switch p.Type {
	case TransactionTypeCredit:
		if p.ToWalletID == nil {
			return nil, domainerrors.ValidationError{Field: "toWalletId", Message: "required for credit"}
		}
	case TransactionTypeDebit:
		if p.FromWalletID == nil {
			return nil, domainerrors.ValidationError{Field: "fromWalletId", Message: "required for debit"}
		}
	case TransactionTypeTransfer:
		if p.FromWalletID == nil || p.ToWalletID == nil {
			return nil, domainerrors.ValidationError{Field: "walletId", Message: "transfer requires both fromWalletId and toWalletId"}
		}
	}

	now := time.Now().UTC()
	return &Transaction{
		id:             uuid.New(),
		partnerID:      p.PartnerID,
		txType:         p.Type,
		status:         TransactionStatusPending,
		amount:         p.Amount,
		fromWalletID:   p.FromWalletID,
		toWalletID:     p.ToWalletID,
		idempotencyKey: p.IdempotencyKey,
		description:    p.Description,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// ReconstructTransaction rebuilds a Transaction from persisted state.
func ReconstructTransaction(
	id, partnerID uuid.UUID,
	txType TransactionType,
	status TransactionStatus,
	amount valueobjects.Money,
	fromWalletID, toWalletID *uuid.UUID,
	idempotencyKey, description, gatewayTransactionID, gateway, failureReason string,
	createdAt, updatedAt time.Time,
) *Transaction {
	return &Transaction{
		id:                   id,
		partnerID:            partnerID,
		txType:               txType,
		status:               status,
		amount:               amount,
		fromWalletID:         fromWalletID,
		toWalletID:           toWalletID,
		idempotencyKey:       idempotencyKey,
		description:          description,
		gatewayTransactionID: gatewayTransactionID,
		gateway:              gateway,
		failureReason:        failureReason,
		createdAt:            createdAt,
		updatedAt:            updatedAt,
	}
}

func (t *Transaction) ID() uuid.UUID                { return t.id }
func (t *Transaction) PartnerID() uuid.UUID         { return t.partnerID }
func (t *Transaction) Type() TransactionType        { return t.txType }
func (t *Transaction) Status() TransactionStatus    { return t.status }
func (t *Transaction) Amount() valueobjects.Money   { return t.amount }
func (t *Transaction) FromWalletID() *uuid.UUID     { return t.fromWalletID }
func (t *Transaction) ToWalletID() *uuid.UUID       { return t.toWalletID }
func (t *Transaction) IdempotencyKey() string       { return t.idempotencyKey }
func (t *Transaction) Description() string          { return t.description }
func (t *Transaction) GatewayTransactionID() string { return t.gatewayTransactionID }
func (t *Transaction) Gateway() string              { return t.gateway }
func (t *Transaction) FailureReason() string        { return t.failureReason }
func (t *Transaction) CreatedAt() time.Time         { return t.createdAt }
func (t *Transaction) UpdatedAt() time.Time         { return t.updatedAt }
func (t *Transaction) IsFinal() bool                { return t.status.IsFinal() }
func (t *Transaction) IsCompleted() bool            { return t.status == TransactionStatusCompleted }
func (t *Transaction) IsFailed() bool               { return t.status == TransactionStatusFailed }

// MarkCompleted transitions pending -> completed. Rejects mutation once final
// Once completed or failed the transaction is immutable.
func (t *Transaction) MarkCompleted() error {
	if t.status != TransactionStatusPending {
		return domainerrors.NewBusinessRuleViolation("TransactionStatus", "only a pending transaction can be completed", nil)
	}
	t.status = TransactionStatusCompleted
	t.updatedAt = time.Now().UTC()
	return nil
}

// MarkFailed transitions pending -> failed (step 5: insufficient
// funds or any ledger error).
func (t *Transaction) MarkFailed(reason string) error {
	if t.status != TransactionStatusPending {
		return domainerrors.NewBusinessRuleViolation("TransactionStatus", "only a pending transaction can be marked failed", nil)
	}
	t.status = TransactionStatusFailed
	t.failureReason = reason
	t.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions pending -> cancelled.
func (t *Transaction) Cancel() error {
	if t.status != TransactionStatusPending {
		return domainerrors.NewBusinessRuleViolation("TransactionStatus", "only a pending transaction can be cancelled", nil)
	}
	t.status = TransactionStatusCancelled
	t.updatedAt = time.Now().UTC()
	return nil
}

// AttachGatewayReference records the processor-side identifiers once a
// webhook reconciles this transaction.
func (t *Transaction) AttachGatewayReference(gateway, gatewayTransactionID string) {
	t.gateway = gateway
	t.gatewayTransactionID = gatewayTransactionID
	t.updatedAt = time.Now().UTC()
}
