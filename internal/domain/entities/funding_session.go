package entities

import (
	"time"

	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/google/uuid"
)

// FundingSessionStatus is the session state machine:
// created -> active -> (completed | failed); (created | active) -> expired
// at any non-terminal time after expiresAt.
type FundingSessionStatus string

const (
	FundingSessionStatusCreated   FundingSessionStatus = "created"
	FundingSessionStatusActive    FundingSessionStatus = "active"
	FundingSessionStatusCompleted FundingSessionStatus = "completed"
	FundingSessionStatusFailed    FundingSessionStatus = "failed"
	FundingSessionStatusExpired   FundingSessionStatus = "expired"
)

func (s FundingSessionStatus) IsTerminal() bool {
	return s == FundingSessionStatusCompleted || s == FundingSessionStatusFailed || s == FundingSessionStatusExpired
}

// FundingSession is a pending funding of one wallet.
type FundingSession struct {
	id              uuid.UUID
	walletID        uuid.UUID
	partnerID       uuid.UUID
	paymentIntentID string
	amount          valueobjects.Money
	status          FundingSessionStatus
	expiresAt       time.Time
	successURL      string
	cancelURL       string
	metadata        map[string]interface{}
	createdAt       time.Time
	updatedAt       time.Time
}

// fundingSessionTTL is the fixed expiry window for a new session.
const fundingSessionTTL = 30 * time.Minute

// NewFundingSession creates a new session in the created status, with
// expiresAt = now + 30 minutes.
func NewFundingSession(partnerID, walletID uuid.UUID, paymentIntentID string, amount valueobjects.Money, successURL, cancelURL string, metadata map[string]interface{}) *FundingSession {
	now := time.Now().UTC()
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	return &FundingSession{
		id:              uuid.New(),
		walletID:        walletID,
		partnerID:       partnerID,
		paymentIntentID: paymentIntentID,
		amount:          amount,
		status:          FundingSessionStatusCreated,
		expiresAt:       now.Add(fundingSessionTTL),
		successURL:      successURL,
		cancelURL:       cancelURL,
		metadata:        metadata,
		createdAt:       now,
		updatedAt:       now,
	}
}

// ReconstructFundingSession rebuilds a FundingSession from persisted state.
func ReconstructFundingSession(
	id, walletID, partnerID uuid.UUID,
	paymentIntentID string,
	amount valueobjects.Money,
	status FundingSessionStatus,
	expiresAt time.Time,
	successURL, cancelURL string,
	metadata map[string]interface{},
	createdAt, updatedAt time.Time,
) *FundingSession {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	return &FundingSession{
		id:              id,
		walletID:        walletID,
		partnerID:       partnerID,
		paymentIntentID: paymentIntentID,
		amount:          amount,
		status:          status,
		expiresAt:       expiresAt,
		successURL:      successURL,
		cancelURL:       cancelURL,
		metadata:        metadata,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (s *FundingSession) ID() uuid.UUID                    { return s.id }
func (s *FundingSession) WalletID() uuid.UUID              { return s.walletID }
func (s *FundingSession) PartnerID() uuid.UUID             { return s.partnerID }
func (s *FundingSession) PaymentIntentID() string          { return s.paymentIntentID }
func (s *FundingSession) Amount() valueobjects.Money       { return s.amount }
func (s *FundingSession) Status() FundingSessionStatus     { return s.status }
func (s *FundingSession) ExpiresAt() time.Time             { return s.expiresAt }
func (s *FundingSession) SuccessURL() string               { return s.successURL }
func (s *FundingSession) CancelURL() string                { return s.cancelURL }
func (s *FundingSession) Metadata() map[string]interface{} { return s.metadata }
func (s *FundingSession) CreatedAt() time.Time             { return s.createdAt }
func (s *FundingSession) UpdatedAt() time.Time             { return s.updatedAt }

// IsExpired reports whether expiresAt lies in the past relative to now, for a
// still-non-terminal session (expiration pass).
func (s *FundingSession) IsExpired(now time.Time) bool {
	return !s.status.IsTerminal() && now.After(s.expiresAt)
}

// Activate transitions created -> active.
func (s *FundingSession) Activate() error {
	if s.status != FundingSessionStatusCreated {
		return domainerrors.NewBusinessRuleViolation("FundingSessionStatus", "only a created session can be activated", nil)
	}
	s.status = FundingSessionStatusActive
	s.updatedAt = time.Now().UTC()
	return nil
}

// Complete transitions to completed (processSuccess).
func (s *FundingSession) Complete() error {
	if s.status.IsTerminal() {
		return domainerrors.NewBusinessRuleViolation("FundingSessionStatus", "session is already terminal", nil)
	}
	s.status = FundingSessionStatusCompleted
	s.updatedAt = time.Now().UTC()
	return nil
}

// Fail transitions to failed, for gateway failure events and ledger errors.
func (s *FundingSession) Fail() error {
	if s.status.IsTerminal() {
		return domainerrors.NewBusinessRuleViolation("FundingSessionStatus", "session is already terminal", nil)
	}
	s.status = FundingSessionStatusFailed
	s.updatedAt = time.Now().UTC()
	return nil
}

// Expire transitions a non-terminal session (created or active) to expired.
// Called only by the background sweep.
func (s *FundingSession) Expire() error {
	if s.status.IsTerminal() {
		return domainerrors.NewBusinessRuleViolation("FundingSessionStatus", "session is already terminal", nil)
	}
	s.status = FundingSessionStatusExpired
	s.updatedAt = time.Now().UTC()
	return nil
}

// EnsureNotExpired returns ErrFundingSessionExpired (mapped to 410 Gone) if the
// session's status is expired or it is otherwise past expiresAt
// Attempts to pay an expired session surface as 410 Gone.
func (s *FundingSession) EnsureNotExpired(now time.Time) error {
	if s.status == FundingSessionStatusExpired || s.IsExpired(now) {
		return domainerrors.ErrFundingSessionExpired
	}
	return nil
}
