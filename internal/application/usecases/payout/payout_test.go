package payout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Haleralex/payflow/internal/application/dtos"
	"github.com/Haleralex/payflow/internal/application/gateway"
	"github.com/Haleralex/payflow/internal/application/ledger"
	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/application/usecases/payout"
	"github.com/Haleralex/payflow/internal/domain/entities"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/events"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/google/uuid"
)

type mockPartnerRepo struct {
	partner *entities.Partner
}

func (m *mockPartnerRepo) Save(ctx context.Context, p *entities.Partner) error { return nil }

func (m *mockPartnerRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Partner, error) {
	if m.partner != nil && m.partner.ID() == id {
		return m.partner, nil
	}
	return nil, domainerrors.ErrEntityNotFound
}

func (m *mockPartnerRepo) List(ctx context.Context, offset, limit int) ([]*entities.Partner, error) {
	return nil, nil
}

type fakeWalletRepo struct {
	wallets  map[uuid.UUID]*entities.Wallet
	clearing map[string]*entities.Wallet
}

func newFakeWalletRepo(wallets ...*entities.Wallet) *fakeWalletRepo {
	r := &fakeWalletRepo{wallets: make(map[uuid.UUID]*entities.Wallet), clearing: make(map[string]*entities.Wallet)}
	for _, w := range wallets {
		r.wallets[w.ID()] = w
	}
	return r
}

func (r *fakeWalletRepo) Save(ctx context.Context, w *entities.Wallet) error {
	r.wallets[w.ID()] = w
	if w.IsClearing() {
		r.clearing[w.PartnerID().String()+w.Currency().Code()] = w
	}
	return nil
}

func (r *fakeWalletRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	w, ok := r.wallets[id]
	if !ok {
		return nil, domainerrors.ErrEntityNotFound
	}
	return w, nil
}

func (r *fakeWalletRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeWalletRepo) FindByExternalWalletID(ctx context.Context, partnerID uuid.UUID, externalWalletID string) (*entities.Wallet, error) {
	return nil, domainerrors.ErrEntityNotFound
}

func (r *fakeWalletRepo) FindByPartnerID(ctx context.Context, partnerID uuid.UUID, filter ports.WalletFilter, offset, limit int) ([]*entities.Wallet, error) {
	return nil, nil
}

func (r *fakeWalletRepo) FindClearingWallet(ctx context.Context, partnerID uuid.UUID, currency valueobjects.Currency) (*entities.Wallet, error) {
	w, ok := r.clearing[partnerID.String()+currency.Code()]
	if !ok {
		return nil, domainerrors.ErrEntityNotFound
	}
	return w, nil
}

type fakeTransactionRepo struct {
	byID    map[uuid.UUID]*entities.Transaction
	byIdemp map[string]*entities.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{byID: make(map[uuid.UUID]*entities.Transaction), byIdemp: make(map[string]*entities.Transaction)}
}

func (r *fakeTransactionRepo) Save(ctx context.Context, tx *entities.Transaction) error {
	r.byID[tx.ID()] = tx
	r.byIdemp[tx.PartnerID().String()+tx.IdempotencyKey()] = tx
	return nil
}

func (r *fakeTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	tx, ok := r.byID[id]
	if !ok {
		return nil, domainerrors.ErrEntityNotFound
	}
	return tx, nil
}

func (r *fakeTransactionRepo) FindByIdempotencyKey(ctx context.Context, partnerID uuid.UUID, key string) (*entities.Transaction, error) {
	tx, ok := r.byIdemp[partnerID.String()+key]
	if !ok {
		return nil, domainerrors.ErrEntityNotFound
	}
	return tx, nil
}

func (r *fakeTransactionRepo) FindByWalletID(ctx context.Context, walletID uuid.UUID, filter ports.TransactionFilter, offset, limit int) ([]*entities.Transaction, error) {
	return nil, nil
}

func (r *fakeTransactionRepo) FindByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*entities.Transaction, error) {
	return nil, domainerrors.ErrEntityNotFound
}

type fakeLedgerRepo struct {
	entriesByWallet map[uuid.UUID][]*entities.LedgerEntry
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{entriesByWallet: make(map[uuid.UUID][]*entities.LedgerEntry)}
}

func (r *fakeLedgerRepo) Append(ctx context.Context, entry *entities.LedgerEntry) error {
	r.entriesByWallet[entry.WalletID()] = append(r.entriesByWallet[entry.WalletID()], entry)
	return nil
}

func (r *fakeLedgerRepo) LatestBalance(ctx context.Context, walletID uuid.UUID, currency valueobjects.Currency) (valueobjects.Money, error) {
	entries := r.entriesByWallet[walletID]
	if len(entries) == 0 {
		return valueobjects.Zero(currency), nil
	}
	return entries[len(entries)-1].Balance(), nil
}

func (r *fakeLedgerRepo) FindByWalletID(ctx context.Context, walletID uuid.UUID, offset, limit int) ([]*entities.LedgerEntry, error) {
	return r.entriesByWallet[walletID], nil
}

func (r *fakeLedgerRepo) FindByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*entities.LedgerEntry, error) {
	out := make([]*entities.LedgerEntry, 0)
	for _, entries := range r.entriesByWallet {
		for _, e := range entries {
			if e.TransactionID() == transactionID {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

type mockEventPublisher struct{ published []events.DomainEvent }

func (m *mockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	m.published = append(m.published, event)
	return nil
}

func (m *mockEventPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	m.published = append(m.published, evts...)
	return nil
}

type mockUnitOfWork struct{}

func (mockUnitOfWork) Execute(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (mockUnitOfWork) ExecuteWithResult(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	return fn(ctx)
}

func (mockUnitOfWork) ExecuteWithRetry(ctx context.Context, maxAttempts int, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeGateway struct {
	CreatePayoutFunc func(ctx context.Context, amount valueobjects.Money, destination string) (*gateway.Payout, error)
	payoutCalls      int
}

func (g *fakeGateway) CreatePaymentIntent(ctx context.Context, amount valueobjects.Money, successURL, cancelURL string, metadata map[string]interface{}) (*gateway.PaymentIntent, error) {
	return nil, errors.New("not implemented")
}

func (g *fakeGateway) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*gateway.PaymentIntent, error) {
	return nil, errors.New("not implemented")
}

func (g *fakeGateway) CapturePayment(ctx context.Context, paymentIntentID string) (*gateway.CapturedPayment, error) {
	return nil, errors.New("not implemented")
}

func (g *fakeGateway) RefundPayment(ctx context.Context, gatewayTransactionID string, amount valueobjects.Money) (*gateway.CapturedPayment, error) {
	return nil, errors.New("not implemented")
}

func (g *fakeGateway) CreatePayout(ctx context.Context, amount valueobjects.Money, destination string) (*gateway.Payout, error) {
	g.payoutCalls++
	if g.CreatePayoutFunc != nil {
		return g.CreatePayoutFunc(ctx, amount, destination)
	}
	return &gateway.Payout{GatewayTransactionID: "po_1", Status: "completed"}, nil
}

func (g *fakeGateway) VerifyWebhook(ctx context.Context, payload []byte, signatureHeader string) (*gateway.WebhookEvent, error) {
	return nil, errors.New("not implemented")
}

var _ ports.PartnerRepository = (*mockPartnerRepo)(nil)
var _ ports.WalletRepository = (*fakeWalletRepo)(nil)
var _ ports.TransactionRepository = (*fakeTransactionRepo)(nil)
var _ ports.LedgerEntryRepository = (*fakeLedgerRepo)(nil)
var _ gateway.Gateway = (*fakeGateway)(nil)

func approvedPartner(t *testing.T) *entities.Partner {
	t.Helper()
	p, err := entities.NewPartner("Acme Inc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Approve(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func mustMoney(t *testing.T, amount string) valueobjects.Money {
	t.Helper()
	m, err := valueobjects.NewMoney(amount, valueobjects.USD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

type payoutFixture struct {
	partner    *entities.Partner
	wallet     *entities.Wallet
	walletRepo *fakeWalletRepo
	txRepo     *fakeTransactionRepo
	ledgerRepo *fakeLedgerRepo
	gateway    *fakeGateway
	uc         *payout.CreateUseCase
}

func newPayoutFixture(t *testing.T) *payoutFixture {
	t.Helper()
	p := approvedPartner(t)
	w, err := entities.NewWallet(p.ID(), "Primary", valueobjects.USD, "u1", "w1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	walletRepo := newFakeWalletRepo(w)
	txRepo := newFakeTransactionRepo()
	ledgerRepo := newFakeLedgerRepo()
	gw := &fakeGateway{}

	engine := ledger.NewEngine(walletRepo, ledgerRepo)
	uc := payout.NewCreateUseCase(&mockPartnerRepo{partner: p}, walletRepo, txRepo, &mockEventPublisher{}, mockUnitOfWork{}, engine, gw, "processor")

	return &payoutFixture{partner: p, wallet: w, walletRepo: walletRepo, txRepo: txRepo, ledgerRepo: ledgerRepo, gateway: gw, uc: uc}
}

// seedBalance credits the wallet directly through the ledger so the payout
// has funds to draw on.
func (f *payoutFixture) seedBalance(t *testing.T, amount string) {
	t.Helper()
	clearing, err := entities.NewClearingWallet(f.partner.ID(), valueobjects.USD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = f.walletRepo.Save(context.Background(), clearing)

	engine := ledger.NewEngine(f.walletRepo, f.ledgerRepo)
	m := mustMoney(t, amount)
	_, err = engine.Append(context.Background(), uuid.New(), []ledger.Post{
		{WalletID: clearing.ID(), Type: entities.LedgerEntryTypeDebit, Amount: m, Description: "seed"},
		{WalletID: f.wallet.ID(), Type: entities.LedgerEntryTypeCredit, Amount: m, Description: "seed"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateUseCase_CompletesPayout(t *testing.T) {
	f := newPayoutFixture(t)
	f.seedBalance(t, "100.00")

	result, err := f.uc.Execute(context.Background(), f.partner.ID(), dtos.CreatePayoutCommand{
		WalletID:       f.wallet.ID().String(),
		Destination:    "acct_abc123",
		Amount:         "40.00",
		CurrencyCode:   "USD",
		IdempotencyKey: "po-key-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != string(entities.TransactionStatusCompleted) {
		t.Fatalf("expected completed status, got %s", result.Status)
	}
	if result.GatewayTransactionID != "po_1" {
		t.Errorf("expected the processor payout id on the transaction, got %q", result.GatewayTransactionID)
	}

	balance, err := f.ledgerRepo.LatestBalance(context.Background(), f.wallet.ID(), valueobjects.USD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance.Decimal() != "60.00" {
		t.Errorf("expected balance 60.00 after the payout, got %s", balance.Decimal())
	}
}

func TestCreateUseCase_InsufficientFundsFailsWithoutGatewayCall(t *testing.T) {
	f := newPayoutFixture(t)

	result, err := f.uc.Execute(context.Background(), f.partner.ID(), dtos.CreatePayoutCommand{
		WalletID:       f.wallet.ID().String(),
		Destination:    "acct_abc123",
		Amount:         "40.00",
		CurrencyCode:   "USD",
		IdempotencyKey: "po-key-2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != string(entities.TransactionStatusFailed) {
		t.Fatalf("expected failed status, got %s", result.Status)
	}
	if f.gateway.payoutCalls != 0 {
		t.Errorf("expected no gateway payout call for an unfunded wallet, got %d", f.gateway.payoutCalls)
	}
}

func TestCreateUseCase_GatewayRejectionReversesReserve(t *testing.T) {
	f := newPayoutFixture(t)
	f.seedBalance(t, "100.00")
	f.gateway.CreatePayoutFunc = func(ctx context.Context, amount valueobjects.Money, destination string) (*gateway.Payout, error) {
		return nil, errors.New("destination blocked")
	}

	result, err := f.uc.Execute(context.Background(), f.partner.ID(), dtos.CreatePayoutCommand{
		WalletID:       f.wallet.ID().String(),
		Destination:    "acct_blocked",
		Amount:         "40.00",
		CurrencyCode:   "USD",
		IdempotencyKey: "po-key-3",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != string(entities.TransactionStatusFailed) {
		t.Fatalf("expected failed status, got %s", result.Status)
	}

	balance, err := f.ledgerRepo.LatestBalance(context.Background(), f.wallet.ID(), valueobjects.USD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance.Decimal() != "100.00" {
		t.Errorf("expected the reserve to be reversed back to 100.00, got %s", balance.Decimal())
	}
}

func TestCreateUseCase_IdempotentReplayReturnsFirstPayout(t *testing.T) {
	f := newPayoutFixture(t)
	f.seedBalance(t, "100.00")

	cmd := dtos.CreatePayoutCommand{
		WalletID:       f.wallet.ID().String(),
		Destination:    "acct_abc123",
		Amount:         "40.00",
		CurrencyCode:   "USD",
		IdempotencyKey: "po-key-4",
	}

	first, err := f.uc.Execute(context.Background(), f.partner.ID(), cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.uc.Execute(context.Background(), f.partner.ID(), cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected the replay to return the first transaction, got %s vs %s", first.ID, second.ID)
	}
	if f.gateway.payoutCalls != 1 {
		t.Errorf("expected exactly one gateway payout call, got %d", f.gateway.payoutCalls)
	}
}

func TestCreateUseCase_CrossPartnerWalletIsForbidden(t *testing.T) {
	f := newPayoutFixture(t)
	other := approvedPartner(t)
	foreign, err := entities.NewWallet(other.ID(), "Not yours", valueobjects.USD, "u9", "w9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = f.walletRepo.Save(context.Background(), foreign)

	_, err = f.uc.Execute(context.Background(), f.partner.ID(), dtos.CreatePayoutCommand{
		WalletID:       foreign.ID().String(),
		Destination:    "acct_abc123",
		Amount:         "10.00",
		CurrencyCode:   "USD",
		IdempotencyKey: "po-key-5",
	})
	if !errors.Is(err, domainerrors.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}
