package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Haleralex/payflow/internal/application/ledger"
	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/application/usecases/transaction"
	"github.com/Haleralex/payflow/internal/domain/entities"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type txHandlerWalletRepo struct {
	wallets  map[uuid.UUID]*entities.Wallet
	clearing map[string]*entities.Wallet
}

func newTxHandlerWalletRepo(ws ...*entities.Wallet) *txHandlerWalletRepo {
	r := &txHandlerWalletRepo{wallets: make(map[uuid.UUID]*entities.Wallet), clearing: make(map[string]*entities.Wallet)}
	for _, w := range ws {
		r.wallets[w.ID()] = w
	}
	return r
}

func (r *txHandlerWalletRepo) withClearing(partnerID uuid.UUID, currency valueobjects.Currency) {
	w, err := entities.NewClearingWallet(partnerID, currency)
	if err != nil {
		panic(err)
	}
	r.wallets[w.ID()] = w
	r.clearing[partnerID.String()+currency.Code()] = w
}

func (r *txHandlerWalletRepo) Save(ctx context.Context, w *entities.Wallet) error {
	r.wallets[w.ID()] = w
	if w.IsClearing() {
		r.clearing[w.PartnerID().String()+w.Currency().Code()] = w
	}
	return nil
}

func (r *txHandlerWalletRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	w, ok := r.wallets[id]
	if !ok {
		return nil, domainerrors.ErrEntityNotFound
	}
	return w, nil
}

func (r *txHandlerWalletRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	return r.FindByID(ctx, id)
}

func (r *txHandlerWalletRepo) FindByExternalWalletID(ctx context.Context, partnerID uuid.UUID, externalWalletID string) (*entities.Wallet, error) {
	return nil, domainerrors.ErrEntityNotFound
}

func (r *txHandlerWalletRepo) FindByPartnerID(ctx context.Context, partnerID uuid.UUID, filter ports.WalletFilter, offset, limit int) ([]*entities.Wallet, error) {
	return nil, nil
}

func (r *txHandlerWalletRepo) FindClearingWallet(ctx context.Context, partnerID uuid.UUID, currency valueobjects.Currency) (*entities.Wallet, error) {
	w, ok := r.clearing[partnerID.String()+currency.Code()]
	if !ok {
		return nil, domainerrors.ErrEntityNotFound
	}
	return w, nil
}

type txHandlerTransactionRepo struct {
	byID    map[uuid.UUID]*entities.Transaction
	byIdemp map[string]*entities.Transaction
}

func newTxHandlerTransactionRepo() *txHandlerTransactionRepo {
	return &txHandlerTransactionRepo{byID: make(map[uuid.UUID]*entities.Transaction), byIdemp: make(map[string]*entities.Transaction)}
}

func (r *txHandlerTransactionRepo) Save(ctx context.Context, tx *entities.Transaction) error {
	r.byID[tx.ID()] = tx
	r.byIdemp[tx.PartnerID().String()+tx.IdempotencyKey()] = tx
	return nil
}

func (r *txHandlerTransactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	tx, ok := r.byID[id]
	if !ok {
		return nil, domainerrors.ErrEntityNotFound
	}
	return tx, nil
}

func (r *txHandlerTransactionRepo) FindByIdempotencyKey(ctx context.Context, partnerID uuid.UUID, key string) (*entities.Transaction, error) {
	tx, ok := r.byIdemp[partnerID.String()+key]
	if !ok {
		return nil, domainerrors.ErrEntityNotFound
	}
	return tx, nil
}

func (r *txHandlerTransactionRepo) FindByWalletID(ctx context.Context, walletID uuid.UUID, filter ports.TransactionFilter, offset, limit int) ([]*entities.Transaction, error) {
	out := make([]*entities.Transaction, 0)
	for _, tx := range r.byID {
		if (tx.FromWalletID() != nil && *tx.FromWalletID() == walletID) || (tx.ToWalletID() != nil && *tx.ToWalletID() == walletID) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *txHandlerTransactionRepo) FindByGatewayTransactionID(ctx context.Context, gatewayTransactionID string) (*entities.Transaction, error) {
	return nil, domainerrors.ErrEntityNotFound
}

func newTransactionHandlerForTest(t *testing.T, p *entities.Partner, walletRepo *txHandlerWalletRepo) (*TransactionHandler, *txHandlerTransactionRepo) {
	t.Helper()
	txRepo := newTxHandlerTransactionRepo()
	ledgerRepo := newWalletHandlerLedgerRepo()
	engine := ledger.NewEngine(walletRepo, ledgerRepo)

	pub := &walletHandlerEventPublisher{}
	uow := walletHandlerUnitOfWork{}
	partnerRepo := &walletHandlerPartnerRepo{partner: p}

	h := NewTransactionHandler(
		transaction.NewPostUseCase(partnerRepo, walletRepo, txRepo, pub, uow, engine),
		transaction.NewGetUseCase(txRepo),
		transaction.NewListByWalletUseCase(walletRepo, txRepo),
		transaction.NewListLedgerEntriesUseCase(walletRepo, ledgerRepo),
	)
	return h, txRepo
}

func TestTransactionHandler_Post(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("PostsCreditTransaction", func(t *testing.T) {
		p := approvedPartnerForHandlerTest(t)
		wl, err := entities.NewWallet(p.ID(), "Primary", valueobjects.USD, "u1", "w1")
		require.NoError(t, err)
		walletRepo := newTxHandlerWalletRepo(wl)
		walletRepo.withClearing(p.ID(), valueobjects.USD)
		h, _ := newTransactionHandlerForTest(t, p, walletRepo)

		router := gin.New()
		router.Use(withAuthPartner(p.ID()))
		router.POST("/transactions", h.Post)

		body := `{"type":"credit","amount":"100.00","currency":"USD","toWalletId":"` + wl.ID().String() + `","idempotencyKey":"key-1"}`
		req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("RejectsMissingIdempotencyKey", func(t *testing.T) {
		p := approvedPartnerForHandlerTest(t)
		walletRepo := newTxHandlerWalletRepo()
		walletRepo.withClearing(p.ID(), valueobjects.USD)

		h, _ := newTransactionHandlerForTest(t, p, walletRepo)

		router := gin.New()
		router.Use(withAuthPartner(p.ID()))
		router.POST("/transactions", h.Post)

		body := `{"type":"credit","amount":"100.00","currency":"USD"}`
		req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("RejectsMalformedAmount", func(t *testing.T) {
		p := approvedPartnerForHandlerTest(t)
		walletRepo := newTxHandlerWalletRepo()
		walletRepo.withClearing(p.ID(), valueobjects.USD)

		h, _ := newTransactionHandlerForTest(t, p, walletRepo)

		router := gin.New()
		router.Use(withAuthPartner(p.ID()))
		router.POST("/transactions", h.Post)

		body := `{"type":"credit","amount":"not-a-number","currency":"USD","idempotencyKey":"key-1"}`
		req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTransactionHandler_Get(t *testing.T) {
	gin.SetMode(gin.TestMode)

	p := approvedPartnerForHandlerTest(t)
	wl, err := entities.NewWallet(p.ID(), "Primary", valueobjects.USD, "u1", "w1")
	require.NoError(t, err)
	walletRepo := newTxHandlerWalletRepo(wl)
	walletRepo.withClearing(p.ID(), valueobjects.USD)
	h, _ := newTransactionHandlerForTest(t, p, walletRepo)

	router := gin.New()
	router.Use(withAuthPartner(p.ID()))
	router.POST("/transactions", h.Post)
	router.GET("/transactions/:id", h.Get)

	body := `{"type":"credit","amount":"25.00","currency":"USD","toWalletId":"` + wl.ID().String() + `","idempotencyKey":"key-2"}`
	postReq := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString(body))
	postReq.Header.Set("Content-Type", "application/json")
	postW := httptest.NewRecorder()
	router.ServeHTTP(postW, postReq)
	require.Equal(t, http.StatusCreated, postW.Code)

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(postW.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodGet, "/transactions/"+created.Data.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestTransactionHandler_ListByWallet(t *testing.T) {
	gin.SetMode(gin.TestMode)

	p := approvedPartnerForHandlerTest(t)
	wl, err := entities.NewWallet(p.ID(), "Primary", valueobjects.USD, "u1", "w1")
	require.NoError(t, err)
	walletRepo := newTxHandlerWalletRepo(wl)
	walletRepo.withClearing(p.ID(), valueobjects.USD)
	h, _ := newTransactionHandlerForTest(t, p, walletRepo)

	router := gin.New()
	router.Use(withAuthPartner(p.ID()))
	router.GET("/wallets/:id/transactions", h.ListByWallet)

	req := httptest.NewRequest(http.MethodGet, "/wallets/"+wl.ID().String()+"/transactions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestTransactionHandler_ListLedgerEntries(t *testing.T) {
	gin.SetMode(gin.TestMode)

	p := approvedPartnerForHandlerTest(t)
	wl, err := entities.NewWallet(p.ID(), "Primary", valueobjects.USD, "u1", "w1")
	require.NoError(t, err)
	walletRepo := newTxHandlerWalletRepo(wl)
	walletRepo.withClearing(p.ID(), valueobjects.USD)
	h, _ := newTransactionHandlerForTest(t, p, walletRepo)

	router := gin.New()
	router.Use(withAuthPartner(p.ID()))
	router.GET("/wallets/:id/ledger-entries", h.ListLedgerEntries)

	req := httptest.NewRequest(http.MethodGet, "/wallets/"+wl.ID().String()+"/ledger-entries", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestTransactionHandler_WalletCreditDebit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouterWithWallet := func(t *testing.T) (*gin.Engine, *entities.Wallet) {
		p := approvedPartnerForHandlerTest(t)
		wl, err := entities.NewWallet(p.ID(), "Primary", valueobjects.USD, "u1", "w1")
		require.NoError(t, err)
		walletRepo := newTxHandlerWalletRepo(wl)
		walletRepo.withClearing(p.ID(), valueobjects.USD)
		h, _ := newTransactionHandlerForTest(t, p, walletRepo)

		router := gin.New()
		router.Use(withAuthPartner(p.ID()))
		router.POST("/wallets/:id/credit", h.Credit)
		router.POST("/wallets/:id/debit", h.Debit)
		return router, wl
	}

	t.Run("CreditThenDebitCompletes", func(t *testing.T) {
		router, wl := newRouterWithWallet(t)

		body := `{"amount":"50.00","currency":"USD","idempotencyKey":"wc-1"}`
		req := httptest.NewRequest(http.MethodPost, "/wallets/"+wl.ID().String()+"/credit", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
		require.Contains(t, w.Body.String(), `"completed"`)

		body = `{"amount":"20.00","currency":"USD","idempotencyKey":"wd-1"}`
		req = httptest.NewRequest(http.MethodPost, "/wallets/"+wl.ID().String()+"/debit", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
		require.Contains(t, w.Body.String(), `"completed"`)
	})

	t.Run("DebitBeyondBalanceReturnsFailedTransaction", func(t *testing.T) {
		router, wl := newRouterWithWallet(t)

		body := `{"amount":"10.00","currency":"USD","idempotencyKey":"over-1"}`
		req := httptest.NewRequest(http.MethodPost, "/wallets/"+wl.ID().String()+"/debit", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		require.Contains(t, w.Body.String(), `"failed"`)
	})

	t.Run("RejectsBadIdempotencyKeyCharacters", func(t *testing.T) {
		router, wl := newRouterWithWallet(t)

		body := `{"amount":"10.00","currency":"USD","idempotencyKey":"has spaces!"}`
		req := httptest.NewRequest(http.MethodPost, "/wallets/"+wl.ID().String()+"/credit", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTransactionHandler_Transfer(t *testing.T) {
	gin.SetMode(gin.TestMode)

	p := approvedPartnerForHandlerTest(t)
	from, err := entities.NewWallet(p.ID(), "From", valueobjects.USD, "u1", "w1")
	require.NoError(t, err)
	to, err := entities.NewWallet(p.ID(), "To", valueobjects.USD, "u2", "w2")
	require.NoError(t, err)
	walletRepo := newTxHandlerWalletRepo(from, to)
	walletRepo.withClearing(p.ID(), valueobjects.USD)
	h, _ := newTransactionHandlerForTest(t, p, walletRepo)

	router := gin.New()
	router.Use(withAuthPartner(p.ID()))
	router.POST("/wallets/:id/credit", h.Credit)
	router.POST("/transfers", h.Transfer)

	seed := `{"amount":"100.00","currency":"USD","idempotencyKey":"seed-1"}`
	req := httptest.NewRequest(http.MethodPost, "/wallets/"+from.ID().String()+"/credit", bytes.NewBufferString(seed))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	body := `{"fromWalletId":"` + from.ID().String() + `","toWalletId":"` + to.ID().String() + `","amount":"30.00","currency":"USD","idempotencyKey":"t-1"}`
	req = httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"completed"`)
	require.Contains(t, w.Body.String(), `"transfer"`)
}
