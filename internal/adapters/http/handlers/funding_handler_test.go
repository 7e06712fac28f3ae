package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Haleralex/payflow/internal/application/gateway"
	"github.com/Haleralex/payflow/internal/application/usecases/funding"
	"github.com/Haleralex/payflow/internal/domain/entities"
	domainerrors "github.com/Haleralex/payflow/internal/domain/errors"
	"github.com/Haleralex/payflow/internal/domain/valueobjects"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fundingHandlerSessionRepo struct {
	byID map[uuid.UUID]*entities.FundingSession
}

func newFundingHandlerSessionRepo() *fundingHandlerSessionRepo {
	return &fundingHandlerSessionRepo{byID: make(map[uuid.UUID]*entities.FundingSession)}
}

func (r *fundingHandlerSessionRepo) Save(ctx context.Context, session *entities.FundingSession) error {
	r.byID[session.ID()] = session
	return nil
}

func (r *fundingHandlerSessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*entities.FundingSession, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, domainerrors.ErrEntityNotFound
	}
	return s, nil
}

func (r *fundingHandlerSessionRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entities.FundingSession, error) {
	return r.FindByID(ctx, id)
}

func (r *fundingHandlerSessionRepo) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*entities.FundingSession, error) {
	for _, s := range r.byID {
		if s.PaymentIntentID() == paymentIntentID {
			return s, nil
		}
	}
	return nil, domainerrors.ErrEntityNotFound
}

func (r *fundingHandlerSessionRepo) FindByWalletID(ctx context.Context, walletID uuid.UUID, offset, limit int) ([]*entities.FundingSession, error) {
	out := make([]*entities.FundingSession, 0)
	for _, s := range r.byID {
		if s.WalletID() == walletID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fundingHandlerSessionRepo) FindExpirable(ctx context.Context, asOf time.Time, limit int) ([]*entities.FundingSession, error) {
	out := make([]*entities.FundingSession, 0)
	for _, s := range r.byID {
		if s.IsExpired(asOf) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fundingHandlerGateway struct{}

func (g *fundingHandlerGateway) CreatePaymentIntent(ctx context.Context, amount valueobjects.Money, successURL, cancelURL string, metadata map[string]interface{}) (*gateway.PaymentIntent, error) {
	return &gateway.PaymentIntent{ID: "pi_" + uuid.NewString(), HostedURL: "https://processor.example.com/checkout", ClientSecret: "cs_test_secret"}, nil
}

func (g *fundingHandlerGateway) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*gateway.PaymentIntent, error) {
	return &gateway.PaymentIntent{ID: paymentIntentID, ClientSecret: "cs_test_secret"}, nil
}

func (g *fundingHandlerGateway) CapturePayment(ctx context.Context, paymentIntentID string) (*gateway.CapturedPayment, error) {
	return nil, errors.New("not implemented")
}

func (g *fundingHandlerGateway) RefundPayment(ctx context.Context, gatewayTransactionID string, amount valueobjects.Money) (*gateway.CapturedPayment, error) {
	return nil, errors.New("not implemented")
}

func (g *fundingHandlerGateway) CreatePayout(ctx context.Context, amount valueobjects.Money, destination string) (*gateway.Payout, error) {
	return nil, errors.New("not implemented")
}

func (g *fundingHandlerGateway) VerifyWebhook(ctx context.Context, payload []byte, signatureHeader string) (*gateway.WebhookEvent, error) {
	return nil, errors.New("not implemented")
}

func newFundingHandlerForTest(t *testing.T, walletRepo *txHandlerWalletRepo) (*FundingHandler, *fundingHandlerSessionRepo) {
	t.Helper()
	sessionRepo := newFundingHandlerSessionRepo()
	pub := &walletHandlerEventPublisher{}
	uow := walletHandlerUnitOfWork{}
	gw := &fundingHandlerGateway{}

	h := NewFundingHandler(
		funding.NewCreateUseCase(walletRepo, sessionRepo, pub, uow, gw),
		funding.NewGetUseCase(walletRepo, sessionRepo),
		funding.NewListByWalletUseCase(walletRepo, sessionRepo),
		funding.NewPublicGetUseCase(sessionRepo, gw),
	)
	return h, sessionRepo
}

func TestFundingHandler_Fund(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("OpensSessionForOwnedWallet", func(t *testing.T) {
		p := approvedPartnerForHandlerTest(t)
		wl, err := entities.NewWallet(p.ID(), "Primary", valueobjects.USD, "u1", "w1")
		require.NoError(t, err)
		walletRepo := newTxHandlerWalletRepo(wl)
		h, _ := newFundingHandlerForTest(t, walletRepo)

		router := gin.New()
		router.Use(withAuthPartner(p.ID()))
		router.POST("/wallets/:id/fund", h.Fund)

		body := `{"amount":50.00,"successUrl":"https://a.example/ok","cancelUrl":"https://a.example/cancel"}`
		req := httptest.NewRequest(http.MethodPost, "/wallets/"+wl.ID().String()+"/fund", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		require.Contains(t, w.Body.String(), "/pay/")
	})

	t.Run("RejectsInvalidSuccessURL", func(t *testing.T) {
		p := approvedPartnerForHandlerTest(t)
		wl, err := entities.NewWallet(p.ID(), "Primary", valueobjects.USD, "u1", "w1")
		require.NoError(t, err)
		walletRepo := newTxHandlerWalletRepo(wl)
		h, _ := newFundingHandlerForTest(t, walletRepo)

		router := gin.New()
		router.Use(withAuthPartner(p.ID()))
		router.POST("/wallets/:id/fund", h.Fund)

		body := `{"amount":50.00,"successUrl":"not-a-url","cancelUrl":"https://a.example/cancel"}`
		req := httptest.NewRequest(http.MethodPost, "/wallets/"+wl.ID().String()+"/fund", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFundingHandler_PublicGet(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newPublicRouter := func(h *FundingHandler) *gin.Engine {
		router := gin.New()
		router.GET("/api/public/funding/sessions/:id", h.PublicGet)
		return router
	}

	t.Run("ReturnsSessionWithClientSecret", func(t *testing.T) {
		p := approvedPartnerForHandlerTest(t)
		wl, err := entities.NewWallet(p.ID(), "Primary", valueobjects.USD, "u1", "w1")
		require.NoError(t, err)
		walletRepo := newTxHandlerWalletRepo(wl)
		h, sessionRepo := newFundingHandlerForTest(t, walletRepo)

		amount, err := valueobjects.NewMoney("25.00", valueobjects.USD)
		require.NoError(t, err)
		session := entities.NewFundingSession(p.ID(), wl.ID(), "pi_public", amount, "https://a.example/ok", "https://a.example/cancel", nil)
		require.NoError(t, sessionRepo.Save(context.Background(), session))

		router := newPublicRouter(h)
		req := httptest.NewRequest(http.MethodGet, "/api/public/funding/sessions/"+session.ID().String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "cs_test_secret")
		require.Contains(t, w.Body.String(), `"25.00"`)
	})

	t.Run("UnknownSessionIs404", func(t *testing.T) {
		p := approvedPartnerForHandlerTest(t)
		wl, err := entities.NewWallet(p.ID(), "Primary", valueobjects.USD, "u1", "w1")
		require.NoError(t, err)
		h, _ := newFundingHandlerForTest(t, newTxHandlerWalletRepo(wl))

		router := newPublicRouter(h)
		req := httptest.NewRequest(http.MethodGet, "/api/public/funding/sessions/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ExpiredSessionIs410", func(t *testing.T) {
		p := approvedPartnerForHandlerTest(t)
		wl, err := entities.NewWallet(p.ID(), "Primary", valueobjects.USD, "u1", "w1")
		require.NoError(t, err)
		walletRepo := newTxHandlerWalletRepo(wl)
		h, sessionRepo := newFundingHandlerForTest(t, walletRepo)

		amount, err := valueobjects.NewMoney("25.00", valueobjects.USD)
		require.NoError(t, err)
		session := entities.NewFundingSession(p.ID(), wl.ID(), "pi_expired", amount, "https://a.example/ok", "https://a.example/cancel", nil)
		require.NoError(t, session.Expire())
		require.NoError(t, sessionRepo.Save(context.Background(), session))

		router := newPublicRouter(h)
		req := httptest.NewRequest(http.MethodGet, "/api/public/funding/sessions/"+session.ID().String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusGone, w.Code)
	})
}

func TestFundingHandler_Get(t *testing.T) {
	gin.SetMode(gin.TestMode)

	p := approvedPartnerForHandlerTest(t)
	wl, err := entities.NewWallet(p.ID(), "Primary", valueobjects.USD, "u1", "w1")
	require.NoError(t, err)
	walletRepo := newTxHandlerWalletRepo(wl)
	h, _ := newFundingHandlerForTest(t, walletRepo)

	router := gin.New()
	router.Use(withAuthPartner(p.ID()))
	router.GET("/funding-sessions/:id", h.Get)

	req := httptest.NewRequest(http.MethodGet, "/funding-sessions/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFundingHandler_ListByWallet(t *testing.T) {
	gin.SetMode(gin.TestMode)

	p := approvedPartnerForHandlerTest(t)
	wl, err := entities.NewWallet(p.ID(), "Primary", valueobjects.USD, "u1", "w1")
	require.NoError(t, err)
	walletRepo := newTxHandlerWalletRepo(wl)
	h, _ := newFundingHandlerForTest(t, walletRepo)

	router := gin.New()
	router.Use(withAuthPartner(p.ID()))
	router.GET("/wallets/:id/funding-sessions", h.ListByWallet)

	req := httptest.NewRequest(http.MethodGet, "/wallets/"+wl.ID().String()+"/funding-sessions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}
