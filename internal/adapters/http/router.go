// Package http assembles every handler and middleware into one gin.Engine.
// This is the composition root for the HTTP adapter: dependencies are
// injected here, handlers only ever see the use cases they need.
package http

import (
	"log/slog"

	"github.com/Haleralex/payflow/internal/adapters/http/common"
	"github.com/Haleralex/payflow/internal/adapters/http/handlers"
	"github.com/Haleralex/payflow/internal/adapters/http/middleware"
	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/application/usecases/apikey"
	"github.com/Haleralex/payflow/internal/application/usecases/funding"
	"github.com/Haleralex/payflow/internal/application/usecases/partner"
	"github.com/Haleralex/payflow/internal/application/usecases/payout"
	"github.com/Haleralex/payflow/internal/application/usecases/transaction"
	"github.com/Haleralex/payflow/internal/application/usecases/wallet"
	"github.com/Haleralex/payflow/internal/domain/entities"
	infragateway "github.com/Haleralex/payflow/internal/infrastructure/gateway"
	"github.com/Haleralex/payflow/internal/infrastructure/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// RouterConfig collects everything the router needs to wire itself up.
type RouterConfig struct {
	Logger         *slog.Logger
	Pool           *pgxpool.Pool
	Version        string
	BuildTime      string
	Environment    string
	AllowedOrigins []string

	ApiKeyRepo     ports.ApiKeyRepository
	PartnerRepo    ports.PartnerRepository
	AdminJWTSecret string
	AdminJWTIssuer string

	GatewayRegistry *infragateway.Registry

	RateLimiter    *ratelimit.Limiter
	TracingEnabled bool

	WalletUseCases      *WalletUseCases
	TransactionUseCases *TransactionUseCases
	PartnerUseCases     *PartnerUseCases
	ApiKeyUseCases      *ApiKeyUseCases
	FundingUseCases     *FundingUseCases
	PayoutUseCases      *PayoutUseCases
}

// WalletUseCases groups the wallet use cases the router wires to WalletHandler.
type WalletUseCases struct {
	Create        *wallet.CreateUseCase
	Get           *wallet.GetUseCase
	GetByExternal *wallet.GetByExternalIDUseCase
	List          *wallet.ListUseCase
	UpdateStatus  *wallet.UpdateStatusUseCase
}

// TransactionUseCases groups the transaction use cases the router wires to
// TransactionHandler.
type TransactionUseCases struct {
	Post         *transaction.PostUseCase
	Get          *transaction.GetUseCase
	ListByWallet *transaction.ListByWalletUseCase
	ListLedger   *transaction.ListLedgerEntriesUseCase
}

// PartnerUseCases groups the admin-only partner use cases.
type PartnerUseCases struct {
	Register            *partner.RegisterUseCase
	Get                 *partner.GetUseCase
	List                *partner.ListUseCase
	Review              *partner.ReviewUseCase
	RotateWebhookSecret *partner.RotateWebhookSecretUseCase
}

// ApiKeyUseCases groups the partner API key use cases.
type ApiKeyUseCases struct {
	Create *apikey.CreateUseCase
	Revoke *apikey.RevokeUseCase
	List   *apikey.ListUseCase
}

// FundingUseCases groups the funding session use cases.
type FundingUseCases struct {
	Create    *funding.CreateUseCase
	Get       *funding.GetUseCase
	List      *funding.ListByWalletUseCase
	Process   *funding.ProcessGatewayEventUseCase
	PublicGet *funding.PublicGetUseCase
}

// PayoutUseCases groups the payout use cases.
type PayoutUseCases struct {
	Create *payout.CreateUseCase
}

// NewRouter builds the fully wired gin.Engine for the PayFlow API.
func NewRouter(config *RouterConfig) *gin.Engine {
	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupValidator()

	router.Use(middleware.Recovery(&middleware.RecoveryConfig{
		Logger:           config.Logger,
		EnableStackTrace: config.Environment != "production",
	}))
	router.Use(middleware.RequestID())
	if config.Environment == "production" {
		router.Use(middleware.CORS(middleware.ProductionCORSConfig(config.AllowedOrigins)))
	} else {
		router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	}
	if config.TracingEnabled {
		router.Use(otelgin.Middleware("payflow"))
	}
	router.Use(middleware.Logging(&middleware.LoggingConfig{
		Logger:    config.Logger,
		SkipPaths: []string{"/health", "/live", "/ready", "/metrics"},
	}))
	router.Use(middleware.Metrics())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	healthHandler := handlers.NewHealthHandler(config.Pool, config.Version, config.BuildTime)
	healthHandler.RegisterRoutes(router)

	// Inbound gateway webhooks: no partner auth, signature-verified instead.
	if config.GatewayRegistry != nil && config.FundingUseCases != nil {
		webhookHandler := handlers.NewWebhookHandler(config.GatewayRegistry, config.FundingUseCases.Process)
		router.POST("/api/v1/webhooks/:gateway", webhookHandler.HandleGatewayEvent)
	}

	// Public payment page data: no auth, the session id is the capability.
	if config.FundingUseCases != nil && config.FundingUseCases.PublicGet != nil {
		publicFundingHandler := handlers.NewFundingHandler(config.FundingUseCases.Create, config.FundingUseCases.Get, config.FundingUseCases.List, config.FundingUseCases.PublicGet)
		router.GET("/api/public/funding/sessions/:id", publicFundingHandler.PublicGet)
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.ApiKeyAuth(middleware.ApiKeyAuthConfig{ApiKeyRepo: config.ApiKeyRepo, PartnerRepo: config.PartnerRepo}))
	if config.RateLimiter != nil {
		v1.Use(middleware.StandardRateLimit(config.RateLimiter))
	}

	if config.WalletUseCases != nil {
		walletHandler := handlers.NewWalletHandler(config.WalletUseCases.Create, config.WalletUseCases.Get, config.WalletUseCases.GetByExternal, config.WalletUseCases.List, config.WalletUseCases.UpdateStatus)
		wallets := v1.Group("/wallets")
		{
			wallets.POST("", middleware.RequirePermission(entities.PermissionWalletsWrite), walletHandler.Create)
			wallets.GET("", middleware.RequirePermission(entities.PermissionWalletsRead), walletHandler.List)
			wallets.GET("/external/:externalId", middleware.RequirePermission(entities.PermissionWalletsRead), walletHandler.GetByExternal)
			wallets.GET("/:id", middleware.RequirePermission(entities.PermissionWalletsRead), walletHandler.Get)
			wallets.GET("/:id/balance", middleware.RequirePermission(entities.PermissionWalletsRead), walletHandler.Balance)
			wallets.POST("/:id/suspend", middleware.RequirePermission(entities.PermissionWalletsWrite), walletHandler.Suspend)
			wallets.POST("/:id/activate", middleware.RequirePermission(entities.PermissionWalletsWrite), walletHandler.Activate)
			wallets.POST("/:id/close", middleware.RequirePermission(entities.PermissionWalletsWrite), walletHandler.Close)
		}

		if config.TransactionUseCases != nil {
			txHandler := handlers.NewTransactionHandler(config.TransactionUseCases.Post, config.TransactionUseCases.Get, config.TransactionUseCases.ListByWallet, config.TransactionUseCases.ListLedger)
			wallets.GET("/:id/transactions", middleware.RequirePermission(entities.PermissionTransactionsRead), txHandler.ListByWallet)
			wallets.GET("/:id/ledger-entries", middleware.RequirePermission(entities.PermissionTransactionsRead), txHandler.ListLedgerEntries)
			wallets.POST("/:id/credit", middleware.PostingRateLimit(config.RateLimiter), middleware.RequirePermission(entities.PermissionTransactionsWrite), txHandler.Credit)
			wallets.POST("/:id/debit", middleware.PostingRateLimit(config.RateLimiter), middleware.RequirePermission(entities.PermissionTransactionsWrite), txHandler.Debit)
		}

		if config.FundingUseCases != nil {
			fundingHandler := handlers.NewFundingHandler(config.FundingUseCases.Create, config.FundingUseCases.Get, config.FundingUseCases.List, config.FundingUseCases.PublicGet)
			wallets.GET("/:id/funding-sessions", middleware.RequirePermission(entities.PermissionWalletsRead), fundingHandler.ListByWallet)
			wallets.POST("/:id/fund", middleware.PostingRateLimit(config.RateLimiter), middleware.RequirePermission(entities.PermissionWalletsWrite), fundingHandler.Fund)

			v1.GET("/funding/sessions/:id", middleware.RequirePermission(entities.PermissionWalletsRead), fundingHandler.Get)
		}
	}

	if config.TransactionUseCases != nil {
		txHandler := handlers.NewTransactionHandler(config.TransactionUseCases.Post, config.TransactionUseCases.Get, config.TransactionUseCases.ListByWallet, config.TransactionUseCases.ListLedger)
		transactions := v1.Group("/transactions")
		transactions.Use(middleware.PostingRateLimit(config.RateLimiter))
		{
			transactions.POST("", middleware.RequirePermission(entities.PermissionTransactionsWrite), txHandler.Post)
			transactions.GET("/:id", middleware.RequirePermission(entities.PermissionTransactionsRead), txHandler.Get)
		}
		v1.POST("/transfers", middleware.PostingRateLimit(config.RateLimiter), middleware.RequirePermission(entities.PermissionTransactionsWrite), txHandler.Transfer)
	}

	if config.PayoutUseCases != nil {
		payoutHandler := handlers.NewPayoutHandler(config.PayoutUseCases.Create)
		v1.POST("/payouts", middleware.PostingRateLimit(config.RateLimiter), middleware.RequirePermission(entities.PermissionPayoutsWrite), payoutHandler.Create)
	}

	if config.ApiKeyUseCases != nil {
		apiKeyHandler := handlers.NewApiKeyHandler(config.ApiKeyUseCases.Create, config.ApiKeyUseCases.Revoke, config.ApiKeyUseCases.List)
		apiKeys := v1.Group("/api-keys")
		{
			apiKeys.POST("", apiKeyHandler.Create)
			apiKeys.GET("", apiKeyHandler.List)
			apiKeys.DELETE("/:id", apiKeyHandler.Revoke)
		}
	}

	// Admin routes: internal partner onboarding/review, behind a signed
	// session rather than a partner API key.
	if config.PartnerUseCases != nil {
		partnerHandler := handlers.NewPartnerHandler(config.PartnerUseCases.Register, config.PartnerUseCases.Get, config.PartnerUseCases.List, config.PartnerUseCases.Review, config.PartnerUseCases.RotateWebhookSecret)
		admin := router.Group("/api/admin")
		admin.Use(middleware.AdminAuth(config.AdminJWTSecret, config.AdminJWTIssuer))
		{
			partners := admin.Group("/partners")
			partners.POST("", partnerHandler.Register)
			partners.GET("", partnerHandler.List)
			partners.GET("/:id", partnerHandler.Get)
			partners.POST("/:id/review", partnerHandler.Review)
			partners.POST("/:id/webhook-secret/rotate", partnerHandler.RotateWebhookSecret)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		common.Error(c, 404, &common.APIError{Kind: "not_found", Message: "endpoint not found"})
	})

	return router
}
