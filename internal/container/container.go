// Package container - dependency injection container for the application.
//
// Container owns the lifecycle of every dependency: construction (lazy
// initialization), access (getters) and teardown (Shutdown). This is the
// composition root: every dependency is wired here, so handlers and use
// cases only ever see the interfaces they need.
package container

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	grpcadapter "github.com/Haleralex/payflow/internal/adapters/grpc"
	"github.com/Haleralex/payflow/internal/adapters/http"
	"github.com/Haleralex/payflow/internal/application/gateway"
	"github.com/Haleralex/payflow/internal/application/ledger"
	"github.com/Haleralex/payflow/internal/application/ports"
	"github.com/Haleralex/payflow/internal/application/usecases/apikey"
	"github.com/Haleralex/payflow/internal/application/usecases/funding"
	"github.com/Haleralex/payflow/internal/application/usecases/partner"
	"github.com/Haleralex/payflow/internal/application/usecases/payout"
	"github.com/Haleralex/payflow/internal/application/usecases/transaction"
	"github.com/Haleralex/payflow/internal/application/usecases/wallet"
	"github.com/Haleralex/payflow/internal/config"
	infraevents "github.com/Haleralex/payflow/internal/infrastructure/events"
	infragateway "github.com/Haleralex/payflow/internal/infrastructure/gateway"
	"github.com/Haleralex/payflow/internal/infrastructure/persistence/postgres"
	"github.com/Haleralex/payflow/internal/infrastructure/ratelimit"
	"github.com/Haleralex/payflow/internal/infrastructure/webhook"
	"github.com/Haleralex/payflow/internal/pkg/logger"
	"github.com/Haleralex/payflow/internal/pkg/tracing"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Container is the application's DI container.
type Container struct {
	config *config.Config
	logger *slog.Logger

	// Infrastructure
	pool        *pgxpool.Pool
	redisClient *redis.Client

	// Repositories
	partnerRepo            ports.PartnerRepository
	apiKeyRepo             ports.ApiKeyRepository
	walletRepo             ports.WalletRepository
	transactionRepo        ports.TransactionRepository
	ledgerEntryRepo        ports.LedgerEntryRepository
	gatewayTransactionRepo ports.GatewayTransactionRepository
	fundingSessionRepo     ports.FundingSessionRepository
	outboxRepo             *postgres.OutboxRepository

	// Unit of Work
	uow ports.UnitOfWork

	// Event Publisher (the outbox repository doubles as one)
	eventPublisher ports.EventPublisher

	// Ledger engine - the only component allowed to compute a wallet balance.
	ledgerEngine *ledger.Engine

	// Card-processor funding rails: the default for this deployment plus the
	// name-indexed registry the webhook route resolves against.
	gateway         gateway.Gateway
	gatewayRegistry *infragateway.Registry

	// Rate limiter
	rateLimiter *ratelimit.Limiter

	// NATS event fan-out (nil when no broker is configured)
	natsPublisher *infraevents.NatsPublisher

	// Tracing teardown (no-op when tracing is disabled)
	tracingShutdown func(context.Context) error

	// Outbound partner webhook dispatcher
	webhookDispatcher *webhook.Dispatcher

	// Use Cases
	registerPartnerUC            *partner.RegisterUseCase
	getPartnerUC                 *partner.GetUseCase
	listPartnersUC               *partner.ListUseCase
	reviewPartnerUC              *partner.ReviewUseCase
	rotatePartnerWebhookSecretUC *partner.RotateWebhookSecretUseCase

	createApiKeyUC *apikey.CreateUseCase
	revokeApiKeyUC *apikey.RevokeUseCase
	listApiKeysUC  *apikey.ListUseCase

	createWalletUC        *wallet.CreateUseCase
	getWalletUC           *wallet.GetUseCase
	getWalletByExternalUC *wallet.GetByExternalIDUseCase
	listWalletsUC         *wallet.ListUseCase
	updateWalletStatusUC  *wallet.UpdateStatusUseCase

	postTransactionUC   *transaction.PostUseCase
	getTransactionUC    *transaction.GetUseCase
	listTransactionsUC  *transaction.ListByWalletUseCase
	listLedgerEntriesUC *transaction.ListLedgerEntriesUseCase

	createFundingSessionUC    *funding.CreateUseCase
	getFundingSessionUC       *funding.GetUseCase
	listFundingSessionsUC     *funding.ListByWalletUseCase
	processGatewayEventUC     *funding.ProcessGatewayEventUseCase
	expireFundingSessionsUC   *funding.ExpireSweepUseCase
	publicGetFundingSessionUC *funding.PublicGetUseCase

	createPayoutUC *payout.CreateUseCase

	// HTTP
	httpServer *http.Server

	// Internal gRPC ops surface (nil unless enabled)
	grpcServer *grpcadapter.Server

	// Background sweeps
	stopExpirySweep     context.CancelFunc
	stopWebhookDispatch context.CancelFunc
}

// New creates a container for the given configuration. Call Initialize to
// wire up its dependencies.
func New(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// Initialize wires up every dependency in order: database, rate limiter,
// repositories, gateway, use cases, HTTP server, and the background sweeps.
func (c *Container) Initialize(ctx context.Context) error {
	c.logger = c.initLogger()
	c.logger.Info("Initializing application container...")

	if err := c.initTracing(ctx); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := c.initDatabase(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database connected")

	c.initRedis()
	c.logger.Info("Rate limiter connected")

	c.initRepositories()
	c.logger.Info("Repositories initialized")

	c.initGateway()
	c.logger.Info("Gateway initialized", slog.String("environment", c.config.Gateway.Environment))

	if err := c.initNATS(); err != nil {
		return fmt.Errorf("failed to initialize NATS: %w", err)
	}

	c.initUseCases()
	c.logger.Info("Use cases initialized")

	c.initHTTPServer()
	c.logger.Info("HTTP server initialized")

	c.startExpirySweep()
	c.logger.Info("Funding session expiry sweep started")

	c.webhookDispatcher = webhook.NewDispatcher(c.partnerRepo, c.logger)
	c.startWebhookDispatch()
	c.logger.Info("Outbound webhook dispatcher started")

	if c.config.GRPC.Enabled {
		c.initGRPCServer()
		c.logger.Info("gRPC ops server initialized", slog.String("address", c.config.GRPC.Address()))
	}

	c.logger.Info("Container initialization complete")
	return nil
}

// initTracing installs the OTLP trace pipeline; disabled tracing installs
// nothing and leaves every span a no-op.
func (c *Container) initTracing(ctx context.Context) error {
	shutdown, err := tracing.Init(ctx, &tracing.Config{
		Enabled:        c.config.Tracing.Enabled,
		Endpoint:       c.config.Tracing.Endpoint,
		Insecure:       c.config.Tracing.Insecure,
		SampleRatio:    c.config.Tracing.SampleRatio,
		ServiceName:    "payflow",
		ServiceVersion: c.config.App.Version,
		Environment:    c.config.App.Environment,
	})
	if err != nil {
		return err
	}
	c.tracingShutdown = shutdown
	return nil
}

// initNATS dials the event broker when one is configured. No broker means
// outbox events are only fanned out as partner webhooks.
func (c *Container) initNATS() error {
	if c.config.NATS.URL == "" {
		return nil
	}
	publisher, err := infraevents.NewNatsPublisher(c.config.NATS.URL, c.config.NATS.SubjectPrefix, c.logger)
	if err != nil {
		return err
	}
	c.natsPublisher = publisher
	c.logger.Info("NATS event publisher connected", slog.String("url", c.config.NATS.URL))
	return nil
}

// initLogger builds the structured logger. Built on pkg/logger.New so every
// log line gets request/correlation IDs pulled from context automatically
// (see middleware.Logging and middleware.RequestID, which stash them there).
func (c *Container) initLogger() *slog.Logger {
	l := logger.New(&logger.Config{
		Level:      c.config.Log.Level,
		Format:     c.config.Log.Format,
		Output:     os.Stdout,
		AddSource:  c.config.App.Debug,
		TimeFormat: time.RFC3339,
	})
	slog.SetDefault(l)
	return l
}

// initDatabase opens and pings the Postgres connection pool.
func (c *Container) initDatabase(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(c.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = c.config.Database.MaxConnections
	poolConfig.MinConns = c.config.Database.MinConnections
	poolConfig.MaxConnLifetime = c.config.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = c.config.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.pool = pool
	return nil
}

// initRedis creates the client backing the partner-scoped rate limiter.
// A broken Redis connection degrades requests, not startup -
// NewLimiter lazily dials on first use.
func (c *Container) initRedis() {
	c.redisClient = redis.NewClient(&redis.Options{
		Addr:     c.config.Redis.Addr,
		Password: c.config.Redis.Password,
		DB:       c.config.Redis.DB,
	})
	c.rateLimiter = ratelimit.NewLimiter(c.redisClient)
}

// initRepositories constructs every Postgres repository and the unit of work.
func (c *Container) initRepositories() {
	c.partnerRepo = postgres.NewPartnerRepository(c.pool)
	c.apiKeyRepo = postgres.NewApiKeyRepository(c.pool)
	c.walletRepo = postgres.NewWalletRepository(c.pool)
	c.transactionRepo = postgres.NewTransactionRepository(c.pool)
	c.ledgerEntryRepo = postgres.NewLedgerEntryRepository(c.pool)
	c.gatewayTransactionRepo = postgres.NewGatewayTransactionRepository(c.pool)
	c.fundingSessionRepo = postgres.NewFundingSessionRepository(c.pool)
	c.outboxRepo = postgres.NewOutboxRepository(c.pool)

	c.uow = postgres.NewUnitOfWork(c.pool)

	// OutboxRepository doubles as the EventPublisher (transactional outbox
	// pattern): event and business write share one transaction.
	c.eventPublisher = c.outboxRepo

	c.ledgerEngine = ledger.NewEngine(c.walletRepo, c.ledgerEntryRepo)
}

// initGateway selects the card-processor client and builds the name-indexed
// registry the per-gateway webhook route resolves against. The selected
// client serves every funding and payout call, whatever the environment of
// the calling API key; the Mock is always registered under "mock" for
// inbound webhooks.
func (c *Container) initGateway() {
	c.gatewayRegistry = infragateway.NewRegistry()

	mock := infragateway.NewMock(c.config.Gateway.WebhookSecret)
	c.gatewayRegistry.Register("mock", mock, c.config.Gateway.SignatureHdr)

	if c.config.Gateway.Environment == "production" {
		live := infragateway.NewLive(c.config.Gateway.BaseURL, c.config.Gateway.ApiSecret, c.config.Gateway.WebhookSecret)
		c.gatewayRegistry.Register(c.config.Gateway.Name, live, c.config.Gateway.SignatureHdr)
		c.gateway = live
	} else {
		c.gatewayRegistry.Register(c.config.Gateway.Name, mock, c.config.Gateway.SignatureHdr)
		c.gateway = mock
	}
}

// initUseCases constructs every application use case over the repositories
// and ledger engine wired above.
func (c *Container) initUseCases() {
	c.registerPartnerUC = partner.NewRegisterUseCase(c.partnerRepo, c.uow)
	c.getPartnerUC = partner.NewGetUseCase(c.partnerRepo)
	c.listPartnersUC = partner.NewListUseCase(c.partnerRepo)
	c.reviewPartnerUC = partner.NewReviewUseCase(c.partnerRepo, c.apiKeyRepo, c.eventPublisher, c.uow)
	c.rotatePartnerWebhookSecretUC = partner.NewRotateWebhookSecretUseCase(c.partnerRepo, c.uow)

	c.createApiKeyUC = apikey.NewCreateUseCase(c.partnerRepo, c.apiKeyRepo, c.eventPublisher, c.uow)
	c.revokeApiKeyUC = apikey.NewRevokeUseCase(c.apiKeyRepo, c.eventPublisher, c.uow)
	c.listApiKeysUC = apikey.NewListUseCase(c.apiKeyRepo)

	c.createWalletUC = wallet.NewCreateUseCase(c.partnerRepo, c.walletRepo, c.eventPublisher, c.uow)
	c.getWalletUC = wallet.NewGetUseCase(c.walletRepo, c.ledgerEngine)
	c.getWalletByExternalUC = wallet.NewGetByExternalIDUseCase(c.walletRepo, c.ledgerEngine)
	c.listWalletsUC = wallet.NewListUseCase(c.walletRepo, c.ledgerEngine)
	c.updateWalletStatusUC = wallet.NewUpdateStatusUseCase(c.walletRepo, c.eventPublisher, c.uow, c.ledgerEngine)

	c.postTransactionUC = transaction.NewPostUseCase(c.partnerRepo, c.walletRepo, c.transactionRepo, c.eventPublisher, c.uow, c.ledgerEngine)
	c.getTransactionUC = transaction.NewGetUseCase(c.transactionRepo)
	c.listTransactionsUC = transaction.NewListByWalletUseCase(c.walletRepo, c.transactionRepo)
	c.listLedgerEntriesUC = transaction.NewListLedgerEntriesUseCase(c.walletRepo, c.ledgerEntryRepo)

	c.createFundingSessionUC = funding.NewCreateUseCase(c.walletRepo, c.fundingSessionRepo, c.eventPublisher, c.uow, c.gateway)
	c.getFundingSessionUC = funding.NewGetUseCase(c.walletRepo, c.fundingSessionRepo)
	c.listFundingSessionsUC = funding.NewListByWalletUseCase(c.walletRepo, c.fundingSessionRepo)
	c.processGatewayEventUC = funding.NewProcessGatewayEventUseCase(
		c.gatewayTransactionRepo,
		c.fundingSessionRepo,
		c.walletRepo,
		c.partnerRepo,
		c.transactionRepo,
		c.eventPublisher,
		c.uow,
		c.ledgerEngine,
	)
	c.expireFundingSessionsUC = funding.NewExpireSweepUseCase(c.fundingSessionRepo, c.eventPublisher, c.uow)
	c.publicGetFundingSessionUC = funding.NewPublicGetUseCase(c.fundingSessionRepo, c.gateway)

	c.createPayoutUC = payout.NewCreateUseCase(
		c.partnerRepo,
		c.walletRepo,
		c.transactionRepo,
		c.eventPublisher,
		c.uow,
		c.ledgerEngine,
		c.gateway,
		c.config.Gateway.Name,
	)
}

// initHTTPServer assembles the gin router and wraps it in the HTTP server.
func (c *Container) initHTTPServer() {
	routerConfig := &http.RouterConfig{
		Logger:         c.logger,
		Pool:           c.pool,
		Version:        c.config.App.Version,
		BuildTime:      c.config.App.BuildTime,
		Environment:    c.config.App.Environment,
		AllowedOrigins: c.config.CORS.AllowedOrigins,

		ApiKeyRepo:     c.apiKeyRepo,
		PartnerRepo:    c.partnerRepo,
		AdminJWTSecret: c.config.Auth.JWTSecret,
		AdminJWTIssuer: c.config.Auth.JWTIssuer,

		GatewayRegistry: c.gatewayRegistry,

		RateLimiter:    c.rateLimiter,
		TracingEnabled: c.config.Tracing.Enabled,

		WalletUseCases: &http.WalletUseCases{
			Create:        c.createWalletUC,
			Get:           c.getWalletUC,
			GetByExternal: c.getWalletByExternalUC,
			List:          c.listWalletsUC,
			UpdateStatus:  c.updateWalletStatusUC,
		},
		TransactionUseCases: &http.TransactionUseCases{
			Post:         c.postTransactionUC,
			Get:          c.getTransactionUC,
			ListByWallet: c.listTransactionsUC,
			ListLedger:   c.listLedgerEntriesUC,
		},
		PartnerUseCases: &http.PartnerUseCases{
			Register:            c.registerPartnerUC,
			Get:                 c.getPartnerUC,
			List:                c.listPartnersUC,
			Review:              c.reviewPartnerUC,
			RotateWebhookSecret: c.rotatePartnerWebhookSecretUC,
		},
		ApiKeyUseCases: &http.ApiKeyUseCases{
			Create: c.createApiKeyUC,
			Revoke: c.revokeApiKeyUC,
			List:   c.listApiKeysUC,
		},
		FundingUseCases: &http.FundingUseCases{
			Create:    c.createFundingSessionUC,
			Get:       c.getFundingSessionUC,
			List:      c.listFundingSessionsUC,
			Process:   c.processGatewayEventUC,
			PublicGet: c.publicGetFundingSessionUC,
		},
		PayoutUseCases: &http.PayoutUseCases{
			Create: c.createPayoutUC,
		},
	}

	router := http.NewRouter(routerConfig)

	serverConfig := &http.ServerConfig{
		Host:            c.config.Server.Host,
		Port:            fmt.Sprintf("%d", c.config.Server.Port),
		ReadTimeout:     c.config.Server.ReadTimeout,
		WriteTimeout:    c.config.Server.WriteTimeout,
		IdleTimeout:     c.config.Server.IdleTimeout,
		ShutdownTimeout: c.config.Server.ShutdownTimeout,
		Logger:          c.logger,
	}

	c.httpServer = http.NewServer(serverConfig, router)
}

// initGRPCServer assembles the internal ops surface and starts it in the
// background; Shutdown stops it gracefully.
func (c *Container) initGRPCServer() {
	ops := grpcadapter.NewOpsService(c.fundingSessionRepo, c.uow, c.expireFundingSessionsUC)
	c.grpcServer = grpcadapter.NewServer(&grpcadapter.ServerConfig{
		Address: c.config.GRPC.Address(),
		Logger:  c.logger,
	}, ops)

	go func() {
		if err := c.grpcServer.Run(); err != nil {
			c.logger.Error("gRPC ops server stopped", slog.String("error", err.Error()))
		}
	}()
}

// startExpirySweep runs the funding-session TTL sweep on a fixed interval in
// the background. It stops when Shutdown cancels its context.
func (c *Container) startExpirySweep() {
	ctx, cancel := context.WithCancel(context.Background())
	c.stopExpirySweep = cancel

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := c.expireFundingSessionsUC.Execute(ctx)
				if err != nil {
					c.logger.Error("funding session expiry sweep failed", slog.String("error", err.Error()))
					continue
				}
				if n > 0 {
					c.logger.Info("expired funding sessions", slog.Int("count", n))
				}
			}
		}
	}()
}

// startWebhookDispatch drains the transactional outbox and fans PENDING
// transaction.completed events out to partner webhook endpoints.
// It stops when Shutdown cancels its context.
func (c *Container) startWebhookDispatch() {
	ctx, cancel := context.WithCancel(context.Background())
	c.stopWebhookDispatch = cancel

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.drainOutbox(ctx)
			}
		}
	}()
}

// drainOutbox publishes one batch of pending outbox events. A batch runs
// inside a single unit of work so FOR UPDATE SKIP LOCKED actually holds its
// row locks for the duration of the batch, letting multiple API replicas
// drain the outbox concurrently without double-delivering an event.
func (c *Container) drainOutbox(ctx context.Context) {
	const batchSize = 50

	err := c.uow.Execute(ctx, func(txCtx context.Context) error {
		pending, err := c.outboxRepo.FindUnpublished(txCtx, batchSize)
		if err != nil {
			return fmt.Errorf("failed to load pending outbox events: %w", err)
		}

		for _, event := range pending {
			if c.natsPublisher != nil {
				// Broker fan-out is best effort: the partner webhook is the
				// delivery this drain is accountable for.
				if err := c.natsPublisher.Publish(event); err != nil {
					c.logger.Warn("NATS publish failed",
						slog.String("eventId", event.EventID().String()),
						slog.String("error", err.Error()))
				}
			}
			if err := c.webhookDispatcher.Dispatch(txCtx, event); err != nil {
				c.logger.Error("outbox event dispatch failed",
					slog.String("eventId", event.EventID().String()),
					slog.String("eventType", event.EventType()),
					slog.String("error", err.Error()))
				if markErr := c.outboxRepo.MarkFailed(txCtx, event.EventID().String(), err.Error()); markErr != nil {
					return fmt.Errorf("failed to mark outbox event failed: %w", markErr)
				}
				continue
			}
			if err := c.outboxRepo.MarkPublished(txCtx, event.EventID().String()); err != nil {
				return fmt.Errorf("failed to mark outbox event published: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		c.logger.Error("outbox drain failed", slog.String("error", err.Error()))
	}
}

func (c *Container) Config() *config.Config {
	return c.config
}

func (c *Container) Logger() *slog.Logger {
	return c.logger
}

func (c *Container) Pool() *pgxpool.Pool {
	return c.pool
}

func (c *Container) HTTPServer() *http.Server {
	return c.httpServer
}

func (c *Container) PartnerRepository() ports.PartnerRepository {
	return c.partnerRepo
}

func (c *Container) ApiKeyRepository() ports.ApiKeyRepository {
	return c.apiKeyRepo
}

func (c *Container) WalletRepository() ports.WalletRepository {
	return c.walletRepo
}

func (c *Container) TransactionRepository() ports.TransactionRepository {
	return c.transactionRepo
}

func (c *Container) LedgerEntryRepository() ports.LedgerEntryRepository {
	return c.ledgerEntryRepo
}

func (c *Container) FundingSessionRepository() ports.FundingSessionRepository {
	return c.fundingSessionRepo
}

func (c *Container) UnitOfWork() ports.UnitOfWork {
	return c.uow
}

// Shutdown stops the background sweeps, drains the HTTP server, and closes
// the Redis client and database pool.
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down container...")

	var errs []error

	if c.stopExpirySweep != nil {
		c.stopExpirySweep()
	}

	if c.stopWebhookDispatch != nil {
		c.stopWebhookDispatch()
	}

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
	}

	if c.grpcServer != nil {
		c.grpcServer.Shutdown(ctx)
	}

	if c.natsPublisher != nil {
		c.natsPublisher.Close()
	}

	if c.tracingShutdown != nil {
		if err := c.tracingShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
		}
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis client close: %w", err))
		}
	}

	if c.pool != nil {
		done := make(chan struct{})
		go func() {
			c.pool.Close()
			close(done)
		}()

		select {
		case <-done:
			c.logger.Info("Database connection closed")
		case <-ctx.Done():
			c.logger.Warn("Database close timeout")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	c.logger.Info("Container shutdown complete")
	return nil
}

// Run starts the HTTP server and blocks until it receives a shutdown signal.
func (c *Container) Run() error {
	c.logger.Info("Starting PayFlow API Server",
		slog.String("version", c.config.App.Version),
		slog.String("environment", c.config.App.Environment),
		slog.String("address", c.config.Server.Address()),
	)

	return c.httpServer.Run()
}

// HealthStatus reports the application's health for the /health/detailed
// endpoint and its background sweeps.
type HealthStatus struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Uptime  time.Duration     `json:"uptime"`
	Checks  map[string]string `json:"checks"`
}

// Health pings the database and Redis and reports overall health.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:  "healthy",
		Version: c.config.App.Version,
		Checks:  make(map[string]string),
	}

	if err := c.pool.Ping(ctx); err != nil {
		status.Status = "unhealthy"
		status.Checks["database"] = "error: " + err.Error()
	} else {
		status.Checks["database"] = "ok"
	}

	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		status.Status = "unhealthy"
		status.Checks["redis"] = "error: " + err.Error()
	} else {
		status.Checks["redis"] = "ok"
	}

	return status
}
