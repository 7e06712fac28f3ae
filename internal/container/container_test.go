package container

import (
	"context"
	"os"
	"testing"
	"time"

	"log/slog"

	"github.com/Haleralex/payflow/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	cfg := config.Development()
	c := New(cfg)

	require.NotNil(t, c)
	assert.Equal(t, cfg, c.config)
}

func TestContainer_Config(t *testing.T) {
	cfg := config.Development()
	c := New(cfg)

	assert.Equal(t, cfg, c.Config())
}

func TestContainer_Logger_BeforeInit(t *testing.T) {
	cfg := config.Development()
	c := New(cfg)

	assert.Nil(t, c.Logger())
}

func TestContainer_Pool_BeforeInit(t *testing.T) {
	cfg := config.Development()
	c := New(cfg)

	assert.Nil(t, c.Pool())
}

func TestContainer_HTTPServer_BeforeInit(t *testing.T) {
	cfg := config.Development()
	c := New(cfg)

	assert.Nil(t, c.HTTPServer())
}

func TestContainer_PartnerRepository_BeforeInit(t *testing.T) {
	cfg := config.Development()
	c := New(cfg)

	assert.Nil(t, c.PartnerRepository())
}

func TestContainer_ApiKeyRepository_BeforeInit(t *testing.T) {
	cfg := config.Development()
	c := New(cfg)

	assert.Nil(t, c.ApiKeyRepository())
}

func TestContainer_WalletRepository_BeforeInit(t *testing.T) {
	cfg := config.Development()
	c := New(cfg)

	assert.Nil(t, c.WalletRepository())
}

func TestContainer_TransactionRepository_BeforeInit(t *testing.T) {
	cfg := config.Development()
	c := New(cfg)

	assert.Nil(t, c.TransactionRepository())
}

func TestContainer_LedgerEntryRepository_BeforeInit(t *testing.T) {
	cfg := config.Development()
	c := New(cfg)

	assert.Nil(t, c.LedgerEntryRepository())
}

func TestContainer_FundingSessionRepository_BeforeInit(t *testing.T) {
	cfg := config.Development()
	c := New(cfg)

	assert.Nil(t, c.FundingSessionRepository())
}

func TestContainer_UnitOfWork_BeforeInit(t *testing.T) {
	cfg := config.Development()
	c := New(cfg)

	assert.Nil(t, c.UnitOfWork())
}

func TestContainer_initLogger_DebugLevel(t *testing.T) {
	cfg := config.Development()
	cfg.Log.Level = "debug"
	cfg.Log.Format = "text"
	cfg.App.Debug = true

	c := New(cfg)
	logger := c.initLogger()

	require.NotNil(t, logger)
	assert.NotNil(t, logger.Handler())
}

func TestContainer_initLogger_InfoLevel(t *testing.T) {
	cfg := config.Development()
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"

	c := New(cfg)
	logger := c.initLogger()

	require.NotNil(t, logger)
}

func TestContainer_initLogger_WarnLevel(t *testing.T) {
	cfg := config.Development()
	cfg.Log.Level = "warn"
	cfg.Log.Format = "text"

	c := New(cfg)
	logger := c.initLogger()

	require.NotNil(t, logger)
}

func TestContainer_initLogger_ErrorLevel(t *testing.T) {
	cfg := config.Development()
	cfg.Log.Level = "error"
	cfg.Log.Format = "json"

	c := New(cfg)
	logger := c.initLogger()

	require.NotNil(t, logger)
}

func TestContainer_initLogger_UnknownLevel(t *testing.T) {
	cfg := config.Development()
	cfg.Log.Level = "unknown"

	c := New(cfg)
	logger := c.initLogger()

	require.NotNil(t, logger)
}

func TestContainer_initGateway_Sandbox(t *testing.T) {
	cfg := config.Development()
	cfg.Gateway.Environment = "sandbox"
	cfg.Gateway.WebhookSecret = "whsec_test"

	c := New(cfg)
	c.initGateway()

	require.NotNil(t, c.gateway)
}

func TestContainer_initGateway_Production(t *testing.T) {
	cfg := config.Development()
	cfg.Gateway.Environment = "production"
	cfg.Gateway.BaseURL = "https://processor.example.com"
	cfg.Gateway.ApiSecret = "sk_live_test"
	cfg.Gateway.WebhookSecret = "whsec_live"

	c := New(cfg)
	c.initGateway()

	require.NotNil(t, c.gateway)
}

// HealthStatus Tests

func TestHealthStatus_Structure(t *testing.T) {
	status := &HealthStatus{
		Status:  "healthy",
		Version: "1.0.0",
		Uptime:  time.Hour,
		Checks:  map[string]string{"database": "ok"},
	}

	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.0.0", status.Version)
	assert.Equal(t, time.Hour, status.Uptime)
	assert.Equal(t, "ok", status.Checks["database"])
}

func TestHealthStatus_Unhealthy(t *testing.T) {
	status := &HealthStatus{
		Status:  "unhealthy",
		Version: "1.0.0",
		Checks:  map[string]string{"database": "error: connection refused"},
	}

	assert.Equal(t, "unhealthy", status.Status)
	assert.Contains(t, status.Checks["database"], "error")
}

// Shutdown Tests

func TestContainer_Shutdown_NilComponents(t *testing.T) {
	cfg := config.Development()
	c := New(cfg)
	c.logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := c.Shutdown(ctx)
	assert.NoError(t, err)
}

// Initialize Tests (with expected failures for no DB)

func TestContainer_Initialize_NoDB(t *testing.T) {
	cfg := config.Development()
	cfg.Database.Host = "invalid-host-that-does-not-exist"
	cfg.Database.Port = 59999

	c := New(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := c.Initialize(ctx)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize database")
}

// Edge Cases

func TestContainer_MultipleNew(t *testing.T) {
	cfg1 := config.Development()
	cfg2 := config.Test()

	c1 := New(cfg1)
	c2 := New(cfg2)

	assert.NotEqual(t, c1, c2)
	assert.Equal(t, cfg1, c1.Config())
	assert.Equal(t, cfg2, c2.Config())
}

func TestContainer_AllLogLevels(t *testing.T) {
	levels := []string{"debug", "info", "warn", "error", "unknown", ""}

	for _, level := range levels {
		t.Run(level, func(t *testing.T) {
			cfg := config.Development()
			cfg.Log.Level = level

			c := New(cfg)
			logger := c.initLogger()

			require.NotNil(t, logger)
		})
	}
}

func TestContainer_AllLogFormats(t *testing.T) {
	formats := []string{"json", "text", "unknown", ""}

	for _, format := range formats {
		t.Run(format, func(t *testing.T) {
			cfg := config.Development()
			cfg.Log.Format = format

			c := New(cfg)
			logger := c.initLogger()

			require.NotNil(t, logger)
		})
	}
}
