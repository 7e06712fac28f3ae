package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DisabledInstallsNothing(t *testing.T) {
	shutdown, err := Init(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_EnabledReturnsWorkingShutdown(t *testing.T) {
	shutdown, err := Init(context.Background(), &Config{
		Enabled:        true,
		Endpoint:       "localhost:4318",
		Insecure:       true,
		SampleRatio:    0.5,
		ServiceName:    "payflow-test",
		ServiceVersion: "test",
		Environment:    "test",
	})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	// No spans were recorded, so shutting down must not need a collector.
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_ClampsSampleRatio(t *testing.T) {
	for _, ratio := range []float64{-1, 0, 2} {
		shutdown, err := Init(context.Background(), &Config{
			Enabled:     true,
			Endpoint:    "localhost:4318",
			Insecure:    true,
			SampleRatio: ratio,
			ServiceName: "payflow-test",
		})
		require.NoError(t, err)
		assert.NoError(t, shutdown(context.Background()))
	}
}
