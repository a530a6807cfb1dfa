package tracing_test

import (
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetup(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		shutdown, err := tracing.Setup(t.Context(), config.Tracing{Enabled: false}, "test")

		require.NoError(t, err)
		assert.NoError(t, shutdown(t.Context()))
		assert.NotEmpty(t, otel.GetTextMapPropagator().Fields())
	})

	t.Run("Enabled", func(t *testing.T) {
		cfg := config.Tracing{
			Enabled:          true,
			Insecure:         true,
			ServiceName:      "storefront-test",
			ExporterEndpoint: "localhost:4318",
			SamplerRatio:     1.0,
		}

		shutdown, err := tracing.Setup(t.Context(), cfg, "test")
		require.NoError(t, err)

		_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
		assert.True(t, ok)
		assert.NoError(t, shutdown(t.Context()))
	})
}
