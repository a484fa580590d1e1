// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var otelEnvVars = []string{
	"OTEL_SERVICE_NAME",
	"OTEL_SERVICE_VERSION",
	"OTEL_EXPORTER_OTLP_PROTOCOL",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
	"OTEL_EXPORTER_OTLP_INSECURE",
	"OTEL_TRACES_EXPORTER",
	"OTEL_TRACES_SAMPLE_RATIO",
	"OTEL_METRICS_EXPORTER",
	"OTEL_LOGS_EXPORTER",
	"OTEL_PROPAGATORS",
}

func clearOTelEnvVars(t *testing.T) {
	t.Helper()
	for _, env := range otelEnvVars {
		t.Setenv(env, "")
	}
}

func TestOTelConfigFromEnvDefaults(t *testing.T) {
	clearOTelEnvVars(t)

	cfg := OTelConfigFromEnv()

	assert.Equal(t, "subscription-gateway", cfg.ServiceName)
	assert.Equal(t, OTelProtocolGRPC, cfg.Protocol)
	assert.Equal(t, OTelExporterNone, cfg.TracesExporter)
	assert.Equal(t, 1.0, cfg.TracesSampleRatio)
	assert.Equal(t, OTelExporterNone, cfg.MetricsExporter)
	assert.Equal(t, OTelExporterNone, cfg.LogsExporter)
	assert.Equal(t, OTelDefaultPropagators, cfg.Propagators)
}

func TestOTelConfigFromEnvCustomValues(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "test-service")
	t.Setenv("OTEL_SERVICE_VERSION", "1.2.3")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "http")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")
	t.Setenv("OTEL_TRACES_EXPORTER", "otlp")
	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "0.5")
	t.Setenv("OTEL_PROPAGATORS", "tracecontext,baggage")

	cfg := OTelConfigFromEnv()

	assert.Equal(t, "test-service", cfg.ServiceName)
	assert.Equal(t, "1.2.3", cfg.ServiceVersion)
	assert.Equal(t, OTelProtocolHTTP, cfg.Protocol)
	assert.Equal(t, "localhost:4318", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, OTelExporterOTLP, cfg.TracesExporter)
	assert.Equal(t, 0.5, cfg.TracesSampleRatio)
	assert.Equal(t, "tracecontext,baggage", cfg.Propagators)
}

func TestOTelConfigFromEnvSampleRatio(t *testing.T) {
	// Out-of-range or unparseable ratios fall back to sampling everything
	tests := []struct {
		name     string
		envValue string
		want     float64
	}{
		{"valid zero", "0.0", 0.0},
		{"valid half", "0.5", 0.5},
		{"negative falls back", "-0.5", 1.0},
		{"above one falls back", "1.5", 1.0},
		{"non-number falls back", "invalid", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OTEL_TRACES_SAMPLE_RATIO", tt.envValue)
			assert.Equal(t, tt.want, OTelConfigFromEnv().TracesSampleRatio)
		})
	}
}

func TestSetupOTelSDKWithConfigAllDisabled(t *testing.T) {
	cfg := OTelConfig{
		ServiceName:       "test-service",
		Protocol:          OTelProtocolGRPC,
		TracesExporter:    OTelExporterNone,
		TracesSampleRatio: 1.0,
		MetricsExporter:   OTelExporterNone,
		LogsExporter:      OTelExporterNone,
	}

	ctx := context.Background()
	shutdown, err := SetupOTelSDKWithConfig(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(ctx))
	// Shutdown clears its func list, so a second call is a no-op
	assert.NoError(t, shutdown(ctx))
}

func TestNewPropagator(t *testing.T) {
	t.Run("defaults include w3c, baggage and jaeger", func(t *testing.T) {
		prop, err := newPropagator(OTelConfig{Propagators: OTelDefaultPropagators})
		require.NoError(t, err)

		fields := prop.Fields()
		assert.Contains(t, fields, "traceparent")
		assert.Contains(t, fields, "tracestate")
		assert.Contains(t, fields, "baggage")
		assert.Contains(t, fields, "uber-trace-id")
	})

	t.Run("override narrows the set", func(t *testing.T) {
		prop, err := newPropagator(OTelConfig{Propagators: "tracecontext"})
		require.NoError(t, err)

		fields := prop.Fields()
		assert.Contains(t, fields, "traceparent")
		assert.NotContains(t, fields, "baggage")
	})

	t.Run("unsupported name errors", func(t *testing.T) {
		_, err := newPropagator(OTelConfig{Propagators: "tracecontext,b3multi"})
		assert.Error(t, err)
	})
}

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		insecure bool
		want     string
	}{
		{"IP:port insecure", "127.0.0.1:4317", true, "http://127.0.0.1:4317"},
		{"IP:port secure", "127.0.0.1:4317", false, "https://127.0.0.1:4317"},
		{"hostname without port", "collector", true, "http://collector"},
		{"http URL preserved", "http://collector.example.com:4318", false, "http://collector.example.com:4318"},
		{"https URL preserved", "https://collector.example.com:4318/v1/traces", false, "https://collector.example.com:4318/v1/traces"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, endpointURL(tt.raw, tt.insecure))
		})
	}
}
