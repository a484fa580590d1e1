// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.opentelemetry.io/contrib/propagators/jaeger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	logglobal "go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// OTel protocol and exporter constants
const (
	// OTelProtocolGRPC selects the OTLP/gRPC exporter transport
	OTelProtocolGRPC = "grpc"
	// OTelProtocolHTTP selects the OTLP/HTTP exporter transport
	OTelProtocolHTTP = "http"

	// OTelExporterOTLP enables an OTLP exporter for a signal
	OTelExporterOTLP = "otlp"
	// OTelExporterNone disables the exporter for a signal
	OTelExporterNone = "none"

	// OTelDefaultPropagators is the default set of context propagators
	OTelDefaultPropagators = "tracecontext,baggage,jaeger"

	// otelDefaultServiceName is used when OTEL_SERVICE_NAME is not set
	otelDefaultServiceName = "subscription-gateway"
)

// OTelConfig holds the OpenTelemetry SDK configuration
type OTelConfig struct {
	// ServiceName is the value of the service.name resource attribute
	ServiceName string

	// ServiceVersion is the value of the service.version resource attribute
	ServiceVersion string

	// Protocol is the OTLP transport: "grpc" or "http"
	Protocol string

	// Endpoint is the OTLP collector endpoint (host:port or full URL)
	Endpoint string

	// Insecure disables transport security for the exporter connection
	Insecure bool

	// TracesExporter selects the traces exporter ("otlp" or "none")
	TracesExporter string

	// TracesSampleRatio is the head sampling ratio in [0, 1]
	TracesSampleRatio float64

	// MetricsExporter selects the metrics exporter ("otlp" or "none")
	MetricsExporter string

	// LogsExporter selects the logs exporter ("otlp" or "none")
	LogsExporter string

	// Propagators is a comma-separated list of context propagators
	Propagators string
}

// OTelConfigFromEnv creates an OTelConfig from OTEL_* environment variables
func OTelConfigFromEnv() OTelConfig {
	config := OTelConfig{
		ServiceName:       otelDefaultServiceName,
		Protocol:          OTelProtocolGRPC,
		TracesExporter:    OTelExporterNone,
		TracesSampleRatio: 1.0,
		MetricsExporter:   OTelExporterNone,
		LogsExporter:      OTelExporterNone,
		Propagators:       OTelDefaultPropagators,
	}

	if name := os.Getenv("OTEL_SERVICE_NAME"); name != "" {
		config.ServiceName = name
	}
	if version := os.Getenv("OTEL_SERVICE_VERSION"); version != "" {
		config.ServiceVersion = version
	}
	if protocol := os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"); protocol != "" {
		config.Protocol = protocol
	}
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		config.Endpoint = endpoint
	}

	// Only the literal string "true" enables insecure mode
	config.Insecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"

	if exporter := os.Getenv("OTEL_TRACES_EXPORTER"); exporter != "" {
		config.TracesExporter = exporter
	}
	if ratioStr := os.Getenv("OTEL_TRACES_SAMPLE_RATIO"); ratioStr != "" {
		if ratio, err := strconv.ParseFloat(ratioStr, 64); err == nil && ratio >= 0 && ratio <= 1 {
			config.TracesSampleRatio = ratio
		}
	}
	if exporter := os.Getenv("OTEL_METRICS_EXPORTER"); exporter != "" {
		config.MetricsExporter = exporter
	}
	if exporter := os.Getenv("OTEL_LOGS_EXPORTER"); exporter != "" {
		config.LogsExporter = exporter
	}
	if propagators := os.Getenv("OTEL_PROPAGATORS"); propagators != "" {
		config.Propagators = propagators
	}

	return config
}

// SetupOTelSDK initializes the OpenTelemetry SDK from environment variables
// and returns a shutdown function that flushes and stops all providers.
func SetupOTelSDK(ctx context.Context) (func(context.Context) error, error) {
	return SetupOTelSDKWithConfig(ctx, OTelConfigFromEnv())
}

// SetupOTelSDKWithConfig initializes the OpenTelemetry SDK with an explicit
// configuration. The returned shutdown function is idempotent.
func SetupOTelSDKWithConfig(ctx context.Context, config OTelConfig) (func(context.Context) error, error) {
	var shutdownFuncs []func(context.Context) error

	shutdown := func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		shutdownFuncs = nil
		return err
	}

	handleErr := func(inErr error) error {
		return errors.Join(inErr, shutdown(ctx))
	}

	res, err := newResource(config)
	if err != nil {
		return nil, handleErr(err)
	}

	propagator, err := newPropagator(config)
	if err != nil {
		return nil, handleErr(err)
	}
	otel.SetTextMapPropagator(propagator)

	if isExporterEnabled(config.TracesExporter) {
		tracerProvider, err := newTracerProvider(ctx, config, res)
		if err != nil {
			return nil, handleErr(err)
		}
		shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
		otel.SetTracerProvider(tracerProvider)
	}

	if isExporterEnabled(config.MetricsExporter) {
		meterProvider, err := newMeterProvider(ctx, config, res)
		if err != nil {
			return nil, handleErr(err)
		}
		shutdownFuncs = append(shutdownFuncs, meterProvider.Shutdown)
		otel.SetMeterProvider(meterProvider)
	}

	if isExporterEnabled(config.LogsExporter) {
		loggerProvider, err := newLoggerProvider(ctx, config, res)
		if err != nil {
			return nil, handleErr(err)
		}
		shutdownFuncs = append(shutdownFuncs, loggerProvider.Shutdown)
		logglobal.SetLoggerProvider(loggerProvider)
	}

	return shutdown, nil
}

// isExporterEnabled reports whether an exporter setting turns the signal on.
// Empty string and "none" are both treated as disabled.
func isExporterEnabled(exporter string) bool {
	return exporter != "" && exporter != OTelExporterNone
}

// endpointURL normalizes a collector endpoint to a full URL. The OTLP
// exporters reject bare host:port values ("first path segment in URL cannot
// contain colon"), so a scheme is prepended when missing.
func endpointURL(raw string, insecure bool) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	if insecure {
		return "http://" + raw
	}
	return "https://" + raw
}

// newResource builds the OTel resource describing this service instance
func newResource(config OTelConfig) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		attribute.String("service.name", config.ServiceName),
	}
	if config.ServiceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", config.ServiceVersion))
	}

	return resource.Merge(resource.Default(), resource.NewSchemaless(attrs...))
}

// newPropagator builds the composite text map propagator from a
// comma-separated propagator list. Unsupported names are an error rather than
// a silent no-op.
func newPropagator(config OTelConfig) (propagation.TextMapPropagator, error) {
	var propagators []propagation.TextMapPropagator

	for _, name := range strings.Split(config.Propagators, ",") {
		name = strings.TrimSpace(name)
		switch name {
		case "":
			continue
		case "tracecontext":
			propagators = append(propagators, propagation.TraceContext{})
		case "baggage":
			propagators = append(propagators, propagation.Baggage{})
		case "jaeger":
			propagators = append(propagators, jaeger.Jaeger{})
		default:
			return nil, fmt.Errorf("unsupported propagator: %q", name)
		}
	}

	return propagation.NewCompositeTextMapPropagator(propagators...), nil
}

func newTracerProvider(ctx context.Context, config OTelConfig, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)

	switch config.Protocol {
	case OTelProtocolHTTP:
		opts := []otlptracehttp.Option{}
		if config.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(endpointURL(config.Endpoint, config.Insecure)))
		}
		if config.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err = otlptracehttp.New(ctx, opts...)
	default:
		opts := []otlptracegrpc.Option{}
		if config.Endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpointURL(endpointURL(config.Endpoint, config.Insecure)))
		}
		if config.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(config.TracesSampleRatio))),
	), nil
}

func newMeterProvider(ctx context.Context, config OTelConfig, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	var (
		exporter sdkmetric.Exporter
		err      error
	)

	switch config.Protocol {
	case OTelProtocolHTTP:
		opts := []otlpmetrichttp.Option{}
		if config.Endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpointURL(endpointURL(config.Endpoint, config.Insecure)))
		}
		if config.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err = otlpmetrichttp.New(ctx, opts...)
	default:
		opts := []otlpmetricgrpc.Option{}
		if config.Endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpointURL(endpointURL(config.Endpoint, config.Insecure)))
		}
		if config.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err = otlpmetricgrpc.New(ctx, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	), nil
}

func newLoggerProvider(ctx context.Context, config OTelConfig, res *resource.Resource) (*sdklog.LoggerProvider, error) {
	var (
		exporter sdklog.Exporter
		err      error
	)

	switch config.Protocol {
	case OTelProtocolHTTP:
		opts := []otlploghttp.Option{}
		if config.Endpoint != "" {
			opts = append(opts, otlploghttp.WithEndpointURL(endpointURL(config.Endpoint, config.Insecure)))
		}
		if config.Insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		}
		exporter, err = otlploghttp.New(ctx, opts...)
	default:
		opts := []otlploggrpc.Option{}
		if config.Endpoint != "" {
			opts = append(opts, otlploggrpc.WithEndpointURL(endpointURL(config.Endpoint, config.Insecure)))
		}
		if config.Insecure {
			opts = append(opts, otlploggrpc.WithInsecure())
		}
		exporter, err = otlploggrpc.New(ctx, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create log exporter: %w", err)
	}

	return sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	), nil
}
