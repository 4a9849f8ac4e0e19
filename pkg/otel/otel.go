package otel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/log/global"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.38.0"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
)

const (
	instrumentationName = "github.com/frusdelion/crocodoc"
	serviceNamespace    = "crocodoc"
)

var (
	EnableDebug     = os.Getenv("DEBUG") != ""
	EnableTelemetry = os.Getenv("TELEMETRY") != ""
)

type Observable interface {
	otelSetup()
}

// Setup configures slog and, when TELEMETRY is set, OTLP export of logs,
// traces and metrics. The returned function flushes the providers.
func Setup(ctx context.Context, service string) (func(context.Context) error, error) {
	level := slog.LevelInfo

	if EnableDebug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if !EnableTelemetry {
		return func(context.Context) error { return nil }, nil
	}

	resource, err := newResource(ctx, service)

	if err != nil {
		return nil, err
	}

	var shutdown []func(context.Context) error

	flush := func(ctx context.Context) error {
		var errs []error

		for i := len(shutdown) - 1; i >= 0; i-- {
			errs = append(errs, shutdown[i](ctx))
		}

		return errors.Join(errs...)
	}

	logExporter, err := newLogExporter(ctx)

	if err != nil {
		return nil, err
	}

	logs := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(resource),
	)

	shutdown = append(shutdown, logs.Shutdown)

	spanExporter, err := newSpanExporter(ctx)

	if err != nil {
		return nil, errors.Join(err, flush(ctx))
	}

	traces := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithBatcher(spanExporter, sdktrace.WithBatchTimeout(time.Second)),
		sdktrace.WithResource(resource),
	)

	shutdown = append(shutdown, traces.Shutdown)

	metricExporter, err := newMetricExporter(ctx)

	if err != nil {
		return nil, errors.Join(err, flush(ctx))
	}

	metrics := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(15*time.Second))),
		sdkmetric.WithResource(resource),
	)

	shutdown = append(shutdown, metrics.Shutdown)

	global.SetLoggerProvider(logs)
	otel.SetTracerProvider(traces)
	otel.SetMeterProvider(metrics)

	slog.SetDefault(otelslog.NewLogger(instrumentationName, otelslog.WithLoggerProvider(logs)))

	return flush, nil
}

// newResource describes the process as a Document API client. The service
// name is the binary (crocodoc or crocodoc-server).
func newResource(ctx context.Context, service string) (*sdkresource.Resource, error) {
	return sdkresource.New(ctx,
		sdkresource.WithFromEnv(),
		sdkresource.WithTelemetrySDK(),
		sdkresource.WithAttributes(
			semconv.ServiceName(service),
			semconv.ServiceNamespace(serviceNamespace),
			attribute.String("crocodoc.api.version", "v2"),
		),
	)
}

// HTTPClient returns an instrumented client when telemetry is enabled.
func HTTPClient() *http.Client {
	if !EnableTelemetry {
		return http.DefaultClient
	}

	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func useGRPC(signal string) bool {
	return strings.EqualFold(os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"), "grpc") ||
		strings.EqualFold(os.Getenv("OTEL_EXPORTER_OTLP_"+signal+"_PROTOCOL"), "grpc")
}

func newLogExporter(ctx context.Context) (sdklog.Exporter, error) {
	if useGRPC("LOGS") {
		return otlploggrpc.New(ctx)
	}

	return otlploghttp.New(ctx)
}

func newSpanExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	if useGRPC("TRACES") {
		return otlptracegrpc.New(ctx)
	}

	return otlptracehttp.New(ctx)
}

func newMetricExporter(ctx context.Context) (sdkmetric.Exporter, error) {
	if useGRPC("METRICS") {
		return otlpmetricgrpc.New(ctx)
	}

	return otlpmetrichttp.New(ctx)
}
