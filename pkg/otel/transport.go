package otel

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/frusdelion/crocodoc/pkg/client"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type Transport interface {
	Observable
	client.Transport
}

type observableTransport struct {
	name string

	transport client.Transport

	durationMetric metric.Float64Histogram
}

func NewTransport(name string, t client.Transport) Transport {
	meter := otel.Meter(instrumentationName)

	durationMetric, _ := meter.Float64Histogram("crocodoc.client.request.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Duration of Crocodoc API requests."),
	)

	return &observableTransport{
		name: name,

		transport: t,

		durationMetric: durationMetric,
	}
}

// Middleware adapts NewTransport for client.WithMiddleware.
func Middleware(name string) func(client.Transport) client.Transport {
	return func(t client.Transport) client.Transport {
		return NewTransport(name, t)
	}
}

func (t *observableTransport) otelSetup() {
}

func (t *observableTransport) Request(ctx context.Context, r *client.Request) (json.RawMessage, error) {
	attrs := []attribute.KeyValue{
		attribute.String("crocodoc.client", t.name),
		attribute.String("crocodoc.path", r.Path),
		attribute.String("crocodoc.operation", r.Operation),
		attribute.String("http.request.method", r.Method()),
	}

	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "document "+r.Operation, trace.WithAttributes(attrs...))
	defer span.End()

	timestamp := time.Now()

	result, err := t.transport.Request(ctx, r)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var terr *client.TransportError

		if errors.As(err, &terr) {
			attrs = append(attrs, attribute.String("error.type", terr.Code))
		} else {
			attrs = append(attrs, attribute.String("error.type", "_OTHER"))
		}
	}

	if t.durationMetric != nil {
		t.durationMetric.Record(ctx, time.Since(timestamp).Seconds(), metric.WithAttributes(attrs...))
	}

	return result, err
}
