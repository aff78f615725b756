package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records event metrics through OpenTelemetry, exported on the
// default Prometheus registry next to the promauto collectors.
type Observability struct {
	meterProvider *metric.MeterProvider
	eventCounter  otelmetric.Int64Counter
	eventDuration otelmetric.Float64Histogram
}

// New registers the exporter and instruments. The returned recorder is usable
// even when err is non-nil; it drops whatever it could not set up.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	eventCounter, err := meter.Int64Counter(
		"bot.events",
		otelmetric.WithDescription("Number of chat events processed"),
	)
	if err != nil {
		return &Observability{meterProvider: provider}, err
	}

	eventDuration, err := meter.Float64Histogram(
		"bot.event.duration",
		otelmetric.WithDescription("Chat event processing duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return &Observability{meterProvider: provider, eventCounter: eventCounter}, err
	}

	return &Observability{
		meterProvider: provider,
		eventCounter:  eventCounter,
		eventDuration: eventDuration,
	}, nil
}

// Nop returns a recorder that drops everything.
func Nop() *Observability {
	return &Observability{}
}

// RecordEvent counts one processed event and its duration.
func (o *Observability) RecordEvent(ctx context.Context, status string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("status", status))
	if o.eventCounter != nil {
		o.eventCounter.Add(ctx, 1, attrs)
	}
	if o.eventDuration != nil {
		o.eventDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

// Shutdown flushes the meter provider.
func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
