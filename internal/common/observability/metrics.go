package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

type Observability struct {
	meterProvider      *metric.MeterProvider
	meter              otelmetric.Meter
	jobCounter         otelmetric.Int64Counter
	persistDuration    otelmetric.Float64Histogram
	registrationsTotal otelmetric.Int64Counter
}

// New installs a global meter provider exported through the default
// prometheus registry, so otel instruments show up on /metrics.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	return newWithProvider(provider, serviceName), nil
}

func newWithProvider(provider *metric.MeterProvider, serviceName string) *Observability {
	meter := provider.Meter(serviceName)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)

	persistDuration, _ := meter.Float64Histogram(
		"business_record.persist.duration",
		otelmetric.WithDescription("Business record save latency"),
		otelmetric.WithUnit("ms"),
	)

	registrationsTotal, _ := meter.Int64Counter(
		"registrations.completed",
		otelmetric.WithDescription("Completed registrations by outcome"),
	)

	return &Observability{
		meterProvider:      provider,
		meter:              meter,
		jobCounter:         jobCounter,
		persistDuration:    persistDuration,
		registrationsTotal: registrationsTotal,
	}
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o == nil || o.jobCounter == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordPersistence(ctx context.Context, duration time.Duration, status string) {
	if o == nil || o.persistDuration == nil {
		return
	}
	o.persistDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}

// RecordRegistration counts saves; created distinguishes first registration
// from an owner updating their listing.
func (o *Observability) RecordRegistration(ctx context.Context, created bool) {
	if o == nil || o.registrationsTotal == nil {
		return
	}
	o.registrationsTotal.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.Bool("created", created),
	))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
