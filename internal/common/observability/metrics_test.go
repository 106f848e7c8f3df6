package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordPersistence_ExportsHistogram(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	obs := newWithProvider(provider, "test")

	ctx := context.Background()
	obs.RecordPersistence(ctx, 40*time.Millisecond, "success")
	obs.RecordRegistration(ctx, true)
	obs.RecordJobProcessed(ctx, "search-listings", "success")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]bool{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = true
	}
	assert.True(t, names["business_record.persist.duration"])
	assert.True(t, names["registrations.completed"])
	assert.True(t, names["jobs.processed"])

	require.NoError(t, obs.Shutdown(ctx))
}

func TestNilObservabilityIsSafe(t *testing.T) {
	var obs *Observability
	obs.RecordPersistence(context.Background(), time.Millisecond, "error")
	obs.RecordRegistration(context.Background(), false)
	assert.NoError(t, obs.Shutdown(context.Background()))
}
