package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordPatientOperation(context.Background(), "create")
		m.RecordValidationFailure(context.Background(), 2)
		m.RecordTask(context.Background(), "load", "succeeded", 3.5)
	})
}

func TestMetrics_RecordsOnProvider(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	previous := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { otel.SetMeterProvider(previous) })

	m, err := InitMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordPatientOperation(ctx, "create")
	m.RecordPatientOperation(ctx, "delete")
	m.RecordTask(ctx, "load", "succeeded", 12)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			names[md.Name] = true
		}
	}

	assert.True(t, names["patient_total"])
	assert.True(t, names["background_tasks_total"])
	assert.True(t, names["background_task_duration_milliseconds"])
}
