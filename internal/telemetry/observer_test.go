package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestObserver(t *testing.T) (*Observer, *sdkmetric.ManualReader, *tracetest.InMemoryExporter) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	obs, err := NewObserver(mp.Meter("test"), tp.Tracer("test"))
	require.NoError(t, err)
	return obs, reader, exporter
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, scope := range rm.ScopeMetrics {
		for i := range scope.Metrics {
			if scope.Metrics[i].Name == name {
				return &scope.Metrics[i]
			}
		}
	}
	return nil
}

func TestObserver_RecordsSpanAndMetrics(t *testing.T) {
	obs, reader, exporter := newTestObserver(t)

	ctx, inv := obs.Start(context.Background(), "get_project")
	require.NotNil(t, inv)
	assert.NotNil(t, ctx)
	inv.End(true, 200)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "tool.call", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.Bool("success", true))
	assert.Contains(t, spans[0].Attributes, attribute.Int("http.status_code", 200))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counter := findMetric(&rm, "managed_db.tool.invocations")
	require.NotNil(t, counter)
	sum, ok := counter.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)

	latency := findMetric(&rm, "managed_db.tool.latency")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
}

func TestObserver_FailureMarksSpanError(t *testing.T) {
	obs, _, exporter := newTestObserver(t)

	_, inv := obs.Start(context.Background(), "delete_project")
	inv.End(false, 0)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.Bool("success", false))
	for _, a := range spans[0].Attributes {
		assert.NotEqual(t, attribute.Key("http.status_code"), a.Key, "status code should be omitted when no response arrived")
	}
}

func TestObserver_NilIsNoop(t *testing.T) {
	var obs *Observer
	ctx := context.Background()

	gotCtx, inv := obs.Start(ctx, "list_projects")
	assert.Equal(t, ctx, gotCtx)
	assert.Nil(t, inv)
	assert.NotPanics(t, func() { inv.End(true, 200) })
}

func TestNewGlobalObserver(t *testing.T) {
	obs, err := NewGlobalObserver()
	require.NoError(t, err)
	_, inv := obs.Start(context.Background(), "get_project_health")
	assert.NotPanics(t, func() { inv.End(true, 200) })
}
