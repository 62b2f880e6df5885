// SPDX-License-Identifier: Apache-2.0

package anonymiser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/xataio/anonymiser/pkg/otel"
)

func TestPolicy_MaskAll_Instrumented(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	recorder := tracetest.NewSpanRecorder()

	p, err := NewPolicy(testParams, WithInstrumentation(&otel.Instrumentation{
		Meter:  sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"),
		Tracer: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test"),
	}))
	require.NoError(t, err)

	reqs := []*Request{{Data: newTestData()}, {Data: newTestData()}, {Data: newTestData()}}
	got, err := p.MaskAll(ctx, reqs, 2)
	require.NoError(t, err)
	require.Len(t, got, 3)

	var batchSpan sdktrace.ReadOnlySpan
	transformSpans := 0
	for _, s := range recorder.Ended() {
		switch s.Name() {
		case "anonymiser.mask_all":
			batchSpan = s
		case "anonymiser.transform":
			transformSpans++
		}
	}
	require.NotNil(t, batchSpan)
	require.Equal(t, codes.Unset, batchSpan.Status().Code)
	require.Contains(t, batchSpan.Attributes(), otel.RecordsKey.Int(3))
	require.Contains(t, batchSpan.Attributes(), otel.WorkersKey.Int(2))
	require.Equal(t, len(reqs)*len(DefaultRules), transformSpans)

	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(ctx, &rm))
	var masked *metricdata.Sum[int64]
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "anonymiser.records.masked" {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				masked = &sum
			}
		}
	}
	require.NotNil(t, masked)
	require.Len(t, masked.DataPoints, 1)
	require.Equal(t, int64(3), masked.DataPoints[0].Value)
}

func TestPolicy_MaskAll_InstrumentedCancelled(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	p, err := NewPolicy(testParams, WithInstrumentation(&otel.Instrumentation{
		Tracer: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test"),
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.MaskAll(ctx, []*Request{{Data: newTestData()}}, 1)
	require.ErrorIs(t, err, context.Canceled)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "anonymiser.mask_all", spans[0].Name())
	require.Equal(t, codes.Unset, spans[0].Status().Code)
}
