// SPDX-License-Identifier: Apache-2.0

package instrumentation

import (
	"context"
	"fmt"
	"time"

	"github.com/xataio/anonymiser/pkg/otel"
	"github.com/xataio/anonymiser/pkg/transformers"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Transformer decorates a transformer with a span and latency/size metrics
// per transformed value. Values themselves are never recorded.
type Transformer struct {
	inner   transformers.Transformer
	tracer  trace.Tracer
	attrs   []attribute.KeyValue
	metrics *metrics
}

type metrics struct {
	latency    metric.Int64Histogram
	inputBytes metric.Int64Counter
}

const spanName = "anonymiser.transform"

// NewTransformer wraps the transformer on input. If the instrumentation is not
// enabled, the transformer is returned as is.
func NewTransformer(t transformers.Transformer, instrumentation *otel.Instrumentation) (transformers.Transformer, error) {
	if !instrumentation.IsEnabled() {
		return t, nil
	}

	transformer := &Transformer{
		inner:  t,
		tracer: instrumentation.Tracer,
		attrs:  []attribute.KeyValue{otel.TransformerTypeKey.String(string(t.Type()))},
	}

	if instrumentation.Meter != nil {
		m, err := newMetrics(instrumentation.Meter)
		if err != nil {
			return nil, fmt.Errorf("initialising %s transformer metrics: %w", t.Type(), err)
		}
		transformer.metrics = m
	}

	return transformer, nil
}

func (i *Transformer) Transform(ctx context.Context, value string) string {
	ctx, span := otel.StartSpan(ctx, i.tracer, spanName, i.attrs...)
	defer otel.CloseSpan(span, nil)

	if i.metrics == nil {
		return i.inner.Transform(ctx, value)
	}

	start := time.Now()
	result := i.inner.Transform(ctx, value)

	opt := metric.WithAttributes(i.attrs...)
	i.metrics.latency.Record(ctx, time.Since(start).Microseconds(), opt)
	i.metrics.inputBytes.Add(ctx, int64(len(value)), opt)
	return result
}

func (i *Transformer) Type() transformers.TransformerType {
	return i.inner.Type()
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	latency, err := meter.Int64Histogram("anonymiser.transformer.latency",
		metric.WithUnit("us"),
		metric.WithDescription("Distribution of the time taken to transform a value"))
	if err != nil {
		return nil, err
	}

	inputBytes, err := meter.Int64Counter("anonymiser.transformer.input.bytes",
		metric.WithUnit("By"),
		metric.WithDescription("Number of input bytes transformed"))
	if err != nil {
		return nil, err
	}

	return &metrics{latency: latency, inputBytes: inputBytes}, nil
}
