// SPDX-License-Identifier: Apache-2.0

package otel

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Instrumentation groups the meter and tracer handed to the instrumented
// components. Either of them can be nil.
type Instrumentation struct {
	Meter  metric.Meter
	Tracer trace.Tracer
}

// Attribute keys shared by the anonymiser metrics and spans.
const (
	TransformerTypeKey = attribute.Key("anonymiser.transformer")
	FieldKey           = attribute.Key("anonymiser.field")
	RecordsKey         = attribute.Key("anonymiser.records")
	WorkersKey         = attribute.Key("anonymiser.workers")
)

// IsEnabled reports whether the instrumentation carries a meter or a tracer.
// It is safe to call on a nil instrumentation.
func (i *Instrumentation) IsEnabled() bool {
	return i != nil && (i.Meter != nil || i.Tracer != nil)
}

// StartSpan starts a span with the given attributes. With a nil tracer the
// context is returned as is and the span is nil.
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, nil
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// CloseSpan ends the span, recording the error if any. Noop for nil spans.
func CloseSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	recordSpanResult(span, err)
	span.End()
}

func recordSpanResult(span trace.Span, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, context.Canceled):
		// the caller went away, the operation itself did not fail
		span.SetAttributes(attribute.Bool("cancelled", true))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
