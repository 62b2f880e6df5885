// SPDX-License-Identifier: Apache-2.0

package anonymiser

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xataio/anonymiser/pkg/otel"
)

type policyInstrumentation struct {
	tracer        trace.Tracer
	maskedRecords metric.Int64Counter
	batchLatency  metric.Int64Histogram
}

func newPolicyInstrumentation(i *otel.Instrumentation) (*policyInstrumentation, error) {
	if !i.IsEnabled() {
		return nil, nil
	}

	pi := &policyInstrumentation{tracer: i.Tracer}
	if i.Meter == nil {
		return pi, nil
	}

	var err error
	pi.maskedRecords, err = i.Meter.Int64Counter("anonymiser.records.masked",
		metric.WithUnit("{record}"),
		metric.WithDescription("Number of records masked"))
	if err != nil {
		return nil, err
	}

	pi.batchLatency, err = i.Meter.Int64Histogram("anonymiser.batch.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Distribution of the time taken to mask a batch of records"))
	if err != nil {
		return nil, err
	}

	return pi, nil
}

// startBatch opens a span for a batch of records and returns the function
// closing it once the batch is done.
func (pi *policyInstrumentation) startBatch(ctx context.Context, records, workers int) (context.Context, func(error)) {
	if pi == nil {
		return ctx, func(error) {}
	}

	ctx, span := otel.StartSpan(ctx, pi.tracer, "anonymiser.mask_all",
		otel.RecordsKey.Int(records), otel.WorkersKey.Int(workers))
	start := time.Now()

	return ctx, func(err error) {
		defer otel.CloseSpan(span, err)
		if pi.maskedRecords == nil || err != nil {
			return
		}
		pi.maskedRecords.Add(ctx, int64(records))
		pi.batchLatency.Record(ctx, time.Since(start).Milliseconds())
	}
}
