// Copyright 2026 The Firedoc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package trace provides OpenCensus tracing and latency metrics for
// firedoc document calls.
package trace

import (
	"context"
	"time"

	"firedoc.dev/docerrors"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
	"go.opencensus.io/trace"
)

var (
	methodKey = tag.MustNewKey("firedoc_method")
	statusKey = tag.MustNewKey("firedoc_status")
)

// Views returns the views for the latency and call-count metrics recorded
// under pkg. Register them with view.Register to collect the metrics.
func Views(pkg string, latency *stats.Float64Measure) []*view.View {
	tagKeys := []tag.Key{methodKey, statusKey}
	return []*view.View{
		{
			Name:        pkg + "/completed_calls",
			Measure:     latency,
			Description: "Count of method calls by method and status.",
			TagKeys:     tagKeys,
			Aggregation: view.Count(),
		},
		{
			Name:        pkg + "/latency",
			Measure:     latency,
			Description: "Distribution of method latency, by method and status.",
			TagKeys:     tagKeys,
			Aggregation: view.Distribution(0, 1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000, 10000),
		},
	}
}

// LatencyMeasure returns the measure for method call latency used by firedoc
// packages.
func LatencyMeasure(pkg string) *stats.Float64Measure {
	return stats.Float64(pkg+"/latency", "Latency of method call", stats.UnitMilliseconds)
}

// Tracer records spans and latency for the methods of a single package.
type Tracer struct {
	Package        string
	LatencyMeasure *stats.Float64Measure
}

type startTimeKey struct{}

// Start adds a span named Package.method to the trace and remembers the
// start time for End.
func (t *Tracer) Start(ctx context.Context, method string, attrs ...trace.Attribute) context.Context {
	ctx = context.WithValue(ctx, startTimeKey{}, time.Now())
	ctx, span := trace.StartSpan(ctx, t.Package+"."+method)
	if len(attrs) > 0 {
		span.AddAttributes(attrs...)
	}
	return ctx
}

// End ends the span started by Start with a status derived from err, and
// records the call's latency.
func (t *Tracer) End(ctx context.Context, method string, err error) {
	startTime, _ := ctx.Value(startTimeKey{}).(time.Time)
	span := trace.FromContext(ctx)
	if err != nil {
		span.SetStatus(toStatus(err))
	}
	span.End()
	if t.LatencyMeasure == nil || startTime.IsZero() {
		return
	}
	elapsed := time.Since(startTime)
	code := docerrors.Code(err)
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(methodKey, t.Package+"."+method), tag.Upsert(statusKey, code.String())},
		t.LatencyMeasure.M(float64(elapsed.Nanoseconds())/1e6))
}

// toStatus interrogates an error and converts it to an appropriate
// OpenCensus status.
func toStatus(err error) trace.Status {
	return trace.Status{Code: int32(docerrors.Code(err)), Message: err.Error()}
}
