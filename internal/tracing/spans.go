// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span wraps an OpenTelemetry span with conversion-specific helpers.
type Span struct {
	span trace.Span
}

// StartRun creates the root span for a conversion run.
func StartRun(ctx context.Context, tracer trace.Tracer, runID string, files int) (context.Context, *Span) {
	ctx, span := tracer.Start(ctx, "run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.files", files),
			attribute.String("span.type", "run"),
		),
	)
	return ctx, &Span{span: span}
}

// StartPhase creates a span for one pipeline phase.
func StartPhase(ctx context.Context, tracer trace.Tracer, phase string, units int) (context.Context, *Span) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("phase: %s", phase),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("phase.name", phase),
			attribute.Int("phase.units", units),
			attribute.String("span.type", "phase"),
		),
	)
	return ctx, &Span{span: span}
}

// StartUnit creates a span for one unit of work. Source is a file path, or
// a language name for postprocess units.
func StartUnit(ctx context.Context, tracer trace.Tracer, phase, source string) (context.Context, *Span) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("unit: %s", source),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("unit.phase", phase),
			attribute.String("unit.source", source),
			attribute.String("span.type", "unit"),
		),
	)
	return ctx, &Span{span: span}
}

// SetAttributes adds key-value attributes to the span.
func (s *Span) SetAttributes(attrs map[string]any) {
	if s == nil || s.span == nil {
		return
	}

	otelAttrs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			otelAttrs = append(otelAttrs, attribute.String(k, val))
		case int:
			otelAttrs = append(otelAttrs, attribute.Int(k, val))
		case bool:
			otelAttrs = append(otelAttrs, attribute.Bool(k, val))
		case []string:
			otelAttrs = append(otelAttrs, attribute.StringSlice(k, val))
		default:
			otelAttrs = append(otelAttrs, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
	s.span.SetAttributes(otelAttrs...)
}

// RecordError records err and marks the span as failed.
func (s *Span) RecordError(err error) {
	if s == nil || s.span == nil || err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetOK marks the span as successful.
func (s *Span) SetOK() {
	if s == nil || s.span == nil {
		return
	}
	s.span.SetStatus(codes.Ok, "")
}

// End marks the span as complete.
func (s *Span) End() {
	if s == nil || s.span == nil {
		return
	}
	s.span.End()
}
