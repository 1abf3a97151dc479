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
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/tombee/polyglot/internal/tracing/export"
)

func TestSpans_Hierarchy(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")
	ctx := context.Background()

	runCtx, run := StartRun(ctx, tracer, "run-1", 2)
	phaseCtx, phase := StartPhase(runCtx, tracer, "convert", 2)
	_, ok := StartUnit(phaseCtx, tracer, "convert", "a.gls")
	ok.SetOK()
	ok.End()
	_, failed := StartUnit(phaseCtx, tracer, "convert", "b.gls")
	failed.RecordError(errors.New("permission denied"))
	failed.End()
	phase.End()
	run.End()

	spans := recorder.Ended()
	require.Len(t, spans, 4)

	byName := make(map[string]sdktrace.ReadOnlySpan)
	for _, s := range spans {
		byName[s.Name()] = s
	}
	require.Contains(t, byName, "run")
	require.Contains(t, byName, "phase: convert")
	require.Contains(t, byName, "unit: a.gls")
	require.Contains(t, byName, "unit: b.gls")

	assert.Equal(t, byName["run"].SpanContext().SpanID(), byName["phase: convert"].Parent().SpanID())
	assert.Equal(t, byName["phase: convert"].SpanContext().SpanID(), byName["unit: a.gls"].Parent().SpanID())
	assert.Equal(t, codes.Ok, byName["unit: a.gls"].Status().Code)
	assert.Equal(t, codes.Error, byName["unit: b.gls"].Status().Code)
}

func TestSpan_NilSafe(t *testing.T) {
	var s *Span
	s.SetAttributes(map[string]any{"k": "v"})
	s.RecordError(errors.New("x"))
	s.SetOK()
	s.End()
}

func TestNewProvider_NoWriterIsNoop(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{})
	require.NoError(t, err)
	assert.False(t, p.Enabled())

	_, span := StartRun(context.Background(), p.Tracer(), "run-1", 0)
	span.End()
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_ExportsToWriter(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewProvider(context.Background(), Config{ServiceVersion: "test", Writer: &buf})
	require.NoError(t, err)
	assert.True(t, p.Enabled())

	_, span := StartPhase(context.Background(), p.Tracer(), "preprocess", 3)
	span.SetAttributes(map[string]any{"phase.failed": 0})
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), `"Name":"phase: preprocess"`)
	assert.Contains(t, buf.String(), "polyglot")
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "run.json")
	p, err := Open(context.Background(), Options{ServiceVersion: "test", File: path})
	require.NoError(t, err)

	_, span := StartUnit(context.Background(), p.Tracer(), "postprocess", "Python")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "unit: Python")
}

func TestOpen_NothingConfiguredIsNoop(t *testing.T) {
	p, err := Open(context.Background(), Options{ServiceVersion: "test"})
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestOpen_OTLP(t *testing.T) {
	p, err := Open(context.Background(), Options{
		ServiceVersion: "test",
		OTLP:           &export.Config{Endpoint: "localhost:4318", Protocol: export.ProtocolHTTP, Insecure: true},
	})
	require.NoError(t, err)
	assert.True(t, p.Enabled())

	// Nothing was recorded, so shutdown has nothing to send.
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestOpen_BadOTLPConfig(t *testing.T) {
	_, err := Open(context.Background(), Options{OTLP: &export.Config{}})
	assert.ErrorContains(t, err, "endpoint is required")
}
