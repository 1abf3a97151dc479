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

/*
Package tracing provides OpenTelemetry spans for conversion runs.

A run produces one root span, one child span per phase, and one span per
unit of work inside a phase:

	run
	  phase: preprocess
	    unit: src/a.yaml
	  phase: convert
	    unit: src/a.gls
	  phase: postprocess
	    unit: Python

Spans are written as JSON with the stdout exporter when a trace file is
configured, and batched to an OTLP collector (gRPC or HTTP, see the export
subpackage) when an endpoint is. Otherwise a no-op tracer is used and span
helpers cost nothing.

# Quick Start

	provider, err := tracing.Open(ctx, tracing.Options{
	    ServiceVersion: version,
	    File:           ".polyglot/trace.json",
	    OTLP:           &export.Config{Endpoint: "localhost:4317", Insecure: true},
	})
	if err != nil {
	    return err
	}
	defer provider.Shutdown(ctx)

	ctx, span := tracing.StartRun(ctx, provider.Tracer(), runID, len(files))
	defer span.End()
*/
package tracing
