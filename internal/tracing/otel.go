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
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/tombee/polyglot/internal/tracing/export"
)

// ServiceName identifies spans emitted by this binary.
const ServiceName = "polyglot"

// Config configures a Provider.
type Config struct {
	// ServiceVersion is recorded on the trace resource.
	ServiceVersion string

	// Writer receives spans as JSON, one span per write.
	Writer io.Writer

	// PrettyPrint enables indented JSON output.
	PrettyPrint bool

	// OTLP sends spans to a collector in batches.
	OTLP *export.Config
}

// Provider owns the tracer used for a run.
type Provider struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
	closer io.Closer
}

// NewProvider creates a provider exporting to every destination in cfg.
// With none it returns a no-op provider.
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Writer == nil && cfg.OTLP == nil {
		return &Provider{tracer: noop.NewTracerProvider().Tracer(ServiceName)}, nil
	}

	// Empty schema URL avoids conflicts when merging with the default resource.
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	if cfg.Writer != nil {
		stdoutOpts := []stdouttrace.Option{stdouttrace.WithWriter(cfg.Writer)}
		if cfg.PrettyPrint {
			stdoutOpts = append(stdoutOpts, stdouttrace.WithPrettyPrint())
		}
		exporter, err := stdouttrace.New(stdoutOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithSyncer(exporter))
	}

	if cfg.OTLP != nil {
		otlpCfg := *cfg.OTLP
		if otlpCfg.UserAgent == "" {
			otlpCfg.UserAgent = ServiceName + "/" + cfg.ServiceVersion
		}
		exporter, err := export.New(ctx, otlpCfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	return &Provider{tp: tp, tracer: tp.Tracer(ServiceName)}, nil
}

// Options selects where a run's spans go.
type Options struct {
	ServiceVersion string

	// File receives spans as JSON. Parent directories are created.
	File string

	// OTLP sends spans to a collector.
	OTLP *export.Config
}

// Open creates a provider for opts. With neither a file nor a collector it
// yields a no-op provider.
func Open(ctx context.Context, opts Options) (*Provider, error) {
	cfg := Config{ServiceVersion: opts.ServiceVersion, OTLP: opts.OTLP}

	var f *os.File
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create trace directory: %w", err)
		}
		var err error
		if f, err = os.Create(opts.File); err != nil {
			return nil, fmt.Errorf("failed to open trace file: %w", err)
		}
		cfg.Writer = f
	}

	p, err := NewProvider(ctx, cfg)
	if err != nil {
		if f != nil {
			f.Close()
		}
		return nil, err
	}
	if f != nil {
		p.closer = f
	}
	return p, nil
}

// Tracer returns the provider's tracer.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Enabled reports whether spans are exported.
func (p *Provider) Enabled() bool {
	return p.tp != nil
}

// Shutdown flushes pending spans and closes the trace file.
func (p *Provider) Shutdown(ctx context.Context) error {
	var err error
	if p.tp != nil {
		err = p.tp.Shutdown(ctx)
	}
	if p.closer != nil {
		if cerr := p.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
