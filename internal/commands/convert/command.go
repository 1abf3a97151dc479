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

package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tombee/polyglot/internal/commands/shared"
	"github.com/tombee/polyglot/internal/config"
	"github.com/tombee/polyglot/internal/filestore"
	"github.com/tombee/polyglot/internal/log"
	"github.com/tombee/polyglot/internal/pipeline"
	"github.com/tombee/polyglot/internal/runner"
	"github.com/tombee/polyglot/internal/tracing"
	"github.com/tombee/polyglot/internal/tracing/export"
	"github.com/tombee/polyglot/pkg/language"
)

// shutdownTimeout bounds flushing the trace exporter at exit.
const shutdownTimeout = 5 * time.Second

type options struct {
	languages     []string
	baseDirectory string
	namespace     string
	project       string
	outDir        string
	strict        bool
	excludes      []string
	dryRun        bool
	traceFile     string
	otlpEndpoint  string
	otlpProtocol  string
	metricsFile   string
}

// response is the --json envelope.
type response struct {
	shared.JSONResponse
	Report *runner.Report `json:"report"`
	DryRun []string       `json:"dry_run,omitempty"`
}

// NewCommand creates the convert command
func NewCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "convert [files or globs...]",
		Short: "Convert files into one or more languages",
		Annotations: map[string]string{
			"group": "conversion",
		},
		Long: `Convert runs every input through three phases:

  preprocess    Render sources such as statement documents (.yaml, .json)
                into intermediate .gls files. Other files pass through.
  convert       Translate each intermediate file once per language.
  postprocess   Write per-language index files listing the outputs.

A file that fails any phase is reported and the rest continue. The run
fails when no file gets through a phase, or with --strict when any file
fails.

Arguments containing *, ?, [ or { are expanded as globs, with ** matching
any number of directories. Quote them so the shell leaves them alone.

Flags override values from the config file and environment.`,
		Example: `  # Convert one file to Python
  polyglot convert -l Python src/user.gls

  # Convert a tree to two languages under gen/
  polyglot convert -l TypeScript -l Go --out-dir gen --base-directory src 'src/**/*.gls'

  # Show what would be written
  polyglot convert -l Java --dry-run 'src/**/*.yaml' --exclude 'src/vendor/**'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.languages, "language", "l", nil, "Output language (repeatable)")
	flags.StringVar(&opts.baseDirectory, "base-directory", "", "Directory stripped from inputs when computing output paths")
	flags.StringVar(&opts.namespace, "namespace", "", "Namespace prefix for generated files")
	flags.StringVar(&opts.project, "project", "", "Project settings file for preprocessing")
	flags.StringVar(&opts.outDir, "out-dir", "", "Write outputs under <dir>/<language>/")
	flags.BoolVar(&opts.strict, "strict", false, "Fail the run when any file fails")
	flags.StringArrayVar(&opts.excludes, "exclude", nil, "Glob of inputs to skip (repeatable)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Show what would be written without writing")
	flags.StringVar(&opts.traceFile, "trace-file", "", "Write OpenTelemetry spans as JSON to this file")
	flags.StringVar(&opts.otlpEndpoint, "otlp-endpoint", "", "Send spans to an OTLP collector at host:port")
	flags.StringVar(&opts.otlpProtocol, "otlp-protocol", "", "OTLP transport: grpc (default) or http/protobuf")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")

	return cmd
}

func run(cmd *cobra.Command, args []string, opts options) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg, opts); err != nil {
		return err
	}

	logger := shared.NewLogger(cmd.ErrOrStderr(), cfg.Log)
	if cfg.Path != "" {
		logger.Debug("Loaded config", slog.String("path", cfg.Path))
	}

	files, err := expandInputs(args, opts.excludes)
	if err != nil {
		if shared.GetJSON() {
			_ = shared.EmitJSONError(cmd.OutOrStdout(), "convert", []shared.JSONError{shared.NewJSONError("", err)})
			return shared.NewRunError("invalid inputs", err)
		}
		return shared.NewUsageError("invalid inputs", err)
	}

	version, _, _ := shared.GetVersion()
	provider, err := tracing.Open(cmd.Context(), tracing.Options{
		ServiceVersion: version,
		File:           cfg.Tracing.File,
		OTLP:           cfg.Tracing.OTLP(),
	})
	if err != nil {
		return shared.NewUsageError("cannot set up tracing", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("Failed to flush traces", log.Error(err))
		}
	}()

	var store filestore.Store = filestore.NewOSStore(filestore.Config{
		MaxFileSize: cfg.MaxFileSize,
		AuditLogger: filestore.NewSlogAuditLogger(log.WithComponent(logger, "filestore")),
	})
	var overlay *filestore.Overlay
	if opts.dryRun {
		overlay = filestore.NewOverlay(store)
		store = overlay
	}

	coordinator := pipeline.NewCoordinator(pipeline.Dependencies{
		Store:     store,
		Languages: language.Builtin(),
		Logger:    log.WithComponent(logger, "pipeline"),
		Tracer:    provider.Tracer(),
	})
	r := runner.New(runner.Dependencies{
		Coordinator: coordinator,
		Store:       store,
		Logger:      logger,
	}, runner.WithTracer(provider.Tracer()))

	report := r.Run(cmd.Context(), runner.Options{
		Files:     files,
		Languages: cfg.Languages,
		Config: pipeline.Config{
			BaseDirectory:   cfg.BaseDirectory,
			Namespace:       cfg.Namespace,
			ProjectSettings: cfg.Project,
			OutputDirectory: cfg.OutDir,
		},
		Strict: cfg.Strict,
	})

	if opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.metricsFile, prometheus.DefaultGatherer); err != nil {
			logger.Warn("Failed to write metrics", slog.String("path", opts.metricsFile), log.Error(err))
		}
	}

	var planned *shared.DryRunOutput
	if overlay != nil {
		planned = plan(overlay.Written())
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		resp := response{
			JSONResponse: shared.JSONResponse{
				Version: "1.0",
				Command: "convert",
				Success: report.Status == runner.StatusOk,
			},
			Report: report,
		}
		if planned != nil {
			resp.DryRun = planned.Actions()
		}
		if err := shared.EmitJSON(out, resp); err != nil {
			return err
		}
	} else if planned != nil {
		fmt.Fprintln(out, planned.String())
	}

	if report.Status == runner.StatusError {
		return shared.NewRunError("conversion failed", report.Err)
	}
	return nil
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts options) error {
	changed := cmd.Flags().Changed
	if changed("language") {
		cfg.Languages = opts.languages
	}
	if changed("base-directory") {
		cfg.BaseDirectory = opts.baseDirectory
	}
	if changed("namespace") {
		cfg.Namespace = opts.namespace
	}
	if changed("project") {
		cfg.Project = opts.project
	}
	if changed("out-dir") {
		cfg.OutDir = opts.outDir
	}
	if changed("strict") {
		cfg.Strict = opts.strict
	}
	if changed("trace-file") {
		cfg.Tracing.File = opts.traceFile
	}
	if changed("otlp-endpoint") {
		cfg.Tracing.OTLPEndpoint = opts.otlpEndpoint
	}
	if changed("otlp-protocol") {
		if _, err := export.ParseProtocol(opts.otlpProtocol); err != nil {
			return shared.NewUsageError("invalid --otlp-protocol", err)
		}
		cfg.Tracing.OTLPProtocol = opts.otlpProtocol
	}
	return nil
}

// plan lists the paths a dry run would have written, marking those that
// already exist on disk as modifications.
func plan(written []string) *shared.DryRunOutput {
	out := shared.NewDryRunOutput()
	for _, path := range written {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			out.DryRunCreate(path)
		} else {
			out.DryRunModify(path, "")
		}
	}
	return out
}
