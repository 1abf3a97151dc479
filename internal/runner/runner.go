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

package runner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/tombee/polyglot/internal/filestore"
	"github.com/tombee/polyglot/internal/log"
	"github.com/tombee/polyglot/internal/pipeline"
	"github.com/tombee/polyglot/internal/queue"
	"github.com/tombee/polyglot/internal/tracing"
	"github.com/tombee/polyglot/pkg/errors"
)

// Dependencies are the collaborators a Runner needs.
type Dependencies struct {
	Coordinator *pipeline.Coordinator

	// Store backs the per-run content cache.
	Store filestore.Store

	// Logger receives progress, outcome and summary lines. Nil discards.
	Logger *slog.Logger
}

// Options describe one run.
type Options struct {
	// Files are the requested paths. Duplicates are collapsed.
	Files []string

	// Languages are the requested language names.
	Languages []string

	Config pipeline.Config

	// Strict maps any per-file failure to StatusError.
	Strict bool
}

// Runner converts sets of files.
type Runner struct {
	coordinator *pipeline.Coordinator
	store       filestore.Store
	logger      *slog.Logger
	tracer      trace.Tracer
	concurrency int
}

// New creates a Runner.
func New(deps Dependencies, opts ...Option) *Runner {
	r := &Runner{
		coordinator: deps.Coordinator,
		store:       deps.Store,
		logger:      deps.Logger,
		concurrency: queue.DefaultConcurrency,
	}
	if r.logger == nil {
		r.logger = log.Discard()
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = noop.NewTracerProvider().Tracer("polyglot")
	}
	return r
}

// Run converts opts.Files. It never returns an error for per-file failures;
// those are recorded in the report.
func (r *Runner) Run(ctx context.Context, opts Options) *Report {
	start := time.Now()
	runID := uuid.New().String()
	logger := log.WithRunContext(r.logger, runID)
	files := dedupe(opts.Files)

	ctx, span := tracing.StartRun(ctx, r.tracer, runID, len(files))
	defer span.End()

	rec := &recorder{
		logger:  logger,
		limit:   r.concurrency,
		results: make(map[string]pipeline.Result, len(files)),
	}
	cache := filestore.NewCache(r.store)
	outcome := r.coordinate(ctx, pipeline.Request{
		Files:     files,
		Languages: opts.Languages,
		Config:    opts.Config,
	}, cache, rec)

	report := &Report{
		RunID:     runID,
		State:     outcome.State,
		Files:     files,
		Results:   rec.results,
		Generated: rec.generated,
		Err:       outcome.Err,
	}

	if outcome.Err != nil {
		logStructural(logger, outcome)
		structural := errors.AsConversion(outcome.Err, string(outcome.FailedPhase), "")
		for _, f := range files {
			if _, ok := report.Results[f]; !ok {
				report.Results[f] = pipeline.Failed(outcome.FailedPhase, f, structural)
			}
		}
	} else {
		// A file the Coordinator never settled is a broken contract.
		for _, f := range files {
			if _, ok := report.Results[f]; !ok {
				report.Results[f] = pipeline.Failed(pipeline.PhaseConvert, f, &errors.ConversionError{
					Kind:    errors.KindInternal,
					Message: "no result was recorded",
				})
			}
		}
	}

	report.Summary = Summary{
		Files:             len(files),
		Failed:            len(report.FailedFiles()),
		PostprocessFailed: rec.postFailed,
		Duration:          time.Since(start),
	}
	report.Status = StatusOk
	if outcome.Err != nil || (opts.Strict && report.Summary.Failed > 0) {
		report.Status = StatusError
	}

	logSummary(logger, report.Summary)
	span.SetAttributes(map[string]any{
		"run.failed":             report.Summary.Failed,
		"run.postprocess_failed": report.Summary.PostprocessFailed,
		"run.status":             string(report.Status),
	})
	if report.Status == StatusError {
		span.RecordError(fmt.Errorf("run finished with status %s", report.Status))
	} else {
		span.SetOK()
	}
	return report
}

// coordinate runs the Coordinator, turning a panic into a structural
// failure so Run always returns a report.
func (r *Runner) coordinate(ctx context.Context, req pipeline.Request, cache *filestore.Cache, d pipeline.Dispatcher) (out pipeline.Outcome) {
	defer func() {
		if v := recover(); v != nil {
			out = pipeline.Outcome{
				State:       pipeline.StateFailed,
				FailedPhase: pipeline.PhasePreprocess,
				Err: &errors.ConversionError{
					Kind:    errors.KindStructural,
					Message: fmt.Sprintf("coordinator panic: %v", v),
					Trace:   string(debug.Stack()),
				},
			}
		}
	}()
	return r.coordinator.Run(ctx, req, cache, d)
}

// recorder is the Coordinator's Dispatcher for one run. It submits units to
// the queue and records terminal results under their requested path.
type recorder struct {
	logger *slog.Logger
	limit  int

	mu         sync.Mutex
	results    map[string]pipeline.Result
	generated  []string
	postFailed int
}

// Dispatch implements pipeline.Dispatcher.
func (rec *recorder) Dispatch(ctx context.Context, units []pipeline.Unit) []pipeline.Result {
	results := make([]pipeline.Result, len(units))
	actions := make([]queue.Action, len(units))
	for i, u := range units {
		actions[i] = func(ctx context.Context) error {
			if u.Phase == pipeline.PhasePreprocess {
				rec.logger.Info(fmt.Sprintf("Converting %s...", u.Source), log.FileKey, u.Source)
			}
			results[i] = u.Do(ctx)
			rec.settle(u, results[i])
			return nil
		}
	}

	errs := queue.RunWithLimit(ctx, rec.limit, actions)
	for i, err := range errs {
		if err == nil || results[i].Status() != pipeline.StatusUnknown {
			continue
		}
		results[i] = pipeline.Failed(units[i].Phase, attribution(units[i]), queueFailure(units[i], err))
		rec.settle(units[i], results[i])
	}
	return results
}

// settle records res and logs its outcome line when it is terminal for a
// requested file.
func (rec *recorder) settle(u pipeline.Unit, res pipeline.Result) {
	switch u.Phase {
	case pipeline.PhasePostprocess:
		rec.mu.Lock()
		if res.Succeeded() {
			rec.generated = append(rec.generated, res.OutputPaths()...)
		} else {
			rec.postFailed++
		}
		rec.mu.Unlock()
		if err := res.Err(); err != nil {
			rec.logger.Error(fmt.Sprintf("Failed postprocessing %s:", u.Source),
				log.LanguageKey, u.Source,
				log.PhaseKey, string(u.Phase),
				"kind", string(err.Kind),
				log.DetailKey, err.Detail(),
			)
		}
		return

	case pipeline.PhasePreprocess:
		if res.Succeeded() {
			return
		}
	}

	path := attribution(u)
	rec.mu.Lock()
	rec.results[path] = res
	if res.Succeeded() {
		rec.generated = append(rec.generated, res.OutputPaths()...)
	}
	rec.mu.Unlock()

	if err := res.Err(); err != nil {
		rec.logger.Error(fmt.Sprintf("Failed converting %s:", path),
			log.FileKey, path,
			log.PhaseKey, string(u.Phase),
			"kind", string(err.Kind),
			log.DetailKey, err.Detail(),
		)
		return
	}
	outputs := strings.Join(res.OutputPaths(), ", ")
	rec.logger.Info(fmt.Sprintf("Converted %s to %s", path, outputs),
		log.FileKey, path,
		log.OutputKey, outputs,
	)
}

func attribution(u pipeline.Unit) string {
	if u.Origin != "" {
		return u.Origin
	}
	return u.Source
}

// queueFailure converts an error the queue caught into an internal failure
// attributed to u.
func queueFailure(u pipeline.Unit, err error) error {
	conv := &errors.ConversionError{
		Kind:    errors.KindInternal,
		Phase:   string(u.Phase),
		Path:    attribution(u),
		Message: err.Error(),
		Cause:   err,
	}
	var panicErr *queue.PanicError
	if errors.As(err, &panicErr) {
		conv.Cause = nil
		conv.Trace = string(panicErr.Stack)
	}
	return conv
}

func logStructural(logger *slog.Logger, outcome pipeline.Outcome) {
	args := []any{log.PhaseKey, string(outcome.FailedPhase), "kind", string(errors.KindStructural)}
	var visible errors.UserVisibleError
	if errors.As(outcome.Err, &visible) {
		if hint := visible.Suggestion(); hint != "" {
			args = append(args, "hint", hint)
		}
	}
	detail := outcome.Err.Error()
	var conv *errors.ConversionError
	if errors.As(outcome.Err, &conv) && conv.Trace != "" {
		detail = conv.Detail()
	}
	args = append(args, log.DetailKey, detail)
	logger.Error("Run failed:", args...)
}

func logSummary(logger *slog.Logger, s Summary) {
	noun := "files"
	if s.Files == 1 {
		noun = "file"
	}
	logger.Info(fmt.Sprintf("Ran on %d %s.", s.Files, noun),
		"files", s.Files,
		log.DurationKey, s.Duration.Milliseconds(),
	)
	if s.Failed > 0 {
		logger.Info(fmt.Sprintf("%d failed.", s.Failed), "failed", s.Failed)
	}
	if s.PostprocessFailed > 0 {
		logger.Info(fmt.Sprintf("%d postprocess failed.", s.PostprocessFailed), "postprocess_failed", s.PostprocessFailed)
	}
}

// dedupe keeps the first occurrence of each path.
func dedupe(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
