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

// Package pipeline sequences the preprocess, convert and postprocess phases
// of a conversion run. Units of work are handed to a Dispatcher, which owns
// concurrency and result bookkeeping; every unit reports a Result and
// never panics.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/tombee/polyglot/internal/filestore"
	"github.com/tombee/polyglot/internal/log"
	"github.com/tombee/polyglot/internal/tracing"
	"github.com/tombee/polyglot/pkg/errors"
	"github.com/tombee/polyglot/pkg/language"
)

// State is a position in a run's phase sequence.
type State string

const (
	StateAwaitingPreprocess  State = "awaiting_preprocess"
	StateAwaitingConvert     State = "awaiting_convert"
	StateAwaitingPostprocess State = "awaiting_postprocess"
	StateDone                State = "done"
	StateFailed              State = "failed"
)

// Request describes one run.
type Request struct {
	// Files are the requested paths, already deduplicated.
	Files []string

	// Languages are the requested language names.
	Languages []string

	Config Config
}

// PhaseReport summarizes one completed phase.
type PhaseReport struct {
	Phase     Phase
	Results   []Result
	Succeeded int
	Failed    int
}

// Outcome is what a run reached.
type Outcome struct {
	// State is StateDone or StateFailed.
	State State

	// Failed is the phase a structural failure happened in, if any.
	FailedPhase Phase

	// Err is the structural failure. It is nil when State is StateDone.
	Err error

	// Phases holds a report for every phase that ran.
	Phases []PhaseReport
}

// Dependencies are the collaborators a Coordinator needs.
type Dependencies struct {
	// Store receives every write.
	Store filestore.Store

	// Languages resolves requested language names.
	Languages *language.Registry

	// Preprocessors by lower-case extension. Nil means DefaultPreprocessors.
	Preprocessors map[string]Preprocessor

	// Logger receives debug-level unit progress. Nil discards.
	Logger Logger

	// Tracer records phase and unit spans. Nil disables tracing.
	Tracer trace.Tracer
}

// Coordinator sequences the phases of a run.
type Coordinator struct {
	store         filestore.Store
	languages     *language.Registry
	preprocessors map[string]Preprocessor
	logger        Logger
	tracer        trace.Tracer
}

// NewCoordinator creates a Coordinator. Lookup tables are built here, once.
func NewCoordinator(deps Dependencies) *Coordinator {
	c := &Coordinator{
		store:         deps.Store,
		languages:     deps.Languages,
		preprocessors: make(map[string]Preprocessor),
		logger:        deps.Logger,
		tracer:        deps.Tracer,
	}
	if c.languages == nil {
		c.languages = language.Builtin()
	}
	pre := deps.Preprocessors
	if pre == nil {
		pre = DefaultPreprocessors()
	}
	for ext, p := range pre {
		c.preprocessors[strings.ToLower(ext)] = p
	}
	if c.logger == nil {
		c.logger = log.Discard()
	}
	if c.tracer == nil {
		c.tracer = noop.NewTracerProvider().Tracer("polyglot")
	}
	return c
}

// Run executes req. Per-unit failures are carried in the phase reports; the
// Outcome is StateFailed only for structural failures: no resolvable
// language, unreadable project settings, no file surviving preprocess, or
// no file surviving convert.
func (c *Coordinator) Run(ctx context.Context, req Request, cache *filestore.Cache, d Dispatcher) Outcome {
	var out Outcome
	state := StateAwaitingPreprocess
	fail := func(phase Phase, message string, cause error) Outcome {
		c.logger.Debug("run failed", log.PhaseKey, string(phase), "from_state", string(state))
		out.State = StateFailed
		out.FailedPhase = phase
		out.Err = errors.Structural(message, cause)
		return out
	}

	langs, err := c.languages.Resolve(req.Languages)
	if err != nil {
		return fail(PhasePreprocess, "cannot resolve target languages", err)
	}
	settings, err := c.loadSettings(ctx, cache, req.Config.ProjectSettings)
	if err != nil {
		return fail(PhasePreprocess, "cannot read project settings", err)
	}

	pre := c.runPhase(ctx, d, PhasePreprocess, c.preprocessUnits(cache, settings, req.Files))
	out.Phases = append(out.Phases, pre)
	if len(req.Files) > 0 && pre.Succeeded == 0 {
		return fail(PhasePreprocess, "no file could be preprocessed", nil)
	}

	state = StateAwaitingConvert
	conv := c.runPhase(ctx, d, PhaseConvert, c.convertUnits(cache, langs, req.Config, pre.Results))
	out.Phases = append(out.Phases, conv)
	if len(conv.Results) > 0 && conv.Succeeded == 0 {
		return fail(PhaseConvert, "no file could be converted", nil)
	}

	state = StateAwaitingPostprocess
	post := c.runPhase(ctx, d, PhasePostprocess, c.postprocessUnits(langs, req.Config, conv.Results))
	out.Phases = append(out.Phases, post)

	state = StateDone
	out.State = state
	return out
}

func (c *Coordinator) loadSettings(ctx context.Context, cache *filestore.Cache, path string) (ProjectSettings, error) {
	if path == "" {
		return ProjectSettings{}, nil
	}
	content, err := cache.Load(ctx, path)
	if err != nil {
		return ProjectSettings{}, err
	}
	return parseSettings(path, content)
}

// preprocessUnits builds one unit per file. A file whose intermediate path
// was already claimed by an earlier file fails instead of replacing it.
func (c *Coordinator) preprocessUnits(cache *filestore.Cache, settings ProjectSettings, files []string) []Unit {
	units := make([]Unit, 0, len(files))
	claimed := make(map[string]string, len(files))
	for _, f := range files {
		target := filepath.Clean(c.intermediateFor(f))
		if owner, ok := claimed[target]; ok {
			units = append(units, c.unit(PhasePreprocess, f, f, func(ctx context.Context) (Success, error) {
				return Success{}, errors.Transform("%s and %s both map to intermediate %s", owner, f, target)
			}))
			continue
		}
		claimed[target] = f
		units = append(units, c.unit(PhasePreprocess, f, f, func(ctx context.Context) (Success, error) {
			return c.preprocess(ctx, cache, settings, f)
		}))
	}
	return units
}

func (c *Coordinator) convertUnits(cache *filestore.Cache, langs []*language.Language, cfg Config, pre []Result) []Unit {
	units := make([]Unit, 0, len(pre))
	for _, r := range pre {
		if !r.Succeeded() {
			continue
		}
		intermediate := r.Intermediate()
		units = append(units, c.unit(PhaseConvert, intermediate, r.Source(), func(ctx context.Context) (Success, error) {
			return c.convert(ctx, cache, langs, cfg, intermediate)
		}))
	}
	return units
}

// postprocessUnits builds one unit per language that has converted output.
func (c *Coordinator) postprocessUnits(langs []*language.Language, cfg Config, conv []Result) []Unit {
	byLanguage := make(map[string][]string)
	for _, r := range conv {
		if !r.Succeeded() {
			continue
		}
		for _, o := range r.Outputs() {
			byLanguage[o.Language] = append(byLanguage[o.Language], o.Path)
		}
	}

	var units []Unit
	for _, lang := range langs {
		outputs, ok := byLanguage[lang.Name]
		if !ok {
			continue
		}
		units = append(units, c.unit(PhasePostprocess, lang.Name, "", func(ctx context.Context) (Success, error) {
			return c.postprocess(ctx, lang, cfg, outputs)
		}))
	}
	return units
}

// unit wraps fn with the unit's span, debug logging, metrics and Guard.
// Results are attributed to origin, or to source when origin is empty.
func (c *Coordinator) unit(phase Phase, source, origin string, fn func(ctx context.Context) (Success, error)) Unit {
	attributed := origin
	if attributed == "" {
		attributed = source
	}
	return Unit{
		Phase:  phase,
		Source: source,
		Origin: origin,
		Do: func(ctx context.Context) Result {
			ctx, span := tracing.StartUnit(ctx, c.tracer, string(phase), source)
			defer span.End()

			c.logger.Debug("unit started", log.PhaseKey, string(phase), log.FileKey, source)
			start := time.Now()
			result := Guard(ctx, phase, attributed, fn)
			elapsed := time.Since(start)
			recordUnit(phase, result.Status(), elapsed.Seconds())
			c.logger.Debug("unit finished",
				log.PhaseKey, string(phase),
				log.FileKey, source,
				"status", result.Status().String(),
				log.DurationKey, elapsed.Milliseconds(),
			)

			if err := result.Err(); err != nil {
				span.RecordError(err)
			} else {
				span.SetAttributes(map[string]any{"unit.outputs": result.OutputPaths()})
				span.SetOK()
			}
			return result
		},
	}
}

// runPhase dispatches units under a phase span and tallies the results.
func (c *Coordinator) runPhase(ctx context.Context, d Dispatcher, phase Phase, units []Unit) PhaseReport {
	ctx, span := tracing.StartPhase(ctx, c.tracer, string(phase), len(units))
	defer span.End()

	results := d.Dispatch(ctx, units)
	if len(results) != len(units) {
		// A dispatcher that loses results breaks attribution; record the
		// gap as internal failures rather than guessing.
		fixed := make([]Result, len(units))
		copy(fixed, results)
		for i := len(results); i < len(units); i++ {
			fixed[i] = Failed(phase, units[i].Source, &errors.ConversionError{
				Kind:    errors.KindInternal,
				Message: fmt.Sprintf("dispatcher returned %d results for %d units", len(results), len(units)),
			})
		}
		results = fixed
	}

	report := PhaseReport{Phase: phase, Results: results}
	for _, r := range results {
		if r.Succeeded() {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	span.SetAttributes(map[string]any{"phase.succeeded": report.Succeeded, "phase.failed": report.Failed})
	return report
}
