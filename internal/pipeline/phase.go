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

package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/tombee/polyglot/pkg/errors"
)

// Phase names a pipeline stage.
type Phase string

const (
	PhasePreprocess  Phase = "preprocess"
	PhaseConvert     Phase = "convert"
	PhasePostprocess Phase = "postprocess"
)

// Logger is the leveled sink the pipeline writes to. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Unit is one piece of work inside a phase.
type Unit struct {
	Phase Phase

	// Source is the path the unit reads, or the language name for
	// postprocess units.
	Source string

	// Origin is the requested path the unit's result belongs to. It is
	// empty for postprocess units, which cover a whole language.
	Origin string

	// Do performs the work. It never panics and never returns a result
	// with StatusUnknown.
	Do func(ctx context.Context) Result
}

// Dispatcher runs the units of one phase and returns their results aligned
// with units. It returns only once every unit has settled.
type Dispatcher interface {
	Dispatch(ctx context.Context, units []Unit) []Result
}

// Guard runs fn and converts its error, or a panic, into a failed result.
func Guard(ctx context.Context, phase Phase, source string, fn func(ctx context.Context) (Success, error)) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Failed(phase, source, &errors.ConversionError{
				Kind:    errors.KindInternal,
				Phase:   string(phase),
				Path:    source,
				Message: fmt.Sprintf("panic: %v", r),
				Trace:   string(debug.Stack()),
			})
		}
	}()

	success, err := fn(ctx)
	if err != nil {
		return Failed(phase, source, err)
	}
	return Succeeded(phase, source, success)
}
