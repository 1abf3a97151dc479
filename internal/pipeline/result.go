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
	"github.com/tombee/polyglot/pkg/errors"
)

// Status is the terminal state of a unit of work.
type Status int

const (
	// StatusUnknown is the zero value; no completed result carries it.
	StatusUnknown Status = iota
	// StatusSucceeded marks a unit that produced its outputs.
	StatusSucceeded
	// StatusFailed marks a unit that failed; Err describes why.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Output is one file produced by a phase.
type Output struct {
	// Language is empty for intermediate files.
	Language string
	Path     string
}

// Success carries the payload of a succeeded result.
type Success struct {
	Outputs []Output

	// Intermediate is the .gls path the convert phase consumes.
	Intermediate string
}

// Result is the outcome of one unit of work. It is either succeeded, with
// outputs, or failed, with an error; the variant never changes after
// construction. Switch on Status to handle both.
type Result struct {
	status       Status
	phase        Phase
	source       string
	outputs      []Output
	intermediate string
	err          *errors.ConversionError
}

// Succeeded builds a succeeded result for source.
func Succeeded(phase Phase, source string, s Success) Result {
	return Result{
		status:       StatusSucceeded,
		phase:        phase,
		source:       source,
		outputs:      append([]Output(nil), s.Outputs...),
		intermediate: s.Intermediate,
	}
}

// Failed builds a failed result for source. A nil err is recorded as an
// internal error.
func Failed(phase Phase, source string, err error) Result {
	if err == nil {
		err = &errors.ConversionError{Kind: errors.KindInternal, Message: "failed without an error"}
	}
	return Result{
		status: StatusFailed,
		phase:  phase,
		source: source,
		err:    errors.AsConversion(err, string(phase), source),
	}
}

// Status returns the result's variant.
func (r Result) Status() Status { return r.status }

// Succeeded reports whether the result is the succeeded variant.
func (r Result) Succeeded() bool { return r.status == StatusSucceeded }

// Phase returns the phase that produced the result.
func (r Result) Phase() Phase { return r.phase }

// Source returns the requested path, or language name for postprocess.
func (r Result) Source() string { return r.source }

// Outputs returns a copy of the produced outputs.
func (r Result) Outputs() []Output {
	return append([]Output(nil), r.outputs...)
}

// OutputPaths returns the paths of the produced outputs.
func (r Result) OutputPaths() []string {
	paths := make([]string, len(r.outputs))
	for i, o := range r.outputs {
		paths[i] = o.Path
	}
	return paths
}

// Intermediate returns the intermediate path of a succeeded result.
func (r Result) Intermediate() string { return r.intermediate }

// Err returns the failure of a failed result, nil otherwise.
func (r Result) Err() *errors.ConversionError { return r.err }
