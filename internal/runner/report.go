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
	"encoding/json"
	"fmt"
	"time"

	"github.com/tombee/polyglot/internal/pipeline"
)

// Status is the overall outcome of a run.
type Status string

const (
	StatusOk    Status = "ok"
	StatusError Status = "error"
)

// Summary counts a run's results.
type Summary struct {
	// Files is the number of distinct requested files.
	Files int `json:"files"`

	// Failed is the number of requested files whose result failed.
	Failed int `json:"failed"`

	// PostprocessFailed counts failed postprocess units. They are not
	// attributed to any file.
	PostprocessFailed int `json:"postprocess_failed"`

	Duration time.Duration `json:"-"`
}

// Report is what a run produced.
type Report struct {
	RunID  string
	Status Status

	// State is the Coordinator's final state.
	State pipeline.State

	// Files are the distinct requested paths in request order.
	Files []string

	// Results holds exactly one entry per element of Files.
	Results map[string]pipeline.Result

	// Generated lists every file written by convert and postprocess, in
	// write order.
	Generated []string

	Summary Summary

	// Err is the structural failure, if any.
	Err error
}

// FailedFiles returns the failed requested paths in request order.
func (r *Report) FailedFiles() []string {
	var failed []string
	for _, f := range r.Files {
		if res, ok := r.Results[f]; ok && !res.Succeeded() {
			failed = append(failed, f)
		}
	}
	return failed
}

// FileReport is the JSON form of one file's result.
type FileReport struct {
	Path    string   `json:"path"`
	Status  string   `json:"status"`
	Outputs []string `json:"outputs,omitempty"`
	Phase   string   `json:"phase,omitempty"`
	Kind    string   `json:"kind,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type reportJSON struct {
	RunID      string       `json:"run_id"`
	Status     Status       `json:"status"`
	State      string       `json:"state"`
	Files      []FileReport `json:"files"`
	Generated  []string     `json:"generated"`
	Summary    Summary      `json:"summary"`
	DurationMS int64        `json:"duration_ms"`
	Error      string       `json:"error,omitempty"`
}

// MarshalJSON implements json.Marshaler. Files are listed in request order.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		RunID:      r.RunID,
		Status:     r.Status,
		State:      string(r.State),
		Files:      make([]FileReport, 0, len(r.Files)),
		Generated:  r.Generated,
		Summary:    r.Summary,
		DurationMS: r.Summary.Duration.Milliseconds(),
	}
	if out.Generated == nil {
		out.Generated = []string{}
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	for _, f := range r.Files {
		res, ok := r.Results[f]
		if !ok {
			return nil, fmt.Errorf("no result recorded for %s", f)
		}
		fr := FileReport{Path: f, Status: res.Status().String(), Outputs: res.OutputPaths()}
		if err := res.Err(); err != nil {
			fr.Phase = err.Phase
			fr.Kind = string(err.Kind)
			fr.Error = err.Error()
		}
		out.Files = append(out.Files, fr)
	}
	return json.Marshal(out)
}
