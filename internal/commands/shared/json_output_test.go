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

package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	pkgerrors "github.com/tombee/polyglot/pkg/errors"
)

func TestEmitJSON(t *testing.T) {
	var buf bytes.Buffer
	resp := JSONResponse{Version: "1.0", Command: "convert", Success: true}

	if err := EmitJSON(&buf, resp); err != nil {
		t.Fatalf("EmitJSON() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if decoded["@version"] != "1.0" || decoded["command"] != "convert" || decoded["success"] != true {
		t.Errorf("unexpected envelope: %v", decoded)
	}
}

func TestEmitJSONError(t *testing.T) {
	var buf bytes.Buffer
	errs := []JSONError{NewJSONError("", &pkgerrors.NotFoundError{Resource: "language", ID: "Cobol", Hint: "Available languages: Go"})}

	if err := EmitJSONError(&buf, "convert", errs); err != nil {
		t.Fatalf("EmitJSONError() error = %v", err)
	}

	var decoded struct {
		Success bool        `json:"success"`
		Errors  []JSONError `json:"errors"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Success {
		t.Error("expected success false")
	}
	if len(decoded.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(decoded.Errors))
	}
	if decoded.Errors[0].Code != ErrorCodeUnknownLanguage {
		t.Errorf("Code = %q", decoded.Errors[0].Code)
	}
	if decoded.Errors[0].Suggestion != "Available languages: Go" {
		t.Errorf("Suggestion = %q", decoded.Errors[0].Suggestion)
	}
}

func TestErrorCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"config", &pkgerrors.ConfigError{Key: "log.level", Reason: "bad"}, ErrorCodeInvalidConfig},
		{"missing language", pkgerrors.Structural("cannot resolve target languages", &pkgerrors.ValidationError{Field: "language"}), ErrorCodeMissingLanguage},
		{"no inputs", &pkgerrors.ValidationError{Field: "inputs", Message: "no files match"}, ErrorCodeNoInputs},
		{"unknown language", &pkgerrors.NotFoundError{Resource: "language", ID: "x"}, ErrorCodeUnknownLanguage},
		{"missing import", &pkgerrors.NotFoundError{Resource: "import", ID: "a.gls"}, ErrorCodeFileNotFound},
		{"transform", pkgerrors.Transform("line 1: unknown command"), ErrorCodeInvalidInput},
		{"permission", fmt.Errorf("write: %w", fs.ErrPermission), ErrorCodePermissionDenied},
		{"io", errors.New("disk failure"), ErrorCodeIO},
		{"internal", &pkgerrors.ConversionError{Kind: pkgerrors.KindInternal}, ErrorCodeInternal},
		{"structural", pkgerrors.Structural("no file could be converted", nil), ErrorCodeExecutionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCodeFor(tt.err); got != tt.want {
				t.Errorf("ErrorCodeFor() = %q, want %q", got, tt.want)
			}
		})
	}
}
