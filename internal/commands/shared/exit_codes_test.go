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
	"errors"
	"fmt"
	"strings"
	"testing"

	pkgerrors "github.com/tombee/polyglot/pkg/errors"
)

// mockUserVisibleError is a test implementation of UserVisibleError
type mockUserVisibleError struct {
	message    string
	suggestion string
	visible    bool
}

func (e *mockUserVisibleError) Error() string {
	return e.message
}

func (e *mockUserVisibleError) IsUserVisible() bool {
	return e.visible
}

func (e *mockUserVisibleError) UserMessage() string {
	return e.message
}

func (e *mockUserVisibleError) Suggestion() string {
	return e.suggestion
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("boom"), ExitFailed},
		{"run error", NewRunError("conversion failed", nil), ExitFailed},
		{"wrapped exit error", fmt.Errorf("outer: %w", &ExitError{Code: 7, Message: "custom"}), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPrintError(t *testing.T) {
	t.Run("prints message and suggestion", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewUsageError("invalid input", &pkgerrors.ValidationError{
			Field:   "language",
			Message: "You must provide a -l/--language.",
			Hint:    "Available languages: Go, Python",
		})

		PrintError(&buf, err)

		out := buf.String()
		if !strings.Contains(out, SymbolError) || !strings.Contains(out, "Error: invalid input: validation failed on language") {
			t.Errorf("unexpected output: %q", out)
		}
		if !strings.Contains(out, "Suggestion: Available languages: Go, Python") {
			t.Errorf("expected suggestion, got %q", out)
		}
	})

	t.Run("silent errors print nothing", func(t *testing.T) {
		var buf bytes.Buffer
		PrintError(&buf, NewRunError("conversion failed", errors.New("1 failed")))
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})

	t.Run("invisible errors print no suggestion", func(t *testing.T) {
		var buf bytes.Buffer
		PrintError(&buf, &mockUserVisibleError{message: "hidden", suggestion: "do not show", visible: false})
		if strings.Contains(buf.String(), "Suggestion") {
			t.Errorf("unexpected suggestion in %q", buf.String())
		}
	})
}

func TestExitError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewUsageError("bad glob", cause)

	if !errors.Is(err, cause) {
		t.Error("expected ExitError to unwrap to its cause")
	}
	if err.Error() != "bad glob: root cause" {
		t.Errorf("Error() = %q", err.Error())
	}
}
