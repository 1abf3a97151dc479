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

package errors_test

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	polyerrors "github.com/tombee/polyglot/pkg/errors"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *polyerrors.ValidationError
		wantMsg string
	}{
		{
			name: "with field",
			err: &polyerrors.ValidationError{
				Field:   "language",
				Message: "no target language provided",
				Hint:    "pass -l/--language",
			},
			wantMsg: "validation failed on language: no target language provided",
		},
		{
			name: "without field",
			err: &polyerrors.ValidationError{
				Message: "invalid format",
			},
			wantMsg: "validation failed: invalid format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestNotFoundError_UserVisible(t *testing.T) {
	err := &polyerrors.NotFoundError{Resource: "language", ID: "Cobol", Hint: "available: Go, Python"}

	var visible polyerrors.UserVisibleError
	if !errors.As(err, &visible) {
		t.Fatal("NotFoundError should implement UserVisibleError")
	}
	if got := visible.UserMessage(); got != "Unknown language name: 'Cobol'." {
		t.Errorf("UserMessage() = %q", got)
	}
	if visible.Suggestion() != "available: Go, Python" {
		t.Errorf("Suggestion() = %q", visible.Suggestion())
	}
	if err.Error() != "language not found: Cobol" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestConfigError_Error(t *testing.T) {
	cause := errors.New("yaml: line 3: bad indent")
	err := &polyerrors.ConfigError{Key: "config_file", Reason: "failed to load", Cause: cause}

	want := "config error at config_file: failed to load: yaml: line 3: bad indent"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("ConfigError should unwrap to its cause")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want polyerrors.Kind
	}{
		{"nil", nil, ""},
		{"permission sentinel", fmt.Errorf("open b.x: %w", fs.ErrPermission), polyerrors.KindPermission},
		{"not exist sentinel", fmt.Errorf("open a.gls: %w", fs.ErrNotExist), polyerrors.KindNotFound},
		{"not found error", &polyerrors.NotFoundError{Resource: "language", ID: "x"}, polyerrors.KindNotFound},
		{"validation is structural", &polyerrors.ValidationError{Message: "no languages"}, polyerrors.KindStructural},
		{"transform", polyerrors.Transform("line %d: unknown command", 3), polyerrors.KindTransform},
		{"wrapped transform", polyerrors.Wrap(polyerrors.Transform("bad"), "python"), polyerrors.KindTransform},
		{"plain error", errors.New("boom"), polyerrors.KindIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := polyerrors.KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAsConversion(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		if polyerrors.AsConversion(nil, "convert", "a.gls") != nil {
			t.Error("expected nil")
		}
	})

	t.Run("attributes plain errors", func(t *testing.T) {
		cause := fmt.Errorf("write a.py: %w", fs.ErrPermission)
		conv := polyerrors.AsConversion(cause, "convert", "a.gls")

		if conv.Kind != polyerrors.KindPermission {
			t.Errorf("Kind = %q", conv.Kind)
		}
		if conv.Phase != "convert" || conv.Path != "a.gls" {
			t.Errorf("attribution = %s/%s", conv.Phase, conv.Path)
		}
		if !strings.Contains(conv.Error(), "write a.py") {
			t.Errorf("Error() = %q", conv.Error())
		}
		if !errors.Is(conv, fs.ErrPermission) {
			t.Error("expected chain to reach fs.ErrPermission")
		}
	})

	t.Run("reuses matching attribution", func(t *testing.T) {
		original := &polyerrors.ConversionError{Kind: polyerrors.KindInternal, Phase: "convert", Path: "a.gls", Message: "panic"}
		if got := polyerrors.AsConversion(original, "convert", "a.gls"); got != original {
			t.Error("expected the same error back")
		}
	})

	t.Run("keeps the trace when re-attributing", func(t *testing.T) {
		inner := &polyerrors.ConversionError{Kind: polyerrors.KindInternal, Message: "panic", Trace: "goroutine 9 [running]:"}
		conv := polyerrors.AsConversion(inner, "convert", "a.yaml")

		if conv == inner {
			t.Fatal("expected a re-attributed error")
		}
		if conv.Kind != polyerrors.KindInternal {
			t.Errorf("Kind = %q", conv.Kind)
		}
		if !strings.Contains(conv.Detail(), "goroutine 9") {
			t.Errorf("Detail() lost the trace: %q", conv.Detail())
		}
	})
}

func TestConversionError_Detail(t *testing.T) {
	err := &polyerrors.ConversionError{Kind: polyerrors.KindInternal, Message: "panic: nil map", Trace: "goroutine 7 [running]:"}

	detail := err.Detail()
	if !strings.HasPrefix(detail, "panic: nil map\n") {
		t.Errorf("Detail() = %q", detail)
	}
	if !strings.Contains(detail, "goroutine 7") {
		t.Errorf("Detail() should include the trace, got %q", detail)
	}
	if err.ErrorType() != "internal" || err.IsRetryable() {
		t.Error("unexpected classification")
	}
}
