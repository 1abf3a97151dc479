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
	pkgerrors "github.com/tombee/polyglot/pkg/errors"
)

// Error codes for structured JSON output
const (
	// Run precondition errors (E001-E099)
	ErrorCodeMissingLanguage = "E001" // No target language given
	ErrorCodeUnknownLanguage = "E002" // Language name not registered
	ErrorCodeNoInputs        = "E003" // A glob is invalid or matched no files

	// Configuration errors (E200-E299)
	ErrorCodeInvalidConfig = "E202" // Config file or environment invalid

	// Input errors (E300-E399)
	ErrorCodeInvalidInput     = "E302" // Source could not be translated
	ErrorCodeFileNotFound     = "E303" // File or import not found
	ErrorCodePermissionDenied = "E304" // File system refused access
	ErrorCodeIO               = "E305" // Other read or write failure

	// Resource errors (E400-E499)
	ErrorCodeInternal        = "E402" // Internal error
	ErrorCodeExecutionFailed = "E403" // Execution failed
)

// ErrorCodeFor maps err to a JSON error code.
func ErrorCodeFor(err error) string {
	if err == nil {
		return ""
	}

	var cfgErr *pkgerrors.ConfigError
	if pkgerrors.As(err, &cfgErr) {
		return ErrorCodeInvalidConfig
	}
	var validation *pkgerrors.ValidationError
	if pkgerrors.As(err, &validation) {
		switch validation.Field {
		case "inputs", "exclude":
			return ErrorCodeNoInputs
		}
		return ErrorCodeMissingLanguage
	}
	var notFound *pkgerrors.NotFoundError
	if pkgerrors.As(err, &notFound) && notFound.Resource == "language" {
		return ErrorCodeUnknownLanguage
	}

	switch pkgerrors.KindOf(err) {
	case pkgerrors.KindTransform:
		return ErrorCodeInvalidInput
	case pkgerrors.KindNotFound:
		return ErrorCodeFileNotFound
	case pkgerrors.KindPermission:
		return ErrorCodePermissionDenied
	case pkgerrors.KindIO:
		return ErrorCodeIO
	case pkgerrors.KindInternal:
		return ErrorCodeInternal
	default:
		return ErrorCodeExecutionFailed
	}
}
