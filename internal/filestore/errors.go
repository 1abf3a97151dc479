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

package filestore

import (
	"fmt"

	"github.com/tombee/polyglot/pkg/errors"
)

// ErrorType represents the type of file store error.
type ErrorType string

const (
	// ErrorTypeFileNotFound indicates the file does not exist.
	ErrorTypeFileNotFound ErrorType = "file_not_found"

	// ErrorTypePermissionDenied indicates insufficient permissions.
	ErrorTypePermissionDenied ErrorType = "permission_denied"

	// ErrorTypeFileTooLarge indicates file exceeds size limit.
	ErrorTypeFileTooLarge ErrorType = "file_too_large"

	// ErrorTypeIsDirectory indicates a directory was given where a file was expected.
	ErrorTypeIsDirectory ErrorType = "is_directory"

	// ErrorTypeDiskFull indicates no space available for write.
	ErrorTypeDiskFull ErrorType = "disk_full"

	// ErrorTypeInternal indicates an internal error.
	ErrorTypeInternal ErrorType = "internal"
)

// OperationError represents an error from a file store operation.
type OperationError struct {
	Operation string
	Path      string
	Message   string
	ErrorType ErrorType
	Cause     error
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Operation, e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s %s: %s", e.Operation, e.Path, e.Message)
}

// Unwrap returns the underlying cause.
func (e *OperationError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns true if the error may succeed on retry.
func (e *OperationError) IsRetryable() bool {
	return e.ErrorType == ErrorTypeDiskFull
}

// ErrorKind maps the store's error type onto the pipeline's failure kinds.
func (e *OperationError) ErrorKind() errors.Kind {
	switch e.ErrorType {
	case ErrorTypeFileNotFound:
		return errors.KindNotFound
	case ErrorTypePermissionDenied:
		return errors.KindPermission
	default:
		return errors.KindIO
	}
}

// PermissionDenied builds the error returned for a refused operation.
func PermissionDenied(operation, path string) *OperationError {
	return &OperationError{
		Operation: operation,
		Path:      path,
		Message:   "permission denied",
		ErrorType: ErrorTypePermissionDenied,
	}
}

// NotFound builds the error returned for a missing file.
func NotFound(operation, path string) *OperationError {
	return &OperationError{
		Operation: operation,
		Path:      path,
		Message:   "file not found",
		ErrorType: ErrorTypeFileNotFound,
	}
}
