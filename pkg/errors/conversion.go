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

package errors

import (
	"errors"
	"fmt"
	"io/fs"
)

// Kind classifies a conversion failure. Programmatic handling should switch
// on the Kind rather than on message text.
type Kind string

const (
	// KindIO is a read or write failure not covered by a narrower kind.
	KindIO Kind = "io"
	// KindPermission is a read or write refused by the file system.
	KindPermission Kind = "permission"
	// KindNotFound is a missing file, import or language.
	KindNotFound Kind = "not_found"
	// KindTransform is an input the phase could not translate.
	KindTransform Kind = "transform"
	// KindStructural is a run precondition failure.
	KindStructural Kind = "structural"
	// KindInternal is a panic or a broken contract inside the pipeline.
	KindInternal Kind = "internal"
)

// ConversionError is the failure carried by a failed conversion result.
type ConversionError struct {
	// Kind is the failure category
	Kind Kind

	// Phase is the pipeline phase that failed (preprocess, convert, postprocess)
	Phase string

	// Path is the file (or language, for postprocess) being processed
	Path string

	// Message is the human-readable description
	Message string

	// Trace is an optional diagnostic blob, such as a goroutine stack
	Trace string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConversionError) Unwrap() error {
	return e.Cause
}

// ErrorType implements ErrorClassifier.
func (e *ConversionError) ErrorType() string {
	return string(e.Kind)
}

// IsRetryable implements ErrorClassifier. Conversions are never retried.
func (e *ConversionError) IsRetryable() bool {
	return false
}

// ErrorKind implements KindCarrier.
func (e *ConversionError) ErrorKind() Kind {
	return e.Kind
}

// Detail returns the trace when one was captured, else the message.
func (e *ConversionError) Detail() string {
	if e.Trace != "" {
		return e.Error() + "\n" + e.Trace
	}
	return e.Error()
}

// KindOf classifies err. The first KindCarrier in the chain wins; otherwise
// file system sentinels are mapped, and anything else is KindIO.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var carrier KindCarrier
	if errors.As(err, &carrier) {
		if k := carrier.ErrorKind(); k != "" {
			return k
		}
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		return KindStructural
	}
	switch {
	case errors.Is(err, fs.ErrPermission):
		return KindPermission
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	}
	return KindIO
}

// AsConversion returns err as a *ConversionError attributed to phase and
// path. An existing ConversionError in the chain is reused when it already
// carries the same attribution; otherwise its trace is carried over.
func AsConversion(err error, phase, path string) *ConversionError {
	if err == nil {
		return nil
	}
	var conv *ConversionError
	found := errors.As(err, &conv)
	if found && conv.Phase == phase && conv.Path == path {
		return conv
	}
	wrapped := &ConversionError{
		Kind:  KindOf(err),
		Phase: phase,
		Path:  path,
		Cause: err,
	}
	if found {
		wrapped.Trace = conv.Trace
	}
	return wrapped
}
