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

// Package filestore reads and writes file content by path and holds the
// run-scoped content cache shared by every pipeline phase.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// DefaultMaxFileSize is the largest file OSStore reads or writes.
const DefaultMaxFileSize int64 = 64 << 20

// Store reads and writes whole files as text.
type Store interface {
	ReadFile(ctx context.Context, path string) (string, error)
	WriteFile(ctx context.Context, path, content string) error
}

// Config configures an OSStore.
type Config struct {
	// MaxFileSize caps reads and writes. Zero means DefaultMaxFileSize.
	MaxFileSize int64

	// AuditLogger receives one entry per operation. Nil disables auditing.
	AuditLogger AuditLogger
}

// OSStore is a Store backed by the local file system.
type OSStore struct {
	maxFileSize int64
	auditLogger AuditLogger
}

// NewOSStore creates a file-system store.
func NewOSStore(cfg Config) *OSStore {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.AuditLogger == nil {
		cfg.AuditLogger = &NoopAuditLogger{}
	}
	return &OSStore{maxFileSize: cfg.MaxFileSize, auditLogger: cfg.AuditLogger}
}

// ReadFile returns the content of path with any UTF-8 byte order mark removed.
func (s *OSStore) ReadFile(ctx context.Context, path string) (string, error) {
	var content []byte
	err := s.observe("read", path, func() (int64, int64, error) {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return 0, 0, classify("read", path, err)
		}
		if info.IsDir() {
			return 0, 0, &OperationError{Operation: "read", Path: path, Message: "is a directory", ErrorType: ErrorTypeIsDirectory}
		}
		if info.Size() > s.maxFileSize {
			return 0, 0, &OperationError{
				Operation: "read",
				Path:      path,
				Message:   fmt.Sprintf("file exceeds maximum size of %d bytes", s.maxFileSize),
				ErrorType: ErrorTypeFileTooLarge,
			}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, 0, classify("read", path, err)
		}
		content = stripBOM(data)
		return int64(len(data)), 0, nil
	})
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// WriteFile replaces path with content atomically, creating parent
// directories as needed.
func (s *OSStore) WriteFile(ctx context.Context, path, content string) error {
	return s.observe("write", path, func() (int64, int64, error) {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}
		if int64(len(content)) > s.maxFileSize {
			return 0, 0, &OperationError{
				Operation: "write",
				Path:      path,
				Message:   fmt.Sprintf("content size (%d bytes) exceeds maximum allowed (%d bytes)", len(content), s.maxFileSize),
				ErrorType: ErrorTypeFileTooLarge,
			}
		}
		if err := writeAtomic(path, []byte(content)); err != nil {
			return 0, 0, classify("write", path, err)
		}
		return 0, int64(len(content)), nil
	})
}

// observe runs fn and records its metrics and audit entry.
func (s *OSStore) observe(operation, path string, fn func() (int64, int64, error)) error {
	start := time.Now()
	read, written, err := fn()
	duration := time.Since(start)

	status := "success"
	var errMsg string
	if err != nil {
		status = "error"
		errMsg = err.Error()
	}

	recordMetrics(operation, status, read, written)
	s.auditLogger.Log(AuditEntry{
		Timestamp:    start,
		Operation:    operation,
		Path:         path,
		Result:       status,
		Duration:     duration,
		BytesRead:    read,
		BytesWritten: written,
		Error:        errMsg,
	})
	return err
}

// classify wraps a raw file system error in an OperationError, preserving
// an existing ErrorType.
func classify(operation, path string, err error) error {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return err
	}

	errType := ErrorTypeInternal
	message := "file operation failed"
	switch {
	case errors.Is(err, fs.ErrNotExist):
		errType, message = ErrorTypeFileNotFound, "file not found"
	case errors.Is(err, fs.ErrPermission):
		errType, message = ErrorTypePermissionDenied, "permission denied"
	case errors.Is(err, syscall.ENOSPC):
		errType, message = ErrorTypeDiskFull, "no space left on device"
	case errors.Is(err, syscall.EISDIR):
		errType, message = ErrorTypeIsDirectory, "is a directory"
	}
	return &OperationError{Operation: operation, Path: path, Message: message, ErrorType: errType, Cause: err}
}

func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	// Temp file in the same directory so the rename stays on one device.
	tmpFile, err := os.CreateTemp(dir, ".polyglot.*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(content); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tmpFile = nil

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func stripBOM(content []byte) []byte {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:]
	}
	return content
}
