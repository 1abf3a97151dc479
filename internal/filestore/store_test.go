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
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	polyerrors "github.com/tombee/polyglot/pkg/errors"
)

type recordingAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (r *recordingAudit) Log(entry AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func TestOSStore_WriteThenRead(t *testing.T) {
	dir := t.TempDir()
	audit := &recordingAudit{}
	store := NewOSStore(Config{AuditLogger: audit})
	ctx := context.Background()

	path := filepath.Join(dir, "nested", "out", "a.py")
	require.NoError(t, store.WriteFile(ctx, path, "print('hi')\n"))

	content, err := store.ReadFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", content)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	require.Len(t, audit.entries, 2)
	assert.Equal(t, "write", audit.entries[0].Operation)
	assert.Equal(t, int64(12), audit.entries[0].BytesWritten)
	assert.Equal(t, "read", audit.entries[1].Operation)
	assert.Equal(t, "success", audit.entries[1].Result)
}

func TestOSStore_ReadStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.gls")
	require.NoError(t, os.WriteFile(path, []byte("\xEF\xBB\xBFprint : hi\n"), 0o644))

	content, err := NewOSStore(Config{}).ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "print : hi\n", content)
}

func TestOSStore_ReadErrors(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.gls")
	require.NoError(t, os.WriteFile(big, make([]byte, 32), 0o644))

	tests := []struct {
		name     string
		path     string
		maxSize  int64
		wantType ErrorType
		wantKind polyerrors.Kind
	}{
		{"missing file", filepath.Join(dir, "missing.gls"), 0, ErrorTypeFileNotFound, polyerrors.KindNotFound},
		{"directory", dir, 0, ErrorTypeIsDirectory, polyerrors.KindIO},
		{"too large", big, 16, ErrorTypeFileTooLarge, polyerrors.KindIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audit := &recordingAudit{}
			store := NewOSStore(Config{MaxFileSize: tt.maxSize, AuditLogger: audit})

			_, err := store.ReadFile(context.Background(), tt.path)

			var opErr *OperationError
			require.ErrorAs(t, err, &opErr)
			assert.Equal(t, tt.wantType, opErr.ErrorType)
			assert.Equal(t, tt.wantKind, polyerrors.KindOf(err))
			require.Len(t, audit.entries, 1)
			assert.Equal(t, "error", audit.entries[0].Result)
		})
	}
}

func TestOSStore_WritePermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	dir := filepath.Join(t.TempDir(), "locked")
	require.NoError(t, os.Mkdir(dir, 0o500))

	err := NewOSStore(Config{}).WriteFile(context.Background(), filepath.Join(dir, "b.x"), "x")

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrorTypePermissionDenied, opErr.ErrorType)
	assert.Equal(t, polyerrors.KindPermission, polyerrors.KindOf(err))
}

func TestOSStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOSStore(Config{}).ReadFile(ctx, filepath.Join(t.TempDir(), "a.gls"))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClassify_PreservesOperationError(t *testing.T) {
	original := PermissionDenied("write", "b.x")
	assert.Same(t, original, classify("write", "b.x", original))
}
