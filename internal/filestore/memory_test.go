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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_InjectedErrors(t *testing.T) {
	store := NewMemoryStore(map[string]string{"a.src": "x"})
	store.FailRead("a.src", PermissionDenied("read", "a.src"))
	store.FailWrite("b.x", PermissionDenied("write", "b.x"))
	ctx := context.Background()

	_, err := store.ReadFile(ctx, "a.src")
	assert.Error(t, err)

	err = store.WriteFile(ctx, "b.x", "y")
	assert.Error(t, err)
	_, ok := store.File("b.x")
	assert.False(t, ok)
}

func TestOverlay_KeepsWritesInMemory(t *testing.T) {
	base := NewMemoryStore(map[string]string{"a.gls": "print : a"})
	overlay := NewOverlay(base)
	ctx := context.Background()

	require.NoError(t, overlay.WriteFile(ctx, "a.py", "print('a')"))

	content, err := overlay.ReadFile(ctx, "a.py")
	require.NoError(t, err)
	assert.Equal(t, "print('a')", content)

	content, err = overlay.ReadFile(ctx, "a.gls")
	require.NoError(t, err)
	assert.Equal(t, "print : a", content)

	_, ok := base.File("a.py")
	assert.False(t, ok)
	assert.Equal(t, []string{"a.py"}, overlay.Written())
}
