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
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store. Errors can be injected per path.
type MemoryStore struct {
	mu          sync.RWMutex
	files       map[string]string
	readErrors  map[string]error
	writeErrors map[string]error
	reads       map[string]int
}

// NewMemoryStore creates a store seeded with files.
func NewMemoryStore(files map[string]string) *MemoryStore {
	m := &MemoryStore{
		files:       make(map[string]string, len(files)),
		readErrors:  make(map[string]error),
		writeErrors: make(map[string]error),
		reads:       make(map[string]int),
	}
	for path, content := range files {
		m.files[path] = content
	}
	return m
}

// FailRead makes every read of path return err.
func (m *MemoryStore) FailRead(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErrors[path] = err
}

// FailWrite makes every write to path return err.
func (m *MemoryStore) FailWrite(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErrors[path] = err
}

// ReadFile implements Store.
func (m *MemoryStore) ReadFile(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads[path]++
	if err, ok := m.readErrors[path]; ok {
		return "", err
	}
	content, ok := m.files[path]
	if !ok {
		return "", NotFound("read", path)
	}
	return content, nil
}

// WriteFile implements Store.
func (m *MemoryStore) WriteFile(ctx context.Context, path, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.writeErrors[path]; ok {
		return err
	}
	m.files[path] = content
	return nil
}

// File returns the stored content of path.
func (m *MemoryStore) File(path string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[path]
	return content, ok
}

// Reads returns how many times path was read.
func (m *MemoryStore) Reads(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reads[path]
}

// Paths returns every stored path in sorted order.
func (m *MemoryStore) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files))
	for path := range m.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Overlay reads through to a base store but keeps writes in memory. It backs
// dry runs, where nothing may reach the disk.
type Overlay struct {
	base    Store
	written *MemoryStore
}

// NewOverlay creates an overlay over base.
func NewOverlay(base Store) *Overlay {
	return &Overlay{base: base, written: NewMemoryStore(nil)}
}

// ReadFile returns content written to the overlay, else reads from base.
func (o *Overlay) ReadFile(ctx context.Context, path string) (string, error) {
	if content, ok := o.written.File(path); ok {
		return content, nil
	}
	return o.base.ReadFile(ctx, path)
}

// WriteFile records content without touching base.
func (o *Overlay) WriteFile(ctx context.Context, path, content string) error {
	return o.written.WriteFile(ctx, path, content)
}

// Written returns the paths that would have been written, sorted.
func (o *Overlay) Written() []string {
	return o.written.Paths()
}
