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

	"golang.org/x/sync/singleflight"
)

// Cache maps file paths to their content for the length of one run. Entries
// are added on first load and never evicted or overwritten. Concurrent
// loads of the same path share a single read.
type Cache struct {
	store Store

	mu      sync.RWMutex
	entries map[string]string

	loads singleflight.Group
}

// NewCache creates an empty cache that loads through store.
func NewCache(store Store) *Cache {
	return &Cache{
		store:   store,
		entries: make(map[string]string),
	}
}

// Get returns the cached content of path.
func (c *Cache) Get(path string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	content, ok := c.entries[path]
	return content, ok
}

// Put adds content for path unless an entry already exists. It reports
// whether the entry was added.
func (c *Cache) Put(path, content string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[path]; ok {
		return false
	}
	c.entries[path] = content
	return true
}

// Load returns the content of path, reading it from the store on first use.
// A failed read is not cached.
func (c *Cache) Load(ctx context.Context, path string) (string, error) {
	if content, ok := c.Get(path); ok {
		return content, nil
	}

	v, err, _ := c.loads.Do(path, func() (interface{}, error) {
		if content, ok := c.Get(path); ok {
			return content, nil
		}
		content, err := c.store.ReadFile(ctx, path)
		if err != nil {
			return "", err
		}
		c.Put(path, content)
		// A concurrent Put may have won; the first entry is authoritative.
		content, _ = c.Get(path)
		return content, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Paths returns the cached paths in sorted order.
func (c *Cache) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.entries))
	for path := range c.entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
