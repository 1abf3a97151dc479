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

package language

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tombee/polyglot/pkg/errors"
)

// Registry holds the available languages, keyed case-insensitively by
// name and alias.
type Registry struct {
	mu    sync.RWMutex
	byKey map[string]*Language
	langs []*Language
}

// NewRegistry creates a registry holding langs.
func NewRegistry(langs ...*Language) (*Registry, error) {
	r := &Registry{byKey: make(map[string]*Language)}
	for _, l := range langs {
		if err := r.Register(l); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds l after compiling its templates. Names and aliases must be
// unique across the registry.
func (r *Registry) Register(l *Language) error {
	if l == nil || l.Name == "" {
		return &errors.ValidationError{Field: "name", Message: "language name is required"}
	}
	if !strings.HasPrefix(l.Extension, ".") {
		return &errors.ValidationError{
			Field:   "extension",
			Message: fmt.Sprintf("%s: extension %q must start with a dot", l.Name, l.Extension),
		}
	}
	if err := l.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{l.Name}, l.Aliases...)
	for _, k := range keys {
		if existing, ok := r.byKey[strings.ToLower(k)]; ok {
			return &errors.ValidationError{
				Field:   "name",
				Message: fmt.Sprintf("%q is already registered by %s", k, existing.Name),
			}
		}
	}
	for _, k := range keys {
		r.byKey[strings.ToLower(k)] = l
	}
	r.langs = append(r.langs, l)
	sort.Slice(r.langs, func(i, j int) bool { return r.langs[i].Name < r.langs[j].Name })
	return nil
}

// Lookup finds a language by name or alias, ignoring case.
func (r *Registry) Lookup(name string) (*Language, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.byKey[strings.ToLower(strings.TrimSpace(name))]
	return l, ok
}

// Languages returns the registered languages sorted by name.
func (r *Registry) Languages() []*Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Language(nil), r.langs...)
}

// Names returns the registered display names in sorted order.
func (r *Registry) Names() []string {
	langs := r.Languages()
	names := make([]string, len(langs))
	for i, l := range langs {
		names[i] = l.Name
	}
	return names
}

// Resolve maps requested names to languages in request order, dropping
// repeats. An empty request is a *errors.ValidationError; an unknown name is
// a *errors.NotFoundError naming the first unknown entry.
func (r *Registry) Resolve(names []string) ([]*Language, error) {
	hint := "Available languages: " + strings.Join(r.Names(), ", ")
	if len(names) == 0 {
		return nil, &errors.ValidationError{
			Field:   "language",
			Message: "You must provide a -l/--language.",
			Hint:    hint,
		}
	}

	seen := make(map[*Language]bool, len(names))
	resolved := make([]*Language, 0, len(names))
	for _, name := range names {
		l, ok := r.Lookup(name)
		if !ok {
			return nil, &errors.NotFoundError{Resource: "language", ID: name, Hint: hint}
		}
		if seen[l] {
			continue
		}
		seen[l] = true
		resolved = append(resolved, l)
	}
	return resolved, nil
}
