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

package convert

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tombee/polyglot/pkg/errors"
)

// globMeta are the characters that make an argument a pattern.
const globMeta = "*?[{"

func isPattern(arg string) bool {
	return strings.ContainsAny(arg, globMeta)
}

// expandInputs turns command arguments into file paths. Patterns are
// expanded in sorted order and must match at least one file; literal paths
// pass through unchanged so that a missing file is reported by the run.
// Paths matching any exclude pattern are dropped. Repeats keep their first
// position.
func expandInputs(args, excludes []string) ([]string, error) {
	for _, ex := range excludes {
		if !doublestar.ValidatePathPattern(ex) {
			return nil, &errors.ValidationError{
				Field:   "exclude",
				Message: fmt.Sprintf("invalid exclude pattern %q", ex),
			}
		}
	}

	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if seen[path] || excluded(path, excludes) {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	for _, arg := range args {
		if !isPattern(arg) {
			add(arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, &errors.ValidationError{
				Field:   "inputs",
				Message: fmt.Sprintf("invalid pattern %q: %v", arg, err),
			}
		}
		if len(matches) == 0 {
			return nil, &errors.ValidationError{
				Field:   "inputs",
				Message: fmt.Sprintf("no files match %q", arg),
				Hint:    "Quote the pattern so the shell does not expand it, and check it is relative to the working directory.",
			}
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return files, nil
}

func excluded(path string, excludes []string) bool {
	clean := filepath.Clean(path)
	for _, ex := range excludes {
		if ok, _ := doublestar.PathMatch(filepath.Clean(ex), clean); ok {
			return true
		}
	}
	return false
}
