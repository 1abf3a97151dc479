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

package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/tombee/polyglot/pkg/ir"
	"github.com/tombee/polyglot/pkg/language"
)

// Config is the phase configuration shared by every unit of a run.
type Config struct {
	// BaseDirectory is stripped from inputs when computing output paths
	// under OutputDirectory and namespaces.
	BaseDirectory string

	// Namespace prefixes the namespace header of generated files.
	Namespace string

	// ProjectSettings is an optional settings file for preprocessing.
	ProjectSettings string

	// OutputDirectory places outputs under <dir>/<language>/ instead of
	// next to their inputs.
	OutputDirectory string
}

// IntermediatePath returns the .gls path generated for a source file.
func IntermediatePath(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + ir.Extension
}

// OutputPath returns where the output of intermediate in lang is written.
func OutputPath(intermediate string, lang *language.Language, cfg Config) string {
	out := strings.TrimSuffix(intermediate, filepath.Ext(intermediate)) + lang.Extension
	if cfg.OutputDirectory == "" {
		return out
	}
	return filepath.Join(cfg.OutputDirectory, languageDir(lang), stripBase(out, cfg.BaseDirectory))
}

// IndexDirectory returns the directory holding lang's index file, given
// the outputs it lists.
func IndexDirectory(outputs []string, lang *language.Language, cfg Config) string {
	if cfg.OutputDirectory != "" {
		return filepath.Join(cfg.OutputDirectory, languageDir(lang))
	}
	return commonDir(outputs)
}

// Namespace returns the namespace for a file: the configured namespace
// followed by the file's directory relative to the base directory. Without
// a configured namespace there is none.
func Namespace(path string, cfg Config) string {
	if cfg.Namespace == "" {
		return ""
	}
	dir := filepath.ToSlash(filepath.Dir(stripBase(path, cfg.BaseDirectory)))
	if dir == "." || dir == "" {
		return cfg.Namespace
	}
	return cfg.Namespace + "/" + dir
}

func languageDir(lang *language.Language) string {
	if lang.Directory != "" {
		return lang.Directory
	}
	return language.Snake(lang.Name)
}

// stripBase returns path relative to base. Paths outside base keep only
// their file name so they cannot escape an output directory.
func stripBase(path, base string) string {
	if base == "" {
		if filepath.IsAbs(path) || strings.HasPrefix(filepath.Clean(path), "..") {
			return filepath.Base(path)
		}
		return filepath.Clean(path)
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(path)
	}
	return rel
}

// commonDir returns the deepest directory containing every path.
func commonDir(paths []string) string {
	if len(paths) == 0 {
		return "."
	}
	common := strings.Split(filepath.Dir(paths[0]), string(filepath.Separator))
	for _, p := range paths[1:] {
		parts := strings.Split(filepath.Dir(p), string(filepath.Separator))
		n := 0
		for n < len(common) && n < len(parts) && common[n] == parts[n] {
			n++
		}
		common = common[:n]
	}
	if len(common) == 0 {
		return "."
	}
	dir := strings.Join(common, string(filepath.Separator))
	if dir == "" {
		return string(filepath.Separator)
	}
	return dir
}

// modulePath returns target relative to dir, slash-separated and without
// extension.
func modulePath(dir, target string) string {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		rel = target
	}
	rel = filepath.ToSlash(rel)
	return strings.TrimSuffix(rel, filepath.Ext(rel))
}
