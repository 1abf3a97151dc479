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
	"context"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tombee/polyglot/pkg/errors"
	"github.com/tombee/polyglot/pkg/ir"
)

// ProjectSettings are project-wide preprocessing options.
type ProjectSettings struct {
	// Header lines are prepended as comments to every generated
	// intermediate file.
	Header []string `yaml:"header" json:"header"`
}

// Preprocessor turns a source file into intermediate text.
type Preprocessor interface {
	Preprocess(ctx context.Context, path, content string, settings ProjectSettings) (string, error)
}

// PreprocessorFunc adapts a function to Preprocessor.
type PreprocessorFunc func(ctx context.Context, path, content string, settings ProjectSettings) (string, error)

// Preprocess implements Preprocessor.
func (f PreprocessorFunc) Preprocess(ctx context.Context, path, content string, settings ProjectSettings) (string, error) {
	return f(ctx, path, content, settings)
}

// DefaultPreprocessors returns the built-in preprocessors keyed by
// lower-case extension.
func DefaultPreprocessors() map[string]Preprocessor {
	doc := DocumentPreprocessor{}
	return map[string]Preprocessor{
		".yaml": doc,
		".yml":  doc,
		".json": doc,
	}
}

// Document is a structured statement list.
type Document struct {
	Statements []DocumentStatement `yaml:"statements" json:"statements"`
}

// DocumentStatement is one statement of a Document. An empty command is a
// blank line.
type DocumentStatement struct {
	Command string   `yaml:"command" json:"command"`
	Args    []string `yaml:"args" json:"args"`
}

// DocumentPreprocessor renders YAML or JSON statement documents as
// intermediate text.
type DocumentPreprocessor struct{}

// Preprocess implements Preprocessor.
func (DocumentPreprocessor) Preprocess(ctx context.Context, path, content string, settings ProjectSettings) (string, error) {
	var doc Document
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return "", errors.Transform("parse %s: %v", path, err)
	}

	stmts := make([]ir.Statement, 0, len(settings.Header)+len(doc.Statements))
	for _, line := range settings.Header {
		stmts = append(stmts, ir.Statement{Command: ir.CommentLine, Args: strings.Fields(line)})
	}
	for i, s := range doc.Statements {
		command := strings.Join(strings.Fields(s.Command), " ")
		if command == "" {
			stmts = append(stmts, ir.Statement{})
			continue
		}
		if !ir.Known(command) {
			return "", errors.Transform("statement %d: unknown command %q", i+1, s.Command)
		}
		args := make([]string, len(s.Args))
		for j, a := range s.Args {
			args[j] = quoteArg(a)
		}
		stmts = append(stmts, ir.Statement{Command: command, Args: args})
	}
	return ir.Format(stmts), nil
}

// quoteArg quotes arguments that would otherwise split on whitespace.
func quoteArg(a string) string {
	if a == "" {
		return `""`
	}
	if strings.HasPrefix(a, `"`) && strings.HasSuffix(a, `"`) && len(a) > 1 {
		return a
	}
	if strings.ContainsAny(a, " \t\n\"") {
		return strconv.Quote(a)
	}
	return a
}

// parseSettings decodes a project settings file.
func parseSettings(path, content string) (ProjectSettings, error) {
	var settings ProjectSettings
	if err := yaml.Unmarshal([]byte(content), &settings); err != nil {
		return ProjectSettings{}, fmt.Errorf("parse project settings %s: %w", path, err)
	}
	return settings, nil
}
