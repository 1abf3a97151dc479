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

// Package language describes output languages as data: a rule table that
// maps each intermediate command to a text/template, naming and type
// conventions, and optional namespace and index file templates.
package language

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/tombee/polyglot/pkg/errors"
	"github.com/tombee/polyglot/pkg/ir"
)

// Rule renders one intermediate command.
type Rule struct {
	// Template is executed with a Statement value. An empty result emits no
	// line, which still lets the rule open or close a block.
	Template string

	// Open indents the lines after this one.
	Open bool

	// Close dedents this line and the lines after it.
	Close bool

	// MinArgs is the minimum number of arguments the command needs.
	MinArgs int
}

// Index describes the aggregate exports file written per language.
type Index struct {
	// FileName is the index file's base name, e.g. "index.ts".
	FileName string

	// Entry is executed once per converted output with an IndexEntry.
	Entry string
}

// Language is an output language.
type Language struct {
	// Name is the display name, also accepted by Lookup.
	Name string

	// Aliases are additional case-insensitive lookup names.
	Aliases []string

	// Directory is the output subdirectory used with an output directory.
	Directory string

	// Extension is the output file extension, with its leading dot.
	Extension string

	// Indent is one level of indentation.
	Indent string

	// Header is executed with the namespace and placed above the body when
	// it renders non-empty.
	Header string

	// Param renders one function parameter from a Param value.
	Param string

	// ParamSeparator joins rendered parameters. Defaults to ", ".
	ParamSeparator string

	// Types maps intermediate type names to this language's. Unmapped
	// names are treated as class names.
	Types map[string]string

	// Rules maps intermediate commands to their rendering.
	Rules map[string]Rule

	// Index is nil for languages without an exports file.
	Index *Index

	once     sync.Once
	compiled *compiled
	err      error
}

// Statement is the template data for a rule.
type Statement struct {
	// Args are the raw arguments.
	Args []string

	// Name is the first argument.
	Name string

	// Type is the second argument: a type, return type, or parent class.
	Type string

	// Tail holds the arguments after the second.
	Tail []string

	// Path is the resolved module path of an import.
	Path string

	// Namespace is the output namespace of the file being rendered.
	Namespace string
}

// Param is the template data for one function parameter.
type Param struct {
	Name string
	Type string
}

// IndexEntry is the template data for one index line.
type IndexEntry struct {
	// Name is the output's base name without extension.
	Name string

	// Path is the output's slash-separated path relative to the index
	// file, without extension.
	Path string
}

// RenderContext carries per-file inputs to Render.
type RenderContext struct {
	// Namespace is a dot or slash separated namespace. Empty means none.
	Namespace string

	// Import resolves an import argument to the module path written in the
	// output. Nil leaves the argument unchanged.
	Import func(name string) (string, error)
}

type compiled struct {
	rules  map[string]*template.Template
	header *template.Template
	param  *template.Template
	index  *template.Template
}

// Render translates statements into source text for l.
func (l *Language) Render(stmts []ir.Statement, ctx RenderContext) (string, error) {
	c, err := l.compile()
	if err != nil {
		return "", err
	}

	var lines []string
	if c.header != nil {
		header, err := execute(c.header, Statement{Namespace: ctx.Namespace})
		if err != nil {
			return "", errors.Transform("%s header: %v", l.Name, err)
		}
		if header != "" {
			lines = append(lines, strings.Split(header, "\n")...)
			lines = append(lines, "")
		}
	}

	depth := 0
	for _, stmt := range stmts {
		if stmt.Blank() {
			lines = append(lines, "")
			continue
		}

		rule, ok := l.Rules[stmt.Command]
		if !ok {
			return "", errors.Transform("line %d: unknown command %q", stmt.Line, stmt.Command)
		}
		if len(stmt.Args) < rule.MinArgs {
			return "", errors.Transform("line %d: %s needs at least %d argument(s)", stmt.Line, stmt.Command, rule.MinArgs)
		}

		data := newStatement(stmt.Args, ctx.Namespace)
		if stmt.Command == ir.Import && ctx.Import != nil {
			p, err := ctx.Import(stmt.Args[0])
			if err != nil {
				return "", errors.Wrapf(err, "line %d", stmt.Line)
			}
			data.Path = p
		}

		if rule.Close {
			depth--
			if depth < 0 {
				return "", errors.Transform("line %d: %s without a matching start", stmt.Line, stmt.Command)
			}
		}

		text, err := execute(c.rules[stmt.Command], data)
		if err != nil {
			return "", errors.Transform("line %d: %s: %v", stmt.Line, stmt.Command, err)
		}
		if text != "" {
			prefix := strings.Repeat(l.Indent, depth)
			for _, line := range strings.Split(text, "\n") {
				lines = append(lines, prefix+line)
			}
		}

		if rule.Open {
			depth++
		}
	}
	if depth != 0 {
		return "", errors.Transform("%d block(s) left open at end of file", depth)
	}

	return strings.Join(lines, "\n") + "\n", nil
}

// HasIndex reports whether l writes an exports file.
func (l *Language) HasIndex() bool {
	return l.Index != nil && l.Index.FileName != ""
}

// RenderIndex renders the exports file listing paths, which are
// slash-separated, relative to the index file and without extension.
// Entries are written in sorted order.
func (l *Language) RenderIndex(paths []string) (string, error) {
	if !l.HasIndex() {
		return "", fmt.Errorf("%s has no index file", l.Name)
	}
	c, err := l.compile()
	if err != nil {
		return "", err
	}

	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	var b strings.Builder
	for _, p := range sorted {
		line, err := execute(c.index, IndexEntry{Name: path.Base(p), Path: p})
		if err != nil {
			return "", errors.Transform("%s index entry %s: %v", l.Name, p, err)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// Validate compiles every template of l.
func (l *Language) Validate() error {
	_, err := l.compile()
	return err
}

func newStatement(args []string, namespace string) Statement {
	s := Statement{Args: args, Namespace: namespace}
	if len(args) > 0 {
		s.Name = args[0]
	}
	if len(args) > 1 {
		s.Type = args[1]
	}
	if len(args) > 2 {
		s.Tail = args[2:]
	}
	return s
}

func (l *Language) compile() (*compiled, error) {
	l.once.Do(func() {
		l.compiled, l.err = l.build()
	})
	return l.compiled, l.err
}

func (l *Language) build() (*compiled, error) {
	c := &compiled{rules: make(map[string]*template.Template, len(l.Rules))}
	funcs := l.funcMap(c)

	parse := func(name, text string) (*template.Template, error) {
		t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%s: template %q: %w", l.Name, name, err)
		}
		return t, nil
	}

	var err error
	param := l.Param
	if param == "" {
		param = "{{.Name}}"
	}
	if c.param, err = parse("param", param); err != nil {
		return nil, err
	}
	if l.Header != "" {
		if c.header, err = parse("header", l.Header); err != nil {
			return nil, err
		}
	}
	if l.HasIndex() {
		if c.index, err = parse("index", l.Index.Entry); err != nil {
			return nil, err
		}
	}
	for command, rule := range l.Rules {
		if c.rules[command], err = parse(command, rule.Template); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// funcMap returns the template functions. Casing helpers are shared; type
// and params close over the language.
func (l *Language) funcMap(c *compiled) template.FuncMap {
	sep := l.ParamSeparator
	if sep == "" {
		sep = ", "
	}
	return template.FuncMap{
		"pascal":       Pascal,
		"camel":        Camel,
		"snake":        Snake,
		"lower":        lower,
		"upper":        upper,
		"join":         func(s []string, with string) string { return strings.Join(s, with) },
		"dotted":       dotted,
		"dottedPascal": dottedPascal,
		"last":         last,
		"type":         l.mapType,
		"params": func(pairs []string) (string, error) {
			if len(pairs)%2 != 0 {
				return "", fmt.Errorf("parameters must be name and type pairs, got %d value(s)", len(pairs))
			}
			rendered := make([]string, 0, len(pairs)/2)
			for i := 0; i < len(pairs); i += 2 {
				p, err := execute(c.param, Param{Name: pairs[i], Type: pairs[i+1]})
				if err != nil {
					return "", err
				}
				rendered = append(rendered, p)
			}
			return strings.Join(rendered, sep), nil
		},
	}
}

func (l *Language) mapType(name string) string {
	if mapped, ok := l.Types[name]; ok {
		return mapped
	}
	return Pascal(name)
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
