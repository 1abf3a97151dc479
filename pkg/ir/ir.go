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

// Package ir parses and formats the line-based intermediate representation
// (.gls files) that every source is preprocessed into.
//
// Each line is either blank, a bare command, or a command followed by a
// colon and space-separated arguments:
//
//	comment line : Greets the caller
//	function start : greet string name string
//	print : "hello " name
//	return : name
//	function end
//
// A double-quoted argument may contain spaces; its quotes are kept.
package ir

import (
	"strings"

	"github.com/tombee/polyglot/pkg/errors"
)

// Extension is the file extension of intermediate files.
const Extension = ".gls"

// Commands understood by the built-in languages.
const (
	CommentLine   = "comment line"
	Print         = "print"
	Variable      = "variable"
	Import        = "import"
	ClassStart    = "class start"
	ClassEnd      = "class end"
	FunctionStart = "function start"
	FunctionEnd   = "function end"
	Return        = "return"
)

var known = map[string]bool{
	CommentLine:   true,
	Print:         true,
	Variable:      true,
	Import:        true,
	ClassStart:    true,
	ClassEnd:      true,
	FunctionStart: true,
	FunctionEnd:   true,
	Return:        true,
}

// Known reports whether command is one of the standard commands.
func Known(command string) bool {
	return known[command]
}

// Statement is one line of an intermediate file.
type Statement struct {
	Command string
	Args    []string

	// Line is the 1-based source line, zero for statements built in code.
	Line int
}

// Blank reports whether the statement is an empty line.
func (s Statement) Blank() bool {
	return s.Command == ""
}

// String formats the statement as a source line.
func (s Statement) String() string {
	if len(s.Args) == 0 {
		return s.Command
	}
	return s.Command + " : " + strings.Join(s.Args, " ")
}

// Parse splits source into statements. A trailing newline does not produce a
// final blank statement.
func Parse(source string) ([]Statement, error) {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.TrimSuffix(source, "\n")
	if source == "" {
		return nil, nil
	}

	lines := strings.Split(source, "\n")
	stmts := make([]Statement, 0, len(lines))
	for i, line := range lines {
		stmt, err := parseLine(line, i+1)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func parseLine(line string, n int) (Statement, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Statement{Line: n}, nil
	}

	command, rest, found := strings.Cut(line, ":")
	command = strings.Join(strings.Fields(command), " ")
	if command == "" {
		return Statement{}, errors.Transform("line %d: missing command", n)
	}
	stmt := Statement{Command: command, Line: n}
	if !found {
		return stmt, nil
	}

	args, err := tokenize(rest)
	if err != nil {
		return Statement{}, errors.Transform("line %d: %v", n, err)
	}
	stmt.Args = args
	return stmt, nil
}

// tokenize splits on whitespace, keeping double-quoted runs together.
// Inside quotes a backslash escapes the next character.
func tokenize(s string) ([]string, error) {
	var args []string
	var cur strings.Builder
	inQuote, escaped, inToken := false, false, false

	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			cur.WriteRune(r)
			escaped = true
		case r == '"':
			cur.WriteRune(r)
			inQuote = !inQuote
			inToken = true
		case !inQuote && (r == ' ' || r == '\t'):
			if inToken {
				args = append(args, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated string")
	}
	if inToken {
		args = append(args, cur.String())
	}
	return args, nil
}

// Format renders statements back into source text, one per line, with a
// trailing newline.
func Format(stmts []Statement) string {
	var b strings.Builder
	for _, s := range stmts {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	return b.String()
}
