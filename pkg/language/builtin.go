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
	"github.com/tombee/polyglot/pkg/ir"
)

// Shared rule templates.
const (
	slashComment = `// {{join .Args " "}}`
	hashComment  = `# {{join .Args " "}}`
	braceClose   = `}`
	value        = `{{with .Tail}} = {{join . " "}}{{end}}`
	returnSemi   = `return{{with .Args}} {{join . " "}}{{end}};`
	returnBare   = `return{{with .Args}} {{join . " "}}{{end}}`
)

// Builtin returns a registry holding the built-in languages.
func Builtin() *Registry {
	r, err := NewRegistry(CSharp(), Go(), Java(), JavaScript(), Python(), Ruby(), TypeScript())
	if err != nil {
		panic(err)
	}
	return r
}

// CSharp describes C#.
func CSharp() *Language {
	return &Language{
		Name:      "C#",
		Aliases:   []string{"csharp", "cs"},
		Directory: "csharp",
		Extension: ".cs",
		Indent:    "    ",
		Header:    `{{with .Namespace}}namespace {{dottedPascal .}};{{end}}`,
		Param:     `{{type .Type}} {{camel .Name}}`,
		Types: map[string]string{
			"string": "string", "int": "int", "float": "double", "bool": "bool", "void": "void",
		},
		Rules: map[string]Rule{
			ir.CommentLine:   {Template: slashComment},
			ir.Print:         {Template: `Console.WriteLine({{join .Args " + "}});`},
			ir.Variable:      {Template: `{{type .Type}} {{camel .Name}}` + value + `;`, MinArgs: 2},
			ir.Import:        {Template: `using {{dottedPascal .Path}};`, MinArgs: 1},
			ir.ClassStart:    {Template: `public class {{pascal .Name}}{{with .Type}} : {{pascal .}}{{end}}` + "\n{", Open: true, MinArgs: 1},
			ir.ClassEnd:      {Template: braceClose, Close: true},
			ir.FunctionStart: {Template: `public {{type .Type}} {{pascal .Name}}({{params .Tail}})` + "\n{", Open: true, MinArgs: 2},
			ir.FunctionEnd:   {Template: braceClose, Close: true},
			ir.Return:        {Template: returnSemi},
		},
	}
}

// Go describes Go.
func Go() *Language {
	return &Language{
		Name:      "Go",
		Aliases:   []string{"golang"},
		Directory: "go",
		Extension: ".go",
		Indent:    "\t",
		Header:    `package {{with .Namespace}}{{lower (last .)}}{{else}}main{{end}}`,
		Param:     `{{camel .Name}} {{type .Type}}`,
		Types: map[string]string{
			"string": "string", "int": "int", "float": "float64", "bool": "bool", "void": "",
		},
		Rules: map[string]Rule{
			ir.CommentLine:   {Template: slashComment},
			ir.Print:         {Template: `fmt.Println({{join .Args ", "}})`},
			ir.Variable:      {Template: `var {{camel .Name}} {{type .Type}}` + value, MinArgs: 2},
			ir.Import:        {Template: `import "{{.Path}}"`, MinArgs: 1},
			ir.ClassStart:    {Template: `type {{pascal .Name}} struct {`, Open: true, MinArgs: 1},
			ir.ClassEnd:      {Template: braceClose, Close: true},
			ir.FunctionStart: {Template: `func {{pascal .Name}}({{params .Tail}}){{with type .Type}} {{.}}{{end}} {`, Open: true, MinArgs: 2},
			ir.FunctionEnd:   {Template: braceClose, Close: true},
			ir.Return:        {Template: returnBare},
		},
	}
}

// Java describes Java.
func Java() *Language {
	return &Language{
		Name:      "Java",
		Directory: "java",
		Extension: ".java",
		Indent:    "    ",
		Header:    `{{with .Namespace}}package {{lower (dotted .)}};{{end}}`,
		Param:     `{{type .Type}} {{camel .Name}}`,
		Types: map[string]string{
			"string": "String", "int": "int", "float": "double", "bool": "boolean", "void": "void",
		},
		Rules: map[string]Rule{
			ir.CommentLine:   {Template: slashComment},
			ir.Print:         {Template: `System.out.println({{join .Args " + "}});`},
			ir.Variable:      {Template: `{{type .Type}} {{camel .Name}}` + value + `;`, MinArgs: 2},
			ir.Import:        {Template: `import {{dotted .Path}};`, MinArgs: 1},
			ir.ClassStart:    {Template: `public class {{pascal .Name}}{{with .Type}} extends {{pascal .}}{{end}} {`, Open: true, MinArgs: 1},
			ir.ClassEnd:      {Template: braceClose, Close: true},
			ir.FunctionStart: {Template: `public {{type .Type}} {{camel .Name}}({{params .Tail}}) {`, Open: true, MinArgs: 2},
			ir.FunctionEnd:   {Template: braceClose, Close: true},
			ir.Return:        {Template: returnSemi},
		},
	}
}

// JavaScript describes JavaScript (ES modules).
func JavaScript() *Language {
	return &Language{
		Name:      "JavaScript",
		Aliases:   []string{"js"},
		Directory: "javascript",
		Extension: ".js",
		Indent:    "    ",
		Param:     `{{camel .Name}}`,
		Rules: map[string]Rule{
			ir.CommentLine:   {Template: slashComment},
			ir.Print:         {Template: `console.log({{join .Args ", "}});`},
			ir.Variable:      {Template: `let {{camel .Name}}` + value + `;`, MinArgs: 2},
			ir.Import:        {Template: `import * as {{camel .Name}} from "./{{.Path}}.js";`, MinArgs: 1},
			ir.ClassStart:    {Template: `class {{pascal .Name}}{{with .Type}} extends {{pascal .}}{{end}} {`, Open: true, MinArgs: 1},
			ir.ClassEnd:      {Template: braceClose, Close: true},
			ir.FunctionStart: {Template: `function {{camel .Name}}({{params .Tail}}) {`, Open: true, MinArgs: 2},
			ir.FunctionEnd:   {Template: braceClose, Close: true},
			ir.Return:        {Template: returnSemi},
		},
		Index: &Index{FileName: "index.js", Entry: `export * from "./{{.Path}}.js";`},
	}
}

// Python describes Python 3.
func Python() *Language {
	return &Language{
		Name:      "Python",
		Aliases:   []string{"py"},
		Directory: "python",
		Extension: ".py",
		Indent:    "    ",
		Param:     `{{snake .Name}}: {{type .Type}}`,
		Types: map[string]string{
			"string": "str", "int": "int", "float": "float", "bool": "bool", "void": "None",
		},
		Rules: map[string]Rule{
			ir.CommentLine:   {Template: hashComment},
			ir.Print:         {Template: `print({{join .Args ", "}})`},
			ir.Variable:      {Template: `{{snake .Name}}: {{type .Type}}` + value, MinArgs: 2},
			ir.Import:        {Template: `from {{dotted .Path}} import *`, MinArgs: 1},
			ir.ClassStart:    {Template: `class {{pascal .Name}}{{with .Type}}({{pascal .}}){{end}}:`, Open: true, MinArgs: 1},
			ir.ClassEnd:      {Close: true},
			ir.FunctionStart: {Template: `def {{snake .Name}}({{params .Tail}}) -> {{type .Type}}:`, Open: true, MinArgs: 2},
			ir.FunctionEnd:   {Close: true},
			ir.Return:        {Template: returnBare},
		},
		Index: &Index{FileName: "__init__.py", Entry: `from .{{dotted .Path}} import *`},
	}
}

// Ruby describes Ruby.
func Ruby() *Language {
	return &Language{
		Name:      "Ruby",
		Aliases:   []string{"rb"},
		Directory: "ruby",
		Extension: ".rb",
		Indent:    "  ",
		Param:     `{{snake .Name}}`,
		Rules: map[string]Rule{
			ir.CommentLine:   {Template: hashComment},
			ir.Print:         {Template: `puts {{join .Args ", "}}`},
			ir.Variable:      {Template: `{{snake .Name}} = {{with .Tail}}{{join . " "}}{{else}}nil{{end}}`, MinArgs: 2},
			ir.Import:        {Template: `require_relative "{{.Path}}"`, MinArgs: 1},
			ir.ClassStart:    {Template: `class {{pascal .Name}}{{with .Type}} < {{pascal .}}{{end}}`, Open: true, MinArgs: 1},
			ir.ClassEnd:      {Template: `end`, Close: true},
			ir.FunctionStart: {Template: `def {{snake .Name}}{{with .Tail}}({{params .}}){{end}}`, Open: true, MinArgs: 2},
			ir.FunctionEnd:   {Template: `end`, Close: true},
			ir.Return:        {Template: returnBare},
		},
	}
}

// TypeScript describes TypeScript.
func TypeScript() *Language {
	return &Language{
		Name:      "TypeScript",
		Aliases:   []string{"ts"},
		Directory: "typescript",
		Extension: ".ts",
		Indent:    "    ",
		Param:     `{{camel .Name}}: {{type .Type}}`,
		Types: map[string]string{
			"string": "string", "int": "number", "float": "number", "bool": "boolean", "void": "void",
		},
		Rules: map[string]Rule{
			ir.CommentLine:   {Template: slashComment},
			ir.Print:         {Template: `console.log({{join .Args ", "}});`},
			ir.Variable:      {Template: `let {{camel .Name}}: {{type .Type}}` + value + `;`, MinArgs: 2},
			ir.Import:        {Template: `import * as {{camel .Name}} from "./{{.Path}}";`, MinArgs: 1},
			ir.ClassStart:    {Template: `class {{pascal .Name}}{{with .Type}} extends {{pascal .}}{{end}} {`, Open: true, MinArgs: 1},
			ir.ClassEnd:      {Template: braceClose, Close: true},
			ir.FunctionStart: {Template: `function {{camel .Name}}({{params .Tail}}): {{type .Type}} {`, Open: true, MinArgs: 2},
			ir.FunctionEnd:   {Template: braceClose, Close: true},
			ir.Return:        {Template: returnSemi},
		},
		Index: &Index{FileName: "index.ts", Entry: `export * from "./{{.Path}}";`},
	}
}
