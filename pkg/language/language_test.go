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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/polyglot/pkg/errors"
	"github.com/tombee/polyglot/pkg/ir"
)

const greeter = `comment line : Greets people
class start : Greeter
function start : say_hello string name string
print : "Hello, " name
return : name
function end
class end
`

func parse(t *testing.T, source string) []ir.Statement {
	t.Helper()
	stmts, err := ir.Parse(source)
	require.NoError(t, err)
	return stmts
}

func TestRender_BuiltinLanguages(t *testing.T) {
	tests := []struct {
		lang      *Language
		namespace string
		want      string
	}{
		{
			lang: Python(),
			want: `# Greets people
class Greeter:
    def say_hello(name: str) -> str:
        print("Hello, ", name)
        return name
`,
		},
		{
			lang:      Go(),
			namespace: "acme/models",
			want: `package models

// Greets people
type Greeter struct {
	func SayHello(name string) string {
		fmt.Println("Hello, ", name)
		return name
	}
}
`,
		},
		{
			lang:      CSharp(),
			namespace: "acme.models",
			want: `namespace Acme.Models;

// Greets people
public class Greeter
{
    public string SayHello(string name)
    {
        Console.WriteLine("Hello, " + name);
        return name;
    }
}
`,
		},
		{
			lang: Ruby(),
			want: `# Greets people
class Greeter
  def say_hello(name)
    puts "Hello, ", name
    return name
  end
end
`,
		},
		{
			lang: TypeScript(),
			want: `// Greets people
class Greeter {
    function sayHello(name: string): string {
        console.log("Hello, ", name);
        return name;
    }
}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.lang.Name, func(t *testing.T) {
			got, err := tt.lang.Render(parse(t, greeter), RenderContext{Namespace: tt.namespace})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_Variables(t *testing.T) {
	stmts := parse(t, "variable : retry_count int 3\nvariable : label string\n")

	got, err := Java().Render(stmts, RenderContext{Namespace: "Acme/Util"})
	require.NoError(t, err)
	assert.Equal(t, "package acme.util;\n\nint retryCount = 3;\nString label;\n", got)

	got, err = Ruby().Render(stmts, RenderContext{})
	require.NoError(t, err)
	assert.Equal(t, "retry_count = 3\nlabel = nil\n", got)
}

func TestRender_KeepsBlankLines(t *testing.T) {
	got, err := JavaScript().Render(parse(t, "print : 1\n\nprint : 2\n"), RenderContext{})
	require.NoError(t, err)
	assert.Equal(t, "console.log(1);\n\nconsole.log(2);\n", got)
}

func TestRender_ResolvesImports(t *testing.T) {
	var asked []string
	ctx := RenderContext{Import: func(name string) (string, error) {
		asked = append(asked, name)
		return "lib/" + name, nil
	}}

	got, err := Python().Render(parse(t, "import : util\n"), ctx)
	require.NoError(t, err)
	assert.Equal(t, "from lib.util import *\n", got)
	assert.Equal(t, []string{"util"}, asked)
}

func TestRender_Errors(t *testing.T) {
	missing := &errors.NotFoundError{Resource: "import", ID: "util.gls"}

	tests := []struct {
		name     string
		source   string
		ctx      RenderContext
		wantKind errors.Kind
		wantMsg  string
	}{
		{"unknown command", "print : x\ngoto : 10\n", RenderContext{}, errors.KindTransform, `line 2: unknown command "goto"`},
		{"too few arguments", "variable : x\n", RenderContext{}, errors.KindTransform, "line 1: variable needs at least 2 argument(s)"},
		{"unbalanced end", "class end\n", RenderContext{}, errors.KindTransform, "line 1: class end without a matching start"},
		{"unclosed block", "class start : A\n", RenderContext{}, errors.KindTransform, "1 block(s) left open at end of file"},
		{"odd parameters", "function start : f void a\nfunction end\n", RenderContext{}, errors.KindTransform, ""},
		{
			"missing import",
			"import : util\n",
			RenderContext{Import: func(string) (string, error) { return "", missing }},
			errors.KindNotFound,
			"line 1: import not found: util.gls",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Python().Render(parse(t, tt.source), tt.ctx)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errors.KindOf(err))
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}
		})
	}
}

func TestRenderIndex(t *testing.T) {
	got, err := TypeScript().RenderIndex([]string{"models/user", "app"})
	require.NoError(t, err)
	assert.Equal(t, "export * from \"./app\";\nexport * from \"./models/user\";\n", got)

	got, err = Python().RenderIndex([]string{"models/user"})
	require.NoError(t, err)
	assert.Equal(t, "from .models.user import *\n", got)

	_, err = Go().RenderIndex([]string{"a"})
	assert.Error(t, err)
}

func TestValidate_BadTemplate(t *testing.T) {
	l := &Language{Name: "Broken", Extension: ".b", Rules: map[string]Rule{ir.Print: {Template: "{{ .Missing"}}}
	assert.Error(t, l.Validate())
}
