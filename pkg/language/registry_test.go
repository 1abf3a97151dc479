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
)

func TestBuiltin_Names(t *testing.T) {
	assert.Equal(t,
		[]string{"C#", "Go", "Java", "JavaScript", "Python", "Ruby", "TypeScript"},
		Builtin().Names(),
	)
}

func TestRegistry_Lookup(t *testing.T) {
	r := Builtin()

	for _, name := range []string{"Python", "python", "py", " PY "} {
		l, ok := r.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, "Python", l.Name)
	}
	_, ok := r.Lookup("Cobol")
	assert.False(t, ok)
}

func TestRegistry_Resolve(t *testing.T) {
	r := Builtin()

	t.Run("request order without repeats", func(t *testing.T) {
		langs, err := r.Resolve([]string{"TypeScript", "py", "ts", "Python"})
		require.NoError(t, err)
		require.Len(t, langs, 2)
		assert.Equal(t, "TypeScript", langs[0].Name)
		assert.Equal(t, "Python", langs[1].Name)
	})

	t.Run("empty request", func(t *testing.T) {
		_, err := r.Resolve(nil)
		var validation *errors.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "You must provide a -l/--language.", validation.UserMessage())
		assert.Contains(t, validation.Suggestion(), "C#, Go, Java")
		assert.Equal(t, errors.KindStructural, errors.KindOf(err))
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := r.Resolve([]string{"Python", "Cobol"})
		var notFound *errors.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "Unknown language name: 'Cobol'.", notFound.UserMessage())
		assert.Contains(t, notFound.Suggestion(), "TypeScript")
	})
}

func TestRegistry_Register(t *testing.T) {
	r, err := NewRegistry(Python())
	require.NoError(t, err)

	err = r.Register(&Language{Name: "Snake", Aliases: []string{"PY"}, Extension: ".sn"})
	assert.Error(t, err, "alias collides with Python's")

	err = r.Register(&Language{Name: "X", Extension: "x"})
	assert.Error(t, err, "extension without a dot")

	require.NoError(t, r.Register(&Language{Name: "X", Extension: ".x"}))
	assert.Equal(t, []string{"Python", "X"}, r.Names())
}
