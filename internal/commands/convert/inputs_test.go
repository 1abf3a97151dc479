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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/polyglot/pkg/errors"
)

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.gls", "b.gls", "lib/c.gls", "lib/deep/d.gls", "lib/deep/e.yaml", "skip/f.gls"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
	t.Chdir(dir)

	tests := []struct {
		name     string
		args     []string
		excludes []string
		want     []string
	}{
		{
			name: "literal paths pass through",
			args: []string{"a.gls", "missing.gls"},
			want: []string{"a.gls", "missing.gls"},
		},
		{
			name: "single star stays in one directory",
			args: []string{"*.gls"},
			want: []string{"a.gls", "b.gls"},
		},
		{
			name: "double star recurses",
			args: []string{"lib/**/*.gls"},
			want: []string{filepath.Join("lib", "c.gls"), filepath.Join("lib", "deep", "d.gls")},
		},
		{
			name: "braces",
			args: []string{"lib/deep/*.{gls,yaml}"},
			want: []string{filepath.Join("lib", "deep", "d.gls"), filepath.Join("lib", "deep", "e.yaml")},
		},
		{
			name: "repeats keep first position",
			args: []string{"b.gls", "*.gls"},
			want: []string{"b.gls", "a.gls"},
		},
		{
			name:     "excludes apply to globs",
			args:     []string{"**/*.gls"},
			excludes: []string{"skip/**", "lib/deep/**"},
			want:     []string{"a.gls", "b.gls", filepath.Join("lib", "c.gls")},
		},
		{
			name:     "excludes apply to literals",
			args:     []string{"a.gls", "./b.gls"},
			excludes: []string{"b.gls"},
			want:     []string{"a.gls"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandInputs(tt.args, tt.excludes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandInputsErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := expandInputs([]string{"**/*.gls"}, nil)
	var verr *errors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "inputs", verr.Field)
	assert.NotEmpty(t, verr.Hint)

	_, err = expandInputs([]string{"a.gls"}, []string{"[unclosed"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "exclude", verr.Field)
}

func TestIsPattern(t *testing.T) {
	assert.True(t, isPattern("*.gls"))
	assert.True(t, isPattern("src/{a,b}.gls"))
	assert.True(t, isPattern("file?.gls"))
	assert.False(t, isPattern("src/a.gls"))
}
