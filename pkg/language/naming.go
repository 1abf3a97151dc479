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
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	textlang "golang.org/x/text/language"
)

// words splits an identifier into its parts. Non-alphanumeric runes
// separate words, as do lower-to-upper transitions and the end of an
// acronym ("HTTPServer" is "HTTP", "Server").
func words(s string) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}

	rs := []rune(s)
	for i, r := range rs {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 && unicode.IsUpper(r) {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return out
}

// Casers carry state, so each call gets its own.

func title(w string) string {
	return cases.Title(textlang.Und).String(w)
}

func lower(w string) string {
	return cases.Lower(textlang.Und).String(w)
}

func upper(w string) string {
	return cases.Upper(textlang.Und).String(w)
}

// Pascal converts s to PascalCase.
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteString(title(w))
	}
	return b.String()
}

// Camel converts s to camelCase.
func Camel(s string) string {
	ws := words(s)
	if len(ws) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(lower(ws[0]))
	for _, w := range ws[1:] {
		b.WriteString(title(w))
	}
	return b.String()
}

// Snake converts s to snake_case.
func Snake(s string) string {
	ws := words(s)
	for i, w := range ws {
		ws[i] = lower(w)
	}
	return strings.Join(ws, "_")
}

// segments splits a namespace or module path on dots and slashes.
func segments(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == '/' })
}

// dotted joins the segments of s with dots.
func dotted(s string) string {
	return strings.Join(segments(s), ".")
}

// dottedPascal joins the PascalCased segments of s with dots.
func dottedPascal(s string) string {
	segs := segments(s)
	for i, seg := range segs {
		segs[i] = Pascal(seg)
	}
	return strings.Join(segs, ".")
}

// last returns the final segment of s.
func last(s string) string {
	segs := segments(s)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}
