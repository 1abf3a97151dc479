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

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// consoleHidden lists keys that console output leaves out because the
// message text already carries them.
var consoleHidden = map[string]bool{
	RunIDKey:     true,
	ComponentKey: true,
	FileKey:      true,
	OutputKey:    true,
}

type consoleStyles struct {
	debug lipgloss.Style
	warn  lipgloss.Style
	err   lipgloss.Style
	muted lipgloss.Style
}

// ConsoleHandler is a slog.Handler that writes one styled line per record:
// an optional level prefix, the message, and muted key=value fields. A
// DetailKey attribute is written below the line, indented.
type ConsoleHandler struct {
	mu     *sync.Mutex
	out    io.Writer
	level  slog.Leveler
	source bool
	prefix string
	attrs  []slog.Attr
	styles consoleStyles
}

// NewConsoleHandler creates a console handler writing to w. Colors follow
// the terminal capabilities of w, so non-terminal writers get plain text.
func NewConsoleHandler(w io.Writer, opts *slog.HandlerOptions) *ConsoleHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	var level slog.Leveler = slog.LevelInfo
	if opts.Level != nil {
		level = opts.Level
	}

	r := lipgloss.NewRenderer(w)
	return &ConsoleHandler{
		mu:     &sync.Mutex{},
		out:    w,
		level:  level,
		source: opts.AddSource,
		styles: consoleStyles{
			debug: r.NewStyle().Foreground(lipgloss.Color("245")),
			warn:  r.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
			err:   r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
			muted: r.NewStyle().Foreground(lipgloss.Color("245")),
		},
	}
}

// Enabled implements slog.Handler.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	switch {
	case r.Level >= slog.LevelError:
		b.WriteString(h.styles.err.Render("error:") + " ")
	case r.Level >= slog.LevelWarn:
		b.WriteString(h.styles.warn.Render("warning:") + " ")
	case r.Level < slog.LevelInfo:
		b.WriteString(h.styles.debug.Render("debug:") + " ")
	}
	b.WriteString(r.Message)

	var fields []string
	var detail string
	add := func(prefix string, a slog.Attr) {
		h.flatten(prefix, a, func(key string, v slog.Value) {
			switch {
			case key == DetailKey:
				detail = v.String()
			case consoleHidden[key]:
			default:
				fields = append(fields, key+"="+formatValue(v))
			}
		})
	}
	for _, a := range h.attrs {
		add("", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		add(h.prefix, a)
		return true
	})
	if h.source && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		fields = append(fields, fmt.Sprintf("source=%s:%d", frame.File, frame.Line))
	}

	if len(fields) > 0 {
		b.WriteString(" " + h.styles.muted.Render(strings.Join(fields, " ")))
	}
	b.WriteByte('\n')
	if detail != "" {
		for _, line := range strings.Split(strings.TrimRight(detail, "\n"), "\n") {
			b.WriteString("    " + line + "\n")
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

// WithAttrs implements slog.Handler.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	h2.attrs = append(h2.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

// WithGroup implements slog.Handler.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix = h.prefix + name + "."
	return &h2
}

func (h *ConsoleHandler) flatten(prefix string, a slog.Attr, emit func(string, slog.Value)) {
	v := a.Value.Resolve()
	if a.Key == "" && v.Kind() != slog.KindGroup {
		return
	}
	if v.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = prefix + a.Key + "."
		}
		for _, ga := range v.Group() {
			h.flatten(groupPrefix, ga, emit)
		}
		return
	}
	emit(prefix+a.Key, v)
}

func formatValue(v slog.Value) string {
	s := v.String()
	if v.Kind() == slog.KindString && (s == "" || strings.ContainsAny(s, " \t\n\"=")) {
		return strconv.Quote(s)
	}
	return s
}
