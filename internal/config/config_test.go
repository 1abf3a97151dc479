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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tombee/polyglot/internal/tracing/export"
	polyerrors "github.com/tombee/polyglot/pkg/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"POLYGLOT_LANGUAGES", "POLYGLOT_BASE_DIR", "POLYGLOT_NAMESPACE", "POLYGLOT_PROJECT",
		"POLYGLOT_OUT_DIR", "POLYGLOT_STRICT",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_SOURCE", "POLYGLOT_TRACE_FILE",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_PROTOCOL",
		"OTEL_EXPORTER_OTLP_INSECURE", "OTEL_EXPORTER_OTLP_HEADERS",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.MaxFileSize != 64<<20 {
		t.Errorf("expected max file size 64MiB, got %d", cfg.MaxFileSize)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level 'info', got %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "" {
		t.Errorf("expected automatic log format, got %q", cfg.Log.Format)
	}
	if cfg.Strict {
		t.Error("expected strict false")
	}
}

func TestLoad_NoFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("expected no path, got %q", cfg.Path)
	}
	if cfg.MaxFileSize != 64<<20 {
		t.Errorf("expected default max file size, got %d", cfg.MaxFileSize)
	}
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `languages: [Python, TypeScript]
base_directory: src
namespace: acme
project: polyglot.project.yaml
out_dir: gen
strict: true
log:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := strings.Join(cfg.Languages, ","); got != "Python,TypeScript" {
		t.Errorf("Languages = %q", got)
	}
	if cfg.BaseDirectory != "src" || cfg.Namespace != "acme" || cfg.OutDir != "gen" {
		t.Errorf("unexpected paths: %+v", cfg)
	}
	if cfg.Project != "polyglot.project.yaml" {
		t.Errorf("Project = %q", cfg.Project)
	}
	if !cfg.Strict {
		t.Error("expected strict true")
	}
	if cfg.MaxFileSize != 64<<20 {
		t.Errorf("expected default max file size to be applied, got %d", cfg.MaxFileSize)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "console" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected defaults, got %+v", cfg.Log)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "languages: [Python]\nnamespace: file\nstrict: true\n")
	t.Setenv("POLYGLOT_LANGUAGES", "Go, Ruby ,")
	t.Setenv("POLYGLOT_NAMESPACE", "env")
	t.Setenv("POLYGLOT_BASE_DIR", "lib")
	t.Setenv("POLYGLOT_PROJECT", "settings.yaml")
	t.Setenv("POLYGLOT_OUT_DIR", "out")
	t.Setenv("POLYGLOT_STRICT", "false")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_SOURCE", "1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := strings.Join(cfg.Languages, ","); got != "Go,Ruby" {
		t.Errorf("Languages = %q", got)
	}
	if cfg.Namespace != "env" || cfg.BaseDirectory != "lib" || cfg.Project != "settings.yaml" || cfg.OutDir != "out" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.Strict {
		t.Error("POLYGLOT_STRICT=false should override the file")
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != "text" || !cfg.Log.AddSource {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		wantKey string
	}{
		{name: "unknown key", content: "langauges: [Go]\n", wantKey: "config_file"},
		{name: "malformed yaml", content: "languages: [Go\n", wantKey: "config_file"},
		{name: "concurrency is fixed", content: "concurrency: 4\n", wantKey: "config_file"},
		{name: "bad log level", content: "log:\n  level: loud\n", wantKey: "log.level"},
		{name: "bad log format", content: "log:\n  format: xml\n", wantKey: "log.format"},
		{name: "empty language", content: "languages: [Go, \"\"]\n", wantKey: "languages[1]"},
		{name: "bad strict env", env: map[string]string{"POLYGLOT_STRICT": "sometimes"}, wantKey: "POLYGLOT_STRICT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			var cfgErr *polyerrors.ConfigError
			if !polyerrors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %T: %v", err, err)
			}
			if cfgErr.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", cfgErr.Key, tt.wantKey)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected an error for a missing explicit config")
	}
	if !strings.Contains(err.Error(), "failed to load") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDiscover(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	work := t.TempDir()
	t.Chdir(work)

	t.Run("explicit wins", func(t *testing.T) {
		got, err := Discover("custom.yaml")
		if err != nil || got != "custom.yaml" {
			t.Errorf("Discover() = %q, %v", got, err)
		}
	})

	t.Run("nothing found", func(t *testing.T) {
		got, err := Discover("")
		if err != nil || got != "" {
			t.Errorf("Discover() = %q, %v", got, err)
		}
	})

	userPath := filepath.Join(xdg, "polyglot", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(userPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(userPath, []byte("strict: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("user config", func(t *testing.T) {
		got, err := Discover("")
		if err != nil || got != userPath {
			t.Errorf("Discover() = %q, %v; want %q", got, err, userPath)
		}
	})

	if err := os.WriteFile(filepath.Join(work, LocalFileName), []byte("strict: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("local config before user config", func(t *testing.T) {
		got, err := Discover("")
		if err != nil || got != LocalFileName {
			t.Errorf("Discover() = %q, %v; want %q", got, err, LocalFileName)
		}
	})
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	got, err := ConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/xdg", "polyglot", "config.yaml"); got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}
}

func TestLoad_Tracing(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `tracing:
  file: traces/run.json
  otlp_endpoint: collector:4317
  otlp_headers:
    x-team: build
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Tracing.File != "traces/run.json" {
		t.Errorf("expected trace file, got %q", cfg.Tracing.File)
	}

	otlp := cfg.Tracing.OTLP()
	if otlp == nil {
		t.Fatal("expected an OTLP config")
	}
	if otlp.Endpoint != "collector:4317" || otlp.Protocol != export.ProtocolGRPC || otlp.Insecure {
		t.Errorf("unexpected OTLP config %+v", otlp)
	}
	if otlp.Headers["x-team"] != "build" {
		t.Errorf("expected header x-team, got %v", otlp.Headers)
	}
}

func TestLoad_TracingEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318/")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "http/protobuf")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "authorization=Bearer abc, x-env = ci")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	otlp := cfg.Tracing.OTLP()
	if otlp == nil {
		t.Fatal("expected an OTLP config")
	}
	if otlp.Endpoint != "localhost:4318" {
		t.Errorf("expected scheme and slash stripped, got %q", otlp.Endpoint)
	}
	if !otlp.Insecure {
		t.Error("an http:// endpoint should be insecure")
	}
	if otlp.Protocol != export.ProtocolHTTP {
		t.Errorf("expected http protocol, got %q", otlp.Protocol)
	}
	if otlp.Headers["authorization"] != "Bearer abc" || otlp.Headers["x-env"] != "ci" {
		t.Errorf("unexpected headers %v", otlp.Headers)
	}
}

func TestTracingConfig_NoEndpoint(t *testing.T) {
	if (TracingConfig{File: "t.json"}).OTLP() != nil {
		t.Error("expected nil OTLP config without an endpoint")
	}
}

func TestLoad_TracingErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		key  string
	}{
		{name: "protocol", env: map[string]string{"OTEL_EXPORTER_OTLP_PROTOCOL": "http/json"}, key: "tracing.otlp_protocol"},
		{name: "insecure", env: map[string]string{"OTEL_EXPORTER_OTLP_INSECURE": "maybe"}, key: "OTEL_EXPORTER_OTLP_INSECURE"},
		{name: "headers", env: map[string]string{"OTEL_EXPORTER_OTLP_HEADERS": "novalue"}, key: "OTEL_EXPORTER_OTLP_HEADERS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			cfgErr, ok := err.(*polyerrors.ConfigError)
			if !ok {
				t.Fatalf("expected *ConfigError, got %T (%v)", err, err)
			}
			if cfgErr.Key != tt.key {
				t.Errorf("expected key %q, got %q", tt.key, cfgErr.Key)
			}
		})
	}
}
