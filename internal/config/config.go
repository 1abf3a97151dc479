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

// Package config loads polyglot settings from a YAML file and the
// environment. Command-line flags are applied on top by the commands.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tombee/polyglot/internal/tracing/export"
	polyerrors "github.com/tombee/polyglot/pkg/errors"
)

// LocalFileName is the project-level config file looked up in the working
// directory.
const LocalFileName = ".polyglot.yaml"

// Config represents the complete polyglot configuration.
type Config struct {
	// Languages are the default output languages.
	// Environment: POLYGLOT_LANGUAGES (comma separated)
	Languages []string `yaml:"languages"`

	// BaseDirectory is stripped from input paths when computing output
	// paths and namespaces.
	// Environment: POLYGLOT_BASE_DIR
	BaseDirectory string `yaml:"base_directory"`

	// Namespace prefixes generated namespaces and packages.
	// Environment: POLYGLOT_NAMESPACE
	Namespace string `yaml:"namespace"`

	// Project is an optional project-settings file for preprocessing.
	// Environment: POLYGLOT_PROJECT
	Project string `yaml:"project"`

	// OutDir places outputs under <out_dir>/<language>/.
	// Environment: POLYGLOT_OUT_DIR
	OutDir string `yaml:"out_dir"`

	// Strict treats any per-file failure as a failed run.
	// Environment: POLYGLOT_STRICT
	Strict bool `yaml:"strict"`

	// MaxFileSize is the largest file, in bytes, that is read or written.
	// Default: 64 MiB
	MaxFileSize int64 `yaml:"max_file_size"`

	Log LogConfig `yaml:"log"`

	Tracing TracingConfig `yaml:"tracing"`

	// Path is the file the configuration was loaded from, if any.
	Path string `yaml:"-"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	// Environment: LOG_LEVEL
	// Default: info
	Level string `yaml:"level"`

	// Format sets the output format (json, text, console). Empty picks
	// console for terminals and json otherwise.
	// Environment: LOG_FORMAT
	Format string `yaml:"format"`

	// AddSource adds source file and line information to logs.
	// Environment: LOG_SOURCE
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// TracingConfig selects where run spans are exported.
type TracingConfig struct {
	// File receives spans as JSON.
	// Environment: POLYGLOT_TRACE_FILE
	File string `yaml:"file"`

	// OTLPEndpoint is the collector address. An http:// scheme implies an
	// insecure connection.
	// Environment: OTEL_EXPORTER_OTLP_ENDPOINT
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	// OTLPProtocol is grpc (default) or http/protobuf.
	// Environment: OTEL_EXPORTER_OTLP_PROTOCOL
	OTLPProtocol string `yaml:"otlp_protocol"`

	// OTLPInsecure disables TLS to the collector.
	// Environment: OTEL_EXPORTER_OTLP_INSECURE
	OTLPInsecure bool `yaml:"otlp_insecure"`

	// OTLPHeaders are sent with every export.
	// Environment: OTEL_EXPORTER_OTLP_HEADERS (key=value,key=value)
	OTLPHeaders map[string]string `yaml:"otlp_headers"`

	// CACert verifies the collector against a custom CA.
	CACert string `yaml:"ca_cert"`
}

// OTLP returns the exporter configuration, or nil when no endpoint is set.
func (t TracingConfig) OTLP() *export.Config {
	if t.OTLPEndpoint == "" {
		return nil
	}
	// Validate has already accepted the protocol.
	protocol, _ := export.ParseProtocol(t.OTLPProtocol)
	cfg := &export.Config{
		Endpoint:   t.OTLPEndpoint,
		Protocol:   protocol,
		Insecure:   t.OTLPInsecure,
		CACertPath: t.CACert,
		Headers:    t.OTLPHeaders,
	}
	switch {
	case strings.HasPrefix(cfg.Endpoint, "http://"):
		cfg.Endpoint = strings.TrimPrefix(cfg.Endpoint, "http://")
		cfg.Insecure = true
	case strings.HasPrefix(cfg.Endpoint, "https://"):
		cfg.Endpoint = strings.TrimPrefix(cfg.Endpoint, "https://")
	}
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")
	return cfg
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		MaxFileSize: 64 << 20,
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file and then the environment.
// Environment variables take precedence over file-based configuration.
// An empty configPath means no file is read.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &polyerrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
		cfg.Path = configPath
	}

	cfg.applyDefaults()

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Discover returns the config file to load: explicit when set, else
// ./.polyglot.yaml, else the user config file. It returns "" when none of
// them exists. An explicit path is returned even if it does not exist so
// that Load reports the error.
func Discover(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	candidates := []string{LocalFileName}
	if p, err := ConfigPath(); err == nil {
		candidates = append(candidates, p)
	}
	for _, p := range candidates {
		info, err := os.Stat(p)
		switch {
		case err == nil && !info.IsDir():
			return p, nil
		case err == nil, errors.Is(err, fs.ErrNotExist):
			continue
		default:
			return "", &polyerrors.ConfigError{Key: "config_file", Reason: "cannot access " + p, Cause: err}
		}
	}
	return "", nil
}

// applyDefaults fills in zero values with sensible defaults.
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.MaxFileSize == 0 {
		c.MaxFileSize = defaults.MaxFileSize
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// loadFromFile loads configuration from a YAML file. Unknown keys are
// rejected.
func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func (c *Config) loadFromEnv() error {
	if val := os.Getenv("POLYGLOT_LANGUAGES"); val != "" {
		c.Languages = splitList(val)
	}
	if val := os.Getenv("POLYGLOT_BASE_DIR"); val != "" {
		c.BaseDirectory = val
	}
	if val := os.Getenv("POLYGLOT_NAMESPACE"); val != "" {
		c.Namespace = val
	}
	if val := os.Getenv("POLYGLOT_PROJECT"); val != "" {
		c.Project = val
	}
	if val := os.Getenv("POLYGLOT_OUT_DIR"); val != "" {
		c.OutDir = val
	}
	if val := os.Getenv("POLYGLOT_STRICT"); val != "" {
		strict, err := strconv.ParseBool(val)
		if err != nil {
			return &polyerrors.ConfigError{Key: "POLYGLOT_STRICT", Reason: fmt.Sprintf("invalid boolean %q", val), Cause: err}
		}
		c.Strict = strict
	}

	// Tracing configuration
	if val := os.Getenv("POLYGLOT_TRACE_FILE"); val != "" {
		c.Tracing.File = val
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); val != "" {
		c.Tracing.OTLPEndpoint = val
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"); val != "" {
		c.Tracing.OTLPProtocol = val
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"); val != "" {
		insecure, err := strconv.ParseBool(val)
		if err != nil {
			return &polyerrors.ConfigError{Key: "OTEL_EXPORTER_OTLP_INSECURE", Reason: fmt.Sprintf("invalid boolean %q", val), Cause: err}
		}
		c.Tracing.OTLPInsecure = insecure
	}
	if val := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); val != "" {
		headers, err := parseHeaders(val)
		if err != nil {
			return &polyerrors.ConfigError{Key: "OTEL_EXPORTER_OTLP_HEADERS", Reason: err.Error()}
		}
		c.Tracing.OTLPHeaders = headers
	}

	// Log configuration
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_SOURCE"); val != "" {
		c.Log.AddSource = val == "1" || strings.EqualFold(val, "true")
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxFileSize < 1 {
		return &polyerrors.ConfigError{Key: "max_file_size", Reason: fmt.Sprintf("must be positive, got %d", c.MaxFileSize)}
	}
	for i, l := range c.Languages {
		if strings.TrimSpace(l) == "" {
			return &polyerrors.ConfigError{Key: fmt.Sprintf("languages[%d]", i), Reason: "language name is empty"}
		}
	}

	switch c.Log.Level {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return &polyerrors.ConfigError{Key: "log.level", Reason: fmt.Sprintf("unknown level %q", c.Log.Level)}
	}
	switch c.Log.Format {
	case "", "json", "text", "console":
	default:
		return &polyerrors.ConfigError{Key: "log.format", Reason: fmt.Sprintf("unknown format %q", c.Log.Format)}
	}
	if _, err := export.ParseProtocol(c.Tracing.OTLPProtocol); err != nil {
		return &polyerrors.ConfigError{Key: "tracing.otlp_protocol", Reason: err.Error()}
	}
	return nil
}

// parseHeaders parses key=value pairs separated by commas.
func parseHeaders(val string) (map[string]string, error) {
	headers := make(map[string]string)
	for _, pair := range splitList(val) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("header %q is not key=value", pair)
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return headers, nil
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
