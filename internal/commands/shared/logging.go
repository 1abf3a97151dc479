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

package shared

import (
	"io"
	"log/slog"
	"os"

	"github.com/tombee/polyglot/internal/config"
	"github.com/tombee/polyglot/internal/log"
)

// LoadConfig loads the file named by --config, or the discovered default,
// with environment overrides applied.
func LoadConfig() (*config.Config, error) {
	path, err := config.Discover(GetConfigPath())
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// NewLogger builds the command logger writing to w. Precedence, lowest
// first: cfg, POLYGLOT_DEBUG / POLYGLOT_LOG_LEVEL, then --verbose and
// --quiet.
func NewLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	lc := &log.Config{
		Level:     cfg.Level,
		Format:    log.Format(cfg.Format),
		Output:    w,
		AddSource: cfg.AddSource,
	}
	if lc.Format == "" {
		lc.Format = log.DefaultFormat(w)
	}

	if os.Getenv("POLYGLOT_DEBUG") != "" || os.Getenv("POLYGLOT_LOG_LEVEL") != "" {
		env := log.FromEnv()
		lc.Level = env.Level
		lc.AddSource = lc.AddSource || env.AddSource
	}

	switch {
	case GetQuiet():
		lc.Level = "error"
	case GetVerbose():
		lc.Level = "debug"
	}
	return log.New(lc)
}
