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

package pipeline

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"strings"

	"github.com/tombee/polyglot/internal/filestore"
	"github.com/tombee/polyglot/internal/log"
	"github.com/tombee/polyglot/pkg/errors"
	"github.com/tombee/polyglot/pkg/ir"
	"github.com/tombee/polyglot/pkg/language"
)

// preprocess turns one requested file into its intermediate form. Files
// without a registered preprocessor are already intermediate and pass
// through unchanged.
func (c *Coordinator) preprocess(ctx context.Context, cache *filestore.Cache, settings ProjectSettings, path string) (Success, error) {
	p, ok := c.preprocessorFor(path)
	if !ok {
		return Success{Outputs: []Output{{Path: path}}, Intermediate: path}, nil
	}

	content, err := cache.Load(ctx, path)
	if err != nil {
		return Success{}, errors.Wrapf(err, "reading %s", path)
	}
	text, err := p.Preprocess(ctx, path, content, settings)
	if err != nil {
		return Success{}, err
	}

	target := IntermediatePath(path)
	if err := c.store.WriteFile(ctx, target, text); err != nil {
		return Success{}, errors.Wrapf(err, "writing %s", target)
	}
	cache.Put(target, text)
	return Success{Outputs: []Output{{Path: target}}, Intermediate: target}, nil
}

func (c *Coordinator) preprocessorFor(path string) (Preprocessor, bool) {
	p, ok := c.preprocessors[strings.ToLower(filepath.Ext(path))]
	return p, ok
}

// intermediateFor returns the intermediate path preprocess gives path.
func (c *Coordinator) intermediateFor(path string) string {
	if _, ok := c.preprocessorFor(path); ok {
		return IntermediatePath(path)
	}
	return path
}

// convert renders one intermediate file in every language. The file fails
// if any language fails; the remaining languages are still written.
func (c *Coordinator) convert(ctx context.Context, cache *filestore.Cache, langs []*language.Language, cfg Config, intermediate string) (Success, error) {
	content, err := cache.Load(ctx, intermediate)
	if err != nil {
		return Success{}, errors.Wrapf(err, "reading %s", intermediate)
	}
	stmts, err := ir.Parse(content)
	if err != nil {
		return Success{}, errors.Wrapf(err, "parsing %s", intermediate)
	}

	rc := language.RenderContext{
		Namespace: Namespace(intermediate, cfg),
		Import:    c.importer(ctx, cache, intermediate),
	}

	var outputs []Output
	var failures []error
	for _, lang := range langs {
		out := OutputPath(intermediate, lang, cfg)
		text, err := lang.Render(stmts, rc)
		if err == nil {
			err = c.store.WriteFile(ctx, out, text)
		}
		if err != nil {
			failures = append(failures, errors.Wrap(err, lang.Name))
			continue
		}
		c.logger.Debug("rendered output", log.LanguageKey, lang.Name, log.OutputKey, out)
		outputs = append(outputs, Output{Language: lang.Name, Path: out})
	}

	if len(failures) > 0 {
		return Success{}, joinErrors(failures)
	}
	return Success{Outputs: outputs, Intermediate: intermediate}, nil
}

// importer resolves import arguments relative to the importing file,
// loading each imported file into the cache.
func (c *Coordinator) importer(ctx context.Context, cache *filestore.Cache, from string) func(string) (string, error) {
	dir := filepath.Dir(from)
	return func(name string) (string, error) {
		target := filepath.Join(dir, filepath.FromSlash(name))
		if filepath.Ext(target) == "" {
			target += ir.Extension
		}
		if _, err := cache.Load(ctx, target); err != nil {
			if errors.KindOf(err) == errors.KindNotFound {
				return "", &errors.NotFoundError{Resource: "import", ID: target}
			}
			return "", err
		}
		return modulePath(dir, target), nil
	}
}

// postprocess writes lang's index file over the outputs converted for it.
// A converted output already occupying the index path is never overwritten.
func (c *Coordinator) postprocess(ctx context.Context, lang *language.Language, cfg Config, outputs []string) (Success, error) {
	if !lang.HasIndex() || len(outputs) == 0 {
		return Success{}, nil
	}

	dir := IndexDirectory(outputs, lang, cfg)
	indexPath := filepath.Join(dir, lang.Index.FileName)

	entries := make([]string, 0, len(outputs))
	for _, out := range outputs {
		if filepath.Clean(out) == filepath.Clean(indexPath) {
			return Success{}, errors.Transform("converted output %s occupies the %s index file; rename the input", out, lang.Name)
		}
		entries = append(entries, modulePath(dir, out))
	}

	text, err := lang.RenderIndex(entries)
	if err != nil {
		return Success{}, err
	}
	if err := c.store.WriteFile(ctx, indexPath, text); err != nil {
		return Success{}, errors.Wrapf(err, "writing %s", indexPath)
	}
	return Success{Outputs: []Output{{Language: lang.Name, Path: indexPath}}}, nil
}

// joinErrors combines per-language failures, keeping a single error as is.
func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	return stderrors.Join(errs...)
}
