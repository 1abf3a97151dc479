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

// Package queue runs deferred actions with a concurrency ceiling.
package queue

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of actions allowed in flight at once.
const DefaultConcurrency = 8

// Action is a unit of deferred work.
type Action func(ctx context.Context) error

// PanicError is recorded in place of an action that panicked.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Run executes actions with DefaultConcurrency. See RunWithLimit.
func Run(ctx context.Context, actions []Action) []error {
	return RunWithLimit(ctx, DefaultConcurrency, actions)
}

// RunWithLimit executes actions with at most limit in flight and returns
// once every action has settled. The returned slice is aligned with actions;
// a nil entry means the action succeeded. A failing or panicking action
// never stops the others. Actions start in input order.
func RunWithLimit(ctx context.Context, limit int, actions []Action) []error {
	errs := make([]error, len(actions))
	if len(actions) == 0 {
		return errs
	}
	if limit < 1 {
		limit = 1
	}

	// Failures land in errs, so the group itself never cancels.
	var g errgroup.Group
	g.SetLimit(limit)

	for i, action := range actions {
		g.Go(func() error {
			inFlight.Inc()
			defer inFlight.Dec()
			errs[i] = invoke(ctx, action)
			return nil
		})
	}

	_ = g.Wait()
	return errs
}

func invoke(ctx context.Context, action Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	if action == nil {
		return fmt.Errorf("nil action")
	}
	return action(ctx)
}
