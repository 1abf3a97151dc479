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

/*
Package runner executes one conversion run.

The Runner owns everything scoped to a run: the run ID, the content cache,
and the results map. It is the Coordinator's Dispatcher, so every unit the
Coordinator produces is submitted to the bounded queue from here and its
result is recorded under the requested input path.

# Usage

	r := runner.New(runner.Dependencies{
	    Coordinator: coordinator,
	    Store:       store,
	    Logger:      logger,
	}, runner.WithTracer(tracer))

	report := r.Run(ctx, runner.Options{
	    Files:     []string{"a.gls", "b.yaml"},
	    Languages: []string{"Python", "TypeScript"},
	})

# Logging

For every requested file the Runner logs a progress line when preprocessing
starts and one outcome line when the file reaches its terminal result.
Failures are logged at error level as soon as they happen. After the queue
drains a summary line is logged:

	Ran on 2 files.
	1 failed.

The failure line is omitted when nothing failed.

# Outcome

Per-file failures never make Run return an error. The report's Status is
StatusError only for structural failures, or for any per-file failure when
Options.Strict is set.
*/
package runner
