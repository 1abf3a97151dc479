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
	"fmt"
	"strings"
)

// DryRunAction represents the type of action that would be performed.
type DryRunAction string

const (
	// DryRunActionCreate indicates a file would be created.
	DryRunActionCreate DryRunAction = "CREATE"
	// DryRunActionModify indicates an existing file would be overwritten.
	DryRunActionModify DryRunAction = "MODIFY"
)

// DryRunOutput formats dry-run output in a consistent way across commands.
// It shows what actions would be performed without executing them.
type DryRunOutput struct {
	actions []dryRunEntry
}

type dryRunEntry struct {
	action      DryRunAction
	path        string
	description string
}

func (e dryRunEntry) detail() string {
	if e.description == "" {
		return e.path
	}
	return fmt.Sprintf("%s (%s)", e.path, e.description)
}

// NewDryRunOutput creates a new dry-run output formatter.
func NewDryRunOutput() *DryRunOutput {
	return &DryRunOutput{
		actions: make([]dryRunEntry, 0),
	}
}

// DryRunCreate adds a CREATE action to the dry-run output.
func (d *DryRunOutput) DryRunCreate(path string) {
	d.actions = append(d.actions, dryRunEntry{action: DryRunActionCreate, path: path})
}

// DryRunModify adds a MODIFY action to the dry-run output.
// The description should briefly explain what would change.
func (d *DryRunOutput) DryRunModify(path, description string) {
	d.actions = append(d.actions, dryRunEntry{action: DryRunActionModify, path: path, description: description})
}

// Len returns the number of recorded actions.
func (d *DryRunOutput) Len() int {
	return len(d.actions)
}

// Actions returns the recorded actions in order, unstyled.
func (d *DryRunOutput) Actions() []string {
	out := make([]string, len(d.actions))
	for i, e := range d.actions {
		out[i] = fmt.Sprintf("%s: %s", e.action, e.detail())
	}
	return out
}

// String returns the formatted dry-run output, with action labels dimmed
// on capable terminals.
// Format:
//
//	Dry run: The following actions would be performed:
//
//	CREATE: gen/python/user.py
//	MODIFY: gen/python/__init__.py
//
//	Run without --dry-run to execute.
func (d *DryRunOutput) String() string {
	if len(d.actions) == 0 {
		return "Dry run: No actions would be performed."
	}

	var sb strings.Builder
	sb.WriteString("Dry run: The following actions would be performed:\n\n")

	for _, e := range d.actions {
		sb.WriteString(RenderLabel(string(e.action) + ":"))
		sb.WriteString(" ")
		sb.WriteString(e.detail())
		sb.WriteString("\n")
	}

	sb.WriteString("\nRun without --dry-run to execute.")

	return sb.String()
}
