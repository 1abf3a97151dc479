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

package languages

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tombee/polyglot/internal/commands/shared"
	"github.com/tombee/polyglot/pkg/language"
)

// Info describes one output language.
type Info struct {
	Name      string   `json:"name"`
	Aliases   []string `json:"aliases,omitempty"`
	Extension string   `json:"extension"`
	Directory string   `json:"directory"`
	IndexFile string   `json:"index_file,omitempty"`
}

type listResponse struct {
	shared.JSONResponse
	Languages []Info `json:"languages"`
}

// NewCommand creates the languages command
func NewCommand() *cobra.Command {
	return newCommand(language.Builtin())
}

func newCommand(registry *language.Registry) *cobra.Command {
	return &cobra.Command{
		Use:     "languages",
		Aliases: []string{"langs"},
		Short:   "List available output languages",
		Long: `List every language convert can write, with the aliases accepted by
-l/--language, the output extension, and the index file written during
postprocessing, if any. Names and aliases are matched case-insensitively.`,
		Annotations: map[string]string{"group": "info"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := describe(registry)
			if shared.GetJSON() {
				return shared.EmitJSON(cmd.OutOrStdout(), listResponse{
					JSONResponse: shared.JSONResponse{Version: "1.0", Command: "languages", Success: true},
					Languages:    infos,
				})
			}
			return printTable(cmd, infos)
		},
	}
}

func describe(registry *language.Registry) []Info {
	langs := registry.Languages()
	infos := make([]Info, 0, len(langs))
	for _, l := range langs {
		info := Info{
			Name:      l.Name,
			Aliases:   l.Aliases,
			Extension: l.Extension,
			Directory: l.Directory,
		}
		if l.HasIndex() {
			info.IndexFile = l.Index.FileName
		}
		infos = append(infos, info)
	}
	return infos
}

func printTable(cmd *cobra.Command, infos []Info) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, shared.Header.Render("NAME")+"\t"+shared.Header.Render("ALIASES")+"\t"+
		shared.Header.Render("EXTENSION")+"\t"+shared.Header.Render("INDEX"))
	for _, info := range infos {
		aliases := strings.Join(info.Aliases, ", ")
		if aliases == "" {
			aliases = "-"
		}
		index := info.IndexFile
		if index == "" {
			index = shared.Muted.Render("-")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", shared.Bold.Render(info.Name), aliases, info.Extension, index)
	}
	return w.Flush()
}
