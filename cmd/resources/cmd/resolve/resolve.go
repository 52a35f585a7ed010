// Package resolve provides the resolve command.
package resolve

import (
	"github.com/spf13/cobra"

	"github.com/kraenzle-ritter/resources/cmd/application"
	"github.com/kraenzle-ritter/resources/internal/cmd/cmdutil"
)

// Resolution is the printed outcome of a resolve.
type Resolution struct {
	Provider string `json:"provider" yaml:"provider"`
	ID       string `json:"id" yaml:"id"`
	Status   string `json:"status" yaml:"status"`
	Wikidata string `json:"wikidata,omitempty" yaml:"wikidata,omitempty"`
	Reason   string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// NewCommand creates the resolve command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "resolve <provider> <id>",
		GroupID: "core",
		Short:   "Resolve a provider identifier to its Wikidata id",
		Long: `Resolve converts an identifier of a provider with a path to Wikidata
(wikidata, gnd, wikipedia-*) into the Wikidata id of the same entity.

A GND number resolves only when exactly one Wikidata entity carries it.`,
		Example: `  resources resolve gnd 118561219
  resources resolve wikipedia-de 19843 -o json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := app.Client()
			if err != nil {
				return err
			}

			result := rc.Resolve(cmd.Context(), args[0], args[1])
			if result.IsFailed() {
				return result.Err()
			}
			return cmdutil.Print(cmd, app, Resolution{
				Provider: args[0],
				ID:       args[1],
				Status:   result.Status().String(),
				Wikidata: result.Value(),
				Reason:   result.Reason(),
			})
		},
	}
}
