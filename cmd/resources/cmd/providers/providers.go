// Package providers provides the providers command.
package providers

import (
	"github.com/spf13/cobra"

	"github.com/kraenzle-ritter/resources/cmd/application"
	"github.com/kraenzle-ritter/resources/internal/cmd/cmdutil"
	"github.com/kraenzle-ritter/resources/internal/cmd/output"
	"github.com/kraenzle-ritter/resources/pkg/errors"
)

// NewCommand creates the providers command.
func NewCommand(app application.Application) *cobra.Command {
	var searchable bool

	cmd := &cobra.Command{
		Use:     "providers [key]",
		GroupID: "management",
		Short:   "List the provider registry",
		Long: `Providers lists the authority systems of the registry with their
Wikidata property and URL template, or shows one provider in detail.`,
		Example: `  resources providers
  resources providers --searchable
  resources providers gnd -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := app.Client()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				key := args[0]
				p, ok := rc.Registry().Get(key)
				if !ok {
					return errors.NewNotFoundError("provider", key)
				}
				return cmdutil.Print(cmd, app, p)
			}

			items := rc.Registry().All()
			if searchable {
				items = rc.Searchable()
			}
			return cmdutil.Print(cmd, app, output.Providers{Items: items, Locale: app.Config().Locale})
		},
	}

	cmd.Flags().BoolVar(&searchable, "searchable", false, "only list providers with a search client")

	return cmd
}
