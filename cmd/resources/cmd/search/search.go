// Package search provides the search command.
package search

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/kraenzle-ritter/resources/cmd/application"
	"github.com/kraenzle-ritter/resources/internal/cmd/cmdutil"
	"github.com/kraenzle-ritter/resources/internal/cmd/output"
	"github.com/kraenzle-ritter/resources/pkg/search"
)

// NewCommand creates the search command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		limit   int
		locale  string
		filters []string
	)

	cmd := &cobra.Command{
		Use:     "search <provider> <query>...",
		GroupID: "core",
		Short:   "Search a provider by name",
		Long: `Search runs a free-text query against one provider's search API and
lists the hits. A chosen hit can be stored with "resources resources add".

Searchable providers: gnd, wikidata, wikipedia-*, geonames, metagrid.
Geonames needs geonames.username in the configuration.`,
		Example: `  resources search gnd Gottfried Keller
  resources search wikipedia-fr Zurich --limit 10
  resources search geonames Zürich --filter countryBias=CH`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := cmdutil.ParseFilters(filters)
			if err != nil {
				return err
			}
			rc, err := app.Client()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("limit") {
				limit = app.Config().Limit
			}
			result := rc.Search(cmd.Context(), args[0], strings.Join(args[1:], " "), search.Options{
				Limit:   limit,
				Locale:  locale,
				Filters: parsed,
			})
			if result.IsFailed() {
				return result.Err()
			}
			if result.IsEmpty() {
				cmdutil.Notice(cmd, "No results found")
			}
			return cmdutil.Print(cmd, app, output.SearchResults(result.Value()))
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum number of hits (default from configuration)")
	cmd.Flags().StringVar(&locale, "locale", "", "locale of labels and descriptions (default from configuration)")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "provider-specific filter as key=value (repeatable)")

	return cmd
}
