// Package fetch provides the fetch command, a bulk re-sync.
package fetch

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kraenzle-ritter/resources/cmd/application"
	"github.com/kraenzle-ritter/resources/internal/cmd/cmdutil"
	"github.com/kraenzle-ritter/resources/internal/cmd/output"
	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/sync"
)

// NewCommand creates the fetch command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		provider string
		exclude  []string
		dryRun   bool
		limit    int
		throttle time.Duration
	)

	cmd := &cobra.Command{
		Use:     "fetch --provider <provider>",
		GroupID: "core",
		Short:   "Re-sync every subject holding a resource of a provider",
		Long: `Fetch runs a sync for every subject that holds a resource of the given
provider, one subject at a time with a pause in between.

Only providers with a path to Wikidata (wikidata, gnd, wikipedia-*) or
metagrid can seed a bulk sync. Interrupting the command stops it after
the current subject.`,
		Example: `  resources fetch --provider gnd
  resources fetch --provider wikipedia-de --limit 100 --throttle 2s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if provider == "" {
				return errors.NewValidationError("provider", provider, "--provider is required")
			}
			rc, err := app.Client()
			if err != nil {
				return err
			}

			opts := []sync.Option{
				sync.WithExclude(exclude...),
				sync.WithDryRun(dryRun),
				sync.WithLimit(limit),
			}
			if cmd.Flags().Changed("throttle") {
				opts = append(opts, sync.WithThrottle(throttle))
			}

			batch, err := rc.SyncAll(cmd.Context(), provider, opts...)
			if err != nil {
				return err
			}
			cmdutil.Notice(cmd, "%s", batch.Summary())
			return cmdutil.Print(cmd, app, output.NewBatchReport(batch))
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "seed provider whose resources are re-synced")
	cmdutil.AddExcludeFlag(cmd, &exclude)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be stored without writing")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum number of subjects (0 means all)")
	cmd.Flags().DurationVar(&throttle, "throttle", 0, "pause between subjects (default from configuration)")

	return cmd
}
