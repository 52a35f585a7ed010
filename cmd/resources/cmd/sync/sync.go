// Package sync provides the sync command.
package sync

import (
	"github.com/spf13/cobra"

	"github.com/kraenzle-ritter/resources/cmd/application"
	"github.com/kraenzle-ritter/resources/internal/cmd/cmdutil"
	"github.com/kraenzle-ritter/resources/internal/cmd/output"
	"github.com/kraenzle-ritter/resources/pkg/sync"
)

// NewCommand creates the sync command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		exclude []string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:     "sync <subject-type> <subject-id> <seed-provider>",
		GroupID: "core",
		Short:   "Derive a subject's identifiers from one it holds",
		Long: `Sync reads the subject's stored resource of the seed provider, resolves
it to Wikidata (or expands it through Metagrid) and stores the
identifiers found for every other provider.

Existing resources of a provider are updated, never duplicated.`,
		Example: `  resources sync person 42 gnd
  resources sync person 42 gnd --exclude viaf,wikipedia-fr
  resources sync person 42 metagrid --dry-run`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, err := cmdutil.Subject(args[0], args[1])
			if err != nil {
				return err
			}
			rc, err := app.Client()
			if err != nil {
				return err
			}

			result := rc.Sync(cmd.Context(), subject, args[2],
				sync.WithExclude(exclude...),
				sync.WithDryRun(dryRun),
			)
			cmdutil.Notice(cmd, "%s", result.Summary())
			if err := cmdutil.Print(cmd, app, output.NewSyncReport(result)); err != nil {
				return err
			}
			if result.Err != nil {
				return result.Err
			}
			return nil
		},
	}

	cmdutil.AddExcludeFlag(cmd, &exclude)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be stored without writing")

	return cmd
}
