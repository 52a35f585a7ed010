// Package resources provides the resources command for managing stored
// resources by hand.
package resources

import (
	"github.com/spf13/cobra"

	"github.com/kraenzle-ritter/resources/cmd/application"
	"github.com/kraenzle-ritter/resources/internal/cmd/cmdutil"
	"github.com/kraenzle-ritter/resources/internal/cmd/output"
	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/resource"
)

// NewCommand creates the resources command and its subcommands.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resources",
		Aliases: []string{"res"},
		GroupID: "management",
		Short:   "List, add and delete stored resources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newAddCommand(app))
	cmd.AddCommand(newDeleteCommand(app))

	return cmd
}

func newListCommand(app application.Application) *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "list [<subject-type> <subject-id>]",
		Short: "List the resources of a subject or of a provider",
		Example: `  resources resources list person 42
  resources resources list --provider gnd`,
		Args: func(cmd *cobra.Command, args []string) error {
			if provider != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := app.Client()
			if err != nil {
				return err
			}

			var list []resource.Resource
			if provider != "" {
				list, err = rc.ResourcesByProvider(cmd.Context(), provider)
			} else {
				subject, serr := cmdutil.Subject(args[0], args[1])
				if serr != nil {
					return serr
				}
				list, err = rc.Resources(cmd.Context(), subject)
			}
			if err != nil {
				return err
			}
			return cmdutil.Print(cmd, app, output.Resources(list))
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "list every resource of this provider")

	return cmd
}

func newAddCommand(app application.Application) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "add <subject-type> <subject-id> <provider> <provider-id>",
		Short: "Store an identifier for a subject",
		Long: `Add stores one identifier, typically a chosen search hit, so that it can
seed a sync. An existing resource of the same provider is updated. The URL
is built from the provider's template unless given.`,
		Example: `  resources resources add person 42 gnd 118561219`,
		Args:    cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, err := cmdutil.Subject(args[0], args[1])
			if err != nil {
				return err
			}
			rc, err := app.Client()
			if err != nil {
				return err
			}

			r, err := rc.Save(cmd.Context(), subject, resource.Triple{
				Provider:   args[2],
				ProviderID: args[3],
				URL:        url,
			})
			if err != nil {
				return err
			}
			return cmdutil.Print(cmd, app, output.Resources{r})
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "URL of the identifier (default from the provider template)")

	return cmd
}

func newDeleteCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <resource-id>",
		Short: "Delete a stored resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := app.Client()
			if err != nil {
				return err
			}

			deleted, err := rc.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return errors.NewNotFoundError("resource", args[0])
			}
			cmdutil.Notice(cmd, "Deleted resource %s", args[0])
			return nil
		},
	}
}
