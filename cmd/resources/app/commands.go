package app

import (
	"github.com/spf13/cobra"

	"github.com/kraenzle-ritter/resources/cmd/resources/cmd/fetch"
	"github.com/kraenzle-ritter/resources/cmd/resources/cmd/providers"
	"github.com/kraenzle-ritter/resources/cmd/resources/cmd/resolve"
	resourcescmd "github.com/kraenzle-ritter/resources/cmd/resources/cmd/resources"
	"github.com/kraenzle-ritter/resources/cmd/resources/cmd/search"
	"github.com/kraenzle-ritter/resources/cmd/resources/cmd/serve"
	"github.com/kraenzle-ritter/resources/cmd/resources/cmd/sync"
	"github.com/kraenzle-ritter/resources/cmd/resources/cmd/version"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(resolve.NewCommand(a))
	rootCmd.AddCommand(sync.NewCommand(a))
	rootCmd.AddCommand(fetch.NewCommand(a))
	rootCmd.AddCommand(search.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(providers.NewCommand(a))
	rootCmd.AddCommand(resourcescmd.NewCommand(a))

	rootCmd.AddCommand(version.NewCommand(a))
}
