// Package application provides the application interface for resources
// commands.
//
// Commands accept this interface rather than the concrete App type so they
// can be tested with Mock:
//
//	func NewCommand(app application.Application) *cobra.Command {
//	    return &cobra.Command{
//	        RunE: func(cmd *cobra.Command, args []string) error {
//	            rc, err := app.Client()
//	            if err != nil {
//	                return err
//	            }
//	            result := rc.Resolve(cmd.Context(), args[0], args[1])
//	            // ...
//	        },
//	    }
//	}
package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/kraenzle-ritter/resources"
	"github.com/kraenzle-ritter/resources/internal/config"
)

// Application provides what commands need from the CLI application.
//
// Thread Safety: All methods must be safe for concurrent access.
type Application interface {
	// Client returns the resources client, created on first use and
	// shared by every command of the process.
	Client() (resources.Client, error)

	// Metrics returns the registry the client's collectors are registered
	// with, for the /metrics endpoint.
	Metrics() prometheus.Gatherer

	// Config returns the loaded runtime configuration.
	Config() *config.Config

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the requested output format (table, json, yaml)
	// or "" to detect it from the terminal.
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
