// Package serve provides the serve command.
package serve

import (
	"github.com/spf13/cobra"

	"github.com/kraenzle-ritter/resources/cmd/application"
	"github.com/kraenzle-ritter/resources/internal/server"
)

// NewCommand creates the serve command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		host      string
		port      int
		prefix    string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "core",
		Short:   "Serve the HTTP API",
		Long: `Serve exposes resolve, search, sync and the stored resources over a JSON
API, with Prometheus metrics on /metrics.

  GET    /health
  GET    /metrics
  GET    /api/v1/providers[/{key}]
  GET    /api/v1/resolve/{provider}/{id}
  GET    /api/v1/search/{provider}?q=&limit=&locale=
  GET    /api/v1/subjects/{type}/{id}/resources
  POST   /api/v1/subjects/{type}/{id}/resources
  POST   /api/v1/subjects/{type}/{id}/sync/{provider}?exclude=&dry_run=
  DELETE /api/v1/resources/{id}`,
		Example: `  resources serve
  resources serve --host 0.0.0.0 --port 9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := app.Client()
			if err != nil {
				return err
			}

			cfg := server.DefaultConfig()
			cfg.Host = app.Config().Server.Host
			cfg.Port = app.Config().Server.Port
			cfg.Version = app.Version()
			cfg.MetricsEnabled = !noMetrics
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if prefix != "" {
				cfg.PathPrefix = prefix
			}

			return server.New(rc, app.Metrics(), app.Logger(), cfg).ListenAndServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (default from configuration)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from configuration)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "API path prefix (default /api/v1)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}
