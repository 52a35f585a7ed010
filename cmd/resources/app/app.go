// Package app provides the application context and dependency management
// for the resources CLI. It centralizes configuration, logging and the
// lifecycle of the shared resources client.
package app

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/kraenzle-ritter/resources"
	"github.com/kraenzle-ritter/resources/internal/config"
	"github.com/kraenzle-ritter/resources/pkg/errors"
)

// App represents the resources application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Command-line flags and logging settings
	flags *Flags

	// Runtime configuration, loaded once the flags are parsed
	config *config.Config

	logger  *zerolog.Logger
	metrics *prometheus.Registry

	// Client instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	client resources.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		flags:   LoadFlags(),
		config:  config.Defaults(),
		metrics: prometheus.NewRegistry(),
	}
	app.metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	logger := NewLogger(app.flags)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the runtime configuration.
func (a *App) Config() *config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Metrics returns the registry behind the /metrics endpoint.
func (a *App) Metrics() prometheus.Gatherer {
	return a.metrics
}

// OutputFormat returns the --format flag.
func (a *App) OutputFormat() string {
	return a.flags.Format
}

// Client returns the resources client, creating it lazily if needed.
// This is thread-safe and ensures only one instance is created.
func (a *App) Client() (resources.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		rc := a.client
		a.mu.RUnlock()
		return rc, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.client != nil {
		return a.client, nil
	}

	rc, err := resources.New(a.config.Options(a.version, a.metrics)...)
	if err != nil {
		return nil, errors.NewConfigError("client", "creating resources client", err)
	}

	a.client = rc
	return rc, nil
}

// Shutdown closes the client's store and cache.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	rc := a.client
	a.client = nil
	a.mu.Unlock()

	if rc == nil {
		return nil
	}
	if err := rc.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close resources client during shutdown")
		return err
	}
	return nil
}

// loadConfig reads the runtime configuration once the --config flag is
// known.
func (a *App) loadConfig() error {
	cfg, err := config.Load(config.LoadOptions{File: a.flags.ConfigFile})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.config = cfg
	if cfg.File != "" {
		a.logger.Debug().Str("file", cfg.File).Msg("Loaded configuration")
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration and skips loading one.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) error {
		a.config = cfg
		a.flags.skipLoad = true
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom client instance (useful for testing).
func WithClient(rc resources.Client) Option {
	return func(a *App) error {
		a.client = rc
		return nil
	}
}
