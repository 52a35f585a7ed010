package app

import (
	"os"
)

// Flags holds the global command-line flags and the logging settings.
// The runtime configuration itself lives in internal/config.
type Flags struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	envLevel string
	skipLoad bool
}

// LoadFlags returns the flag defaults, taking logging settings from
// LOG_LEVEL, LOG_FORMAT and LOG_OUTPUT.
func LoadFlags() *Flags {
	return &Flags{
		NoColor:   os.Getenv("NO_COLOR") != "",
		envLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}
}

// UpdateFromFlags updates values from parsed command flags, which take
// precedence over the environment.
func (f *Flags) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	f.Verbose = verbose
	f.Quiet = quiet
	f.NoColor = f.NoColor || noColor
	if format != "" {
		f.Format = format
	}
	if logLevel != "" {
		f.LogLevel = logLevel
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
