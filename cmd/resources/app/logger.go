package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/kraenzle-ritter/resources/pkg/logging"
)

// NewLogger creates a configured logger based on the flags.
// Log level precedence (highest to lowest):
//  1. --log-level flag
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for warn)
//  4. LOG_LEVEL environment variable
//  5. Default (info)
func NewLogger(flags *Flags) zerolog.Logger {
	level := determineLogLevel(flags)

	return logging.NewLoggerFromConfig(&logging.Config{
		Level:      level,
		Format:     flags.LogFormat,
		Output:     flags.LogOutput,
		TimeFormat: "kitchen",
		NoColor:    flags.NoColor,
		AddCaller:  level == "debug" || level == "trace",
	})
}

// determineLogLevel applies the precedence rules of NewLogger.
func determineLogLevel(flags *Flags) string {
	if flags.LogLevel != "" {
		return checkedLogLevel(flags.LogLevel)
	}

	if flags.Verbose && flags.Quiet {
		fmt.Fprintf(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet\n")
		return "warn"
	}
	if flags.Verbose {
		return "debug"
	}
	if flags.Quiet {
		return "warn"
	}
	if flags.envLevel != "" {
		return checkedLogLevel(flags.envLevel)
	}
	return "info"
}

func checkedLogLevel(level string) string {
	validated := validateLogLevel(level)
	if validated != level {
		fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using %q\n", level, validated)
	}
	return validated
}

// validateLogLevel returns level if it is known and "info" otherwise.
func validateLogLevel(level string) string {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return level
	default:
		return "info"
	}
}
