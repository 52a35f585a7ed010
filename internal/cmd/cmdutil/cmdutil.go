// Package cmdutil provides helpers shared by the resources commands.
package cmdutil

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kraenzle-ritter/resources/cmd/application"
	"github.com/kraenzle-ritter/resources/internal/cmd/output"
	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/resource"
)

// Print writes data to the command's output in the application's format.
func Print(cmd *cobra.Command, app application.Application, data any) error {
	return output.Print(cmd.OutOrStdout(), app.OutputFormat(), data)
}

// Subject builds and validates a subject from a type and an id argument.
func Subject(subjectType, id string) (resource.Subject, error) {
	s := resource.NewSubject(subjectType, id)
	return s, s.Validate()
}

// ParseFilters turns repeated key=value flags into a map.
func ParseFilters(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filters := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.NewValidationError("filter", pair, "expected key=value")
		}
		filters[key] = strings.TrimSpace(value)
	}
	return filters, nil
}

// AddExcludeFlag adds the --exclude flag shared by sync and fetch.
func AddExcludeFlag(cmd *cobra.Command, target *[]string) {
	cmd.Flags().StringSliceVarP(target, "exclude", "x", nil,
		"providers that must not be created or updated (comma separated, repeatable)")
}

// Notice writes a line to the command's error stream so it stays out of
// machine-readable output.
func Notice(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}
