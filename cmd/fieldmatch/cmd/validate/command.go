// Package validate implements the validate command.
package validate

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentstation/fieldmatch/cmd/application"
	"github.com/agentstation/fieldmatch/internal/cmd/alerts"
	"github.com/agentstation/fieldmatch/internal/cmd/cmdutil"
	"github.com/agentstation/fieldmatch/internal/cmd/constants"
	"github.com/agentstation/fieldmatch/internal/cmd/output"
	"github.com/agentstation/fieldmatch/internal/cmd/table"
	"github.com/agentstation/fieldmatch/internal/config"
	"github.com/agentstation/fieldmatch/pkg/errors"
	"github.com/agentstation/fieldmatch/pkg/fields"
	"github.com/agentstation/fieldmatch/pkg/quality"
)

// NewCommand creates the validate command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "validate FILE...",
		GroupID: "core",
		Short:   "Report missing values and type mismatches in record files",
		Long: `Validate checks every record of each file against the field types inferred
from its first record. A missing, null or empty value and a value of another
type are reported.

The command exits with status 2 when any issue is found.`,
		Example: `  fieldmatch validate crm.json
  fieldmatch validate crm.json billing.yaml -o json`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmdutil.BindFlags(cmd, config.KeyInclude, config.KeyExclude)
		},
		RunE: func(_ *cobra.Command, args []string) error {
			return run(app, args)
		},
	}

	cmd.Flags().StringSlice(cmdutil.FlagName(config.KeyInclude), nil, "Only check fields matching these patterns")
	cmd.Flags().StringSlice(cmdutil.FlagName(config.KeyExclude), nil, "Skip fields matching these patterns")

	return cmd
}

func run(app application.Application, paths []string) error {
	client, err := app.Client()
	if err != nil {
		return err
	}

	issues := make([]quality.Issue, 0)
	for _, path := range paths {
		records, err := fields.LoadRecords(path)
		if err != nil {
			return err
		}
		found, err := client.Validate(filepath.Base(path), records)
		if err != nil {
			return err
		}
		app.Logger().Debug().Str("file", path).Int("records", len(records)).Int("issues", len(found)).Msg("Validated")
		issues = append(issues, found...)
	}

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}

	if len(issues) == 0 {
		if !output.Tabular(format) {
			return output.Write(app.Stdout(), format, issues, table.Data{})
		}
		if app.Quiet() {
			return nil
		}
		return alerts.NewWriterTo(app.Stdout(), !app.NoColor()).WriteAlert(alerts.NewSuccess("No data-quality issues found"))
	}

	if err := output.Write(app.Stdout(), format, issues, table.IssuesToTableData(issues)); err != nil {
		return err
	}
	return &cmdutil.ExitError{
		Code: constants.ExitIssues,
		Err:  errors.New(summarize(issues)),
	}
}

func summarize(issues []quality.Issue) string {
	counts := quality.Summary(issues)
	return fmt.Sprintf("found %d data-quality issues (%d missing, %d type mismatch, %d not scalar)",
		len(issues), counts[quality.Missing], counts[quality.TypeMismatch], counts[quality.NotScalar])
}
