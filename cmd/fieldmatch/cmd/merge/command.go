// Package merge implements the merge command.
package merge

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/fieldmatch/cmd/application"
	"github.com/agentstation/fieldmatch/cmd/fieldmatch/cmd/match"
	"github.com/agentstation/fieldmatch/internal/cmd/alerts"
	"github.com/agentstation/fieldmatch/internal/cmd/cmdutil"
	"github.com/agentstation/fieldmatch/internal/cmd/output"
	"github.com/agentstation/fieldmatch/internal/cmd/table"
	"github.com/agentstation/fieldmatch/internal/config"
	pkgmerge "github.com/agentstation/fieldmatch/pkg/merge"
)

// NewCommand creates the merge command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var inputs *cmdutil.InputFlags
	var mergeFlags *cmdutil.MergeFlags

	cmd := &cobra.Command{
		Use:     "merge",
		GroupID: "core",
		Short:   "Match two record files and merge their records",
		Long: `Merge matches the fields of both files, approves every strong and manual
match, and joins the records on a key field. Each source record produces one
merged record whose columns are the approved matches followed by the
remaining source and target fields. Source values win; empty source values
are filled from the joined target record.

The merged records are validated afterwards and any issue is reported.`,
		Example: `  fieldmatch merge -s crm.json -t billing.yaml
  fieldmatch merge -s crm.json -t billing.yaml --approve-moderate -o json
  fieldmatch merge -s crm.json -t billing.yaml --join-key customer_id`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			keys := append(append([]string{}, cmdutil.MatchKeys...), cmdutil.MergeKeys...)
			return cmdutil.BindFlags(cmd, keys...)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := match.Run(cmd.Context(), app, inputs.Source, inputs.Target)
			if err != nil {
				return err
			}
			if err := session.Result.ApplyDefaultDecisions(viper.GetBool(config.KeyApproveModerate)); err != nil {
				return err
			}

			var opts []pkgmerge.Option
			if key := viper.GetString(config.KeyJoinKey); key != "" {
				opts = append(opts, pkgmerge.WithJoinKey(key))
			}
			if mergeFlags.TargetJoinKey != "" {
				opts = append(opts, pkgmerge.WithTargetJoinKey(mergeFlags.TargetJoinKey))
			}

			out, err := session.Client.Merge(session.Source, session.Target, session.Result, opts...)
			if err != nil {
				return err
			}
			return printOutput(app, out, session.Result.Warnings)
		},
	}

	inputs = cmdutil.AddInputFlags(cmd)
	cmdutil.AddMatchFlags(cmd)
	mergeFlags = cmdutil.AddMergeFlags(cmd)

	return cmd
}

func printOutput(app application.Application, out *pkgmerge.Output, warnings []string) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}

	if err := output.Write(app.Stdout(), format, out, table.RecordsToTableData(out.Fields, out.Records)); err != nil {
		return err
	}
	if err := match.ReportWarnings(app, warnings); err != nil {
		return err
	}
	if app.Quiet() || !output.Tabular(format) {
		return nil
	}

	w := alerts.NewWriterTo(app.Stderr(), !app.NoColor())
	summary := fmt.Sprintf("Merged %d records into %d columns", len(out.Records), len(out.Fields))
	if out.Unpaired > 0 {
		summary += fmt.Sprintf(" (%d without a target record)", out.Unpaired)
	}
	if err := w.WriteAlert(alerts.NewSuccess(summary)); err != nil {
		return err
	}
	if len(out.Issues) == 0 {
		return nil
	}
	details := make([]string, 0, len(out.Issues))
	for _, issue := range out.Issues {
		details = append(details, fmt.Sprintf("row %d: %s", issue.Row, issue.Message))
	}
	return w.WriteAlert(alerts.NewWarning(fmt.Sprintf("%d data-quality issues in merged output", len(out.Issues))).WithDetails(details...))
}
