// Package match implements the match command.
package match

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/fieldmatch/cmd/application"
	"github.com/agentstation/fieldmatch/internal/cmd/alerts"
	"github.com/agentstation/fieldmatch/internal/cmd/cmdutil"
	"github.com/agentstation/fieldmatch/internal/cmd/output"
	"github.com/agentstation/fieldmatch/internal/cmd/table"
	"github.com/agentstation/fieldmatch/pkg/engine"
)

// NewCommand creates the match command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var showAudit bool
	var inputs *cmdutil.InputFlags

	cmd := &cobra.Command{
		Use:     "match",
		GroupID: "core",
		Short:   "Match target fields to source fields",
		Long: `Match reads the first record of each file and pairs every target field
with the best scoring source field.

Scores combine field-name similarity, type compatibility and sample-value
similarity. Synonyms from the lexicon score as near-exact matches and manual
overrides always win.`,
		Example: `  fieldmatch match -s crm.json -t billing.yaml
  fieldmatch match -s crm.json -t billing.yaml -o wide
  fieldmatch match -s crm.json -t billing.yaml --retrieval-top-k 3 --embedder gemini
  fieldmatch match -s crm.json -t billing.yaml --audit -o json`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmdutil.BindFlags(cmd, cmdutil.MatchKeys...)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := Run(cmd.Context(), app, inputs.Source, inputs.Target)
			if err != nil {
				return err
			}
			return Print(app, session.Result, showAudit)
		},
	}

	inputs = cmdutil.AddInputFlags(cmd)
	cmdutil.AddMatchFlags(cmd)
	cmd.Flags().BoolVar(&showAudit, "audit", false, "Print the audit trail instead of the matches")

	return cmd
}

// Print writes a match result in the configured format.
func Print(app application.Application, res *engine.Result, showAudit bool) error {
	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if format == "" {
		format = output.DetectFormat("")
	}

	if showAudit {
		err = output.Write(app.Stdout(), format, res.Audit, table.AuditToTableData(res.Audit))
	} else {
		err = output.Write(app.Stdout(), format, res, table.MatchesToTableData(res.Matches, format == output.FormatWide))
	}
	if err != nil {
		return err
	}

	if err := ReportWarnings(app, res.Warnings); err != nil {
		return err
	}
	if app.Quiet() || !output.Tabular(format) {
		return nil
	}
	s := res.Metadata.Stats
	summary := fmt.Sprintf("%d of %d target fields matched (%d manual, %d strong, %d moderate), %d source fields unused",
		s.Manual+s.Strong+s.Moderate, s.Targets, s.Manual, s.Strong, s.Moderate, s.UnmatchedSources)
	return alerts.NewWriterTo(app.Stderr(), !app.NoColor()).WriteAlert(alerts.NewInfo(summary))
}
