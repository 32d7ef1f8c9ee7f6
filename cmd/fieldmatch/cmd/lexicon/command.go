// Package lexicon implements the lexicon command.
package lexicon

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/fieldmatch/cmd/application"
	"github.com/agentstation/fieldmatch/internal/cmd/cmdutil"
	"github.com/agentstation/fieldmatch/internal/cmd/output"
	"github.com/agentstation/fieldmatch/internal/cmd/table"
	"github.com/agentstation/fieldmatch/internal/config"
)

// Document is the structured form of the active lexicon.
type Document struct {
	Synonyms  [][]string        `json:"synonyms" yaml:"synonyms"`
	Overrides map[string]string `json:"overrides" yaml:"overrides"`
}

// NewCommand creates the lexicon command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var overridesOnly bool

	cmd := &cobra.Command{
		Use:     "lexicon",
		GroupID: "management",
		Short:   "Show synonym groups and manual overrides",
		Long: `Lexicon prints the synonym groups and manual overrides used for matching.
Without --lexicon-file the built-in customer-record lexicon is shown.`,
		Example: `  fieldmatch lexicon
  fieldmatch lexicon --lexicon-file lexicon.yaml -o yaml`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmdutil.BindFlags(cmd, config.KeyLexicon)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}

			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}
			if format == "" {
				format = output.DetectFormat("")
			}

			doc := Document{Synonyms: client.Lexicon().Groups(), Overrides: client.Overrides().Map()}
			if !output.Tabular(format) {
				return output.Write(app.Stdout(), format, doc, table.Data{})
			}
			if !overridesOnly {
				if err := output.Write(app.Stdout(), format, doc, table.SynonymsToTableData(client.Lexicon())); err != nil {
					return err
				}
			}
			return output.Write(app.Stdout(), format, doc, table.OverridesToTableData(client.Overrides()))
		},
	}

	cmd.Flags().String(cmdutil.FlagName(config.KeyLexicon), "", "Lexicon YAML file with synonyms and overrides")
	cmd.Flags().BoolVar(&overridesOnly, "overrides", false, "Only show manual overrides")

	return cmd
}
