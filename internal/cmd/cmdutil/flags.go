// Package cmdutil provides flag groups shared by the fieldmatch commands.
package cmdutil

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agentstation/fieldmatch/internal/config"
	"github.com/agentstation/fieldmatch/pkg/constants"
)

// InputFlags names the two datasets of a command.
type InputFlags struct {
	Source string
	Target string
}

// AddInputFlags adds required --source and --target flags.
func AddInputFlags(cmd *cobra.Command) *InputFlags {
	flags := &InputFlags{}

	cmd.Flags().StringVarP(&flags.Source, "source", "s", "",
		"Source records file (JSON or YAML array of objects)")
	cmd.Flags().StringVarP(&flags.Target, "target", "t", "",
		"Target records file (JSON or YAML array of objects)")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")

	return flags
}

// MatchKeys are the config keys AddMatchFlags exposes as flags.
var MatchKeys = []string{
	config.KeyLexicon, config.KeyEmbedder, config.KeyModel, config.KeyProject,
	config.KeyLocation, config.KeyTopK, config.KeyCacheTTL, config.KeyInclude, config.KeyExclude,
}

// AddMatchFlags adds engine flags to a command. Call BindFlags from the
// command's PreRunE so config files and the environment fill the gaps.
func AddMatchFlags(cmd *cobra.Command) {
	fs := pflag.NewFlagSet("match", pflag.ContinueOnError)

	fs.String(FlagName(config.KeyLexicon), "", "Lexicon YAML file with synonyms and overrides")
	fs.String(FlagName(config.KeyEmbedder), config.EmbedderNGram, "Sample embedder: ngram, gemini or none")
	fs.String(FlagName(config.KeyModel), "", "Gemini embedding model")
	fs.String(FlagName(config.KeyProject), "", "Google Cloud project for Vertex AI embeddings")
	fs.String(FlagName(config.KeyLocation), "", "Google Cloud location for Vertex AI embeddings")
	fs.Int(FlagName(config.KeyTopK), 0, "Restrict each target to the K nearest source fields (0 disables)")
	fs.Duration(FlagName(config.KeyCacheTTL), 0, "Cache embeddings for this long (0 disables)")
	fs.StringSlice(FlagName(config.KeyInclude), nil, "Only match fields matching these patterns")
	fs.StringSlice(FlagName(config.KeyExclude), nil, "Skip fields matching these patterns")

	cmd.Flags().AddFlagSet(fs)
}

// MergeFlags configures the merge step.
type MergeFlags struct {
	TargetJoinKey string
}

// MergeKeys are the config keys AddMergeFlags exposes as flags.
var MergeKeys = []string{config.KeyJoinKey, config.KeyApproveModerate}

// AddMergeFlags adds merge flags to a command.
func AddMergeFlags(cmd *cobra.Command) *MergeFlags {
	flags := &MergeFlags{}

	cmd.Flags().String(FlagName(config.KeyJoinKey), constants.DefaultJoinKey, "Source field used to pair records")
	cmd.Flags().StringVar(&flags.TargetJoinKey, "target-join-key", "",
		"Target field used to pair records (default: the target matched to --join-key)")
	cmd.Flags().Bool(FlagName(config.KeyApproveModerate), false, "Approve moderate matches as well as strong ones")

	return flags
}

// BindFlags binds the flags for keys on cmd to Viper. Binding happens per
// invocation because several commands share the same keys.
func BindFlags(cmd *cobra.Command, keys ...string) error {
	for _, key := range keys {
		if f := cmd.Flags().Lookup(FlagName(key)); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// FlagName converts a config key to its command-line spelling.
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}
