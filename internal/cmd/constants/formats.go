// Package constants provides shared constants for CLI commands.
package constants

// Output format constants used throughout the CLI.
const (
	// FormatTable is the default table output format.
	FormatTable = "table"

	// FormatWide is an extended table format with the score breakdown.
	FormatWide = "wide"

	// FormatJSON outputs data as JSON.
	FormatJSON = "json"

	// FormatYAML outputs data as YAML.
	FormatYAML = "yaml"

	// FormatMarkdown outputs as markdown table.
	FormatMarkdown = "markdown"
)

// Exit codes.
const (
	// ExitOK is returned when the command succeeded.
	ExitOK = 0

	// ExitError is returned for usage, input and runtime failures.
	ExitError = 1

	// ExitIssues is returned by validate when data-quality issues were found.
	ExitIssues = 2
)
