// Package emoji provides symbol constants for CLI output.
package emoji

// Symbols used for status columns and alerts.
const (
	// Success marks strong matches and completed operations.
	Success = "✓"

	// Manual marks matches forced by a manual override.
	Manual = "★"

	// Warning marks moderate matches and non-fatal problems.
	Warning = "!"

	// Error marks missing matches and failures.
	Error = "✗"

	// Info marks informational messages.
	Info = "i"

	// Unknown marks an unrecognized status.
	Unknown = "?"
)
