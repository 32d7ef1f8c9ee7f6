package output

import (
	"io"

	"github.com/agentstation/fieldmatch/internal/cmd/table"
)

// Tabular reports whether format renders table.Data rather than the raw value.
func Tabular(format Format) bool {
	switch format {
	case FormatTable, FormatWide, FormatMarkdown, "":
		return true
	default:
		return false
	}
}

// Write renders raw for structured formats and tab for tabular ones.
func Write(w io.Writer, format Format, raw any, tab table.Data) error {
	formatter := NewFormatter(format)
	if Tabular(format) {
		return formatter.Format(w, tab)
	}
	return formatter.Format(w, raw)
}
