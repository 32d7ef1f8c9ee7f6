// Package table converts match results, audit trails and reports into rows
// for tabular output.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/fieldmatch/internal/cmd/emoji"
	"github.com/agentstation/fieldmatch/pkg/audit"
	"github.com/agentstation/fieldmatch/pkg/constants"
	"github.com/agentstation/fieldmatch/pkg/engine"
	"github.com/agentstation/fieldmatch/pkg/fields"
	"github.com/agentstation/fieldmatch/pkg/lexicon"
	"github.com/agentstation/fieldmatch/pkg/quality"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

const maxSampleWidth = 32

// MatchesToTableData converts match results to table format. Wide output
// adds the score breakdown, the method and both samples.
func MatchesToTableData(matches []engine.MatchResult, wide bool) Data {
	headers := []string{"Target Field", "Source Field", "Score", "Status"}
	align := []Align{AlignLeft, AlignLeft, AlignRight, AlignLeft}
	if wide {
		headers = append(headers, "Field", "Type", "Sample", "External", "Method", "Target Sample", "Source Sample")
		align = append(align, AlignRight, AlignRight, AlignRight, AlignRight, AlignLeft, AlignLeft, AlignLeft)
	}

	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		row := []string{
			m.TargetField,
			m.SourceField,
			FormatScore(m.Score),
			StatusSymbol(m.Status) + " " + string(m.Status),
		}
		if wide {
			row = append(row,
				FormatScore(m.FieldSimilarity),
				FormatScore(m.TypeSimilarity),
				FormatScore(m.SampleSimilarity),
				FormatScore(m.ExternalScore),
				string(m.Method),
				Truncate(m.TargetSample, maxSampleWidth),
				Truncate(m.SourceSample, maxSampleWidth),
			)
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// AuditToTableData converts audit entries to table format.
func AuditToTableData(entries []audit.Entry) Data {
	headers := []string{"ID", "Timestamp", "Target Field", "Source Field", "Method", "Score", "Status", "Decision"}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		decision := string(e.Decision)
		if decision == "" {
			decision = "-"
		}
		rows = append(rows, []string{
			e.ID.String()[:8],
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.TargetField,
			e.SourceField,
			string(e.Method),
			FormatScore(e.Score),
			e.Status,
			decision,
		})
	}

	return Data{Headers: headers, Rows: rows}
}

// IssuesToTableData converts data-quality issues to table format.
func IssuesToTableData(issues []quality.Issue) Data {
	headers := []string{"System", "Row", "Field", "Kind", "Message"}
	align := []Align{AlignLeft, AlignRight, AlignLeft, AlignLeft, AlignLeft}

	rows := make([][]string, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, []string{
			issue.System,
			strconv.Itoa(issue.Row),
			issue.Field,
			Title(string(issue.Kind)),
			issue.Message,
		})
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// SynonymsToTableData lists every synonym group of a lexicon.
func SynonymsToTableData(lex *lexicon.Lexicon) Data {
	groups := lex.Groups()
	rows := make([][]string, 0, len(groups))
	for i, g := range groups {
		rows = append(rows, []string{strconv.Itoa(i + 1), strings.Join(g, ", ")})
	}
	return Data{
		Headers:         []string{"Group", "Terms"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft},
	}
}

// OverridesToTableData lists manual overrides sorted by target field.
func OverridesToTableData(o lexicon.Overrides) Data {
	targets := o.Targets()
	rows := make([][]string, 0, len(targets))
	for _, t := range targets {
		source, _ := o.Lookup(t)
		rows = append(rows, []string{t, source})
	}
	return Data{Headers: []string{"Target Field", "Source Field"}, Rows: rows}
}

// RecordsToTableData renders records with one column per field.
func RecordsToTableData(columns []string, records []fields.Record) Data {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(columns))
		for i, c := range columns {
			v, ok := fields.Value(rec, c)
			if !ok || v == nil {
				row[i] = "-"
				continue
			}
			s, _ := fields.Stringify(v)
			row[i] = Truncate(s, maxSampleWidth)
		}
		rows = append(rows, row)
	}
	return Data{Headers: columns, Rows: rows}
}

// FormatScore renders a score with two decimals, or n/a when absent.
func FormatScore(score *float64) string {
	if score == nil {
		return constants.NotApplicable
	}
	return fmt.Sprintf("%.2f", *score)
}

// StatusSymbol returns the symbol shown next to a status.
func StatusSymbol(status engine.Status) string {
	switch status {
	case engine.StrongManual:
		return emoji.Manual
	case engine.Strong:
		return emoji.Success
	case engine.Moderate:
		return emoji.Warning
	case engine.NoMatch, engine.WeakIncorrect:
		return emoji.Error
	default:
		return emoji.Unknown
	}
}

// Title turns a snake_case identifier into title case words.
func Title(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
