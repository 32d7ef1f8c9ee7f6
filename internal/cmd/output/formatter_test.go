package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/fieldmatch/internal/cmd/table"
)

type row struct {
	TargetField string `json:"target_field"`
	Score       string `json:"score,omitempty"`
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":         "",
		"JSON":     FormatJSON,
		"wide":     FormatWide,
		"markdown": FormatMarkdown,
		"md":       FormatMarkdown,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("csv")
	require.Error(t, err)
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, []row{{TargetField: "email", Score: "1.00"}}))
	assert.JSONEq(t, `[{"target_field":"email","score":"1.00"}]`, buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, map[string]int{"targets": 3}))
	assert.Equal(t, "targets: 3\n", buf.String())
}

func TestTableFormatterRendersTableData(t *testing.T) {
	var buf bytes.Buffer
	data := table.Data{
		Headers: []string{"Target Field", "Score"},
		Rows:    [][]string{{"email", "1.00"}},
	}
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, data))
	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "TARGET FIELD")
	assert.Contains(t, out, "email")
	assert.Contains(t, out, "1.00")
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	data := table.Data{
		Headers: []string{"Target Field", "Score"},
		Rows:    [][]string{{"email", "1.00"}},
	}
	require.NoError(t, NewFormatter(FormatMarkdown).Format(&buf, data))
	out := buf.String()
	assert.Contains(t, out, "|")
	assert.Contains(t, out, "Target Field")
	assert.Contains(t, out, "email")
}

func TestWriteChoosesShape(t *testing.T) {
	tab := table.Data{Headers: []string{"A"}, Rows: [][]string{{"tabular"}}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, map[string]string{"a": "raw"}, tab))
	assert.Contains(t, buf.String(), "raw")
	assert.NotContains(t, buf.String(), "tabular")

	buf.Reset()
	require.NoError(t, Write(&buf, FormatTable, map[string]string{"a": "raw"}, tab))
	assert.Contains(t, buf.String(), "tabular")
}
