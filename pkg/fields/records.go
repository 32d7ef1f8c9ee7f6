package fields

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/fieldmatch/internal/matcher"
	"github.com/agentstation/fieldmatch/pkg/errors"
)

// Record is one row of a dataset with its keys in document order.
type Record = yaml.MapSlice

// ParseRecords decodes a JSON or YAML array of objects, keeping key order.
// name is only used in errors.
func ParseRecords(name string, data []byte) ([]Record, error) {
	var records []Record
	if err := yaml.UnmarshalWithOptions(data, &records, yaml.UseOrderedMap()); err != nil {
		return nil, errors.WrapParse(formatOf(name), name, err)
	}
	return records, nil
}

// LoadRecords reads a dataset file.
func LoadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return ParseRecords(path, data)
}

func formatOf(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".json") {
		return "json"
	}
	return "yaml"
}

// FromRecords builds a field set from the first record: its keys in order,
// each with its value as the sample. Fields rejected by filter are skipped.
// A missing first record, a null or non-scalar sample, or a filter that
// rejects everything is a MalformedInputError.
func FromRecords(system string, records []Record, filter *matcher.Filter) (*FieldSet, error) {
	if len(records) == 0 {
		return nil, errors.NewMalformedInputError(system, "", "dataset has no records")
	}

	var out []Field
	for _, item := range records[0] {
		name := Key(item.Key)
		if !filter.Allow(name) {
			continue
		}
		sample, ok := Stringify(item.Value)
		if !ok {
			return nil, errors.NewMalformedInputError(system, name, fmt.Sprintf("sample must be a scalar, got %T", item.Value))
		}
		out = append(out, Field{Name: name, Sample: sample})
	}
	if len(out) == 0 && len(records[0]) > 0 {
		return nil, errors.NewMalformedInputError(system, "", "every field was filtered out")
	}
	return New(system, out...)
}

// Key renders a record key as a field name.
func Key(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

// Stringify renders a scalar value. Nulls, maps and sequences are not
// scalars and report false.
func Stringify(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x), true
	default:
		return "", false
	}
}

// Value looks up key in rec.
func Value(rec Record, key string) (any, bool) {
	for _, item := range rec {
		if Key(item.Key) == key {
			return item.Value, true
		}
	}
	return nil, false
}

// StringValue looks up key in rec and renders it. Missing keys, nulls and
// non-scalars come back empty.
func StringValue(rec Record, key string) string {
	v, ok := Value(rec, key)
	if !ok {
		return ""
	}
	s, _ := Stringify(v)
	return s
}
