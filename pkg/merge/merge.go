// Package merge applies reviewed field mappings to two datasets and produces
// unified records.
//
// Source and target rows are paired on a join key compared
// case-insensitively. Approved mappings become one column named after the
// source field, filled from the source row and falling back to the target
// row when the source value is empty. Every other field is carried through
// from its own side.
package merge

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/fieldmatch/pkg/audit"
	"github.com/agentstation/fieldmatch/pkg/constants"
	"github.com/agentstation/fieldmatch/pkg/engine"
	"github.com/agentstation/fieldmatch/pkg/errors"
	"github.com/agentstation/fieldmatch/pkg/fields"
	"github.com/agentstation/fieldmatch/pkg/quality"
)

// MergedSystem names merged output in quality issues.
const MergedSystem = "Merged Output"

// Dataset is a field set together with all of its rows.
type Dataset struct {
	Fields  *fields.FieldSet
	Records []fields.Record
}

// Mapping pairs a target field with the source field it was approved for.
type Mapping struct {
	Target string `json:"target" yaml:"target"`
	Source string `json:"source" yaml:"source"`
}

// Plan is what a reviewed result means for the merge. Fields outside an
// approved mapping, rejected ones included, are carried through unchanged.
type Plan struct {
	Approved []Mapping
}

// PlanFrom reads the approved pairs recorded on res.
func PlanFrom(res *engine.Result) Plan {
	var p Plan
	for i, m := range res.Matches {
		if res.Decision(i) == audit.Approve && m.Paired() {
			p.Approved = append(p.Approved, Mapping{Target: m.TargetField, Source: m.SourceField})
		}
	}
	return p
}

// Option configures Merge.
type Option func(*options) error

type options struct {
	joinKey       string
	targetJoinKey string
}

// WithJoinKey sets the source field rows are joined on.
func WithJoinKey(key string) Option {
	return func(o *options) error {
		if key == "" {
			return errors.NewValidationError("join_key", key, "must not be empty")
		}
		o.joinKey = key
		return nil
	}
}

// WithTargetJoinKey sets the target field rows are joined on. By default it
// is the target field approved for the source join key, or a target field of
// the same name.
func WithTargetJoinKey(key string) Option {
	return func(o *options) error {
		o.targetJoinKey = key
		return nil
	}
}

// Output is the merged dataset and its post-merge validation.
type Output struct {
	Fields   []string        `json:"fields" yaml:"fields"`
	Records  []fields.Record `json:"records" yaml:"records"`
	Issues   []quality.Issue `json:"issues" yaml:"issues"`
	Unpaired int             `json:"unpaired" yaml:"unpaired"`
}

// MarshalJSON keeps the column order of every record.
func (o Output) MarshalJSON() ([]byte, error) {
	records := make([]json.RawMessage, 0, len(o.Records))
	for _, rec := range o.Records {
		raw, err := fields.RecordJSON(rec)
		if err != nil {
			return nil, err
		}
		records = append(records, raw)
	}
	return json.Marshal(struct {
		Fields   []string          `json:"fields"`
		Records  []json.RawMessage `json:"records"`
		Issues   []quality.Issue   `json:"issues"`
		Unpaired int               `json:"unpaired"`
	}{o.Fields, records, o.Issues, o.Unpaired})
}

// Merge emits one record per source row.
func Merge(source, target Dataset, plan Plan, opts ...Option) (*Output, error) {
	o := &options{joinKey: constants.DefaultJoinKey}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}
	if source.Fields == nil || target.Fields == nil {
		return nil, errors.NewMalformedInputError("merge", "", "both datasets need fields")
	}
	if !source.Fields.Has(o.joinKey) {
		return nil, errors.NewValidationError("join_key", o.joinKey, "not a source field")
	}

	targetKey := o.targetJoinKey
	if targetKey == "" {
		targetKey = o.joinKey
		for _, m := range plan.Approved {
			if m.Source == o.joinKey {
				targetKey = m.Target
				break
			}
		}
	}
	if !target.Fields.Has(targetKey) {
		return nil, errors.NewValidationError("target_join_key", targetKey, "not a target field")
	}

	index := make(map[string]fields.Record, len(target.Records))
	for _, rec := range target.Records {
		k := strings.ToLower(fields.StringValue(rec, targetKey))
		if _, dup := index[k]; !dup && k != "" {
			index[k] = rec
		}
	}

	columns := layout(source.Fields, target.Fields, plan)
	out := &Output{Records: make([]fields.Record, 0, len(source.Records))}
	for _, c := range columns {
		out.Fields = append(out.Fields, c.name)
	}

	for _, row := range source.Records {
		match, ok := index[strings.ToLower(fields.StringValue(row, o.joinKey))]
		if !ok {
			out.Unpaired++
		}
		merged := make(fields.Record, 0, len(columns))
		for _, c := range columns {
			merged = append(merged, yaml.MapItem{Key: c.name, Value: c.value(row, match)})
		}
		out.Records = append(out.Records, merged)
	}

	if len(out.Records) > 0 && len(columns) > 0 {
		set, err := mergedFieldSet(out.Records[0])
		if err != nil {
			return nil, err
		}
		out.Issues = quality.Validate(MergedSystem, out.Records, set)
	}
	return out, nil
}

type column struct {
	name   string
	source string
	target string
}

func (c column) value(sourceRow, targetRow fields.Record) any {
	var fallback any
	if c.source != "" {
		if v, ok := fields.Value(sourceRow, c.source); ok {
			if !empty(v) || c.target == "" {
				return v
			}
			fallback = v
		}
	}
	if c.target != "" && targetRow != nil {
		if v, ok := fields.Value(targetRow, c.target); ok && (!empty(v) || fallback == nil) {
			return v
		}
	}
	return fallback
}

func empty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// layout orders the output columns: approved mappings in review order, then
// the remaining source fields, then the remaining target fields. A name that
// is already taken keeps its first column.
func layout(source, target *fields.FieldSet, plan Plan) []column {
	var cols []column
	taken := map[string]bool{}
	mappedSources := map[string]bool{}
	mappedTargets := map[string]bool{}

	add := func(c column) {
		if taken[c.name] {
			return
		}
		taken[c.name] = true
		cols = append(cols, c)
	}

	for _, m := range plan.Approved {
		if !source.Has(m.Source) || !target.Has(m.Target) {
			continue
		}
		mappedSources[m.Source] = true
		mappedTargets[m.Target] = true
		add(column{name: m.Source, source: m.Source, target: m.Target})
	}
	for _, name := range source.Names() {
		if !mappedSources[name] {
			add(column{name: name, source: name})
		}
	}
	for _, name := range target.Names() {
		if !mappedTargets[name] {
			add(column{name: name, target: name})
		}
	}
	return cols
}

func mergedFieldSet(first fields.Record) (*fields.FieldSet, error) {
	fs := make([]fields.Field, 0, len(first))
	for _, item := range first {
		sample, _ := fields.Stringify(item.Value)
		fs = append(fs, fields.Field{Name: fields.Key(item.Key), Sample: sample})
	}
	return fields.New(MergedSystem, fs...)
}
