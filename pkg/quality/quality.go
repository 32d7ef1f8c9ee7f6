// Package quality checks dataset rows against the field types inferred from
// their first record, before and after a merge.
package quality

import (
	"fmt"

	"github.com/agentstation/fieldmatch/pkg/fields"
	"github.com/agentstation/fieldmatch/pkg/typeclass"
)

// Kind is the category of a data issue.
type Kind string

// Issue kinds.
const (
	Missing      Kind = "missing"
	TypeMismatch Kind = "type_mismatch"
	NotScalar    Kind = "not_scalar"
)

// Issue is one problem with one value. Row is 1-based.
type Issue struct {
	System   string              `json:"system" yaml:"system"`
	Row      int                 `json:"row" yaml:"row"`
	Field    string              `json:"field" yaml:"field"`
	Kind     Kind                `json:"kind" yaml:"kind"`
	Expected typeclass.TypeClass `json:"expected,omitempty" yaml:"expected,omitempty"`
	Actual   typeclass.TypeClass `json:"actual,omitempty" yaml:"actual,omitempty"`
	Message  string              `json:"message" yaml:"message"`
}

// Validate checks every row for every field of set: a missing, null or
// empty value is Missing, and a value whose type differs from the field's
// sample type is a TypeMismatch.
func Validate(system string, records []fields.Record, set *fields.FieldSet) []Issue {
	issues := make([]Issue, 0)
	expected := set.Types()

	for i, rec := range records {
		for _, f := range set.Fields() {
			issue := Issue{System: system, Row: i + 1, Field: f.Name}

			raw, ok := fields.Value(rec, f.Name)
			if !ok || raw == nil {
				issue.Kind = Missing
				issue.Message = fmt.Sprintf("missing value for %q", f.Name)
				issues = append(issues, issue)
				continue
			}
			value, scalar := fields.Stringify(raw)
			switch {
			case !scalar:
				issue.Kind = NotScalar
				issue.Message = fmt.Sprintf("value of %q is not a scalar", f.Name)
			case value == "":
				issue.Kind = Missing
				issue.Message = fmt.Sprintf("missing value for %q", f.Name)
			default:
				actual := typeclass.Classify(value)
				if actual == expected[f.Name] {
					continue
				}
				issue.Kind = TypeMismatch
				issue.Expected = expected[f.Name]
				issue.Actual = actual
				issue.Message = fmt.Sprintf("type mismatch in %q (expected %s, got %s)", f.Name, issue.Expected, actual)
			}
			issues = append(issues, issue)
		}
	}
	return issues
}

// Summary counts issues by kind.
func Summary(issues []Issue) map[Kind]int {
	counts := make(map[Kind]int)
	for _, issue := range issues {
		counts[issue.Kind]++
	}
	return counts
}
