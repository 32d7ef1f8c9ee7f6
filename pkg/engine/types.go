package engine

import (
	"time"

	"github.com/agentstation/fieldmatch/pkg/audit"
	"github.com/agentstation/fieldmatch/pkg/constants"
)

// Status labels a match result.
type Status string

// Result statuses.
const (
	StrongManual  Status = "Strong Match (Manual)"
	Strong        Status = "Strong Match"
	Moderate      Status = "Moderate Match"
	WeakIncorrect Status = "Weak/Incorrect"
	NoMatch       Status = constants.NoMatch
)

// Matched reports whether the status pairs two fields.
func (s Status) Matched() bool {
	return s == StrongManual || s == Strong || s == Moderate || s == WeakIncorrect
}

// Classify labels a combined score. The Weak/Incorrect branch is unreachable
// while the no-match and moderate thresholds coincide.
func Classify(score float64) Status {
	switch {
	case score < constants.NoMatchThreshold:
		return NoMatch
	case score >= constants.StrongMatchThreshold:
		return Strong
	case score >= constants.ModerateMatchThreshold:
		return Moderate
	default:
		return WeakIncorrect
	}
}

// Candidate is one scored source/target comparison. Nil components were not
// applicable.
type Candidate struct {
	Source           string   `json:"source" yaml:"source"`
	Target           string   `json:"target" yaml:"target"`
	Score            float64  `json:"score" yaml:"score"`
	FieldSimilarity  *float64 `json:"field_similarity,omitempty" yaml:"field_similarity,omitempty"`
	TypeSimilarity   *float64 `json:"type_similarity,omitempty" yaml:"type_similarity,omitempty"`
	SampleSimilarity *float64 `json:"sample_similarity,omitempty" yaml:"sample_similarity,omitempty"`
	ExternalScore    *float64 `json:"external_score,omitempty" yaml:"external_score,omitempty"`
	Synonym          bool     `json:"synonym" yaml:"synonym"`
	Boosted          bool     `json:"boosted" yaml:"boosted"`
}

// MatchResult is the decision for one target field, or a leftover source
// field. An absent counterpart is the literal "No Match"; a nil Score is
// rendered as n/a. Only paired results carry a score and its breakdown;
// BestSource and BestScore record the rejected candidate of a no-match.
type MatchResult struct {
	TargetField      string       `json:"target_field" yaml:"target_field"`
	SourceField      string       `json:"source_field" yaml:"source_field"`
	TargetSample     string       `json:"target_sample,omitempty" yaml:"target_sample,omitempty"`
	SourceSample     string       `json:"source_sample,omitempty" yaml:"source_sample,omitempty"`
	Score            *float64     `json:"score,omitempty" yaml:"score,omitempty"`
	FieldSimilarity  *float64     `json:"field_similarity,omitempty" yaml:"field_similarity,omitempty"`
	TypeSimilarity   *float64     `json:"type_similarity,omitempty" yaml:"type_similarity,omitempty"`
	SampleSimilarity *float64     `json:"sample_similarity,omitempty" yaml:"sample_similarity,omitempty"`
	ExternalScore    *float64     `json:"external_score,omitempty" yaml:"external_score,omitempty"`
	Synonym          bool         `json:"synonym,omitempty" yaml:"synonym,omitempty"`
	Boosted          bool         `json:"boosted,omitempty" yaml:"boosted,omitempty"`
	BestSource       string       `json:"best_source,omitempty" yaml:"best_source,omitempty"`
	BestScore        *float64     `json:"best_score,omitempty" yaml:"best_score,omitempty"`
	Status           Status       `json:"status" yaml:"status"`
	Method           audit.Method `json:"method" yaml:"method"`
	Warnings         []string     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Paired reports whether the result maps a target field to a source field.
func (m MatchResult) Paired() bool {
	return m.TargetField != constants.NoMatch && m.SourceField != constants.NoMatch
}

// Stats counts what a run did.
type Stats struct {
	Targets          int `json:"targets" yaml:"targets"`
	Sources          int `json:"sources" yaml:"sources"`
	Manual           int `json:"manual" yaml:"manual"`
	Strong           int `json:"strong" yaml:"strong"`
	Moderate         int `json:"moderate" yaml:"moderate"`
	NoMatch          int `json:"no_match" yaml:"no_match"`
	UnmatchedSources int `json:"unmatched_sources" yaml:"unmatched_sources"`
	Comparisons      int `json:"comparisons" yaml:"comparisons"`
	Skipped          int `json:"skipped" yaml:"skipped"`
}

// Metadata describes a run.
type Metadata struct {
	RunID     string        `json:"run_id" yaml:"run_id"`
	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Stats     Stats         `json:"stats" yaml:"stats"`
}
