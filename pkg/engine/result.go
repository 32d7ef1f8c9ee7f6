package engine

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/agentstation/fieldmatch/pkg/audit"
	"github.com/agentstation/fieldmatch/pkg/errors"
)

// Result is the output of one run: matches in target order followed by
// leftover source fields, and one audit entry per match at the same index.
type Result struct {
	Matches  []MatchResult `json:"matches" yaml:"matches"`
	Audit    []audit.Entry `json:"audit" yaml:"audit"`
	Warnings []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Metadata Metadata      `json:"metadata" yaml:"metadata"`

	trail *audit.Trail
}

// Decide records a reviewer decision on the audit entry with id.
func (r *Result) Decide(id uuid.UUID, d audit.Decision) error {
	if r.trail == nil {
		return errors.NewNotFoundError("audit entry", id.String())
	}
	if err := r.trail.Decide(id, d); err != nil {
		return err
	}
	r.Audit = r.trail.Entries()
	return nil
}

// DecideAt records a decision on the audit entry of the i-th match.
func (r *Result) DecideAt(i int, d audit.Decision) error {
	if i < 0 || i >= len(r.Audit) {
		return errors.NewNotFoundError("audit entry", "#"+strconv.Itoa(i))
	}
	return r.Decide(r.Audit[i].ID, d)
}

// ApplyDefaultDecisions approves every strong pairing, moderate ones too when
// includeModerate is set, and rejects everything else.
func (r *Result) ApplyDefaultDecisions(includeModerate bool) error {
	for i, m := range r.Matches {
		d := audit.Reject
		switch m.Status {
		case StrongManual, Strong:
			d = audit.Approve
		case Moderate:
			if includeModerate {
				d = audit.Approve
			}
		}
		if err := r.DecideAt(i, d); err != nil {
			return err
		}
	}
	return nil
}

// Decision returns the current decision for the i-th match.
func (r *Result) Decision(i int) audit.Decision {
	if i < 0 || i >= len(r.Audit) {
		return audit.Undecided
	}
	return r.Audit[i].Decision
}
