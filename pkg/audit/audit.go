// Package audit records every match decision so a reviewer can approve or
// reject it later. Entries are append-only; only their Decision changes.
package audit

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/fieldmatch/pkg/errors"
)

// Method is how a match was decided.
type Method string

// Match methods.
const (
	Manual    Method = "Manual"
	Heuristic Method = "Heuristic"
	AI        Method = "AI"
	None      Method = "None"
)

// Decision is the reviewer's verdict on an entry.
type Decision string

// Decisions.
const (
	Undecided Decision = "undecided"
	Approve   Decision = "approve"
	Reject    Decision = "reject"
)

// ParseDecision accepts approve, reject or undecided in any case, plus the
// shorthands a, r and the empty string for undecided.
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approve", "approved", "a":
		return Approve, nil
	case "reject", "rejected", "r":
		return Reject, nil
	case "undecided", "":
		return Undecided, nil
	}
	return "", errors.NewValidationError("decision", s, "must be approve, reject or undecided")
}

// Entry mirrors one match result.
type Entry struct {
	ID          uuid.UUID `json:"id" yaml:"id"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	TargetField string    `json:"target_field" yaml:"target_field"`
	SourceField string    `json:"source_field" yaml:"source_field"`
	Method      Method    `json:"method" yaml:"method"`
	Score       *float64  `json:"score,omitempty" yaml:"score,omitempty"`
	Status      string    `json:"status" yaml:"status"`
	Decision    Decision  `json:"decision" yaml:"decision"`
}

// Trail is an append-only list of entries. It is safe for concurrent use.
type Trail struct {
	mu      sync.RWMutex
	clock   func() time.Time
	entries []Entry
	index   map[uuid.UUID]int
}

// NewTrail returns an empty trail. A nil clock uses the current UTC time.
func NewTrail(clock func() time.Time) *Trail {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Trail{clock: clock, index: make(map[uuid.UUID]int)}
}

// Record appends e with a fresh id and timestamp and an undecided verdict,
// and returns the stored entry.
func (t *Trail) Record(e Entry) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	e.ID = uuid.New()
	e.Timestamp = t.clock()
	e.Decision = Undecided
	if e.Score != nil {
		score := *e.Score
		e.Score = &score
	}
	t.index[e.ID] = len(t.entries)
	t.entries = append(t.entries, e)
	return e
}

// Entries returns a copy of the entries in recording order.
func (t *Trail) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries.
func (t *Trail) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Get returns the entry with id.
func (t *Trail) Get(id uuid.UUID) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	i, ok := t.index[id]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Decide sets the verdict of the entry with id.
func (t *Trail) Decide(id uuid.UUID, d Decision) error {
	switch d {
	case Undecided, Approve, Reject:
	default:
		return errors.NewValidationError("decision", d, "must be approve, reject or undecided")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.index[id]
	if !ok {
		return errors.NewNotFoundError("audit entry", id.String())
	}
	t.entries[i].Decision = d
	return nil
}

// WithDecision returns the entries currently carrying d.
func (t *Trail) WithDecision(d Decision) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Entry
	for _, e := range t.entries {
		if e.Decision == d {
			out = append(out, e)
		}
	}
	return out
}
