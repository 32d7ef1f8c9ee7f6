// Package retrieval narrows the source fields a target field is compared
// against to its nearest neighbours in embedding space.
package retrieval

import (
	"context"
	"fmt"
	"sort"

	"github.com/agentstation/fieldmatch/pkg/constants"
	"github.com/agentstation/fieldmatch/pkg/embedding"
	"github.com/agentstation/fieldmatch/pkg/errors"
	"github.com/agentstation/fieldmatch/pkg/fields"
)

// Candidate is a retrieved source field with its relevance score.
type Candidate struct {
	Field string  `json:"field" yaml:"field"`
	Score float64 `json:"score" yaml:"score"`
}

// Retriever returns the source fields most relevant to a target field.
type Retriever interface {
	Nearest(ctx context.Context, target fields.Field) ([]Candidate, error)
}

// Func adapts a function to the Retriever interface.
type Func func(ctx context.Context, target fields.Field) ([]Candidate, error)

// Nearest implements Retriever.
func (f Func) Nearest(ctx context.Context, target fields.Field) ([]Candidate, error) {
	return f(ctx, target)
}

// Option configures an Index.
type Option func(*options) error

type options struct {
	topK int
}

// WithTopK sets how many candidates Nearest returns.
func WithTopK(k int) Option {
	return func(o *options) error {
		if k <= 0 {
			return errors.NewValidationError("top_k", k, "must be positive")
		}
		o.topK = k
		return nil
	}
}

type entry struct {
	name   string
	vector []float32
}

// Index is an in-memory vector index over the "name: sample" text of each
// source field. It is read-only after construction.
type Index struct {
	embedder embedding.Embedder
	topK     int
	entries  []entry
}

// NewIndex embeds every source field.
func NewIndex(ctx context.Context, e embedding.Embedder, source *fields.FieldSet, opts ...Option) (*Index, error) {
	o := &options{topK: constants.DefaultTopK}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	idx := &Index{embedder: e, topK: o.topK, entries: make([]entry, 0, source.Len())}
	for _, f := range source.Fields() {
		vec, err := e.Embed(ctx, f.String())
		if err != nil {
			return nil, errors.WrapCollaborator("retriever", "index "+f.Name, err)
		}
		idx.entries = append(idx.entries, entry{name: f.Name, vector: vec})
	}
	return idx, nil
}

// Len returns the number of indexed fields.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Nearest returns up to top-K candidates by descending cosine similarity.
// Equal scores keep source order.
func (idx *Index) Nearest(ctx context.Context, target fields.Field) ([]Candidate, error) {
	vec, err := idx.embedder.Embed(ctx, target.String())
	if err != nil {
		return nil, errors.WrapCollaborator("retriever", "query", err)
	}

	candidates := make([]Candidate, len(idx.entries))
	for i, e := range idx.entries {
		candidates[i] = Candidate{Field: e.name, Score: embedding.Cosine(vec, e.vector)}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > idx.topK {
		candidates = candidates[:idx.topK]
	}
	return candidates, nil
}
